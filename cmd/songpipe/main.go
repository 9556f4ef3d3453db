// Command songpipe runs the whole pipeline for one source URL: download,
// metadata enrichment, thumbnail preparation, and tag embedding, with
// optional publishing of the finished artifacts.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/kmerrill/songpipe/config"
	"github.com/kmerrill/songpipe/internal/link"
	"github.com/kmerrill/songpipe/internal/pipeline"
)

func main() {
	configPath := flag.String("config", "./config/config.yaml", "Path to configuration file")
	url := flag.String("url", "", "Source URL for a track or playlist (required)")
	playlistURL := flag.String("playlist-url", "", "Album/playlist URL for metadata fallback (optional)")
	thumbnailURL := flag.String("thumbnail-url", "", "Thumbnail URL override (optional)")
	service := flag.String("service", "", "Service tag (default: detected from URL)")
	media := flag.String("media", "", "Media kind, track or playlist (default: detected from URL)")
	publish := flag.Bool("publish", false, "Publish finished artifacts to the configured storage")

	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage of %s:\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if *url == "" {
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.Level(cfg.LogLevel)}))
	slog.SetDefault(logger)

	if *service == "" {
		*service = link.DetectService(*url)
	}
	if *media == "" {
		*media = link.DetectMedia(*url)
	}

	ctx := context.Background()
	p, err := pipeline.New(ctx, cfg)
	if err != nil {
		slog.Error("failed to build pipeline", "error", err)
		os.Exit(1)
	}

	records, err := p.Run(ctx, pipeline.Options{
		URL:          *url,
		PlaylistURL:  *playlistURL,
		ThumbnailURL: *thumbnailURL,
		Service:      *service,
		Media:        *media,
		Publish:      *publish,
	})
	if err != nil {
		slog.Error("pipeline failed", "error", err)
		os.Exit(1)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	encoder.Encode(records)
}
