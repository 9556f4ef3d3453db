// Command download is the first pipeline stage: it resolves a source URL
// into locally stored audio files and writes the track record hand-off
// file. Diagnostics go to stderr; stdout carries only the JSON result.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/kmerrill/songpipe/config"
	"github.com/kmerrill/songpipe/internal/domain"
	"github.com/kmerrill/songpipe/internal/downloader"
	"github.com/kmerrill/songpipe/internal/extractor"
)

func main() {
	configPath := flag.String("config", "./config/config.yaml", "Path to configuration file")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(),
			"Usage: %s [flags] <url> <playlist_url> <thumbnail_url> <service> <media>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	args := flag.Args()
	if len(args) < 5 {
		// The argument error is the one result written to stdout.
		json.NewEncoder(os.Stdout).Encode(map[string]string{
			"error": "missing arguments: url, playlist_url, thumbnail_url, service, media",
		})
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.Level(cfg.LogLevel)}))
	slog.SetDefault(logger)

	ytdlp := extractor.New()
	if err := ytdlp.CheckAvailable(); err != nil {
		slog.Error("extraction backend unavailable", "error", err)
		os.Exit(1)
	}

	dl := downloader.New(ytdlp, downloader.Config{
		MusicDir:         cfg.MusicDir,
		CookiesFile:      cfg.Downloader.CookiesFile,
		MusicCookiesFile: cfg.Downloader.MusicCookiesFile,
	})

	records := dl.Download(context.Background(), downloader.Options{
		URL:          args[0],
		PlaylistURL:  args[1],
		ThumbnailURL: args[2],
		Service:      args[3],
		Media:        args[4],
	})

	outputPath := filepath.Join(cfg.WorkDir, domain.DownloadOutputFile)
	if err := domain.WriteRecords(outputPath, records); err != nil {
		slog.Error("failed to write hand-off file", "path", outputPath, "error", err)
		os.Exit(1)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	encoder.Encode(records)
}
