// Command enrich is the second pipeline stage: it reads the downloader's
// hand-off file, completes the metadata schema per track, prepares one
// cropped thumbnail per album, and writes the enriched hand-off file.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/kmerrill/songpipe/config"
	"github.com/kmerrill/songpipe/internal/domain"
	"github.com/kmerrill/songpipe/internal/enricher"
	"github.com/kmerrill/songpipe/internal/extractor"
	"github.com/kmerrill/songpipe/internal/scraper"
	"github.com/kmerrill/songpipe/internal/thumbnail"
)

func main() {
	configPath := flag.String("config", "./config/config.yaml", "Path to configuration file")
	inputPath := flag.String("input", "", "Track record file (default: work dir hand-off)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.Level(cfg.LogLevel)}))
	slog.SetDefault(logger)

	input := *inputPath
	if input == "" {
		input = filepath.Join(cfg.WorkDir, domain.DownloadOutputFile)
	}
	tracks, err := domain.ReadTrackRecords(input)
	if err != nil {
		slog.Error("failed to read track records", "path", input, "error", err)
		os.Exit(1)
	}
	slog.Info("read track records", "path", input, "count", len(tracks))

	creds, err := config.LoadCredentials(cfg.Enricher.CredentialsFile)
	if err != nil {
		slog.Error("failed to load credentials", "error", err)
		os.Exit(1)
	}

	client := enricher.NewClient(enricher.ClientConfig{
		BaseURL:      cfg.Enricher.BaseURL,
		APIKey:       creds.APIKey,
		Organization: creds.Organization,
		Project:      creds.ProjectID,
		Model:        cfg.Enricher.Model,
	})

	en := enricher.New(
		client,
		thumbnail.New(cfg.ThumbnailSize),
		extractor.New(),
		scraper.New(),
		enricher.Config{ThumbnailDir: cfg.ThumbnailDir},
	)

	records := en.Enrich(context.Background(), tracks, nil)

	outputPath := filepath.Join(cfg.WorkDir, domain.EnrichOutputFile)
	if err := domain.WriteRecords(outputPath, records); err != nil {
		slog.Error("failed to write hand-off file", "path", outputPath, "error", err)
		os.Exit(1)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	encoder.Encode(records)
}
