// Command embed is the final pipeline stage: it reads the enriched hand-off
// file and writes metadata plus cover art into each audio file's tag
// container.
package main

import (
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/kmerrill/songpipe/config"
	"github.com/kmerrill/songpipe/internal/domain"
	"github.com/kmerrill/songpipe/internal/tagger"
)

func main() {
	configPath := flag.String("config", "./config/config.yaml", "Path to configuration file")
	inputPath := flag.String("input", "", "Enriched record file (default: work dir hand-off)")
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
		input = filepath.Join(cfg.WorkDir, domain.EnrichOutputFile)
	}
	records, err := domain.ReadEnrichedRecords(input)
	if err != nil {
		slog.Error("failed to read enriched records", "path", input, "error", err)
		os.Exit(1)
	}
	slog.Info("read enriched records", "path", input, "count", len(records))

	tagged := tagger.New().EmbedAll(records)

	json.NewEncoder(os.Stdout).Encode(map[string]int{
		"tracks": len(records),
		"tagged": tagged,
	})
}
