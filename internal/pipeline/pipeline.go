// Package pipeline chains the stages (download, enrichment, thumbnail
// preparation, tag embedding) through their hand-off files and publishes
// the finished artifacts.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/k0kubun/go-ansi"
	"github.com/schollz/progressbar/v3"

	"github.com/kmerrill/songpipe/config"
	"github.com/kmerrill/songpipe/internal/domain"
	"github.com/kmerrill/songpipe/internal/downloader"
	"github.com/kmerrill/songpipe/internal/enricher"
	"github.com/kmerrill/songpipe/internal/extractor"
	"github.com/kmerrill/songpipe/internal/scraper"
	"github.com/kmerrill/songpipe/internal/storage"
	"github.com/kmerrill/songpipe/internal/tagger"
	"github.com/kmerrill/songpipe/internal/thumbnail"
)

// Options describe one pipeline run.
type Options struct {
	URL          string
	PlaylistURL  string
	ThumbnailURL string
	Service      string
	Media        string

	// Publish copies tagged tracks and thumbnails into the configured
	// storage backend after embedding.
	Publish bool
}

// Pipeline runs all four stages sequentially.
type Pipeline struct {
	cfg        *config.Config
	downloader *downloader.Downloader
	enricher   *enricher.Enricher
	tagger     *tagger.Tagger
	store      storage.Storage
}

// New wires the pipeline from configuration. The completion credentials are
// loaded once here.
func New(ctx context.Context, cfg *config.Config) (*Pipeline, error) {
	ytdlp := extractor.New()
	if err := ytdlp.CheckAvailable(); err != nil {
		return nil, err
	}

	creds, err := config.LoadCredentials(cfg.Enricher.CredentialsFile)
	if err != nil {
		return nil, err
	}

	completionClient := enricher.NewClient(enricher.ClientConfig{
		BaseURL:      cfg.Enricher.BaseURL,
		APIKey:       creds.APIKey,
		Organization: creds.Organization,
		Project:      creds.ProjectID,
		Model:        cfg.Enricher.Model,
	})

	store, err := newStorage(ctx, cfg)
	if err != nil {
		return nil, err
	}

	dl := downloader.New(ytdlp, downloader.Config{
		MusicDir:         cfg.MusicDir,
		CookiesFile:      cfg.Downloader.CookiesFile,
		MusicCookiesFile: cfg.Downloader.MusicCookiesFile,
	})

	en := enricher.New(
		completionClient,
		thumbnail.New(cfg.ThumbnailSize),
		ytdlp,
		scraper.New(),
		enricher.Config{ThumbnailDir: cfg.ThumbnailDir},
	)

	return &Pipeline{
		cfg:        cfg,
		downloader: dl,
		enricher:   en,
		tagger:     tagger.New(),
		store:      store,
	}, nil
}

func newStorage(ctx context.Context, cfg *config.Config) (storage.Storage, error) {
	switch cfg.Storage.Type {
	case "", "local":
		return storage.NewLocalStorage(cfg.Storage.OutputDir)
	case "gcs":
		return storage.NewGCSStorage(ctx, cfg.Storage.Bucket, cfg.Storage.ObjectPrefix, cfg.Storage.CredentialsFile)
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Storage.Type)
	}
}

// Run executes the stages in order, leaving both hand-off files behind, and
// returns the enriched records for the caller to report.
func (p *Pipeline) Run(ctx context.Context, opts Options) ([]domain.EnrichedRecord, error) {
	tracks := p.downloader.Download(ctx, downloader.Options{
		URL:          opts.URL,
		PlaylistURL:  opts.PlaylistURL,
		ThumbnailURL: opts.ThumbnailURL,
		Service:      opts.Service,
		Media:        opts.Media,
	})
	if len(tracks) == 0 {
		return nil, fmt.Errorf("no tracks downloaded from %s", opts.URL)
	}

	downloadOut := filepath.Join(p.cfg.WorkDir, domain.DownloadOutputFile)
	if err := domain.WriteRecords(downloadOut, tracks); err != nil {
		return nil, err
	}

	records := p.enricher.Enrich(ctx, tracks, newBar(len(tracks), "[cyan][2/3][reset] Enriching metadata..."))

	enrichOut := filepath.Join(p.cfg.WorkDir, domain.EnrichOutputFile)
	if err := domain.WriteRecords(enrichOut, records); err != nil {
		return nil, err
	}

	bar := newBar(len(records), "[cyan][3/3][reset] Embedding tags...")
	tagged := 0
	for _, record := range records {
		if err := p.tagger.Embed(record); err != nil {
			slog.Error("tag embedding failed", "file", record.FilePath, "error", err)
		} else {
			tagged++
		}
		bar.Add(1)
	}
	slog.Info("pipeline finished", "tracks", len(records), "tagged", tagged)

	if opts.Publish {
		p.publish(ctx, records)
	}
	return records, nil
}

// publish copies finished artifacts into the storage backend. Failures are
// logged per artifact and do not fail the run.
func (p *Pipeline) publish(ctx context.Context, records []domain.EnrichedRecord) {
	publishedArt := make(map[string]struct{})
	for _, record := range records {
		if _, err := p.store.Publish(ctx, record.FilePath, storage.CategoryTracks); err != nil {
			slog.Warn("failed to publish track", "file", record.FilePath, "error", err)
		}
		if record.AlbumArtPath == "" {
			continue
		}
		if _, done := publishedArt[record.AlbumArtPath]; done {
			continue
		}
		publishedArt[record.AlbumArtPath] = struct{}{}
		if _, err := p.store.Publish(ctx, record.AlbumArtPath, storage.CategoryThumbnails); err != nil {
			slog.Warn("failed to publish thumbnail", "file", record.AlbumArtPath, "error", err)
		}
	}
}

func newBar(length int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(
		length,
		progressbar.OptionSetWriter(ansi.NewAnsiStdout()),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetTheme(progressbar.ThemeASCII),
		progressbar.OptionFullWidth(),
		progressbar.OptionShowCount(),
		progressbar.OptionSetDescription(description),
	)
}
