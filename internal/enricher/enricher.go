package enricher

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/schollz/progressbar/v3"

	"github.com/kmerrill/songpipe/internal/domain"
	"github.com/kmerrill/songpipe/internal/extractor"
	"github.com/kmerrill/songpipe/internal/link"
)

// CompletionClient is the narrow interface to the completion backend.
type CompletionClient interface {
	Complete(ctx context.Context, seed Seed) (*Completion, error)
}

// Cropper produces one square PNG per album.
type Cropper interface {
	Crop(ctx context.Context, imageURL, outputDir, album string) error
}

// AlbumResolver re-resolves an album URL into its canonical title and
// artwork without downloading.
type AlbumResolver interface {
	ExtractFlat(ctx context.Context, url string) (*extractor.Info, error)
}

// PageResolver reads an album page's title and artwork from its HTML when
// flat extraction yields nothing.
type PageResolver interface {
	Resolve(url string) (title, imageURL string, err error)
}

// Config holds the enricher's output settings.
type Config struct {
	ThumbnailDir string
}

// Enricher is the second pipeline stage.
type Enricher struct {
	client   CompletionClient
	cropper  Cropper
	resolver AlbumResolver
	pages    PageResolver
	cfg      Config
}

// New creates an Enricher. pages may be nil to disable the HTML fallback.
func New(client CompletionClient, cropper Cropper, resolver AlbumResolver, pages PageResolver, cfg Config) *Enricher {
	if cfg.ThumbnailDir == "" {
		cfg.ThumbnailDir = filepath.Join("assets", "bin", "thumbnails")
	}
	return &Enricher{
		client:   client,
		cropper:  cropper,
		resolver: resolver,
		pages:    pages,
		cfg:      cfg,
	}
}

// Enrich produces one enriched record per track record, in input order, and
// fetches at most one cropped thumbnail per distinct album as a side effect.
// bar may be nil.
func (e *Enricher) Enrich(ctx context.Context, tracks []domain.TrackRecord, bar *progressbar.ProgressBar) []domain.EnrichedRecord {
	records := make([]domain.EnrichedRecord, 0, len(tracks))
	processedAlbums := make(map[string]struct{})
	processedThumbnails := make(map[string]struct{})

	for _, track := range tracks {
		slog.Info("enriching track",
			"track", track.TrackNumber,
			"title", track.TrackTitle,
			"album", track.Album)

		record := e.enrichOne(ctx, track)

		if _, done := processedAlbums[track.Album]; !done {
			e.prepareAlbumArt(ctx, track, &record, processedThumbnails)
			processedAlbums[track.Album] = struct{}{}
			processedAlbums[record.Album] = struct{}{}
		}

		records = append(records, record)
		if bar != nil {
			bar.Add(1)
		}
	}
	return records
}

// enrichOne requests the completed schema for one track. A completion
// failure degrades to a schema-padded record seeded from the track so the
// embedder contract holds for every input.
func (e *Enricher) enrichOne(ctx context.Context, track domain.TrackRecord) domain.EnrichedRecord {
	seed := Seed{
		Title:              track.TrackTitle,
		ContributingArtist: string(track.Artist),
		Album:              track.Album,
		TrackNumber:        track.TrackNumber,
	}

	completion, err := e.client.Complete(ctx, seed)
	if err != nil {
		slog.Error("metadata completion failed, padding record", "title", track.TrackTitle, "error", err)
		return e.padRecord(track)
	}

	record := domain.EnrichedRecord{
		Title:                completion.Title,
		Subtitle:             completion.Subtitle,
		Rating:               completion.Rating,
		Comments:             completion.Comments,
		ContributingArtist:   completion.ContributingArtist,
		AlbumArtist:          completion.AlbumArtist,
		Album:                completion.Album,
		Year:                 completion.Year,
		TrackNumber:          completion.TrackNumber,
		DiscNumber:           completion.DiscNumber,
		Genre:                completion.Genre,
		Length:               completion.Length,
		BitRate:              completion.BitRate,
		Publisher:            completion.Publisher,
		EncodedBy:            completion.EncodedBy,
		AuthorURL:            completion.AuthorURL,
		Copyright:            completion.Copyright,
		ParentalRatingReason: completion.ParentalRatingReason,
		Composers:            strings.Join(completion.Composers, ", "),
		Conductors:           strings.Join(completion.Conductors, ", "),
		GroupDescription:     completion.GroupDescription,
		Mood:                 completion.Mood,
		PartOfSet:            completion.PartOfSet,
		InitialKey:           completion.InitialKey,
		BPM:                  completion.BPM,
		Protected:            completion.Protected,
		PartOfCompilation:    completion.PartOfCompilation,
		ISRC:                 completion.ISRC,
		AlbumArtURL:          completion.AlbumArtURL,
		FilePath:             track.FilePath,
	}
	record.AlbumArtPath = e.artPath(record.Album)
	return record
}

// padRecord builds a well-formed record with typed zero values from the
// downloader's fields alone.
func (e *Enricher) padRecord(track domain.TrackRecord) domain.EnrichedRecord {
	return domain.EnrichedRecord{
		Title:              track.TrackTitle,
		ContributingArtist: string(track.Artist),
		Album:              track.Album,
		TrackNumber:        track.TrackNumber,
		AlbumArtPath:       e.artPath(track.Album),
		FilePath:           track.FilePath,
	}
}

// prepareAlbumArt resolves the album's canonical artwork and invokes the
// cropper once for the album. For non-music services the album URL is
// re-resolved and its title overrides the completion's guess when they
// disagree case-insensitively.
func (e *Enricher) prepareAlbumArt(ctx context.Context, track domain.TrackRecord, record *domain.EnrichedRecord, processedThumbnails map[string]struct{}) {
	thumbnailURL := track.ThumbnailURL
	album := record.Album

	if !strings.EqualFold(track.Service, link.ServiceYouTubeMusic) && track.AlbumURL != "" {
		resolvedTitle, resolvedThumbnail := e.resolveAlbum(ctx, track.AlbumURL)
		if resolvedThumbnail != "" {
			thumbnailURL = resolvedThumbnail
		}
		if resolvedTitle != "" && !strings.EqualFold(album, resolvedTitle) {
			slog.Debug("overriding album title", "completion", album, "resolved", resolvedTitle)
			album = resolvedTitle
			record.Album = album
			record.AlbumArtPath = e.artPath(album)
		}
	}

	if thumbnailURL == "" || thumbnailURL == "N/A" {
		slog.Warn("no thumbnail available for album", "album", album)
		return
	}
	if _, done := processedThumbnails[thumbnailURL]; done {
		return
	}

	if err := e.cropper.Crop(ctx, thumbnailURL, e.cfg.ThumbnailDir, album); err != nil {
		slog.Error("thumbnail crop failed", "album", album, "url", thumbnailURL, "error", err)
		return
	}
	processedThumbnails[thumbnailURL] = struct{}{}
}

// resolveAlbum reads the canonical album title and artwork from the album
// URL, falling back to the page's OpenGraph tags.
func (e *Enricher) resolveAlbum(ctx context.Context, albumURL string) (title, thumbnailURL string) {
	info, err := e.resolver.ExtractFlat(ctx, link.NormalizeYouTube(albumURL))
	if err == nil {
		title = info.Title
		switch {
		case len(info.Thumbnails) > 1:
			thumbnailURL = info.Thumbnails[1].URL
		case info.Thumbnail != "":
			thumbnailURL = info.Thumbnail
		case len(info.Entries) > 0:
			thumbnailURL = info.Entries[0].Thumbnail
		}
		return title, thumbnailURL
	}

	slog.Warn("album extraction failed", "url", albumURL, "error", err)
	if e.pages == nil {
		return "", ""
	}
	title, thumbnailURL, err = e.pages.Resolve(albumURL)
	if err != nil {
		slog.Warn("album page resolution failed", "url", albumURL, "error", err)
		return "", ""
	}
	return title, thumbnailURL
}

func (e *Enricher) artPath(album string) string {
	return filepath.Join(e.cfg.ThumbnailDir, album+".png")
}
