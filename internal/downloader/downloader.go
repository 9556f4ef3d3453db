// Package downloader resolves a source URL into locally stored audio files
// and one TrackRecord per resolved item.
package downloader

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/kmerrill/songpipe/internal/domain"
	"github.com/kmerrill/songpipe/internal/extractor"
	"github.com/kmerrill/songpipe/internal/link"
)

// Placeholder the extraction backend reports for absent fields.
const notAvailable = "N/A"

const maxAttempts = 2

// Error message fragments that indicate a stale cookie/signature problem
// worth one retry without session data.
var retryableErrors = []string{
	"nsig extraction failed",
	"requested format is not available",
	"some formats may be missing",
}

var (
	forbiddenChars  = regexp.MustCompile(`[\\/:"*?<>|]+`)
	annotationMarks = regexp.MustCompile(`(?i)\s*[\(\[][^)\]]*(official|audio|video|lyrics?|HD|4K)[^)\]]*[\)\]]`)
	bracketed       = regexp.MustCompile(`(?i)\s*[\(\[]\s*(feat\.|ft\.)?[^)\]]*[\)\]]`)
	featCredit      = regexp.MustCompile(`(?i)^\s*[\(\[]\s*(feat\.|ft\.)`)
)

// Options describe one downloader invocation.
type Options struct {
	URL          string
	PlaylistURL  string
	ThumbnailURL string
	Service      string
	Media        string
}

// Config holds the downloader's filesystem and session settings.
type Config struct {
	MusicDir         string
	CookiesFile      string
	MusicCookiesFile string
}

// Downloader is the first pipeline stage.
type Downloader struct {
	extractor Extractor
	cfg       Config
}

// New creates a Downloader around the given extraction backend.
func New(ext Extractor, cfg Config) *Downloader {
	if cfg.MusicDir == "" {
		cfg.MusicDir = "music"
	}
	return &Downloader{extractor: ext, cfg: cfg}
}

// attempt is the immutable context of one download try. Retrying narrows
// the capability set by dropping the cookie file.
type attempt struct {
	cookieFile string
}

// Download resolves opts.URL into an ordered sequence of track records. A
// single-item failure is logged and skipped; the returned slice holds the
// records for every item that succeeded, in playlist order.
func (d *Downloader) Download(ctx context.Context, opts Options) []domain.TrackRecord {
	slog.Info("downloading", "url", opts.URL, "service", opts.Service, "media", opts.Media)
	cookieFile := d.cookieFileFor(opts.Service)

	// A media kind of "track" takes precedence over a playlist marker in
	// the URL: music-service track links carry list= but name one item.
	if opts.Media == link.MediaTrack || !link.HasPlaylistMarker(opts.URL) {
		record, err := d.downloadOne(ctx, opts.URL, opts, cookieFile, 1)
		if err != nil {
			slog.Error("download failed", "url", opts.URL, "error", err)
			return nil
		}
		record.AlbumURL = opts.PlaylistURL
		return []domain.TrackRecord{*record}
	}

	entries, err := d.extractor.PlaylistEntryURLs(ctx, link.NormalizeYouTube(opts.URL))
	if err != nil {
		slog.Error("playlist expansion failed", "url", opts.URL, "error", err)
		return nil
	}

	records := make([]domain.TrackRecord, 0, len(entries))
	for i, entryURL := range entries {
		trackNumber := i + 1
		slog.Debug("downloading playlist entry", "track", trackNumber, "url", entryURL)
		record, err := d.downloadOne(ctx, entryURL, opts, cookieFile, trackNumber)
		if err != nil {
			slog.Warn("skipping playlist entry", "track", trackNumber, "url", entryURL, "error", err)
			continue
		}
		record.AlbumURL = opts.PlaylistURL
		records = append(records, *record)
	}
	return records
}

// downloadOne fetches a single item and assembles its record, retrying at
// most once without session data when the failure looks cookie-induced.
func (d *Downloader) downloadOne(ctx context.Context, url string, opts Options, cookieFile string, trackNumber int) (*domain.TrackRecord, error) {
	url = link.NormalizeYouTube(url)

	var lastErr error
	att := attempt{cookieFile: cookieFile}
	for i := 0; i < maxAttempts; i++ {
		info, err := d.fetchItem(ctx, url, att, trackNumber)
		if err == nil {
			return d.buildRecord(ctx, info, opts, trackNumber), nil
		}
		lastErr = err

		if i == 0 && att.cookieFile != "" && isRetryable(err) {
			slog.Info("retrying without cookies", "url", url, "error", err)
			att = attempt{}
			continue
		}
		break
	}
	return nil, lastErr
}

// fetchItem extracts metadata and downloads the audio stream for one item.
func (d *Downloader) fetchItem(ctx context.Context, url string, att attempt, trackNumber int) (*extractor.Info, error) {
	slog.Info("fetching metadata", "url", url)
	info, err := d.extractor.Extract(ctx, url, att.cookieFile)
	if err != nil {
		return nil, err
	}

	title := info.Title
	if title == "" {
		title = "unknown"
	}
	template := filepath.Join(d.cfg.MusicDir,
		fmt.Sprintf("%02d - %s.%%(ext)s", trackNumber, SanitizeFilename(title)))

	if err := d.extractor.DownloadAudio(ctx, url, template, att.cookieFile); err != nil {
		return nil, err
	}
	return info, nil
}

// buildRecord applies the metadata fallback chain: per-item fields first,
// then playlist-level fields, then a fresh extraction of the playlist URL.
func (d *Downloader) buildRecord(ctx context.Context, info *extractor.Info, opts Options, trackNumber int) *domain.TrackRecord {
	rawTitle := info.Title
	if rawTitle == "" {
		rawTitle = "unknown"
	}

	record := &domain.TrackRecord{
		ThumbnailURL: orNA(info.Thumbnail),
		Album:        orNA(info.Album),
		Artist:       domain.Artist(orNA(info.Artist)),
		TrackTitle:   firstNonEmpty(info.Track, rawTitle),
		TrackNumber:  trackNumber,
		FilePath:     d.trackPath(trackNumber, rawTitle),
		Service:      opts.Service,
	}

	if record.Incomplete() {
		thumbnail := opts.ThumbnailURL
		if thumbnail == "" {
			thumbnail = info.Thumbnail
		}
		record.ThumbnailURL = orNA(thumbnail)
		record.Album = orNA(info.Playlist)
		record.Artist = domain.Artist(orNA(info.Channel))
		record.TrackTitle = CleanTrackTitle(orNA(info.Title))
	}

	if record.Incomplete() && opts.PlaylistURL != "" {
		d.fillFromPlaylist(ctx, record, opts)
	}

	slog.Debug("metadata assembled",
		"title", record.TrackTitle,
		"artist", string(record.Artist),
		"album", record.Album,
		"track", record.TrackNumber,
		"path", record.FilePath)
	return record
}

// fillFromPlaylist is the second fallback: a fresh extraction of the
// playlist URL, read through its first entry.
func (d *Downloader) fillFromPlaylist(ctx context.Context, record *domain.TrackRecord, opts Options) {
	info, err := d.extractor.Extract(ctx, link.NormalizeYouTube(opts.PlaylistURL), "")
	if err != nil {
		slog.Warn("playlist fallback extraction failed", "url", opts.PlaylistURL, "error", err)
		return
	}
	if len(info.Entries) == 0 {
		return
	}
	first := info.Entries[0]

	if opts.ThumbnailURL != "" {
		record.ThumbnailURL = opts.ThumbnailURL
	} else if first.Thumbnail != "" {
		record.ThumbnailURL = first.Thumbnail
	}
	if first.Playlist != "" {
		record.Album = first.Playlist
	}
	if first.Uploader != "" {
		record.Artist = domain.Artist(first.Uploader)
	}
	if info.Title != "" {
		record.TrackTitle = info.Title
	}
}

func (d *Downloader) trackPath(trackNumber int, rawTitle string) string {
	return filepath.Join(d.cfg.MusicDir,
		fmt.Sprintf("%02d - %s.mp3", trackNumber, SanitizeFilename(rawTitle)))
}

func (d *Downloader) cookieFileFor(service string) string {
	if strings.EqualFold(service, link.ServiceYouTubeMusic) {
		return d.cfg.MusicCookiesFile
	}
	return d.cfg.CookiesFile
}

// SanitizeFilename replaces filesystem-hostile characters with a dash.
func SanitizeFilename(name string) string {
	return strings.TrimSpace(forbiddenChars.ReplaceAllString(name, "-"))
}

// CleanTrackTitle strips official/audio/video/lyric/quality annotations, an
// artist prefix before the first " - " separator, and any remaining
// bracketed annotation that is not a featured-artist credit.
func CleanTrackTitle(title string) string {
	if title == "" || title == notAvailable {
		return notAvailable
	}
	title = annotationMarks.ReplaceAllString(title, "")
	if idx := strings.Index(title, " - "); idx != -1 {
		title = title[idx+3:]
	}
	title = bracketed.ReplaceAllStringFunc(title, func(m string) string {
		if featCredit.MatchString(m) {
			return m
		}
		return ""
	})
	return strings.TrimSpace(title)
}

func isRetryable(err error) bool {
	msg := strings.ToLower(err.Error())
	for _, fragment := range retryableErrors {
		if strings.Contains(msg, fragment) {
			return true
		}
	}
	return false
}

func orNA(s string) string {
	if s == "" {
		return notAvailable
	}
	return s
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
