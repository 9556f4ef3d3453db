package downloader

import (
	"context"

	"github.com/kmerrill/songpipe/internal/extractor"
)

// Extractor is the narrow slice of the media extraction backend the
// downloader depends on.
type Extractor interface {
	Extract(ctx context.Context, url, cookieFile string) (*extractor.Info, error)
	PlaylistEntryURLs(ctx context.Context, url string) ([]string, error)
	DownloadAudio(ctx context.Context, url, outputTemplate, cookieFile string) error
}
