// Package storage places finished pipeline artifacts (tagged tracks and
// cropped thumbnails) under a configured output root, locally or in a GCS
// bucket.
package storage

import (
	"context"
	"io"
)

// Artifact categories used as output subdirectories / object prefixes.
const (
	CategoryTracks     = "tracks"
	CategoryThumbnails = "thumbnails"
)

// Storage defines the interface for publishing pipeline artifacts.
type Storage interface {
	// Publish copies the local file into the store under the given
	// category and returns the destination path or object name.
	Publish(ctx context.Context, localPath, category string) (string, error)

	// GetReader opens a published artifact for reading.
	GetReader(ctx context.Context, path string) (io.ReadCloser, error)

	// FileExists reports whether a published artifact exists.
	FileExists(ctx context.Context, path string) bool

	// ListFiles lists published artifacts in a category whose base name
	// starts with pattern; an empty pattern matches everything.
	ListFiles(ctx context.Context, category, pattern string) ([]string, error)
}
