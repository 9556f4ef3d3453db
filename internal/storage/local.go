package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalStorage implements Storage on the local filesystem.
type LocalStorage struct {
	outputDir string
}

// NewLocalStorage creates a local store rooted at outputDir.
func NewLocalStorage(outputDir string) (*LocalStorage, error) {
	for _, category := range []string{CategoryTracks, CategoryThumbnails} {
		if err := os.MkdirAll(filepath.Join(outputDir, category), os.ModePerm); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", category, err)
		}
	}
	return &LocalStorage{outputDir: outputDir}, nil
}

// Publish copies localPath into {outputDir}/{category}/.
func (s *LocalStorage) Publish(_ context.Context, localPath, category string) (string, error) {
	src, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("open artifact: %w", err)
	}
	defer src.Close()

	destPath := filepath.Join(s.outputDir, category, filepath.Base(localPath))
	dest, err := os.Create(destPath)
	if err != nil {
		return "", fmt.Errorf("create published artifact: %w", err)
	}
	defer dest.Close()

	if _, err := io.Copy(dest, src); err != nil {
		return "", fmt.Errorf("copy artifact: %w", err)
	}
	return destPath, nil
}

// GetReader opens a published artifact.
func (s *LocalStorage) GetReader(_ context.Context, path string) (io.ReadCloser, error) {
	return os.Open(path)
}

// FileExists checks the local filesystem.
func (s *LocalStorage) FileExists(_ context.Context, path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// ListFiles lists published artifacts in a category by base-name prefix.
func (s *LocalStorage) ListFiles(_ context.Context, category, pattern string) ([]string, error) {
	dir := filepath.Join(s.outputDir, category)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	var results []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if pattern != "" && !strings.HasPrefix(entry.Name(), pattern) {
			continue
		}
		results = append(results, filepath.Join(dir, entry.Name()))
	}
	return results, nil
}
