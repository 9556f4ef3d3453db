package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// GCSStorage implements Storage on a Google Cloud Storage bucket.
type GCSStorage struct {
	client       *storage.Client
	bucket       string
	objectPrefix string
}

// NewGCSStorage creates a GCS-backed store. An empty credentialsFile selects
// application default credentials.
func NewGCSStorage(ctx context.Context, bucketName, objectPrefix, credentialsFile string) (*GCSStorage, error) {
	var client *storage.Client
	var err error

	if credentialsFile != "" {
		client, err = storage.NewClient(ctx, option.WithCredentialsFile(credentialsFile))
	} else {
		client, err = storage.NewClient(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}

	return &GCSStorage{
		client:       client,
		bucket:       bucketName,
		objectPrefix: objectPrefix,
	}, nil
}

func (s *GCSStorage) objectName(category, base string) string {
	name := category + "/" + base
	if s.objectPrefix != "" {
		name = s.objectPrefix + "/" + name
	}
	return name
}

// Publish uploads localPath under {prefix}/{category}/.
func (s *GCSStorage) Publish(ctx context.Context, localPath, category string) (string, error) {
	src, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("open artifact: %w", err)
	}
	defer src.Close()

	objectName := s.objectName(category, filepath.Base(localPath))
	w := s.client.Bucket(s.bucket).Object(objectName).NewWriter(ctx)
	if _, err := io.Copy(w, src); err != nil {
		w.Close()
		return "", fmt.Errorf("upload artifact: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finalize upload: %w", err)
	}
	return objectName, nil
}

// GetReader opens a published object.
func (s *GCSStorage) GetReader(ctx context.Context, path string) (io.ReadCloser, error) {
	return s.client.Bucket(s.bucket).Object(path).NewReader(ctx)
}

// FileExists checks the bucket for the object.
func (s *GCSStorage) FileExists(ctx context.Context, path string) bool {
	_, err := s.client.Bucket(s.bucket).Object(path).Attrs(ctx)
	return err == nil
}

// ListFiles lists objects in a category by base-name prefix.
func (s *GCSStorage) ListFiles(ctx context.Context, category, pattern string) ([]string, error) {
	prefix := s.objectName(category, pattern)

	it := s.client.Bucket(s.bucket).Objects(ctx, &storage.Query{Prefix: prefix})

	var results []string
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error listing objects: %w", err)
		}
		if strings.HasSuffix(attrs.Name, "/") {
			continue
		}
		results = append(results, attrs.Name)
	}
	return results, nil
}
