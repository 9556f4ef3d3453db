package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kmerrill/songpipe/config"
)

func TestNewStorageLocal(t *testing.T) {
	cfg := &config.Config{}
	cfg.Storage.Type = "local"
	cfg.Storage.OutputDir = t.TempDir()

	store, err := newStorage(context.Background(), cfg)

	require.NoError(t, err)
	assert.NotNil(t, store)
}

func TestNewStorageDefaultsToLocal(t *testing.T) {
	cfg := &config.Config{}
	cfg.Storage.OutputDir = t.TempDir()

	store, err := newStorage(context.Background(), cfg)

	require.NoError(t, err)
	assert.NotNil(t, store)
}

func TestNewStorageUnknownType(t *testing.T) {
	cfg := &config.Config{}
	cfg.Storage.Type = "ftp"

	_, err := newStorage(context.Background(), cfg)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown storage type")
}
