package domain

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Hand-off file names shared by the stage binaries. Each holds a UTF-8 JSON
// array, one object per track, in playlist order.
const (
	DownloadOutputFile = "download_song_output.json"
	EnrichOutputFile   = "fetch_metadata_output.json"
)

// ReadTrackRecords decodes the downloader's hand-off file.
func ReadTrackRecords(path string) ([]TrackRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read track records: %w", err)
	}
	var records []TrackRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode track records %s: %w", path, err)
	}
	for i := range records {
		if err := records[i].Validate(); err != nil {
			return nil, fmt.Errorf("record %d in %s: %w", i+1, path, err)
		}
	}
	return records, nil
}

// ReadEnrichedRecords decodes the enricher's hand-off file.
func ReadEnrichedRecords(path string) ([]EnrichedRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read enriched records: %w", err)
	}
	var records []EnrichedRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode enriched records %s: %w", path, err)
	}
	for i := range records {
		if err := records[i].Validate(); err != nil {
			return nil, fmt.Errorf("record %d in %s: %w", i+1, path, err)
		}
	}
	return records, nil
}

// WriteRecords writes any record slice as an indented JSON array, creating
// the parent directory if needed. Order is preserved as given.
func WriteRecords(path string, records any) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return fmt.Errorf("create hand-off directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode records: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write records %s: %w", path, err)
	}
	return nil
}
