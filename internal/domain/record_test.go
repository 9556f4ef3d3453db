package domain

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArtistUnmarshal(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Artist
		wantErr  bool
	}{
		{
			name:     "plain string",
			input:    `"OutKast"`,
			expected: "OutKast",
		},
		{
			name:     "list of strings",
			input:    `["OutKast", "Raekwon"]`,
			expected: "OutKast, Raekwon",
		},
		{
			name:     "single element list",
			input:    `["OutKast"]`,
			expected: "OutKast",
		},
		{
			name:     "empty list",
			input:    `[]`,
			expected: "",
		},
		{
			name:    "number",
			input:   `42`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var a Artist
			err := json.Unmarshal([]byte(tt.input), &a)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, a)
		})
	}
}

func TestTrackRecordIncomplete(t *testing.T) {
	complete := TrackRecord{
		ThumbnailURL: "https://i.ytimg.com/vi/abc/hq720.jpg",
		Album:        "Aquemini",
		Artist:       "OutKast",
		TrackTitle:   "Rosa Parks",
	}
	assert.False(t, complete.Incomplete())

	tests := []struct {
		name   string
		mutate func(*TrackRecord)
	}{
		{"empty album", func(r *TrackRecord) { r.Album = "" }},
		{"placeholder album", func(r *TrackRecord) { r.Album = "N/A" }},
		{"placeholder artist", func(r *TrackRecord) { r.Artist = "N/A" }},
		{"empty title", func(r *TrackRecord) { r.TrackTitle = "" }},
		{"placeholder thumbnail", func(r *TrackRecord) { r.ThumbnailURL = "N/A" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := complete
			tt.mutate(&r)
			assert.True(t, r.Incomplete())
		})
	}
}

func TestTrackRecordValidate(t *testing.T) {
	valid := TrackRecord{
		TrackTitle:  "Rosa Parks",
		FilePath:    "music/03 - Rosa Parks.mp3",
		TrackNumber: 3,
	}
	assert.NoError(t, valid.Validate())

	missingTitle := valid
	missingTitle.TrackTitle = ""
	assert.Error(t, missingTitle.Validate())

	badNumber := valid
	badNumber.TrackNumber = 0
	assert.Error(t, badNumber.Validate())
}

func TestTrackRecordJSONKeys(t *testing.T) {
	r := TrackRecord{
		ThumbnailURL: "https://example.com/art.jpg",
		Album:        "Aquemini",
		Artist:       "OutKast",
		TrackTitle:   "Rosa Parks",
		TrackNumber:  3,
		FilePath:     "music/03 - Rosa Parks.mp3",
		Service:      "youtube",
	}

	data, err := json.Marshal(r)
	require.NoError(t, err)

	var keys map[string]any
	require.NoError(t, json.Unmarshal(data, &keys))

	for _, key := range []string{
		"Thumbnail URL", "Album", "Artist", "Track Title",
		"Track Number", "File Path", "Service",
	} {
		assert.Contains(t, keys, key)
	}
	// Album URL is omitted when empty
	assert.NotContains(t, keys, "Album URL")
}

func TestHandOffRoundTrip(t *testing.T) {
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "out", DownloadOutputFile)

	records := []TrackRecord{
		{TrackTitle: "SpottieOttieDopaliscious", TrackNumber: 9, FilePath: "music/09.mp3"},
		{TrackTitle: "Liberation", TrackNumber: 13, FilePath: "music/13.mp3"},
	}

	err := WriteRecords(path, records)
	require.NoError(t, err)

	got, err := ReadTrackRecords(path)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, records[0].TrackTitle, got[0].TrackTitle)
	assert.Equal(t, records[1].TrackNumber, got[1].TrackNumber)
}

func TestReadTrackRecordsMissingFile(t *testing.T) {
	_, err := ReadTrackRecords(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestReadTrackRecordsRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), DownloadOutputFile)
	require.NoError(t, WriteRecords(path, []TrackRecord{
		{TrackTitle: "Rosa Parks", FilePath: "music/01.mp3", TrackNumber: 0},
	}))

	_, err := ReadTrackRecords(path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "record 1")
}

func TestEnrichedRecordValidate(t *testing.T) {
	valid := EnrichedRecord{Title: "Rosa Parks", FilePath: "music/03.mp3"}
	assert.NoError(t, valid.Validate())

	missing := EnrichedRecord{FilePath: "music/03.mp3"}
	assert.Error(t, missing.Validate())
}
