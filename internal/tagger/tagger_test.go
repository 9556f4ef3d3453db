package tagger

import (
	"bytes"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	dhowden "github.com/dhowden/tag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kmerrill/songpipe/internal/domain"
)

// newAudioFile creates a file with a dummy audio payload and no tag.
func newAudioFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "01 - Rosa Parks.mp3")
	payload := bytes.Repeat([]byte{0xFF, 0xFB, 0x90, 0x00}, 64)
	require.NoError(t, os.WriteFile(path, payload, 0644))
	return path
}

func newArtFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "Aquemini.png")
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 8, 8))))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))
	return path
}

func readBack(t *testing.T, path string) dhowden.Metadata {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	m, err := dhowden.ReadFrom(f)
	require.NoError(t, err)
	return m
}

func TestEmbedRequiredFrames(t *testing.T) {
	path := newAudioFile(t)
	record := domain.EnrichedRecord{
		Title:              "Rosa Parks",
		ContributingArtist: "OutKast",
		Album:              "Aquemini",
		Year:               1998,
		TrackNumber:        3,
		Genre:              "Hip-Hop",
		FilePath:           path,
	}

	require.NoError(t, New().Embed(record))

	m := readBack(t, path)
	assert.Equal(t, "Rosa Parks", m.Title())
	assert.Equal(t, "OutKast", m.Artist())
	assert.Equal(t, "Aquemini", m.Album())
	assert.Equal(t, 1998, m.Year())
	assert.Equal(t, "Hip-Hop", m.Genre())
	track, _ := m.Track()
	assert.Equal(t, 3, track)
}

func TestEmbedOptionalFrames(t *testing.T) {
	path := newAudioFile(t)
	record := domain.EnrichedRecord{
		Title:              "Rosa Parks",
		ContributingArtist: "OutKast",
		Album:              "Aquemini",
		Year:               1998,
		TrackNumber:        3,
		Genre:              "Hip-Hop",
		AlbumArtist:        "OutKast",
		Composers:          "André Benjamin, Antwan Patton",
		Comments:           "Second single",
		FilePath:           path,
	}

	require.NoError(t, New().Embed(record))

	m := readBack(t, path)
	assert.Equal(t, "OutKast", m.AlbumArtist())
	assert.Equal(t, "André Benjamin, Antwan Patton", m.Composer())

	raw := m.Raw()
	assert.Contains(t, raw, "TCOM")
	// Truthy-only writes: no publisher, key, or mood frames were requested.
	assert.NotContains(t, raw, "TPUB")
	assert.NotContains(t, raw, "TKEY")
	assert.NotContains(t, raw, "TMOO")
}

func TestEmbedArtwork(t *testing.T) {
	path := newAudioFile(t)
	record := domain.EnrichedRecord{
		Title:        "Rosa Parks",
		AlbumArtPath: newArtFile(t),
		FilePath:     path,
	}

	require.NoError(t, New().Embed(record))

	m := readBack(t, path)
	pic := m.Picture()
	require.NotNil(t, pic)
	assert.Equal(t, "image/png", pic.MIMEType)
}

func TestEmbedSkipsNonImageArtwork(t *testing.T) {
	path := newAudioFile(t)
	artPath := filepath.Join(t.TempDir(), "Aquemini.png")
	require.NoError(t, os.WriteFile(artPath, []byte("<html>not art</html>"), 0644))

	record := domain.EnrichedRecord{
		Title:        "Rosa Parks",
		AlbumArtPath: artPath,
		FilePath:     path,
	}

	// Unsupported art is skipped, the rest of the tag still lands.
	require.NoError(t, New().Embed(record))

	m := readBack(t, path)
	assert.Nil(t, m.Picture())
	assert.Equal(t, "Rosa Parks", m.Title())
}

func TestEmbedMissingArtworkIsNonFatal(t *testing.T) {
	path := newAudioFile(t)
	record := domain.EnrichedRecord{
		Title:        "Rosa Parks",
		AlbumArtPath: filepath.Join(t.TempDir(), "missing.png"),
		FilePath:     path,
	}

	require.NoError(t, New().Embed(record))
	assert.Equal(t, "Rosa Parks", readBack(t, path).Title())
}

func TestEmbedMissingFile(t *testing.T) {
	record := domain.EnrichedRecord{
		Title:    "Rosa Parks",
		FilePath: filepath.Join(t.TempDir(), "missing.mp3"),
	}

	assert.Error(t, New().Embed(record))
}

func TestEmbedAll(t *testing.T) {
	good := newAudioFile(t)
	records := []domain.EnrichedRecord{
		{Title: "Rosa Parks", FilePath: good},
		{Title: "Liberation", FilePath: filepath.Join(t.TempDir(), "missing.mp3")},
	}

	tagged := New().EmbedAll(records)

	assert.Equal(t, 1, tagged)
	assert.Equal(t, "Rosa Parks", readBack(t, good).Title())
}

func TestLengthToMillis(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected int64
		wantErr  bool
	}{
		{"typical length", "3:45", 225000, false},
		{"zero-padded minutes", "04:05", 245000, false},
		{"zero", "0:00", 0, false},
		{"spaces tolerated", " 3 : 45 ", 225000, false},
		{"missing separator", "225", 0, true},
		{"too many parts", "1:02:03", 0, true},
		{"non-numeric", "three:45", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := lengthToMillis(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestSniffMIME(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 4))))

	assert.Equal(t, "image/png", sniffMIME(buf.Bytes()))
	assert.Equal(t, "image/jpeg", sniffMIME([]byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F'}))
	assert.Equal(t, "text/html", sniffMIME([]byte("<html><body>nope</body></html>")))
}

func TestClampRating(t *testing.T) {
	assert.Equal(t, uint8(0), clampRating(-5))
	assert.Equal(t, uint8(0), clampRating(0))
	assert.Equal(t, uint8(128), clampRating(128))
	assert.Equal(t, uint8(255), clampRating(300))
}
