package extractor

import (
	"encoding/json"
	"errors"
	"os/exec"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInfoDecode(t *testing.T) {
	// Trimmed single-item dump as yt-dlp emits it.
	dump := `{
		"id": "abc123",
		"title": "OutKast - Rosa Parks (Official Audio)",
		"track": "Rosa Parks",
		"artist": "OutKast",
		"album": "Aquemini",
		"channel": "OutKast",
		"uploader": "OutKast - Topic",
		"thumbnail": "https://i.ytimg.com/vi/abc123/hq720.jpg",
		"duration": 324.5,
		"webpage_url": "https://www.youtube.com/watch?v=abc123",
		"thumbnails": [
			{"url": "https://i.ytimg.com/vi/abc123/default.jpg", "width": 120, "height": 90},
			{"url": "https://i.ytimg.com/vi/abc123/hq720.jpg", "width": 1280, "height": 720}
		]
	}`

	var info Info
	require.NoError(t, json.Unmarshal([]byte(dump), &info))

	assert.Equal(t, "abc123", info.ID)
	assert.Equal(t, "Rosa Parks", info.Track)
	assert.Equal(t, "Aquemini", info.Album)
	assert.Equal(t, 324.5, info.Duration)
	require.Len(t, info.Thumbnails, 2)
	assert.Equal(t, 1280, info.Thumbnails[1].Width)
	assert.Empty(t, info.Entries)
}

func TestInfoDecodePlaylist(t *testing.T) {
	dump := `{
		"id": "OLAK5uy_xyz",
		"title": "Aquemini",
		"playlist": "Aquemini",
		"entries": [
			{"id": "a1", "title": "Return of the G", "webpage_url": "https://www.youtube.com/watch?v=a1"},
			{"id": "b2", "title": "Rosa Parks"}
		]
	}`

	var info Info
	require.NoError(t, json.Unmarshal([]byte(dump), &info))

	require.Len(t, info.Entries, 2)
	assert.Equal(t, "https://www.youtube.com/watch?v=a1", info.Entries[0].WebpageURL)
	assert.Empty(t, info.Entries[1].WebpageURL)
	assert.Equal(t, "b2", info.Entries[1].ID)
}

func TestYtdlpErrorTruncatesCommand(t *testing.T) {
	cmd := exec.Command("yt-dlp", strings.Repeat("x", 500))
	base := errors.New("exit status 1")

	err := newYtdlpError(cmd, []byte("ERROR: nsig extraction failed"), base)

	assert.ErrorIs(t, err, base)
	assert.Contains(t, err.Error(), "nsig extraction failed")
	assert.Contains(t, err.Error(), "...")
	assert.Less(t, strings.Index(err.Error(), "Output:"), 400)
}

func TestCheckAvailableMissingBinary(t *testing.T) {
	c := &Client{binary: "definitely-not-a-real-binary-xyz"}

	err := c.CheckAvailable()

	assert.ErrorIs(t, err, ErrYtDlpNotAvailable)
}
