// Package extractor wraps the yt-dlp media extraction backend. It resolves
// source URLs into descriptive metadata, flattens playlists, and downloads
// audio streams transcoded to mp3.
package extractor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os/exec"
	"time"
)

const (
	defaultExtractTimeout  = 2 * time.Minute
	defaultDownloadTimeout = 30 * time.Minute

	// Fixed lossy target for every downloaded item.
	audioCodec   = "mp3"
	audioQuality = "192K"
)

var (
	ErrYtDlpNotAvailable = fmt.Errorf("yt-dlp not available")
	ErrNoEntries         = fmt.Errorf("no playlist entries")
)

// ytdlpError wraps yt-dlp command failures with the truncated command line
// and captured output so retry policy can inspect the message.
type ytdlpError struct {
	cmd     string
	output  string
	wrapped error
}

func (e *ytdlpError) Error() string {
	return fmt.Sprintf("yt-dlp error: %s\nCommand: %s\nOutput: %s", e.wrapped, e.cmd, e.output)
}

func (e *ytdlpError) Unwrap() error {
	return e.wrapped
}

func newYtdlpError(cmd *exec.Cmd, output []byte, err error) error {
	cmdStr := cmd.String()
	if len(cmdStr) > 200 {
		cmdStr = cmdStr[:200] + "..."
	}
	return &ytdlpError{
		cmd:     cmdStr,
		output:  string(output),
		wrapped: err,
	}
}

// Info is the subset of a yt-dlp info dict the pipeline reads.
type Info struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Track      string  `json:"track"`
	Artist     string  `json:"artist"`
	Album      string  `json:"album"`
	Channel    string  `json:"channel"`
	Uploader   string  `json:"uploader"`
	Playlist   string  `json:"playlist"`
	Thumbnail  string  `json:"thumbnail"`
	Duration   float64 `json:"duration"`
	WebpageURL string  `json:"webpage_url"`

	Thumbnails []Thumbnail `json:"thumbnails"`
	Entries    []Info      `json:"entries"`
}

// Thumbnail is one variant of an item's artwork.
type Thumbnail struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Client executes yt-dlp. The zero value is not usable; construct with New.
type Client struct {
	binary          string
	extractTimeout  time.Duration
	downloadTimeout time.Duration
}

// New creates a yt-dlp client using the binary on PATH.
func New() *Client {
	return &Client{
		binary:          "yt-dlp",
		extractTimeout:  defaultExtractTimeout,
		downloadTimeout: defaultDownloadTimeout,
	}
}

// CheckAvailable verifies that yt-dlp is installed.
func (c *Client) CheckAvailable() error {
	if err := exec.Command(c.binary, "--version").Run(); err != nil {
		return fmt.Errorf("%w: %v", ErrYtDlpNotAvailable, err)
	}
	return nil
}

// Extract resolves a URL into its info dict without downloading. A non-empty
// cookieFile is passed through to the backend.
func (c *Client) Extract(ctx context.Context, url, cookieFile string) (*Info, error) {
	args := []string{"--dump-single-json", "--no-warnings", "--skip-download"}
	if cookieFile != "" {
		args = append(args, "--cookies", cookieFile)
	}
	args = append(args, url)
	return c.runExtract(ctx, args)
}

// ExtractFlat resolves a playlist URL into its entry list without resolving
// each entry. Lightweight: no formats, no per-entry requests.
func (c *Client) ExtractFlat(ctx context.Context, url string) (*Info, error) {
	args := []string{"--dump-single-json", "--no-warnings", "--skip-download", "--flat-playlist", url}
	return c.runExtract(ctx, args)
}

// PlaylistEntryURLs flattens a playlist into its per-entry URLs, in playlist
// order.
func (c *Client) PlaylistEntryURLs(ctx context.Context, url string) ([]string, error) {
	slog.Debug("getting playlist links", "url", url)
	info, err := c.ExtractFlat(ctx, url)
	if err != nil {
		return nil, err
	}
	if len(info.Entries) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoEntries, url)
	}
	urls := make([]string, 0, len(info.Entries))
	for _, entry := range info.Entries {
		entryURL := entry.WebpageURL
		if entryURL == "" {
			entryURL = "https://www.youtube.com/watch?v=" + entry.ID
		}
		slog.Debug("found playlist entry", "url", entryURL)
		urls = append(urls, entryURL)
	}
	return urls, nil
}

// DownloadAudio fetches the best available audio stream for url and
// transcodes it to mp3 at the fixed quality setting. outputTemplate is a
// yt-dlp output template (the extension placeholder is appended if absent).
func (c *Client) DownloadAudio(ctx context.Context, url, outputTemplate, cookieFile string) error {
	ctx, cancel := context.WithTimeout(ctx, c.downloadTimeout)
	defer cancel()

	args := []string{
		"--format", "bestaudio/best",
		"--extract-audio",
		"--audio-format", audioCodec,
		"--audio-quality", audioQuality,
		"--no-warnings",
		"--output", outputTemplate,
	}
	if cookieFile != "" {
		args = append(args, "--cookies", cookieFile)
	}
	args = append(args, url)

	cmd := exec.CommandContext(ctx, c.binary, args...)

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	slog.Info("downloading audio", "url", url, "template", outputTemplate)
	if err := cmd.Run(); err != nil {
		return newYtdlpError(cmd, append(stdoutBuf.Bytes(), stderrBuf.Bytes()...), err)
	}
	slog.Debug("download finished", "url", url)
	return nil
}

func (c *Client) runExtract(ctx context.Context, args []string) (*Info, error) {
	ctx, cancel := context.WithTimeout(ctx, c.extractTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, c.binary, args...)

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	if err := cmd.Run(); err != nil {
		return nil, newYtdlpError(cmd, stderrBuf.Bytes(), err)
	}

	var info Info
	if err := json.Unmarshal(stdoutBuf.Bytes(), &info); err != nil {
		return nil, fmt.Errorf("decode yt-dlp output: %w", err)
	}
	return &info, nil
}
