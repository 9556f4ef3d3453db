// Package thumbnail fetches album artwork and prepares square PNG covers.
package thumbnail

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	_ "image/gif"
	_ "image/jpeg"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // thumbnail hosts commonly serve webp
)

// DefaultSize is the target edge length of a prepared cover.
const DefaultSize = 544

// Cropper downloads an image, center-crops it square, and saves the resized
// PNG named after the album.
type Cropper struct {
	size       int
	httpClient *http.Client
}

// New creates a Cropper with the given target size; size <= 0 selects
// DefaultSize.
func New(size int) *Cropper {
	if size <= 0 {
		size = DefaultSize
	}
	return &Cropper{
		size: size,
		httpClient: &http.Client{
			Timeout: 2 * time.Minute,
		},
	}
}

// Crop fetches imageURL, crops the centered square of side min(w, h),
// resizes it to size x size, and writes {outputDir}/{album}.png, creating
// outputDir if absent. Fetch and decode failures propagate.
func (c *Cropper) Crop(ctx context.Context, imageURL, outputDir, album string) error {
	req, err := http.NewRequestWithContext(ctx, "GET", imageURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("image fetch returned status %d", resp.StatusCode)
	}

	img, format, err := image.Decode(resp.Body)
	if err != nil {
		return fmt.Errorf("decode image: %w", err)
	}
	slog.Debug("decoded thumbnail", "url", imageURL, "format", format)

	cropped := CenterSquare(img, c.size)

	if err := os.MkdirAll(outputDir, os.ModePerm); err != nil {
		return fmt.Errorf("failed to create thumbnail directory: %w", err)
	}

	outputPath := filepath.Join(outputDir, album+".png")
	out, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create thumbnail file: %w", err)
	}
	defer out.Close()

	if err := png.Encode(out, cropped); err != nil {
		return fmt.Errorf("encode thumbnail: %w", err)
	}

	slog.Info("saved cropped thumbnail", "path", outputPath, "size", c.size)
	return nil
}

// CenterSquare crops the centered square of side min(w, h) out of img and
// scales it to size x size with Catmull-Rom resampling.
func CenterSquare(img image.Image, size int) image.Image {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	side := width
	if height < side {
		side = height
	}
	left := bounds.Min.X + (width-side)/2
	top := bounds.Min.Y + (height-side)/2
	cropRect := image.Rect(left, top, left+side, top+side)

	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, cropRect, draw.Over, nil)
	return dst
}
