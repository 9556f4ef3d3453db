// Package scraper resolves album page metadata from HTML when the
// extraction backend cannot. It reads the page's OpenGraph tags.
package scraper

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly"
)

const userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// PageMeta is the metadata read from an album page.
type PageMeta struct {
	Title    string
	ImageURL string
}

// PageScraper fetches album pages with a browser-shaped request profile.
type PageScraper struct{}

// New creates a PageScraper.
func New() *PageScraper {
	return &PageScraper{}
}

// Resolve fetches the page at url and returns its OpenGraph title and image.
func (s *PageScraper) Resolve(url string) (string, string, error) {
	c := colly.NewCollector(
		colly.AllowURLRevisit(),
		colly.Async(false),
	)

	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("User-Agent", userAgent)
		r.Headers.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
		r.Headers.Set("Accept-Language", "en-US,en;q=0.5")
		r.Headers.Set("Referer", "https://www.google.com/")
	})

	var meta PageMeta
	var parseErr error

	c.OnResponse(func(r *colly.Response) {
		meta, parseErr = ParseOpenGraph(bytes.NewReader(r.Body))
	})

	c.OnError(func(r *colly.Response, err error) {
		slog.Warn("album page request failed", "url", r.Request.URL, "error", err)
	})

	if err := c.Visit(url); err != nil {
		return "", "", fmt.Errorf("visit album page: %w", err)
	}
	if parseErr != nil {
		return "", "", parseErr
	}
	if meta.Title == "" && meta.ImageURL == "" {
		return "", "", fmt.Errorf("no opengraph metadata at %s", url)
	}
	return meta.Title, meta.ImageURL, nil
}

// ParseOpenGraph extracts og:title and og:image from an HTML document,
// falling back to the <title> element for the title.
func ParseOpenGraph(r io.Reader) (PageMeta, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return PageMeta{}, fmt.Errorf("parse album page: %w", err)
	}

	var meta PageMeta
	if content, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok {
		meta.Title = strings.TrimSpace(content)
	}
	if content, ok := doc.Find(`meta[property="og:image"]`).Attr("content"); ok {
		meta.ImageURL = strings.TrimSpace(content)
	}
	if meta.Title == "" {
		meta.Title = strings.TrimSpace(doc.Find("title").First().Text())
	}
	return meta, nil
}
