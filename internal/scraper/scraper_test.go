package scraper

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOpenGraph(t *testing.T) {
	tests := []struct {
		name          string
		html          string
		expectedTitle string
		expectedImage string
	}{
		{
			name: "both tags present",
			html: `<html><head>
				<meta property="og:title" content="Aquemini">
				<meta property="og:image" content="https://example.com/art.jpg">
				<title>Aquemini - YouTube Music</title>
			</head><body></body></html>`,
			expectedTitle: "Aquemini",
			expectedImage: "https://example.com/art.jpg",
		},
		{
			name: "title element fallback",
			html: `<html><head>
				<title>Aquemini - Album by OutKast</title>
			</head><body></body></html>`,
			expectedTitle: "Aquemini - Album by OutKast",
			expectedImage: "",
		},
		{
			name: "surrounding whitespace trimmed",
			html: `<html><head>
				<meta property="og:title" content="  Aquemini  ">
				<meta property="og:image" content=" https://example.com/art.jpg ">
			</head></html>`,
			expectedTitle: "Aquemini",
			expectedImage: "https://example.com/art.jpg",
		},
		{
			name:          "empty document",
			html:          `<html><head></head><body></body></html>`,
			expectedTitle: "",
			expectedImage: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta, err := ParseOpenGraph(strings.NewReader(tt.html))

			require.NoError(t, err)
			assert.Equal(t, tt.expectedTitle, meta.Title)
			assert.Equal(t, tt.expectedImage, meta.ImageURL)
		})
	}
}

func TestResolve(t *testing.T) {
	var gotUserAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserAgent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><head>
			<meta property="og:title" content="Aquemini">
			<meta property="og:image" content="https://example.com/art.jpg">
		</head></html>`))
	}))
	defer server.Close()

	title, imageURL, err := New().Resolve(server.URL)

	require.NoError(t, err)
	assert.Equal(t, "Aquemini", title)
	assert.Equal(t, "https://example.com/art.jpg", imageURL)
	assert.Contains(t, gotUserAgent, "Mozilla/5.0")
}

func TestResolveNoMetadata(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><head></head><body>nothing here</body></html>`))
	}))
	defer server.Close()

	_, _, err := New().Resolve(server.URL)

	assert.Error(t, err)
}
