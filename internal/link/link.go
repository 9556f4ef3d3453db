// Package link classifies source URLs by service and media kind and applies
// the domain rewrites the extraction backend needs.
package link

import (
	"net/url"
	"strings"
)

// Media kinds a source URL can resolve to.
const (
	MediaTrack    = "track"
	MediaAlbum    = "album"
	MediaPlaylist = "playlist"
	MediaArtist   = "artist"
	MediaUnknown  = "unknown"
)

// Service tags.
const (
	ServiceYouTube      = "youtube"
	ServiceYouTubeMusic = "youtube_music"
)

// NormalizeYouTube rewrites music-service URLs to the general-purpose domain.
// Both domains expose the same catalog, but only www.youtube.com reliably
// yields playable audio streams.
func NormalizeYouTube(rawURL string) string {
	return strings.ReplaceAll(rawURL, "music.youtube.com", "www.youtube.com")
}

// HasPlaylistMarker reports whether the URL carries a playlist query marker.
func HasPlaylistMarker(rawURL string) bool {
	return strings.Contains(rawURL, "list=")
}

// DetectService returns the service tag for a URL.
func DetectService(rawURL string) string {
	if strings.Contains(rawURL, "music.youtube.com") {
		return ServiceYouTubeMusic
	}
	return ServiceYouTube
}

// DetectMedia classifies a YouTube-family URL into a media kind from its
// path and query shape.
func DetectMedia(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return MediaUnknown
	}
	path := strings.ToLower(u.Path)
	query := u.Query()

	switch {
	case query.Has("list"):
		return MediaAlbum
	case query.Has("v"), strings.HasPrefix(path, "/watch"):
		return MediaTrack
	case strings.HasPrefix(path, "/channel/"),
		strings.HasPrefix(path, "/user/"),
		strings.HasPrefix(path, "/@"):
		return MediaArtist
	}
	return MediaUnknown
}
