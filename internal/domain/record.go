// Package domain defines the records handed between pipeline stages.
package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Artist unmarshals from either a JSON string or an array of strings;
// extractors report channel credits both ways.
type Artist string

func (a *Artist) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*a = Artist(s)
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*a = Artist(strings.Join(list, ", "))
		return nil
	}
	return fmt.Errorf("artist: expected string or []string, got %s", data)
}

// TrackRecord is the per-item output of the downloader stage.
type TrackRecord struct {
	ThumbnailURL string `json:"Thumbnail URL"`
	Album        string `json:"Album"`
	Artist       Artist `json:"Artist"`
	TrackTitle   string `json:"Track Title"`
	TrackNumber  int    `json:"Track Number"`
	FilePath     string `json:"File Path"`
	Service      string `json:"Service"`
	AlbumURL     string `json:"Album URL,omitempty"`
}

// Incomplete reports whether any of the fields the fallback chain cares
// about (thumbnail, album, artist, title) is still missing or a placeholder.
func (r *TrackRecord) Incomplete() bool {
	for _, v := range []string{r.ThumbnailURL, r.Album, string(r.Artist), r.TrackTitle} {
		if v == "" || v == "N/A" {
			return true
		}
	}
	return false
}

// Validate reports the first missing required field of a downloaded record.
func (r *TrackRecord) Validate() error {
	switch {
	case r.TrackTitle == "":
		return fmt.Errorf("track record: missing track title")
	case r.FilePath == "":
		return fmt.Errorf("track record: missing file path")
	case r.TrackNumber < 1:
		return fmt.Errorf("track record: invalid track number %d", r.TrackNumber)
	}
	return nil
}

// EnrichedRecord is the per-item output of the enricher stage. Every field
// the completion collaborator omits keeps its typed zero value, so the
// embedder can treat absence as "skip the optional frame".
type EnrichedRecord struct {
	Title                string  `json:"title"`
	Subtitle             string  `json:"subtitle"`
	Rating               float64 `json:"rating"`
	Comments             string  `json:"comments"`
	ContributingArtist   string  `json:"contributing_artist"`
	AlbumArtist          string  `json:"album_artist"`
	Album                string  `json:"album"`
	Year                 int     `json:"year"`
	TrackNumber          int     `json:"track_number"`
	DiscNumber           int     `json:"disc_number"`
	Genre                string  `json:"genre"`
	Length               string  `json:"length"`
	BitRate              float64 `json:"bit_rate"`
	Publisher            string  `json:"publisher"`
	EncodedBy            string  `json:"encoded_by"`
	AuthorURL            string  `json:"author_url"`
	Copyright            string  `json:"copyright"`
	ParentalRatingReason string  `json:"parental_rating_reason"`
	Composers            string  `json:"composers"`
	Conductors           string  `json:"conductors"`
	GroupDescription     string  `json:"group_description"`
	Mood                 string  `json:"mood"`
	PartOfSet            string  `json:"part_of_set"`
	InitialKey           string  `json:"initial_key"`
	BPM                  float64 `json:"beats_per_minute_bpm"`
	Protected            bool    `json:"protected"`
	PartOfCompilation    bool    `json:"part_of_compilation"`
	ISRC                 string  `json:"isrc"`
	AlbumArtURL          string  `json:"album_art_url,omitempty"`
	AlbumArtPath         string  `json:"album art path"`
	FilePath             string  `json:"file_path"`
}

// Validate reports the first missing field the embedder cannot work without.
func (r *EnrichedRecord) Validate() error {
	switch {
	case r.Title == "":
		return fmt.Errorf("enriched record: missing title")
	case r.FilePath == "":
		return fmt.Errorf("enriched record: missing file path")
	}
	return nil
}
