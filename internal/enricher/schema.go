package enricher

import "encoding/json"

const metadataFunctionName = "fill_song_metadata"

// Completion is the full field set the completion backend is required to
// return. List-valued fields stay lists here and are flattened to
// comma-joined strings when the record is assembled.
type Completion struct {
	Title                string   `json:"title"`
	Subtitle             string   `json:"subtitle"`
	Rating               float64  `json:"rating"`
	Comments             string   `json:"comments"`
	ContributingArtist   string   `json:"contributing_artist"`
	AlbumArtist          string   `json:"album_artist"`
	Album                string   `json:"album"`
	Year                 int      `json:"year"`
	TrackNumber          int      `json:"track_number"`
	DiscNumber           int      `json:"disc_number"`
	Genre                string   `json:"genre"`
	Length               string   `json:"length"`
	BitRate              float64  `json:"bit_rate"`
	Publisher            string   `json:"publisher"`
	EncodedBy            string   `json:"encoded_by"`
	AuthorURL            string   `json:"author_url"`
	Copyright            string   `json:"copyright"`
	ParentalRatingReason string   `json:"parental_rating_reason"`
	Composers            []string `json:"composers"`
	Conductors           []string `json:"conductors"`
	GroupDescription     string   `json:"group_description"`
	Mood                 string   `json:"mood"`
	PartOfSet            string   `json:"part_of_set"`
	InitialKey           string   `json:"initial_key"`
	BPM                  float64  `json:"beats_per_minute_bpm"`
	Protected            bool     `json:"protected"`
	PartOfCompilation    bool     `json:"part_of_compilation"`
	ISRC                 string   `json:"isrc"`
	AlbumArtURL          string   `json:"spotify_album_art_url"`
}

type property struct {
	Type  string    `json:"type"`
	Items *property `json:"items,omitempty"`
}

type parameters struct {
	Type                 string              `json:"type"`
	Required             []string            `json:"required"`
	Properties           map[string]property `json:"properties"`
	AdditionalProperties bool                `json:"additionalProperties"`
}

var requiredFields = []string{
	"title", "subtitle", "rating", "comments", "contributing_artist",
	"album_artist", "album", "year", "track_number", "genre", "length",
	"bit_rate", "publisher", "encoded_by", "author_url", "copyright",
	"parental_rating_reason", "composers", "conductors", "group_description",
	"mood", "part_of_set", "initial_key", "beats_per_minute_bpm", "protected",
	"part_of_compilation", "disc_number", "isrc", "spotify_album_art_url",
}

var fieldTypes = map[string]property{
	"title":                  {Type: "string"},
	"subtitle":               {Type: "string"},
	"rating":                 {Type: "number"},
	"comments":               {Type: "string"},
	"contributing_artist":    {Type: "string"},
	"album_artist":           {Type: "string"},
	"album":                  {Type: "string"},
	"year":                   {Type: "integer"},
	"track_number":           {Type: "integer"},
	"disc_number":            {Type: "integer"},
	"isrc":                   {Type: "string"},
	"spotify_album_art_url":  {Type: "string"},
	"genre":                  {Type: "string"},
	"length":                 {Type: "string"},
	"bit_rate":               {Type: "number"},
	"publisher":              {Type: "string"},
	"encoded_by":             {Type: "string"},
	"author_url":             {Type: "string"},
	"copyright":              {Type: "string"},
	"parental_rating_reason": {Type: "string"},
	"composers":              {Type: "array", Items: &property{Type: "string"}},
	"conductors":             {Type: "array", Items: &property{Type: "string"}},
	"group_description":      {Type: "string"},
	"mood":                   {Type: "string"},
	"part_of_set":            {Type: "string"},
	"initial_key":            {Type: "string"},
	"beats_per_minute_bpm":   {Type: "number"},
	"protected":              {Type: "boolean"},
	"part_of_compilation":    {Type: "boolean"},
}

// metadataFunction builds the function-calling schema that constrains the
// completion to the full metadata field set.
func metadataFunction() functionDef {
	params, _ := json.Marshal(parameters{
		Type:       "object",
		Required:   requiredFields,
		Properties: fieldTypes,
	})
	return functionDef{
		Name:        metadataFunctionName,
		Description: "Fill in the missing or incorrect metadata for the song details",
		Parameters:  params,
	}
}
