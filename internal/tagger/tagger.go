// Package tagger writes enriched metadata and cover art into the ID3v2 tag
// container of downloaded audio files.
package tagger

import (
	"fmt"
	"log/slog"
	"math/big"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/bogem/id3v2"

	"github.com/kmerrill/songpipe/internal/domain"
)

// ID3v2.3 is the baseline for maximum playback compatibility.
const tagVersion = 3

// Leading bytes inspected when sniffing the cover art MIME type.
const sniffLimit = 2048

// POPM requires an identity; the rating has no meaningful owner here.
const ratingEmail = "user@example.com"

// Tagger is the fourth pipeline stage.
type Tagger struct{}

// New creates a Tagger.
func New() *Tagger {
	return &Tagger{}
}

// EmbedAll writes tags for every record. A file that cannot be opened is
// logged and skipped; other records are unaffected. The number of
// successfully tagged files is returned.
func (t *Tagger) EmbedAll(records []domain.EnrichedRecord) int {
	tagged := 0
	for _, record := range records {
		if err := t.Embed(record); err != nil {
			slog.Error("tag embedding failed", "file", record.FilePath, "error", err)
			continue
		}
		tagged++
	}
	return tagged
}

// Embed opens the record's audio file and writes the full tag set plus
// cover art. Only a file-open failure is terminal; a failed first save or a
// missing/unsupported art file still leaves a tagged file behind.
func (t *Tagger) Embed(record domain.EnrichedRecord) error {
	tag, err := id3v2.Open(record.FilePath, id3v2.Options{Parse: true})
	if err != nil {
		return fmt.Errorf("open tag container: %w", err)
	}
	defer tag.Close()

	tag.SetVersion(tagVersion)

	t.writeRequiredFrames(tag, record)
	t.writeOptionalFrames(tag, record)

	// First save point: scalar frames land even if art embedding fails.
	if err := tag.Save(); err != nil {
		slog.Warn("saving scalar frames failed, still attempting art", "file", record.FilePath, "error", err)
	}

	t.embedArtwork(tag, record)

	if err := tag.Save(); err != nil {
		return fmt.Errorf("save tag container: %w", err)
	}
	slog.Info("metadata embedded", "file", record.FilePath)
	return nil
}

// writeRequiredFrames writes the always-present fields.
func (t *Tagger) writeRequiredFrames(tag *id3v2.Tag, record domain.EnrichedRecord) {
	tag.SetTitle(record.Title)
	tag.SetArtist(record.ContributingArtist)
	tag.SetAlbum(record.Album)
	tag.AddTextFrame("TYER", id3v2.EncodingUTF8, strconv.Itoa(record.Year))
	tag.AddTextFrame("TRCK", id3v2.EncodingUTF8, strconv.Itoa(record.TrackNumber))
	tag.SetGenre(record.Genre)
}

// writeOptionalFrames writes each optional field only when truthy.
func (t *Tagger) writeOptionalFrames(tag *id3v2.Tag, record domain.EnrichedRecord) {
	if record.Comments != "" {
		tag.AddCommentFrame(id3v2.CommentFrame{
			Encoding: id3v2.EncodingUTF8,
			Language: "eng",
			Text:     record.Comments,
		})
	}
	if record.Publisher != "" {
		tag.AddTextFrame("TPUB", id3v2.EncodingUTF8, record.Publisher)
	}
	if record.EncodedBy != "" {
		tag.AddTextFrame("TENC", id3v2.EncodingUTF8, record.EncodedBy)
	}
	if record.AuthorURL != "" {
		// No author-URL text frame exists; the copyright URL frame is the
		// closest fit. URL frames carry a raw latin-1 body.
		tag.AddFrame("WCOP", id3v2.UnknownFrame{Body: []byte(record.AuthorURL)})
	}
	if record.Copyright != "" {
		tag.AddTextFrame("TCOP", id3v2.EncodingUTF8, record.Copyright)
	}
	if record.ParentalRatingReason != "" {
		addUserDefined(tag, "Parental Rating", record.ParentalRatingReason)
	}
	if record.Composers != "" {
		tag.AddTextFrame("TCOM", id3v2.EncodingUTF8, record.Composers)
	}
	if record.Conductors != "" {
		tag.AddTextFrame("TPE3", id3v2.EncodingUTF8, record.Conductors)
	}
	if record.GroupDescription != "" {
		addUserDefined(tag, "Group Description", record.GroupDescription)
	}
	if record.Mood != "" {
		tag.AddTextFrame("TMOO", id3v2.EncodingUTF8, record.Mood)
	}
	if record.PartOfSet != "" {
		tag.AddTextFrame("TPOS", id3v2.EncodingUTF8, record.PartOfSet)
	}
	if record.InitialKey != "" {
		tag.AddTextFrame("TKEY", id3v2.EncodingUTF8, record.InitialKey)
	}
	if record.BPM != 0 {
		tag.AddTextFrame("TBPM", id3v2.EncodingUTF8, strconv.Itoa(int(record.BPM)))
	}
	if record.Protected {
		addUserDefined(tag, "Protected", "True")
	}
	if record.PartOfCompilation {
		// iTunes compilation marker, unofficial but widely recognized.
		addUserDefined(tag, "TCMP", "1")
	}
	if record.Subtitle != "" {
		tag.AddTextFrame("TSST", id3v2.EncodingUTF8, record.Subtitle)
	}
	if record.Rating != 0 {
		tag.AddFrame("POPM", id3v2.PopularimeterFrame{
			Email:   ratingEmail,
			Rating:  clampRating(record.Rating),
			Counter: big.NewInt(0),
		})
	}
	if record.AlbumArtist != "" {
		tag.AddTextFrame("TPE2", id3v2.EncodingUTF8, record.AlbumArtist)
	}
	if record.DiscNumber != 0 {
		tag.AddTextFrame("TPOS", id3v2.EncodingUTF8, strconv.Itoa(record.DiscNumber))
	}
	if record.Length != "" {
		if millis, err := lengthToMillis(record.Length); err != nil {
			slog.Warn("unparseable track length", "length", record.Length, "error", err)
		} else {
			tag.AddTextFrame("TLEN", id3v2.EncodingUTF8, strconv.FormatInt(millis, 10))
		}
	}
	if record.BitRate != 0 {
		// No standard frame carries bit rate.
		addUserDefined(tag, "Bitrate", strconv.Itoa(int(record.BitRate)))
	}
	if record.ISRC != "" {
		tag.AddTextFrame("TSRC", id3v2.EncodingUTF8, record.ISRC)
	}
}

// embedArtwork reads the record's art file and attaches it as front cover
// when the sniffed type is JPEG or PNG. Any failure here is non-fatal.
func (t *Tagger) embedArtwork(tag *id3v2.Tag, record domain.EnrichedRecord) {
	if record.AlbumArtPath == "" {
		return
	}

	data, err := os.ReadFile(record.AlbumArtPath)
	if err != nil {
		slog.Warn("album art not readable", "path", record.AlbumArtPath, "error", err)
		return
	}

	mimeType := sniffMIME(data)
	if mimeType != "image/jpeg" && mimeType != "image/png" {
		slog.Warn("unsupported album art format, skipping embed", "path", record.AlbumArtPath, "mime", mimeType)
		return
	}

	tag.DeleteFrames(tag.CommonID("Attached picture"))
	tag.AddAttachedPicture(id3v2.PictureFrame{
		Encoding:    id3v2.EncodingUTF8,
		MimeType:    mimeType,
		PictureType: id3v2.PTFrontCover,
		Description: "Cover",
		Picture:     data,
	})
}

func addUserDefined(tag *id3v2.Tag, description, value string) {
	tag.AddUserDefinedTextFrame(id3v2.UserDefinedTextFrame{
		Encoding:    id3v2.EncodingUTF8,
		Description: description,
		Value:       value,
	})
}

// sniffMIME detects the content type from at most the first 2KB.
func sniffMIME(data []byte) string {
	if len(data) > sniffLimit {
		data = data[:sniffLimit]
	}
	mimeType := http.DetectContentType(data)
	if idx := strings.Index(mimeType, ";"); idx != -1 {
		mimeType = mimeType[:idx]
	}
	return mimeType
}

// lengthToMillis converts a MM:SS duration string to milliseconds.
func lengthToMillis(length string) (int64, error) {
	parts := strings.Split(length, ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("expected MM:SS, got %q", length)
	}
	mins, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, fmt.Errorf("invalid minutes in %q: %w", length, err)
	}
	secs, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, fmt.Errorf("invalid seconds in %q: %w", length, err)
	}
	return int64(mins*60+secs) * 1000, nil
}

func clampRating(rating float64) uint8 {
	if rating < 0 {
		return 0
	}
	if rating > 255 {
		return 255
	}
	return uint8(rating)
}
