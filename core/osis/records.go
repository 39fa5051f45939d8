package osis

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/FocuswithJustin/osisreader/core/canon"
	"github.com/FocuswithJustin/osisreader/internal/logging"
)

// Style is the structural encoding of verse and chapter boundaries.
type Style int

const (
	// StyleContained documents wrap each verse in a single element.
	StyleContained Style = iota
	// StyleMilestone documents mark boundaries with empty sID/eID pairs.
	StyleMilestone
)

func (s Style) String() string {
	switch s {
	case StyleContained:
		return "contained"
	case StyleMilestone:
		return "milestone"
	default:
		return fmt.Sprintf("Style(%d)", int(s))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Style) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// ChapterSummary describes one chapter of a book.
type ChapterSummary struct {
	Reference     string `json:"reference"`
	ChapterNumber int    `json:"chapter_number"`
	VerseCount    int    `json:"verse_count"`
}

// VerseRecord is the formatted text of one verse.
type VerseRecord struct {
	Reference   string `json:"reference"`
	VerseNumber int    `json:"verse_number"`
	Text        string `json:"text"`
}

// ParagraphVerse is a verse entry inside a paragraph group. Title holds a
// section heading that precedes the verse.
type ParagraphVerse struct {
	Reference   string `json:"reference"`
	VerseNumber int    `json:"verse_number"`
	Text        string `json:"text"`
	Title       string `json:"title,omitempty"`
}

// Paragraph group types.
const (
	GroupPoetry          = "poetry"
	GroupLineBreak       = "line_break"
	GroupIndividualVerse = "individual_verse"
)

// ParagraphGroup is one rendering unit of a chapter. Type is empty for
// prose paragraphs.
type ParagraphGroup struct {
	Verses       []ParagraphVerse `json:"verses"`
	CombinedText string           `json:"combined_text"`
	Type         string           `json:"type,omitempty"`
}

// SearchHit is a verse matching a search term. Context is Text with every
// occurrence of the term wrapped in <mark>.
type SearchHit struct {
	Reference string `json:"reference"`
	BookID    string `json:"book_id"`
	Chapter   int    `json:"chapter"`
	Verse     int    `json:"verse"`
	Text      string `json:"text"`
	Context   string `json:"context"`
}

// BookSummary describes a book present in the loaded document.
type BookSummary struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Testament canon.Testament `json:"testament,omitempty"`
	Order     int             `json:"order,omitempty"`
	Apocrypha bool            `json:"apocrypha"`
}

// Metadata describes the loaded document.
type Metadata struct {
	ID          string    `json:"id"`
	Work        string    `json:"work"`
	Title       string    `json:"title,omitempty"`
	Language    string    `json:"language,omitempty"`
	RefSystem   string    `json:"ref_system,omitempty"`
	Publisher   string    `json:"publisher,omitempty"`
	Rights      string    `json:"rights,omitempty"`
	Description string    `json:"description,omitempty"`
	Style       Style     `json:"style"`
	Size        int64     `json:"size"`
	Fingerprint string    `json:"fingerprint"`
	LoadedAt    time.Time `json:"loaded_at"`
}

// Anomalies counts malformed-data conditions absorbed by the parsers.
type Anomalies struct {
	MissingEndMarkers int64 `json:"missing_end_markers"`
	BadNumbers        int64 `json:"bad_numbers"`
}

// Total returns the sum of all counters.
func (a Anomalies) Total() int64 {
	return a.MissingEndMarkers + a.BadNumbers
}

type anomalyCounter struct {
	missingEnd atomic.Int64
	badNumber  atomic.Int64
}

func (c *anomalyCounter) missingEndMarker(ref string) {
	c.missingEnd.Add(1)
	logging.MarkerAnomaly("missing_end_marker", ref)
}

func (c *anomalyCounter) unparsableNumber(ref string) {
	c.badNumber.Add(1)
	logging.MarkerAnomaly("unparsable_number", ref)
}

func (c *anomalyCounter) snapshot() Anomalies {
	return Anomalies{
		MissingEndMarkers: c.missingEnd.Load(),
		BadNumbers:        c.badNumber.Load(),
	}
}
