// Package ir provides canonical scripture reference handling for OSIS
// identifiers such as "Gen", "Gen.1" and "Gen.1.1".
package ir

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// Ref represents a canonical scripture reference.
type Ref struct {
	// Book is the OSIS book ID (e.g., "Gen", "Matt", "1John").
	Book string `json:"book"`

	// Chapter is the chapter number (1-indexed, 0 for whole-book references).
	Chapter int `json:"chapter,omitempty"`

	// Verse is the verse number (1-indexed, 0 for whole-chapter references).
	Verse int `json:"verse,omitempty"`

	// VerseEnd is the ending verse for ranges (optional).
	VerseEnd int `json:"verse_end,omitempty"`

	// SubVerse is the verse subdivision (e.g., "a", "b").
	SubVerse string `json:"sub_verse,omitempty"`

	// OSISID is the full OSIS ID string (e.g., "Gen.1.1", "Matt.5.3-12").
	OSISID string `json:"osis_id,omitempty"`
}

// refGrammar is the participle grammar for OSIS-style references.
// Examples: "Gen", "Gen.1", "Gen.1.1", "Gen.1.1a", "Gen.1.1-3", "1John.3.16"
//
//nolint:govet // participle grammar tags are not standard struct tags
type refGrammar struct {
	BookPrefix string       `@Int?`
	BookName   string       `@Ident`
	ChapterRef *chapterPart `( "." @@ )?`
}

//nolint:govet // participle grammar tags are not standard struct tags
type chapterPart struct {
	Chapter  int        `@Int`
	VerseRef *versePart `( "." @@ )?`
}

//nolint:govet // participle grammar tags are not standard struct tags
type versePart struct {
	Verse    int     `@Int`
	SubVerse *string `@SubVerse?`
	Range    *int    `( "-" @Int )?`
}

// refLexer defines the lexer for OSIS references.
// Note: Ident starts with uppercase to distinguish from SubVerse (single lowercase)
var refLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Int", Pattern: `[0-9]+`},
	{Name: "Ident", Pattern: `[A-Z][A-Za-z]*`},
	{Name: "SubVerse", Pattern: `[a-z]`},
	{Name: "Punct", Pattern: `[.\-]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

// refParser is the participle parser for OSIS references.
var refParser = participle.MustBuild[refGrammar](
	participle.Lexer(refLexer),
	participle.Elide("Whitespace"),
)

// ParseRef parses an OSIS-style reference string.
// Supported formats:
//   - "Gen" (book only)
//   - "Gen.1" (book and chapter)
//   - "Gen.1.1" (book, chapter, and verse)
//   - "Gen.1.1a" (with sub-verse)
//   - "Gen.1.1-3" (verse range)
func ParseRef(s string) (*Ref, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty reference string")
	}

	parsed, err := refParser.ParseString("", s)
	if err != nil {
		return nil, fmt.Errorf("invalid reference format: %q: %w", s, err)
	}

	ref := &Ref{
		Book:   parsed.BookPrefix + parsed.BookName,
		OSISID: s,
	}

	if parsed.ChapterRef != nil {
		ref.Chapter = parsed.ChapterRef.Chapter

		if parsed.ChapterRef.VerseRef != nil {
			ref.Verse = parsed.ChapterRef.VerseRef.Verse

			if parsed.ChapterRef.VerseRef.SubVerse != nil {
				ref.SubVerse = *parsed.ChapterRef.VerseRef.SubVerse
			}

			if parsed.ChapterRef.VerseRef.Range != nil {
				ref.VerseEnd = *parsed.ChapterRef.VerseRef.Range
			}
		}
	}

	if parsed.ChapterRef != nil {
		if ref.Chapter < 1 || (parsed.ChapterRef.VerseRef != nil && ref.Verse < 1) {
			return nil, fmt.Errorf("invalid reference format: %q: components must be positive", s)
		}
	}

	return ref, nil
}

// String returns the OSIS ID representation of the reference.
func (r *Ref) String() string {
	if r.OSISID != "" {
		return r.OSISID
	}

	var sb strings.Builder
	sb.WriteString(r.Book)

	if r.Chapter > 0 {
		sb.WriteString(".")
		sb.WriteString(strconv.Itoa(r.Chapter))

		if r.Verse > 0 {
			sb.WriteString(".")
			sb.WriteString(strconv.Itoa(r.Verse))
			sb.WriteString(r.SubVerse)

			if r.VerseEnd > 0 {
				sb.WriteString("-")
				sb.WriteString(strconv.Itoa(r.VerseEnd))
			}
		}
	}

	return sb.String()
}

// ChapterID returns the "Book.Chapter" identifier, or the book alone for
// whole-book references.
func (r *Ref) ChapterID() string {
	if r.Chapter <= 0 {
		return r.Book
	}
	return r.Book + "." + strconv.Itoa(r.Chapter)
}

// VerseID returns the "Book.Chapter.Verse" identifier for verse n of the
// reference's chapter.
func (r *Ref) VerseID(n int) string {
	return r.ChapterID() + "." + strconv.Itoa(n)
}

// IsRange returns true if this reference spans multiple verses.
func (r *Ref) IsRange() bool {
	return r.VerseEnd > 0 && r.VerseEnd > r.Verse
}

// BookOf returns the book segment of a dotted OSIS identifier without running
// the full grammar. It is used on hot paths such as search.
func BookOf(osisID string) string {
	if i := strings.IndexByte(osisID, '.'); i >= 0 {
		return osisID[:i]
	}
	return osisID
}

// LastNumber parses the final dot-separated segment of osisID as a positive
// integer.
func LastNumber(osisID string) (int, bool) {
	seg := osisID
	if i := strings.LastIndexByte(osisID, '.'); i >= 0 {
		seg = osisID[i+1:]
	}
	n, err := strconv.Atoi(seg)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// Split breaks a "Book.Chapter.Verse" identifier into its parts. Missing
// trailing components are returned as zero; ok is false when a present
// numeric component does not parse as a positive integer.
func Split(osisID string) (book string, chapter, verse int, ok bool) {
	parts := strings.Split(osisID, ".")
	book = parts[0]
	if book == "" {
		return "", 0, 0, false
	}
	if len(parts) > 3 {
		return book, 0, 0, false
	}
	if len(parts) >= 2 {
		c, err := strconv.Atoi(parts[1])
		if err != nil || c < 1 {
			return book, 0, 0, false
		}
		chapter = c
	}
	if len(parts) == 3 {
		v, err := strconv.Atoi(parts[2])
		if err != nil || v < 1 {
			return book, chapter, 0, false
		}
		verse = v
	}
	return book, chapter, verse, true
}
