package canon

import (
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// Reference is a parsed human-readable scripture reference resolved to OSIS
// book ids. Zero fields are absent components.
type Reference struct {
	Book       string `json:"book"`
	Chapter    int    `json:"chapter,omitempty"`
	Verse      int    `json:"verse,omitempty"`
	ChapterEnd int    `json:"chapter_end,omitempty"`
	VerseEnd   int    `json:"verse_end,omitempty"`
}

// scriptureRange is the participle grammar for natural-language references.
//
//nolint:govet // participle grammar tags are not standard struct tags
type scriptureRange struct {
	Book         string `@Book`
	ChapterStart *int   `( @Number`
	VerseStart   *int   `( ":" @Number )?`
	ChapterEnd   *int   `( "-" ( @Number`
	VerseEnd     *int   `    ( ":" @Number )? )? )? )?`
}

// Book names: letters with an optional leading ordinal and multi-word names
// such as "Song of Solomon" or "1 John".
var scriptureLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Book", Pattern: `(?:\d\s*)?[A-Za-z]+(?:\s+(?:of\s+(?:the\s+)?)?[A-Za-z]+)*\.?`},
	{Name: "Number", Pattern: `\d+`},
	{Name: "Colon", Pattern: `:`},
	{Name: "Dash", Pattern: `-`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var scriptureParser = participle.MustBuild[scriptureRange](
	participle.Lexer(scriptureLexer),
	participle.Elide("Whitespace"),
)

// ParseScripture parses forms such as "Genesis 1:1", "Gen 1:1-3",
// "Genesis 1", "1 John 3:16", "Song of Solomon 2", "Gen 1:1-2:5" and the OSIS
// form "Gen.1.1". It returns nil when the input does not parse, names an
// unknown book, or carries a zero or backwards range.
func ParseScripture(input string) *Reference {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil
	}

	input = strings.ReplaceAll(input, "\u2013", "-")
	parsed, err := scriptureParser.ParseString("", normalizeSeparators(input))
	if err != nil {
		return nil
	}

	id, ok := Resolve(parsed.Book)
	if !ok {
		return nil
	}
	ref := &Reference{Book: id}

	// "Gen 1:1-5" lexes the 5 as a chapter end; it is the verse end.
	if parsed.VerseStart != nil && parsed.ChapterEnd != nil && parsed.VerseEnd == nil {
		parsed.VerseEnd = parsed.ChapterEnd
		parsed.ChapterEnd = nil
	}

	if parsed.ChapterStart != nil {
		ref.Chapter = *parsed.ChapterStart
		if ref.Chapter < 1 {
			return nil
		}
	}
	if parsed.VerseStart != nil {
		ref.Verse = *parsed.VerseStart
		if ref.Verse < 1 {
			return nil
		}
	}
	if parsed.ChapterEnd != nil {
		ref.ChapterEnd = *parsed.ChapterEnd
		if ref.ChapterEnd < ref.Chapter {
			return nil
		}
		if ref.ChapterEnd == ref.Chapter && parsed.VerseEnd == nil {
			ref.ChapterEnd = 0
		}
	}
	if parsed.VerseEnd != nil {
		ref.VerseEnd = *parsed.VerseEnd
		if ref.VerseEnd < 1 {
			return nil
		}
		// A cross-chapter range needs no ordering between the verse numbers.
		sameChapter := ref.ChapterEnd == 0 || ref.ChapterEnd == ref.Chapter
		if sameChapter && ref.VerseEnd < ref.Verse {
			return nil
		}
		if ref.ChapterEnd == ref.Chapter {
			ref.ChapterEnd = 0
		}
		if ref.ChapterEnd == 0 && ref.VerseEnd == ref.Verse {
			ref.VerseEnd = 0
		}
	}
	return ref
}

// normalizeSeparators rewrites dotted forms to colon form:
// "Gen.1.1" and "Gen 1.1" become "Gen 1:1".
func normalizeSeparators(input string) string {
	parts := strings.Split(input, ".")
	if len(parts) < 2 {
		return input
	}
	book, rest := parts[0], parts[1:]
	for _, p := range rest {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		for _, c := range p {
			if (c < '0' || c > '9') && c != '-' && c != ':' {
				return input
			}
		}
	}
	// "Gen 1.1": the chapter is already attached to the book segment.
	if i := strings.LastIndexByte(book, ' '); i > 0 && isDigits(book[i+1:]) {
		return book + ":" + strings.Join(rest, ":")
	}
	if len(rest) == 1 {
		return book + " " + rest[0]
	}
	return book + " " + rest[0] + ":" + strings.Join(rest[1:], ":")
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// IsRange reports whether the reference spans more than one verse or chapter.
func (r *Reference) IsRange() bool {
	return r.ChapterEnd > 0 || r.VerseEnd > 0
}

// OSISID returns the OSIS identifier of the reference's starting point, e.g.
// "Gen", "Gen.1" or "Gen.1.1".
func (r *Reference) OSISID() string {
	var sb strings.Builder
	sb.WriteString(r.Book)
	if r.Chapter > 0 {
		sb.WriteByte('.')
		sb.WriteString(strconv.Itoa(r.Chapter))
		if r.Verse > 0 {
			sb.WriteByte('.')
			sb.WriteString(strconv.Itoa(r.Verse))
		}
	}
	return sb.String()
}

// String renders the reference in OSIS range notation, e.g. "Gen.1.1-Gen.1.3".
func (r *Reference) String() string {
	start := r.OSISID()
	switch {
	case r.ChapterEnd > 0 && r.VerseEnd > 0:
		return start + "-" + r.Book + "." + strconv.Itoa(r.ChapterEnd) + "." + strconv.Itoa(r.VerseEnd)
	case r.ChapterEnd > 0:
		return start + "-" + r.Book + "." + strconv.Itoa(r.ChapterEnd)
	case r.VerseEnd > 0:
		return start + "-" + r.Book + "." + strconv.Itoa(r.Chapter) + "." + strconv.Itoa(r.VerseEnd)
	}
	return start
}
