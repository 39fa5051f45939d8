package osis

import (
	"context"
	"encoding/hex"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/zeebo/blake3"

	"github.com/FocuswithJustin/osisreader/core/canon"
	"github.com/FocuswithJustin/osisreader/core/errors"
	"github.com/FocuswithJustin/osisreader/core/ir"
	"github.com/FocuswithJustin/osisreader/core/xml"
	"github.com/FocuswithJustin/osisreader/internal/logging"
)

// Parser is the operation set shared by both document styles.
type Parser interface {
	Chapters(bookID string) []ChapterSummary
	Verses(chapterRef string) []VerseRecord
	VersesParagraphStyle(chapterRef string) []ParagraphGroup
	VerseText(verseRef string) string
	SearchVerses(term string, limit int) []SearchHit
}

var (
	_ Parser = (*ContainedParser)(nil)
	_ Parser = (*MilestoneParser)(nil)
	_ Parser = (*Reader)(nil)
)

// DetectStyle reports StyleMilestone when any verse element carries an sID
// attribute, and StyleContained otherwise.
func DetectStyle(doc *xml.Document) Style {
	if doc == nil {
		return StyleContained
	}
	n, err := doc.XPathFirst("//verse[@sID]")
	if err == nil && n != nil {
		return StyleMilestone
	}
	return StyleContained
}

// Reader answers queries against one loaded OSIS document. The style is
// detected once at construction. A Reader is safe for concurrent use as long
// as the document is not modified.
type Reader struct {
	id        string
	doc       *xml.Document
	style     Style
	parser    Parser
	opts      Options
	meta      Metadata
	anomalies *anomalyCounter
}

// New builds a Reader over doc. It fails only when doc is nil or is not an
// OSIS document.
func New(doc *xml.Document, opts Options) (*Reader, error) {
	if doc == nil {
		return nil, errors.NewValidation("document", "must not be nil")
	}
	h := blake3.New()
	if _, err := doc.WriteTo(h); err != nil {
		return nil, errors.Wrap(err, "fingerprinting document")
	}
	return newReader(doc, opts, hex.EncodeToString(h.Sum(nil)))
}

func newReader(doc *xml.Document, opts Options, fingerprint string) (*Reader, error) {
	root := doc.Root()
	if root == nil || (root.Name() != "osis" && root.Name() != "osisText") {
		name := ""
		if root != nil {
			name = root.Name()
		}
		return nil, errors.NewUnsupported("document", "root element "+strconv.Quote(name)+" is not osis")
	}

	opts = opts.withDefaults()
	r := &Reader{
		id:    uuid.New().String(),
		doc:   doc,
		style: DetectStyle(doc),
		opts:  opts,
	}
	switch r.style {
	case StyleMilestone:
		p := NewMilestoneParser(doc, opts)
		r.parser, r.anomalies = p, p.anomalies
	default:
		p := NewContainedParser(doc, opts)
		r.parser, r.anomalies = p, p.anomalies
	}
	r.meta = r.readMetadata()
	r.meta.Fingerprint = fingerprint
	return r, nil
}

// ID returns the identifier assigned to this Reader at construction.
func (r *Reader) ID() string { return r.id }

// Style returns the detected document style.
func (r *Reader) Style() Style { return r.style }

// Options returns the effective parser options.
func (r *Reader) Options() Options { return r.opts }

// Metadata returns the document description read at construction.
func (r *Reader) Metadata() Metadata { return r.meta }

// Anomalies returns the malformed-data conditions seen so far.
func (r *Reader) Anomalies() Anomalies { return r.anomalies.snapshot() }

// Chapters lists the chapters of bookID in ascending order.
func (r *Reader) Chapters(bookID string) []ChapterSummary {
	return r.parser.Chapters(bookID)
}

// Verses returns the verses of chapterRef in ascending order.
func (r *Reader) Verses(chapterRef string) []VerseRecord {
	return r.parser.Verses(chapterRef)
}

// VersesParagraphStyle returns the verses of chapterRef grouped for display.
func (r *Reader) VersesParagraphStyle(chapterRef string) []ParagraphGroup {
	return r.parser.VersesParagraphStyle(chapterRef)
}

// VerseText returns the formatted text of verseRef, or "".
func (r *Reader) VerseText(verseRef string) string {
	return r.parser.VerseText(verseRef)
}

// SearchVerses returns up to limit verses containing term.
func (r *Reader) SearchVerses(term string, limit int) []SearchHit {
	return r.SearchVersesContext(context.Background(), term, limit)
}

// SearchVersesContext is SearchVerses with the request id of ctx attached to
// the completion log entry. The search itself is not cancellable.
func (r *Reader) SearchVersesContext(ctx context.Context, term string, limit int) []SearchHit {
	start := time.Now()
	hits := r.parser.SearchVerses(term, limit)
	logging.SearchCompletedContext(ctx, term, len(hits), time.Since(start), "style", r.style.String())
	return hits
}

// Books lists the books present in the document in document order. Book
// divisions are used when present; otherwise books are inferred from the
// chapter identifiers.
func (r *Reader) Books() []BookSummary {
	seen := make(map[string]bool)
	var books []BookSummary
	add := func(id string) {
		if id == "" || seen[id] {
			return
		}
		seen[id] = true
		books = append(books, bookSummary(id))
	}

	divs, _ := r.doc.XPath("//div[@type='book'][@osisID]")
	for _, n := range divs {
		add(primaryID(n.Attr("osisID")))
	}
	if len(books) > 0 {
		return books
	}

	chapters, _ := r.doc.XPath("//chapter[@osisID]")
	for _, n := range chapters {
		add(ir.BookOf(primaryID(n.Attr("osisID"))))
	}
	return books
}

// AllBooks returns the static canon, independent of any document.
func AllBooks() []BookSummary {
	all := canon.Books()
	books := make([]BookSummary, len(all))
	for i, b := range all {
		books[i] = BookSummary{ID: b.ID, Name: b.Name, Testament: b.Testament, Order: b.Order, Apocrypha: b.IsApocrypha()}
	}
	return books
}

func bookSummary(id string) BookSummary {
	b, ok := canon.Lookup(id)
	if !ok {
		return BookSummary{ID: id, Name: id}
	}
	return BookSummary{ID: b.ID, Name: b.Name, Testament: b.Testament, Order: b.Order, Apocrypha: b.IsApocrypha()}
}

// ParseReference parses a human reference such as "Genesis 1:1-3". It
// returns nil when the input is not understood.
func (r *Reader) ParseReference(input string) *canon.Reference {
	return canon.ParseScripture(input)
}

// Passage returns the verses covered by ref: a single verse, a verse range,
// whole chapters or a cross-chapter range. A book-only reference covers the
// whole book. Missing chapters and verses are skipped.
func (r *Reader) Passage(ref *canon.Reference) []VerseRecord {
	if ref == nil || ref.Book == "" {
		return nil
	}

	first, last := ref.Chapter, ref.ChapterEnd
	if first == 0 {
		chapters := r.Chapters(ref.Book)
		if len(chapters) == 0 {
			return nil
		}
		first, last = chapters[0].ChapterNumber, chapters[len(chapters)-1].ChapterNumber
	}
	if last < first {
		last = first
	}

	startVerse, endVerse := ref.Verse, ref.VerseEnd
	if ref.ChapterEnd == 0 && endVerse == 0 {
		endVerse = startVerse
	}

	var verses []VerseRecord
	for c := first; c <= last; c++ {
		for _, v := range r.Verses(ref.Book + "." + strconv.Itoa(c)) {
			if c == first && startVerse > 0 && v.VerseNumber < startVerse {
				continue
			}
			if c == last && endVerse > 0 && v.VerseNumber > endVerse {
				continue
			}
			verses = append(verses, v)
		}
	}
	return verses
}

// readMetadata collects the osisText attributes and the header work entry
// describing the document.
func (r *Reader) readMetadata() Metadata {
	meta := Metadata{
		ID:       r.id,
		Style:    r.style,
		Size:     r.doc.Size(),
		LoadedAt: time.Now(),
	}

	text, _ := r.doc.XPathFirst("//osisText")
	if text == nil {
		return meta
	}
	meta.Work = text.Attr("osisIDWork")
	meta.Language = text.LocalAttr("lang")
	meta.RefSystem = text.Attr("osisRefWork")

	var work *xml.Node
	if meta.Work != "" {
		work, _ = r.doc.XPathFirst("//header/work[@osisWork=" + xml.Literal(meta.Work) + "]")
	}
	if work == nil {
		work, _ = r.doc.XPathFirst("//header/work")
	}
	if work == nil {
		return meta
	}

	field := func(name string) string {
		nodes, _ := r.doc.Select(work, name)
		if len(nodes) == 0 {
			return ""
		}
		return collapseSpace(nodes[0].InnerText())
	}
	meta.Title = field("title")
	meta.Publisher = field("publisher")
	meta.Rights = field("rights")
	meta.Description = field("description")
	if meta.Language == "" {
		meta.Language = field("language")
	}
	if rs := field("refSystem"); rs != "" {
		meta.RefSystem = rs
	}
	return meta
}
