package osis

import (
	"cmp"
	"slices"

	"github.com/FocuswithJustin/osisreader/core/xml"
)

// MilestoneParser reads documents whose chapters and verses are delimited by
// empty sID/eID marker pairs.
type MilestoneParser struct {
	doc       *xml.Document
	opts      Options
	anomalies *anomalyCounter
}

// NewMilestoneParser returns a parser over doc. The document must not be
// modified while the parser is in use.
func NewMilestoneParser(doc *xml.Document, opts Options) *MilestoneParser {
	return &MilestoneParser{doc: doc, opts: opts.withDefaults(), anomalies: &anomalyCounter{}}
}

// Anomalies returns the malformed-data conditions seen so far.
func (m *MilestoneParser) Anomalies() Anomalies {
	return m.anomalies.snapshot()
}

// query runs a query built from constant templates and escaped literals, so
// a compile error is a programming error. Results are empty in that case.
func (m *MilestoneParser) query(expr string) []*xml.Node {
	nodes, err := m.doc.XPath(expr)
	if err != nil {
		return nil
	}
	return nodes
}

func (m *MilestoneParser) chapterStart(chapterRef string) *xml.Node {
	if chapterRef == "" {
		return nil
	}
	n, err := m.doc.XPathFirst("//chapter[@sID][@osisID=" + xml.Literal(chapterRef) + "]")
	if err != nil {
		return nil
	}
	return n
}

func (m *MilestoneParser) verseStart(verseRef string) *xml.Node {
	if verseRef == "" {
		return nil
	}
	n, err := m.doc.XPathFirst("//verse[@sID]" + idTokenPredicate(verseRef))
	if err != nil {
		return nil
	}
	return n
}

// Chapters lists the chapters of bookID in ascending order with the number
// of verse start markers between each chapter's markers.
func (m *MilestoneParser) Chapters(bookID string) []ChapterSummary {
	if bookID == "" {
		return nil
	}
	starts := m.query("//chapter[@sID][starts-with(@osisID, " + xml.Literal(bookID+".") + ")]")

	var chapters []ChapterSummary
	for _, start := range starts {
		ref := start.Attr("osisID")
		num, ok := markerNumber(start, ref)
		if !ok {
			m.anomalies.unparsableNumber(ref)
			continue
		}
		count := 0
		closed := walkChapter(start, EndID(start.Attr("sID")), func(n *xml.Node) {
			if isVerseStart(n) {
				count++
			}
		})
		if !closed {
			m.anomalies.missingEndMarker(ref)
		}
		chapters = append(chapters, ChapterSummary{Reference: ref, ChapterNumber: num, VerseCount: count})
	}

	slices.SortStableFunc(chapters, func(a, b ChapterSummary) int {
		return cmp.Compare(a.ChapterNumber, b.ChapterNumber)
	})
	return chapters
}

// verseStartState is a verse start marker with the red-letter quotation open
// at that point of the chapter.
type verseStartState struct {
	node  *xml.Node
	quote string
}

// chapterVerses collects the verse start markers of a chapter in document
// order, tracking red-letter state along the way.
func (m *MilestoneParser) chapterVerses(start *xml.Node) []verseStartState {
	quote := openQuoteBefore(start, m.opts.QuoteLookback, m.quoteNodeCap())
	var verses []verseStartState
	closed := walkChapter(start, EndID(start.Attr("sID")), func(n *xml.Node) {
		switch {
		case isVerseStart(n):
			verses = append(verses, verseStartState{node: n, quote: quote})
		case n.IsElement("q") && n.HasAttr("eID"):
			if n.Attr("eID") == quote {
				quote = ""
			}
		case n.IsElement("q") && n.HasAttr("sID") && n.Attr("who") == redLetterSpeaker:
			quote = EndID(n.Attr("sID"))
		}
	})
	if !closed {
		m.anomalies.missingEndMarker(start.Attr("osisID"))
	}
	return verses
}

func (m *MilestoneParser) quoteNodeCap() int {
	return m.opts.QuoteLookback * 64
}

// Verses returns the verses of chapterRef in ascending verse order. Verses
// whose end marker is missing are listed with empty text.
func (m *MilestoneParser) Verses(chapterRef string) []VerseRecord {
	start := m.chapterStart(chapterRef)
	if start == nil {
		return nil
	}

	var verses []VerseRecord
	for _, v := range m.chapterVerses(start) {
		ref := primaryID(v.node.Attr("osisID"))
		num, ok := markerNumber(v.node, ref)
		if !ok {
			m.anomalies.unparsableNumber(ref)
			continue
		}
		verses = append(verses, VerseRecord{
			Reference:   ref,
			VerseNumber: num,
			Text:        m.verseText(v.node, v.quote),
		})
	}

	slices.SortStableFunc(verses, func(a, b VerseRecord) int {
		return cmp.Compare(a.VerseNumber, b.VerseNumber)
	})
	return verses
}

// VerseText returns the formatted text between the start and end markers of
// verseRef, or "" when either marker is missing.
func (m *MilestoneParser) VerseText(verseRef string) string {
	start := m.verseStart(verseRef)
	if start == nil {
		return ""
	}
	return m.verseText(start, openQuoteBefore(start, m.opts.QuoteLookback, m.quoteNodeCap()))
}

// verseText reconstructs the verse opened by start. quote is the end id of a
// red-letter quotation already open at the start marker.
func (m *MilestoneParser) verseText(start *xml.Node, quote string) string {
	endID := EndID(start.Attr("sID"))
	f := newFormatter(m.opts.IncludeNotes)
	if quote != "" {
		f.openQuote(quote)
	}
	found := walkVerse(start,
		func(n *xml.Node) bool { return isEnd(n, "verse", endID) },
		m.opts.VerseWalkCap,
		func(n *xml.Node) bool {
			f.node(n, false)
			return true
		},
		f.space,
	)
	if !found {
		m.anomalies.missingEndMarker(start.Attr("osisID"))
		return ""
	}
	return f.String()
}
