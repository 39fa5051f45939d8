package osis

import (
	"cmp"
	"slices"

	"github.com/FocuswithJustin/osisreader/core/xml"
)

// ContainedParser reads documents where each chapter and verse is a single
// element identified by its osisID.
type ContainedParser struct {
	doc       *xml.Document
	opts      Options
	anomalies *anomalyCounter
}

// NewContainedParser returns a parser over doc. The document must not be
// modified while the parser is in use.
func NewContainedParser(doc *xml.Document, opts Options) *ContainedParser {
	return &ContainedParser{doc: doc, opts: opts.withDefaults(), anomalies: &anomalyCounter{}}
}

// Anomalies returns the malformed-data conditions seen so far.
func (c *ContainedParser) Anomalies() Anomalies {
	return c.anomalies.snapshot()
}

func (c *ContainedParser) query(expr string) []*xml.Node {
	nodes, err := c.doc.XPath(expr)
	if err != nil {
		return nil
	}
	return nodes
}

func (c *ContainedParser) chapter(chapterRef string) *xml.Node {
	if chapterRef == "" {
		return nil
	}
	n, err := c.doc.XPathFirst("//chapter[@osisID=" + xml.Literal(chapterRef) + "][not(@sID)][not(@eID)]")
	if err != nil {
		return nil
	}
	return n
}

// Chapters lists the chapters of bookID in ascending order.
func (c *ContainedParser) Chapters(bookID string) []ChapterSummary {
	if bookID == "" {
		return nil
	}
	nodes := c.query("//chapter[@osisID][not(@sID)][not(@eID)][starts-with(@osisID, " + xml.Literal(bookID+".") + ")]")

	var chapters []ChapterSummary
	for _, n := range nodes {
		ref := n.Attr("osisID")
		num, ok := lastNumber(ref)
		if !ok {
			c.anomalies.unparsableNumber(ref)
			continue
		}
		verses, _ := c.doc.Select(n, ".//verse[@osisID]")
		chapters = append(chapters, ChapterSummary{Reference: ref, ChapterNumber: num, VerseCount: len(verses)})
	}

	slices.SortStableFunc(chapters, func(a, b ChapterSummary) int {
		return cmp.Compare(a.ChapterNumber, b.ChapterNumber)
	})
	return chapters
}

// Verses returns the verses of chapterRef in ascending verse order.
func (c *ContainedParser) Verses(chapterRef string) []VerseRecord {
	ch := c.chapter(chapterRef)
	if ch == nil {
		return nil
	}
	nodes, _ := c.doc.Select(ch, ".//verse[@osisID]")

	verses := make([]VerseRecord, 0, len(nodes))
	for _, n := range nodes {
		ref := primaryID(n.Attr("osisID"))
		num, ok := lastNumber(ref)
		if !ok {
			c.anomalies.unparsableNumber(ref)
			continue
		}
		verses = append(verses, VerseRecord{
			Reference:   ref,
			VerseNumber: num,
			Text:        extract(n, c.opts.IncludeNotes),
		})
	}

	slices.SortStableFunc(verses, func(a, b VerseRecord) int {
		return cmp.Compare(a.VerseNumber, b.VerseNumber)
	})
	return verses
}

// VersesParagraphStyle returns the chapter as a single paragraph group, since
// contained documents carry no paragraph structure. A chapter without verses
// yields no groups.
func (c *ContainedParser) VersesParagraphStyle(chapterRef string) []ParagraphGroup {
	verses := c.Verses(chapterRef)
	if len(verses) == 0 {
		return nil
	}
	group := ParagraphGroup{Verses: make([]ParagraphVerse, len(verses))}
	for i, v := range verses {
		group.Verses[i] = ParagraphVerse{Reference: v.Reference, VerseNumber: v.VerseNumber, Text: v.Text}
	}
	group.CombinedText = combineText(group.Verses)
	return []ParagraphGroup{group}
}

// VerseText returns the formatted text of verseRef, or "" when absent.
func (c *ContainedParser) VerseText(verseRef string) string {
	if verseRef == "" {
		return ""
	}
	n, err := c.doc.XPathFirst("//verse[@osisID][not(@sID)]" + idTokenPredicate(verseRef))
	if err != nil || n == nil {
		return ""
	}
	return extract(n, c.opts.IncludeNotes)
}
