package osis

import (
	"strings"

	"github.com/FocuswithJustin/osisreader/core/xml"
)

// VersesParagraphStyle groups the verses of chapterRef by the paragraphs,
// line groups and bare line breaks between the chapter's markers. Verses
// outside any paragraph form individual_verse groups, and a title before a
// verse is attached to that verse. A verse that spans several paragraphs is
// listed once, in the paragraph where its text begins.
func (m *MilestoneParser) VersesParagraphStyle(chapterRef string) []ParagraphGroup {
	start := m.chapterStart(chapterRef)
	if start == nil {
		return nil
	}
	b := &paragraphBuilder{
		m:     m,
		endID: EndID(start.Attr("sID")),
		cur:   -1,
		quote: openQuoteBefore(start, m.opts.QuoteLookback, m.quoteNodeCap()),
	}
	b.blocks(start)
	return b.groups
}

type paragraphBuilder struct {
	m         *MilestoneParser
	endID     string
	groups    []ParagraphGroup
	cur       int    // group being filled, -1 between groups
	title     string // heading waiting for the next verse
	quote     string // red-letter quotation open between verses
	verse     *openVerse
	paragraph bool // inside a milestone paragraph
	done      bool
}

// openVerse is a verse whose end marker has not been reached. Its entry is
// created once it has text; group is -1 until then.
type openVerse struct {
	ref   string
	num   int
	endID string
	title string
	f     *formatter
	group int
	index int
}

// blocks walks the top level of the chapter.
func (b *paragraphBuilder) blocks(start *xml.Node) {
	n := following(start, nil)
	for n != nil && !b.done {
		if n.Kind() != xml.KindElement {
			b.inline(n)
			n = following(n, nil)
			continue
		}

		switch {
		case isEnd(n, "chapter", b.endID):
			b.done = true
			continue
		case isChapterStart(n):
			b.m.anomalies.missingEndMarker(b.endID)
			b.done = true
			continue
		case isParagraphMarker(n) && n.HasAttr("sID"):
			b.closeGroup()
			b.openGroup("")
			b.paragraph = true
		case isParagraphMarker(n) && n.HasAttr("eID"):
			b.closeGroup()
			b.paragraph = false
		case n.IsElement("p"):
			b.group(n, "")
		case n.IsElement("lg"):
			b.group(n, GroupPoetry)
		case n.IsElement("lb") && !b.breaksInline():
			b.closeGroup()
			b.groups = append(b.groups, ParagraphGroup{
				Verses:       []ParagraphVerse{},
				CombinedText: lineBreak,
				Type:         GroupLineBreak,
			})
		case n.IsElement("title") && b.verse == nil:
			b.title = extract(n, b.m.opts.IncludeNotes)
		case isVerseStart(n) && b.paragraph && b.cur >= 0:
			b.startVerse(n)
		case isVerseStart(n):
			b.closeGroup()
			b.startVerse(n)
			b.openGroup(GroupIndividualVerse)
		case n.IsElement("verse") && n.HasAttr("eID"):
			b.endVerse(n.Attr("eID"))
		case n.IsElement("div") || hasMarker(n):
			// Sections and other wrappers are transparent.
			if c := n.FirstChild(); c != nil {
				n = c
				continue
			}
		default:
			b.inline(n)
		}
		n = following(n, nil)
	}
	b.finish()
}

// group turns one paragraph or line group into a ParagraphGroup.
func (b *paragraphBuilder) group(n *xml.Node, kind string) {
	b.closeGroup()
	b.openGroup(kind)
	b.scan(n)
	b.closeGroup()
}

// scan walks the children of a paragraph-level container.
func (b *paragraphBuilder) scan(n *xml.Node) {
	for c := n.FirstChild(); c != nil && !b.done; c = c.NextSibling() {
		if c.Kind() != xml.KindElement {
			b.inline(c)
			continue
		}
		switch {
		case isEnd(c, "chapter", b.endID):
			b.done = true
		case isChapterStart(c):
			b.m.anomalies.missingEndMarker(b.endID)
			b.done = true
		case isVerseStart(c):
			b.startVerse(c)
		case c.IsElement("verse") && c.HasAttr("eID"):
			b.endVerse(c.Attr("eID"))
		case c.IsElement("title") && b.verse == nil:
			b.title = extract(c, b.m.opts.IncludeNotes)
		case hasMarker(c):
			b.space()
			b.scan(c)
			b.space()
		default:
			b.inline(c)
		}
	}
}

// inline feeds content to the open verse. Content between verses only
// updates the red-letter state.
func (b *paragraphBuilder) inline(n *xml.Node) {
	if b.verse != nil {
		b.verse.f.node(n, false)
		return
	}
	if !n.IsElement("q") {
		return
	}
	switch {
	case n.HasAttr("eID"):
		if n.Attr("eID") == b.quote {
			b.quote = ""
		}
	case n.HasAttr("sID") && n.Attr("who") == redLetterSpeaker:
		b.quote = EndID(n.Attr("sID"))
	}
}

func (b *paragraphBuilder) space() {
	if b.verse != nil {
		b.verse.f.space()
	}
}

// breaksInline reports whether a top-level line break belongs to the
// current verse or milestone paragraph rather than forming its own group.
func (b *paragraphBuilder) breaksInline() bool {
	if b.paragraph {
		return true
	}
	return b.verse != nil && b.cur >= 0 && b.groups[b.cur].Type == GroupIndividualVerse
}

// isParagraphMarker reports whether n is a paragraph milestone, either
// <p sID/> or <div type="paragraph" sID/> and their end markers.
func isParagraphMarker(n *xml.Node) bool {
	if !n.HasAttr("sID") && !n.HasAttr("eID") {
		return false
	}
	return n.IsElement("p") || (n.IsElement("div") && n.Attr("type") == "paragraph")
}

func (b *paragraphBuilder) openGroup(kind string) {
	b.groups = append(b.groups, ParagraphGroup{Type: kind})
	b.cur = len(b.groups) - 1
}

// closeGroup ends the current group, saving text of a verse that continues
// past it. Groups left without verses are dropped.
func (b *paragraphBuilder) closeGroup() {
	if b.cur < 0 {
		return
	}
	if v := b.verse; v != nil && v.f.hasText {
		b.save(v, v.f.flush())
	}
	if len(b.groups[b.cur].Verses) == 0 {
		b.groups = b.groups[:b.cur]
	}
	b.cur = -1
}

func (b *paragraphBuilder) startVerse(n *xml.Node) {
	if b.verse != nil {
		b.m.anomalies.missingEndMarker(b.verse.ref)
		b.closeVerse(false)
	}
	ref := primaryID(n.Attr("osisID"))
	num, ok := markerNumber(n, ref)
	if !ok {
		b.m.anomalies.unparsableNumber(ref)
	}
	v := &openVerse{
		ref:   ref,
		num:   num,
		endID: EndID(n.Attr("sID")),
		title: b.title,
		f:     newFormatter(b.m.opts.IncludeNotes),
		group: -1,
	}
	if b.quote != "" {
		v.f.openQuote(b.quote)
	}
	b.title = ""
	b.verse = v
}

func (b *paragraphBuilder) endVerse(eID string) {
	if b.verse != nil && b.verse.endID == eID {
		b.closeVerse(true)
	}
}

// closeVerse emits the open verse. A verse cut short by a missing end
// marker is kept only if it has text.
func (b *paragraphBuilder) closeVerse(complete bool) {
	v := b.verse
	hasText := v.f.hasText
	text := v.f.flush()
	b.quote = ""
	if len(v.f.quotes) > 0 {
		b.quote = v.f.quotes[len(v.f.quotes)-1]
	}
	b.verse = nil

	if v.group < 0 && !complete && !hasText {
		return
	}
	if v.group >= 0 && !hasText {
		return
	}
	b.save(v, text)
	if b.cur >= 0 && b.groups[b.cur].Type == GroupIndividualVerse {
		b.closeGroup()
	}
}

// save records text for v: the first piece creates the verse entry in the
// current group, later pieces are appended to it.
func (b *paragraphBuilder) save(v *openVerse, text string) {
	if v.num < 1 {
		return
	}
	if v.group >= 0 {
		entry := &b.groups[v.group].Verses[v.index]
		entry.Text = strings.TrimSpace(entry.Text + " " + text)
		return
	}
	if b.cur < 0 {
		b.openGroup(GroupIndividualVerse)
	}
	g := &b.groups[b.cur]
	g.Verses = append(g.Verses, ParagraphVerse{
		Reference:   v.ref,
		VerseNumber: v.num,
		Text:        text,
		Title:       v.title,
	})
	v.group, v.index = b.cur, len(g.Verses)-1
}

func (b *paragraphBuilder) finish() {
	if b.verse != nil {
		b.m.anomalies.missingEndMarker(b.verse.ref)
		b.closeVerse(false)
	}
	b.closeGroup()
	for i := range b.groups {
		if b.groups[i].Type != GroupLineBreak {
			b.groups[i].CombinedText = combineText(b.groups[i].Verses)
		}
	}
}

func combineText(verses []ParagraphVerse) string {
	parts := make([]string, 0, len(verses))
	for _, v := range verses {
		parts = append(parts, v.Text)
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}
