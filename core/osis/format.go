package osis

import (
	"strings"

	"github.com/FocuswithJustin/osisreader/core/xml"
)

// Markup emitted for recognised OSIS elements.
const (
	redLetterOpen    = `<span class="text-red-600">`
	addedOpen        = `<span class="italic text-gray-600">`
	addedInQuoteOpen = `<span class="italic text-red-400">`
	spanClose        = `</span>`
	lineBreak        = `<br>`

	psalmTitleOpen  = `<div class="text-center italic border-b border-gray-300 pb-2 mb-4">`
	psalmTitleClose = `</div>`
	mainTitleOpen   = `<h2 class="text-2xl font-bold mb-4">`
	mainTitleClose  = `</h2>`
	titleOpen       = `<h3 class="text-lg font-medium text-gray-700 mb-2">`
	titleClose      = `</h3>`
)

// redLetterSpeaker is the "who" value that marks words of Christ.
const redLetterSpeaker = "Jesus"

// Extract returns the formatted inner text of n. Notes are omitted and
// whitespace runs are collapsed. Character data is escaped (&, <, >).
func Extract(n *xml.Node) string {
	return extract(n, false)
}

func extract(n *xml.Node, includeNotes bool) string {
	f := newFormatter(includeNotes)
	f.children(n, false)
	return f.String()
}

// formatter accumulates the formatted text of one verse or subtree. quotes
// holds the end ids of red-letter milestones opened and not yet closed; each
// has an open span in the buffer.
type formatter struct {
	b            strings.Builder
	includeNotes bool
	quotes       []string
	hasText      bool
}

func newFormatter(includeNotes bool) *formatter {
	return &formatter{includeNotes: includeNotes}
}

// openQuote starts a red-letter span closed by the q marker with endID.
func (f *formatter) openQuote(endID string) {
	f.b.WriteString(redLetterOpen)
	f.quotes = append(f.quotes, endID)
}

func (f *formatter) closeQuote(endID string) {
	for i := len(f.quotes) - 1; i >= 0; i-- {
		if f.quotes[i] == endID {
			f.quotes = append(f.quotes[:i], f.quotes[i+1:]...)
			f.b.WriteString(spanClose)
			return
		}
	}
}

// textEscaper escapes character data so it cannot be read back as markup.
var textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

func (f *formatter) text(s string) {
	if !f.hasText && strings.TrimSpace(s) != "" {
		f.hasText = true
	}
	textEscaper.WriteString(&f.b, s)
}

func (f *formatter) space() {
	f.b.WriteByte(' ')
}

func (f *formatter) children(n *xml.Node, inQuote bool) {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		f.node(c, inQuote)
	}
}

// node formats n and its subtree.
func (f *formatter) node(n *xml.Node, inQuote bool) {
	switch n.Kind() {
	case xml.KindText:
		f.text(n.Data())
		return
	case xml.KindElement:
	default:
		return
	}

	inQuote = inQuote || len(f.quotes) > 0

	switch n.Name() {
	case "note":
		if f.includeNotes {
			f.children(n, inQuote)
		}
	case "transChange":
		if n.Attr("type") != "added" {
			f.children(n, inQuote)
			return
		}
		if inQuote {
			f.b.WriteString(addedInQuoteOpen)
		} else {
			f.b.WriteString(addedOpen)
		}
		f.children(n, inQuote)
		f.b.WriteString(spanClose)
	case "q":
		f.quote(n, inQuote)
	case "title":
		openTag, closeTag := titleTags(n.Attr("type"))
		f.b.WriteString(openTag)
		f.children(n, inQuote)
		f.b.WriteString(closeTag)
	case "lb":
		f.b.WriteString(lineBreak)
	case "l":
		f.children(n, inQuote)
		f.space()
	default:
		f.children(n, inQuote)
	}
}

func (f *formatter) quote(n *xml.Node, inQuote bool) {
	switch {
	case n.HasAttr("eID"):
		// End markers frequently omit "who"; pairing is by id.
		f.closeQuote(n.Attr("eID"))
	case n.Attr("who") != redLetterSpeaker:
		f.children(n, inQuote)
	case n.HasAttr("sID"):
		f.openQuote(EndID(n.Attr("sID")))
	default:
		f.b.WriteString(redLetterOpen)
		f.children(n, true)
		f.b.WriteString(spanClose)
	}
}

func titleTags(kind string) (string, string) {
	switch kind {
	case "psalm":
		return psalmTitleOpen, psalmTitleClose
	case "main":
		return mainTitleOpen, mainTitleClose
	default:
		return titleOpen, titleClose
	}
}

// String returns the text so far with open red-letter spans closed. Spans
// left empty by a quotation opening at the very end of a verse are dropped.
func (f *formatter) String() string {
	s := f.b.String()
	if len(f.quotes) > 0 {
		s += strings.Repeat(spanClose, len(f.quotes))
	}
	return collapseSpace(strings.ReplaceAll(s, redLetterOpen+spanClose, ""))
}

// flush returns the text so far and restarts the buffer, reopening any
// red-letter spans still in effect.
func (f *formatter) flush() string {
	s := f.String()
	f.b.Reset()
	f.hasText = false
	for range f.quotes {
		f.b.WriteString(redLetterOpen)
	}
	return s
}

// collapseSpace replaces whitespace runs with a single space and trims.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
