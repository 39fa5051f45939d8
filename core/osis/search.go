package osis

import (
	"strings"
	"unicode"

	"github.com/FocuswithJustin/osisreader/core/canon"
	"github.com/FocuswithJustin/osisreader/core/ir"
	"github.com/FocuswithJustin/osisreader/core/xml"
)

// IsApocrypha reports whether bookID is excluded from search results.
func IsApocrypha(bookID string) bool {
	return canon.IsApocrypha(bookID)
}

// rawText accumulates case-folded raw text with whitespace runs collapsed,
// for the cheap first pass of a search.
type rawText struct {
	b     strings.Builder
	fd    folder
	space bool
}

func newRawText() *rawText {
	return &rawText{}
}

func (r *rawText) reset() {
	r.b.Reset()
	r.space = false
}

func (r *rawText) write(s string) {
	folded, _ := r.fd.fold(s, false)
	for _, c := range folded {
		if unicode.IsSpace(c) {
			r.space = true
			continue
		}
		if r.space && r.b.Len() > 0 {
			r.b.WriteByte(' ')
		}
		r.space = false
		r.b.WriteRune(c)
	}
}

func (r *rawText) boundary() {
	r.space = true
}

func (r *rawText) contains(folded string) bool {
	return strings.Contains(r.b.String(), folded)
}

// searchTerm normalises a query. ok is false for an empty query.
func searchTerm(term string) (normalized, folded string, ok bool) {
	normalized = collapseSpace(term)
	if normalized == "" {
		return "", "", false
	}
	return normalized, foldString(normalized), true
}

func searchLimit(limit int) int {
	if limit <= 0 {
		return DefaultSearchLimit
	}
	return limit
}

// newHit builds a hit for a confirmed match. ok is false when the reference
// has no chapter and verse.
func newHit(ref, text, term string) (SearchHit, bool) {
	book, chapter, verse, ok := ir.Split(ref)
	if !ok || chapter < 1 || verse < 1 {
		return SearchHit{}, false
	}
	return SearchHit{
		Reference: ref,
		BookID:    book,
		Chapter:   chapter,
		Verse:     verse,
		Text:      text,
		Context:   HighlightSearchTerm(text, term),
	}, true
}

// SearchVerses returns up to limit verses containing term, case-insensitively,
// in document order. Raw element text is checked first and the formatted text
// confirms the match. Apocryphal books are skipped.
func (c *ContainedParser) SearchVerses(term string, limit int) []SearchHit {
	term, folded, ok := searchTerm(term)
	if !ok {
		return nil
	}
	limit = searchLimit(limit)

	raw := newRawText()
	var hits []SearchHit
	for _, n := range c.query("//verse[@osisID][not(@sID)][not(@eID)]") {
		ref := primaryID(n.Attr("osisID"))
		if IsApocrypha(ir.BookOf(ref)) {
			continue
		}
		raw.reset()
		raw.write(n.Text())
		if !raw.contains(folded) {
			continue
		}
		text := extract(n, c.opts.IncludeNotes)
		if !containsTerm(text, folded) {
			continue
		}
		hit, ok := newHit(ref, text, term)
		if !ok {
			c.anomalies.unparsableNumber(ref)
			continue
		}
		hits = append(hits, hit)
		if len(hits) >= limit {
			break
		}
	}
	return hits
}

// SearchVerses returns up to limit verses containing term, case-insensitively,
// in document order. End markers are indexed once per call. Each verse gets a
// bounded raw-text scan and only candidates are fully reconstructed and
// confirmed. Apocryphal books are skipped.
func (m *MilestoneParser) SearchVerses(term string, limit int) []SearchHit {
	term, folded, ok := searchTerm(term)
	if !ok {
		return nil
	}
	limit = searchLimit(limit)

	ends := make(map[string]*xml.Node)
	for _, n := range m.query("//verse[@eID]") {
		ends[n.Attr("eID")] = n
	}

	raw := newRawText()
	var hits []SearchHit
	for _, start := range m.query("//verse[@sID]") {
		ref := primaryID(start.Attr("osisID"))
		if IsApocrypha(ir.BookOf(ref)) {
			continue
		}
		end, ok := ends[EndID(start.Attr("sID"))]
		if !ok {
			m.anomalies.missingEndMarker(ref)
			continue
		}
		if !m.quickMatch(start, end, raw, folded) {
			continue
		}
		text := m.verseText(start, openQuoteBefore(start, m.opts.QuoteLookback, m.quoteNodeCap()))
		if !containsTerm(text, folded) {
			continue
		}
		hit, ok := newHit(ref, text, term)
		if !ok {
			m.anomalies.unparsableNumber(ref)
			continue
		}
		hits = append(hits, hit)
		if len(hits) >= limit {
			break
		}
	}
	return hits
}

// quickMatch scans the raw text after start, up to end or the sibling cap,
// and stops as soon as the folded term appears.
func (m *MilestoneParser) quickMatch(start, end *xml.Node, raw *rawText, folded string) bool {
	raw.reset()
	matched := false
	walkVerse(start,
		end.Is,
		m.opts.SearchSiblingCap,
		func(n *xml.Node) bool {
			switch n.Kind() {
			case xml.KindText:
				raw.write(n.Data())
			case xml.KindElement:
				raw.write(n.Text())
			default:
				return true
			}
			matched = raw.contains(folded)
			return !matched
		},
		raw.boundary,
	)
	return matched
}
