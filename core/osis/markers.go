package osis

import (
	"strconv"
	"strings"

	"github.com/FocuswithJustin/osisreader/core/ir"
	"github.com/FocuswithJustin/osisreader/core/xml"
)

// EndID returns the end-marker id paired with a milestone start id by
// substituting the sID token with eID ("Gen.1.1.sID.3" -> "Gen.1.1.eID.3").
// Ids without the token pair with themselves.
func EndID(sID string) string {
	return strings.ReplaceAll(sID, "sID", "eID")
}

// isMarker reports whether n is a verse or chapter milestone.
func isMarker(n *xml.Node) bool {
	if !n.IsElement("verse") && !n.IsElement("chapter") {
		return false
	}
	return n.HasAttr("sID") || n.HasAttr("eID")
}

func isVerseStart(n *xml.Node) bool {
	return n.IsElement("verse") && n.HasAttr("sID")
}

func isChapterStart(n *xml.Node) bool {
	return n.IsElement("chapter") && n.HasAttr("sID")
}

// isEnd reports whether n is the element end marker named endID.
func isEnd(n *xml.Node, name, endID string) bool {
	return n.IsElement(name) && n.HasAttr("eID") && n.Attr("eID") == endID
}

// hasMarker reports whether any descendant of n is a verse or chapter
// milestone.
func hasMarker(n *xml.Node) bool {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if c.Kind() != xml.KindElement {
			continue
		}
		if isMarker(c) || hasMarker(c) {
			return true
		}
	}
	return false
}

// following returns the node after n in document order, skipping the subtree
// of n. climb is called for each ancestor left on the way.
func following(n *xml.Node, climb func()) *xml.Node {
	for n != nil {
		if s := n.NextSibling(); s != nil {
			return s
		}
		n = n.Parent()
		if n != nil && climb != nil {
			climb()
		}
	}
	return nil
}

// nextInOrder returns the node after n in document order, entering n.
func nextInOrder(n *xml.Node) *xml.Node {
	if c := n.FirstChild(); c != nil {
		return c
	}
	return following(n, nil)
}

// preceding returns the node before n in document order.
func preceding(n *xml.Node) *xml.Node {
	p := n.PrevSibling()
	if p == nil {
		return n.Parent()
	}
	for c := p.LastChild(); c != nil; c = p.LastChild() {
		p = c
	}
	return p
}

// walkVerse visits the nodes after a verse start marker in document order
// until isEnd matches. Elements holding a marker in their subtree are entered
// and their children visited instead; boundary is called whenever the walk
// enters or leaves such a container. It returns false when the walk meets
// another marker, the end of the document, or limit nodes before the end
// marker, or when visit returns false.
func walkVerse(start *xml.Node, isEnd func(*xml.Node) bool, limit int, visit func(*xml.Node) bool, boundary func()) bool {
	n := following(start, boundary)
	for steps := 0; n != nil; steps++ {
		if steps >= limit {
			return false
		}
		if n.Kind() == xml.KindElement {
			if isEnd(n) {
				return true
			}
			if isMarker(n) {
				return false
			}
			if hasMarker(n) {
				boundary()
				n = n.FirstChild()
				continue
			}
		}
		if !visit(n) {
			return false
		}
		n = following(n, boundary)
	}
	return false
}

// walkChapter visits every node after a chapter start marker in document
// order, up to the marker closing it. It returns false when another chapter
// starts or the document ends first.
func walkChapter(start *xml.Node, endID string, visit func(*xml.Node)) bool {
	for n := following(start, nil); n != nil; n = nextInOrder(n) {
		if n.IsElement("chapter") {
			if isEnd(n, "chapter", endID) {
				return true
			}
			if n.HasAttr("sID") {
				return false
			}
		}
		visit(n)
	}
	return false
}

// openQuoteBefore scans backwards from a milestone and returns the end id of
// a red-letter quotation still open at that point, or "". The scan gives up
// after passing maxVerses verse starts or maxNodes nodes.
func openQuoteBefore(start *xml.Node, maxVerses, maxNodes int) string {
	closed := make(map[string]bool)
	verses := 0
	n := start
	for steps := 0; steps < maxNodes; steps++ {
		if n = preceding(n); n == nil {
			return ""
		}
		if isVerseStart(n) {
			if verses++; verses > maxVerses {
				return ""
			}
			continue
		}
		if !n.IsElement("q") {
			continue
		}
		if n.HasAttr("eID") {
			closed[n.Attr("eID")] = true
			continue
		}
		if n.HasAttr("sID") && n.Attr("who") == redLetterSpeaker {
			end := EndID(n.Attr("sID"))
			if closed[end] {
				return ""
			}
			return end
		}
	}
	return ""
}

// primaryID returns the first reference of an osisID attribute. Verses that
// cover several references list them space-separated.
func primaryID(osisID string) string {
	osisID = strings.TrimSpace(osisID)
	if i := strings.IndexAny(osisID, " \t\n"); i >= 0 {
		return osisID[:i]
	}
	return osisID
}

// markerNumber returns the explicit n attribute of a marker, falling back to
// the final segment of its reference.
func markerNumber(n *xml.Node, ref string) (int, bool) {
	if v, err := strconv.Atoi(strings.TrimSpace(n.Attr("n"))); err == nil && v > 0 {
		return v, true
	}
	return lastNumber(ref)
}

// lastNumber parses the final segment of a reference as a positive integer.
func lastNumber(ref string) (int, bool) {
	return ir.LastNumber(primaryID(ref))
}

// idTokenPredicate matches nodes whose osisID lists ref among its
// space-separated references.
func idTokenPredicate(ref string) string {
	return "[contains(concat(' ', normalize-space(@osisID), ' '), " + xml.Literal(" "+ref+" ") + ")]"
}
