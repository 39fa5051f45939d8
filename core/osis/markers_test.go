package osis

import (
	"testing"

	"github.com/FocuswithJustin/osisreader/core/xml"
)

func TestEndID(t *testing.T) {
	tests := []struct {
		sID  string
		want string
	}{
		{"Gen.1.1.sID", "Gen.1.1.eID"},
		{"Gen.1.1.sID.3", "Gen.1.1.eID.3"},
		{"sID.q.12", "eID.q.12"},
		{"q1", "q1"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := EndID(tt.sID); got != tt.want {
			t.Errorf("EndID(%q) = %q, want %q", tt.sID, got, tt.want)
		}
	}
}

func TestPrimaryID(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Gen.1.1", "Gen.1.1"},
		{"Gen.1.1 Gen.1.2", "Gen.1.1"},
		{"  Gen.1.1\tGen.1.2", "Gen.1.1"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := primaryID(tt.in); got != tt.want {
			t.Errorf("primaryID(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMarkerNumber(t *testing.T) {
	doc, err := xml.Parse([]byte(`<x><verse n="7" osisID="Gen.1.1"/><verse n="" osisID="Gen.1.2"/><verse osisID="Gen.1.z"/></x>`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	verses, _ := doc.XPath("//verse")
	tests := []struct {
		want int
		ok   bool
	}{
		{7, true},
		{2, true},
		{0, false},
	}
	for i, tt := range tests {
		n, ok := markerNumber(verses[i], verses[i].Attr("osisID"))
		if n != tt.want || ok != tt.ok {
			t.Errorf("markerNumber(verse %d) = %d, %v, want %d, %v", i, n, ok, tt.want, tt.ok)
		}
	}
}

func TestOpenQuoteBefore(t *testing.T) {
	doc, err := xml.Parse([]byte(`<x>
<verse sID="v1.sID"/><q who="Jesus" sID="a.sID"/>one<verse eID="v1.eID"/>
<verse sID="v2.sID"/>two<verse eID="v2.eID"/>
<verse sID="v3.sID"/>three<q eID="a.eID"/><verse eID="v3.eID"/>
<verse sID="v4.sID"/>four<verse eID="v4.eID"/>
</x>`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	start := func(id string) *xml.Node {
		n, _ := doc.XPathFirst("//verse[@sID=" + xml.Literal(id) + "]")
		return n
	}

	if got := openQuoteBefore(start("v2.sID"), 10, 1000); got != "a.eID" {
		t.Errorf("before v2 = %q, want a.eID", got)
	}
	if got := openQuoteBefore(start("v3.sID"), 10, 1000); got != "a.eID" {
		t.Errorf("before v3 = %q, want a.eID", got)
	}
	if got := openQuoteBefore(start("v4.sID"), 10, 1000); got != "" {
		t.Errorf("before v4 = %q, want none", got)
	}
	if got := openQuoteBefore(start("v3.sID"), 0, 1000); got != "" {
		t.Errorf("lookback of no verses = %q, want none", got)
	}
	if got := openQuoteBefore(start("v3.sID"), 10, 2); got != "" {
		t.Errorf("node cap = %q, want none", got)
	}
}

func TestIDTokenPredicate(t *testing.T) {
	doc, err := xml.Parse([]byte(`<x><verse osisID="Gen.1.1 Gen.1.2"/><verse osisID="Gen.1.10"/></x>`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	tests := []struct {
		ref  string
		want int
	}{
		{"Gen.1.1", 1},
		{"Gen.1.2", 1},
		{"Gen.1.10", 1},
		{"Gen.1", 0},
		{"Gen.1.1'", 0},
	}
	for _, tt := range tests {
		nodes, err := doc.XPath("//verse" + idTokenPredicate(tt.ref))
		if err != nil {
			t.Fatalf("XPath(%q) failed: %v", tt.ref, err)
		}
		if len(nodes) != tt.want {
			t.Errorf("%q matched %d nodes, want %d", tt.ref, len(nodes), tt.want)
		}
	}
}
