package osis

import (
	"strings"
	"testing"

	"github.com/FocuswithJustin/osisreader/core/xml"
)

func extractString(t *testing.T, src string) string {
	t.Helper()
	doc, err := xml.Parse([]byte(src))
	if err != nil {
		t.Fatalf("Parse(%q) failed: %v", src, err)
	}
	return Extract(doc.Root())
}

func TestExtract(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "collapses whitespace",
			src:  "<verse>  In   the\n\tbeginning  </verse>",
			want: "In the beginning",
		},
		{
			name: "added words",
			src:  `<verse>darkness <transChange type="added">was</transChange> upon</verse>`,
			want: `darkness <span class="italic text-gray-600">was</span> upon`,
		},
		{
			name: "other transChange is plain",
			src:  `<verse>the <transChange type="amended">LORD</transChange></verse>`,
			want: "the LORD",
		},
		{
			name: "notes dropped",
			src:  `<verse>light<note type="crossReference">Ps 27:1</note> and dark</verse>`,
			want: "light and dark",
		},
		{
			name: "words of Christ",
			src:  `<verse>said, <q who="Jesus">Follow me.</q></verse>`,
			want: `said, <span class="text-red-600">Follow me.</span>`,
		},
		{
			name: "other speakers are plain",
			src:  `<verse><q who="Peter">Lord, save me.</q></verse>`,
			want: "Lord, save me.",
		},
		{
			name: "added words inside quotation",
			src:  `<verse><q who="Jesus">Blessed <transChange type="added">are</transChange> the meek</q></verse>`,
			want: `<span class="text-red-600">Blessed <span class="italic text-red-400">are</span> the meek</span>`,
		},
		{
			name: "line break",
			src:  `<verse>green pastures:<lb/>still waters</verse>`,
			want: "green pastures:<br>still waters",
		},
		{
			name: "psalm title",
			src:  `<verse><title type="psalm">A Psalm of David.</title>The LORD</verse>`,
			want: `<div class="text-center italic border-b border-gray-300 pb-2 mb-4">A Psalm of David.</div>The LORD`,
		},
		{
			name: "main title",
			src:  `<div><title type="main">GENESIS</title></div>`,
			want: `<h2 class="text-2xl font-bold mb-4">GENESIS</h2>`,
		},
		{
			name: "section title",
			src:  `<div><title>The Creation</title></div>`,
			want: `<h3 class="text-lg font-medium text-gray-700 mb-2">The Creation</h3>`,
		},
		{
			name: "poetry lines are separated",
			src:  `<lg><l>one</l><l>two</l></lg>`,
			want: "one two",
		},
		{
			name: "unknown elements keep their text",
			src:  `<verse><hi type="italic">word</hi> <w lemma="strong:H430">God</w></verse>`,
			want: "word God",
		},
		{
			name: "open quotation milestone is closed at the end",
			src:  `<verse>saying, <q who="Jesus" sID="q1.sID"/>Come</verse>`,
			want: `saying, <span class="text-red-600">Come</span>`,
		},
		{
			name: "end marker without who closes by id",
			src:  `<verse><q who="Jesus" sID="a.sID"/>Peace<q eID="a.eID"/> then</verse>`,
			want: `<span class="text-red-600">Peace</span> then`,
		},
		{
			name: "quotation opened at the very end leaves no empty span",
			src:  `<verse>saying,<q who="Jesus" sID="b.sID"/></verse>`,
			want: "saying,",
		},
		{
			name: "character data is escaped",
			src:  `<verse>milk &amp; honey</verse>`,
			want: "milk &amp; honey",
		},
		{
			name: "escaped tags stay text",
			src:  `<verse>the &lt;b&gt; tag</verse>`,
			want: "the &lt;b&gt; tag",
		},
		{
			name: "empty",
			src:  `<verse/>`,
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractString(t, tt.src); got != tt.want {
				t.Errorf("Extract() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractIncludeNotes(t *testing.T) {
	doc, err := xml.Parse([]byte(`<verse>light<note> see Ps 27:1</note></verse>`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if got := extract(doc.Root(), true); got != "light see Ps 27:1" {
		t.Errorf("extract(includeNotes) = %q", got)
	}
}

func TestFormatterFlushReopensQuotation(t *testing.T) {
	f := newFormatter(false)
	f.openQuote("q.eID")
	f.text("first part")
	if got, want := f.flush(), `<span class="text-red-600">first part</span>`; got != want {
		t.Errorf("flush() = %q, want %q", got, want)
	}
	f.text("second part")
	f.closeQuote("q.eID")
	f.text(" after")
	if got, want := f.String(), `<span class="text-red-600">second part</span> after`; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestCloseQuoteIgnoresUnknownID(t *testing.T) {
	f := newFormatter(false)
	f.openQuote("a")
	f.text("x")
	f.closeQuote("b")
	if len(f.quotes) != 1 {
		t.Fatalf("quotes = %v, want one open", f.quotes)
	}
	if got := f.String(); strings.Count(got, "<span") != strings.Count(got, "</span>") {
		t.Errorf("unbalanced spans in %q", got)
	}
}

func FuzzExtract(f *testing.F) {
	f.Add(`In the <transChange type="added">beginning</transChange>`)
	f.Add(`<q who="Jesus" sID="x.sID"/>a<q eID="x.eID"/>`)
	f.Add(`<note>n</note><lb/><title type="psalm">t</title>`)
	f.Fuzz(func(t *testing.T, body string) {
		doc, err := xml.Parse([]byte("<verse>" + body + "</verse>"))
		if err != nil || doc.Root() == nil {
			return
		}
		got := Extract(doc.Root())
		if got != strings.TrimSpace(got) {
			t.Errorf("Extract() = %q has surrounding space", got)
		}
		if strings.Contains(got, "  ") {
			t.Errorf("Extract() = %q has a whitespace run", got)
		}
	})
}

func BenchmarkExtract(b *testing.B) {
	doc, err := xml.Parse([]byte(`<verse osisID="Matt.5.3"><q who="Jesus">Blessed <transChange type="added">are</transChange> the poor in spirit: for theirs is the kingdom of heaven.</q><note>Or, humble</note></verse>`))
	if err != nil {
		b.Fatalf("Parse failed: %v", err)
	}
	root := doc.Root()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Extract(root)
	}
}
