package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/muesli/termenv"

	"github.com/FocuswithJustin/osisreader/core/osis"
)

func plainRenderer() *Renderer {
	return New(&bytes.Buffer{}, Options{})
}

func TestMarkupPlain(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"text", "In the beginning God created", "In the beginning God created"},
		{"entities", "Salt &amp; light", "Salt & light"},
		{"red letter", `<span class="text-red-600">Blessed are the meek</span>`, "Blessed are the meek"},
		{"added words", `darkness <span class="italic text-gray-600">was</span> upon`, "darkness was upon"},
		{"line break", "green pastures:<br>he leadeth me", "green pastures:\nhe leadeth me"},
		{"title", `<h3 class="text-lg font-medium text-gray-700 mb-2">The Creation</h3>In the beginning`, "The Creation\nIn the beginning"},
		{"psalm title", `<div class="text-center italic border-b border-gray-300 pb-2 mb-4"> A Psalm of David. </div>The LORD`, "A Psalm of David.\nThe LORD"},
		{"mark", "the <mark>kingdom</mark> of heaven", "the kingdom of heaven"},
		{"unknown tag", "<foo>kept</foo>", "kept"},
		{"stray end tag", "a</span> b", "a b"},
		{"empty", "", ""},
	}

	r := plainRenderer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.Markup(tt.in); got != tt.want {
				t.Errorf("Markup(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestMarkupColor(t *testing.T) {
	r := New(&bytes.Buffer{}, Options{Color: true})
	r.lr.SetColorProfile(termenv.TrueColor)

	out := r.Markup(`<span class="text-red-600">Blessed</span> are`)
	if !strings.Contains(out, "\x1b[") {
		t.Fatalf("Markup with colour = %q, want ANSI sequences", out)
	}
	if !strings.Contains(out, "Blessed") || !strings.HasSuffix(out, " are") {
		t.Errorf("Markup with colour lost text: %q", out)
	}
	if plain := plainRenderer().Markup(`<span class="text-red-600">Blessed</span> are`); strings.Contains(plain, "\x1b[") {
		t.Errorf("plain renderer emitted ANSI: %q", plain)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		tag, class string
		want       flags
	}{
		{"span", "text-red-600", flagRed},
		{"span", "italic text-gray-600", flagAdded},
		{"span", "italic text-red-400", flagRed | flagAdded},
		{"mark", "", flagMark},
		{"h2", "text-2xl", flagHeading},
		{"div", "text-center italic", flagHeading},
		{"div", "", 0},
		{"p", "", 0},
	}
	for _, tt := range tests {
		if got := classify(tt.tag, tt.class); got != tt.want {
			t.Errorf("classify(%q, %q) = %b, want %b", tt.tag, tt.class, got, tt.want)
		}
	}
}

func TestVerseAndHit(t *testing.T) {
	r := plainRenderer()

	v := osis.VerseRecord{Reference: "Gen.1.3", VerseNumber: 3, Text: "And God said, Let there be light"}
	if got := r.Verse(v); got != "3 And God said, Let there be light" {
		t.Errorf("Verse() = %q", got)
	}

	h := osis.SearchHit{Reference: "Matt.5.3", Context: "the <mark>kingdom</mark> of heaven"}
	if got := r.Hit(h); got != "Matt.5.3  the kingdom of heaven" {
		t.Errorf("Hit() = %q", got)
	}
}

func TestParagraph(t *testing.T) {
	r := plainRenderer()

	prose := osis.ParagraphGroup{Verses: []osis.ParagraphVerse{
		{Reference: "Gen.1.1", VerseNumber: 1, Text: "In the beginning", Title: "The Creation"},
		{Reference: "Gen.1.2", VerseNumber: 2, Text: "And the earth"},
	}}
	if got := r.Paragraph(prose); got != "The Creation\n1 In the beginning 2 And the earth" {
		t.Errorf("prose = %q", got)
	}

	poetry := osis.ParagraphGroup{Type: osis.GroupPoetry, Verses: []osis.ParagraphVerse{
		{Reference: "Ps.23.1", VerseNumber: 1, Text: "The LORD is my shepherd"},
		{Reference: "Ps.23.2", VerseNumber: 2, Text: "He maketh me"},
	}}
	if got := r.Paragraph(poetry); got != "1 The LORD is my shepherd\n2 He maketh me" {
		t.Errorf("poetry = %q", got)
	}

	if got := r.Paragraph(osis.ParagraphGroup{Type: osis.GroupLineBreak, Verses: []osis.ParagraphVerse{}}); got != "" {
		t.Errorf("line break = %q", got)
	}
}

func TestParagraphWrap(t *testing.T) {
	r := New(&bytes.Buffer{}, Options{Width: 20})
	g := osis.ParagraphGroup{Verses: []osis.ParagraphVerse{
		{Reference: "Gen.1.1", VerseNumber: 1, Text: "In the beginning God created the heaven and the earth."},
	}}
	for _, line := range strings.Split(r.Paragraph(g), "\n") {
		if len(line) > 20 {
			t.Errorf("line %q exceeds width", line)
		}
	}
}

func TestPlain(t *testing.T) {
	if got := Plain(`darkness <span class="italic">was</span> upon`); got != "darkness was upon" {
		t.Errorf("Plain() = %q", got)
	}
}
