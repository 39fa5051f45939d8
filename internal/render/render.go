// Package render turns the HTML-like markup produced by the osis package into
// styled terminal text.
package render

import (
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/net/html"

	"github.com/FocuswithJustin/osisreader/core/osis"
)

// Theme defines the colour palette for rendered scripture.
type Theme struct {
	// RedLetter colours words of Christ.
	RedLetter lipgloss.Color

	// Added colours translator additions outside quotations.
	Added lipgloss.Color

	// Heading colours section and psalm titles.
	Heading lipgloss.Color

	// Reference colours verse numbers and references.
	Reference lipgloss.Color

	// Mark is the background of search highlights.
	Mark lipgloss.Color

	Muted lipgloss.Color
}

// DefaultTheme returns the default colour theme.
func DefaultTheme() *Theme {
	return &Theme{
		RedLetter: lipgloss.Color("#DC2626"), // Red 600
		Added:     lipgloss.Color("#6B7280"), // Gray 500
		Heading:   lipgloss.Color("#7C3AED"), // Purple
		Reference: lipgloss.Color("#06B6D4"), // Cyan
		Mark:      lipgloss.Color("#F9E2AF"), // Yellow
		Muted:     lipgloss.Color("#6C7086"),
	}
}

// Options configures a Renderer.
type Options struct {
	Theme *Theme
	// Color enables ANSI styling. When false all output is plain text.
	Color bool
	// Width wraps paragraphs to the given number of cells. Zero disables
	// wrapping.
	Width int
}

// flags describe the markup in effect for a run of text.
type flags uint8

const (
	flagRed flags = 1 << iota
	flagAdded
	flagMark
	flagHeading
)

// Renderer renders markup for one output stream.
type Renderer struct {
	lr     *lipgloss.Renderer
	theme  *Theme
	width  int
	styles map[flags]lipgloss.Style
}

// New creates a renderer writing to w.
func New(w io.Writer, opts Options) *Renderer {
	lr := lipgloss.NewRenderer(w)
	if !opts.Color {
		lr.SetColorProfile(termenv.Ascii)
	}
	theme := opts.Theme
	if theme == nil {
		theme = DefaultTheme()
	}
	r := &Renderer{lr: lr, theme: theme, width: opts.Width, styles: make(map[flags]lipgloss.Style)}
	for f := flags(0); f <= flagRed|flagAdded|flagMark|flagHeading; f++ {
		r.styles[f] = r.style(f)
	}
	return r
}

func (r *Renderer) style(f flags) lipgloss.Style {
	s := r.lr.NewStyle()
	switch {
	case f&flagRed != 0:
		s = s.Foreground(r.theme.RedLetter)
	case f&flagAdded != 0:
		s = s.Foreground(r.theme.Added)
	case f&flagHeading != 0:
		s = s.Foreground(r.theme.Heading)
	}
	if f&flagAdded != 0 {
		s = s.Italic(true)
	}
	if f&flagHeading != 0 {
		s = s.Bold(true)
	}
	if f&flagMark != 0 {
		s = s.Background(r.theme.Mark).Foreground(lipgloss.Color("#1E1E2E"))
	}
	return s
}

// classify maps an element to the flags it sets.
func classify(tag, class string) flags {
	switch tag {
	case "mark":
		return flagMark
	case "h1", "h2", "h3", "h4":
		return flagHeading
	case "div":
		if strings.Contains(class, "text-center") {
			return flagHeading
		}
	case "span":
		var f flags
		if strings.Contains(class, "text-red") {
			f |= flagRed
		}
		if strings.Contains(class, "italic") {
			f |= flagAdded
		}
		return f
	}
	return 0
}

// Markup renders verse markup. Line breaks become newlines and titles are
// set on a line of their own. Unknown tags are dropped, keeping their text.
func (r *Renderer) Markup(text string) string {
	var sb strings.Builder
	var stack []flags
	var current flags

	z := html.NewTokenizer(strings.NewReader(text))
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			return strings.TrimRight(sb.String(), " \n")
		case html.TextToken:
			s := string(z.Text())
			if current&flagHeading != 0 {
				s = strings.TrimSpace(s)
			}
			if s != "" {
				sb.WriteString(r.styles[current].Render(s))
			}
		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			if string(name) == "br" {
				sb.WriteByte('\n')
				continue
			}
			if tt == html.SelfClosingTagToken {
				continue
			}
			var class string
			for hasAttr {
				var k, v []byte
				k, v, hasAttr = z.TagAttr()
				if string(k) == "class" {
					class = string(v)
				}
			}
			f := classify(string(name), class)
			stack = append(stack, f)
			current |= f
		case html.EndTagToken:
			if len(stack) == 0 {
				continue
			}
			closed := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			current = 0
			for _, f := range stack {
				current |= f
			}
			if closed&flagHeading != 0 {
				sb.WriteByte('\n')
			}
		}
	}
}

// Plain strips markup without styling.
func Plain(text string) string {
	return osis.PlainText(text)
}

// Reference renders a verse reference or number.
func (r *Renderer) Reference(s string) string {
	return r.lr.NewStyle().Foreground(r.theme.Reference).Render(s)
}

// Heading renders a line of heading text.
func (r *Renderer) Heading(s string) string {
	return r.styles[flagHeading].Render(s)
}

// Muted renders secondary text such as counts and hints.
func (r *Renderer) Muted(s string) string {
	return r.lr.NewStyle().Foreground(r.theme.Muted).Render(s)
}

// Verse renders a verse prefixed with its number.
func (r *Renderer) Verse(v osis.VerseRecord) string {
	return r.Reference(strconv.Itoa(v.VerseNumber)) + " " + r.Markup(v.Text)
}

// Hit renders a search hit as its reference followed by the highlighted
// context.
func (r *Renderer) Hit(h osis.SearchHit) string {
	return r.Reference(h.Reference) + "  " + r.Markup(h.Context)
}

// Paragraph renders a paragraph group. Prose verses run on, poetry keeps one
// verse per line and a line break group renders as an empty line.
func (r *Renderer) Paragraph(g osis.ParagraphGroup) string {
	if g.Type == osis.GroupLineBreak {
		return ""
	}
	sep := " "
	if g.Type == osis.GroupPoetry {
		sep = "\n"
	}

	var sb strings.Builder
	for i, v := range g.Verses {
		if v.Title != "" {
			if sb.Len() > 0 {
				sb.WriteByte('\n')
			}
			sb.WriteString(r.Heading(v.Title))
			sb.WriteByte('\n')
		} else if i > 0 {
			sb.WriteString(sep)
		}
		sb.WriteString(r.Verse(osis.VerseRecord{Reference: v.Reference, VerseNumber: v.VerseNumber, Text: v.Text}))
	}
	if r.width > 0 && g.Type != osis.GroupPoetry {
		return r.lr.NewStyle().Width(r.width).Render(sb.String())
	}
	return sb.String()
}
