package osis

import (
	"regexp"
	"strings"
	"unicode/utf8"

	xhtml "golang.org/x/net/html"
	"golang.org/x/text/cases"
)

const (
	markOpen  = "<mark>"
	markClose = "</mark>"
)

// HighlightSearchTerm wraps every case-insensitive occurrence of term in
// text with <mark></mark>. Whitespace inside term matches any whitespace run.
// Only character data is searched, so tags and their attributes are never
// altered. Matching uses the same full case folding as search, so a term
// that confirms a hit is also marked in it.
func HighlightSearchTerm(text, term string) string {
	re := termPattern(term)
	if re == nil || text == "" {
		return text
	}

	var sb strings.Builder
	sb.Grow(len(text) + 32)
	var fd folder
	z := xhtml.NewTokenizer(strings.NewReader(text))
	for {
		tt := z.Next()
		if tt == xhtml.ErrorToken {
			break
		}
		if tt == xhtml.TextToken {
			fd.mark(&sb, string(z.Text()), re)
			continue
		}
		sb.Write(z.Raw())
	}
	return sb.String()
}

// termPattern compiles the folded words of term, separated by any
// whitespace run. It matches folded text.
func termPattern(term string) *regexp.Regexp {
	words := strings.Fields(foldString(term))
	if len(words) == 0 {
		return nil
	}
	for i, w := range words {
		words[i] = regexp.QuoteMeta(w)
	}
	re, err := regexp.Compile(strings.Join(words, `[\s\p{Zs}\x{85}]+`))
	if err != nil {
		return nil
	}
	return re
}

// folder applies full Unicode case folding one rune at a time, so every
// folded byte can be traced back to the rune it came from.
type folder struct {
	caser cases.Caser
	init  bool
	buf   strings.Builder
}

// span is the byte range of the source rune behind one folded byte.
type span struct{ start, end int }

func (fd *folder) foldRune(s string) string {
	if !fd.init {
		fd.caser = cases.Fold()
		fd.init = true
	}
	return fd.caser.String(s)
}

// fold returns the case-folded form of s. When spans is true it also
// returns, for each folded byte, the source rune's byte range.
func (fd *folder) fold(s string, spans bool) (string, []span) {
	fd.buf.Reset()
	var out []span
	if spans {
		out = make([]span, 0, len(s))
	}
	for i := 0; i < len(s); {
		n := 1
		if c := s[i]; c < utf8.RuneSelf {
			if 'A' <= c && c <= 'Z' {
				c += 'a' - 'A'
			}
			fd.buf.WriteByte(c)
		} else {
			_, n = utf8.DecodeRuneInString(s[i:])
			f := fd.foldRune(s[i : i+n])
			fd.buf.WriteString(f)
			if spans {
				for j := 1; j < len(f); j++ {
					out = append(out, span{i, i + n})
				}
			}
		}
		if spans {
			out = append(out, span{i, i + n})
		}
		i += n
	}
	return fd.buf.String(), out
}

// mark writes s to sb, escaped, with matches of re wrapped in marks.
// Matches are found in the folded text and widened to whole source runes.
func (fd *folder) mark(sb *strings.Builder, s string, re *regexp.Regexp) {
	folded, spans := fd.fold(s, true)
	last := 0
	for _, m := range re.FindAllStringIndex(folded, -1) {
		if m[0] == m[1] {
			continue
		}
		start, end := spans[m[0]].start, spans[m[1]-1].end
		if start < last {
			continue
		}
		textEscaper.WriteString(sb, s[last:start])
		sb.WriteString(markOpen)
		textEscaper.WriteString(sb, s[start:end])
		sb.WriteString(markClose)
		last = end
	}
	textEscaper.WriteString(sb, s[last:])
}

// blockTags separate words when markup is stripped.
var blockTags = map[string]bool{"br": true, "div": true, "h2": true, "h3": true}

// StripTags removes markup from formatted text, leaving decoded character
// data. Line breaks and block elements become spaces.
func StripTags(text string) string {
	if !strings.ContainsAny(text, "<&") {
		return text
	}
	if !strings.Contains(text, "<") {
		return xhtml.UnescapeString(text)
	}
	var sb strings.Builder
	z := xhtml.NewTokenizer(strings.NewReader(text))
	for {
		switch z.Next() {
		case xhtml.ErrorToken:
			return sb.String()
		case xhtml.TextToken:
			sb.Write(z.Text())
		case xhtml.StartTagToken, xhtml.EndTagToken, xhtml.SelfClosingTagToken:
			name, _ := z.TagName()
			if blockTags[string(name)] {
				sb.WriteByte(' ')
			}
		}
	}
}

// PlainText returns formatted text with markup stripped, entities decoded
// and whitespace collapsed.
func PlainText(text string) string {
	return collapseSpace(StripTags(text))
}

// foldString case-folds s rune by rune, as search and highlighting do.
func foldString(s string) string {
	var fd folder
	f, _ := fd.fold(s, false)
	return f
}

// containsTerm reports whether the character data of formatted text contains
// the folded, whitespace-collapsed term.
func containsTerm(text, folded string) bool {
	return strings.Contains(foldString(PlainText(text)), folded)
}
