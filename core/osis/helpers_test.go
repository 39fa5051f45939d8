package osis

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/FocuswithJustin/osisreader/core/xml"
)

const (
	genesisChapters   = 50
	genesisOneVerses  = 31
	otherChapterVerse = 3
)

// loadFixture loads a document from testdata.
func loadFixture(t testing.TB, name string) *Reader {
	t.Helper()
	r, err := LoadFile(filepath.Join("testdata", name), Options{})
	if err != nil {
		t.Fatalf("LoadFile(%s) failed: %v", name, err)
	}
	return r
}

// mustReader parses src and builds a Reader over it.
func mustReader(t testing.TB, src string) *Reader {
	t.Helper()
	doc, err := xml.Parse([]byte(src))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	r, err := New(doc, Options{})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return r
}

// wrapOSIS places body inside an osis/osisText envelope.
func wrapOSIS(body string) string {
	return `<?xml version="1.0" encoding="UTF-8"?>
<osis xmlns="http://www.bibletechnologies.net/2003/OSIS/namespace"><osisText osisIDWork="Test">` + body + `</osisText></osis>`
}

func genesisVerseCount(chapter int) int {
	if chapter == 1 {
		return genesisOneVerses
	}
	return otherChapterVerse
}

func genesisVerseText(chapter, verse int) string {
	return fmt.Sprintf("And God spoke word %d of chapter %d.", verse, chapter)
}

// genesisCorpus builds a book of Genesis with the real chapter count and the
// real verse count for chapter 1, encoded in the given style.
func genesisCorpus(style Style) string {
	var sb strings.Builder
	sb.WriteString(`<div type="book" osisID="Gen">`)
	for c := 1; c <= genesisChapters; c++ {
		if style == StyleMilestone {
			fmt.Fprintf(&sb, `<chapter osisID="Gen.%d" sID="Gen.%d.sID"/><p>`, c, c)
		} else {
			fmt.Fprintf(&sb, `<chapter osisID="Gen.%d"><p>`, c)
		}
		for v := 1; v <= genesisVerseCount(c); v++ {
			if style == StyleMilestone {
				fmt.Fprintf(&sb, `<verse osisID="Gen.%d.%d" sID="Gen.%d.%d.sID"/>%s<verse eID="Gen.%d.%d.eID"/>`+"\n",
					c, v, c, v, genesisVerseText(c, v), c, v)
			} else {
				fmt.Fprintf(&sb, `<verse osisID="Gen.%d.%d">%s</verse>`+"\n", c, v, genesisVerseText(c, v))
			}
		}
		if style == StyleMilestone {
			fmt.Fprintf(&sb, `</p><chapter eID="Gen.%d.eID"/>`, c)
		} else {
			sb.WriteString(`</p></chapter>`)
		}
	}
	sb.WriteString(`</div>`)
	return wrapOSIS(sb.String())
}

func verseNumbers(verses []VerseRecord) []int {
	nums := make([]int, len(verses))
	for i, v := range verses {
		nums[i] = v.VerseNumber
	}
	return nums
}

func groupVerseNumbers(groups []ParagraphGroup) []int {
	var nums []int
	for _, g := range groups {
		for _, v := range g.Verses {
			nums = append(nums, v.VerseNumber)
		}
	}
	return nums
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
