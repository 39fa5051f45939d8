package osis

import (
	"testing"
)

func TestParagraphReconstruction(t *testing.T) {
	for _, fixture := range []string{"milestone.xml", "contained.xml"} {
		r := loadFixture(t, fixture)
		for _, chapter := range []string{"Gen.1", "Ps.23", "Matt.5", "Tob.1"} {
			want := verseNumbers(r.Verses(chapter))
			got := groupVerseNumbers(r.VersesParagraphStyle(chapter))
			if !equalInts(got, want) {
				t.Errorf("%s %s: paragraph verses %v, verses %v", fixture, chapter, got, want)
			}
		}
	}
}

func TestMilestoneParagraphs(t *testing.T) {
	r := loadFixture(t, "milestone.xml")

	groups := r.VersesParagraphStyle("Gen.1")
	if len(groups) != 2 {
		t.Fatalf("Gen.1 groups = %+v, want 2", groups)
	}
	if got := groupVerseNumbers(groups[:1]); !equalInts(got, []int{1, 2}) {
		t.Errorf("first paragraph verses = %v", got)
	}
	if groups[0].Type != "" || groups[1].Type != "" {
		t.Errorf("prose paragraphs should have no type: %q %q", groups[0].Type, groups[1].Type)
	}
	if got := groups[0].Verses[0].Title; got != "The Creation" {
		t.Errorf("title of Gen.1.1 = %q", got)
	}
	if got := groups[0].Verses[1].Title; got != "" {
		t.Errorf("title of Gen.1.2 = %q, want empty", got)
	}
	want := "In the beginning God created the heaven and the earth. " + r.VerseText("Gen.1.2")
	if groups[0].CombinedText != want {
		t.Errorf("CombinedText = %q, want %q", groups[0].CombinedText, want)
	}
	for _, g := range groups {
		for _, v := range g.Verses {
			if text := r.VerseText(v.Reference); v.Text != text {
				t.Errorf("%s paragraph text %q, verse text %q", v.Reference, v.Text, text)
			}
		}
	}
}

func TestMilestonePoetryGroup(t *testing.T) {
	r := loadFixture(t, "milestone.xml")

	groups := r.VersesParagraphStyle("Ps.23")
	if len(groups) != 1 {
		t.Fatalf("Ps.23 groups = %+v", groups)
	}
	g := groups[0]
	if g.Type != GroupPoetry {
		t.Errorf("Type = %q, want %q", g.Type, GroupPoetry)
	}
	if len(g.Verses) != 2 || g.Verses[0].Title != "A Psalm of David." {
		t.Errorf("verses = %+v", g.Verses)
	}
	if g.Verses[1].Text != "He maketh me to lie down in green pastures:<br>he leadeth me beside the still waters." {
		t.Errorf("Ps.23.2 = %q", g.Verses[1].Text)
	}
}

func TestMilestoneParagraphRedLetter(t *testing.T) {
	r := loadFixture(t, "milestone.xml")

	groups := r.VersesParagraphStyle("Matt.5")
	if len(groups) != 1 || len(groups[0].Verses) != 4 {
		t.Fatalf("Matt.5 groups = %+v", groups)
	}
	for _, v := range groups[0].Verses {
		if want := r.VerseText(v.Reference); v.Text != want {
			t.Errorf("%s = %q, want %q", v.Reference, v.Text, want)
		}
	}
}

func TestLineBreakAndIndividualVerses(t *testing.T) {
	r := mustReader(t, wrapOSIS(`
<chapter osisID="Gen.5" sID="Gen.5.sID"/>
<verse osisID="Gen.5.1" sID="Gen.5.1.sID"/>This is the book<verse eID="Gen.5.1.eID"/>
<lb/>
<verse osisID="Gen.5.2" sID="Gen.5.2.sID"/>Male and female<verse eID="Gen.5.2.eID"/>
<chapter eID="Gen.5.eID"/>`))

	groups := r.VersesParagraphStyle("Gen.5")
	if len(groups) != 3 {
		t.Fatalf("groups = %+v, want 3", groups)
	}
	types := []string{groups[0].Type, groups[1].Type, groups[2].Type}
	want := []string{GroupIndividualVerse, GroupLineBreak, GroupIndividualVerse}
	for i := range want {
		if types[i] != want[i] {
			t.Errorf("group %d type = %q, want %q", i, types[i], want[i])
		}
	}
	if groups[1].CombinedText != "<br>" || groups[1].Verses == nil || len(groups[1].Verses) != 0 {
		t.Errorf("line break group = %+v", groups[1])
	}
	if groups[0].CombinedText != "This is the book" || groups[2].CombinedText != "Male and female" {
		t.Errorf("combined texts %q %q", groups[0].CombinedText, groups[2].CombinedText)
	}
}

func TestVerseContinuesIntoNextParagraph(t *testing.T) {
	r := mustReader(t, wrapOSIS(`
<chapter osisID="Gen.2" sID="Gen.2.sID"/>
<p><verse osisID="Gen.2.1" sID="Gen.2.1.sID"/>Thus the heavens<verse eID="Gen.2.1.eID"/>
<verse osisID="Gen.2.2" sID="Gen.2.2.sID"/>And on the seventh day</p>
<p>he rested<verse eID="Gen.2.2.eID"/></p>
<chapter eID="Gen.2.eID"/>`))

	groups := r.VersesParagraphStyle("Gen.2")
	if len(groups) != 1 {
		t.Fatalf("groups = %+v, want one", groups)
	}
	if got := groupVerseNumbers(groups); !equalInts(got, []int{1, 2}) {
		t.Fatalf("verses = %v", got)
	}
	if got := groups[0].Verses[1].Text; got != "And on the seventh day he rested" {
		t.Errorf("Gen.2.2 = %q", got)
	}
}

func TestParagraphMilestones(t *testing.T) {
	r := mustReader(t, wrapOSIS(`
<chapter osisID="Gen.3" sID="Gen.3.sID"/>
<div type="paragraph" sID="p1"/>
<verse osisID="Gen.3.1" sID="Gen.3.1.sID"/>Now the serpent<verse eID="Gen.3.1.eID"/>
<verse osisID="Gen.3.2" sID="Gen.3.2.sID"/>And the woman said<verse eID="Gen.3.2.eID"/>
<div type="paragraph" eID="p1"/>
<div type="paragraph" sID="p2"/>
<verse osisID="Gen.3.3" sID="Gen.3.3.sID"/>But of the fruit<lb/>of the tree<verse eID="Gen.3.3.eID"/>
<div type="paragraph" eID="p2"/>
<chapter eID="Gen.3.eID"/>`))

	groups := r.VersesParagraphStyle("Gen.3")
	if len(groups) != 2 {
		t.Fatalf("groups = %+v, want 2", groups)
	}
	if got := groupVerseNumbers(groups[:1]); !equalInts(got, []int{1, 2}) {
		t.Errorf("first paragraph = %v", got)
	}
	if got := groups[1].Verses[0].Text; got != "But of the fruit<br>of the tree" {
		t.Errorf("Gen.3.3 = %q", got)
	}
}

func TestParagraphsMissingChapter(t *testing.T) {
	r := loadFixture(t, "milestone.xml")
	if got := r.VersesParagraphStyle("Gen.42"); got != nil {
		t.Errorf("VersesParagraphStyle(Gen.42) = %+v, want nil", got)
	}
}

func TestParagraphsGenesisCorpus(t *testing.T) {
	r := mustReader(t, genesisCorpus(StyleMilestone))
	groups := r.VersesParagraphStyle("Gen.1")
	if len(groups) != 1 || len(groups[0].Verses) != genesisOneVerses {
		t.Fatalf("groups = %d", len(groups))
	}
	if got := groupVerseNumbers(groups); !equalInts(got, verseNumbers(r.Verses("Gen.1"))) {
		t.Error("paragraph verses differ from verse list")
	}
}
