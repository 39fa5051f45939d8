// Package canon holds the static book table for OSIS documents: canonical
// order, human-readable names, testament, and the apocrypha set used to filter
// search results.
package canon

import "strings"

// Testament identifies which part of the canon a book belongs to.
type Testament string

const (
	OldTestament Testament = "OT"
	NewTestament Testament = "NT"
	Apocrypha    Testament = "AP"
)

// Book describes one book of the canon.
type Book struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Testament Testament `json:"testament"`
	// Order is the 1-based canonical position. Apocryphal books follow
	// Revelation.
	Order   int      `json:"order"`
	Aliases []string `json:"aliases,omitempty"`
}

// IsApocrypha reports whether the book is deuterocanonical or otherwise
// outside the Protestant canon.
func (b Book) IsApocrypha() bool {
	return b.Testament == Apocrypha
}

var books = []Book{
	{ID: "Gen", Name: "Genesis", Testament: OldTestament, Aliases: []string{"Ge", "Gn"}},
	{ID: "Exod", Name: "Exodus", Testament: OldTestament, Aliases: []string{"Ex", "Exo"}},
	{ID: "Lev", Name: "Leviticus", Testament: OldTestament, Aliases: []string{"Lv"}},
	{ID: "Num", Name: "Numbers", Testament: OldTestament, Aliases: []string{"Nm", "Nb"}},
	{ID: "Deut", Name: "Deuteronomy", Testament: OldTestament, Aliases: []string{"Deu", "Dt"}},
	{ID: "Josh", Name: "Joshua", Testament: OldTestament, Aliases: []string{"Jos"}},
	{ID: "Judg", Name: "Judges", Testament: OldTestament, Aliases: []string{"Jdg", "Jg"}},
	{ID: "Ruth", Name: "Ruth", Testament: OldTestament, Aliases: []string{"Rth", "Ru"}},
	{ID: "1Sam", Name: "1 Samuel", Testament: OldTestament, Aliases: []string{"1 Sa", "1Sa", "I Samuel"}},
	{ID: "2Sam", Name: "2 Samuel", Testament: OldTestament, Aliases: []string{"2 Sa", "2Sa", "II Samuel"}},
	{ID: "1Kgs", Name: "1 Kings", Testament: OldTestament, Aliases: []string{"1 Ki", "1Ki", "I Kings"}},
	{ID: "2Kgs", Name: "2 Kings", Testament: OldTestament, Aliases: []string{"2 Ki", "2Ki", "II Kings"}},
	{ID: "1Chr", Name: "1 Chronicles", Testament: OldTestament, Aliases: []string{"1 Ch", "1Ch", "I Chronicles"}},
	{ID: "2Chr", Name: "2 Chronicles", Testament: OldTestament, Aliases: []string{"2 Ch", "2Ch", "II Chronicles"}},
	{ID: "Ezra", Name: "Ezra", Testament: OldTestament, Aliases: []string{"Ezr"}},
	{ID: "Neh", Name: "Nehemiah", Testament: OldTestament},
	{ID: "Esth", Name: "Esther", Testament: OldTestament, Aliases: []string{"Est"}},
	{ID: "Job", Name: "Job", Testament: OldTestament, Aliases: []string{"Jb"}},
	{ID: "Ps", Name: "Psalms", Testament: OldTestament, Aliases: []string{"Psalm", "Psa", "Pss"}},
	{ID: "Prov", Name: "Proverbs", Testament: OldTestament, Aliases: []string{"Pro", "Prv"}},
	{ID: "Eccl", Name: "Ecclesiastes", Testament: OldTestament, Aliases: []string{"Ecc", "Qoh", "Qoheleth"}},
	{ID: "Song", Name: "Song of Solomon", Testament: OldTestament, Aliases: []string{"Song of Songs", "SOS", "Canticles", "Cant"}},
	{ID: "Isa", Name: "Isaiah", Testament: OldTestament, Aliases: []string{"Is"}},
	{ID: "Jer", Name: "Jeremiah", Testament: OldTestament, Aliases: []string{"Je"}},
	{ID: "Lam", Name: "Lamentations", Testament: OldTestament, Aliases: []string{"La"}},
	{ID: "Ezek", Name: "Ezekiel", Testament: OldTestament, Aliases: []string{"Eze", "Ezk"}},
	{ID: "Dan", Name: "Daniel", Testament: OldTestament, Aliases: []string{"Da", "Dn"}},
	{ID: "Hos", Name: "Hosea", Testament: OldTestament, Aliases: []string{"Ho"}},
	{ID: "Joel", Name: "Joel", Testament: OldTestament, Aliases: []string{"Jl"}},
	{ID: "Amos", Name: "Amos", Testament: OldTestament, Aliases: []string{"Am"}},
	{ID: "Obad", Name: "Obadiah", Testament: OldTestament, Aliases: []string{"Oba", "Ob"}},
	{ID: "Jonah", Name: "Jonah", Testament: OldTestament, Aliases: []string{"Jon", "Jnh"}},
	{ID: "Mic", Name: "Micah", Testament: OldTestament, Aliases: []string{"Mi"}},
	{ID: "Nah", Name: "Nahum", Testament: OldTestament, Aliases: []string{"Na"}},
	{ID: "Hab", Name: "Habakkuk", Testament: OldTestament},
	{ID: "Zeph", Name: "Zephaniah", Testament: OldTestament, Aliases: []string{"Zep", "Zp"}},
	{ID: "Hag", Name: "Haggai", Testament: OldTestament, Aliases: []string{"Hg"}},
	{ID: "Zech", Name: "Zechariah", Testament: OldTestament, Aliases: []string{"Zec", "Zc"}},
	{ID: "Mal", Name: "Malachi", Testament: OldTestament, Aliases: []string{"Ml"}},

	{ID: "Matt", Name: "Matthew", Testament: NewTestament, Aliases: []string{"Mat", "Mt"}},
	{ID: "Mark", Name: "Mark", Testament: NewTestament, Aliases: []string{"Mrk", "Mk", "Mr"}},
	{ID: "Luke", Name: "Luke", Testament: NewTestament, Aliases: []string{"Luk", "Lk"}},
	{ID: "John", Name: "John", Testament: NewTestament, Aliases: []string{"Joh", "Jhn", "Jn"}},
	{ID: "Acts", Name: "Acts", Testament: NewTestament, Aliases: []string{"Act", "Ac", "Acts of the Apostles"}},
	{ID: "Rom", Name: "Romans", Testament: NewTestament, Aliases: []string{"Ro", "Rm"}},
	{ID: "1Cor", Name: "1 Corinthians", Testament: NewTestament, Aliases: []string{"1 Co", "1Co", "I Corinthians"}},
	{ID: "2Cor", Name: "2 Corinthians", Testament: NewTestament, Aliases: []string{"2 Co", "2Co", "II Corinthians"}},
	{ID: "Gal", Name: "Galatians", Testament: NewTestament, Aliases: []string{"Ga"}},
	{ID: "Eph", Name: "Ephesians", Testament: NewTestament, Aliases: []string{"Ephes"}},
	{ID: "Phil", Name: "Philippians", Testament: NewTestament, Aliases: []string{"Php", "Pp"}},
	{ID: "Col", Name: "Colossians", Testament: NewTestament, Aliases: []string{"Co"}},
	{ID: "1Thess", Name: "1 Thessalonians", Testament: NewTestament, Aliases: []string{"1 Th", "1Th", "I Thessalonians"}},
	{ID: "2Thess", Name: "2 Thessalonians", Testament: NewTestament, Aliases: []string{"2 Th", "2Th", "II Thessalonians"}},
	{ID: "1Tim", Name: "1 Timothy", Testament: NewTestament, Aliases: []string{"1 Ti", "1Ti", "I Timothy"}},
	{ID: "2Tim", Name: "2 Timothy", Testament: NewTestament, Aliases: []string{"2 Ti", "2Ti", "II Timothy"}},
	{ID: "Titus", Name: "Titus", Testament: NewTestament, Aliases: []string{"Tit"}},
	{ID: "Phlm", Name: "Philemon", Testament: NewTestament, Aliases: []string{"Phm", "Philem"}},
	{ID: "Heb", Name: "Hebrews", Testament: NewTestament},
	{ID: "Jas", Name: "James", Testament: NewTestament, Aliases: []string{"Jm"}},
	{ID: "1Pet", Name: "1 Peter", Testament: NewTestament, Aliases: []string{"1 Pe", "1Pe", "I Peter"}},
	{ID: "2Pet", Name: "2 Peter", Testament: NewTestament, Aliases: []string{"2 Pe", "2Pe", "II Peter"}},
	{ID: "1John", Name: "1 John", Testament: NewTestament, Aliases: []string{"1 Jn", "1Jn", "I John"}},
	{ID: "2John", Name: "2 John", Testament: NewTestament, Aliases: []string{"2 Jn", "2Jn", "II John"}},
	{ID: "3John", Name: "3 John", Testament: NewTestament, Aliases: []string{"3 Jn", "3Jn", "III John"}},
	{ID: "Jude", Name: "Jude", Testament: NewTestament, Aliases: []string{"Jud"}},
	{ID: "Rev", Name: "Revelation", Testament: NewTestament, Aliases: []string{"Re", "Apocalypse", "Revelations"}},

	{ID: "Tob", Name: "Tobit", Testament: Apocrypha, Aliases: []string{"Tb"}},
	{ID: "Jdt", Name: "Judith", Testament: Apocrypha, Aliases: []string{"Jth"}},
	{ID: "GkEsth", Name: "Greek Esther", Testament: Apocrypha},
	{ID: "AddEsth", Name: "Additions to Esther", Testament: Apocrypha},
	{ID: "EsthGr", Name: "Esther (Greek)", Testament: Apocrypha},
	{ID: "Wis", Name: "Wisdom of Solomon", Testament: Apocrypha, Aliases: []string{"Wisdom"}},
	{ID: "Sir", Name: "Sirach", Testament: Apocrypha, Aliases: []string{"Ecclesiasticus", "Ecclus"}},
	{ID: "Bar", Name: "Baruch", Testament: Apocrypha},
	{ID: "EpJer", Name: "Letter of Jeremiah", Testament: Apocrypha, Aliases: []string{"Epistle of Jeremiah"}},
	{ID: "PrAzar", Name: "Prayer of Azariah", Testament: Apocrypha},
	{ID: "SgThree", Name: "Song of the Three Young Men", Testament: Apocrypha, Aliases: []string{"Song of Three"}},
	{ID: "Sus", Name: "Susanna", Testament: Apocrypha},
	{ID: "Bel", Name: "Bel and the Dragon", Testament: Apocrypha},
	{ID: "AddDan", Name: "Additions to Daniel", Testament: Apocrypha},
	{ID: "1Macc", Name: "1 Maccabees", Testament: Apocrypha, Aliases: []string{"1 Mac", "1Mac", "I Maccabees"}},
	{ID: "2Macc", Name: "2 Maccabees", Testament: Apocrypha, Aliases: []string{"2 Mac", "2Mac", "II Maccabees"}},
	{ID: "3Macc", Name: "3 Maccabees", Testament: Apocrypha, Aliases: []string{"3 Mac", "3Mac"}},
	{ID: "4Macc", Name: "4 Maccabees", Testament: Apocrypha, Aliases: []string{"4 Mac", "4Mac"}},
	{ID: "1Esd", Name: "1 Esdras", Testament: Apocrypha, Aliases: []string{"I Esdras"}},
	{ID: "2Esd", Name: "2 Esdras", Testament: Apocrypha, Aliases: []string{"II Esdras"}},
	{ID: "PrMan", Name: "Prayer of Manasseh", Testament: Apocrypha, Aliases: []string{"Prayer of Manasses"}},
	{ID: "Ps151", Name: "Psalm 151", Testament: Apocrypha},
	{ID: "AddPs", Name: "Additional Psalm", Testament: Apocrypha},
	{ID: "Odes", Name: "Odes", Testament: Apocrypha},
	{ID: "PssSol", Name: "Psalms of Solomon", Testament: Apocrypha},
	{ID: "EpLao", Name: "Epistle to the Laodiceans", Testament: Apocrypha, Aliases: []string{"Laodiceans"}},
	{ID: "3Esd", Name: "3 Esdras", Testament: Apocrypha},
	{ID: "4Ezra", Name: "4 Ezra", Testament: Apocrypha},
	{ID: "5Ezra", Name: "5 Ezra", Testament: Apocrypha},
	{ID: "6Ezra", Name: "6 Ezra", Testament: Apocrypha},
	{ID: "2Bar", Name: "2 Baruch", Testament: Apocrypha},
	{ID: "1En", Name: "1 Enoch", Testament: Apocrypha, Aliases: []string{"Enoch"}},
	{ID: "Jub", Name: "Jubilees", Testament: Apocrypha},
}

var (
	byID    map[string]int
	byAlias map[string]string
)

func init() {
	byID = make(map[string]int, len(books))
	byAlias = make(map[string]string, len(books)*4)
	for i := range books {
		books[i].Order = i + 1
		b := books[i]
		byID[b.ID] = i
		for _, name := range append([]string{b.ID, b.Name}, b.Aliases...) {
			byAlias[aliasKey(name)] = b.ID
		}
	}
}

// aliasKey folds a book name for lookup: lower case with spaces and a
// trailing period removed, so "1 John", "1john" and "1John." collide.
func aliasKey(name string) string {
	name = strings.TrimSuffix(strings.TrimSpace(name), ".")
	return strings.ToLower(strings.Join(strings.Fields(name), ""))
}

// Books returns a copy of the full book table in canonical order.
func Books() []Book {
	out := make([]Book, len(books))
	copy(out, books)
	return out
}

// Lookup returns the book with the given OSIS id.
func Lookup(id string) (Book, bool) {
	i, ok := byID[id]
	if !ok {
		return Book{}, false
	}
	return books[i], true
}

// Resolve maps a human-readable book name, abbreviation or OSIS id to its
// OSIS id. Matching ignores case, spacing and a trailing period.
func Resolve(name string) (string, bool) {
	id, ok := byAlias[aliasKey(name)]
	return id, ok
}

// IsApocrypha reports whether bookID names a book outside the Protestant
// canon. Unknown ids are not apocryphal.
func IsApocrypha(bookID string) bool {
	i, ok := byID[bookID]
	return ok && books[i].Testament == Apocrypha
}
