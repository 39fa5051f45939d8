package osis

// DefaultSearchLimit is the number of hits returned when a search is run
// with a limit of zero or less.
const DefaultSearchLimit = 100

// Default safety limits. They bound the work done on malformed documents.
const (
	DefaultSearchSiblingCap = 200
	DefaultVerseWalkCap     = 4096
	DefaultQuoteLookback    = 512
)

// Options tunes the parsers. The zero value selects the defaults.
type Options struct {
	// SearchSiblingCap bounds the nodes scanned by the search fast path for a
	// single milestone verse.
	SearchSiblingCap int

	// VerseWalkCap bounds the nodes walked when reconstructing one milestone
	// verse. A verse whose end marker lies further away is treated as missing.
	VerseWalkCap int

	// QuoteLookback is the number of preceding verses scanned for an open
	// red-letter quotation before a milestone verse. The scan also stops
	// after QuoteLookback*64 nodes.
	QuoteLookback int

	// IncludeNotes keeps note elements (footnotes, cross references) in
	// extracted text.
	IncludeNotes bool
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() Options {
	return Options{}.withDefaults()
}

func (o Options) withDefaults() Options {
	if o.SearchSiblingCap <= 0 {
		o.SearchSiblingCap = DefaultSearchSiblingCap
	}
	if o.VerseWalkCap <= 0 {
		o.VerseWalkCap = DefaultVerseWalkCap
	}
	if o.QuoteLookback <= 0 {
		o.QuoteLookback = DefaultQuoteLookback
	}
	return o
}
