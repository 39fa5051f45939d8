package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"

	"github.com/FocuswithJustin/osisreader/core/canon"
	"github.com/FocuswithJustin/osisreader/core/errors"
	"github.com/FocuswithJustin/osisreader/core/ir"
	"github.com/FocuswithJustin/osisreader/core/osis"
	"github.com/FocuswithJustin/osisreader/internal/library"
	"github.com/FocuswithJustin/osisreader/internal/logging"
)

// printJSON writes v as indented JSON.
func (e *env) printJSON(v any) error {
	enc := json.NewEncoder(e.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// InfoCmd shows document metadata.
type InfoCmd struct{}

func (c *InfoCmd) Run(e *env, cli *CLI) error {
	lib, err := cli.open()
	if err != nil {
		return err
	}
	r := lib.Reader()
	meta := r.Metadata()
	books := r.Books()

	if e.json {
		return e.printJSON(struct {
			osis.Metadata
			Books     int            `json:"books"`
			Anomalies osis.Anomalies `json:"anomalies"`
		}{meta, len(books), r.Anomalies()})
	}

	w := tabwriter.NewWriter(e.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, e.render.Heading(meta.Title))
	fmt.Fprintf(w, "Work:\t%s\n", meta.Work)
	if meta.Language != "" {
		fmt.Fprintf(w, "Language:\t%s\n", meta.Language)
	}
	if meta.RefSystem != "" {
		fmt.Fprintf(w, "Versification:\t%s\n", meta.RefSystem)
	}
	if meta.Publisher != "" {
		fmt.Fprintf(w, "Publisher:\t%s\n", meta.Publisher)
	}
	if meta.Rights != "" {
		fmt.Fprintf(w, "Rights:\t%s\n", meta.Rights)
	}
	fmt.Fprintf(w, "Style:\t%s\n", meta.Style)
	fmt.Fprintf(w, "Books:\t%d\n", len(books))
	fmt.Fprintf(w, "Size:\t%s\n", humanize.Bytes(uint64(meta.Size)))
	fmt.Fprintf(w, "Loaded:\t%s\n", humanize.Time(meta.LoadedAt))
	fmt.Fprintf(w, "Fingerprint:\t%s\n", meta.Fingerprint)
	if a := r.Anomalies(); a.Total() > 0 {
		fmt.Fprintf(w, "Anomalies:\t%d missing end markers, %d bad numbers\n", a.MissingEndMarkers, a.BadNumbers)
	}
	return w.Flush()
}

// BooksCmd lists books.
type BooksCmd struct {
	Canon bool `name:"canon" help:"List the full canon instead of the document's books"`
}

func (c *BooksCmd) Run(e *env, cli *CLI) error {
	var books []osis.BookSummary
	if c.Canon {
		books = osis.AllBooks()
	} else {
		lib, err := cli.open()
		if err != nil {
			return err
		}
		books = lib.Reader().Books()
	}

	if e.json {
		return e.printJSON(books)
	}
	w := tabwriter.NewWriter(e.out, 0, 0, 2, ' ', 0)
	for _, b := range books {
		fmt.Fprintf(w, "%s\t%s\t%s\n", e.render.Reference(b.ID), b.Name, b.Testament)
	}
	return w.Flush()
}

// ChaptersCmd lists the chapters of a book.
type ChaptersCmd struct {
	Book string `arg:"" help:"OSIS book id, e.g. Gen"`
}

func (c *ChaptersCmd) Run(e *env, cli *CLI) error {
	lib, err := cli.open()
	if err != nil {
		return err
	}
	chapters := lib.Reader().Chapters(c.Book)
	if e.json {
		return e.printJSON(chapters)
	}
	if len(chapters) == 0 {
		return errors.NewNotFound("book", c.Book)
	}
	for _, ch := range chapters {
		fmt.Fprintf(e.out, "%s  %s\n", e.render.Reference(ch.Reference), e.render.Muted(humanize.Comma(int64(ch.VerseCount))+" verses"))
	}
	return nil
}

// VersesCmd prints a chapter.
type VersesCmd struct {
	Chapter    string `arg:"" help:"OSIS chapter reference, e.g. Gen.1"`
	Paragraphs bool   `name:"paragraphs" short:"p" help:"Group verses into paragraphs"`
}

func (c *VersesCmd) Run(e *env, cli *CLI) error {
	lib, err := cli.open()
	if err != nil {
		return err
	}

	if c.Paragraphs {
		groups := lib.Reader().VersesParagraphStyle(c.Chapter)
		if e.json {
			return e.printJSON(groups)
		}
		if groups == nil {
			return errors.NewNotFound("chapter", c.Chapter)
		}
		for i, g := range groups {
			if i > 0 {
				fmt.Fprintln(e.out)
			}
			if text := e.render.Paragraph(g); text != "" {
				fmt.Fprintln(e.out, text)
			}
		}
		return nil
	}

	verses := lib.Verses(c.Chapter)
	if e.json {
		return e.printJSON(verses)
	}
	if verses == nil {
		return errors.NewNotFound("chapter", c.Chapter)
	}
	for _, v := range verses {
		fmt.Fprintln(e.out, e.render.Verse(v))
	}
	return nil
}

// VerseCmd prints one verse or a verse range within a chapter.
type VerseCmd struct {
	Ref string `arg:"" help:"OSIS verse reference, e.g. Gen.1.1 or Gen.1.1-3"`
}

func (c *VerseCmd) Run(e *env, cli *CLI) error {
	ref, err := ir.ParseRef(c.Ref)
	if err != nil {
		return &errors.ValidationError{Field: "reference", Value: c.Ref, Message: err.Error(), Err: err}
	}
	if ref.Verse == 0 {
		return errors.NewValidation("reference", fmt.Sprintf("%q names no verse; use verses for chapters", c.Ref))
	}
	lib, err := cli.open()
	if err != nil {
		return err
	}
	r := lib.Reader()

	if !ref.IsRange() {
		id := ref.VerseID(ref.Verse)
		text := r.VerseText(id)
		if e.json {
			return e.printJSON(map[string]string{"reference": id, "text": text})
		}
		if text == "" {
			return errors.NewNotFound("verse", id)
		}
		fmt.Fprintln(e.out, e.render.Markup(text))
		return nil
	}

	var verses []osis.VerseRecord
	for n := ref.Verse; n <= ref.VerseEnd; n++ {
		id := ref.VerseID(n)
		if text := r.VerseText(id); text != "" {
			verses = append(verses, osis.VerseRecord{Reference: id, VerseNumber: n, Text: text})
		}
	}
	if e.json {
		return e.printJSON(verses)
	}
	if len(verses) == 0 {
		return errors.NewNotFound("verse", ref.String())
	}
	for _, v := range verses {
		fmt.Fprintln(e.out, e.render.Verse(v))
	}
	return nil
}

// SearchCmd searches verse text.
type SearchCmd struct {
	Term  string `arg:"" help:"Words to search for"`
	Limit int    `name:"limit" short:"n" help:"Maximum number of hits" default:"20"`
}

func (c *SearchCmd) Run(e *env, cli *CLI) error {
	lib, err := cli.open()
	if err != nil {
		return err
	}
	hits := lib.Search(e.ctx, c.Term, c.Limit)
	if e.json {
		return e.printJSON(hits)
	}
	printHits(e, hits)
	return nil
}

func printHits(e *env, hits []osis.SearchHit) {
	for _, h := range hits {
		fmt.Fprintln(e.out, e.render.Hit(h))
	}
	fmt.Fprintln(e.out, e.render.Muted(humanize.Comma(int64(len(hits)))+" "+plural(len(hits), "hit", "hits")))
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// PassageCmd prints a passage given in human notation.
type PassageCmd struct {
	Ref string `arg:"" help:"Reference such as \"Genesis 1:1-3\" or \"Ps 23\""`
}

func (c *PassageCmd) Run(e *env, cli *CLI) error {
	lib, err := cli.open()
	if err != nil {
		return err
	}
	return printPassage(e, lib, c.Ref)
}

func printPassage(e *env, lib *library.Library, input string) error {
	ref, verses := lib.Passage(input)
	if ref == nil {
		return errors.NewValidation("reference", fmt.Sprintf("cannot parse %q", input))
	}
	if e.json {
		return e.printJSON(struct {
			Reference string             `json:"reference"`
			Verses    []osis.VerseRecord `json:"verses"`
		}{ref.String(), verses})
	}
	if len(verses) == 0 {
		return errors.NewNotFound("passage", ref.String())
	}
	fmt.Fprintln(e.out, e.render.Heading(ref.String()))
	chapter := ""
	for _, v := range verses {
		c := v.Reference
		if i := strings.LastIndexByte(c, '.'); i > 0 {
			c = c[:i]
		}
		if c != chapter {
			if chapter != "" {
				fmt.Fprintln(e.out, e.render.Muted(c))
			}
			chapter = c
		}
		fmt.Fprintln(e.out, e.render.Verse(v))
	}
	return nil
}

// ParseCmd resolves a human reference.
type ParseCmd struct {
	Ref string `arg:"" help:"Reference such as \"1 John 3:16\""`
}

func (c *ParseCmd) Run(e *env) error {
	ref := canon.ParseScripture(c.Ref)
	if ref == nil {
		return errors.NewValidation("reference", fmt.Sprintf("cannot parse %q", c.Ref))
	}
	if e.json {
		return e.printJSON(ref)
	}
	fmt.Fprintln(e.out, ref.String())
	return nil
}

// CompareCmd prints the same verse from several documents.
type CompareCmd struct {
	Ref       string   `arg:"" help:"OSIS verse reference, e.g. John.3.16"`
	Documents []string `arg:"" help:"Documents to compare" type:"existingfile"`
	Jobs      int      `name:"jobs" short:"j" help:"Documents loaded in parallel" default:"4"`
}

type comparison struct {
	Document string `json:"document"`
	Work     string `json:"work"`
	Text     string `json:"text"`
}

func (c *CompareCmd) Run(e *env, cli *CLI) error {
	results := make([]comparison, len(c.Documents))

	g, ctx := errgroup.WithContext(e.ctx)
	g.SetLimit(max(c.Jobs, 1))
	for i, path := range c.Documents {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r, err := osis.LoadFile(path, cli.readerOptions())
			if err != nil {
				return errors.Wrapf(err, "load %s", path)
			}
			results[i] = comparison{Document: path, Work: r.Metadata().Work, Text: r.VerseText(c.Ref)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	logging.DebugContext(e.ctx, "compare_completed", "reference", c.Ref, "documents", len(results))

	if e.json {
		return e.printJSON(results)
	}
	w := tabwriter.NewWriter(e.out, 0, 0, 2, ' ', 0)
	for _, res := range results {
		text := e.render.Markup(res.Text)
		if res.Text == "" {
			text = e.render.Muted("(missing)")
		}
		fmt.Fprintf(w, "%s\t%s\n", e.render.Reference(res.Work), text)
	}
	return w.Flush()
}

// DetectCmd checks a file for OSIS content.
type DetectCmd struct {
	Path string `arg:"" help:"File to check" type:"existingfile"`
}

func (c *DetectCmd) Run(e *env) error {
	f, err := os.Open(c.Path)
	if err != nil {
		return errors.NewIO("open", c.Path, err)
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, osis.MaxDocumentSize))
	if err != nil {
		return errors.NewIO("read", c.Path, err)
	}

	res := osis.Detect(data)
	if e.json {
		return e.printJSON(res)
	}
	status := "not OSIS"
	if res.Detected {
		status = "OSIS"
	}
	fmt.Fprintf(e.out, "%s: %s (%s)\n", c.Path, status, res.Reason)
	return nil
}

// ShellCmd reads queries from standard input. A line starting with "/"
// searches; any other line is read as a passage reference.
type ShellCmd struct {
	Watch bool `name:"watch" short:"w" help:"Reload the document when the file changes"`
	Limit int  `name:"limit" short:"n" help:"Maximum number of search hits" default:"20"`
}

func (c *ShellCmd) Run(e *env, cli *CLI) error {
	lib, err := cli.open()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(e.ctx)
	defer cancel()
	if c.Watch {
		go func() {
			if err := lib.Watch(ctx); err != nil {
				logging.WarnContext(ctx, "watch_stopped", "error", err.Error())
			}
		}()
	}

	scanner := bufio.NewScanner(e.in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case line == "quit" || line == "exit":
			return nil
		case strings.HasPrefix(line, "/"):
			printHits(e, lib.Search(ctx, strings.TrimPrefix(line, "/"), c.Limit))
		default:
			if err := printPassage(e, lib, line); err != nil {
				fmt.Fprintln(e.out, e.render.Muted(err.Error()))
			}
		}
		if ctx.Err() != nil {
			return nil
		}
	}
	return scanner.Err()
}

// VersionCmd prints the version.
type VersionCmd struct{}

func (c *VersionCmd) Run(e *env) error {
	fmt.Fprintf(e.out, "osis version %s\n", version)
	return nil
}
