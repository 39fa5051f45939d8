// Command osis reads OSIS XML Bibles from the command line.
// It lists books, chapters and verses, searches verse text and resolves
// human-readable references in either OSIS encoding.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/FocuswithJustin/osisreader/core/errors"
	"github.com/FocuswithJustin/osisreader/core/osis"
	"github.com/FocuswithJustin/osisreader/internal/library"
	"github.com/FocuswithJustin/osisreader/internal/logging"
	"github.com/FocuswithJustin/osisreader/internal/render"
)

const version = "0.1.0"

// CLI defines the command-line interface for osis.
type CLI struct {
	// Global flags
	Document     string          `name:"document" short:"d" help:"OSIS document (.xml or .xml.xz)" type:"path" env:"OSIS_DOCUMENT"`
	JSON         bool            `name:"json" help:"Print results as JSON"`
	NoColor      bool            `name:"no-color" help:"Disable colour output" env:"NO_COLOR"`
	Width        int             `name:"width" help:"Wrap paragraphs to this many columns (0 = no wrapping)" default:"0"`
	IncludeNotes bool            `name:"include-notes" help:"Keep footnotes and cross references in verse text"`
	LogLevel     string          `name:"log-level" help:"Log level (debug, info, warn, error)" default:"warn" env:"OSIS_LOG_LEVEL"`
	LogFormat    string          `name:"log-format" help:"Log format (text, json)" default:"text" env:"OSIS_LOG_FORMAT"`
	Config       kong.ConfigFlag `name:"config" help:"Load flags from a TOML or YAML file"`
	Cache        int             `name:"cache-entries" help:"Chapter listings kept in memory" default:"256"`

	Info     InfoCmd     `cmd:"" help:"Show document metadata"`
	Books    BooksCmd    `cmd:"" help:"List the books of the document"`
	Chapters ChaptersCmd `cmd:"" help:"List the chapters of a book"`
	Verses   VersesCmd   `cmd:"" help:"Print the verses of a chapter"`
	Verse    VerseCmd    `cmd:"" help:"Print one verse by OSIS reference"`
	Search   SearchCmd   `cmd:"" help:"Search verse text"`
	Passage  PassageCmd  `cmd:"" help:"Print a passage such as \"John 3:16-18\""`
	Parse    ParseCmd    `cmd:"" help:"Resolve a human reference to OSIS notation"`
	Compare  CompareCmd  `cmd:"" help:"Print one verse from several documents"`
	Detect   DetectCmd   `cmd:"" help:"Check whether a file is OSIS XML"`
	Shell    ShellCmd    `cmd:"" help:"Read references and searches interactively"`
	Version  VersionCmd  `cmd:"" help:"Print version information"`
}

// env carries the per-invocation state bound into every command.
type env struct {
	ctx    context.Context
	in     io.Reader
	out    io.Writer
	render *render.Renderer
	json   bool
}

func (c *CLI) readerOptions() osis.Options {
	return osis.Options{IncludeNotes: c.IncludeNotes}
}

// open loads the document named by --document.
func (c *CLI) open() (*library.Library, error) {
	if c.Document == "" {
		return nil, &errors.ValidationError{
			Field:   "document",
			Message: "no document given; use --document or OSIS_DOCUMENT",
			Err:     errors.ErrNoDocument,
		}
	}
	return library.Open(c.Document, library.Options{
		Reader:       c.readerOptions(),
		CacheEntries: c.Cache,
	})
}

func newParser(cli *CLI, stdout, stderr io.Writer, exit func(int)) (*kong.Kong, error) {
	return kong.New(cli,
		kong.Name("osis"),
		kong.Description("OSIS Bible reader - chapters, verses, passages and search"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true}),
		kong.Configuration(configLoader, "~/.config/osisreader/config.toml", "~/.config/osisreader/config.yaml", ".osisreader.toml", ".osisreader.yaml"),
		kong.Writers(stdout, stderr),
		kong.Exit(exit),
	)
}

// run parses args and executes the selected command.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer, exit func(int)) error {
	var cli CLI
	parser, err := newParser(&cli, stdout, stderr, exit)
	if err != nil {
		return err
	}
	kctx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	logging.InitLoggerTo(stderr, logging.ParseLevel(cli.LogLevel), logging.ParseFormat(cli.LogFormat))
	ctx = logging.WithRequestID(ctx, uuid.NewString())

	e := &env{
		ctx:    ctx,
		in:     stdin,
		out:    stdout,
		render: render.New(stdout, render.Options{Color: !cli.NoColor, Width: cli.Width}),
		json:   cli.JSON,
	}
	logging.DebugContext(ctx, "command_started", "command", kctx.Command())
	return kctx.Run(e, &cli)
}

func main() {
	// A missing .env file is not an error.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr, os.Exit); err != nil {
		fmt.Fprintf(os.Stderr, "osis: error: %v\n", err)
		os.Exit(errors.ExitCode(err))
	}
}
