// Package library keeps a loaded OSIS document available to long-running
// callers. It memoizes chapter listings and searches, and can follow the
// file on disk, swapping in a fresh reader whenever the file changes.
package library

import (
	"context"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/FocuswithJustin/osisreader/core/cache"
	"github.com/FocuswithJustin/osisreader/core/canon"
	"github.com/FocuswithJustin/osisreader/core/errors"
	"github.com/FocuswithJustin/osisreader/core/osis"
	ttl "github.com/FocuswithJustin/osisreader/internal/cache"
	"github.com/FocuswithJustin/osisreader/internal/logging"
)

// Defaults for Options fields left at zero.
const (
	DefaultCacheEntries = 256
	DefaultCacheBytes   = 64 << 20
	DefaultSearchTTL    = 5 * time.Minute
	DefaultDebounce     = 250 * time.Millisecond
)

// Options configures a Library.
type Options struct {
	Reader osis.Options

	// CacheEntries bounds the number of memoized chapter listings.
	CacheEntries int
	// CacheBytes bounds the verse text held by the listing cache.
	CacheBytes int64
	// SearchTTL is how long search results stay cached.
	SearchTTL time.Duration
	// Debounce is the quiet period after a file change before reloading.
	Debounce time.Duration
}

func (o Options) withDefaults() Options {
	if o.CacheEntries <= 0 {
		o.CacheEntries = DefaultCacheEntries
	}
	if o.CacheBytes <= 0 {
		o.CacheBytes = DefaultCacheBytes
	}
	if o.SearchTTL <= 0 {
		o.SearchTTL = DefaultSearchTTL
	}
	if o.Debounce <= 0 {
		o.Debounce = DefaultDebounce
	}
	return o
}

type searchKey struct {
	term  string
	limit int
}

// Library serves queries against the current reader. Readers are swapped
// atomically, so a query always runs against one complete document.
type Library struct {
	path string
	opts Options

	current  atomic.Pointer[osis.Reader]
	reloads  atomic.Uint64
	reloadMu sync.Mutex

	verses   *cache.VerseCache
	searches *ttl.TTLCache[searchKey, []osis.SearchHit]
}

// Open loads the document at path.
func Open(path string, opts Options) (*Library, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.NewIO("resolve", path, err)
	}
	r, err := osis.LoadFile(abs, opts.Reader)
	if err != nil {
		return nil, err
	}
	l := newLibrary(r, opts)
	l.path = abs
	return l, nil
}

// New wraps an already loaded reader. The library cannot reload or watch.
func New(r *osis.Reader, opts Options) (*Library, error) {
	if r == nil {
		return nil, errors.NewValidation("reader", "must not be nil")
	}
	return newLibrary(r, opts), nil
}

func newLibrary(r *osis.Reader, opts Options) *Library {
	opts = opts.withDefaults()
	l := &Library{
		opts:     opts,
		verses:   cache.NewVerseCache(cache.Config{MaxSize: opts.CacheEntries}, opts.CacheBytes),
		searches: ttl.New[searchKey, []osis.SearchHit](opts.SearchTTL),
	}
	l.current.Store(r)
	return l
}

// Path returns the absolute path of the document, or "" for libraries built
// with New.
func (l *Library) Path() string { return l.path }

// Reader returns the current reader.
func (l *Library) Reader() *osis.Reader { return l.current.Load() }

// Reloads returns the number of successful reloads.
func (l *Library) Reloads() uint64 { return l.reloads.Load() }

// CacheStats returns statistics of the chapter listing cache.
func (l *Library) CacheStats() cache.Stats { return l.verses.Stats() }

// Reload reads the document again and swaps it in. On failure the current
// reader stays in place.
func (l *Library) Reload() error {
	if l.path == "" {
		return errors.NewUnsupported("reload", "library was not opened from a file")
	}
	l.reloadMu.Lock()
	defer l.reloadMu.Unlock()

	r, err := osis.LoadFile(l.path, l.opts.Reader)
	if err != nil {
		return err
	}
	old := l.current.Swap(r)
	if old.Metadata().Fingerprint != r.Metadata().Fingerprint {
		l.verses.Clear()
		l.searches.Invalidate()
	}
	l.reloads.Add(1)
	logging.Info("document_reloaded",
		"path", l.path,
		"fingerprint", r.Metadata().Fingerprint,
		"changed", old.Metadata().Fingerprint != r.Metadata().Fingerprint,
	)
	return nil
}

// Watch reloads the document whenever its file is written or replaced, until
// ctx is cancelled. Failed reloads are logged and the previous reader kept.
func (l *Library) Watch(ctx context.Context) error {
	if l.path == "" {
		return errors.NewUnsupported("watch", "library was not opened from a file")
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.NewIO("watch", l.path, err)
	}
	defer w.Close()

	// Watch the directory: editors often replace the file through a rename.
	if err := w.Add(filepath.Dir(l.path)); err != nil {
		return errors.NewIO("watch", l.path, err)
	}
	logging.Debug("watch_started", "path", l.path)

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != l.path || ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(l.opts.Debounce)
			} else {
				timer.Reset(l.opts.Debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			if err := l.Reload(); err != nil {
				logging.ReloadFailed(l.path, err)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logging.Warn("watch_error", "path", l.path, "error", err.Error())
		}
	}
}

func (l *Library) key(r *osis.Reader, op, ref string) cache.Key {
	return cache.Key{Fingerprint: r.Metadata().Fingerprint, Op: op, Ref: ref}
}

// Verses returns the verses of a chapter, memoized per document.
func (l *Library) Verses(chapterRef string) []osis.VerseRecord {
	r := l.Reader()
	return l.verses.GetOrCompute(l.key(r, "verses", chapterRef), func() []osis.VerseRecord {
		return r.Verses(chapterRef)
	})
}

// Passage parses a human-readable reference and returns its verses. It
// returns nil verses and a nil reference when the input does not parse.
func (l *Library) Passage(input string) (*canon.Reference, []osis.VerseRecord) {
	r := l.Reader()
	ref := r.ParseReference(input)
	if ref == nil {
		return nil, nil
	}
	return ref, l.verses.GetOrCompute(l.key(r, "passage", ref.String()), func() []osis.VerseRecord {
		return r.Passage(ref)
	})
}

// Search runs a verse search, caching results for the configured TTL.
func (l *Library) Search(ctx context.Context, term string, limit int) []osis.SearchHit {
	r := l.Reader()
	gen := r.Metadata().Fingerprint
	k := searchKey{term: term, limit: limit}
	if hits, ok := l.searches.Get(gen, k); ok {
		logging.DebugContext(ctx, "search_cache_hit", "term", term)
		return hits
	}
	hits := r.SearchVersesContext(ctx, term, limit)
	l.searches.Set(gen, k, hits)
	return hits
}
