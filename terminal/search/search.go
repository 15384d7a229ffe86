// Package search finds text in a buffer. Matches are looked up in logical
// lines, the rows of a soft wrapped line joined into one string, and are
// mapped back to cell ranges that never split a cluster.
//
// An Engine is attached to one buffer with Activate. Every operation takes
// the engine lock and then the buffer lock, so it is safe to search while
// another goroutine writes to the buffer through its own locking.
package search

import (
	"errors"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/dlclark/regexp2"

	"github.com/hnimtadd/termtext/logger"
	"github.com/hnimtadd/termtext/terminal/buffer"
	"github.com/hnimtadd/termtext/terminal/event"
	"github.com/hnimtadd/termtext/terminal/style"
)

const (
	DefaultHighlightLimit = 1000
	DefaultDebounce       = 200 * time.Millisecond
	DefaultLineCacheTTL   = 15 * time.Second
	DefaultRegexTimeout   = time.Second
)

var (
	// ErrNotActivated is returned by searches on an engine without a buffer.
	ErrNotActivated = errors.New("search engine is not activated")
	// ErrInvalidColumn is returned for a start column past the last column.
	ErrInvalidColumn = errors.New("invalid column")
)

// Options change how a single search matches.
type Options struct {
	CaseSensitive bool
	// Regex treats the term as an ECMAScript regular expression.
	Regex bool
	// WholeWord only accepts matches with a non-word character or the line
	// edge on both sides.
	WholeWord bool

	// Decorations highlights every match and the selected one. Nil means no
	// highlighting and no result events.
	Decorations *DecorationOptions

	// Incremental keeps the current match when it still matches, for
	// find-as-you-type.
	Incremental bool
	// NoScroll leaves the viewport where it is.
	NoScroll bool
}

// sameMatching reports whether a and b match the same text.
func (o Options) sameMatching(other Options) bool {
	return o.CaseSensitive == other.CaseSensitive &&
		o.Regex == other.Regex &&
		o.WholeWord == other.WholeWord
}

// DecorationOptions are the colors used to highlight matches. Unset colors
// are not drawn.
type DecorationOptions struct {
	MatchBackground    style.Color
	MatchBorder        style.Color
	MatchOverviewRuler style.Color

	ActiveMatchBackground    style.Color
	ActiveMatchBorder        style.Color
	ActiveMatchOverviewRuler style.Color
}

// Result is a match in cell coordinates. Row is absolute, Size is the
// number of cells covered and may run into the following rows.
type Result struct {
	Term string
	Row  int
	Col  int
	Size int
}

// ResultsEvent is fired after each decorated search. ResultIndex is the
// position of the selected match among the highlights, -1 if unknown.
type ResultsEvent struct {
	ResultIndex int
	ResultCount int
}

type EngineOptions struct {
	// Maximum number of highlighted matches. Defaults to
	// DefaultHighlightLimit.
	HighlightLimit int
	// Delay before highlights are refreshed after the buffer changed.
	Debounce time.Duration
	// How long decoded lines are kept.
	LineCacheTTL time.Duration
	// Upper bound for a single regular expression match.
	RegexTimeout time.Duration

	Clock   clock.Clock
	Metrics *Metrics
	Logger  logger.Logger
}

type Engine struct {
	mu      sync.Mutex
	buffer  *buffer.Buffer
	pending []func()
	subs    event.Store

	highlightLimit int
	debounce       time.Duration
	cacheTTL       time.Duration
	regexTimeout   time.Duration

	clock   clock.Clock
	metrics *Metrics
	logger  logger.Logger

	// The term of the previous search, if any.
	cachedTerm  string
	hasCached   bool
	lastOptions *Options

	lines      *lineCache
	regex      *regexp2.Regexp
	regexKey   regexKey
	highlights []*highlight
	// Rows that already carry an overview ruler mark.
	highlightedLines map[int]struct{}
	selected         *highlight

	highlightTimer *clock.Timer
	highlightGen   int

	onDidChangeResults event.Emitter[ResultsEvent]
}

func New(opts EngineOptions) *Engine {
	if opts.HighlightLimit <= 0 {
		opts.HighlightLimit = DefaultHighlightLimit
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.LineCacheTTL <= 0 {
		opts.LineCacheTTL = DefaultLineCacheTTL
	}
	if opts.RegexTimeout <= 0 {
		opts.RegexTimeout = DefaultRegexTimeout
	}
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}
	return &Engine{
		highlightLimit:   opts.HighlightLimit,
		debounce:         opts.Debounce,
		cacheTTL:         opts.LineCacheTTL,
		regexTimeout:     opts.RegexTimeout,
		clock:            opts.Clock,
		metrics:          opts.Metrics,
		logger:           logger.OrNop(opts.Logger),
		highlightedLines: make(map[int]struct{}),
	}
}

// Activate attaches the engine to b. Highlights follow writes to and
// resizes of b until Dispose.
func (e *Engine) Activate(b *buffer.Buffer) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.buffer = b
	e.subs.Add(b.OnWriteParsed(e.updateMatches))
	e.subs.Add(b.OnResize(func(buffer.ResizeEvent) { e.updateMatches() }))
}

// Dispose removes every decoration and detaches the engine.
func (e *Engine) Dispose() {
	e.subs.Dispose()
	e.withLocks(func() {
		e.clearDecorations(false)
		e.destroyLinesCache("dispose")
		e.highlightGen++
		if e.highlightTimer != nil {
			e.highlightTimer.Stop()
			e.highlightTimer = nil
		}
	})
	e.mu.Lock()
	e.buffer = nil
	e.mu.Unlock()
}

// withLocks runs fn holding the engine lock and the buffer lock. Events
// from either are delivered once both are released.
func (e *Engine) withLocks(fn func()) {
	e.mu.Lock()
	b := e.buffer
	if b != nil {
		b.Lock()
	}
	fn()
	pending := e.pending
	e.pending = nil
	e.mu.Unlock()
	if b != nil {
		b.Unlock()
	}
	for _, f := range pending {
		f()
	}
}

// FindNext selects the next match of term after the current selection,
// wrapping around at the end of the buffer. It reports whether there was a
// match.
func (e *Engine) FindNext(term string, opts Options) (found bool, err error) {
	e.withLocks(func() {
		found, err = e.findNext(term, opts)
	})
	e.metrics.observeQuery("next", found, err)
	return found, err
}

// FindPrevious selects the previous match of term before the current
// selection, wrapping around at the start of the buffer.
func (e *Engine) FindPrevious(term string, opts Options) (found bool, err error) {
	e.withLocks(func() {
		found, err = e.findPrevious(term, opts)
	})
	e.metrics.observeQuery("previous", found, err)
	return found, err
}

// FindFrom returns the first match of term at or after (col, row) without
// selecting it, nil if there is none. The search does not wrap around.
func (e *Engine) FindFrom(term string, row, col int, opts Options) (res *Result, err error) {
	e.withLocks(func() {
		if e.buffer == nil {
			err = ErrNotActivated
			return
		}
		res, err = e.find(term, row, col, opts)
	})
	return res, err
}

// ClearDecorations removes all highlights. The term is forgotten unless
// keepCachedTerm is set.
func (e *Engine) ClearDecorations(keepCachedTerm bool) {
	e.withLocks(func() {
		e.clearDecorations(keepCachedTerm)
	})
}

// ClearActiveDecoration removes the highlight of the selected match.
func (e *Engine) ClearActiveDecoration() {
	e.withLocks(e.clearSelected)
}

// Results returns the highlighted matches in buffer order.
func (e *Engine) Results() []Result {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Result, 0, len(e.highlights))
	for _, h := range e.highlights {
		out = append(out, h.result)
	}
	return out
}

// OnDidChangeResults is fired after every decorated search.
func (e *Engine) OnDidChangeResults(fn func(ResultsEvent)) event.Disposable {
	return e.onDidChangeResults.Subscribe(fn)
}

// emit delivers fn once the locks are released.
func (e *Engine) emit(fn func()) {
	e.pending = append(e.pending, fn)
}

func (e *Engine) findNext(term string, opts Options) (bool, error) {
	if e.buffer == nil {
		return false, ErrNotActivated
	}
	if err := e.prepare(term, opts); err != nil {
		return false, err
	}
	found, err := e.findNextAndSelect(term, opts)
	if err != nil {
		return false, err
	}
	e.fireResults(opts)
	e.cachedTerm, e.hasCached = term, true
	return found, nil
}

func (e *Engine) findPrevious(term string, opts Options) (bool, error) {
	if e.buffer == nil {
		return false, ErrNotActivated
	}
	if err := e.prepare(term, opts); err != nil {
		return false, err
	}
	found, err := e.findPreviousAndSelect(term, opts)
	if err != nil {
		return false, err
	}
	e.fireResults(opts)
	e.cachedTerm, e.hasCached = term, true
	return found, nil
}

// prepare remembers opts and refreshes the highlights when the term or the
// way of matching changed.
func (e *Engine) prepare(term string, opts Options) error {
	changed := e.lastOptions == nil || !e.lastOptions.sameMatching(opts)
	last := opts
	e.lastOptions = &last
	if opts.Decorations == nil {
		return nil
	}
	if !e.hasCached || term != e.cachedTerm || changed {
		return e.highlightAllMatches(term, opts)
	}
	return nil
}

// updateMatches schedules a highlight refresh after the buffer changed.
func (e *Engine) updateMatches() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.highlightTimer != nil {
		e.highlightTimer.Stop()
		e.highlightTimer = nil
	}
	e.highlightGen++
	if !e.hasCached || e.lastOptions == nil || e.lastOptions.Decorations == nil {
		return
	}
	gen := e.highlightGen
	e.highlightTimer = e.clock.AfterFunc(e.debounce, func() { e.rehighlight(gen) })
}

// rehighlight repeats the last search backwards from the current match,
// without moving the viewport.
func (e *Engine) rehighlight(gen int) {
	e.withLocks(func() {
		if gen != e.highlightGen || e.buffer == nil {
			return
		}
		e.highlightTimer = nil
		if !e.hasCached || e.lastOptions == nil {
			return
		}
		term := e.cachedTerm
		e.hasCached = false
		opts := *e.lastOptions
		opts.Incremental = true
		opts.NoScroll = true
		e.logger.Debug("refreshing search highlights", "term", term)
		if _, err := e.findPrevious(term, opts); err != nil {
			e.logger.Warn("failed to refresh search highlights", "error", err)
		}
	})
}
