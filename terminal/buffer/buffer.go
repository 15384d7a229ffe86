// Package buffer holds the scrollback and viewport rows that text is
// printed into, together with the cursor, the selection, markers and
// decorations.
//
// A Buffer is not safe for concurrent use by itself. Callers that share one
// between goroutines bracket their work with Lock and Unlock. Write and
// Resize do that on their own. Events raised while the lock is held are
// delivered by Unlock, after the lock is released.
package buffer

import (
	"io"
	"sync"

	"github.com/hnimtadd/termtext/logger"
	"github.com/hnimtadd/termtext/terminal/datastruct"
	"github.com/hnimtadd/termtext/terminal/event"
	"github.com/hnimtadd/termtext/terminal/grapheme"
	"github.com/hnimtadd/termtext/terminal/mode"
	"github.com/hnimtadd/termtext/terminal/page"
	"github.com/hnimtadd/termtext/terminal/set"
	"github.com/hnimtadd/termtext/terminal/style"
	"github.com/hnimtadd/termtext/terminal/tabstops"
	"github.com/hnimtadd/termtext/terminal/utils"
)

const (
	DefaultCols       = 80
	DefaultRows       = 24
	DefaultScrollback = 1000
)

type Options struct {
	Cols int // The number of columns in the viewport
	Rows int // The number of rows in the viewport

	// Rows kept above the viewport. Negative means none.
	Scrollback int

	// ConvertEOL makes LF also return the carriage, like a tty with onlcr.
	ConvertEOL bool

	// Provider folds code points into cells. Defaults to
	// grapheme.MustDefault().
	Provider grapheme.Provider

	Logger logger.Logger
}

// Cursor is the print position relative to the top of the active screen.
type Cursor struct {
	X, Y int
	// The last column was printed and the next print wraps first.
	PendingWrap bool
}

type ResizeEvent struct {
	Cols, Rows int
}

// cellRef points at the last printed cell so that following code points
// can join it.
type cellRef struct {
	row *page.Row
	x   int
}

type Buffer struct {
	mu     sync.Mutex
	locked bool
	queue  []func()
	before snapshot

	cols, rows int
	scrollback int

	// lines holds the scrollback followed by the active screen.
	lines []*page.Row
	// ybase is the index of the first row of the active screen.
	ybase int
	// ydisp is the index of the first row shown in the viewport.
	ydisp int

	cursor Cursor

	provider  grapheme.Provider
	preceding grapheme.JoinState
	last      cellRef

	modes    *mode.State
	tabstops *tabstops.Tabstops

	selection *Selection

	markers      *datastruct.IntrusiveLinkedList[*Marker]
	nextMarkerID int
	decorations  []*Decoration
	styles       *set.RefCountedSet[style.Style]

	written bool
	// trims counts rows dropped from the top, content moves under a still
	// cursor when it changes.
	trims int

	onWriteParsed event.Emitter[struct{}]
	onResize      event.Emitter[ResizeEvent]
	onCursorMove  event.Emitter[struct{}]
	onScroll      event.Emitter[int]

	logger logger.Logger
}

func New(opts Options) *Buffer {
	if opts.Cols <= 0 {
		opts.Cols = DefaultCols
	}
	if opts.Rows <= 0 {
		opts.Rows = DefaultRows
	}
	opts.Scrollback = max(opts.Scrollback, 0)
	if opts.Provider == nil {
		opts.Provider = grapheme.MustDefault()
	}

	b := &Buffer{
		cols:       opts.Cols,
		rows:       opts.Rows,
		scrollback: opts.Scrollback,
		lines:      make([]*page.Row, 0, opts.Rows),
		provider:   opts.Provider,
		modes:      mode.NewState(map[mode.Mode]bool{mode.LineFeed: opts.ConvertEOL}),
		tabstops:   tabstops.NewTabstops(opts.Cols, tabstops.TABSTOP_INTERVAL),
		markers:    datastruct.NewIntrusiveLinkedList[*Marker](),
		styles:     set.NewRefCountedSet[style.Style](set.Options{}),
		logger:     logger.OrNop(opts.Logger),
	}
	for range opts.Rows {
		b.lines = append(b.lines, page.NewRow(opts.Cols))
	}
	return b
}

type snapshot struct {
	cursor Cursor
	ybase  int
	ydisp  int
	trims  int
}

func (b *Buffer) snapshot() snapshot {
	return snapshot{cursor: b.cursor, ybase: b.ybase, ydisp: b.ydisp, trims: b.trims}
}

// Lock takes the buffer lock.
func (b *Buffer) Lock() {
	b.mu.Lock()
	b.locked = true
	b.before = b.snapshot()
	b.written = false
}

// Unlock releases the buffer lock and then delivers the events raised
// since Lock.
func (b *Buffer) Unlock() {
	after := b.snapshot()
	if b.written {
		b.queue = append(b.queue, func() { b.onWriteParsed.Fire(struct{}{}) })
	}
	if after.cursor != b.before.cursor || after.ybase != b.before.ybase || after.trims != b.before.trims {
		b.queue = append(b.queue, func() { b.onCursorMove.Fire(struct{}{}) })
	}
	if after.ydisp != b.before.ydisp {
		ydisp := after.ydisp
		b.queue = append(b.queue, func() { b.onScroll.Fire(ydisp) })
	}
	queue := b.queue
	b.queue = nil
	b.written = false
	b.locked = false
	b.mu.Unlock()

	for _, fn := range queue {
		fn()
	}
}

// emit delivers fn now, or on Unlock while the lock is held.
func (b *Buffer) emit(fn func()) {
	if b.locked {
		b.queue = append(b.queue, fn)
		return
	}
	fn()
}

// Update runs fn with the lock held.
func (b *Buffer) Update(fn func()) {
	b.Lock()
	defer b.Unlock()
	fn()
}

// WriteString prints s without escape sequence parsing. C0 controls are
// executed, everything else is printed.
func (b *Buffer) WriteString(s string) {
	b.Update(func() {
		for _, r := range s {
			if r < 0x20 || r == 0x7F {
				b.Execute(uint8(r))
			} else {
				b.Print(r)
			}
		}
	})
}

func (b *Buffer) Cols() int { return b.cols }

func (b *Buffer) Rows() int { return b.rows }

// Length is the number of rows, scrollback included.
func (b *Buffer) Length() int { return len(b.lines) }

// BaseY is the index of the first row of the active screen.
func (b *Buffer) BaseY() int { return b.ybase }

// ViewportY is the index of the first row in the viewport.
func (b *Buffer) ViewportY() int { return b.ydisp }

func (b *Buffer) Cursor() Cursor { return b.cursor }

// CursorX is the column the next print goes to, cols when a wrap is
// pending.
func (b *Buffer) CursorX() int {
	if b.cursor.PendingWrap {
		return b.cols
	}
	return b.cursor.X
}

// CursorY is the cursor row relative to BaseY.
func (b *Buffer) CursorY() int { return b.cursor.Y }

// Line returns the row at absolute index y, nil if there is none.
func (b *Buffer) Line(y int) *page.Row {
	if y < 0 || y >= len(b.lines) {
		return nil
	}
	return b.lines[y]
}

func (b *Buffer) Provider() grapheme.Provider { return b.provider }

// Modes is the mode state the printer honors.
func (b *Buffer) Modes() *mode.State { return b.modes }

// ScrollLines moves the viewport by n rows, negative is up.
func (b *Buffer) ScrollLines(n int) {
	b.ydisp = utils.Clamp(b.ydisp+n, 0, b.ybase)
}

// ScrollToBottom shows the active screen.
func (b *Buffer) ScrollToBottom() {
	b.ydisp = b.ybase
}

// EncodeUtf8 writes the whole buffer as text, trailing blanks left out.
// With unwrap, soft wrapped rows are joined.
func (b *Buffer) EncodeUtf8(w io.Writer, unwrap bool) (int64, error) {
	n, _, err := page.EncodeUtf8(w, b.lines, page.EncodeUtf8Options{Unwrap: unwrap})
	return n, err
}

func (b *Buffer) OnWriteParsed(fn func()) event.Disposable {
	return b.onWriteParsed.Subscribe(func(struct{}) { fn() })
}

func (b *Buffer) OnResize(fn func(ResizeEvent)) event.Disposable {
	return b.onResize.Subscribe(fn)
}

func (b *Buffer) OnCursorMove(fn func()) event.Disposable {
	return b.onCursorMove.Subscribe(func(struct{}) { fn() })
}

// OnScroll reports the new ViewportY.
func (b *Buffer) OnScroll(fn func(int)) event.Disposable {
	return b.onScroll.Subscribe(fn)
}
