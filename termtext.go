// Package termtext is a text-only terminal: output is parsed into a
// scrollback buffer whose clusters follow the Unicode segmentation rules,
// and the buffer can be searched like a terminal emulator's find bar.
package termtext

import (
	"bytes"
	"fmt"
	"runtime/debug"

	"github.com/hnimtadd/termtext/config"
	"github.com/hnimtadd/termtext/logger"
	"github.com/hnimtadd/termtext/terminal/buffer"
	"github.com/hnimtadd/termtext/terminal/search"
	"github.com/hnimtadd/termtext/terminal/stream"
)

type Terminal struct {
	// The rows, cursor and decorations. Everything the stream handler
	// changes lives here.
	buffer *buffer.Buffer

	// The stream parser. This parses the output of the child process and
	// calls callbacks in the stream handler.
	terminalStream *stream.Stream

	search *search.Engine

	logger logger.Logger
}

type Options struct {
	Buffer buffer.Options
	Search search.EngineOptions
	Logger logger.Logger
}

// New creates a terminal with its search engine activated. The logger in
// Options is used for parts that have none of their own.
func New(opts Options) *Terminal {
	l := logger.OrNop(opts.Logger)
	if opts.Buffer.Logger == nil {
		opts.Buffer.Logger = l
	}
	if opts.Search.Logger == nil {
		opts.Search.Logger = l
	}

	b := buffer.New(opts.Buffer)
	handler := &StreamHandler{
		buffer: b,
		logger: l,
	}
	engine := search.New(opts.Search)
	engine.Activate(b)

	return &Terminal{
		buffer:         b,
		terminalStream: stream.NewStream(handler, l),
		search:         engine,
		logger:         l,
	}
}

// NewFromConfig creates a terminal from c. metrics may be nil.
func NewFromConfig(c *config.Config, l logger.Logger, metrics *search.Metrics) (*Terminal, error) {
	l = logger.OrNop(l)
	provider, err := c.Provider(l)
	if err != nil {
		return nil, err
	}
	bufferOpts := c.BufferOptions()
	bufferOpts.Provider = provider
	searchOpts := c.EngineOptions()
	searchOpts.Metrics = metrics

	return New(Options{
		Buffer: bufferOpts,
		Search: searchOpts,
		Logger: l,
	}), nil
}

// Buffer is the buffer output is printed into. Callers reading it while
// output is written lock it first.
func (t *Terminal) Buffer() *buffer.Buffer { return t.buffer }

// Search is the search engine attached to the buffer.
func (t *Terminal) Search() *search.Engine { return t.search }

// Resize the terminal.
func (t *Terminal) Resize(cols, rows int) {
	t.buffer.Resize(cols, rows)
}

// ProcessOutput parses buf into the buffer. A panic while parsing is
// recovered and returned as an error.
func (t *Terminal) ProcessOutput(buf []byte) (err error) {
	t.buffer.Lock()
	defer t.buffer.Unlock()
	defer func() {
		if r := recover(); r != nil {
			t.logger.Error("panic in ProcessOutput", "panic", r, "stack", string(debug.Stack()))
			err = fmt.Errorf("panic in ProcessOutput: %v", r)
		}
	}()
	t.terminalStream.NextSlice(buf)
	return nil
}

// Write implements io.Writer on top of ProcessOutput.
func (t *Terminal) Write(p []byte) (int, error) {
	if err := t.ProcessOutput(p); err != nil {
		return 0, err
	}
	return len(p), nil
}

// PlainString returns the text of every row, soft wraps kept as line
// breaks.
func (t *Terminal) PlainString() string {
	var buf bytes.Buffer
	t.buffer.Update(func() {
		_, _ = t.buffer.EncodeUtf8(&buf, false)
	})
	return buf.String()
}

// Close detaches the search engine. The terminal must not be written to
// afterwards.
func (t *Terminal) Close() error {
	t.search.Dispose()
	return nil
}
