package stream

import (
	"github.com/hnimtadd/termtext/logger"
	"github.com/hnimtadd/termtext/terminal/ansi"
	"github.com/hnimtadd/termtext/terminal/parser"
	"github.com/hnimtadd/termtext/terminal/utils"
)

// MaxCodePoints is the maximum number of codepoints decoded at one time.
const MaxCodePoints = 4096

// Handler receives the text and the C0 controls of a stream.
type Handler interface {
	Print(cp rune)
	Execute(c uint8)
}

// SequenceHandler is implemented by handlers that want to see complete
// escape sequences. Without it sequences are consumed and dropped.
type SequenceHandler interface {
	Sequence(seq *parser.Sequence)
}

// Stream splits a byte stream into printable code points, control
// characters and escape sequences.
type Stream struct {
	handler Handler
	parser  *parser.Parser
	utf8    utf8Decoder
	runes   []rune

	logger logger.Logger
}

func NewStream(handler Handler, l logger.Logger) *Stream {
	l = logger.OrNop(l)
	return &Stream{
		handler: handler,
		parser:  parser.NewParser(l),
		runes:   make([]rune, MaxCodePoints),
		logger:  l,
	}
}

// Write implements io.Writer. It never fails.
func (s *Stream) Write(p []byte) (int, error) {
	s.NextSlice(p)
	return len(p), nil
}

// NextSlice processes a chunk of input. Sequences and UTF-8 characters may
// be split across calls.
func (s *Stream) NextSlice(input []uint8) {
	for i := 0; i < len(input); {
		n := min(len(s.runes), len(input)-i)
		s.nextSliceCapped(input[i:i+n])
		i += n
	}
}

func (s *Stream) nextSliceCapped(input []uint8) {
	utils.Assert(len(input) <= len(s.runes))
	offset := 0

	// Finish a UTF-8 sequence left over from the previous chunk.
	for s.parser.State == parser.StateGround && s.utf8.pending() {
		if offset >= len(input) {
			return
		}
		s.nextUtf8(input[offset])
		offset++
	}

	// If we're not in the ground state then we process until we are. This
	// can happen if the last chunk of input put us in the middle of a control
	// sequence.
	offset += s.consumeUntilGround(input[offset:])
	offset += s.consumeAllEscapes(input[offset:])

	// In the ground state everything up to the next ESC is UTF-8 text.
	for s.parser.State == parser.StateGround && offset < len(input) {
		n, consumed := s.utf8.decodeText(input[offset:], s.runes)
		for _, cp := range s.runes[:n] {
			s.handleCodepoint(cp)
		}
		offset += consumed
		if offset >= len(input) {
			return
		}
		offset += s.consumeAllEscapes(input[offset:])
	}
	offset += s.consumeUntilGround(input[offset:])
}

// Next processes a single byte. Prefer NextSlice for anything longer.
func (s *Stream) Next(c uint8) {
	switch s.parser.State {
	case parser.StateGround:
		s.nextUtf8(c)
	default:
		s.nextNonUtf8(c)
	}
}

// nextUtf8 processes a single byte in the ground state.
func (s *Stream) nextUtf8(c uint8) {
	r, ok, consumed := s.utf8.step(c)
	if ok {
		s.handleCodepoint(r)
	}
	if !consumed {
		// A byte is never refused twice in a row.
		r, ok, consumed = s.utf8.step(c)
		utils.Assert(consumed)
		if ok {
			s.handleCodepoint(r)
		}
	}
}

// handleCodepoint routes a decoded code point. ESC switches the parser out
// of the ground state.
func (s *Stream) handleCodepoint(cp rune) {
	switch {
	case cp == rune(ansi.C0.ESC):
		s.nextNonUtf8(uint8(cp))
	case ansi.IsC0(cp):
		s.execute(uint8(cp))
	case cp >= 0x80 && cp <= 0x9F:
		// C1 controls arriving as UTF-8 are dropped.
	default:
		s.handler.Print(cp)
	}
}

// nextNonUtf8 feeds the parser outside of the ground state.
func (s *Stream) nextNonUtf8(c uint8) {
	for _, action := range s.parser.Next(c) {
		if action == nil {
			continue
		}
		switch action.Type {
		case parser.ActionPrint:
			s.handler.Print(rune(action.Byte))
		case parser.ActionExecute:
			s.execute(action.Byte)
		case parser.ActionESCDispatch, parser.ActionCSIDispatch,
			parser.ActionOSCEnd, parser.ActionDCSUnHook:
			if h, ok := s.handler.(SequenceHandler); ok {
				h.Sequence(action.Sequence)
			} else {
				s.logger.Debug("dropped sequence", "sequence", action.Sequence.String())
			}
		}
	}
}

func (s *Stream) execute(c uint8) {
	if !ansi.IsC0(rune(c)) {
		// C1 executes from the parser have no meaning here.
		return
	}
	s.handler.Execute(c)
}

// consumeUntilGround feeds the parser until it is back in the ground state
// and returns the number of bytes consumed.
func (s *Stream) consumeUntilGround(input []uint8) int {
	offset := 0
	for s.parser.State != parser.StateGround && offset < len(input) {
		s.nextNonUtf8(input[offset])
		offset++
	}
	return offset
}

// consumeAllEscapes parses escape sequences back-to-back until none are
// left and returns the number of bytes consumed.
func (s *Stream) consumeAllEscapes(input []uint8) int {
	offset := 0
	for offset < len(input) && input[offset] == ansi.C0.ESC {
		s.nextNonUtf8(input[offset])
		offset++
		offset += s.consumeUntilGround(input[offset:])
	}
	return offset
}
