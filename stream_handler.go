package termtext

import (
	"github.com/hnimtadd/termtext/logger"
	"github.com/hnimtadd/termtext/terminal/buffer"
	"github.com/hnimtadd/termtext/terminal/mode"
	"github.com/hnimtadd/termtext/terminal/parser"
)

// StreamHandler is the handler for the stream.Stream of a Terminal. It is
// stateless, everything it changes lives in the buffer. It must only be
// called with the buffer lock held.
type StreamHandler struct {
	buffer *buffer.Buffer
	logger logger.Logger
}

// Print implements stream.Handler.
func (s *StreamHandler) Print(cp rune) {
	s.buffer.Print(cp)
}

// Execute implements stream.Handler.
func (s *StreamHandler) Execute(c uint8) {
	s.buffer.Execute(c)
}

// Sequence implements stream.SequenceHandler. Only mode changes and full
// reset are understood. Any sequence ends the current cluster.
func (s *StreamHandler) Sequence(seq *parser.Sequence) {
	s.buffer.ResetJoinState()

	switch seq.Kind {
	case parser.SequenceCSI:
		switch seq.Final {
		case 'h':
			s.SetMode(seq, true)
			return
		case 'l':
			s.SetMode(seq, false)
			return
		}
	case parser.SequenceESC:
		// RIS
		if seq.Final == 'c' && len(seq.Intermediates) == 0 {
			s.buffer.Modes().Reset()
			return
		}
	}
	s.logger.Debug("unimplemented sequence", "sequence", seq.String())
}

// SetMode handles SM/RM and DECSET/DECRST. Unknown modes are ignored.
func (s *StreamHandler) SetMode(seq *parser.Sequence, enabled bool) {
	if len(seq.Intermediates) > 0 && !seq.Private() {
		return
	}
	ansi := !seq.Private()
	for _, p := range seq.Params {
		m, ok := mode.FromInt(int(p), ansi)
		if !ok {
			s.logger.Debug("unimplemented mode", "mode", p, "ansi", ansi)
			continue
		}
		s.buffer.Modes().Set(m, enabled)
	}
}
