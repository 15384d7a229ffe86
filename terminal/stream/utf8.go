package stream

import "github.com/hnimtadd/termtext/terminal/ansi"

// utf8Decoder is Bjoern Hoehrmann's UTF-8 DFA
// (http://bjoern.hoehrmann.de/utf-8/decoder/dfa) with U+FFFD for
// ill-formed input. It keeps its state between chunks.
type utf8Decoder struct {
	state uint8
	cp    rune
}

const (
	utf8Accept = 0
	utf8Reject = 12
)

var utf8dfa = [364]uint8{
	// byte -> character class
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9,
	7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7,
	8, 8, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2,
	10, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 4, 3, 3, 11, 6, 6, 6, 5, 8, 8, 8, 8, 8, 8, 8, 8, 8, 8, 8,

	// state + class -> state
	0, 12, 24, 36, 60, 96, 84, 12, 12, 12, 48, 72, 12, 12, 12, 12, 12, 12, 12, 12, 12, 12, 12, 12,
	12, 0, 12, 12, 12, 12, 12, 0, 12, 0, 12, 12, 12, 24, 12, 12, 12, 12, 12, 24, 12, 24, 12, 12,
	12, 12, 12, 12, 12, 12, 12, 24, 12, 12, 12, 12, 12, 24, 12, 12, 12, 12, 12, 12, 12, 24, 12, 12,
	12, 12, 12, 12, 12, 12, 12, 36, 12, 36, 12, 12, 12, 36, 12, 12, 12, 12, 12, 36, 12, 36, 12, 12,
	12, 36, 12, 12, 12, 12, 12, 12, 12, 12, 12, 12,
}

// pending reports whether a sequence was started and not finished.
func (d *utf8Decoder) pending() bool { return d.state != utf8Accept }

// step feeds one byte. ok is set when r holds a decoded code point. A byte
// that breaks a started sequence yields U+FFFD and is not consumed; the
// caller feeds it again.
func (d *utf8Decoder) step(c uint8) (r rune, ok, consumed bool) {
	class := utf8dfa[c]
	started := d.state != utf8Accept
	if started {
		d.cp = d.cp<<6 | rune(c&0x3F)
	} else {
		d.cp = rune(0xFF>>class) & rune(c)
	}
	d.state = utf8dfa[256+int(d.state)+int(class)]

	switch d.state {
	case utf8Accept:
		r, d.cp = d.cp, 0
		return r, true, true
	case utf8Reject:
		d.state, d.cp = utf8Accept, 0
		return 0xFFFD, true, !started
	}
	return 0, false, true
}

// decodeText decodes input into out until an ESC outside of a sequence. It
// returns the number of runes written and bytes consumed. An incomplete
// sequence at the end is consumed into the decoder state.
func (d *utf8Decoder) decodeText(input []uint8, out []rune) (n, consumed int) {
	for _, c := range input {
		if c == ansi.C0.ESC && !d.pending() {
			break
		}
		r, ok, used := d.step(c)
		if ok {
			out[n] = r
			n++
		}
		if !used {
			if c == ansi.C0.ESC {
				break
			}
			if r, ok, _ = d.step(c); ok {
				out[n] = r
				n++
			}
		}
		consumed++
	}
	return n, consumed
}
