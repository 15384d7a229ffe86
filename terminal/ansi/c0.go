// Package ansi names the control characters the stream and the buffer care
// about.
package ansi

type c0 struct {
	NUL uint8
	BS  uint8 // ^H, moves the cursor left
	HT  uint8 // ^I, next tab stop
	LF  uint8 // ^J
	VT  uint8 // ^K, same as LF
	FF  uint8 // ^L, same as LF
	CR  uint8 // ^M
	ESC uint8 // ^[, starts an escape sequence
	DEL uint8 // ^?, ignored
}

// C0 holds the 7-bit controls with a meaning for the buffer. Everything
// else in 0x00-0x1F is logged and dropped, see
// https://vt100.net/docs/vt100-ug/chapter3.html#S3.2
var C0 = c0{
	NUL: 0x00,
	BS:  0x08,
	HT:  0x09,
	LF:  0x0A,
	VT:  0x0B,
	FF:  0x0C,
	CR:  0x0D,
	ESC: 0x1B,
	DEL: 0x7F,
}

// IsC0 reports whether cp is a C0 control or DEL.
func IsC0(cp rune) bool {
	return cp < 0x20 || cp == rune(C0.DEL)
}
