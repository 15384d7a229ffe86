package ansi

import "fmt"

// c0Names holds the mnemonic of every C0 control, indexed by value.
var c0Names = [0x20]string{
	"NUL", "SOH", "STX", "ETX", "EOT", "ENQ", "ACK", "BEL",
	"BS", "HT", "LF", "VT", "FF", "CR", "SO", "SI",
	"DLE", "DC1", "DC2", "DC3", "DC4", "NAK", "SYN", "ETB",
	"CAN", "EM", "SUB", "ESC", "FS", "GS", "RS", "US",
}

// Name returns the mnemonic of a C0 control or DEL, or "" for other bytes.
func Name(c uint8) string {
	switch {
	case int(c) < len(c0Names):
		return c0Names[c]
	case c == C0.DEL:
		return "DEL"
	}
	return ""
}

// String describes a byte for logging, e.g. "LF (0x0A)".
func String(c uint8) string {
	if name := Name(c); name != "" {
		return fmt.Sprintf("%s (0x%02X)", name, c)
	}
	return fmt.Sprintf("0x%02X (%q)", c, rune(c))
}
