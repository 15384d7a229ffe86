package color

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrInvalidColor = errors.New("invalid color")

// RGB is a struct that represents an RGB color.
type RGB struct {
	R, G, B uint8
}

// String formats the color as #rrggbb.
func (c RGB) String() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// MarshalText implements encoding.TextMarshaler.
func (c RGB) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler, accepting anything
// Parse does.
func (c *RGB) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Parse accepts #rgb, #rrggbb or one of the sixteen color names such as
// "red" or "bright-blue".
func Parse(s string) (RGB, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "#") {
		for t := ColorTypeBlack; t <= ColorTypeBrightWhite; t++ {
			if strings.EqualFold(s, t.String()) {
				return NewName(t).RGB(), nil
			}
		}
		return RGB{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}

	hex := s[1:]
	switch len(hex) {
	case 3:
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	case 6:
	default:
		return RGB{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return RGB{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	return RGB{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

// MustParse is like Parse but panics on error. Use for constants.
func MustParse(s string) RGB {
	c, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return c
}

type ColorType uint8

const (
	ColorTypeBlack ColorType = iota
	ColorTypeRed
	ColorTypeGreen
	ColorTypeYellow
	ColorTypeBlue
	ColorTypeMagenta
	ColorTypeCyan
	ColorTypeWhite
	ColorTypeBrightBlack
	ColorTypeBrightRed
	ColorTypeBrightGreen
	ColorTypeBrightYellow
	ColorTypeBrightBlue
	ColorTypeBrightMagenta
	ColorTypeBrightCyan
	ColorTypeBrightWhite
)

var colorTypeNames = [...]string{
	"black", "red", "green", "yellow", "blue", "magenta", "cyan", "white",
}

func (t ColorType) String() string {
	if t < ColorTypeBrightBlack {
		return colorTypeNames[t]
	}
	if t <= ColorTypeBrightWhite {
		return "bright-" + colorTypeNames[t-ColorTypeBrightBlack]
	}
	return fmt.Sprintf("ColorType(%d)", uint8(t))
}

type Name struct {
	Type ColorType
}

func NewName(colorType ColorType) Name {
	return Name{Type: colorType}
}

// RGB returns the default value of a named color.
func (n Name) RGB() RGB {
	switch n.Type {
	case ColorTypeBlack:
		return RGB{0x1D, 0x1F, 0x21}
	case ColorTypeRed:
		return RGB{0xCC, 0x66, 0x66}
	case ColorTypeGreen:
		return RGB{0xB5, 0xBD, 0x68}
	case ColorTypeYellow:
		return RGB{0xF0, 0xC6, 0x74}
	case ColorTypeBlue:
		return RGB{0x81, 0xA2, 0xBE}
	case ColorTypeMagenta:
		return RGB{0xB2, 0x94, 0xC7}
	case ColorTypeCyan:
		return RGB{0x8C, 0xC3, 0xE9}
	case ColorTypeWhite:
		return RGB{0xC5, 0xC8, 0xC6}
	case ColorTypeBrightBlack:
		return RGB{0x7C, 0x7C, 0x7C}
	case ColorTypeBrightRed:
		return RGB{0xFF, 0x8F, 0x8F}
	case ColorTypeBrightGreen:
		return RGB{0xB5, 0xBD, 0x68}
	case ColorTypeBrightYellow:
		return RGB{0xF0, 0xC6, 0x74}
	case ColorTypeBrightBlue:
		return RGB{0x81, 0xA2, 0xBE}
	case ColorTypeBrightMagenta:
		return RGB{0xB2, 0x94, 0xC7}
	case ColorTypeBrightCyan:
		return RGB{0x8C, 0xC3, 0xE9}
	case ColorTypeBrightWhite:
		return RGB{0xFF, 0xFF, 0xFF}
	default:
		return RGB{0, 0, 0}
	}
}
