package style

import (
	"fmt"
	"strings"

	"github.com/hnimtadd/termtext/terminal/color"
	"github.com/hnimtadd/termtext/terminal/set"
	"github.com/hnimtadd/termtext/terminal/utils"
	"github.com/mitchellh/hashstructure/v2"
)

// Style of a decoration drawn over a cell range.
type Style struct {
	BackgroundColor Color
	ForegroundColor Color
	BorderColor     Color
	// Color of the mark in the overview ruler, if any.
	RulerColor Color
}

func (s *Style) Reset() {
	*s = Style{}
}

func (s *Style) IsDefault() bool {
	return *s == Style{}
}

// SGR returns the escape sequence that paints text in this style on a true
// color terminal, empty for the default style.
func (s *Style) SGR() string {
	var params []string
	if s.ForegroundColor.Type == ColorTypeRGB {
		c := s.ForegroundColor.RGB
		params = append(params, fmt.Sprintf("38;2;%d;%d;%d", c.R, c.G, c.B))
	}
	if s.BackgroundColor.Type == ColorTypeRGB {
		c := s.BackgroundColor.RGB
		params = append(params, fmt.Sprintf("48;2;%d;%d;%d", c.R, c.G, c.B))
	}
	// There are no borders on a character grid, underline instead.
	if s.BorderColor.Type == ColorTypeRGB {
		c := s.BorderColor.RGB
		params = append(params, "4", fmt.Sprintf("58;2;%d;%d;%d", c.R, c.G, c.B))
	}
	if len(params) == 0 {
		return ""
	}
	return "\x1b[" + strings.Join(params, ";") + "m"
}

func (s Style) Hash() uint64 {
	hashed, err := hashstructure.Hash(s, hashstructure.FormatV2, nil)
	utils.Assert(err == nil, fmt.Sprintf("failed to hash style: %v", err))
	return hashed
}

func (s Style) Equals(other set.Hashable) bool {
	o, ok := other.(Style)
	return ok && o == s
}

func (s Style) Delete() {}

// Color of a decoration. The zero value is "no color", which is different
// from black.
type Color struct {
	Type ColorType
	RGB  color.RGB
}

func RGB(c color.RGB) Color {
	return Color{Type: ColorTypeRGB, RGB: c}
}

// ParseColor parses s with color.Parse. The empty string is no color.
func ParseColor(s string) (Color, error) {
	if s == "" {
		return Color{}, nil
	}
	c, err := color.Parse(s)
	if err != nil {
		return Color{}, err
	}
	return RGB(c), nil
}

func (c Color) String() string {
	switch c.Type {
	case ColorTypeNone:
		return "Color.none"
	case ColorTypeRGB:
		return fmt.Sprintf("Color.rgb{{ %d, %d, %d }}", c.RGB.R, c.RGB.G, c.RGB.B)
	default:
		return "Color.unknown"
	}
}

type ColorType int

const (
	ColorTypeNone ColorType = iota
	ColorTypeRGB
)
