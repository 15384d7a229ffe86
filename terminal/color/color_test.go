package color

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Hex(t *testing.T) {
	c, err := Parse("#ffaa00")
	require.NoError(t, err)
	assert.Equal(t, RGB{0xff, 0xaa, 0x00}, c)

	c, err = Parse("#5a3")
	require.NoError(t, err)
	assert.Equal(t, RGB{0x55, 0xaa, 0x33}, c)
	assert.Equal(t, "#55aa33", c.String())
}

func TestParse_Name(t *testing.T) {
	c, err := Parse("Yellow")
	require.NoError(t, err)
	assert.Equal(t, NewName(ColorTypeYellow).RGB(), c)

	c, err = Parse("bright-white")
	require.NoError(t, err)
	assert.Equal(t, RGB{0xff, 0xff, 0xff}, c)
}

func TestParse_Invalid(t *testing.T) {
	for _, s := range []string{"", "#", "#12345", "#gggggg", "purple-ish"} {
		_, err := Parse(s)
		assert.ErrorIs(t, err, ErrInvalidColor, s)
	}
	assert.Panics(t, func() { MustParse("nope") })
}

func TestRGB_Text(t *testing.T) {
	var c RGB
	require.NoError(t, c.UnmarshalText([]byte("#010203")))
	assert.Equal(t, RGB{1, 2, 3}, c)
	text, err := c.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "#010203", string(text))
	assert.Error(t, c.UnmarshalText([]byte("bad")))
}

func TestColorType_String(t *testing.T) {
	assert.Equal(t, "black", ColorTypeBlack.String())
	assert.Equal(t, "bright-cyan", ColorTypeBrightCyan.String())
	assert.Equal(t, "ColorType(42)", ColorType(42).String())
}
