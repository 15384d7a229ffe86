package termtext

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hnimtadd/termtext/config"
	"github.com/hnimtadd/termtext/terminal/buffer"
	"github.com/hnimtadd/termtext/terminal/grapheme"
	"github.com/hnimtadd/termtext/terminal/mode"
	"github.com/hnimtadd/termtext/terminal/search"
)

func newTestTerminal(t *testing.T, cols, rows int) *Terminal {
	t.Helper()
	term := New(Options{
		Buffer: buffer.Options{
			Cols:       cols,
			Rows:       rows,
			Scrollback: 100,
			ConvertEOL: true,
		},
	})
	t.Cleanup(func() { _ = term.Close() })
	return term
}

func TestTerminal_InputWithNoControlCharacters(t *testing.T) {
	term := newTestTerminal(t, 40, 40)

	n, err := fmt.Fprint(term, "hello")
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	assert.Equal(t, buffer.Cursor{X: 5, Y: 0}, term.Buffer().Cursor())
	assert.Equal(t, "hello", term.PlainString())
}

func TestTerminal_InputWithWraparound(t *testing.T) {
	term := newTestTerminal(t, 5, 40)
	require.NoError(t, term.ProcessOutput([]byte("helloworldabc12")))

	assert.Equal(t, "hello\nworld\nabc12", term.PlainString())
	assert.True(t, term.Buffer().Cursor().PendingWrap)
}

func TestTerminal_SplitUtf8(t *testing.T) {
	term := newTestTerminal(t, 10, 3)
	wide := []byte("中")
	require.NoError(t, term.ProcessOutput(wide[:2]))
	require.NoError(t, term.ProcessOutput(wide[2:]))
	require.NoError(t, term.ProcessOutput([]byte("x")))

	assert.Equal(t, "中x", term.PlainString())
	assert.Equal(t, 3, term.Buffer().CursorX())
}

func TestTerminal_SequencesAreDropped(t *testing.T) {
	term := newTestTerminal(t, 20, 3)
	require.NoError(t, term.ProcessOutput([]byte("a\x1b[31mb\x1b[0m\x1b]0;title\x07c")))
	assert.Equal(t, "abc", term.PlainString())
}

func TestTerminal_SequenceEndsCluster(t *testing.T) {
	term := newTestTerminal(t, 20, 3)
	require.NoError(t, term.ProcessOutput([]byte("\U0001F1FA\x1b[m\U0001F1F8")))

	line := term.Buffer().Line(0)
	assert.Equal(t, "\U0001F1FA", line.Cells[0].Chars())
	assert.Equal(t, "\U0001F1F8", line.Cells[line.Cells[0].Width()].Chars())
}

func TestTerminal_SetMode(t *testing.T) {
	term := newTestTerminal(t, 5, 3)
	modes := term.Buffer().Modes()

	require.NoError(t, term.ProcessOutput([]byte("\x1b[?7l")))
	assert.False(t, modes.Get(mode.Wraparound))
	require.NoError(t, term.ProcessOutput([]byte("abcdefg")))
	assert.Equal(t, "abcdg", term.PlainString())

	require.NoError(t, term.ProcessOutput([]byte("\x1b[?7h\x1b[20l")))
	assert.True(t, modes.Get(mode.Wraparound))
	assert.False(t, modes.Get(mode.LineFeed))

	// ANSI 7 and private 20 are not modes we know.
	require.NoError(t, term.ProcessOutput([]byte("\x1b[7l\x1b[?20h")))
	assert.True(t, modes.Get(mode.Wraparound))
	assert.False(t, modes.Get(mode.LineFeed))
}

func TestTerminal_FullResetRestoresModes(t *testing.T) {
	term := newTestTerminal(t, 5, 3)
	modes := term.Buffer().Modes()

	require.NoError(t, term.ProcessOutput([]byte("\x1b[?7l\x1b[20l")))
	require.NoError(t, term.ProcessOutput([]byte("\x1bc")))
	assert.True(t, modes.Get(mode.Wraparound))
	assert.True(t, modes.Get(mode.LineFeed), "ConvertEOL is the default")
}

func TestTerminal_Search(t *testing.T) {
	term := newTestTerminal(t, 10, 4)
	require.NoError(t, term.ProcessOutput([]byte("the quick brown fox")))

	found, err := term.Search().FindNext("brown", search.Options{})
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "brown", term.Buffer().SelectionText())

	res, err := term.Search().FindFrom("quick brown", 0, 0, search.Options{})
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, search.Result{Term: "quick brown", Row: 0, Col: 4, Size: 11}, *res)
}

func TestTerminal_Resize(t *testing.T) {
	term := newTestTerminal(t, 10, 4)
	term.Resize(20, 6)
	assert.Equal(t, 20, term.Buffer().Cols())
	assert.Equal(t, 6, term.Buffer().Rows())
}

func TestTerminal_Close(t *testing.T) {
	term := New(Options{})
	require.NoError(t, term.Close())
	_, err := term.Search().FindNext("x", search.Options{})
	assert.ErrorIs(t, err, search.ErrNotActivated)
}

func TestTerminal_NewFromConfig(t *testing.T) {
	c := config.Default()
	c.Terminal.Cols = 12
	c.Unicode.Version = grapheme.VersionWidth15

	term, err := NewFromConfig(c, nil, search.NewMetrics(nil))
	require.NoError(t, err)
	defer term.Close()
	assert.Equal(t, 12, term.Buffer().Cols())
	assert.Equal(t, grapheme.VersionWidth15, term.Buffer().Provider().Version())

	c.Unicode.Version = "9"
	_, err = NewFromConfig(c, nil, nil)
	assert.Error(t, err)
}
