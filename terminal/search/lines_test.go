package search

import (
	"testing"

	"github.com/rivo/uniseg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hnimtadd/termtext/terminal/page"
)

func TestEngine_TranslateLine(t *testing.T) {
	e := newTestEngine(t, 10, 4, "the quick brown fox jumps\nover", EngineOptions{})

	entry := e.translateLine(0, true)
	require.NotNil(t, entry)
	assert.Equal(t, "the quick brown fox jumps", string(entry.text))
	assert.Equal(t, []int{0, 10, 20}, entry.offsets)

	entry = e.translateLine(3, true)
	require.NotNil(t, entry)
	assert.Equal(t, "over", string(entry.text))
	assert.Equal(t, []int{0}, entry.offsets)

	assert.Nil(t, e.translateLine(4, true))
}

func TestEngine_TranslateLineDropsSpacerHead(t *testing.T) {
	e := newTestEngine(t, 5, 3, "abcd中x", EngineOptions{})
	entry := e.translateLine(0, true)
	assert.Equal(t, "abcd中x", string(entry.text))
	assert.Equal(t, []int{0, 4}, entry.offsets)
}

func TestEngine_LineCacheReuse(t *testing.T) {
	e := newTestEngine(t, 10, 3, "abc", EngineOptions{})
	e.withLocks(func() {
		e.initLinesCache()
		first := e.lineAt(0)
		assert.Same(t, first, e.lineAt(0))
		e.destroyLinesCache("test")
		assert.NotSame(t, first, e.lineAt(0))
	})
}

func TestEngine_BufferColsToStringOffset(t *testing.T) {
	e := newTestEngine(t, 10, 3, "a中e\u0301 b", EngineOptions{})

	// a | 中 spacer | e+acute | ' ' | b
	for col, want := range []int{0, 1, 2, 2, 4, 5, 6, 7, 8, 9, 10} {
		assert.Equal(t, want, e.BufferColsToStringOffset(0, col), "col %d", col)
	}
}

// Listeners run after both locks are released and may call back in.
func TestEngine_OffsetsFromBufferListener(t *testing.T) {
	e := newTestEngine(t, 10, 3, "", EngineOptions{})
	var offset, size int
	sub := e.buffer.OnWriteParsed(func() {
		offset = e.BufferColsToStringOffset(0, 3)
		size = e.StringLengthToBufferSize(0, 3)
	})
	defer sub.Dispose()

	e.buffer.WriteString("a中xy")
	assert.Equal(t, 2, offset)
	assert.Equal(t, 4, size)
}

func TestEngine_BufferColsToStringOffsetWrapped(t *testing.T) {
	e := newTestEngine(t, 10, 3, "the quick brown fox", EngineOptions{})
	assert.Equal(t, 10, e.BufferColsToStringOffset(0, 10))
	assert.Equal(t, 15, e.BufferColsToStringOffset(0, 15))
	assert.Equal(t, 5, e.BufferColsToStringOffset(1, 5))
	assert.Equal(t, 5, e.StringLengthToBufferSize(1, 5))
}

// Every column that starts a cell survives the round trip.
func TestEngine_OffsetColumnRoundTrip(t *testing.T) {
	texts := []string{
		"plain ascii text",
		"a中e\u0301 b文",
		"\U0001F1FA\U0001F1F8\U0001F1EB x",
		"\U0001F44D\U0001F3FD\u2764\ufe0f!",
		"\u1100\u1161\u11a8 ok",
		"the quick brown fox jumps over the lazy dog",
		"abcd中xyz中",
	}
	for _, text := range texts {
		e := newTestEngine(t, 12, 6, text, EngineOptions{})
		for row := 0; row < e.buffer.Length(); row++ {
			line := e.buffer.Line(row)
			for col := 0; col < line.Len(); col++ {
				if line.Cells[col].Wide == page.WideSpacerTail {
					continue
				}
				offset := e.BufferColsToStringOffset(row, col)
				assert.Equal(t, col, e.StringLengthToBufferSize(row, offset), "%q row %d col %d", text, row, col)
			}
		}
	}
}

// The cells of a line hold the same clusters uniseg finds in its text.
func TestEngine_LineClustersMatchUniseg(t *testing.T) {
	for _, text := range []string{
		"a\u0301bc",
		"\U0001F1FA\U0001F1F8\U0001F1EB",
		"\U0001F44D\U0001F3FD and \u2764\ufe0f",
		"\u1100\u1161\u11a8",
	} {
		e := newTestEngine(t, 40, 3, text, EngineOptions{})
		line := e.buffer.Line(0)

		var cells []string
		for _, cell := range line.Cells {
			if cell.HasText() {
				cells = append(cells, cell.Chars())
			}
		}

		var clusters []string
		state := -1
		rest := text
		for len(rest) > 0 {
			var cluster string
			cluster, rest, _, state = uniseg.FirstGraphemeClusterInString(rest, state)
			clusters = append(clusters, cluster)
		}
		assert.Equal(t, clusters, cells, "%q", text)
	}
}

func TestEngine_StringOffsetRounding(t *testing.T) {
	e := newTestEngine(t, 10, 3, "e\u0301x", EngineOptions{})
	e.withLocks(func() {
		assert.Equal(t, 0, e.stringOffsetToCol(0, 1, false))
		assert.Equal(t, 1, e.stringOffsetToCol(0, 1, true))
		assert.Equal(t, 1, e.stringOffsetToCol(0, 2, false))
		assert.Equal(t, 2, e.stringOffsetToCol(0, 3, true))
		assert.Equal(t, 0, e.stringOffsetToCol(7, 3, true), "no such row")
	})
}
