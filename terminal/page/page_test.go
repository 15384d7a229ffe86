package page

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rowFromString(cols int, s string) *Row {
	row := NewRow(cols)
	x := 0
	for _, r := range s {
		row.Cells[x].Set(r, WideNarrow)
		x++
	}
	return row
}

func TestCell_Width(t *testing.T) {
	cell := &Cell{}
	assert.Equal(t, 1, cell.Width())
	assert.Equal(t, rune(0), cell.Code())
	assert.False(t, cell.HasText())

	cell.Set('中', WideWide)
	assert.Equal(t, 2, cell.Width())
	assert.Equal(t, '中', cell.Code())

	tail := &Cell{Wide: WideSpacerTail}
	assert.Equal(t, 0, tail.Width())

	head := &Cell{Wide: WideSpacerHead}
	assert.Equal(t, 1, head.Width())
}

func TestCell_Cluster(t *testing.T) {
	cell := &Cell{}
	cell.Set('e', WideNarrow)
	cell.Append(0x301)
	assert.Equal(t, "e\u0301", cell.Chars())
	assert.Equal(t, 2, cell.Len())

	cell.Reset()
	assert.True(t, cell.IsEmpty())
	assert.Equal(t, WideNarrow, cell.Wide)
}

func TestRow_TranslateToString(t *testing.T) {
	row := rowFromString(10, "ab")
	row.Cells[4].Set('c', WideNarrow)

	assert.Equal(t, "ab  c     ", row.TranslateToString(false))
	assert.Equal(t, "ab  c", row.TranslateToString(true))
	assert.Equal(t, 5, row.TrimmedLength())
}

func TestRow_TranslateToStringWide(t *testing.T) {
	row := NewRow(6)
	row.Cells[0].Set('中', WideWide)
	row.Cells[1].Wide = WideSpacerTail
	row.Cells[2].Set('x', WideNarrow)
	row.Cells[3].Set(' ', WideNarrow)

	assert.Equal(t, "中x ", row.TranslateToString(true))
	assert.Equal(t, "中x   ", row.TranslateToString(false))
	assert.Equal(t, 4, row.TrimmedLength())
}

func TestRow_Cell(t *testing.T) {
	row := NewRow(3)
	assert.NotNil(t, row.Cell(2))
	assert.Nil(t, row.Cell(3))
	assert.Nil(t, row.Cell(-1))
}

func TestRow_Resize(t *testing.T) {
	row := NewRow(4)
	row.Cells[2].Set('中', WideWide)
	row.Cells[3].Wide = WideSpacerTail

	row.Resize(3)
	assert.Equal(t, 3, row.Len())
	assert.True(t, row.Cells[2].IsEmpty())
	assert.Equal(t, WideNarrow, row.Cells[2].Wide)

	row.Resize(5)
	assert.Equal(t, 5, row.Len())
	assert.True(t, row.Cells[4].IsEmpty())
}

func TestEncodeUtf8(t *testing.T) {
	first := rowFromString(5, "hello")
	first.Wrap = true
	second := rowFromString(5, "world")
	second.WrapContinuation = true
	blank := NewRow(5)
	last := rowFromString(5, "x")

	var buf bytes.Buffer
	_, state, err := EncodeUtf8(&buf, []*Row{first, second, blank, last}, EncodeUtf8Options{Unwrap: true})
	require.NoError(t, err)
	assert.Equal(t, "helloworld\n\nx", buf.String())
	assert.EqualValues(t, 1, state.Rows)

	buf.Reset()
	_, _, err = EncodeUtf8(&buf, []*Row{first, second}, EncodeUtf8Options{})
	require.NoError(t, err)
	assert.Equal(t, "hello\nworld", buf.String())
}
