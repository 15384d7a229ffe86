package buffer

// Point is a cell position, Y is an absolute row.
type Point struct {
	X, Y int
}

// Selection spans from Start to End in absolute rows. End.X is exclusive and
// may equal the column count.
type Selection struct {
	Start Point
	End   Point
}

// Select selects length cells starting at (col, row), continuing on the
// following rows when it runs past the last column.
func (b *Buffer) Select(col, row, length int) {
	endX, endY := col+length, row
	for endX > b.cols {
		endX -= b.cols
		endY++
	}
	b.selection = &Selection{
		Start: Point{X: col, Y: row},
		End:   Point{X: endX, Y: endY},
	}
}

func (b *Buffer) HasSelection() bool {
	return b.selection != nil
}

// SelectionPosition returns a copy of the selection, nil without one.
func (b *Buffer) SelectionPosition() *Selection {
	if b.selection == nil {
		return nil
	}
	sel := *b.selection
	return &sel
}

func (b *Buffer) ClearSelection() {
	b.selection = nil
}

// SelectionText is the selected text, rows joined with newlines unless
// soft wrapped.
func (b *Buffer) SelectionText() string {
	sel := b.selection
	if sel == nil {
		return ""
	}
	var out []rune
	for y := sel.Start.Y; y <= sel.End.Y; y++ {
		row := b.Line(y)
		if row == nil {
			break
		}
		start, end := 0, b.cols
		if y == sel.Start.Y {
			start = sel.Start.X
		}
		if y == sel.End.Y {
			end = sel.End.X
		}
		for x := start; x < end && x < row.Len(); {
			cell := row.Cells[x]
			if cell.HasText() {
				out = append(out, cell.Content...)
			} else if cell.Width() > 0 {
				out = append(out, ' ')
			}
			x += max(cell.Width(), 1)
		}
		if y != sel.End.Y && !row.Wrap {
			out = append(out, '\n')
		}
	}
	return string(out)
}

// shiftSelection moves the selection up by n rows, dropping it once its
// start leaves the buffer.
func (b *Buffer) shiftSelection(n int) {
	if b.selection == nil {
		return
	}
	b.selection.Start.Y -= n
	b.selection.End.Y -= n
	if b.selection.Start.Y < 0 {
		b.selection = nil
	}
}
