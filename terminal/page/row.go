package page

// whitespace stands in for null cells when a row is turned into text.
const whitespace = ' '

type Row struct {
	// The cells in the row.
	Cells []*Cell
	// Whether the row is wrapped
	Wrap bool
	// Whether the row is a continuation of a wrapped line
	WrapContinuation bool
}

func NewRow(cols int) *Row {
	cells := make([]*Cell, cols)
	for i := range cells {
		cells[i] = &Cell{}
	}
	return &Row{Cells: cells}
}

// IsWrapped reports whether this row continues the row above it.
func (r *Row) IsWrapped() bool {
	return r.WrapContinuation
}

func (r *Row) Len() int {
	return len(r.Cells)
}

// Cell returns the cell at x, or nil if x is outside the row.
func (r *Row) Cell(x int) *Cell {
	if x < 0 || x >= len(r.Cells) {
		return nil
	}
	return r.Cells[x]
}

// TrimmedLength is the number of columns up to and including the last cell
// with content.
func (r *Row) TrimmedLength() int {
	for i := len(r.Cells) - 1; i >= 0; i-- {
		if r.Cells[i].HasText() {
			return i + r.Cells[i].Width()
		}
	}
	return 0
}

// AppendRunes appends the text of the row to dst. Null cells become spaces,
// spacer tails add nothing. With trimRight, trailing null cells are left
// out.
func (r *Row) AppendRunes(dst []rune, trimRight bool) []rune {
	end := len(r.Cells)
	if trimRight {
		end = r.TrimmedLength()
	}
	for x := 0; x < end; {
		cell := r.Cells[x]
		if cell.Wide == WideSpacerTail {
			x++
			continue
		}
		if cell.HasText() {
			dst = append(dst, cell.Content...)
		} else {
			dst = append(dst, whitespace)
		}
		// always advance by at least 1
		x += max(cell.Width(), 1)
	}
	return dst
}

// TranslateToString is the text of the row, see AppendRunes.
func (r *Row) TranslateToString(trimRight bool) string {
	return string(r.AppendRunes(nil, trimRight))
}

// Resize truncates or pads the row to cols cells. A wide character cut in
// half becomes a null cell.
func (r *Row) Resize(cols int) {
	switch {
	case cols < len(r.Cells):
		r.Cells = r.Cells[:cols]
		if cols > 0 && r.Cells[cols-1].Wide == WideWide {
			r.Cells[cols-1].Reset()
		}
	case cols > len(r.Cells):
		for range cols - len(r.Cells) {
			r.Cells = append(r.Cells, &Cell{})
		}
	}
}

// Clear resets every cell and both wrap flags.
func (r *Row) Clear() {
	for _, cell := range r.Cells {
		cell.Reset()
	}
	r.Wrap = false
	r.WrapContinuation = false
}
