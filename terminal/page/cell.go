package page

// Cell is one grid position. A cell holds a whole grapheme cluster, the
// code points that were folded into it while printing.
type Cell struct {
	// Code points of the cluster, empty for a null cell. Spacers never hold
	// content.
	Content []rune

	// The wide property of this cell, for wide characters. Characters in a
	// terminal grid can only be 1 or 2 cells wide. A wide character is alwasy
	// next to a spacer. This is used to determine both width and spacer
	// properties of a cell.
	Wide Wide
}

// Code is the first code point of the cluster, 0 for a null cell.
func (c *Cell) Code() rune {
	if len(c.Content) == 0 {
		return 0
	}
	return c.Content[0]
}

// Chars is the cluster as a string, "" for a null cell.
func (c *Cell) Chars() string {
	return string(c.Content)
}

// Len is the number of code points in the cluster.
func (c *Cell) Len() int {
	return len(c.Content)
}

// The width in grid cells that this cell takes up. The tail spacer of a wide
// character takes up nothing, its columns belong to the wide cell.
func (c *Cell) Width() int {
	switch c.Wide {
	case WideNarrow, WideSpacerHead:
		return 1
	case WideWide:
		return 2
	case WideSpacerTail:
		return 0
	default:
		panic("unknown cell wide")
	}
}

func (c *Cell) IsEmpty() bool {
	return len(c.Content) == 0
}

// Returns true if this cell represents a cell with text to render. A typed
// space is text, a null cell is not.
func (c *Cell) HasText() bool {
	return len(c.Content) != 0
}

// Set replaces the cell with a single code point.
func (c *Cell) Set(cp rune, wide Wide) {
	c.Content = append(c.Content[:0], cp)
	c.Wide = wide
}

// Append folds another code point into the cluster.
func (c *Cell) Append(cp rune) {
	c.Content = append(c.Content, cp)
}

// Reset turns the cell into a narrow null cell.
func (c *Cell) Reset() {
	c.Content = c.Content[:0]
	c.Wide = WideNarrow
}

// Returns true if the set of cells has text in it.
func hasTextAny(cells []*Cell) bool {
	for _, cell := range cells {
		if cell.HasText() {
			return true
		}
	}
	return false
}
