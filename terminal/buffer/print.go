package buffer

import (
	"github.com/hnimtadd/termtext/terminal/ansi"
	"github.com/hnimtadd/termtext/terminal/mode"
	"github.com/hnimtadd/termtext/terminal/page"
	"github.com/hnimtadd/termtext/terminal/utils"
)

// cursorRow is the row under the cursor.
func (b *Buffer) cursorRow() *page.Row {
	return b.lines[b.ybase+b.cursor.Y]
}

// Print writes one code point at the cursor. A code point that joins the
// previous one is folded into the previous cell instead. Must be called
// with the lock held.
func (b *Buffer) Print(cp rune) {
	b.written = true

	state := b.provider.CharProperties(cp, b.preceding)
	b.preceding = state
	if state.Joined() && b.last.row != nil {
		b.join(cp, state.Width())
		return
	}

	width := utils.Clamp(state.Width(), 1, 2)
	wraparound := b.modes.Get(mode.Wraparound)

	if b.cursor.PendingWrap && wraparound {
		b.printWrap()
	}

	switch {
	case width == 1 || b.cols < 2:
		b.printCell(cp, page.WideNarrow)

	default:
		// A wide character that does not fit leaves a spacer head and
		// continues on the next row.
		if b.cursor.X == b.cols-1 {
			if !wraparound {
				return
			}
			b.printCell(0, page.WideSpacerHead)
			b.printWrap()
		}
		b.printCell(cp, page.WideWide)
		b.cursor.X++
		b.printCell(0, page.WideSpacerTail)
	}

	// At the end of the line the cursor stays put until the next print.
	if b.cursor.X == b.cols-1 {
		b.cursor.PendingWrap = true
		return
	}
	b.cursor.X++
}

// join folds cp into the last printed cell. When the cluster becomes wide
// and the cell to its right is free, the cell is widened.
func (b *Buffer) join(cp rune, width int) {
	row, x := b.last.row, b.last.x
	cell := row.Cells[x]
	cell.Append(cp)

	if width < 2 || cell.Wide != page.WideNarrow {
		return
	}
	if row != b.cursorRow() || b.cursor.PendingWrap || b.cursor.X != x+1 {
		return
	}

	cell.Wide = page.WideWide
	b.cursor.X = x + 1
	b.printCell(0, page.WideSpacerTail)
	if b.cursor.X == b.cols-1 {
		b.cursor.PendingWrap = true
		return
	}
	b.cursor.X++
}

// printCell overwrites the cell under the cursor. Halves of a wide character
// that get overwritten are cleared.
func (b *Buffer) printCell(cp rune, wide page.Wide) {
	row := b.cursorRow()
	x := b.cursor.X
	cell := row.Cells[x]

	if cell.Wide != wide {
		switch cell.Wide {
		case page.WideWide:
			if x+1 < b.cols {
				row.Cells[x+1].Reset()
			}
		case page.WideSpacerTail:
			utils.Assert(x > 0, "spacer tail in the first column")
			row.Cells[x-1].Reset()
		case page.WideNarrow, page.WideSpacerHead:
		}
	}

	if cp == 0 {
		cell.Reset()
		cell.Wide = wide
		return
	}
	cell.Set(cp, wide)
	if wide != page.WideSpacerTail {
		b.last = cellRef{row: row, x: x}
	}
}

// printWrap moves to the start of the next row and marks the pair of rows
// as soft wrapped.
func (b *Buffer) printWrap() {
	b.cursorRow().Wrap = true
	b.index()
	b.cursor.X = 0
	b.cursorRow().WrapContinuation = true
}

// Execute runs a C0 control. Must be called with the lock held.
func (b *Buffer) Execute(c uint8) {
	b.written = true
	b.ResetJoinState()

	c0 := ansi.C0
	switch c {
	case c0.LF, c0.VT, c0.FF:
		b.LineFeed()
	case c0.CR:
		b.CarriageReturn()
	case c0.BS:
		b.Backspace()
	case c0.HT:
		b.HorizontalTab()
	default:
		b.logger.Debug("ignored control", "code", ansi.String(c))
	}
}

// ResetJoinState ends the current cluster. The next code point starts a
// new cell.
func (b *Buffer) ResetJoinState() {
	b.preceding = 0
	b.last = cellRef{}
}

// LineFeed moves the cursor to the next line.
func (b *Buffer) LineFeed() {
	b.index()
	if b.modes.Get(mode.LineFeed) {
		b.CarriageReturn()
	}
}

// CarriageReturn moves cursor to first column of current line
func (b *Buffer) CarriageReturn() {
	b.cursor.PendingWrap = false
	b.cursor.X = 0
}

// Backspace moves the cursor back a column (but not less than 0).
func (b *Buffer) Backspace() {
	if b.cursor.PendingWrap {
		b.cursor.PendingWrap = false
		return
	}
	b.cursor.X = max(b.cursor.X-1, 0)
}

// HorizontalTab moves the cursor to the next tab stop, or the last column.
func (b *Buffer) HorizontalTab() {
	b.cursor.PendingWrap = false
	b.cursor.X = b.tabstops.Next(b.cursor.X)
}

// index moves the cursor down a row, scrolling at the bottom.
func (b *Buffer) index() {
	b.cursor.PendingWrap = false
	if b.cursor.Y < b.rows-1 {
		b.cursor.Y++
		return
	}
	b.scrollUp()
}

// scrollUp adds a blank row at the bottom of the active screen. Once the
// scrollback is full the top row is recycled.
func (b *Buffer) scrollUp() {
	atBottom := b.ydisp == b.ybase
	if len(b.lines) < b.rows+b.scrollback {
		b.lines = append(b.lines, page.NewRow(b.cols))
		b.ybase++
		if atBottom {
			b.ydisp = b.ybase
		}
		return
	}

	top := b.lines[0]
	if b.last.row == top {
		b.ResetJoinState()
	}
	b.lines = utils.RotateOnce(b.lines)
	top.Clear()
	top.Resize(b.cols)
	if !atBottom {
		b.ydisp = max(b.ydisp-1, 0)
	}
	b.trimmed(1)
}
