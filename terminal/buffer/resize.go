package buffer

import (
	"github.com/hnimtadd/termtext/terminal/page"
	"github.com/hnimtadd/termtext/terminal/tabstops"
	"github.com/hnimtadd/termtext/terminal/utils"
)

// Resize changes the viewport size. Rows are truncated or padded, text is
// not reflowed. Growing pulls rows back from the scrollback, shrinking
// pushes rows above the cursor into it.
func (b *Buffer) Resize(cols, rows int) {
	if cols <= 0 || rows <= 0 {
		return
	}
	b.Update(func() {
		if cols == b.cols && rows == b.rows {
			return
		}
		b.resize(cols, rows)
		ev := ResizeEvent{Cols: cols, Rows: rows}
		b.emit(func() { b.onResize.Fire(ev) })
	})
}

func (b *Buffer) resize(cols, rows int) {
	atBottom := b.ydisp == b.ybase
	b.ResetJoinState()

	if cols != b.cols {
		for _, row := range b.lines {
			row.Resize(cols)
		}
		b.tabstops.Resize(cols, tabstops.TABSTOP_INTERVAL)
	}

	switch {
	case rows > b.rows:
		for range rows - b.rows {
			if b.ybase > 0 {
				b.ybase--
				b.cursor.Y++
			} else {
				b.lines = append(b.lines, page.NewRow(cols))
			}
		}
	case rows < b.rows:
		for range b.rows - rows {
			bottom := len(b.lines) - 1
			if bottom > b.ybase+b.cursor.Y && b.lines[bottom].TrimmedLength() == 0 {
				b.lines = b.lines[:bottom]
				continue
			}
			b.ybase++
			b.cursor.Y = max(b.cursor.Y-1, 0)
		}
	}

	b.logger.Debug("buffer resized",
		"cols", cols, "rows", rows,
		"oldCols", b.cols, "oldRows", b.rows,
		"ybase", b.ybase,
	)
	b.cols, b.rows = cols, rows

	if extra := len(b.lines) - (b.rows + b.scrollback); extra > 0 {
		b.lines = b.lines[extra:]
		b.ybase -= extra
		b.trimmed(extra)
	}

	b.cursor.X = utils.Clamp(b.cursor.X, 0, cols-1)
	b.cursor.Y = utils.Clamp(b.cursor.Y, 0, rows-1)
	b.cursor.PendingWrap = false
	if atBottom {
		b.ydisp = b.ybase
	} else {
		b.ydisp = utils.Clamp(b.ydisp, 0, b.ybase)
	}
}
