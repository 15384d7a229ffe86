package search

import (
	"github.com/benbjohnson/clock"

	"github.com/hnimtadd/termtext/terminal/buffer"
	"github.com/hnimtadd/termtext/terminal/event"
	"github.com/hnimtadd/termtext/terminal/page"
)

// lineEntry is a logical line as searched. offsets holds the start of each
// row of the line within text.
type lineEntry struct {
	text    []rune
	offsets []int
}

// lineCache holds decoded lines by first row. It lives until the cursor
// moves, the buffer is resized or the TTL runs out.
type lineCache struct {
	entries map[int]*lineEntry
	subs    event.Store
	timer   *clock.Timer
	gen     int
}

// initLinesCache creates the cache if needed and restarts its TTL.
func (e *Engine) initLinesCache() {
	if e.lines == nil {
		c := &lineCache{entries: make(map[int]*lineEntry)}
		invalidate := func(reason string) func() {
			return func() {
				e.mu.Lock()
				defer e.mu.Unlock()
				if e.lines == c {
					e.destroyLinesCache(reason)
				}
			}
		}
		c.subs.Add(e.buffer.OnCursorMove(invalidate("cursor")))
		c.subs.Add(e.buffer.OnResize(func(buffer.ResizeEvent) { invalidate("resize")() }))
		e.lines = c
	}

	c := e.lines
	if c.timer != nil {
		c.timer.Stop()
	}
	c.gen++
	gen := c.gen
	c.timer = e.clock.AfterFunc(e.cacheTTL, func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		if e.lines == c && c.gen == gen {
			e.destroyLinesCache("ttl")
		}
	})
}

func (e *Engine) destroyLinesCache(reason string) {
	c := e.lines
	if c == nil {
		return
	}
	e.lines = nil
	c.subs.Dispose()
	if c.timer != nil {
		c.timer.Stop()
	}
	e.metrics.cacheInvalidated(reason)
	e.logger.Debug("search line cache dropped", "reason", reason, "lines", len(c.entries))
}

// lineAt returns the logical line starting at row, decoding it on a cache
// miss. It returns nil past the end of the buffer.
func (e *Engine) lineAt(row int) *lineEntry {
	if e.lines != nil {
		if entry, ok := e.lines.entries[row]; ok {
			return entry
		}
	}
	entry := e.translateLine(row, true)
	if entry == nil {
		return nil
	}
	e.metrics.cacheBuilt()
	if e.lines != nil {
		e.lines.entries[row] = entry
	}
	return entry
}

// translateLine joins row and the rows wrapped below it. Only the last row
// is trimmed. A spacer head left by a wide character that moved to the
// next row is dropped.
func (e *Engine) translateLine(row int, trimRight bool) *lineEntry {
	b := e.buffer
	line := b.Line(row)
	if line == nil {
		return nil
	}
	entry := &lineEntry{offsets: []int{0}}
	for y := row; line != nil; y++ {
		next := b.Line(y + 1)
		wraps := next != nil && next.IsWrapped()

		start := len(entry.text)
		entry.text = line.AppendRunes(entry.text, !wraps && trimRight)
		if wraps && line.Len() > 0 && line.Cells[line.Len()-1].Wide == page.WideSpacerHead {
			entry.text = entry.text[:len(entry.text)-1]
		}
		if !wraps {
			break
		}
		entry.offsets = append(entry.offsets, entry.offsets[len(entry.offsets)-1]+len(entry.text)-start)
		line = next
	}
	return entry
}

// cellLength is the length of a cell in a line's text. Null cells read as
// one space, spacers as nothing.
func cellLength(cell *page.Cell) int {
	switch cell.Wide {
	case page.WideSpacerTail, page.WideSpacerHead:
		return 0
	}
	if !cell.HasText() {
		return 1
	}
	return cell.Len()
}

// BufferColsToStringOffset converts a column on row to an offset in the
// text of the logical line that starts at row. Columns past the last one
// continue on the wrapped rows below.
func (e *Engine) BufferColsToStringOffset(row, col int) (offset int) {
	e.withLocks(func() {
		if e.buffer != nil {
			offset = e.bufferColsToStringOffset(row, col)
		}
	})
	return offset
}

func (e *Engine) bufferColsToStringOffset(row, col int) int {
	b := e.buffer
	cols := b.Cols()
	offset := 0
	line := b.Line(row)
	for col > 0 && line != nil {
		for x := 0; x < col && x < cols && x < line.Len(); x++ {
			offset += cellLength(line.Cells[x])
		}
		row++
		line = b.Line(row)
		if line != nil && !line.IsWrapped() {
			break
		}
		col -= cols
	}
	return offset
}

// StringLengthToBufferSize converts an offset in the text of row to the
// number of columns it covers. It is the inverse of
// BufferColsToStringOffset for columns that start a cell.
func (e *Engine) StringLengthToBufferSize(row, offset int) (size int) {
	e.withLocks(func() {
		if e.buffer != nil {
			size = e.stringOffsetToCol(row, offset, true)
		}
	})
	return size
}

// stringOffsetToCol walks the cells of row until offset is reached. An
// offset inside a cluster is rounded to the end of its cell with roundUp,
// else to its start.
func (e *Engine) stringOffsetToCol(row, offset int, roundUp bool) int {
	line := e.buffer.Line(row)
	if line == nil {
		return 0
	}
	col, consumed := 0, 0
	for col < line.Len() && consumed < offset {
		cell := line.Cells[col]
		if cell.Wide == page.WideSpacerTail {
			col++
			continue
		}
		n := cellLength(cell)
		if consumed+n > offset && !roundUp {
			break
		}
		consumed += n
		col += cell.Width()
	}
	return min(col, line.Len())
}
