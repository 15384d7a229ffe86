package main

import (
	"bufio"
	"fmt"
	"io"
	"slices"

	"github.com/hnimtadd/termtext/terminal/buffer"
	"github.com/hnimtadd/termtext/terminal/page"
	"github.com/hnimtadd/termtext/terminal/search"
	"github.com/hnimtadd/termtext/terminal/style"
)

const sgrReset = "\x1b[0m"

// span is a highlighted column range [start, end) on one row.
type span struct {
	start, end int
	active     bool
}

// spansByRow splits results that run past the last column over the rows
// they cover. The result under the selection is active.
func spansByRow(results []search.Result, sel *buffer.Selection, cols int) map[int][]span {
	rows := make(map[int][]span)
	for _, r := range results {
		active := sel != nil && sel.Start.Y == r.Row && sel.Start.X == r.Col
		row, col, left := r.Row, r.Col, r.Size
		for left > 0 {
			n := min(left, cols-col)
			rows[row] = append(rows[row], span{start: col, end: col + n, active: active})
			left -= n
			row, col = row+1, 0
		}
	}
	return rows
}

// renderMatches prints every row holding a match, prefixed with its index,
// with matches painted in the decoration colors.
func renderMatches(w io.Writer, b *buffer.Buffer, results []search.Result, deco *search.DecorationOptions) error {
	b.Lock()
	defer b.Unlock()

	matchStyle := style.Style{BackgroundColor: deco.MatchBackground, BorderColor: deco.MatchBorder}
	activeStyle := style.Style{BackgroundColor: deco.ActiveMatchBackground, BorderColor: deco.ActiveMatchBorder}

	rows := spansByRow(results, b.SelectionPosition(), b.Cols())
	indexes := make([]int, 0, len(rows))
	for y := range rows {
		indexes = append(indexes, y)
	}
	slices.Sort(indexes)

	bw := bufio.NewWriter(w)
	for _, y := range indexes {
		line := b.Line(y)
		if line == nil {
			continue
		}
		fmt.Fprintf(bw, "%d\t", y)
		end := line.TrimmedLength()
		for _, s := range rows[y] {
			end = max(end, s.end)
		}
		current := ""
		for x := 0; x < min(end, line.Len()); x++ {
			cell := line.Cells[x]
			if cell.Wide == page.WideSpacerTail {
				continue
			}
			sgr := ""
			for _, s := range rows[y] {
				if x >= s.start && x < s.end {
					st := matchStyle
					if s.active {
						st = activeStyle
					}
					sgr = st.SGR()
					if s.active {
						break
					}
				}
			}
			if sgr != current {
				if current != "" {
					bw.WriteString(sgrReset)
				}
				bw.WriteString(sgr)
				current = sgr
			}
			if cell.HasText() {
				bw.WriteString(cell.Chars())
			} else {
				bw.WriteByte(' ')
			}
		}
		if current != "" {
			bw.WriteString(sgrReset)
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}
