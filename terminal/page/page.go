package page

import (
	"bufio"
	"io"
)

type EncodeUtf8Options struct {
	// Join soft-wrapped rows into one line.
	Unwrap bool

	// Preceding state from encoding a previous batch of rows.
	// Use to preserve blanks properly across multiple calls.
	Preceding TrailingUtf8State
}

type TrailingUtf8State struct {
	Rows  uint
	Cells uint
}

// EncodeUtf8 writes the text of rows as UTF-8, one line per row. Blank rows
// and null cells are only written when text follows them, so trailing
// blanks never show up. The returned state carries the blanks that were
// held back and can seed the next call.
func EncodeUtf8(w io.Writer, rows []*Row, opts EncodeUtf8Options) (int64, TrailingUtf8State, error) {
	blankRows := opts.Preceding.Rows
	blankCells := opts.Preceding.Cells
	bw := bufio.NewWriter(w)

	written := int64(0)
	for _, row := range rows {
		// If this row is blank, acculate to avoid a bunch of extra work
		// later. If it isn't blank, make sure we dump all our blanks.
		if !hasTextAny(row.Cells) {
			blankRows += 1
			continue
		}

		// we have blank rows to process here.
		for range blankRows {
			if err := bw.WriteByte('\n'); err != nil {
				return written, TrailingUtf8State{}, err
			}
			written++
		}
		blankRows = 0

		// If we're not wrapped, we always add a newline so after the row is
		// printed we can add a newline.
		if !row.Wrap || !opts.Unwrap {
			blankRows++
		}

		// If the row doesn't continue a wrap, then we need to reset our blank
		// cell count.
		if !row.WrapContinuation || !opts.Unwrap {
			blankCells = 0
		}

		// go through each cell and print it.
	processCell:
		for _, cell := range row.Cells {
			// skip spacers
			switch cell.Wide {
			case WideSpacerHead, WideSpacerTail:
				continue processCell
			case WideNarrow, WideWide:
			}

			// If we have a zero value, then we accumlate a counters. We only
			// want to turn zero values into spaces if we have a non-zero
			// char sometime later.
			if !cell.HasText() {
				blankCells++
				continue processCell
			}

			for range blankCells {
				if err := bw.WriteByte(' '); err != nil {
					return written, TrailingUtf8State{}, err
				}
				written++
			}
			blankCells = 0

			for _, cp := range cell.Content {
				n, err := bw.WriteRune(cp)
				if err != nil {
					return written, TrailingUtf8State{}, err
				}
				written += int64(n)
			}
		}
	}
	if err := bw.Flush(); err != nil {
		return written, TrailingUtf8State{}, err
	}
	return written, TrailingUtf8State{Rows: blankRows, Cells: blankCells}, nil
}
