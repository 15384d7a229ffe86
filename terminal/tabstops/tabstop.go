package tabstops

import "github.com/hnimtadd/termtext/terminal/utils"

// Default tabstop interval
const TABSTOP_INTERVAL = 8

// Tabstops tracks tabstop locations, one bit per column.
type Tabstops struct {
	cols  int
	stops *utils.StaticBitSet
}

// NewTabstops creates a new Tabstops for the given number of columns and interval.
func NewTabstops(cols int, interval int) *Tabstops {
	t := &Tabstops{
		cols:  cols,
		stops: utils.NewStaticBitSet(cols),
	}
	t.Reset(interval)
	return t
}

// Set sets the tabstop at a certain column (0-indexed).
func (t *Tabstops) Set(col int) {
	if col >= 0 && col < t.cols {
		t.stops.Set(col)
	}
}

// Unset unsets the tabstop at a certain column (0-indexed).
func (t *Tabstops) Unset(col int) {
	if col >= 0 && col < t.cols {
		t.stops.Unset(col)
	}
}

// Get returns true if a tabstop is set at the given column.
func (t *Tabstops) Get(col int) bool {
	if col < 0 || col >= t.cols {
		return false
	}
	return t.stops.IsSet(col)
}

// Resize keeps the tabstops of the columns that survive. New columns get
// tabstops at the given interval.
func (t *Tabstops) Resize(cols int, interval int) {
	stops := utils.NewStaticBitSet(cols)
	for col := range min(cols, t.cols) {
		if t.stops.IsSet(col) {
			stops.Set(col)
		}
	}
	if interval > 0 {
		for col := interval; col < cols; col += interval {
			if col >= t.cols {
				stops.Set(col)
			}
		}
	}
	t.cols = cols
	t.stops = stops
}

// Reset unsets all tabstops and then sets initial tabstops at the given interval.
func (t *Tabstops) Reset(interval int) {
	t.stops.Clear()
	if interval > 0 {
		for col := interval; col < t.cols-1; col += interval {
			t.Set(col)
		}
	}
}

// Next returns the column of the first tabstop right of col, or the last
// column if there is none.
func (t *Tabstops) Next(col int) int {
	if next := t.stops.NextSet(col + 1); next >= 0 {
		return next
	}
	return max(t.cols-1, 0)
}
