package search

import (
	"fmt"
	"slices"
	"strings"
	"unicode"

	"github.com/dlclark/regexp2"
)

// nonWordCharacters end a word for whole word matching.
const nonWordCharacters = " ~!@#$%^&*()+`-=[]{}|\\;:\"',./<>?"

// position is where a line search starts. col may exceed the column count,
// it then counts on into the wrapped rows below.
type position struct {
	row, col int
}

// find returns the first match at or after (col, row) without wrapping
// around to the top.
func (e *Engine) find(term string, row, col int, opts Options) (*Result, error) {
	b := e.buffer
	if term == "" {
		b.ClearSelection()
		e.clearDecorations(false)
		return nil, nil
	}
	if col < 0 || col > b.Cols() {
		return nil, fmt.Errorf("%w: %d to search in terminal of %d cols", ErrInvalidColumn, col, b.Cols())
	}

	e.initLinesCache()
	pos := position{row: row, col: col}
	res, err := e.findInLine(term, &pos, opts, false)
	for y := row + 1; res == nil && err == nil && y < b.Length(); y++ {
		pos = position{row: y}
		res, err = e.findInLine(term, &pos, opts, false)
	}
	return res, err
}

func (e *Engine) findNextAndSelect(term string, opts Options) (bool, error) {
	b := e.buffer
	if term == "" {
		b.ClearSelection()
		e.clearDecorations(false)
		return false, nil
	}

	prev := b.SelectionPosition()
	b.ClearSelection()

	startRow, startCol := 0, 0
	if prev != nil {
		if e.hasCached && e.cachedTerm == term && !opts.Incremental {
			startRow, startCol = prev.End.Y, prev.End.X
		} else {
			startRow, startCol = prev.Start.Y, prev.Start.X
		}
	}

	e.initLinesCache()
	pos := position{row: startRow, col: startCol}
	res, err := e.findInLine(term, &pos, opts, false)

	// To the bottom, then from the top back down to where we started.
	for y := startRow + 1; res == nil && err == nil && y < b.Length(); y++ {
		pos = position{row: y}
		res, err = e.findInLine(term, &pos, opts, false)
	}
	for y := 0; res == nil && err == nil && y < startRow; y++ {
		pos = position{row: y}
		res, err = e.findInLine(term, &pos, opts, false)
	}
	// The only match may be the one that was selected.
	if res == nil && err == nil && prev != nil {
		pos = position{row: prev.Start.Y}
		res, err = e.findInLine(term, &pos, opts, false)
	}
	if err != nil {
		return false, err
	}
	return e.selectResult(res, opts.Decorations, opts.NoScroll), nil
}

func (e *Engine) findPreviousAndSelect(term string, opts Options) (bool, error) {
	b := e.buffer
	if term == "" {
		b.ClearSelection()
		e.clearDecorations(false)
		return false, nil
	}

	prev := b.SelectionPosition()
	b.ClearSelection()

	lastRow := b.Length() - 1
	startRow, startCol := lastRow, b.Cols()
	pos := position{row: startRow, col: startCol}

	e.initLinesCache()
	var res *Result
	var err error
	if prev != nil {
		startRow, startCol = prev.Start.Y, prev.Start.X
		pos = position{row: startRow, col: startCol}
		if !e.hasCached || e.cachedTerm != term || opts.Incremental {
			// Keep the current match if it grows into the new term. A
			// match further right is not a previous one.
			res, err = e.findInLine(term, &pos, opts, false)
			if res != nil && (res.Row != startRow || res.Col != startCol) {
				res = nil
			}
			if res == nil && err == nil {
				startRow, startCol = prev.End.Y, prev.End.X
				pos = position{row: startRow, col: startCol}
			}
		}
	}
	if res == nil && err == nil {
		res, err = e.findInLine(term, &pos, opts, true)
	}

	// To the top, then from the bottom back up to where we started.
	pos.col = max(pos.col, b.Cols())
	for y := startRow - 1; res == nil && err == nil && y >= 0; y-- {
		pos.row = y
		res, err = e.findInLine(term, &pos, opts, true)
	}
	if startRow != lastRow {
		for y := lastRow; res == nil && err == nil && y >= startRow; y-- {
			pos.row = y
			res, err = e.findInLine(term, &pos, opts, true)
		}
	}
	if err != nil {
		return false, err
	}
	return e.selectResult(res, opts.Decorations, opts.NoScroll), nil
}

// findInLine searches the logical line that pos.row belongs to, forward from
// pos or backward from it when reverse is set.
//
// A forward search that starts on a wrapped row moves to the first row of
// its line, carrying the column along. A reverse search skips wrapped rows
// and only widens pos.col, the line is searched once its first row is
// reached.
func (e *Engine) findInLine(term string, pos *position, opts Options, reverse bool) (*Result, error) {
	b := e.buffer
	cols := b.Cols()

	if line := b.Line(pos.row); line != nil && line.IsWrapped() {
		if reverse {
			pos.col += cols
			return nil, nil
		}
		for pos.row > 0 && line != nil && line.IsWrapped() {
			pos.row--
			pos.col += cols
			line = b.Line(pos.row)
		}
	}
	row := pos.row

	entry := e.lineAt(row)
	if entry == nil {
		return nil, nil
	}
	text := entry.text
	offset := min(e.bufferColsToStringOffset(row, pos.col), len(text))

	var (
		index, length int
		err           error
	)
	if opts.Regex {
		index, length, err = e.matchRegex(text, term, offset, opts, reverse)
	} else {
		index, length = matchLiteral(text, term, offset, opts, reverse)
	}
	if err != nil || index < 0 {
		return nil, err
	}

	// The match may start or end on one of the following rows.
	offsets := entry.offsets
	startRowOffset := 0
	for startRowOffset < len(offsets)-1 && index >= offsets[startRowOffset+1] {
		startRowOffset++
	}
	endRowOffset := startRowOffset
	for endRowOffset < len(offsets)-1 && index+length >= offsets[endRowOffset+1] {
		endRowOffset++
	}
	startCol := e.stringOffsetToCol(row+startRowOffset, index-offsets[startRowOffset], false)
	endCol := e.stringOffsetToCol(row+endRowOffset, index+length-offsets[endRowOffset], true)

	return &Result{
		Term: string(text[index : index+length]),
		Row:  row + startRowOffset,
		Col:  startCol,
		Size: endCol - startCol + cols*(endRowOffset-startRowOffset),
	}, nil
}

// matchLiteral finds term in text. Forward searches start at offset,
// reverse searches take the last match that ends at or before offset. It
// returns -1 when there is none.
func matchLiteral(text []rune, term string, offset int, opts Options, reverse bool) (int, int) {
	needle := []rune(term)
	haystack := text
	if !opts.CaseSensitive {
		needle = lowerRunes(needle)
		haystack = lowerRunes(text)
	}
	n := len(needle)

	if reverse {
		for last := offset - n; last >= 0; {
			i := lastIndexRunes(haystack, needle, last)
			if i < 0 {
				return -1, 0
			}
			if !opts.WholeWord || isWholeWord(haystack, i, n) {
				return i, n
			}
			last = i - 1
		}
		return -1, 0
	}

	for from := offset; from <= len(haystack); {
		i := indexRunes(haystack, needle, from)
		if i < 0 {
			return -1, 0
		}
		if !opts.WholeWord || isWholeWord(haystack, i, n) {
			return i, n
		}
		from = i + 1
	}
	return -1, 0
}

// matchRegex is matchLiteral for regular expressions. Empty matches are
// skipped. A reverse search scans from the start of the line and keeps the
// right-most match below offset.
func (e *Engine) matchRegex(text []rune, term string, offset int, opts Options, reverse bool) (int, int, error) {
	re, err := e.compile(term, opts.CaseSensitive)
	if err != nil {
		return -1, 0, err
	}

	if reverse {
		window := text[:offset]
		index, length := -1, 0
		for from := 0; from <= len(window); {
			m, err := re.FindRunesMatchStartingAt(window, from)
			if err != nil {
				return -1, 0, err
			}
			if m == nil {
				break
			}
			if m.Length > 0 && (!opts.WholeWord || isWholeWord(text, m.Index, m.Length)) {
				index, length = m.Index, m.Length
			}
			from = m.Index + 1
		}
		return index, length, nil
	}

	// Anchors match at offset, as if the line began there.
	for from := offset; from <= len(text); {
		m, err := re.FindRunesMatch(text[from:])
		if err != nil {
			return -1, 0, err
		}
		if m == nil {
			break
		}
		index := from + m.Index
		if m.Length > 0 && (!opts.WholeWord || isWholeWord(text, index, m.Length)) {
			return index, m.Length, nil
		}
		from = index + 1
	}
	return -1, 0, nil
}

type regexKey struct {
	term          string
	caseSensitive bool
}

// compile returns the expression for term. The last one is kept.
func (e *Engine) compile(term string, caseSensitive bool) (*regexp2.Regexp, error) {
	key := regexKey{term: term, caseSensitive: caseSensitive}
	if e.regex != nil && e.regexKey == key {
		return e.regex, nil
	}
	flags := regexp2.RegexOptions(regexp2.ECMAScript)
	if !caseSensitive {
		flags |= regexp2.IgnoreCase
	}
	re, err := regexp2.Compile(term, flags)
	if err != nil {
		return nil, err
	}
	re.MatchTimeout = e.regexTimeout
	e.regex, e.regexKey = re, key
	return re, nil
}

func isWholeWord(text []rune, index, length int) bool {
	before := index == 0 || strings.ContainsRune(nonWordCharacters, text[index-1])
	end := index + length
	after := end == len(text) || strings.ContainsRune(nonWordCharacters, text[end])
	return before && after
}

// lowerRunes lower cases rune by rune so that offsets stay the same.
func lowerRunes(rs []rune) []rune {
	out := make([]rune, len(rs))
	for i, r := range rs {
		out[i] = unicode.ToLower(r)
	}
	return out
}

func indexRunes(haystack, needle []rune, from int) int {
	for i := from; i+len(needle) <= len(haystack); i++ {
		if slices.Equal(haystack[i:i+len(needle)], needle) {
			return i
		}
	}
	return -1
}

// lastIndexRunes returns the last index <= last where needle starts.
func lastIndexRunes(haystack, needle []rune, last int) int {
	for i := min(last, len(haystack)-len(needle)); i >= 0; i-- {
		if slices.Equal(haystack[i:i+len(needle)], needle) {
			return i
		}
	}
	return -1
}
