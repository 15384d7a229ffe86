package search

import (
	"strings"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hnimtadd/termtext/terminal/buffer"
	"github.com/hnimtadd/termtext/terminal/color"
	"github.com/hnimtadd/termtext/terminal/style"
)

var testDecorations = &DecorationOptions{
	MatchBackground:          style.RGB(color.MustParse("#555555")),
	MatchBorder:              style.RGB(color.MustParse("#888888")),
	MatchOverviewRuler:       style.RGB(color.MustParse("#888888")),
	ActiveMatchBackground:    style.RGB(color.MustParse("#ffff00")),
	ActiveMatchBorder:        style.RGB(color.MustParse("#ffaa00")),
	ActiveMatchOverviewRuler: style.RGB(color.MustParse("#ffaa00")),
}

type testEngine struct {
	*Engine
	buffer *buffer.Buffer
	clock  *clock.Mock
}

func newTestEngine(t *testing.T, cols, rows int, text string, opts EngineOptions) *testEngine {
	t.Helper()
	b := buffer.New(buffer.Options{Cols: cols, Rows: rows, Scrollback: 100, ConvertEOL: true})
	b.WriteString(text)
	mock := clock.NewMock()
	opts.Clock = mock
	e := New(opts)
	e.Activate(b)
	t.Cleanup(e.Dispose)
	return &testEngine{Engine: e, buffer: b, clock: mock}
}

func (e *testEngine) selection(t *testing.T) (startCol, startRow, endCol, endRow int) {
	t.Helper()
	sel := e.buffer.SelectionPosition()
	require.NotNil(t, sel, "expected a selection")
	return sel.Start.X, sel.Start.Y, sel.End.X, sel.End.Y
}

func TestEngine_NotActivated(t *testing.T) {
	e := New(EngineOptions{})
	_, err := e.FindNext("a", Options{})
	assert.ErrorIs(t, err, ErrNotActivated)
	_, err = e.FindPrevious("a", Options{})
	assert.ErrorIs(t, err, ErrNotActivated)
	_, err = e.FindFrom("a", 0, 0, Options{})
	assert.ErrorIs(t, err, ErrNotActivated)
}

func TestEngine_FindNextAcrossSoftWrap(t *testing.T) {
	e := newTestEngine(t, 10, 3, "the quick brown fox", EngineOptions{})

	found, err := e.FindNext("brown", Options{})
	require.NoError(t, err)
	assert.True(t, found)

	x, y, endX, endY := e.selection(t)
	assert.Equal(t, []int{0, 1, 5, 1}, []int{x, y, endX, endY})

	res, err := e.FindFrom("brown", 0, 0, Options{})
	require.NoError(t, err)
	assert.Equal(t, &Result{Term: "brown", Row: 1, Col: 0, Size: 5}, res)
}

func TestEngine_MatchSpanningRows(t *testing.T) {
	e := newTestEngine(t, 10, 3, "the quick brown fox", EngineOptions{})

	res, err := e.FindFrom("quick brown", 0, 0, Options{})
	require.NoError(t, err)
	assert.Equal(t, &Result{Term: "quick brown", Row: 0, Col: 4, Size: 11}, res)

	found, err := e.FindNext("quick brown", Options{})
	require.NoError(t, err)
	require.True(t, found)
	x, y, endX, endY := e.selection(t)
	assert.Equal(t, []int{4, 0, 5, 1}, []int{x, y, endX, endY})
	assert.Equal(t, "quick brown", e.buffer.SelectionText())
}

func TestEngine_NoMatchClearsSelection(t *testing.T) {
	e := newTestEngine(t, 20, 3, "hello world", EngineOptions{})
	e.buffer.Select(0, 0, 5)

	found, err := e.FindNext("nomatch", Options{})
	require.NoError(t, err)
	assert.False(t, found)
	assert.False(t, e.buffer.HasSelection())
}

func TestEngine_EmptyBuffer(t *testing.T) {
	e := newTestEngine(t, 20, 3, "", EngineOptions{})

	found, err := e.FindPrevious("x", Options{})
	require.NoError(t, err)
	assert.False(t, found)

	found, err = e.FindNext("x", Options{Regex: true})
	require.NoError(t, err)
	assert.False(t, found)
}

func TestEngine_EmptyTerm(t *testing.T) {
	e := newTestEngine(t, 20, 3, "abc", EngineOptions{})
	found, err := e.FindNext("b", Options{Decorations: testDecorations})
	require.NoError(t, err)
	require.True(t, found)

	found, err = e.FindNext("", Options{Decorations: testDecorations})
	require.NoError(t, err)
	assert.False(t, found)
	assert.False(t, e.buffer.HasSelection())
	assert.Empty(t, e.Results())
	assert.Empty(t, e.buffer.Decorations())
}

func TestEngine_WholeWord(t *testing.T) {
	e := newTestEngine(t, 20, 3, "catalog cat", EngineOptions{})

	res, err := e.FindFrom("cat", 0, 0, Options{})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Col)

	res, err = e.FindFrom("cat", 0, 0, Options{WholeWord: true})
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, 8, res.Col)
	assert.Equal(t, 3, res.Size)

	found, err := e.FindPrevious("cat", Options{WholeWord: true})
	require.NoError(t, err)
	require.True(t, found)
	x, _, _, _ := e.selection(t)
	assert.Equal(t, 8, x)

	res, err = e.FindFrom("cat", 0, 0, Options{WholeWord: true, Regex: true})
	require.NoError(t, err)
	assert.Equal(t, 8, res.Col)
}

func TestEngine_CaseSensitivity(t *testing.T) {
	e := newTestEngine(t, 20, 3, "Foo foo FOO", EngineOptions{})

	res, err := e.FindFrom("foo", 0, 1, Options{})
	require.NoError(t, err)
	assert.Equal(t, &Result{Term: "foo", Row: 0, Col: 4, Size: 3}, res)

	res, err = e.FindFrom("FOO", 0, 0, Options{CaseSensitive: true})
	require.NoError(t, err)
	assert.Equal(t, 8, res.Col)

	res, err = e.FindFrom("fOO", 0, 0, Options{CaseSensitive: true})
	require.NoError(t, err)
	assert.Nil(t, res)
}

func TestEngine_ChangingOptionsRehighlights(t *testing.T) {
	e := newTestEngine(t, 20, 3, "Foo foo FOO", EngineOptions{})
	var events []ResultsEvent
	e.OnDidChangeResults(func(ev ResultsEvent) { events = append(events, ev) })

	_, err := e.FindNext("foo", Options{Decorations: testDecorations})
	require.NoError(t, err)
	_, err = e.FindNext("foo", Options{Decorations: testDecorations, CaseSensitive: true})
	require.NoError(t, err)

	assert.Equal(t, []ResultsEvent{
		{ResultIndex: 0, ResultCount: 3},
		{ResultIndex: 0, ResultCount: 1},
	}, events)
	assert.Equal(t, []Result{{Term: "foo", Row: 0, Col: 4, Size: 3}}, e.Results())
}

func TestEngine_FindNextCycles(t *testing.T) {
	e := newTestEngine(t, 20, 3, "foo bar foo", EngineOptions{})
	var events []ResultsEvent
	e.OnDidChangeResults(func(ev ResultsEvent) { events = append(events, ev) })

	opts := Options{Decorations: testDecorations}
	var cols []int
	for range 3 {
		found, err := e.FindNext("foo", opts)
		require.NoError(t, err)
		require.True(t, found)
		x, _, _, _ := e.selection(t)
		cols = append(cols, x)
	}
	assert.Equal(t, []int{0, 8, 0}, cols)
	require.Len(t, events, 3)
	assert.Equal(t, ResultsEvent{ResultIndex: 1, ResultCount: 2}, events[1])
	assert.Equal(t, ResultsEvent{ResultIndex: 0, ResultCount: 2}, events[2])

	found, err := e.FindPrevious("foo", opts)
	require.NoError(t, err)
	require.True(t, found)
	x, _, _, _ := e.selection(t)
	assert.Equal(t, 8, x, "wraps around to the last match")
}

func TestEngine_FindNextWithoutDecorationsFiresNothing(t *testing.T) {
	e := newTestEngine(t, 20, 3, "foo", EngineOptions{})
	fired := false
	e.OnDidChangeResults(func(ResultsEvent) { fired = true })

	found, err := e.FindNext("foo", Options{})
	require.NoError(t, err)
	assert.True(t, found)
	assert.False(t, fired)
	assert.Empty(t, e.buffer.Decorations())
}

func TestEngine_FindPreviousAcrossSoftWrap(t *testing.T) {
	e := newTestEngine(t, 10, 3, "the quick brown fox", EngineOptions{})

	found, err := e.FindPrevious("quick", Options{})
	require.NoError(t, err)
	require.True(t, found)
	x, y, endX, endY := e.selection(t)
	assert.Equal(t, []int{4, 0, 9, 0}, []int{x, y, endX, endY})

	// A new term first looks forward from the current match.
	found, err = e.FindPrevious("o", Options{})
	require.NoError(t, err)
	require.True(t, found)
	x, y, _, _ = e.selection(t)
	assert.Equal(t, []int{2, 1}, []int{x, y})

	e.buffer.ClearSelection()
	found, err = e.FindPrevious("o", Options{})
	require.NoError(t, err)
	require.True(t, found)
	x, y, _, _ = e.selection(t)
	assert.Equal(t, []int{7, 1}, []int{x, y}, "last o of the line")
}

func TestEngine_Incremental(t *testing.T) {
	e := newTestEngine(t, 20, 3, "fob foo", EngineOptions{})

	_, err := e.FindNext("fo", Options{})
	require.NoError(t, err)
	_, err = e.FindNext("fo", Options{})
	require.NoError(t, err)
	x, _, _, _ := e.selection(t)
	require.Equal(t, 4, x)

	_, err = e.FindNext("fo", Options{Incremental: true})
	require.NoError(t, err)
	x, _, _, _ = e.selection(t)
	assert.Equal(t, 4, x, "the current match is kept")

	_, err = e.FindNext("foo", Options{})
	require.NoError(t, err)
	x, _, _, _ = e.selection(t)
	assert.Equal(t, 4, x, "a new term starts at the current match")
}

func TestEngine_FindPreviousGrowsCurrentMatch(t *testing.T) {
	e := newTestEngine(t, 20, 3, "foo fob foo", EngineOptions{})

	_, err := e.FindPrevious("fo", Options{})
	require.NoError(t, err)
	x, _, _, _ := e.selection(t)
	require.Equal(t, 8, x)

	_, err = e.FindPrevious("foo", Options{})
	require.NoError(t, err)
	x, _, _, _ = e.selection(t)
	assert.Equal(t, 8, x)
}

func TestEngine_FindPreviousNeverMovesForward(t *testing.T) {
	e := newTestEngine(t, 20, 3, "bar foo bar", EngineOptions{})

	found, err := e.FindNext("foo", Options{})
	require.NoError(t, err)
	require.True(t, found)
	x, _, _, _ := e.selection(t)
	require.Equal(t, 4, x)

	// "bar" at col 8 starts after the selection, the previous one is col 0.
	found, err = e.FindPrevious("bar", Options{})
	require.NoError(t, err)
	require.True(t, found)
	x, _, _, _ = e.selection(t)
	assert.Equal(t, 0, x)

	found, err = e.FindPrevious("bar", Options{Incremental: true})
	require.NoError(t, err)
	require.True(t, found)
	x, _, _, _ = e.selection(t)
	assert.Equal(t, 0, x, "the current match is kept")
}

func TestEngine_FindFromRejectsNegativeColumn(t *testing.T) {
	e := newTestEngine(t, 20, 3, "abc", EngineOptions{})
	_, err := e.FindFrom("abc", 0, -1, Options{})
	assert.ErrorIs(t, err, ErrInvalidColumn)
	_, err = e.FindFrom("abc", 0, 21, Options{})
	assert.ErrorIs(t, err, ErrInvalidColumn)
}

func TestEngine_Regex(t *testing.T) {
	e := newTestEngine(t, 20, 3, "error 42 warning 7", EngineOptions{})

	res, err := e.FindFrom(`\d+`, 0, 0, Options{Regex: true})
	require.NoError(t, err)
	assert.Equal(t, &Result{Term: "42", Row: 0, Col: 6, Size: 2}, res)

	found, err := e.FindPrevious(`\d+`, Options{Regex: true})
	require.NoError(t, err)
	require.True(t, found)
	x, _, endX, _ := e.selection(t)
	assert.Equal(t, []int{17, 18}, []int{x, endX})

	res, err = e.FindFrom(`ERROR`, 0, 0, Options{Regex: true})
	require.NoError(t, err)
	assert.Equal(t, "error", res.Term)

	res, err = e.FindFrom(`ERROR`, 0, 0, Options{Regex: true, CaseSensitive: true})
	require.NoError(t, err)
	assert.Nil(t, res)

	// Anchors see the line from the start column on.
	res, err = e.FindFrom(`^\w+`, 0, 9, Options{Regex: true})
	require.NoError(t, err)
	assert.Equal(t, "warning", res.Term)
}

func TestEngine_RegexSkipsEmptyMatches(t *testing.T) {
	e := newTestEngine(t, 20, 3, "abc", EngineOptions{})
	res, err := e.FindFrom(`x*`, 0, 0, Options{Regex: true})
	require.NoError(t, err)
	assert.Nil(t, res)

	res, err = e.FindFrom(`b*`, 0, 0, Options{Regex: true})
	require.NoError(t, err)
	assert.Equal(t, &Result{Term: "b", Row: 0, Col: 1, Size: 1}, res)
}

func TestEngine_RegexSyntaxError(t *testing.T) {
	e := newTestEngine(t, 20, 3, "abc", EngineOptions{})
	_, err := e.FindNext("(", Options{Regex: true})
	assert.Error(t, err)
	_, err = e.FindNext("(", Options{Regex: true, Decorations: testDecorations})
	assert.Error(t, err)
}

func TestEngine_InvalidColumn(t *testing.T) {
	e := newTestEngine(t, 20, 3, "abc", EngineOptions{})
	_, err := e.FindFrom("a", 0, 21, Options{})
	assert.ErrorIs(t, err, ErrInvalidColumn)

	_, err = e.FindFrom("a", 0, 20, Options{})
	assert.NoError(t, err)
}

func TestEngine_WideCharacters(t *testing.T) {
	e := newTestEngine(t, 10, 3, "中文 abc", EngineOptions{})

	res, err := e.FindFrom("abc", 0, 0, Options{})
	require.NoError(t, err)
	assert.Equal(t, &Result{Term: "abc", Row: 0, Col: 5, Size: 3}, res)

	res, err = e.FindFrom("文", 0, 0, Options{})
	require.NoError(t, err)
	assert.Equal(t, &Result{Term: "文", Row: 0, Col: 2, Size: 2}, res)

	// Starting inside a wide character starts after it.
	res, err = e.FindFrom("文", 0, 3, Options{})
	require.NoError(t, err)
	assert.Nil(t, res)
}

func TestEngine_WideCharacterWrapped(t *testing.T) {
	e := newTestEngine(t, 5, 3, "abcd中x", EngineOptions{})

	res, err := e.FindFrom("中x", 0, 0, Options{})
	require.NoError(t, err)
	assert.Equal(t, &Result{Term: "中x", Row: 1, Col: 0, Size: 3}, res)

	res, err = e.FindFrom("d中", 0, 0, Options{})
	require.NoError(t, err)
	assert.Equal(t, &Result{Term: "d中", Row: 0, Col: 3, Size: 4}, res)
}

func TestEngine_ClustersAreNotSplit(t *testing.T) {
	e := newTestEngine(t, 10, 3, "e\u0301 x", EngineOptions{})

	res, err := e.FindFrom("e", 0, 0, Options{})
	require.NoError(t, err)
	assert.Equal(t, &Result{Term: "e", Row: 0, Col: 0, Size: 1}, res)

	res, err = e.FindFrom("\u0301", 0, 0, Options{})
	require.NoError(t, err)
	assert.Equal(t, &Result{Term: "\u0301", Row: 0, Col: 0, Size: 1}, res)

	res, err = e.FindFrom("x", 0, 0, Options{})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Col)
}

func TestEngine_HighlightLimit(t *testing.T) {
	e := newTestEngine(t, 20, 3, "a a a a a a a a", EngineOptions{HighlightLimit: 5})

	found, err := e.FindNext("a", Options{Decorations: testDecorations})
	require.NoError(t, err)
	require.True(t, found)
	assert.Len(t, e.Results(), 5)
	assert.Len(t, e.buffer.Decorations(), 6, "five matches and the active one")
}

func TestEngine_DefaultHighlightLimit(t *testing.T) {
	e := newTestEngine(t, 80, 24, strings.Repeat("x", 1100), EngineOptions{})

	found, err := e.FindNext("x", Options{Decorations: testDecorations})
	require.NoError(t, err)
	require.True(t, found)
	assert.Len(t, e.Results(), DefaultHighlightLimit)
}

func TestEngine_HighlightDecorations(t *testing.T) {
	e := newTestEngine(t, 20, 3, "foo foo\nfoo", EngineOptions{})

	found, err := e.FindNext("foo", Options{Decorations: testDecorations})
	require.NoError(t, err)
	require.True(t, found)

	require.Len(t, e.highlights, 3)
	assert.Equal(t, testDecorations.MatchOverviewRuler, e.highlights[0].decoration.Style().RulerColor)
	assert.Equal(t, style.Color{}, e.highlights[1].decoration.Style().RulerColor, "one ruler mark per row")
	assert.Equal(t, testDecorations.MatchOverviewRuler, e.highlights[2].decoration.Style().RulerColor)

	rendered := e.buffer.Render()
	require.Len(t, rendered, 4)
	var active []*buffer.Element
	for _, r := range rendered {
		assert.True(t, r.Element.HasClass(ResultClass))
		if r.Element.HasClass(ActiveResultClass) {
			active = append(active, r.Element)
		}
	}
	require.Len(t, active, 1)
	assert.Equal(t, 0, active[0].Row)
	assert.Equal(t, 0, active[0].X)
	assert.Equal(t, 3, active[0].Width)
	assert.Equal(t, testDecorations.ActiveMatchBackground, active[0].Style.BackgroundColor)
	assert.Equal(t, testDecorations.ActiveMatchBorder, active[0].Style.BorderColor)
	assert.Same(t, active[0], rendered[len(rendered)-1].Element, "active match is drawn on top")

	e.ClearActiveDecoration()
	assert.Len(t, e.buffer.Decorations(), 3)

	e.ClearDecorations(false)
	assert.Empty(t, e.buffer.Decorations())
	assert.Zero(t, e.buffer.Markers())
	assert.Zero(t, e.buffer.Styles())
	assert.Empty(t, e.Results())
}

func TestEngine_ScrollsToMatch(t *testing.T) {
	lines := make([]string, 20)
	for i := range lines {
		lines[i] = "line"
	}
	lines[2] = "target"
	text := strings.Join(lines, "\n")

	e := newTestEngine(t, 20, 3, text, EngineOptions{})
	require.Equal(t, 17, e.buffer.ViewportY())
	found, err := e.FindNext("target", Options{NoScroll: true})
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 17, e.buffer.ViewportY())

	e.buffer.ClearSelection()
	found, err = e.FindNext("target", Options{})
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 1, e.buffer.ViewportY(), "match is centered")
}

func TestEngine_RehighlightAfterWrite(t *testing.T) {
	e := newTestEngine(t, 20, 5, "foo", EngineOptions{})

	found, err := e.FindNext("foo", Options{Decorations: testDecorations})
	require.NoError(t, err)
	require.True(t, found)
	require.Len(t, e.Results(), 1)

	e.buffer.WriteString("\nfoo")
	assert.Len(t, e.Results(), 1, "nothing happens before the debounce")

	e.clock.Add(DefaultDebounce)
	assert.Eventually(t, func() bool { return len(e.Results()) == 2 }, time.Second, 5*time.Millisecond)

	x, y, _, _ := e.selection(t)
	assert.Equal(t, []int{0, 0}, []int{x, y}, "the selected match is kept")
}

func TestEngine_NoRehighlightWithoutDecorations(t *testing.T) {
	e := newTestEngine(t, 20, 5, "foo", EngineOptions{})
	_, err := e.FindNext("foo", Options{})
	require.NoError(t, err)

	e.buffer.WriteString("\nfoo")
	e.mu.Lock()
	timer := e.highlightTimer
	e.mu.Unlock()
	assert.Nil(t, timer)
}

func TestEngine_LineCacheInvalidation(t *testing.T) {
	e := newTestEngine(t, 20, 5, "foo", EngineOptions{})
	hasCache := func() bool {
		e.mu.Lock()
		defer e.mu.Unlock()
		return e.lines != nil
	}

	_, err := e.FindNext("foo", Options{})
	require.NoError(t, err)
	require.True(t, hasCache())

	e.buffer.WriteString("x")
	assert.False(t, hasCache(), "dropped on cursor move")

	_, err = e.FindNext("foo", Options{})
	require.NoError(t, err)
	e.buffer.Resize(30, 5)
	assert.False(t, hasCache(), "dropped on resize")

	_, err = e.FindNext("foo", Options{})
	require.NoError(t, err)
	e.clock.Add(DefaultLineCacheTTL - time.Second)
	assert.True(t, hasCache())
	e.clock.Add(time.Second)
	assert.Eventually(t, func() bool { return !hasCache() }, time.Second, 5*time.Millisecond)
}

func TestEngine_LineCacheSeesNewContent(t *testing.T) {
	e := newTestEngine(t, 20, 5, "foo", EngineOptions{})
	found, err := e.FindNext("bar", Options{})
	require.NoError(t, err)
	require.False(t, found)

	e.buffer.WriteString(" bar")
	found, err = e.FindNext("bar", Options{})
	require.NoError(t, err)
	assert.True(t, found)
}

func TestEngine_Dispose(t *testing.T) {
	b := buffer.New(buffer.Options{Cols: 20, Rows: 3})
	b.WriteString("foo foo")
	e := New(EngineOptions{Clock: clock.NewMock()})
	e.Activate(b)

	_, err := e.FindNext("foo", Options{Decorations: testDecorations})
	require.NoError(t, err)
	require.NotEmpty(t, b.Decorations())

	e.Dispose()
	assert.Empty(t, b.Decorations())
	_, err = e.FindNext("foo", Options{})
	assert.ErrorIs(t, err, ErrNotActivated)
}

func TestEngine_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	e := newTestEngine(t, 20, 3, "foo", EngineOptions{Metrics: m})

	_, err := e.FindNext("foo", Options{Decorations: testDecorations})
	require.NoError(t, err)
	_, err = e.FindPrevious("bar", Options{})
	require.NoError(t, err)
	_, err = e.FindNext("(", Options{Regex: true})
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.queries.WithLabelValues("next", "found")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.queries.WithLabelValues("previous", "not_found")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.queries.WithLabelValues("next", "error")))
	assert.Positive(t, testutil.ToFloat64(m.lineCacheBuilds))

	count, err := testutil.GatherAndCount(reg, "termtext_search_highlight_matches")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
