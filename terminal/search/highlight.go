package search

import (
	"github.com/hnimtadd/termtext/terminal/buffer"
	"github.com/hnimtadd/termtext/terminal/style"
)

// Classes added to the elements of rendered match decorations.
const (
	ResultClass       = "find-result-decoration"
	ActiveResultClass = "find-active-result-decoration"
)

// highlight is a decorated match. The marker belongs to the highlight and
// goes away with it.
type highlight struct {
	marker     *buffer.Marker
	decoration *buffer.Decoration
	result     Result
}

func (h *highlight) dispose() {
	h.decoration.Dispose()
	h.marker.Dispose()
}

// highlightAllMatches decorates every match of term, up to the highlight
// limit.
func (e *Engine) highlightAllMatches(term string, opts Options) error {
	if term == "" {
		e.clearDecorations(false)
		return nil
	}
	e.clearDecorations(true)

	cols := e.buffer.Cols()
	var results []Result
	var prev *Result
	res, err := e.find(term, 0, 0, opts)
	for err == nil && res != nil && (prev == nil || prev.Row != res.Row || prev.Col != res.Col) {
		if len(results) >= e.highlightLimit {
			e.logger.Debug("search highlight limit reached", "limit", e.highlightLimit)
			break
		}
		prev = res
		results = append(results, *res)
		if prev.Col+prev.Size >= cols {
			res, err = e.find(term, prev.Row+1, 0, opts)
		} else {
			res, err = e.find(term, prev.Row, prev.Col+1, opts)
		}
	}
	if err != nil {
		return err
	}

	for _, r := range results {
		if h := e.createResultDecoration(r, opts.Decorations); h != nil {
			e.highlightedLines[h.marker.Line()] = struct{}{}
			e.highlights = append(e.highlights, h)
		}
	}
	e.metrics.observeHighlight(len(results))
	e.logger.Debug("search highlights updated", "term", term, "matches", len(results))
	return nil
}

func (e *Engine) registerMarker(r Result) *buffer.Marker {
	b := e.buffer
	return b.RegisterMarker(-b.BaseY() - b.CursorY() + r.Row)
}

func (e *Engine) createResultDecoration(r Result, opts *DecorationOptions) *highlight {
	marker := e.registerMarker(r)
	if marker == nil {
		return nil
	}
	st := style.Style{BackgroundColor: opts.MatchBackground}
	// One ruler mark per row is enough.
	if _, ok := e.highlightedLines[marker.Line()]; !ok {
		st.RulerColor = opts.MatchOverviewRuler
	}
	d := e.buffer.RegisterDecoration(buffer.DecorationOptions{
		Marker:        marker,
		X:             r.Col,
		Width:         r.Size,
		Style:         st,
		RulerPosition: buffer.RulerCenter,
	})
	if d == nil {
		marker.Dispose()
		return nil
	}
	border := opts.MatchBorder
	d.OnRender(func(el *buffer.Element) { applyStyles(el, border, false) })
	return &highlight{marker: marker, decoration: d, result: r}
}

// selectResult selects r and scrolls it into view. A nil r clears the
// selection. It reports whether r was selected.
func (e *Engine) selectResult(r *Result, opts *DecorationOptions, noScroll bool) bool {
	b := e.buffer
	e.clearSelected()
	if r == nil {
		b.ClearSelection()
		return false
	}

	b.Select(r.Col, r.Row, r.Size)
	if opts != nil {
		if marker := e.registerMarker(*r); marker != nil {
			d := b.RegisterDecoration(buffer.DecorationOptions{
				Marker: marker,
				X:      r.Col,
				Width:  r.Size,
				Style: style.Style{
					BackgroundColor: opts.ActiveMatchBackground,
					RulerColor:      opts.ActiveMatchOverviewRuler,
				},
				Layer: buffer.LayerTop,
			})
			if d != nil {
				border := opts.ActiveMatchBorder
				d.OnRender(func(el *buffer.Element) { applyStyles(el, border, true) })
				e.selected = &highlight{marker: marker, decoration: d, result: *r}
			} else {
				marker.Dispose()
			}
		}
	}

	if !noScroll {
		top, rows := b.ViewportY(), b.Rows()
		if r.Row >= top+rows || r.Row < top {
			b.ScrollLines(r.Row - top - rows/2)
		}
	}
	return true
}

func applyStyles(el *buffer.Element, border style.Color, active bool) {
	if !el.HasClass(ResultClass) {
		el.AddClass(ResultClass)
		if border.Type != style.ColorTypeNone {
			el.Style.BorderColor = border
		}
	}
	if active {
		el.AddClass(ActiveResultClass)
	}
}

func (e *Engine) clearSelected() {
	if e.selected != nil {
		e.selected.dispose()
		e.selected = nil
	}
}

func (e *Engine) clearDecorations(keepCachedTerm bool) {
	e.clearSelected()
	for _, h := range e.highlights {
		h.dispose()
	}
	e.highlights = nil
	clear(e.highlightedLines)
	if !keepCachedTerm {
		e.cachedTerm, e.hasCached = "", false
	}
}

// fireResults reports where the selected match is among the highlights.
func (e *Engine) fireResults(opts Options) {
	if opts.Decorations == nil {
		return
	}
	ev := ResultsEvent{ResultIndex: -1, ResultCount: len(e.highlights)}
	if e.selected != nil {
		sel := e.selected.result
		for i, h := range e.highlights {
			if h.result.Row == sel.Row && h.result.Col == sel.Col && h.result.Size == sel.Size {
				ev.ResultIndex = i
				break
			}
		}
	}
	e.emit(func() { e.onDidChangeResults.Fire(ev) })
}
