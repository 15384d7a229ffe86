package buffer

import (
	"slices"

	"github.com/hnimtadd/termtext/terminal/event"
	"github.com/hnimtadd/termtext/terminal/set"
	"github.com/hnimtadd/termtext/terminal/style"
)

type Layer int

const (
	LayerBottom Layer = iota
	LayerTop
)

// RulerPosition is where a decoration's mark goes in the overview ruler.
type RulerPosition int

const (
	RulerFull RulerPosition = iota
	RulerLeft
	RulerCenter
	RulerRight
)

type DecorationOptions struct {
	// Marker anchors the decoration to a row.
	Marker *Marker
	// X is the first column, Width the number of columns covered.
	X     int
	Width int

	Style style.Style
	Layer Layer

	// Only used when Style.RulerColor is set.
	RulerPosition RulerPosition
}

// Element is what a decoration draws on one render. Render listeners may
// change it.
type Element struct {
	// Row in the viewport.
	Row     int
	X       int
	Width   int
	Style   style.Style
	Classes []string
}

func (e *Element) AddClass(class string) {
	if !slices.Contains(e.Classes, class) {
		e.Classes = append(e.Classes, class)
	}
}

func (e *Element) HasClass(class string) bool {
	return slices.Contains(e.Classes, class)
}

type Decoration struct {
	marker        *Marker
	x, width      int
	layer         Layer
	rulerPosition RulerPosition
	styleID       set.ID

	disposed bool
	buffer   *Buffer

	onRender  event.Emitter[*Element]
	onDispose event.Emitter[struct{}]
}

// RegisterDecoration attaches a decoration to a live marker. It returns nil
// when the marker is missing or disposed.
func (b *Buffer) RegisterDecoration(opts DecorationOptions) *Decoration {
	if opts.Marker == nil || opts.Marker.IsDisposed() || opts.Marker.buffer != b {
		return nil
	}
	d := &Decoration{
		marker:        opts.Marker,
		x:             opts.X,
		width:         max(opts.Width, 1),
		layer:         opts.Layer,
		rulerPosition: opts.RulerPosition,
		styleID:       b.styles.Add(opts.Style),
		buffer:        b,
	}
	b.decorations = append(b.decorations, d)
	return d
}

func (d *Decoration) Marker() *Marker { return d.marker }

func (d *Decoration) X() int { return d.x }

func (d *Decoration) Width() int { return d.width }

func (d *Decoration) Layer() Layer { return d.layer }

func (d *Decoration) RulerPosition() RulerPosition { return d.rulerPosition }

// Style is the style the decoration was registered with.
func (d *Decoration) Style() style.Style {
	if d.disposed {
		return style.Style{}
	}
	return d.buffer.styles.Get(d.styleID)
}

func (d *Decoration) IsDisposed() bool { return d.disposed }

// OnRender is called with the element each time the decoration is drawn.
func (d *Decoration) OnRender(fn func(*Element)) event.Disposable {
	return d.onRender.Subscribe(fn)
}

func (d *Decoration) OnDispose(fn func()) event.Disposable {
	return d.onDispose.Subscribe(func(struct{}) { fn() })
}

// Dispose removes the decoration. The marker is left alone.
func (d *Decoration) Dispose() {
	if d.disposed {
		return
	}
	d.disposed = true
	b := d.buffer
	b.decorations = slices.DeleteFunc(b.decorations, func(other *Decoration) bool {
		return other == d
	})
	b.styles.Release(d.styleID)
	b.emit(func() {
		d.onDispose.Fire(struct{}{})
		d.onDispose.Clear()
		d.onRender.Clear()
	})
}

func (b *Buffer) decorationsOf(m *Marker) []*Decoration {
	var out []*Decoration
	for _, d := range b.decorations {
		if d.marker == m {
			out = append(out, d)
		}
	}
	return out
}

// Decorations returns the live decorations in registration order.
func (b *Buffer) Decorations() []*Decoration {
	return slices.Clone(b.decorations)
}

// Styles is the number of distinct decoration styles in use.
func (b *Buffer) Styles() int {
	return b.styles.Count()
}

// Rendered pairs a decoration with the element it drew.
type Rendered struct {
	Decoration *Decoration
	Element    *Element
}

// Render draws the decorations inside the viewport, bottom layer first.
// Render listeners run after the lock is released.
func (b *Buffer) Render() []Rendered {
	b.Lock()
	var out []Rendered
	for _, layer := range []Layer{LayerBottom, LayerTop} {
		for _, d := range b.decorations {
			line := d.marker.Line()
			if d.layer != layer || line < b.ydisp || line >= b.ydisp+b.rows {
				continue
			}
			out = append(out, Rendered{
				Decoration: d,
				Element: &Element{
					Row:   line - b.ydisp,
					X:     d.x,
					Width: d.width,
					Style: b.styles.Get(d.styleID),
				},
			})
		}
	}
	b.Unlock()

	for _, r := range out {
		r.Decoration.onRender.Fire(r.Element)
	}
	return out
}
