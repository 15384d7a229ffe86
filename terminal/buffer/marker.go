package buffer

import (
	"github.com/hnimtadd/termtext/terminal/datastruct"
	"github.com/hnimtadd/termtext/terminal/event"
)

// Marker tracks an absolute row as the scrollback is trimmed. A marker
// whose row falls off the top is disposed.
type Marker struct {
	ID int

	line     int
	disposed bool
	node     *datastruct.Node[*Marker]
	buffer   *Buffer

	onDispose event.Emitter[struct{}]
}

// Line is the absolute row of the marker, -1 once disposed.
func (m *Marker) Line() int {
	if m.disposed {
		return -1
	}
	return m.line
}

func (m *Marker) IsDisposed() bool { return m.disposed }

func (m *Marker) OnDispose(fn func()) event.Disposable {
	return m.onDispose.Subscribe(func(struct{}) { fn() })
}

// Dispose removes the marker and every decoration attached to it.
func (m *Marker) Dispose() {
	if m.disposed {
		return
	}
	m.disposed = true
	b := m.buffer
	b.markers.Remove(m.node)
	for _, d := range b.decorationsOf(m) {
		d.Dispose()
	}
	b.emit(func() {
		m.onDispose.Fire(struct{}{})
		m.onDispose.Clear()
	})
}

// RegisterMarker adds a marker at the cursor row plus cursorYOffset. It
// returns nil when that row does not exist.
func (b *Buffer) RegisterMarker(cursorYOffset int) *Marker {
	line := b.ybase + b.cursor.Y + cursorYOffset
	if line < 0 || line >= len(b.lines) {
		return nil
	}
	b.nextMarkerID++
	m := &Marker{ID: b.nextMarkerID, line: line, buffer: b}
	m.node = &datastruct.Node[*Marker]{Data: m}
	b.markers.Append(m.node)
	return m
}

// Markers is the number of live markers.
func (b *Buffer) Markers() int {
	return b.markers.Len()
}

// trimmed shifts everything anchored to a row after n rows were dropped
// from the top.
func (b *Buffer) trimmed(n int) {
	b.logger.Debug("scrollback trimmed", "rows", n)
	b.trims += n
	var gone []*Marker
	for m := range b.markers.All() {
		m.line -= n
		if m.line < 0 {
			gone = append(gone, m)
		}
	}
	for _, m := range gone {
		m.Dispose()
	}
	b.shiftSelection(n)
}
