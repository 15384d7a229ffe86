package event

import (
	"slices"
	"sync"
)

// Disposable releases whatever it was handed out for. Dispose is safe to
// call more than once.
type Disposable interface {
	Dispose()
}

// DisposableFunc adapts a function to Disposable. The function runs at most
// once.
func DisposableFunc(fn func()) Disposable {
	return &funcDisposable{fn: fn}
}

type funcDisposable struct {
	once sync.Once
	fn   func()
}

func (d *funcDisposable) Dispose() { d.once.Do(d.fn) }

// Store collects disposables and disposes them together.
type Store struct {
	mu    sync.Mutex
	items []Disposable
}

func (s *Store) Add(d Disposable) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, d)
}

// Dispose disposes everything added so far, newest first.
func (s *Store) Dispose() {
	s.mu.Lock()
	items := s.items
	s.items = nil
	s.mu.Unlock()
	for _, d := range slices.Backward(items) {
		d.Dispose()
	}
}

type listener[T any] struct {
	fn func(T)
}

// Emitter broadcasts values of type T to subscribed listeners.
type Emitter[T any] struct {
	mu        sync.RWMutex
	listeners []*listener[T]
}

// Subscribe adds fn to the listeners. Disposing the result removes it.
func (e *Emitter[T]) Subscribe(fn func(T)) Disposable {
	l := &listener[T]{fn: fn}
	e.mu.Lock()
	e.listeners = append(e.listeners, l)
	e.mu.Unlock()
	return DisposableFunc(func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		e.listeners = slices.DeleteFunc(e.listeners, func(other *listener[T]) bool {
			return other == l
		})
	})
}

// Fire calls every listener with v. Listeners run without the emitter lock
// held and may subscribe or dispose during the call.
func (e *Emitter[T]) Fire(v T) {
	e.mu.RLock()
	listeners := slices.Clone(e.listeners)
	e.mu.RUnlock()
	for _, l := range listeners {
		l.fn(v)
	}
}

// Len is the number of listeners.
func (e *Emitter[T]) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.listeners)
}

// Clear removes all listeners.
func (e *Emitter[T]) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listeners = nil
}
