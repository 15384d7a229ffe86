package set

import (
	"fmt"
	"sync"

	"github.com/hnimtadd/termtext/terminal/utils"
)

type Hashable interface {
	Hash() uint64
	Equals(t Hashable) bool
	// Delete is called once the last reference to the item is released.
	Delete()
}

// ID identifies an item in a RefCountedSet. ID 0 is never handed out.
type ID uint64

type elem[T Hashable] struct {
	data T
	ref  int64
}

// RefCountedSet interns equal values under one ID and counts references to
// it. When the count drops to zero the item is deleted and its ID is
// recycled.
type RefCountedSet[T Hashable] struct {
	mu sync.Mutex

	// items is indexed by ID. Slot 0 is unused.
	items []*elem[T]
	// table maps a hash to the IDs of the living items with that hash.
	table map[uint64][]ID
	// free holds IDs of deleted items, reused before growing items.
	free []ID

	living int
}

type Options struct {
	// Cap is the initial capacity of the set.
	// If not set, it defaults to 16.
	Cap *uint64
}

func NewRefCountedSet[T Hashable](opts Options) *RefCountedSet[T] {
	var cap uint64 = 16
	if opts.Cap != nil {
		cap = *opts.Cap
	}
	return &RefCountedSet[T]{
		items: make([]*elem[T], 1, cap+1),
		table: make(map[uint64][]ID, cap),
	}
}

// Add an item to the set if not present and increment its ref count.
//
// Returns the item's ID.
func (s *RefCountedSet[T]) Add(value T) ID {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, found := s.lookup(value); found {
		s.items[id].ref++
		return id
	}

	var id ID
	if n := len(s.free); n > 0 {
		id = s.free[n-1]
		s.free = s.free[:n-1]
		s.items[id] = &elem[T]{data: value, ref: 1}
	} else {
		id = ID(len(s.items))
		s.items = append(s.items, &elem[T]{data: value, ref: 1})
	}
	hash := value.Hash()
	s.table[hash] = append(s.table[hash], id)
	s.living++
	return id
}

// Lookup returns the ID of an item equal to value.
func (s *RefCountedSet[T]) Lookup(value T) (ID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lookup(value)
}

func (s *RefCountedSet[T]) lookup(value T) (ID, bool) {
	for _, id := range s.table[value.Hash()] {
		if s.items[id].data.Equals(value) {
			return id, true
		}
	}
	return 0, false
}

// Get returns the item stored under id.
func (s *RefCountedSet[T]) Get(id ID) T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mustItem(id).data
}

// RefCount returns the number of references held on id, zero if the item
// is gone.
func (s *RefCountedSet[T]) RefCount(id ID) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if int(id) >= len(s.items) || s.items[id] == nil {
		return 0
	}
	return s.items[id].ref
}

// Use adds a reference to an existing item.
func (s *RefCountedSet[T]) Use(id ID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mustItem(id).ref++
}

// Release drops a reference. The last release deletes the item.
func (s *RefCountedSet[T]) Release(id ID) {
	if deleted, ok := s.release(id); ok {
		deleted.Delete()
	}
}

// release drops a reference and returns the item if it was the last one.
func (s *RefCountedSet[T]) release(id ID) (data T, deleted bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item := s.mustItem(id)
	item.ref--
	if item.ref > 0 {
		return data, false
	}

	hash := item.data.Hash()
	ids := s.table[hash]
	for i, other := range ids {
		if other == id {
			ids = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	if len(ids) == 0 {
		delete(s.table, hash)
	} else {
		s.table[hash] = ids
	}
	s.items[id] = nil
	s.free = append(s.free, id)
	s.living--
	return item.data, true
}

// Count returns the number of living items.
func (s *RefCountedSet[T]) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.living
}

func (s *RefCountedSet[T]) mustItem(id ID) *elem[T] {
	utils.Assert(
		id != 0 && int(id) < len(s.items) && s.items[id] != nil,
		fmt.Sprintf("unknown set item %d", id),
	)
	return s.items[id]
}
