package datastruct

import "iter"

// IntrusiveLinkedList is a doubly linked list whose nodes are owned by the
// caller. A caller keeps the *Node it appended and can later unlink it in
// O(1) without a search.
type IntrusiveLinkedList[T comparable] struct {
	First *Node[T] // Pointer to the first node
	Last  *Node[T] // Pointer to the last node
	len   int
}

type Node[T any] struct {
	Next *Node[T] // Pointer to the next node in the list
	Prev *Node[T] // Pointer to the previous node in the list
	Data T        // The data contained in the node
}

func NewIntrusiveLinkedList[T comparable]() *IntrusiveLinkedList[T] {
	return &IntrusiveLinkedList[T]{}
}

// Len returns the number of linked nodes.
func (l *IntrusiveLinkedList[T]) Len() int { return l.len }

// InsertAfter links newNode right after node.
func (l *IntrusiveLinkedList[T]) InsertAfter(node *Node[T], newNode *Node[T]) {
	newNode.Prev = node
	newNode.Next = node.Next
	if node.Next != nil {
		node.Next.Prev = newNode
	} else {
		l.Last = newNode
	}
	node.Next = newNode
	l.len++
}

// InsertBefore links newNode right before node.
func (l *IntrusiveLinkedList[T]) InsertBefore(node *Node[T], newNode *Node[T]) {
	newNode.Next = node
	newNode.Prev = node.Prev
	if node.Prev != nil {
		node.Prev.Next = newNode
	} else {
		l.First = newNode
	}
	node.Prev = newNode
	l.len++
}

// Append links newNode at the end of the list.
func (l *IntrusiveLinkedList[T]) Append(newNode *Node[T]) {
	if l.Last != nil {
		l.InsertAfter(l.Last, newNode)
		return
	}
	l.Prepend(newNode)
}

// Prepend links newNode at the beginning of the list.
func (l *IntrusiveLinkedList[T]) Prepend(newNode *Node[T]) {
	if l.First != nil {
		l.InsertBefore(l.First, newNode)
		return
	}
	newNode.Prev = nil
	newNode.Next = nil
	l.First = newNode
	l.Last = newNode
	l.len++
}

// Remove unlinks node. The node must belong to l.
func (l *IntrusiveLinkedList[T]) Remove(node *Node[T]) {
	if node.Prev != nil {
		node.Prev.Next = node.Next
	} else {
		l.First = node.Next
	}
	if node.Next != nil {
		node.Next.Prev = node.Prev
	} else {
		l.Last = node.Prev
	}
	node.Prev = nil
	node.Next = nil
	l.len--
}

// Pop removes and returns the last node in the list.
func (l *IntrusiveLinkedList[T]) Pop() *Node[T] {
	lastNode := l.Last
	if lastNode == nil {
		return nil
	}
	l.Remove(lastNode)
	return lastNode
}

// PopFirst removes and returns the first node in the list.
func (l *IntrusiveLinkedList[T]) PopFirst() *Node[T] {
	firstNode := l.First
	if firstNode == nil {
		return nil
	}
	l.Remove(firstNode)
	return firstNode
}

// Search returns first node with the given value, or nil if not found.
func (l *IntrusiveLinkedList[T]) Search(val T) *Node[T] {
	for node := l.First; node != nil; node = node.Next {
		if node.Data == val {
			return node
		}
	}
	return nil
}

// All yields the data of every node from first to last. The next node is
// read before yielding, so the current node may be removed while iterating.
func (l *IntrusiveLinkedList[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for node := l.First; node != nil; {
			next := node.Next
			if !yield(node.Data) {
				return
			}
			node = next
		}
	}
}
