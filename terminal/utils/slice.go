package utils

// RotateOnce moves the first item to the end, shifting the others one to
// the front.
func RotateOnce[T any](items []T) []T {
	if len(items) == 0 {
		return items
	}
	tmp := items[0]
	copy(items, items[1:])
	items[len(items)-1] = tmp
	return items
}
