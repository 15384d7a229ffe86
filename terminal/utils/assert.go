package utils

import "strings"

// Assert panics when an internal invariant does not hold.
func Assert(condition bool, message ...string) {
	if condition {
		return
	}
	if len(message) > 0 {
		panic(strings.Join(message, ": "))
	}
	panic("failed assertion")
}
