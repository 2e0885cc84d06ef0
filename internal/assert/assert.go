// Package assert panics on programmer errors — invariant violations that,
// per the core's error taxonomy, must never be recovered from.
package assert

import "fmt"

// True panics with msg if cond is false.
func True(cond bool, msg string, args ...any) {
	if !cond {
		panic(fmt.Sprintf(msg, args...))
	}
}
