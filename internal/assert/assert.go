// Package assert holds invariant checks that are loud only in debug builds.
//
// Build with -tags codefix_debug to turn a failed check into a panic. In
// release builds the checks return their condition so callers can skip the
// offending contribution:
//
//	if !assert.That(info.Success, "unmatched invocation") {
//		return
//	}
package assert

import "fmt"

// That reports cond. A false cond panics in debug builds.
func That(cond bool, msg string) bool {
	if !cond {
		failed(msg)
	}
	return cond
}

// Thatf is That with a formatted message. The message is only built on
// failure.
func Thatf(cond bool, format string, args ...any) bool {
	if !cond {
		failed(fmt.Sprintf(format, args...))
	}
	return cond
}

// Unreachable marks a branch that well-formed input never takes.
func Unreachable(msg string) {
	failed("unreachable: " + msg)
}
