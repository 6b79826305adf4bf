//go:build codefix_debug

package assert

// Enabled is true when invariant violations panic.
const Enabled = true

func failed(msg string) {
	panic("assertion failed: " + msg)
}
