//go:build !codefix_debug

package assert

// Enabled is true when invariant violations panic.
const Enabled = false

func failed(string) {}
