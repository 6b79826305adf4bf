package diag

import "strings"

// Severity defines the importance of a diagnostic.
type Severity uint8

const (
	// SevHidden diagnostics are produced but not shown by default output.
	SevHidden Severity = iota
	// SevInfo is for informational diagnostics.
	SevInfo
	// SevWarning is for warning diagnostics.
	SevWarning
	SevError
)

func (s Severity) String() string {
	switch s {
	case SevHidden:
		return "HIDDEN"
	case SevInfo:
		return "INFO"
	case SevWarning:
		return "WARNING"
	case SevError:
		return "ERROR"
	}
	return "UNKNOWN"
}

// ParseSeverity accepts the lower-case config spellings ("hidden", "info",
// "warning", "error") and "suggestion" as an alias for info.
func ParseSeverity(s string) (Severity, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "hidden", "silent":
		return SevHidden, true
	case "info", "suggestion":
		return SevInfo, true
	case "warning", "warn":
		return SevWarning, true
	case "error":
		return SevError, true
	}
	return 0, false
}
