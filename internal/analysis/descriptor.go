// Package analysis runs rules over a bound syntax tree.
//
// A rule is an Analyzer. At engine construction each analyzer registers the
// node kinds it wants to see and, optionally, a compilation-start callback
// that runs once per document and may register further node actions after
// looking at the semantic model (for example only when
// System.Threading.Tasks.Task exists). The engine then walks the tree,
// dispatching each node to the actions registered for its kind.
//
// Before an action runs, the suppression gate checks that at least one of
// the analyzer's descriptors is enabled by configuration and not disabled by
// a #pragma warning at the node. Report applies the same check per
// descriptor. A panicking action is recovered and reported as CFX0001; the
// walk continues.
package analysis

import (
	"fmt"
	"strings"

	"codefix/internal/diag"
)

// Descriptor is the static metadata of one diagnostic a rule can report.
type Descriptor struct {
	ID               diag.Code
	Title            string
	MessageFormat    string // fmt verbs, filled by Report args
	Category         string
	DefaultSeverity  diag.Severity
	EnabledByDefault bool
	HelpURI          string
}

// Format renders the message for args. A format without verbs is returned
// unchanged even when args are given.
func (d *Descriptor) Format(args ...any) string {
	if len(args) == 0 || !strings.Contains(d.MessageFormat, "%") {
		return d.MessageFormat
	}
	return fmt.Sprintf(d.MessageFormat, args...)
}

func (d *Descriptor) String() string { return d.ID.ID() }
