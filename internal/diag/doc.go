// Package diag defines the diagnostic model shared by the front end, the rule
// engine and the fix engine.
//
// # Data model
//
// Diagnostic is the central record:
//
//   - Severity: Hidden, Info, Warning or Error (severity.go).
//   - Code: compact numeric identifier with a stable string form such as
//     "RCS1238" or "CS1002" (codes.go).
//   - Message: short, actionable text.
//   - Primary: the source.Span the finding is anchored to.
//   - Notes: optional secondary spans.
//   - Fixes: optional materialised Fix records.
//
// Diagnostics are values. Once reported they are never mutated; Bag stores
// copies and hands out copies.
//
// # Fix suggestions
//
// Fix is the data-only form of a code action once it has been computed:
// Title, EquivalenceKey (groups fixes of the same kind for fix-all), Kind,
// Applicability and a list of TextEdit values in source coordinates. OldText
// on an edit is a guard the fix engine checks before applying it. Lazy code
// actions live in internal/codefix; they materialise into Fix when a
// formatter or the CLI needs edits.
//
// # Emitting diagnostics
//
// Producers emit through a Reporter, usually with Emit, which tolerates a
// nil Reporter. BagReporter aggregates into a Bag which
// is safe for concurrent use and supports sorting, deduplication and caps.
// DedupReporter drops repeated reports of the same finding.
package diag
