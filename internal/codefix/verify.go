package codefix

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"codefix/internal/diag"
	"codefix/internal/source"
)

// ErrFixRejected marks a code action whose result failed verification.
var ErrFixRejected = errors.New("fix rejected")

type errorKey struct {
	code diag.Code
	msg  string
}

// Verify checks that after is a safe rewrite of before. It rejects results
// that do not change the text, that rewrite a region containing a
// preprocessor directive, or that carry a host compiler error before did
// not have. Errors are compared as a multiset of (code, message), so moved
// pre-existing errors are tolerated.
func Verify(before, after *Document) error {
	if after == nil {
		return fmt.Errorf("%w: action produced no document", ErrFixRejected)
	}
	edits := TextChanges(before.File(), before.Text(), after.Text())
	if len(edits) == 0 {
		return fmt.Errorf("%w: action changed nothing", ErrFixRejected)
	}
	root := before.Tree.Root()
	for _, e := range edits {
		if !e.Span.Empty() && root.SpanContainsDirectivesIn(e.Span) {
			return fmt.Errorf("%w: rewritten text contains a preprocessor directive", ErrFixRejected)
		}
	}
	known := make(map[errorKey]int)
	for _, d := range before.Errors() {
		known[errorKey{d.Code, d.Message}]++
	}
	for _, d := range after.Errors() {
		k := errorKey{d.Code, d.Message}
		if known[k] > 0 {
			known[k]--
			continue
		}
		return fmt.Errorf("%w: introduces %s: %s", ErrFixRejected, d.Code.ID(), d.Message)
	}
	return nil
}

// TextChanges returns the edit turning before into after: the differing
// middle between their common prefix and suffix, cut at rune boundaries.
// Equal texts yield no edits.
func TextChanges(file source.FileID, before, after string) []diag.TextEdit {
	if before == after {
		return nil
	}
	prefix := 0
	for prefix < len(before) && prefix < len(after) && before[prefix] == after[prefix] {
		prefix++
	}
	for prefix > 0 && (!runeBoundary(before, prefix) || !runeBoundary(after, prefix)) {
		prefix--
	}
	suffix := 0
	for suffix < len(before)-prefix && suffix < len(after)-prefix &&
		before[len(before)-1-suffix] == after[len(after)-1-suffix] {
		suffix++
	}
	for suffix > 0 && !utf8.RuneStart(before[len(before)-suffix]) {
		suffix--
	}
	start, end := prefix, len(before)-suffix
	return []diag.TextEdit{{
		Span:    source.Span{File: file, Start: uint32(start), End: uint32(end)},
		NewText: after[prefix : len(after)-suffix],
		OldText: before[start:end],
	}}
}

func runeBoundary(s string, i int) bool {
	return i >= len(s) || utf8.RuneStart(s[i])
}
