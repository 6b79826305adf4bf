package fix

import (
	"cmp"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"codefix/internal/diag"
	"codefix/internal/source"
)

// buffer is the working copy of one file. Applied edits are kept in the
// coordinates of the original content, sorted by span, so later fixes,
// which were computed against the original too, can be mapped onto the
// working copy.
type buffer struct {
	file    *source.File
	text    []byte
	applied []diag.TextEdit
	edits   int
}

// shift maps an offset in the original content to the working copy.
func (b *buffer) shift(pos uint32) int {
	delta := 0
	for _, e := range b.applied {
		if e.Span.Start > pos {
			break
		}
		if e.Span.End <= pos {
			delta += len(e.NewText) - int(e.Span.End-e.Span.Start)
		}
	}
	return int(pos) + delta
}

func (b *buffer) conflicts(e diag.TextEdit) bool {
	return slices.ContainsFunc(b.applied, func(prev diag.TextEdit) bool { return spansConflict(prev, e) })
}

// workspace stages fixes over the files of a FileSet and writes them out.
type workspace struct {
	fs      *source.FileSet
	dryRun  bool
	buffers map[source.FileID]*buffer
}

func newWorkspace(fs *source.FileSet, dryRun bool) *workspace {
	return &workspace{fs: fs, dryRun: dryRun, buffers: make(map[source.FileID]*buffer)}
}

func (w *workspace) displayPath(id source.FileID) string {
	if f := w.fs.Get(id); f != nil {
		return f.FormatPath("auto", w.fs.BaseDir())
	}
	return ""
}

// stage applies the edits of one fix to the working copies. On failure
// nothing is changed and the reason is returned.
func (w *workspace) stage(edits []diag.TextEdit) (int, string) {
	byFile := make(map[source.FileID][]diag.TextEdit)
	for _, e := range edits {
		byFile[e.Span.File] = append(byFile[e.Span.File], e)
	}
	staged := make(map[source.FileID]*buffer, len(byFile))
	for id, fileEdits := range byFile {
		next, reason := w.stageFile(id, fileEdits)
		if reason != "" {
			return 0, reason
		}
		staged[id] = next
	}
	for id, b := range staged {
		w.buffers[id] = b
	}
	return len(edits), ""
}

func (w *workspace) stageFile(id source.FileID, edits []diag.TextEdit) (*buffer, string) {
	cur := w.buffers[id]
	if cur == nil {
		file := w.fs.Get(id)
		if file == nil {
			return nil, "unknown target file"
		}
		cur = &buffer{file: file, text: file.Content}
	}
	if cur.file.Flags&source.FileVirtual != 0 && !w.dryRun {
		return nil, "target file is virtual"
	}

	// back to front, so earlier offsets stay valid while applying
	edits = slices.Clone(edits)
	slices.SortFunc(edits, func(a, b diag.TextEdit) int {
		return cmp.Or(cmp.Compare(b.Span.Start, a.Span.Start), cmp.Compare(b.Span.End, a.Span.End))
	})
	for i, e := range edits {
		if cur.conflicts(e) {
			return nil, fmt.Sprintf("conflicts with previously applied edits in %s", w.displayPath(id))
		}
		if i > 0 && spansConflict(edits[i-1], e) {
			return nil, "fix has overlapping edits"
		}
	}

	text := slices.Clone(cur.text)
	for _, e := range edits {
		start, end := cur.shift(e.Span.Start), cur.shift(e.Span.End)
		if start < 0 || end < start || end > len(text) {
			return nil, "edit span out of range"
		}
		if e.OldText != "" && string(text[start:end]) != e.OldText {
			return nil, "existing text does not match expected content"
		}
		text = slices.Concat(text[:start], []byte(e.NewText), text[end:])
	}

	applied := slices.Concat(cur.applied, edits)
	slices.SortFunc(applied, func(a, b diag.TextEdit) int {
		return cmp.Or(cmp.Compare(a.Span.Start, b.Span.Start), cmp.Compare(a.Span.End, b.Span.End))
	})
	return &buffer{file: cur.file, text: text, applied: applied, edits: cur.edits + len(edits)}, ""
}

// commit writes every changed file, unless dry-running, and reports the
// changes ordered by path.
func (w *workspace) commit() ([]FileChange, error) {
	changes := make([]FileChange, 0, len(w.buffers))
	for _, b := range w.buffers {
		changes = append(changes, FileChange{
			Path:      b.file.FormatPath("relative", w.fs.BaseDir()),
			EditCount: b.edits,
			Content:   b.text,
		})
	}
	slices.SortFunc(changes, func(a, b FileChange) int { return cmp.Compare(a.Path, b.Path) })
	if w.dryRun {
		return changes, nil
	}
	ids := make([]source.FileID, 0, len(w.buffers))
	for id := range w.buffers {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		b := w.buffers[id]
		if err := writeFileAtomic(b.file.Path, b.text); err != nil {
			return changes, fmt.Errorf("write %s: %w", b.file.Path, err)
		}
	}
	return changes, nil
}

// writeFileAtomic replaces path through a temporary file in the same
// directory, keeping the original permissions.
func writeFileAtomic(path string, data []byte) error {
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".codefix-*")
	if err != nil {
		return err
	}
	name := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(name)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return err
	}
	if err := os.Chmod(name, mode); err != nil {
		os.Remove(name)
		return err
	}
	if err := os.Rename(name, path); err != nil {
		os.Remove(name)
		return err
	}
	return nil
}

// spansConflict reports whether two edits overlap. Spans are half-open;
// two insertions never conflict, and an insertion conflicts with a
// replacement only strictly inside it or at its start.
func spansConflict(a, b diag.TextEdit) bool {
	aStart, aEnd := a.Span.Start, a.Span.End
	bStart, bEnd := b.Span.Start, b.Span.End
	switch {
	case aStart == aEnd && bStart == bEnd:
		return false
	case aStart == aEnd:
		return bStart <= aStart && aStart < bEnd
	case bStart == bEnd:
		return aStart <= bStart && bStart < aEnd
	default:
		return aStart < bEnd && bStart < aEnd
	}
}
