package diagfmt

import (
	"errors"
	"fmt"
	"strings"

	"fortio.org/safecast"

	"codefix/internal/diag"
	"codefix/internal/source"
)

var errPreviewRange = errors.New("edit outside the file")

// fixEditPreview holds the whole lines an edit touches, before and after.
type fixEditPreview struct {
	before []string
	after  []string
}

func buildFixEditPreview(fs *source.FileSet, edit diag.TextEdit) (fixEditPreview, error) {
	if fs == nil {
		return fixEditPreview{}, fmt.Errorf("nil FileSet")
	}
	file := fs.Get(edit.Span.File)
	if file == nil {
		return fixEditPreview{}, fmt.Errorf("file %d not found in FileSet", edit.Span.File)
	}
	size, err := safecast.Conv[uint32](len(file.Content))
	if err != nil {
		return fixEditPreview{}, fmt.Errorf("file size: %w", err)
	}
	if edit.Span.End > size || edit.Span.Start > edit.Span.End {
		return fixEditPreview{}, errPreviewRange
	}

	startPos, endPos := fs.Resolve(edit.Span)
	blockStart := lineStart(file, startPos.Line, size)
	blockEnd := min(max(lineEnd(file, max(endPos.Line, startPos.Line), size), blockStart), size)

	original := string(file.Content[blockStart:blockEnd])
	relStart := edit.Span.Start - blockStart
	relEnd := edit.Span.End - blockStart
	after := original[:relStart] + edit.NewText + original[relEnd:]

	return fixEditPreview{
		before: previewLines(original),
		after:  previewLines(after),
	}, nil
}

// previewLines splits text into lines, dropping the final newline.
func previewLines(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(strings.TrimRight(text, "\n"), "\n")
}

// lineStart returns the offset of the first byte of 1-based line.
func lineStart(f *source.File, line, size uint32) uint32 {
	if line <= 1 {
		return 0
	}
	if idx := int(line) - 2; idx < len(f.LineIdx) {
		return f.LineIdx[idx] + 1
	}
	return size
}

// lineEnd returns the offset just past the newline ending 1-based line.
func lineEnd(f *source.File, line, size uint32) uint32 {
	if line == 0 {
		return 0
	}
	if idx := int(line) - 1; idx < len(f.LineIdx) {
		return f.LineIdx[idx] + 1
	}
	return size
}
