package source

import (
	"os"
	"path/filepath"
)

// FileID identifies one version of a file within a FileSet.
type FileID uint32

// FileFlags records how a file's content was obtained.
type FileFlags uint8

const (
	// FileVirtual marks content added from memory rather than read from disk.
	FileVirtual FileFlags = 1 << iota
	FileHadBOM
	FileNormalizedCRLF
)

// File is one loaded source text. Content is already decoded: BOM removed,
// CRLF folded to LF. LineIdx holds the offset of every '\n'.
type File struct {
	ID      FileID
	Path    string
	Content []byte
	LineIdx []uint32
	Flags   FileFlags
}

// LineCol is a 1-based line and column; columns count bytes.
type LineCol struct {
	Line uint32
	Col  uint32
}

// Position converts a byte offset to a line and column.
func (f *File) Position(off uint32) LineCol {
	return toLineCol(f.LineIdx, off)
}

// GetLine returns line lineNum (1-based) without its newline, or "" when out of range.
func (f *File) GetLine(lineNum uint32) string {
	if lineNum == 0 || int(lineNum) > len(f.LineIdx)+1 {
		return ""
	}
	start := 0
	if lineNum > 1 {
		start = int(f.LineIdx[lineNum-2]) + 1
	}
	end := len(f.Content)
	if int(lineNum) <= len(f.LineIdx) {
		end = int(f.LineIdx[lineNum-1])
	}
	if start >= len(f.Content) {
		return ""
	}
	return string(f.Content[start:min(end, len(f.Content))])
}

// Path display modes accepted by FormatPath.
const (
	PathAbsolute = "absolute"
	PathRelative = "relative"
	PathBasename = "basename"
	PathAuto     = "auto"
)

// FormatPath renders the path for output. Relative paths are computed
// against baseDir, or the working directory when it is empty. Auto keeps
// short or relative paths and shortens long absolute ones to the base name.
func (f *File) FormatPath(mode, baseDir string) string {
	switch mode {
	case PathAbsolute:
		if abs, err := filepath.Abs(f.Path); err == nil {
			return filepath.ToSlash(abs)
		}
	case PathRelative:
		if baseDir == "" {
			baseDir, _ = os.Getwd()
		}
		abs, err := filepath.Abs(f.Path)
		if err != nil {
			break
		}
		if rel, err := filepath.Rel(baseDir, abs); err == nil {
			return filepath.ToSlash(rel)
		}
	case PathBasename:
		return filepath.Base(f.Path)
	case PathAuto:
		if len(f.Path) >= 40 && filepath.IsAbs(f.Path) {
			return filepath.Base(f.Path)
		}
	}
	return f.Path
}
