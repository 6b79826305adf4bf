package source

import (
	"bytes"
	"path/filepath"
	"slices"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// decode strips a UTF-8 byte order mark and folds CRLF line endings to LF.
// A lone '\r' is kept. The flags report what was changed.
func decode(raw []byte) ([]byte, FileFlags) {
	var flags FileFlags
	if bytes.HasPrefix(raw, utf8BOM) {
		raw = raw[len(utf8BOM):]
		flags |= FileHadBOM
	}
	if bytes.Contains(raw, []byte("\r\n")) {
		raw = bytes.ReplaceAll(raw, []byte("\r\n"), []byte("\n"))
		flags |= FileNormalizedCRLF
	}
	return raw, flags
}

func buildLineIndex(content []byte) []uint32 {
	var idx []uint32
	for off := 0; ; {
		i := bytes.IndexByte(content[off:], '\n')
		if i < 0 {
			return idx
		}
		off += i
		idx = append(idx, uint32(off))
		off++
	}
}

// toLineCol maps off to a position. A newline belongs to the line it ends.
func toLineCol(lineIdx []uint32, off uint32) LineCol {
	// number of newlines strictly before off
	n, _ := slices.BinarySearch(lineIdx, off)
	if n == 0 {
		return LineCol{Line: 1, Col: off + 1}
	}
	return LineCol{Line: uint32(n + 1), Col: off - lineIdx[n-1]}
}

func normalizePath(p string) string {
	return filepath.ToSlash(filepath.Clean(p))
}
