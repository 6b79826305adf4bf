// Package cache keeps analysis results on disk so unchanged files are not
// re-analysed.
//
// Entries are keyed by a digest of the file content, its path, the tool
// version and the effective rule configuration. A change to any of them
// yields a different key, so entries never need explicit invalidation; a
// schema bump makes old entries unreadable and they are treated as misses.
package cache

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"codefix/internal/diag"
	"codefix/internal/source"
)

// bump when Payload changes shape
const schemaVersion uint16 = 1

// Digest is a SHA-256 key.
type Digest [32]byte

func (d Digest) String() string { return hex.EncodeToString(d[:]) }

// DiskCache stores one Payload per Digest under a directory. Safe for
// concurrent use; a nil *DiskCache is a cache that never hits.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// Payload is the cached analysis result of one file.
type Payload struct {
	Schema      uint16
	Path        string
	Diagnostics []Entry
}

// Entry is a diagnostic without its file id, which is only meaningful
// within one FileSet.
type Entry struct {
	Code     uint16
	Severity uint8
	Start    uint32
	End      uint32
	Message  string
}

// Open returns the cache under $XDG_CACHE_HOME/app, or ~/.cache/app.
func Open(app string) (*DiskCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	return OpenDir(filepath.Join(base, app))
}

// OpenDir returns a cache rooted at dir, creating it.
func OpenDir(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

// Dir returns the root directory.
func (c *DiskCache) Dir() string { return c.dir }

// Key digests everything an analysis result depends on. fingerprint
// describes the rule configuration and tool version.
func Key(path string, content []byte, fingerprint string) Digest {
	h := sha256.New()
	var schema [2]byte
	binary.LittleEndian.PutUint16(schema[:], schemaVersion)
	_, _ = h.Write(schema[:])
	for _, part := range [][]byte{[]byte(fingerprint), []byte(filepath.ToSlash(path)), content} {
		var n [8]byte
		binary.LittleEndian.PutUint64(n[:], uint64(len(part)))
		_, _ = h.Write(n[:])
		_, _ = h.Write(part)
	}
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}

func (c *DiskCache) pathFor(key Digest) string {
	hexKey := key.String()
	// two-level fan-out keeps directories small
	return filepath.Join(c.dir, "files", hexKey[:2], hexKey+".mp")
}

// Put writes payload atomically: encode to a temp file, then rename.
func (c *DiskCache) Put(key Digest, payload *Payload) (err error) {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(f.Name())
		}
	}()

	payload.Schema = schemaVersion
	if err = msgpack.NewEncoder(f).Encode(payload); err != nil {
		_ = f.Close()
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), p)
}

// Get reads the payload stored under key. A missing entry, or one written
// with another schema, is a miss and not an error.
func (c *DiskCache) Get(key Digest) (*Payload, bool, error) {
	if c == nil {
		return nil, false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer f.Close()

	var out Payload
	if err := msgpack.NewDecoder(f).Decode(&out); err != nil {
		return nil, false, err
	}
	if out.Schema != schemaVersion {
		return nil, false, nil
	}
	return &out, true, nil
}

// DropAll removes every entry.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	// сначала переименовываем, чтобы параллельный Open не увидел полупустой каталог
	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return err
	}
	return os.RemoveAll(old)
}

// FromDiagnostics converts diagnostics of one file to cache entries.
func FromDiagnostics(path string, ds []diag.Diagnostic) *Payload {
	p := &Payload{Path: path, Diagnostics: make([]Entry, len(ds))}
	for i, d := range ds {
		p.Diagnostics[i] = Entry{
			Code:     uint16(d.Code),
			Severity: uint8(d.Severity),
			Start:    d.Primary.Start,
			End:      d.Primary.End,
			Message:  d.Message,
		}
	}
	return p
}

// ToDiagnostics rebuilds the diagnostics of p against file.
func (p *Payload) ToDiagnostics(file source.FileID) []diag.Diagnostic {
	out := make([]diag.Diagnostic, len(p.Diagnostics))
	for i, e := range p.Diagnostics {
		out[i] = diag.Diagnostic{
			Code:     diag.Code(e.Code),
			Severity: diag.Severity(e.Severity),
			Message:  e.Message,
			Primary:  source.Span{File: file, Start: e.Start, End: e.End},
		}
	}
	return out
}
