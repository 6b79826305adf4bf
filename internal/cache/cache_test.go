package cache

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"codefix/internal/diag"
	"codefix/internal/source"
)

func TestPutGet(t *testing.T) {
	c, err := OpenDir(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ds := []diag.Diagnostic{
		{Code: diag.RuleSimplifyBooleanComparison, Severity: diag.SevInfo, Message: "Simplify boolean comparison", Primary: source.Span{File: 3, Start: 10, End: 19}},
		{Code: diag.RuleOptimizeMethodCall, Severity: diag.SevWarning, Message: "Optimize method call 'Compare'", Primary: source.Span{File: 3, Start: 40, End: 90}},
	}
	key := Key("a/b.cs", []byte("class C { }"), "v1")
	if _, ok, err := c.Get(key); ok || err != nil {
		t.Fatalf("Get before Put = %v, %v", ok, err)
	}
	if err := c.Put(key, FromDiagnostics("a/b.cs", ds)); err != nil {
		t.Fatal(err)
	}
	p, ok, err := c.Get(key)
	if !ok || err != nil {
		t.Fatalf("Get = %v, %v", ok, err)
	}
	// file ids are rebound to the reader's FileSet
	want := make([]diag.Diagnostic, len(ds))
	for i, d := range ds {
		d.Primary.File = 7
		want[i] = d
	}
	if got := p.ToDiagnostics(7); !reflect.DeepEqual(got, want) {
		t.Fatalf("ToDiagnostics = %+v\nwant %+v", got, want)
	}
}

func TestKeyInputs(t *testing.T) {
	base := Key("a.cs", []byte("x"), "f")
	for name, k := range map[string]Digest{
		"path":        Key("b.cs", []byte("x"), "f"),
		"content":     Key("a.cs", []byte("y"), "f"),
		"fingerprint": Key("a.cs", []byte("x"), "g"),
		"boundaries":  Key("a.c", []byte("sx"), "f"),
	} {
		if k == base {
			t.Errorf("changing %s kept the key", name)
		}
	}
	if Key("a.cs", []byte("x"), "f") != base {
		t.Error("key is not deterministic")
	}
}

func TestSchemaMismatchIsMiss(t *testing.T) {
	dir := t.TempDir()
	c, err := OpenDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	key := Key("a.cs", nil, "")
	if err := c.Put(key, &Payload{Path: "a.cs"}); err != nil {
		t.Fatal(err)
	}
	p := c.pathFor(key)
	if err := os.WriteFile(p, []byte{0x81, 0xa6, 'S', 'c', 'h', 'e', 'm', 'a', 0x63}, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, ok, err := c.Get(key); ok || err != nil {
		t.Fatalf("Get = %v, %v; want a silent miss", ok, err)
	}
}

func TestDropAll(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "codefix")
	c, err := OpenDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	key := Key("a.cs", nil, "")
	if err := c.Put(key, &Payload{Path: "a.cs"}); err != nil {
		t.Fatal(err)
	}
	if err := c.DropAll(); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := c.Get(key); ok {
		t.Fatal("entry survived DropAll")
	}
	if err := c.Put(key, &Payload{Path: "a.cs"}); err != nil {
		t.Fatalf("Put after DropAll: %v", err)
	}
}

func TestNilCache(t *testing.T) {
	var c *DiskCache
	if err := c.Put(Digest{}, &Payload{}); err != nil {
		t.Fatal(err)
	}
	if _, ok, err := c.Get(Digest{}); ok || err != nil {
		t.Fatalf("nil Get = %v, %v", ok, err)
	}
}
