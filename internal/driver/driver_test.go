package driver

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"codefix/internal/cache"
	"codefix/internal/config"
	"codefix/internal/diag"
	"codefix/internal/fix"
)

const boolCompare = "class C\n{\n    bool M(bool b) => b == true;\n}\n"

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func mustDecode(t *testing.T, text string) *config.Config {
	t.Helper()
	cfg, err := config.Decode(text)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	return cfg
}

func codesOf(ds []diag.Diagnostic) []string {
	var out []string
	for _, d := range ds {
		out = append(out, d.Code.ID())
	}
	return out
}

func TestListFiles(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"a.cs":         "",
		"sub/b.cs":     "",
		"bin/c.cs":     "",
		"obj/d.cs":     "",
		"gen/e.cs":     "",
		"readme.txt":   "",
		"sub/f.cs.txt": "",
	})
	cfg := mustDecode(t, "[analysis]\nexclude = [\"gen/**\"]\n")
	files, err := ListFiles([]string{dir, filepath.Join(dir, "readme.txt"), filepath.Join(dir, "a.cs")}, dir, cfg)
	if err != nil {
		t.Fatalf("ListFiles: %v", err)
	}
	var rel []string
	for _, f := range files {
		r, _ := filepath.Rel(dir, f)
		rel = append(rel, filepath.ToSlash(r))
	}
	want := "a.cs,readme.txt,sub/b.cs"
	if got := strings.Join(rel, ","); got != want {
		t.Fatalf("files = %s, want %s", got, want)
	}
}

func TestListFilesMissing(t *testing.T) {
	if _, err := ListFiles([]string{filepath.Join(t.TempDir(), "nope.cs")}, "", nil); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("err = %v, want not-exist", err)
	}
}

type recordingSink struct {
	mu     sync.Mutex
	events []Event
}

func (s *recordingSink) OnEvent(e Event) {
	s.mu.Lock()
	s.events = append(s.events, e)
	s.mu.Unlock()
}

func (s *recordingSink) count(stage Stage, status Status) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, e := range s.events {
		if e.Stage == stage && e.Status == status {
			n++
		}
	}
	return n
}

func TestAnalyzeUsesCache(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"a.cs":      boolCompare,
		"b.cs":      "class D\n{\n}\n",
		"broken.cs": "class E\n{\n    void M() { int x = ; }\n}\n",
	})
	dc, err := cache.OpenDir(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	sink := &recordingSink{}
	opts := Options{BaseDir: dir, Jobs: 2, Cache: dc, Progress: sink}

	first, err := Analyze(context.Background(), []string{dir}, opts)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(first.Files) != 3 {
		t.Fatalf("files = %d, want 3", len(first.Files))
	}
	if got := codesOf(first.Files[0].Diagnostics); len(got) != 1 || got[0] != "RCS1049" {
		t.Fatalf("a.cs diagnostics = %v", got)
	}
	if len(first.Files[1].Diagnostics) != 0 {
		t.Fatalf("b.cs diagnostics = %v", first.Files[1].Diagnostics)
	}
	broken := first.Files[2].Diagnostics
	if len(broken) == 0 || !broken[0].Code.IsHostError() || broken[0].Severity != diag.SevError {
		t.Fatalf("broken.cs diagnostics = %v", broken)
	}
	if first.Counts()[diag.SevError] == 0 {
		t.Fatal("Counts missed the syntax error")
	}
	if n := sink.count(StageAnalyze, StatusDone); n != 3 {
		t.Fatalf("done events = %d, want 3", n)
	}

	second, err := Analyze(context.Background(), []string{dir}, opts)
	if err != nil {
		t.Fatalf("second Analyze: %v", err)
	}
	for i, f := range second.Files {
		if !f.Cached {
			t.Errorf("%s not served from cache", f.Path)
		}
		if strings.Join(codesOf(f.Diagnostics), ",") != strings.Join(codesOf(first.Files[i].Diagnostics), ",") {
			t.Errorf("%s: cached %v, fresh %v", f.Path, f.Diagnostics, first.Files[i].Diagnostics)
		}
	}
	if n := sink.count(StageAnalyze, StatusCached); n != 3 {
		t.Fatalf("cached events = %d, want 3", n)
	}

	// a different rule configuration must miss the cache
	opts.Config = mustDecode(t, "[rules]\nRCS1049 = \"error\"\n")
	third, err := Analyze(context.Background(), []string{filepath.Join(dir, "a.cs")}, opts)
	if err != nil {
		t.Fatal(err)
	}
	if third.Files[0].Cached || third.Files[0].Diagnostics[0].Severity != diag.SevError {
		t.Fatalf("reconfigured run = %+v", third.Files[0])
	}
}

func TestAnalyzeTimings(t *testing.T) {
	dir := writeFiles(t, map[string]string{"a.cs": boolCompare})
	res, err := Analyze(context.Background(), []string{dir}, Options{BaseDir: dir, Timings: true})
	if err != nil {
		t.Fatal(err)
	}
	ds := res.Files[0].Diagnostics
	last := ds[len(ds)-1]
	if last.Code != diag.EngineTimings || last.Severity != diag.SevHidden {
		t.Fatalf("last diagnostic = %+v", last)
	}
	if !strings.Contains(last.Message, "parse+bind") {
		t.Fatalf("timings message = %q", last.Message)
	}
	if _, ok := res.Timings(); !ok {
		t.Fatal("Timings reported nothing")
	}
}

func TestAnalyzeMaxDiagnostics(t *testing.T) {
	text := "class C\n{\n    bool M(bool b) => b == true;\n    bool N(bool b) => b == false;\n    bool O(bool b) => b != true;\n}\n"
	dir := writeFiles(t, map[string]string{"a.cs": text})
	res, err := Analyze(context.Background(), []string{dir}, Options{BaseDir: dir, MaxDiagnostics: 2})
	if err != nil {
		t.Fatal(err)
	}
	if n := len(res.Files[0].Diagnostics); n != 2 {
		t.Fatalf("diagnostics = %d, want 2", n)
	}
}

func TestAnalyzeCanceled(t *testing.T) {
	dir := writeFiles(t, map[string]string{"a.cs": boolCompare})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Analyze(ctx, []string{dir}, Options{BaseDir: dir}); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestFixAllDryRun(t *testing.T) {
	text := "class C\n{\n    bool M(bool b) => b == true;\n    bool N(bool b) => b == false;\n}\n"
	dir := writeFiles(t, map[string]string{"a.cs": text, "clean.cs": "class D\n{\n}\n"})
	res, err := Fix(context.Background(), []string{dir}, FixOptions{
		Options: Options{BaseDir: dir},
		Mode:    fix.ApplyModeAll,
		DryRun:  true,
	})
	if err != nil {
		t.Fatalf("Fix: %v", err)
	}
	if len(res.FixAll) != 1 || res.FixAll[0].Code != diag.RuleSimplifyBooleanComparison || res.FixAll[0].Applied != 2 {
		t.Fatalf("FixAll = %+v", res.FixAll)
	}
	if len(res.Apply.FileChanges) != 1 {
		t.Fatalf("file changes = %+v", res.Apply.FileChanges)
	}
	want := "class C\n{\n    bool M(bool b) => b;\n    bool N(bool b) => !b;\n}\n"
	if got := string(res.Apply.FileChanges[0].Content); got != want {
		t.Fatalf("content:\n%s\nwant:\n%s", got, want)
	}
	onDisk, err := os.ReadFile(filepath.Join(dir, "a.cs"))
	if err != nil {
		t.Fatal(err)
	}
	if string(onDisk) != text {
		t.Fatal("dry run wrote the file")
	}
}

func TestFixByRuleIDWrites(t *testing.T) {
	dir := writeFiles(t, map[string]string{"a.cs": boolCompare})
	_, err := Fix(context.Background(), []string{dir}, FixOptions{
		Options:  Options{BaseDir: dir},
		Mode:     fix.ApplyModeID,
		TargetID: "rcs1049",
	})
	if err != nil {
		t.Fatalf("Fix: %v", err)
	}
	got, err := os.ReadFile(filepath.Join(dir, "a.cs"))
	if err != nil {
		t.Fatal(err)
	}
	if want := "class C\n{\n    bool M(bool b) => b;\n}\n"; string(got) != want {
		t.Fatalf("a.cs:\n%s\nwant:\n%s", got, want)
	}
}

func TestFixOnceAttachesFixes(t *testing.T) {
	dir := writeFiles(t, map[string]string{"a.cs": boolCompare})
	res, err := Fix(context.Background(), []string{dir}, FixOptions{
		Options: Options{BaseDir: dir},
		Mode:    fix.ApplyModeOnce,
		DryRun:  true,
	})
	if err != nil {
		t.Fatalf("Fix: %v", err)
	}
	ds := res.Files[0].Diagnostics
	if len(ds) != 1 || len(ds[0].Fixes) == 0 || !ds[0].Fixes[0].IsPreferred {
		t.Fatalf("diagnostics = %+v", ds)
	}
	if len(res.Apply.Applied) != 1 {
		t.Fatalf("applied = %+v", res.Apply.Applied)
	}
}

func TestFixNothingToDo(t *testing.T) {
	dir := writeFiles(t, map[string]string{"a.cs": "class D\n{\n}\n"})
	_, err := Fix(context.Background(), []string{dir}, FixOptions{
		Options: Options{BaseDir: dir},
		Mode:    fix.ApplyModeAll,
		DryRun:  true,
	})
	if !errors.Is(err, fix.ErrNoFixes) {
		t.Fatalf("err = %v, want ErrNoFixes", err)
	}
}

const flagsEnum = "using System;\n\n[Flags]\nenum Foo\n{\n    None = 0,\n    A,\n    B,\n    C,\n}\n"

func TestRefactorLists(t *testing.T) {
	dir := writeFiles(t, map[string]string{"e.cs": flagsEnum})
	path := filepath.Join(dir, "e.cs")
	off := uint32(strings.Index(flagsEnum, "enum Foo"))
	res, err := Refactor(context.Background(), path, RefactorOptions{BaseDir: dir, Offset: off, Length: uint32(len("enum Foo"))})
	if err != nil {
		t.Fatalf("Refactor: %v", err)
	}
	if len(res.Actions) != 1 {
		t.Fatalf("actions = %+v", res.Actions)
	}
	d := res.Actions[0]
	if d.Code != diag.RefactorGenerateEnumValues || d.Severity != diag.SevHidden {
		t.Fatalf("action diagnostic = %+v", d)
	}
	if f := d.Fixes[0]; f.Kind != diag.FixKindRefactor || f.EquivalenceKey != "RR0057" {
		t.Fatalf("fix = %+v", f)
	}
	if res.Apply != nil {
		t.Fatal("listing applied a refactoring")
	}
}

func TestRefactorApply(t *testing.T) {
	dir := writeFiles(t, map[string]string{"e.cs": flagsEnum})
	path := filepath.Join(dir, "e.cs")
	off := uint32(strings.Index(flagsEnum, "enum Foo"))
	for _, sel := range []string{"1", "RR0057"} {
		res, err := Refactor(context.Background(), path, RefactorOptions{BaseDir: dir, Offset: off, Apply: sel, DryRun: true})
		if err != nil {
			t.Fatalf("Refactor(%s): %v", sel, err)
		}
		want := "using System;\n\n[Flags]\nenum Foo\n{\n    None = 0,\n    A = 1,\n    B = 2,\n    C = 4,\n}\n"
		if got := string(res.Apply.FileChanges[0].Content); got != want {
			t.Fatalf("Refactor(%s):\n%s\nwant:\n%s", sel, got, want)
		}
	}
	if _, err := Refactor(context.Background(), path, RefactorOptions{BaseDir: dir, Offset: off, Apply: "7"}); !errors.Is(err, fix.ErrNoFixes) {
		t.Fatalf("err = %v, want ErrNoFixes", err)
	}
}

func TestRefactorOutOfRange(t *testing.T) {
	dir := writeFiles(t, map[string]string{"e.cs": flagsEnum})
	_, err := Refactor(context.Background(), filepath.Join(dir, "e.cs"), RefactorOptions{Offset: uint32(len(flagsEnum)), Length: 1})
	if !errors.Is(err, ErrOffsetOutOfRange) {
		t.Fatalf("err = %v, want ErrOffsetOutOfRange", err)
	}
}

func TestConfigNotices(t *testing.T) {
	cfg := mustDecode(t, "[rules]\nRCS9999 = \"warning\"\nRCS1049 = \"error\"\n\n[analysis]\nspeed = 3\n")
	notices := ConfigNotices(cfg)
	if len(notices) != 2 {
		t.Fatalf("notices = %v", notices)
	}
	if !strings.Contains(notices[0].Message, "RCS9999") || notices[0].Code != diag.EngineUnknownRuleID {
		t.Fatalf("first notice = %v", notices[0])
	}
	if !strings.Contains(notices[1].String(), `"analysis.speed"`) {
		t.Fatalf("second notice = %s", notices[1])
	}
	if ConfigNotices(nil) != nil {
		t.Fatal("nil config produced notices")
	}
}

func TestAnalyzeTestdata(t *testing.T) {
	dir := filepath.Join("..", "..", "testdata", "rules")
	cfg := mustDecode(t, "[rules]\nRCS1046 = \"info\"\n")
	res, err := Analyze(context.Background(), []string{dir}, Options{Config: cfg, Jobs: 3})
	if err != nil {
		t.Fatal(err)
	}
	got := make(map[string]int)
	for _, d := range res.Diagnostics() {
		got[d.Code.ID()]++
	}
	for _, id := range []string{"RCS1046", "RCS1047", "RCS1049", "RCS1097", "RCS1146", "RCS1238"} {
		if got[id] == 0 {
			t.Errorf("%s not reported; got %v", id, got)
		}
	}
	if got["RCS1049"] != 2 {
		t.Errorf("RCS1049 reported %d times, want 2 (nullable comparison is exempt)", got["RCS1049"])
	}
	if res.Counts()[diag.SevError] != 0 {
		t.Errorf("testdata has errors: %v", res.Diagnostics())
	}
}
