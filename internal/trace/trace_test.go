package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestLevelScopes(t *testing.T) {
	tests := []struct {
		level Level
		scope Scope
		want  bool
	}{
		{LevelOff, ScopeDriver, false},
		{LevelError, ScopeDriver, false},
		{LevelPhase, ScopeDriver, true},
		{LevelPhase, ScopePass, true},
		{LevelPhase, ScopeFile, false},
		{LevelDetail, ScopeFile, true},
		{LevelDetail, ScopeRule, false},
		{LevelDebug, ScopeRule, true},
		{LevelDebug, 0, false},
	}
	for _, tt := range tests {
		if got := tt.level.ShouldEmit(tt.scope); got != tt.want {
			t.Errorf("%s.ShouldEmit(%s) = %v, want %v", tt.level, tt.scope, got, tt.want)
		}
	}
}

func TestStreamNDJSON(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelDetail, FormatNDJSON)
	ctx := WithTracer(context.Background(), tr)

	outer, ctx := Start(ctx, ScopePass, "analyze")
	fileCtx := WithFile(ctx, "src/A.cs")
	inner, fileCtx := Start(fileCtx, ScopeFile, "file")
	inner.WithExtra("diagnostics", "2").End("")
	Point(WithRule(fileCtx, "RCS1146"), ScopeRule, "rule-failure", "dropped at detail level")
	outer.End("done")
	if err := tr.Flush(); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d events:\n%s", len(lines), buf.String())
	}
	var ev jsonEvent
	if err := json.Unmarshal([]byte(lines[2]), &ev); err != nil {
		t.Fatal(err)
	}
	if ev.Kind != "end" || ev.Scope != "file" || ev.File != "src/A.cs" || ev.ParentID != outer.ID() || ev.Extra["diagnostics"] != "2" {
		t.Fatalf("inner end = %+v", ev)
	}
	var outerEnd jsonEvent
	if err := json.Unmarshal([]byte(lines[3]), &outerEnd); err != nil {
		t.Fatal(err)
	}
	if outerEnd.File != "" || outerEnd.Detail != "done" {
		t.Fatalf("outer end = %+v", outerEnd)
	}
}

func TestPointCarriesRule(t *testing.T) {
	r := NewRingTracer(8, LevelDebug)
	ctx := WithRule(WithFile(WithTracer(context.Background(), r), "a.cs"), "RCS1049")
	Point(ctx, ScopeRule, "fix-rejected", "introduced CS0019")

	evs := r.Snapshot()
	if len(evs) != 1 {
		t.Fatalf("events = %+v", evs)
	}
	line := string(FormatEvent(&evs[0], FormatText))
	if !strings.Contains(line, "• fix-rejected a.cs [RCS1049] (introduced CS0019)") {
		t.Fatalf("text = %q", line)
	}
}

func TestRingKeepsLatest(t *testing.T) {
	r := NewRingTracer(3, LevelDebug)
	ctx := WithTracer(context.Background(), r)
	for _, name := range []string{"a", "b", "c", "d"} {
		Point(ctx, ScopeRule, name, "")
	}
	var names []string
	for _, ev := range r.Snapshot() {
		names = append(names, ev.Name)
	}
	if strings.Join(names, ",") != "b,c,d" {
		t.Fatalf("Snapshot = %v", names)
	}
	var buf bytes.Buffer
	if err := r.Dump(&buf, FormatText); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "• d") {
		t.Fatalf("Dump:\n%s", buf.String())
	}
}

func TestRingAtErrorLevelKeepsEverything(t *testing.T) {
	r := NewRingTracer(4, LevelError)
	r.Emit(&Event{Kind: KindPoint, Scope: ScopeRule, Name: "x"})
	if len(r.Snapshot()) != 1 {
		t.Fatal("error-level ring dropped a rule event")
	}
}

func TestSpanEndOnce(t *testing.T) {
	r := NewRingTracer(8, LevelPhase)
	sp, _ := Start(WithTracer(context.Background(), r), ScopePass, "fix")
	if n, _ := open.oldest(10, time.Now()); n == 0 {
		t.Fatal("open span not tracked")
	}
	sp.End("")
	sp.End("again")
	if got := len(r.Snapshot()); got != 2 {
		t.Fatalf("events = %d, want begin and one end", got)
	}
}

func TestHeartbeatNamesOpenSpans(t *testing.T) {
	r := NewRingTracer(8, LevelDetail)
	ctx := WithFile(WithTracer(context.Background(), r), "slow.cs")
	sp, _ := Start(ctx, ScopeFile, "fixall")
	defer sp.End("")

	ev := beatEvent(1, time.Now().Add(time.Second))
	if ev.Kind != KindHeartbeat || ev.Extra["beat"] != "1" {
		t.Fatalf("heartbeat = %+v", ev)
	}
	if !strings.Contains(ev.Detail, "fixall slow.cs") {
		t.Fatalf("heartbeat detail = %q", ev.Detail)
	}

	h := StartHeartbeat(r, time.Millisecond)
	time.Sleep(5 * time.Millisecond)
	h.Stop()
	h.Stop()
	if StartHeartbeat(Nop, time.Second) != nil {
		t.Fatal("heartbeat started for Nop")
	}
}

func TestNopContext(t *testing.T) {
	if FromContext(context.Background()) != Nop {
		t.Fatal("empty context does not yield Nop")
	}
	sp, ctx := Start(context.Background(), ScopePass, "x")
	if sp.ID() != 0 || CurrentSpan(ctx) != 0 {
		t.Fatal("disabled tracer produced a span")
	}
	if sp.End("") != 0 {
		t.Fatal("disabled span measured time")
	}
}

func TestNewFormats(t *testing.T) {
	var buf bytes.Buffer
	tr, err := New(Config{Level: LevelPhase, Mode: ModeBoth, Output: &buf, OutputPath: "run.ndjson"})
	if err != nil {
		t.Fatal(err)
	}
	m, ok := tr.(*MultiTracer)
	if !ok {
		t.Fatalf("ModeBoth built %T", tr)
	}
	if _, ok := m.Ring(); !ok {
		t.Fatal("ModeBoth has no ring")
	}
	sp, _ := Start(WithTracer(context.Background(), tr), ScopePass, "load")
	sp.End("")
	if err := tr.Close(); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(buf.String(), "{") {
		t.Fatalf("auto format for .ndjson wrote %q", buf.String())
	}
	if off, _ := New(Config{Level: LevelOff}); off != Nop {
		t.Fatal("LevelOff did not yield Nop")
	}
}

func TestParseFlags(t *testing.T) {
	if l, err := ParseLevel("DETAIL"); err != nil || l != LevelDetail {
		t.Fatalf("ParseLevel = %v, %v", l, err)
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatal("ParseLevel accepted junk")
	}
	if f, err := ParseFormat("ndjson"); err != nil || f != FormatNDJSON {
		t.Fatalf("ParseFormat = %v, %v", f, err)
	}
	if m, err := ParseMode("both"); err != nil || m != ModeBoth {
		t.Fatalf("ParseMode = %v, %v", m, err)
	}
	if _, err := ParseMode(""); err == nil {
		t.Fatal("ParseMode accepted an empty value")
	}
}
