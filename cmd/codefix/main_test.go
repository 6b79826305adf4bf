package main

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"codefix/internal/config"
	"codefix/internal/diag"
	"codefix/internal/fix"
)

func TestParseSwitch(t *testing.T) {
	tests := []struct {
		in      string
		want    switchMode
		wantErr bool
	}{
		{"", switchAuto, false},
		{" Auto ", switchAuto, false},
		{"true", switchOn, false},
		{"never", switchOff, false},
		{"sometimes", switchAuto, true},
	}
	for _, tt := range tests {
		got, err := parseSwitch("ui", tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("parseSwitch(%q) = %v, %v", tt.in, got, err)
		}
	}
	if on, _ := showProgress("off", "pretty"); on {
		t.Error("--ui off ignored")
	}
	if on, _ := showProgress("on", "json"); !on {
		t.Error("--ui on ignored")
	}
	if _, err := showProgress("loud", "pretty"); err == nil || !strings.Contains(err.Error(), "--ui") {
		t.Errorf("showProgress error = %v", err)
	}
}

func TestUseColor(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "out")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	tests := []struct {
		in      string
		want    bool
		wantErr bool
	}{
		{"auto", false, false},
		{"always", true, false},
		{"never", false, false},
		{"rainbow", false, true},
	}
	for _, tt := range tests {
		got, err := useColor(tt.in, f)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("useColor(%q) = %v, %v", tt.in, got, err)
		}
	}
}

func TestCatalogRows(t *testing.T) {
	cfg, err := config.Decode("[rules]\nRCS1049 = \"none\"\nRCS1046 = \"warning\"\n")
	if err != nil {
		t.Fatal(err)
	}
	rows := catalogRows(cfg)
	byID := make(map[string]ruleRow)
	for _, r := range rows {
		byID[r.ID] = r
	}
	if r := byID["RCS1049"]; r.Enabled || !r.Fixable {
		t.Errorf("RCS1049 = %+v", r)
	}
	if r := byID["RCS1046"]; !r.Enabled || r.Severity != "warning" {
		t.Errorf("RCS1046 = %+v", r)
	}
	if r := byID["RR0057"]; !r.Refactoring || !r.Enabled {
		t.Errorf("RR0057 = %+v", r)
	}

	var buf bytes.Buffer
	renderRules(&buf, rows)
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != len(rows)+1 {
		t.Fatalf("table has %d lines for %d rules:\n%s", len(lines), len(rows), buf.String())
	}
	if !strings.Contains(buf.String(), "refactor") {
		t.Fatalf("table misses the refactoring marker:\n%s", buf.String())
	}
}

func TestHandleApplyResultDryRun(t *testing.T) {
	res := &fix.ApplyResult{
		Applied:     []fix.AppliedFix{{ID: "fixall:a.cs", Title: "Fix all in a.cs", Code: diag.RuleSimplifyBooleanComparison, PrimaryPath: "a.cs", EditCount: 2}},
		FileChanges: []fix.FileChange{{Path: "a.cs", EditCount: 2, Content: []byte("class C\n{\n}\n")}},
	}
	var buf bytes.Buffer
	if err := handleApplyResult(&buf, res, nil, true); err != nil {
		t.Fatalf("handleApplyResult: %v", err)
	}
	if !strings.Contains(buf.String(), "a.cs") {
		t.Fatalf("output = %q", buf.String())
	}
}

func TestVersionJSON(t *testing.T) {
	var buf bytes.Buffer
	versionCmd.SetOut(&buf)
	versionFormat = "json"
	defer func() { versionFormat = "pretty" }()
	if err := versionCmd.RunE(versionCmd, nil); err != nil {
		t.Fatal(err)
	}
	var payload versionPayload
	if err := json.Unmarshal(buf.Bytes(), &payload); err != nil {
		t.Fatalf("unmarshal %q: %v", buf.String(), err)
	}
	if payload.Tool != "codefix" || payload.Version == "" {
		t.Fatalf("payload = %+v", payload)
	}
}
