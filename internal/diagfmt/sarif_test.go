package diagfmt

import (
	"bytes"
	"encoding/json"
	"testing"

	"codefix/internal/diag"
)

func TestSarif(t *testing.T) {
	fs, bag, sp := sample(t)
	var buf bytes.Buffer
	meta := SarifRunMeta{
		ToolName:       "codefix",
		ToolVersion:    "0.1.0",
		InvocationArgs: []string{"codefix", "analyze", "--format", "sarif"},
		Rules: []RuleMeta{
			{ID: "RCS1046", Title: "Asynchronous method name should end with 'Async'", DefaultSeverity: "info"},
			{ID: "RCS1049", Title: "Simplify boolean comparison", DefaultSeverity: "info", HelpURI: "https://example.test/RCS1049"},
		},
	}
	if err := Sarif(&buf, bag, fs, meta); err != nil {
		t.Fatalf("Sarif: %v", err)
	}

	var log sarifLog
	if err := json.Unmarshal(buf.Bytes(), &log); err != nil {
		t.Fatalf("invalid SARIF: %v\n%s", err, buf.String())
	}
	if log.Version != "2.1.0" || len(log.Runs) != 1 {
		t.Fatalf("log = %+v", log)
	}
	run := log.Runs[0]
	if run.Tool.Driver.Name != "codefix" || len(run.Tool.Driver.Rules) != 2 {
		t.Fatalf("driver = %+v", run.Tool.Driver)
	}
	if cfg := run.Tool.Driver.Rules[1].DefaultConfig; cfg == nil || cfg.Level != "note" {
		t.Fatalf("default configuration = %+v", cfg)
	}
	if len(run.Invocations) != 1 || !run.Invocations[0].ExecutionSuccessful {
		t.Fatalf("invocations = %+v", run.Invocations)
	}
	// hidden timings are dropped
	if len(run.Results) != 1 {
		t.Fatalf("results = %+v", run.Results)
	}
	res := run.Results[0]
	if res.RuleID != "RCS1049" || res.Level != "warning" || res.RuleIndex == nil || *res.RuleIndex != 1 {
		t.Fatalf("result = %+v", res)
	}
	loc := res.Locations[0].PhysicalLocation
	if loc.ArtifactLocation.URI != "src/C.cs" || loc.Region.StartLine != 3 || loc.Region.StartColumn != 20 || loc.Region.ByteOffset != sp.Start || loc.Region.ByteLength != 9 {
		t.Fatalf("location = %+v", loc)
	}
	if len(res.Fixes) != 1 || len(res.Fixes[0].ArtifactChanges) != 1 {
		t.Fatalf("fixes = %+v", res.Fixes)
	}
	rep := res.Fixes[0].ArtifactChanges[0].Replacements
	if len(rep) != 1 || rep[0].InsertedContent == nil || rep[0].InsertedContent.Text != "b" {
		t.Fatalf("replacements = %+v", rep)
	}
}

func TestSarifLevel(t *testing.T) {
	fs, bag, _ := sample(t)
	items := bag.Items()
	items[0].Severity = diag.SevError
	var buf bytes.Buffer
	if err := Sarif(&buf, bagOf(items...), fs, SarifRunMeta{ToolName: "codefix", InvocationArgs: []string{"codefix"}}); err != nil {
		t.Fatal(err)
	}
	var log sarifLog
	if err := json.Unmarshal(buf.Bytes(), &log); err != nil {
		t.Fatal(err)
	}
	if got := log.Runs[0].Results[0].Level; got != "error" {
		t.Fatalf("level = %q", got)
	}
	if log.Runs[0].Invocations[0].ExecutionSuccessful {
		t.Fatal("an error must mark the invocation unsuccessful")
	}
}
