package fuzztests

import (
	"context"
	"testing"
	"time"

	"codefix/internal/analysis"
	"codefix/internal/codefix"
	"codefix/internal/diag"
	"codefix/internal/parser"
	"codefix/internal/rules"
	"codefix/internal/source"
	"codefix/internal/testkit"
)

// parseTimeout is the maximum time allowed for one input. Going over it
// points at a recovery loop that does not consume tokens.
const parseTimeout = 5 * time.Second

func FuzzParserTreeInvariants(f *testing.F) {
	addCorpusSeeds(f)
	f.Fuzz(func(t *testing.T, input []byte) {
		input = clampInput(input)

		fs := source.NewFileSet()
		id := fs.AddVirtual("fuzz.cs", input)
		bag := diag.NewBag(128)
		res := parser.ParseFile(fs, id, parser.Options{
			Reporter:  diag.BagReporter{Bag: bag},
			MaxErrors: 128,
		})
		if err := testkit.CheckTreeInvariants(res.Tree, string(input)); err != nil {
			t.Fatalf("%v\ninput: %q", err, truncateForLog(input, 200))
		}
	})
}

// FuzzAnalyzeNoHang runs parsing, binding and every analyzer under a
// deadline. Analyzer panics are turned into CFX0001 diagnostics by the
// engine, so only hangs and binder panics fail here.
func FuzzAnalyzeNoHang(f *testing.F) {
	addCorpusSeeds(f)

	f.Add([]byte("class C { void M() { for (int i = 0 i < 10 i++) {} } }"))
	f.Add([]byte("class C { void M() { { { { } } } } }"))
	f.Add([]byte("class C { bool M(C c) => c != null && c != null && c.M(c); }"))
	f.Add([]byte("[System.Flags] enum E : long { A = 1 << 62, B, C }"))

	engine := analysis.NewEngine(analysis.Options{Jobs: 1}, rules.Analyzers()...)
	f.Fuzz(func(t *testing.T, input []byte) {
		input = clampInput(input)

		ctx, cancel := context.WithTimeout(context.Background(), parseTimeout)
		defer cancel()

		done := make(chan error, 1)
		go func() {
			doc, err := codefix.Parse(ctx, 1, "fuzz.cs", string(input))
			if err != nil {
				done <- err
				return
			}
			_, err = engine.Run(ctx, doc.Tree, doc.Model)
			done <- err
		}()

		select {
		case err := <-done:
			if err != nil && ctx.Err() == nil {
				t.Fatalf("analyze failed: %v\ninput: %q", err, truncateForLog(input, 200))
			}
		case <-ctx.Done():
			t.Fatalf("analysis hang detected: took longer than %v\ninput (%d bytes): %q",
				parseTimeout, len(input), truncateForLog(input, 200))
		}
	})
}

// truncateForLog truncates input for logging purposes
func truncateForLog(input []byte, maxLen int) []byte {
	if len(input) <= maxLen {
		return input
	}
	return append(input[:maxLen:maxLen], []byte("...")...)
}
