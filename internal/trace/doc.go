// Package trace records what codefix is doing while it loads, parses, binds,
// analyses and fixes files.
//
// Tracing is enabled from the command line:
//
//	codefix analyze --trace=- --trace-level=detail ./src
//
// Events go to a stream (stderr or a file, text or NDJSON), to an in-memory
// ring that is dumped when a run fails, or to both. Verbosity is a Level;
// each event carries a Scope and is emitted only when the level admits it:
//
//	LevelPhase   driver and pass boundaries (load, parse, bind, analyze, fix)
//	LevelDetail  plus one span per file
//	LevelDebug   plus rule-level events (recovered rule panics, fix rejections)
//
// The tracer and the document and rule being worked on travel in the
// context, so events name them without the caller repeating them:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	ctx = trace.WithFile(ctx, "src/App.cs")
//	span, ctx := trace.Start(ctx, trace.ScopeFile, "analyze")
//	defer span.End("")
//
// Open spans are tracked; the heartbeat names the oldest ones, which is how
// a rule stuck on one file shows up in a trace.
package trace
