// Package driver runs the rule engine and the fix engine over files on
// disk: it lists sources, loads them into a FileSet, parses and binds each
// file, analyses files in parallel and commits fixes through internal/fix.
package driver

import (
	"context"
	"fmt"
	"runtime"
	"slices"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"codefix/internal/analysis"
	"codefix/internal/cache"
	"codefix/internal/codefix"
	"codefix/internal/config"
	"codefix/internal/diag"
	"codefix/internal/observ"
	"codefix/internal/rules"
	"codefix/internal/source"
	"codefix/internal/trace"
	"codefix/internal/version"
)

// Options configures a driver run.
type Options struct {
	// Config supplies rule settings and defaults; nil means config.Default().
	Config *config.Config
	// BaseDir is where relative paths and exclude patterns are resolved.
	BaseDir string
	// Jobs bounds parallel file processing; 0 takes [analysis].jobs, then GOMAXPROCS.
	Jobs int
	// MaxDiagnostics caps the diagnostics kept per file; 0 takes [analysis].max_diagnostics.
	MaxDiagnostics int
	// Cache is consulted by Analyze; nil disables caching.
	Cache    *cache.DiskCache
	Progress ProgressSink
	// Timings records per-file phase timings.
	Timings bool
}

func (o *Options) config() *config.Config {
	if o.Config == nil {
		return config.Default()
	}
	return o.Config
}

func (o *Options) jobs(files int) int {
	jobs := o.Jobs
	if jobs <= 0 {
		jobs = o.config().Analysis.Jobs
	}
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	return max(1, min(jobs, files))
}

func (o *Options) maxDiagnostics() int {
	if o.MaxDiagnostics > 0 {
		return o.MaxDiagnostics
	}
	return o.config().Analysis.MaxDiagnostics
}

// engine builds the rule engine. Parallelism is spent across files, so
// member visits within one file run sequentially unless there is only one.
func (o *Options) engine(files int) *analysis.Engine {
	memberJobs := 1
	if files == 1 {
		memberJobs = o.Jobs
	}
	return analysis.NewEngine(analysis.Options{
		Rules:          o.config().Rules,
		Jobs:           memberJobs,
		MaxDiagnostics: o.maxDiagnostics(),
	}, rules.Analyzers()...)
}

// fingerprint identifies everything besides the file that an analysis
// result depends on.
func (o *Options) fingerprint() string {
	cfg := o.config()
	var b strings.Builder
	fmt.Fprintf(&b, "%s;disable_all=%t;max=%d", version.Version, cfg.Rules.DisableAll, o.maxDiagnostics())
	for _, code := range cfg.Rules.Codes() {
		s, _ := cfg.Rules.Lookup(code)
		fmt.Fprintf(&b, ";%s=%s/%s/%t", code.ID(), s.State, s.Severity, s.HasSeverity)
	}
	return b.String()
}

// FileResult is the outcome for one file.
type FileResult struct {
	Path   string
	FileID source.FileID
	// Document is nil when the file failed to load or came from the cache.
	Document    *codefix.Document
	Diagnostics []diag.Diagnostic
	Cached      bool
	Timing      *observ.Report
}

// Result aggregates a multi-file run.
type Result struct {
	FileSet *source.FileSet
	Files   []FileResult
	// Notices are configuration warnings.
	Notices []Notice
}

// Diagnostics returns every file's diagnostics in file order.
func (r *Result) Diagnostics() []diag.Diagnostic {
	var out []diag.Diagnostic
	for _, f := range r.Files {
		out = append(out, f.Diagnostics...)
	}
	return out
}

// Timings merges the per-file timing reports; ok is false when the run
// did not record timings.
func (r *Result) Timings() (observ.Report, bool) {
	var reports []observ.Report
	for _, f := range r.Files {
		if f.Timing != nil {
			reports = append(reports, *f.Timing)
		}
	}
	if len(reports) == 0 {
		return observ.Report{}, false
	}
	return observ.Merge(reports...), true
}

// Counts returns the number of diagnostics per severity.
func (r *Result) Counts() map[diag.Severity]int {
	counts := make(map[diag.Severity]int)
	for _, f := range r.Files {
		for _, d := range f.Diagnostics {
			counts[d.Severity]++
		}
	}
	return counts
}

// Load lists the files under paths and reads them into a fresh FileSet.
// Files that cannot be read get an entry carrying a CFX0005 diagnostic.
func Load(ctx context.Context, paths []string, opts Options) (*Result, error) {
	span, _ := trace.Start(ctx, trace.ScopePass, "load")
	files, err := ListFiles(paths, opts.BaseDir, opts.config())
	if err != nil {
		span.End("error")
		return nil, err
	}
	fileSet := source.NewFileSetWithBase(opts.BaseDir)
	res := &Result{
		FileSet: fileSet,
		Files:   make([]FileResult, len(files)),
		Notices: ConfigNotices(opts.Config),
	}
	for i, path := range files {
		emit(opts.Progress, Event{File: path, Stage: StageLoad, Status: StatusQueued})
		res.Files[i].Path = path
		id, err := fileSet.Load(path)
		if err != nil {
			res.Files[i].FileID = fileSet.AddVirtual(path, nil)
			res.Files[i].Diagnostics = []diag.Diagnostic{
				diag.NewError(diag.EngineFileLoadFailed, source.Span{File: res.Files[i].FileID}, "failed to load file: "+err.Error()),
			}
			emit(opts.Progress, Event{File: path, Stage: StageLoad, Status: StatusError, Err: err})
			continue
		}
		res.Files[i].FileID = id
	}
	span.End(fmt.Sprintf("%d files", len(files)))
	return res, nil
}

// Analyze runs every enabled rule over the files under paths.
func Analyze(ctx context.Context, paths []string, opts Options) (*Result, error) {
	res, err := Load(ctx, paths, opts)
	if err != nil {
		return nil, err
	}
	if err := analyzeLoaded(ctx, res, opts, opts.Cache); err != nil {
		return res, err
	}
	return res, nil
}

// analyzeLoaded parses, binds and analyses every loaded file of res in
// parallel. Result slots are per index, so workers need no locking.
func analyzeLoaded(ctx context.Context, res *Result, opts Options, dc *cache.DiskCache) error {
	if len(res.Files) == 0 {
		return nil
	}
	span, ctx := trace.Start(ctx, trace.ScopePass, "analyze")
	engine := opts.engine(len(res.Files))
	fingerprint := opts.fingerprint()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.jobs(len(res.Files)))
	for i := range res.Files {
		fr := &res.Files[i]
		if fr.Diagnostics != nil {
			// load failure
			continue
		}
		file := res.FileSet.Get(fr.FileID)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return analyzeFile(gctx, fr, file, engine, dc, fingerprint, opts)
		})
	}
	err := g.Wait()
	span.End(fmt.Sprintf("%d files", len(res.Files)))
	return err
}

func analyzeFile(ctx context.Context, fr *FileResult, file *source.File, engine *analysis.Engine, dc *cache.DiskCache, fingerprint string, opts Options) error {
	span, ctx := trace.Start(trace.WithFile(ctx, fr.Path), trace.ScopeFile, "file")
	start := time.Now()
	timer := observ.NewTimer()

	key := cache.Key(fr.Path, file.Content, fingerprint)
	if dc != nil {
		idx := timer.Begin("cache")
		payload, ok, err := dc.Get(key)
		timer.End(idx, "")
		if err != nil {
			trace.Point(ctx, trace.ScopeFile, "cache", "unreadable entry: "+err.Error())
		}
		if ok {
			fr.Diagnostics = payload.ToDiagnostics(fr.FileID)
			fr.Cached = true
			finishFile(fr, timer, opts)
			emit(opts.Progress, Event{File: fr.Path, Stage: StageAnalyze, Status: StatusCached, Elapsed: time.Since(start)})
			span.End("cached")
			return nil
		}
	}

	emit(opts.Progress, Event{File: fr.Path, Stage: StageParse, Status: StatusWorking})
	idx := timer.Begin("parse+bind")
	doc, err := codefix.Parse(ctx, fr.FileID, fr.Path, string(file.Content))
	timer.End(idx, "")
	if err != nil {
		emit(opts.Progress, Event{File: fr.Path, Stage: StageParse, Status: StatusError, Err: err})
		span.End("canceled")
		return err
	}
	fr.Document = doc

	emit(opts.Progress, Event{File: fr.Path, Stage: StageAnalyze, Status: StatusWorking})
	idx = timer.Begin("analyze")
	ds, err := engine.Run(ctx, doc.Tree, doc.Model)
	timer.End(idx, fmt.Sprintf("%d diagnostics", len(ds)))
	if err != nil {
		emit(opts.Progress, Event{File: fr.Path, Stage: StageAnalyze, Status: StatusError, Err: err})
		span.End("canceled")
		return err
	}
	ds = append(slices.Clone(doc.Syntax), ds...)
	diag.SortDiagnostics(ds)
	if limit := opts.maxDiagnostics(); limit > 0 && len(ds) > limit {
		ds = ds[:limit]
	}
	fr.Diagnostics = ds

	if dc != nil {
		if err := dc.Put(key, cache.FromDiagnostics(fr.Path, ds)); err != nil {
			trace.Point(ctx, trace.ScopeFile, "cache", "write failed: "+err.Error())
		}
	}
	finishFile(fr, timer, opts)
	emit(opts.Progress, Event{File: fr.Path, Stage: StageAnalyze, Status: StatusDone, Elapsed: time.Since(start)})
	span.End(fmt.Sprintf("%d diagnostics", len(ds)))
	return nil
}

func finishFile(fr *FileResult, timer *observ.Timer, opts Options) {
	if !opts.Timings {
		return
	}
	report := timer.Report()
	fr.Timing = &report
	fr.Diagnostics = append(fr.Diagnostics, timingDiagnostic(fr.FileID, fr.Path, report))
}
