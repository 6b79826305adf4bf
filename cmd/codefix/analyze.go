package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"codefix/internal/cache"
	"codefix/internal/diag"
	"codefix/internal/diagfmt"
	"codefix/internal/driver"
	"codefix/internal/rules"
	"codefix/internal/ui"
	"codefix/internal/version"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [flags] [paths...]",
	Short: "Report rule diagnostics for C# files or directories",
	Long:  `Analyze every .cs file under the given paths (default: the current directory) and print the diagnostics of the enabled rules.`,
	RunE:  runAnalyze,
}

func init() {
	analyzeCmd.Flags().String("format", "pretty", "output format (pretty|json|sarif|short)")
	analyzeCmd.Flags().String("ui", "auto", "progress view (auto|on|off)")
	analyzeCmd.Flags().Bool("no-cache", false, "ignore and do not update the diagnostics cache")
	analyzeCmd.Flags().Bool("clear-cache", false, "drop every cached result before analysing")
	analyzeCmd.Flags().Int("max-diagnostics", 0, "max diagnostics kept per file (0 = [analysis].max_diagnostics)")
	analyzeCmd.Flags().Bool("with-notes", false, "include diagnostic notes in output")
	analyzeCmd.Flags().Bool("suggest", false, "include fix suggestions in output")
	analyzeCmd.Flags().Bool("preview", false, "show before/after lines of suggested fixes")
	analyzeCmd.Flags().Bool("fullpath", false, "emit absolute file paths in output")
	analyzeCmd.Flags().Bool("warnings-as-errors", false, "exit with status 1 on warnings too")
}

// runAnalyze analyses the paths and prints the report. The exit status is
// 1 when an error-severity diagnostic was reported.
func runAnalyze(cmd *cobra.Command, args []string) error {
	defer dumpTraceOnPanic()

	flags := cmd.Flags()
	format, err := flags.GetString("format")
	if err != nil {
		return err
	}
	format = strings.ToLower(format)
	switch format {
	case "pretty", "json", "sarif", "short":
	default:
		return fmt.Errorf("unknown format %q (expected pretty|json|sarif|short)", format)
	}
	uiValue, err := flags.GetString("ui")
	if err != nil {
		return err
	}
	progress, err := showProgress(uiValue, format)
	if err != nil {
		return err
	}
	noCache, _ := flags.GetBool("no-cache")
	clearCache, _ := flags.GetBool("clear-cache")
	maxDiagnostics, _ := flags.GetInt("max-diagnostics")
	withNotes, _ := flags.GetBool("with-notes")
	suggest, _ := flags.GetBool("suggest")
	preview, _ := flags.GetBool("preview")
	fullPath, _ := flags.GetBool("fullpath")
	strict, _ := flags.GetBool("warnings-as-errors")
	if maxDiagnostics < 0 {
		return fmt.Errorf("--max-diagnostics must not be negative")
	}

	paths := args
	if len(paths) == 0 {
		paths = []string{"."}
	}
	s, err := startSession(cmd, paths[0])
	if err != nil {
		return err
	}
	defer s.close()

	opts := s.driverOptions()
	opts.MaxDiagnostics = maxDiagnostics
	if !noCache && s.cfg.CacheEnabled() {
		dc, err := cache.Open("codefix")
		if err != nil {
			fmt.Fprintf(os.Stderr, "cache disabled: %v\n", err)
		} else {
			if clearCache {
				if err := dc.DropAll(); err != nil {
					return fmt.Errorf("clear cache: %w", err)
				}
			}
			opts.Cache = dc
		}
	}

	var res *driver.Result
	if progress && !s.quiet {
		files, err := driver.ListFiles(paths, opts.BaseDir, s.cfg)
		if err != nil {
			return err
		}
		res, err = ui.Run("codefix analyze", files, func(sink driver.ProgressSink) (*driver.Result, error) {
			opts.Progress = sink
			return driver.Analyze(cmd.Context(), paths, opts)
		})
		if err != nil {
			return err
		}
	} else {
		res, err = driver.Analyze(cmd.Context(), paths, opts)
		if err != nil {
			return err
		}
	}
	s.printNotices(res.Notices)

	bag := diag.NewBag(0)
	for _, d := range res.Diagnostics() {
		bag.Add(d)
	}
	pathMode := diagfmt.PathModeRelative
	if fullPath {
		pathMode = diagfmt.PathModeAbsolute
	}
	res.FileSet.SetBaseDir(opts.BaseDir)

	out := cmd.OutOrStdout()
	switch format {
	case "json":
		err = diagfmt.JSON(out, bag, res.FileSet, diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         pathMode,
			IncludeNotes:     withNotes,
			IncludeFixes:     suggest,
			IncludePreviews:  preview,
		})
	case "sarif":
		err = diagfmt.Sarif(out, bag, res.FileSet, sarifMeta(os.Args))
	case "short":
		items := bag.Items()
		visible := items[:0]
		for _, d := range items {
			if d.Severity != diag.SevHidden {
				visible = append(visible, d)
			}
		}
		if text := diag.FormatShortDiagnostics(visible, res.FileSet, withNotes); text != "" {
			_, err = fmt.Fprintln(out, text)
		}
	default:
		diagfmt.Pretty(out, bag, res.FileSet, diagfmt.PrettyOpts{
			Color:       s.color,
			Context:     0,
			PathMode:    pathMode,
			ShowNotes:   withNotes,
			ShowFixes:   suggest || preview,
			ShowPreview: preview,
		})
		if !s.quiet {
			printSummary(out, res)
		}
	}
	if err != nil {
		return err
	}
	if s.timings && format == "pretty" {
		if report, ok := res.Timings(); ok {
			fmt.Fprint(os.Stderr, report.Table())
		}
	}

	counts := res.Counts()
	if counts[diag.SevError] > 0 || strict && counts[diag.SevWarning] > 0 {
		return exitError{code: 1}
	}
	return nil
}

func printSummary(w io.Writer, res *driver.Result) {
	counts := res.Counts()
	cached := 0
	for _, f := range res.Files {
		if f.Cached {
			cached++
		}
	}
	fmt.Fprintf(w, "%d file(s) analysed", len(res.Files))
	if cached > 0 {
		fmt.Fprintf(w, " (%d cached)", cached)
	}
	fmt.Fprintf(w, ": %d error(s), %d warning(s), %d info\n", counts[diag.SevError], counts[diag.SevWarning], counts[diag.SevInfo])
}

// sarifMeta describes the tool and its rule catalog.
func sarifMeta(args []string) diagfmt.SarifRunMeta {
	meta := diagfmt.SarifRunMeta{
		ToolName:       "codefix",
		ToolVersion:    version.Version,
		InvocationArgs: args,
	}
	for _, e := range rules.Catalog() {
		if e.Refactoring {
			continue
		}
		meta.Rules = append(meta.Rules, diagfmt.RuleMeta{
			ID:              e.Code.ID(),
			Title:           e.Title,
			HelpURI:         e.HelpURI,
			DefaultSeverity: strings.ToLower(e.DefaultSeverity.String()),
		})
	}
	return meta
}
