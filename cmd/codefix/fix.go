package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"codefix/internal/driver"
	"codefix/internal/fix"
	"codefix/internal/ui"
)

var fixCmd = &cobra.Command{
	Use:   "fix [flags] [paths...]",
	Short: "Apply rule fixes to C# files or directories",
	Long: `Analyse the given paths and rewrite the code the rules can fix.

--all drives every fixable rule to a fixed point, --id RCS1049 does the same
for one rule, --id <equivalence key or fix id> applies matching fixes, and
--once (the default) applies the first safe fix found.`,
	RunE: runFix,
}

func init() {
	fixCmd.Flags().Bool("all", false, "apply every safe fix")
	fixCmd.Flags().Bool("once", false, "apply the first available fix (default)")
	fixCmd.Flags().String("id", "", "apply fixes of a rule id, equivalence key or fix id")
	fixCmd.Flags().Bool("dry-run", false, "report the changes without writing files")
	fixCmd.Flags().Bool("print", false, "with --dry-run, print the new contents of changed files")
	fixCmd.Flags().String("ui", "auto", "progress view (auto|on|off)")
}

func runFix(cmd *cobra.Command, args []string) error {
	defer dumpTraceOnPanic()

	applyAll, _ := cmd.Flags().GetBool("all")
	applyOnce, _ := cmd.Flags().GetBool("once")
	targetID, _ := cmd.Flags().GetString("id")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	printContent, _ := cmd.Flags().GetBool("print")
	uiValue, _ := cmd.Flags().GetString("ui")
	progress, err := showProgress(uiValue, "pretty")
	if err != nil {
		return err
	}

	if targetID != "" && (applyAll || applyOnce) {
		return fmt.Errorf("--id cannot be combined with --all or --once")
	}
	if applyAll && applyOnce {
		return fmt.Errorf("--all and --once are mutually exclusive")
	}
	mode := fix.ApplyModeOnce
	if targetID != "" {
		mode = fix.ApplyModeID
	} else if applyAll {
		mode = fix.ApplyModeAll
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

	opts := driver.FixOptions{
		Options:  s.driverOptions(),
		Mode:     mode,
		TargetID: targetID,
		DryRun:   dryRun,
	}
	var res *driver.FixResult
	if progress && !s.quiet {
		files, lerr := driver.ListFiles(paths, opts.BaseDir, s.cfg)
		if lerr != nil {
			return lerr
		}
		res, err = ui.Run("codefix fix", files, func(sink driver.ProgressSink) (*driver.FixResult, error) {
			opts.Progress = sink
			return driver.Fix(cmd.Context(), paths, opts)
		})
	} else {
		res, err = driver.Fix(cmd.Context(), paths, opts)
	}
	if res == nil {
		return err
	}
	s.printNotices(res.Notices)
	out := cmd.OutOrStdout()
	if !s.quiet {
		for _, ff := range res.FixAll {
			if ff.Applied == 0 && len(ff.Remaining) == 0 {
				continue
			}
			fmt.Fprintf(out, "%s: %s applied %d in %d iteration(s)", ff.Path, ff.Code.ID(), ff.Applied, ff.Iterations)
			if len(ff.Remaining) > 0 {
				fmt.Fprintf(out, ", %d left", len(ff.Remaining))
			}
			fmt.Fprintln(out)
		}
	}
	if dryRun && printContent && res.Apply != nil {
		for _, change := range res.Apply.FileChanges {
			fmt.Fprintf(out, "--- %s\n%s", change.Path, change.Content)
		}
	}
	if s.timings {
		if report, ok := res.Timings(); ok {
			fmt.Fprint(os.Stderr, report.Table())
		}
	}
	if res.Apply == nil {
		return err
	}
	return handleApplyResult(out, res.Apply, err, dryRun)
}

// handleApplyResult prints what was applied, changed and skipped.
func handleApplyResult(w io.Writer, res *fix.ApplyResult, applyErr error, dryRun bool) error {
	verb := "Applied"
	if dryRun {
		verb = "Would apply"
	}
	if len(res.Applied) > 0 {
		fmt.Fprintf(w, "%s %d fix(es):\n", verb, len(res.Applied))
		for _, item := range res.Applied {
			location := item.PrimaryPath
			if location == "" {
				location = "(unknown location)"
			}
			fmt.Fprintf(w, "  %s [%s] %s (%d edits, %s)\n", item.Title, item.ID, location, item.EditCount, item.Applicability)
		}
	}
	if len(res.FileChanges) > 0 {
		if dryRun {
			fmt.Fprintln(w, "Files that would change:")
		} else {
			fmt.Fprintln(w, "Updated files:")
		}
		for _, change := range res.FileChanges {
			fmt.Fprintf(w, "  %s (%d edits)\n", change.Path, change.EditCount)
		}
	}
	if len(res.Skipped) > 0 {
		fmt.Fprintln(w, "Skipped fixes:")
		for _, skip := range res.Skipped {
			id := skip.ID
			if id == "" {
				id = "(unnamed)"
			}
			if skip.Title != "" {
				fmt.Fprintf(w, "  %s [%s]: %s\n", skip.Title, id, skip.Reason)
			} else {
				fmt.Fprintf(w, "  [%s]: %s\n", id, skip.Reason)
			}
		}
	}

	if applyErr != nil {
		if errors.Is(applyErr, fix.ErrNoFixes) && len(res.Applied) == 0 {
			fmt.Fprintln(w, "No applicable fixes found.")
			return nil
		}
		return applyErr
	}
	return nil
}
