package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"codefix/internal/diag"
	"codefix/internal/diagfmt"
	"codefix/internal/driver"
)

var refactorCmd = &cobra.Command{
	Use:   "refactor [flags] <file.cs>",
	Short: "List or apply the refactorings offered at a position",
	Args:  cobra.ExactArgs(1),
	RunE:  runRefactor,
}

func init() {
	refactorCmd.Flags().Uint32("at", 0, "byte offset of the position")
	refactorCmd.Flags().Uint32("length", 0, "length in bytes of the selected span")
	refactorCmd.Flags().String("apply", "", "apply the refactoring with this number or equivalence key")
	refactorCmd.Flags().Bool("dry-run", false, "report the change without writing the file")
	_ = refactorCmd.MarkFlagRequired("at")
}

func runRefactor(cmd *cobra.Command, args []string) error {
	defer dumpTraceOnPanic()

	path := args[0]
	at, _ := cmd.Flags().GetUint32("at")
	length, _ := cmd.Flags().GetUint32("length")
	apply, _ := cmd.Flags().GetString("apply")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	s, err := startSession(cmd, path)
	if err != nil {
		return err
	}
	defer s.close()

	res, err := driver.Refactor(cmd.Context(), path, driver.RefactorOptions{
		BaseDir: s.baseDir,
		Offset:  at,
		Length:  length,
		Apply:   apply,
		DryRun:  dryRun,
	})
	if res == nil {
		return err
	}
	out := cmd.OutOrStdout()
	if apply != "" {
		if res.Apply == nil {
			return err
		}
		return handleApplyResult(out, res.Apply, err, dryRun)
	}

	if len(res.Actions) == 0 {
		fmt.Fprintf(out, "No refactorings at %s:%d.\n", path, at)
		return nil
	}
	for i, d := range res.Actions {
		fmt.Fprintf(out, "%d. %s [%s]\n", i+1, d.Fixes[0].Title, d.Fixes[0].EquivalenceKey)
	}
	if s.quiet {
		return nil
	}
	// show each result the way analyze --preview does
	bag := diag.NewBag(0)
	for _, d := range res.Actions {
		bag.Add(d)
	}
	fmt.Fprintln(out)
	diagfmt.Pretty(out, bag, res.FileSet, diagfmt.PrettyOpts{
		Color:       s.color,
		PathMode:    diagfmt.PathModeRelative,
		ShowFixes:   true,
		ShowPreview: true,
		ShowHidden:  true,
	})
	return nil
}
