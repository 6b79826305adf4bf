// Command codefix analyses C# sources with the built-in rule catalog and
// applies the fixes and refactorings the rules offer.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"codefix/internal/version"
)

var rootCmd = &cobra.Command{
	Use:           "codefix",
	Short:         "Rule-based analysis and automatic fixes for C# sources",
	Long:          `codefix runs syntax-tree rules over C# files, reports diagnostics and rewrites the code the rules can fix.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// exitError carries a process exit code without an error message of its
// own, e.g. "analyze found errors".
type exitError struct {
	code int
}

func (e exitError) Error() string { return fmt.Sprintf("exit status %d", e.code) }

func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(fixCmd)
	rootCmd.AddCommand(refactorCmd)
	rootCmd.AddCommand(rulesCmd)
	rootCmd.AddCommand(versionCmd)

	// Глобальные флаги
	flags := rootCmd.PersistentFlags()
	flags.String("color", "auto", "colorize output (auto|on|off)")
	flags.String("config", "", "path to codefix.toml (default: nearest one above the target)")
	flags.Bool("quiet", false, "suppress non-essential output")
	flags.Bool("timings", false, "show per-phase timing information")
	flags.Int("jobs", 0, "max parallel files (0 = [analysis].jobs, then GOMAXPROCS)")

	flags.String("trace", "", "trace output file (\"-\" for stderr)")
	flags.String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	flags.String("trace-format", "auto", "trace format (auto|text|ndjson)")
	flags.String("trace-mode", "stream", "trace storage (stream|ring|both)")
	flags.Int("trace-ring-size", 4096, "events kept by the ring tracer")
	flags.Duration("trace-heartbeat", 0, "emit a heartbeat event at this interval (0 = off)")

	flags.String("cpuprofile", "", "write a CPU profile to file")
	flags.String("memprofile", "", "write a heap profile to file")
	flags.String("exectrace", "", "write a runtime execution trace to file")

	if err := rootCmd.Execute(); err != nil {
		var exit exitError
		if errors.As(err, &exit) {
			os.Exit(exit.code)
		}
		fmt.Fprintln(os.Stderr, "codefix:", err)
		os.Exit(2)
	}
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
