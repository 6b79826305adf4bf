package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"codefix/internal/config"
	"codefix/internal/diag"
	"codefix/internal/rules"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List the rule catalog with effective settings",
	Args:  cobra.NoArgs,
	RunE:  runRules,
}

func init() {
	rulesCmd.Flags().String("format", "table", "output format (table|json)")
	rulesCmd.Flags().String("dir", ".", "directory whose codefix.toml decides the effective settings")
}

type ruleRow struct {
	ID               string `json:"id"`
	Title            string `json:"title"`
	Category         string `json:"category"`
	DefaultSeverity  string `json:"default_severity"`
	EnabledByDefault bool   `json:"enabled_by_default"`
	Severity         string `json:"severity"`
	Enabled          bool   `json:"enabled"`
	Fixable          bool   `json:"fixable"`
	Refactoring      bool   `json:"refactoring"`
	HelpURI          string `json:"help_uri,omitempty"`
}

func runRules(cmd *cobra.Command, _ []string) error {
	format, _ := cmd.Flags().GetString("format")
	dir, _ := cmd.Flags().GetString("dir")
	s, err := startSession(cmd, dir)
	if err != nil {
		return err
	}
	defer s.close()

	rows := catalogRows(s.cfg)
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	case "table":
		renderRules(cmd.OutOrStdout(), rows)
		return nil
	default:
		return fmt.Errorf("unknown format %q (expected table|json)", format)
	}
}

func catalogRows(cfg *config.Config) []ruleRow {
	var rows []ruleRow
	for _, e := range rules.Catalog() {
		row := ruleRow{
			ID:               e.Code.ID(),
			Title:            e.Title,
			Category:         e.Category,
			DefaultSeverity:  strings.ToLower(e.DefaultSeverity.String()),
			EnabledByDefault: e.EnabledByDefault,
			Fixable:          e.Fixable,
			Refactoring:      e.Refactoring,
			HelpURI:          e.HelpURI,
			Severity:         strings.ToLower(e.DefaultSeverity.String()),
			Enabled:          true,
		}
		if !e.Refactoring {
			sev, on := cfg.Rules.Effective(e.Code, e.DefaultSeverity, e.EnabledByDefault)
			row.Severity = strings.ToLower(sev.String())
			row.Enabled = on
		}
		rows = append(rows, row)
	}
	return rows
}

var severityColor = map[string]*color.Color{
	strings.ToLower(diag.SevError.String()):   color.New(color.FgRed),
	strings.ToLower(diag.SevWarning.String()): color.New(color.FgYellow),
	strings.ToLower(diag.SevInfo.String()):    color.New(color.FgCyan),
	strings.ToLower(diag.SevHidden.String()):  color.New(color.Faint),
}

// renderRules prints an aligned table. Widths are measured before colouring.
func renderRules(w io.Writer, rows []ruleRow) {
	header := []string{"ID", "SEVERITY", "STATE", "FIX", "TITLE"}
	cells := make([][]string, 0, len(rows))
	for _, r := range rows {
		state := "on"
		if !r.Enabled {
			state = "off"
		}
		fixable := ""
		switch {
		case r.Refactoring:
			fixable = "refactor"
		case r.Fixable:
			fixable = "yes"
		}
		cells = append(cells, []string{r.ID, r.Severity, state, fixable, r.Title})
	}
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range cells {
		for i, c := range row {
			widths[i] = max(widths[i], runewidth.StringWidth(c))
		}
	}

	bold := color.New(color.Bold)
	writeRow := func(row []string, styled func(col int, text string) string) {
		var b strings.Builder
		for i, c := range row {
			if i > 0 {
				b.WriteString("  ")
			}
			text := c
			if i < len(row)-1 {
				text = runewidth.FillRight(c, widths[i])
			}
			b.WriteString(styled(i, text))
		}
		fmt.Fprintln(w, strings.TrimRight(b.String(), " "))
	}
	writeRow(header, func(_ int, text string) string { return bold.Sprint(text) })
	for _, row := range cells {
		writeRow(row, func(col int, text string) string {
			if c, ok := severityColor[row[1]]; ok && col == 1 {
				return c.Sprint(text)
			}
			return text
		})
	}
}
