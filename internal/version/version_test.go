package version

import (
	"strings"
	"testing"

	"github.com/fatih/color"
)

func override(t *testing.T, v, commit, date string) {
	t.Helper()
	origV, origC, origD := Version, GitCommit, BuildDate
	Version, GitCommit, BuildDate = v, commit, date
	t.Cleanup(func() { Version, GitCommit, BuildDate = origV, origC, origD })
}

func TestSummary(t *testing.T) {
	tests := []struct {
		name, version, commit, date string
		want                        string
	}{
		{"bare", "1.2.3", "", "", "codefix 1.2.3\n"},
		{"commit shortened", "1.2.3", "abc123def4567890", "", "codefix 1.2.3\ncommit: abc123def456\n"},
		{"full", "0.1.0-dev", "abc", "2026-01-15", "codefix 0.1.0-dev\ncommit: abc\nbuilt:  2026-01-15\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			override(t, tt.version, tt.commit, tt.date)
			if got := Summary(false); got != tt.want {
				t.Fatalf("Summary = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestColored(t *testing.T) {
	prev := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = prev }()

	for _, v := range []string{"1.2.3", "0.1.0-dev", "snapshot"} {
		override(t, v, "", "")
		if got := Colored(); got != v {
			t.Errorf("Colored(%q) without colour = %q", v, got)
		}
	}

	color.NoColor = false
	override(t, "1.2.3-rc1", "", "")
	got := Colored()
	if !strings.Contains(got, "\x1b[") || !strings.HasSuffix(got, "-rc1") {
		t.Fatalf("Colored = %q", got)
	}
}
