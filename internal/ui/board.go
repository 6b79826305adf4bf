// Package ui renders live progress for long runs in the terminal.
package ui

import (
	"slices"
	"time"

	"codefix/internal/driver"
)

// stageWeight is how far through its pipeline a working file counts.
var stageWeight = map[driver.Stage]float64{
	driver.StageLoad:    0,
	driver.StageParse:   0.2,
	driver.StageAnalyze: 0.6,
	driver.StageFix:     0.8,
}

var stageVerb = map[driver.Stage]string{
	driver.StageLoad:    "loading",
	driver.StageParse:   "parsing",
	driver.StageAnalyze: "analyzing",
	driver.StageFix:     "fixing",
}

type fileState struct {
	path    string
	stage   driver.Stage
	status  driver.Status
	elapsed time.Duration
	err     error
	// touched orders working files by their latest event
	touched int
}

func (f fileState) finished() bool {
	switch f.status {
	case driver.StatusDone, driver.StatusCached, driver.StatusError:
		return true
	}
	return false
}

// label is the word shown in the status column.
func (f fileState) label() string {
	if f.status == driver.StatusWorking {
		return stageVerb[f.stage]
	}
	return string(f.status)
}

// board tracks the state of every file of a run from driver events.
type board struct {
	files  []fileState
	byPath map[string]int
	// phase is the last run-level stage, reported by events without a file
	phase driver.Stage
	clock int
}

func newBoard(paths []string) *board {
	b := &board{files: make([]fileState, len(paths)), byPath: make(map[string]int, len(paths))}
	for i, p := range paths {
		b.files[i] = fileState{path: p, stage: driver.StageLoad, status: driver.StatusQueued}
		b.byPath[p] = i
	}
	return b
}

// apply records ev and reports whether it changed a file.
func (b *board) apply(ev driver.Event) bool {
	if ev.File == "" {
		if ev.Status == driver.StatusWorking {
			b.phase = ev.Stage
		}
		return false
	}
	i, ok := b.byPath[ev.File]
	if !ok {
		return false
	}
	b.clock++
	f := &b.files[i]
	f.stage, f.status, f.touched = ev.Stage, ev.Status, b.clock
	if ev.Elapsed > 0 {
		f.elapsed = ev.Elapsed
	}
	if ev.Err != nil {
		f.err = ev.Err
	}
	return true
}

// fraction is the share of the run completed, between 0 and 1.
func (b *board) fraction() float64 {
	if len(b.files) == 0 {
		return 1
	}
	var sum float64
	for _, f := range b.files {
		if f.finished() {
			sum++
		} else {
			sum += stageWeight[f.stage]
		}
	}
	return sum / float64(len(b.files))
}

type tally struct {
	finished, cached, failed int
}

func (b *board) tally() tally {
	var t tally
	for _, f := range b.files {
		if !f.finished() {
			continue
		}
		t.finished++
		switch f.status {
		case driver.StatusCached:
			t.cached++
		case driver.StatusError:
			t.failed++
		}
	}
	return t
}

// working returns up to n files still in progress, most recently active first.
func (b *board) working(n int) []fileState {
	var out []fileState
	for _, f := range b.files {
		if f.status == driver.StatusWorking {
			out = append(out, f)
		}
	}
	slices.SortFunc(out, func(x, y fileState) int { return y.touched - x.touched })
	return out[:min(n, len(out))]
}

func (b *board) failures() []fileState {
	var out []fileState
	for _, f := range b.files {
		if f.status == driver.StatusError {
			out = append(out, f)
		}
	}
	return out
}
