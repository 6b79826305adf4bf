package main

import (
	"fmt"
	"os"
	"strings"
)

// switchMode is the value of an auto|on|off flag such as --ui or --color.
type switchMode int8

const (
	switchAuto switchMode = iota
	switchOn
	switchOff
)

var switchWords = map[string]switchMode{
	"":       switchAuto,
	"auto":   switchAuto,
	"on":     switchOn,
	"true":   switchOn,
	"always": switchOn,
	"off":    switchOff,
	"false":  switchOff,
	"never":  switchOff,
}

func parseSwitch(flag, value string) (switchMode, error) {
	m, ok := switchWords[strings.ToLower(strings.TrimSpace(value))]
	if !ok {
		return switchAuto, fmt.Errorf("invalid --%s value %q (expected auto|on|off)", flag, value)
	}
	return m, nil
}

// resolve settles auto with the given default.
func (m switchMode) resolve(auto bool) bool {
	switch m {
	case switchOn:
		return true
	case switchOff:
		return false
	default:
		return auto
	}
}

// showProgress decides on the progress view. It draws on stderr, so auto
// needs stderr to be a terminal and a human-readable report on stdout.
func showProgress(value, format string) (bool, error) {
	m, err := parseSwitch("ui", value)
	if err != nil {
		return false, err
	}
	return m.resolve(format == "pretty" && isTerminal(os.Stderr)), nil
}

// useColor resolves --color against the output file. NO_COLOR turns auto off.
func useColor(value string, out *os.File) (bool, error) {
	m, err := parseSwitch("color", value)
	if err != nil {
		return false, err
	}
	return m.resolve(isTerminal(out) && os.Getenv("NO_COLOR") == ""), nil
}
