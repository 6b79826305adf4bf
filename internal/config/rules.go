package config

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"codefix/internal/diag"
)

// RuleState is the tri-state a configuration gives one rule.
type RuleState uint8

const (
	RuleDefault RuleState = iota // follow the descriptor
	RuleEnabled
	RuleDisabled
)

func (s RuleState) String() string {
	switch s {
	case RuleEnabled:
		return "enabled"
	case RuleDisabled:
		return "disabled"
	default:
		return "default"
	}
}

// RuleSetting is the configured state of one rule.
type RuleSetting struct {
	State       RuleState
	Severity    diag.Severity
	HasSeverity bool
}

// Rules maps rule codes to their settings. The zero value enables every
// rule that is enabled by default.
type Rules struct {
	DisableAll bool
	byCode     map[diag.Code]RuleSetting
}

// Set overrides the setting of one rule.
func (r *Rules) Set(code diag.Code, s RuleSetting) {
	if r.byCode == nil {
		r.byCode = make(map[diag.Code]RuleSetting)
	}
	r.byCode[code] = s
}

// Lookup returns the explicit setting of code.
func (r Rules) Lookup(code diag.Code) (RuleSetting, bool) {
	s, ok := r.byCode[code]
	return s, ok
}

// Codes lists the codes that have an explicit setting, in ascending order.
func (r Rules) Codes() []diag.Code {
	return slices.Sorted(maps.Keys(r.byCode))
}

// Effective returns the severity a rule reports with and whether it runs at
// all. An explicit setting wins over a blanket disable_all; otherwise the
// descriptor defaults apply.
func (r Rules) Effective(code diag.Code, def diag.Severity, enabledByDefault bool) (diag.Severity, bool) {
	if s, ok := r.byCode[code]; ok {
		switch s.State {
		case RuleDisabled:
			return def, false
		case RuleEnabled:
			if s.HasSeverity {
				return s.Severity, true
			}
			return def, true
		}
	}
	if r.DisableAll {
		return def, false
	}
	return def, enabledByDefault
}

func parseRules(raw map[string]any) (Rules, error) {
	var rules Rules
	for _, key := range slices.Sorted(maps.Keys(raw)) {
		code, ok := diag.ParseCode(key)
		if !ok {
			return Rules{}, fmt.Errorf("%w: [rules] key %q is not a rule id", ErrInvalid, key)
		}
		s, err := parseSetting(raw[key])
		if err != nil {
			return Rules{}, fmt.Errorf("%w: [rules].%s: %v", ErrInvalid, key, err)
		}
		rules.Set(code, s)
	}
	return rules, nil
}

func parseSetting(v any) (RuleSetting, error) {
	switch v := v.(type) {
	case bool:
		if v {
			return RuleSetting{State: RuleEnabled}, nil
		}
		return RuleSetting{State: RuleDisabled}, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "default":
			return RuleSetting{State: RuleDefault}, nil
		case "none", "off", "disabled", "false":
			return RuleSetting{State: RuleDisabled}, nil
		case "on", "enabled", "true":
			return RuleSetting{State: RuleEnabled}, nil
		}
		if sev, ok := diag.ParseSeverity(v); ok {
			return RuleSetting{State: RuleEnabled, Severity: sev, HasSeverity: true}, nil
		}
		return RuleSetting{}, fmt.Errorf("unknown value %q", v)
	}
	return RuleSetting{}, fmt.Errorf("expected a string or boolean, got %T", v)
}
