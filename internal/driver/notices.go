package driver

import (
	"fmt"

	"codefix/internal/config"
	"codefix/internal/diag"
	"codefix/internal/rules"
)

// Notice is a run-level message that belongs to no source file.
type Notice struct {
	Severity diag.Severity
	Code     diag.Code
	Message  string
}

func (n Notice) String() string {
	return fmt.Sprintf("%s[%s]: %s", n.Severity, n.Code.ID(), n.Message)
}

// ConfigNotices checks cfg against the rule catalog: rule ids nobody ships
// and keys codefix does not read are reported as warnings.
func ConfigNotices(cfg *config.Config) []Notice {
	if cfg == nil {
		return nil
	}
	where := "configuration"
	if cfg.Path != "" {
		where = cfg.Path
	}
	var out []Notice
	for _, code := range cfg.Rules.Codes() {
		if _, ok := rules.Lookup(code); ok {
			continue
		}
		out = append(out, Notice{
			Severity: diag.SevWarning,
			Code:     diag.EngineUnknownRuleID,
			Message:  fmt.Sprintf("%s: unknown rule id %s", where, code.ID()),
		})
	}
	for _, key := range cfg.Undecoded {
		out = append(out, Notice{
			Severity: diag.SevWarning,
			Code:     diag.EngineUnknownRuleID,
			Message:  fmt.Sprintf("%s: unknown key %q", where, key),
		})
	}
	return out
}
