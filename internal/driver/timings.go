package driver

import (
	"encoding/json"

	"codefix/internal/diag"
	"codefix/internal/observ"
	"codefix/internal/source"
)

// timingDiagnostic carries a file's phase report as a hidden diagnostic:
// the message is the readable summary, the note holds the JSON payload
// machine formats pick up.
func timingDiagnostic(file source.FileID, path string, report observ.Report) diag.Diagnostic {
	d := diag.New(diag.SevHidden, diag.EngineTimings, source.Span{File: file}, "timings for "+path+": "+report.Summary())
	payload, err := json.Marshal(report)
	if err != nil {
		return d
	}
	return d.WithNote(source.Span{File: file}, string(payload))
}
