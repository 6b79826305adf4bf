package diagfmt

import (
	"encoding/json"
	"io"
	"slices"

	"codefix/internal/diag"
	"codefix/internal/source"
)

const (
	sarifSchema  = "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/main/sarif-2.1/schema/sarif-schema-2.1.0.json"
	sarifVersion = "2.1.0"
)

type sarifLog struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool        sarifTool         `json:"tool"`
	Invocations []sarifInvocation `json:"invocations,omitempty"`
	Results     []sarifResult     `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name           string      `json:"name"`
	Version        string      `json:"version,omitempty"`
	InformationURI string      `json:"informationUri,omitempty"`
	Rules          []sarifRule `json:"rules,omitempty"`
}

type sarifRule struct {
	ID               string              `json:"id"`
	ShortDescription sarifMessage        `json:"shortDescription"`
	HelpURI          string              `json:"helpUri,omitempty"`
	DefaultConfig    *sarifConfiguration `json:"defaultConfiguration,omitempty"`
}

type sarifConfiguration struct {
	Level string `json:"level"`
}

type sarifInvocation struct {
	Arguments           []string `json:"arguments,omitempty"`
	ExecutionSuccessful bool     `json:"executionSuccessful"`
}

type sarifResult struct {
	RuleID    string          `json:"ruleId"`
	RuleIndex *int            `json:"ruleIndex,omitempty"`
	Level     string          `json:"level"`
	Message   sarifMessage    `json:"message"`
	Locations []sarifLocation `json:"locations,omitempty"`
	Fixes     []sarifFix      `json:"fixes,omitempty"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysicalLocation `json:"physicalLocation"`
}

type sarifPhysicalLocation struct {
	ArtifactLocation sarifArtifact `json:"artifactLocation"`
	Region           sarifRegion   `json:"region"`
}

type sarifArtifact struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	StartLine   uint32 `json:"startLine,omitempty"`
	StartColumn uint32 `json:"startColumn,omitempty"`
	EndLine     uint32 `json:"endLine,omitempty"`
	EndColumn   uint32 `json:"endColumn,omitempty"`
	ByteOffset  uint32 `json:"byteOffset"`
	ByteLength  uint32 `json:"byteLength"`
}

type sarifFix struct {
	Description     sarifMessage          `json:"description"`
	ArtifactChanges []sarifArtifactChange `json:"artifactChanges"`
}

type sarifArtifactChange struct {
	ArtifactLocation sarifArtifact      `json:"artifactLocation"`
	Replacements     []sarifReplacement `json:"replacements"`
}

type sarifReplacement struct {
	DeletedRegion   sarifRegion   `json:"deletedRegion"`
	InsertedContent *sarifMessage `json:"insertedContent,omitempty"`
}

// sarifLevel maps severities onto SARIF result levels.
func sarifLevel(s diag.Severity) string {
	switch s {
	case diag.SevError:
		return "error"
	case diag.SevWarning:
		return "warning"
	case diag.SevInfo:
		return "note"
	default:
		return "none"
	}
}

// Sarif форматирует диагностики в SARIF 2.1.0. Hidden diagnostics are
// left out.
func Sarif(w io.Writer, bag *diag.Bag, fs *source.FileSet, meta SarifRunMeta) error {
	run := sarifRun{
		Tool: sarifTool{Driver: sarifDriver{
			Name:           meta.ToolName,
			Version:        meta.ToolVersion,
			InformationURI: meta.InformationURI,
		}},
		Results: []sarifResult{},
	}
	ruleIndex := make(map[string]int, len(meta.Rules))
	for i, r := range meta.Rules {
		ruleIndex[r.ID] = i
		rule := sarifRule{ID: r.ID, ShortDescription: sarifMessage{Text: r.Title}, HelpURI: r.HelpURI}
		if sev, ok := diag.ParseSeverity(r.DefaultSeverity); ok {
			rule.DefaultConfig = &sarifConfiguration{Level: sarifLevel(sev)}
		}
		run.Tool.Driver.Rules = append(run.Tool.Driver.Rules, rule)
	}

	failed := false
	for _, d := range bag.Items() {
		if d.Severity == diag.SevHidden {
			continue
		}
		failed = failed || d.Severity == diag.SevError
		res := sarifResult{
			RuleID:  d.Code.ID(),
			Level:   sarifLevel(d.Severity),
			Message: sarifMessage{Text: d.Message},
		}
		if i, ok := ruleIndex[res.RuleID]; ok {
			res.RuleIndex = &i
		}
		if f := fs.Get(d.Primary.File); f != nil {
			res.Locations = []sarifLocation{{PhysicalLocation: sarifPhysicalLocation{
				ArtifactLocation: sarifArtifact{URI: formatPath(fs, f, PathModeRelative)},
				Region:           sarifRegionOf(fs, d.Primary),
			}}}
		}
		for _, fix := range d.Fixes {
			res.Fixes = append(res.Fixes, sarifFixOf(fs, fix))
		}
		run.Results = append(run.Results, res)
	}
	if len(meta.InvocationArgs) > 0 {
		run.Invocations = []sarifInvocation{{
			Arguments:           slices.Clone(meta.InvocationArgs),
			ExecutionSuccessful: !failed,
		}}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(sarifLog{Schema: sarifSchema, Version: sarifVersion, Runs: []sarifRun{run}})
}

func sarifRegionOf(fs *source.FileSet, sp source.Span) sarifRegion {
	start, end := fs.Resolve(sp)
	return sarifRegion{
		StartLine:   start.Line,
		StartColumn: start.Col,
		EndLine:     end.Line,
		EndColumn:   end.Col,
		ByteOffset:  sp.Start,
		ByteLength:  sp.Len(),
	}
}

// sarifFixOf groups a fix's edits by file, keeping edit order within a file.
func sarifFixOf(fs *source.FileSet, fix diag.Fix) sarifFix {
	out := sarifFix{Description: sarifMessage{Text: fix.Title}}
	byFile := make(map[source.FileID]int)
	for _, edit := range fix.Edits {
		f := fs.Get(edit.Span.File)
		if f == nil {
			continue
		}
		i, ok := byFile[edit.Span.File]
		if !ok {
			i = len(out.ArtifactChanges)
			byFile[edit.Span.File] = i
			out.ArtifactChanges = append(out.ArtifactChanges, sarifArtifactChange{
				ArtifactLocation: sarifArtifact{URI: formatPath(fs, f, PathModeRelative)},
			})
		}
		rep := sarifReplacement{DeletedRegion: sarifRegionOf(fs, edit.Span)}
		if edit.NewText != "" {
			rep.InsertedContent = &sarifMessage{Text: edit.NewText}
		}
		out.ArtifactChanges[i].Replacements = append(out.ArtifactChanges[i].Replacements, rep)
	}
	return out
}
