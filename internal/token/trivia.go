package token

import (
	"strings"

	"codefix/internal/source"
)

// Directive is the parsed form of a preprocessor line such as
// "#pragma warning disable RCS1238".
type Directive struct {
	Name    string // if, else, elif, endif, region, endregion, pragma, define, undef, nullable
	Payload string // rest of the line, trimmed
}

type TriviaKind uint8

const (
	TriviaSpace TriviaKind = iota
	TriviaNewline
	TriviaLineComment
	TriviaBlockComment
	TriviaDocLine
	TriviaDirective
	TriviaSkipped // текст, который не удалось разобрать
)

func (k TriviaKind) String() string {
	switch k {
	case TriviaSpace:
		return "Space"
	case TriviaNewline:
		return "Newline"
	case TriviaLineComment:
		return "LineComment"
	case TriviaBlockComment:
		return "BlockComment"
	case TriviaDocLine:
		return "DocLine"
	case TriviaDirective:
		return "Directive"
	case TriviaSkipped:
		return "Skipped"
	default:
		return "Unknown"
	}
}

type Trivia struct {
	Kind      TriviaKind
	Span      source.Span
	Text      string
	Directive *Directive // только если Kind == TriviaDirective
}

// IsComment reports whether the trivia is any kind of comment.
func (t Trivia) IsComment() bool {
	return t.Kind == TriviaLineComment || t.Kind == TriviaBlockComment || t.Kind == TriviaDocLine
}

// IsWhitespace reports whether the trivia is a space run or a newline.
func (t Trivia) IsWhitespace() bool {
	return t.Kind == TriviaSpace || t.Kind == TriviaNewline
}

// ParseDirective splits a directive line ("#  pragma warning disable X") into
// its name and payload. ok is false when text does not start with '#'.
func ParseDirective(text string) (Directive, bool) {
	s := strings.TrimSpace(text)
	if !strings.HasPrefix(s, "#") {
		return Directive{}, false
	}
	s = strings.TrimLeft(s[1:], " \t")
	name, payload, _ := strings.Cut(s, " ")
	return Directive{Name: name, Payload: strings.TrimSpace(payload)}, true
}

// IsPragmaWarning reports whether d is "#pragma warning disable|restore ..." and
// returns the action and the listed ids.
func (d Directive) IsPragmaWarning() (action string, ids []string, ok bool) {
	if d.Name != "pragma" {
		return "", nil, false
	}
	fields := strings.Fields(strings.ReplaceAll(d.Payload, ",", " "))
	if len(fields) < 2 || fields[0] != "warning" {
		return "", nil, false
	}
	action = fields[1]
	if action != "disable" && action != "restore" {
		return "", nil, false
	}
	for _, f := range fields[2:] {
		if strings.HasPrefix(f, "//") {
			break
		}
		ids = append(ids, f)
	}
	return action, ids, true
}
