package diag

import (
	"fmt"
	"strconv"
	"strings"
)

// Code is a numeric diagnostic identifier. The range selects the prefix:
//
//	    0..9999   RCSnnnn  analyzer rules
//	10000..19999  RRnnnn   refactorings
//	30000..39999  CSnnnn   host compiler (lexer, parser, binder)
//	40000..49999  CFXnnnn  engine-internal
type Code uint16

const (
	UnknownCode Code = 0

	// Rules
	RuleAsyncMethodNameShouldEndWithAsync       Code = 1046
	RuleNonAsyncMethodNameShouldNotEndWithAsync Code = 1047
	RuleSimplifyBooleanComparison               Code = 1049
	RuleRemoveRedundantToStringCall             Code = 1097
	RuleUseConditionalAccess                    Code = 1146
	RuleOptimizeMethodCall                      Code = 1238

	// Refactorings
	RefactorGenerateEnumValues Code = 10057

	// Host compiler
	CSBadOperands             Code = 30019
	CSBadUnaryOperand         Code = 30023
	CSNoConversion            Code = 30029
	CSNameNotFound            Code = 30103
	CSTypeHasNoMember         Code = 30117
	CSIdentifierExpected      Code = 31001
	CSSemicolonExpected       Code = 31002
	CSSyntaxError             Code = 31003
	CSNewlineInConstant       Code = 31010
	CSIntegralTooLarge        Code = 31021
	CSEndOfFileInComment      Code = 31035
	CSUnexpectedCharacter     Code = 31056
	CSNoMemberOnType          Code = 31061
	CSNoOverload              Code = 31501
	CSNoConstructor           Code = 31729
	CSBadArgument             Code = 31503
	CSBadAwait                Code = 34008
	CSCloseBraceExpected      Code = 31513
	CSInvalidExpressionTerm   Code = 31525
	CSUnexpectedPreprocessor  Code = 31028
	CSEndifExpected           Code = 31027
	CSTypeExpected            Code = 31031
	CSTypeOrNamespaceNotFound Code = 30246

	// Engine
	EngineRuleFailure      Code = 40001
	EngineUnknownRuleID    Code = 40002
	EngineFixVerifyFailed  Code = 40003
	EngineAnalysisCanceled Code = 40004
	EngineFileLoadFailed   Code = 40005
	EngineTimings          Code = 40006
)

const (
	refactorBase = 10000
	hostBase     = 30000
	engineBase   = 40000
)

var codeDescription = map[Code]string{
	UnknownCode: "Unknown error",

	RuleAsyncMethodNameShouldEndWithAsync:       "Asynchronous method name should end with 'Async'",
	RuleNonAsyncMethodNameShouldNotEndWithAsync: "Non-asynchronous method name should not end with 'Async'",
	RuleSimplifyBooleanComparison:               "Simplify boolean comparison",
	RuleRemoveRedundantToStringCall:             "Remove redundant 'ToString' call",
	RuleUseConditionalAccess:                    "Use conditional access",
	RuleOptimizeMethodCall:                      "Optimize method call",

	RefactorGenerateEnumValues: "Generate enum values",

	CSBadOperands:             "Operator cannot be applied to operands",
	CSBadUnaryOperand:         "Operator cannot be applied to operand",
	CSNoConversion:            "Cannot implicitly convert type",
	CSNameNotFound:            "The name does not exist in the current context",
	CSTypeHasNoMember:         "Type does not contain a definition",
	CSIdentifierExpected:      "Identifier expected",
	CSSemicolonExpected:       "; expected",
	CSSyntaxError:             "Syntax error",
	CSNewlineInConstant:       "Newline in constant",
	CSIntegralTooLarge:        "Integral constant is too large",
	CSEndOfFileInComment:      "End-of-file found, '*/' expected",
	CSUnexpectedCharacter:     "Unexpected character",
	CSNoMemberOnType:          "Type does not contain a definition for member",
	CSNoOverload:              "No overload for method takes this many arguments",
	CSNoConstructor:           "Type does not contain a constructor that takes this many arguments",
	CSBadArgument:             "Argument cannot be converted to the parameter type",
	CSBadAwait:                "Cannot await this expression",
	CSCloseBraceExpected:      "} expected",
	CSInvalidExpressionTerm:   "Invalid expression term",
	CSUnexpectedPreprocessor:  "Unexpected preprocessor directive",
	CSEndifExpected:           "#endif directive expected",
	CSTypeExpected:            "Type expected",
	CSTypeOrNamespaceNotFound: "The type or namespace name could not be found",

	EngineRuleFailure:      "Analyzer threw an exception",
	EngineUnknownRuleID:    "Unknown rule id in configuration",
	EngineFixVerifyFailed:  "Fix introduced new compiler errors",
	EngineAnalysisCanceled: "Analysis was canceled",
	EngineFileLoadFailed:   "Failed to load file",
	EngineTimings:          "Phase timings",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic > 0 && ic < refactorBase:
		return fmt.Sprintf("RCS%04d", ic)
	case ic >= refactorBase && ic < 20000:
		return fmt.Sprintf("RR%04d", ic-refactorBase)
	case ic >= hostBase && ic < engineBase:
		return fmt.Sprintf("CS%04d", ic-hostBase)
	case ic >= engineBase && ic < 50000:
		return fmt.Sprintf("CFX%04d", ic-engineBase)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}

// IsHostError reports whether c belongs to the host compiler range.
func (c Code) IsHostError() bool {
	return c >= hostBase && c < engineBase
}

// ParseCode converts an id such as "RCS1238", "RR0057" or "CS1002" back into a Code.
func ParseCode(id string) (Code, bool) {
	id = strings.ToUpper(strings.TrimSpace(id))
	prefixes := []struct {
		prefix string
		base   int
	}{
		{"RCS", 0},
		{"RR", refactorBase},
		{"CFX", engineBase},
		{"CS", hostBase},
	}
	for _, p := range prefixes {
		rest, ok := strings.CutPrefix(id, p.prefix)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(rest)
		if err != nil || n < 0 || n > 9999 {
			return 0, false
		}
		return Code(p.base + n), true
	}
	return 0, false
}
