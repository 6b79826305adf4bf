package rules

import (
	"strings"

	"codefix/internal/analysis"
	"codefix/internal/diag"
)

const (
	categoryNaming         = "Naming"
	categoryPerformance    = "Performance"
	categoryRedundancy     = "Redundancy"
	categorySimplification = "Simplification"
	categoryStyle          = "Style"
)

var (
	AsyncMethodNameShouldEndWithAsync = &analysis.Descriptor{
		ID:               diag.RuleAsyncMethodNameShouldEndWithAsync,
		Title:            diag.RuleAsyncMethodNameShouldEndWithAsync.Title(),
		MessageFormat:    "Asynchronous method name '%s' should end with 'Async'",
		Category:         categoryNaming,
		DefaultSeverity:  diag.SevInfo,
		EnabledByDefault: false,
		HelpURI:          helpURI(diag.RuleAsyncMethodNameShouldEndWithAsync),
	}
	NonAsyncMethodNameShouldNotEndWithAsync = &analysis.Descriptor{
		ID:               diag.RuleNonAsyncMethodNameShouldNotEndWithAsync,
		Title:            diag.RuleNonAsyncMethodNameShouldNotEndWithAsync.Title(),
		MessageFormat:    "Non-asynchronous method name '%s' should not end with 'Async'",
		Category:         categoryNaming,
		DefaultSeverity:  diag.SevInfo,
		EnabledByDefault: true,
		HelpURI:          helpURI(diag.RuleNonAsyncMethodNameShouldNotEndWithAsync),
	}
	SimplifyBooleanComparison = &analysis.Descriptor{
		ID:               diag.RuleSimplifyBooleanComparison,
		Title:            diag.RuleSimplifyBooleanComparison.Title(),
		MessageFormat:    "Simplify boolean comparison",
		Category:         categorySimplification,
		DefaultSeverity:  diag.SevInfo,
		EnabledByDefault: true,
		HelpURI:          helpURI(diag.RuleSimplifyBooleanComparison),
	}
	RemoveRedundantToStringCall = &analysis.Descriptor{
		ID:               diag.RuleRemoveRedundantToStringCall,
		Title:            diag.RuleRemoveRedundantToStringCall.Title(),
		MessageFormat:    "Remove redundant 'ToString' call",
		Category:         categoryRedundancy,
		DefaultSeverity:  diag.SevInfo,
		EnabledByDefault: true,
		HelpURI:          helpURI(diag.RuleRemoveRedundantToStringCall),
	}
	UseConditionalAccess = &analysis.Descriptor{
		ID:               diag.RuleUseConditionalAccess,
		Title:            diag.RuleUseConditionalAccess.Title(),
		MessageFormat:    "Use conditional access",
		Category:         categoryStyle,
		DefaultSeverity:  diag.SevInfo,
		EnabledByDefault: true,
		HelpURI:          helpURI(diag.RuleUseConditionalAccess),
	}
	OptimizeMethodCall = &analysis.Descriptor{
		ID:               diag.RuleOptimizeMethodCall,
		Title:            diag.RuleOptimizeMethodCall.Title(),
		MessageFormat:    "Optimize method call '%s'",
		Category:         categoryPerformance,
		DefaultSeverity:  diag.SevInfo,
		EnabledByDefault: true,
		HelpURI:          helpURI(diag.RuleOptimizeMethodCall),
	}
)

func helpURI(c diag.Code) string {
	dir := "analyzers"
	if strings.HasPrefix(c.ID(), "RR") {
		dir = "refactorings"
	}
	return "https://github.com/JosefPihrt/Roslynator/blob/main/docs/" + dir + "/" + c.ID() + ".md"
}
