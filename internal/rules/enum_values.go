package rules

import (
	"context"
	"fmt"
	"slices"

	"codefix/internal/codefix"
	"codefix/internal/diag"
	"codefix/internal/semantic"
	"codefix/internal/syntax"
)

// generateEnumValues gives the members of a [Flags] enum that have no
// initializer the next unused power of two.
type generateEnumValues struct{}

func (generateEnumValues) Code() diag.Code { return diag.RefactorGenerateEnumValues }

func (generateEnumValues) ComputeRefactorings(c *codefix.RefactorContext) {
	doc := c.Document
	decl := c.Node()
	if !decl.Is(syntax.KindEnumDecl) {
		decl = decl.FirstAncestor(syntax.KindEnumDecl)
	}
	if decl == nil {
		return
	}
	enum := doc.Model.DeclaredSymbol(decl)
	if !semantic.IsFlagsEnum(enum) {
		return
	}
	_, hi, ok := semantic.EnumUnderlyingRange(enum)
	if !ok {
		return
	}
	members := syntax.EnumDecl{Node: decl}.Members()
	explicit := 0
	for _, m := range members {
		if (syntax.EnumMember{Node: m}).EqualsValue() != nil {
			explicit++
		}
	}
	if explicit == len(members) {
		return
	}
	values := explicitValues(members, doc.Model)
	first, ok := uniquePowerOfTwo(values, false, hi)
	if !ok {
		return
	}
	key := diag.RefactorGenerateEnumValues.ID()
	c.Register(codefix.NewAction("Generate enum values", key, func(ctx context.Context) (*codefix.Document, error) {
		return assignEnumValues(ctx, doc, members, false, hi)
	}))
	if explicit == 0 {
		return
	}
	if next, ok := uniquePowerOfTwo(values, true, hi); ok && next != first {
		title := fmt.Sprintf("Generate enum values (starting from %d)", next)
		c.Register(codefix.NewAction(title, key+".StartFromHighestExistingValue", func(ctx context.Context) (*codefix.Document, error) {
			return assignEnumValues(ctx, doc, members, true, hi)
		}))
	}
}

// explicitValues collects the constant values of members with an
// initializer as two's complement bit patterns.
func explicitValues(members []*syntax.Node, f semantic.Facade) []uint64 {
	var values []uint64
	for _, m := range members {
		if (syntax.EnumMember{Node: m}).EqualsValue() == nil {
			continue
		}
		v, ok := f.DeclaredSymbol(m).ConstantValue()
		if !ok {
			continue
		}
		if _, u, ok := semantic.IntegerValue(v); ok {
			values = append(values, u)
		}
	}
	return values
}

// uniquePowerOfTwo returns the smallest power of two not in values and not
// above hi. With fromHighest it starts above the largest value instead of
// at one.
func uniquePowerOfTwo(values []uint64, fromHighest bool, hi uint64) (uint64, bool) {
	v := uint64(1)
	if fromHighest {
		var highest uint64
		for _, x := range values {
			if x <= hi {
				highest = max(highest, x)
			}
		}
		for v <= highest {
			v <<= 1
			if v == 0 {
				return 0, false
			}
		}
	}
	for ; v != 0 && v <= hi; v <<= 1 {
		if !slices.Contains(values, v) {
			return v, true
		}
	}
	return 0, false
}

func assignEnumValues(ctx context.Context, doc *codefix.Document, members []*syntax.Node, fromHighest bool, hi uint64) (*codefix.Document, error) {
	values := explicitValues(members, doc.Model)
	var reps []syntax.Replacement
	for _, m := range members {
		view := syntax.EnumMember{Node: m}
		if view.EqualsValue() != nil {
			continue
		}
		v, ok := uniquePowerOfTwo(values, fromHighest, hi)
		if !ok {
			break
		}
		values = append(values, v)

		id := view.Identifier()
		trail := id.TrailingTrivia()
		g := m.Green().WithSlot(1, syntax.WithTrailingTrivia(id.Green(), nil))
		g = g.WithSlot(2, syntax.WithTrailingTrivia(syntax.EqualsValue(syntax.NumericLiteral(v)), trail))
		reps = append(reps, syntax.Replacement{Old: m, New: g})
	}
	return doc.ReplaceNodes(ctx, reps)
}
