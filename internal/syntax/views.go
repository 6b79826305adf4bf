package syntax

import "iter"

// Typed views give names to the fixed slots of a node kind. A view wraps a
// *Node and is only meaningful for the kinds listed on it; accessors return
// nil for absent optional slots.

// BinaryExpr views binary and assignment expressions: [left, op, right].
type BinaryExpr struct{ *Node }

func (v BinaryExpr) Left() *Node          { return v.Child(0) }
func (v BinaryExpr) OperatorToken() *Node { return v.Child(1) }
func (v BinaryExpr) Right() *Node         { return v.Child(2) }

// PrefixUnaryExpr views [op, operand].
type PrefixUnaryExpr struct{ *Node }

func (v PrefixUnaryExpr) OperatorToken() *Node { return v.Child(0) }
func (v PrefixUnaryExpr) Operand() *Node       { return v.Child(1) }

// PostfixUnaryExpr views [operand, op].
type PostfixUnaryExpr struct{ *Node }

func (v PostfixUnaryExpr) Operand() *Node       { return v.Child(0) }
func (v PostfixUnaryExpr) OperatorToken() *Node { return v.Child(1) }

// ParenExpr views [(, expr, )].
type ParenExpr struct{ *Node }

func (v ParenExpr) Expression() *Node { return v.Child(1) }

// MemberAccessExpr views [expr, ., name].
type MemberAccessExpr struct{ *Node }

func (v MemberAccessExpr) Expression() *Node { return v.Child(0) }
func (v MemberAccessExpr) DotToken() *Node   { return v.Child(1) }
func (v MemberAccessExpr) Name() *Node       { return v.Child(2) }

// MemberBindingExpr views [., name].
type MemberBindingExpr struct{ *Node }

func (v MemberBindingExpr) Name() *Node { return v.Child(1) }

// ConditionalAccessExpr views [expr, ?, whenNotNull]. The lexer's "?." token
// is split so that the dot belongs to the member binding.
type ConditionalAccessExpr struct{ *Node }

func (v ConditionalAccessExpr) Expression() *Node    { return v.Child(0) }
func (v ConditionalAccessExpr) OperatorToken() *Node { return v.Child(1) }
func (v ConditionalAccessExpr) WhenNotNull() *Node   { return v.Child(2) }

// InvocationExpr views [expr, ArgumentList].
type InvocationExpr struct{ *Node }

func (v InvocationExpr) Expression() *Node   { return v.Child(0) }
func (v InvocationExpr) ArgumentList() *Node { return v.Child(1) }

// Arguments returns the Argument nodes of the invocation.
func (v InvocationExpr) Arguments() []*Node {
	return ArgumentListView{v.ArgumentList()}.Arguments()
}

// ElementAccessExpr views [expr, BracketedArgumentList].
type ElementAccessExpr struct{ *Node }

func (v ElementAccessExpr) Expression() *Node   { return v.Child(0) }
func (v ElementAccessExpr) ArgumentList() *Node { return v.Child(1) }

// ArgumentListView views ArgumentList and BracketedArgumentList: [open, List, close].
type ArgumentListView struct{ *Node }

func (v ArgumentListView) OpenToken() *Node  { return v.Child(0) }
func (v ArgumentListView) List() *Node       { return v.Child(1) }
func (v ArgumentListView) CloseToken() *Node { return v.Child(2) }

// Arguments returns the Argument elements without separators.
func (v ArgumentListView) Arguments() []*Node {
	if v.Node == nil {
		return nil
	}
	return Elements(v.List())
}

// ArgumentExpr returns the expression of an Argument node.
func ArgumentExpr(arg *Node) *Node { return arg.Child(0) }

// ConditionalExpr views [cond, ?, whenTrue, :, whenFalse].
type ConditionalExpr struct{ *Node }

func (v ConditionalExpr) Condition() *Node { return v.Child(0) }
func (v ConditionalExpr) WhenTrue() *Node  { return v.Child(2) }
func (v ConditionalExpr) WhenFalse() *Node { return v.Child(4) }

// CastExpr views [(, type, ), expr].
type CastExpr struct{ *Node }

func (v CastExpr) Type() *Node       { return v.Child(1) }
func (v CastExpr) Expression() *Node { return v.Child(3) }

// IsPatternExpr views [expr, is, pattern].
type IsPatternExpr struct{ *Node }

func (v IsPatternExpr) Expression() *Node { return v.Child(0) }
func (v IsPatternExpr) Pattern() *Node    { return v.Child(2) }

// ObjectCreationExpr views [new, type, ArgumentList?].
type ObjectCreationExpr struct{ *Node }

func (v ObjectCreationExpr) Type() *Node         { return v.Child(1) }
func (v ObjectCreationExpr) ArgumentList() *Node { return v.Child(2) }

// GenericName views [identifier, TypeArgumentList].
type GenericName struct{ *Node }

func (v GenericName) Identifier() *Node { return v.Child(0) }

// TypeArguments returns the type argument nodes.
func (v GenericName) TypeArguments() []*Node { return Elements(v.Child(1).Child(1)) }

// QualifiedName views [left, ., right].
type QualifiedName struct{ *Node }

func (v QualifiedName) Left() *Node  { return v.Child(0) }
func (v QualifiedName) Right() *Node { return v.Child(2) }

// NameText returns the identifier text of a simple, generic or qualified name
// (the rightmost part) and "" for anything else.
func NameText(n *Node) string {
	switch n.Kind() {
	case KindIdentifierName, KindGenericName:
		return n.Child(0).TokenText()
	case KindQualifiedName:
		return NameText(n.Child(2))
	case KindToken:
		return n.TokenText()
	}
	return ""
}

// TypeDecl views class, struct and interface declarations:
// [attrs, mods, keyword, identifier, TypeParameterList?, BaseList?, {, members, }, ;?].
type TypeDecl struct{ *Node }

func (v TypeDecl) Modifiers() *Node  { return v.Child(1) }
func (v TypeDecl) Identifier() *Node { return v.Child(3) }
func (v TypeDecl) BaseList() *Node   { return v.Child(5) }
func (v TypeDecl) Members() []*Node  { return Elements(v.Child(7)) }

// EnumDecl views [attrs, mods, enum, identifier, BaseList?, {, members, }, ;?].
type EnumDecl struct{ *Node }

func (v EnumDecl) AttributeLists() []*Node { return Elements(v.Child(0)) }
func (v EnumDecl) Modifiers() *Node        { return v.Child(1) }
func (v EnumDecl) Identifier() *Node       { return v.Child(3) }
func (v EnumDecl) BaseList() *Node         { return v.Child(4) }
func (v EnumDecl) OpenBrace() *Node        { return v.Child(5) }
func (v EnumDecl) MemberList() *Node       { return v.Child(6) }
func (v EnumDecl) Members() []*Node        { return Elements(v.Child(6)) }
func (v EnumDecl) CloseBrace() *Node       { return v.Child(7) }

// EnumMember views [attrs, identifier, EqualsValue?].
type EnumMember struct{ *Node }

func (v EnumMember) Identifier() *Node  { return v.Child(1) }
func (v EnumMember) EqualsValue() *Node { return v.Child(2) }

// Value returns the initializer expression or nil.
func (v EnumMember) Value() *Node { return v.EqualsValue().Child(1) }

// MethodDecl views
// [attrs, mods, returnType, identifier, TypeParameterList?, ParameterList, Block?, ArrowBody?, ;?].
type MethodDecl struct{ *Node }

func (v MethodDecl) Modifiers() *Node     { return v.Child(1) }
func (v MethodDecl) ReturnType() *Node    { return v.Child(2) }
func (v MethodDecl) Identifier() *Node    { return v.Child(3) }
func (v MethodDecl) ParameterList() *Node { return v.Child(5) }
func (v MethodDecl) Body() *Node          { return v.Child(6) }
func (v MethodDecl) ArrowBody() *Node     { return v.Child(7) }

// Parameters returns the Parameter nodes.
func (v MethodDecl) Parameters() []*Node { return Elements(v.ParameterList().Child(1)) }

// HasModifier reports whether the modifier list of a declaration holds text.
func HasModifier(mods *Node, text string) bool {
	for m := range mods.Children() {
		if m.TokenText() == text {
			return true
		}
	}
	return false
}

// Parameter views [attrs, mods, type, identifier, EqualsValue?].
type Parameter struct{ *Node }

func (v Parameter) Type() *Node       { return v.Child(2) }
func (v Parameter) Identifier() *Node { return v.Child(3) }

// VariableDecl views [type, declarators].
type VariableDecl struct{ *Node }

func (v VariableDecl) Type() *Node          { return v.Child(0) }
func (v VariableDecl) Declarators() []*Node { return Elements(v.Child(1)) }

// VariableDeclarator views [identifier, EqualsValue?].
type VariableDeclarator struct{ *Node }

func (v VariableDeclarator) Identifier() *Node  { return v.Child(0) }
func (v VariableDeclarator) Initializer() *Node { return v.Child(1).Child(1) }

// IfStmt views [if, (, cond, ), stmt, ElseClause?].
type IfStmt struct{ *Node }

func (v IfStmt) Condition() *Node  { return v.Child(2) }
func (v IfStmt) Statement() *Node  { return v.Child(4) }
func (v IfStmt) ElseClause() *Node { return v.Child(5) }

// Block views [{, statements, }].
type Block struct{ *Node }

func (v Block) Statements() []*Node { return Elements(v.Child(1)) }

// Elements returns the non-token children of a List node, skipping separators.
func Elements(list *Node) []*Node {
	if list == nil {
		return nil
	}
	var out []*Node
	for k := range list.Children() {
		if !k.IsToken() {
			out = append(out, k)
		}
	}
	return out
}

// Separators yields the separator tokens of a separated List node.
func Separators(list *Node) iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		if list == nil {
			return
		}
		for k := range list.Children() {
			if k.IsToken() && !yield(k) {
				return
			}
		}
	}
}

// WalkDownParentheses strips enclosing parenthesized expressions.
func WalkDownParentheses(n *Node) *Node {
	for n.Is(KindParenExpr) {
		n = n.Child(1)
	}
	return n
}

// WalkUpParentheses returns the outermost parenthesized expression enclosing n.
func WalkUpParentheses(n *Node) *Node {
	for n.Parent().Is(KindParenExpr) {
		n = n.Parent()
	}
	return n
}
