// Package match holds the shape predicates rules use to recognise syntax.
//
// Every matcher returns an ...Info value whose Success field tells whether the
// node has the shape. A failed match is the zero value; its other fields must
// not be used. Matchers never panic on malformed or partial trees and do not
// allocate on the negative path.
package match

import (
	"codefix/internal/syntax"
)

// SimpleMemberInvocationInfo describes "expr.Name(args)".
type SimpleMemberInvocationInfo struct {
	Invocation   *syntax.Node // InvocationExpr
	MemberAccess *syntax.Node // MemberAccessExpr
	Expression   *syntax.Node // receiver
	Name         *syntax.Node // IdentifierName or GenericName
	ArgumentList *syntax.Node
	Success      bool
}

// SimpleMemberInvocation matches an invocation whose callee is a simple
// member access.
func SimpleMemberInvocation(n *syntax.Node) SimpleMemberInvocationInfo {
	if !n.Is(syntax.KindInvocationExpr) {
		return SimpleMemberInvocationInfo{}
	}
	inv := syntax.InvocationExpr{Node: n}
	ma := inv.Expression()
	if !ma.Is(syntax.KindMemberAccessExpr) {
		return SimpleMemberInvocationInfo{}
	}
	view := syntax.MemberAccessExpr{Node: ma}
	expr, name, args := view.Expression(), view.Name(), inv.ArgumentList()
	if expr == nil || args == nil || !name.Is(syntax.KindIdentifierName, syntax.KindGenericName) {
		return SimpleMemberInvocationInfo{}
	}
	return SimpleMemberInvocationInfo{
		Invocation:   n,
		MemberAccess: ma,
		Expression:   expr,
		Name:         name,
		ArgumentList: args,
		Success:      true,
	}
}

// NameText is the invoked member name.
func (i SimpleMemberInvocationInfo) NameText() string { return syntax.NameText(i.Name) }

// Arguments returns the Argument nodes.
func (i SimpleMemberInvocationInfo) Arguments() []*syntax.Node {
	return syntax.ArgumentListView{Node: i.ArgumentList}.Arguments()
}

// MemberInvocationInfo describes "expr.Name(args)" or "expr?.Name(args)".
type MemberInvocationInfo struct {
	Invocation    *syntax.Node
	Expression    *syntax.Node // receiver; for "?." the expression before it
	OperatorToken *syntax.Node // '.' or the '?' of "?."
	Name          *syntax.Node
	ArgumentList  *syntax.Node
	Conditional   bool
	Success       bool
}

// MemberInvocation matches a member invocation through '.' or '?.'. For
// "a?.b.M()" the receiver is the binding chain ".b", so only the innermost
// "a?.M()" form counts as conditional.
func MemberInvocation(n *syntax.Node) MemberInvocationInfo {
	if si := SimpleMemberInvocation(n); si.Success {
		return MemberInvocationInfo{
			Invocation:    n,
			Expression:    si.Expression,
			OperatorToken: syntax.MemberAccessExpr{Node: si.MemberAccess}.DotToken(),
			Name:          si.Name,
			ArgumentList:  si.ArgumentList,
			Success:       true,
		}
	}
	if !n.Is(syntax.KindInvocationExpr) {
		return MemberInvocationInfo{}
	}
	inv := syntax.InvocationExpr{Node: n}
	binding := inv.Expression()
	if !binding.Is(syntax.KindMemberBindingExpr) {
		return MemberInvocationInfo{}
	}
	ca := n.Parent()
	if !ca.Is(syntax.KindConditionalAccessExpr) || (syntax.ConditionalAccessExpr{Node: ca}).WhenNotNull() != n {
		return MemberInvocationInfo{}
	}
	view := syntax.ConditionalAccessExpr{Node: ca}
	name := syntax.MemberBindingExpr{Node: binding}.Name()
	if view.Expression() == nil || inv.ArgumentList() == nil || name == nil {
		return MemberInvocationInfo{}
	}
	return MemberInvocationInfo{
		Invocation:    n,
		Expression:    view.Expression(),
		OperatorToken: view.OperatorToken(),
		Name:          name,
		ArgumentList:  inv.ArgumentList(),
		Conditional:   true,
		Success:       true,
	}
}

func (i MemberInvocationInfo) NameText() string { return syntax.NameText(i.Name) }

func (i MemberInvocationInfo) Arguments() []*syntax.Node {
	return syntax.ArgumentListView{Node: i.ArgumentList}.Arguments()
}
