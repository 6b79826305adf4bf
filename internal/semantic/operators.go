package semantic

import (
	"codefix/internal/diag"
	"codefix/internal/syntax"
)

var operatorNames = map[syntax.Kind]string{
	syntax.KindAddExpr:                "op_Addition",
	syntax.KindSubtractExpr:           "op_Subtraction",
	syntax.KindMultiplyExpr:           "op_Multiply",
	syntax.KindDivideExpr:             "op_Division",
	syntax.KindModuloExpr:             "op_Modulus",
	syntax.KindLeftShiftExpr:          "op_LeftShift",
	syntax.KindRightShiftExpr:         "op_RightShift",
	syntax.KindLessThanExpr:           "op_LessThan",
	syntax.KindLessThanOrEqualExpr:    "op_LessThanOrEqual",
	syntax.KindGreaterThanExpr:        "op_GreaterThan",
	syntax.KindGreaterThanOrEqualExpr: "op_GreaterThanOrEqual",
	syntax.KindEqualsExpr:             "op_Equality",
	syntax.KindNotEqualsExpr:          "op_Inequality",
	syntax.KindBitwiseAndExpr:         "op_BitwiseAnd",
	syntax.KindExclusiveOrExpr:        "op_ExclusiveOr",
	syntax.KindBitwiseOrExpr:          "op_BitwiseOr",
	syntax.KindLogicalAndExpr:         "op_LogicalAnd",
	syntax.KindLogicalOrExpr:          "op_LogicalOr",
	syntax.KindLogicalNotExpr:         "op_LogicalNot",
	syntax.KindUnaryMinusExpr:         "op_UnaryNegation",
	syntax.KindUnaryPlusExpr:          "op_UnaryPlus",
	syntax.KindBitwiseNotExpr:         "op_OnesComplement",
	syntax.KindPreIncrementExpr:       "op_Increment",
	syntax.KindPostIncrementExpr:      "op_Increment",
	syntax.KindPreDecrementExpr:       "op_Decrement",
	syntax.KindPostDecrementExpr:      "op_Decrement",
}

var compoundOperators = map[syntax.Kind]syntax.Kind{
	syntax.KindAddAssignExpr:         syntax.KindAddExpr,
	syntax.KindSubtractAssignExpr:    syntax.KindSubtractExpr,
	syntax.KindMultiplyAssignExpr:    syntax.KindMultiplyExpr,
	syntax.KindDivideAssignExpr:      syntax.KindDivideExpr,
	syntax.KindModuloAssignExpr:      syntax.KindModuloExpr,
	syntax.KindAndAssignExpr:         syntax.KindBitwiseAndExpr,
	syntax.KindOrAssignExpr:          syntax.KindBitwiseOrExpr,
	syntax.KindExclusiveOrAssignExpr: syntax.KindExclusiveOrExpr,
	syntax.KindLeftShiftAssignExpr:   syntax.KindLeftShiftExpr,
}

// operatorSymbol synthesizes the predefined operator method of a built-in
// operator, declared by the type that owns it.
func operatorSymbol(kind syntax.Kind, owner, ret *Symbol, operands ...*Symbol) *Symbol {
	s := &Symbol{
		Kind:       SymbolMethod,
		Name:       operatorNames[kind],
		Flags:      FlagStatic | FlagOperator | FlagMetadata,
		Access:     AccessPublic,
		Containing: owner,
		Type:       ret,
	}
	names := []string{"left", "right"}
	if len(operands) == 1 {
		names = []string{"value"}
	}
	for i, t := range operands {
		s.Params = append(s.Params, &Symbol{Kind: SymbolParameter, Name: names[i], Type: t, Containing: s, Ordinal: i, Flags: FlagMetadata})
	}
	return s
}

func (b *binder) badOperands(n *syntax.Node, l, r *Symbol) operand {
	b.errorf(diag.CSBadOperands, n, "Operator '%s' cannot be applied to operands of type '%s' and '%s'",
		n.Child(1).TokenText(), l, r)
	return operand{typ: errorType}
}

func (b *binder) badOperand(n *syntax.Node, opText string, t *Symbol) operand {
	b.errorf(diag.CSBadUnaryOperand, n, "Operator '%s' cannot be applied to operand of type '%s'", opText, t)
	return operand{typ: errorType}
}

func (b *binder) bindUnary(n *syntax.Node) operand {
	kind := n.Kind()
	opNode, operandNode := n.Child(0), n.Child(1)
	if kind.IsPostfixUnary() {
		opNode, operandNode = n.Child(1), n.Child(0)
	}
	op := b.bindExpr(operandNode)
	t := op.typ
	if !op.isValue() || isBad(t) {
		return operand{typ: errorType}
	}
	lifted := t.IsNullable()
	u := t.NullableUnderlying()
	result := func(rt *Symbol, owner *Symbol) operand {
		out := operand{typ: rt, sym: operatorSymbol(kind, owner, rt, rt)}
		if lifted {
			out.typ = b.nullableOf(rt)
		} else if op.hasConst {
			if v, ok := convertConst(op.constant, rt.Special, false); ok {
				out.constant, out.hasConst = foldUnary(kind, v, rt.Special)
			}
		}
		return out
	}
	switch kind {
	case syntax.KindLogicalNotExpr:
		if isBool(u) {
			return result(u, u)
		}
	case syntax.KindUnaryMinusExpr, syntax.KindUnaryPlusExpr:
		if pt := b.promoteUnary(u); pt != nil && !(kind == syntax.KindUnaryMinusExpr && pt.Special == SpecialUInt64) {
			if kind == syntax.KindUnaryMinusExpr && pt.Special == SpecialUInt32 {
				pt = b.env.special(SpecialInt64)
			}
			return result(pt, pt)
		}
	case syntax.KindBitwiseNotExpr:
		if isEnum(u) {
			out := operand{typ: t, sym: operatorSymbol(kind, u, u, u)}
			if op.hasConst && !lifted {
				out.constant, out.hasConst = foldUnary(kind, op.constant, constSpecial(u))
			}
			return out
		}
		if pt := b.promoteUnary(u); pt != nil && isIntegral(pt) {
			return result(pt, pt)
		}
	case syntax.KindPreIncrementExpr, syntax.KindPreDecrementExpr, syntax.KindPostIncrementExpr, syntax.KindPostDecrementExpr:
		if isNumeric(u) || isEnum(u) {
			return operand{typ: t, sym: operatorSymbol(kind, u, u, u)}
		}
	}
	return b.badOperand(n, opNode.TokenText(), t)
}

// bindBinary binds the binary operators, including as and ??.
func (b *binder) bindBinary(n *syntax.Node) operand {
	kind := n.Kind()
	switch kind {
	case syntax.KindAsExpr:
		b.bindExpr(n.Child(0))
		return operand{typ: b.resolveType(n.Child(2))}
	case syntax.KindCoalesceExpr:
		return b.bindCoalesce(n)
	}
	l := b.bindExpr(n.Child(0))
	r := b.bindExpr(n.Child(2))
	return b.binaryOperator(n, kind, l, r)
}

// binaryOperator resolves a predefined binary operator for l and r and
// folds constant operands.
func (b *binder) binaryOperator(n *syntax.Node, kind syntax.Kind, l, r operand) operand {
	lt, rt := l.typ, r.typ
	if !l.isValue() || !r.isValue() || isBad(lt) || isBad(rt) {
		return operand{typ: errorType}
	}
	boolType := b.env.special(SpecialBoolean)
	switch kind {
	case syntax.KindLogicalAndExpr, syntax.KindLogicalOrExpr:
		if b.implicitConversion(lt, boolType, l.constant, l.hasConst) && b.implicitConversion(rt, boolType, r.constant, r.hasConst) {
			return b.fold(kind, boolType, boolType, boolType, l, r)
		}
		return b.badOperands(n, lt, rt)
	case syntax.KindEqualsExpr, syntax.KindNotEqualsExpr:
		return b.bindEquality(n, kind, l, r)
	case syntax.KindAddExpr:
		if isString(lt) || isString(rt) {
			if lt.Special == SpecialVoid || rt.Special == SpecialVoid {
				return b.badOperands(n, lt, rt)
			}
			return b.concat(kind, l, r)
		}
	case syntax.KindLeftShiftExpr, syntax.KindRightShiftExpr:
		lu, ru := lt.NullableUnderlying(), rt.NullableUnderlying()
		pt := b.promoteUnary(lu)
		intType := b.env.special(SpecialInt32)
		if pt == nil || !isIntegral(pt) || !b.implicitConversion(ru, intType, r.constant, r.hasConst) {
			return b.badOperands(n, lt, rt)
		}
		if lt.IsNullable() || rt.IsNullable() {
			return operand{typ: b.nullableOf(pt), sym: operatorSymbol(kind, pt, pt, pt, intType)}
		}
		out := operand{typ: pt, sym: operatorSymbol(kind, pt, pt, pt, intType)}
		if l.hasConst && r.hasConst {
			lv, ok1 := convertConst(l.constant, pt.Special, false)
			rv, ok2 := convertConst(r.constant, SpecialInt32, false)
			if ok1 && ok2 {
				out.constant, out.hasConst = foldBinary(kind, lv, rv, pt.Special)
			}
		}
		return out
	}
	if op, ok := b.enumOperator(n, kind, l, r); ok {
		return op
	}
	lifted := lt.IsNullable() || rt.IsNullable()
	lu, ru := lt.NullableUnderlying(), rt.NullableUnderlying()
	if kind == syntax.KindBitwiseAndExpr || kind == syntax.KindBitwiseOrExpr || kind == syntax.KindExclusiveOrExpr {
		if isBool(lu) && isBool(ru) {
			rtyp := boolType
			if lifted {
				rtyp = b.nullableOf(boolType)
			}
			return b.fold(kind, boolType, boolType, rtyp, l, r)
		}
	}
	pt := b.promoteBinary(lu, ru, l, r)
	if pt == nil {
		return b.badOperands(n, lt, rt)
	}
	switch kind {
	case syntax.KindBitwiseAndExpr, syntax.KindBitwiseOrExpr, syntax.KindExclusiveOrExpr:
		if !isIntegral(pt) {
			return b.badOperands(n, lt, rt)
		}
	}
	ret := pt
	switch kind {
	case syntax.KindLessThanExpr, syntax.KindLessThanOrEqualExpr, syntax.KindGreaterThanExpr, syntax.KindGreaterThanOrEqualExpr:
		ret = boolType
	default:
		if lifted {
			ret = b.nullableOf(pt)
		}
	}
	if lifted {
		return operand{typ: ret, sym: operatorSymbol(kind, pt, ret, pt, pt)}
	}
	return b.fold(kind, pt, pt, ret, l, r)
}

// fold builds the operator result of type ret over operands converted to
// the operand type, folding constants.
func (b *binder) fold(kind syntax.Kind, owner, operandType, ret *Symbol, l, r operand) operand {
	out := operand{typ: ret, sym: operatorSymbol(kind, owner, ret, operandType, operandType)}
	if !l.hasConst || !r.hasConst || ret.IsNullable() {
		return out
	}
	lv, ok1 := convertConst(l.constant, operandType.Special, false)
	rv, ok2 := convertConst(r.constant, operandType.Special, false)
	if ok1 && ok2 {
		out.constant, out.hasConst = foldBinary(kind, lv, rv, operandType.Special)
	}
	return out
}

// concat binds string concatenation. Null constants concatenate as empty
// strings.
func (b *binder) concat(kind syntax.Kind, l, r operand) operand {
	str := b.env.special(SpecialString)
	obj := b.env.special(SpecialObject)
	lp, rp := str, str
	if !isString(l.typ) {
		lp = obj
	}
	if !isString(r.typ) {
		rp = obj
	}
	out := operand{typ: str, sym: operatorSymbol(kind, str, str, lp, rp)}
	if l.hasConst && r.hasConst {
		ls, lok := stringConst(l)
		rs, rok := stringConst(r)
		if lok && rok {
			out.constant, out.hasConst = ls+rs, true
		}
	}
	return out
}

func stringConst(op operand) (string, bool) {
	if op.constant == nil {
		return "", true
	}
	s, ok := op.constant.(string)
	return s, ok
}

// enumOperator covers the enum operators: bitwise ops and comparisons
// between values of one enum, and enum plus or minus an integral value.
func (b *binder) enumOperator(n *syntax.Node, kind syntax.Kind, l, r operand) (operand, bool) {
	lu, ru := l.typ.NullableUnderlying(), r.typ.NullableUnderlying()
	if !isEnum(lu) && !isEnum(ru) {
		return operand{}, false
	}
	lifted := l.typ.IsNullable() || r.typ.IsNullable()
	wrap := func(t *Symbol) *Symbol {
		if lifted && !isBool(t) {
			return b.nullableOf(t)
		}
		return t
	}
	enum := lu
	if !isEnum(lu) {
		enum = ru
	}
	under := enum.Underlying
	if under == nil {
		under = b.env.special(SpecialInt32)
	}
	sameEnum := SameType(lu, ru) ||
		isEnum(lu) && r.hasConst && b.implicitConversion(ru, lu, r.constant, r.hasConst) ||
		isEnum(ru) && l.hasConst && b.implicitConversion(lu, ru, l.constant, l.hasConst)
	var ret *Symbol
	switch kind {
	case syntax.KindBitwiseAndExpr, syntax.KindBitwiseOrExpr, syntax.KindExclusiveOrExpr:
		if sameEnum {
			ret = enum
		}
	case syntax.KindLessThanExpr, syntax.KindLessThanOrEqualExpr, syntax.KindGreaterThanExpr, syntax.KindGreaterThanOrEqualExpr:
		if sameEnum {
			ret = b.env.special(SpecialBoolean)
		}
	case syntax.KindAddExpr:
		if isEnum(lu) && b.implicitConversion(ru, under, r.constant, r.hasConst) ||
			isEnum(ru) && b.implicitConversion(lu, under, l.constant, l.hasConst) {
			ret = enum
		}
	case syntax.KindSubtractExpr:
		switch {
		case SameType(lu, ru):
			ret = under
		case isEnum(lu) && b.implicitConversion(ru, under, r.constant, r.hasConst):
			ret = enum
		}
	}
	if ret == nil {
		return b.badOperands(n, l.typ, r.typ), true
	}
	out := operand{typ: wrap(ret), sym: operatorSymbol(kind, enum, ret, lu, ru)}
	if !lifted && l.hasConst && r.hasConst {
		st := under.Special
		lv, ok1 := convertConst(l.constant, st, false)
		rv, ok2 := convertConst(r.constant, st, false)
		if ok1 && ok2 {
			if v, ok := foldBinary(kind, lv, rv, st); ok {
				out.constant, out.hasConst = v, true
			}
		}
	}
	return out, true
}

// bindEquality binds == and !=.
func (b *binder) bindEquality(n *syntax.Node, kind syntax.Kind, l, r operand) operand {
	boolType := b.env.special(SpecialBoolean)
	lt, rt := l.typ, r.typ
	lu, ru := lt.NullableUnderlying(), rt.NullableUnderlying()
	lifted := lt.IsNullable() || rt.IsNullable()
	switch {
	case lt == nullType && rt == nullType:
		return operand{typ: boolType, sym: operatorSymbol(kind, b.env.special(SpecialObject), boolType, lt, rt), constant: kind == syntax.KindEqualsExpr, hasConst: true}
	case lt == nullType || rt == nullType:
		other := rt
		if rt == nullType {
			other = lt
		}
		owner := other.NullableUnderlying()
		if other.TypeKind == TypeParameter || other.IsReferenceType() {
			owner = b.env.special(SpecialObject)
		}
		return operand{typ: boolType, sym: operatorSymbol(kind, owner, boolType, other, other)}
	case isBool(lu) && isBool(ru):
		if lifted {
			return operand{typ: boolType, sym: operatorSymbol(kind, boolType, boolType, boolType, boolType)}
		}
		return b.fold(kind, boolType, boolType, boolType, l, r)
	case isString(lt) && isString(rt):
		return b.fold(kind, lt, lt, boolType, l, r)
	}
	if isEnum(lu) || isEnum(ru) {
		if SameType(lu, ru) ||
			isEnum(lu) && b.implicitConversion(ru, lu, r.constant, r.hasConst) ||
			isEnum(ru) && b.implicitConversion(lu, ru, l.constant, l.hasConst) {
			enum := lu
			if !isEnum(lu) {
				enum = ru
			}
			out := operand{typ: boolType, sym: operatorSymbol(kind, enum, boolType, enum, enum)}
			if !lifted && l.hasConst && r.hasConst {
				st := constSpecial(enum)
				lv, ok1 := convertConst(l.constant, st, false)
				rv, ok2 := convertConst(r.constant, st, false)
				if ok1 && ok2 {
					out.constant, out.hasConst = foldBinary(kind, lv, rv, st)
				}
			}
			return out
		}
		return b.badOperands(n, lt, rt)
	}
	if pt := b.promoteBinary(lu, ru, l, r); pt != nil {
		if lifted {
			return operand{typ: boolType, sym: operatorSymbol(kind, pt, boolType, pt, pt)}
		}
		return b.fold(kind, pt, pt, boolType, l, r)
	}
	if lt.IsValueType() || rt.IsValueType() {
		if SameType(lt, rt) && lt.IsNullable() {
			return operand{typ: boolType, sym: operatorSymbol(kind, lu, boolType, lu, lu)}
		}
		return b.badOperands(n, lt, rt)
	}
	if b.implicitConversion(lt, rt, nil, false) || b.implicitConversion(rt, lt, nil, false) {
		obj := b.env.special(SpecialObject)
		return operand{typ: boolType, sym: operatorSymbol(kind, obj, boolType, obj, obj)}
	}
	return b.badOperands(n, lt, rt)
}

func (b *binder) bindCoalesce(n *syntax.Node) operand {
	l := b.bindExpr(n.Child(0))
	r := b.bindExpr(n.Child(2))
	if !l.isValue() || !r.isValue() || isBad(l.typ) || isBad(r.typ) {
		return operand{typ: errorType}
	}
	if l.typ != nullType && !canBeNull(l.typ) {
		return b.badOperands(n, l.typ, r.typ)
	}
	under := l.typ.NullableUnderlying()
	switch {
	case l.typ == nullType:
		return operand{typ: r.typ}
	case l.typ.IsNullable() && b.implicitConversion(r.typ, under, r.constant, r.hasConst):
		b.setConverted(n.Child(2), under)
		return operand{typ: under}
	case b.implicitConversion(r.typ, l.typ, r.constant, r.hasConst):
		b.setConverted(n.Child(2), l.typ)
		return operand{typ: l.typ}
	case b.implicitConversion(under, r.typ, nil, false):
		return operand{typ: r.typ}
	}
	return b.badOperands(n, l.typ, r.typ)
}

// bindAssignment binds simple, compound and ??= assignment.
func (b *binder) bindAssignment(n *syntax.Node) operand {
	kind := n.Kind()
	l := b.bindExpr(n.Child(0))
	r := b.bindExpr(n.Child(2))
	if !l.isValue() || isBad(l.typ) {
		return operand{typ: errorType}
	}
	switch kind {
	case syntax.KindSimpleAssignExpr:
		b.convert(n.Child(2), r, l.typ)
		return operand{typ: l.typ}
	case syntax.KindCoalesceAssignExpr:
		if !canBeNull(l.typ) {
			return b.badOperands(n, l.typ, r.typ)
		}
		b.convert(n.Child(2), r, l.typ.NullableUnderlying())
		return operand{typ: l.typ}
	}
	res := b.binaryOperator(n, compoundOperators[kind], l, r)
	if isBad(res.typ) {
		return operand{typ: errorType}
	}
	if !b.implicitConversion(res.typ, l.typ, nil, false) && !b.implicitConversion(r.typ, l.typ, r.constant, r.hasConst) {
		b.errorf(diag.CSNoConversion, n, "Cannot implicitly convert type '%s' to '%s'", res.typ, l.typ)
		return operand{typ: errorType}
	}
	return operand{typ: l.typ, sym: res.sym}
}
