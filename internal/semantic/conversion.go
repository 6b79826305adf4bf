package semantic

// implicitNumeric lists the implicit numeric conversions of each type.
var implicitNumeric = map[SpecialType][]SpecialType{
	SpecialSByte:  {SpecialInt16, SpecialInt32, SpecialInt64, SpecialSingle, SpecialDouble, SpecialDecimal},
	SpecialByte:   {SpecialInt16, SpecialUInt16, SpecialInt32, SpecialUInt32, SpecialInt64, SpecialUInt64, SpecialSingle, SpecialDouble, SpecialDecimal},
	SpecialInt16:  {SpecialInt32, SpecialInt64, SpecialSingle, SpecialDouble, SpecialDecimal},
	SpecialUInt16: {SpecialInt32, SpecialUInt32, SpecialInt64, SpecialUInt64, SpecialSingle, SpecialDouble, SpecialDecimal},
	SpecialInt32:  {SpecialInt64, SpecialSingle, SpecialDouble, SpecialDecimal},
	SpecialUInt32: {SpecialInt64, SpecialUInt64, SpecialSingle, SpecialDouble, SpecialDecimal},
	SpecialInt64:  {SpecialSingle, SpecialDouble, SpecialDecimal},
	SpecialUInt64: {SpecialSingle, SpecialDouble, SpecialDecimal},
	SpecialChar:   {SpecialUInt16, SpecialInt32, SpecialUInt32, SpecialInt64, SpecialUInt64, SpecialSingle, SpecialDouble, SpecialDecimal},
	SpecialSingle: {SpecialDouble},
}

func isNumeric(t *Symbol) bool {
	if t == nil {
		return false
	}
	switch t.Special {
	case SpecialSByte, SpecialByte, SpecialInt16, SpecialUInt16, SpecialInt32, SpecialUInt32,
		SpecialInt64, SpecialUInt64, SpecialChar, SpecialSingle, SpecialDouble, SpecialDecimal:
		return true
	}
	return false
}

func isIntegral(t *Symbol) bool {
	if t == nil {
		return false
	}
	_, _, ok := integralRange(t.Special)
	return ok
}

func isUnsigned(st SpecialType) bool {
	switch st {
	case SpecialByte, SpecialUInt16, SpecialUInt32, SpecialUInt64, SpecialChar:
		return true
	}
	return false
}

func isBool(t *Symbol) bool   { return t != nil && t.Special == SpecialBoolean }
func isString(t *Symbol) bool { return t != nil && t.Special == SpecialString }
func isEnum(t *Symbol) bool   { return t != nil && t.TypeKind == TypeEnum }

// canBeNull reports whether the null literal converts to t.
func canBeNull(t *Symbol) bool {
	return t.IsReferenceType() || t.IsNullable() || t.TypeKind == TypeParameter
}

// implicitConversion reports whether a value of type from, optionally a
// constant, converts implicitly to type to.
func (b *binder) implicitConversion(from, to *Symbol, constant any, hasConst bool) bool {
	switch {
	case from == nil || to == nil:
		return false
	case from.TypeKind == TypeError || to.TypeKind == TypeError:
		return true
	case SameType(from, to):
		return true
	case from == defaultType:
		return true
	case from == nullType:
		return canBeNull(to)
	case to.Special == SpecialVoid || from.Special == SpecialVoid:
		return false
	}
	if hasConst && constantFits(constant, from, to) {
		return true
	}
	if targets, ok := implicitNumeric[from.Special]; ok && from.Special != SpecialNone {
		for _, st := range targets {
			if to.Special == st {
				return true
			}
		}
	}
	if to.IsNullable() {
		under := to.NullableUnderlying()
		if from.IsNullable() {
			return b.implicitConversion(from.NullableUnderlying(), under, nil, false)
		}
		return b.implicitConversion(from, under, constant, hasConst)
	}
	if from.IsNullable() {
		return to.Special == SpecialObject || to.Special == SpecialValueType
	}
	return b.referenceConversion(from, to)
}

// constantFits implements the implicit constant expression conversions: an
// int constant to a smaller integral type when in range, a non-negative
// long constant to ulong, and literal 0 to any enum.
func constantFits(v any, from, to *Symbol) bool {
	i, ok := asInt64(v)
	if !ok {
		return false
	}
	if isEnum(to) {
		return i == 0 && isIntegral(from)
	}
	switch from.Special {
	case SpecialInt32:
		switch to.Special {
		case SpecialSByte, SpecialByte, SpecialInt16, SpecialUInt16, SpecialUInt32, SpecialUInt64:
			lo, hi, _ := integralRange(to.Special)
			return i >= lo && (i < 0 || uint64(i) <= hi)
		}
	case SpecialInt64:
		return to.Special == SpecialUInt64 && i >= 0
	}
	return false
}

// referenceConversion covers conversions to object, to base classes and
// implemented interfaces, boxing to ValueType and Enum, and arrays.
func (b *binder) referenceConversion(from, to *Symbol) bool {
	if to.Special == SpecialObject {
		return true
	}
	switch from.TypeKind {
	case TypeArray:
		if to.FullName() == "System.Array" {
			return true
		}
		if to.TypeKind == TypeArray && from.Element.IsReferenceType() && to.Element.IsReferenceType() {
			return b.referenceConversion(from.Element, to.Element)
		}
		return false
	case TypeParameter:
		return false
	}
	if to.Special == SpecialValueType && from.IsValueType() {
		return true
	}
	if to.Special == SpecialEnum && isEnum(from) {
		return true
	}
	if isEnum(from) {
		return false
	}
	return inheritsFrom(from, to)
}

// inheritsFrom reports whether to is a base class or implemented interface
// of from.
func inheritsFrom(from, to *Symbol) bool {
	seen := make(map[*Symbol]bool)
	var walk func(t *Symbol) bool
	walk = func(t *Symbol) bool {
		if t == nil || seen[t] {
			return false
		}
		seen[t] = true
		if SameType(t, to) {
			return true
		}
		for _, it := range t.Interfaces {
			if walk(it) {
				return true
			}
		}
		return walk(t.Base)
	}
	return walk(from.Base) || anyInterface(from, walk)
}

func anyInterface(t *Symbol, walk func(*Symbol) bool) bool {
	for _, it := range t.Interfaces {
		if walk(it) {
			return true
		}
	}
	return false
}

// betterConversionTarget reports whether conversion to a is better than to
// b: a converts implicitly to b but not the other way round, with the
// signed-over-unsigned rule for integral targets.
func (b *binder) betterConversionTarget(a, c *Symbol) bool {
	if SameType(a, c) {
		return false
	}
	ab := b.implicitConversion(a, c, nil, false)
	ca := b.implicitConversion(c, a, nil, false)
	if ab && !ca {
		return true
	}
	if ca && !ab {
		return false
	}
	switch a.Special {
	case SpecialSByte, SpecialInt16, SpecialInt32, SpecialInt64:
		switch c.Special {
		case SpecialByte, SpecialUInt16, SpecialUInt32, SpecialUInt64:
			return true
		}
	}
	return false
}

// promoteBinary applies binary numeric promotion and returns the type both
// operands are converted to, or nil when no predefined operator applies.
func (b *binder) promoteBinary(l, r *Symbol, lc, rc operand) *Symbol {
	if !isNumeric(l) || !isNumeric(r) {
		return nil
	}
	ls, rs := l.Special, r.Special
	has := func(st SpecialType) bool { return ls == st || rs == st }
	switch {
	case has(SpecialDecimal):
		if has(SpecialSingle) || has(SpecialDouble) {
			return nil
		}
		return b.env.special(SpecialDecimal)
	case has(SpecialDouble):
		return b.env.special(SpecialDouble)
	case has(SpecialSingle):
		return b.env.special(SpecialSingle)
	case has(SpecialUInt64):
		other, oc := r, rc
		if rs == SpecialUInt64 {
			other, oc = l, lc
		}
		if !b.implicitConversion(other, b.env.special(SpecialUInt64), oc.constant, oc.hasConst) {
			return nil
		}
		return b.env.special(SpecialUInt64)
	case has(SpecialInt64):
		return b.env.special(SpecialInt64)
	case has(SpecialUInt32):
		other, oc := r, rc
		if rs == SpecialUInt32 {
			other, oc = l, lc
		}
		switch other.Special {
		case SpecialSByte, SpecialInt16, SpecialInt32:
			if !b.implicitConversion(other, b.env.special(SpecialUInt32), oc.constant, oc.hasConst) {
				return b.env.special(SpecialInt64)
			}
		}
		return b.env.special(SpecialUInt32)
	}
	return b.env.special(SpecialInt32)
}

// promoteUnary applies unary numeric promotion for + - ~.
func (b *binder) promoteUnary(t *Symbol) *Symbol {
	switch t.Special {
	case SpecialSByte, SpecialByte, SpecialInt16, SpecialUInt16, SpecialChar, SpecialInt32:
		return b.env.special(SpecialInt32)
	case SpecialUInt32, SpecialInt64, SpecialUInt64, SpecialSingle, SpecialDouble, SpecialDecimal:
		return t
	}
	return nil
}
