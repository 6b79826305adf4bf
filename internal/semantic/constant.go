package semantic

import (
	"math"
	"strconv"
	"strings"

	"codefix/internal/syntax"
)

// Constants are Go values typed after their C# type: int8 sbyte, uint8
// byte, int16 short, uint16 ushort, int32 int, uint32 uint, int64 long,
// uint64 ulong, rune char, float32 float, float64 double and decimal, bool,
// string, and nil for null.

type constEvalState uint8

const (
	constStateUnvisited constEvalState = iota
	constStateVisiting
	constStateDone
)

func asInt64(v any) (int64, bool) {
	switch x := v.(type) {
	case int8:
		return int64(x), true
	case uint8:
		return int64(x), true
	case int16:
		return int64(x), true
	case uint16:
		return int64(x), true
	case int32:
		return int64(x), true
	case uint32:
		return int64(x), true
	case int64:
		return x, true
	case uint64:
		if x > math.MaxInt64 {
			return 0, false
		}
		return int64(x), true
	}
	return 0, false
}

func asUint64(v any) (uint64, bool) {
	if x, ok := v.(uint64); ok {
		return x, true
	}
	i, ok := asInt64(v)
	if !ok || i < 0 {
		return 0, false
	}
	return uint64(i), true
}

func asFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float32:
		return float64(x), true
	case float64:
		return x, true
	case uint64:
		return float64(x), true
	}
	if i, ok := asInt64(v); ok {
		return float64(i), true
	}
	return 0, false
}

// IntegerValue widens an integral constant to int64 and uint64 bit
// patterns; ok is false for non-integral values.
func IntegerValue(v any) (i int64, u uint64, ok bool) {
	if x, isU := v.(uint64); isU {
		return int64(x), x, true
	}
	i, ok = asInt64(v)
	return i, uint64(i), ok
}

// convertConst converts v to the C# type st. With checked set, values out
// of range fail; otherwise integral values wrap like an unchecked cast.
func convertConst(v any, st SpecialType, checked bool) (any, bool) {
	if v == nil {
		return nil, st == SpecialString || st == SpecialObject
	}
	switch st {
	case SpecialBoolean:
		bv, ok := v.(bool)
		return bv, ok
	case SpecialString:
		s, ok := v.(string)
		return s, ok
	case SpecialObject:
		return v, true
	case SpecialSingle:
		f, ok := asFloat(v)
		return float32(f), ok
	case SpecialDouble, SpecialDecimal:
		f, ok := asFloat(v)
		return f, ok
	}
	lo, hi, ok := integralRange(st)
	if !ok {
		return nil, false
	}
	var bits uint64
	switch x := v.(type) {
	case float32, float64:
		f, _ := asFloat(x)
		if checked && (f < float64(lo) || f > float64(hi)) {
			return nil, false
		}
		if f < 0 {
			bits = uint64(int64(f))
		} else {
			bits = uint64(f)
		}
	case uint64:
		if checked && x > hi {
			return nil, false
		}
		bits = x
	default:
		i, isInt := asInt64(v)
		if !isInt {
			return nil, false
		}
		if checked && (i < lo || i >= 0 && uint64(i) > hi) {
			return nil, false
		}
		bits = uint64(i)
	}
	switch st {
	case SpecialSByte:
		return int8(bits), true
	case SpecialByte:
		return uint8(bits), true
	case SpecialInt16:
		return int16(bits), true
	case SpecialUInt16:
		return uint16(bits), true
	case SpecialChar:
		return rune(uint16(bits)), true
	case SpecialInt32:
		return int32(bits), true
	case SpecialUInt32:
		return uint32(bits), true
	case SpecialInt64:
		return int64(bits), true
	case SpecialUInt64:
		return bits, true
	}
	return nil, false
}

// parseIntegerLiteral reads an integer literal and returns its value and
// the C# type its suffix and magnitude select.
func parseIntegerLiteral(text string) (uint64, SpecialType, bool) {
	text = strings.ReplaceAll(text, "_", "")
	lower := strings.ToLower(text)
	suffix := ""
	for strings.HasSuffix(lower, "u") || strings.HasSuffix(lower, "l") {
		suffix = lower[len(lower)-1:] + suffix
		lower = lower[:len(lower)-1]
	}
	base := 10
	switch {
	case strings.HasPrefix(lower, "0x"):
		base, lower = 16, lower[2:]
	case strings.HasPrefix(lower, "0b"):
		base, lower = 2, lower[2:]
	}
	v, err := strconv.ParseUint(lower, base, 64)
	if err != nil {
		return 0, SpecialNone, false
	}
	unsigned := strings.Contains(suffix, "u")
	long := strings.Contains(suffix, "l")
	switch {
	case !unsigned && !long && v <= math.MaxInt32:
		return v, SpecialInt32, true
	case !long && v <= math.MaxUint32:
		return v, SpecialUInt32, true
	case !unsigned && v <= math.MaxInt64:
		return v, SpecialInt64, true
	}
	return v, SpecialUInt64, true
}

// parseRealLiteral reads a real literal; the suffix selects float, double
// or decimal.
func parseRealLiteral(text string) (float64, SpecialType, bool) {
	text = strings.ReplaceAll(text, "_", "")
	st := SpecialDouble
	switch text[len(text)-1] {
	case 'f', 'F':
		st, text = SpecialSingle, text[:len(text)-1]
	case 'd', 'D':
		text = text[:len(text)-1]
	case 'm', 'M':
		st, text = SpecialDecimal, text[:len(text)-1]
	}
	f, err := strconv.ParseFloat(text, 64)
	return f, st, err == nil
}

// unquoteString decodes a regular or verbatim string literal.
func unquoteString(text string) (string, bool) {
	if strings.HasPrefix(text, "@\"") && strings.HasSuffix(text, "\"") && len(text) >= 3 {
		return strings.ReplaceAll(text[2:len(text)-1], `""`, `"`), true
	}
	if len(text) < 2 || text[0] != '"' || text[len(text)-1] != '"' {
		return "", false
	}
	body := text[1 : len(text)-1]
	if !strings.Contains(body, `\`) {
		return body, true
	}
	var sb strings.Builder
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c != '\\' || i+1 >= len(body) {
			sb.WriteByte(c)
			continue
		}
		i++
		switch body[i] {
		case 'n':
			sb.WriteByte('\n')
		case 't':
			sb.WriteByte('\t')
		case 'r':
			sb.WriteByte('\r')
		case '0':
			sb.WriteByte(0)
		case 'u':
			if i+4 < len(body) {
				if r, err := strconv.ParseUint(body[i+1:i+5], 16, 32); err == nil {
					sb.WriteRune(rune(r))
					i += 4
					continue
				}
			}
			sb.WriteString(`\u`)
		default:
			sb.WriteByte(body[i])
		}
	}
	return sb.String(), true
}

func unquoteChar(text string) (rune, bool) {
	s, ok := unquoteString(`"` + strings.Trim(text, "'") + `"`)
	if !ok {
		return 0, false
	}
	for _, r := range s {
		return r, true
	}
	return 0, false
}

// foldUnary folds a unary operator over a constant of type st.
func foldUnary(kind syntax.Kind, v any, st SpecialType) (any, bool) {
	switch kind {
	case syntax.KindLogicalNotExpr:
		bv, ok := v.(bool)
		return !bv, ok
	case syntax.KindUnaryPlusExpr:
		return convertConst(v, st, false)
	case syntax.KindUnaryMinusExpr:
		switch st {
		case SpecialSingle, SpecialDouble, SpecialDecimal:
			f, ok := asFloat(v)
			if !ok {
				return nil, false
			}
			return convertConst(-f, st, false)
		}
		i, _, ok := IntegerValue(v)
		if !ok {
			return nil, false
		}
		return convertConst(-i, st, false)
	case syntax.KindBitwiseNotExpr:
		i, _, ok := IntegerValue(v)
		if !ok {
			return nil, false
		}
		return convertConst(^i, st, false)
	}
	return nil, false
}

// foldBinary folds l op r where both operands have been promoted to st.
// Comparisons yield bool.
func foldBinary(kind syntax.Kind, l, r any, st SpecialType) (any, bool) {
	switch st {
	case SpecialBoolean:
		lb, ok1 := l.(bool)
		rb, ok2 := r.(bool)
		if !ok1 || !ok2 {
			return nil, false
		}
		switch kind {
		case syntax.KindLogicalAndExpr, syntax.KindBitwiseAndExpr:
			return lb && rb, true
		case syntax.KindLogicalOrExpr, syntax.KindBitwiseOrExpr:
			return lb || rb, true
		case syntax.KindExclusiveOrExpr, syntax.KindNotEqualsExpr:
			return lb != rb, true
		case syntax.KindEqualsExpr:
			return lb == rb, true
		}
		return nil, false
	case SpecialString:
		ls, _ := l.(string)
		rs, _ := r.(string)
		switch kind {
		case syntax.KindAddExpr:
			return ls + rs, true
		case syntax.KindEqualsExpr:
			return l == r, true
		case syntax.KindNotEqualsExpr:
			return l != r, true
		}
		return nil, false
	case SpecialSingle, SpecialDouble, SpecialDecimal:
		lf, ok1 := asFloat(l)
		rf, ok2 := asFloat(r)
		if !ok1 || !ok2 {
			return nil, false
		}
		if res, ok := compare(kind, cmpFloat(lf, rf)); ok {
			return res, true
		}
		var out float64
		switch kind {
		case syntax.KindAddExpr:
			out = lf + rf
		case syntax.KindSubtractExpr:
			out = lf - rf
		case syntax.KindMultiplyExpr:
			out = lf * rf
		case syntax.KindDivideExpr:
			out = lf / rf
		case syntax.KindModuloExpr:
			out = math.Mod(lf, rf)
		default:
			return nil, false
		}
		return convertConst(out, st, false)
	}
	if isUnsigned(st) {
		lu, ok1 := asUint64(l)
		ru, ok2 := asUint64(r)
		if !ok1 || !ok2 {
			return nil, false
		}
		if res, ok := compare(kind, cmpUint(lu, ru)); ok {
			return res, true
		}
		out, ok := foldInts(kind, lu, ru,
			func(a, c uint64) uint64 { return a / c },
			func(a, c uint64) uint64 { return a % c })
		if !ok {
			return nil, false
		}
		return convertConst(out, st, false)
	}
	li, _, ok1 := IntegerValue(l)
	ri, _, ok2 := IntegerValue(r)
	if !ok1 || !ok2 {
		return nil, false
	}
	if res, ok := compare(kind, cmpInt(li, ri)); ok {
		return res, true
	}
	if kind == syntax.KindRightShiftExpr {
		return convertConst(li>>(ri&63), st, false)
	}
	out, ok := foldInts(kind, uint64(li), uint64(ri),
		func(a, c uint64) uint64 { return uint64(int64(a) / int64(c)) },
		func(a, c uint64) uint64 { return uint64(int64(a) % int64(c)) })
	if !ok {
		return nil, false
	}
	return convertConst(int64(out), st, false)
}

// foldInts evaluates the operators whose bit pattern result does not depend
// on signedness, deferring division to div and mod.
func foldInts(kind syntax.Kind, a, c uint64, div, mod func(a, c uint64) uint64) (uint64, bool) {
	switch kind {
	case syntax.KindAddExpr:
		return a + c, true
	case syntax.KindSubtractExpr:
		return a - c, true
	case syntax.KindMultiplyExpr:
		return a * c, true
	case syntax.KindDivideExpr:
		if c == 0 {
			return 0, false
		}
		return div(a, c), true
	case syntax.KindModuloExpr:
		if c == 0 {
			return 0, false
		}
		return mod(a, c), true
	case syntax.KindBitwiseAndExpr:
		return a & c, true
	case syntax.KindBitwiseOrExpr:
		return a | c, true
	case syntax.KindExclusiveOrExpr:
		return a ^ c, true
	case syntax.KindLeftShiftExpr:
		return a << (c & 63), true
	case syntax.KindRightShiftExpr:
		return a >> (c & 63), true
	}
	return 0, false
}

func cmpInt(a, c int64) int {
	switch {
	case a < c:
		return -1
	case a > c:
		return 1
	}
	return 0
}

func cmpUint(a, c uint64) int {
	switch {
	case a < c:
		return -1
	case a > c:
		return 1
	}
	return 0
}

func cmpFloat(a, c float64) int {
	switch {
	case a < c:
		return -1
	case a > c:
		return 1
	}
	return 0
}

func compare(kind syntax.Kind, c int) (bool, bool) {
	switch kind {
	case syntax.KindEqualsExpr:
		return c == 0, true
	case syntax.KindNotEqualsExpr:
		return c != 0, true
	case syntax.KindLessThanExpr:
		return c < 0, true
	case syntax.KindLessThanOrEqualExpr:
		return c <= 0, true
	case syntax.KindGreaterThanExpr:
		return c > 0, true
	case syntax.KindGreaterThanOrEqualExpr:
		return c >= 0, true
	}
	return false, false
}
