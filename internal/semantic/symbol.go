package semantic

import (
	"strings"
	"sync"

	"codefix/internal/source"
	"codefix/internal/syntax"
)

// SymbolKind classifies the semantic meaning of a symbol.
type SymbolKind uint8

const (
	SymbolInvalid SymbolKind = iota
	SymbolNamespace
	SymbolType
	SymbolMethod
	SymbolField
	SymbolProperty
	SymbolParameter
	SymbolLocal
)

func (k SymbolKind) String() string {
	switch k {
	case SymbolNamespace:
		return "namespace"
	case SymbolType:
		return "type"
	case SymbolMethod:
		return "method"
	case SymbolField:
		return "field"
	case SymbolProperty:
		return "property"
	case SymbolParameter:
		return "parameter"
	case SymbolLocal:
		return "local"
	default:
		return "invalid"
	}
}

// TypeKind classifies type symbols.
type TypeKind uint8

const (
	TypeNone TypeKind = iota
	TypeClass
	TypeStruct
	TypeInterface
	TypeEnum
	TypeArray
	TypeParameter
	TypeNull  // type of the null literal
	TypeError // unresolved type, never surfaced through the Facade
)

// SpecialType identifies core library types the rules ask about by role.
type SpecialType uint8

const (
	SpecialNone SpecialType = iota
	SpecialObject
	SpecialValueType
	SpecialEnum
	SpecialVoid
	SpecialBoolean
	SpecialChar
	SpecialSByte
	SpecialByte
	SpecialInt16
	SpecialUInt16
	SpecialInt32
	SpecialUInt32
	SpecialInt64
	SpecialUInt64
	SpecialDecimal
	SpecialSingle
	SpecialDouble
	SpecialString
	SpecialNullableT
)

var specialByMetadata = map[string]SpecialType{
	"System.Object":     SpecialObject,
	"System.ValueType":  SpecialValueType,
	"System.Enum":       SpecialEnum,
	"System.Void":       SpecialVoid,
	"System.Boolean":    SpecialBoolean,
	"System.Char":       SpecialChar,
	"System.SByte":      SpecialSByte,
	"System.Byte":       SpecialByte,
	"System.Int16":      SpecialInt16,
	"System.UInt16":     SpecialUInt16,
	"System.Int32":      SpecialInt32,
	"System.UInt32":     SpecialUInt32,
	"System.Int64":      SpecialInt64,
	"System.UInt64":     SpecialUInt64,
	"System.Decimal":    SpecialDecimal,
	"System.Single":     SpecialSingle,
	"System.Double":     SpecialDouble,
	"System.String":     SpecialString,
	"System.Nullable`1": SpecialNullableT,
}

// keywordTypes maps predefined type keywords to metadata names.
var keywordTypes = map[string]string{
	"object":  "System.Object",
	"void":    "System.Void",
	"bool":    "System.Boolean",
	"char":    "System.Char",
	"sbyte":   "System.SByte",
	"byte":    "System.Byte",
	"short":   "System.Int16",
	"ushort":  "System.UInt16",
	"int":     "System.Int32",
	"uint":    "System.UInt32",
	"long":    "System.Int64",
	"ulong":   "System.UInt64",
	"decimal": "System.Decimal",
	"float":   "System.Single",
	"double":  "System.Double",
	"string":  "System.String",
}

var keywordBySpecial = map[SpecialType]string{
	SpecialObject:  "object",
	SpecialVoid:    "void",
	SpecialBoolean: "bool",
	SpecialChar:    "char",
	SpecialSByte:   "sbyte",
	SpecialByte:    "byte",
	SpecialInt16:   "short",
	SpecialUInt16:  "ushort",
	SpecialInt32:   "int",
	SpecialUInt32:  "uint",
	SpecialInt64:   "long",
	SpecialUInt64:  "ulong",
	SpecialDecimal: "decimal",
	SpecialSingle:  "float",
	SpecialDouble:  "double",
	SpecialString:  "string",
}

// Accessibility of a declared symbol.
type Accessibility uint8

const (
	AccessNotApplicable Accessibility = iota
	AccessPrivate
	AccessProtected
	AccessInternal
	AccessPublic
)

func (a Accessibility) String() string {
	switch a {
	case AccessPrivate:
		return "private"
	case AccessProtected:
		return "protected"
	case AccessInternal:
		return "internal"
	case AccessPublic:
		return "public"
	default:
		return "n/a"
	}
}

// SymbolFlags encode modifiers and misc attributes for quick checks.
type SymbolFlags uint32

const (
	FlagStatic SymbolFlags = 1 << iota
	FlagAbstract
	FlagVirtual
	FlagOverride
	FlagSealed
	FlagAsync
	FlagConst
	FlagReadOnly
	FlagParams
	FlagRef
	FlagOut
	FlagConstructor
	FlagOperator
	FlagGetter
	FlagSetter
	FlagOptional // parameter with a default value
	FlagPartial
	FlagMetadata // declared by the core library, not by source
)

var flagNames = []struct {
	flag SymbolFlags
	name string
}{
	{FlagStatic, "static"},
	{FlagAbstract, "abstract"},
	{FlagVirtual, "virtual"},
	{FlagOverride, "override"},
	{FlagSealed, "sealed"},
	{FlagAsync, "async"},
	{FlagConst, "const"},
	{FlagReadOnly, "readonly"},
	{FlagParams, "params"},
	{FlagRef, "ref"},
	{FlagOut, "out"},
	{FlagConstructor, "constructor"},
	{FlagOperator, "operator"},
	{FlagGetter, "get"},
	{FlagSetter, "set"},
	{FlagOptional, "optional"},
	{FlagPartial, "partial"},
	{FlagMetadata, "metadata"},
}

// Strings returns a slice of textual flag labels.
func (f SymbolFlags) Strings() []string {
	if f == 0 {
		return nil
	}
	labels := make([]string, 0, 4)
	for _, fn := range flagNames {
		if f&fn.flag != 0 {
			labels = append(labels, fn.name)
		}
	}
	return labels
}

// Symbol is a resolved semantic identity. Symbols belong to the Model (or
// the shared core library) that created them and are never mutated after
// binding completes.
type Symbol struct {
	Kind       SymbolKind
	Name       string
	Flags      SymbolFlags
	Access     Accessibility
	Containing *Symbol // containing type or namespace
	Type       *Symbol // type of a field, property, local or parameter; return type of a method
	Params     []*Symbol
	TypeParams []*Symbol
	TypeArgs   []*Symbol
	Original   *Symbol // generic definition of a constructed type, or member of one
	TypeKind   TypeKind
	Special    SpecialType
	Base       *Symbol
	Interfaces []*Symbol
	Attributes []*Symbol // attribute types applied to the declaration
	Element    *Symbol   // array element type
	Underlying *Symbol   // enum underlying type
	Constant   any       // value of a const field, const local or enum member
	Ordinal    int       // position of a parameter or type parameter
	Decl       *syntax.Node

	fullName string
	hasConst bool         // Constant is set, possibly to nil for a null constant
	imports  *importScope // name resolution context of a source type
	visible  source.Span  // where a local can be referenced

	members []*Symbol
	lazy    sync.Once
	build   func() []*Symbol
}

// Members returns the members declared directly by a type, excluding
// inherited ones.
func (s *Symbol) Members() []*Symbol {
	if s == nil {
		return nil
	}
	if s.build != nil {
		s.lazy.Do(func() { s.members = s.build() })
	}
	return s.members
}

// ConstantValue returns the compile-time value of a constant field, local or
// enum member.
func (s *Symbol) ConstantValue() (any, bool) {
	if s == nil || !s.hasConst {
		return nil, false
	}
	return s.Constant, true
}

// MembersNamed returns direct members called name.
func (s *Symbol) MembersNamed(name string) []*Symbol {
	var out []*Symbol
	for _, m := range s.Members() {
		if m.Name == name {
			out = append(out, m)
		}
	}
	return out
}

func (s *Symbol) Is(f SymbolFlags) bool { return s != nil && s.Flags&f != 0 }
func (s *Symbol) IsStatic() bool        { return s.Is(FlagStatic) }
func (s *Symbol) IsOverride() bool      { return s.Is(FlagOverride) }
func (s *Symbol) IsAsync() bool         { return s.Is(FlagAsync) }
func (s *Symbol) IsConst() bool         { return s.Is(FlagConst) }
func (s *Symbol) IsFromSource() bool    { return s != nil && s.Flags&FlagMetadata == 0 }

// IsType reports whether s is a type symbol, including error types.
func (s *Symbol) IsType() bool { return s != nil && s.Kind == SymbolType }

// IsError reports whether s is missing or an unresolved type.
func (s *Symbol) IsError() bool {
	return s == nil || s.Kind == SymbolType && (s.TypeKind == TypeError || s.TypeKind == TypeNull)
}

// IsReferenceType reports whether values of s can be null without Nullable<T>.
func (s *Symbol) IsReferenceType() bool {
	if s == nil || s.Kind != SymbolType {
		return false
	}
	switch s.TypeKind {
	case TypeClass, TypeInterface, TypeArray:
		return true
	}
	return false
}

// IsValueType reports whether s is a struct or enum type.
func (s *Symbol) IsValueType() bool {
	return s != nil && s.Kind == SymbolType && (s.TypeKind == TypeStruct || s.TypeKind == TypeEnum)
}

// IsNullable reports whether s is a constructed Nullable<T>.
func (s *Symbol) IsNullable() bool {
	return s != nil && s.Original != nil && s.Original.Special == SpecialNullableT
}

// NullableUnderlying returns T for Nullable<T>, and s otherwise.
func (s *Symbol) NullableUnderlying() *Symbol {
	if s.IsNullable() && len(s.TypeArgs) == 1 {
		return s.TypeArgs[0]
	}
	return s
}

// Definition returns the generic definition of s, or s itself.
func (s *Symbol) Definition() *Symbol {
	if s != nil && s.Original != nil {
		return s.Original.Definition()
	}
	return s
}

// ContainingType returns the nearest enclosing type.
func (s *Symbol) ContainingType() *Symbol {
	for c := s.Containing; c != nil; c = c.Containing {
		if c.Kind == SymbolType {
			return c
		}
	}
	return nil
}

// FullName is the metadata name of a type or namespace, like
// "System.Threading.Tasks.Task`1".
func (s *Symbol) FullName() string {
	if s == nil {
		return ""
	}
	if s.Original != nil && s.Kind == SymbolType && s.TypeKind != TypeArray {
		return s.Original.FullName()
	}
	return s.fullName
}

// String renders the symbol the way C# diagnostics display it.
func (s *Symbol) String() string {
	if s == nil {
		return "?"
	}
	if s.Kind != SymbolType {
		if ct := s.ContainingType(); ct != nil && s.Kind != SymbolLocal && s.Kind != SymbolParameter {
			return ct.String() + "." + s.Name
		}
		return s.Name
	}
	switch s.TypeKind {
	case TypeArray:
		return s.Element.String() + "[]"
	case TypeNull:
		return "<null>"
	}
	if kw, ok := keywordBySpecial[s.Special]; ok {
		return kw
	}
	if s.IsNullable() {
		return s.TypeArgs[0].String() + "?"
	}
	if len(s.TypeArgs) > 0 {
		args := make([]string, len(s.TypeArgs))
		for i, a := range s.TypeArgs {
			args[i] = a.String()
		}
		return s.Name + "<" + strings.Join(args, ", ") + ">"
	}
	return s.Name
}

// SameType reports whether a and b denote the same type, comparing
// constructed generics and arrays structurally.
func SameType(a, b *Symbol) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil || a.Kind != SymbolType || b.Kind != SymbolType {
		return false
	}
	if a.TypeKind == TypeArray && b.TypeKind == TypeArray {
		return SameType(a.Element, b.Element)
	}
	if a.Original == nil || a.Original != b.Original || len(a.TypeArgs) != len(b.TypeArgs) {
		return false
	}
	for i := range a.TypeArgs {
		if !SameType(a.TypeArgs[i], b.TypeArgs[i]) {
			return false
		}
	}
	return true
}

// SameSymbol compares members through their generic definitions.
func SameSymbol(a, b *Symbol) bool {
	if a == nil || b == nil {
		return false
	}
	if a.Kind == SymbolType {
		return SameType(a, b)
	}
	return a.Definition() == b.Definition()
}

// IsPublicInstanceMethod reports whether s is a public non-static method
// called name.
func IsPublicInstanceMethod(s *Symbol, name string) bool {
	return s != nil && s.Kind == SymbolMethod && s.Name == name && s.Access == AccessPublic && !s.IsStatic()
}

// IsPublicStaticMethod reports whether s is a public static method called
// name declared by the type with the given special role.
func IsPublicStaticMethod(s *Symbol, containing SpecialType, name string) bool {
	return s != nil && s.Kind == SymbolMethod && s.Name == name && s.Access == AccessPublic && s.IsStatic() &&
		s.Containing != nil && s.Containing.Special == containing
}

// ReturnsSpecial reports whether the method s returns the special type t.
func ReturnsSpecial(s *Symbol, t SpecialType) bool {
	return s != nil && s.Kind == SymbolMethod && s.Type != nil && s.Type.Special == t
}

// HasParameterTypes reports whether the parameters of s have the listed
// special types in order.
func HasParameterTypes(s *Symbol, types ...SpecialType) bool {
	if s == nil || len(s.Params) != len(types) {
		return false
	}
	for i, p := range s.Params {
		if p.Type == nil || p.Type.Special != types[i] {
			return false
		}
	}
	return true
}

var awaitableTypes = map[string]bool{
	"System.Threading.Tasks.Task":        true,
	"System.Threading.Tasks.Task`1":      true,
	"System.Threading.Tasks.ValueTask":   true,
	"System.Threading.Tasks.ValueTask`1": true,
}

// IsAwaitable reports whether values of type t can be awaited: the task
// types, or any type with a GetAwaiter method.
func IsAwaitable(t *Symbol) bool {
	if t == nil || t.Kind != SymbolType || t.IsError() {
		return false
	}
	if awaitableTypes[t.FullName()] {
		return true
	}
	for cur := t; cur != nil; cur = cur.Base {
		if len(cur.MembersNamed("GetAwaiter")) > 0 {
			return true
		}
	}
	return false
}

// IsFlagsEnum reports whether t is an enum marked with [Flags].
func IsFlagsEnum(t *Symbol) bool {
	if t == nil || t.TypeKind != TypeEnum {
		return false
	}
	for _, a := range t.Attributes {
		if a.FullName() == "System.FlagsAttribute" {
			return true
		}
	}
	return false
}

// EnumUnderlyingRange returns the inclusive value range of an enum's
// underlying type. ok is false when t is not an enum.
func EnumUnderlyingRange(t *Symbol) (lo int64, hi uint64, ok bool) {
	if t == nil || t.TypeKind != TypeEnum {
		return 0, 0, false
	}
	u := t.Underlying
	if u == nil {
		return integralRange(SpecialInt32)
	}
	return integralRange(u.Special)
}

func integralRange(st SpecialType) (int64, uint64, bool) {
	switch st {
	case SpecialSByte:
		return -1 << 7, 1<<7 - 1, true
	case SpecialByte:
		return 0, 1<<8 - 1, true
	case SpecialInt16:
		return -1 << 15, 1<<15 - 1, true
	case SpecialUInt16, SpecialChar:
		return 0, 1<<16 - 1, true
	case SpecialInt32:
		return -1 << 31, 1<<31 - 1, true
	case SpecialUInt32:
		return 0, 1<<32 - 1, true
	case SpecialInt64:
		return -1 << 63, 1<<63 - 1, true
	case SpecialUInt64:
		return 0, 1<<64 - 1, true
	}
	return 0, 0, false
}
