package token

// Kind represents the category of a source token.
type Kind uint8

const (
	// Invalid indicates an erroneous token.
	Invalid Kind = iota
	// EOF marks the end of the source input.
	EOF

	// Ident represents an identifier, including contextual keywords.
	Ident

	// Literals.
	IntLit                // integer literal
	RealLit               // real literal
	StringLit             // regular or verbatim string literal
	InterpolatedStringLit // interpolated string literal, kept as one token
	CharLit               // character literal

	// Reserved keywords.
	KwAbstract  // abstract
	KwAs        // as
	KwBase      // base
	KwBool      // bool
	KwBreak     // break
	KwByte      // byte
	KwCase      // case
	KwCatch     // catch
	KwChar      // char
	KwClass     // class
	KwConst     // const
	KwContinue  // continue
	KwDecimal   // decimal
	KwDefault   // default
	KwDelegate  // delegate
	KwDo        // do
	KwDouble    // double
	KwElse      // else
	KwEnum      // enum
	KwEvent     // event
	KwExplicit  // explicit
	KwExtern    // extern
	KwFalse     // false
	KwFinally   // finally
	KwFixed     // fixed
	KwFloat     // float
	KwFor       // for
	KwForeach   // foreach
	KwIf        // if
	KwImplicit  // implicit
	KwIn        // in
	KwInt       // int
	KwInterface // interface
	KwInternal  // internal
	KwIs        // is
	KwLock      // lock
	KwLong      // long
	KwNamespace // namespace
	KwNew       // new
	KwNull      // null
	KwObject    // object
	KwOperator  // operator
	KwOut       // out
	KwOverride  // override
	KwParams    // params
	KwPrivate   // private
	KwProtected // protected
	KwPublic    // public
	KwReadonly  // readonly
	KwRef       // ref
	KwReturn    // return
	KwSbyte     // sbyte
	KwSealed    // sealed
	KwShort     // short
	KwSizeof    // sizeof
	KwStatic    // static
	KwString    // string
	KwStruct    // struct
	KwSwitch    // switch
	KwThis      // this
	KwThrow     // throw
	KwTrue      // true
	KwTry       // try
	KwTypeof    // typeof
	KwUint      // uint
	KwUlong     // ulong
	KwUnchecked // unchecked
	KwUnsafe    // unsafe
	KwUshort    // ushort
	KwUsing     // using
	KwVirtual   // virtual
	KwVoid      // void
	KwVolatile  // volatile
	KwWhile     // while

	// Punctuation and operators.
	Plus                   // +
	Minus                  // -
	Star                   // *
	Slash                  // /
	Percent                // %
	Assign                 // =
	PlusAssign             // +=
	MinusAssign            // -=
	StarAssign             // *=
	SlashAssign            // /=
	PercentAssign          // %=
	AmpAssign              // &=
	PipeAssign             // |=
	CaretAssign            // ^=
	ShlAssign              // <<=
	QuestionQuestionAssign // ??=
	EqEq                   // ==
	Bang                   // !
	BangEq                 // !=
	Lt                     // <
	LtEq                   // <=
	Gt                     // >
	GtEq                   // >=
	Shl                    // <<
	Amp                    // &
	Pipe                   // |
	Caret                  // ^
	Tilde                  // ~
	AndAnd                 // &&
	OrOr                   // ||
	PlusPlus               // ++
	MinusMinus             // --
	Question               // ?
	QuestionQuestion       // ??
	QuestionDot            // ?.
	Colon                  // :
	ColonColon             // ::
	Semicolon              // ;
	Comma                  // ,
	Dot                    // .
	Arrow                  // ->
	FatArrow               // =>
	LParen                 // (
	RParen                 // )
	LBrace                 // {
	RBrace                 // }
	LBracket               // [
	RBracket               // ]

	kindCount
)

// kwFirst/kwLast bound the reserved keyword range.
const (
	kwFirst    = KwAbstract
	kwLast     = KwWhile
	punctFirst = Plus
	punctLast  = RBracket
)

var kindText = [kindCount]string{
	Invalid:                "<invalid>",
	EOF:                    "<eof>",
	Ident:                  "identifier",
	IntLit:                 "int literal",
	RealLit:                "real literal",
	StringLit:              "string literal",
	InterpolatedStringLit:  "interpolatedstring literal",
	CharLit:                "char literal",
	KwAbstract:             "abstract",
	KwAs:                   "as",
	KwBase:                 "base",
	KwBool:                 "bool",
	KwBreak:                "break",
	KwByte:                 "byte",
	KwCase:                 "case",
	KwCatch:                "catch",
	KwChar:                 "char",
	KwClass:                "class",
	KwConst:                "const",
	KwContinue:             "continue",
	KwDecimal:              "decimal",
	KwDefault:              "default",
	KwDelegate:             "delegate",
	KwDo:                   "do",
	KwDouble:               "double",
	KwElse:                 "else",
	KwEnum:                 "enum",
	KwEvent:                "event",
	KwExplicit:             "explicit",
	KwExtern:               "extern",
	KwFalse:                "false",
	KwFinally:              "finally",
	KwFixed:                "fixed",
	KwFloat:                "float",
	KwFor:                  "for",
	KwForeach:              "foreach",
	KwIf:                   "if",
	KwImplicit:             "implicit",
	KwIn:                   "in",
	KwInt:                  "int",
	KwInterface:            "interface",
	KwInternal:             "internal",
	KwIs:                   "is",
	KwLock:                 "lock",
	KwLong:                 "long",
	KwNamespace:            "namespace",
	KwNew:                  "new",
	KwNull:                 "null",
	KwObject:               "object",
	KwOperator:             "operator",
	KwOut:                  "out",
	KwOverride:             "override",
	KwParams:               "params",
	KwPrivate:              "private",
	KwProtected:            "protected",
	KwPublic:               "public",
	KwReadonly:             "readonly",
	KwRef:                  "ref",
	KwReturn:               "return",
	KwSbyte:                "sbyte",
	KwSealed:               "sealed",
	KwShort:                "short",
	KwSizeof:               "sizeof",
	KwStatic:               "static",
	KwString:               "string",
	KwStruct:               "struct",
	KwSwitch:               "switch",
	KwThis:                 "this",
	KwThrow:                "throw",
	KwTrue:                 "true",
	KwTry:                  "try",
	KwTypeof:               "typeof",
	KwUint:                 "uint",
	KwUlong:                "ulong",
	KwUnchecked:            "unchecked",
	KwUnsafe:               "unsafe",
	KwUshort:               "ushort",
	KwUsing:                "using",
	KwVirtual:              "virtual",
	KwVoid:                 "void",
	KwVolatile:             "volatile",
	KwWhile:                "while",
	Plus:                   "+",
	Minus:                  "-",
	Star:                   "*",
	Slash:                  "/",
	Percent:                "%",
	Assign:                 "=",
	PlusAssign:             "+=",
	MinusAssign:            "-=",
	StarAssign:             "*=",
	SlashAssign:            "/=",
	PercentAssign:          "%=",
	AmpAssign:              "&=",
	PipeAssign:             "|=",
	CaretAssign:            "^=",
	ShlAssign:              "<<=",
	QuestionQuestionAssign: "??=",
	EqEq:                   "==",
	Bang:                   "!",
	BangEq:                 "!=",
	Lt:                     "<",
	LtEq:                   "<=",
	Gt:                     ">",
	GtEq:                   ">=",
	Shl:                    "<<",
	Amp:                    "&",
	Pipe:                   "|",
	Caret:                  "^",
	Tilde:                  "~",
	AndAnd:                 "&&",
	OrOr:                   "||",
	PlusPlus:               "++",
	MinusMinus:             "--",
	Question:               "?",
	QuestionQuestion:       "??",
	QuestionDot:            "?.",
	Colon:                  ":",
	ColonColon:             "::",
	Semicolon:              ";",
	Comma:                  ",",
	Dot:                    ".",
	Arrow:                  "->",
	FatArrow:               "=>",
	LParen:                 "(",
	RParen:                 ")",
	LBrace:                 "{",
	RBrace:                 "}",
	LBracket:               "[",
	RBracket:               "]",
}

// String returns the source spelling for keywords and punctuation and a
// descriptive name for the remaining kinds.
func (k Kind) String() string {
	if k < kindCount {
		return kindText[k]
	}
	return "<unknown>"
}

// IsKeyword reports whether k is a reserved keyword.
func (k Kind) IsKeyword() bool { return k >= kwFirst && k <= kwLast }

// IsPunctOrOp reports whether k is punctuation or an operator.
func (k Kind) IsPunctOrOp() bool { return k >= punctFirst && k <= punctLast }

// IsPredefinedType reports whether k names a built-in type keyword.
func (k Kind) IsPredefinedType() bool {
	switch k {
	case KwBool, KwByte, KwSbyte, KwShort, KwUshort, KwInt, KwUint, KwLong, KwUlong,
		KwChar, KwFloat, KwDouble, KwDecimal, KwString, KwObject, KwVoid:
		return true
	default:
		return false
	}
}

// IsModifier reports whether k may appear in a declaration modifier list.
func (k Kind) IsModifier() bool {
	switch k {
	case KwPublic, KwPrivate, KwProtected, KwInternal, KwStatic, KwAbstract, KwSealed,
		KwVirtual, KwOverride, KwReadonly, KwConst, KwExtern, KwUnsafe, KwVolatile, KwNew:
		return true
	default:
		return false
	}
}
