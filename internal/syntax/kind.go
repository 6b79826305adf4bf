package syntax

// Kind is the closed set of node variants. Every node has exactly one kind
// and the kind fixes the meaning of each child slot.
type Kind uint16

const (
	KindNone Kind = iota
	KindToken
	KindList
	KindError

	// Declarations
	KindCompilationUnit
	KindUsingDirective
	KindNamespaceDecl
	KindFileScopedNamespaceDecl
	KindClassDecl
	KindStructDecl
	KindInterfaceDecl
	KindEnumDecl
	KindEnumMember
	KindMethodDecl
	KindConstructorDecl
	KindFieldDecl
	KindPropertyDecl
	KindAccessorList
	KindAccessor
	KindParameterList
	KindParameter
	KindTypeParameterList
	KindBaseList
	KindAttributeList
	KindAttribute
	KindVariableDecl
	KindVariableDeclarator
	KindEqualsValue
	KindArrowBody

	// Statements
	KindBlock
	KindLocalDeclStmt
	KindExprStmt
	KindIfStmt
	KindElseClause
	KindReturnStmt
	KindWhileStmt
	KindForeachStmt
	KindThrowStmt
	KindBreakStmt
	KindContinueStmt
	KindEmptyStmt
	KindOpaqueStmt // raw tokens of a statement the tree does not model

	// Names and types
	KindIdentifierName
	KindGenericName
	KindTypeArgumentList
	KindQualifiedName
	KindPredefinedType
	KindNullableType
	KindArrayType

	// Literals
	KindNumericLiteral
	KindStringLiteral
	KindCharLiteral
	KindInterpolatedString
	KindTrueLiteral
	KindFalseLiteral
	KindNullLiteral
	KindDefaultLiteral

	// Binary expressions: [left, operator, right]
	KindAddExpr
	KindSubtractExpr
	KindMultiplyExpr
	KindDivideExpr
	KindModuloExpr
	KindLeftShiftExpr
	KindRightShiftExpr
	KindLessThanExpr
	KindLessThanOrEqualExpr
	KindGreaterThanExpr
	KindGreaterThanOrEqualExpr
	KindEqualsExpr
	KindNotEqualsExpr
	KindBitwiseAndExpr
	KindExclusiveOrExpr
	KindBitwiseOrExpr
	KindLogicalAndExpr
	KindLogicalOrExpr
	KindCoalesceExpr
	KindAsExpr

	// Assignments: [left, operator, right]
	KindSimpleAssignExpr
	KindAddAssignExpr
	KindSubtractAssignExpr
	KindMultiplyAssignExpr
	KindDivideAssignExpr
	KindModuloAssignExpr
	KindAndAssignExpr
	KindOrAssignExpr
	KindExclusiveOrAssignExpr
	KindLeftShiftAssignExpr
	KindCoalesceAssignExpr

	// Prefix unary: [operator, operand]
	KindLogicalNotExpr
	KindUnaryMinusExpr
	KindUnaryPlusExpr
	KindBitwiseNotExpr
	KindPreIncrementExpr
	KindPreDecrementExpr
	KindAwaitExpr

	// Postfix unary: [operand, operator]
	KindPostIncrementExpr
	KindPostDecrementExpr
	KindSuppressNullableWarningExpr

	// Other expressions
	KindParenExpr
	KindMemberAccessExpr
	KindConditionalAccessExpr
	KindMemberBindingExpr
	KindElementBindingExpr
	KindInvocationExpr
	KindElementAccessExpr
	KindArgumentList
	KindBracketedArgumentList
	KindArgument
	KindThisExpr
	KindBaseExpr
	KindObjectCreationExpr
	KindDefaultExpr
	KindTypeofExpr
	KindConditionalExpr
	KindCastExpr
	KindIsPatternExpr

	// Patterns
	KindConstantPattern
	KindNotPattern
	KindTypePattern
	KindDeclarationPattern

	kindCount
)

// NumKinds bounds Kind values; tables indexed by Kind have this length.
const NumKinds = int(kindCount)

var kindNames = [kindCount]string{
	KindNone:                        "None",
	KindToken:                       "Token",
	KindList:                        "List",
	KindError:                       "Error",
	KindCompilationUnit:             "CompilationUnit",
	KindUsingDirective:              "UsingDirective",
	KindNamespaceDecl:               "NamespaceDecl",
	KindFileScopedNamespaceDecl:     "FileScopedNamespaceDecl",
	KindClassDecl:                   "ClassDecl",
	KindStructDecl:                  "StructDecl",
	KindInterfaceDecl:               "InterfaceDecl",
	KindEnumDecl:                    "EnumDecl",
	KindEnumMember:                  "EnumMember",
	KindMethodDecl:                  "MethodDecl",
	KindConstructorDecl:             "ConstructorDecl",
	KindFieldDecl:                   "FieldDecl",
	KindPropertyDecl:                "PropertyDecl",
	KindAccessorList:                "AccessorList",
	KindAccessor:                    "Accessor",
	KindParameterList:               "ParameterList",
	KindParameter:                   "Parameter",
	KindTypeParameterList:           "TypeParameterList",
	KindBaseList:                    "BaseList",
	KindAttributeList:               "AttributeList",
	KindAttribute:                   "Attribute",
	KindVariableDecl:                "VariableDecl",
	KindVariableDeclarator:          "VariableDeclarator",
	KindEqualsValue:                 "EqualsValue",
	KindArrowBody:                   "ArrowBody",
	KindBlock:                       "Block",
	KindLocalDeclStmt:               "LocalDeclStmt",
	KindExprStmt:                    "ExprStmt",
	KindIfStmt:                      "IfStmt",
	KindElseClause:                  "ElseClause",
	KindReturnStmt:                  "ReturnStmt",
	KindWhileStmt:                   "WhileStmt",
	KindForeachStmt:                 "ForeachStmt",
	KindThrowStmt:                   "ThrowStmt",
	KindBreakStmt:                   "BreakStmt",
	KindContinueStmt:                "ContinueStmt",
	KindEmptyStmt:                   "EmptyStmt",
	KindOpaqueStmt:                  "OpaqueStmt",
	KindIdentifierName:              "IdentifierName",
	KindGenericName:                 "GenericName",
	KindTypeArgumentList:            "TypeArgumentList",
	KindQualifiedName:               "QualifiedName",
	KindPredefinedType:              "PredefinedType",
	KindNullableType:                "NullableType",
	KindArrayType:                   "ArrayType",
	KindNumericLiteral:              "NumericLiteral",
	KindStringLiteral:               "StringLiteral",
	KindCharLiteral:                 "CharLiteral",
	KindInterpolatedString:          "InterpolatedString",
	KindTrueLiteral:                 "TrueLiteral",
	KindFalseLiteral:                "FalseLiteral",
	KindNullLiteral:                 "NullLiteral",
	KindDefaultLiteral:              "DefaultLiteral",
	KindAddExpr:                     "AddExpr",
	KindSubtractExpr:                "SubtractExpr",
	KindMultiplyExpr:                "MultiplyExpr",
	KindDivideExpr:                  "DivideExpr",
	KindModuloExpr:                  "ModuloExpr",
	KindLeftShiftExpr:               "LeftShiftExpr",
	KindRightShiftExpr:              "RightShiftExpr",
	KindLessThanExpr:                "LessThanExpr",
	KindLessThanOrEqualExpr:         "LessThanOrEqualExpr",
	KindGreaterThanExpr:             "GreaterThanExpr",
	KindGreaterThanOrEqualExpr:      "GreaterThanOrEqualExpr",
	KindEqualsExpr:                  "EqualsExpr",
	KindNotEqualsExpr:               "NotEqualsExpr",
	KindBitwiseAndExpr:              "BitwiseAndExpr",
	KindExclusiveOrExpr:             "ExclusiveOrExpr",
	KindBitwiseOrExpr:               "BitwiseOrExpr",
	KindLogicalAndExpr:              "LogicalAndExpr",
	KindLogicalOrExpr:               "LogicalOrExpr",
	KindCoalesceExpr:                "CoalesceExpr",
	KindAsExpr:                      "AsExpr",
	KindSimpleAssignExpr:            "SimpleAssignExpr",
	KindAddAssignExpr:               "AddAssignExpr",
	KindSubtractAssignExpr:          "SubtractAssignExpr",
	KindMultiplyAssignExpr:          "MultiplyAssignExpr",
	KindDivideAssignExpr:            "DivideAssignExpr",
	KindModuloAssignExpr:            "ModuloAssignExpr",
	KindAndAssignExpr:               "AndAssignExpr",
	KindOrAssignExpr:                "OrAssignExpr",
	KindExclusiveOrAssignExpr:       "ExclusiveOrAssignExpr",
	KindLeftShiftAssignExpr:         "LeftShiftAssignExpr",
	KindCoalesceAssignExpr:          "CoalesceAssignExpr",
	KindLogicalNotExpr:              "LogicalNotExpr",
	KindUnaryMinusExpr:              "UnaryMinusExpr",
	KindUnaryPlusExpr:               "UnaryPlusExpr",
	KindBitwiseNotExpr:              "BitwiseNotExpr",
	KindPreIncrementExpr:            "PreIncrementExpr",
	KindPreDecrementExpr:            "PreDecrementExpr",
	KindAwaitExpr:                   "AwaitExpr",
	KindPostIncrementExpr:           "PostIncrementExpr",
	KindPostDecrementExpr:           "PostDecrementExpr",
	KindSuppressNullableWarningExpr: "SuppressNullableWarningExpr",
	KindParenExpr:                   "ParenExpr",
	KindMemberAccessExpr:            "MemberAccessExpr",
	KindConditionalAccessExpr:       "ConditionalAccessExpr",
	KindMemberBindingExpr:           "MemberBindingExpr",
	KindElementBindingExpr:          "ElementBindingExpr",
	KindInvocationExpr:              "InvocationExpr",
	KindElementAccessExpr:           "ElementAccessExpr",
	KindArgumentList:                "ArgumentList",
	KindBracketedArgumentList:       "BracketedArgumentList",
	KindArgument:                    "Argument",
	KindThisExpr:                    "ThisExpr",
	KindBaseExpr:                    "BaseExpr",
	KindObjectCreationExpr:          "ObjectCreationExpr",
	KindDefaultExpr:                 "DefaultExpr",
	KindTypeofExpr:                  "TypeofExpr",
	KindConditionalExpr:             "ConditionalExpr",
	KindCastExpr:                    "CastExpr",
	KindIsPatternExpr:               "IsPatternExpr",
	KindConstantPattern:             "ConstantPattern",
	KindNotPattern:                  "NotPattern",
	KindTypePattern:                 "TypePattern",
	KindDeclarationPattern:          "DeclarationPattern",
}

func (k Kind) String() string {
	if k < kindCount {
		return kindNames[k]
	}
	return "Kind(?)"
}

// IsBinaryExpr reports whether nodes of kind k have the [left, operator, right] shape
// of a binary operator expression.
func (k Kind) IsBinaryExpr() bool { return k >= KindAddExpr && k <= KindAsExpr }

// IsAssignment reports whether k is a simple or compound assignment.
func (k Kind) IsAssignment() bool { return k >= KindSimpleAssignExpr && k <= KindCoalesceAssignExpr }

// IsPrefixUnary reports whether k has the [operator, operand] shape.
func (k Kind) IsPrefixUnary() bool { return k >= KindLogicalNotExpr && k <= KindAwaitExpr }

// IsPostfixUnary reports whether k has the [operand, operator] shape.
func (k Kind) IsPostfixUnary() bool { return k >= KindPostIncrementExpr && k <= KindSuppressNullableWarningExpr }

// IsLiteral reports whether k is a literal expression.
func (k Kind) IsLiteral() bool { return k >= KindNumericLiteral && k <= KindDefaultLiteral }

// IsTypeDecl reports whether k declares a named type.
func (k Kind) IsTypeDecl() bool {
	switch k {
	case KindClassDecl, KindStructDecl, KindInterfaceDecl, KindEnumDecl:
		return true
	}
	return false
}

// IsStatement reports whether k is a statement.
func (k Kind) IsStatement() bool { return k >= KindBlock && k <= KindOpaqueStmt }

// IsName reports whether k is a simple or qualified name.
func (k Kind) IsName() bool {
	switch k {
	case KindIdentifierName, KindGenericName, KindQualifiedName:
		return true
	}
	return false
}

// IsType reports whether k can appear in type position.
func (k Kind) IsType() bool {
	switch k {
	case KindIdentifierName, KindGenericName, KindQualifiedName, KindPredefinedType,
		KindNullableType, KindArrayType:
		return true
	}
	return false
}

// IsExpression reports whether k is an expression.
func (k Kind) IsExpression() bool {
	switch {
	case k.IsBinaryExpr(), k.IsAssignment(), k.IsPrefixUnary(), k.IsPostfixUnary(), k.IsLiteral():
		return true
	case k >= KindIdentifierName && k <= KindQualifiedName:
		return true
	case k == KindPredefinedType:
		return true
	}
	switch k {
	case KindParenExpr, KindMemberAccessExpr, KindConditionalAccessExpr, KindMemberBindingExpr,
		KindElementBindingExpr, KindInvocationExpr, KindElementAccessExpr, KindThisExpr, KindBaseExpr,
		KindObjectCreationExpr, KindDefaultExpr, KindTypeofExpr, KindConditionalExpr, KindCastExpr,
		KindIsPatternExpr:
		return true
	}
	return false
}
