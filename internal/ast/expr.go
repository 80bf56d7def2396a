package ast

import (
	"fmt"

	"zkc/internal/source"
)

// ExprKind enumerates expression kinds.
type ExprKind uint8

const (
	// ExprIdentifier reads a variable.
	ExprIdentifier ExprKind = iota
	ExprLiteral
	ExprBinary
	ExprUnary
	ExprTernary
	// ExprCall calls a function of this or an external program.
	ExprCall
	ExprTuple
	// ExprStructInit builds a struct or record value.
	ExprStructInit
	ExprMemberAccess
	ExprTupleAccess
	// ExprAssociatedFunction calls a core function such as BHP256::hash.
	ExprAssociatedFunction
	// ExprAssociatedConstant reads a core constant such as group::GEN.
	ExprAssociatedConstant
)

var exprKindNames = []string{
	ExprIdentifier:         "identifier",
	ExprLiteral:            "literal",
	ExprBinary:             "binary",
	ExprUnary:              "unary",
	ExprTernary:            "ternary",
	ExprCall:               "call",
	ExprTuple:              "tuple",
	ExprStructInit:         "struct_init",
	ExprMemberAccess:       "member_access",
	ExprTupleAccess:        "tuple_access",
	ExprAssociatedFunction: "associated_function",
	ExprAssociatedConstant: "associated_constant",
}

func (k ExprKind) String() string { return enumName(k, exprKindNames) }

func (k ExprKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *ExprKind) UnmarshalText(text []byte) error {
	v, err := parseEnum[ExprKind](text, exprKindNames, "expression kind")
	*k = v
	return err
}

// Expr is an expression node. Data holds the payload selected by Kind.
type Expr struct {
	Kind ExprKind
	Span source.Span
	Data ExprData
}

// ExprData is implemented by every expression payload.
type ExprData interface {
	exprData()
}

// IdentifierData holds data for ExprIdentifier.
type IdentifierData struct {
	Name string `json:"name"`
}

func (IdentifierData) exprData() {}

// LiteralKind enumerates literal kinds.
type LiteralKind uint8

const (
	LitAddress LiteralKind = iota
	LitBoolean
	LitField
	LitGroup
	LitInteger
	LitScalar
	LitString
)

var literalKindNames = []string{
	LitAddress: "address",
	LitBoolean: "boolean",
	LitField:   "field",
	LitGroup:   "group",
	LitInteger: "integer",
	LitScalar:  "scalar",
	LitString:  "string",
}

func (k LiteralKind) String() string { return enumName(k, literalKindNames) }

func (k LiteralKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *LiteralKind) UnmarshalText(text []byte) error {
	v, err := parseEnum[LiteralKind](text, literalKindNames, "literal kind")
	*k = v
	return err
}

// LiteralData holds data for ExprLiteral. Value is the literal text without
// its type suffix; Int is meaningful for LitInteger.
type LiteralData struct {
	Kind  LiteralKind `json:"kind"`
	Int   IntType     `json:"int,omitempty"`
	Value string      `json:"value"`
}

func (LiteralData) exprData() {}

// BinaryOp enumerates binary operators.
type BinaryOp uint8

const (
	OpAdd BinaryOp = iota
	OpAddWrapped
	OpSub
	OpSubWrapped
	OpMul
	OpMulWrapped
	OpDiv
	OpRem
	OpPow
	OpAnd
	OpOr
	OpBitAnd
	OpBitOr
	OpXor
	OpShl
	OpShr
	OpEq
	OpNeq
	OpLt
	OpLte
	OpGt
	OpGte
)

var binaryOpNames = []string{
	OpAdd:        "+",
	OpAddWrapped: "add_wrapped",
	OpSub:        "-",
	OpSubWrapped: "sub_wrapped",
	OpMul:        "*",
	OpMulWrapped: "mul_wrapped",
	OpDiv:        "/",
	OpRem:        "%",
	OpPow:        "**",
	OpAnd:        "&&",
	OpOr:         "||",
	OpBitAnd:     "&",
	OpBitOr:      "|",
	OpXor:        "^",
	OpShl:        "<<",
	OpShr:        ">>",
	OpEq:         "==",
	OpNeq:        "!=",
	OpLt:         "<",
	OpLte:        "<=",
	OpGt:         ">",
	OpGte:        ">=",
}

func (op BinaryOp) String() string { return enumName(op, binaryOpNames) }

func (op BinaryOp) MarshalText() ([]byte, error) { return []byte(op.String()), nil }

func (op *BinaryOp) UnmarshalText(text []byte) error {
	v, err := parseEnum[BinaryOp](text, binaryOpNames, "binary operator")
	*op = v
	return err
}

// IsMethodStyle reports whether the operator prints as a.op(b).
func (op BinaryOp) IsMethodStyle() bool {
	return op == OpAddWrapped || op == OpSubWrapped || op == OpMulWrapped
}

// BinaryData holds data for ExprBinary.
type BinaryData struct {
	Op    BinaryOp `json:"op"`
	Left  *Expr    `json:"left"`
	Right *Expr    `json:"right"`
}

func (BinaryData) exprData() {}

// UnaryOp enumerates unary operators.
type UnaryOp uint8

const (
	OpNeg UnaryOp = iota
	OpNot
	OpAbs
	OpDouble
	OpInverse
	OpSquare
)

var unaryOpNames = []string{
	OpNeg:     "-",
	OpNot:     "!",
	OpAbs:     "abs",
	OpDouble:  "double",
	OpInverse: "inv",
	OpSquare:  "square",
}

func (op UnaryOp) String() string { return enumName(op, unaryOpNames) }

func (op UnaryOp) MarshalText() ([]byte, error) { return []byte(op.String()), nil }

func (op *UnaryOp) UnmarshalText(text []byte) error {
	v, err := parseEnum[UnaryOp](text, unaryOpNames, "unary operator")
	*op = v
	return err
}

// UnaryData holds data for ExprUnary.
type UnaryData struct {
	Op      UnaryOp `json:"op"`
	Operand *Expr   `json:"operand"`
}

func (UnaryData) exprData() {}

// TernaryData holds data for ExprTernary.
type TernaryData struct {
	Condition *Expr `json:"condition"`
	IfTrue    *Expr `json:"if_true"`
	IfFalse   *Expr `json:"if_false"`
}

func (TernaryData) exprData() {}

// CallData holds data for ExprCall. External names the callee's program when
// it lives outside the current one.
type CallData struct {
	Function Identifier `json:"function"`
	External string     `json:"external,omitempty"`
	Args     []*Expr    `json:"args"`
}

func (CallData) exprData() {}

// TupleData holds data for ExprTuple.
type TupleData struct {
	Elements []*Expr `json:"elements"`
}

func (TupleData) exprData() {}

// StructMemberInit is one member initializer. A nil Value is the shorthand
// form `Foo { a }`, meaning `Foo { a: a }`.
type StructMemberInit struct {
	Identifier Identifier `json:"identifier"`
	Value      *Expr      `json:"value,omitempty"`
}

// StructInitData holds data for ExprStructInit.
type StructInitData struct {
	Name    Identifier         `json:"name"`
	Members []StructMemberInit `json:"members"`
}

func (StructInitData) exprData() {}

// MemberAccessData holds data for ExprMemberAccess.
type MemberAccessData struct {
	Inner *Expr      `json:"inner"`
	Name  Identifier `json:"name"`
}

func (MemberAccessData) exprData() {}

// TupleAccessData holds data for ExprTupleAccess.
type TupleAccessData struct {
	Inner *Expr  `json:"inner"`
	Index uint32 `json:"index"`
}

func (TupleAccessData) exprData() {}

// AssociatedFunctionData holds data for ExprAssociatedFunction.
type AssociatedFunctionData struct {
	Type Identifier `json:"type"`
	Name Identifier `json:"name"`
	Args []*Expr    `json:"args"`
}

func (AssociatedFunctionData) exprData() {}

// AssociatedConstantData holds data for ExprAssociatedConstant.
type AssociatedConstantData struct {
	Type Identifier `json:"type"`
	Name Identifier `json:"name"`
}

func (AssociatedConstantData) exprData() {}

// UnknownKindError reports a node kind that has no payload type.
type UnknownKindError struct {
	What string
	Kind uint8
}

func (e *UnknownKindError) Error() string {
	return fmt.Sprintf("unknown %s kind %d", e.What, e.Kind)
}

// newExprData decodes the payload for kind through decode.
func newExprData(kind ExprKind, decode func(any) error) (ExprData, error) {
	switch kind {
	case ExprIdentifier:
		return decodeExpr[IdentifierData](decode)
	case ExprLiteral:
		return decodeExpr[LiteralData](decode)
	case ExprBinary:
		return decodeExpr[BinaryData](decode)
	case ExprUnary:
		return decodeExpr[UnaryData](decode)
	case ExprTernary:
		return decodeExpr[TernaryData](decode)
	case ExprCall:
		return decodeExpr[CallData](decode)
	case ExprTuple:
		return decodeExpr[TupleData](decode)
	case ExprStructInit:
		return decodeExpr[StructInitData](decode)
	case ExprMemberAccess:
		return decodeExpr[MemberAccessData](decode)
	case ExprTupleAccess:
		return decodeExpr[TupleAccessData](decode)
	case ExprAssociatedFunction:
		return decodeExpr[AssociatedFunctionData](decode)
	case ExprAssociatedConstant:
		return decodeExpr[AssociatedConstantData](decode)
	default:
		return nil, &UnknownKindError{What: "expression", Kind: uint8(kind)}
	}
}

func decodeExpr[T ExprData](decode func(any) error) (ExprData, error) {
	var d T
	if err := decode(&d); err != nil {
		return nil, err
	}
	return d, nil
}
