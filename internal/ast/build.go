package ast

import (
	"zkc/internal/source"
)

// Constructors for tree nodes. Passes use them for synthesized nodes and
// tests use them to assemble inputs.

func NewIdentifier(name string, span source.Span) *Expr {
	return &Expr{Kind: ExprIdentifier, Span: span, Data: IdentifierData{Name: name}}
}

func NewLiteral(kind LiteralKind, value string, span source.Span) *Expr {
	return &Expr{Kind: ExprLiteral, Span: span, Data: LiteralData{Kind: kind, Value: value}}
}

func NewInteger(t IntType, value string, span source.Span) *Expr {
	return &Expr{Kind: ExprLiteral, Span: span, Data: LiteralData{Kind: LitInteger, Int: t, Value: value}}
}

func NewBinary(op BinaryOp, left, right *Expr, span source.Span) *Expr {
	return &Expr{Kind: ExprBinary, Span: span, Data: BinaryData{Op: op, Left: left, Right: right}}
}

func NewUnary(op UnaryOp, operand *Expr, span source.Span) *Expr {
	return &Expr{Kind: ExprUnary, Span: span, Data: UnaryData{Op: op, Operand: operand}}
}

func NewTernary(cond, ifTrue, ifFalse *Expr, span source.Span) *Expr {
	return &Expr{Kind: ExprTernary, Span: span, Data: TernaryData{Condition: cond, IfTrue: ifTrue, IfFalse: ifFalse}}
}

func NewCall(fn Identifier, args []*Expr, span source.Span) *Expr {
	return &Expr{Kind: ExprCall, Span: span, Data: CallData{Function: fn, Args: args}}
}

func NewTuple(elems []*Expr, span source.Span) *Expr {
	return &Expr{Kind: ExprTuple, Span: span, Data: TupleData{Elements: elems}}
}

func NewStructInit(name Identifier, members []StructMemberInit, span source.Span) *Expr {
	return &Expr{Kind: ExprStructInit, Span: span, Data: StructInitData{Name: name, Members: members}}
}

func NewMemberAccess(inner *Expr, name Identifier, span source.Span) *Expr {
	return &Expr{Kind: ExprMemberAccess, Span: span, Data: MemberAccessData{Inner: inner, Name: name}}
}

func NewTupleAccess(inner *Expr, index uint32, span source.Span) *Expr {
	return &Expr{Kind: ExprTupleAccess, Span: span, Data: TupleAccessData{Inner: inner, Index: index}}
}

// IdentifierName returns the variable name read by e when e is an identifier.
func (e *Expr) IdentifierName() (string, bool) {
	if e == nil || e.Kind != ExprIdentifier {
		return "", false
	}
	data, ok := e.Data.(IdentifierData)
	if !ok {
		return "", false
	}
	return data.Name, true
}

func NewBlock(span source.Span, stmts ...Stmt) *Block {
	return &Block{Statements: stmts, Span: span}
}

func NewDefinition(decl DeclarationType, variable Identifier, t Type, value *Expr, span source.Span) Stmt {
	return Stmt{Kind: StmtDefinition, Span: span, Data: DefinitionData{
		Declaration: decl, Variable: variable, Type: t, Value: value,
	}}
}

func NewAssign(place, value *Expr, span source.Span) Stmt {
	return Stmt{Kind: StmtAssign, Span: span, Data: AssignData{Place: place, Value: value}}
}

func NewConditional(cond *Expr, then *Block, otherwise *Stmt, span source.Span) Stmt {
	return Stmt{Kind: StmtConditional, Span: span, Data: ConditionalData{Condition: cond, Then: then, Otherwise: otherwise}}
}

func NewIteration(variable Identifier, t Type, start, stop *Expr, inclusive bool, body *Block, span source.Span) Stmt {
	return Stmt{Kind: StmtIteration, Span: span, Data: IterationData{
		Variable: variable, Type: t, Start: start, Stop: stop, Inclusive: inclusive, Block: body,
	}}
}

func NewReturn(value *Expr, span source.Span) Stmt {
	return Stmt{Kind: StmtReturn, Span: span, Data: ReturnData{Value: value}}
}

func NewConsole(kind ConsoleKind, args []*Expr, span source.Span) Stmt {
	return Stmt{Kind: StmtConsole, Span: span, Data: ConsoleData{Kind: kind, Args: args}}
}

func NewBlockStmt(b *Block) Stmt {
	return Stmt{Kind: StmtBlock, Span: b.Span, Data: BlockStmtData{Block: b}}
}

func NewExpressionStmt(e *Expr, span source.Span) Stmt {
	return Stmt{Kind: StmtExpression, Span: span, Data: ExpressionData{Expr: e}}
}

func NewIncrement(mapping Identifier, key, amount *Expr, span source.Span) Stmt {
	return Stmt{Kind: StmtIncrement, Span: span, Data: MappingUpdateData{Mapping: mapping, Key: key, Amount: amount}}
}

func NewDecrement(mapping Identifier, key, amount *Expr, span source.Span) Stmt {
	return Stmt{Kind: StmtDecrement, Span: span, Data: MappingUpdateData{Mapping: mapping, Key: key, Amount: amount}}
}
