package ast

import (
	"zkc/internal/source"
)

// StmtKind enumerates statement kinds.
type StmtKind uint8

const (
	// StmtDefinition declares a variable: let x: T = e; / const x: T = e;
	StmtDefinition StmtKind = iota
	// StmtAssign rebinds an existing variable: x = e;
	StmtAssign
	// StmtConditional is if/else. The else branch is a Block or another Conditional.
	StmtConditional
	// StmtIteration is a bounded for loop over an integer range.
	StmtIteration
	// StmtReturn returns from a function, optionally passing finalize arguments.
	StmtReturn
	// StmtConsole is an assertion.
	StmtConsole
	// StmtBlock is a nested block.
	StmtBlock
	// StmtExpression evaluates an expression for its effect (a call).
	StmtExpression
	// StmtIncrement adds to a mapping entry in finalize code.
	StmtIncrement
	// StmtDecrement subtracts from a mapping entry in finalize code.
	StmtDecrement
)

var stmtKindNames = []string{
	StmtDefinition:  "definition",
	StmtAssign:      "assign",
	StmtConditional: "conditional",
	StmtIteration:   "iteration",
	StmtReturn:      "return",
	StmtConsole:     "console",
	StmtBlock:       "block",
	StmtExpression:  "expression",
	StmtIncrement:   "increment",
	StmtDecrement:   "decrement",
}

func (k StmtKind) String() string { return enumName(k, stmtKindNames) }

func (k StmtKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *StmtKind) UnmarshalText(text []byte) error {
	v, err := parseEnum[StmtKind](text, stmtKindNames, "statement kind")
	*k = v
	return err
}

// Stmt is a statement node. Data holds the payload selected by Kind.
type Stmt struct {
	Kind StmtKind
	Span source.Span
	Data StmtData
}

// StmtData is implemented by every statement payload.
type StmtData interface {
	stmtData()
}

// DeclarationType distinguishes let from const definitions.
type DeclarationType uint8

const (
	DeclLet DeclarationType = iota
	DeclConst
)

var declarationNames = []string{DeclLet: "let", DeclConst: "const"}

func (d DeclarationType) String() string { return enumName(d, declarationNames) }

func (d DeclarationType) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

func (d *DeclarationType) UnmarshalText(text []byte) error {
	v, err := parseEnum[DeclarationType](text, declarationNames, "declaration type")
	*d = v
	return err
}

// DefinitionData holds data for StmtDefinition.
type DefinitionData struct {
	Declaration DeclarationType `json:"declaration"`
	Variable    Identifier      `json:"variable"`
	Type        Type            `json:"type"`
	Value       *Expr           `json:"value"`
}

func (DefinitionData) stmtData() {}

// AssignData holds data for StmtAssign.
type AssignData struct {
	Place *Expr `json:"place"`
	Value *Expr `json:"value"`
}

func (AssignData) stmtData() {}

// ConditionalData holds data for StmtConditional.
type ConditionalData struct {
	Condition *Expr  `json:"condition"`
	Then      *Block `json:"then"`
	Otherwise *Stmt  `json:"otherwise,omitempty"` // nil, StmtBlock or StmtConditional
}

func (ConditionalData) stmtData() {}

// IterationData holds data for StmtIteration: for i: T in start..stop { ... }.
type IterationData struct {
	Variable  Identifier `json:"variable"`
	Type      Type       `json:"type"`
	Start     *Expr      `json:"start"`
	Stop      *Expr      `json:"stop"`
	Inclusive bool       `json:"inclusive,omitempty"`
	Block     *Block     `json:"block"`
}

func (IterationData) stmtData() {}

// ReturnData holds data for StmtReturn.
type ReturnData struct {
	Value             *Expr   `json:"value,omitempty"`
	FinalizeArguments []*Expr `json:"finalize_arguments,omitempty"`
}

func (ReturnData) stmtData() {}

// ConsoleKind enumerates assertion flavours.
type ConsoleKind uint8

const (
	ConsoleAssert ConsoleKind = iota
	ConsoleAssertEq
	ConsoleAssertNeq
)

var consoleKindNames = []string{
	ConsoleAssert:    "assert",
	ConsoleAssertEq:  "assert_eq",
	ConsoleAssertNeq: "assert_neq",
}

func (k ConsoleKind) String() string { return enumName(k, consoleKindNames) }

func (k ConsoleKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *ConsoleKind) UnmarshalText(text []byte) error {
	v, err := parseEnum[ConsoleKind](text, consoleKindNames, "console kind")
	*k = v
	return err
}

// ConsoleData holds data for StmtConsole.
type ConsoleData struct {
	Kind ConsoleKind `json:"kind"`
	Args []*Expr     `json:"args"`
}

func (ConsoleData) stmtData() {}

// BlockStmtData holds data for StmtBlock.
type BlockStmtData struct {
	Block *Block `json:"block"`
}

func (BlockStmtData) stmtData() {}

// ExpressionData holds data for StmtExpression.
type ExpressionData struct {
	Expr *Expr `json:"expr"`
}

func (ExpressionData) stmtData() {}

// MappingUpdateData holds data for StmtIncrement and StmtDecrement.
type MappingUpdateData struct {
	Mapping Identifier `json:"mapping"`
	Key     *Expr      `json:"key"`
	Amount  *Expr      `json:"amount"`
}

func (MappingUpdateData) stmtData() {}

// newStmtData decodes the payload for kind through decode.
func newStmtData(kind StmtKind, decode func(any) error) (StmtData, error) {
	switch kind {
	case StmtDefinition:
		return decodeStmt[DefinitionData](decode)
	case StmtAssign:
		return decodeStmt[AssignData](decode)
	case StmtConditional:
		return decodeStmt[ConditionalData](decode)
	case StmtIteration:
		return decodeStmt[IterationData](decode)
	case StmtReturn:
		return decodeStmt[ReturnData](decode)
	case StmtConsole:
		return decodeStmt[ConsoleData](decode)
	case StmtBlock:
		return decodeStmt[BlockStmtData](decode)
	case StmtExpression:
		return decodeStmt[ExpressionData](decode)
	case StmtIncrement, StmtDecrement:
		return decodeStmt[MappingUpdateData](decode)
	default:
		return nil, &UnknownKindError{What: "statement", Kind: uint8(kind)}
	}
}

func decodeStmt[T StmtData](decode func(any) error) (StmtData, error) {
	var d T
	if err := decode(&d); err != nil {
		return nil, err
	}
	return d, nil
}
