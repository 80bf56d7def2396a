package ssa

import "zkc/internal/ast"

// Each consumer takes a node it does not own and returns a newly built
// replacement of the same kind. Input nodes are never reused in the output.

type ProgramConsumer interface {
	ConsumeProgram(p *ast.Program) (*ast.Program, error)
}

type ProgramScopeConsumer interface {
	ConsumeProgramScope(s *ast.ProgramScope) (*ast.ProgramScope, error)
}

type StructConsumer interface {
	ConsumeStruct(s *ast.Struct) (*ast.Struct, error)
}

type FunctionConsumer interface {
	ConsumeFunction(f *ast.Function) (*ast.Function, error)
}

// StatementConsumer renames statements. One input statement may become
// several output statements (merge definitions, unrolled iterations).
type StatementConsumer interface {
	ConsumeBlock(b *ast.Block) (*ast.Block, error)
	ConsumeStatement(s *ast.Stmt) ([]ast.Stmt, error)
}

type ExpressionConsumer interface {
	ConsumeExpression(e *ast.Expr) (*ast.Expr, error)
}

var (
	_ ProgramConsumer      = (*Assigner)(nil)
	_ ProgramScopeConsumer = (*Assigner)(nil)
	_ StructConsumer       = (*Assigner)(nil)
	_ FunctionConsumer     = (*Assigner)(nil)
	_ StatementConsumer    = (*Assigner)(nil)
	_ ExpressionConsumer   = (*Assigner)(nil)
)
