package ssa_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"zkc/internal/ast"
	"zkc/internal/source"
)

var (
	u64T  = ast.IntegerType(ast.U64)
	boolT = ast.PrimitiveType(ast.TypeBoolean)
)

func id(name string) *ast.Expr { return ast.NewIdentifier(name, source.NoSpan) }

func u64(v string) *ast.Expr { return ast.NewInteger(ast.U64, v, source.NoSpan) }

func add(l, r *ast.Expr) *ast.Expr { return ast.NewBinary(ast.OpAdd, l, r, source.NoSpan) }

func eq(l, r *ast.Expr) *ast.Expr { return ast.NewBinary(ast.OpEq, l, r, source.NoSpan) }

func def(name string, value *ast.Expr) ast.Stmt {
	return ast.NewDefinition(ast.DeclLet, ast.Ident(name), u64T, value, source.NoSpan)
}

func assign(name string, value *ast.Expr) ast.Stmt {
	return ast.NewAssign(id(name), value, source.NoSpan)
}

func ret(e *ast.Expr) ast.Stmt { return ast.NewReturn(e, source.NoSpan) }

func block(stmts ...ast.Stmt) *ast.Block { return ast.NewBlock(source.NoSpan, stmts...) }

func in(name string, t ast.Type) ast.Input {
	return ast.Input{Identifier: ast.Ident(name), Type: t}
}

func fn(name string, inputs []ast.Input, stmts ...ast.Stmt) *ast.Function {
	return &ast.Function{
		CallType:   ast.CallStandard,
		Identifier: ast.Ident(name),
		Input:      inputs,
		OutputType: u64T,
		Block:      block(stmts...),
	}
}

func program(name string, fns ...*ast.Function) *ast.Program {
	scope := ast.NewProgramScope(ast.ProgramID{Name: ast.Ident(name), Network: ast.Ident("aleo")}, source.NoSpan)
	for _, f := range fns {
		scope.Functions.Set(f.Identifier.Name, f)
	}
	p := ast.NewProgram()
	p.ProgramScopes.Set(name, scope)
	return p
}

func scopeOf(t *testing.T, p *ast.Program, name string) *ast.ProgramScope {
	t.Helper()
	s, ok := p.ProgramScopes.Get(name)
	if !ok {
		t.Fatalf("program scope %q missing", name)
	}
	return s
}

func function(t *testing.T, p *ast.Program, scope, name string) *ast.Function {
	t.Helper()
	f, ok := scopeOf(t, p, scope).Functions.Get(name)
	if !ok {
		t.Fatalf("function %s/%s missing", scope, name)
	}
	return f
}

func render(f *ast.Function) string {
	var sb strings.Builder
	ast.NewPrinter(&sb).PrintFunction(f)
	return sb.String()
}

func checkRender(t *testing.T, f *ast.Function, want string) {
	t.Helper()
	if got := render(f); got != want {
		t.Fatalf("unexpected output\n--- got ---\n%s\n--- want ---\n%s", got, want)
	}
}

// cmpOpts lets cmp look inside the ordered maps.
var cmpOpts = cmp.Options{
	cmp.Transformer("orderedPrograms", entries[*ast.Program]),
	cmp.Transformer("orderedScopes", entries[*ast.ProgramScope]),
	cmp.Transformer("orderedStructs", entries[*ast.Struct]),
	cmp.Transformer("orderedMappings", entries[*ast.Mapping]),
	cmp.Transformer("orderedFunctions", entries[*ast.Function]),
}

type entry[V any] struct {
	Key   string
	Value V
}

func entries[V any](m *ast.OrderedMap[V]) []entry[V] {
	out := make([]entry[V], 0, m.Len())
	for k, v := range m.All() {
		out = append(out, entry[V]{Key: k, Value: v})
	}
	return out
}
