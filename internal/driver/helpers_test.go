package driver_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"zkc/internal/ast"
	"zkc/internal/source"
)

var u64T = ast.IntegerType(ast.U64)

// program builds name.aleo with f(a: u64) running body.
func program(name string, body ...ast.Stmt) *ast.Program {
	scope := ast.NewProgramScope(ast.ProgramID{Name: ast.Ident(name), Network: ast.Ident("aleo")}, source.NoSpan)
	scope.Functions.Set("f", &ast.Function{
		CallType:   ast.CallStandard,
		Identifier: ast.Ident("f"),
		Input:      []ast.Input{{Identifier: ast.Ident("a"), Type: u64T}},
		OutputType: u64T,
		Block:      ast.NewBlock(source.NoSpan, body...),
	})
	prog := ast.NewProgram()
	prog.ProgramScopes.Set(name, scope)
	return prog
}

// okProgram: let b: u64 = a + 1u64; return b;
func okProgram(name string) *ast.Program {
	return program(name,
		ast.NewDefinition(ast.DeclLet, ast.Ident("b"), u64T,
			ast.NewBinary(ast.OpAdd, ast.NewIdentifier("a", source.NoSpan), ast.NewInteger(ast.U64, "1", source.NoSpan), source.NoSpan),
			source.NoSpan),
		ast.NewReturn(ast.NewIdentifier("b", source.NoSpan), source.NoSpan),
	)
}

// brokenProgram returns a name nobody defines.
func brokenProgram(name string) *ast.Program {
	return program(name, ast.NewReturn(ast.NewIdentifier("missing", source.NoSpan), source.NoSpan))
}

func writeJSON(t *testing.T, dir, file string, prog *ast.Program) string {
	t.Helper()
	var buf bytes.Buffer
	if err := ast.WriteJSON(&buf, prog); err != nil {
		t.Fatalf("encode %s: %v", file, err)
	}
	return writeFile(t, dir, file, buf.Bytes())
}

func writeMsgpack(t *testing.T, dir, file string, prog *ast.Program) string {
	t.Helper()
	var buf bytes.Buffer
	if err := ast.WriteMsgpack(&buf, prog); err != nil {
		t.Fatalf("encode %s: %v", file, err)
	}
	return writeFile(t, dir, file, buf.Bytes())
}

func writeFile(t *testing.T, dir, file string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, file)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func dump(t *testing.T, prog *ast.Program) string {
	t.Helper()
	var sb bytes.Buffer
	if err := ast.Dump(&sb, prog); err != nil {
		t.Fatalf("dump: %v", err)
	}
	return sb.String()
}
