package ssa

import (
	"errors"
	"slices"
	"testing"

	"zkc/internal/ast"
	"zkc/internal/diag"
	"zkc/internal/source"
)

func TestRenameTableShadowingAndPop(t *testing.T) {
	tbl := NewRenameTable(nil)
	if tbl.Bind("x", "x$1") {
		t.Fatal("Bind without a frame must fail")
	}

	tbl.Push()
	tbl.Bind("x", "x")
	tbl.Push()
	tbl.Bind("y", "y$1")
	tbl.Bind("x", "x$2")
	tbl.Bind("y", "y$3")

	if got, _ := tbl.Lookup("x"); got != "x$2" {
		t.Fatalf("inner x = %q, want x$2", got)
	}
	if tbl.Depth() != 2 {
		t.Fatalf("depth = %d", tbl.Depth())
	}

	popped, ok := tbl.Pop()
	want := []Binding{{"y", "y$3"}, {"x", "x$2"}}
	if !ok || !slices.Equal(popped, want) {
		t.Fatalf("Pop() = %v, want %v", popped, want)
	}
	if got, _ := tbl.Lookup("x"); got != "x" {
		t.Fatalf("outer x after pop = %q", got)
	}
	if _, ok := tbl.Lookup("y"); ok {
		t.Fatal("y must not survive its frame")
	}
	if _, ok := tbl.Lookup("never-seen"); ok {
		t.Fatal("unknown name resolved")
	}
	tbl.Pop()
	if got, ok := tbl.Pop(); ok || got != nil {
		t.Fatalf("Pop on empty table = %v, %v", got, ok)
	}
}

func TestRenameTableNormalizesKeys(t *testing.T) {
	tbl := NewRenameTable(source.NewInterner())
	tbl.Push()
	tbl.Bind("caf\u00e9", "v$1")
	if got, ok := tbl.Lookup("cafe\u0301"); !ok || got != "v$1" {
		t.Fatalf("canonically equal spelling did not resolve: %q, %v", got, ok)
	}
}

func TestAssignerResolveError(t *testing.T) {
	a := NewAssigner(Options{})
	a.program = "token.aleo"
	a.function = "mint"
	a.Enter()
	a.Register("a", "a")

	if got, err := a.Resolve("a"); err != nil || got != "a" {
		t.Fatalf("Resolve(a) = %q, %v", got, err)
	}
	_, err := a.Resolve("b")
	if !errors.Is(err, ErrUnresolvedSymbol) {
		t.Fatalf("expected ErrUnresolvedSymbol, got %v", err)
	}
	var se *Error
	if !errors.As(err, &se) || se.Code != diag.SSAUnresolvedSymbol {
		t.Fatalf("expected *Error with SSAUnresolvedSymbol, got %#v", err)
	}
	if want := `unresolved symbol "b" in function "mint" (program token.aleo)`; se.Error() != want {
		t.Fatalf("message = %q, want %q", se.Error(), want)
	}
	a.Exit()
	if a.Depth() != 0 {
		t.Fatalf("depth = %d", a.Depth())
	}
}

func TestWithScopeExitsOnError(t *testing.T) {
	a := NewAssigner(Options{})
	boom := errors.New("boom")
	err := a.withScope(func() error {
		a.Register("x", "x$1")
		return boom
	})
	if err != boom {
		t.Fatalf("err = %v", err)
	}
	if a.Depth() != 0 {
		t.Fatalf("scope left open: depth %d", a.Depth())
	}
}

func TestScopeLifetimeDetectsImbalance(t *testing.T) {
	a := NewAssigner(Options{})
	a.function = "f"

	life := a.openLifetime("fn:f")
	a.Enter() // никто не закрыл
	err := life.close()
	if !errors.Is(err, ErrScopeImbalance) {
		t.Fatalf("expected ErrScopeImbalance, got %v", err)
	}
	if a.Depth() != 0 {
		t.Fatalf("depth not restored: %d", a.Depth())
	}

	life = a.openLifetime("fn:f")
	if err := life.close(); err != nil {
		t.Fatalf("balanced lifetime: %v", err)
	}
}

func TestRegisterAndExitOutsideScopeFail(t *testing.T) {
	a := NewAssigner(Options{})
	a.function = "f"
	if a.Err() != nil {
		t.Fatalf("fresh assigner: %v", a.Err())
	}

	a.Register("x", "x$1")
	if a.Depth() != 0 {
		t.Fatalf("Register opened a scope: depth %d", a.Depth())
	}
	if _, err := a.Resolve("x"); err == nil {
		t.Fatal("binding made outside any scope resolved")
	}
	err := a.Err()
	if !errors.Is(err, ErrScopeImbalance) {
		t.Fatalf("Register outside scope: got %v", err)
	}
	if want := `register "x" outside of any scope in function "f"`; err.Error() != want {
		t.Fatalf("message = %q, want %q", err.Error(), want)
	}

	b := NewAssigner(Options{})
	b.Enter()
	b.Exit()
	if b.Err() != nil {
		t.Fatalf("balanced Enter/Exit: %v", b.Err())
	}
	b.Exit()
	if !errors.Is(b.Err(), ErrScopeImbalance) {
		t.Fatalf("Exit on empty stack: got %v", b.Err())
	}
}

func TestRenameBodyReportsScopeMisuse(t *testing.T) {
	a := NewAssigner(Options{})
	a.function = "f"
	a.Exit()
	_, err := a.renameBody("fn:f", nil, ast.NewBlock(source.NoSpan,
		ast.NewReturn(ast.NewInteger(ast.U64, "1", source.NoSpan), source.NoSpan)))
	if !errors.Is(err, ErrScopeImbalance) {
		t.Fatalf("renameBody after misuse: got %v", err)
	}
}

func TestChildSharesCounterNotTable(t *testing.T) {
	a := NewAssigner(Options{})
	a.Enter()
	a.Register("x", a.fresh("x"))

	c := a.child()
	if c.Depth() != 0 {
		t.Fatalf("child inherited %d frames", c.Depth())
	}
	if _, err := c.Resolve("x"); err == nil {
		t.Fatal("child sees parent's bindings")
	}
	if got := c.fresh("x"); got != "x$2" {
		t.Fatalf("child fresh = %q, want x$2", got)
	}
	if a.Names() != 2 {
		t.Fatalf("Names() = %d", a.Names())
	}
}

func TestMergeBranches(t *testing.T) {
	a := NewAssigner(Options{})
	a.Enter()
	a.Register("x", "x$1")
	a.Register("y", "y$2")
	a.names.next = 10

	cond := ast.NewIdentifier("c", source.NoSpan)
	then := []Binding{{"x", "x$3"}, {"local", "local$4"}}
	els := []Binding{{"y", "y$5"}, {"x", "x$6"}}

	merges := a.mergeBranches(cond, then, els, source.NoSpan)
	if len(merges) != 2 {
		t.Fatalf("expected 2 merges, got %d", len(merges))
	}
	got := []string{merges[0].String(), merges[1].String()}
	want := []string{"x$11 = (c ? x$3 : x$6);", "y$12 = (c ? y$2 : y$5);"}
	if !slices.Equal(got, want) {
		t.Fatalf("merges = %q, want %q", got, want)
	}
	if name, _ := a.Resolve("x"); name != "x$11" {
		t.Fatalf("x resolves to %q after merge", name)
	}
	if _, err := a.Resolve("local"); err == nil {
		t.Fatal("branch-local name leaked")
	}

	// условие клонируется в каждое слияние
	d0 := merges[0].Data.(ast.AssignData).Value.Data.(ast.TernaryData).Condition
	d1 := merges[1].Data.(ast.AssignData).Value.Data.(ast.TernaryData).Condition
	if d0 == d1 || d0 == cond {
		t.Fatal("condition expression is aliased")
	}
}

func TestMergeBranchesSkipsUntouched(t *testing.T) {
	a := NewAssigner(Options{})
	a.Enter()
	a.Register("x", "x$1")
	// обе ветви вернули то же имя
	if merges := a.mergeBranches(ast.NewIdentifier("c", source.NoSpan), []Binding{{"x", "x$1"}}, nil, source.NoSpan); len(merges) != 0 {
		t.Fatalf("unexpected merges: %d", len(merges))
	}
}
