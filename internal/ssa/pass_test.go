package ssa_test

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"zkc/internal/ast"
	"zkc/internal/diag"
	"zkc/internal/source"
	"zkc/internal/ssa"
	"zkc/internal/trace"
)

func run(t *testing.T, p *ast.Program) *ast.Program {
	t.Helper()
	out, err := ssa.Run(context.Background(), p, ssa.Options{Validate: true})
	if err != nil {
		t.Fatalf("ssa.Run: %v", err)
	}
	return out
}

func libRecord(members ...string) *ast.Struct {
	s := &ast.Struct{Identifier: ast.Ident("Rec"), IsRecord: true}
	for _, m := range members {
		typ := u64T
		if m == ssa.OwnerField {
			typ = ast.PrimitiveType(ast.TypeAddress)
		}
		s.Members = append(s.Members, ast.Member{Identifier: ast.Ident(m), Type: typ})
	}
	return s
}

// importScenario: lib.aleo declares record Rec {gates, owner, x} and f(a);
// main.aleo imports it and declares g(a) with the same body.
func importScenario() *ast.Program {
	body := func(name string) *ast.Function {
		return fn(name, []ast.Input{in("a", u64T)},
			def("b", id("a")),
			ret(id("b")),
		)
	}
	lib := program("lib", body("f"))
	scopeLib, _ := lib.ProgramScopes.Get("lib")
	scopeLib.Structs.Set("Rec", libRecord("gates", "owner", "x"))

	main := program("main", body("g"))
	main.Imports.Set("lib.aleo", lib)
	return main
}

func TestEndToEndImportScenario(t *testing.T) {
	out := run(t, importScenario())

	lib, ok := out.Imports.Get("lib.aleo")
	if !ok {
		t.Fatal("import lib.aleo missing from output")
	}
	checkRender(t, function(t, lib, "lib", "f"), `function f(a: u64) -> u64 {
    let b$1: u64 = a;
    return b$1;
}
`)
	checkRender(t, function(t, out, "main", "g"), `function g(a: u64) -> u64 {
    let b$2: u64 = a;
    return b$2;
}
`)

	rec, _ := scopeOf(t, lib, "lib").Structs.Get("Rec")
	var names []string
	for _, m := range rec.Members {
		names = append(names, m.Identifier.Name)
	}
	if want := []string{"owner", "gates", "x"}; !slices.Equal(names, want) {
		t.Fatalf("record members = %v, want %v", names, want)
	}
}

func TestImportIsolation(t *testing.T) {
	// g reads a local only the import defines
	p := importScenario()
	g := function(t, p, "main", "g")
	g.Block.Statements[1] = ret(id("b"))
	g.Block.Statements[0] = def("c", id("a"))

	_, err := ssa.Run(context.Background(), p, ssa.Options{})
	var se *ssa.Error
	if !errors.As(err, &se) || !errors.Is(err, ssa.ErrUnresolvedSymbol) {
		t.Fatalf("expected unresolved symbol, got %v", err)
	}
	if se.Function != "g" || se.Program != "main.aleo" {
		t.Fatalf("error context = %q/%q", se.Program, se.Function)
	}
}

func TestFinalizeScopeIsolation(t *testing.T) {
	h := fn("h", []ast.Input{in("x", u64T)},
		assign("x", add(id("x"), u64("1"))),
		ast.Stmt{Kind: ast.StmtReturn, Data: ast.ReturnData{
			Value:             id("x"),
			FinalizeArguments: []*ast.Expr{id("x")},
		}},
	)
	h.Finalize = &ast.Finalize{
		Identifier: ast.Ident("h"),
		Input:      []ast.Input{in("x", u64T)},
		OutputType: ast.PrimitiveType(ast.TypeUnit),
		Block: block(
			def("y", id("x")),
			ast.NewIncrement(ast.Ident("balances"), id("x"), id("y"), source.NoSpan),
		),
	}

	out := run(t, program("main", h))
	checkRender(t, function(t, out, "main", "h"), `function h(x: u64) -> u64 {
    x$1 = (x + 1u64);
    return x$1 then finalize(x$1);
} finalize h(x: u64) -> () {
    let y$2: u64 = x;
    increment(balances, x, y$2);
}
`)
}

func TestFinalizeDoesNotSeeMainLocals(t *testing.T) {
	h := fn("h", []ast.Input{in("x", u64T)}, def("t", id("x")), ret(id("t")))
	h.Finalize = &ast.Finalize{
		Identifier: ast.Ident("h"),
		Input:      []ast.Input{in("x", u64T)},
		Block:      block(ast.NewExpressionStmt(id("t"), source.NoSpan)),
	}
	_, err := ssa.Run(context.Background(), program("main", h), ssa.Options{})
	if !errors.Is(err, ssa.ErrUnresolvedSymbol) {
		t.Fatalf("finalize resolved a main-body local: %v", err)
	}
}

func TestConditionalMerge(t *testing.T) {
	c := fn("c", []ast.Input{in("flag", boolT), in("a", u64T)},
		def("x", id("a")),
		ast.NewConditional(id("flag"),
			block(
				assign("x", u64("1")),
				def("t", u64("2")),
			),
			ptr(ast.NewBlockStmt(block(
				assign("x", u64("2")),
				assign("a", u64("3")),
			))),
			source.NoSpan),
		ret(add(id("x"), id("a"))),
	)
	out := run(t, program("main", c))
	checkRender(t, function(t, out, "main", "c"), `function c(flag: boolean, a: u64) -> u64 {
    let x$1: u64 = a;
    if flag {
        x$2 = 1u64;
        let t$3: u64 = 2u64;
    } else {
        x$4 = 2u64;
        a$5 = 3u64;
    }
    x$6 = (flag ? x$2 : x$4);
    a$7 = (flag ? a : a$5);
    return (x$6 + a$7);
}
`)
}

func TestElseIfChainMerge(t *testing.T) {
	d := fn("d", []ast.Input{in("a", u64T)},
		def("x", u64("0")),
		ast.NewConditional(eq(id("a"), u64("1")),
			block(assign("x", u64("1"))),
			ptr(ast.NewConditional(eq(id("a"), u64("2")),
				block(assign("x", u64("2"))),
				nil, source.NoSpan)),
			source.NoSpan),
		ret(id("x")),
	)
	out := run(t, program("main", d))
	checkRender(t, function(t, out, "main", "d"), `function d(a: u64) -> u64 {
    let x$1: u64 = 0u64;
    if (a == 1u64) {
        x$2 = 1u64;
    } else {
        if (a == 2u64) {
            x$3 = 2u64;
        }
        x$4 = ((a == 2u64) ? x$3 : x$1);
    }
    x$5 = ((a == 1u64) ? x$2 : x$4);
    return x$5;
}
`)
}

func TestBranchLocalsStayLocal(t *testing.T) {
	f := fn("f", []ast.Input{in("flag", boolT)},
		ast.NewConditional(id("flag"), block(def("t", u64("1"))), nil, source.NoSpan),
		ret(id("t")),
	)
	_, err := ssa.Run(context.Background(), program("main", f), ssa.Options{})
	if !errors.Is(err, ssa.ErrUnresolvedSymbol) {
		t.Fatalf("branch-local t visible after the branch: %v", err)
	}
}

func TestNestedBlockPropagatesWrites(t *testing.T) {
	f := fn("f", []ast.Input{in("a", u64T)},
		ast.NewBlockStmt(block(
			assign("a", add(id("a"), u64("1"))),
			def("tmp", id("a")),
		)),
		ret(id("a")),
	)
	out := run(t, program("main", f))
	checkRender(t, function(t, out, "main", "f"), `function f(a: u64) -> u64 {
    {
        a$1 = (a + 1u64);
        let tmp$2: u64 = a$1;
    }
    return a$1;
}
`)
}

func TestLoopUnrolling(t *testing.T) {
	loop := func(start, stop string, inclusive bool) *ast.Function {
		return fn("s", []ast.Input{in("a", u64T)},
			def("acc", id("a")),
			ast.NewIteration(ast.Ident("i"), u64T, u64(start), u64(stop), inclusive,
				block(assign("acc", add(id("acc"), id("i")))), source.NoSpan),
			ret(id("acc")),
		)
	}

	out := run(t, program("main", loop("0", "2", false)))
	checkRender(t, function(t, out, "main", "s"), `function s(a: u64) -> u64 {
    let acc$1: u64 = a;
    {
        const i$2: u64 = 0u64;
        acc$3 = (acc$1 + i$2);
    }
    {
        const i$4: u64 = 1u64;
        acc$5 = (acc$3 + i$4);
    }
    return acc$5;
}
`)

	cases := []struct {
		name      string
		start     string
		stop      string
		inclusive bool
		blocks    int
	}{
		{"inclusive", "1", "3", true, 3},
		{"empty", "3", "1", false, 0},
		{"single inclusive", "5", "5", true, 1},
		{"underscores", "0", "1_0", false, 10},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out := run(t, program("main", loop(tc.start, tc.stop, tc.inclusive)))
			stmts := function(t, out, "main", "s").Block.Statements
			// let acc, N блоков, return
			if got := len(stmts) - 2; got != tc.blocks {
				t.Fatalf("unrolled into %d blocks, want %d", got, tc.blocks)
			}
		})
	}
}

func TestLoopErrors(t *testing.T) {
	nonConst := fn("s", []ast.Input{in("a", u64T)},
		ast.NewIteration(ast.Ident("i"), u64T, u64("0"), id("a"), false, block(), source.NoSpan),
		ret(id("a")),
	)
	_, err := ssa.Run(context.Background(), program("main", nonConst), ssa.Options{})
	if !errors.Is(err, ssa.ErrNonConstantLoopBound) {
		t.Fatalf("expected ErrNonConstantLoopBound, got %v", err)
	}

	tooLarge := fn("s", []ast.Input{in("a", u64T)},
		ast.NewIteration(ast.Ident("i"), u64T, u64("0"), u64("3"), false, block(), source.NoSpan),
		ret(id("a")),
	)
	_, err = ssa.Run(context.Background(), program("main", tooLarge), ssa.Options{MaxUnroll: 2})
	var se *ssa.Error
	if !errors.As(err, &se) || se.Code != diag.SSALoopBoundTooLarge {
		t.Fatalf("expected SSALoopBoundTooLarge, got %v", err)
	}
}

func TestStructInitShorthandAndNonVariableNames(t *testing.T) {
	m := fn("m", []ast.Input{in("owner", ast.PrimitiveType(ast.TypeAddress)), in("amount", u64T)},
		assign("amount", add(id("amount"), u64("1"))),
		def("r", ast.NewCall(ast.Ident("helper"), []*ast.Expr{
			id("amount"),
			{Kind: ast.ExprAssociatedConstant, Data: ast.AssociatedConstantData{Type: ast.Ident("group"), Name: ast.Ident("GEN")}},
		}, source.NoSpan)),
		def("s", ast.NewMemberAccess(id("r"), ast.Ident("field"), source.NoSpan)),
		ret(ast.NewStructInit(ast.Ident("Token"), []ast.StructMemberInit{
			{Identifier: ast.Ident("owner")},
			{Identifier: ast.Ident("gates"), Value: u64("0")},
			{Identifier: ast.Ident("amount")},
		}, source.NoSpan)),
	)
	out := run(t, program("main", m))
	checkRender(t, function(t, out, "main", "m"), `function m(owner: address, amount: u64) -> u64 {
    amount$1 = (amount + 1u64);
    let r$2: u64 = helper(amount$1, group::GEN);
    let s$3: u64 = r$2.field;
    return Token { owner: owner, gates: 0u64, amount: amount$1 };
}
`)
}

func TestUnsupportedAssignTarget(t *testing.T) {
	f := fn("f", []ast.Input{in("p", ast.NamedType("Point"))},
		ast.NewAssign(ast.NewMemberAccess(id("p"), ast.Ident("x"), source.NoSpan), u64("1"), source.NoSpan),
		ret(id("p")),
	)
	_, err := ssa.Run(context.Background(), program("main", f), ssa.Options{})
	if !errors.Is(err, ssa.ErrUnsupportedAssignTarget) {
		t.Fatalf("expected ErrUnsupportedAssignTarget, got %v", err)
	}
	if !strings.Contains(err.Error(), "p.x") {
		t.Fatalf("error does not name the place: %v", err)
	}
}

func TestMissingReservedFieldAborts(t *testing.T) {
	p := program("main", fn("f", nil, ret(u64("0"))))
	scopeOf(t, p, "main").Structs.Set("Rec", libRecord("owner", "x"))

	bag := diag.NewBag(10)
	out, err := ssa.Run(context.Background(), p, ssa.Options{Reporter: diag.BagReporter{Bag: bag}})
	if out != nil {
		t.Fatal("partial output returned on error")
	}
	if !errors.Is(err, ssa.ErrMissingReservedField) {
		t.Fatalf("expected ErrMissingReservedField, got %v", err)
	}
	if !strings.Contains(err.Error(), `record "Rec" has no member "gates"`) {
		t.Fatalf("message: %v", err)
	}
	if bag.Len() != 1 || bag.Items()[0].Code != diag.SSAMissingReservedField {
		t.Fatalf("diagnostics: %+v", bag.Items())
	}
}

func TestNonRenamedFieldsAreCopied(t *testing.T) {
	span := func(a, b uint32) source.Span { return source.Span{File: 3, Start: a, End: b} }
	f := &ast.Function{
		Annotations: []ast.Annotation{{Identifier: ast.Ident("program"), Span: span(0, 8)}},
		CallType:    ast.CallTransition,
		Identifier:  ast.Identifier{Name: "mint", Span: span(20, 24)},
		Input: []ast.Input{
			{Identifier: ast.Identifier{Name: "r", Span: span(25, 26)}, Mode: ast.ModePublic, Type: ast.PrimitiveType(ast.TypeAddress), Span: span(25, 36)},
		},
		Output:     []ast.Output{{Mode: ast.ModePrivate, Type: ast.NamedType("Rec"), Span: span(40, 43)}},
		OutputType: ast.NamedType("Rec"),
		Block:      ast.NewBlock(span(44, 90), ret(id("r"))),
		Finalize: &ast.Finalize{
			Identifier: ast.Identifier{Name: "mint", Span: span(100, 104)},
			Input:      []ast.Input{{Identifier: ast.Ident("r"), Mode: ast.ModePublic, Type: ast.PrimitiveType(ast.TypeAddress)}},
			OutputType: ast.PrimitiveType(ast.TypeUnit),
			Block:      ast.NewBlock(span(110, 120)),
			Span:       span(95, 121),
		},
		Span: span(0, 121),
	}
	p := program("main", f)
	scope := scopeOf(t, p, "main")
	scope.Structs.Set("Point", &ast.Struct{
		Identifier: ast.Ident("Point"),
		Members: []ast.Member{
			{Identifier: ast.Ident("y"), Type: u64T},
			{Identifier: ast.Ident("owner"), Type: u64T},
			{Identifier: ast.Ident("x"), Type: u64T},
		},
	})
	scope.Mappings.Set("balances", &ast.Mapping{Identifier: ast.Ident("balances"), KeyType: ast.PrimitiveType(ast.TypeAddress), ValueType: u64T})

	before := p.Clone()
	out := run(t, p)

	if diff := cmp.Diff(before, p, cmpOpts); diff != "" {
		t.Fatalf("input mutated (-before +after):\n%s", diff)
	}

	ignoreBlocks := cmp.Options{
		cmpOpts,
		cmpopts.IgnoreFields(ast.Function{}, "Block"),
		cmpopts.IgnoreFields(ast.Finalize{}, "Block"),
	}
	if diff := cmp.Diff(before, out, ignoreBlocks); diff != "" {
		t.Fatalf("non-renamed fields changed (-in +out):\n%s", diff)
	}
	outFn := function(t, out, "main", "mint")
	if outFn.Block.Span != f.Block.Span || outFn.Finalize.Block.Span != f.Finalize.Block.Span {
		t.Fatal("block spans not preserved")
	}
	if outFn == f || outFn.Finalize == f.Finalize || &outFn.Input[0] == &f.Input[0] {
		t.Fatal("output aliases input nodes")
	}
}

func TestRecordCanonicalization(t *testing.T) {
	cases := []struct {
		name    string
		members []string
		want    []string
	}{
		{"mixed order", []string{"balance", "gates", "data", "owner"}, []string{"owner", "gates", "balance", "data"}},
		{"already canonical", []string{"owner", "gates", "a"}, []string{"owner", "gates", "a"}},
		{"reversed", []string{"gates", "owner"}, []string{"owner", "gates"}},
		{"tail", []string{"a", "b", "c", "owner", "gates"}, []string{"owner", "gates", "a", "b", "c"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := ssa.NormalizeRecord(libRecord(tc.members...))
			if err != nil {
				t.Fatalf("NormalizeRecord: %v", err)
			}
			var got []string
			for _, m := range out.Members {
				got = append(got, m.Identifier.Name)
			}
			if !slices.Equal(got, tc.want) {
				t.Fatalf("members = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestPlainStructPassThrough(t *testing.T) {
	in := libRecord("gates", "x", "owner")
	in.IsRecord = false
	out, err := ssa.NormalizeRecord(in)
	if err != nil {
		t.Fatalf("NormalizeRecord: %v", err)
	}
	if diff := cmp.Diff(in, out); diff != "" {
		t.Fatalf("plain struct changed:\n%s", diff)
	}
	if &out.Members[0] == &in.Members[0] {
		t.Fatal("members slice is aliased")
	}
}

func TestRunEmitsTraceSpans(t *testing.T) {
	p := importScenario()
	g := function(t, p, "main", "g")
	g.Finalize = &ast.Finalize{Identifier: ast.Ident("g"), Block: block()}

	ring := trace.NewRingTracer(64, trace.LevelDebug)
	ctx := trace.WithTracer(context.Background(), ring)
	if _, err := ssa.Run(ctx, p, ssa.Options{}); err != nil {
		t.Fatal(err)
	}

	var begun []string
	for _, ev := range ring.Snapshot() {
		if ev.Kind == trace.KindSpanBegin {
			begun = append(begun, ev.Name)
		}
	}
	want := []string{"ssa", "program:main.aleo", "program:lib.aleo", "fn:f", "fn:g", "finalize:g"}
	if !slices.Equal(begun, want) {
		t.Fatalf("spans = %v, want %v", begun, want)
	}
}

func ptr(s ast.Stmt) *ast.Stmt { return &s }

func TestRunRejectsNilEntries(t *testing.T) {
	tests := []struct {
		name  string
		build func() *ast.Program
		want  string
	}{
		{"program", func() *ast.Program { return nil }, "nil program"},
		{"import", func() *ast.Program {
			p := program("main", fn("g", nil, ret(u64("1"))))
			p.Imports.Set("lib.aleo", nil)
			return p
		}, `nil import "lib.aleo"`},
		{"program scope", func() *ast.Program {
			p := ast.NewProgram()
			p.ProgramScopes.Set("main", nil)
			return p
		}, `nil program scope "main"`},
		{"function", func() *ast.Program {
			p := program("main")
			scopeOf(t, p, "main").Functions.Set("g", nil)
			return p
		}, `nil function "g"`},
		{"struct", func() *ast.Program {
			p := program("main")
			scopeOf(t, p, "main").Structs.Set("S", nil)
			return p
		}, `nil struct "S"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := ssa.Run(context.Background(), tt.build(), ssa.Options{})
			if !errors.Is(err, ssa.ErrMalformedTree) {
				t.Fatalf("expected ErrMalformedTree, got %v", err)
			}
			if out != nil {
				t.Fatal("program returned alongside an error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("message = %q, want it to mention %q", err.Error(), tt.want)
			}
		})
	}
}
