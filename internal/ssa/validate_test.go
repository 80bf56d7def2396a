package ssa_test

import (
	"errors"
	"strings"
	"testing"

	"zkc/internal/ast"
	"zkc/internal/diag"
	"zkc/internal/source"
	"zkc/internal/ssa"
)

func TestValidateAcceptsConvertedTrees(t *testing.T) {
	out := run(t, importScenario())
	if err := ssa.Validate(out); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestValidateReportsEveryViolation(t *testing.T) {
	bad := fn("bad", []ast.Input{in("a", u64T)},
		def("x", id("a")),
		def("x", id("b")),
		assign("a", u64("1")),
		ast.NewIteration(ast.Ident("i"), u64T, u64("0"), u64("1"), false, block(), source.NoSpan),
		ret(ast.NewStructInit(ast.Ident("Rec"), []ast.StructMemberInit{{Identifier: ast.Ident("owner")}}, source.NoSpan)),
	)
	p := program("main", bad)
	scopeOf(t, p, "main").Structs.Set("Rec", libRecord("gates", "owner"))

	err := ssa.Validate(p)
	if !errors.Is(err, ssa.ErrInvariantViolation) {
		t.Fatalf("expected ErrInvariantViolation, got %v", err)
	}
	msg := err.Error()
	for _, want := range []string{
		`record "Rec" does not start with owner, gates`,
		`"x" is defined more than once`,
		`read of "b" has no reaching definition`,
		`"a" is defined more than once`,
		`loop over "i" was not unrolled`,
		`shorthand member "owner" was not expanded`,
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("missing violation %q in:\n%s", want, msg)
		}
	}
	if n := len(err.(interface{ Unwrap() []error }).Unwrap()); n != 6 {
		t.Errorf("expected 6 violations, got %d", n)
	}
}

func TestSharedImportViolationsReportedOnce(t *testing.T) {
	// credits.aleo is embedded under both lib.aleo and token.aleo
	credits := func() *ast.Program {
		p := program("credits")
		scopeOf(t, p, "credits").Structs.Set("Rec", libRecord("gates", "owner"))
		return p
	}
	lib := program("lib")
	lib.Imports.Set("credits.aleo", credits())
	token := program("token")
	token.Imports.Set("credits.aleo", credits())
	main := program("main")
	main.Imports.Set("lib.aleo", lib)
	main.Imports.Set("token.aleo", token)

	err := ssa.Validate(main)
	if n := len(err.(interface{ Unwrap() []error }).Unwrap()); n != 2 {
		t.Fatalf("expected the record violation once per importer, got %d", n)
	}

	plain := diag.NewBag(10)
	ssa.Report(diag.BagReporter{Bag: plain}, err)
	deduped := diag.NewBag(10)
	ssa.Report(diag.NewDedupReporter(diag.BagReporter{Bag: deduped}), err)
	if plain.Len() != 2 || deduped.Len() != 1 {
		t.Fatalf("plain = %d, deduped = %d diagnostics", plain.Len(), deduped.Len())
	}
	if got := deduped.Items()[0].Message; !strings.Contains(got, `record "Rec" does not start with owner, gates`) {
		t.Fatalf("message = %q", got)
	}
}
