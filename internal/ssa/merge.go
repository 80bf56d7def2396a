package ssa

import (
	"zkc/internal/ast"
	"zkc/internal/source"
)

// mergeBranches reconciles the two branches of a conditional. For every name
// bound in either branch that is also visible in the enclosing scopes it
// emits
//
//	name$N = cond ? thenVersion : elseVersion;
//
// where a branch that left the name alone contributes the enclosing version,
// and registers name$N in the current scope. Names are visited in first
// binding order, then-branch first. Names first defined inside a branch are
// local to it and not merged. Must be called after both branch scopes are
// closed.
func (a *Assigner) mergeBranches(cond *ast.Expr, then, els []Binding, span source.Span) []ast.Stmt {
	thenVer := make(map[string]string, len(then))
	elseVer := make(map[string]string, len(els))
	order := make([]string, 0, len(then)+len(els))
	for _, b := range then {
		thenVer[b.Original] = b.Resolved
		order = append(order, b.Original)
	}
	for _, b := range els {
		elseVer[b.Original] = b.Resolved
		if _, seen := thenVer[b.Original]; !seen {
			order = append(order, b.Original)
		}
	}

	var merges []ast.Stmt
	for _, name := range order {
		outer, ok := a.table.Lookup(name)
		if !ok {
			continue
		}
		t, ok := thenVer[name]
		if !ok {
			t = outer
		}
		e, ok := elseVer[name]
		if !ok {
			e = outer
		}
		if t == e {
			continue
		}
		merged := a.fresh(name)
		value := ast.NewTernary(cond.Clone(), ast.NewIdentifier(t, span), ast.NewIdentifier(e, span), span)
		merges = append(merges, ast.NewAssign(ast.NewIdentifier(merged, span), value, span))
		a.Register(name, merged)
	}
	return merges
}
