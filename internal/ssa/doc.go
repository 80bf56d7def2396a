// Package ssa converts a type-checked program tree into static single
// assignment form.
//
// Every definition or assignment of a variable x produces a fresh name x$N,
// every read is rewritten to the reaching name, and the output contains no
// two definitions of the same name inside one function body. Parameters keep
// their declared names as version zero.
//
// Conditionals keep their shape; after both branches are renamed, each outer
// variable touched by a branch gets a merge definition
//
//	x$N = cond ? x$then : x$else;
//
// so code after the conditional has exactly one reaching definition. Loops
// with literal bounds are unrolled into one block per iteration.
//
// Records have their reserved members owner and gates moved to positions 0
// and 1; other members keep their order.
//
// The pass never mutates its input. Run returns a fully rebuilt tree or an
// error; there is no partial output.
package ssa
