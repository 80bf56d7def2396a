// Package ast defines the type-checked program tree consumed and produced by
// the compiler passes.
//
// The tree is a plain pointer structure: Program owns imported Programs and
// ProgramScopes, scopes own Structs, Mappings and Functions, functions own
// Blocks of Stmt, statements own Expr. Statements and expressions are tagged
// nodes: Kind selects the payload type stored in Data.
//
// Passes never mutate their input. Every node has a Clone method producing an
// unaliased copy, and passes build fresh nodes for everything they rewrite.
package ast
