package diagfmt

import "zkc/internal/diag"

// PrettyOpts configures pretty-printing of diagnostics.
type PrettyOpts struct {
	Color     bool
	ShowNotes bool
	// Max обрезает вывод (не Bag), 0 - без ограничений
	Max int
}

// JSONOpts configures JSON output of diagnostics.
type JSONOpts struct {
	Max          int // обрезка вывода, не Bag
	IncludeNotes bool
}

// UnitDiagnostics pairs a compilation unit with its diagnostics. Spans inside
// a tree carry no file names, so the unit is what locates a diagnostic.
type UnitDiagnostics struct {
	Unit string
	Bag  *diag.Bag
}
