package ssa

import (
	"zkc/internal/source"
)

// Binding is one original name and the SSA name it currently resolves to.
type Binding struct {
	Original string
	Resolved string
}

type frame struct {
	names map[source.StringID]string
	order []source.StringID // first-binding order
}

// RenameTable is a stack of frames mapping original variable names to their
// current SSA names. Lookups go innermost-first.
type RenameTable struct {
	strings *source.Interner
	frames  []frame
}

// NewRenameTable creates an empty table interning keys in strs.
func NewRenameTable(strs *source.Interner) *RenameTable {
	if strs == nil {
		strs = source.NewInterner()
	}
	return &RenameTable{strings: strs}
}

// Push opens an empty innermost frame.
func (t *RenameTable) Push() {
	t.frames = append(t.frames, frame{names: make(map[source.StringID]string)})
}

// Pop removes the innermost frame and returns its bindings in first-binding
// order with their latest resolved names. It reports false when there is no
// frame to pop.
func (t *RenameTable) Pop() ([]Binding, bool) {
	if len(t.frames) == 0 {
		return nil, false
	}
	top := t.frames[len(t.frames)-1]
	t.frames = t.frames[:len(t.frames)-1]

	out := make([]Binding, 0, len(top.order))
	for _, id := range top.order {
		out = append(out, Binding{Original: t.strings.MustLookup(id), Resolved: top.names[id]})
	}
	return out, true
}

// Bind inserts or overwrites original in the innermost frame. It reports
// false when there is no frame.
func (t *RenameTable) Bind(original, resolved string) bool {
	if len(t.frames) == 0 {
		return false
	}
	id := t.strings.Intern(original)
	top := &t.frames[len(t.frames)-1]
	if _, ok := top.names[id]; !ok {
		top.order = append(top.order, id)
	}
	top.names[id] = resolved
	return true
}

// Lookup resolves original through the frame chain, innermost first.
func (t *RenameTable) Lookup(original string) (string, bool) {
	id, ok := t.strings.Find(original)
	if !ok {
		return "", false
	}
	for i := len(t.frames) - 1; i >= 0; i-- {
		if name, ok := t.frames[i].names[id]; ok {
			return name, true
		}
	}
	return "", false
}

// Depth is the number of open frames.
func (t *RenameTable) Depth() int {
	return len(t.frames)
}
