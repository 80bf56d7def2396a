package ssa

import (
	"errors"
	"fmt"

	"zkc/internal/ast"
	"zkc/internal/diag"
)

// Reserved record members, in their canonical positions.
const (
	OwnerField = "owner"
	GatesField = "gates"
)

// NormalizeRecord returns a copy of s. For records the reserved members move
// to the front as [owner, gates, ...rest]; the rest keep their declared order.
// Plain structs are copied unchanged.
func NormalizeRecord(s *ast.Struct) (*ast.Struct, error) {
	out := s.Clone()
	if !s.IsRecord {
		return out, nil
	}

	owner, gates := -1, -1
	for i := range s.Members {
		switch s.Members[i].Identifier.Name {
		case OwnerField:
			owner = i
		case GatesField:
			gates = i
		}
	}
	for _, missing := range []struct {
		name string
		idx  int
	}{{OwnerField, owner}, {GatesField, gates}} {
		if missing.idx < 0 {
			return nil, &Error{
				Code: diag.SSAMissingReservedField,
				Span: s.Span,
				Msg:  fmt.Sprintf("record %q has no member %q", s.Identifier.Name, missing.name),
				Err:  ErrMissingReservedField,
			}
		}
	}

	members := make([]ast.Member, 0, len(out.Members))
	members = append(members, out.Members[owner], out.Members[gates])
	for i := range out.Members {
		if i != owner && i != gates {
			members = append(members, out.Members[i])
		}
	}
	out.Members = members
	return out, nil
}

// ConsumeStruct normalizes one struct declaration of the current program.
func (a *Assigner) ConsumeStruct(s *ast.Struct) (*ast.Struct, error) {
	out, err := NormalizeRecord(s)
	if err != nil {
		var se *Error
		if errors.As(err, &se) {
			se.Program = a.program
		}
		return nil, err
	}
	return out, nil
}
