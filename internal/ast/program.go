package ast

import (
	"zkc/internal/source"
)

// ProgramID is the fully qualified program name, e.g. token.aleo.
type ProgramID struct {
	Name    Identifier `json:"name"`
	Network Identifier `json:"network"`
}

func (id ProgramID) String() string {
	if id.Network.Name == "" {
		return id.Name.Name
	}
	return id.Name.Name + "." + id.Network.Name
}

// ProgramScope groups the declarations of one program.
type ProgramScope struct {
	ProgramID ProgramID              `json:"program_id"`
	Structs   *OrderedMap[*Struct]   `json:"structs"`
	Mappings  *OrderedMap[*Mapping]  `json:"mappings"`
	Functions *OrderedMap[*Function] `json:"functions"`
	Span      source.Span            `json:"span"`
}

// NewProgramScope returns a scope with empty declaration maps.
func NewProgramScope(id ProgramID, span source.Span) *ProgramScope {
	return &ProgramScope{
		ProgramID: id,
		Structs:   NewOrderedMap[*Struct](0),
		Mappings:  NewOrderedMap[*Mapping](0),
		Functions: NewOrderedMap[*Function](0),
		Span:      span,
	}
}

// Program is the root of a compilation unit. Imports are full programs
// themselves and are keyed by their program name.
type Program struct {
	Imports       *OrderedMap[*Program]      `json:"imports"`
	ProgramScopes *OrderedMap[*ProgramScope] `json:"program_scopes"`
}

// NewProgram returns a program without imports or scopes.
func NewProgram() *Program {
	return &Program{
		Imports:       NewOrderedMap[*Program](0),
		ProgramScopes: NewOrderedMap[*ProgramScope](0),
	}
}

// Name returns the ID of the first program scope, which by convention names
// the program. Programs without scopes have no name.
func (p *Program) Name() string {
	if p == nil {
		return ""
	}
	for _, scope := range p.ProgramScopes.All() {
		if scope == nil {
			return ""
		}
		return scope.ProgramID.String()
	}
	return ""
}
