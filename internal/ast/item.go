package ast

import (
	"zkc/internal/source"
)

// Identifier is a name together with the span it was written at.
type Identifier struct {
	Name string      `json:"name"`
	Span source.Span `json:"span"`
}

// Ident builds an identifier without a source location.
func Ident(name string) Identifier { return Identifier{Name: name} }

func (id Identifier) String() string { return id.Name }

// Mode is the visibility qualifier of an input, output or record member.
type Mode uint8

const (
	ModeNone Mode = iota
	ModeConstant
	ModePrivate
	ModePublic
)

var modeNames = []string{
	ModeNone:     "none",
	ModeConstant: "constant",
	ModePrivate:  "private",
	ModePublic:   "public",
}

func (m Mode) String() string { return enumName(m, modeNames) }

func (m Mode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

func (m *Mode) UnmarshalText(text []byte) error {
	v, err := parseEnum[Mode](text, modeNames, "mode")
	*m = v
	return err
}

// CallType distinguishes entry points (transitions) from helpers.
type CallType uint8

const (
	CallInline CallType = iota
	CallStandard
	CallTransition
)

var callTypeNames = []string{
	CallInline:     "inline",
	CallStandard:   "function",
	CallTransition: "transition",
}

func (c CallType) String() string { return enumName(c, callTypeNames) }

func (c CallType) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

func (c *CallType) UnmarshalText(text []byte) error {
	v, err := parseEnum[CallType](text, callTypeNames, "call type")
	*c = v
	return err
}

// Annotation is an @name marker on a function.
type Annotation struct {
	Identifier Identifier  `json:"identifier"`
	Span       source.Span `json:"span"`
}

// Input is a declared function or finalize parameter.
type Input struct {
	Identifier Identifier  `json:"identifier"`
	Mode       Mode        `json:"mode,omitempty"`
	Type       Type        `json:"type"`
	Span       source.Span `json:"span"`
}

// Output is a declared function or finalize result.
type Output struct {
	Mode Mode        `json:"mode,omitempty"`
	Type Type        `json:"type"`
	Span source.Span `json:"span"`
}

// Member is one field of a struct or record.
type Member struct {
	Mode       Mode        `json:"mode,omitempty"`
	Identifier Identifier  `json:"identifier"`
	Type       Type        `json:"type"`
	Span       source.Span `json:"span"`
}

// Struct is a struct or record declaration.
type Struct struct {
	Identifier Identifier  `json:"identifier"`
	Members    []Member    `json:"members"`
	IsRecord   bool        `json:"is_record,omitempty"`
	Span       source.Span `json:"span"`
}

// Member returns the member named name, or nil.
func (s *Struct) Member(name string) *Member {
	for i := range s.Members {
		if s.Members[i].Identifier.Name == name {
			return &s.Members[i]
		}
	}
	return nil
}

// Mapping declares on-chain key-value storage available to finalize code.
type Mapping struct {
	Identifier Identifier  `json:"identifier"`
	KeyType    Type        `json:"key_type"`
	ValueType  Type        `json:"value_type"`
	Span       source.Span `json:"span"`
}

// Finalize is the second execution stage of a function, run on-chain after
// the proof for the main body is verified.
type Finalize struct {
	Identifier Identifier  `json:"identifier"`
	Input      []Input     `json:"input"`
	Output     []Output    `json:"output,omitempty"`
	OutputType Type        `json:"output_type"`
	Block      *Block      `json:"block"`
	Span       source.Span `json:"span"`
}

// Function is a function, inline helper or transition declaration.
type Function struct {
	Annotations []Annotation `json:"annotations,omitempty"`
	CallType    CallType     `json:"call_type"`
	Identifier  Identifier   `json:"identifier"`
	Input       []Input      `json:"input"`
	Output      []Output     `json:"output,omitempty"`
	OutputType  Type         `json:"output_type"`
	Block       *Block       `json:"block"`
	Finalize    *Finalize    `json:"finalize,omitempty"`
	Span        source.Span  `json:"span"`
}

// HasFinalize reports whether the function declares a finalize stage.
func (f *Function) HasFinalize() bool {
	return f.Finalize != nil
}
