package ast

import "strings"

// TypeKind enumerates the type constructors of the language.
type TypeKind uint8

const (
	TypeUnit TypeKind = iota
	TypeAddress
	TypeBoolean
	TypeField
	TypeGroup
	TypeScalar
	TypeString
	TypeInteger
	// TypeIdentifier names a struct or record declared in some program scope.
	TypeIdentifier
	TypeTuple
)

var typeKindNames = []string{
	TypeUnit:       "unit",
	TypeAddress:    "address",
	TypeBoolean:    "boolean",
	TypeField:      "field",
	TypeGroup:      "group",
	TypeScalar:     "scalar",
	TypeString:     "string",
	TypeInteger:    "integer",
	TypeIdentifier: "identifier",
	TypeTuple:      "tuple",
}

func (k TypeKind) String() string { return enumName(k, typeKindNames) }

func (k TypeKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *TypeKind) UnmarshalText(text []byte) error {
	v, err := parseEnum[TypeKind](text, typeKindNames, "type kind")
	*k = v
	return err
}

// IntType is the width and signedness of an integer type.
type IntType uint8

const (
	I8 IntType = iota
	I16
	I32
	I64
	I128
	U8
	U16
	U32
	U64
	U128
)

var intTypeNames = []string{
	I8: "i8", I16: "i16", I32: "i32", I64: "i64", I128: "i128",
	U8: "u8", U16: "u16", U32: "u32", U64: "u64", U128: "u128",
}

func (t IntType) String() string { return enumName(t, intTypeNames) }

func (t IntType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

func (t *IntType) UnmarshalText(text []byte) error {
	v, err := parseEnum[IntType](text, intTypeNames, "integer type")
	*t = v
	return err
}

// Signed reports whether values of t may be negative.
func (t IntType) Signed() bool { return t <= I128 }

// Type is a declared type. Int is meaningful for TypeInteger, Name for
// TypeIdentifier and Elems for TypeTuple.
type Type struct {
	Kind  TypeKind `json:"kind"`
	Int   IntType  `json:"int,omitempty"`
	Name  string   `json:"name,omitempty"`
	Elems []Type   `json:"elems,omitempty"`
}

// Convenience constructors used by tests and synthesized nodes.
func IntegerType(t IntType) Type    { return Type{Kind: TypeInteger, Int: t} }
func NamedType(name string) Type    { return Type{Kind: TypeIdentifier, Name: name} }
func PrimitiveType(k TypeKind) Type { return Type{Kind: k} }

// Clone returns a copy of t sharing no tuple storage.
func (t Type) Clone() Type {
	if len(t.Elems) == 0 {
		t.Elems = nil
		return t
	}
	elems := make([]Type, len(t.Elems))
	for i := range t.Elems {
		elems[i] = t.Elems[i].Clone()
	}
	t.Elems = elems
	return t
}

func (t Type) String() string {
	switch t.Kind {
	case TypeUnit:
		return "()"
	case TypeInteger:
		return t.Int.String()
	case TypeIdentifier:
		return t.Name
	case TypeTuple:
		parts := make([]string, len(t.Elems))
		for i := range t.Elems {
			parts[i] = t.Elems[i].String()
		}
		return "(" + strings.Join(parts, ", ") + ")"
	default:
		return t.Kind.String()
	}
}
