package ast

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"
)

// Trees are exchanged with the front end and the back end either as JSON
// (fixtures, debugging) or msgpack (pipeline artefacts). Both encodings share
// the json struct tags; tagged nodes are written as {kind, span, data}.

// structTag makes msgpack reuse the json field names.
const structTag = "json"

// WriteJSON writes p as indented JSON.
func WriteJSON(w io.Writer, p *Program) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(p)
}

// ReadJSON decodes a program written by WriteJSON.
func ReadJSON(r io.Reader) (*Program, error) {
	var p Program
	if err := json.NewDecoder(r).Decode(&p); err != nil {
		return nil, fmt.Errorf("decode json tree: %w", err)
	}
	if err := p.fillMaps(); err != nil {
		return nil, fmt.Errorf("decode json tree: %w", err)
	}
	return &p, nil
}

// WriteMsgpack writes p in msgpack form.
func WriteMsgpack(w io.Writer, p *Program) error {
	enc := msgpack.NewEncoder(w)
	enc.SetCustomStructTag(structTag)
	return enc.Encode(p)
}

// ReadMsgpack decodes a program written by WriteMsgpack.
func ReadMsgpack(r io.Reader) (*Program, error) {
	dec := msgpack.NewDecoder(r)
	dec.SetCustomStructTag(structTag)
	var p Program
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("decode msgpack tree: %w", err)
	}
	if err := p.fillMaps(); err != nil {
		return nil, fmt.Errorf("decode msgpack tree: %w", err)
	}
	return &p, nil
}

// ErrNilEntry is returned when a declaration map holds a null entry.
var ErrNilEntry = errors.New("null entry in tree")

// fillMaps replaces absent maps with empty ones so consumers can range
// without nil checks on hand-written inputs. Null entries are rejected.
func (p *Program) fillMaps() error {
	if p.Imports == nil {
		p.Imports = NewOrderedMap[*Program](0)
	}
	if p.ProgramScopes == nil {
		p.ProgramScopes = NewOrderedMap[*ProgramScope](0)
	}
	for name, imp := range p.Imports.All() {
		if imp == nil {
			return fmt.Errorf("imports[%q]: %w", name, ErrNilEntry)
		}
		if err := imp.fillMaps(); err != nil {
			return fmt.Errorf("imports[%q]: %w", name, err)
		}
	}
	for name, scope := range p.ProgramScopes.All() {
		if scope == nil {
			return fmt.Errorf("program_scopes[%q]: %w", name, ErrNilEntry)
		}
		if scope.Structs == nil {
			scope.Structs = NewOrderedMap[*Struct](0)
		}
		if scope.Mappings == nil {
			scope.Mappings = NewOrderedMap[*Mapping](0)
		}
		if scope.Functions == nil {
			scope.Functions = NewOrderedMap[*Function](0)
		}
		if err := firstNil(scope.Structs); err != nil {
			return fmt.Errorf("program_scopes[%q].structs%w", name, err)
		}
		if err := firstNil(scope.Mappings); err != nil {
			return fmt.Errorf("program_scopes[%q].mappings%w", name, err)
		}
		if err := firstNil(scope.Functions); err != nil {
			return fmt.Errorf("program_scopes[%q].functions%w", name, err)
		}
	}
	return nil
}

func firstNil[V any](m *OrderedMap[*V]) error {
	for key, v := range m.All() {
		if v == nil {
			return fmt.Errorf("[%q]: %w", key, ErrNilEntry)
		}
	}
	return nil
}
