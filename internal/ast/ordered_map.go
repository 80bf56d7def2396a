package ast

import (
	"bytes"
	"encoding/json"
	"fmt"
	"iter"

	"github.com/vmihailenco/msgpack/v5"
)

// OrderedMap is a string-keyed map that iterates in insertion order.
// Re-setting an existing key keeps its original position.
type OrderedMap[V any] struct {
	keys  []string
	index map[string]int
	vals  []V
}

// NewOrderedMap allocates an empty map with an optional capacity hint.
func NewOrderedMap[V any](capHint int) *OrderedMap[V] {
	return &OrderedMap[V]{
		keys:  make([]string, 0, capHint),
		index: make(map[string]int, capHint),
		vals:  make([]V, 0, capHint),
	}
}

// Set inserts or replaces the value stored under key.
func (m *OrderedMap[V]) Set(key string, v V) {
	if m.index == nil {
		m.index = make(map[string]int)
	}
	if i, ok := m.index[key]; ok {
		m.vals[i] = v
		return
	}
	m.index[key] = len(m.keys)
	m.keys = append(m.keys, key)
	m.vals = append(m.vals, v)
}

// Get returns the value stored under key.
func (m *OrderedMap[V]) Get(key string) (V, bool) {
	var zero V
	if m == nil {
		return zero, false
	}
	i, ok := m.index[key]
	if !ok {
		return zero, false
	}
	return m.vals[i], true
}

// Delete removes key, keeping the relative order of the remaining entries.
func (m *OrderedMap[V]) Delete(key string) (V, bool) {
	var zero V
	if m == nil {
		return zero, false
	}
	i, ok := m.index[key]
	if !ok {
		return zero, false
	}
	v := m.vals[i]
	m.keys = append(m.keys[:i], m.keys[i+1:]...)
	m.vals = append(m.vals[:i], m.vals[i+1:]...)
	delete(m.index, key)
	for j := i; j < len(m.keys); j++ {
		m.index[m.keys[j]] = j
	}
	return v, true
}

// Len reports the number of entries. A nil map is empty.
func (m *OrderedMap[V]) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Keys returns a copy of the keys in insertion order.
func (m *OrderedMap[V]) Keys() []string {
	if m == nil {
		return nil
	}
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// All iterates over entries in insertion order.
func (m *OrderedMap[V]) All() iter.Seq2[string, V] {
	return func(yield func(string, V) bool) {
		if m == nil {
			return
		}
		for i, k := range m.keys {
			if !yield(k, m.vals[i]) {
				return
			}
		}
	}
}

// MapOrdered builds a new map with the same keys in the same order and values
// produced by fn. The first error aborts the transform.
func MapOrdered[V, W any](m *OrderedMap[V], fn func(key string, v V) (W, error)) (*OrderedMap[W], error) {
	out := NewOrderedMap[W](m.Len())
	for k, v := range m.All() {
		w, err := fn(k, v)
		if err != nil {
			return nil, err
		}
		out.Set(k, w)
	}
	return out, nil
}

// MarshalJSON encodes the map as a JSON object whose members keep insertion order.
func (m *OrderedMap[V]) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.Keys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(m.vals[i])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", k, err)
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object, recording members in document order.
func (m *OrderedMap[V]) UnmarshalJSON(data []byte) error {
	*m = OrderedMap[V]{index: make(map[string]int)}
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("ordered map: expected object, got %v", tok)
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("ordered map: expected key, got %v", tok)
		}
		var v V
		if err := dec.Decode(&v); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		if _, dup := m.index[key]; dup {
			return fmt.Errorf("ordered map: duplicate key %q", key)
		}
		m.Set(key, v)
	}
	_, err = dec.Token()
	return err
}

var (
	_ msgpack.CustomEncoder = (*OrderedMap[int])(nil)
	_ msgpack.CustomDecoder = (*OrderedMap[int])(nil)
)

// EncodeMsgpack writes the map as an array of [key, value] pairs.
func (m *OrderedMap[V]) EncodeMsgpack(enc *msgpack.Encoder) error {
	if err := enc.EncodeArrayLen(m.Len()); err != nil {
		return err
	}
	for k, v := range m.All() {
		if err := enc.EncodeArrayLen(2); err != nil {
			return err
		}
		if err := enc.EncodeString(k); err != nil {
			return err
		}
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("%s: %w", k, err)
		}
	}
	return nil
}

// DecodeMsgpack reads the layout written by EncodeMsgpack.
func (m *OrderedMap[V]) DecodeMsgpack(dec *msgpack.Decoder) error {
	n, err := dec.DecodeArrayLen()
	if err != nil {
		return err
	}
	if n < 0 {
		n = 0
	}
	*m = *NewOrderedMap[V](n)
	for range n {
		pair, err := dec.DecodeArrayLen()
		if err != nil {
			return err
		}
		if pair != 2 {
			return fmt.Errorf("ordered map: entry has %d elements, want 2", pair)
		}
		key, err := dec.DecodeString()
		if err != nil {
			return err
		}
		var v V
		if err := dec.Decode(&v); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		if _, dup := m.index[key]; dup {
			return fmt.Errorf("ordered map: duplicate key %q", key)
		}
		m.Set(key, v)
	}
	return nil
}
