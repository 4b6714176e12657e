package blocks

import (
	"bytes"
	"encoding/json"
)

// ── Value tree ─────────────────────────────────────────────
// Scalars are string (text kinds and chooser IDs) or int (integer).

// Child is one block inside a stream.
type Child struct {
	ID    string
	Type  string
	Value any
	def   *Definition
}

// Def returns the definition the child was parsed with.
func (c Child) Def() *Definition { return c.def }

func (c Child) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type  string `json:"type"`
		Value any    `json:"value"`
		ID    string `json:"id"`
	}{c.Type, c.Value, c.ID})
}

// StreamValue is an ordered, heterogeneous sequence of blocks.
type StreamValue []Child

// OfType returns the children whose type is t, in order.
func (s StreamValue) OfType(t string) []Child {
	var out []Child
	for _, c := range s {
		if c.Type == t {
			out = append(out, c)
		}
	}
	return out
}

// First returns the first child of type t.
func (s StreamValue) First(t string) (Child, bool) {
	for _, c := range s {
		if c.Type == t {
			return c, true
		}
	}
	return Child{}, false
}

// ListValue is a homogeneous list of values.
type ListValue struct {
	Items []any
	def   *Definition
}

// Def returns the list item definition.
func (l ListValue) Def() *Definition { return l.def }

func (l ListValue) Len() int { return len(l.Items) }

func (l ListValue) MarshalJSON() ([]byte, error) {
	if l.Items == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(l.Items)
}

// StructValue is a mapping of named fields in declaration order.
type StructValue struct {
	def    *Definition
	values map[string]any
}

// NewStructValue builds a struct value without a definition. Field order
// in JSON output is then alphabetical.
func NewStructValue(values map[string]any) *StructValue {
	if values == nil {
		values = map[string]any{}
	}
	return &StructValue{values: values}
}

// Def returns the struct definition, nil for hand-built values.
func (v *StructValue) Def() *Definition { return v.def }

func (v *StructValue) Get(name string) any {
	if v == nil {
		return nil
	}
	return v.values[name]
}

// String returns a string field, or "" when missing or not a string.
func (v *StructValue) String(name string) string {
	s, _ := v.Get(name).(string)
	return s
}

// Int returns an integer field, or 0.
func (v *StructValue) Int(name string) int {
	switch n := v.Get(name).(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return 0
}

func (v *StructValue) Struct(name string) *StructValue {
	s, _ := v.Get(name).(*StructValue)
	return s
}

func (v *StructValue) List(name string) ListValue {
	l, _ := v.Get(name).(ListValue)
	return l
}

func (v *StructValue) Stream(name string) StreamValue {
	s, _ := v.Get(name).(StreamValue)
	return s
}

func (v *StructValue) MarshalJSON() ([]byte, error) {
	if v == nil {
		return []byte("null"), nil
	}
	if v.def == nil {
		return json.Marshal(v.values)
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range v.def.Fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, _ := json.Marshal(f.Name)
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(v.values[f.Name])
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
