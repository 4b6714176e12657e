package blocks

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/mail"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

// ── Validator ──────────────────────────────────────────────
// Walks raw stored JSON against a definition tree, producing the typed
// value tree and collecting every failure with its path.

type validator struct {
	errs    []FieldError
	lenient bool // parsing stored data: keep going, keep existing IDs only
}

func (v *validator) fail(path, format string, args ...any) {
	v.errs = append(v.errs, FieldError{Path: path, Message: fmt.Sprintf(format, args...)})
}

func isNull(raw json.RawMessage) bool {
	t := bytes.TrimSpace(raw)
	return len(t) == 0 || bytes.Equal(t, []byte("null"))
}

func (v *validator) value(def *Definition, raw json.RawMessage, present bool, path string) any {
	switch {
	case def.Kind == KindStruct:
		return v.structValue(def, raw, path)
	case def.Kind == KindList:
		return v.list(def, raw, path)
	case def.Kind == KindStream:
		return v.stream(def, raw, path)
	case def.Kind == KindInteger:
		return v.integer(def, raw, present, path)
	case def.Kind.IsChooser():
		return v.chooser(def, raw, path)
	default:
		return v.text(def, raw, present, path)
	}
}

func (v *validator) text(def *Definition, raw json.RawMessage, present bool, path string) string {
	var s string
	if !isNull(raw) {
		if err := json.Unmarshal(raw, &s); err != nil {
			v.fail(path, "Expected a string.")
			return ""
		}
	} else if d, ok := def.Default.(string); ok && !present {
		s = d
	}

	switch def.Kind {
	case KindChar, KindURL, KindEmail, KindChoice, KindEmbed:
		s = strings.TrimSpace(s)
	}

	if s == "" {
		if def.Required {
			v.fail(path, "This field is required.")
		}
		return ""
	}

	if def.MaxLength > 0 {
		if n := utf8.RuneCountInString(s); n > def.MaxLength {
			v.fail(path, "Ensure this value has at most %d characters (it has %d).", def.MaxLength, n)
		}
	}

	switch def.Kind {
	case KindURL, KindEmbed:
		if !validURL(s) {
			v.fail(path, "Enter a valid URL.")
		}
	case KindEmail:
		if addr, err := mail.ParseAddress(s); err != nil || addr.Address != s {
			v.fail(path, "Enter a valid email address.")
		}
	case KindChoice:
		if !hasChoice(def.Choices, s) {
			v.fail(path, "Select a valid choice. %s is not one of the available choices.", s)
		}
	}

	if def.Check != nil {
		if err := def.Check(s); err != nil {
			v.fail(path, "%s", err.Error())
		}
	}
	return s
}

func validURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func hasChoice(choices []Choice, s string) bool {
	for _, c := range choices {
		if c.Value == s {
			return true
		}
	}
	return false
}

func (v *validator) integer(def *Definition, raw json.RawMessage, present bool, path string) int {
	if isNull(raw) {
		if def.Required && present {
			v.fail(path, "This field is required.")
		}
		d, _ := def.Default.(int)
		return d
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var x any
	if err := dec.Decode(&x); err != nil {
		v.fail(path, "Enter a whole number.")
		return 0
	}

	var text string
	switch t := x.(type) {
	case json.Number:
		text = t.String()
	case string:
		text = strings.TrimSpace(t)
	default:
		v.fail(path, "Enter a whole number.")
		return 0
	}
	if text == "" {
		if def.Required {
			v.fail(path, "This field is required.")
		}
		d, _ := def.Default.(int)
		return d
	}
	n, err := strconv.Atoi(text)
	if err != nil {
		v.fail(path, "Enter a whole number.")
		return 0
	}
	if def.MinValue != nil && n < *def.MinValue {
		v.fail(path, "Ensure this value is greater than or equal to %d.", *def.MinValue)
	}
	return n
}

func (v *validator) chooser(def *Definition, raw json.RawMessage, path string) string {
	var id string
	if !isNull(raw) {
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		var x any
		if err := dec.Decode(&x); err != nil {
			v.fail(path, "Expected a %s reference.", def.Kind)
			return ""
		}
		switch t := x.(type) {
		case json.Number:
			id = t.String()
		case string:
			id = strings.TrimSpace(t)
		case map[string]any:
			// {"id": 12} as sent by some API clients
			switch ref := t["id"].(type) {
			case json.Number:
				id = ref.String()
			case string:
				id = ref
			}
		default:
			v.fail(path, "Expected a %s reference.", def.Kind)
			return ""
		}
	}
	if id == "" && def.Required {
		v.fail(path, "This field is required.")
	}
	return id
}

func (v *validator) structValue(def *Definition, raw json.RawMessage, path string) *StructValue {
	fields := map[string]json.RawMessage{}
	if !isNull(raw) {
		if err := json.Unmarshal(raw, &fields); err != nil {
			v.fail(path, "Expected an object.")
			fields = map[string]json.RawMessage{}
		}
	}
	values := make(map[string]any, len(def.Fields))
	for _, f := range def.Fields {
		r, present := fields[f.Name]
		values[f.Name] = v.value(f.Def, r, present, path+"."+f.Name)
	}
	return &StructValue{def: def, values: values}
}

func (v *validator) list(def *Definition, raw json.RawMessage, path string) ListValue {
	var items []json.RawMessage
	if !isNull(raw) {
		if err := json.Unmarshal(raw, &items); err != nil {
			v.fail(path, "Expected a list.")
		}
	}
	out := make([]any, 0, len(items))
	for i, item := range items {
		out = append(out, v.value(def.Child, unwrapListItem(item), true, fmt.Sprintf("%s[%d]", path, i)))
	}
	v.counts(def, len(out), nil, path)
	return ListValue{Items: out, def: def.Child}
}

// unwrapListItem accepts both bare list values and the
// {"type": "item", "value": ..., "id": ...} form.
func unwrapListItem(raw json.RawMessage) json.RawMessage {
	var wrapped struct {
		Type  string          `json:"type"`
		Value json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil && wrapped.Type == "item" && wrapped.Value != nil {
		return wrapped.Value
	}
	return raw
}

type rawChild struct {
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value"`
	ID    string          `json:"id"`
}

func (v *validator) stream(def *Definition, raw json.RawMessage, path string) StreamValue {
	var raws []rawChild
	if !isNull(raw) {
		if err := json.Unmarshal(raw, &raws); err != nil {
			v.fail(path, "Expected a list of blocks.")
		}
	}

	out := make(StreamValue, 0, len(raws))
	perType := make(map[string]int)
	for i, rc := range raws {
		p := fmt.Sprintf("%s[%d]", path, i)
		cdef, ok := def.ChildType(rc.Type)
		if !ok {
			v.fail(p, "Unknown block type %q.", rc.Type)
			continue
		}
		id := rc.ID
		if id == "" && !v.lenient {
			id = uuid.NewString()
		}
		perType[rc.Type]++
		out = append(out, Child{
			ID:    id,
			Type:  rc.Type,
			Value: v.value(cdef, rc.Value, true, p),
			def:   cdef,
		})
	}
	v.counts(def, len(out), perType, path)
	return out
}

func (v *validator) counts(def *Definition, n int, perType map[string]int, path string) {
	if def.MinNum > 0 && n < def.MinNum {
		v.fail(path, "The minimum number of items is %d.", def.MinNum)
	}
	if def.MaxNum > 0 && n > def.MaxNum {
		v.fail(path, "The maximum number of items is %d.", def.MaxNum)
	}

	names := make([]string, 0, len(def.BlockCounts))
	for name := range def.BlockCounts {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		occ := def.BlockCounts[name]
		c := perType[name]
		if occ.Min > 0 && c < occ.Min {
			v.fail(path, "%s: The minimum number of items is %d.", name, occ.Min)
		}
		if occ.Max > 0 && c > occ.Max {
			v.fail(path, "%s: The maximum number of items is %d.", name, occ.Max)
		}
	}
}
