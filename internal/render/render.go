// Package render turns parsed streams into template-ready fragments with
// chooser references resolved and value adapters applied.
package render

import (
	"ventanita/internal/blocks"
)

// Fragment is one rendered block.
type Fragment struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Template string `json:"template,omitempty"`
	Value    any    `json:"value"`
}

// Fragments renders every child of the stream in order. A nil resolver
// leaves references unresolved.
func Fragments(s blocks.StreamValue, r blocks.Resolver) []Fragment {
	out := make([]Fragment, 0, len(s))
	for _, c := range s {
		def := c.Def()
		f := Fragment{ID: c.ID, Type: c.Type, Value: value(def, c.Value, r)}
		if def != nil {
			f.Template = def.Template
		}
		out = append(out, f)
	}
	return out
}

func value(def *blocks.Definition, v any, r blocks.Resolver) any {
	if def == nil || v == nil {
		return v
	}
	switch def.Adapter {
	case blocks.AdapterLink:
		if sv, ok := v.(*blocks.StructValue); ok {
			return blocks.LinkFromStruct(sv, r).View()
		}
	case blocks.AdapterRatings:
		if sv, ok := v.(*blocks.StructValue); ok {
			return blocks.RatingsFromStruct(sv)
		}
	}

	switch def.Kind {
	case blocks.KindImage, blocks.KindPage, blocks.KindDocument:
		id, _ := v.(string)
		return resolve(def.Kind, id, r)
	case blocks.KindStruct:
		sv, ok := v.(*blocks.StructValue)
		if !ok {
			return v
		}
		m := make(map[string]any, len(def.Fields))
		for _, f := range def.Fields {
			m[f.Name] = value(f.Def, sv.Get(f.Name), r)
		}
		return m
	case blocks.KindList:
		l, ok := v.(blocks.ListValue)
		if !ok {
			return v
		}
		items := make([]any, len(l.Items))
		for i, item := range l.Items {
			items[i] = value(def.Child, item, r)
		}
		return items
	case blocks.KindStream:
		if sub, ok := v.(blocks.StreamValue); ok {
			return Fragments(sub, r)
		}
	}
	return v
}

// resolve returns the referenced target, or nil when it no longer exists.
func resolve(kind blocks.Kind, id string, r blocks.Resolver) any {
	if id == "" || r == nil {
		return nil
	}
	switch kind {
	case blocks.KindImage:
		if img, ok := r.ResolveImage(id); ok {
			return img
		}
	case blocks.KindPage:
		if p, ok := r.ResolvePage(id); ok {
			return p
		}
	case blocks.KindDocument:
		if d, ok := r.ResolveDocument(id); ok {
			return d
		}
	}
	return nil
}
