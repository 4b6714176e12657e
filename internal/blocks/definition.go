package blocks

// ─────────────────────────────────────────────────────────────
// Block definitions: the declared shape of every block type
// ─────────────────────────────────────────────────────────────

// Kind is the payload shape of a block.
type Kind string

const (
	KindChar     Kind = "char"
	KindText     Kind = "text"
	KindRichText Kind = "richtext"
	KindURL      Kind = "url"
	KindEmail    Kind = "email"
	KindInteger  Kind = "integer"
	KindChoice   Kind = "choice"
	KindPage     Kind = "page"
	KindImage    Kind = "image"
	KindDocument Kind = "document"
	KindEmbed    Kind = "embed"
	KindStruct   Kind = "struct"
	KindList     Kind = "list"
	KindStream   Kind = "stream"
)

// IsScalar reports whether values of this kind are a single string or int.
func (k Kind) IsScalar() bool {
	switch k {
	case KindStruct, KindList, KindStream:
		return false
	}
	return true
}

// IsChooser reports whether the kind stores a reference ID.
func (k Kind) IsChooser() bool {
	return k == KindPage || k == KindImage || k == KindDocument
}

// Adapter names the typed value adapter applied to a struct block when it
// is rendered.
type Adapter string

const (
	AdapterNone    Adapter = ""
	AdapterLink    Adapter = "link"
	AdapterRatings Adapter = "ratings"
)

type Choice struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Field is a named child of a struct or stream block.
type Field struct {
	Name string
	Def  *Definition
}

// Occurrence bounds how many times a block may appear. Max 0 is unbounded.
type Occurrence struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Definition declares one block type.
type Definition struct {
	Key      string
	Kind     Kind
	Label    string
	Icon     string
	Template string
	HelpText string

	Required  bool
	Default   any
	Choices   []Choice
	MaxLength int
	MinValue  *int
	// Check runs after the kind-level checks on non-empty string values.
	Check func(string) error

	Fields      []Field               // struct
	Child       *Definition           // list
	Children    []Field               // stream
	MinNum      int                   // list and stream
	MaxNum      int                   // list and stream, 0 = unbounded
	BlockCounts map[string]Occurrence // stream, per child type

	Adapter Adapter
}

// Field returns the named struct field definition.
func (d *Definition) Field(name string) (*Definition, bool) {
	for _, f := range d.Fields {
		if f.Name == name {
			return f.Def, true
		}
	}
	return nil, false
}

// ChildType returns the named stream child definition.
func (d *Definition) ChildType(name string) (*Definition, bool) {
	for _, c := range d.Children {
		if c.Name == name {
			return c.Def, true
		}
	}
	return nil, false
}

// Schema is a JSON-friendly description of a definition, used by the
// authoring tools.
type Schema struct {
	Key         string                `json:"key,omitempty"`
	Kind        Kind                  `json:"kind"`
	Label       string                `json:"label,omitempty"`
	Template    string                `json:"template,omitempty"`
	Required    bool                  `json:"required,omitempty"`
	Default     any                   `json:"default,omitempty"`
	Choices     []Choice              `json:"choices,omitempty"`
	Fields      map[string]Schema     `json:"fields,omitempty"`
	FieldOrder  []string              `json:"fieldOrder,omitempty"`
	Child       *Schema               `json:"child,omitempty"`
	Children    map[string]Schema     `json:"children,omitempty"`
	MinNum      int                   `json:"minNum,omitempty"`
	MaxNum      int                   `json:"maxNum,omitempty"`
	BlockCounts map[string]Occurrence `json:"blockCounts,omitempty"`
}

// Describe converts the definition tree into a Schema.
func (d *Definition) Describe() Schema {
	s := Schema{
		Key:         d.Key,
		Kind:        d.Kind,
		Label:       d.Label,
		Template:    d.Template,
		Required:    d.Required,
		Default:     d.Default,
		Choices:     d.Choices,
		MinNum:      d.MinNum,
		MaxNum:      d.MaxNum,
		BlockCounts: d.BlockCounts,
	}
	if len(d.Fields) > 0 {
		s.Fields = make(map[string]Schema, len(d.Fields))
		for _, f := range d.Fields {
			s.Fields[f.Name] = f.Def.Describe()
			s.FieldOrder = append(s.FieldOrder, f.Name)
		}
	}
	if d.Child != nil {
		c := d.Child.Describe()
		s.Child = &c
	}
	if len(d.Children) > 0 {
		s.Children = make(map[string]Schema, len(d.Children))
		for _, c := range d.Children {
			s.Children[c.Name] = c.Def.Describe()
		}
	}
	return s
}
