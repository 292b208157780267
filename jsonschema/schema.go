package jsonschema

import (
	"bytes"
	"errors"
	"fmt"

	json "github.com/goccy/go-json"

	ir "github.com/reoring/zodgen/ir"
)

// Draft is the dialect written into Document.Schema.
const Draft = "https://json-schema.org/draft/2020-12/schema"

// Schema is a minimal JSON Schema representation used for export.
// Keep this struct small and extend incrementally.
type Schema struct {
	Ref string `json:"$ref,omitempty"`

	// Core
	Type  string `json:"type,omitempty"`
	Const any    `json:"const,omitempty"`

	// Object
	Properties           Properties `json:"properties,omitempty"`
	Required             []string   `json:"required,omitempty"`
	AdditionalProperties *Schema    `json:"additionalProperties,omitempty"`
	PropertyNames        *Schema    `json:"propertyNames,omitempty"`

	// Array
	Items       *Schema   `json:"items,omitempty"`
	PrefixItems []*Schema `json:"prefixItems,omitempty"`
	MinItems    *int      `json:"minItems,omitempty"`
	MaxItems    *int      `json:"maxItems,omitempty"`

	// Composition
	OneOf         []*Schema      `json:"oneOf,omitempty"`
	AnyOf         []*Schema      `json:"anyOf,omitempty"`
	AllOf         []*Schema      `json:"allOf,omitempty"`
	Discriminator *Discriminator `json:"discriminator,omitempty"`
}

// Discriminator names the property that selects a oneOf branch (OpenAPI style).
type Discriminator struct {
	PropertyName string `json:"propertyName"`
}

// Property is one entry of an ordered property map.
type Property struct {
	Name   string
	Schema *Schema
}

// Properties keeps declaration order when marshaled.
type Properties []Property

// Get returns the schema of name.
func (ps Properties) Get(name string) (*Schema, bool) {
	for _, p := range ps {
		if p.Name == name {
			return p.Schema, true
		}
	}
	return nil, false
}

// MarshalJSON writes the properties as an object in slice order.
func (ps Properties) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, p := range ps {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(p.Name)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(p.Schema)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Document is a root schema holding named definitions.
type Document struct {
	Schema string     `json:"$schema"`
	Defs   Properties `json:"$defs"`
}

// NewDocument returns an empty 2020-12 document.
func NewDocument() *Document { return &Document{Schema: Draft, Defs: Properties{}} }

// Define adds or replaces a definition; a replaced definition keeps its slot.
func (d *Document) Define(name string, s *Schema) {
	for i := range d.Defs {
		if d.Defs[i].Name == name {
			d.Defs[i].Schema = s
			return
		}
	}
	d.Defs = append(d.Defs, Property{Name: name, Schema: s})
}

// DefRef is the $ref pointing at a definition of a Document.
func DefRef(name string) string { return "#/$defs/" + name }

// Marshal renders v as indented JSON.
func Marshal(v any) ([]byte, error) { return json.MarshalIndent(v, "", "  ") }

func intp(n int) *int { return &n }

// FromExpr lowers a schema expression to JSON Schema.
func FromExpr(e ir.Expr) (*Schema, error) {
	switch t := e.(type) {
	case *ir.Literal:
		return &Schema{Const: t.Value}, nil
	case *ir.Primitive:
		switch t.Name {
		case ir.String:
			return &Schema{Type: "string"}, nil
		case ir.Number:
			return &Schema{Type: "number"}, nil
		case ir.Boolean:
			return &Schema{Type: "boolean"}, nil
		case ir.BigInt:
			return &Schema{Type: "integer"}, nil
		case ir.Any, ir.Unknown:
			return &Schema{}, nil
		}
		return nil, fmt.Errorf("jsonschema: unknown primitive %q", t.Name)
	case *ir.Null:
		return &Schema{Type: "null"}, nil
	case *ir.Object:
		s := &Schema{Type: "object", Properties: make(Properties, 0, len(t.Fields))}
		for _, f := range t.Fields {
			fs, err := FromExpr(f.Schema)
			if err != nil {
				return nil, fmt.Errorf("jsonschema: field %s: %w", f.Name, err)
			}
			s.Properties = append(s.Properties, Property{Name: f.Name, Schema: fs})
			s.Required = append(s.Required, f.Name)
		}
		return s, nil
	case *ir.Tuple:
		items, err := fromList(t.Items)
		if err != nil {
			return nil, err
		}
		return &Schema{Type: "array", PrefixItems: items, MinItems: intp(len(items)), MaxItems: intp(len(items))}, nil
	case *ir.Union:
		members, err := fromList(t.Members)
		if err != nil {
			return nil, err
		}
		if t.Discriminator != "" {
			return &Schema{OneOf: members, Discriminator: &Discriminator{PropertyName: t.Discriminator}}, nil
		}
		return &Schema{AnyOf: members}, nil
	case *ir.Intersection:
		parts, err := fromList([]ir.Expr{t.Left, t.Right})
		if err != nil {
			return nil, err
		}
		return &Schema{AllOf: parts}, nil
	case *ir.Array:
		item, err := FromExpr(t.Item)
		if err != nil {
			return nil, err
		}
		return &Schema{Type: "array", Items: item}, nil
	case *ir.Nullable:
		inner, err := FromExpr(t.Inner)
		if err != nil {
			return nil, err
		}
		return &Schema{AnyOf: []*Schema{inner, {Type: "null"}}}, nil
	case *ir.Record:
		key, err := FromExpr(t.Key)
		if err != nil {
			return nil, err
		}
		val, err := FromExpr(t.Value)
		if err != nil {
			return nil, err
		}
		s := &Schema{Type: "object", AdditionalProperties: val}
		// Numeric keys travel as strings; only literal key sets constrain names.
		if key.Const != nil || len(key.AnyOf) > 0 {
			s.PropertyNames = key
		}
		return s, nil
	case *ir.Ref:
		return &Schema{Ref: DefRef(t.Name)}, nil
	case nil:
		return nil, errors.New("jsonschema: nil expression")
	}
	return nil, fmt.Errorf("jsonschema: unsupported node %T", e)
}

func fromList(xs []ir.Expr) ([]*Schema, error) {
	out := make([]*Schema, len(xs))
	for i, x := range xs {
		s, err := FromExpr(x)
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}
