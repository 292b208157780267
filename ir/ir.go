// Package ir defines the schema expression algebra produced by the
// synthesizer and consumed by the renderers (zod text, JSON Schema).
// Nodes are immutable once built; renderers never modify them.
package ir

// NodeKind identifies an IR node type.
type NodeKind int

const (
	NodeLiteral NodeKind = iota
	NodePrimitive
	NodeObject
	NodeTuple
	NodeUnion
	NodeIntersection
	NodeNull
	NodeArray
	NodeNullable
	NodeRecord
	NodeRef
)

var nodeKindNames = [...]string{
	NodeLiteral:      "literal",
	NodePrimitive:    "primitive",
	NodeObject:       "object",
	NodeTuple:        "tuple",
	NodeUnion:        "union",
	NodeIntersection: "intersection",
	NodeNull:         "null",
	NodeArray:        "array",
	NodeNullable:     "nullable",
	NodeRecord:       "record",
	NodeRef:          "ref",
}

func (k NodeKind) String() string {
	if k < 0 || int(k) >= len(nodeKindNames) {
		return "unknown"
	}
	return nodeKindNames[k]
}

// Expr is the root IR node interface.
type Expr interface {
	Kind() NodeKind
}

// Literal is a single-value schema. Value is a string, bool, or number.
type Literal struct {
	Value any
}

func (l *Literal) Kind() NodeKind { return NodeLiteral }

// PrimitiveKind names a scalar schema token.
type PrimitiveKind string

const (
	String  PrimitiveKind = "string"
	Number  PrimitiveKind = "number"
	Boolean PrimitiveKind = "boolean"
	BigInt  PrimitiveKind = "bigint"
	Any     PrimitiveKind = "any"
	Unknown PrimitiveKind = "unknown"
)

// Primitive represents string/boolean/number and friends.
type Primitive struct {
	Name PrimitiveKind
}

func (p *Primitive) Kind() NodeKind { return NodePrimitive }

// Object is a keyed schema. Field order is emission order.
type Object struct {
	Fields []Field
}

func (o *Object) Kind() NodeKind { return NodeObject }

// Lookup returns the schema of the named field.
func (o *Object) Lookup(name string) (Expr, bool) {
	for _, f := range o.Fields {
		if f.Name == name {
			return f.Schema, true
		}
	}
	return nil, false
}

// Names returns the field names in order.
func (o *Object) Names() []string {
	out := make([]string, len(o.Fields))
	for i, f := range o.Fields {
		out[i] = f.Name
	}
	return out
}

// Field maps a wire name (post-rename) to a Schema.
type Field struct {
	Name   string
	Schema Expr
}

// Tuple is a fixed-length ordered schema.
type Tuple struct {
	Items []Expr
}

func (t *Tuple) Kind() NodeKind { return NodeTuple }

// Union is an alternation. A non-empty Discriminator marks a discriminated
// union whose members all carry that key.
type Union struct {
	Members       []Expr
	Discriminator string
}

func (u *Union) Kind() NodeKind { return NodeUnion }

// Intersection is the structural merge of two object schemas.
type Intersection struct {
	Left  Expr
	Right Expr
}

func (i *Intersection) Kind() NodeKind { return NodeIntersection }

// Null matches only null.
type Null struct{}

func (n *Null) Kind() NodeKind { return NodeNull }

// Array represents a homogeneous list of items.
type Array struct {
	Item Expr
}

func (a *Array) Kind() NodeKind { return NodeArray }

// Nullable accepts Inner or null.
type Nullable struct {
	Inner Expr
}

func (n *Nullable) Kind() NodeKind { return NodeNullable }

// Record is a map with Key and Value schemas.
type Record struct {
	Key   Expr
	Value Expr
}

func (r *Record) Kind() NodeKind { return NodeRecord }

// Ref points at another named export of the same document.
type Ref struct {
	Name string
}

func (r *Ref) Kind() NodeKind { return NodeRef }

// --- constructors used by the synthesizer and tests ---

// Lit builds a string literal.
func Lit(v string) *Literal { return &Literal{Value: v} }

// Prim builds a primitive node.
func Prim(k PrimitiveKind) *Primitive { return &Primitive{Name: k} }

// Obj builds an object from fields in order.
func Obj(fields ...Field) *Object { return &Object{Fields: fields} }

// F builds an object field.
func F(name string, s Expr) Field { return Field{Name: name, Schema: s} }
