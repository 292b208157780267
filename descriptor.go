package zodgen

// TypeDescriptor describes a named data type handed to the synthesizer.
// The engine understands *RecordType and *SumType; any other implementation
// is rejected with CodeUnsupportedShape.
type TypeDescriptor interface {
	TypeName() string
	TypeDirectives() []Directive
}

// TypeRef is what a field or variant payload points to: a primitive, a named
// descriptor, a generic parameter, or an inline *RecordType / *SumType.
type TypeRef interface {
	typeRef()
}

// Prim refers to a built-in scalar or container resolved through the
// primitive mapping (u32, String, Vec<T>, Option<T>, map[K]V, ...).
type Prim struct {
	Name string
	Args []TypeRef
}

// Named refers to a descriptor registered in a Registry. Args bind the
// target's TypeParams positionally.
type Named struct {
	Name string
	Args []TypeRef
}

// Param refers to a generic type parameter of the enclosing descriptor.
type Param struct {
	Name string
}

func (Prim) typeRef()        {}
func (Named) typeRef()       {}
func (Param) typeRef()       {}
func (*RecordType) typeRef() {}
func (*SumType) typeRef()    {}

// RecordType is a struct with named fields. Field order is emission order.
type RecordType struct {
	Name       string
	Directives []Directive
	TypeParams []string
	Fields     []FieldDescriptor
	// Positional marks a tuple struct; such records are not representable.
	Positional bool
}

func (r *RecordType) TypeName() string            { return r.Name }
func (r *RecordType) TypeDirectives() []Directive { return r.Directives }

// SumType is an enum whose variants carry zero, one, or many payloads.
type SumType struct {
	Name       string
	Directives []Directive
	TypeParams []string
	Variants   []VariantDescriptor
}

func (s *SumType) TypeName() string            { return s.Name }
func (s *SumType) TypeDirectives() []Directive { return s.Directives }

// FieldDescriptor is one named field of a record or struct variant.
type FieldDescriptor struct {
	Name       string
	Directives []Directive
	Type       TypeRef
}

// EffectiveName is the rename directive value if present, else Name.
func (f FieldDescriptor) EffectiveName() string {
	return ParseDirectives(f.Directives).NameOr(f.Name)
}

// VariantDescriptor is one variant of a sum type.
type VariantDescriptor struct {
	Name       string
	Directives []Directive
	Shape      VariantShape
}

// EffectiveName is the rename directive value if present, else Name.
func (v VariantDescriptor) EffectiveName() string {
	return ParseDirectives(v.Directives).NameOr(v.Name)
}

// VariantShape is the payload layout of a variant: UnitShape, SingleShape,
// MultiShape, or FieldsShape.
type VariantShape interface {
	variantShape()
}

// UnitShape carries no payload.
type UnitShape struct{}

// SingleShape carries exactly one unnamed payload (newtype variant).
type SingleShape struct {
	Type TypeRef
}

// MultiShape carries two or more unnamed payloads (tuple variant).
type MultiShape struct {
	Types []TypeRef
}

// FieldsShape carries named fields (struct variant).
type FieldsShape struct {
	Fields []FieldDescriptor
}

func (UnitShape) variantShape()   {}
func (SingleShape) variantShape() {}
func (MultiShape) variantShape()  {}
func (FieldsShape) variantShape() {}

// ExportName is the type-level rename if present, else the type name.
func ExportName(d TypeDescriptor) string {
	return ParseDirectives(d.TypeDirectives()).NameOr(d.TypeName())
}

// IsGeneric reports whether d declares type parameters.
func IsGeneric(d TypeDescriptor) bool { return len(typeParams(d)) > 0 }

func typeParams(d TypeDescriptor) []string {
	switch t := d.(type) {
	case *RecordType:
		return t.TypeParams
	case *SumType:
		return t.TypeParams
	}
	return nil
}
