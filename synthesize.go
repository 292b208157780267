package zodgen

import (
	"fmt"

	"github.com/reoring/zodgen/ir"
	"github.com/reoring/zodgen/primitive"
)

// Option configures a Synthesizer or a Generator.
type Option func(*settings)

type settings struct {
	registry   *Registry
	references bool
	header     string
	exports    map[string]string
}

// WithRegistry resolves Named references against r.
func WithRegistry(r *Registry) Option { return func(s *settings) { s.registry = r } }

// WithReferences emits ir.Ref for non-generic Named references instead of
// inlining the referenced schema. Recursive types need this mode. A
// Generator only references types it exports and inlines the rest.
func WithReferences() Option { return func(s *settings) { s.references = true } }

// withExports limits references to the given type name → export name
// table. Types missing from it are inlined.
func withExports(m map[string]string) Option { return func(s *settings) { s.exports = m } }

// WithHeader prepends a comment line to generated documents.
func WithHeader(h string) Option { return func(s *settings) { s.header = h } }

// Synthesizer turns descriptors into schema expressions. It holds no state
// between calls and is safe for concurrent use.
type Synthesizer struct {
	registry   *Registry
	references bool
	exports    map[string]string
}

// NewSynthesizer creates a Synthesizer.
func NewSynthesizer(opts ...Option) *Synthesizer {
	var s settings
	for _, o := range opts {
		o(&s)
	}
	return &Synthesizer{registry: s.registry, references: s.references, exports: s.exports}
}

// Synthesize is shorthand for NewSynthesizer(opts...).Synthesize(d).
func Synthesize(d TypeDescriptor, opts ...Option) (ir.Expr, error) {
	return NewSynthesizer(opts...).Synthesize(d)
}

// Synthesize produces the schema of d.
func (s *Synthesizer) Synthesize(d TypeDescriptor) (ir.Expr, error) {
	st := newSynthesis(s)
	if d != nil {
		st.visiting[d.TypeName()] = true
	}
	return st.descriptor(d, nil)
}

// SynthesizeRef produces the schema of a type reference, e.g. a generic
// instantiation such as Named{Name: "Page", Args: []TypeRef{Prim{Name: "u32"}}}.
func (s *Synthesizer) SynthesizeRef(ref TypeRef) (ir.Expr, error) {
	return newSynthesis(s).ref(ref, nil)
}

// env binds generic parameter names to already-synthesized arguments.
type env map[string]ir.Expr

// synthesis carries per-call state: the Named chain being expanded and the
// descriptors behind emitted references.
type synthesis struct {
	s        *Synthesizer
	visiting map[string]bool
	targets  map[string]TypeDescriptor
}

func newSynthesis(s *Synthesizer) *synthesis {
	return &synthesis{s: s, visiting: map[string]bool{}, targets: map[string]TypeDescriptor{}}
}

// refName is the schema name a reference to d points at. ok is false when
// the type is not exported and has to be inlined.
func (s *Synthesizer) refName(d TypeDescriptor) (string, bool) {
	if s.exports == nil {
		return ExportName(d), true
	}
	name, ok := s.exports[d.TypeName()]
	return name, ok
}

func (st *synthesis) descriptor(d TypeDescriptor, e env) (ir.Expr, error) {
	switch t := d.(type) {
	case *RecordType:
		return st.record(t, e)
	case *SumType:
		return st.sum(t, e)
	case nil:
		return nil, &ConfigError{Code: CodeUnsupportedShape, Detail: "nil descriptor"}
	default:
		return nil, &ConfigError{Code: CodeUnsupportedShape, Type: d.TypeName(), Detail: fmt.Sprintf("descriptor kind %T", d)}
	}
}

func (st *synthesis) record(r *RecordType, e env) (ir.Expr, error) {
	if r.Positional {
		return nil, &ConfigError{Code: CodeUnsupportedShape, Type: r.Name, Detail: "positional-only records are not representable"}
	}
	fields, err := st.fields(r.Name, "", r.Fields, e)
	if err != nil {
		return nil, err
	}
	return &ir.Object{Fields: fields}, nil
}

func (st *synthesis) fields(owner, variant string, fs []FieldDescriptor, e env) ([]ir.Field, error) {
	out := make([]ir.Field, 0, len(fs))
	for _, f := range fs {
		name := f.EffectiveName()
		schema, err := st.ref(f.Type, e)
		if err != nil {
			return nil, st.blame(err, owner, variant, f.Name)
		}
		out = append(out, ir.F(name, schema))
	}
	return out, nil
}

// blame attributes a failure inside a member's type to that member. Errors
// that already name another type are annotated with the path instead.
func (st *synthesis) blame(err error, owner, variant, field string) error {
	ce, ok := err.(*ConfigError)
	if !ok {
		return err
	}
	if ce.Type == "" {
		cp := *ce
		cp.Type, cp.Variant, cp.Field = owner, variant, field
		return &cp
	}
	member := owner
	if variant != "" {
		member += "::" + variant
	}
	if field != "" {
		member += "." + field
	}
	return within(err, member)
}

func (st *synthesis) ref(ref TypeRef, e env) (ir.Expr, error) {
	switch t := ref.(type) {
	case Prim:
		args, err := st.refs(t.Args, e)
		if err != nil {
			return nil, err
		}
		out, err := primitive.Lookup(t.Name, args)
		if err != nil {
			return nil, &ConfigError{Code: CodeUnsupportedShape, Detail: err.Error()}
		}
		return out, nil
	case Named:
		return st.named(t, e)
	case Param:
		if bound, ok := e[t.Name]; ok {
			return bound, nil
		}
		return nil, &ConfigError{Code: CodeUnsupportedShape, Detail: fmt.Sprintf("unbound type parameter %q", t.Name)}
	case *RecordType:
		return st.record(t, e)
	case *SumType:
		return st.sum(t, e)
	case nil:
		return nil, &ConfigError{Code: CodeUnsupportedShape, Detail: "missing type reference"}
	default:
		return nil, &ConfigError{Code: CodeUnsupportedShape, Detail: fmt.Sprintf("type reference %T", ref)}
	}
}

func (st *synthesis) refs(rs []TypeRef, e env) ([]ir.Expr, error) {
	if len(rs) == 0 {
		return nil, nil
	}
	out := make([]ir.Expr, len(rs))
	for i, r := range rs {
		x, err := st.ref(r, e)
		if err != nil {
			return nil, err
		}
		out[i] = x
	}
	return out, nil
}

func (st *synthesis) named(n Named, e env) (ir.Expr, error) {
	d, ok := st.s.registry.Lookup(n.Name)
	if !ok {
		return nil, &ConfigError{Code: CodeUnsupportedShape, Detail: fmt.Sprintf("unknown type %q", n.Name)}
	}
	if st.s.references && len(n.Args) == 0 && !IsGeneric(d) {
		if name, ok := st.s.refName(d); ok {
			st.targets[name] = d
			return &ir.Ref{Name: name}, nil
		}
	}
	if st.visiting[n.Name] {
		return nil, &ConfigError{Code: CodeRecursiveType, Type: n.Name, Detail: "enable references to emit recursive types"}
	}
	params := typeParams(d)
	if len(params) != len(n.Args) {
		return nil, &ConfigError{Code: CodeUnsupportedShape, Type: n.Name,
			Detail: fmt.Sprintf("expects %d type arguments, got %d", len(params), len(n.Args))}
	}
	args, err := st.refs(n.Args, e)
	if err != nil {
		return nil, err
	}
	var inner env
	if len(params) > 0 {
		inner = make(env, len(params))
		for i, p := range params {
			inner[p] = args[i]
		}
	}
	st.visiting[n.Name] = true
	defer delete(st.visiting, n.Name)
	return st.descriptor(d, inner)
}

// payload synthesizes the bare payload of a non-unit variant.
func (st *synthesis) payload(owner string, v VariantDescriptor, e env) (ir.Expr, error) {
	switch sh := v.Shape.(type) {
	case SingleShape:
		x, err := st.ref(sh.Type, e)
		if err != nil {
			return nil, st.blame(err, owner, v.Name, "")
		}
		return x, nil
	case MultiShape:
		items, err := st.refs(sh.Types, e)
		if err != nil {
			return nil, st.blame(err, owner, v.Name, "")
		}
		return &ir.Tuple{Items: items}, nil
	case FieldsShape:
		fields, err := st.fields(owner, v.Name, sh.Fields, e)
		if err != nil {
			return nil, err
		}
		return &ir.Object{Fields: fields}, nil
	default:
		return nil, &ConfigError{Code: CodeUnsupportedShape, Type: owner, Variant: v.Name, Detail: fmt.Sprintf("variant shape %T", v.Shape)}
	}
}

func isUnit(v VariantDescriptor) bool {
	_, ok := v.Shape.(UnitShape)
	return ok
}

func (st *synthesis) sum(t *SumType, e env) (ir.Expr, error) {
	rep, err := SelectFor(t)
	if err != nil {
		return nil, err
	}
	switch r := rep.(type) {
	case ExternallyTagged:
		return st.external(t, e)
	case InternallyTagged:
		return st.internal(t, r.Tag, e)
	case AdjacentlyTagged:
		return st.adjacent(t, r.Tag, r.Content, e)
	case Untagged:
		return st.untagged(t, e)
	}
	return nil, &ConfigError{Code: CodeUnsupportedShape, Type: t.Name, Detail: fmt.Sprintf("representation %T", rep)}
}

func (st *synthesis) external(t *SumType, e env) (ir.Expr, error) {
	members := make([]ir.Expr, 0, len(t.Variants))
	for _, v := range t.Variants {
		name := v.EffectiveName()
		if isUnit(v) {
			members = append(members, ir.Lit(name))
			continue
		}
		p, err := st.payload(t.Name, v, e)
		if err != nil {
			return nil, err
		}
		members = append(members, ir.Obj(ir.F(name, p)))
	}
	return &ir.Union{Members: members}, nil
}

func (st *synthesis) internal(t *SumType, tag string, e env) (ir.Expr, error) {
	members := make([]ir.Expr, 0, len(t.Variants))
	for _, v := range t.Variants {
		tagField := ir.F(tag, ir.Lit(v.EffectiveName()))
		switch sh := v.Shape.(type) {
		case UnitShape:
			members = append(members, ir.Obj(tagField))
		case SingleShape:
			p, err := st.payload(t.Name, v, e)
			if err != nil {
				return nil, err
			}
			if !st.objectLike(p) {
				return nil, &ConfigError{Code: CodeInternalTagTupleVariant, Type: t.Name, Variant: v.Name,
					Detail: fmt.Sprintf("payload is a %s, not an object", p.Kind())}
			}
			members = append(members, &ir.Intersection{Left: ir.Obj(tagField), Right: p})
		case FieldsShape:
			fields, err := st.fields(t.Name, v.Name, sh.Fields, e)
			if err != nil {
				return nil, err
			}
			members = append(members, &ir.Object{Fields: append([]ir.Field{tagField}, fields...)})
		case MultiShape:
			// SelectFor rejects this first; kept for descriptors built after selection.
			return nil, &ConfigError{Code: CodeInternalTagTupleVariant, Type: t.Name, Variant: v.Name,
				Detail: fmt.Sprintf("tuple variant with %d elements", len(sh.Types))}
		default:
			return nil, &ConfigError{Code: CodeUnsupportedShape, Type: t.Name, Variant: v.Name, Detail: fmt.Sprintf("variant shape %T", v.Shape)}
		}
	}
	return &ir.Union{Members: members, Discriminator: tag}, nil
}

// objectLike reports whether x serializes as a JSON object a tag can be
// merged into: an object, a map, an intersection of such, or a reference to
// a record.
func (st *synthesis) objectLike(x ir.Expr) bool {
	switch t := x.(type) {
	case *ir.Object, *ir.Record:
		return true
	case *ir.Intersection:
		return st.objectLike(t.Left) && st.objectLike(t.Right)
	case *ir.Ref:
		r, ok := st.targets[t.Name].(*RecordType)
		return ok && !r.Positional
	}
	return false
}

func (st *synthesis) adjacent(t *SumType, tag, content string, e env) (ir.Expr, error) {
	members := make([]ir.Expr, 0, len(t.Variants))
	for _, v := range t.Variants {
		obj := ir.Obj(ir.F(tag, ir.Lit(v.EffectiveName())))
		if !isUnit(v) {
			p, err := st.payload(t.Name, v, e)
			if err != nil {
				return nil, err
			}
			obj.Fields = append(obj.Fields, ir.F(content, p))
		}
		members = append(members, obj)
	}
	return &ir.Union{Members: members, Discriminator: tag}, nil
}

func (st *synthesis) untagged(t *SumType, e env) (ir.Expr, error) {
	members := make([]ir.Expr, 0, len(t.Variants))
	for _, v := range t.Variants {
		if isUnit(v) {
			members = append(members, &ir.Null{})
			continue
		}
		p, err := st.payload(t.Name, v, e)
		if err != nil {
			return nil, err
		}
		members = append(members, p)
	}
	return &ir.Union{Members: members}, nil
}
