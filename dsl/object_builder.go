package dsl

import (
	"fmt"

	z "github.com/reoring/zodgen"
)

type recordBuilder struct {
	name       string
	directives []z.Directive
	params     []string
	fields     []z.FieldDescriptor
	positional bool
}

type fieldStep struct {
	b   *recordBuilder
	idx int
}

// Record creates a new record (struct) builder.
func Record(name string) *recordBuilder {
	return &recordBuilder{name: name}
}

// Field appends a field. Declaration order is emission order.
func (b *recordBuilder) Field(name string, t z.TypeRef) *fieldStep {
	b.fields = append(b.fields, z.FieldDescriptor{Name: name, Type: t})
	return &fieldStep{b: b, idx: len(b.fields) - 1}
}

// Rename sets the wire name of the current field.
func (f *fieldStep) Rename(name string) *recordBuilder {
	f.b.fields[f.idx].Directives = append(f.b.fields[f.idx].Directives, z.Rename(name))
	return f.b
}

// Directive attaches a raw directive to the current field.
func (f *fieldStep) Directive(key, value string) *recordBuilder {
	f.b.fields[f.idx].Directives = append(f.b.fields[f.idx].Directives, z.Directive{Key: key, Value: value})
	return f.b
}

func (f *fieldStep) Field(name string, t z.TypeRef) *fieldStep { return f.b.Field(name, t) }
func (f *fieldStep) Build() (*z.RecordType, error)            { return f.b.Build() }
func (f *fieldStep) MustBuild() *z.RecordType                 { return f.b.MustBuild() }

// Rename sets the type-level rename, used as the export name.
func (b *recordBuilder) Rename(name string) *recordBuilder {
	b.directives = append(b.directives, z.Rename(name))
	return b
}

// Directive attaches a raw type-level directive.
func (b *recordBuilder) Directive(key, value string) *recordBuilder {
	b.directives = append(b.directives, z.Directive{Key: key, Value: value})
	return b
}

// TypeParams declares generic parameters referenced through Param.
func (b *recordBuilder) TypeParams(names ...string) *recordBuilder {
	b.params = append(b.params, names...)
	return b
}

// Positional marks the record as a tuple struct. Build accepts it; synthesis
// rejects it as an unsupported shape.
func (b *recordBuilder) Positional() *recordBuilder {
	b.positional = true
	return b
}

// Build validates the builder and returns the descriptor.
func (b *recordBuilder) Build() (*z.RecordType, error) {
	root := z.Root()
	var iss z.Issues
	if b.name == "" {
		iss = append(iss, root.Field("name").Issue(z.CodeRequired, "type name is empty"))
	}
	iss = append(iss, checkDirectives(root.Field("directives"), b.directives)...)
	iss = append(iss, checkFields(root.Field("fields"), b.fields, b.params)...)
	if len(iss) > 0 {
		return nil, iss
	}
	return &z.RecordType{
		Name:       b.name,
		Directives: append([]z.Directive(nil), b.directives...),
		TypeParams: append([]string(nil), b.params...),
		Fields:     append([]z.FieldDescriptor(nil), b.fields...),
		Positional: b.positional,
	}, nil
}

// MustBuild is like Build but panics on error.
func (b *recordBuilder) MustBuild() *z.RecordType {
	r, err := b.Build()
	if err != nil {
		panic(fmt.Sprintf("dsl: record %s: %v", b.name, err))
	}
	return r
}

// checkFields reports empty names, missing types, duplicate effective names,
// and type-level directives placed on a field.
func checkFields(p z.PathRef, fs []z.FieldDescriptor, params []string) z.Issues {
	var iss z.Issues
	seen := map[string]int{}
	for i, f := range fs {
		fp := p.Index(i)
		if f.Name == "" {
			iss = append(iss, fp.Field("name").Issue(z.CodeRequired, "field name is empty"))
		}
		if f.Type == nil {
			iss = append(iss, fp.Field("type").Issue(z.CodeRequired, "field type is missing"))
		} else {
			iss = append(iss, checkParams(fp.Field("type"), f.Type, params)...)
		}
		for j, d := range f.Directives {
			if z.IsTypeLevelDirective(d.Key) {
				iss = append(iss, fp.Field("directives").Index(j).Issue(z.CodeUnknownKey, d.Key+" is only valid on a type"))
			}
		}
		name := f.EffectiveName()
		if prev, dup := seen[name]; dup {
			iss = append(iss, fp.Issue(z.CodeDuplicateKey, fmt.Sprintf("%q also used by field %d", name, prev)))
			continue
		}
		seen[name] = i
	}
	return iss
}

// checkParams reports Param references that the owner does not declare.
func checkParams(p z.PathRef, t z.TypeRef, params []string) z.Issues {
	switch r := t.(type) {
	case z.Param:
		for _, n := range params {
			if n == r.Name {
				return nil
			}
		}
		return z.Issues{p.Issue(z.CodeInvalidType, fmt.Sprintf("undeclared type parameter %q", r.Name))}
	case z.Prim:
		return checkArgs(p, r.Args, params)
	case z.Named:
		return checkArgs(p, r.Args, params)
	}
	return nil
}

func checkArgs(p z.PathRef, args []z.TypeRef, params []string) z.Issues {
	var iss z.Issues
	for _, a := range args {
		iss = append(iss, checkParams(p, a, params)...)
	}
	return iss
}

func checkDirectives(p z.PathRef, ds []z.Directive) z.Issues {
	var iss z.Issues
	for i, d := range ds {
		if d.Key == "" {
			iss = append(iss, p.Index(i).Issue(z.CodeRequired, "directive key is empty"))
		}
	}
	return iss
}
