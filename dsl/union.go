package dsl

import (
	"fmt"

	z "github.com/reoring/zodgen"
)

type enumBuilder struct {
	name       string
	directives []z.Directive
	params     []string
	variants   []z.VariantDescriptor
}

type variantStep struct {
	b   *enumBuilder
	idx int
}

// Enum creates a new sum type builder. Without Tag/Content/Untagged it is
// externally tagged.
func Enum(name string) *enumBuilder {
	return &enumBuilder{name: name}
}

// Tag sets the tag key (internally tagged, or adjacently with Content).
func (b *enumBuilder) Tag(key string) *enumBuilder {
	b.directives = append(b.directives, z.Tag(key))
	return b
}

// Content sets the content key of an adjacently tagged enum.
func (b *enumBuilder) Content(key string) *enumBuilder {
	b.directives = append(b.directives, z.Content(key))
	return b
}

// Untagged emits bare payloads.
func (b *enumBuilder) Untagged() *enumBuilder {
	b.directives = append(b.directives, z.UntaggedDirective())
	return b
}

// Rename sets the type-level rename, used as the export name.
func (b *enumBuilder) Rename(name string) *enumBuilder {
	b.directives = append(b.directives, z.Rename(name))
	return b
}

// Directive attaches a raw type-level directive.
func (b *enumBuilder) Directive(key, value string) *enumBuilder {
	b.directives = append(b.directives, z.Directive{Key: key, Value: value})
	return b
}

// TypeParams declares generic parameters referenced through Param.
func (b *enumBuilder) TypeParams(names ...string) *enumBuilder {
	b.params = append(b.params, names...)
	return b
}

func (b *enumBuilder) add(name string, sh z.VariantShape) *variantStep {
	b.variants = append(b.variants, z.VariantDescriptor{Name: name, Shape: sh})
	return &variantStep{b: b, idx: len(b.variants) - 1}
}

// Unit adds a variant without payload.
func (b *enumBuilder) Unit(name string) *variantStep { return b.add(name, z.UnitShape{}) }

// Single adds a newtype variant.
func (b *enumBuilder) Single(name string, t z.TypeRef) *variantStep {
	return b.add(name, z.SingleShape{Type: t})
}

// Tuple adds a variant with two or more unnamed payloads.
func (b *enumBuilder) Tuple(name string, ts ...z.TypeRef) *variantStep {
	return b.add(name, z.MultiShape{Types: ts})
}

// Struct adds a variant with named fields; see F.
func (b *enumBuilder) Struct(name string, fs ...z.FieldDescriptor) *variantStep {
	return b.add(name, z.FieldsShape{Fields: fs})
}

// Rename sets the wire name of the current variant.
func (v *variantStep) Rename(name string) *enumBuilder {
	v.b.variants[v.idx].Directives = append(v.b.variants[v.idx].Directives, z.Rename(name))
	return v.b
}

// Directive attaches a raw directive to the current variant.
func (v *variantStep) Directive(key, value string) *enumBuilder {
	v.b.variants[v.idx].Directives = append(v.b.variants[v.idx].Directives, z.Directive{Key: key, Value: value})
	return v.b
}

func (v *variantStep) Unit(name string) *variantStep                { return v.b.Unit(name) }
func (v *variantStep) Single(name string, t z.TypeRef) *variantStep { return v.b.Single(name, t) }
func (v *variantStep) Tuple(name string, ts ...z.TypeRef) *variantStep {
	return v.b.Tuple(name, ts...)
}
func (v *variantStep) Struct(name string, fs ...z.FieldDescriptor) *variantStep {
	return v.b.Struct(name, fs...)
}
func (v *variantStep) Build() (*z.SumType, error) { return v.b.Build() }
func (v *variantStep) MustBuild() *z.SumType      { return v.b.MustBuild() }

// Build validates the builder and returns the descriptor. Directive
// combinations the representation selector rejects fail here with a
// *zodgen.ConfigError; structural problems are reported as Issues.
func (b *enumBuilder) Build() (*z.SumType, error) {
	root := z.Root()
	var iss z.Issues
	if b.name == "" {
		iss = append(iss, root.Field("name").Issue(z.CodeRequired, "type name is empty"))
	}
	iss = append(iss, checkDirectives(root.Field("directives"), b.directives)...)
	seen := map[string]int{}
	for i, v := range b.variants {
		vp := root.Field("variants").Index(i)
		if v.Name == "" {
			iss = append(iss, vp.Field("name").Issue(z.CodeRequired, "variant name is empty"))
		}
		switch sh := v.Shape.(type) {
		case z.SingleShape:
			if sh.Type == nil {
				iss = append(iss, vp.Field("type").Issue(z.CodeRequired, "payload type is missing"))
			} else {
				iss = append(iss, checkParams(vp.Field("type"), sh.Type, b.params)...)
			}
		case z.MultiShape:
			if len(sh.Types) < 2 {
				iss = append(iss, vp.Field("tuple").Issue(z.CodeInvalidType, "tuple variants need at least two payloads; use Single or Unit"))
			}
			for j, t := range sh.Types {
				if t == nil {
					iss = append(iss, vp.Field("tuple").Index(j).Issue(z.CodeRequired, "payload type is missing"))
					continue
				}
				iss = append(iss, checkParams(vp.Field("tuple").Index(j), t, b.params)...)
			}
		case z.FieldsShape:
			iss = append(iss, checkFields(vp.Field("fields"), sh.Fields, b.params)...)
		}
		name := v.EffectiveName()
		if prev, dup := seen[name]; dup {
			iss = append(iss, vp.Issue(z.CodeDuplicateKey, fmt.Sprintf("%q also used by variant %d", name, prev)))
			continue
		}
		seen[name] = i
	}
	if len(iss) > 0 {
		return nil, iss
	}
	sum := &z.SumType{
		Name:       b.name,
		Directives: append([]z.Directive(nil), b.directives...),
		TypeParams: append([]string(nil), b.params...),
		Variants:   append([]z.VariantDescriptor(nil), b.variants...),
	}
	if _, err := z.SelectFor(sum); err != nil {
		return nil, err
	}
	return sum, nil
}

// MustBuild is like Build but panics on error.
func (b *enumBuilder) MustBuild() *z.SumType {
	s, err := b.Build()
	if err != nil {
		panic(fmt.Sprintf("dsl: enum %s: %v", b.name, err))
	}
	return s
}
