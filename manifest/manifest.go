// Package manifest loads type descriptors from YAML or JSON files.
//
//	types:
//	  - name: Event
//	    kind: enum
//	    directives: { tag: type }
//	    variants:
//	      - name: Joined
//	        fields: [{ name: user_id, type: u64 }]
//	      - name: Left
//	        directives: { rename: left }
//	      - name: Pair
//	        tuple: [u32, String]
//	exports:
//	  - name: EventPage
//	    type: Page<Event>
//
// Structural problems are reported as zodgen.Issues with JSON Pointer paths.
// Directives the engine does not interpret produce warnings in Diag.
package manifest

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	json "github.com/goccy/go-json"

	z "github.com/reoring/zodgen"
)

// Format selects the decoder.
type Format int

const (
	// FormatAuto picks JSON for a .json file or a payload starting with '{',
	// YAML otherwise.
	FormatAuto Format = iota
	FormatYAML
	FormatJSON
)

// Options controls loading.
type Options struct {
	Format Format
	// Known lists type names declared elsewhere (e.g. by the Go front-end)
	// that type expressions may reference.
	Known []string
}

// Export instantiates a type expression under an explicit export name.
type Export struct {
	Name string
	Type z.TypeRef
}

// Manifest is the decoded content of one or more files.
type Manifest struct {
	Types   []z.TypeDescriptor
	Exports []Export
}

// Registry returns a registry holding every decoded type.
func (m *Manifest) Registry() *z.Registry { return z.NewRegistry(m.Types...) }

// Diag carries non-fatal warnings produced during loading.
type Diag interface {
	HasWarnings() bool
	Warnings() []string
}

type simpleDiag struct{ ws []string }

func (d *simpleDiag) HasWarnings() bool        { return len(d.ws) > 0 }
func (d *simpleDiag) Warnings() []string       { return append([]string(nil), d.ws...) }
func (d *simpleDiag) warnf(f string, a ...any) { d.ws = append(d.ws, fmt.Sprintf(f, a...)) }

// source is one decoded document with a label for messages.
type source struct {
	label string
	doc   any
}

// Load decodes a single payload.
func Load(data []byte, opts Options) (*Manifest, Diag, error) {
	docs, err := decode("", data, opts.Format)
	if err != nil {
		return nil, &simpleDiag{}, err
	}
	return build(docs, opts)
}

// LoadFile reads and decodes one file.
func LoadFile(path string, opts Options) (*Manifest, Diag, error) {
	return LoadFiles([]string{path}, opts)
}

// LoadFiles decodes every file into one manifest. Type names are shared
// across files, so a type may reference one declared in another file.
func LoadFiles(paths []string, opts Options) (*Manifest, Diag, error) {
	var docs []source
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, &simpleDiag{}, err
		}
		ds, err := decode(p, data, opts.Format)
		if err != nil {
			return nil, &simpleDiag{}, fmt.Errorf("%s: %w", p, err)
		}
		docs = append(docs, ds...)
	}
	return build(docs, opts)
}

func decode(path string, data []byte, f Format) ([]source, error) {
	if f == FormatAuto {
		f = FormatYAML
		if strings.EqualFold(filepath.Ext(path), ".json") || bytes.HasPrefix(bytes.TrimSpace(data), []byte("{")) {
			f = FormatJSON
		}
	}
	label := path
	if label == "" {
		label = "<input>"
	}
	if f == FormatJSON {
		var v any
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, err
		}
		return []source{{label: label, doc: v}}, nil
	}
	vs, err := yamlDocuments(data)
	if err != nil {
		return nil, err
	}
	out := make([]source, len(vs))
	for i, v := range vs {
		l := label
		if len(vs) > 1 {
			l = fmt.Sprintf("%s#%d", label, i)
		}
		out[i] = source{label: l, doc: v}
	}
	return out, nil
}

func build(docs []source, opts Options) (*Manifest, Diag, error) {
	d := &simpleDiag{}
	b := &builder{diag: d, declared: map[string]bool{}}
	for _, n := range opts.Known {
		b.declared[n] = true
	}
	// First pass: collect declared names so references resolve in any order.
	for _, src := range docs {
		root, _ := src.doc.(map[string]any)
		types, _ := root["types"].([]any)
		for _, t := range types {
			if m, ok := t.(map[string]any); ok {
				if name, ok := m["name"].(string); ok && name != "" {
					b.declared[name] = true
				}
			}
		}
	}
	m := &Manifest{}
	var all z.Issues
	for _, src := range docs {
		b.label = src.label
		b.issues = nil
		b.document(src.doc, m)
		for i := range b.issues {
			b.issues[i].Params["source"] = src.label
		}
		all = append(all, b.issues...)
	}
	if len(all) > 0 {
		return nil, d, all
	}
	return m, d, nil
}

type builder struct {
	diag     *simpleDiag
	declared map[string]bool
	label    string
	issues   z.Issues
	seen     map[string]string
}

func (b *builder) fail(p z.PathRef, code, hint string, kv ...any) {
	b.issues = append(b.issues, p.Issue(code, hint, kv...))
}

// object checks that v is a mapping and reports keys outside allowed.
func (b *builder) object(p z.PathRef, v any, allowed ...string) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	if !ok {
		b.fail(p, z.CodeInvalidType, fmt.Sprintf("expected mapping, got %s", kind(v)))
		return nil, false
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if !contains(allowed, k) {
			b.fail(p.Field(k), z.CodeUnknownKey, "allowed: "+strings.Join(allowed, ", "))
		}
	}
	return m, true
}

func (b *builder) list(p z.PathRef, v any) []any {
	if v == nil {
		return nil
	}
	xs, ok := v.([]any)
	if !ok {
		b.fail(p, z.CodeInvalidType, fmt.Sprintf("expected sequence, got %s", kind(v)))
	}
	return xs
}

func (b *builder) str(p z.PathRef, m map[string]any, key string, required bool) string {
	v, ok := m[key]
	if !ok || v == nil {
		if required {
			b.fail(p.Field(key), z.CodeRequired, "")
		}
		return ""
	}
	s, ok := v.(string)
	if !ok {
		b.fail(p.Field(key), z.CodeInvalidType, fmt.Sprintf("expected string, got %s", kind(v)))
		return ""
	}
	if required && s == "" {
		b.fail(p.Field(key), z.CodeRequired, "empty string")
	}
	return s
}

func (b *builder) document(doc any, m *Manifest) {
	root := z.Root()
	obj, ok := b.object(root, doc, "types", "exports")
	if !ok {
		return
	}
	if b.seen == nil {
		b.seen = map[string]string{}
	}
	for i, t := range b.list(root.Field("types"), obj["types"]) {
		if d := b.typeDecl(root.Field("types").Index(i), t); d != nil {
			if prev, dup := b.seen[d.TypeName()]; dup {
				b.fail(root.Field("types").Index(i).Field("name"), z.CodeDuplicateKey, "first declared in "+prev)
				continue
			}
			b.seen[d.TypeName()] = b.label
			m.Types = append(m.Types, d)
		}
	}
	for i, e := range b.list(root.Field("exports"), obj["exports"]) {
		p := root.Field("exports").Index(i)
		em, ok := b.object(p, e, "name", "type")
		if !ok {
			continue
		}
		name := b.str(p, em, "name", true)
		expr := b.str(p, em, "type", true)
		if expr == "" {
			continue
		}
		ref := b.typeExpr(p.Field("type"), expr, nil)
		if name != "" && ref != nil {
			m.Exports = append(m.Exports, Export{Name: name, Type: ref})
		}
	}
}

func (b *builder) typeDecl(p z.PathRef, v any) z.TypeDescriptor {
	m, ok := b.object(p, v, "name", "kind", "directives", "params", "fields", "variants", "positional")
	if !ok {
		return nil
	}
	name := b.str(p, m, "name", true)
	k := b.str(p, m, "kind", false)
	if k == "" {
		k = "record"
		if _, ok := m["variants"]; ok {
			k = "enum"
		}
	}
	ds := b.directives(p.Field("directives"), m["directives"], true)
	var params []string
	for i, x := range b.list(p.Field("params"), m["params"]) {
		s, ok := x.(string)
		if !ok || s == "" {
			b.fail(p.Field("params").Index(i), z.CodeInvalidType, "expected parameter name")
			continue
		}
		params = append(params, s)
	}

	switch k {
	case "record", "struct":
		if _, ok := m["variants"]; ok {
			b.fail(p.Field("variants"), z.CodeUnknownKey, "records have fields, not variants")
		}
		positional, _ := m["positional"].(bool)
		return &z.RecordType{
			Name:       name,
			Directives: ds,
			TypeParams: params,
			Fields:     b.fields(p.Field("fields"), m["fields"], params),
			Positional: positional,
		}
	case "enum", "sum":
		if _, ok := m["fields"]; ok {
			b.fail(p.Field("fields"), z.CodeUnknownKey, "enums have variants, not fields")
		}
		sum := &z.SumType{Name: name, Directives: ds, TypeParams: params}
		for i, vv := range b.list(p.Field("variants"), m["variants"]) {
			if vd, ok := b.variant(p.Field("variants").Index(i), vv, params); ok {
				sum.Variants = append(sum.Variants, vd)
			}
		}
		return sum
	default:
		b.fail(p.Field("kind"), z.CodeInvalidEnum, "", "expected", "record, enum")
		return nil
	}
}

func (b *builder) fields(p z.PathRef, v any, params []string) []z.FieldDescriptor {
	var out []z.FieldDescriptor
	for i, x := range b.list(p, v) {
		fp := p.Index(i)
		m, ok := b.object(fp, x, "name", "type", "directives")
		if !ok {
			continue
		}
		f := z.FieldDescriptor{
			Name:       b.str(fp, m, "name", true),
			Directives: b.directives(fp.Field("directives"), m["directives"], false),
		}
		if expr := b.str(fp, m, "type", true); expr != "" {
			f.Type = b.typeExpr(fp.Field("type"), expr, params)
		}
		out = append(out, f)
	}
	return out
}

func (b *builder) variant(p z.PathRef, v any, params []string) (z.VariantDescriptor, bool) {
	m, ok := b.object(p, v, "name", "directives", "unit", "type", "tuple", "fields")
	if !ok {
		return z.VariantDescriptor{}, false
	}
	vd := z.VariantDescriptor{
		Name:       b.str(p, m, "name", true),
		Directives: b.directives(p.Field("directives"), m["directives"], false),
		Shape:      z.UnitShape{},
	}
	var shapes []string
	for _, k := range []string{"unit", "type", "tuple", "fields"} {
		if _, ok := m[k]; ok {
			shapes = append(shapes, k)
		}
	}
	if len(shapes) > 1 {
		b.fail(p, z.CodeInvalidType, "a variant has one of unit, type, tuple, fields; got "+strings.Join(shapes, ", "))
		return vd, false
	}
	switch {
	case m["type"] != nil:
		if expr := b.str(p, m, "type", true); expr != "" {
			vd.Shape = z.SingleShape{Type: b.typeExpr(p.Field("type"), expr, params)}
		}
	case m["tuple"] != nil:
		var ts []z.TypeRef
		for i, x := range b.list(p.Field("tuple"), m["tuple"]) {
			s, ok := x.(string)
			if !ok {
				b.fail(p.Field("tuple").Index(i), z.CodeInvalidType, "expected type expression")
				continue
			}
			ts = append(ts, b.typeExpr(p.Field("tuple").Index(i), s, params))
		}
		switch len(ts) {
		case 0:
		case 1:
			// A one-element tuple variant is a newtype on the wire.
			vd.Shape = z.SingleShape{Type: ts[0]}
		default:
			vd.Shape = z.MultiShape{Types: ts}
		}
	case m["fields"] != nil:
		vd.Shape = z.FieldsShape{Fields: b.fields(p.Field("fields"), m["fields"], params)}
	case m["unit"] != nil:
		if u, ok := m["unit"].(bool); !ok || !u {
			b.fail(p.Field("unit"), z.CodeInvalidType, "unit must be true when present")
		}
	}
	return vd, true
}

// directives accepts a mapping (key: value, or key: true for flags) or a
// sequence of "key" / "key=value" strings when order matters.
func (b *builder) directives(p z.PathRef, v any, typeLevel bool) []z.Directive {
	var out []z.Directive
	switch t := v.(type) {
	case nil:
		return nil
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			var val string
			switch x := t[k].(type) {
			case string:
				val = x
			case bool:
				if !x {
					continue
				}
			case nil:
			default:
				b.fail(p.Field(k), z.CodeInvalidType, fmt.Sprintf("expected string or true, got %s", kind(x)))
				continue
			}
			out = append(out, z.Directive{Key: k, Value: val})
		}
	case []any:
		for i, x := range t {
			s, ok := x.(string)
			if !ok || s == "" {
				b.fail(p.Index(i), z.CodeInvalidType, "expected \"key\" or \"key=value\"")
				continue
			}
			k, val, _ := strings.Cut(s, "=")
			out = append(out, z.Directive{Key: strings.TrimSpace(k), Value: strings.TrimSpace(val)})
		}
	default:
		b.fail(p, z.CodeInvalidType, fmt.Sprintf("expected mapping or sequence, got %s", kind(v)))
		return nil
	}
	for _, d := range out {
		switch {
		case !z.IsKnownDirective(d.Key):
			b.diag.warnf("%s: %s: directive %q is not interpreted", b.label, p.Pointer(), d.Key)
		case !typeLevel && z.IsTypeLevelDirective(d.Key):
			b.diag.warnf("%s: %s: directive %q only applies to types and is ignored here", b.label, p.Pointer(), d.Key)
		}
	}
	return out
}

func (b *builder) typeExpr(p z.PathRef, expr string, params []string) z.TypeRef {
	t, err := ParseType(expr, Scope{Params: params, Declared: func(n string) bool { return b.declared[n] }})
	if err != nil {
		iss := p.Issue(z.CodeParseError, err.Error(), "expr", expr)
		iss.Cause = err
		b.issues = append(b.issues, iss)
		return nil
	}
	return t
}

func kind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "mapping"
	case []any:
		return "sequence"
	case string:
		return "string"
	case bool:
		return "bool"
	case int, int64, float64:
		return "number"
	}
	return fmt.Sprintf("%T", v)
}

func contains(xs []string, s string) bool {
	for _, x := range xs {
		if x == s {
			return true
		}
	}
	return false
}
