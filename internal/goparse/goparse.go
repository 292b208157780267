// Package goparse reads Go source and builds zodgen descriptors.
//
// Exported struct types become records; encoding/json tags become rename
// directives. Sum types are declared with comment directives:
//
//	//zodgen:enum tag=type
//	type Event interface{ isEvent() }
//
//	//zodgen:variant Event rename=left
//	type Left struct{}
//
// Variant options: name=Logical, rename=wire, tuple (payload is the field
// list), single (payload is the only field). Records accept
// //zodgen:record rename=Name and //zodgen:skip.
package goparse

import (
	"errors"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"

	z "github.com/reoring/zodgen"
	"github.com/reoring/zodgen/primitive"
)

// Result is what a parse produced, in declaration order.
type Result struct {
	Package  string
	Types    []z.TypeDescriptor
	Warnings []string
}

// ParseDir parses the non-test .go files of dir.
func ParseDir(dir string) (*Result, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, e := range entries {
		n := e.Name()
		if e.IsDir() || !strings.HasSuffix(n, ".go") || strings.HasSuffix(n, "_test.go") {
			continue
		}
		paths = append(paths, filepath.Join(dir, n))
	}
	return ParseFiles(paths...)
}

// ParseFiles parses the given files as one package.
func ParseFiles(paths ...string) (*Result, error) {
	sort.Strings(paths)
	c := newCollector()
	for _, p := range paths {
		f, err := parser.ParseFile(c.fset, p, nil, parser.ParseComments)
		if err != nil {
			return nil, err
		}
		c.files = append(c.files, f)
	}
	return c.run()
}

// ParseSource parses a single in-memory file.
func ParseSource(filename string, src []byte) (*Result, error) {
	c := newCollector()
	f, err := parser.ParseFile(c.fset, filename, src, parser.ParseComments)
	if err != nil {
		return nil, err
	}
	c.files = append(c.files, f)
	return c.run()
}

type decl struct {
	spec *ast.TypeSpec
	doc  directives
}

type variantDecl struct {
	decl
	enum string
}

type collector struct {
	fset     *token.FileSet
	files    []*ast.File
	structs  map[string]*decl
	enums    map[string]*decl
	aliases  map[string]ast.Expr
	order    []string // records and enums in source order
	variants []variantDecl
	warnings []string
	errs     []error
}

func newCollector() *collector {
	return &collector{
		fset:    token.NewFileSet(),
		structs: map[string]*decl{},
		enums:   map[string]*decl{},
		aliases: map[string]ast.Expr{},
	}
}

func (c *collector) warnf(pos token.Pos, f string, a ...any) {
	c.warnings = append(c.warnings, c.fset.Position(pos).String()+": "+fmt.Sprintf(f, a...))
}

func (c *collector) errorf(pos token.Pos, f string, a ...any) {
	c.errs = append(c.errs, fmt.Errorf("%s: %s", c.fset.Position(pos), fmt.Sprintf(f, a...)))
}

func (c *collector) run() (*Result, error) {
	res := &Result{}
	for _, f := range c.files {
		if res.Package == "" {
			res.Package = f.Name.Name
		}
		c.scan(f)
	}
	enumVariants := map[string][]variantDecl{}
	for _, v := range c.variants {
		if _, ok := c.enums[v.enum]; !ok {
			c.errorf(v.spec.Pos(), "variant %s names unknown enum %q", v.spec.Name.Name, v.enum)
			continue
		}
		enumVariants[v.enum] = append(enumVariants[v.enum], v)
	}
	for _, name := range c.order {
		if d, ok := c.structs[name]; ok {
			if r := c.record(d); r != nil {
				res.Types = append(res.Types, r)
			}
			continue
		}
		d := c.enums[name]
		vs := enumVariants[name]
		if len(vs) == 0 {
			c.warnf(d.spec.Pos(), "enum %s has no variants", name)
		}
		res.Types = append(res.Types, c.enum(d, vs))
	}
	res.Warnings = c.warnings
	if len(c.errs) > 0 {
		return nil, errors.Join(c.errs...)
	}
	return res, nil
}

func (c *collector) scan(f *ast.File) {
	for _, d := range f.Decls {
		gd, ok := d.(*ast.GenDecl)
		if !ok || gd.Tok != token.TYPE {
			continue
		}
		for _, spec := range gd.Specs {
			ts, ok := spec.(*ast.TypeSpec)
			if !ok || ts.Name == nil {
				continue
			}
			doc := ts.Doc
			if doc == nil && len(gd.Specs) == 1 {
				doc = gd.Doc
			}
			ds := parseDirectives(doc, ts.Comment)
			name := ts.Name.Name
			switch {
			case ds.has("skip"):
			case ds.has("variant"):
				c.variants = append(c.variants, variantDecl{decl: decl{spec: ts, doc: ds}, enum: ds.arg("variant")})
			case ds.has("enum"):
				if _, ok := ts.Type.(*ast.InterfaceType); !ok {
					c.errorf(ts.Pos(), "zodgen:enum on %s requires an interface type", name)
					continue
				}
				c.enums[name] = &decl{spec: ts, doc: ds}
				c.order = append(c.order, name)
			default:
				if _, ok := ts.Type.(*ast.StructType); ok {
					if !ast.IsExported(name) && !ds.has("record") {
						continue
					}
					c.structs[name] = &decl{spec: ts, doc: ds}
					c.order = append(c.order, name)
					continue
				}
				if _, ok := ts.Type.(*ast.InterfaceType); ok {
					continue
				}
				if ts.TypeParams == nil {
					c.aliases[name] = ts.Type
				}
			}
		}
	}
}

func typeParams(ts *ast.TypeSpec) []string {
	if ts.TypeParams == nil {
		return nil
	}
	var out []string
	for _, f := range ts.TypeParams.List {
		for _, n := range f.Names {
			out = append(out, n.Name)
		}
	}
	return out
}

func (c *collector) record(d *decl) *z.RecordType {
	ts := d.spec
	params := typeParams(ts)
	r := &z.RecordType{Name: ts.Name.Name, TypeParams: params}
	r.Directives = d.doc.engineDirectives(c, ts.Pos(), "record")
	fs, ok := c.structFields(ts.Name.Name, ts.Type.(*ast.StructType), params, map[string]bool{ts.Name.Name: true})
	if !ok {
		return nil
	}
	r.Fields = fs
	return r
}

func (c *collector) enum(d *decl, vs []variantDecl) *z.SumType {
	ts := d.spec
	params := typeParams(ts)
	sum := &z.SumType{Name: ts.Name.Name, TypeParams: params}
	sum.Directives = d.doc.engineDirectives(c, ts.Pos(), "enum")
	for _, v := range vs {
		vd, ok := c.variant(v, params)
		if ok {
			sum.Variants = append(sum.Variants, vd)
		}
	}
	return sum
}

func (c *collector) variant(v variantDecl, params []string) (z.VariantDescriptor, bool) {
	ts := v.spec
	name := ts.Name.Name
	if n := v.doc.opt("variant", "name"); n != "" {
		name = n
	}
	vd := z.VariantDescriptor{Name: name}
	if rn := v.doc.opt("variant", "rename"); rn != "" {
		vd.Directives = append(vd.Directives, z.Rename(rn))
	}
	st, isStruct := ts.Type.(*ast.StructType)
	if !isStruct {
		t, err := c.typeRef(ts.Type, params, 0)
		if err != nil {
			c.errorf(ts.Pos(), "variant %s: %v", ts.Name.Name, err)
			return vd, false
		}
		vd.Shape = z.SingleShape{Type: t}
		return vd, true
	}
	fs, ok := c.structFields(ts.Name.Name, st, params, map[string]bool{ts.Name.Name: true})
	if !ok {
		return vd, false
	}
	switch {
	case v.doc.flag("variant", "tuple"):
		types := make([]z.TypeRef, len(fs))
		for i, f := range fs {
			types[i] = f.Type
		}
		switch len(types) {
		case 0:
			vd.Shape = z.UnitShape{}
		case 1:
			vd.Shape = z.SingleShape{Type: types[0]}
		default:
			vd.Shape = z.MultiShape{Types: types}
		}
	case v.doc.flag("variant", "single"):
		if len(fs) != 1 {
			c.errorf(st.Pos(), "variant %s: single needs exactly one field, got %d", ts.Name.Name, len(fs))
			return vd, false
		}
		vd.Shape = z.SingleShape{Type: fs[0].Type}
	case len(fs) == 0:
		vd.Shape = z.UnitShape{}
	default:
		vd.Shape = z.FieldsShape{Fields: fs}
	}
	return vd, true
}

// structFields follows encoding/json: unexported fields and json:"-" are
// skipped, untagged embedded structs are flattened, a tag name renames.
func (c *collector) structFields(owner string, st *ast.StructType, params []string, visiting map[string]bool) ([]z.FieldDescriptor, bool) {
	var out []z.FieldDescriptor
	ok := true
	for _, field := range st.Fields.List {
		jsonName, asString, skip := jsonTag(field)
		if skip {
			continue
		}
		if len(field.Names) == 0 {
			emb := embeddedName(field.Type)
			if jsonName == "" {
				if inner, found := c.structs[emb]; found && !visiting[emb] {
					visiting[emb] = true
					fs, good := c.structFields(owner, inner.spec.Type.(*ast.StructType), params, visiting)
					delete(visiting, emb)
					ok = ok && good
					out = append(out, fs...)
					continue
				}
				if emb == "" || !ast.IsExported(emb) {
					c.warnf(field.Pos(), "%s: embedded field skipped", owner)
					continue
				}
			}
			out = append(out, c.field(owner, emb, jsonName, asString, field.Type, params, &ok))
			continue
		}
		for _, n := range field.Names {
			if !n.IsExported() {
				continue
			}
			out = append(out, c.field(owner, n.Name, jsonName, asString, field.Type, params, &ok))
		}
	}
	return out, ok
}

func (c *collector) field(owner, goName, jsonName string, asString bool, expr ast.Expr, params []string, ok *bool) z.FieldDescriptor {
	f := z.FieldDescriptor{Name: goName}
	if jsonName != "" && jsonName != goName {
		f.Directives = []z.Directive{z.Rename(jsonName)}
	}
	if asString {
		f.Type = z.Prim{Name: "string"}
		return f
	}
	t, err := c.typeRef(expr, params, 0)
	if err != nil {
		c.errorf(expr.Pos(), "%s.%s: %v", owner, goName, err)
		*ok = false
	}
	f.Type = t
	return f
}

func embeddedName(e ast.Expr) string {
	switch t := e.(type) {
	case *ast.Ident:
		return t.Name
	case *ast.StarExpr:
		return embeddedName(t.X)
	}
	return ""
}

// jsonTag returns the tag name, whether ",string" is set, and whether the
// field is excluded.
func jsonTag(field *ast.Field) (name string, asString, skip bool) {
	if field.Tag == nil {
		return "", false, false
	}
	tag := reflect.StructTag(strings.Trim(field.Tag.Value, "`"))
	j, ok := tag.Lookup("json")
	if !ok {
		return "", false, false
	}
	parts := strings.Split(j, ",")
	if parts[0] == "-" && len(parts) == 1 {
		return "", false, true
	}
	for _, opt := range parts[1:] {
		if strings.TrimSpace(opt) == "string" {
			asString = true
		}
	}
	return parts[0], asString, false
}

const maxAliasDepth = 16

func (c *collector) typeRef(e ast.Expr, params []string, depth int) (z.TypeRef, error) {
	if depth > maxAliasDepth {
		return nil, errors.New("type alias chain too deep")
	}
	switch t := e.(type) {
	case *ast.Ident:
		for _, p := range params {
			if p == t.Name {
				return z.Param{Name: t.Name}, nil
			}
		}
		if c.declared(t.Name) {
			return z.Named{Name: t.Name}, nil
		}
		if a, ok := c.aliases[t.Name]; ok {
			return c.typeRef(a, nil, depth+1)
		}
		if primitive.IsKnown(t.Name) {
			return z.Prim{Name: t.Name}, nil
		}
		return nil, fmt.Errorf("unsupported type %s", t.Name)
	case *ast.StarExpr:
		inner, err := c.typeRef(t.X, params, depth)
		if err != nil {
			return nil, err
		}
		return z.Prim{Name: "*", Args: []z.TypeRef{inner}}, nil
	case *ast.ArrayType:
		if id, ok := t.Elt.(*ast.Ident); ok && id.Name == "byte" && t.Len == nil {
			// encoding/json writes []byte as base64.
			return z.Prim{Name: "string"}, nil
		}
		inner, err := c.typeRef(t.Elt, params, depth)
		if err != nil {
			return nil, err
		}
		return z.Prim{Name: "[]", Args: []z.TypeRef{inner}}, nil
	case *ast.MapType:
		k, err := c.typeRef(t.Key, params, depth)
		if err != nil {
			return nil, err
		}
		v, err := c.typeRef(t.Value, params, depth)
		if err != nil {
			return nil, err
		}
		return z.Prim{Name: "map", Args: []z.TypeRef{k, v}}, nil
	case *ast.SelectorExpr:
		pkg, ok := t.X.(*ast.Ident)
		if !ok {
			return nil, errors.New("unsupported qualified type")
		}
		name := pkg.Name + "." + t.Sel.Name
		if primitive.IsKnown(name) {
			return z.Prim{Name: name}, nil
		}
		return nil, fmt.Errorf("unsupported type %s", name)
	case *ast.InterfaceType:
		if t.Methods == nil || len(t.Methods.List) == 0 {
			return z.Prim{Name: "any"}, nil
		}
		return nil, errors.New("non-empty interface types are not serializable")
	case *ast.IndexExpr:
		return c.instance(t.X, []ast.Expr{t.Index}, params, depth)
	case *ast.IndexListExpr:
		return c.instance(t.X, t.Indices, params, depth)
	case *ast.StructType:
		fs, ok := c.structFields("struct", t, params, map[string]bool{})
		if !ok {
			return nil, errors.New("inline struct has unsupported fields")
		}
		return &z.RecordType{Name: "struct", Fields: fs}, nil
	case *ast.ParenExpr:
		return c.typeRef(t.X, params, depth)
	}
	return nil, fmt.Errorf("unsupported type expression %T", e)
}

func (c *collector) instance(x ast.Expr, idx []ast.Expr, params []string, depth int) (z.TypeRef, error) {
	id, ok := x.(*ast.Ident)
	if !ok || !c.declared(id.Name) {
		return nil, errors.New("generic instantiation of an unknown type")
	}
	args := make([]z.TypeRef, len(idx))
	for i, e := range idx {
		a, err := c.typeRef(e, params, depth)
		if err != nil {
			return nil, err
		}
		args[i] = a
	}
	return z.Named{Name: id.Name, Args: args}, nil
}

func (c *collector) declared(name string) bool {
	if _, ok := c.structs[name]; ok {
		return true
	}
	_, ok := c.enums[name]
	return ok
}
