package zodgen

import (
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	gen "github.com/reoring/zodgen/internal/gen"
	"github.com/reoring/zodgen/ir"
	js "github.com/reoring/zodgen/jsonschema"
)

// Export is one named schema of a generated document.
type Export struct {
	Name string
	Expr ir.Expr
}

type entry struct {
	name string
	desc TypeDescriptor
	ref  TypeRef
	expr ir.Expr
}

// Generator collects named schemas and renders them into one document.
// Registering an export name twice replaces the earlier entry (last
// registration wins) while keeping its position in the output.
type Generator struct {
	registry   *Registry
	references bool
	header     string
	entries    []entry
	index      map[string]int
}

// NewGenerator creates a Generator. Without WithRegistry it resolves Named
// references against the descriptors added to it.
func NewGenerator(opts ...Option) *Generator {
	var s settings
	for _, o := range opts {
		o(&s)
	}
	if s.registry == nil {
		s.registry = NewRegistry()
	}
	return &Generator{
		registry:   s.registry,
		references: s.references,
		header:     s.header,
		index:      map[string]int{},
	}
}

func (g *Generator) put(e entry) {
	if i, ok := g.index[e.name]; ok {
		g.entries[i] = e
		return
	}
	g.index[e.name] = len(g.entries)
	g.entries = append(g.entries, e)
}

// Add registers d for export under its type-level rename or type name, and
// makes it resolvable by Named references. A generic descriptor is only made
// resolvable; export its instantiations with AddRef.
func (g *Generator) Add(d TypeDescriptor) {
	if d == nil {
		return
	}
	if IsGeneric(d) {
		g.registry.Register(d)
		return
	}
	g.AddAs(ExportName(d), d)
}

// AddAs registers d for export under name.
func (g *Generator) AddAs(name string, d TypeDescriptor) {
	if d == nil {
		return
	}
	g.registry.Register(d)
	g.put(entry{name: name, desc: d})
}

// AddRef registers a type reference (e.g. a generic instantiation) for
// export under name.
func (g *Generator) AddRef(name string, ref TypeRef) {
	g.put(entry{name: name, ref: ref})
}

// AddExpr registers an already synthesized expression under name.
func (g *Generator) AddExpr(name string, e ir.Expr) {
	g.put(entry{name: name, expr: e})
}

// Names lists export names in output order.
func (g *Generator) Names() []string {
	out := make([]string, len(g.entries))
	for i, e := range g.entries {
		out[i] = e.name
	}
	return out
}

// Registry exposes the registry Named references resolve against.
func (g *Generator) Registry() *Registry { return g.registry }

// exportNames maps the type name of every exported descriptor to the first
// export name it was registered under.
func (g *Generator) exportNames() map[string]string {
	out := make(map[string]string, len(g.entries))
	for _, e := range g.entries {
		if e.desc == nil {
			continue
		}
		if _, ok := out[e.desc.TypeName()]; !ok {
			out[e.desc.TypeName()] = e.name
		}
	}
	return out
}

// Exports synthesizes every entry. Types are processed in parallel; the
// first failure in registration order is returned and no exports are.
func (g *Generator) Exports() ([]Export, error) {
	opts := []Option{WithRegistry(g.registry)}
	if g.references {
		opts = append(opts, WithReferences(), withExports(g.exportNames()))
	}
	syn := NewSynthesizer(opts...)

	out := make([]Export, len(g.entries))
	errs := make([]error, len(g.entries))
	var eg errgroup.Group
	eg.SetLimit(runtime.GOMAXPROCS(0))
	for i, e := range g.entries {
		i, e := i, e
		eg.Go(func() error {
			var x ir.Expr
			var err error
			switch {
			case e.expr != nil:
				x = e.expr
			case e.desc != nil:
				x, err = syn.Synthesize(e.desc)
			default:
				x, err = syn.SynthesizeRef(e.ref)
			}
			out[i], errs[i] = Export{Name: e.name, Expr: x}, err
			return nil
		})
	}
	_ = eg.Wait()
	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("zodgen: export %s: %w", g.entries[i].name, err)
		}
	}
	return out, nil
}

func toFileExports(es []Export) []gen.Export {
	out := make([]gen.Export, len(es))
	for i, e := range es {
		out[i] = gen.Export{Name: e.Name, Expr: e.Expr}
	}
	return out
}

// Generate renders every export into one zod TypeScript document.
func (g *Generator) Generate() (string, error) {
	es, err := g.Exports()
	if err != nil {
		return "", err
	}
	b, err := gen.RenderFile(gen.File{Header: g.header, Exports: toFileExports(es)})
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// GenerateFile renders a document holding only the named export. In
// reference mode other exports are inlined, so the file stands alone.
func (g *Generator) GenerateFile(name string) (string, error) {
	i, ok := g.index[name]
	if !ok {
		return "", fmt.Errorf("zodgen: no export named %q", name)
	}
	sub := &Generator{registry: g.registry, references: g.references, header: g.header,
		entries: []entry{g.entries[i]}, index: map[string]int{name: 0}}
	return sub.Generate()
}

// JSONSchema renders every export as a $defs entry of one JSON Schema document.
func (g *Generator) JSONSchema() (*js.Document, error) {
	es, err := g.Exports()
	if err != nil {
		return nil, err
	}
	doc := js.NewDocument()
	for _, e := range es {
		s, err := js.FromExpr(e.Expr)
		if err != nil {
			return nil, fmt.Errorf("zodgen: export %s: %w", e.Name, err)
		}
		doc.Define(e.Name, s)
	}
	return doc, nil
}

// Render renders a single expression as zod TypeScript.
func Render(e ir.Expr) (string, error) { return gen.Render(e) }
