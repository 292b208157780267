package zodgen_test

import (
	"fmt"
	"testing"

	z "github.com/reoring/zodgen"
	g "github.com/reoring/zodgen/dsl"
	js "github.com/reoring/zodgen/jsonschema"
)

// ---- Helpers ----

func userType() *z.RecordType {
	return g.Record("User").
		Field("id", g.Prim("u64")).
		Field("name", g.String()).
		Field("tags", g.Vec(g.String())).
		Field("manager", g.Option(g.Named("User"))).
		MustBuild()
}

// eventType builds an internally tagged enum with n variants of mixed shape.
func eventType(name string, n int) *z.SumType {
	b := g.Enum(name).Tag("type")
	for i := 0; i < n; i++ {
		switch i % 3 {
		case 0:
			b.Unit(fmt.Sprintf("Unit%d", i))
		case 1:
			b.Single(fmt.Sprintf("User%d", i), g.Named("User"))
		default:
			b.Struct(fmt.Sprintf("Fields%d", i), g.F("a", g.String()), g.F("b", g.Number()))
		}
	}
	return b.MustBuild()
}

func newGenerator(tb testing.TB, types int, opts ...z.Option) *z.Generator {
	tb.Helper()
	gen := z.NewGenerator(opts...)
	gen.Add(userType())
	for i := 0; i < types; i++ {
		gen.Add(eventType(fmt.Sprintf("Event%d", i), 12))
	}
	return gen
}

// ---- Benchmarks ----

func Benchmark_Synthesize_Enum(b *testing.B) {
	reg := z.NewRegistry(userType())
	ev := eventType("Event", 12)
	syn := z.NewSynthesizer(z.WithRegistry(reg), z.WithReferences())
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := syn.Synthesize(ev); err != nil {
			b.Fatal(err)
		}
	}
}

func Benchmark_Generate_Zod_64Types(b *testing.B) {
	gen := newGenerator(b, 64, z.WithReferences())
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := gen.Generate(); err != nil {
			b.Fatal(err)
		}
	}
}

func Benchmark_Generate_JSONSchema_64Types(b *testing.B) {
	gen := newGenerator(b, 64, z.WithReferences())
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		doc, err := gen.JSONSchema()
		if err != nil {
			b.Fatal(err)
		}
		if _, err := js.Marshal(doc); err != nil {
			b.Fatal(err)
		}
	}
}

// Inline expansion repeats the User payload in every variant.
func Benchmark_Generate_Zod_Inline_64Types(b *testing.B) {
	gen := z.NewGenerator()
	for i := 0; i < 64; i++ {
		gen.Add(eventType(fmt.Sprintf("Event%d", i), 12))
	}
	gen.Registry().Register(g.Record("User").Field("id", g.Prim("u64")).MustBuild())
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := gen.Generate(); err != nil {
			b.Fatal(err)
		}
	}
}
