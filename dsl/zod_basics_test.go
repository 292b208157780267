package dsl_test

import (
	"testing"

	z "github.com/reoring/zodgen"
	g "github.com/reoring/zodgen/dsl"
)

func render(t *testing.T, d z.TypeDescriptor, opts ...z.Option) string {
	t.Helper()
	e, err := z.Synthesize(d, opts...)
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	s, err := z.Render(e)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	return s
}

// TestZodBasics_Record covers a plain struct with a renamed field.
func TestZodBasics_Record(t *testing.T) {
	user := g.Record("User").
		Field("id", g.Prim("u64")).
		Field("display_name", g.String()).Rename("displayName").
		Field("tags", g.Vec(g.String())).
		Field("manager", g.Option(g.Prim("u64"))).
		MustBuild()

	got := render(t, user)
	want := "z.object({ id: z.number(), displayName: z.string(), tags: z.array(z.string()), manager: z.number().nullable() })"
	if got != want {
		t.Fatalf("got=%s\nwant=%s", got, want)
	}
}

// TestZodBasics_Representations renders one enum per representation.
func TestZodBasics_Representations(t *testing.T) {
	cases := []struct {
		name string
		e    *z.SumType
		want string
	}{
		{
			"external",
			g.Enum("E").Unit("Unit").Single("Unnamed", g.Prim("u32")).MustBuild(),
			"z.union([z.literal('Unit'), z.object({ Unnamed: z.number() })])",
		},
		{
			"internal",
			g.Enum("M").Tag("type").
				Struct("Request", g.F("id", g.String())).
				Struct("Response", g.F("ok", g.Bool())).
				MustBuild(),
			"z.discriminatedUnion('type', [z.object({ type: z.literal('Request'), id: z.string() }), z.object({ type: z.literal('Response'), ok: z.boolean() })])",
		},
		{
			"adjacent",
			g.Enum("A").Tag("t").Content("c").Unit("Unit").Single("Str", g.String()).MustBuild(),
			"z.discriminatedUnion('t', [z.object({ t: z.literal('Unit') }), z.object({ t: z.literal('Str'), c: z.string() })])",
		},
		{
			"untagged",
			g.Enum("U").Untagged().Unit("None").Tuple("Pair", g.String(), g.Number()).MustBuild(),
			"z.union([z.null(), z.tuple([z.string(), z.number()])])",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := render(t, tc.e); got != tc.want {
				t.Fatalf("got=%s\nwant=%s", got, tc.want)
			}
		})
	}
}

// TestZodBasics_Generic instantiates a generic record through a registry.
func TestZodBasics_Generic(t *testing.T) {
	page := g.Record("Page").TypeParams("T").
		Field("items", g.Vec(g.Param("T"))).
		Field("next", g.Option(g.String())).
		MustBuild()
	syn := z.NewSynthesizer(z.WithRegistry(z.NewRegistry(page)))
	e, err := syn.SynthesizeRef(g.Named("Page", g.Map(g.String(), g.Bool())))
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	got, _ := z.Render(e)
	want := "z.object({ items: z.array(z.record(z.string(), z.boolean())), next: z.string().nullable() })"
	if got != want {
		t.Fatalf("got=%s\nwant=%s", got, want)
	}
}
