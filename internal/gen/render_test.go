package gen

import (
	"strings"
	"testing"

	ir "github.com/reoring/zodgen/ir"
)

func TestRenderFile_Minimal(t *testing.T) {
	out, err := RenderFile(File{Exports: []Export{{Name: "User", Expr: ir.Obj()}}})
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	want := "import { z } from 'zod';\n\n" +
		"export const UserSchema = z.object({});\n" +
		"export type User = z.infer<typeof UserSchema>;\n"
	if string(out) != want {
		t.Fatalf("file mismatch\n got=%q\nwant=%q", out, want)
	}
}

func TestRenderFile_HeaderAndOrder(t *testing.T) {
	out, err := RenderFile(File{
		Header: "Code generated by zodgen. DO NOT EDIT.",
		Exports: []Export{
			{Name: "B", Expr: ir.Prim(ir.String)},
			{Name: "A", Expr: ir.Prim(ir.Number)},
		},
	})
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	s := string(out)
	if !strings.HasPrefix(s, "// Code generated by zodgen. DO NOT EDIT.\n\nimport { z } from 'zod';\n") {
		t.Fatalf("header missing: %q", s)
	}
	if strings.Index(s, "BSchema") > strings.Index(s, "ASchema") {
		t.Fatalf("exports reordered: %q", s)
	}
}

func TestRenderFile_RejectsBadName(t *testing.T) {
	if _, err := RenderFile(File{Exports: []Export{{Name: "Page<User>", Expr: ir.Obj()}}}); err == nil {
		t.Fatalf("expected error for non-identifier export name")
	}
}

func TestRender_Nodes(t *testing.T) {
	cases := []struct {
		name string
		in   ir.Expr
		want string
	}{
		{"literal", ir.Lit("Active"), "z.literal('Active')"},
		{"literal-escape", ir.Lit(`it's`), `z.literal('it\'s')`},
		{"literal-bool", &ir.Literal{Value: true}, "z.literal(true)"},
		{"literal-number", &ir.Literal{Value: 1.5}, "z.literal(1.5)"},
		{"null", &ir.Null{}, "z.null()"},
		{"object", ir.Obj(ir.F("id", ir.Prim(ir.Number)), ir.F("name", ir.Prim(ir.String))),
			"z.object({ id: z.number(), name: z.string() })"},
		{"object-quoted-key", ir.Obj(ir.F("user-name", ir.Prim(ir.String))), "z.object({ 'user-name': z.string() })"},
		{"tuple", &ir.Tuple{Items: []ir.Expr{ir.Prim(ir.Number), ir.Prim(ir.String)}}, "z.tuple([z.number(), z.string()])"},
		{"union", &ir.Union{Members: []ir.Expr{ir.Lit("A"), ir.Lit("B")}}, "z.union([z.literal('A'), z.literal('B')])"},
		{"union-single", &ir.Union{Members: []ir.Expr{ir.Lit("A")}}, "z.literal('A')"},
		{"union-empty", &ir.Union{}, "z.never()"},
		{"discriminated-empty", &ir.Union{Discriminator: "type"}, "z.never()"},
		{"discriminated", &ir.Union{Discriminator: "type", Members: []ir.Expr{ir.Obj(ir.F("type", ir.Lit("A")))}},
			"z.discriminatedUnion('type', [z.object({ type: z.literal('A') })])"},
		{"intersection", &ir.Intersection{Left: ir.Obj(ir.F("t", ir.Lit("P"))), Right: ir.Obj(ir.F("x", ir.Prim(ir.Number)))},
			"z.intersection(z.object({ t: z.literal('P') }), z.object({ x: z.number() }))"},
		{"array", &ir.Array{Item: ir.Prim(ir.String)}, "z.array(z.string())"},
		{"nullable", &ir.Nullable{Inner: ir.Prim(ir.Boolean)}, "z.boolean().nullable()"},
		{"record", &ir.Record{Key: ir.Prim(ir.String), Value: ir.Prim(ir.Number)}, "z.record(z.string(), z.number())"},
		{"ref", &ir.Ref{Name: "User"}, "z.lazy(() => UserSchema)"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Render(tc.in)
			if err != nil {
				t.Fatalf("render err: %v", err)
			}
			if got != tc.want {
				t.Fatalf("got=%s\nwant=%s", got, tc.want)
			}
		})
	}
}

func TestRender_Errors(t *testing.T) {
	if _, err := Render(nil); err == nil {
		t.Fatalf("expected error for nil")
	}
	if _, err := Render(ir.Obj(ir.F("a", nil))); err == nil {
		t.Fatalf("expected error for nil field schema")
	}
	if _, err := Render(&ir.Literal{Value: struct{}{}}); err == nil {
		t.Fatalf("expected error for unsupported literal")
	}
	if _, err := Render(ir.Prim("date")); err == nil {
		t.Fatalf("expected error for unknown primitive")
	}
}
