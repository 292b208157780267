package jsonschema_test

import (
	"strings"
	"testing"

	json "github.com/goccy/go-json"

	ir "github.com/reoring/zodgen/ir"
	js "github.com/reoring/zodgen/jsonschema"
)

func compact(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(b)
}

func TestFromExpr_ObjectKeepsFieldOrder(t *testing.T) {
	s, err := js.FromExpr(ir.Obj(ir.F("zeta", ir.Prim(ir.String)), ir.F("alpha", ir.Prim(ir.Number))))
	if err != nil {
		t.Fatalf("from expr: %v", err)
	}
	got := compact(t, s)
	want := `{"type":"object","properties":{"zeta":{"type":"string"},"alpha":{"type":"number"}},"required":["zeta","alpha"]}`
	if got != want {
		t.Fatalf("got=%s\nwant=%s", got, want)
	}
}

func TestFromExpr_Nodes(t *testing.T) {
	cases := []struct {
		name string
		in   ir.Expr
		want string
	}{
		{"literal", ir.Lit("A"), `{"const":"A"}`},
		{"literal-empty", ir.Lit(""), `{"const":""}`},
		{"null", &ir.Null{}, `{"type":"null"}`},
		{"any", ir.Prim(ir.Any), `{}`},
		{"bigint", ir.Prim(ir.BigInt), `{"type":"integer"}`},
		{"tuple", &ir.Tuple{Items: []ir.Expr{ir.Prim(ir.Number), ir.Prim(ir.String)}},
			`{"type":"array","prefixItems":[{"type":"number"},{"type":"string"}],"minItems":2,"maxItems":2}`},
		{"union", &ir.Union{Members: []ir.Expr{ir.Lit("A"), ir.Lit("B")}}, `{"anyOf":[{"const":"A"},{"const":"B"}]}`},
		{"discriminated", &ir.Union{Discriminator: "type", Members: []ir.Expr{ir.Obj(ir.F("type", ir.Lit("A")))}},
			`{"oneOf":[{"type":"object","properties":{"type":{"const":"A"}},"required":["type"]}],"discriminator":{"propertyName":"type"}}`},
		{"intersection", &ir.Intersection{Left: ir.Obj(), Right: &ir.Ref{Name: "P"}},
			`{"allOf":[{"type":"object"},{"$ref":"#/$defs/P"}]}`},
		{"array", &ir.Array{Item: ir.Prim(ir.Boolean)}, `{"type":"array","items":{"type":"boolean"}}`},
		{"nullable", &ir.Nullable{Inner: ir.Prim(ir.String)}, `{"anyOf":[{"type":"string"},{"type":"null"}]}`},
		{"record", &ir.Record{Key: ir.Prim(ir.String), Value: ir.Prim(ir.Number)},
			`{"type":"object","additionalProperties":{"type":"number"}}`},
		{"record-literal-keys", &ir.Record{Key: &ir.Union{Members: []ir.Expr{ir.Lit("a")}}, Value: ir.Prim(ir.Number)},
			`{"type":"object","additionalProperties":{"type":"number"},"propertyNames":{"anyOf":[{"const":"a"}]}}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s, err := js.FromExpr(tc.in)
			if err != nil {
				t.Fatalf("from expr: %v", err)
			}
			if got := compact(t, s); got != tc.want {
				t.Fatalf("got=%s\nwant=%s", got, tc.want)
			}
		})
	}
}

func TestFromExpr_Errors(t *testing.T) {
	if _, err := js.FromExpr(nil); err == nil {
		t.Fatalf("expected error for nil")
	}
	if _, err := js.FromExpr(&ir.Array{Item: ir.Prim("date")}); err == nil {
		t.Fatalf("expected error for unknown primitive")
	}
}

func TestDocument_DefineReplacesInPlace(t *testing.T) {
	doc := js.NewDocument()
	doc.Define("A", &js.Schema{Type: "string"})
	doc.Define("B", &js.Schema{Type: "number"})
	doc.Define("A", &js.Schema{Type: "boolean"})
	if len(doc.Defs) != 2 || doc.Defs[0].Name != "A" {
		t.Fatalf("defs=%v", doc.Defs)
	}
	if s, ok := doc.Defs.Get("A"); !ok || s.Type != "boolean" {
		t.Fatalf("A not replaced: %+v", s)
	}
	b, err := js.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	out := string(b)
	if !strings.Contains(out, `"$schema": "`+js.Draft+`"`) {
		t.Fatalf("missing $schema: %s", out)
	}
	if strings.Index(out, `"A"`) > strings.Index(out, `"B"`) {
		t.Fatalf("defs reordered: %s", out)
	}
}
