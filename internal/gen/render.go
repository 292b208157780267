package gen

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	ir "github.com/reoring/zodgen/ir"
)

// Export is one named schema of a rendered file.
type Export struct {
	Name string
	Expr ir.Expr
}

// File is the input to RenderFile.
type File struct {
	Header  string // optional leading comment line, without "//"
	Exports []Export
}

var identRe = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

// SchemaName is the const name of an export.
func SchemaName(name string) string { return name + "Schema" }

// RenderFile renders a zod TypeScript module: one import, then per export a
// schema const and an inferred type alias.
func RenderFile(f File) ([]byte, error) {
	b := &strings.Builder{}
	if f.Header != "" {
		fmt.Fprintf(b, "// %s\n\n", f.Header)
	}
	b.WriteString("import { z } from 'zod';\n")
	for _, e := range f.Exports {
		if !identRe.MatchString(e.Name) {
			return nil, fmt.Errorf("gen: export name %q is not a TypeScript identifier", e.Name)
		}
		body, err := Render(e.Expr)
		if err != nil {
			return nil, fmt.Errorf("gen: export %s: %w", e.Name, err)
		}
		fmt.Fprintf(b, "\nexport const %s = %s;\n", SchemaName(e.Name), body)
		fmt.Fprintf(b, "export type %s = z.infer<typeof %s>;\n", e.Name, SchemaName(e.Name))
	}
	return []byte(b.String()), nil
}

// Render renders one expression.
func Render(e ir.Expr) (string, error) {
	b := &strings.Builder{}
	if err := write(b, e); err != nil {
		return "", err
	}
	return b.String(), nil
}

func write(b *strings.Builder, e ir.Expr) error {
	switch t := e.(type) {
	case *ir.Literal:
		b.WriteString("z.literal(")
		if err := writeValue(b, t.Value); err != nil {
			return err
		}
		b.WriteString(")")
	case *ir.Primitive:
		switch t.Name {
		case ir.String, ir.Number, ir.Boolean, ir.BigInt, ir.Any, ir.Unknown:
			fmt.Fprintf(b, "z.%s()", t.Name)
		default:
			return fmt.Errorf("gen: unknown primitive %q", t.Name)
		}
	case *ir.Object:
		if len(t.Fields) == 0 {
			b.WriteString("z.object({})")
			return nil
		}
		b.WriteString("z.object({ ")
		for i, f := range t.Fields {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(key(f.Name))
			b.WriteString(": ")
			if err := write(b, f.Schema); err != nil {
				return err
			}
		}
		b.WriteString(" })")
	case *ir.Tuple:
		b.WriteString("z.tuple(")
		if err := writeList(b, t.Items); err != nil {
			return err
		}
		b.WriteString(")")
	case *ir.Union:
		// zod rejects z.union([]) and z.union([x]).
		switch {
		case len(t.Members) == 0:
			b.WriteString("z.never()")
			return nil
		case len(t.Members) == 1 && t.Discriminator == "":
			return write(b, t.Members[0])
		}
		if t.Discriminator != "" {
			fmt.Fprintf(b, "z.discriminatedUnion(%s, ", quote(t.Discriminator))
		} else {
			b.WriteString("z.union(")
		}
		if err := writeList(b, t.Members); err != nil {
			return err
		}
		b.WriteString(")")
	case *ir.Intersection:
		b.WriteString("z.intersection(")
		if err := write(b, t.Left); err != nil {
			return err
		}
		b.WriteString(", ")
		if err := write(b, t.Right); err != nil {
			return err
		}
		b.WriteString(")")
	case *ir.Null:
		b.WriteString("z.null()")
	case *ir.Array:
		b.WriteString("z.array(")
		if err := write(b, t.Item); err != nil {
			return err
		}
		b.WriteString(")")
	case *ir.Nullable:
		if err := write(b, t.Inner); err != nil {
			return err
		}
		b.WriteString(".nullable()")
	case *ir.Record:
		b.WriteString("z.record(")
		if err := write(b, t.Key); err != nil {
			return err
		}
		b.WriteString(", ")
		if err := write(b, t.Value); err != nil {
			return err
		}
		b.WriteString(")")
	case *ir.Ref:
		fmt.Fprintf(b, "z.lazy(() => %s)", SchemaName(t.Name))
	case nil:
		return errors.New("gen: nil expression")
	default:
		return fmt.Errorf("gen: unsupported node %T", e)
	}
	return nil
}

func writeList(b *strings.Builder, xs []ir.Expr) error {
	b.WriteString("[")
	for i, x := range xs {
		if i > 0 {
			b.WriteString(", ")
		}
		if err := write(b, x); err != nil {
			return err
		}
	}
	b.WriteString("]")
	return nil
}

func writeValue(b *strings.Builder, v any) error {
	switch t := v.(type) {
	case string:
		b.WriteString(quote(t))
	case bool:
		b.WriteString(strconv.FormatBool(t))
	case int:
		b.WriteString(strconv.Itoa(t))
	case int64:
		b.WriteString(strconv.FormatInt(t, 10))
	case float64:
		b.WriteString(strconv.FormatFloat(t, 'g', -1, 64))
	default:
		return fmt.Errorf("gen: unsupported literal %T", v)
	}
	return nil
}

var quoter = strings.NewReplacer(`\`, `\\`, `'`, `\'`, "\n", `\n`, "\r", `\r`)

func quote(s string) string { return "'" + quoter.Replace(s) + "'" }

// key renders an object key, quoting it when it is not an identifier.
func key(name string) string {
	if identRe.MatchString(name) {
		return name
	}
	return quote(name)
}
