// Package primitive maps built-in scalar and container type names to schema
// fragments. It is a pure lookup table: the synthesizer hands it a type name
// together with the already-synthesized generic arguments.
package primitive

import (
	"errors"
	"fmt"
	"sort"

	"github.com/reoring/zodgen/ir"
)

var (
	// ErrUnknown reports a name missing from the table.
	ErrUnknown = errors.New("primitive: unknown type")
	// ErrArity reports a wrong number of generic arguments.
	ErrArity = errors.New("primitive: wrong number of type arguments")
)

// variadic marks entries accepting any number of arguments.
const variadic = -1

type entry struct {
	arity int
	build func(args []ir.Expr) ir.Expr
}

func scalar(k ir.PrimitiveKind) entry {
	return entry{arity: 0, build: func([]ir.Expr) ir.Expr { return ir.Prim(k) }}
}

var (
	array    = entry{arity: 1, build: func(a []ir.Expr) ir.Expr { return &ir.Array{Item: a[0]} }}
	nullable = entry{arity: 1, build: func(a []ir.Expr) ir.Expr { return &ir.Nullable{Inner: a[0]} }}
	record   = entry{arity: 2, build: func(a []ir.Expr) ir.Expr { return &ir.Record{Key: a[0], Value: a[1]} }}
	// Smart pointers serialize as their pointee.
	transparent = entry{arity: 1, build: func(a []ir.Expr) ir.Expr { return a[0] }}
	tuple       = entry{arity: variadic, build: func(a []ir.Expr) ir.Expr {
		if len(a) == 0 {
			return &ir.Null{}
		}
		return &ir.Tuple{Items: append([]ir.Expr(nil), a...)}
	}}
	null = entry{arity: 0, build: func([]ir.Expr) ir.Expr { return &ir.Null{} }}
)

var table = map[string]entry{
	// strings
	"String": scalar(ir.String), "str": scalar(ir.String), "&str": scalar(ir.String),
	"char": scalar(ir.String), "string": scalar(ir.String),
	"time.Time": scalar(ir.String), "Uuid": scalar(ir.String), "uuid.UUID": scalar(ir.String),
	"PathBuf": scalar(ir.String),

	// numbers (serde_json emits every integer width as a JSON number)
	"u8": scalar(ir.Number), "u16": scalar(ir.Number), "u32": scalar(ir.Number), "u64": scalar(ir.Number),
	"u128": scalar(ir.Number), "usize": scalar(ir.Number),
	"i8": scalar(ir.Number), "i16": scalar(ir.Number), "i32": scalar(ir.Number), "i64": scalar(ir.Number),
	"i128": scalar(ir.Number), "isize": scalar(ir.Number),
	"f32": scalar(ir.Number), "f64": scalar(ir.Number), "number": scalar(ir.Number),
	"int": scalar(ir.Number), "int8": scalar(ir.Number), "int16": scalar(ir.Number), "int32": scalar(ir.Number),
	"int64": scalar(ir.Number), "uint": scalar(ir.Number), "uint8": scalar(ir.Number), "uint16": scalar(ir.Number),
	"uint32": scalar(ir.Number), "uint64": scalar(ir.Number), "uintptr": scalar(ir.Number),
	"float32": scalar(ir.Number), "float64": scalar(ir.Number), "byte": scalar(ir.Number), "rune": scalar(ir.Number),
	"json.Number": scalar(ir.Number),

	"bool": scalar(ir.Boolean), "boolean": scalar(ir.Boolean),
	"bigint": scalar(ir.BigInt),

	"serde_json::Value": scalar(ir.Any), "Value": scalar(ir.Any), "any": scalar(ir.Any),
	"interface{}": scalar(ir.Any), "json.RawMessage": scalar(ir.Any),
	"unknown": scalar(ir.Unknown),

	"()": null, "null": null,

	// containers
	"Vec": array, "VecDeque": array, "HashSet": array, "BTreeSet": array, "IndexSet": array, "[]": array,
	"Option": nullable, "*": nullable,
	"HashMap": record, "BTreeMap": record, "IndexMap": record, "map": record,
	"Box": transparent, "Rc": transparent, "Arc": transparent, "Cow": transparent,
	"tuple": tuple,
}

// Lookup resolves name with its synthesized generic arguments.
func Lookup(name string, args []ir.Expr) (ir.Expr, error) {
	e, ok := table[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknown, name)
	}
	if e.arity != variadic && e.arity != len(args) {
		return nil, fmt.Errorf("%w: %s expects %d, got %d", ErrArity, name, e.arity, len(args))
	}
	return e.build(args), nil
}

// IsKnown reports whether name is in the table.
func IsKnown(name string) bool {
	_, ok := table[name]
	return ok
}

// Arity returns the number of generic arguments name expects, or -1 when it
// accepts any number. ok is false for unknown names.
func Arity(name string) (n int, ok bool) {
	e, ok := table[name]
	if !ok {
		return 0, false
	}
	return e.arity, true
}

// Names returns every known name, sorted.
func Names() []string {
	out := make([]string, 0, len(table))
	for k := range table {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
