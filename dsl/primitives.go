package dsl

import z "github.com/reoring/zodgen"

// Prim refers to an entry of the primitive mapping, e.g. Prim("u64").
func Prim(name string, args ...z.TypeRef) z.TypeRef { return z.Prim{Name: name, Args: args} }

// Named refers to another descriptor, optionally instantiating its type
// parameters.
func Named(name string, args ...z.TypeRef) z.TypeRef { return z.Named{Name: name, Args: args} }

// Param refers to a declared type parameter.
func Param(name string) z.TypeRef { return z.Param{Name: name} }

func String() z.TypeRef { return Prim("String") }
func Number() z.TypeRef { return Prim("f64") }
func Bool() z.TypeRef   { return Prim("bool") }
func Any() z.TypeRef    { return Prim("any") }

// Vec is a JSON array of t.
func Vec(t z.TypeRef) z.TypeRef { return Prim("Vec", t) }

// Option is t or null.
func Option(t z.TypeRef) z.TypeRef { return Prim("Option", t) }

// Map is a JSON object with keys k and values v.
func Map(k, v z.TypeRef) z.TypeRef { return Prim("HashMap", k, v) }

// F builds a field for Enum(...).Struct.
func F(name string, t z.TypeRef, ds ...z.Directive) z.FieldDescriptor {
	return z.FieldDescriptor{Name: name, Directives: ds, Type: t}
}
