// Package dsl builds zodgen descriptors with a fluent API.
//
// Entry points
//   - Record(name): struct with named fields; chain Field(...).Rename(...) then Build/MustBuild.
//   - Enum(name): sum type; Tag/Content/Untagged pick the representation, Unit/Single/Tuple/Struct add variants.
//   - Prim/Named/Param and the Vec/Option/Map shorthands build type references.
//
// Build reports structural problems (empty names, duplicate wire names,
// undeclared type parameters) as zodgen.Issues with JSON Pointer paths, and
// illegal representation directives as *zodgen.ConfigError.
//
// Example
//
//	msg := dsl.Enum("Message").Tag("type").
//	    Struct("Request", dsl.F("id", dsl.String())).
//	    Struct("Response", dsl.F("ok", dsl.Bool())).
//	    MustBuild()
//	e, _ := zodgen.Synthesize(msg)
//	ts, _ := zodgen.Render(e)
//	// z.discriminatedUnion('type', [z.object({ type: z.literal('Request'), id: z.string() }), ...])
package dsl
