// Package zodgen synthesizes zod schemas that mirror how a type is serialized
// under serde's conventions.
//
// A type is described by a TypeDescriptor: a RecordType with named fields or
// a SumType whose variants carry no payload, one payload, several positional
// payloads, or named fields. Directives (rename, tag, content, untagged)
// select the wire representation:
//
//   - no directive: externally tagged, {"Variant": payload} or "Variant"
//   - tag: internally tagged, the tag key merged into the payload object
//   - tag + content: adjacently tagged, {"t": "Variant", "c": payload}
//   - untagged: the payload alone
//
// Illegal combinations are reported as *ConfigError with a stable Code and
// the type, variant, and field they were found at.
//
// Design policy:
//   - Keep the descriptor model, directive handling, and synthesis in the root package.
//   - Schema expressions live in ir/; renderers in internal/gen (zod) and jsonschema/.
//   - Front-ends: dsl/ (fluent builder), manifest/ (YAML/JSON), internal/goparse (Go source).
//   - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//	g := zodgen.NewGenerator()
//	g.Add(eventType)
//	ts, err := g.Generate()
//
//	expr, err := zodgen.Synthesize(eventType)
//	text, err := zodgen.Render(expr)
package zodgen
