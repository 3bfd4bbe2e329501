// Package objson serializes graphs of typed Go objects to and from a
// relaxed JSON text format, without the serialized types embedding any
// serialization logic.
//
// Types and their members are registered in a Registry outside the
// types themselves. A Serializer bound to that registry walks live
// object graphs on write and rebuilds them on read, supporting:
//   - Scalars, enums (named integer types), strings
//   - Pointers (nil-able), slices, fixed arrays, string-keyed maps
//   - Multiple "inheritance" via embedded structs and upcast functions
//   - Runtime polymorphism via interface members and the @class key
//   - Shared and cyclic object graphs via the @id key (sharing mode)
//
// # Relaxed syntax
//
// The grammar is intentionally looser than strict JSON. Leniency is
// controlled by a Syntax mask:
//   - Comments: // line and /* block */ comments (allowed by default)
//   - NoQuotes: unquoted keys and values where unambiguous
//   - NoCommas: a bare newline may separate pairs or elements
//   - Newlines: literal newlines inside """triple-quoted""" strings
//
// Strict disables all four.
//
// # Reserved keys
//
// Two object keys are reserved. "@class" names the concrete type when
// it differs from the statically expected one, which is what makes
// polymorphic members round-trip. "@id" tags an object with an integer
// identity in sharing mode; a bare "@<id>" value stands for a
// back-reference to an already-seen object, which is what makes shared
// and cyclic graphs finite to serialize and correctly aliased on read.
//
// # Unknown members
//
// A key with no registered member is reported as a non-fatal condition
// and reading continues, so documents written by newer code still load.
// This tolerance covers scalar values only: an unknown member holding a
// nested object or array is not skipped structurally — its pairs
// surface as further unknown members and its closing brace ends the
// enclosing object, dropping the members that follow it.
//
// # Example
//
//	type Point struct{ X, Y int }
//
//	reg := objson.NewRegistry()
//	pt := objson.Define[Point](reg, "Point")
//	objson.Field(pt, "x", func(p *Point) *int { return &p.X })
//	objson.Field(pt, "y", func(p *Point) *int { return &p.Y })
//
//	s := objson.New(reg)
//	var p Point
//	if err := s.ReadFile(&p, "point.json"); err != nil { ... }
//	if err := s.WriteFile(&p, "point-out.json"); err != nil { ... }
//
// Cyclic graphs must be written with SetSharing(true); without it
// nothing bounds the traversal and the writer recurses until it runs
// out of stack.
//
// A Serializer is not safe for concurrent use: per-call session state
// lives on the instance. The Registry is read-only after population
// and may be shared across serializers and goroutines.
package objson
