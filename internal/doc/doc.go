// Package doc provides the document value model that translated queries are
// expressed in.
//
// Filter predicates, projections and literal values are all trees of Value.
// The package has no internal dependencies: every other package imports doc,
// doc imports nothing internal.
//
// Two serializations are provided:
//   - MarshalJSON / MarshalValue: MongoDB Extended JSON v2 (relaxed form), the
//     wire shape handed to drivers and printed by the CLI
//   - MarshalCanonical: RFC 8785 canonical JSON over the same Extended JSON
//     shape, used for content-addressed identity (cache keys, golden files)
//
// Key design constraints:
//   - Value is sealed; type switches over it are exhaustive
//   - Object keys are emitted in RFC 8785 order (UTF-16 code units) so output
//     is deterministic regardless of map iteration order
//   - Strings are NFC normalized at the canonical serialization boundary
package doc
