// Package ast defines the parsed tree that the translator consumes.
//
// The tree is produced by internal/parser (or by any caller that builds it
// directly) and is only read by internal/translate. It is the abstraction
// boundary between the query language and the document-store backend:
//
//	[OData text] → [parser] → [ast.Node] → [translate] → [doc values]
//
// NODE KINDS:
//
// Kind is a closed enumeration. Every node carries exactly one Kind, a
// kind-specific payload (Value) and the raw source text it was parsed from.
// Backends switch over Kind; the zero Kind is invalid so that an
// uninitialized node is never mistaken for a real one.
//
// SEALED PAYLOADS:
//
// Value is a sealed interface using the marker method pattern. Only types in
// this package implement it, which keeps type switches in backends
// exhaustive:
//
//	switch v := node.Value.(type) {
//	case BinaryValue:
//	    // left/right operands
//	case UnaryValue:
//	    // single wrapped child
//	}
//
// Which payload goes with which Kind is documented on each payload type and
// checked by Inspect.
//
// IMMUTABILITY:
//
// Nodes are never mutated after construction. Translators may run over the
// same tree concurrently.
package ast
