// Package translate turns parsed OData trees into document-store query
// specifications.
//
// A Translator walks one tree (see internal/ast) and incrementally builds a
// Result: collection name, filter predicate, sort, projection, paging bounds
// and, for every navigation property named in an $expand clause, a nested
// child Result.
//
// ARCHITECTURE:
//
// Dispatch is a single switch over ast.Kind. Each handler either writes the
// Translator's own result fields, or threads a transient scope (the working
// context) down to descendants and reads back what they deposited:
//
//	Filter ─┬─ allocates scope.query
//	        └─ Equals ─┬─ Member → ODataIdentifier  deposits scope.identifier
//	                   ├─ Literal                   deposits scope.literal
//	                   └─ takes both, writes query[identifier] = {$eq: literal}
//
// Slots are taken (read and cleared in one step) by the handler that
// consumes them, so a stale identifier from one sibling can never attach to
// another sibling's predicate.
//
// PERMISSIVENESS:
//
// A nil node, an unknown kind, or a payload that does not fit its kind
// contributes nothing and raises no error. Malformed trees translate to an
// incomplete result instead of being rejected. Only two conditions abort a
// translation:
//   - an unsupported method call (UnsupportedMethodError)
//   - nesting deeper than the configured limit (DepthError)
//
// CONCURRENCY:
//
// A Translator is single-use and not safe for concurrent use. Translations of
// different queries share no state and may run in parallel.
package translate
