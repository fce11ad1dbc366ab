package ast

import (
	"strings"

	"github.com/roach88/odataq/internal/literal"
)

// Constructors for the common node shapes. The parser uses them, and so do
// callers that build trees by hand.

// Unary creates a node wrapping a single child.
func Unary(kind Kind, operand *Node, raw string) *Node {
	return &Node{Kind: kind, Value: UnaryValue{Operand: operand}, Raw: raw}
}

// Binary creates a node with left and right operands.
func Binary(kind Kind, left, right *Node, raw string) *Node {
	return &Node{Kind: kind, Value: BinaryValue{Left: left, Right: right}, Raw: raw}
}

// Identifier creates an ODataIdentifier node.
func Identifier(name string) *Node {
	return &Node{Kind: KindODataIdentifier, Value: NameValue{Name: name}, Raw: name}
}

// Literal creates a Literal node of the given kind.
func Literal(kind literal.Kind, raw string) *Node {
	return &Node{Kind: KindLiteral, Value: LiteralValue{Kind: kind}, Raw: raw}
}

// Common wraps n in a CommonExpression, the shape every comparison operand
// and method parameter has in a parsed tree.
func Common(n *Node) *Node {
	return Unary(KindCommonExpression, n, n.Raw)
}

// Member builds the FirstMemberExpression for a slash-separated member path:
//
//	FirstMember → Member → PropertyPath{Identifier, PropertyPath{...}}
func Member(segments ...string) *Node {
	path := propertyPath(segments)
	raw := strings.Join(segments, "/")
	member := Unary(KindMemberExpression, path, raw)
	return Unary(KindFirstMemberExpression, member, raw)
}

func propertyPath(segments []string) *Node {
	raw := strings.Join(segments, "/")
	if len(segments) == 1 {
		return &Node{Kind: KindPropertyPathExpression, Value: PathValue{Current: Identifier(segments[0])}, Raw: raw}
	}
	return &Node{
		Kind:  KindPropertyPathExpression,
		Value: PathValue{Current: Identifier(segments[0]), Next: propertyPath(segments[1:])},
		Raw:   raw,
	}
}

// MethodCall creates a MethodCallExpression node.
func MethodCall(method string, raw string, params ...*Node) *Node {
	return &Node{Kind: KindMethodCallExpression, Value: MethodCallValue{Method: method, Parameters: params}, Raw: raw}
}
