package ast

import "github.com/roach88/odataq/internal/literal"

// Node is one element of the parsed tree.
type Node struct {
	Kind  Kind
	Value Value  // Kind-specific payload (nil for SelectItem and ExpandPath)
	Raw   string // Source text this node was parsed from
}

// Value is the kind-specific payload of a Node.
//
// This is a sealed interface - only types in this package implement it.
type Value interface {
	nodeValue() // Marker method - seals interface to this package
}

// Sort directions carried by OrderByItem. The values are the document-store
// sort directions and are copied into the sort specification unchanged.
const (
	Ascending  = 1
	Descending = -1
)

// URIValue is the payload of ODataUri.
// Resource is the EntitySetName (nil for a bare option string); Query is the
// QueryOptions node.
type URIValue struct {
	Resource *Node
	Query    *Node
}

func (URIValue) nodeValue() {}

// NameValue is the payload of EntitySetName and ODataIdentifier.
type NameValue struct {
	Name string
}

func (NameValue) nodeValue() {}

// OptionsValue is the payload of QueryOptions: the system query options in
// document order.
type OptionsValue struct {
	Options []*Node
}

func (OptionsValue) nodeValue() {}

// ItemsValue is the payload of Expand, OrderBy and Select.
type ItemsValue struct {
	Items []*Node
}

func (ItemsValue) nodeValue() {}

// ExpandItemValue is the payload of ExpandItem.
// Path is the ExpandPath node; Options are nested query options.
type ExpandItemValue struct {
	Path    *Node
	Options []*Node
}

func (ExpandItemValue) nodeValue() {}

// OrderByItemValue is the payload of OrderByItem.
type OrderByItemValue struct {
	Expr      *Node
	Direction int // Ascending or Descending
}

func (OrderByItemValue) nodeValue() {}

// UnaryValue wraps a single child. Used by Filter, NotExpression, the
// pass-through wrappers (BoolParen, Common, FirstMember, Member) and by Skip,
// Top and InlineCount whose operand is a Literal node.
type UnaryValue struct {
	Operand *Node
}

func (UnaryValue) nodeValue() {}

// BinaryValue is the payload of AndExpression, OrExpression and the six
// comparison expressions.
type BinaryValue struct {
	Left  *Node
	Right *Node
}

func (BinaryValue) nodeValue() {}

// PathValue is the payload of PropertyPathExpression and
// SingleNavigationExpression. A single-part path has Next == nil.
type PathValue struct {
	Current *Node
	Next    *Node
}

func (PathValue) nodeValue() {}

// LiteralValue is the payload of Literal. The lexical text is Node.Raw.
type LiteralValue struct {
	Kind literal.Kind
}

func (LiteralValue) nodeValue() {}

// MethodCallValue is the payload of MethodCallExpression.
type MethodCallValue struct {
	Method     string
	Parameters []*Node
}

func (MethodCallValue) nodeValue() {}
