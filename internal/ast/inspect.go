package ast

import "fmt"

// Report contains the structural problems found in a tree.
//
// The translator silently skips nodes it cannot use, so a malformed tree
// produces an incomplete translation rather than an error. Report makes those
// skips visible.
type Report struct {
	// Clean is true when no problems were found.
	Clean bool

	// Warnings lists problems in depth-first order.
	Warnings []string

	// Nodes is the number of nodes visited.
	Nodes int
}

// Inspect walks the tree rooted at n and reports structural problems:
// unknown kinds, payloads that do not match their kind, and missing children
// where the grammar requires one.
//
// Inspect is a pure function with no side effects.
func Inspect(n *Node) Report {
	in := &inspector{warnings: []string{}}
	in.inspect(n, "$")
	return Report{
		Clean:    len(in.warnings) == 0,
		Warnings: in.warnings,
		Nodes:    in.nodes,
	}
}

// inspector accumulates warnings during traversal.
type inspector struct {
	warnings []string
	nodes    int
}

func (in *inspector) addWarning(path, format string, args ...any) {
	in.warnings = append(in.warnings, path+": "+fmt.Sprintf(format, args...))
}

// require reports a missing child and otherwise descends into it.
func (in *inspector) require(child *Node, path string, parent Kind, role string) {
	if child == nil {
		in.addWarning(path, "%s is missing its %s", parent, role)
		return
	}
	in.inspect(child, path)
}

func (in *inspector) inspectAll(children []*Node, path string, parent Kind) {
	for i, child := range children {
		in.require(child, fmt.Sprintf("%s[%d]", path, i), parent, "item")
	}
}

func (in *inspector) inspect(n *Node, path string) {
	if n == nil {
		return
	}
	in.nodes++

	if !n.Kind.Valid() {
		in.addWarning(path, "unknown node kind %d", int(n.Kind))
		return
	}
	path = path + "/" + n.Kind.String()

	switch v := n.Value.(type) {
	case nil:
		switch n.Kind {
		case KindSelectItem, KindExpandPath:
			if n.Raw == "" {
				in.addWarning(path, "%s has no path text", n.Kind)
			}
		default:
			in.addWarning(path, "%s has no payload", n.Kind)
		}
	case URIValue:
		in.expectKind(n, path, KindODataUri)
		in.inspect(v.Resource, path)
		in.require(v.Query, path, n.Kind, "query options")
	case NameValue:
		in.expectKind(n, path, KindEntitySetName, KindODataIdentifier)
		if v.Name == "" {
			in.addWarning(path, "%s has an empty name", n.Kind)
		}
	case OptionsValue:
		in.expectKind(n, path, KindQueryOptions)
		in.inspectAll(v.Options, path, n.Kind)
	case ItemsValue:
		in.expectKind(n, path, KindExpand, KindOrderBy, KindSelect)
		in.inspectAll(v.Items, path, n.Kind)
	case ExpandItemValue:
		in.expectKind(n, path, KindExpandItem)
		in.require(v.Path, path, n.Kind, "navigation path")
		in.inspectAll(v.Options, path, n.Kind)
	case OrderByItemValue:
		in.expectKind(n, path, KindOrderByItem)
		if v.Direction != Ascending && v.Direction != Descending {
			in.addWarning(path, "sort direction %d is neither ascending nor descending", v.Direction)
		}
		in.require(v.Expr, path, n.Kind, "expression")
	case UnaryValue:
		in.expectKind(n, path, KindFilter, KindNotExpression, KindBoolParenExpression,
			KindCommonExpression, KindFirstMemberExpression, KindMemberExpression,
			KindSkip, KindTop, KindInlineCount)
		in.require(v.Operand, path, n.Kind, "operand")
	case BinaryValue:
		if n.Kind != KindAndExpression && n.Kind != KindOrExpression && !n.Kind.IsComparison() {
			in.addWarning(path, "%s does not take a binary payload", n.Kind)
		}
		in.require(v.Left, path, n.Kind, "left operand")
		in.require(v.Right, path, n.Kind, "right operand")
	case PathValue:
		in.expectKind(n, path, KindPropertyPathExpression, KindSingleNavigationExpression)
		in.require(v.Current, path, n.Kind, "current segment")
		in.inspect(v.Next, path)
	case LiteralValue:
		in.expectKind(n, path, KindLiteral)
	case MethodCallValue:
		in.expectKind(n, path, KindMethodCallExpression)
		if v.Method == "" {
			in.addWarning(path, "method call has no method name")
		}
		in.inspectAll(v.Parameters, path, n.Kind)
	default:
		in.addWarning(path, "unknown payload type %T", n.Value)
	}
}

// expectKind warns when n.Kind is not one of the kinds that carry n's payload.
func (in *inspector) expectKind(n *Node, path string, kinds ...Kind) {
	for _, k := range kinds {
		if n.Kind == k {
			return
		}
	}
	in.addWarning(path, "%s does not take a %T payload", n.Kind, n.Value)
}
