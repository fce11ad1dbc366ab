package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/odataq/internal/literal"
)

func TestInspect_CleanTree(t *testing.T) {
	filter := Binary(KindEqualsExpression,
		Common(Member("Address", "City")),
		Common(Literal(literal.String, "'Oslo'")),
		"Address/City eq 'Oslo'")
	root := &Node{
		Kind: KindODataUri,
		Value: URIValue{
			Resource: &Node{Kind: KindEntitySetName, Value: NameValue{Name: "People"}},
			Query: &Node{Kind: KindQueryOptions, Value: OptionsValue{Options: []*Node{
				Unary(KindFilter, filter, filter.Raw),
				{Kind: KindSelect, Value: ItemsValue{Items: []*Node{{Kind: KindSelectItem, Raw: "Name"}}}},
			}}},
		},
	}

	report := Inspect(root)
	assert.True(t, report.Clean, "warnings: %v", report.Warnings)
	assert.Empty(t, report.Warnings)
	assert.Greater(t, report.Nodes, 10)
}

func TestInspect_Problems(t *testing.T) {
	tests := []struct {
		name string
		node *Node
		want string
	}{
		{"unknown kind", &Node{Kind: Kind(500)}, "unknown node kind 500"},
		{"missing payload", &Node{Kind: KindFilter}, "Filter has no payload"},
		{"payload mismatch", &Node{Kind: KindFilter, Value: NameValue{Name: "x"}}, "does not take a ast.NameValue payload"},
		{"missing operand", Binary(KindAndExpression, nil, Common(Member("A")), ""), "missing its left operand"},
		{"empty select path", &Node{Kind: KindSelectItem}, "has no path text"},
		{"bad direction", &Node{Kind: KindOrderByItem, Value: OrderByItemValue{Expr: Member("A"), Direction: 0}}, "sort direction 0"},
		{"empty method", MethodCall("", ""), "no method name"},
		{"binary on wrong kind", &Node{Kind: KindFilter, Value: BinaryValue{Left: Member("A"), Right: Member("B")}}, "does not take a binary payload"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := Inspect(tt.node)
			assert.False(t, report.Clean)
			require.NotEmpty(t, report.Warnings)
			assert.Contains(t, report.Warnings[0], tt.want)
		})
	}
}

func TestInspect_Nil(t *testing.T) {
	report := Inspect(nil)
	assert.True(t, report.Clean)
	assert.Zero(t, report.Nodes)
}
