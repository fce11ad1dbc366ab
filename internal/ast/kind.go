package ast

// Kind identifies the grammar production a Node was parsed from.
type Kind int

const (
	KindInvalid Kind = iota

	KindODataUri
	KindEntitySetName
	KindExpand
	KindExpandItem
	KindExpandPath
	KindQueryOptions
	KindInlineCount
	KindFilter
	KindOrderBy
	KindOrderByItem
	KindSkip
	KindTop
	KindSelect
	KindSelectItem
	KindAndExpression
	KindOrExpression
	KindBoolParenExpression
	KindCommonExpression
	KindFirstMemberExpression
	KindMemberExpression
	KindPropertyPathExpression
	KindSingleNavigationExpression
	KindODataIdentifier
	KindNotExpression
	KindEqualsExpression
	KindNotEqualsExpression
	KindLesserThanExpression
	KindLesserOrEqualsExpression
	KindGreaterThanExpression
	KindGreaterOrEqualsExpression
	KindLiteral
	KindMethodCallExpression

	kindCount // sentinel, keep last
)

var kindNames = [kindCount]string{
	KindInvalid:                    "Invalid",
	KindODataUri:                   "ODataUri",
	KindEntitySetName:              "EntitySetName",
	KindExpand:                     "Expand",
	KindExpandItem:                 "ExpandItem",
	KindExpandPath:                 "ExpandPath",
	KindQueryOptions:               "QueryOptions",
	KindInlineCount:                "InlineCount",
	KindFilter:                     "Filter",
	KindOrderBy:                    "OrderBy",
	KindOrderByItem:                "OrderByItem",
	KindSkip:                       "Skip",
	KindTop:                        "Top",
	KindSelect:                     "Select",
	KindSelectItem:                 "SelectItem",
	KindAndExpression:              "AndExpression",
	KindOrExpression:               "OrExpression",
	KindBoolParenExpression:        "BoolParenExpression",
	KindCommonExpression:           "CommonExpression",
	KindFirstMemberExpression:      "FirstMemberExpression",
	KindMemberExpression:           "MemberExpression",
	KindPropertyPathExpression:     "PropertyPathExpression",
	KindSingleNavigationExpression: "SingleNavigationExpression",
	KindODataIdentifier:            "ODataIdentifier",
	KindNotExpression:              "NotExpression",
	KindEqualsExpression:           "EqualsExpression",
	KindNotEqualsExpression:        "NotEqualsExpression",
	KindLesserThanExpression:       "LesserThanExpression",
	KindLesserOrEqualsExpression:   "LesserOrEqualsExpression",
	KindGreaterThanExpression:      "GreaterThanExpression",
	KindGreaterOrEqualsExpression:  "GreaterOrEqualsExpression",
	KindLiteral:                    "Literal",
	KindMethodCallExpression:       "MethodCallExpression",
}

// String returns the grammar name of the kind.
func (k Kind) String() string {
	if k < 0 || k >= kindCount {
		return "Unknown"
	}
	return kindNames[k]
}

// Valid reports whether k is one of the defined node kinds.
func (k Kind) Valid() bool {
	return k > KindInvalid && k < kindCount
}

// Kinds returns every valid kind in declaration order.
func Kinds() []Kind {
	kinds := make([]Kind, 0, kindCount-1)
	for k := KindInvalid + 1; k < kindCount; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}

// IsComparison reports whether k is one of the six binary comparisons.
func (k Kind) IsComparison() bool {
	switch k {
	case KindEqualsExpression, KindNotEqualsExpression,
		KindLesserThanExpression, KindLesserOrEqualsExpression,
		KindGreaterThanExpression, KindGreaterOrEqualsExpression:
		return true
	}
	return false
}
