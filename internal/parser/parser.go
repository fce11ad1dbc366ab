// Package parser turns OData v4 query text into ast trees.
//
// Two entry points mirror the two translation entry points:
//   - ParseQuery: a resource path plus system query options
//     ("/Products?$filter=Price gt 5&$top=10")
//   - ParseFilter: a bare $filter expression ("Price gt 5 and Name eq 'x'")
//
// Only the system query options the translator understands are turned into
// nodes; unknown and custom options are skipped.
package parser

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/roach88/odataq/internal/ast"
	"github.com/roach88/odataq/internal/literal"
)

// DefaultMaxDepth bounds expression nesting: parenthesized groups, not and
// method calls.
const DefaultMaxDepth = 256

// Option configures parsing.
type Option func(*config)

type config struct {
	maxDepth int
}

// WithMaxDepth sets the maximum expression nesting depth.
// Values below 1 are ignored.
func WithMaxDepth(depth int) Option {
	return func(c *config) {
		if depth > 0 {
			c.maxDepth = depth
		}
	}
}

func newConfig(opts []Option) *config {
	c := &config{maxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ParseFilter parses a boolean filter expression.
func ParseFilter(input string, opts ...Option) (*ast.Node, error) {
	c := newConfig(opts)
	p, err := newExprParser(input, c.maxDepth)
	if err != nil {
		return nil, err
	}
	return p.parseAll()
}

// ParseQuery parses an OData request: an optional entity set path followed
// by optional system query options. Accepted shapes:
//
//	/Products?$filter=...&$top=5
//	Products
//	$filter=...&$orderby=...
//	?$filter=...
func ParseQuery(input string, opts ...Option) (*ast.Node, error) {
	c := newConfig(opts)

	resourcePart, queryPart := splitResource(strings.TrimSpace(input))

	var resource *ast.Node
	if resourcePart != "" {
		resource = parseResource(resourcePart)
	}

	options, err := parseOptions(queryPart, "&", c)
	if err != nil {
		return nil, err
	}
	query := &ast.Node{
		Kind:  ast.KindQueryOptions,
		Value: ast.OptionsValue{Options: options},
		Raw:   queryPart,
	}

	return &ast.Node{
		Kind:  ast.KindODataUri,
		Value: ast.URIValue{Resource: resource, Query: query},
		Raw:   input,
	}, nil
}

// splitResource separates the resource path from the query string.
func splitResource(input string) (string, string) {
	if rest, ok := strings.CutPrefix(input, "?"); ok {
		return "", rest
	}
	if strings.HasPrefix(input, "$") {
		return "", input
	}
	resource, query, _ := strings.Cut(input, "?")
	return resource, query
}

// parseResource builds the EntitySetName node from the first path segment.
// Key predicates and further segments are not part of the entity set name.
func parseResource(path string) *ast.Node {
	path = strings.Trim(path, "/")
	segment, _, _ := strings.Cut(path, "/")
	name, _, _ := strings.Cut(segment, "(")
	if decoded, err := url.PathUnescape(name); err == nil {
		name = decoded
	}
	if name == "" {
		return nil
	}
	return &ast.Node{Kind: ast.KindEntitySetName, Value: ast.NameValue{Name: name}, Raw: segment}
}

// parseOptions parses sep-separated name=value options into nodes, in
// document order. "&" separates top-level options, ";" separates the options
// nested inside an $expand item.
func parseOptions(query, sep string, c *config) ([]*ast.Node, error) {
	var nodes []*ast.Node
	for _, part := range splitTopLevel(query, sep[0]) {
		if strings.TrimSpace(part.text) == "" {
			continue
		}
		name, value, _ := strings.Cut(part.text, "=")
		name = strings.ToLower(strings.TrimSpace(name))
		if decoded, err := url.PathUnescape(value); err == nil {
			value = decoded
		}
		if !strings.HasPrefix(name, "$") {
			name = "$" + name
		}

		node, err := parseOption(name, value, c)
		if err != nil {
			return nil, withOption(err, name)
		}
		if node != nil {
			nodes = append(nodes, node)
		}
	}
	return nodes, nil
}

// parseOption returns nil for options the translator has no use for.
func parseOption(name, value string, c *config) (*ast.Node, error) {
	switch name {
	case "$filter":
		p, err := newExprParser(value, c.maxDepth)
		if err != nil {
			return nil, err
		}
		expr, err := p.parseAll()
		if err != nil {
			return nil, err
		}
		return ast.Unary(ast.KindFilter, expr, value), nil

	case "$orderby":
		p, err := newExprParser(value, c.maxDepth)
		if err != nil {
			return nil, err
		}
		items, err := p.parseOrderByItems()
		if err != nil {
			return nil, err
		}
		return &ast.Node{Kind: ast.KindOrderBy, Value: ast.ItemsValue{Items: items}, Raw: value}, nil

	case "$select":
		var items []*ast.Node
		for _, part := range splitTopLevel(value, ',') {
			item := strings.TrimSpace(part.text)
			if item == "" {
				return nil, &ParseError{Message: "empty $select item", Offset: part.offset}
			}
			items = append(items, &ast.Node{Kind: ast.KindSelectItem, Raw: item})
		}
		return &ast.Node{Kind: ast.KindSelect, Value: ast.ItemsValue{Items: items}, Raw: value}, nil

	case "$skip", "$top":
		raw := strings.TrimSpace(value)
		if raw == "" || strings.Trim(raw, "0123456789") != "" {
			return nil, &ParseError{Message: "expected a non-negative integer, got " + strconv.Quote(raw)}
		}
		kind := ast.KindSkip
		if name == "$top" {
			kind = ast.KindTop
		}
		return ast.Unary(kind, ast.Literal(literal.Classify(raw), raw), value), nil

	case "$count":
		raw := strings.ToLower(strings.TrimSpace(value))
		if raw != "true" && raw != "false" {
			return nil, &ParseError{Message: "expected true or false, got " + strconv.Quote(raw)}
		}
		return ast.Unary(ast.KindInlineCount, ast.Literal(literal.Boolean, raw), value), nil

	case "$inlinecount":
		var raw string
		switch strings.ToLower(strings.TrimSpace(value)) {
		case "allpages":
			raw = "true"
		case "none":
			raw = "false"
		default:
			return nil, &ParseError{Message: "expected allpages or none, got " + strconv.Quote(value)}
		}
		return ast.Unary(ast.KindInlineCount, ast.Literal(literal.Boolean, raw), value), nil

	case "$expand":
		return parseExpand(value, c)
	}
	return nil, nil
}

// parseExpand parses "Nav1($filter=...;$select=...),Nav2".
func parseExpand(value string, c *config) (*ast.Node, error) {
	var items []*ast.Node
	for _, part := range splitTopLevel(value, ',') {
		text := strings.TrimSpace(part.text)
		if text == "" {
			return nil, &ParseError{Message: "empty $expand item", Offset: part.offset}
		}

		path, nested := text, ""
		if open := strings.IndexByte(text, '('); open >= 0 {
			if !strings.HasSuffix(text, ")") {
				return nil, &ParseError{Message: "unbalanced parentheses in $expand item " + strconv.Quote(text), Offset: part.offset}
			}
			path, nested = strings.TrimSpace(text[:open]), text[open+1:len(text)-1]
		}
		if path == "" {
			return nil, &ParseError{Message: "$expand item has no navigation path", Offset: part.offset}
		}

		options, err := parseOptions(nested, ";", c)
		if err != nil {
			return nil, err
		}
		items = append(items, &ast.Node{
			Kind: ast.KindExpandItem,
			Value: ast.ExpandItemValue{
				Path:    &ast.Node{Kind: ast.KindExpandPath, Raw: path},
				Options: options,
			},
			Raw: text,
		})
	}
	return &ast.Node{Kind: ast.KindExpand, Value: ast.ItemsValue{Items: items}, Raw: value}, nil
}

type segment struct {
	text   string
	offset int
}

// splitTopLevel splits s on sep, ignoring separators inside single-quoted
// strings and parentheses.
func splitTopLevel(s string, sep byte) []segment {
	if s == "" {
		return nil
	}
	var parts []segment
	depth, inString, start := 0, false, 0
	for i := 0; i < len(s); i++ {
		switch ch := s[i]; {
		case ch == '\'':
			inString = !inString
		case inString:
		case ch == '(':
			depth++
		case ch == ')':
			depth--
		case ch == sep && depth == 0:
			parts = append(parts, segment{text: s[start:i], offset: start})
			start = i + 1
		}
	}
	return append(parts, segment{text: s[start:], offset: start})
}
