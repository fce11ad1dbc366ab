// Package odataq translates OData query strings into document-store query
// specifications.
//
// A query such as
//
//	/People?$filter=Age gt 30 and contains(Name,'an')&$orderby=Name&$top=10
//
// becomes a Result naming the collection ("People"), a filter predicate
// ({"$and": [{"Age": {"$gt": 30}}, {"Name": /an/i}]}), a sort, paging bounds
// and, for each $expand item, a nested Result.
//
// Text input is parsed first; callers that already hold a tree can use the
// *Node variants. Translation is permissive: unknown options and malformed
// subtrees contribute nothing. Only syntax errors, unsupported method calls
// and excessive nesting are reported.
package odataq

import (
	"log/slog"

	"github.com/roach88/odataq/internal/ast"
	"github.com/roach88/odataq/internal/doc"
	"github.com/roach88/odataq/internal/parser"
	"github.com/roach88/odataq/internal/translate"
)

type (
	// Node is a parsed query tree.
	Node = ast.Node
	// Result is the query specification for one resource.
	Result = translate.Result
	// SortSpec is an ordered sort specification.
	SortSpec = translate.SortSpec
	// SortField is one entry of a SortSpec.
	SortField = translate.SortField
	// Projection maps field paths to the inclusion marker 1.
	Projection = translate.Projection
	// Document is a filter predicate or any other document value object.
	Document = doc.Object
	// ParseError reports a syntax error in query text.
	ParseError = parser.ParseError
	// UnsupportedMethodError reports a method call with no document-store
	// equivalent.
	UnsupportedMethodError = translate.UnsupportedMethodError
	// DepthError reports a query nested deeper than the configured limit.
	DepthError = translate.DepthError
)

// DefaultMaxDepth is the default nesting limit for parsing and translation.
const DefaultMaxDepth = translate.DefaultMaxDepth

// Option configures a translation.
type Option func(*options)

type options struct {
	maxDepth int
	logger   *slog.Logger
}

// WithMaxDepth bounds nesting for both parsing and translation.
func WithMaxDepth(depth int) Option {
	return func(o *options) { o.maxDepth = depth }
}

// WithLogger routes debug output to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

func buildOptions(opts []Option) ([]parser.Option, []translate.Option) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	var popts []parser.Option
	var topts []translate.Option
	if o.maxDepth > 0 {
		popts = append(popts, parser.WithMaxDepth(o.maxDepth))
		topts = append(topts, translate.WithMaxDepth(o.maxDepth))
	}
	if o.logger != nil {
		topts = append(topts, translate.WithLogger(o.logger))
	}
	return popts, topts
}

// TranslateQuery parses and translates a full request: an optional entity
// set path followed by system query options.
func TranslateQuery(query string, opts ...Option) (*Result, error) {
	popts, topts := buildOptions(opts)
	node, err := parser.ParseQuery(query, popts...)
	if err != nil {
		return nil, err
	}
	return translate.Query(node, topts...)
}

// TranslateQueryNode translates an already parsed request tree.
func TranslateQueryNode(node *Node, opts ...Option) (*Result, error) {
	_, topts := buildOptions(opts)
	return translate.Query(node, topts...)
}

// TranslateFilter parses and translates a bare $filter expression.
func TranslateFilter(filter string, opts ...Option) (Document, error) {
	popts, topts := buildOptions(opts)
	node, err := parser.ParseFilter(filter, popts...)
	if err != nil {
		return nil, err
	}
	return translate.Filter(node, topts...)
}

// TranslateFilterNode translates an already parsed filter expression.
func TranslateFilterNode(node *Node, opts ...Option) (Document, error) {
	_, topts := buildOptions(opts)
	return translate.Filter(node, topts...)
}

// ParseQuery parses a request without translating it.
func ParseQuery(query string, opts ...Option) (*Node, error) {
	popts, _ := buildOptions(opts)
	return parser.ParseQuery(query, popts...)
}

// ParseFilter parses a $filter expression without translating it.
func ParseFilter(filter string, opts ...Option) (*Node, error) {
	popts, _ := buildOptions(opts)
	return parser.ParseFilter(filter, popts...)
}

// IsParseError reports whether err is or wraps a ParseError.
func IsParseError(err error) bool { return parser.IsParseError(err) }

// IsUnsupportedMethod reports whether err is or wraps an UnsupportedMethodError.
func IsUnsupportedMethod(err error) bool { return translate.IsUnsupportedMethod(err) }

// IsTooComplex reports whether err is or wraps a DepthError.
func IsTooComplex(err error) bool { return translate.IsTooComplex(err) }
