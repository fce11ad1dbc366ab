package translate

import (
	"github.com/roach88/odataq/internal/ast"
	"github.com/roach88/odataq/internal/doc"
)

// Query translates a full request tree (ODataUri or QueryOptions).
func Query(root *ast.Node, opts ...Option) (*Result, error) {
	t := New(opts...)
	res, err := t.Translate(root)
	if err != nil {
		return nil, err
	}
	t.settings.logger.Debug("query translated",
		"collection", res.Collection,
		"includes", len(res.Includes),
	)
	return res, nil
}

// Filter translates a bare boolean expression and returns the filter
// predicate alone. An empty expression yields an empty predicate.
func Filter(root *ast.Node, opts ...Option) (doc.Object, error) {
	t := New(opts...)
	t.root = root
	ctx := &scope{query: doc.Object{}}
	if err := t.visit(root, ctx); err != nil {
		return nil, err
	}
	if ctx.query == nil {
		return doc.Object{}, nil
	}
	return ctx.query, nil
}
