package translate

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/roach88/odataq/internal/ast"
	"github.com/roach88/odataq/internal/doc"
	"github.com/roach88/odataq/internal/literal"
)

// DefaultMaxDepth is the default nesting limit for one translation. Wrapper
// nodes the grammar always produces do not count against it.
const DefaultMaxDepth = 256

// Option configures a Translator.
type Option func(*settings)

type settings struct {
	maxDepth int
	logger   *slog.Logger
}

// WithMaxDepth sets the nesting limit. Values < 1 are ignored.
func WithMaxDepth(depth int) Option {
	return func(s *settings) {
		if depth > 0 {
			s.maxDepth = depth
		}
	}
}

// WithLogger sets the logger used for debug output. Output is discarded
// by default.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func newSettings(opts []Option) *settings {
	s := &settings{maxDepth: DefaultMaxDepth, logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Translator builds a Result by walking one tree.
//
// A Translator is single-use: call Translate once. Children created for
// expanded navigation properties share the parent's settings and depth
// budget.
type Translator struct {
	res      *Result
	root     *ast.Node
	settings *settings
	depth    int
}

// New creates a Translator with an empty result.
func New(opts ...Option) *Translator {
	return &Translator{
		res:      &Result{Filter: doc.Object{}},
		settings: newSettings(opts),
	}
}

func (t *Translator) child() *Translator {
	return &Translator{
		res:      &Result{Filter: doc.Object{}},
		settings: t.settings,
		depth:    t.depth,
	}
}

// AST returns the tree passed to Translate, or nil before it was called.
func (t *Translator) AST() *ast.Node {
	return t.root
}

// Translate walks the tree from its root and returns the accumulated result.
//
// Returns UnsupportedMethodError or DepthError; on error no partial result
// is returned.
func (t *Translator) Translate(root *ast.Node) (*Result, error) {
	t.root = root
	if err := t.visit(root, &scope{}); err != nil {
		return nil, err
	}
	return t.res, nil
}

// visit dispatches one node to its handler. Unknown kinds and nil nodes are
// no-ops.
func (t *Translator) visit(n *ast.Node, ctx *scope) error {
	if n == nil {
		return nil
	}
	if nests(n.Kind) {
		t.depth++
		defer func() { t.depth-- }()
		if t.depth > t.settings.maxDepth {
			return &DepthError{Limit: t.settings.maxDepth}
		}
	}

	switch n.Kind {
	case ast.KindODataUri:
		return t.visitURI(n, ctx)
	case ast.KindEntitySetName:
		if v, ok := n.Value.(ast.NameValue); ok {
			t.res.Collection = v.Name
		}
		return nil
	case ast.KindQueryOptions:
		return t.visitQueryOptions(n, ctx)
	case ast.KindExpand:
		return t.visitExpand(n)
	case ast.KindExpandItem:
		return t.visitExpandItem(n, ctx)
	case ast.KindExpandPath:
		t.res.NavigationProperty = n.Raw
		return nil
	case ast.KindFilter:
		ctx.query = doc.Object{}
		err := t.visitOperand(n, ctx)
		ctx.takeOperands()
		return err
	case ast.KindOrderBy:
		ctx.sort = SortSpec{}
		return t.visitItems(n, ctx)
	case ast.KindOrderByItem:
		return t.visitOrderByItem(n, ctx)
	case ast.KindSkip:
		if v, ok := t.count(n); ok {
			t.res.Skip = &v
		}
		return nil
	case ast.KindTop:
		if v, ok := t.count(n); ok {
			t.res.Limit = &v
		}
		return nil
	case ast.KindInlineCount:
		if operand := unaryOperand(n); operand != nil {
			if b, ok := literalValue(operand).(doc.Bool); ok {
				v := bool(b)
				t.res.InlineCount = &v
			}
		}
		return nil
	case ast.KindSelect:
		ctx.projection = Projection{}
		if err := t.visitItems(n, ctx); err != nil {
			return err
		}
		t.res.Projection = ctx.takeProjection()
		return nil
	case ast.KindSelectItem:
		if ctx.projection != nil {
			ctx.projection[strings.ReplaceAll(n.Raw, "/", ".")] = 1
		}
		return nil
	case ast.KindAndExpression:
		return t.visitCombinator(n, ctx, "$and")
	case ast.KindOrExpression:
		return t.visitCombinator(n, ctx, "$or")
	case ast.KindNotExpression:
		return t.visitNot(n, ctx)
	case ast.KindBoolParenExpression, ast.KindCommonExpression,
		ast.KindFirstMemberExpression, ast.KindMemberExpression:
		return t.visitOperand(n, ctx)
	case ast.KindPropertyPathExpression:
		return t.visitPath(n, ctx, ".")
	case ast.KindSingleNavigationExpression:
		return t.visitPath(n, ctx, "")
	case ast.KindODataIdentifier:
		if v, ok := n.Value.(ast.NameValue); ok {
			ctx.identifier += v.Name
		}
		return nil
	case ast.KindEqualsExpression:
		return t.visitComparison(n, ctx, "$eq")
	case ast.KindNotEqualsExpression:
		return t.visitComparison(n, ctx, "$ne")
	case ast.KindLesserThanExpression:
		return t.visitComparison(n, ctx, "$lt")
	case ast.KindLesserOrEqualsExpression:
		return t.visitComparison(n, ctx, "$lte")
	case ast.KindGreaterThanExpression:
		return t.visitComparison(n, ctx, "$gt")
	case ast.KindGreaterOrEqualsExpression:
		return t.visitComparison(n, ctx, "$gte")
	case ast.KindLiteral:
		if lit := literalValue(n); lit != nil {
			ctx.literal = lit
		}
		return nil
	case ast.KindMethodCallExpression:
		return t.visitMethodCall(n, ctx)
	default:
		return nil
	}
}

func (t *Translator) visitURI(n *ast.Node, ctx *scope) error {
	v, ok := n.Value.(ast.URIValue)
	if !ok {
		return nil
	}
	if err := t.visit(v.Resource, ctx); err != nil {
		return err
	}
	return t.visit(v.Query, ctx)
}

// visitQueryOptions visits each option with fresh query and sort slots, then
// moves what they accumulated into the result.
func (t *Translator) visitQueryOptions(n *ast.Node, ctx *scope) error {
	v, ok := n.Value.(ast.OptionsValue)
	if !ok {
		return nil
	}
	ctx.query = doc.Object{}
	ctx.sort = SortSpec{}
	ctx.options = map[string]bool{}
	for _, opt := range v.Options {
		if opt != nil {
			ctx.options[opt.Kind.String()] = true
		}
		if err := t.visit(opt, ctx); err != nil {
			return err
		}
	}

	t.res.Filter = ctx.takeQuery()
	if t.res.Filter == nil {
		t.res.Filter = doc.Object{}
	}
	if sort := ctx.takeSort(); len(sort) > 0 {
		t.res.Sort = sort
	}
	t.settings.logger.Debug("query options translated",
		"collection", t.res.Collection,
		"options", len(ctx.options),
		"filter_keys", t.res.Filter.Len(),
		"sort_fields", len(t.res.Sort),
	)
	ctx.options = nil
	return nil
}

func (t *Translator) visitItems(n *ast.Node, ctx *scope) error {
	v, ok := n.Value.(ast.ItemsValue)
	if !ok {
		return nil
	}
	for _, item := range v.Items {
		if err := t.visit(item, ctx); err != nil {
			return err
		}
	}
	return nil
}

func (t *Translator) visitOperand(n *ast.Node, ctx *scope) error {
	return t.visit(unaryOperand(n), ctx)
}

func (t *Translator) visitOrderByItem(n *ast.Node, ctx *scope) error {
	v, ok := n.Value.(ast.OrderByItemValue)
	if !ok {
		return nil
	}
	if err := t.visit(v.Expr, ctx); err != nil {
		return err
	}
	field, _ := ctx.takeOperands()
	if field != "" && ctx.sort != nil {
		ctx.sort.Set(field, v.Direction)
	}
	return nil
}

// visitExpand translates each expanded navigation property into a child
// result. A path that already has a child, from this clause or an earlier
// $expand, folds into it. Scratch slots are scoped to this clause.
func (t *Translator) visitExpand(n *ast.Node) error {
	v, ok := n.Value.(ast.ItemsValue)
	if !ok {
		return nil
	}
	scratch := map[string]*scope{}
	for _, item := range v.Items {
		if item == nil {
			continue
		}
		ev, ok := item.Value.(ast.ExpandItemValue)
		if !ok || ev.Path == nil {
			continue
		}
		path := ev.Path.Raw

		child := t.child()
		if res := t.res.Include(path); res != nil {
			child.res = res
		} else {
			t.res.Includes = append(t.res.Includes, child.res)
		}
		inner, seen := scratch[path]
		if !seen {
			inner = newScratch()
			scratch[path] = inner
		}
		if err := child.visit(item, inner); err != nil {
			return err
		}

		if inner.query.Len() > 0 {
			child.res.Filter = inner.query
		}
		if len(inner.sort) > 0 {
			child.res.Sort = inner.sort
		}
		if len(inner.projection) > 0 {
			child.res.Projection = inner.projection
		}
	}
	return nil
}

func (t *Translator) visitExpandItem(n *ast.Node, ctx *scope) error {
	v, ok := n.Value.(ast.ExpandItemValue)
	if !ok {
		return nil
	}
	if err := t.visit(v.Path, ctx); err != nil {
		return err
	}
	for _, opt := range v.Options {
		if err := t.visit(opt, ctx); err != nil {
			return err
		}
	}
	return nil
}

// visitCombinator translates both sides of $and/$or into separate objects.
// When both are non-empty they are wrapped under op; when only one is, it is
// merged into the enclosing query; when neither is, nothing is written.
func (t *Translator) visitCombinator(n *ast.Node, ctx *scope, op string) error {
	v, ok := n.Value.(ast.BinaryValue)
	if !ok {
		return nil
	}
	parent := ctx.query

	left := doc.Object{}
	ctx.query = left
	if err := t.visit(v.Left, ctx); err != nil {
		return err
	}
	right := doc.Object{}
	ctx.query = right
	if err := t.visit(v.Right, ctx); err != nil {
		return err
	}
	ctx.query = parent
	if parent == nil {
		return nil
	}

	switch {
	case left.Len() > 0 && right.Len() > 0:
		parent[op] = doc.Array{left, right}
	case left.Len() > 0:
		parent.Merge(left)
	case right.Len() > 0:
		parent.Merge(right)
	}
	return nil
}

// visitNot negates every key in the current query. Logical operators nested
// under not are wrapped the same way and are not rewritten.
func (t *Translator) visitNot(n *ast.Node, ctx *scope) error {
	if err := t.visitOperand(n, ctx); err != nil {
		return err
	}
	for k, v := range ctx.query {
		ctx.query[k] = doc.Object{"$not": v}
	}
	return nil
}

func (t *Translator) visitPath(n *ast.Node, ctx *scope, sep string) error {
	v, ok := n.Value.(ast.PathValue)
	if !ok {
		return nil
	}
	if v.Current == nil || v.Next == nil {
		if v.Current != nil {
			return t.visit(v.Current, ctx)
		}
		return t.visit(v.Next, ctx)
	}
	if err := t.visit(v.Current, ctx); err != nil {
		return err
	}
	if ctx.identifier != "" {
		ctx.identifier += sep
	}
	return t.visit(v.Next, ctx)
}

func (t *Translator) visitComparison(n *ast.Node, ctx *scope, op string) error {
	v, ok := n.Value.(ast.BinaryValue)
	if !ok {
		return nil
	}
	if err := t.visit(v.Left, ctx); err != nil {
		return err
	}
	if err := t.visit(v.Right, ctx); err != nil {
		return err
	}
	field, lit := ctx.takeOperands()
	if field == "" || ctx.query == nil {
		return nil
	}
	if lit == nil {
		lit = doc.Null{}
	}
	ctx.query[field] = doc.Object{op: lit}
	return nil
}

// visitMethodCall maps string methods onto case-insensitive regular
// expressions on the resolved field.
//
// tolower and toupper called on a bare field leave the field pending, so an
// enclosing comparison or method call applies to it.
func (t *Translator) visitMethodCall(n *ast.Node, ctx *scope) error {
	v, ok := n.Value.(ast.MethodCallValue)
	if !ok {
		return nil
	}
	for _, p := range v.Parameters {
		if err := t.visit(p, ctx); err != nil {
			return err
		}
	}
	if ctx.identifier == "" {
		ctx.takeOperands()
		return nil
	}
	if (v.Method == "tolower" || v.Method == "toupper") && ctx.literal == nil {
		return nil
	}

	field, lit := ctx.takeOperands()
	pattern := doc.Text(lit)
	switch v.Method {
	case "contains", "tolower", "toupper":
	case "startswith":
		pattern = "^" + pattern
	case "endswith":
		pattern = pattern + "$"
	default:
		return &UnsupportedMethodError{Method: v.Method}
	}
	if ctx.query != nil {
		ctx.query[field] = doc.CaseInsensitive(pattern)
	}
	return nil
}

// count reads the integer operand of Skip or Top. Text that is not a
// non-negative integer is ignored.
func (t *Translator) count(n *ast.Node) (int64, bool) {
	operand := unaryOperand(n)
	if operand == nil {
		return 0, false
	}
	v, err := strconv.ParseInt(strings.TrimSpace(operand.Raw), 10, 64)
	if err != nil || v < 0 {
		t.settings.logger.Debug("ignoring paging bound", "option", n.Kind.String(), "raw", operand.Raw)
		return 0, false
	}
	return v, true
}

// nests reports whether a node kind opens a level of nesting. These match
// the constructs the parser counts, plus one level per expanded navigation
// property.
func nests(k ast.Kind) bool {
	switch k {
	case ast.KindBoolParenExpression, ast.KindNotExpression,
		ast.KindMethodCallExpression, ast.KindExpandItem:
		return true
	}
	return false
}

func unaryOperand(n *ast.Node) *ast.Node {
	if v, ok := n.Value.(ast.UnaryValue); ok {
		return v.Operand
	}
	return nil
}

func literalValue(n *ast.Node) doc.Value {
	v, ok := n.Value.(ast.LiteralValue)
	if !ok {
		return nil
	}
	return literal.Coerce(n.Raw, v.Kind)
}
