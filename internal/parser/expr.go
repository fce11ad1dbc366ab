package parser

import (
	"fmt"

	"github.com/roach88/odataq/internal/ast"
	"github.com/roach88/odataq/internal/literal"
)

var comparisonKinds = map[string]ast.Kind{
	"eq": ast.KindEqualsExpression,
	"ne": ast.KindNotEqualsExpression,
	"lt": ast.KindLesserThanExpression,
	"le": ast.KindLesserOrEqualsExpression,
	"gt": ast.KindGreaterThanExpression,
	"ge": ast.KindGreaterOrEqualsExpression,
}

// exprParser is a recursive-descent parser over one option value.
//
// Precedence, lowest first: or, and, not, comparison, primary.
type exprParser struct {
	input    string
	tokens   []token
	pos      int
	depth    int
	maxDepth int
}

func newExprParser(input string, maxDepth int) (*exprParser, error) {
	tokens, err := tokenize(input)
	if err != nil {
		return nil, err
	}
	return &exprParser{input: input, tokens: tokens, maxDepth: maxDepth}, nil
}

func (p *exprParser) peek() token {
	return p.tokens[p.pos]
}

func (p *exprParser) next() token {
	tok := p.tokens[p.pos]
	if tok.typ != tokenEOF {
		p.pos++
	}
	return tok
}

func (p *exprParser) expect(typ tokenType) (token, error) {
	tok := p.next()
	if tok.typ != typ {
		return tok, p.errorf(tok, "expected %s, got %s", tokenTypeName(typ), describe(tok))
	}
	return tok, nil
}

func (p *exprParser) errorf(tok token, format string, args ...any) error {
	return &ParseError{Message: fmt.Sprintf(format, args...), Offset: tok.pos}
}

// raw returns the source text between a start offset and the end of the
// most recently consumed token.
func (p *exprParser) raw(start int) string {
	if p.pos == 0 {
		return ""
	}
	return p.input[start:p.tokens[p.pos-1].end]
}

// enter charges one level of nesting. Parenthesized groups, not and method
// calls each open a level; the translator charges the same kinds.
func (p *exprParser) enter(tok token) error {
	p.depth++
	if p.depth > p.maxDepth {
		return p.errorf(tok, "expression too deeply nested (limit %d)", p.maxDepth)
	}
	return nil
}

func (p *exprParser) leave() {
	p.depth--
}

// parseAll parses a complete boolean expression and rejects trailing input.
func (p *exprParser) parseAll() (*ast.Node, error) {
	n, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.typ != tokenEOF {
		return nil, p.errorf(tok, "unexpected %s after expression", describe(tok))
	}
	return n, nil
}

func (p *exprParser) parseOr() (*ast.Node, error) {
	start := p.peek().pos
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.peek().is("or") {
		p.next()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = ast.Binary(ast.KindOrExpression, left, right, p.raw(start))
	}
	return left, nil
}

func (p *exprParser) parseAnd() (*ast.Node, error) {
	start := p.peek().pos
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.peek().is("and") {
		p.next()
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = ast.Binary(ast.KindAndExpression, left, right, p.raw(start))
	}
	return left, nil
}

func (p *exprParser) parseNot() (*ast.Node, error) {
	tok := p.peek()
	if !tok.is("not") {
		return p.parseComparison()
	}
	if err := p.enter(tok); err != nil {
		return nil, err
	}
	defer p.leave()

	p.next()
	operand, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	return ast.Unary(ast.KindNotExpression, operand, p.raw(tok.pos)), nil
}

func (p *exprParser) parseComparison() (*ast.Node, error) {
	start := p.peek().pos
	left, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	op := p.peek()
	kind, ok := comparisonKinds[op.val]
	if op.typ != tokenIdent || !ok {
		return left, nil
	}
	p.next()
	right, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	return ast.Binary(kind, ast.Common(left), ast.Common(right), p.raw(start)), nil
}

func (p *exprParser) parsePrimary() (*ast.Node, error) {
	tok := p.peek()
	switch tok.typ {
	case tokenLParen:
		if err := p.enter(tok); err != nil {
			return nil, err
		}
		defer p.leave()
		p.next()
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokenRParen); err != nil {
			return nil, err
		}
		return ast.Unary(ast.KindBoolParenExpression, inner, p.raw(tok.pos)), nil

	case tokenLiteral:
		p.next()
		return ast.Literal(literal.Classify(tok.val), tok.val), nil

	case tokenIdent:
		switch tok.val {
		case "true", "false", "null", "INF", "NaN":
			p.next()
			return ast.Literal(literal.Classify(tok.val), tok.val), nil
		}
		if p.tokens[p.pos+1].typ == tokenLParen {
			return p.parseMethodCall()
		}
		return p.parseMember()
	}
	return nil, p.errorf(tok, "unexpected %s", describe(tok))
}

// parseMethodCall parses name(arg, arg, ...).
func (p *exprParser) parseMethodCall() (*ast.Node, error) {
	if err := p.enter(p.peek()); err != nil {
		return nil, err
	}
	defer p.leave()

	name := p.next()
	p.next() // (

	var params []*ast.Node
	if p.peek().typ != tokenRParen {
		for {
			arg, err := p.parseOr()
			if err != nil {
				return nil, err
			}
			params = append(params, ast.Common(arg))
			if p.peek().typ != tokenComma {
				break
			}
			p.next()
		}
	}
	if _, err := p.expect(tokenRParen); err != nil {
		return nil, err
	}
	return ast.MethodCall(name.val, p.raw(name.pos), params...), nil
}

// parseMember parses a slash-separated member path.
func (p *exprParser) parseMember() (*ast.Node, error) {
	first := p.next()
	segments := []string{first.val}
	for p.peek().typ == tokenSlash {
		p.next()
		seg, err := p.expect(tokenIdent)
		if err != nil {
			return nil, err
		}
		segments = append(segments, seg.val)
	}
	return ast.Member(segments...), nil
}

// parseOrderByItems parses "expr [asc|desc], ...".
func (p *exprParser) parseOrderByItems() ([]*ast.Node, error) {
	var items []*ast.Node
	for {
		start := p.peek().pos
		expr, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		direction := ast.Ascending
		if tok := p.peek(); tok.is("asc") || tok.is("desc") {
			p.next()
			if tok.val == "desc" {
				direction = ast.Descending
			}
		}
		items = append(items, &ast.Node{
			Kind:  ast.KindOrderByItem,
			Value: ast.OrderByItemValue{Expr: ast.Common(expr), Direction: direction},
			Raw:   p.raw(start),
		})

		tok := p.next()
		switch tok.typ {
		case tokenComma:
			continue
		case tokenEOF:
			return items, nil
		default:
			return nil, p.errorf(tok, "expected ',' or end of $orderby, got %s", describe(tok))
		}
	}
}

func describe(tok token) string {
	if tok.typ == tokenEOF {
		return "end of input"
	}
	return fmt.Sprintf("%s %q", tokenTypeName(tok.typ), tok.val)
}
