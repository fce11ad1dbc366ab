package parser

import (
	"fmt"
	"regexp"
	"strings"
)

// --- Token types ---

type tokenType int

const (
	tokenIdent   tokenType = iota // identifier or keyword
	tokenLiteral                  // quoted string, number, date, guid, duration
	tokenLParen                   // (
	tokenRParen                   // )
	tokenComma                    // ,
	tokenSlash                    // /
	tokenEOF
)

func tokenTypeName(t tokenType) string {
	switch t {
	case tokenIdent:
		return "identifier"
	case tokenLiteral:
		return "literal"
	case tokenLParen:
		return "'('"
	case tokenRParen:
		return "')'"
	case tokenComma:
		return "','"
	case tokenSlash:
		return "'/'"
	case tokenEOF:
		return "end of input"
	default:
		return "unknown"
	}
}

type token struct {
	typ tokenType
	val string
	pos int // byte offset in input
	end int // byte offset just past the token
}

// is reports whether the token is the identifier kw (case-sensitive, as
// OData keywords are).
func (t token) is(kw string) bool {
	return t.typ == tokenIdent && t.val == kw
}

// --- Tokenizer ---

type tokenizer struct {
	input  string
	pos    int
	tokens []token
}

var guidPrefix = regexp.MustCompile(`^[0-9A-Fa-f]{8}-[0-9A-Fa-f]{4}-[0-9A-Fa-f]{4}-[0-9A-Fa-f]{4}-[0-9A-Fa-f]{12}`)

func tokenize(input string) ([]token, error) {
	t := &tokenizer{input: input}
	for t.pos < len(t.input) {
		ch := t.input[t.pos]
		switch {
		case ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r':
			t.pos++
		case ch == '(':
			t.emit(tokenLParen, 1)
		case ch == ')':
			t.emit(tokenRParen, 1)
		case ch == ',':
			t.emit(tokenComma, 1)
		case ch == '/':
			t.emit(tokenSlash, 1)
		case ch == '\'':
			if err := t.readString(t.pos); err != nil {
				return nil, err
			}
		case isDigit(ch) || (ch == '-' && t.pos+1 < len(t.input) && (isDigit(t.input[t.pos+1]) || t.input[t.pos+1] == 'I')):
			t.readNumberLike()
		case isIdentStart(ch):
			if err := t.readIdent(); err != nil {
				return nil, err
			}
		default:
			return nil, &ParseError{
				Message: fmt.Sprintf("unexpected character %q", string(ch)),
				Offset:  t.pos,
			}
		}
	}
	t.tokens = append(t.tokens, token{typ: tokenEOF, pos: t.pos, end: t.pos})
	return t.tokens, nil
}

func (t *tokenizer) emit(typ tokenType, width int) {
	t.tokens = append(t.tokens, token{typ: typ, val: t.input[t.pos : t.pos+width], pos: t.pos, end: t.pos + width})
	t.pos += width
}

// readString reads a single-quoted string starting at t.pos. start is the
// offset of the whole literal (before any type prefix such as duration).
// The token keeps its quotes; '' is an escaped quote.
func (t *tokenizer) readString(start int) error {
	i := t.pos + 1
	for i < len(t.input) {
		if t.input[i] == '\'' {
			if i+1 < len(t.input) && t.input[i+1] == '\'' {
				i += 2
				continue
			}
			t.tokens = append(t.tokens, token{typ: tokenLiteral, val: t.input[start : i+1], pos: start, end: i + 1})
			t.pos = i + 1
			return nil
		}
		i++
	}
	return &ParseError{Message: "unterminated string literal", Offset: start}
}

// readNumberLike reads integers, decimals, doubles, dates, times and
// date-times, which all start with a digit or a sign.
func (t *tokenizer) readNumberLike() {
	if m := guidPrefix.FindString(t.input[t.pos:]); m != "" {
		t.emit(tokenLiteral, len(m))
		return
	}
	start := t.pos
	i := t.pos + 1
	for i < len(t.input) {
		ch := t.input[i]
		if isDigit(ch) || isLetter(ch) || ch == '.' || ch == ':' {
			i++
			continue
		}
		// '-' separates date parts; '+' only continues an exponent or a UTC offset.
		if ch == '-' || (ch == '+' && (t.input[i-1] == 'e' || t.input[i-1] == 'E' || strings.Contains(t.input[start:i], "T"))) {
			i++
			continue
		}
		break
	}
	t.tokens = append(t.tokens, token{typ: tokenLiteral, val: t.input[start:i], pos: start, end: i})
	t.pos = i
}

func (t *tokenizer) readIdent() error {
	if m := guidPrefix.FindString(t.input[t.pos:]); m != "" {
		t.emit(tokenLiteral, len(m))
		return nil
	}
	start := t.pos
	i := t.pos + 1
	for i < len(t.input) && isIdentChar(t.input[i]) {
		i++
	}
	word := t.input[start:i]
	if strings.EqualFold(word, "duration") && i < len(t.input) && t.input[i] == '\'' {
		t.pos = i
		return t.readString(start)
	}
	t.tokens = append(t.tokens, token{typ: tokenIdent, val: word, pos: start, end: i})
	t.pos = i
	return nil
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isLetter(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentStart(ch byte) bool {
	return isLetter(ch) || ch == '_' || ch == '$' || ch == '@'
}

func isIdentChar(ch byte) bool {
	return isLetter(ch) || isDigit(ch) || ch == '_' || ch == '.'
}
