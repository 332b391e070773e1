package graph

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// ErrSyntax is returned for a filter expression that cannot be parsed.
var ErrSyntax = errors.New("invalid filter expression")

// Expression is a parsed annotation filter such as
// `type:Process AND (name:bash OR name:sh*)`.
//
// Terms are `key:value`. Values may be double-quoted and may contain `*`,
// which matches any run of characters. A key of `*` matches any annotation.
// Adjacent terms without an operator are joined with AND.
type Expression struct {
	source string
	match  func(map[string]string) bool
}

// ParseExpression compiles a filter expression.
func ParseExpression(source string) (*Expression, error) {
	tokens, err := lexExpression(source)
	if err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		return nil, fmt.Errorf("%w: empty expression", ErrSyntax)
	}
	p := &exprParser{tokens: tokens}
	match, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.pos != len(p.tokens) {
		return nil, fmt.Errorf("%w: unexpected %q", ErrSyntax, p.tokens[p.pos].text)
	}
	return &Expression{source: source, match: match}, nil
}

// parseTerminating treats "" and "null" as "never terminate".
func parseTerminating(source string) (*Expression, error) {
	s := strings.TrimSpace(source)
	if s == "" || strings.EqualFold(s, "null") {
		return nil, nil
	}
	return ParseExpression(s)
}

// Match reports whether the annotations satisfy the expression.
func (e *Expression) Match(annotations map[string]string) bool {
	if e == nil {
		return false
	}
	return e.match(annotations)
}

// String returns the expression source.
func (e *Expression) String() string {
	return e.source
}

type exprTokenKind int

const (
	tokTerm exprTokenKind = iota
	tokAnd
	tokOr
	tokNot
	tokLParen
	tokRParen
)

type exprToken struct {
	kind  exprTokenKind
	text  string
	key   string
	value string
}

func lexExpression(s string) ([]exprToken, error) {
	var tokens []exprToken
	runes := []rune(s)
	for i := 0; i < len(runes); {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case r == '(':
			tokens = append(tokens, exprToken{kind: tokLParen, text: "("})
			i++
		case r == ')':
			tokens = append(tokens, exprToken{kind: tokRParen, text: ")"})
			i++
		default:
			start := i
			var b strings.Builder
			inQuote := false
			for i < len(runes) {
				c := runes[i]
				if c == '"' {
					inQuote = !inQuote
					b.WriteRune(c)
					i++
					continue
				}
				if !inQuote && (unicode.IsSpace(c) || c == '(' || c == ')') {
					break
				}
				b.WriteRune(c)
				i++
			}
			if inQuote {
				return nil, fmt.Errorf("%w: unterminated quote at offset %d", ErrSyntax, start)
			}
			tok, err := classify(b.String())
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, tok)
		}
	}
	return tokens, nil
}

func classify(word string) (exprToken, error) {
	switch word {
	case "AND", "&&":
		return exprToken{kind: tokAnd, text: word}, nil
	case "OR", "||":
		return exprToken{kind: tokOr, text: word}, nil
	case "NOT", "!":
		return exprToken{kind: tokNot, text: word}, nil
	}
	key, value, ok := strings.Cut(word, ":")
	if !ok || key == "" {
		return exprToken{}, fmt.Errorf("%w: term %q is not of the form key:value", ErrSyntax, word)
	}
	return exprToken{kind: tokTerm, text: word, key: unquote(key), value: unquote(value)}, nil
}

func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}

type exprParser struct {
	tokens []exprToken
	pos    int
}

func (p *exprParser) peek() (exprToken, bool) {
	if p.pos >= len(p.tokens) {
		return exprToken{}, false
	}
	return p.tokens[p.pos], true
}

func (p *exprParser) parseOr() (func(map[string]string) bool, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for {
		tok, ok := p.peek()
		if !ok || tok.kind != tokOr {
			return left, nil
		}
		p.pos++
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		l := left
		left = func(a map[string]string) bool { return l(a) || right(a) }
	}
}

func (p *exprParser) parseAnd() (func(map[string]string) bool, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		tok, ok := p.peek()
		if !ok || tok.kind == tokOr || tok.kind == tokRParen {
			return left, nil
		}
		if tok.kind == tokAnd {
			p.pos++
		}
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		l := left
		left = func(a map[string]string) bool { return l(a) && right(a) }
	}
}

func (p *exprParser) parseUnary() (func(map[string]string) bool, error) {
	tok, ok := p.peek()
	if !ok {
		return nil, fmt.Errorf("%w: unexpected end of expression", ErrSyntax)
	}
	switch tok.kind {
	case tokNot:
		p.pos++
		inner, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return func(a map[string]string) bool { return !inner(a) }, nil
	case tokLParen:
		p.pos++
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if next, ok := p.peek(); !ok || next.kind != tokRParen {
			return nil, fmt.Errorf("%w: missing closing parenthesis", ErrSyntax)
		}
		p.pos++
		return inner, nil
	case tokTerm:
		p.pos++
		return termMatcher(tok.key, tok.value), nil
	}
	return nil, fmt.Errorf("%w: unexpected %q", ErrSyntax, tok.text)
}

func termMatcher(key, pattern string) func(map[string]string) bool {
	if key == "*" {
		return func(a map[string]string) bool {
			for _, v := range a {
				if wildcardMatch(pattern, v) {
					return true
				}
			}
			return false
		}
	}
	return func(a map[string]string) bool {
		v, ok := a[key]
		return ok && wildcardMatch(pattern, v)
	}
}

// wildcardMatch matches s against pattern where `*` stands for any run of
// characters, including `/`.
func wildcardMatch(pattern, s string) bool {
	parts := strings.Split(pattern, "*")
	if len(parts) == 1 {
		return pattern == s
	}
	if !strings.HasPrefix(s, parts[0]) {
		return false
	}
	s = s[len(parts[0]):]
	last := parts[len(parts)-1]
	for _, part := range parts[1 : len(parts)-1] {
		idx := strings.Index(s, part)
		if idx < 0 {
			return false
		}
		s = s[idx+len(part):]
	}
	return strings.HasSuffix(s, last)
}
