package compiler

import (
	"fmt"
	"strings"

	"github.com/xdsai/persephone/pkg/domain"
)

// Resolver maps an identifier to its current value (nil when unknown).
type Resolver func(name string) any

// SyntaxError reports a malformed requires expression.
type SyntaxError struct {
	Pos int
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("requires: %s at offset %d", e.Msg, e.Pos)
}

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokLParen
	tokRParen
	tokAnd
	tokOr
	tokNot
	tokEq
	tokNeq
	tokStrictEq
	tokStrictNeq
	tokTrue
	tokFalse
	tokIdent
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

// Longest operators first so "===" is not read as "==" followed by "=".
var operators = []struct {
	text string
	kind tokenKind
}{
	{"===", tokStrictEq},
	{"!==", tokStrictNeq},
	{"&&", tokAnd},
	{"||", tokOr},
	{"==", tokEq},
	{"!=", tokNeq},
	{"(", tokLParen},
	{")", tokRParen},
	{"!", tokNot},
}

func tokenize(src string) ([]token, error) {
	var toks []token
	i := 0
scan:
	for i < len(src) {
		ch := src[i]
		if ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' {
			i++
			continue
		}
		for _, op := range operators {
			if strings.HasPrefix(src[i:], op.text) {
				toks = append(toks, token{kind: op.kind, text: op.text, pos: i})
				i += len(op.text)
				continue scan
			}
		}
		if isIdentStart(ch) {
			start := i
			for i < len(src) && isIdentPart(src[i]) {
				i++
			}
			word := src[start:i]
			kind := tokIdent
			switch word {
			case "true":
				kind = tokTrue
			case "false":
				kind = tokFalse
			}
			toks = append(toks, token{kind: kind, text: word, pos: start})
			continue
		}
		return nil, &SyntaxError{Pos: i, Msg: fmt.Sprintf("unexpected character %q", ch)}
	}
	return append(toks, token{kind: tokEOF, pos: len(src)}), nil
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

// EvalRequires evaluates a requires expression against resolve.
//
//	or      := and ('||' and)*
//	and     := eq ('&&' eq)*
//	eq      := primary (('==' | '!=' | '===' | '!==') primary)*
//	primary := '(' or ')' | '!' primary | 'true' | 'false' | identifier
//
// The expression is evaluated while it is parsed; no tree is kept.
// An empty expression is true. Any syntax error returns false and a *SyntaxError.
func EvalRequires(expr string, resolve Resolver) (bool, error) {
	if strings.TrimSpace(expr) == "" {
		return true, nil
	}
	toks, err := tokenize(expr)
	if err != nil {
		return false, err
	}
	p := &exprParser{toks: toks, resolve: resolve}
	v, err := p.parseOr()
	if err != nil {
		return false, err
	}
	if tok := p.peek(); tok.kind != tokEOF {
		return false, &SyntaxError{Pos: tok.pos, Msg: fmt.Sprintf("unexpected %q", tok.text)}
	}
	return domain.Truthy(v), nil
}

type exprParser struct {
	toks    []token
	pos     int
	resolve Resolver
}

func (p *exprParser) peek() token {
	return p.toks[p.pos]
}

func (p *exprParser) next() token {
	tok := p.toks[p.pos]
	if tok.kind != tokEOF {
		p.pos++
	}
	return tok
}

func (p *exprParser) parseOr() (any, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokOr {
		p.next()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = domain.Truthy(left) || domain.Truthy(right)
	}
	return left, nil
}

func (p *exprParser) parseAnd() (any, error) {
	left, err := p.parseEq()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokAnd {
		p.next()
		right, err := p.parseEq()
		if err != nil {
			return nil, err
		}
		left = domain.Truthy(left) && domain.Truthy(right)
	}
	return left, nil
}

func (p *exprParser) parseEq() (any, error) {
	left, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		op := p.peek().kind
		if op != tokEq && op != tokNeq && op != tokStrictEq && op != tokStrictNeq {
			return left, nil
		}
		p.next()
		right, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}
		switch op {
		case tokEq:
			left = domain.LooseEqual(left, right)
		case tokNeq:
			left = !domain.LooseEqual(left, right)
		case tokStrictEq:
			left = domain.StrictEqual(left, right)
		case tokStrictNeq:
			left = !domain.StrictEqual(left, right)
		}
	}
}

func (p *exprParser) parsePrimary() (any, error) {
	tok := p.next()
	switch tok.kind {
	case tokLParen:
		v, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if closing := p.next(); closing.kind != tokRParen {
			return nil, &SyntaxError{Pos: closing.pos, Msg: "expected )"}
		}
		return v, nil
	case tokNot:
		v, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}
		return !domain.Truthy(v), nil
	case tokTrue:
		return true, nil
	case tokFalse:
		return false, nil
	case tokIdent:
		if p.resolve == nil {
			return nil, nil
		}
		return p.resolve(tok.text), nil
	case tokEOF:
		return nil, &SyntaxError{Pos: tok.pos, Msg: "unexpected end of expression"}
	}
	return nil, &SyntaxError{Pos: tok.pos, Msg: fmt.Sprintf("unexpected %q", tok.text)}
}
