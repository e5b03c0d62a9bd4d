package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sourcegraph/juniper/querytree"
)

// debugParser is the Go port of queryparser.cpp's "simple prefix query
// parser for Juniper for debugging purposes": a recursive-descent parser
// over `OP(child, child, ...)` / `OP/limit(child, ...)` / `index:term` /
// `term*` expressions, tokenized on whitespace around `(`, `)`, `,`, `:`
// and `/`.
type debugParser struct {
	toks []string
	pos  int
	err  error
}

var opArity = map[string]bool{
	"AND": true, "OR": true, "ANY": true, "RANK": true,
	"ANDNOT": true, "PHRASE": true,
}

var opLimit = map[string]bool{"NEAR": true, "WITHIN": true, "ONEAR": true}

// ParseDebugQuery parses query and emits the resulting tree into b via
// the querytree.Builder Visitor protocol. A parse failure returns a
// non-nil error and leaves err set on the parser per §7's "Parse
// failure of debug prefix parser" row (ParseError() returns non-zero,
// tree null) — here reported as a Go error instead of a sentinel code.
func ParseDebugQuery(query string, b *querytree.Builder) error {
	p := &debugParser{toks: tokenizeDebugQuery(query)}
	p.parseExpr(b)
	if p.err != nil {
		return p.err
	}
	if p.pos != len(p.toks) {
		return fmt.Errorf("juniper-debug: trailing tokens after expression: %v", p.toks[p.pos:])
	}
	return nil
}

func tokenizeDebugQuery(q string) []string {
	var toks []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			toks = append(toks, cur.String())
			cur.Reset()
		}
	}
	for _, r := range q {
		switch {
		case r == '(' || r == ')' || r == ',' || r == ':' || r == '/':
			flush()
			toks = append(toks, string(r))
		case r == ' ' || r == '\t' || r == '\n':
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return toks
}

func (p *debugParser) cur() string {
	if p.pos >= len(p.toks) {
		return ""
	}
	return p.toks[p.pos]
}

func (p *debugParser) next() { p.pos++ }

func (p *debugParser) match(s string, required bool) bool {
	ok := p.cur() == s
	if required && !ok {
		p.err = fmt.Errorf("juniper-debug: expected %q, got %q", s, p.cur())
	}
	return ok
}

// parseExpr implements ParseExpr: an operator application, or else an
// index term / keyword.
func (p *debugParser) parseExpr(b *querytree.Builder) {
	if p.err != nil {
		return
	}
	op := p.cur()
	limit := 0

	switch {
	case opArity[op]:
		p.next()
	case opLimit[op]:
		p.next()
		if !p.match("/", true) {
			return
		}
		p.next()
		n, err := strconv.Atoi(p.cur())
		if err != nil {
			p.err = fmt.Errorf("juniper-debug: bad limit for %s: %q", op, p.cur())
			return
		}
		limit = n
		p.next()
	default:
		p.parseIndexTerm(b)
		return
	}

	if !p.match("(", true) {
		return
	}
	kind, ok := kindForOp(op)
	if !ok {
		p.err = fmt.Errorf("juniper-debug: unknown operator %q", op)
		return
	}
	b.EnterNode(querytree.NodeKind{Kind: kind, Limit: limit}, 100)
	for {
		if p.err != nil {
			return
		}
		p.next()
		p.parseExpr(b)
		if p.err != nil {
			return
		}
		if !p.match(",", false) {
			break
		}
	}
	b.LeaveNode()
	if !p.match(")", true) {
		return
	}
	p.next()
}

func (p *debugParser) parseIndexTerm(b *querytree.Builder) {
	t := p.cur()
	p.next()
	if p.match(":", false) {
		p.next()
		p.parseKeyword(b, t)
		return
	}
	p.parseKeywordText(b, "default", t)
}

func (p *debugParser) parseKeyword(b *querytree.Builder, index string) {
	t := p.cur()
	p.next()
	p.parseKeywordText(b, index, t)
}

func (p *debugParser) parseKeywordText(b *querytree.Builder, index, text string) {
	isPrefix := strings.HasSuffix(text, "*") && len(text) > 1
	if isPrefix {
		text = text[:len(text)-1]
	}
	runes := []rune(text)
	b.Keyword(index, runes, len(text), isPrefix, false, 100)
}

func kindForOp(op string) (querytree.Kind, bool) {
	switch op {
	case "AND":
		return querytree.KindAnd, true
	case "OR":
		return querytree.KindOr, true
	case "ANY":
		return querytree.KindAny, true
	case "RANK":
		return querytree.KindRank, true
	case "ANDNOT":
		return querytree.KindAndNot, true
	case "PHRASE":
		return querytree.KindPhrase, true
	case "NEAR":
		return querytree.KindNear, true
	case "WITHIN":
		return querytree.KindWithin, true
	case "ONEAR":
		return querytree.KindOnear, true
	default:
		return 0, false
	}
}
