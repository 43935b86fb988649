// SPDX-License-Identifier: MIT

package expr

import (
	"fmt"
	"strconv"
	"strings"
)

// Parser parses the body of a single `${{ ... }}` expression.
type Parser struct {
	src    string
	lex    *lexer
	cur    token
	curErr error
}

// Parse parses src (the bare body between `${{` and `}}`, with leading
// and trailing whitespace already trimmed by the caller) into an
// expression tree.
func Parse(src string) (*Node, error) {
	p := &Parser{src: src, lex: newLexer(src)}
	if err := p.advance(); err != nil {
		return nil, err
	}
	n, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.cur.kind != tokEOF {
		return nil, fmt.Errorf("expr: unexpected trailing token %q at %d", p.cur.text, p.cur.start)
	}
	return n, nil
}

func (p *Parser) advance() error {
	t, err := p.lex.next()
	if err != nil {
		return err
	}
	p.cur = t
	return nil
}

// prevEnd is the end offset of the token just consumed (p.cur is
// already the *next* token by the time a production returns).
func prevEnd(p *Parser) int {
	// Best effort: use the lexer's position at the moment the caller
	// asks, minus any already-consumed whitespace before the current
	// token.
	if p.cur.kind == tokEOF {
		return len(p.src)
	}
	return p.cur.start
}

func (p *Parser) parseOr() (*Node, error) {
	start := p.cur.start
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.cur.kind == tokOr {
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &Node{Kind: KindBinary, BinOp: OpOr, Left: left, Right: right}
		left.Origin = Origin{Raw: strings.TrimSpace(p.src[start:prevEnd(p)]), Start: start, End: prevEnd(p)}
	}
	return left, nil
}

func (p *Parser) parseAnd() (*Node, error) {
	start := p.cur.start
	left, err := p.parseCmp()
	if err != nil {
		return nil, err
	}
	for p.cur.kind == tokAnd {
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseCmp()
		if err != nil {
			return nil, err
		}
		left = &Node{Kind: KindBinary, BinOp: OpAnd, Left: left, Right: right}
		left.Origin = Origin{Raw: strings.TrimSpace(p.src[start:prevEnd(p)]), Start: start, End: prevEnd(p)}
	}
	return left, nil
}

var cmpOps = map[tokenKind]BinOp{
	tokEq: OpEq, tokNeq: OpNeq, tokLt: OpLt, tokLe: OpLe, tokGt: OpGt, tokGe: OpGe,
}

func (p *Parser) parseCmp() (*Node, error) {
	start := p.cur.start
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	if op, ok := cmpOps[p.cur.kind]; ok {
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		n := &Node{Kind: KindBinary, BinOp: op, Left: left, Right: right}
		n.Origin = Origin{Raw: strings.TrimSpace(p.src[start:prevEnd(p)]), Start: start, End: prevEnd(p)}
		return n, nil
	}
	return left, nil
}

func (p *Parser) parseUnary() (*Node, error) {
	start := p.cur.start
	if p.cur.kind == tokBang {
		if err := p.advance(); err != nil {
			return nil, err
		}
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		n := &Node{Kind: KindUnary, UnaryOp: OpNot, Operand: operand}
		n.Origin = Origin{Raw: strings.TrimSpace(p.src[start:prevEnd(p)]), Start: start, End: prevEnd(p)}
		return n, nil
	}
	return p.parsePostfix()
}

// parsePostfix parses a primary expression followed by any chain of
// `.ident`, `[index]`, or bare trailing `.*` / `[*]` star selectors,
// assembling a KindContext when the primary was an identifier (and not
// a function call), or a KindIndex/KindCall chain otherwise.
func (p *Parser) parsePostfix() (*Node, error) {
	start := p.cur.start
	prim, isCall, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	if prim.Kind == KindIdent && !isCall {
		ctxNode := &Node{Kind: KindContext, Ident: prim.Ident, Path: []PathElem{{Kind: PathIdent, Name: prim.Ident}}}
		node, err := p.parsePostfixTail(ctxNode, start)
		return node, err
	}

	return p.parsePostfixTail(prim, start)
}

func (p *Parser) parsePostfixTail(n *Node, start int) (*Node, error) {
	for {
		switch p.cur.kind {
		case tokDot:
			if err := p.advance(); err != nil {
				return nil, err
			}
			if p.cur.kind == tokStar {
				if err := p.advance(); err != nil {
					return nil, err
				}
				n = p.appendStar(n)
				continue
			}
			if p.cur.kind != tokIdent {
				return nil, fmt.Errorf("expr: expected identifier after '.' at %d", p.cur.start)
			}
			name := p.cur.text
			if err := p.advance(); err != nil {
				return nil, err
			}
			n = p.appendField(n, name)
		case tokLBracket:
			if err := p.advance(); err != nil {
				return nil, err
			}
			if p.cur.kind == tokStar {
				if err := p.advance(); err != nil {
					return nil, err
				}
				if p.cur.kind != tokRBracket {
					return nil, fmt.Errorf("expr: expected ']' at %d", p.cur.start)
				}
				if err := p.advance(); err != nil {
					return nil, err
				}
				n = p.appendStar(n)
				continue
			}
			idx, err := p.parseOr()
			if err != nil {
				return nil, err
			}
			if p.cur.kind != tokRBracket {
				return nil, fmt.Errorf("expr: expected ']' at %d", p.cur.start)
			}
			if err := p.advance(); err != nil {
				return nil, err
			}
			n = p.appendIndex(n, idx)
		default:
			n.Origin = Origin{Raw: strings.TrimSpace(p.src[start:prevEnd(p)]), Start: start, End: prevEnd(p)}
			return n, nil
		}
	}
}

func (p *Parser) appendField(n *Node, name string) *Node {
	if n.Kind == KindContext {
		n.Path = append(n.Path, PathElem{Kind: PathIdent, Name: name})
		return n
	}
	return &Node{Kind: KindIndex, Target: n, Index: &Node{Kind: KindString, Str: name}}
}

func (p *Parser) appendIndex(n *Node, idx *Node) *Node {
	if n.Kind == KindContext {
		switch idx.Kind {
		case KindNumber:
			n.Path = append(n.Path, PathElem{Kind: PathIndexInt, Int: int(idx.Number)})
			return n
		case KindString:
			n.Path = append(n.Path, PathElem{Kind: PathIndexStr, Name: idx.Str})
			return n
		}
		// A computed index breaks the context chain; fall through to a
		// generic KindIndex so ComputedIndices() can still find it.
	}
	return &Node{Kind: KindIndex, Target: n, Index: idx}
}

func (p *Parser) appendStar(n *Node) *Node {
	if n.Kind == KindContext {
		n.Path = append(n.Path, PathElem{Kind: PathStar})
		return n
	}
	return &Node{Kind: KindIndex, Target: n, Index: nil}
}

func (p *Parser) parsePrimary() (*Node, bool, error) {
	start := p.cur.start
	switch p.cur.kind {
	case tokNumber:
		text := p.cur.text
		if err := p.advance(); err != nil {
			return nil, false, err
		}
		v, err := parseNumber(text)
		if err != nil {
			return nil, false, err
		}
		return &Node{Kind: KindNumber, Number: v, Origin: Origin{Raw: text, Start: start, End: start + len(text)}}, false, nil
	case tokString:
		text := p.cur.text
		raw := p.src[p.cur.start:p.cur.end]
		if err := p.advance(); err != nil {
			return nil, false, err
		}
		return &Node{Kind: KindString, Str: text, Origin: Origin{Raw: raw, Start: start, End: start + len(raw)}}, false, nil
	case tokLParen:
		if err := p.advance(); err != nil {
			return nil, false, err
		}
		inner, err := p.parseOr()
		if err != nil {
			return nil, false, err
		}
		if p.cur.kind != tokRParen {
			return nil, false, fmt.Errorf("expr: expected ')' at %d", p.cur.start)
		}
		if err := p.advance(); err != nil {
			return nil, false, err
		}
		return inner, false, nil
	case tokIdent:
		name := p.cur.text
		if err := p.advance(); err != nil {
			return nil, false, err
		}
		lower := strings.ToLower(name)
		switch lower {
		case "true", "false":
			return &Node{Kind: KindBool, Bool: lower == "true", Ident: name, Origin: Origin{Raw: name, Start: start, End: start + len(name)}}, false, nil
		case "null":
			return &Node{Kind: KindNull, Ident: name, Origin: Origin{Raw: name, Start: start, End: start + len(name)}}, false, nil
		}
		if p.cur.kind == tokLParen {
			if err := p.advance(); err != nil {
				return nil, false, err
			}
			var args []*Node
			if p.cur.kind != tokRParen {
				for {
					arg, err := p.parseOr()
					if err != nil {
						return nil, false, err
					}
					args = append(args, arg)
					if p.cur.kind == tokComma {
						if err := p.advance(); err != nil {
							return nil, false, err
						}
						continue
					}
					break
				}
			}
			if p.cur.kind != tokRParen {
				return nil, false, fmt.Errorf("expr: expected ')' at %d", p.cur.start)
			}
			if err := p.advance(); err != nil {
				return nil, false, err
			}
			return &Node{Kind: KindCall, Callee: lower, Args: args, Origin: Origin{Raw: name, Start: start, End: start + len(name)}}, true, nil
		}
		return &Node{Kind: KindIdent, Ident: name, Origin: Origin{Raw: name, Start: start, End: start + len(name)}}, false, nil
	default:
		return nil, false, fmt.Errorf("expr: unexpected token %q at %d", p.cur.text, p.cur.start)
	}
}

func parseNumber(text string) (float64, error) {
	if strings.HasPrefix(text, "0x") || strings.HasPrefix(text, "0X") {
		iv, err := strconv.ParseInt(text[2:], 16, 64)
		if err != nil {
			return 0, fmt.Errorf("expr: invalid hex literal %q: %w", text, err)
		}
		return float64(iv), nil
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, fmt.Errorf("expr: invalid number literal %q: %w", text, err)
	}
	return v, nil
}
