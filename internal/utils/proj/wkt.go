package proj

import (
	"fmt"
	"strings"
)

// wktNode is KEYWORD[arg, ...]. An arg is either an atom (quoted string, number, bare keyword) or a node.
type wktNode struct {
	keyword string
	args    []wktArg
}

type wktArg struct {
	atom string
	node *wktNode
}

// PrettyWKT formats a WKT string, putting each nested node on its own line, indented by one tab per level.
// Nodes without nested nodes are kept on one line.
func PrettyWKT(wkt string) (string, error) {
	p := wktParser{s: wkt}
	p.skipSpaces()
	root, err := p.node()
	if err != nil {
		return "", fmt.Errorf("PrettyWKT: %w", err)
	}
	p.skipSpaces()
	if !p.eof() {
		return "", fmt.Errorf("PrettyWKT: unexpected '%c' at position %d", p.s[p.pos], p.pos)
	}
	var b strings.Builder
	root.write(&b, 0)
	return b.String(), nil
}

func (n *wktNode) write(b *strings.Builder, depth int) {
	b.WriteString(n.keyword)
	b.WriteByte('[')
	for i, a := range n.args {
		if i > 0 {
			b.WriteByte(',')
		}
		if a.node == nil {
			b.WriteString(a.atom)
			continue
		}
		b.WriteByte('\n')
		b.WriteString(strings.Repeat("\t", depth+1))
		a.node.write(b, depth+1)
	}
	b.WriteByte(']')
}

type wktParser struct {
	s   string
	pos int
}

func (p *wktParser) eof() bool {
	return p.pos >= len(p.s)
}

func (p *wktParser) skipSpaces() {
	for !p.eof() && strings.IndexByte(" \t\r\n", p.s[p.pos]) >= 0 {
		p.pos++
	}
}

func isKeywordChar(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func (p *wktParser) keyword() string {
	start := p.pos
	for !p.eof() && isKeywordChar(p.s[p.pos]) {
		p.pos++
	}
	return p.s[start:p.pos]
}

// node parses KEYWORD[args] (or KEYWORD(args))
func (p *wktParser) node() (*wktNode, error) {
	n := &wktNode{keyword: p.keyword()}
	if n.keyword == "" {
		return nil, p.unexpected()
	}
	p.skipSpaces()
	if p.eof() || (p.s[p.pos] != '[' && p.s[p.pos] != '(') {
		return nil, p.unexpected()
	}
	closing := byte(']')
	if p.s[p.pos] == '(' {
		closing = ')'
	}
	p.pos++
	for {
		p.skipSpaces()
		arg, err := p.arg()
		if err != nil {
			return nil, err
		}
		n.args = append(n.args, arg)
		p.skipSpaces()
		if p.eof() {
			return nil, p.unexpected()
		}
		switch p.s[p.pos] {
		case ',':
			p.pos++
		case closing:
			p.pos++
			return n, nil
		default:
			return nil, p.unexpected()
		}
	}
}

func (p *wktParser) arg() (wktArg, error) {
	if p.eof() {
		return wktArg{}, p.unexpected()
	}
	switch c := p.s[p.pos]; {
	case c == '"':
		s, err := p.quoted()
		return wktArg{atom: s}, err
	case c == '-' || c == '+' || c == '.' || (c >= '0' && c <= '9'):
		start := p.pos
		for !p.eof() && strings.IndexByte(",])( \t\r\n", p.s[p.pos]) < 0 {
			p.pos++
		}
		return wktArg{atom: p.s[start:p.pos]}, nil
	case isKeywordChar(c):
		start := p.pos
		kw := p.keyword()
		p.skipSpaces()
		if !p.eof() && (p.s[p.pos] == '[' || p.s[p.pos] == '(') {
			p.pos = start
			n, err := p.node()
			return wktArg{node: n}, err
		}
		return wktArg{atom: kw}, nil
	}
	return wktArg{}, p.unexpected()
}

// quoted parses a quoted string. Quotes are escaped by doubling them.
func (p *wktParser) quoted() (string, error) {
	start := p.pos
	p.pos++
	for !p.eof() {
		if p.s[p.pos] == '"' {
			if p.pos+1 < len(p.s) && p.s[p.pos+1] == '"' {
				p.pos += 2
				continue
			}
			p.pos++
			return p.s[start:p.pos], nil
		}
		p.pos++
	}
	return "", fmt.Errorf("unterminated string at position %d", start)
}

func (p *wktParser) unexpected() error {
	if p.eof() {
		return fmt.Errorf("unexpected end of WKT")
	}
	return fmt.Errorf("unexpected '%c' at position %d", p.s[p.pos], p.pos)
}
