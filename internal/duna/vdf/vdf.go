// Package vdf reads Valve's KeyValues text format and derives the manifest
// views the swap engine needs: account display names and login times,
// installed-game names, and configured library roots.
package vdf

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Node is one entry of a parsed KeyValues tree. A node carries either a
// string value or an ordered child list, never both. Duplicate keys are
// preserved in order; lookups resolve to the last occurrence, matching how
// Steam itself consumes these files.
type Node struct {
	Key      string
	Value    string
	HasValue bool
	Children []*Node
}

// Child returns the node reached by walking the given keys, one level per
// key. Key comparison is case-insensitive; the last matching sibling wins.
// Returns nil when any step is missing.
func (n *Node) Child(keys ...string) *Node {
	cur := n
	for _, key := range keys {
		if cur == nil {
			return nil
		}
		var match *Node
		for _, c := range cur.Children {
			if strings.EqualFold(c.Key, key) {
				match = c
			}
		}
		cur = match
	}
	return cur
}

// String returns the value of the named child, or "" when the child is
// missing or is a block.
func (n *Node) String(key string) string {
	c := n.Child(key)
	if c == nil || !c.HasValue {
		return ""
	}
	return c.Value
}

// Parse reads a KeyValues document into a synthetic root node whose
// children are the document's top-level entries.
func Parse(r io.Reader) (*Node, error) {
	p := &parser{r: bufio.NewReader(r), line: 1}
	root := &Node{}
	if err := p.parseInto(root, false); err != nil {
		return nil, err
	}
	return root, nil
}

type parser struct {
	r      *bufio.Reader
	line   int
	pushed []rune
}

func (p *parser) read() (rune, error) {
	if n := len(p.pushed); n > 0 {
		ch := p.pushed[n-1]
		p.pushed = p.pushed[:n-1]
		return ch, nil
	}
	ch, _, err := p.r.ReadRune()
	if err != nil {
		return 0, err
	}
	if ch == '\n' {
		p.line++
	}
	return ch, nil
}

func (p *parser) unread(ch rune) {
	p.pushed = append(p.pushed, ch)
}

// parseInto reads key/value and key/block pairs into parent until EOF
// (top level) or a closing brace (inBlock).
func (p *parser) parseInto(parent *Node, inBlock bool) error {
	for {
		tok, kind, err := p.nextToken()
		if err == io.EOF {
			if inBlock {
				return fmt.Errorf("line %d: unexpected end of file inside block", p.line)
			}
			return nil
		}
		if err != nil {
			return err
		}

		switch kind {
		case tokenClose:
			if !inBlock {
				return fmt.Errorf("line %d: unexpected '}'", p.line)
			}
			return nil
		case tokenOpen:
			return fmt.Errorf("line %d: unexpected '{' without a key", p.line)
		}

		node := &Node{Key: tok}

		tok, kind, err = p.nextToken()
		if err == io.EOF {
			return fmt.Errorf("line %d: key %q has no value", p.line, node.Key)
		}
		if err != nil {
			return err
		}

		switch kind {
		case tokenOpen:
			if err := p.parseInto(node, true); err != nil {
				return err
			}
		case tokenString:
			node.Value = tok
			node.HasValue = true
		default:
			return fmt.Errorf("line %d: expected value or '{' after key %q", p.line, node.Key)
		}

		parent.Children = append(parent.Children, node)
	}
}

type tokenKind int

const (
	tokenString tokenKind = iota
	tokenOpen
	tokenClose
)

func (p *parser) nextToken() (string, tokenKind, error) {
	if err := p.skipSpaceAndComments(); err != nil {
		return "", 0, err
	}

	ch, err := p.read()
	if err != nil {
		return "", 0, err
	}

	switch ch {
	case '{':
		return "", tokenOpen, nil
	case '}':
		return "", tokenClose, nil
	case '"':
		return p.readQuoted()
	default:
		return p.readBare(ch)
	}
}

func (p *parser) readQuoted() (string, tokenKind, error) {
	var sb strings.Builder
	for {
		ch, err := p.read()
		if err != nil {
			return "", 0, fmt.Errorf("line %d: unterminated string", p.line)
		}
		switch ch {
		case '"':
			return sb.String(), tokenString, nil
		case '\\':
			esc, err := p.read()
			if err != nil {
				return "", 0, fmt.Errorf("line %d: unterminated escape", p.line)
			}
			switch esc {
			case 'n':
				sb.WriteRune('\n')
			case 't':
				sb.WriteRune('\t')
			case '\\', '"':
				sb.WriteRune(esc)
			default:
				// Unknown escapes pass through verbatim, backslash included.
				sb.WriteRune('\\')
				sb.WriteRune(esc)
			}
		default:
			sb.WriteRune(ch)
		}
	}
}

func (p *parser) readBare(first rune) (string, tokenKind, error) {
	var sb strings.Builder
	sb.WriteRune(first)
	for {
		ch, err := p.read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", 0, err
		}
		if ch == '{' || ch == '}' || ch == '"' || isSpace(ch) {
			p.unread(ch)
			break
		}
		sb.WriteRune(ch)
	}
	return sb.String(), tokenString, nil
}

func (p *parser) skipSpaceAndComments() error {
	for {
		ch, err := p.read()
		if err != nil {
			return err
		}
		if isSpace(ch) {
			continue
		}
		if ch == '/' {
			next, err := p.read()
			if err == nil && next == '/' {
				if err := p.skipLine(); err != nil {
					return err
				}
				continue
			}
			if err == nil {
				p.unread(next)
			}
		}
		p.unread(ch)
		return nil
	}
}

func (p *parser) skipLine() error {
	for {
		ch, err := p.read()
		if err != nil {
			return err
		}
		if ch == '\n' {
			return nil
		}
	}
}

func isSpace(ch rune) bool {
	return ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n'
}
