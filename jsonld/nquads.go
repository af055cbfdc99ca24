package jsonld

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/language"
)

// ParseNQuads parses N-Quads text into a Dataset.
func ParseNQuads(r io.Reader) (*Dataset, error) {
	ds := NewDataset()
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		q, err := parseNQuadLine(line)
		if err != nil {
			return nil, &ParseError{Format: "nquads", Statement: line, Line: lineNo, Err: err}
		}
		ds.AddQuad(q)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return ds, nil
}

func parseNQuadLine(line string) (*Quad, error) {
	c := &nqCursor{input: line}
	subject, err := c.parseSubject()
	if err != nil {
		return nil, err
	}
	predicate, err := c.parseIRIOnly()
	if err != nil {
		return nil, err
	}
	object, err := c.parseObject()
	if err != nil {
		return nil, err
	}
	graph := c.parseOptionalGraph()
	c.skipWS()
	if !c.consume('.') {
		return nil, c.errorf("expected '.' at end of statement")
	}
	return &Quad{Subject: subject, Predicate: predicate, Object: object, Graph: graph}, nil
}

type nqCursor struct {
	input string
	pos   int
}

func (c *nqCursor) skipWS() {
	for c.pos < len(c.input) {
		switch c.input[c.pos] {
		case ' ', '\t', '\r', '\n':
			c.pos++
		default:
			return
		}
	}
}

func (c *nqCursor) consume(ch byte) bool {
	c.skipWS()
	if c.pos < len(c.input) && c.input[c.pos] == ch {
		c.pos++
		return true
	}
	return false
}

func (c *nqCursor) parseSubject() (Term, error) {
	c.skipWS()
	return c.parseTerm(false)
}

func (c *nqCursor) parseObject() (Term, error) {
	c.skipWS()
	return c.parseTerm(true)
}

func (c *nqCursor) parseOptionalGraph() Term {
	c.skipWS()
	if c.pos >= len(c.input) || c.input[c.pos] == '.' {
		return nil
	}
	term, _ := c.parseTerm(false)
	return term
}

func (c *nqCursor) parseTerm(allowLiteral bool) (Term, error) {
	c.skipWS()
	if c.pos >= len(c.input) {
		return nil, c.errorf("unexpected end of line")
	}
	switch {
	case c.input[c.pos] == '<':
		return c.parseIRIOnly()
	case strings.HasPrefix(c.input[c.pos:], "_:"):
		return c.parseBlankNode()
	case c.input[c.pos] == '"':
		if !allowLiteral {
			return nil, c.errorf("literal not allowed here")
		}
		return c.parseLiteral()
	default:
		return nil, c.errorf("unexpected token")
	}
}

func (c *nqCursor) parseIRIOnly() (IRI, error) {
	c.skipWS()
	if !c.consume('<') {
		return IRI{}, c.errorf("expected IRI")
	}
	start := c.pos
	for c.pos < len(c.input) && c.input[c.pos] != '>' {
		c.pos++
	}
	if c.pos >= len(c.input) {
		return IRI{}, c.errorf("unterminated IRI")
	}
	value := unescapeIRI(c.input[start:c.pos])
	c.pos++
	return IRI{Value: value}, nil
}

func (c *nqCursor) parseBlankNode() (BlankNode, error) {
	c.pos += 2
	start := c.pos
	for c.pos < len(c.input) && !isNQDelim(c.input[c.pos]) {
		c.pos++
	}
	if start == c.pos {
		return BlankNode{}, c.errorf("blank node id missing")
	}
	return BlankNode{ID: c.input[start:c.pos]}, nil
}

func (c *nqCursor) parseLiteral() (Literal, error) {
	if !c.consume('"') {
		return Literal{}, c.errorf("expected literal")
	}
	var b strings.Builder
	for c.pos < len(c.input) {
		ch := c.input[c.pos]
		if ch == '"' {
			c.pos++
			break
		}
		if ch == '\\' {
			if c.pos+1 >= len(c.input) {
				return Literal{}, c.errorf("unterminated escape")
			}
			next := c.input[c.pos+1]
			switch next {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			case '"':
				b.WriteByte('"')
			case '\\':
				b.WriteByte('\\')
			default:
				b.WriteByte(next)
			}
			c.pos += 2
			continue
		}
		b.WriteByte(ch)
		c.pos++
	}
	lexical := b.String()
	c.skipWS()
	if strings.HasPrefix(c.input[c.pos:], "@") {
		c.pos++
		start := c.pos
		for c.pos < len(c.input) && !isNQDelim(c.input[c.pos]) {
			c.pos++
		}
		return Literal{Lexical: lexical, Lang: canonicalLangTag(c.input[start:c.pos])}, nil
	}
	if strings.HasPrefix(c.input[c.pos:], "^^") {
		c.pos += 2
		dt, err := c.parseIRIOnly()
		if err != nil {
			return Literal{}, err
		}
		return Literal{Lexical: lexical, Datatype: dt}, nil
	}
	return Literal{Lexical: lexical}, nil
}

func (c *nqCursor) errorf(format string, args ...interface{}) error {
	return fmt.Errorf("nquads: "+format, args...)
}

func isNQDelim(ch byte) bool {
	switch ch {
	case ' ', '\t', '\r', '\n', '.':
		return true
	default:
		return false
	}
}

// canonicalLangTag lowercases a BCP47 language tag, using x/text/language
// to parse and re-render the canonical (lowercase) tag string. Falls back
// to a simple strings.ToLower if the tag doesn't parse as BCP47.
func canonicalLangTag(tag string) string {
	if tag == "" {
		return tag
	}
	t, err := language.Parse(tag)
	if err != nil {
		return strings.ToLower(tag)
	}
	return strings.ToLower(t.String())
}

func unescapeIRI(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			switch s[i+1] {
			case 'u', 'U':
				// leave unicode escapes to the caller; rarely used in IRIs
				b.WriteByte(s[i])
				continue
			}
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// SerializeNQuads writes ds as canonical N-Quads text: one quad
// per line, canonical escapes, '\n' line terminator, graph name omitted for
// the default graph.
func SerializeNQuads(w io.Writer, ds *Dataset) error {
	bw := bufio.NewWriter(w)
	for _, name := range ds.GraphNames() {
		for _, q := range ds.Graphs[name] {
			line := renderTerm(q.Subject) + " " + renderIRI(q.Predicate) + " " + renderTerm(q.Object)
			if q.Graph != nil {
				line += " " + renderTerm(q.Graph)
			}
			line += " .\n"
			if _, err := bw.WriteString(line); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}

// NQuadsString serializes ds and returns the result as a string.
func NQuadsString(ds *Dataset) (string, error) {
	var b strings.Builder
	if err := SerializeNQuads(&b, ds); err != nil {
		return "", err
	}
	return b.String(), nil
}

func renderIRI(iri IRI) string {
	return "<" + escapeIRI(iri.Value) + ">"
}

func escapeIRI(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func renderTerm(term Term) string {
	switch v := term.(type) {
	case IRI:
		return renderIRI(v)
	case BlankNode:
		return v.String()
	case Literal:
		lex := escapeLexical(v.Lexical)
		if v.Lang != "" {
			return fmt.Sprintf("\"%s\"@%s", lex, v.Lang)
		}
		if v.Datatype.Value != "" {
			return fmt.Sprintf("\"%s\"^^%s", lex, renderIRI(v.Datatype))
		}
		return fmt.Sprintf("\"%s\"", lex)
	default:
		return ""
	}
}

func escapeLexical(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
