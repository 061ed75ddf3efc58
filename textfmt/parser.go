package textfmt

import (
	"fmt"
)

// parser is a small hand-rolled recursive-descent reader over the
// textfmt grammar. It captures literal values (numbers, quoted strings,
// tuples, arrays, objects) as balanced raw substrings rather than
// decoding them: textfmt stays agnostic to what a literal means, leaving
// that to NodeData.SetTextProperties.
type parser struct {
	src []rune
	pos int
}

func (p *parser) eof() bool { return p.pos >= len(p.src) }

func (p *parser) peek() rune {
	if p.eof() {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser) advance() rune {
	r := p.peek()
	p.pos++
	return r
}

func isIdentStart(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isIdentRune(r rune) bool {
	return isIdentStart(r) || (r >= '0' && r <= '9')
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func isSpace(r rune) bool { return r == ' ' || r == '\t' || r == '\r' || r == '\n' }

func (p *parser) skipWsAndComments() {
	for !p.eof() {
		r := p.peek()
		if isSpace(r) {
			p.pos++
			continue
		}
		if r == '#' {
			for !p.eof() && p.peek() != '\n' {
				p.pos++
			}
			continue
		}
		break
	}
}

func (p *parser) expect(r rune) error {
	p.skipWsAndComments()
	if p.eof() || p.peek() != r {
		return fmt.Errorf("textfmt: expected %q at offset %d: %w", r, p.pos, ErrSyntax)
	}
	p.pos++
	return nil
}

func (p *parser) parseIdent() (string, error) {
	p.skipWsAndComments()
	if p.eof() || !isIdentStart(p.peek()) {
		return "", fmt.Errorf("textfmt: expected identifier at offset %d: %w", p.pos, ErrSyntax)
	}
	start := p.pos
	for !p.eof() && isIdentRune(p.peek()) {
		p.pos++
	}
	return string(p.src[start:p.pos]), nil
}

// parseNetwork reads the top-level (<comment-line>|<decl>|<output>)* form.
func (p *parser) parseNetwork() ([]decl, string, bool, error) {
	var decls []decl
	outputLabel := ""
	hasOutput := false

	for {
		p.skipWsAndComments()
		if p.eof() {
			break
		}
		if p.lookingAtOutput() {
			label, err := p.parseOutput()
			if err != nil {
				return nil, "", false, err
			}
			outputLabel = label
			hasOutput = true
			continue
		}
		d, err := p.parseDecl()
		if err != nil {
			return nil, "", false, err
		}
		decls = append(decls, d)
	}
	return decls, outputLabel, hasOutput, nil
}

func (p *parser) lookingAtOutput() bool {
	save := p.pos
	ident, err := p.parseIdent()
	p.pos = save
	return err == nil && ident == "output"
}

func (p *parser) parseOutput() (string, error) {
	if _, err := p.parseIdent(); err != nil { // consumes "output"
		return "", err
	}
	return p.parseIdent()
}

func (p *parser) parseDecl() (decl, error) {
	label, err := p.parseIdent()
	if err != nil {
		return decl{}, err
	}
	if err := p.expect('='); err != nil {
		return decl{}, err
	}
	typeName, err := p.parseIdent()
	if err != nil {
		return decl{}, err
	}
	if err := p.expect('{'); err != nil {
		return decl{}, err
	}

	var entries []declEntry
	p.skipWsAndComments()
	if p.peek() != '}' {
		for {
			e, err := p.parseEntry()
			if err != nil {
				return decl{}, err
			}
			entries = append(entries, e)
			p.skipWsAndComments()
			if p.peek() == ',' {
				p.pos++
				p.skipWsAndComments()
				continue
			}
			break
		}
	}
	if err := p.expect('}'); err != nil {
		return decl{}, err
	}
	return decl{label: label, typeName: typeName, entries: entries}, nil
}

func (p *parser) parseEntry() (declEntry, error) {
	key, err := p.parseIdent()
	if err != nil {
		return declEntry{}, err
	}
	if err := p.expect(':'); err != nil {
		return declEntry{}, err
	}
	p.skipWsAndComments()
	text, bareIdent, err := p.parseValue()
	if err != nil {
		return declEntry{}, err
	}
	return declEntry{key: key, text: text, bareIdent: bareIdent}, nil
}

// parseValue consumes one value and returns its raw source text. bareIdent
// is true only when the value is a plain identifier (not "@name", not a
// quoted/bracketed/numeric literal) — the only shape eligible to resolve
// to another decl's label as a wire.
func (p *parser) parseValue() (string, bool, error) {
	if p.eof() {
		return "", false, fmt.Errorf("textfmt: unexpected end of input: %w", ErrSyntax)
	}

	r := p.peek()
	switch {
	case r == '@':
		start := p.pos
		p.pos++
		if _, err := p.parseIdent(); err != nil {
			return "", false, err
		}
		return string(p.src[start:p.pos]), false, nil

	case isIdentStart(r):
		ident, err := p.parseIdent()
		if err != nil {
			return "", false, err
		}
		return ident, true, nil

	case isDigit(r) || r == '-' || r == '+':
		start := p.pos
		p.pos++
		for !p.eof() && (isDigit(p.peek()) || p.peek() == '.' || p.peek() == 'e' || p.peek() == 'E' || p.peek() == '-' || p.peek() == '+') {
			p.pos++
		}
		return string(p.src[start:p.pos]), false, nil

	case r == '"':
		return p.parseString()

	case r == '(':
		text, err := p.parseBalanced('(', ')')
		return text, false, err

	case r == '[':
		text, err := p.parseBalanced('[', ']')
		return text, false, err

	case r == '{':
		text, err := p.parseBalanced('{', '}')
		return text, false, err

	default:
		return "", false, fmt.Errorf("textfmt: unexpected character %q at offset %d: %w", r, p.pos, ErrSyntax)
	}
}

// parseString reads a quoted string, including the triple-quoted
// multi-line form ("""..."""), returning the full source text verbatim
// (quotes included) so re-emitting it is exact.
func (p *parser) parseString() (string, bool, error) {
	start := p.pos
	triple := p.pos+2 < len(p.src) && p.src[p.pos] == '"' && p.src[p.pos+1] == '"' && p.src[p.pos+2] == '"'
	if triple {
		p.pos += 3
		for {
			if p.pos+2 >= len(p.src) {
				return "", false, fmt.Errorf("textfmt: unterminated triple-quoted string: %w", ErrSyntax)
			}
			if p.src[p.pos] == '"' && p.src[p.pos+1] == '"' && p.src[p.pos+2] == '"' {
				p.pos += 3
				break
			}
			p.pos++
		}
		return string(p.src[start:p.pos]), false, nil
	}

	p.pos++ // opening quote
	for {
		if p.eof() {
			return "", false, fmt.Errorf("textfmt: unterminated string: %w", ErrSyntax)
		}
		r := p.advance()
		if r == '\\' && !p.eof() {
			p.pos++
			continue
		}
		if r == '"' {
			break
		}
	}
	return string(p.src[start:p.pos]), false, nil
}

// parseBalanced consumes a run delimited by open/close, tracking nesting
// depth for that one pair, and returns the full source text (delimiters
// included) verbatim.
func (p *parser) parseBalanced(open, close rune) (string, error) {
	start := p.pos
	depth := 0
	for !p.eof() {
		r := p.advance()
		if r == open {
			depth++
			continue
		}
		if r == close {
			depth--
			if depth == 0 {
				return string(p.src[start:p.pos]), nil
			}
			continue
		}
		if r == '"' {
			p.pos--
			if _, _, err := p.parseString(); err != nil {
				return "", err
			}
		}
	}
	return "", fmt.Errorf("textfmt: unbalanced %q/%q: %w", open, close, ErrSyntax)
}
