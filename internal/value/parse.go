package value

import (
	"fmt"
	"strconv"
	"strings"

	"stepscan/internal/lexer"
	"stepscan/internal/source"
	"stepscan/internal/token"
)

// DefaultMaxDepth bounds list and wrapper nesting.
const DefaultMaxDepth = 256

type Options struct {
	// MaxDepth limits nesting; 0 means DefaultMaxDepth.
	MaxDepth int
}

type parser struct {
	lx       *lexer.Lexer
	file     *source.File
	span     source.Span
	maxDepth int
}

func newParser(file *source.File, span source.Span, opts Options) *parser {
	depth := opts.MaxDepth
	if depth <= 0 {
		depth = DefaultMaxDepth
	}
	return &parser{
		lx:       lexer.NewRange(file, span, lexer.Options{}),
		file:     file,
		span:     span,
		maxDepth: depth,
	}
}

// Parse parses the attribute list covered by span: the text between the
// outermost parentheses of one record.
func Parse(file *source.File, span source.Span, opts Options) ([]Value, error) {
	p := newParser(file, span, opts)
	return p.parseList(token.EOF, 0)
}

// ParseComplex parses the partial type list of a complex instance,
// "A(1) B(#2)", into one Unparsed value per partial type.
func ParseComplex(file *source.File, span source.Span, opts Options) ([]Value, error) {
	p := newParser(file, span, opts)
	var parts []Value
	for {
		tok := p.lx.Next()
		if tok.Kind == token.EOF {
			if len(parts) == 0 {
				return nil, p.fail(tok, "complex instance without partial types")
			}
			return parts, nil
		}
		if !tok.IsName() {
			return nil, p.fail(tok, fmt.Sprintf("expected partial entity type, found %q", tok.Text))
		}
		v, err := p.parseTyped(tok, 1)
		if err != nil {
			return nil, err
		}
		parts = append(parts, v)
	}
}

// ParseText parses standalone attribute text, for example the inner text of a typed wrapper.
func ParseText(text string) ([]Value, error) {
	file, span := textFile(text)
	return Parse(file, span, Options{})
}

// ParseComplexText is ParseComplex over standalone text.
func ParseComplexText(text string) ([]Value, error) {
	file, span := textFile(text)
	return ParseComplex(file, span, Options{})
}

func textFile(text string) (*source.File, source.Span) {
	file := &source.File{Path: "<text>", Content: []byte(text)}
	return file, source.Span{Start: 0, End: file.Len()}
}

func (p *parser) fail(at token.Token, reason string) *AttributeParseError {
	return &AttributeParseError{
		Raw:    p.file.Text(p.span),
		Offset: at.Span.Start,
		Reason: reason,
	}
}

func (p *parser) tooDeep(at token.Token) *AttributeParseError {
	err := p.fail(at, fmt.Sprintf("nesting deeper than %d", p.maxDepth))
	err.TooDeep = true
	return err
}

// parseList читает значения через запятую до end (EOF на верхнем уровне, ')' внутри списка).
func (p *parser) parseList(end token.Kind, depth int) ([]Value, error) {
	items := make([]Value, 0, 4)
	if p.lx.Peek().Kind == end {
		p.lx.Next()
		return items, nil
	}
	for {
		v, err := p.parseValue(depth)
		if err != nil {
			return nil, err
		}
		items = append(items, v)

		sep := p.lx.Next()
		switch sep.Kind {
		case token.Comma:
			continue
		case end:
			return items, nil
		case token.EOF:
			return nil, p.fail(sep, "unbalanced parentheses: list is not closed")
		case token.RParen:
			return nil, p.fail(sep, "unbalanced parentheses: unexpected ')'")
		default:
			return nil, p.fail(sep, fmt.Sprintf("expected ',' between attributes, found %q", sep.Text))
		}
	}
}

func (p *parser) parseValue(depth int) (Value, error) {
	tok := p.lx.Next()
	switch tok.Kind {
	case token.Dollar:
		return Unset(), nil

	case token.Star:
		return Derived(), nil

	case token.Integer:
		n, err := strconv.ParseInt(tok.Text, 10, 64)
		if err != nil {
			return Value{}, p.fail(tok, fmt.Sprintf("integer %s out of range", tok.Text))
		}
		return Int(n), nil

	case token.Real:
		f, err := strconv.ParseFloat(tok.Text, 64)
		if err != nil {
			return Value{}, p.fail(tok, fmt.Sprintf("bad real %s", tok.Text))
		}
		return Real(f), nil

	case token.String:
		return Str(DecodeString(tok.Text[1 : len(tok.Text)-1])), nil

	case token.Enum:
		return Enum(strings.ToUpper(tok.Text[1 : len(tok.Text)-1])), nil

	case token.Binary:
		return Binary(strings.ToUpper(tok.Text[1 : len(tok.Text)-1])), nil

	case token.Ref:
		id, err := strconv.ParseUint(tok.Text[1:], 10, 64)
		if err != nil || id == 0 {
			return Value{}, p.fail(tok, fmt.Sprintf("instance reference %s must be a positive integer", tok.Text))
		}
		return Ref(id), nil

	case token.LParen:
		if depth+1 > p.maxDepth {
			return Value{}, p.tooDeep(tok)
		}
		items, err := p.parseList(token.RParen, depth+1)
		if err != nil {
			return Value{}, err
		}
		return List(items...), nil

	case token.Keyword, token.UserKeyword:
		return p.parseTyped(tok, depth+1)

	case token.EOF:
		return Value{}, p.fail(tok, "expected attribute value")

	case token.Invalid:
		return Value{}, p.fail(tok, fmt.Sprintf("unrecognized attribute text %q", tok.Text))

	default:
		return Value{}, p.fail(tok, fmt.Sprintf("unexpected %q", tok.Text))
	}
}

// parseTyped: NAME ( ... ) -> Unparsed. Содержимое только проверяется на
// баланс скобок и валидность токенов, разбор - по требованию через Params.
func (p *parser) parseTyped(name token.Token, depth int) (Value, error) {
	open := p.lx.Next()
	if open.Kind != token.LParen {
		return Value{}, p.fail(open, fmt.Sprintf("expected '(' after %s", name.Text))
	}
	level := 1
	for {
		tok := p.lx.Next()
		switch tok.Kind {
		case token.LParen:
			level++
			if depth+level > p.maxDepth {
				return Value{}, p.tooDeep(tok)
			}
		case token.RParen:
			level--
			if level == 0 {
				raw := p.file.Text(source.Span{File: p.file.ID, Start: open.Span.End, End: tok.Span.Start})
				return Typed(strings.ToUpper(name.Text), raw), nil
			}
		case token.EOF:
			return Value{}, p.fail(tok, fmt.Sprintf("unbalanced parentheses in %s(...)", name.Text))
		case token.Invalid:
			return Value{}, p.fail(tok, fmt.Sprintf("unrecognized attribute text %q", tok.Text))
		}
	}
}
