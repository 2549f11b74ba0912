package parser

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"stepscan/internal/diag"
	"stepscan/internal/lexer"
	"stepscan/internal/source"
	"stepscan/internal/token"
)

// cancelCheckEvery controls how often the splitter polls the context.
const cancelCheckEvery = 1024

type Options struct {
	// Reporter receives non-fatal findings (lexical warnings, unknown sections).
	Reporter diag.Reporter
}

// Parser - состояние разбора одного файла на секции и записи.
type Parser struct {
	ctx      context.Context
	file     *source.File
	lx       *lexer.Lexer
	opts     Options
	x        *Exchange
	raw      bool                  // внутри ANCHOR/REFERENCE/SIGNATURE лексические предупреждения не нужны
	curID    uint64                // id записи, которую сейчас разбираем
	lexFatal *MalformedRecordError // незакрытая строка или комментарий
	seen     int
}

// ParseFile splits one exchange file into sections and raw records.
// Any structural violation aborts with *MalformedRecordError and no Exchange.
func ParseFile(ctx context.Context, file *source.File, opts Options) (*Exchange, error) {
	p := &Parser{
		ctx:  ctx,
		file: file,
		opts: opts,
		x:    &Exchange{File: file.ID},
	}
	p.lx = lexer.New(file, lexer.Options{Reporter: p})
	if err := p.parseExchange(); err != nil {
		return nil, err
	}
	return p.x, nil
}

// Report принимает диагностики лексера. Незакрытые литералы превращаются
// в фатальную ошибку, остальное уходит во внешний Reporter.
func (p *Parser) Report(code diag.Code, sev diag.Severity, primary source.Span, msg string, notes []diag.Note) {
	switch code {
	case diag.LexUnterminatedString, diag.LexUnterminatedComment:
		if p.lexFatal == nil {
			p.lexFatal = p.malformed(primary.Start, code, msg)
		}
		return
	}
	if p.raw || p.opts.Reporter == nil {
		return
	}
	p.opts.Reporter.Report(code, sev, primary, msg, notes)
}

func (p *Parser) next() (token.Token, error) {
	tok := p.lx.Next()
	if p.lexFatal != nil {
		return tok, p.lexFatal
	}
	return tok, nil
}

func (p *Parser) peek() (token.Token, error) {
	tok := p.lx.Peek()
	if p.lexFatal != nil {
		return tok, p.lexFatal
	}
	return tok, nil
}

func (p *Parser) malformed(off uint32, code diag.Code, reason string) *MalformedRecordError {
	pos := p.file.Position(off)
	return &MalformedRecordError{
		Path:   p.file.Path,
		Offset: off,
		Line:   pos.Line,
		Column: pos.Col,
		ID:     p.curID,
		Code:   code,
		Reason: reason,
	}
}

func (p *Parser) warn(code diag.Code, sp source.Span, msg string) {
	diag.ReportWarning(p.opts.Reporter, code, sp, msg).Emit()
}

func (p *Parser) tick() error {
	p.seen++
	if p.seen%cancelCheckEvery == 0 {
		return p.ctx.Err()
	}
	return nil
}

func (p *Parser) parseExchange() error {
	if err := p.ctx.Err(); err != nil {
		return err
	}
	tok, err := p.next()
	if err != nil {
		return err
	}
	if tok.Kind != token.MarkerBegin {
		return p.malformed(tok.Span.Start, diag.RecMissingBegin, "file does not start with ISO-10303-21;")
	}
	p.x.Marker = strings.ToUpper(tok.Text)
	if _, err := p.expectSemicolon(tok); err != nil {
		return err
	}

	for {
		tok, err := p.next()
		if err != nil {
			return err
		}
		switch tok.Kind {
		case token.MarkerEnd:
			if _, err := p.expectSemicolon(tok); err != nil {
				return err
			}
			p.checkTrailing()
			return nil

		case token.EOF:
			return p.malformed(tok.Span.Start, diag.RecMissingEnd, "missing END-ISO-10303-21;")

		case token.Keyword:
			nxt, err := p.peek()
			if err != nil {
				return err
			}
			if nxt.Kind == token.Semicolon || (nxt.Kind == token.LParen && upperName(tok.Text) == token.SectionData) {
				if err := p.parseSection(tok); err != nil {
					return err
				}
				continue
			}
			rec, err := p.parseHeaderRecord(tok)
			if err != nil {
				return err
			}
			p.outside(rec)

		case token.Ref:
			rec, err := p.parseDataRecord(tok)
			if err != nil {
				return err
			}
			p.outside(rec)

		default:
			return p.malformed(tok.Span.Start, diag.RecUnexpectedToken,
				fmt.Sprintf("unexpected %s %q outside of any section", tok.Kind, tok.Text))
		}
	}
}

func (p *Parser) outside(rec RawRecord) {
	rec.Section = SectionUnknown
	rec.SectionIndex = -1
	p.x.Unknown = append(p.x.Unknown, rec)
	p.warn(diag.RecOutsideSection, rec.Span, "statement outside of any section is ignored")
}

// checkTrailing: всё после END-ISO-10303-21; игнорируется, но отмечается.
func (p *Parser) checkTrailing() {
	p.raw = true
	tok := p.lx.Next()
	p.raw = false
	if tok.Kind != token.EOF {
		p.warn(diag.RecTrailingContent, tok.Span, "content after END-ISO-10303-21; is ignored")
	}
}

func (p *Parser) parseSection(kw token.Token) error {
	name := upperName(kw.Text)
	if name == token.SectionEnd {
		return p.malformed(kw.Span.Start, diag.RecUnexpectedToken, "ENDSEC without an open section")
	}
	sec := Section{Kind: sectionKindOf(name), Name: name, Span: kw.Span}

	tok, err := p.next()
	if err != nil {
		return err
	}
	if tok.Kind == token.LParen {
		inner, _, err := p.scanArgs(tok, kw.Span.Start)
		if err != nil {
			return err
		}
		sec.Params = p.file.Text(inner)
		sec.ParamsSpan = inner
		if tok, err = p.expectSemicolon(tok); err != nil {
			return err
		}
	}
	sec.Span = sec.Span.Cover(tok.Span)

	idx := len(p.x.Sections)
	p.x.Sections = append(p.x.Sections, sec)
	if sec.Kind == SectionUnknown {
		p.warn(diag.RecUnknownSection, kw.Span, fmt.Sprintf("unknown section %s; its statements are ignored", name))
	}

	p.raw = sec.Kind == SectionAnchor || sec.Kind == SectionReference || sec.Kind == SectionSignature
	defer func() { p.raw = false }()

	for {
		p.curID = 0
		tok, err := p.next()
		if err != nil {
			return err
		}
		if tok.Kind == token.Keyword && upperName(tok.Text) == token.SectionEnd {
			end, err := p.expectSemicolon(tok)
			if err != nil {
				return err
			}
			p.x.Sections[idx].Span = p.x.Sections[idx].Span.Cover(end.Span)
			return nil
		}
		if tok.Kind == token.EOF || tok.Kind == token.MarkerEnd {
			return p.malformed(kw.Span.Start, diag.RecUnterminatedSection,
				fmt.Sprintf("section %s is not closed by ENDSEC;", name))
		}
		if err := p.tick(); err != nil {
			return err
		}

		rec, err := p.parseStatement(sec.Kind, tok)
		if err != nil {
			return err
		}
		rec.Section = sec.Kind
		rec.SectionIndex = idx
		p.x.Sections[idx].Statements++

		switch sec.Kind {
		case SectionHeader:
			p.x.Header = append(p.x.Header, rec)
		case SectionData:
			p.x.Data = append(p.x.Data, rec)
		case SectionUnknown:
			p.x.Unknown = append(p.x.Unknown, rec)
		default:
			p.x.Other = append(p.x.Other, rec)
		}
	}
}

func (p *Parser) parseStatement(kind SectionKind, first token.Token) (RawRecord, error) {
	switch kind {
	case SectionHeader:
		return p.parseHeaderRecord(first)
	case SectionData:
		return p.parseDataRecord(first)
	case SectionUnknown:
		switch {
		case first.Kind == token.Ref:
			return p.parseDataRecord(first)
		case first.IsName():
			return p.parseHeaderRecord(first)
		}
	}
	return p.parseRawStatement(first)
}

// parseHeaderRecord: NAME ( args ) ;
func (p *Parser) parseHeaderRecord(name token.Token) (RawRecord, error) {
	if !name.IsName() {
		return RawRecord{}, p.malformed(name.Span.Start, diag.RecUnexpectedToken,
			fmt.Sprintf("expected entity name, found %s %q", name.Kind, name.Text))
	}
	open, err := p.next()
	if err != nil {
		return RawRecord{}, err
	}
	if open.Kind != token.LParen {
		return RawRecord{}, p.malformed(open.Span.Start, diag.RecUnexpectedToken,
			fmt.Sprintf("expected '(' after %s", name.Text))
	}
	inner, _, err := p.scanArgs(open, name.Span.Start)
	if err != nil {
		return RawRecord{}, err
	}
	semi, err := p.expectSemicolon(open)
	if err != nil {
		return RawRecord{}, err
	}
	return RawRecord{
		TypeName: upperName(name.Text),
		RawArgs:  p.file.Text(inner),
		ArgsSpan: inner,
		Span:     name.Span.Cover(semi.Span),
	}, nil
}

// parseDataRecord: #id = NAME ( args ) ;  или  #id = ( A(..) B(..) ) ;
func (p *Parser) parseDataRecord(ref token.Token) (RawRecord, error) {
	id, ok := parseInstanceID(ref.Text)
	if ref.Kind != token.Ref || !ok {
		return RawRecord{}, p.malformed(ref.Span.Start, diag.RecBadInstanceID,
			fmt.Sprintf("expected a positive instance name like #1, found %q", ref.Text))
	}
	p.curID = id

	eq, err := p.next()
	if err != nil {
		return RawRecord{}, err
	}
	if eq.Kind != token.Equals {
		return RawRecord{}, p.malformed(eq.Span.Start, diag.RecMissingEquals,
			fmt.Sprintf("expected '=' after %s", ref.Text))
	}

	head, err := p.next()
	if err != nil {
		return RawRecord{}, err
	}
	rec := RawRecord{ID: id}
	switch {
	case head.IsName():
		open, err := p.next()
		if err != nil {
			return RawRecord{}, err
		}
		if open.Kind != token.LParen {
			return RawRecord{}, p.malformed(open.Span.Start, diag.RecUnexpectedToken,
				fmt.Sprintf("expected '(' after %s", head.Text))
		}
		inner, _, err := p.scanArgs(open, ref.Span.Start)
		if err != nil {
			return RawRecord{}, err
		}
		rec.TypeName = upperName(head.Text)
		rec.ArgsSpan = inner

	case head.Kind == token.LParen:
		inner, first, err := p.scanArgs(head, ref.Span.Start)
		if err != nil {
			return RawRecord{}, err
		}
		if !first.IsName() {
			return RawRecord{}, p.malformed(head.Span.Start, diag.RecUnexpectedToken,
				"complex instance must list partial entity types")
		}
		rec.TypeName = upperName(first.Text)
		rec.ArgsSpan = inner
		rec.Complex = true

	default:
		return RawRecord{}, p.malformed(head.Span.Start, diag.RecUnexpectedToken,
			fmt.Sprintf("expected entity type after '=', found %s %q", head.Kind, head.Text))
	}

	semi, err := p.expectSemicolon(head)
	if err != nil {
		return RawRecord{}, err
	}
	rec.RawArgs = p.file.Text(rec.ArgsSpan)
	rec.Span = ref.Span.Cover(semi.Span)
	return rec, nil
}

// parseRawStatement keeps everything up to ';' at depth zero as text.
func (p *Parser) parseRawStatement(first token.Token) (RawRecord, error) {
	depth := 0
	tok := first
	for {
		switch tok.Kind {
		case token.LParen:
			depth++
		case token.RParen:
			depth--
		case token.EOF, token.MarkerEnd:
			return RawRecord{}, p.malformed(first.Span.Start, diag.RecUnterminatedSection, "statement is not terminated by ';'")
		}
		if tok.Kind == token.Semicolon && depth <= 0 {
			break
		}
		nxt, err := p.peek()
		if err != nil {
			return RawRecord{}, err
		}
		if depth <= 0 && nxt.Kind == token.Keyword && upperName(nxt.Text) == token.SectionEnd {
			break
		}
		if tok, err = p.next(); err != nil {
			return RawRecord{}, err
		}
	}
	span := first.Span.Cover(tok.Span)
	return RawRecord{
		RawArgs:  p.file.Text(span),
		ArgsSpan: span,
		Span:     span,
	}, nil
}

// scanArgs съедает токены до парной ')' и возвращает span между скобками
// и первое имя на глубине 1 (тип первой части сложного экземпляра).
func (p *Parser) scanArgs(open token.Token, recStart uint32) (source.Span, token.Token, error) {
	depth := 1
	var first token.Token
	haveFirst := false
	for {
		tok, err := p.next()
		if err != nil {
			return source.Span{}, first, err
		}
		switch tok.Kind {
		case token.LParen:
			depth++
		case token.RParen:
			depth--
			if depth == 0 {
				inner := source.Span{File: p.file.ID, Start: open.Span.End, End: tok.Span.Start}
				return inner, first, nil
			}
		case token.Semicolon, token.EOF, token.MarkerBegin, token.MarkerEnd:
			return source.Span{}, first, p.malformed(recStart, diag.RecUnbalancedParens,
				fmt.Sprintf("unbalanced parentheses: %d not closed", depth))
		}
		if !haveFirst && depth == 1 && tok.IsName() {
			first, haveFirst = tok, true
		}
	}
}

func (p *Parser) expectSemicolon(after token.Token) (token.Token, error) {
	tok, err := p.next()
	if err != nil {
		return tok, err
	}
	switch tok.Kind {
	case token.Semicolon:
		return tok, nil
	case token.RParen:
		return tok, p.malformed(tok.Span.Start, diag.RecUnbalancedParens, "unbalanced parentheses: unexpected ')'")
	default:
		return tok, p.malformed(after.Span.End, diag.RecUnexpectedToken,
			fmt.Sprintf("expected ';', found %s %q", tok.Kind, tok.Text))
	}
}

// parseInstanceID разбирает "#123"; ноль и имена-константы (#NAME) не допускаются.
func parseInstanceID(text string) (uint64, bool) {
	digits, ok := strings.CutPrefix(text, "#")
	if !ok || digits == "" {
		return 0, false
	}
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return 0, false
		}
	}
	id, err := strconv.ParseUint(digits, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

func upperName(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] >= 'a' && s[i] <= 'z' {
			return strings.ToUpper(s)
		}
	}
	return s
}
