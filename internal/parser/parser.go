// Package parser builds the canonical AST from workout language source text.
//
// The parser is hand-rolled recursive descent over the lexer's token stream.
// It fails fast: the first grammar rejection aborts the parse and no partial
// tree is returned. Failure state (offending token plus the expected-token
// set) is captured as it happens, which is what powers targeted suggestions.
package parser

import (
	"strconv"
	"strings"

	"github.com/vk/wodc/internal/ast"
	"github.com/vk/wodc/internal/lexer"
	"github.com/vk/wodc/internal/token"
	"github.com/vk/wodc/internal/value"
)

// Parse parses one source file holding any number of top-level module and
// session constructs.
func Parse(src string) (*ast.File, error) {
	toks, err := lexer.Lex(src)
	if err != nil {
		if scanErr, ok := err.(*lexer.ScanError); ok {
			return nil, &SyntaxError{
				Pos:      scanErr.Pos,
				Token:    token.Token{Kind: token.EOF, Lexeme: "", Pos: scanErr.Pos},
				Expected: []string{scanErr.Msg},
			}
		}
		return nil, err
	}

	p := &parser{toks: toks}
	file := &ast.File{}
	for {
		p.skipNewlines()
		if p.at(token.EOF) {
			return file, nil
		}
		switch {
		case p.atKeyword("module"):
			m, err := p.parseModule()
			if err != nil {
				return nil, err
			}
			file.Modules = append(file.Modules, m)
		case p.atKeyword("session"):
			s, err := p.parseSession()
			if err != nil {
				return nil, err
			}
			file.Sessions = append(file.Sessions, s)
		default:
			p.want("'module'")
			p.want("'session'")
			return nil, p.fail()
		}
	}
}

type parser struct {
	toks []token.Token
	pos  int

	// expected accumulates the descriptions of everything the parser was
	// willing to accept at expectedAt; it resets whenever the parser advances.
	expected   []string
	expectedAt int
}

func (p *parser) cur() token.Token { return p.toks[p.pos] }

func (p *parser) peek() token.Token {
	if p.pos+1 < len(p.toks) {
		return p.toks[p.pos+1]
	}
	return p.toks[len(p.toks)-1]
}

func (p *parser) advance() token.Token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *parser) at(k token.Kind) bool     { return p.cur().Kind == k }
func (p *parser) atKeyword(kw string) bool { return p.at(token.Ident) && p.cur().Lexeme == kw }

func (p *parser) skipNewlines() {
	for p.at(token.Newline) {
		p.advance()
	}
}

// want records desc in the expected set for the current token.
func (p *parser) want(desc string) {
	if p.expectedAt != p.pos {
		p.expected = p.expected[:0]
		p.expectedAt = p.pos
	}
	for _, e := range p.expected {
		if e == desc {
			return
		}
	}
	p.expected = append(p.expected, desc)
}

// fail builds the SyntaxError for the current token from the accumulated
// expected set.
func (p *parser) fail() error {
	tok := p.cur()
	expected := make([]string, len(p.expected))
	copy(expected, p.expected)
	return &SyntaxError{
		Pos:        tok.Pos,
		Token:      tok,
		Expected:   expected,
		Suggestion: suggestFor(tok, expected),
	}
}

func (p *parser) accept(k token.Kind, desc string) (token.Token, bool) {
	if p.at(k) {
		return p.advance(), true
	}
	p.want(desc)
	return token.Token{}, false
}

func (p *parser) expect(k token.Kind, desc string) (token.Token, error) {
	if tok, ok := p.accept(k, desc); ok {
		return tok, nil
	}
	return token.Token{}, p.fail()
}

func (p *parser) acceptKeyword(kw string) bool {
	if p.atKeyword(kw) {
		p.advance()
		return true
	}
	p.want("'" + kw + "'")
	return false
}

func (p *parser) expectKeyword(kw string) error {
	if p.acceptKeyword(kw) {
		return nil
	}
	return p.fail()
}

// --- module ---------------------------------------------------------------

func (p *parser) parseModule() (*ast.Module, error) {
	pos := p.cur().Pos
	p.advance() // module
	name, err := p.parseDottedName()
	if err != nil {
		return nil, err
	}
	version, err := p.parseVersion()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LBrace, "'{'"); err != nil {
		return nil, err
	}

	m := &ast.Module{Kind: ast.KindModule, Name: name, Version: version, Pos: pos}
	for {
		p.skipNewlines()
		switch {
		case p.at(token.RBrace):
			p.advance()
			return m, nil
		case p.at(token.At):
			a, err := p.parseAnnotation()
			if err != nil {
				return nil, err
			}
			m.Annotations = append(m.Annotations, a)
		case p.atKeyword("import"):
			p.advance()
			ref, err := p.parseRef()
			if err != nil {
				return nil, err
			}
			m.Imports = append(m.Imports, ref)
		case p.atKeyword("vars"):
			vars, err := p.parseVars()
			if err != nil {
				return nil, err
			}
			m.Vars = append(m.Vars, vars...)
		case p.atKeyword("score"):
			s, err := p.parseScore()
			if err != nil {
				return nil, err
			}
			m.Scores = append(m.Scores, s)
		case p.atKeyword("warmup") || p.atKeyword("skill") || p.atKeyword("strength") || p.atKeyword("wod"):
			c, err := p.parseComponent()
			if err != nil {
				return nil, err
			}
			m.Components = append(m.Components, c)
		default:
			for _, kw := range []string{"vars", "score", "warmup", "skill", "strength", "wod", "import"} {
				p.want("'" + kw + "'")
			}
			p.want("'}'")
			return nil, p.fail()
		}
	}
}

func (p *parser) parseDottedName() (string, error) {
	first, err := p.expect(token.Ident, "a dotted module name")
	if err != nil {
		return "", err
	}
	parts := []string{first.Lexeme}
	for p.at(token.Dot) {
		p.advance()
		next, err := p.expect(token.Ident, "a name segment after '.'")
		if err != nil {
			return "", err
		}
		parts = append(parts, next.Lexeme)
	}
	return strings.Join(parts, "."), nil
}

// parseVersion accepts "@v1" or a decimal "@v1.2".
func (p *parser) parseVersion() (string, error) {
	if _, err := p.expect(token.At, "'@' before a version"); err != nil {
		return "", err
	}
	id, err := p.expect(token.Ident, "a version like v1")
	if err != nil {
		return "", err
	}
	if !isVersionIdent(id.Lexeme) {
		p.pos-- // point the error at the bad version token
		p.want("a version like v1")
		return "", p.fail()
	}
	version := id.Lexeme
	if p.at(token.Dot) && p.peek().Kind == token.Number {
		p.advance()
		minor := p.advance()
		version += "." + minor.Lexeme
	}
	return version, nil
}

func isVersionIdent(s string) bool {
	if len(s) < 2 || s[0] != 'v' {
		return false
	}
	for _, c := range s[1:] {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func (p *parser) parseRef() (string, error) {
	name, err := p.parseDottedName()
	if err != nil {
		return "", err
	}
	version, err := p.parseVersion()
	if err != nil {
		return "", err
	}
	return name + "@" + version, nil
}

func (p *parser) parseAnnotation() (*ast.Annotation, error) {
	pos := p.cur().Pos
	p.advance() // '@'
	name, err := p.expect(token.Ident, "an annotation name")
	if err != nil {
		return nil, err
	}
	a := &ast.Annotation{Kind: ast.KindAnnotation, Name: name.Lexeme, Pos: pos}
	if p.at(token.LParen) {
		p.advance()
		for {
			arg, err := p.expect(token.String, "an annotation argument string")
			if err != nil {
				return nil, err
			}
			a.Args = append(a.Args, arg.Lexeme)
			if p.at(token.Comma) {
				p.advance()
				continue
			}
			break
		}
		if _, err := p.expect(token.RParen, "')'"); err != nil {
			return nil, err
		}
	}
	return a, nil
}

func (p *parser) parseVars() ([]*ast.VarDecl, error) {
	p.advance() // vars
	if _, err := p.expect(token.LBrace, "'{'"); err != nil {
		return nil, err
	}
	var decls []*ast.VarDecl
	for {
		p.skipNewlines()
		if p.at(token.RBrace) {
			p.advance()
			return decls, nil
		}
		d, err := p.parseVarDecl()
		if err != nil {
			return nil, err
		}
		decls = append(decls, d)
	}
}

func (p *parser) parseVarDecl() (*ast.VarDecl, error) {
	name, err := p.expect(token.Ident, "a variable name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Colon, "':' after the variable name"); err != nil {
		return nil, err
	}
	typeName, err := p.expect(token.Ident, "a type (Int, Float, Duration, Load, String, Bool)")
	if err != nil {
		return nil, err
	}

	d := &ast.VarDecl{Kind: ast.KindVar, Name: name.Lexeme, Type: typeName.Lexeme, Pos: name.Pos}
	if p.at(token.LParen) {
		p.advance()
		unit, err := p.expect(token.Ident, "a unit name")
		if err != nil {
			return nil, err
		}
		d.Unit = unit.Lexeme
		if _, err := p.expect(token.RParen, "')'"); err != nil {
			return nil, err
		}
	}
	if p.at(token.Equals) {
		p.advance()
		raw, quoted, err := p.parseLiteral()
		if err != nil {
			return nil, err
		}
		d.Default = raw
		d.Quoted = quoted
	}
	if p.at(token.LBracket) {
		p.advance()
		for {
			key, err := p.expect(token.Ident, "'min' or 'max'")
			if err != nil {
				return nil, err
			}
			if key.Lexeme != "min" && key.Lexeme != "max" {
				p.pos--
				p.want("'min'")
				p.want("'max'")
				return nil, p.fail()
			}
			if _, err := p.expect(token.Equals, "'='"); err != nil {
				return nil, err
			}
			num, err := p.expect(token.Number, "a number")
			if err != nil {
				return nil, err
			}
			v, convErr := strconv.ParseFloat(num.Lexeme, 64)
			if convErr != nil {
				return nil, convErr
			}
			if key.Lexeme == "min" {
				d.Min = &v
			} else {
				d.Max = &v
			}
			if p.at(token.Comma) {
				p.advance()
				continue
			}
			break
		}
		if _, err := p.expect(token.RBracket, "']'"); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// parseLiteral accepts any scalar literal token and returns its raw lexeme.
func (p *parser) parseLiteral() (raw string, quoted bool, err error) {
	switch p.cur().Kind {
	case token.Number, token.Value, token.Time:
		return p.advance().Lexeme, false, nil
	case token.String:
		return p.advance().Lexeme, true, nil
	case token.Ident:
		// true/false for Bool variables
		if lx := p.cur().Lexeme; lx == "true" || lx == "false" {
			return p.advance().Lexeme, false, nil
		}
	}
	p.want("a literal value")
	return "", false, p.fail()
}

// --- components -----------------------------------------------------------

func (p *parser) parseComponent() (*ast.Component, error) {
	classTok := p.advance()
	form, err := p.parseForm()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LBrace, "'{'"); err != nil {
		return nil, err
	}

	c := &ast.Component{Kind: ast.KindComponent, Class: classTok.Lexeme, Form: form, Pos: classTok.Pos}
	for {
		p.skipSeparators()
		if p.at(token.RBrace) {
			p.advance()
			return c, nil
		}
		st, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		c.Stmts = append(c.Stmts, st)
	}
}

func (p *parser) skipSeparators() {
	for p.at(token.Newline) || p.at(token.Semicolon) || p.at(token.Comma) {
		p.advance()
	}
}

const formDesc = "a block form like AMRAP/EMOM/ForTime"

func (p *parser) parseForm() (*ast.Form, error) {
	// Strength shorthand: 5*5.
	if p.at(token.Number) {
		sets := p.advance()
		if _, err := p.expect(token.Star, "'*' in a sets form"); err != nil {
			return nil, err
		}
		reps, err := p.expect(token.Number, "a rep count")
		if err != nil {
			return nil, err
		}
		return &ast.Form{Name: "SETS", Sets: atoi(sets.Lexeme), Reps: atoi(reps.Lexeme)}, nil
	}

	name, err := p.expect(token.Ident, formDesc)
	if err != nil {
		return nil, err
	}

	switch name.Lexeme {
	case "AMRAP", "EMOM":
		form := &ast.Form{Name: name.Lexeme}
		if err := p.parseDurationArg(form); err != nil {
			return nil, err
		}
		return form, nil
	case "ForTime":
		form := &ast.Form{Name: "ForTime"}
		if p.atKeyword("cap") {
			p.advance()
			secs, err := p.parseTime()
			if err != nil {
				return nil, err
			}
			form.Cap = secs
		}
		return form, nil
	case "RFT":
		rounds, err := p.expect(token.Number, "a round count")
		if err != nil {
			return nil, err
		}
		return &ast.Form{Name: "RFT", Rounds: atoi(rounds.Lexeme)}, nil
	case "CHIPPER":
		return &ast.Form{Name: "CHIPPER"}, nil
	case "TABATA", "INTERVAL":
		return p.parseIntervalForm(name.Lexeme)
	default:
		// Free-form name, optional duration.
		form := &ast.Form{Name: name.Lexeme}
		if p.at(token.Time) || p.at(token.Dollar) {
			if err := p.parseDurationArg(form); err != nil {
				return nil, err
			}
		}
		return form, nil
	}
}

func (p *parser) parseDurationArg(form *ast.Form) error {
	if p.at(token.Dollar) {
		p.advance()
		id, err := p.expect(token.Ident, "a variable name after '$'")
		if err != nil {
			return err
		}
		form.SecondsVar = id.Lexeme
		return nil
	}
	secs, err := p.parseTime()
	if err != nil {
		return err
	}
	form.Seconds = secs
	return nil
}

// parseIntervalForm handles "TABATA 8*(0:20 on / 0:10 off)" and the same
// shape for INTERVAL.
func (p *parser) parseIntervalForm(name string) (*ast.Form, error) {
	sets, err := p.expect(token.Number, "a set count")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Star, "'*'"); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LParen, "'('"); err != nil {
		return nil, err
	}
	work, err := p.parseTime()
	if err != nil {
		return nil, err
	}
	if err := p.expectKeyword("on"); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Slash, "'/'"); err != nil {
		return nil, err
	}
	rest, err := p.parseTime()
	if err != nil {
		return nil, err
	}
	if err := p.expectKeyword("off"); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RParen, "')'"); err != nil {
		return nil, err
	}
	return &ast.Form{Name: name, Sets: atoi(sets.Lexeme), WorkSeconds: work, RestSeconds: rest}, nil
}

// parseTime accepts a clock literal (7:00) or a seconds value (45s).
func (p *parser) parseTime() (int, error) {
	switch p.cur().Kind {
	case token.Time:
		secs, err := value.ParseClockSeconds(p.advance().Lexeme)
		if err != nil {
			return 0, err
		}
		return secs, nil
	case token.Value:
		tok := p.cur()
		if strings.HasSuffix(tok.Lexeme, "s") && !strings.Contains(tok.Lexeme, "/") {
			p.advance()
			return value.ParseClockSeconds(tok.Lexeme)
		}
	}
	p.want("a duration like 7:00 or 45s")
	return 0, p.fail()
}

// --- statements -----------------------------------------------------------

func (p *parser) parseStmt() (ast.Stmt, error) {
	pos := p.cur().Pos

	if p.atKeyword("REST") {
		p.advance()
		secs, err := p.parseTime()
		if err != nil {
			return nil, err
		}
		return &ast.Rest{Kind: ast.KindRest, Seconds: secs, Pos: pos}, nil
	}

	// EMOM slot line: "2: 10 Push_up".
	if p.at(token.Number) && p.peek().Kind == token.Colon {
		idx := p.advance()
		p.advance() // ':'
		line, err := p.parseMovement()
		if err != nil {
			return nil, err
		}
		return &ast.Slot{Kind: ast.KindSlot, Index: atoi(idx.Lexeme), Line: line, Pos: pos}, nil
	}

	return p.parseMovement()
}

func (p *parser) parseMovement() (*ast.Movement, error) {
	pos := p.cur().Pos
	m := &ast.Movement{Kind: ast.KindMovement, Pos: pos}

	qty, err := p.parseQuantity()
	if err != nil {
		return nil, err
	}
	m.Quantity = qty

	name, err := p.expect(token.Ident, "a movement id")
	if err != nil {
		return nil, err
	}
	m.Name = name.Lexeme

	if p.at(token.Scheme) {
		m.Scheme = parseScheme(p.advance().Lexeme)
	}

	for {
		switch {
		case p.at(token.At):
			if err := p.parseLoadOrFlag(m); err != nil {
				return nil, err
			}
		case p.atKeyword("SYNC"):
			p.advance()
			m.Sync = true
		case p.at(token.String):
			m.Note = p.advance().Lexeme
		default:
			if p.at(token.Newline) || p.at(token.Semicolon) || p.at(token.Comma) || p.at(token.RBrace) || p.at(token.EOF) {
				return m, nil
			}
			p.want("'@'")
			p.want("'SYNC'")
			p.want("a trailing note string")
			p.want("end of line")
			return nil, p.fail()
		}
	}
}

// parseQuantity consumes an optional leading quantity. A line that starts
// with a movement id has none.
func (p *parser) parseQuantity() (*value.Quantity, error) {
	switch p.cur().Kind {
	case token.Number, token.Value:
		tok := p.advance()
		calSuffix := false
		if p.atKeyword("cal") {
			p.advance()
			calSuffix = true
		}
		q, err := value.ParseQuantity(tok.Lexeme, calSuffix)
		if err != nil {
			return nil, &SyntaxError{Pos: tok.Pos, Token: tok, Expected: []string{err.Error()}}
		}
		return q, nil
	case token.Time:
		tok := p.advance()
		q, err := value.ParseQuantity(tok.Lexeme, false)
		if err != nil {
			return nil, &SyntaxError{Pos: tok.Pos, Token: tok, Expected: []string{err.Error()}}
		}
		return q, nil
	case token.Dollar:
		p.advance()
		id, err := p.expect(token.Ident, "a variable name after '$'")
		if err != nil {
			return nil, err
		}
		return value.VarQuantity(id.Lexeme), nil
	default:
		return nil, nil
	}
}

// parseLoadOrFlag consumes one '@'-prefixed item: a load value, a variant
// map, or the @shared/@each modifiers.
func (p *parser) parseLoadOrFlag(m *ast.Movement) error {
	atTok := p.advance() // '@'
	switch {
	case p.at(token.Value):
		tok := p.advance()
		ld, err := value.ParseLoad(tok.Lexeme)
		if err != nil {
			return &SyntaxError{Pos: tok.Pos, Token: tok, Expected: []string{err.Error()}}
		}
		m.Load = ld
		return nil
	case p.at(token.LBrace):
		ld, err := p.parseVariantLoad()
		if err != nil {
			return err
		}
		m.Load = ld
		return nil
	case p.atKeyword("shared"):
		p.advance()
		m.Shared = true
		return nil
	case p.atKeyword("each"):
		p.advance()
		m.Each = true
		return nil
	default:
		_ = atTok
		p.want("a load like 43kg or 95lb")
		p.want("'{' for a per-track load map")
		p.want("'shared'")
		p.want("'each'")
		return p.fail()
	}
}

func (p *parser) parseVariantLoad() (*value.Load, error) {
	p.advance() // '{'
	labels := []string{}
	entries := map[string]value.Scalar{}
	for {
		p.skipNewlines()
		label, err := p.expect(token.Ident, "a track label like RX")
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.Colon, "':'"); err != nil {
			return nil, err
		}
		tok, err := p.expect(token.Value, "a load like 43kg")
		if err != nil {
			return nil, err
		}
		single, parseErr := value.ParseLoad(tok.Lexeme)
		if parseErr != nil || single.Kind != value.LoadSingle {
			return nil, &SyntaxError{Pos: tok.Pos, Token: tok, Expected: []string{"a single load value per track"}}
		}
		labels = append(labels, label.Lexeme)
		entries[label.Lexeme] = single.Value
		p.skipNewlines()
		if p.at(token.Comma) {
			p.advance()
			continue
		}
		break
	}
	p.skipNewlines()
	if _, err := p.expect(token.RBrace, "'}'"); err != nil {
		return nil, err
	}
	return value.VariantLoad(labels, entries), nil
}

func parseScheme(raw string) []int {
	parts := strings.Split(raw, "-")
	out := make([]int, len(parts))
	for i, part := range parts {
		out[i] = atoi(part)
	}
	return out
}

// --- score ----------------------------------------------------------------

func (p *parser) parseScore() (*ast.ScoreDecl, error) {
	pos := p.cur().Pos
	p.advance() // score
	form, err := p.expect(token.Ident, "a form name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LBrace, "'{'"); err != nil {
		return nil, err
	}

	s := &ast.ScoreDecl{Kind: ast.KindScore, Form: form.Lexeme, Pos: pos}
	for {
		p.skipSeparators()
		if p.at(token.RBrace) {
			p.advance()
			return s, nil
		}
		name, err := p.expect(token.Ident, "a score field name")
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.Colon, "':'"); err != nil {
			return nil, err
		}
		typeName, err := p.expect(token.Ident, "a field type")
		if err != nil {
			return nil, err
		}
		s.Fields = append(s.Fields, ast.ScoreField{Name: name.Lexeme, Type: typeName.Lexeme})
	}
}

// --- session --------------------------------------------------------------

func (p *parser) parseSession() (*ast.Session, error) {
	pos := p.cur().Pos
	p.advance() // session
	title, err := p.expect(token.String, "a quoted session title")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LBrace, "'{'"); err != nil {
		return nil, err
	}

	s := &ast.Session{Kind: ast.KindSession, Title: title.Lexeme, Meta: map[string]string{}, Pos: pos}
	for {
		p.skipNewlines()
		switch {
		case p.at(token.RBrace):
			p.advance()
			return s, nil
		case p.atKeyword("components"):
			if err := p.parseComponentsBlock(s); err != nil {
				return nil, err
			}
		case p.atKeyword("scoring"):
			if err := p.parseScoringBlock(s); err != nil {
				return nil, err
			}
		case p.atKeyword("meta"):
			if err := p.parseMetaBlock(s); err != nil {
				return nil, err
			}
		default:
			p.want("'components'")
			p.want("'scoring'")
			p.want("'meta'")
			p.want("'}'")
			return nil, p.fail()
		}
	}
}

func (p *parser) parseComponentsBlock(s *ast.Session) error {
	p.advance() // components
	if _, err := p.expect(token.LBrace, "'{'"); err != nil {
		return err
	}
	for {
		p.skipNewlines()
		if p.at(token.RBrace) {
			p.advance()
			return nil
		}
		alias, err := p.expect(token.Ident, "a component alias")
		if err != nil {
			return err
		}
		if err := p.expectKeyword("import"); err != nil {
			return err
		}
		ref, err := p.parseRef()
		if err != nil {
			return err
		}
		imp := &ast.Import{Kind: ast.KindImport, Alias: alias.Lexeme, Ref: ref, Pos: alias.Pos}
		if p.atKeyword("override") {
			p.advance()
			if _, err := p.expect(token.LBrace, "'{'"); err != nil {
				return err
			}
			for {
				p.skipSeparators()
				if p.at(token.RBrace) {
					p.advance()
					break
				}
				key, err := p.expect(token.Ident, "an override key")
				if err != nil {
					return err
				}
				if _, err := p.expect(token.Equals, "'='"); err != nil {
					return err
				}
				raw, quoted, err := p.parseLiteral()
				if err != nil {
					return err
				}
				imp.Overrides = append(imp.Overrides, &ast.Override{Key: key.Lexeme, Raw: raw, Quoted: quoted, Pos: key.Pos})
			}
		}
		s.Imports = append(s.Imports, imp)
	}
}

func (p *parser) parseScoringBlock(s *ast.Session) error {
	p.advance() // scoring
	if _, err := p.expect(token.LBrace, "'{'"); err != nil {
		return err
	}
	for {
		p.skipSeparators()
		if p.at(token.RBrace) {
			p.advance()
			return nil
		}
		alias, err := p.expect(token.Ident, "a component alias")
		if err != nil {
			return err
		}
		if _, err := p.expect(token.Colon, "':'"); err != nil {
			return err
		}
		d := &ast.Directive{Kind: ast.KindDirective, Alias: alias.Lexeme, Pos: alias.Pos}
		for {
			field, err := p.expect(token.Ident, "a score field name")
			if err != nil {
				return err
			}
			d.Fields = append(d.Fields, field.Lexeme)
			if p.at(token.Plus) {
				p.advance()
				continue
			}
			break
		}
		s.Scoring = append(s.Scoring, d)
	}
}

func (p *parser) parseMetaBlock(s *ast.Session) error {
	p.advance() // meta
	if _, err := p.expect(token.LBrace, "'{'"); err != nil {
		return err
	}
	for {
		p.skipSeparators()
		if p.at(token.RBrace) {
			p.advance()
			return nil
		}
		key, err := p.expect(token.Ident, "a meta key")
		if err != nil {
			return err
		}
		if _, err := p.expect(token.Equals, "'='"); err != nil {
			return err
		}
		val, err := p.expect(token.String, "a quoted value")
		if err != nil {
			return err
		}
		if _, dup := s.Meta[key.Lexeme]; !dup {
			s.MetaOrder = append(s.MetaOrder, key.Lexeme)
		}
		s.Meta[key.Lexeme] = val.Lexeme
	}
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
