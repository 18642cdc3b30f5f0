package parser

import (
	"fmt"
	"go/token"

	"github.com/chriserin/dspec/internal/lexer"
)

var (
	groupKeywords = map[string]bool{"describe": true, "context": true, "given": true, "when": true}
	caseKeywords  = map[string]bool{"it": true, "test": true, "then": true}
)

type nodeKind int

const (
	unknownNode nodeKind = iota
	groupNode
	caseNode
)

type parser struct {
	tokens []lexer.Token
	src    []byte
	pos    int
}

// Parse parses a .dspec file into its tree of groups and cases.
func Parse(filename string, content []byte) (*Root, error) {
	tokens, err := lexer.Tokenize(filename, content)
	if err != nil {
		return nil, lexFailure(err)
	}
	return ParseTokens(tokens, content)
}

// ParseTokens parses an already tokenized source. src must be the text the
// tokens were scanned from; fragments slice their text out of it.
func ParseTokens(tokens []lexer.Token, src []byte) (*Root, error) {
	if len(tokens) == 0 || tokens[len(tokens)-1].Kind != token.EOF {
		tokens = append(tokens, lexer.Token{Kind: token.EOF, Text: "EOF"})
	}
	p := &parser{tokens: tokens, src: src}
	return p.parseRoot()
}

func (p *parser) current() lexer.Token {
	return p.at(p.pos)
}

func (p *parser) at(i int) lexer.Token {
	if i < 0 {
		return lexer.Token{Kind: token.ILLEGAL}
	}
	if i >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1] // EOF
	}
	return p.tokens[i]
}

func (p *parser) advance() lexer.Token {
	tok := p.current()
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return tok
}

func (p *parser) expect(kind token.Token, what string) (lexer.Token, error) {
	tok := p.current()
	if tok.Kind != kind {
		return tok, p.errorf(tok, "expected %s, found %s", what, tok)
	}
	return p.advance(), nil
}

func (p *parser) skipSemicolons() {
	for p.current().Kind == token.SEMICOLON {
		p.advance()
	}
}

func (p *parser) skipSemicolonsFrom(i int) int {
	for p.at(i).Kind == token.SEMICOLON {
		i++
	}
	return i
}

func (p *parser) errorf(tok lexer.Token, format string, args ...any) *ParseError {
	return &ParseError{Kind: KindSyntax, Message: fmt.Sprintf(format, args...), Pos: tok.Pos, End: tok.End}
}

// --- Root ---

func (p *parser) parseRoot() (*Root, error) {
	root := &Root{}
	p.skipSemicolons()
	for p.current().Kind != token.EOF {
		kind, decisive := p.classify()
		if kind != groupNode {
			return nil, p.errorf(decisive, "expected describe, context, given or when at top level, found %s", decisive)
		}
		g, err := p.parseGroup()
		if err != nil {
			return nil, err
		}
		root.Groups = append(root.Groups, g)
		p.skipSemicolons()
	}
	if len(root.Groups) == 0 {
		return nil, p.errorf(p.current(), "expected at least one describe, context, given or when block")
	}
	return root, nil
}

// classify looks past any attributes and the async marker to the block
// keyword and reports which kind of node starts at the current position,
// together with the token that decided it. It does not move the parser.
func (p *parser) classify() (nodeKind, lexer.Token) {
	i := p.skipSemicolonsFrom(p.pos)
	for p.at(i).Kind == lexer.At {
		if p.at(i+1).Kind != token.IDENT {
			return unknownNode, p.at(i + 1)
		}
		i += 2
		if p.at(i).Kind == token.LPAREN {
			end, ok := p.matchFrom(i)
			if !ok {
				return unknownNode, p.at(end)
			}
			i = end
		}
		i = p.skipSemicolonsFrom(i)
	}
	if p.at(i).Is("async") {
		i = p.skipSemicolonsFrom(i + 1)
	}
	tok := p.at(i)
	switch {
	case tok.Kind == token.IDENT && groupKeywords[tok.Text]:
		return groupNode, tok
	case tok.Kind == token.IDENT && caseKeywords[tok.Text]:
		return caseNode, tok
	default:
		return unknownNode, tok
	}
}

// --- Blocks ---

func (p *parser) parseNode() (Node, error) {
	kind, decisive := p.classify()
	switch kind {
	case groupNode:
		return p.parseGroup()
	case caseNode:
		return p.parseCase()
	default:
		return nil, p.errorf(decisive, "expected describe, context, given, when, it, test or then, found %s", decisive)
	}
}

func (p *parser) parseGroup() (*Group, error) {
	props, kw, err := p.parseProperties()
	if err != nil {
		return nil, err
	}
	g := &Group{Properties: props, Pos: kw.Pos}

	if _, err := p.expect(token.LBRACE, "'{'"); err != nil {
		return nil, err
	}
	for {
		p.skipSemicolons()
		tok := p.current()
		switch {
		case tok.Kind == token.RBRACE:
			p.advance()
			return g, nil
		case tok.Kind == token.EOF:
			return nil, p.errorf(tok, "expected '}' closing %s, found %s", g.Name.Text, tok)
		case tok.Is("use") && p.startsImport(p.pos+1):
			imp, err := p.parseImport()
			if err != nil {
				return nil, err
			}
			g.Imports = append(g.Imports, imp)
		case tok.Is("before") && p.at(p.pos+1).Kind == token.LBRACE:
			if g.Setup != nil {
				return nil, p.duplicate(tok, "before", g)
			}
			p.advance()
			block, err := p.parseBlock()
			if err != nil {
				return nil, err
			}
			g.Setup = &block
		case tok.Is("after") && p.at(p.pos+1).Kind == token.LBRACE:
			if g.Teardown != nil {
				return nil, p.duplicate(tok, "after", g)
			}
			p.advance()
			block, err := p.parseBlock()
			if err != nil {
				return nil, err
			}
			g.Teardown = &block
		default:
			child, err := p.parseNode()
			if err != nil {
				return nil, err
			}
			g.Children = append(g.Children, child)
		}
	}
}

func (p *parser) duplicate(tok lexer.Token, word string, g *Group) *ParseError {
	return &ParseError{
		Kind:    KindStructure,
		Message: fmt.Sprintf("only one `%s` block per describe/context block (in %s)", word, g.Name.Text),
		Pos:     tok.Pos,
		End:     tok.End,
	}
}

func (p *parser) parseCase() (*Case, error) {
	props, kw, err := p.parseProperties()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &Case{Properties: props, Body: body, Pos: kw.Pos}, nil
}

// parseProperties consumes attributes, the async marker, the block keyword,
// the name and an optional return type. It returns the keyword token.
func (p *parser) parseProperties() (Properties, lexer.Token, error) {
	var props Properties

	p.skipSemicolons()
	for p.current().Kind == lexer.At {
		attr, err := p.parseAttribute()
		if err != nil {
			return props, lexer.Token{}, err
		}
		props.Attributes = append(props.Attributes, attr)
		p.skipSemicolons()
	}

	if p.current().Is("async") {
		p.advance()
		props.Async = true
		p.skipSemicolons()
	}

	kw := p.advance() // already classified

	name := p.current()
	switch name.Kind {
	case token.IDENT:
		props.Name = Name{Text: name.Text, Pos: name.Pos}
	case token.STRING:
		props.Name = Name{Text: name.Text, Quoted: true, Pos: name.Pos}
	default:
		return props, kw, p.errorf(name, "expected a name after '%s', found %s", kw.Text, name)
	}
	p.advance()

	if p.atArrow() {
		p.advance()
		p.advance()
		rt, err := p.parseType()
		if err != nil {
			return props, kw, err
		}
		props.ReturnType = &rt
	}
	return props, kw, nil
}

func (p *parser) parseAttribute() (Attribute, error) {
	at := p.advance()
	name, err := p.expect(token.IDENT, "attribute name after '@'")
	if err != nil {
		return Attribute{}, err
	}
	attr := Attribute{Name: name.Text, Pos: at.Pos}
	if p.current().Kind == token.LPAREN {
		open := p.pos
		end, ok := p.matchFrom(open)
		if !ok {
			return Attribute{}, p.errorf(p.at(end), "unbalanced %s in attribute @%s", p.at(open), name.Text)
		}
		args := p.fragment(open+1, end-1)
		attr.Args = &args
		p.pos = end
	}
	return attr, nil
}

// atArrow reports whether the next two tokens spell "->" with nothing between them.
func (p *parser) atArrow() bool {
	minus, gt := p.current(), p.at(p.pos+1)
	return minus.Kind == token.SUB && gt.Kind == token.GTR && minus.End == gt.Pos.Offset
}

// parseType collects a return type up to the '{' that opens the body.
func (p *parser) parseType() (Fragment, error) {
	start := p.pos
	for {
		tok := p.current()
		switch tok.Kind {
		case token.LBRACE:
			if p.pos == start {
				return Fragment{}, p.errorf(tok, "expected a return type after '->', found %s", tok)
			}
			return p.fragment(start, p.pos), nil
		case token.STRUCT, token.INTERFACE:
			p.advance()
			if p.current().Kind == token.LBRACE {
				if err := p.skipGroup(); err != nil {
					return Fragment{}, err
				}
			}
		case token.LPAREN, token.LBRACK:
			if err := p.skipGroup(); err != nil {
				return Fragment{}, err
			}
		case token.SEMICOLON, token.EOF, token.RPAREN, token.RBRACK, token.RBRACE:
			return Fragment{}, p.errorf(tok, "expected '{' after return type, found %s", tok)
		default:
			p.advance()
		}
	}
}

func (p *parser) startsImport(i int) bool {
	tok := p.at(i)
	switch {
	case tok.Kind == token.STRING:
		return true
	case tok.Kind == token.IDENT, tok.Kind == token.PERIOD:
		return p.at(i+1).Kind == token.STRING
	}
	return false
}

func (p *parser) parseImport() (Import, error) {
	use := p.advance()
	imp := Import{Pos: use.Pos}
	if p.current().Kind != token.STRING {
		imp.Alias = p.advance().Text
	}
	path, err := p.expect(token.STRING, "import path")
	if err != nil {
		return Import{}, err
	}
	imp.Path = path.Text
	if _, err := p.expect(token.SEMICOLON, "';' after use declaration"); err != nil {
		return Import{}, err
	}
	return imp, nil
}

// parseBlock parses `{ Stmt* }`. Statements end at a semicolon, written or
// inserted at a newline, outside any brackets. Semicolons in the header of
// an if, for, switch or select statement do not end it.
func (p *parser) parseBlock() (Block, error) {
	open, err := p.expect(token.LBRACE, "'{'")
	if err != nil {
		return Block{}, err
	}
	block := Block{Pos: open.Pos}
	for {
		p.skipSemicolons()
		switch p.current().Kind {
		case token.RBRACE:
			p.advance()
			return block, nil
		case token.EOF:
			return Block{}, p.errorf(p.current(), "expected '}' closing block opened at %s, found %s", open.Pos, p.current())
		}
		stmt, err := p.parseStmt()
		if err != nil {
			return Block{}, err
		}
		block.Stmts = append(block.Stmts, stmt)
	}
}

func (p *parser) parseStmt() (Fragment, error) {
	start := p.pos
	inHeader := hasHeader(p.current().Kind)
	for {
		tok := p.current()
		switch tok.Kind {
		case token.SEMICOLON:
			if !inHeader {
				return p.fragment(start, p.pos), nil
			}
			p.advance()
		case token.RBRACE, token.EOF:
			return p.fragment(start, p.pos), nil
		case token.RPAREN, token.RBRACK:
			return Fragment{}, p.errorf(tok, "unexpected %s", tok)
		case token.LBRACE:
			if inHeader && !p.literalBrace(p.pos) {
				inHeader = false
			}
			if err := p.skipGroup(); err != nil {
				return Fragment{}, err
			}
		case token.LPAREN, token.LBRACK:
			if err := p.skipGroup(); err != nil {
				return Fragment{}, err
			}
		default:
			p.advance()
			if tok.Kind == token.ELSE && p.current().Kind == token.IF {
				inHeader = true
			}
		}
	}
}

func hasHeader(kind token.Token) bool {
	switch kind {
	case token.IF, token.FOR, token.SWITCH, token.SELECT:
		return true
	}
	return false
}

// literalBrace reports whether the '{' at index i of a statement header
// belongs to the header: a composite literal of a slice, array or map type,
// a struct or interface type, or a function literal. Anything else opens the
// statement body. A literal of a bare type name must be parenthesized in a
// header, so T{} is not recognized.
func (p *parser) literalBrace(i int) bool {
	j := i - 1
	switch p.at(j).Kind {
	case token.STRUCT, token.INTERFACE:
		return true
	case token.RBRACE:
		switch p.at(p.openerOf(j) - 1).Kind {
		case token.STRUCT, token.INTERFACE:
			return true
		}
	case token.RPAREN:
		return p.endsSignature(j)
	case token.IDENT:
		if p.at(j-1).Kind == token.PERIOD && p.at(j-2).Kind == token.IDENT {
			j -= 2
		}
		for p.at(j-1).Kind == token.MUL {
			j--
		}
		switch p.at(j - 1).Kind {
		case token.RBRACK:
			return true
		case token.RPAREN:
			return p.endsSignature(j - 1)
		}
	}
	return false
}

// endsSignature reports whether the ')' at index j closes the parameter or
// result list of a func type.
func (p *parser) endsSignature(j int) bool {
	open := p.openerOf(j)
	switch p.at(open - 1).Kind {
	case token.FUNC:
		return true
	case token.RPAREN:
		return p.at(p.openerOf(open-1)-1).Kind == token.FUNC
	}
	return false
}

// openerOf returns the index of the bracket opening the one closed at j.
func (p *parser) openerOf(j int) int {
	depth := 0
	for i := j; i >= 0; i-- {
		switch p.at(i).Kind {
		case token.RPAREN, token.RBRACK, token.RBRACE:
			depth++
		case token.LPAREN, token.LBRACK, token.LBRACE:
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return 0
}

// skipGroup advances past the bracketed group opening at the current token.
func (p *parser) skipGroup() error {
	open := p.pos
	end, ok := p.matchFrom(open)
	if !ok {
		return p.errorf(p.at(end), "unbalanced %s opened at %s, found %s", p.at(open), p.at(open).Pos, p.at(end))
	}
	p.pos = end
	return nil
}

var closers = map[token.Token]token.Token{
	token.LPAREN: token.RPAREN,
	token.LBRACK: token.RBRACK,
	token.LBRACE: token.RBRACE,
}

// matchFrom returns the index just past the bracket that closes the one at
// index i. On a mismatch or end of input it returns the offending index and
// false.
func (p *parser) matchFrom(i int) (int, bool) {
	var stack []token.Token
	for ; ; i++ {
		kind := p.at(i).Kind
		if closer, ok := closers[kind]; ok {
			stack = append(stack, closer)
			continue
		}
		switch kind {
		case token.RPAREN, token.RBRACK, token.RBRACE:
			if len(stack) == 0 || stack[len(stack)-1] != kind {
				return i, false
			}
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				return i + 1, true
			}
		case token.EOF:
			return i, false
		}
	}
}

// fragment captures tokens [from, to), dropping a trailing inserted
// semicolon, with the source text between the first and last token.
func (p *parser) fragment(from, to int) Fragment {
	for to > from && p.at(to-1).Auto() {
		to--
	}
	if to <= from {
		return Fragment{}
	}
	toks := make([]lexer.Token, to-from)
	copy(toks, p.tokens[from:to])
	first, last := toks[0], toks[len(toks)-1]
	text := ""
	if first.Pos.Offset <= last.End && last.End <= len(p.src) {
		text = string(p.src[first.Pos.Offset:last.End])
	}
	return Fragment{Tokens: toks, Text: text}
}
