package parser

import (
	"strconv"

	"github.com/chriserin/dspec/internal/lexer"
)

// Layer 1: the nested spec tree exactly as written.

type Root struct {
	Groups []*Group
}

// Node is a Group or a Case.
type Node interface {
	Props() Properties
	node()
}

type Properties struct {
	Attributes []Attribute
	Async      bool
	Name       Name
	ReturnType *Fragment
}

type Group struct {
	Properties
	Imports  []Import
	Setup    *Block // nil when the group has no before block
	Teardown *Block // nil when the group has no after block
	Children []Node
	Pos      lexer.Position
}

type Case struct {
	Properties
	Body Block
	Pos  lexer.Position
}

func (g *Group) Props() Properties { return g.Properties }
func (c *Case) Props() Properties  { return c.Properties }
func (*Group) node()               {}
func (*Case) node()                {}

// Block is a braced statement sequence.
type Block struct {
	Stmts []Fragment
	Pos   lexer.Position
}

// Name is either a bare identifier or a quoted label.
type Name struct {
	Text   string // identifier, or the literal including its quotes
	Quoted bool
	Pos    lexer.Position
}

// Label returns the name as a user would read it: the identifier, or the
// unquoted label.
func (n Name) Label() string {
	if !n.Quoted {
		return n.Text
	}
	s, err := strconv.Unquote(n.Text)
	if err != nil {
		return n.Text
	}
	return s
}

// Attribute is `@Name` or `@Name(args)`. Args holds the tokens between the
// parentheses; it is nil when no parentheses were written.
type Attribute struct {
	Name string
	Args *Fragment
	Pos  lexer.Position
}

// Import is a `use` declaration: an optional alias ("_", "." or an
// identifier) and a quoted import path.
type Import struct {
	Alias string
	Path  string // quoted, as written
	Pos   lexer.Position
}

// Fragment is an opaque run of tokens along with the source text they span.
// Fragments are only ever concatenated, never interpreted.
type Fragment struct {
	Tokens []lexer.Token
	Text   string
}

func (f Fragment) Pos() lexer.Position {
	if len(f.Tokens) == 0 {
		return lexer.Position{}
	}
	return f.Tokens[0].Pos
}
