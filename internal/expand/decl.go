package expand

import (
	"github.com/chriserin/dspec/internal/lexer"
	"github.com/chriserin/dspec/internal/parser"
)

// Layer 2: the flat, fully inherited declarations ready for emission.

// Decl is a Scope or a Test.
type Decl interface {
	decl()
}

// Scope wraps the declarations generated for one group.
type Scope struct {
	Name     string // identifier: the group's identifier or its slugged label
	Label    string
	Imports  []parser.Import // inherited imports followed by the group's own
	Children []Decl
	Pos      lexer.Position
}

// Test is one self-contained test with everything inherited resolved.
type Test struct {
	Name       string
	Label      string
	Path       []string // names of the enclosing scopes, outermost first
	Attributes []parser.Attribute
	Async      bool
	ReturnType *parser.Fragment
	Body       []parser.Fragment
	Pos        lexer.Position
}

func (*Scope) decl() {}
func (*Test) decl()  {}

// MarkerAttribute is the synthesized attribute that registers a test with
// the host framework. Async tests carry the async qualifier instead.
const MarkerAttribute = "Test"

// IsMarker reports whether a is the synthesized registration marker.
func IsMarker(a parser.Attribute) bool {
	return a.Name == MarkerAttribute && a.Args == nil && a.Pos == (lexer.Position{})
}

// Walk calls fn for every test under decls in emission order.
func Walk(decls []Decl, fn func(*Test)) {
	for _, d := range decls {
		switch d := d.(type) {
		case *Scope:
			Walk(d.Children, fn)
		case *Test:
			fn(d)
		}
	}
}

// CountTests returns the number of tests under decls.
func CountTests(decls []Decl) int {
	n := 0
	Walk(decls, func(*Test) { n++ })
	return n
}
