package expand

import (
	"slices"

	"github.com/chriserin/dspec/internal/parser"
)

// Context is what a group hands down to its children: everything inherited
// from the root to that group. Each fold returns a new Context; none is ever
// modified in place.
type Context struct {
	Attributes []parser.Attribute
	Async      bool
	ReturnType *parser.Fragment
	Imports    []parser.Import
	Setup      []parser.Fragment
	Teardown   []parser.Fragment
	Path       []string
}

// merge folds a node's own properties over the inherited ones. Ancestor
// attributes come first, async is sticky and the nearest return type wins.
func (c Context) merge(own parser.Properties) Context {
	next := c
	next.Attributes = slices.Concat(c.Attributes, own.Attributes)
	next.Async = c.Async || own.Async
	if own.ReturnType != nil {
		next.ReturnType = own.ReturnType
	}
	return next
}

// enter returns the context for the children of g.
func (c Context) enter(g *parser.Group, name string) Context {
	next := c.merge(g.Properties)
	next.Imports = slices.Concat(c.Imports, g.Imports)
	if g.Setup != nil {
		next.Setup = slices.Concat(c.Setup, g.Setup.Stmts)
	}
	if g.Teardown != nil {
		next.Teardown = slices.Concat(g.Teardown.Stmts, c.Teardown)
	}
	next.Path = slices.Concat(c.Path, []string{name})
	return next
}
