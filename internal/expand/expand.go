// Package expand resolves inheritance across nested groups and produces
// flat test declarations with setup and teardown inlined into every body.
package expand

import (
	"slices"

	"github.com/chriserin/dspec/internal/parser"
	"github.com/chriserin/dspec/internal/slug"
)

// Expand generates one Scope per root group. The input tree is not modified.
func Expand(root *parser.Root) []Decl {
	var decls []Decl
	for _, g := range root.Groups {
		decls = append(decls, Group(g, Context{}))
	}
	return decls
}

// Node generates the declaration for a single group or case under ctx.
func Node(n parser.Node, ctx Context) Decl {
	switch n := n.(type) {
	case *parser.Group:
		return Group(n, ctx)
	case *parser.Case:
		return Case(n, ctx)
	}
	return nil
}

// Group generates the scope for g. The group's own setup and teardown only
// show up inside the tests beneath it.
func Group(g *parser.Group, ctx Context) *Scope {
	name := Ident(g.Name)
	inner := ctx.enter(g, name)
	scope := &Scope{
		Name:    name,
		Label:   g.Name.Label(),
		Imports: inner.Imports,
		Pos:     g.Pos,
	}
	for _, child := range g.Children {
		scope.Children = append(scope.Children, Node(child, inner))
	}
	return scope
}

// Case generates the test for c: inherited setup, then its own body, then
// inherited teardown.
func Case(c *parser.Case, ctx Context) *Test {
	merged := ctx.merge(c.Properties)
	attrs := merged.Attributes
	if !merged.Async {
		attrs = slices.Concat([]parser.Attribute{{Name: MarkerAttribute}}, attrs)
	}
	return &Test{
		Name:       Ident(c.Name),
		Label:      c.Name.Label(),
		Path:       slices.Clone(ctx.Path),
		Attributes: attrs,
		Async:      merged.Async,
		ReturnType: merged.ReturnType,
		Body:       slices.Concat(ctx.Setup, c.Body.Stmts, ctx.Teardown),
		Pos:        c.Pos,
	}
}

// Ident returns the identifier a node is emitted under: bare identifiers as
// written, quoted labels slugged.
func Ident(n parser.Name) string {
	if !n.Quoted {
		return n.Text
	}
	return slug.Make(n.Label())
}
