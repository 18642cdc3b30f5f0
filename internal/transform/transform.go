// Package transform is the single entry point from .dspec source to Go test
// source: lex, parse, expand, render.
package transform

import (
	"github.com/chriserin/dspec/internal/expand"
	"github.com/chriserin/dspec/internal/parser"
	"github.com/chriserin/dspec/internal/render"
)

type Options = render.Options

type Result struct {
	Source []byte
	Decls  []expand.Decl
	Tests  int
}

// Transform converts one .dspec file. It either returns the complete
// generated file or a single error: a *parser.ParseError for lex, syntax
// and structural problems, or a *render.Error when the emitted code does
// not format.
func Transform(filename string, content []byte, opts Options) (*Result, error) {
	decls, err := Check(filename, content)
	if err != nil {
		return nil, err
	}
	if opts.Source == "" {
		opts.Source = filename
	}
	out, err := render.Go(decls, opts)
	if err != nil {
		return nil, err
	}
	return &Result{Source: out, Decls: decls, Tests: expand.CountTests(decls)}, nil
}

// Check parses and expands without rendering.
func Check(filename string, content []byte) ([]expand.Decl, error) {
	root, err := parser.Parse(filename, content)
	if err != nil {
		return nil, err
	}
	return expand.Expand(root), nil
}
