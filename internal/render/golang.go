// Package render prints expanded declarations as Go test source.
package render

import (
	"fmt"
	"go/format"
	"strconv"
	"strings"

	gfn "github.com/panyam/goutils/fn"

	"github.com/chriserin/dspec/internal/expand"
	"github.com/chriserin/dspec/internal/parser"
	"github.com/chriserin/dspec/internal/slug"
)

type Layout string

const (
	// Subtests emits one Test function per root group with t.Run for
	// everything nested inside it.
	Subtests Layout = "subtests"
	// Flat emits one Test function per test, named after its scope path.
	Flat Layout = "flat"
)

func ParseLayout(s string) (Layout, error) {
	switch Layout(strings.ToLower(strings.TrimSpace(s))) {
	case Subtests, "":
		return Subtests, nil
	case Flat:
		return Flat, nil
	}
	return "", fmt.Errorf("unknown layout %q (want %q or %q)", s, Subtests, Flat)
}

type Options struct {
	Package string
	Layout  Layout
	Source  string // name of the spec file, mentioned in the generated header
}

// Error is returned when the generated code cannot be formatted, which
// means a fragment was not valid Go. Source holds the unformatted output.
type Error struct {
	Source []byte
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("formatting generated code: %v", e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Go renders decls as a complete, gofmt'ed _test.go file.
//
// Registration follows the testing package: the marker attribute becomes a
// Test function or a t.Run call, async tests call t.Parallel first, every
// other attribute @Name(args) becomes t.Name(args), and a test with a return
// type runs its body in a closure whose non-nil result fails the test.
func Go(decls []expand.Decl, opts Options) ([]byte, error) {
	if opts.Package == "" {
		opts.Package = "main"
	}
	if opts.Layout == "" {
		opts.Layout = Subtests
	}

	w := &writer{}
	if opts.Source != "" {
		w.line("// Code generated by dspec from %s. DO NOT EDIT.", opts.Source)
	} else {
		w.line("// Code generated by dspec. DO NOT EDIT.")
	}
	w.line("")
	w.line("package %s", opts.Package)
	if opts.Layout == Flat && expand.CountTests(decls) == 0 {
		return format.Source([]byte(w.String()))
	}
	w.line("")
	w.line("import (")
	w.line("%q", "testing")
	for _, spec := range Imports(decls) {
		w.line("%s", spec)
	}
	w.line(")")

	switch opts.Layout {
	case Flat:
		expand.Walk(decls, func(t *expand.Test) {
			w.line("")
			w.line("func %s(t *testing.T) {", FlatName(t))
			writeTest(w, t)
			w.line("}")
		})
	default:
		for _, d := range decls {
			w.line("")
			switch d := d.(type) {
			case *expand.Scope:
				w.line("func Test%s(t *testing.T) {", slug.Pascal(d.Name))
				writeChildren(w, d.Children)
				w.line("}")
			case *expand.Test:
				w.line("func Test%s(t *testing.T) {", slug.Pascal(d.Name))
				writeTest(w, d)
				w.line("}")
			}
		}
	}

	raw := []byte(w.String())
	out, err := format.Source(raw)
	if err != nil {
		return nil, &Error{Source: raw, Err: err}
	}
	return out, nil
}

// Imports returns the distinct import specs of every scope that has tests
// beneath it, in first-seen order. Go imports are file scoped, so the
// per-scope re-declarations collapse into the single import block. A scope
// without tests contributes nothing, since no generated code could use its
// imports. "testing" is always imported and is left out.
func Imports(decls []expand.Decl) []string {
	seen := map[string]bool{strconv.Quote("testing"): true}
	var specs []string
	var visit func([]expand.Decl)
	visit = func(ds []expand.Decl) {
		for _, d := range ds {
			scope, ok := d.(*expand.Scope)
			if !ok || expand.CountTests(scope.Children) == 0 {
				continue
			}
			for _, spec := range gfn.Map(scope.Imports, importSpec) {
				if !seen[spec] {
					seen[spec] = true
					specs = append(specs, spec)
				}
			}
			visit(scope.Children)
		}
	}
	visit(decls)
	return specs
}

func importSpec(imp parser.Import) string {
	if imp.Alias == "" {
		return imp.Path
	}
	return imp.Alias + " " + imp.Path
}

// FlatName is the Test function name a test gets in the flat layout.
func FlatName(t *expand.Test) string {
	parts := gfn.Map(append(append([]string{}, t.Path...), t.Name), slug.Pascal)
	return "Test" + strings.Join(parts, "_")
}

func writeChildren(w *writer, children []expand.Decl) {
	for _, child := range children {
		switch child := child.(type) {
		case *expand.Scope:
			w.line("t.Run(%q, func(t *testing.T) {", child.Name)
			writeChildren(w, child.Children)
			w.line("})")
		case *expand.Test:
			w.line("t.Run(%q, func(t *testing.T) {", child.Name)
			writeTest(w, child)
			w.line("})")
		}
	}
}

func writeTest(w *writer, t *expand.Test) {
	if t.Async {
		w.line("t.Parallel()")
	}
	for _, call := range attributeCalls(t.Attributes, t.Async) {
		w.line("%s", call)
	}
	if t.ReturnType == nil {
		writeStmts(w, t.Body)
		return
	}
	w.line("if err := func() %s {", t.ReturnType.Text)
	writeStmts(w, t.Body)
	w.line("}(); err != nil {")
	w.line("t.Fatal(err)")
	w.line("}")
}

// attributeCalls renders attrs as calls on t. An async test already calls
// t.Parallel, which panics when called twice.
func attributeCalls(attrs []parser.Attribute, async bool) []string {
	var calls []string
	for _, a := range attrs {
		if expand.IsMarker(a) || (async && a.Name == "Parallel") {
			continue
		}
		args := ""
		if a.Args != nil {
			args = a.Args.Text
		}
		calls = append(calls, fmt.Sprintf("t.%s(%s)", a.Name, args))
	}
	return calls
}

func writeStmts(w *writer, stmts []parser.Fragment) {
	for _, s := range stmts {
		w.line("%s", s.Text)
	}
}

type writer struct {
	strings.Builder
}

func (w *writer) line(format string, args ...any) {
	fmt.Fprintf(&w.Builder, format, args...)
	w.WriteByte('\n')
}
