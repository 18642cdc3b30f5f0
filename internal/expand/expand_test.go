package expand

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chriserin/dspec/internal/parser"
)

func expandSource(t *testing.T, src string) []Decl {
	t.Helper()
	root, err := parser.Parse("test.dspec", []byte(src))
	require.NoError(t, err)
	return Expand(root)
}

func findTest(t *testing.T, decls []Decl, name string) *Test {
	t.Helper()
	var found *Test
	Walk(decls, func(tt *Test) {
		if tt.Name == name {
			found = tt
		}
	})
	require.NotNil(t, found, "test %q not generated", name)
	return found
}

func texts(frags []parser.Fragment) []string {
	var out []string
	for _, f := range frags {
		out = append(out, f.Text)
	}
	return out
}

func attrNames(attrs []parser.Attribute) []string {
	var out []string
	for _, a := range attrs {
		out = append(out, a.Name)
	}
	return out
}

func TestExpand_SetupPrependedToBody(t *testing.T) {
	decls := expandSource(t, `describe "outer" {
	before { v := 1 }
	it "a" { assert(v == 1) }
}`)
	a := findTest(t, decls, "a")
	assert.Equal(t, []string{"v := 1", "assert(v == 1)"}, texts(a.Body))
}

func TestExpand_NestedSetupOrder(t *testing.T) {
	decls := expandSource(t, `describe "outer" {
	before { v := 1 }
	describe "inner" {
		before { w := 2 }
		it "b" { assert(v+1 == w) }
	}
}`)
	require.Len(t, decls, 1)
	outer := decls[0].(*Scope)
	assert.Equal(t, "outer", outer.Name)
	require.Len(t, outer.Children, 1)
	inner := outer.Children[0].(*Scope)
	assert.Equal(t, "inner", inner.Name)

	b := findTest(t, decls, "b")
	assert.Equal(t, []string{"outer", "inner"}, b.Path)
	assert.Equal(t, []string{"v := 1", "w := 2", "assert(v+1 == w)"}, texts(b.Body))
}

func TestExpand_TeardownAppendedToBody(t *testing.T) {
	decls := expandSource(t, `describe "g" {
	after { log("end") }
	it "c" { x = 1 }
}`)
	c := findTest(t, decls, "c")
	assert.Equal(t, []string{"x = 1", `log("end")`}, texts(c.Body))
}

func TestExpand_TeardownReverseOfSetup(t *testing.T) {
	decls := expandSource(t, `describe g1 {
	before { s1() }
	after { t1() }
	describe g2 {
		before { s2() }
		after { t2() }
		describe g3 {
			before { s3() }
			after { t3() }
			it leaf { body() }
		}
	}
}`)
	leaf := findTest(t, decls, "leaf")
	assert.Equal(t, []string{"s1()", "s2()", "s3()", "body()", "t3()", "t2()", "t1()"}, texts(leaf.Body))
}

func TestExpand_GroupWithoutSetupPassesInheritedThrough(t *testing.T) {
	decls := expandSource(t, `describe g1 {
	before { s1() }
	after { t1() }
	describe g2 {
		describe g3 {
			before { s3() }
			it leaf { body() }
		}
	}
}`)
	leaf := findTest(t, decls, "leaf")
	assert.Equal(t, []string{"s1()", "s3()", "body()", "t1()"}, texts(leaf.Body))
}

func TestExpand_SetupOnlyAffectsDescendants(t *testing.T) {
	decls := expandSource(t, `describe g {
	it before_nested { a() }
	describe nested {
		before { s() }
		it inside { b() }
	}
	it after_nested { c() }
}`)
	assert.Equal(t, []string{"a()"}, texts(findTest(t, decls, "before_nested").Body))
	assert.Equal(t, []string{"s()", "b()"}, texts(findTest(t, decls, "inside").Body))
	assert.Equal(t, []string{"c()"}, texts(findTest(t, decls, "after_nested").Body))
}

func TestExpand_ReturnTypeFallthrough(t *testing.T) {
	decls := expandSource(t, `describe "g" -> ResultType {
	it "a" { return Ok }
	it "b" -> OtherType { return Ok }
	describe nested -> NestedType {
		it "c" { return Ok }
	}
}`)
	a := findTest(t, decls, "a")
	require.NotNil(t, a.ReturnType)
	assert.Equal(t, "ResultType", a.ReturnType.Text)
	assert.Equal(t, "OtherType", findTest(t, decls, "b").ReturnType.Text)
	assert.Equal(t, "NestedType", findTest(t, decls, "c").ReturnType.Text)
}

func TestExpand_NoReturnTypeAnywhere(t *testing.T) {
	decls := expandSource(t, `describe g { it c {} }`)
	assert.Nil(t, findTest(t, decls, "c").ReturnType)
}

func TestExpand_AsyncIsSticky(t *testing.T) {
	decls := expandSource(t, `async describe "g" {
	it "c" { await(x) }
	describe nested {
		it deep {}
	}
}
describe other {
	it sync_case {}
	async it own {}
}`)
	assert.True(t, findTest(t, decls, "c").Async)
	assert.True(t, findTest(t, decls, "deep").Async)
	assert.False(t, findTest(t, decls, "sync_case").Async)
	assert.True(t, findTest(t, decls, "own").Async)
}

func TestExpand_MarkerOnlyOnSyncTests(t *testing.T) {
	decls := expandSource(t, `describe g {
	@Parallel
	it sync_case {}
	@Parallel
	async it async_case {}
}`)
	syncCase := findTest(t, decls, "sync_case")
	require.Len(t, syncCase.Attributes, 2)
	assert.True(t, IsMarker(syncCase.Attributes[0]))
	assert.Equal(t, "Parallel", syncCase.Attributes[1].Name)

	asyncCase := findTest(t, decls, "async_case")
	assert.Equal(t, []string{"Parallel"}, attrNames(asyncCase.Attributes))
	assert.False(t, IsMarker(asyncCase.Attributes[0]))
}

func TestExpand_AttributeOrder(t *testing.T) {
	decls := expandSource(t, `@A1
describe g1 {
	@B1 @B2
	describe g2 {
		@C1
		it leaf {}
	}
}`)
	leaf := findTest(t, decls, "leaf")
	assert.Equal(t, []string{MarkerAttribute, "A1", "B1", "B2", "C1"}, attrNames(leaf.Attributes))
}

func TestExpand_UserTestAttributeIsNotTheMarker(t *testing.T) {
	decls := expandSource(t, `describe g { @Test async it c {} }`)
	c := findTest(t, decls, "c")
	require.Len(t, c.Attributes, 1)
	assert.False(t, IsMarker(c.Attributes[0]))
}

func TestExpand_ImportsForwardedToNestedScopes(t *testing.T) {
	decls := expandSource(t, `describe g1 {
	use "strconv"
	describe g2 {
		use req "github.com/stretchr/testify/require"
		describe g3 {}
	}
}`)
	g1 := decls[0].(*Scope)
	g2 := g1.Children[0].(*Scope)
	g3 := g2.Children[0].(*Scope)

	paths := func(s *Scope) []string {
		var out []string
		for _, imp := range s.Imports {
			out = append(out, imp.Path)
		}
		return out
	}
	assert.Equal(t, []string{`"strconv"`}, paths(g1))
	assert.Equal(t, []string{`"strconv"`, `"github.com/stretchr/testify/require"`}, paths(g2))
	assert.Equal(t, paths(g2), paths(g3))
}

func TestExpand_EmptyGroupYieldsEmptyScope(t *testing.T) {
	decls := expandSource(t, `describe outer { describe inner { before { v := 1 } } }`)
	outer := decls[0].(*Scope)
	inner := outer.Children[0].(*Scope)
	assert.Empty(t, inner.Children)
	assert.Equal(t, 0, CountTests(decls))
}

func TestExpand_QuotedNamesAreSlugged(t *testing.T) {
	decls := expandSource(t, `describe "Adds numbers" { it "handles zero!" {} it plainName {} }`)
	scope := decls[0].(*Scope)
	assert.Equal(t, "adds_numbers", scope.Name)
	assert.Equal(t, "Adds numbers", scope.Label)

	z := findTest(t, decls, "handles_zero")
	assert.Equal(t, "handles zero!", z.Label)
	findTest(t, decls, "plainName")
}

func TestExpand_PlacementOfSetupIsIrrelevant(t *testing.T) {
	first := expandSource(t, `describe g { before { s() } after { t() } it c { b() } }`)
	last := expandSource(t, `describe g { it c { b() } after { t() } before { s() } }`)
	assert.Equal(t, texts(findTest(t, first, "c").Body), texts(findTest(t, last, "c").Body))
}

func TestExpand_DoesNotMutateTree(t *testing.T) {
	src := `@A describe g { before { s() } after { t() } describe n { before { s2() } it c { b() } } }`
	root, err := parser.Parse("test.dspec", []byte(src))
	require.NoError(t, err)
	pristine, err := parser.Parse("test.dspec", []byte(src))
	require.NoError(t, err)

	first := Expand(root)
	second := Expand(root)

	if diff := cmp.Diff(pristine, root); diff != "" {
		t.Errorf("tree mutated (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("expansion not repeatable (-first +second):\n%s", diff)
	}
}

func TestExpand_FlatTreeIsIdentity(t *testing.T) {
	root, err := parser.Parse("test.dspec", []byte(`describe g {
	@Skip("x")
	it a -> error { return nil }
	async it b { work() }
}`))
	require.NoError(t, err)

	decls := Expand(root)
	g := root.Groups[0]
	for i, child := range g.Children {
		c := child.(*parser.Case)
		got := decls[0].(*Scope).Children[i].(*Test)

		own := c.Attributes
		if !c.Async {
			own = append([]parser.Attribute{{Name: MarkerAttribute}}, own...)
		}
		want := &Test{
			Name:       c.Name.Text,
			Label:      c.Name.Label(),
			Path:       []string{"g"},
			Attributes: own,
			Async:      c.Async,
			ReturnType: c.ReturnType,
			Body:       c.Body.Stmts,
			Pos:        c.Pos,
		}
		if diff := cmp.Diff(want, got, cmpopts.EquateEmpty()); diff != "" {
			t.Errorf("case %s (-want +got):\n%s", c.Name.Text, diff)
		}
	}
}

func TestExpand_ContextFoldsWithoutAliasing(t *testing.T) {
	parent := Context{Setup: make([]parser.Fragment, 1, 8)}
	parent.Setup[0] = parser.Fragment{Text: "s0()"}

	a := &parser.Group{Setup: &parser.Block{Stmts: []parser.Fragment{{Text: "a()"}}}}
	b := &parser.Group{Setup: &parser.Block{Stmts: []parser.Fragment{{Text: "b()"}}}}

	ctxA := parent.enter(a, "a")
	ctxB := parent.enter(b, "b")

	assert.Equal(t, []string{"s0()", "a()"}, texts(ctxA.Setup))
	assert.Equal(t, []string{"s0()", "b()"}, texts(ctxB.Setup))
	assert.Len(t, parent.Setup, 1)
}
