package parser_test

import (
	"testing"

	"github.com/chriserin/dspec/internal/parser"
)

// FuzzParse feeds random inputs to the parser to catch panics. Invalid input
// must come back as an error, never a crash or a half-built tree.
func FuzzParse(f *testing.F) {
	seeds := []string{
		`describe a {}`,
		`describe a { it b { x := 1 } }`,
		`@Parallel async describe "a" -> error { before { v := 1 } after { return nil } it b {} }`,
		`describe a { use req "github.com/stretchr/testify/require"; context b { then c {} } }`,
		`describe a { before {} before {} }`,
		`describe a { it b -> interface{ Error() string } { return nil } }`,
		`describe a { it b { for i := 0; i < 3; i++ { } } }`,
		`describe a { it b { f(] } }`,
		`@`,
		`describe`,
		"describe a {\n\t@Skip(\"x\")\n\tit b {}\n}",
	}
	for _, s := range seeds {
		f.Add(s)
	}

	f.Fuzz(func(t *testing.T, src string) {
		root, err := parser.Parse("fuzz.dspec", []byte(src))
		if err != nil && root != nil {
			t.Fatalf("got both a tree and an error: %v", err)
		}
		if err == nil && len(root.Groups) == 0 {
			t.Fatal("successful parse produced no groups")
		}
	})
}
