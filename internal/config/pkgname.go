package config

import (
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/chriserin/dspec/internal/slug"
)

// InferPackage picks the package for tests generated into dir: the package
// of the directory's non-test Go files, else that of its test files, else
// a name derived from the directory itself.
func InferPackage(dir string) string {
	entries, err := os.ReadDir(dir)
	if err == nil {
		var names []string
		for _, e := range entries {
			if !e.IsDir() && strings.HasSuffix(e.Name(), ".go") {
				names = append(names, e.Name())
			}
		}
		sort.SliceStable(names, func(i, j int) bool {
			return !isTestFile(names[i]) && isTestFile(names[j])
		})
		fset := token.NewFileSet()
		for _, name := range names {
			f, err := parser.ParseFile(fset, filepath.Join(dir, name), nil, parser.PackageClauseOnly)
			if err == nil {
				return f.Name.Name
			}
		}
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		abs = dir
	}
	return slug.Make(filepath.Base(abs))
}

func isTestFile(name string) bool {
	return strings.HasSuffix(name, "_test.go")
}
