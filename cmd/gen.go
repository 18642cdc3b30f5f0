package cmd

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/chriserin/dspec/internal/config"
	"github.com/chriserin/dspec/internal/db"
	"github.com/chriserin/dspec/internal/expand"
	"github.com/chriserin/dspec/internal/transform"
	"github.com/chriserin/dspec/internal/ui"
)

const specExt = ".dspec"

var forceFlag bool

var genCmd = &cobra.Command{
	Use:   "gen [dirs or files...]",
	Short: "Generate Go tests from .dspec files",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return RunGen(cmd.OutOrStdout(), cfg, args, forceFlag)
	},
}

func init() {
	genCmd.Flags().BoolVarP(&forceFlag, "force", "f", false, "Regenerate files whose source is unchanged")
	rootCmd.AddCommand(genCmd)
}

func RunGen(w io.Writer, cfg config.Config, targets []string, force bool) error {
	if err := requireInit(); err != nil {
		return err
	}

	sqlDB, err := db.Open(config.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer sqlDB.Close()

	paths, err := findSpecs(targets)
	if err != nil {
		return err
	}

	files, tests := 0, 0
	for _, path := range paths {
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		pkg := cfg.Package
		if pkg == "" {
			pkg = config.InferPackage(filepath.Dir(path))
		}
		opts := transform.Options{
			Package: pkg,
			Layout:  cfg.RenderLayout(),
			Source:  filepath.Base(path),
		}
		hash := hashOf(content, opts)
		output := outputPath(path, cfg.Suffix)

		prevHash, prevOutput, found, err := db.SpecState(sqlDB, path)
		if err != nil {
			return err
		}
		if !force && found && prevHash == hash && prevOutput == output && exists(output) {
			log.WithField("file", path).Debug("unchanged, skipping")
			ui.SkpLine(w, path)
			continue
		}

		res, err := transform.Transform(path, content, opts)
		if err != nil {
			ui.ErrLine(w, err.Error())
			return fmt.Errorf("generating %s: %w", path, err)
		}

		if err := os.WriteFile(output, res.Source, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", output, err)
		}
		if err := db.RecordSpec(sqlDB, path, hash, output, testRows(path, res.Decls)); err != nil {
			return err
		}

		log.WithFields(logrus.Fields{"file": path, "output": output, "tests": res.Tests}).Debug("generated")
		ui.GenLine(w, output, res.Tests)
		files++
		tests += res.Tests
	}

	ui.SummaryLine(w, files, tests)
	return nil
}

// findSpecs expands targets into .dspec file paths. Directories are walked
// recursively, skipping hidden directories and vendor. No targets means the
// current directory.
func findSpecs(targets []string) ([]string, error) {
	if len(targets) == 0 {
		targets = []string{"."}
	}

	seen := map[string]bool{}
	var paths []string
	add := func(p string) {
		p = filepath.Clean(p)
		if !seen[p] {
			seen[p] = true
			paths = append(paths, p)
		}
	}

	for _, target := range targets {
		info, err := os.Stat(target)
		if err != nil {
			return nil, fmt.Errorf("scanning %s: %w", target, err)
		}
		if !info.IsDir() {
			add(target)
			continue
		}
		err = filepath.WalkDir(target, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if p != target && skipDir(d.Name()) {
					return filepath.SkipDir
				}
				return nil
			}
			if strings.HasSuffix(p, specExt) {
				add(p)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("scanning %s: %w", target, err)
		}
	}
	return paths, nil
}

func skipDir(name string) bool {
	return strings.HasPrefix(name, ".") || name == "vendor" || name == "testdata"
}

func outputPath(specPath, suffix string) string {
	return strings.TrimSuffix(specPath, specExt) + suffix
}

// hashOf covers the spec source and the options it is rendered with, so a
// change of layout or package also regenerates.
func hashOf(content []byte, opts transform.Options) string {
	h := sha256.New()
	h.Write(content)
	fmt.Fprintf(h, "\x00%s\x00%s", opts.Layout, opts.Package)
	return hex.EncodeToString(h.Sum(nil))
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func testRows(path string, decls []expand.Decl) []db.TestRow {
	var rows []db.TestRow
	expand.Walk(decls, func(t *expand.Test) {
		rows = append(rows, db.TestRow{
			Spec:  path,
			Scope: strings.Join(t.Path, "/"),
			Name:  t.Name,
			Async: t.Async,
			Line:  t.Pos.Line,
		})
	})
	return rows
}
