package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/chriserin/dspec/internal/expand"
	"github.com/chriserin/dspec/internal/transform"
	"github.com/chriserin/dspec/internal/ui"
)

var checkCmd = &cobra.Command{
	Use:   "check [dirs or files...]",
	Short: "Parse and expand .dspec files without writing anything",
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunCheck(cmd.OutOrStdout(), args)
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

// RunCheck reports every failing file rather than stopping at the first.
func RunCheck(w io.Writer, targets []string) error {
	paths, err := findSpecs(targets)
	if err != nil {
		return err
	}

	tests, failed := 0, 0
	for _, path := range paths {
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		decls, err := transform.Check(path, content)
		if err != nil {
			ui.ErrLine(w, err.Error())
			failed++
			continue
		}
		n := expand.CountTests(decls)
		log.WithField("file", path).WithField("tests", n).Debug("checked")
		ui.OkLine(w, path, n)
		tests += n
	}

	ui.CheckSummaryLine(w, len(paths), tests, failed)
	if failed > 0 {
		return fmt.Errorf("%d of %d files have errors", failed, len(paths))
	}
	return nil
}
