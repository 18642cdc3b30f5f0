package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/chriserin/dspec/internal/config"
	"github.com/chriserin/dspec/internal/db"
	"github.com/chriserin/dspec/internal/ui"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the tests generated by the last gen of each spec",
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunList(cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func RunList(w io.Writer) error {
	if err := requireInit(); err != nil {
		return err
	}

	sqlDB, err := db.Open(config.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer sqlDB.Close()

	rows, err := db.ListTests(sqlDB)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Fprintln(w, "no generated tests; run `dspec gen`")
		return nil
	}

	specWidth, scopeWidth := 0, 0
	for _, r := range rows {
		specWidth = max(specWidth, len(r.Spec))
		scopeWidth = max(scopeWidth, len(r.Scope))
	}

	for _, r := range rows {
		ui.ListRow(w, r.Spec, r.Scope, r.Name, r.Async, specWidth, scopeWidth)
	}
	return nil
}
