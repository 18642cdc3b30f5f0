package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/chriserin/dspec/internal/config"
	"github.com/chriserin/dspec/internal/transform"
)

var transformCmd = &cobra.Command{
	Use:   "transform [file]",
	Short: "Print the Go test source generated from one .dspec file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		file := ""
		if len(args) == 1 {
			file = args[0]
		}
		return RunTransform(cmd.OutOrStdout(), cmd.InOrStdin(), cfg, file)
	},
}

func init() {
	rootCmd.AddCommand(transformCmd)
}

// RunTransform reads file, or r when file is empty, and writes the
// generated source to w.
func RunTransform(w io.Writer, r io.Reader, cfg config.Config, file string) error {
	var (
		content []byte
		err     error
		name    = "<stdin>"
		dir     = "."
	)
	if file == "" {
		content, err = io.ReadAll(r)
	} else {
		content, err = os.ReadFile(file)
		name = file
		dir = filepath.Dir(file)
	}
	if err != nil {
		return fmt.Errorf("reading %s: %w", name, err)
	}

	pkg := cfg.Package
	if pkg == "" {
		pkg = config.InferPackage(dir)
	}
	source := ""
	if file != "" {
		source = filepath.Base(file)
	}

	res, err := transform.Transform(name, content, transform.Options{
		Package: pkg,
		Layout:  cfg.RenderLayout(),
		Source:  source,
	})
	if err != nil {
		return err
	}
	_, err = w.Write(res.Source)
	return err
}
