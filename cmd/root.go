package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/chriserin/dspec/internal/config"
)

var log = logrus.New()

var (
	verboseFlag bool
	layoutFlag  string
	packageFlag string
)

var rootCmd = &cobra.Command{
	Use:           "dspec",
	Short:         "dspec: nested test specs compiled to Go tests",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verboseFlag {
			log.SetLevel(logrus.DebugLevel)
		}
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading .env: %w", err)
		}
		return nil
	},
}

func init() {
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})

	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&layoutFlag, "layout", "", "Test layout: subtests or flat")
	rootCmd.PersistentFlags().StringVar(&packageFlag, "package", "", "Package clause of generated files")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

// loadConfig layers flags over the environment over .dspec/config.yaml.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(config.File)
	if err != nil {
		return cfg, err
	}
	cfg.ApplyEnv(os.LookupEnv)
	if layoutFlag != "" {
		cfg.Layout = layoutFlag
	}
	if packageFlag != "" {
		cfg.Package = packageFlag
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	log.WithFields(logrus.Fields{"layout": cfg.Layout, "package": cfg.Package, "suffix": cfg.Suffix}).Debug("configuration loaded")
	return cfg, nil
}

func requireInit() error {
	if _, err := os.Stat(config.Dir); os.IsNotExist(err) {
		return fmt.Errorf("run `dspec init` first")
	}
	return nil
}
