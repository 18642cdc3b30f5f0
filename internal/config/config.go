// Package config resolves generation settings from .dspec/config.yaml and
// the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/chriserin/dspec/internal/render"
)

const (
	Dir    = ".dspec"
	File   = ".dspec/config.yaml"
	DBPath = ".dspec/dspec.db"

	DefaultSuffix = "_dspec_test.go"
)

type Config struct {
	Layout  string `yaml:"layout"`
	Package string `yaml:"package,omitempty"` // empty: taken from the target directory
	Suffix  string `yaml:"suffix"`
}

func Default() Config {
	return Config{Layout: string(render.Subtests), Suffix: DefaultSuffix}
}

// Load reads the config file at path over the defaults. A missing file
// yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing %s: %w", path, err)
	}
	if cfg.Suffix == "" {
		cfg.Suffix = DefaultSuffix
	}
	return cfg, nil
}

func Write(path string, cfg Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// ApplyEnv overrides fields from DSPEC_LAYOUT, DSPEC_PACKAGE and
// DSPEC_SUFFIX when they are set and non-empty.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	set := func(dst *string, key string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	set(&c.Layout, "DSPEC_LAYOUT")
	set(&c.Package, "DSPEC_PACKAGE")
	set(&c.Suffix, "DSPEC_SUFFIX")
}

func (c Config) Validate() error {
	if _, err := render.ParseLayout(c.Layout); err != nil {
		return err
	}
	if !strings.HasSuffix(c.Suffix, "_test.go") {
		return fmt.Errorf("suffix %q must end in _test.go", c.Suffix)
	}
	if c.Package != "" && !isIdent(c.Package) {
		return fmt.Errorf("package %q is not a valid Go identifier", c.Package)
	}
	return nil
}

func (c Config) RenderLayout() render.Layout {
	l, _ := render.ParseLayout(c.Layout)
	return l
}

func isIdent(s string) bool {
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return s != ""
}
