// Package config loads the versync rule table and build settings.
//
// Layers, lowest precedence first: built-in defaults, the configuration
// file (TOML or YAML), VERSYNC_* environment variables, and command-line
// flags that were explicitly set.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/bcomnes/versync/internal/buildtool"
	versync "github.com/bcomnes/versync/pkg"
)

// EnvPrefix is the prefix of environment variables read into the
// configuration, e.g. VERSYNC_BUILD_COMPILER sets build.compiler.
const EnvPrefix = "VERSYNC_"

// FileNames are the configuration files looked for, in order.
var FileNames = []string{
	".versync.toml",
	"versync.toml",
	".versync.yaml",
	"versync.yaml",
	".versync.yml",
	"versync.yml",
}

// Config is the loaded configuration.
type Config struct {
	Rules []versync.RuleDef `koanf:"rule" toml:"rule" yaml:"rule"`
	Build buildtool.Config  `koanf:"build" toml:"build" yaml:"build"`

	// Path is the configuration file that was loaded, or "" if none was found.
	Path string `koanf:"-" toml:"-" yaml:"-"`
}

// Options controls Load.
type Options struct {
	// File is an explicit configuration file. When empty, Dir is searched
	// for one of FileNames.
	File string
	Dir  string

	// Flags whose names appear in FlagKeys override the matching keys
	// when they were set on the command line.
	Flags    *pflag.FlagSet
	FlagKeys map[string]string
}

// BuildFlagKeys maps the install command's flags to configuration keys.
var BuildFlagKeys = map[string]string{
	"source":         "build.source",
	"build-folder":   "build.folder",
	"generator":      "build.generator",
	"compiler":       "build.compiler",
	"build-type":     "build.config",
	"install-prefix": "build.install_prefix",
}

func defaults() map[string]interface{} {
	d := buildtool.DefaultConfig()
	return map[string]interface{}{
		"build.source":    d.Source,
		"build.folder":    d.Folder,
		"build.generator": d.Generator,
		"build.compiler":  d.Compiler,
	}
}

// Load builds the configuration. A missing file is only an error when it
// was named explicitly; otherwise the returned Config has an empty Path and
// no rules.
func Load(opts Options) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	path := opts.File
	if path == "" {
		path = Find(opts.Dir)
	} else if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	if path != "" {
		parser, err := parserFor(path)
		if err != nil {
			return nil, err
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	}

	// VERSYNC_BUILD_INSTALL_PREFIX -> build.install_prefix
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "_", ".", 1)
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if opts.Flags != nil && len(opts.FlagKeys) > 0 {
		if err := k.Load(posflag.ProviderWithFlag(opts.Flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			key, ok := opts.FlagKeys[f.Name]
			if !ok || !f.Changed {
				return "", nil
			}
			return key, posflag.FlagVal(opts.Flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.Path = path
	return &cfg, nil
}

// Parse decodes configuration bytes in the given format ("toml" or "yaml")
// without defaults, environment or flags.
func Parse(data []byte, format string) (*Config, error) {
	parser, err := parserFor("config." + format)
	if err != nil {
		return nil, err
	}
	k := koanf.New(".")
	if err := k.Load(&rawBytesProvider{bytes: data}, parser); err != nil {
		return nil, fmt.Errorf("failed to parse %s config: %w", format, err)
	}
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	return &cfg, nil
}

// Find returns the first of FileNames present in dir, or "".
func Find(dir string) string {
	if dir == "" {
		dir = "."
	}
	for _, name := range FileNames {
		candidate := filepath.Join(dir, name)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
	}
	return ""
}

func parserFor(path string) (koanf.Parser, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return toml.Parser(), nil
	case ".yaml", ".yml":
		return yaml.Parser(), nil
	default:
		return nil, fmt.Errorf("unsupported config format %q (want .toml, .yaml or .yml)", filepath.Ext(path))
	}
}

// Found reports whether a configuration file was loaded.
func (c *Config) Found() bool {
	return c.Path != ""
}

// BaseDir is the directory relative rule paths are resolved against.
func (c *Config) BaseDir() string {
	if c.Path == "" {
		return "."
	}
	return filepath.Dir(c.Path)
}

// ResolvedRules returns the rule definitions with relative paths joined to
// BaseDir.
func (c *Config) ResolvedRules() []versync.RuleDef {
	base := c.BaseDir()
	out := make([]versync.RuleDef, len(c.Rules))
	for i, r := range c.Rules {
		if r.Path != "" && !filepath.IsAbs(r.Path) {
			r.Path = filepath.Join(base, r.Path)
		}
		out[i] = r
	}
	return out
}

// ErrNoRules is returned by RuleTable when the configuration has no rules.
var ErrNoRules = errors.New("configuration defines no rules")

// RuleTable validates the resolved rules.
func (c *Config) RuleTable() (*versync.RuleTable, error) {
	if len(c.Rules) == 0 {
		if c.Path == "" {
			return nil, fmt.Errorf("%w: no config file found (looked for %s)", ErrNoRules, strings.Join(FileNames, ", "))
		}
		return nil, fmt.Errorf("%w in %s", ErrNoRules, c.Path)
	}
	return versync.NewRuleTable(c.ResolvedRules())
}
