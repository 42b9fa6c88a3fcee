// Package config provides configuration file handling for declair.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/timasoft/declair/internal/fsops"
	"github.com/timasoft/declair/internal/nixfile"
)

// FileName is the name of the config file inside the config directory.
const FileName = "config.toml"

// Candidates are the files looked up, in order, when nix_path names a
// directory.
var Candidates = []string{
	"configuration.nix",
	"flake.nix",
	"default.nix",
	"home.nix",
	"pkgs.nix",
}

// ErrNotExist is returned by Load when the config file is missing.
var ErrNotExist = errors.New("config file does not exist")

// Config represents the declair config.toml file.
type Config struct {
	// NixPath is the Nix file, or a directory holding one of Candidates.
	NixPath string `toml:"nix_path"`
	// AutoRebuild switches the configuration after a change.
	AutoRebuild bool `toml:"auto_rebuild"`
	// HomeManager rebuilds with home-manager instead of nixos-rebuild.
	HomeManager bool `toml:"home_manager"`
	// Flake passes --flake . to the rebuild command.
	Flake bool `toml:"flake"`

	OptionNamespace string `toml:"option_namespace,omitempty"`
	OptionField     string `toml:"option_field,omitempty"`
	// OptionPackages lists packages known to have an enable option.
	OptionPackages []string `toml:"option_packages,omitempty"`
	// Representation is "list" or "option".
	Representation string `toml:"representation,omitempty"`
}

// Default returns the config used when none is stored.
func Default() *Config {
	return &Config{
		NixPath:         "/etc/nixos",
		OptionNamespace: "programs",
		OptionField:     "enable",
		Representation:  "list",
	}
}

// Dir returns the declair config directory.
func Dir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get config directory: %w", err)
	}
	return filepath.Join(base, "declair"), nil
}

// DefaultPath returns the path of the config file.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, FileName), nil
}

// Load reads a Config from a file. Missing optional fields take their
// default values.
func Load(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s (run `declair init`)", ErrNotExist, filename)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	cfg.NixPath = ""
	meta, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", filename, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("unknown keys in config file %s: %s", filename, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", filename, err)
	}
	return cfg, nil
}

// Save writes the Config to a file, creating its directory.
func (c *Config) Save(filename string) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := fsops.NewRealFS().AtomicWrite(filename, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate checks field values.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.NixPath) == "" {
		return errors.New("nix_path is empty")
	}
	switch c.Representation {
	case "", "list", "option":
	default:
		return fmt.Errorf("representation must be list or option, got %q", c.Representation)
	}
	return c.OptionSpec().Validate()
}

// OptionSpec returns the option declaration shape.
func (c *Config) OptionSpec() nixfile.OptionSpec {
	spec := nixfile.DefaultOptionSpec()
	if c.OptionNamespace != "" {
		spec.Namespace = c.OptionNamespace
	}
	if c.OptionField != "" {
		spec.Field = c.OptionField
	}
	return spec
}

// ExpandPath replaces a leading "~" with the user's home directory.
func ExpandPath(p string) (string, error) {
	p = strings.TrimSpace(p)
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~")), nil
}

// ResolveNixFile returns p when it is a file, or the first of Candidates
// inside p when it is a directory.
func ResolveNixFile(p string) (string, error) {
	info, err := os.Stat(p)
	if err != nil {
		return "", fmt.Errorf("file or directory %s not found: %w", p, err)
	}
	if !info.IsDir() {
		return p, nil
	}

	for _, name := range Candidates {
		candidate := filepath.Join(p, name)
		if fi, err := os.Stat(candidate); err == nil && fi.Mode().IsRegular() {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("directory %s does not contain any of %s", p, strings.Join(Candidates, ", "))
}
