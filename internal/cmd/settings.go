package cmd

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/timasoft/declair/internal/config"
	"github.com/timasoft/declair/internal/format"
	formatini "github.com/timasoft/declair/internal/format/ini"
	formatjson "github.com/timasoft/declair/internal/format/json"
	"github.com/timasoft/declair/internal/format/plaintext"
	formattoml "github.com/timasoft/declair/internal/format/toml"
)

// settings is the resolved configuration of one invocation.
type settings struct {
	cfg     *config.Config
	nixFile string
}

// configPath returns --config-file or the default config location.
func configPath() (string, error) {
	if configFile != "" {
		return config.ExpandPath(configFile)
	}
	return config.DefaultPath()
}

// loadSettings loads the config file, applies --config and resolves the
// Nix file to edit. A missing config file is only tolerated when --config
// names the Nix file.
func loadSettings() (*settings, error) {
	path, err := configPath()
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(path)
	if err != nil {
		if !errors.Is(err, config.ErrNotExist) || nixPath == "" {
			return nil, err
		}
		logger.Debug("no config file, using defaults", "path", path)
		cfg = config.Default()
	}
	if nixPath != "" {
		cfg.NixPath = nixPath
	}

	expanded, err := config.ExpandPath(cfg.NixPath)
	if err != nil {
		return nil, err
	}
	nixFile, err := config.ResolveNixFile(expanded)
	if err != nil {
		return nil, fmt.Errorf("failed to use path %s: %w", expanded, err)
	}
	logger.Debug("resolved nix file", "path", nixFile, "config", path)

	return &settings{cfg: cfg, nixFile: nixFile}, nil
}

// handlerFor returns the listing handler for a format name. comment is
// the comment prefix, or preset name, of txt listings.
func handlerFor(name, comment string) (format.Handler, error) {
	switch strings.ToLower(name) {
	case "txt", "text":
		return plaintext.New(plaintext.ResolveCommentPrefix(comment)), nil
	case "plain":
		return plaintext.New(""), nil
	case "json", "jsonc":
		return formatjson.New(), nil
	case "toml":
		return formattoml.New(), nil
	case "ini":
		return formatini.New(), nil
	default:
		return nil, fmt.Errorf("unsupported format %q (want json, toml, ini or txt)", name)
	}
}

// handlerForPath picks the listing handler from a file extension.
func handlerForPath(p, comment string) (format.Handler, error) {
	ext := strings.TrimPrefix(filepath.Ext(p), ".")
	if ext == "" {
		return nil, fmt.Errorf("cannot detect the format of %s: no file extension", p)
	}
	return handlerFor(ext, comment)
}
