// Package ini provides an INI listing handler for declair.
package ini

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/timasoft/declair/internal/format"
	"gopkg.in/ini.v1"
)

// Section holds the listing keys.
const Section = "declair"

// Handler implements format.Handler for INI files.
//
// Structure:
//
//	[declair]
//	source   = /etc/nixos/configuration.nix
//	packages = git, vim
type Handler struct{}

// New creates a new INI handler.
func New() *Handler {
	return &Handler{}
}

// Encode writes the listing with packages joined by commas.
func (h *Handler) Encode(l format.Listing) ([]byte, error) {
	cfg := ini.Empty()
	section, err := cfg.NewSection(Section)
	if err != nil {
		return nil, fmt.Errorf("failed to create section %q: %w", Section, err)
	}
	if _, err := section.NewKey("source", l.Source); err != nil {
		return nil, fmt.Errorf("failed to create key %q: %w", "source", err)
	}
	if _, err := section.NewKey("packages", strings.Join(l.Packages, ", ")); err != nil {
		return nil, fmt.Errorf("failed to create key %q: %w", "packages", err)
	}

	var buf bytes.Buffer
	if _, err := cfg.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to serialize INI: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode reads the [declair] section.
func (h *Handler) Decode(data []byte) (format.Listing, error) {
	cfg, err := ini.Load(data)
	if err != nil {
		return format.Listing{}, fmt.Errorf("failed to parse INI: %w", err)
	}

	section, err := cfg.GetSection(Section)
	if err != nil {
		return format.Listing{}, fmt.Errorf("missing [%s] section", Section)
	}
	if !section.HasKey("packages") {
		return format.Listing{}, fmt.Errorf("missing \"packages\" key in [%s]", Section)
	}

	return format.Listing{
		Source:   section.Key("source").String(),
		Packages: format.CleanPackages(section.Key("packages").Strings(",")),
	}, nil
}

// Ensure Handler implements format.Handler.
var _ format.Handler = (*Handler)(nil)
