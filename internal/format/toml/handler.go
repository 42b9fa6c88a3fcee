// Package toml provides a TOML listing handler for declair.
package toml

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/timasoft/declair/internal/format"
)

// Handler implements format.Handler for TOML files.
type Handler struct{}

// New creates a new TOML handler.
func New() *Handler {
	return &Handler{}
}

// Encode writes the listing as top-level source and packages keys.
func (h *Handler) Encode(l format.Listing) ([]byte, error) {
	if l.Packages == nil {
		l.Packages = []string{}
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(l); err != nil {
		return nil, fmt.Errorf("failed to serialize TOML: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode reads a listing. Keys other than source and packages are
// rejected.
func (h *Handler) Decode(data []byte) (format.Listing, error) {
	var l format.Listing
	meta, err := toml.Decode(string(data), &l)
	if err != nil {
		return format.Listing{}, FormatError(err)
	}
	if !meta.IsDefined("packages") {
		return format.Listing{}, fmt.Errorf("missing \"packages\" key")
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return format.Listing{}, fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	l.Packages = format.CleanPackages(l.Packages)
	return l, nil
}

// FormatError returns a detailed error message for TOML parse errors.
func FormatError(err error) error {
	// BurntSushi/toml errors include line numbers in the message
	if strings.Contains(err.Error(), "line ") {
		return fmt.Errorf("TOML parse error: %w", err)
	}
	return fmt.Errorf("failed to parse TOML: %w", err)
}

// Ensure Handler implements format.Handler.
var _ format.Handler = (*Handler)(nil)
