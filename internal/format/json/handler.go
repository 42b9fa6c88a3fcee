// Package json provides a JSON listing handler for declair.
package json

import (
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/iancoleman/orderedmap"
	"github.com/timasoft/declair/internal/format"
)

// Handler implements format.Handler for JSON/JSONC files.
type Handler struct {
	// Indent is the indentation string, two spaces when empty.
	Indent string
}

// New creates a new JSON handler.
func New() *Handler {
	return &Handler{}
}

// commentRegex matches single-line // comments.
var commentRegex = regexp.MustCompile(`(?m)^\s*//.*$|//[^"]*$`)

// StripComments removes single-line // comments from JSON.
// This allows parsing JSONC (JSON with comments) files.
func StripComments(data []byte) []byte {
	return commentRegex.ReplaceAll(data, nil)
}

// Encode writes {"source": ..., "packages": [...]} with keys in that order.
func (h *Handler) Encode(l format.Listing) ([]byte, error) {
	indent := h.Indent
	if indent == "" {
		indent = "  "
	}

	packages := l.Packages
	if packages == nil {
		packages = []string{}
	}
	om := orderedmap.New()
	om.SetEscapeHTML(false)
	om.Set("source", l.Source)
	om.Set("packages", packages)

	data, err := json.MarshalIndent(om, "", indent)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize JSON: %w", err)
	}
	// Add trailing newline
	return append(data, '\n'), nil
}

// Decode accepts either a listing object or a bare array of package
// names. Comments are stripped first.
func (h *Handler) Decode(data []byte) (format.Listing, error) {
	data = StripComments(data)

	var bare []string
	if err := json.Unmarshal(data, &bare); err == nil {
		return format.Listing{Packages: format.CleanPackages(bare)}, nil
	}

	om := orderedmap.New()
	if err := json.Unmarshal(data, om); err != nil {
		return format.Listing{}, fmt.Errorf("failed to parse JSON: %w", err)
	}

	var l format.Listing
	if v, ok := om.Get("source"); ok {
		s, ok := v.(string)
		if !ok {
			return format.Listing{}, fmt.Errorf("\"source\" is %T, want string", v)
		}
		l.Source = s
	}

	v, ok := om.Get("packages")
	if !ok {
		return format.Listing{}, fmt.Errorf("missing \"packages\" key")
	}
	items, ok := v.([]any)
	if !ok {
		return format.Listing{}, fmt.Errorf("\"packages\" is %T, want array", v)
	}
	names := make([]string, 0, len(items))
	for i, item := range items {
		s, ok := item.(string)
		if !ok {
			return format.Listing{}, fmt.Errorf("packages[%d] is %T, want string", i, item)
		}
		names = append(names, s)
	}
	l.Packages = format.CleanPackages(names)
	return l, nil
}

// Ensure Handler implements format.Handler.
var _ format.Handler = (*Handler)(nil)
