// Package plaintext provides a handler for line-based package listings:
// one package per line, with optional comments.
package plaintext

import (
	"fmt"
	"strings"

	"github.com/timasoft/declair/internal/format"
)

// sourceMarker introduces the header comment naming the source file.
const sourceMarker = "source:"

// Handler implements format.Handler for plaintext files.
type Handler struct {
	// CommentPrefix starts comment lines and trailing comments. When empty,
	// Encode writes no header and Decode treats every non-blank line as a
	// package.
	CommentPrefix string
}

// New creates a new plaintext handler with the given comment prefix.
func New(commentPrefix string) *Handler {
	return &Handler{CommentPrefix: commentPrefix}
}

// Encode writes one package per line after a "<prefix> source: <file>"
// header.
func (h *Handler) Encode(l format.Listing) ([]byte, error) {
	var sb strings.Builder
	if h.CommentPrefix != "" && l.Source != "" {
		fmt.Fprintf(&sb, "%s %s %s\n", h.CommentPrefix, sourceMarker, l.Source)
	}
	for _, p := range l.Packages {
		if strings.ContainsAny(p, " \t\r\n") {
			return nil, fmt.Errorf("package %q contains whitespace", p)
		}
		sb.WriteString(p)
		sb.WriteString("\n")
	}
	return []byte(sb.String()), nil
}

// Decode reads one package per line. Blank lines and comment lines are
// skipped, and a comment separated from a package by whitespace is
// dropped. The first "source:" header comment sets Listing.Source.
func (h *Handler) Decode(data []byte) (format.Listing, error) {
	var l format.Listing
	var names []string

	for i, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if h.CommentPrefix != "" {
			if comment, ok := strings.CutPrefix(line, h.CommentPrefix); ok {
				if src, ok := strings.CutPrefix(strings.TrimSpace(comment), sourceMarker); ok && l.Source == "" {
					l.Source = strings.TrimSpace(src)
				}
				continue
			}
			line = stripTrailingComment(line, h.CommentPrefix)
		}

		if strings.ContainsAny(line, " \t") {
			return format.Listing{}, fmt.Errorf("line %d: expected one package per line, got %q", i+1, line)
		}
		names = append(names, line)
	}

	l.Packages = format.CleanPackages(names)
	return l, nil
}

// stripTrailingComment removes a comment that follows whitespace.
func stripTrailingComment(line, prefix string) string {
	for _, sep := range []string{" ", "\t"} {
		if i := strings.Index(line, sep+prefix); i >= 0 {
			line = line[:i]
		}
	}
	return strings.TrimSpace(line)
}

// Ensure Handler implements format.Handler.
var _ format.Handler = (*Handler)(nil)
