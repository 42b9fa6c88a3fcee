package plaintext

// DefaultCommentPrefix is used for .txt listings.
const DefaultCommentPrefix = "#"

// CommentPresets maps preset names to their actual comment prefix strings.
var CommentPresets = map[string]string{
	"shell":     "#",  // shell-style, also Nix
	"c":         "//", // C-style comments
	"semicolon": ";",  // INI-style
	"lua":       "--", // lua and SQL style
}

// ResolveCommentPrefix resolves a comment prefix value.
// If the value is a known preset name, returns the preset's prefix.
// Otherwise, returns the value as-is (treating it as a literal prefix).
// Surrounding quotes are stripped from literal values.
func ResolveCommentPrefix(value string) string {
	if prefix, ok := CommentPresets[value]; ok {
		return prefix
	}

	// Treat as literal - strip surrounding quotes if present
	if len(value) >= 2 {
		if (value[0] == '"' && value[len(value)-1] == '"') ||
			(value[0] == '\'' && value[len(value)-1] == '\'') {
			return value[1 : len(value)-1]
		}
	}

	return value
}
