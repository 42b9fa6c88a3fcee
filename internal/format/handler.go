// Package format provides encoders and decoders for package listings, the
// portable form of a Nix file's package list used by `list --format` and
// `add --from`.
package format

import "strings"

// Listing is the set of packages declared in one Nix file.
type Listing struct {
	// Source is the Nix file the packages were read from.
	Source   string   `toml:"source"`
	Packages []string `toml:"packages"`
}

// Handler defines the interface for listing file format handlers.
type Handler interface {
	// Encode writes the listing to bytes.
	Encode(l Listing) ([]byte, error)

	// Decode reads a listing. Package names are trimmed and de-duplicated
	// in first-seen order.
	Decode(data []byte) (Listing, error)
}

// CleanPackages trims names, drops empty ones and removes duplicates,
// keeping the first occurrence.
func CleanPackages(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}
