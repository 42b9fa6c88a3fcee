// Package search finds nixpkgs packages by name through `nix search`.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/iancoleman/orderedmap"
)

// Candidate is one search hit.
type Candidate struct {
	// Attr is the full flake output path, e.g.
	// legacyPackages.x86_64-linux.ripgrep.
	Attr        string
	Name        string
	Version     string
	Description string
}

// Package returns the attribute name to declare in a Nix file: the last
// component of Attr, or Name when Attr is empty.
func (c Candidate) Package() string {
	if c.Attr == "" {
		return c.Name
	}
	if i := strings.LastIndexByte(c.Attr, '.'); i >= 0 {
		return c.Attr[i+1:]
	}
	return c.Attr
}

// String renders the candidate as "name version: description".
func (c Candidate) String() string {
	return fmt.Sprintf("%s %s: %s", c.Package(), c.Version, c.Description)
}

// Provider searches for packages.
type Provider interface {
	Search(ctx context.Context, query string) ([]Candidate, error)
}

// Runner executes a command and returns its standard output.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

// ExecRunner runs commands with os/exec. A non-zero exit is reported as an
// error carrying the command's standard error.
func ExecRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			msg := strings.TrimSpace(stderr.String())
			if msg == "" {
				msg = "no output"
			}
			return nil, fmt.Errorf("%s exited with code %d: %s", name, exitErr.ExitCode(), msg)
		}
		return nil, fmt.Errorf("failed to run %s: %w", name, err)
	}
	return out, nil
}

// NixProvider searches the nixpkgs flake.
type NixProvider struct {
	run    Runner
	logger *log.Logger
}

// NewNixProvider creates a provider. A nil runner means ExecRunner, a nil
// logger discards output.
func NewNixProvider(run Runner, logger *log.Logger) *NixProvider {
	if run == nil {
		run = ExecRunner
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &NixProvider{run: run, logger: logger}
}

// Args returns the nix arguments used for query.
func Args(query string) []string {
	return []string{
		"search", "nixpkgs", query, "--json",
		"--extra-experimental-features", "nix-command flakes",
	}
}

// Search runs `nix search` and returns the ranked candidates.
func (p *NixProvider) Search(ctx context.Context, query string) ([]Candidate, error) {
	if strings.TrimSpace(query) == "" {
		return nil, errors.New("empty search query")
	}
	p.logger.Debug("searching nixpkgs", "query", query)

	out, err := p.run(ctx, "nix", Args(query)...)
	if err != nil {
		return nil, fmt.Errorf("nix search: %w", err)
	}

	candidates, err := Parse(out)
	if err != nil {
		return nil, err
	}
	p.logger.Debug("search finished", "query", query, "results", len(candidates))
	return Rank(candidates, query), nil
}

// Parse decodes `nix search --json` output, keeping the output order.
func Parse(data []byte) ([]Candidate, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return []Candidate{}, nil
	}

	om := orderedmap.New()
	if err := json.Unmarshal(data, om); err != nil {
		return nil, fmt.Errorf("failed to parse nix search output: %w", err)
	}

	candidates := make([]Candidate, 0, len(om.Keys()))
	for _, attr := range om.Keys() {
		info, ok := object(om, attr)
		if !ok {
			return nil, fmt.Errorf("failed to parse nix search output: entry %q is not an object", attr)
		}
		candidates = append(candidates, Candidate{
			Attr:        attr,
			Name:        stringField(info, "pname"),
			Version:     stringField(info, "version"),
			Description: stringField(info, "description"),
		})
	}
	return candidates, nil
}

// object returns the nested object stored under key. orderedmap hands
// nested objects back by value.
func object(om *orderedmap.OrderedMap, key string) (*orderedmap.OrderedMap, bool) {
	v, _ := om.Get(key)
	switch val := v.(type) {
	case orderedmap.OrderedMap:
		return &val, true
	case *orderedmap.OrderedMap:
		return val, true
	}
	return nil, false
}

func stringField(om *orderedmap.OrderedMap, key string) string {
	v, ok := om.Get(key)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

// Rank orders candidates: exact name matches first, then prefix matches,
// then everything else. Order within a group is preserved.
func Rank(candidates []Candidate, query string) []Candidate {
	q := strings.ToLower(query)
	rank := func(c Candidate) int {
		name := strings.ToLower(c.Package())
		pname := strings.ToLower(c.Name)
		switch {
		case name == q || pname == q:
			return 0
		case strings.HasPrefix(name, q) || strings.HasPrefix(pname, q):
			return 1
		default:
			return 2
		}
	}

	ranked := make([]Candidate, len(candidates))
	copy(ranked, candidates)
	sort.SliceStable(ranked, func(i, j int) bool {
		return rank(ranked[i]) < rank(ranked[j])
	})
	return ranked
}

var _ Provider = (*NixProvider)(nil)
