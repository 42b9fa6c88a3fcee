package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/timasoft/declair/internal/fsops"
	"github.com/timasoft/declair/internal/mutate"
	"github.com/timasoft/declair/internal/picker"
	"github.com/timasoft/declair/internal/rebuild"
	"github.com/timasoft/declair/internal/search"
)

// editOptions holds the flags shared by add and remove.
type editOptions struct {
	option        bool
	noInteractive bool
	noRebuild     bool
	dryRun        bool
	from          string
	comment       string
	query         string
}

// rebuilder switches the configuration after a write.
type rebuilder interface {
	Rebuild(ctx context.Context, nixFile string, mode rebuild.Mode, flake bool) error
}

// Replaced in tests.
var (
	newProvider = func(l *log.Logger) search.Provider {
		return search.NewNixProvider(nil, l)
	}
	newRebuilder = func(l *log.Logger) rebuilder {
		return rebuild.New(nil, nil, l)
	}
	choose = picker.Run
)

// runEdit applies op for every requested package in a single write, then
// rebuilds when configured to.
func runEdit(cmd *cobra.Command, s *settings, op mutate.Op, names []string, opts editOptions) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	representation, err := mutate.ParseRepresentation(s.cfg.Representation)
	if err != nil {
		return err
	}
	known := s.cfg.OptionPackages
	if opts.option {
		// --option vouches for the named packages
		representation = mutate.Option
		known = append(append([]string{}, known...), names...)
	}

	spec := s.cfg.OptionSpec()
	orch := mutate.New(fsops.NewRealFS(), mutate.NewStaticChecker(known), logger, mutate.Options{
		OptionSpec: spec,
		DryRun:     opts.dryRun,
	})

	reqs := make([]mutate.Request, len(names))
	for i, name := range names {
		reqs[i] = mutate.Request{Op: op, Package: name, Representation: representation}
	}

	results, err := orch.Apply(ctx, s.nixFile, reqs)
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", s.nixFile, err)
	}

	changed := false
	for _, r := range results {
		printResult(out, r, s.nixFile, spec, opts.dryRun)
		changed = changed || r.Status.Changed()
	}
	if len(results) == 0 {
		return nil
	}
	last := results[len(results)-1]

	if opts.dryRun {
		if changed {
			printDim(out, fmt.Sprintf("--- %s (not written)", s.nixFile))
			fmt.Fprint(out, last.Document.String())
		}
		return nil
	}
	if !last.Written {
		return nil
	}
	printDim(out, fmt.Sprintf("Backup: %s", last.Backup.Backup))

	if !s.cfg.AutoRebuild || opts.noRebuild {
		return nil
	}
	mode := rebuild.System
	if s.cfg.HomeManager {
		mode = rebuild.Home
	}
	printInfo(out, fmt.Sprintf("Rebuilding with %s...", mode))
	return newRebuilder(logger).Rebuild(ctx, s.nixFile, mode, s.cfg.Flake)
}

// pick runs the interactive picker and returns the chosen value.
func pick(ctx context.Context, title string, load picker.Loader) (string, error) {
	item, err := choose(ctx, title, load, tea.WithOutput(os.Stderr))
	if errors.Is(err, picker.ErrNoItems) {
		return "", errors.New("no results found")
	}
	if err != nil {
		return "", err
	}
	return item.Value, nil
}
