package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/timasoft/declair/internal/config"
	"github.com/timasoft/declair/internal/format"
	"github.com/timasoft/declair/internal/mutate"
	"github.com/timasoft/declair/internal/picker"
)

var addOpts editOptions

var addCmd = &cobra.Command{
	Use:   "add [package...]",
	Short: "Add packages to the Nix file",
	Long: `Add packages to the configured Nix file.

Each package is appended to the first "with pkgs; [ ... ]" list, matching the
list's layout. With --option, or with representation = "option" in the
config for packages listed in option_packages, the package is declared as
programs.<name>.enable = true; instead.

All packages are applied in one write with one backup. A package that is
already declared is reported and left alone.

Example:
  declair add ripgrep fd
  declair add --option firefox
  declair add --search ripgrep
  declair add --from packages.toml --dry-run`,
	RunE: runAdd,
}

func init() {
	addCmd.Flags().BoolVar(&addOpts.option, "option", false, "Declare packages as programs.<name>.enable = true")
	addCmd.Flags().BoolVar(&addOpts.noInteractive, "no-interactive", false, "Never prompt; fail when no package is given")
	addCmd.Flags().BoolVar(&addOpts.noRebuild, "no-rebuild", false, "Do not rebuild even if auto_rebuild is set")
	addCmd.Flags().BoolVar(&addOpts.dryRun, "dry-run", false, "Print the resulting file instead of writing it")
	addCmd.Flags().StringVar(&addOpts.from, "from", "", "Add every package of a json, toml, ini or txt listing")
	addCmd.Flags().StringVar(&addOpts.comment, "comment", "shell", "Comment prefix of txt listings: shell, c, semicolon, lua or a literal")
	addCmd.Flags().StringVarP(&addOpts.query, "search", "s", "", "Search nixpkgs for a package and choose it interactively")
}

func runAdd(cmd *cobra.Command, args []string) error {
	s, err := loadSettings()
	if err != nil {
		return err
	}

	names, err := addNames(cmd.Context(), args, addOpts)
	if err != nil {
		return err
	}
	return runEdit(cmd, s, mutate.Insert, names, addOpts)
}

// addNames collects packages from arguments, --from and --search.
func addNames(ctx context.Context, args []string, opts editOptions) ([]string, error) {
	names := append([]string{}, args...)

	if opts.from != "" {
		listed, err := readListing(opts.from, opts.comment)
		if err != nil {
			return nil, err
		}
		names = append(names, listed...)
	}

	if opts.query != "" {
		if opts.noInteractive {
			return nil, errors.New("--search chooses interactively and cannot be used with --no-interactive")
		}
		name, err := pick(ctx, fmt.Sprintf("Select a package matching %q:", opts.query), searchLoader(ctx, opts.query))
		if err != nil {
			return nil, err
		}
		names = append(names, name)
	}

	names = format.CleanPackages(names)
	if len(names) == 0 {
		if opts.noInteractive {
			return nil, errors.New("no package given and --no-interactive set")
		}
		return nil, errors.New("no package given: name packages, or use --from <file> or --search <query>")
	}
	return names, nil
}

// readListing reads the package names of a listing file.
func readListing(p, comment string) ([]string, error) {
	expanded, err := config.ExpandPath(p)
	if err != nil {
		return nil, err
	}
	h, err := handlerForPath(expanded, comment)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(expanded)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", p, err)
	}
	l, err := h.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", p, err)
	}
	logger.Debug("read listing", "path", expanded, "source", l.Source, "packages", len(l.Packages))
	return l.Packages, nil
}

// searchLoader feeds search results to the picker.
func searchLoader(ctx context.Context, query string) picker.Loader {
	provider := newProvider(logger)
	return func() ([]picker.Item, error) {
		candidates, err := provider.Search(ctx, query)
		if err != nil {
			return nil, fmt.Errorf("package search failed: %w", err)
		}
		items := make([]picker.Item, len(candidates))
		for i, c := range candidates {
			items[i] = picker.Item{Label: c.String(), Value: c.Package()}
		}
		return items, nil
	}
}
