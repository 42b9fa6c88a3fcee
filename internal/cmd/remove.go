package cmd

import (
	"errors"

	"github.com/spf13/cobra"
	"github.com/timasoft/declair/internal/format"
	"github.com/timasoft/declair/internal/fsops"
	"github.com/timasoft/declair/internal/mutate"
	"github.com/timasoft/declair/internal/picker"
)

var removeOpts editOptions

var removeCmd = &cobra.Command{
	Use:     "remove [package...]",
	Aliases: []string{"rm"},
	Short:   "Remove packages from the Nix file",
	Long: `Remove packages from the configured Nix file.

A package is removed from the first "with pkgs; [ ... ]" list, or, when it
is not listed there, its programs.<name>.enable declaration is removed.
Without arguments the packages of the list are offered in a picker.

Example:
  declair remove htop
  declair remove --option steam
  declair remove`,
	RunE: runRemove,
}

func init() {
	removeCmd.Flags().BoolVar(&removeOpts.option, "option", false, "Remove programs.<name>.enable declarations")
	removeCmd.Flags().BoolVar(&removeOpts.noInteractive, "no-interactive", false, "Never prompt; fail when no package is given")
	removeCmd.Flags().BoolVar(&removeOpts.noRebuild, "no-rebuild", false, "Do not rebuild even if auto_rebuild is set")
	removeCmd.Flags().BoolVar(&removeOpts.dryRun, "dry-run", false, "Print the resulting file instead of writing it")
}

func runRemove(cmd *cobra.Command, args []string) error {
	s, err := loadSettings()
	if err != nil {
		return err
	}

	names := format.CleanPackages(args)
	if len(names) == 0 {
		if removeOpts.noInteractive {
			return errors.New("no package given and --no-interactive set")
		}
		name, err := pick(cmd.Context(), "Select a package to remove:", listLoader(s.nixFile))
		if err != nil {
			return err
		}
		names = []string{name}
	}
	return runEdit(cmd, s, mutate.Remove, names, removeOpts)
}

// listLoader feeds the packages of nixFile to the picker.
func listLoader(nixFile string) picker.Loader {
	return func() ([]picker.Item, error) {
		pkgs, err := mutate.New(fsops.NewRealFS(), nil, logger, mutate.Options{}).List(nixFile)
		if err != nil {
			return nil, err
		}
		items := make([]picker.Item, len(pkgs))
		for i, p := range pkgs {
			items[i] = picker.Item{Label: p, Value: p}
		}
		return items, nil
	}
}
