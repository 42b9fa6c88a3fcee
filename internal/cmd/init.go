package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/timasoft/declair/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the declair config file",
	Long: `Write the declair config file from flags.

The file is written to --config-file, or to
$XDG_CONFIG_HOME/declair/config.toml by default. An existing file is only
replaced with --force.

Example:
  declair init --nix-path /etc/nixos
  declair init --nix-path ~/nixos/home.nix --auto-rebuild --home-manager --flake`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

var (
	initNixPath        string
	initAutoRebuild    bool
	initHomeManager    bool
	initFlake          bool
	initRepresentation string
	initForce          bool
)

func init() {
	initCmd.Flags().StringVar(&initNixPath, "nix-path", "", "Nix file, or directory containing configuration.nix, flake.nix, default.nix, home.nix or pkgs.nix (required)")
	initCmd.Flags().BoolVar(&initAutoRebuild, "auto-rebuild", false, "Rebuild after every change")
	initCmd.Flags().BoolVar(&initHomeManager, "home-manager", false, "Rebuild with home-manager instead of nixos-rebuild")
	initCmd.Flags().BoolVar(&initFlake, "flake", false, "Rebuild with --flake .")
	initCmd.Flags().StringVar(&initRepresentation, "representation", "list", "Default declaration form: list or option")
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing config file")

	initCmd.MarkFlagRequired("nix-path")
}

func runInit(cmd *cobra.Command, args []string) error {
	path, err := configPath()
	if err != nil {
		return err
	}

	if _, err := os.Stat(path); err == nil && !initForce {
		return fmt.Errorf("config file %s already exists (use --force to overwrite)", path)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to check config file: %w", err)
	}

	cfg := config.Default()
	cfg.NixPath = initNixPath
	cfg.AutoRebuild = initAutoRebuild
	cfg.HomeManager = initHomeManager
	cfg.Flake = initFlake
	cfg.Representation = initRepresentation
	if err := cfg.Validate(); err != nil {
		return err
	}

	if expanded, err := config.ExpandPath(cfg.NixPath); err == nil {
		if _, err := config.ResolveNixFile(expanded); err != nil {
			logger.Warn("nix_path does not resolve to a Nix file yet", "err", err)
		}
	}

	if err := cfg.Save(path); err != nil {
		return err
	}

	printSuccess(cmd.OutOrStdout(), fmt.Sprintf("Created %s", path))
	return nil
}
