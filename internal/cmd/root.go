// Package cmd provides the CLI commands for declair.
package cmd

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	nixPath    string
	configFile string
	verbose    bool

	// logger is built from the global flags before any command runs.
	logger = log.New(io.Discard)
)

var rootCmd = &cobra.Command{
	Use:     "declair",
	Version: "dev",
	Short:   "Add, remove and list packages in NixOS and Home Manager configurations",
	Long: `declair edits the package declarations of a NixOS or Home Manager
configuration in place.

Packages are added to or removed from the first "with pkgs; [ ... ]" list of
the configured Nix file, or declared as "programs.<name>.enable = true;".
Everything outside the edited element is left byte for byte as it was, and
the previous version of the file is kept next to it with a .declair.bak
suffix.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger = newLogger(cmd.ErrOrStderr(), verbose)
	},
}

// SetVersion sets the version reported by --version.
func SetVersion(v string) {
	if v == "" {
		return
	}
	rootCmd.Version = v
	rootCmd.SetVersionTemplate("{{.Version}}\n")
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func newLogger(w io.Writer, verbose bool) *log.Logger {
	l := log.NewWithOptions(w, log.Options{
		Prefix: "declair",
	})
	if verbose {
		l.SetLevel(log.DebugLevel)
	} else {
		l.SetLevel(log.WarnLevel)
	}
	return l
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&nixPath, "config", "c", "", "Nix file or directory to edit (overrides nix_path)")
	rootCmd.PersistentFlags().StringVar(&configFile, "config-file", "", "declair config file (default $XDG_CONFIG_HOME/declair/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log each step to stderr")

	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(removeCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(initCmd)
}
