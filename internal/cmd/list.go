package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"github.com/timasoft/declair/internal/format"
	"github.com/timasoft/declair/internal/fsops"
	"github.com/timasoft/declair/internal/mutate"
)

var (
	listFormat  string
	listComment string
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List packages declared in the Nix file",
	Long: `List the elements of the first "with pkgs; [ ... ]" list of the
configured Nix file, in file order.

Formats:
  table  aligned table with the source file (default)
  plain  one package per line
  json, toml, ini, txt
         listings that "declair add --from" can read back

Example:
  declair list
  declair list --format toml > packages.toml`,
	Args: cobra.NoArgs,
	RunE: runList,
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

func init() {
	listCmd.Flags().StringVarP(&listFormat, "format", "f", "table", "Output format: table, plain, json, toml, ini or txt")
	listCmd.Flags().StringVar(&listComment, "comment", "shell", "Comment prefix of txt listings: shell, c, semicolon, lua or a literal")
}

func runList(cmd *cobra.Command, args []string) error {
	s, err := loadSettings()
	if err != nil {
		return err
	}

	pkgs, err := mutate.New(fsops.NewRealFS(), nil, logger, mutate.Options{}).List(s.nixFile)
	if err != nil {
		return fmt.Errorf("failed to list packages: %w", err)
	}

	out := cmd.OutOrStdout()
	switch strings.ToLower(listFormat) {
	case "table", "":
		if len(pkgs) == 0 {
			fmt.Fprintf(out, "No packages found in `with pkgs; [...]` block of %s\n", s.nixFile)
			return nil
		}
		fmt.Fprintln(out, renderTable(pkgs, s.nixFile))
	default:
		h, err := handlerFor(listFormat, listComment)
		if err != nil {
			return err
		}
		data, err := h.Encode(format.Listing{Source: s.nixFile, Packages: pkgs})
		if err != nil {
			return err
		}
		if _, err := out.Write(data); err != nil {
			return err
		}
	}
	return nil
}

// renderTable lays out packages and their source file.
func renderTable(pkgs []string, source string) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers("Package", "Source")
	for _, p := range pkgs {
		t.Row(p, source)
	}
	return t.Render()
}
