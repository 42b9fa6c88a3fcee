package cmd

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/timasoft/declair/internal/mutate"
	"github.com/timasoft/declair/internal/nixfile"
)

var (
	successColor = color.New(color.FgGreen, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	infoColor    = color.New(color.FgCyan)
	dimColor     = color.New(color.FgHiBlack)
)

// printSuccess prints a success message with a checkmark
func printSuccess(w io.Writer, msg string) {
	_, _ = successColor.Fprintf(w, "✓ %s\n", msg)
}

// printWarning prints a warning message with a warning symbol
func printWarning(w io.Writer, msg string) {
	_, _ = warningColor.Fprintf(w, "⚠ %s\n", msg)
}

func printInfo(w io.Writer, msg string) {
	_, _ = infoColor.Fprintln(w, msg)
}

func printDim(w io.Writer, msg string) {
	_, _ = dimColor.Fprintln(w, msg)
}

// describe names how a result's package is declared.
func describe(r mutate.Result, spec nixfile.OptionSpec) string {
	if r.Representation == mutate.Option {
		return spec.Key(r.Package)
	}
	return "`" + r.Package + "`"
}

// printResult prints one status line.
func printResult(w io.Writer, r mutate.Result, file string, spec nixfile.OptionSpec, dryRun bool) {
	what := describe(r, spec)
	prefix := ""
	if dryRun {
		prefix = "[dry run] "
	}

	switch r.Status {
	case nixfile.Inserted:
		if r.Representation == mutate.Option {
			printSuccess(w, fmt.Sprintf("%sEnabled %s in `%s`", prefix, what, file))
		} else {
			printSuccess(w, fmt.Sprintf("%sAdded %s to `%s`", prefix, what, file))
		}
	case nixfile.Removed:
		printSuccess(w, fmt.Sprintf("%sRemoved %s from `%s`", prefix, what, file))
	case nixfile.AlreadyPresent:
		printWarning(w, fmt.Sprintf("%s is already declared in `%s`", what, file))
	case nixfile.NotPresent:
		printWarning(w, fmt.Sprintf("%s is not declared in `%s`", what, file))
	}
}
