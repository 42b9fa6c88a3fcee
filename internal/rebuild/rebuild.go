// Package rebuild switches the system or home configuration after the
// package declarations changed.
package rebuild

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
)

// Mode selects the switch command.
type Mode int

const (
	// System runs nixos-rebuild.
	System Mode = iota
	// Home runs home-manager.
	Home
)

func (m Mode) String() string {
	if m == Home {
		return "home-manager"
	}
	return "nixos"
}

// Command returns the argv for mode.
func Command(mode Mode, flake bool) []string {
	var argv []string
	if mode == Home {
		argv = []string{"home-manager", "switch"}
	} else {
		argv = []string{"sudo", "nixos-rebuild", "switch"}
	}
	if flake {
		argv = append(argv, "--flake", ".")
	}
	return argv
}

// Runner runs argv in dir with the terminal attached.
type Runner func(ctx context.Context, dir string, argv []string) error

// Output runs argv in dir and returns its trimmed standard output.
type Output func(ctx context.Context, dir string, argv []string) (string, error)

// ExecRunner runs argv with os/exec, passing through stdin, stdout and
// stderr so sudo can prompt.
func ExecRunner(ctx context.Context, dir string, argv []string) error {
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = dir
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %w", strings.Join(argv, " "), err)
	}
	return nil
}

// ExecOutput runs argv with os/exec and captures its standard output.
func ExecOutput(ctx context.Context, dir string, argv []string) (string, error) {
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// Invoker runs the switch command for a Nix file.
type Invoker struct {
	run    Runner
	output Output
	logger *log.Logger
}

// New creates an Invoker. Nil functions fall back to the os/exec
// implementations and a nil logger discards output.
func New(run Runner, output Output, logger *log.Logger) *Invoker {
	if run == nil {
		run = ExecRunner
	}
	if output == nil {
		output = ExecOutput
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Invoker{run: run, output: output, logger: logger}
}

// WorkDir returns the top of the git work tree containing nixFile, or the
// file's own directory when it is not inside one.
func (i *Invoker) WorkDir(ctx context.Context, nixFile string) string {
	dir := filepath.Dir(nixFile)
	top, err := i.output(ctx, dir, []string{"git", "rev-parse", "--show-toplevel"})
	if err != nil || top == "" {
		i.logger.Debug("not in a git work tree", "dir", dir, "err", err)
		return dir
	}
	return top
}

// Rebuild runs the switch command for mode from the work directory of
// nixFile.
func (i *Invoker) Rebuild(ctx context.Context, nixFile string, mode Mode, flake bool) error {
	dir := i.WorkDir(ctx, nixFile)
	argv := Command(mode, flake)
	i.logger.Info("rebuilding", "mode", mode, "dir", dir, "command", strings.Join(argv, " "))
	if err := i.run(ctx, dir, argv); err != nil {
		return fmt.Errorf("rebuild failed: %w", err)
	}
	return nil
}
