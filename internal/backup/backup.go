// Package backup makes the sidecar copy taken before a Nix file is
// rewritten.
package backup

import (
	"github.com/timasoft/declair/internal/fsops"
)

// Suffix is appended to the target path to name its backup.
const Suffix = ".declair.bak"

// Record describes a backup made for one mutating run.
// Backups are never deleted by declair.
type Record struct {
	Original string
	Backup   string
}

// PathFor returns the backup path for target.
func PathFor(target string) string {
	return target + Suffix
}

// Guard copies a file to its backup path.
type Guard struct {
	fs fsops.FS
}

// NewGuard creates a Guard writing through fsys.
func NewGuard(fsys fsops.FS) *Guard {
	return &Guard{fs: fsys}
}

// Create copies the current bytes of path to PathFor(path), overwriting a
// previous backup. A failure must stop the caller from writing path.
func (g *Guard) Create(path string) (*Record, error) {
	dst := PathFor(path)
	if err := g.fs.Copy(path, dst); err != nil {
		return nil, &fsops.IOError{Op: "backup", Path: dst, Err: err}
	}
	return &Record{Original: path, Backup: dst}, nil
}
