package mutate

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timasoft/declair/internal/backup"
	"github.com/timasoft/declair/internal/fsops"
	"github.com/timasoft/declair/internal/nixfile"
)

const listConfig = `{ pkgs, ... }:
{
  environment.systemPackages = with pkgs; [
    git
    vim
  ];
}
`

const optionConfig = `{ pkgs, ... }:
{
  programs.firefox.enable = true;
}
`

// recordingFS wraps the real filesystem and can fail individual steps.
type recordingFS struct {
	fsops.FS
	copyErr  error
	writeErr error
	copies   int
	writes   int
}

func (f *recordingFS) Copy(src, dst string) error {
	f.copies++
	if f.copyErr != nil {
		return f.copyErr
	}
	return f.FS.Copy(src, dst)
}

func (f *recordingFS) AtomicWrite(path string, data []byte, perm os.FileMode) error {
	f.writes++
	if f.writeErr != nil {
		return f.writeErr
	}
	return f.FS.AtomicWrite(path, data, perm)
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "configuration.nix")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func newOrchestrator(fsys fsops.FS, checker Checker, opts Options) *Orchestrator {
	return New(fsys, checker, nil, opts)
}

func TestMutateInsertWritesAndBacksUp(t *testing.T) {
	path := writeConfig(t, listConfig)
	fsys := &recordingFS{FS: fsops.NewRealFS()}
	o := newOrchestrator(fsys, nil, Options{})

	res, err := o.Mutate(context.Background(), path, Request{Op: Insert, Package: "htop"})
	require.NoError(t, err)

	assert.Equal(t, nixfile.Inserted, res.Status)
	assert.Equal(t, List, res.Representation)
	assert.True(t, res.Written)
	require.NotNil(t, res.Backup)
	assert.Equal(t, path+backup.Suffix, res.Backup.Backup)
	assert.Equal(t, path, res.Backup.Original)

	want := `{ pkgs, ... }:
{
  environment.systemPackages = with pkgs; [
    git
    vim
    htop
  ];
}
`
	assert.Equal(t, want, readFile(t, path))
	assert.Equal(t, want, res.Document.String())
	assert.Equal(t, listConfig, readFile(t, res.Backup.Backup))
	assert.Equal(t, 1, fsys.copies)
	assert.Equal(t, 1, fsys.writes)
}

func TestMutateRemoveWholeLine(t *testing.T) {
	path := writeConfig(t, listConfig)
	o := newOrchestrator(fsops.NewRealFS(), nil, Options{})

	res, err := o.Mutate(context.Background(), path, Request{Op: Remove, Package: "vim"})
	require.NoError(t, err)
	assert.Equal(t, nixfile.Removed, res.Status)

	want := `{ pkgs, ... }:
{
  environment.systemPackages = with pkgs; [
    git
  ];
}
`
	assert.Equal(t, want, readFile(t, path))
	assert.Equal(t, listConfig, readFile(t, path+backup.Suffix))
}

func TestMutateNoChangeSkipsBackup(t *testing.T) {
	tests := []struct {
		name   string
		req    Request
		status nixfile.Status
	}{
		{"insert present", Request{Op: Insert, Package: "git"}, nixfile.AlreadyPresent},
		{"remove absent", Request{Op: Remove, Package: "htop"}, nixfile.NotPresent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, listConfig)
			fsys := &recordingFS{FS: fsops.NewRealFS()}
			o := newOrchestrator(fsys, nil, Options{})

			res, err := o.Mutate(context.Background(), path, tt.req)
			require.NoError(t, err)
			assert.Equal(t, tt.status, res.Status)
			assert.False(t, res.Written)
			assert.Nil(t, res.Backup)
			assert.Equal(t, listConfig, res.Document.String())
			assert.Equal(t, 0, fsys.copies)
			assert.Equal(t, 0, fsys.writes)

			_, err = os.Stat(path + backup.Suffix)
			assert.True(t, errors.Is(err, os.ErrNotExist))
		})
	}
}

func TestMutateDryRun(t *testing.T) {
	path := writeConfig(t, listConfig)
	fsys := &recordingFS{FS: fsops.NewRealFS()}
	o := newOrchestrator(fsys, nil, Options{DryRun: true})

	res, err := o.Mutate(context.Background(), path, Request{Op: Insert, Package: "htop"})
	require.NoError(t, err)
	assert.Equal(t, nixfile.Inserted, res.Status)
	assert.False(t, res.Written)
	assert.Contains(t, res.Document.String(), "    htop\n")
	assert.Equal(t, listConfig, readFile(t, path))
	assert.Equal(t, 0, fsys.copies)
	assert.Equal(t, 0, fsys.writes)
}

func TestMutateBackupFailureLeavesFileUntouched(t *testing.T) {
	path := writeConfig(t, listConfig)
	fsys := &recordingFS{FS: fsops.NewRealFS(), copyErr: errors.New("disk full")}
	o := newOrchestrator(fsys, nil, Options{})

	_, err := o.Mutate(context.Background(), path, Request{Op: Insert, Package: "htop"})
	require.Error(t, err)

	var ioErr *fsops.IOError
	require.ErrorAs(t, err, &ioErr)
	assert.Equal(t, "backup", ioErr.Op)
	assert.Equal(t, 0, fsys.writes)
	assert.Equal(t, listConfig, readFile(t, path))
}

func TestMutateWriteFailureKeepsBackup(t *testing.T) {
	path := writeConfig(t, listConfig)
	fsys := &recordingFS{FS: fsops.NewRealFS(), writeErr: errors.New("read-only file system")}
	o := newOrchestrator(fsys, nil, Options{})

	_, err := o.Mutate(context.Background(), path, Request{Op: Insert, Package: "htop"})
	var ioErr *fsops.IOError
	require.ErrorAs(t, err, &ioErr)
	assert.Equal(t, "write", ioErr.Op)
	assert.Equal(t, listConfig, readFile(t, path))
	assert.Equal(t, listConfig, readFile(t, path+backup.Suffix))
}

func TestMutateCanceledContext(t *testing.T) {
	path := writeConfig(t, listConfig)
	fsys := &recordingFS{FS: fsops.NewRealFS()}
	o := newOrchestrator(fsys, nil, Options{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := o.Mutate(ctx, path, Request{Op: Insert, Package: "htop"})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, fsys.copies)
	assert.Equal(t, listConfig, readFile(t, path))
}

func TestMutateOption(t *testing.T) {
	path := writeConfig(t, optionConfig)
	o := newOrchestrator(fsops.NewRealFS(), NewStaticChecker([]string{"steam"}), Options{})

	res, err := o.Mutate(context.Background(), path, Request{Op: Insert, Package: "steam", Representation: Option})
	require.NoError(t, err)
	assert.Equal(t, Option, res.Representation)
	assert.Equal(t, nixfile.Inserted, res.Status)

	want := `{ pkgs, ... }:
{
  programs.firefox.enable = true;
  programs.steam.enable = true;
}
`
	assert.Equal(t, want, readFile(t, path))
}

func TestMutateOptionUnavailableFallsBackToList(t *testing.T) {
	path := writeConfig(t, listConfig)
	o := newOrchestrator(fsops.NewRealFS(), NewStaticChecker(nil), Options{})

	res, err := o.Mutate(context.Background(), path, Request{Op: Insert, Package: "htop", Representation: Option})
	require.NoError(t, err)
	assert.Equal(t, List, res.Representation)
	assert.Equal(t, nixfile.Inserted, res.Status)
	assert.Contains(t, readFile(t, path), "    htop\n  ];")
}

func TestMutateWithoutListUsesOption(t *testing.T) {
	path := writeConfig(t, optionConfig)
	o := newOrchestrator(fsops.NewRealFS(), NewStaticChecker([]string{"steam"}), Options{})

	res, err := o.Mutate(context.Background(), path, Request{Op: Insert, Package: "steam"})
	require.NoError(t, err)
	assert.Equal(t, Option, res.Representation)
	assert.Contains(t, readFile(t, path), "  programs.steam.enable = true;\n")
}

func TestMutateWithoutListOrOption(t *testing.T) {
	path := writeConfig(t, optionConfig)
	fsys := &recordingFS{FS: fsops.NewRealFS()}
	o := newOrchestrator(fsys, NewStaticChecker(nil), Options{})

	_, err := o.Mutate(context.Background(), path, Request{Op: Insert, Package: "git"})
	require.ErrorIs(t, err, nixfile.ErrNotFound)
	assert.Contains(t, err.Error(), "programs.git.enable")
	assert.Equal(t, 0, fsys.copies)
	assert.Equal(t, optionConfig, readFile(t, path))
}

func TestMutateRemoveDeclaredOption(t *testing.T) {
	content := `{ pkgs, ... }:
{
  programs.firefox.enable = true;
  environment.systemPackages = with pkgs; [
    git
  ];
}
`
	path := writeConfig(t, content)
	o := newOrchestrator(fsops.NewRealFS(), nil, Options{})

	res, err := o.Mutate(context.Background(), path, Request{Op: Remove, Package: "firefox"})
	require.NoError(t, err)
	assert.Equal(t, Option, res.Representation)
	assert.Equal(t, nixfile.Removed, res.Status)
	assert.NotContains(t, readFile(t, path), "firefox")
	assert.Contains(t, readFile(t, path), "    git\n")
}

func TestMutateAmbiguousOption(t *testing.T) {
	content := `{
  programs.git.enable = true;
  programs.git.enable = false;
}
`
	path := writeConfig(t, content)
	o := newOrchestrator(fsops.NewRealFS(), NewStaticChecker([]string{"git"}), Options{})

	_, err := o.Mutate(context.Background(), path, Request{Op: Insert, Package: "git", Representation: Option})
	require.ErrorIs(t, err, nixfile.ErrAmbiguous)
	assert.Equal(t, content, readFile(t, path))
}

func TestMutateNonLiteralOption(t *testing.T) {
	content := `{
  programs.firefox.enable = lib.mkDefault true;
}
`
	path := writeConfig(t, content)
	o := newOrchestrator(fsops.NewRealFS(), NewStaticChecker([]string{"firefox"}), Options{})

	_, err := o.Mutate(context.Background(), path, Request{Op: Insert, Package: "firefox", Representation: Option})
	require.ErrorIs(t, err, nixfile.ErrAmbiguous)
	assert.Equal(t, content, readFile(t, path))
	assert.NoFileExists(t, backup.PathFor(path))
}

func TestMutateMalformedList(t *testing.T) {
	content := "{ pkgs, ... }:\n{\n  environment.systemPackages = with pkgs; [\n    git\n}\n"
	path := writeConfig(t, content)
	o := newOrchestrator(fsops.NewRealFS(), nil, Options{})

	_, err := o.Mutate(context.Background(), path, Request{Op: Insert, Package: "htop"})
	require.ErrorIs(t, err, nixfile.ErrMalformed)
	assert.Equal(t, content, readFile(t, path))
}

func TestMutateMissingFile(t *testing.T) {
	o := newOrchestrator(fsops.NewRealFS(), nil, Options{})

	_, err := o.Mutate(context.Background(), filepath.Join(t.TempDir(), "missing.nix"), Request{Op: Insert, Package: "git"})
	var ioErr *fsops.IOError
	require.ErrorAs(t, err, &ioErr)
	assert.Equal(t, "read", ioErr.Op)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestApplyBatchWritesOnce(t *testing.T) {
	path := writeConfig(t, listConfig)
	fsys := &recordingFS{FS: fsops.NewRealFS()}
	o := newOrchestrator(fsys, nil, Options{})

	results, err := o.Apply(context.Background(), path, []Request{
		{Op: Insert, Package: "htop"},
		{Op: Insert, Package: "git"},
		{Op: Remove, Package: "vim"},
	})
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, nixfile.Inserted, results[0].Status)
	assert.Equal(t, nixfile.AlreadyPresent, results[1].Status)
	assert.Equal(t, nixfile.Removed, results[2].Status)
	for _, r := range results {
		assert.True(t, r.Written)
	}
	assert.Equal(t, 1, fsys.copies)
	assert.Equal(t, 1, fsys.writes)

	want := `{ pkgs, ... }:
{
  environment.systemPackages = with pkgs; [
    git
    htop
  ];
}
`
	assert.Equal(t, want, readFile(t, path))
	assert.Equal(t, listConfig, readFile(t, path+backup.Suffix))
}

func TestApplyInvalidNameAbortsBatch(t *testing.T) {
	path := writeConfig(t, listConfig)
	fsys := &recordingFS{FS: fsops.NewRealFS()}
	o := newOrchestrator(fsys, nil, Options{})

	_, err := o.Apply(context.Background(), path, []Request{
		{Op: Insert, Package: "htop"},
		{Op: Insert, Package: "bad name"},
	})
	require.ErrorIs(t, err, nixfile.ErrInvalidName)
	assert.Equal(t, 0, fsys.writes)
	assert.Equal(t, listConfig, readFile(t, path))
}

func TestList(t *testing.T) {
	path := writeConfig(t, listConfig)
	fsys := &recordingFS{FS: fsops.NewRealFS()}
	o := newOrchestrator(fsys, nil, Options{})

	got, err := o.List(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"git", "vim"}, got)
	assert.Equal(t, 0, fsys.copies)

	path = writeConfig(t, optionConfig)
	got, err = o.List(path)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestParseRepresentation(t *testing.T) {
	for in, want := range map[string]Representation{"": List, "list": List, "option": Option} {
		got, err := ParseRepresentation(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseRepresentation("attrset")
	assert.Error(t, err)
}
