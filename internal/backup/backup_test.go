package backup

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/timasoft/declair/internal/fsops"
)

func TestGuard_Create(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "configuration.nix")
	content := "{ pkgs, ... }:\n{\n  environment.systemPackages = with pkgs; [ vim ];\n}\n"

	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path+Suffix, []byte("previous backup"), 0644); err != nil {
		t.Fatal(err)
	}

	rec, err := NewGuard(fsops.NewRealFS()).Create(path)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if rec.Original != path || rec.Backup != path+".declair.bak" {
		t.Errorf("Create() = %+v", rec)
	}

	got, err := os.ReadFile(rec.Backup)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != content {
		t.Errorf("backup content = %q, want %q", got, content)
	}
}

func TestGuard_CreateFailure(t *testing.T) {
	dir := t.TempDir()

	_, err := NewGuard(fsops.NewRealFS()).Create(filepath.Join(dir, "missing.nix"))
	if err == nil {
		t.Fatal("Create() on a missing file should fail")
	}

	var ioErr *fsops.IOError
	if !errors.As(err, &ioErr) {
		t.Fatalf("Create() error = %T, want *fsops.IOError", err)
	}
	if ioErr.Op != "backup" {
		t.Errorf("Op = %q, want %q", ioErr.Op, "backup")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error should wrap os.ErrNotExist: %v", err)
	}
}
