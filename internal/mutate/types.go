// Package mutate runs one declair invocation against a Nix file: it
// locates the package construct, computes the edit, backs the file up and
// writes the result.
//
// The pipeline for a run is Located -> Classified -> Mutated -> Backed-Up
// -> Written. A run that changes nothing stops after Mutated and neither
// backs up nor writes. Any error before Written aborts the run with the
// file untouched.
package mutate

import (
	"fmt"

	"github.com/timasoft/declair/internal/backup"
	"github.com/timasoft/declair/internal/nixfile"
)

// Op is the requested edit.
type Op int

const (
	// Insert adds a package.
	Insert Op = iota
	// Remove deletes a package.
	Remove
)

func (o Op) String() string {
	if o == Remove {
		return "remove"
	}
	return "insert"
}

// Representation selects how a package is declared in the file.
type Representation int

const (
	// List declares the package in the `with pkgs; [ ... ]` list.
	List Representation = iota
	// Option declares the package as `programs.<pkg>.enable = true;`.
	Option
)

func (r Representation) String() string {
	if r == Option {
		return "option"
	}
	return "list"
}

// ParseRepresentation parses "list" or "option".
func ParseRepresentation(s string) (Representation, error) {
	switch s {
	case "", "list":
		return List, nil
	case "option":
		return Option, nil
	default:
		return List, fmt.Errorf("unknown representation %q (want list or option)", s)
	}
}

// Request is a single edit.
type Request struct {
	Op             Op
	Package        string
	Representation Representation
}

// Result is the outcome of one Request.
type Result struct {
	// Document is the full text after this request was applied.
	Document       nixfile.Document
	Package        string
	Representation Representation
	Status         nixfile.Status
	// Backup is set once the run wrote the file.
	Backup *backup.Record
	// Written reports whether the run wrote the file.
	Written bool
}
