package nixfile

import "errors"

var (
	// ErrNotFound indicates no matching construct exists in the document.
	// It is expected and drives fallback between representations.
	ErrNotFound = errors.New("construct not found")

	// ErrMalformed indicates a package list whose brackets never close
	// or close with the wrong delimiter.
	ErrMalformed = errors.New("malformed construct")

	// ErrAmbiguous indicates several option declarations for one package,
	// or one whose value cannot be rewritten in place.
	ErrAmbiguous = errors.New("ambiguous construct")

	// ErrInvalidName indicates a package name that cannot be written as
	// a bare list element.
	ErrInvalidName = errors.New("invalid package name")
)

// Status is the outcome of a single insert or remove.
type Status int

const (
	// Inserted means the element was added.
	Inserted Status = iota + 1
	// AlreadyPresent means an insert found the element and changed nothing.
	AlreadyPresent
	// Removed means the element was deleted.
	Removed
	// NotPresent means a remove did not find the element and changed nothing.
	NotPresent
)

func (s Status) String() string {
	switch s {
	case Inserted:
		return "inserted"
	case AlreadyPresent:
		return "already-present"
	case Removed:
		return "removed"
	case NotPresent:
		return "not-present"
	default:
		return "unknown"
	}
}

// Changed reports whether the status implies a modified document.
func (s Status) Changed() bool {
	return s == Inserted || s == Removed
}
