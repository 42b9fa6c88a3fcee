package mutate

import "context"

// Checker reports whether a package has a boolean enable option, i.e.
// whether `programs.<pkg>.enable` is a real option.
type Checker interface {
	Available(ctx context.Context, pkg string) (bool, error)
}

// StaticChecker answers from a fixed set of package names.
type StaticChecker struct {
	names map[string]struct{}
}

// NewStaticChecker creates a checker that knows exactly names.
func NewStaticChecker(names []string) *StaticChecker {
	c := &StaticChecker{names: make(map[string]struct{}, len(names))}
	for _, n := range names {
		c.names[n] = struct{}{}
	}
	return c
}

// Available reports whether pkg is one of the configured names.
func (c *StaticChecker) Available(ctx context.Context, pkg string) (bool, error) {
	_, ok := c.names[pkg]
	return ok, nil
}

var _ Checker = (*StaticChecker)(nil)
