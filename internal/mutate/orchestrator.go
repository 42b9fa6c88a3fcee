package mutate

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/timasoft/declair/internal/backup"
	"github.com/timasoft/declair/internal/fsops"
	"github.com/timasoft/declair/internal/nixfile"
)

// Options configures an Orchestrator.
type Options struct {
	// OptionSpec shapes option declarations. The zero value means
	// nixfile.DefaultOptionSpec().
	OptionSpec nixfile.OptionSpec
	// DryRun computes results without backing up or writing.
	DryRun bool
}

// Orchestrator applies edit requests to Nix files.
type Orchestrator struct {
	fs      fsops.FS
	guard   *backup.Guard
	checker Checker
	spec    nixfile.OptionSpec
	dryRun  bool
	logger  *log.Logger
}

// New creates an Orchestrator. checker may be nil, in which case no
// package is considered to have an option. logger may be nil.
func New(fsys fsops.FS, checker Checker, logger *log.Logger, opts Options) *Orchestrator {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	spec := opts.OptionSpec
	if spec == (nixfile.OptionSpec{}) {
		spec = nixfile.DefaultOptionSpec()
	}
	return &Orchestrator{
		fs:      fsys,
		guard:   backup.NewGuard(fsys),
		checker: checker,
		spec:    spec,
		dryRun:  opts.DryRun,
		logger:  logger,
	}
}

// Read loads path into a Document.
func (o *Orchestrator) Read(path string) (nixfile.Document, error) {
	data, err := o.fs.ReadFile(path)
	if err != nil {
		return nixfile.Document{}, &fsops.IOError{Op: "read", Path: path, Err: err}
	}
	return nixfile.NewDocument(string(data)), nil
}

// List returns the packages declared in path's package list. It never
// writes and never backs up.
func (o *Orchestrator) List(path string) ([]string, error) {
	doc, err := o.Read(path)
	if err != nil {
		return nil, err
	}
	return nixfile.Packages(doc)
}

// Mutate applies a single request to path.
func (o *Orchestrator) Mutate(ctx context.Context, path string, req Request) (*Result, error) {
	results, err := o.Apply(ctx, path, []Request{req})
	if err != nil {
		return nil, err
	}
	return &results[0], nil
}

// Apply applies reqs in order to the content of path and writes the file
// once if the final document differs from what was read. The backup is
// taken after every edit has been computed and before the write.
func (o *Orchestrator) Apply(ctx context.Context, path string, reqs []Request) ([]Result, error) {
	doc, err := o.Read(path)
	if err != nil {
		return nil, err
	}
	original := doc

	results := make([]Result, 0, len(reqs))
	for _, req := range reqs {
		next, rep, status, err := o.apply(ctx, doc, req)
		if err != nil {
			o.logger.Debug("aborted", "path", path, "package", req.Package, "err", err)
			return nil, fmt.Errorf("%s %s: %w", req.Op, req.Package, err)
		}
		o.logger.Debug("mutated", "package", req.Package, "representation", rep, "status", status)
		doc = next
		results = append(results, Result{
			Document:       doc,
			Package:        req.Package,
			Representation: rep,
			Status:         status,
		})
	}

	if doc.Equal(original) {
		o.logger.Debug("nothing to write", "path", path)
		return results, nil
	}
	if o.dryRun {
		o.logger.Debug("dry run, skipping backup and write", "path", path)
		return results, nil
	}

	rec, err := o.commit(ctx, path, doc)
	if err != nil {
		return nil, err
	}
	for i := range results {
		results[i].Backup = rec
		results[i].Written = true
	}
	return results, nil
}

// commit backs path up and then replaces it with doc.
func (o *Orchestrator) commit(ctx context.Context, path string, doc nixfile.Document) (*backup.Record, error) {
	info, err := o.fs.Stat(path)
	if err != nil {
		return nil, &fsops.IOError{Op: "stat", Path: path, Err: err}
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("aborted before backup: %w", err)
	}

	rec, err := o.guard.Create(path)
	if err != nil {
		return nil, err
	}
	o.logger.Debug("backed up", "path", path, "backup", rec.Backup)

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("aborted before write: %w", err)
	}
	if err := o.fs.AtomicWrite(path, []byte(doc.String()), info.Mode().Perm()); err != nil {
		return nil, &fsops.IOError{Op: "write", Path: path, Err: err}
	}
	o.logger.Debug("wrote", "path", path, "bytes", doc.Len())
	return rec, nil
}

// apply computes one edit on doc.
func (o *Orchestrator) apply(ctx context.Context, doc nixfile.Document, req Request) (nixfile.Document, Representation, nixfile.Status, error) {
	if req.Representation == Option {
		ok, err := o.available(ctx, req.Package)
		if err != nil {
			return doc, Option, 0, err
		}
		if ok {
			return o.applyOption(doc, req)
		}
		o.logger.Warn("no option known for package, using the package list", "package", req.Package, "option", o.spec.Key(req.Package))
	}

	block, err := nixfile.LocateList(doc)
	if errors.Is(err, nixfile.ErrNotFound) {
		return o.fallback(ctx, doc, req)
	}
	if err != nil {
		return doc, List, 0, err
	}
	o.logger.Debug("located package list", "start", block.Start, "end", block.End, "elements", len(block.Elements))
	o.logger.Debug("classified package list", "style", block.Style.Kind, "indent", fmt.Sprintf("%q", block.Style.Indent), "trailing", block.Style.TrailingSeparator)

	if req.Op == Remove {
		next, status, err := nixfile.RemoveList(doc, block, req.Package)
		if err != nil || status != nixfile.NotPresent {
			return next, List, status, err
		}
		if _, err := nixfile.LocateOption(doc, o.spec, req.Package); !errors.Is(err, nixfile.ErrNotFound) {
			return o.applyOption(doc, req)
		}
		return next, List, status, nil
	}

	next, status, err := nixfile.InsertList(doc, block, req.Package)
	return next, List, status, err
}

// fallback handles a document without a package list.
func (o *Orchestrator) fallback(ctx context.Context, doc nixfile.Document, req Request) (nixfile.Document, Representation, nixfile.Status, error) {
	if req.Op == Remove {
		if _, err := nixfile.LocateOption(doc, o.spec, req.Package); !errors.Is(err, nixfile.ErrNotFound) {
			return o.applyOption(doc, req)
		}
	} else {
		ok, err := o.available(ctx, req.Package)
		if err != nil {
			return doc, List, 0, err
		}
		if ok {
			o.logger.Info("no package list found, declaring option", "option", o.spec.Key(req.Package))
			return o.applyOption(doc, req)
		}
	}
	return doc, List, 0, fmt.Errorf("%w: no `with pkgs; [ ... ]` list and no %s declaration", nixfile.ErrNotFound, o.spec.Key(req.Package))
}

func (o *Orchestrator) applyOption(doc nixfile.Document, req Request) (nixfile.Document, Representation, nixfile.Status, error) {
	if req.Op == Remove {
		next, status, err := nixfile.RemoveOption(doc, o.spec, req.Package)
		return next, Option, status, err
	}
	next, status, err := nixfile.InsertOption(doc, o.spec, req.Package)
	return next, Option, status, err
}

func (o *Orchestrator) available(ctx context.Context, pkg string) (bool, error) {
	if o.checker == nil {
		return false, nil
	}
	ok, err := o.checker.Available(ctx, pkg)
	if err != nil {
		return false, fmt.Errorf("checking option for %s: %w", pkg, err)
	}
	return ok, nil
}
