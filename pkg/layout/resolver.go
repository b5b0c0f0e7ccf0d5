// Package layout maps (date, mission, file type) requests onto the four
// processing centers' archive directory conventions, yielding job
// descriptors for the directories that exist.
//
// Each center has its own Resolver hiding its path hierarchy and
// filename heuristics. Absent directories and ambiguous matches are
// benign: they are logged and yield no descriptor. Only transport faults
// propagate as errors.
package layout

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/amymcvey/gnss-ro-data/pkg/archive"
	"github.com/amymcvey/gnss-ro-data/pkg/jobs"
	"github.com/amymcvey/gnss-ro-data/pkg/registry"
)

// Request asks a resolver for the jobs of one date, mission, and file
// type under one center's archive root.
type Request struct {
	// Date is the calendar day to locate.
	Date jobs.Date

	// Mission is the AWS mission code.
	Mission string

	// FileType is the AWS file type.
	FileType registry.FileType

	// Root is the center's resolved input root prefix
	// (s3://bucket[/subpath] or a local path).
	Root string

	// Liveupdate selects the near-real-time layout where it differs
	// from the archival one.
	Liveupdate bool

	// NonNominal additionally scans the ROM SAF non-nominal variant
	// directory. Ignored by other centers.
	NonNominal bool
}

// Resolver enumerates one center's candidate directories for a request
// and classifies them into zero or more job descriptors.
//
// A nil descriptor slice with a nil error means every candidate was a
// benign skip (absent directory, ambiguous match, unsupported
// type/mode). Errors are reserved for transport faults.
type Resolver interface {
	// Center names the processing center this resolver serves.
	Center() registry.Center

	// Resolve returns the job descriptors for the request.
	Resolve(ctx context.Context, req Request) ([]jobs.Descriptor, error)
}

// constructors registers one resolver per center. Adding a center is a
// closed addition: a registry entry plus a constructor here.
var constructors = map[registry.Center]func(archive.Lister, *zap.Logger) Resolver{
	registry.UCAR:     func(l archive.Lister, log *zap.Logger) Resolver { return &ucarResolver{lister: l, logger: log} },
	registry.ROMSAF:   func(l archive.Lister, log *zap.Logger) Resolver { return &romsafResolver{lister: l, logger: log} },
	registry.JPL:      func(l archive.Lister, log *zap.Logger) Resolver { return &jplResolver{lister: l, logger: log} },
	registry.EUMETSAT: func(l archive.Lister, log *zap.Logger) Resolver { return &eumetsatResolver{lister: l, logger: log} },
}

// New returns the resolver registered for a center.
func New(c registry.Center, lister archive.Lister, logger *zap.Logger) (Resolver, error) {
	ctor, ok := constructors[c]
	if !ok {
		return nil, fmt.Errorf("%w: %q has no layout resolver", registry.ErrUnknownCenter, c)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return ctor(lister, logger), nil
}

// baseName returns the last path segment of an archive path.
func baseName(path string) string {
	path = strings.TrimSuffix(path, "/")
	if idx := strings.LastIndex(path, "/"); idx != -1 {
		return path[idx+1:]
	}
	return path
}

// joinPath joins archive path segments under a root without touching the
// root's scheme.
func joinPath(root string, elems ...string) string {
	uri, err := archive.ParseURI(root)
	if err != nil {
		// Root strings reach resolvers pre-validated by the builder.
		return root
	}
	return uri.Join(elems...).String()
}

// relDir converts a full directory path into the root-relative form
// stored in job descriptors.
func relDir(root, full string) (string, error) {
	rel, err := archive.RelPath(root, full)
	if err != nil {
		return "", fmt.Errorf("job directory outside root: %w", err)
	}
	return rel, nil
}
