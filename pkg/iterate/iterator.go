// Package iterate expands a job definition set into the flat sequence of
// input files the jobs name, one file reference at a time.
package iterate

import (
	"context"
	"errors"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/zap"

	"github.com/amymcvey/gnss-ro-data/pkg/archive"
	"github.com/amymcvey/gnss-ro-data/pkg/jobs"
	"github.com/amymcvey/gnss-ro-data/pkg/provider"
	"github.com/amymcvey/gnss-ro-data/pkg/registry"
)

// ErrDone signals normal exhaustion of the file sequence.
var ErrDone = errors.New("no more files")

// FileRef names one input file of one job.
type FileRef struct {
	// FileType is the job's file type, center-native where the center
	// uses its own labels.
	FileType string

	// ProcessingCenter is the contributing center.
	ProcessingCenter registry.Center

	// InputRoot is the center's root prefix from the definition set.
	InputRoot string

	// InputRelativePath locates the file under InputRoot.
	InputRelativePath string
}

// Iterator walks a definition set's jobs in order, resolving each job's
// file list on demand. The sequence is finite and forward-only; build a
// new Iterator to re-traverse.
type Iterator struct {
	lister archive.Lister
	logger *zap.Logger
	set    *jobs.DefinitionSet

	// next indexes the next job to resolve; buffer holds the remaining
	// references of the job most recently resolved.
	next   int
	buffer []FileRef
}

// Option configures an Iterator.
type Option func(*Iterator)

// WithLogger sets the iterator's logger. Defaults to a nop logger.
func WithLogger(logger *zap.Logger) Option {
	return func(it *Iterator) { it.logger = logger }
}

// New validates the definition set's shape and builds an iterator over
// it. The first job's file list is resolved eagerly so a broken set or
// unreachable archive fails here rather than mid-stream. Structural
// defects surface as the distinct jobs error kinds.
func New(ctx context.Context, lister archive.Lister, set *jobs.DefinitionSet, opts ...Option) (*Iterator, error) {
	if set == nil {
		return nil, jobs.ErrNotObject
	}
	if set.Prefixes == nil {
		return nil, jobs.ErrMissingPrefixes
	}
	if set.Jobs == nil {
		return nil, jobs.ErrMissingJobs
	}
	if len(set.Jobs) == 0 {
		return nil, jobs.ErrNoJobs
	}
	if err := set.Validate(); err != nil {
		return nil, err
	}

	it := &Iterator{
		lister: lister,
		logger: zap.NewNop(),
		set:    set,
	}
	for _, opt := range opts {
		opt(it)
	}

	if err := it.loadNextJob(ctx); err != nil {
		return nil, err
	}
	return it, nil
}

// Next returns the next file reference, or ErrDone when the job sequence
// is exhausted. Jobs whose directories resolve empty are consumed
// without yielding references.
func (it *Iterator) Next(ctx context.Context) (FileRef, error) {
	for len(it.buffer) == 0 {
		if it.next >= len(it.set.Jobs) {
			return FileRef{}, ErrDone
		}
		if err := it.loadNextJob(ctx); err != nil {
			return FileRef{}, err
		}
	}
	ref := it.buffer[0]
	it.buffer = it.buffer[1:]
	return ref, nil
}

// loadNextJob resolves the file list of the job at the cursor and
// advances it. An absent directory leaves an empty buffer; only
// transport faults are returned.
func (it *Iterator) loadNextJob(ctx context.Context) error {
	job := it.set.Jobs[it.next]
	it.next++
	it.buffer = nil

	root := it.set.Prefixes[job.ProcessingCenter]
	dir := joinPath(root, job.InputRelativeDir)

	children, err := it.lister.ListDir(ctx, dir)
	if err != nil {
		if provider.IsNotFound(err) {
			it.logger.Info("job directory no longer exists",
				zap.String("path", dir),
				zap.String("date", job.Date.String()))
			return nil
		}
		return err
	}

	for _, child := range children {
		name := baseName(child)
		if match, _ := doublestar.Match("*[._]nc", name); !match {
			continue
		}
		rel, err := archive.RelPath(root, child)
		if err != nil {
			return err
		}
		it.buffer = append(it.buffer, FileRef{
			FileType:          job.FileType,
			ProcessingCenter:  job.ProcessingCenter,
			InputRoot:         root,
			InputRelativePath: rel,
		})
	}
	if len(it.buffer) == 0 {
		it.logger.Info("job yielded no files",
			zap.String("path", dir),
			zap.Int("nfiles_at_discovery", job.NFiles))
	}
	return nil
}

func joinPath(root string, elems ...string) string {
	uri, err := archive.ParseURI(root)
	if err != nil {
		return root
	}
	return uri.Join(elems...).String()
}

func baseName(path string) string {
	path = strings.TrimSuffix(path, "/")
	if idx := strings.LastIndex(path, "/"); idx != -1 {
		return path[idx+1:]
	}
	return path
}
