// Package batch consumes the job file iterator's stream and writes
// fixed-size batch manifests for the downstream reformatting pipeline.
package batch

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/amymcvey/gnss-ro-data/pkg/archive"
	"github.com/amymcvey/gnss-ro-data/pkg/iterate"
	"github.com/amymcvey/gnss-ro-data/pkg/registry"
)

// Splitter errors.
var (
	// ErrMixedRun indicates the input stream mixed processing centers
	// or root prefixes. One run covers one homogeneous family; mixed
	// sets must be split into separate runs by the caller.
	ErrMixedRun = errors.New("mixed processing center or prefix in batch run")

	// ErrBadConfig indicates an unusable splitter configuration.
	ErrBadConfig = errors.New("bad splitter configuration")
)

// MixedRunError carries the conflicting values of an aborted run.
type MixedRunError struct {
	WantCenter, GotCenter registry.Center
	WantPrefix, GotPrefix string
}

func (e *MixedRunError) Error() string {
	return fmt.Sprintf("%s: have (%s, %s), got (%s, %s)",
		ErrMixedRun, e.WantCenter, e.WantPrefix, e.GotCenter, e.GotPrefix)
}

func (e *MixedRunError) Unwrap() error { return ErrMixedRun }

// Manifest is one written batch document. Field names are the wire
// format consumed by the reformatting pipeline.
type Manifest struct {
	InputPrefix      string   `json:"InputPrefix"`
	ProcessingCenter string   `json:"ProcessingCenter"`
	InputFiles       []string `json:"InputFiles"`
}

// Source yields file references until ErrDone; satisfied by
// iterate.Iterator.
type Source interface {
	Next(ctx context.Context) (iterate.FileRef, error)
}

// Config sets a splitter's output shape.
type Config struct {
	// Template is a printf template consuming the 1-based manifest
	// index, for example
	// "s3://bucket/batchprocess-jobs/ucar-cosmic1-level1b.%06d.json".
	Template string

	// BatchSize caps the files per manifest.
	BatchSize int
}

// Splitter writes bounded batch manifests. Construct with New.
type Splitter struct {
	writer archive.Writer
	logger *zap.Logger
	cfg    Config
}

// Option configures a Splitter.
type Option func(*Splitter)

// WithLogger sets the splitter's logger. Defaults to a nop logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Splitter) { s.logger = logger }
}

// New builds a Splitter writing through the given archive writer.
func New(writer archive.Writer, cfg Config, opts ...Option) (*Splitter, error) {
	if cfg.BatchSize <= 0 {
		return nil, fmt.Errorf("%w: batch size %d", ErrBadConfig, cfg.BatchSize)
	}
	if cfg.Template == "" {
		return nil, fmt.Errorf("%w: empty output template", ErrBadConfig)
	}
	s := &Splitter{
		writer: writer,
		logger: zap.NewNop(),
		cfg:    cfg,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Run drains the source into sequentially numbered manifests, flushing
// each one as it fills and any non-empty remainder at exhaustion.
// Returns the number of manifests written. Manifests flushed before a
// fatal error remain in place.
func (s *Splitter) Run(ctx context.Context, src Source) (int, error) {
	logger := s.logger.With(zap.String("run_id", uuid.NewString()))

	var (
		manifest Manifest
		index    int
	)
	for {
		ref, err := src.Next(ctx)
		if err == iterate.ErrDone {
			break
		}
		if err != nil {
			return index, err
		}

		if len(manifest.InputFiles) == 0 && index == 0 {
			manifest.InputPrefix = ref.InputRoot
			manifest.ProcessingCenter = ref.ProcessingCenter.String()
		} else if ref.InputRoot != manifest.InputPrefix || ref.ProcessingCenter.String() != manifest.ProcessingCenter {
			return index, &MixedRunError{
				WantCenter: registry.Center(manifest.ProcessingCenter),
				GotCenter:  ref.ProcessingCenter,
				WantPrefix: manifest.InputPrefix,
				GotPrefix:  ref.InputRoot,
			}
		}

		manifest.InputFiles = append(manifest.InputFiles, ref.InputRelativePath)
		if len(manifest.InputFiles) == s.cfg.BatchSize {
			index++
			if err := s.flush(ctx, logger, &manifest, index); err != nil {
				return index - 1, err
			}
			manifest.InputFiles = nil
		}
	}

	if len(manifest.InputFiles) > 0 {
		index++
		if err := s.flush(ctx, logger, &manifest, index); err != nil {
			return index - 1, err
		}
	}

	logger.Info("batch run complete", zap.Int("manifests", index))
	return index, nil
}

func (s *Splitter) flush(ctx context.Context, logger *zap.Logger, m *Manifest, index int) error {
	dest := fmt.Sprintf(s.cfg.Template, index)
	if err := s.writer.WriteJSON(ctx, dest, m); err != nil {
		return fmt.Errorf("writing batch manifest %s: %w", dest, err)
	}
	logger.Debug("flushed batch manifest",
		zap.String("dest", dest),
		zap.Int("files", len(m.InputFiles)))
	return nil
}
