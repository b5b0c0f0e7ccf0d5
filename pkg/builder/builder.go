// Package builder drives the per-center layout resolvers over a cartesian
// sweep of dates, missions, centers, and file types, producing a job
// definition set plus the per-center root prefixes the jobs are relative
// to.
package builder

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/amymcvey/gnss-ro-data/pkg/archive"
	"github.com/amymcvey/gnss-ro-data/pkg/jobs"
	"github.com/amymcvey/gnss-ro-data/pkg/layout"
	"github.com/amymcvey/gnss-ro-data/pkg/registry"
)

// ErrInvalidRequest indicates a sweep request naming an unknown mission,
// center, or file type, or an inverted date range. Checked with
// errors.Is; the wrapping RequestError carries the offending value and
// the expected set.
var ErrInvalidRequest = errors.New("invalid job definition request")

// RequestError reports one rejected request field.
type RequestError struct {
	// Field names the rejected parameter.
	Field string

	// Value is the offending value as given.
	Value string

	// Expected enumerates the accepted values, when enumerable.
	Expected []string
}

func (e *RequestError) Error() string {
	if len(e.Expected) == 0 {
		return fmt.Sprintf("%s: %s %q", ErrInvalidRequest, e.Field, e.Value)
	}
	return fmt.Sprintf("%s: %s %q (expected one of %v)", ErrInvalidRequest, e.Field, e.Value, e.Expected)
}

func (e *RequestError) Unwrap() error { return ErrInvalidRequest }

// Params describes one sweep request.
type Params struct {
	// From and To bound the inclusive date range, in crawl order.
	From, To jobs.Date

	// Missions are the AWS mission codes to sweep.
	Missions []string

	// Centers are the processing centers to consult.
	Centers []registry.Center

	// FileTypes are the AWS file types to locate.
	FileTypes []registry.FileType

	// Liveupdate switches the default roots to the near-real-time
	// buckets and selects the liveupdate layouts.
	Liveupdate bool

	// NonNominal additionally scans ROM SAF non-nominal directories.
	NonNominal bool

	// PrefixOverrides replaces the computed default root for a center.
	PrefixOverrides map[registry.Center]string
}

// Builder sweeps archives into job definition sets. Construct with New.
type Builder struct {
	lister    archive.Lister
	logger    *zap.Logger
	limiter   *rate.Limiter
	resolvers map[registry.Center]layout.Resolver
}

// Option configures a Builder.
type Option func(*Builder)

// WithLogger sets the builder's logger. Defaults to a nop logger.
func WithLogger(logger *zap.Logger) Option {
	return func(b *Builder) { b.logger = logger }
}

// WithRateLimit caps resolver invocations (and so listing calls) at n
// per second. Zero or negative n disables limiting.
func WithRateLimit(n float64) Option {
	return func(b *Builder) {
		if n > 0 {
			b.limiter = rate.NewLimiter(rate.Limit(n), 1)
		}
	}
}

// New builds a Builder over the given archive lister.
func New(lister archive.Lister, opts ...Option) (*Builder, error) {
	b := &Builder{
		lister:    lister,
		logger:    zap.NewNop(),
		resolvers: make(map[registry.Center]layout.Resolver),
	}
	for _, opt := range opts {
		opt(b)
	}
	for _, c := range registry.Centers() {
		r, err := layout.New(c, lister, b.logger)
		if err != nil {
			return nil, err
		}
		b.resolvers[c] = r
	}
	return b, nil
}

// Build validates the request and sweeps the archives, returning the
// accumulated definition set. An empty job list is a valid outcome;
// callers check DefinitionSet.Empty before batching.
func (b *Builder) Build(ctx context.Context, p Params) (*jobs.DefinitionSet, error) {
	if err := validate(p); err != nil {
		return nil, err
	}

	logger := b.logger.With(
		zap.String("run_id", uuid.NewString()),
		zap.Bool("liveupdate", p.Liveupdate),
	)
	logger.Info("starting archive sweep",
		zap.String("from", p.From.String()),
		zap.String("to", p.To.String()),
		zap.Strings("missions", p.Missions))

	set := &jobs.DefinitionSet{Prefixes: make(map[registry.Center]string)}

	for date := p.From; !date.After(p.To.Time); date = date.Next() {
		for _, mission := range p.Missions {
			for _, center := range p.Centers {
				if !registry.CenterCarriesMission(mission, center) {
					continue
				}
				root, ok, err := b.rootFor(set, center, p)
				if err != nil {
					return nil, err
				}
				if !ok {
					continue
				}
				for _, fileType := range p.FileTypes {
					found, err := b.resolve(ctx, center, layout.Request{
						Date:       date,
						Mission:    mission,
						FileType:   fileType,
						Root:       root,
						Liveupdate: p.Liveupdate,
						NonNominal: p.NonNominal,
					})
					if err != nil {
						return nil, err
					}
					set.Jobs = append(set.Jobs, found...)
				}
			}
		}
	}

	logger.Info("archive sweep complete", zap.Int("jobs", len(set.Jobs)))
	return set, nil
}

// rootFor resolves and records a center's root prefix on first use.
// ok is false when the center has no archive for the requested mode.
func (b *Builder) rootFor(set *jobs.DefinitionSet, center registry.Center, p Params) (string, bool, error) {
	if root, ok := set.Prefixes[center]; ok {
		return root, true, nil
	}
	if root, ok := p.PrefixOverrides[center]; ok {
		set.Prefixes[center] = root
		return root, true, nil
	}
	root, err := registry.DefaultRoot(center, p.Liveupdate)
	if err != nil {
		if errors.Is(err, registry.ErrUnsupportedMode) {
			b.logger.Debug("center skipped for mode",
				zap.String("center", center.String()),
				zap.Bool("liveupdate", p.Liveupdate))
			return "", false, nil
		}
		return "", false, err
	}
	set.Prefixes[center] = root
	return root, true, nil
}

func (b *Builder) resolve(ctx context.Context, center registry.Center, req layout.Request) ([]jobs.Descriptor, error) {
	if b.limiter != nil {
		if err := b.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	return b.resolvers[center].Resolve(ctx, req)
}

func validate(p Params) error {
	if p.To.Before(p.From.Time) {
		return &RequestError{Field: "date range", Value: p.From.String() + ":" + p.To.String()}
	}
	if len(p.Missions) == 0 {
		return &RequestError{Field: "mission", Value: "", Expected: registry.Missions()}
	}
	for _, m := range p.Missions {
		if !registry.ValidMission(m) {
			return &RequestError{Field: "mission", Value: m, Expected: registry.Missions()}
		}
	}
	if len(p.Centers) == 0 {
		return &RequestError{Field: "processing center", Value: "", Expected: centerNames()}
	}
	for _, c := range p.Centers {
		if !registry.ValidCenter(c.String()) {
			return &RequestError{Field: "processing center", Value: c.String(), Expected: centerNames()}
		}
	}
	if len(p.FileTypes) == 0 {
		return &RequestError{Field: "file type", Value: "", Expected: fileTypeNames()}
	}
	for _, t := range p.FileTypes {
		if !registry.ValidFileType(t.String()) {
			return &RequestError{Field: "file type", Value: t.String(), Expected: fileTypeNames()}
		}
	}
	return nil
}

func centerNames() []string {
	var names []string
	for _, c := range registry.Centers() {
		names = append(names, c.String())
	}
	return names
}

func fileTypeNames() []string {
	var names []string
	for _, t := range registry.FileTypes() {
		names = append(names, t.String())
	}
	return names
}
