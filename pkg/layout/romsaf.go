package layout

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/amymcvey/gnss-ro-data/pkg/archive"
	"github.com/amymcvey/gnss-ro-data/pkg/jobs"
	"github.com/amymcvey/gnss-ro-data/pkg/provider"
	"github.com/amymcvey/gnss-ro-data/pkg/registry"
)

// romsafResolver handles the ROM SAF layout:
//
//	archival:   root/romsaf/download/<romsaf-mission>/<year>/<prod_YYYYMMDD...>/<YYYY-MM-DD>/
//	liveupdate: root/<romsaf-mission>/<year>/<prod_YYYYMMDD...>/<YYYY-MM-DD>/
//
// where prod is "atm" for level 2a and "wet" for level 2b. Exactly one
// product directory may match a day. A non-nominal sibling directory is
// optionally scanned and appended as a separate job.
type romsafResolver struct {
	lister archive.Lister
	logger *zap.Logger
}

func (r *romsafResolver) Center() registry.Center { return registry.ROMSAF }

func (r *romsafResolver) Resolve(ctx context.Context, req Request) ([]jobs.Descriptor, error) {
	compact := compactDate(req.Date.Year(), int(req.Date.Month()), req.Date.Day())
	classifier, ok := romsafClassifier(req.FileType, compact)
	if !ok {
		r.logger.Debug("romsaf: unsupported file type", zap.String("file_type", req.FileType.String()))
		return nil, nil
	}

	romsafMissions, err := registry.CenterMissions(req.Mission, registry.ROMSAF)
	if err != nil {
		return nil, err
	}

	var found []jobs.Descriptor
	for _, romsafMission := range romsafMissions {
		descriptors, err := r.resolveMission(ctx, req, romsafMission, classifier)
		if err != nil {
			return nil, err
		}
		found = append(found, descriptors...)
	}
	return found, nil
}

func (r *romsafResolver) resolveMission(ctx context.Context, req Request, romsafMission string, classifier dirClassifier) ([]jobs.Descriptor, error) {
	year := fmt.Sprintf("%04d", req.Date.Year())
	yearDir := joinPath(req.Root, romsafMission, year)
	if !req.Liveupdate {
		yearDir = joinPath(req.Root, registry.ArchiveSubpath(registry.ROMSAF), romsafMission, year)
	}

	children, err := r.lister.ListDir(ctx, yearDir)
	if err != nil {
		if provider.IsNotFound(err) {
			r.logger.Debug("romsaf: year directory does not exist", zap.String("path", yearDir))
			return nil, nil
		}
		return nil, err
	}

	productDir, matched, ok := classifier.classify(children)
	if !ok {
		r.logger.Info("romsaf: skipping ambiguous year directory",
			zap.String("path", yearDir),
			zap.String("file_type", req.FileType.String()),
			zap.Int("matches", matched))
		return nil, nil
	}

	dayDir := joinPath(productDir, req.Date.String())

	var found []jobs.Descriptor
	descriptor, err := r.dayJob(ctx, req, dayDir)
	if err != nil {
		return nil, err
	}
	if descriptor != nil {
		found = append(found, *descriptor)
	}

	if req.NonNominal {
		nn, err := r.dayJob(ctx, req, joinPath(dayDir, "non-nominal"))
		if err != nil {
			return nil, err
		}
		if nn != nil {
			found = append(found, *nn)
		}
	}
	return found, nil
}

// dayJob lists one day directory and builds its descriptor, or nil when
// the directory is absent or holds no NetCDF files.
func (r *romsafResolver) dayJob(ctx context.Context, req Request, dayDir string) (*jobs.Descriptor, error) {
	files, err := r.lister.ListDir(ctx, dayDir)
	if err != nil {
		if provider.IsNotFound(err) {
			r.logger.Debug("romsaf: day directory does not exist", zap.String("path", dayDir))
			return nil, nil
		}
		return nil, err
	}

	ncFiles := filterNetCDF(files)
	if len(ncFiles) == 0 {
		r.logger.Info("romsaf: no files found", zap.String("path", dayDir))
		return nil, nil
	}

	rel, err := relDir(req.Root, dayDir)
	if err != nil {
		return nil, err
	}

	return &jobs.Descriptor{
		Date:             req.Date,
		Mission:          req.Mission,
		ProcessingCenter: registry.ROMSAF,
		FileType:         req.FileType.String(),
		InputRelativeDir: rel,
		NFiles:           len(ncFiles),
	}, nil
}
