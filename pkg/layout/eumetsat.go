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

// eumetsatResolver handles the EUMETSAT layout:
//
//	root/<eumetsat-mission>/<version>/level1b/<year>/<doy>/<subdir>/
//
// Only level 1b is published, only on the liveupdate feed. Each day
// directory holds exactly one subdirectory of unpredictable name; the
// data files live inside it.
type eumetsatResolver struct {
	lister archive.Lister
	logger *zap.Logger
}

func (r *eumetsatResolver) Center() registry.Center { return registry.EUMETSAT }

func (r *eumetsatResolver) Resolve(ctx context.Context, req Request) ([]jobs.Descriptor, error) {
	if !req.Liveupdate {
		r.logger.Debug("eumetsat: archival feed not published", zap.String("mission", req.Mission))
		return nil, nil
	}
	if req.FileType != registry.Level1B {
		r.logger.Debug("eumetsat: unsupported file type", zap.String("file_type", req.FileType.String()))
		return nil, nil
	}

	eumetsatMissions, err := registry.CenterMissions(req.Mission, registry.EUMETSAT)
	if err != nil {
		return nil, err
	}

	var found []jobs.Descriptor
	for _, em := range eumetsatMissions {
		descriptors, err := r.resolveMission(ctx, req, em)
		if err != nil {
			return nil, err
		}
		found = append(found, descriptors...)
	}
	return found, nil
}

func (r *eumetsatResolver) resolveMission(ctx context.Context, req Request, eumetsatMission string) ([]jobs.Descriptor, error) {
	missionDir := joinPath(req.Root, eumetsatMission)
	versions, err := r.lister.ListDir(ctx, missionDir)
	if err != nil {
		if provider.IsNotFound(err) {
			r.logger.Debug("eumetsat: mission directory does not exist", zap.String("path", missionDir))
			return nil, nil
		}
		return nil, err
	}

	year := fmt.Sprintf("%04d", req.Date.Year())
	doy := fmt.Sprintf("%03d", req.Date.DayOfYear())

	var found []jobs.Descriptor
	for _, version := range versions {
		dayDir := joinPath(version, "level1b", year, doy)
		children, err := r.lister.ListDir(ctx, dayDir)
		if err != nil {
			if provider.IsNotFound(err) {
				r.logger.Debug("eumetsat: day directory does not exist", zap.String("path", dayDir))
				continue
			}
			return nil, err
		}

		inputDir, matched, ok := anyDirClassifier.classify(children)
		if !ok {
			r.logger.Info("eumetsat: skipping ambiguous day directory",
				zap.String("path", dayDir),
				zap.Int("matches", matched))
			continue
		}

		files, err := r.lister.ListDir(ctx, inputDir)
		if err != nil {
			if provider.IsNotFound(err) {
				r.logger.Debug("eumetsat: input directory does not exist", zap.String("path", inputDir))
				continue
			}
			return nil, err
		}

		ncFiles := filterNetCDF(files)
		if len(ncFiles) == 0 {
			r.logger.Info("eumetsat: no files found", zap.String("path", inputDir))
			continue
		}

		rel, err := relDir(req.Root, inputDir)
		if err != nil {
			return nil, err
		}

		found = append(found, jobs.Descriptor{
			Date:             req.Date,
			Mission:          req.Mission,
			ProcessingCenter: registry.EUMETSAT,
			FileType:         req.FileType.String(),
			InputRelativeDir: rel,
			NFiles:           len(ncFiles),
		})
	}
	return found, nil
}
