package layout

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/amymcvey/gnss-ro-data/pkg/archive"
	"github.com/amymcvey/gnss-ro-data/pkg/jobs"
	"github.com/amymcvey/gnss-ro-data/pkg/provider"
	"github.com/amymcvey/gnss-ro-data/pkg/registry"
)

// ucarResolver handles the UCAR CDAAC layout:
//
//	root/<ucar-mission>/<version>/[<extra>/]<level>/<year>/<day-of-year>/<product-dir>/
//
// One AWS mission may map to several UCAR mission directories; each is
// tried independently. Some version directories nest one extra segment
// (postProc, nrt) before the level directory; the resolver probes the
// version directory's first child to detect that. Level 2a and 2b share
// the "level2" directory and are told apart by product-directory prefix.
type ucarResolver struct {
	lister archive.Lister
	logger *zap.Logger
}

func (r *ucarResolver) Center() registry.Center { return registry.UCAR }

func (r *ucarResolver) Resolve(ctx context.Context, req Request) ([]jobs.Descriptor, error) {
	classifier, ok := ucarClassifiers[req.FileType]
	if !ok {
		r.logger.Debug("ucar: unsupported file type", zap.String("file_type", req.FileType.String()))
		return nil, nil
	}

	level := "level2"
	if req.FileType == registry.Level1B {
		level = "level1b"
	}

	ucarMissions, err := registry.CenterMissions(req.Mission, registry.UCAR)
	if err != nil {
		return nil, err
	}

	var found []jobs.Descriptor
	for _, ucarMission := range ucarMissions {
		descriptor, err := r.resolveMission(ctx, req, ucarMission, level, classifier)
		if err != nil {
			return nil, err
		}
		if descriptor != nil {
			found = append(found, *descriptor)
		}
	}
	return found, nil
}

// resolveMission scans one UCAR mission directory's processing versions
// and returns the first version's job for the requested day, or nil when
// every candidate was skipped.
func (r *ucarResolver) resolveMission(ctx context.Context, req Request, ucarMission, level string, classifier dirClassifier) (*jobs.Descriptor, error) {
	missionDir := joinPath(req.Root, ucarMission)
	versions, err := r.lister.ListDir(ctx, missionDir)
	if err != nil {
		if provider.IsNotFound(err) {
			r.logger.Debug("ucar: mission directory does not exist", zap.String("path", missionDir))
			return nil, nil
		}
		return nil, err
	}

	year := fmt.Sprintf("%04d", req.Date.Year())
	doy := fmt.Sprintf("%03d", req.Date.DayOfYear())

	for _, version := range versions {
		dayDir, err := r.locateDayDir(ctx, version, level, year, doy)
		if err != nil {
			return nil, err
		}
		if dayDir == "" {
			continue
		}

		children, err := r.lister.ListDir(ctx, dayDir)
		if err != nil {
			if provider.IsNotFound(err) {
				r.logger.Debug("ucar: day directory does not exist", zap.String("path", dayDir))
				continue
			}
			return nil, err
		}

		productDir, matched, ok := classifier.classify(children)
		if !ok {
			r.logger.Info("ucar: skipping ambiguous day directory",
				zap.String("path", dayDir),
				zap.String("file_type", req.FileType.String()),
				zap.Int("matches", matched))
			continue
		}

		files, err := r.lister.ListDir(ctx, productDir)
		if err != nil {
			if provider.IsNotFound(err) {
				r.logger.Debug("ucar: product directory does not exist", zap.String("path", productDir))
				continue
			}
			return nil, err
		}
		if len(files) == 0 {
			r.logger.Info("ucar: no files found", zap.String("path", productDir))
			continue
		}

		rel, err := relDir(req.Root, productDir)
		if err != nil {
			return nil, err
		}

		// First processing version with a match wins for the day.
		return &jobs.Descriptor{
			Date:             req.Date,
			Mission:          req.Mission,
			ProcessingCenter: registry.UCAR,
			FileType:         req.FileType.String(),
			InputRelativeDir: rel,
			NFiles:           len(files),
		}, nil
	}
	return nil, nil
}

// locateDayDir resolves the day directory under a version directory,
// probing for the extra nesting segment some liveupdate deliveries carry.
// Returns "" when the directory does not exist.
func (r *ucarResolver) locateDayDir(ctx context.Context, version, level, year, doy string) (string, error) {
	children, err := r.lister.ListDir(ctx, version)
	if err != nil {
		if provider.IsNotFound(err) {
			r.logger.Debug("ucar: version directory does not exist", zap.String("path", version))
			return "", nil
		}
		return "", err
	}
	if len(children) == 0 {
		return "", nil
	}

	dayDir := joinPath(version, level, year, doy)
	if first := baseName(children[0]); !strings.Contains(first, "level") {
		dayDir = joinPath(version, first, level, year, doy)
	}
	return dayDir, nil
}
