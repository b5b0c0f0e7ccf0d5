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

// jplResolver handles the JPL layout:
//
//	root/<mission>/<native-file-type>/<yyyy>/<mm>/<dd>/
//
// JPL publishes under the AWS mission code directly and names file types
// by its native labels. The archive has no liveupdate feed.
type jplResolver struct {
	lister archive.Lister
	logger *zap.Logger
}

func (r *jplResolver) Center() registry.Center { return registry.JPL }

func (r *jplResolver) Resolve(ctx context.Context, req Request) ([]jobs.Descriptor, error) {
	if req.Liveupdate {
		r.logger.Debug("jpl: no liveupdate feed", zap.String("mission", req.Mission))
		return nil, nil
	}
	native, err := registry.JPLNativeFileType(req.FileType)
	if err != nil {
		r.logger.Debug("jpl: unsupported file type", zap.String("file_type", req.FileType.String()))
		return nil, nil
	}
	if !registry.CenterCarriesMission(req.Mission, registry.JPL) {
		r.logger.Debug("jpl: mission not carried", zap.String("mission", req.Mission))
		return nil, nil
	}

	dayDir := joinPath(req.Root, req.Mission, native,
		fmt.Sprintf("%04d", req.Date.Year()),
		fmt.Sprintf("%02d", int(req.Date.Month())),
		fmt.Sprintf("%02d", req.Date.Day()))

	files, err := r.lister.ListDir(ctx, dayDir)
	if err != nil {
		if provider.IsNotFound(err) {
			r.logger.Debug("jpl: day directory does not exist", zap.String("path", dayDir))
			return nil, nil
		}
		return nil, err
	}

	ncFiles := filterNetCDF(files)
	if len(ncFiles) == 0 {
		r.logger.Info("jpl: no files found", zap.String("path", dayDir))
		return nil, nil
	}

	rel, err := relDir(req.Root, dayDir)
	if err != nil {
		return nil, err
	}

	return []jobs.Descriptor{{
		Date:             req.Date,
		Mission:          req.Mission,
		ProcessingCenter: registry.JPL,
		FileType:         native,
		InputRelativeDir: rel,
		NFiles:           len(ncFiles),
	}}, nil
}
