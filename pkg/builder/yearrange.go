package builder

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/amymcvey/gnss-ro-data/pkg/archive"
	"github.com/amymcvey/gnss-ro-data/pkg/provider"
	"github.com/amymcvey/gnss-ro-data/pkg/registry"
)

// ErrNoArchiveYears indicates a mission/center pair with no year
// directories in the archive.
var ErrNoArchiveYears = errors.New("no archive years found")

// MissionYearRange discovers the first and last year a center's archive
// holds for a mission, by listing the year level of that center's layout.
// Used to default the sweep date range when the caller gives none.
func (b *Builder) MissionYearRange(ctx context.Context, center registry.Center, mission string, liveupdate bool) (first, last int, err error) {
	if !registry.ValidMission(mission) {
		return 0, 0, &RequestError{Field: "mission", Value: mission, Expected: registry.Missions()}
	}

	root, err := registry.DefaultRoot(center, liveupdate)
	if err != nil {
		return 0, 0, err
	}

	var years []int
	switch center {
	case registry.UCAR:
		years, err = b.ucarYears(ctx, root, mission)
	case registry.ROMSAF:
		years, err = b.romsafYears(ctx, root, mission, liveupdate)
	case registry.JPL:
		years, err = b.jplYears(ctx, root, mission)
	case registry.EUMETSAT:
		years, err = b.eumetsatYears(ctx, root, mission)
	default:
		return 0, 0, &RequestError{Field: "processing center", Value: center.String(), Expected: centerNames()}
	}
	if err != nil {
		return 0, 0, err
	}
	if len(years) == 0 {
		return 0, 0, ErrNoArchiveYears
	}

	first, last = years[0], years[0]
	for _, y := range years[1:] {
		if y < first {
			first = y
		}
		if y > last {
			last = y
		}
	}
	b.logger.Debug("mission year range",
		zap.String("center", center.String()),
		zap.String("mission", mission),
		zap.Int("first", first),
		zap.Int("last", last))
	return first, last, nil
}

func (b *Builder) ucarYears(ctx context.Context, root, mission string) ([]int, error) {
	aliases, err := registry.CenterMissions(mission, registry.UCAR)
	if err != nil {
		return nil, err
	}

	var years []int
	for _, alias := range aliases {
		versions, err := b.listOrSkip(ctx, join(root, alias))
		if err != nil {
			return nil, err
		}
		for _, version := range versions {
			children, err := b.listOrSkip(ctx, version)
			if err != nil {
				return nil, err
			}
			// Some version directories nest one extra segment before
			// the level directories.
			if len(children) > 0 && !strings.Contains(base(children[0]), "level") {
				children, err = b.listOrSkip(ctx, children[0])
				if err != nil {
					return nil, err
				}
			}
			for _, child := range children {
				if !strings.HasPrefix(base(child), "level") {
					continue
				}
				yearDirs, err := b.listOrSkip(ctx, child)
				if err != nil {
					return nil, err
				}
				years = append(years, parseYears(yearDirs)...)
			}
		}
	}
	return years, nil
}

func (b *Builder) romsafYears(ctx context.Context, root, mission string, liveupdate bool) ([]int, error) {
	aliases, err := registry.CenterMissions(mission, registry.ROMSAF)
	if err != nil {
		return nil, err
	}

	var years []int
	for _, alias := range aliases {
		missionDir := join(root, alias)
		if !liveupdate {
			missionDir = join(root, registry.ArchiveSubpath(registry.ROMSAF), alias)
		}
		yearDirs, err := b.listOrSkip(ctx, missionDir)
		if err != nil {
			return nil, err
		}
		years = append(years, parseYears(yearDirs)...)
	}
	return years, nil
}

func (b *Builder) jplYears(ctx context.Context, root, mission string) ([]int, error) {
	native, err := registry.JPLNativeFileType(registry.Level1B)
	if err != nil {
		return nil, err
	}
	yearDirs, err := b.listOrSkip(ctx, join(root, mission, native))
	if err != nil {
		return nil, err
	}
	return parseYears(yearDirs), nil
}

func (b *Builder) eumetsatYears(ctx context.Context, root, mission string) ([]int, error) {
	aliases, err := registry.CenterMissions(mission, registry.EUMETSAT)
	if err != nil {
		return nil, err
	}

	var years []int
	for _, alias := range aliases {
		versions, err := b.listOrSkip(ctx, join(root, alias))
		if err != nil {
			return nil, err
		}
		for _, version := range versions {
			yearDirs, err := b.listOrSkip(ctx, join(version, "level1b"))
			if err != nil {
				return nil, err
			}
			years = append(years, parseYears(yearDirs)...)
		}
	}
	return years, nil
}

// listOrSkip lists a directory, treating absence as an empty result.
func (b *Builder) listOrSkip(ctx context.Context, path string) ([]string, error) {
	if b.limiter != nil {
		if err := b.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	children, err := b.lister.ListDir(ctx, path)
	if err != nil {
		if provider.IsNotFound(err) {
			b.logger.Debug("directory does not exist", zap.String("path", path))
			return nil, nil
		}
		return nil, err
	}
	return children, nil
}

// parseYears extracts four-digit year directory names from a listing.
func parseYears(paths []string) []int {
	var years []int
	for _, p := range paths {
		name := base(p)
		if len(name) != 4 {
			continue
		}
		y, err := strconv.Atoi(name)
		if err != nil {
			continue
		}
		years = append(years, y)
	}
	return years
}

func base(path string) string {
	path = strings.TrimSuffix(path, "/")
	if idx := strings.LastIndex(path, "/"); idx != -1 {
		return path[idx+1:]
	}
	return path
}

func join(root string, elems ...string) string {
	uri, err := archive.ParseURI(root)
	if err != nil {
		return root
	}
	return uri.Join(elems...).String()
}
