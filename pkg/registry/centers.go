// Package registry holds the static lookup tables consulted during
// archive discovery: the processing centers contributing RO data, their
// archive locations and supported file types, and the missions with their
// per-center naming aliases.
package registry

import (
	"errors"
	"fmt"
	"sort"
)

// Center identifies a contributing processing center.
type Center string

const (
	UCAR     Center = "ucar"
	ROMSAF   Center = "romsaf"
	JPL      Center = "jpl"
	EUMETSAT Center = "eumetsat"
)

// String returns the center name.
func (c Center) String() string { return string(c) }

// FileType is an AWS RO file type (processing level).
type FileType string

const (
	Level1B FileType = "level1b"
	Level2A FileType = "level2a"
	Level2B FileType = "level2b"
)

// String returns the file type name.
func (t FileType) String() string { return string(t) }

// Registry errors.
var (
	// ErrUnknownCenter indicates a center name with no registry entry.
	ErrUnknownCenter = errors.New("unknown processing center")

	// ErrUnsupportedMode indicates a center has no archive for the
	// requested mode: JPL is archival-only, EUMETSAT liveupdate-only.
	ErrUnsupportedMode = errors.New("unsupported archive mode for center")
)

// CenterInfo describes one center's archive conventions.
type CenterInfo struct {
	// ArchiveBucket holds the archival deliveries. Empty if the center
	// only contributes in liveupdate mode.
	ArchiveBucket string

	// LiveupdateBucket holds the near-real-time rolling deliveries.
	// Empty if the center has no liveupdate feed.
	LiveupdateBucket string

	// UntarredSubpath is appended to the liveupdate bucket root, where
	// the ingest lambda unpacks delivered tarballs.
	UntarredSubpath string

	// ArchiveSubpath is appended to the archival bucket root.
	ArchiveSubpath string

	// FileTypes are the AWS file types this center contributes.
	FileTypes []FileType
}

// centers is the authoritative center table. Adding a center is a closed
// addition here plus a layout resolver registration.
var centers = map[Center]CenterInfo{
	UCAR: {
		ArchiveBucket:    "ucar-earth-ro-archive-untarred",
		LiveupdateBucket: "ucar-earth-ro-archive-liveupdate",
		UntarredSubpath:  "untarred",
		FileTypes:        []FileType{Level1B, Level2A, Level2B},
	},
	ROMSAF: {
		ArchiveBucket:    "romsaf-earth-ro-archive-untarred",
		LiveupdateBucket: "romsaf-earth-ro-archive-liveupdate",
		UntarredSubpath:  "untarred",
		ArchiveSubpath:   "romsaf/download",
		FileTypes:        []FileType{Level2A, Level2B},
	},
	JPL: {
		ArchiveBucket: "jpl-earth-ro-archive-untarred",
		FileTypes:     []FileType{Level1B, Level2A, Level2B},
	},
	EUMETSAT: {
		LiveupdateBucket: "eumetsat-earth-ro-archive-liveupdate",
		UntarredSubpath:  "untarred",
		FileTypes:        []FileType{Level1B},
	},
}

// jplFileTypes translates AWS file types to JPL's native archive labels,
// which double as path segments in the JPL layout.
var jplFileTypes = map[FileType]string{
	Level1B: "calibratedPhase",
	Level2A: "refractivityRetrieval",
	Level2B: "atmosphericRetrieval",
}

// ValidCenter reports whether name is a known processing center.
func ValidCenter(name string) bool {
	_, ok := centers[Center(name)]
	return ok
}

// Centers returns the known center names, sorted.
func Centers() []Center {
	names := make([]Center, 0, len(centers))
	for c := range centers {
		names = append(names, c)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// CenterFileTypes returns the file types a center contributes.
// Returns ErrUnknownCenter for an unregistered name.
func CenterFileTypes(c Center) ([]FileType, error) {
	info, ok := centers[c]
	if !ok {
		return nil, fmt.Errorf("%w: %q (expected one of %v)", ErrUnknownCenter, c, Centers())
	}
	return append([]FileType(nil), info.FileTypes...), nil
}

// SupportsFileType reports whether a center contributes the given type.
func SupportsFileType(c Center, t FileType) bool {
	info, ok := centers[c]
	if !ok {
		return false
	}
	for _, ft := range info.FileTypes {
		if ft == t {
			return true
		}
	}
	return false
}

// ValidFileType reports whether name is a known AWS file type at any center.
func ValidFileType(name string) bool {
	switch FileType(name) {
	case Level1B, Level2A, Level2B:
		return true
	}
	return false
}

// FileTypes returns all AWS file types, sorted.
func FileTypes() []FileType {
	return []FileType{Level1B, Level2A, Level2B}
}

// JPLNativeFileType translates an AWS file type to JPL's native label.
func JPLNativeFileType(t FileType) (string, error) {
	native, ok := jplFileTypes[t]
	if !ok {
		return "", fmt.Errorf("file type %q has no JPL translation", t)
	}
	return native, nil
}

// ArchiveSubpath returns the extra path segment between a center's
// archival bucket root and its mission directories.
func ArchiveSubpath(c Center) string {
	return centers[c].ArchiveSubpath
}

// DefaultRoot computes a center's default input root prefix for the given
// mode. Liveupdate roots include the untarred subpath where the ingest
// lambda unpacks deliveries. Returns ErrUnsupportedMode when the center
// has no archive for the mode (JPL liveupdate, EUMETSAT archival).
func DefaultRoot(c Center, liveupdate bool) (string, error) {
	info, ok := centers[c]
	if !ok {
		return "", fmt.Errorf("%w: %q (expected one of %v)", ErrUnknownCenter, c, Centers())
	}

	if liveupdate {
		if info.LiveupdateBucket == "" {
			return "", fmt.Errorf("%w: %s has no liveupdate feed", ErrUnsupportedMode, c)
		}
		root := "s3://" + info.LiveupdateBucket
		if info.UntarredSubpath != "" {
			root += "/" + info.UntarredSubpath
		}
		return root, nil
	}

	if info.ArchiveBucket == "" {
		return "", fmt.Errorf("%w: %s is liveupdate only", ErrUnsupportedMode, c)
	}
	return "s3://" + info.ArchiveBucket, nil
}
