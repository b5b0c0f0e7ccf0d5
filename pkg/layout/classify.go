package layout

import (
	"fmt"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/amymcvey/gnss-ro-data/pkg/registry"
)

// dirClassifier selects the one subdirectory holding a file type's inputs
// out of a day directory's children. Patterns are doublestar globs
// evaluated against the directory base name.
//
// Every classifier enforces the same cardinality rule: exactly one match,
// otherwise the candidate day is ambiguous and skipped.
type dirClassifier struct {
	// patterns are the primary globs; a child matching any of them is a
	// candidate.
	patterns []string

	// fallback, when set, is consulted only if no primary pattern
	// matched anything; the first fallback match is the sole candidate.
	fallback string
}

// ucarClassifiers encode UCAR's filename-prefix conventions per AWS file
// type. Level 2b prefers the wetPf2 product and falls back to the legacy
// wetPrf.
var ucarClassifiers = map[registry.FileType]dirClassifier{
	registry.Level1B: {patterns: []string{"atmPhs*", "conPhs*"}},
	registry.Level2A: {patterns: []string{"atmPrf*"}},
	registry.Level2B: {patterns: []string{"wetPf2*"}, fallback: "wetPrf*"},
}

// romsafClassifier builds the ROM SAF per-day classifier: directories are
// named by product prefix and compact date.
func romsafClassifier(fileType registry.FileType, date string) (dirClassifier, bool) {
	switch fileType {
	case registry.Level2A:
		return dirClassifier{patterns: []string{"atm_" + date + "*"}}, true
	case registry.Level2B:
		return dirClassifier{patterns: []string{"wet_" + date + "*"}}, true
	default:
		return dirClassifier{}, false
	}
}

// anyDirClassifier accepts every child; used by EUMETSAT, whose single
// day subdirectory carries unpredictable prefixes.
var anyDirClassifier = dirClassifier{patterns: []string{"*"}}

// classify applies the cardinality rule to a day directory's children and
// returns the single matching path. The ok result is false when zero or
// several children matched; matched reports how many, for the skip log.
func (c dirClassifier) classify(children []string) (path string, matched int, ok bool) {
	var candidates []string
	for _, child := range children {
		name := baseName(child)
		for _, pat := range c.patterns {
			if match, _ := doublestar.Match(pat, name); match {
				candidates = append(candidates, child)
				break
			}
		}
	}

	if len(candidates) == 0 && c.fallback != "" {
		for _, child := range children {
			if match, _ := doublestar.Match(c.fallback, baseName(child)); match {
				candidates = append(candidates, child)
				break
			}
		}
	}

	if len(candidates) != 1 {
		return "", len(candidates), false
	}
	return candidates[0], 1, true
}

// netCDFPattern matches the delivered data files: names ending ".nc" or
// "_nc".
const netCDFPattern = "*[._]nc"

// filterNetCDF keeps only the paths naming NetCDF files.
func filterNetCDF(paths []string) []string {
	var out []string
	for _, p := range paths {
		if match, _ := doublestar.Match(netCDFPattern, baseName(p)); match {
			out = append(out, p)
		}
	}
	return out
}

// compactDate formats a jobs date as YYYYMMDD for ROM SAF directory names.
func compactDate(year, month, day int) string {
	return fmt.Sprintf("%04d%02d%02d", year, month, day)
}
