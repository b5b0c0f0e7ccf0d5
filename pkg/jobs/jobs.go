// Package jobs defines the job-definition data model shared by the
// archive discovery builder, the job file iterator, and the batch
// splitter: one job is one directory of same-typed input files for one
// date/mission/center/file-type combination.
package jobs

import (
	"errors"
	"fmt"
	"time"

	"github.com/amymcvey/gnss-ro-data/pkg/registry"
)

// Structural errors for job-definition documents. The iterator and the
// loader return these as distinct kinds so callers can branch on cause;
// they indicate caller bugs, not runtime contingencies.
var (
	// ErrNotObject indicates the document is not a JSON/YAML mapping.
	ErrNotObject = errors.New("job definitions: document is not an object")

	// ErrMissingPrefixes indicates the document lacks the "prefixes" key.
	ErrMissingPrefixes = errors.New("job definitions: missing key \"prefixes\"")

	// ErrMissingJobs indicates the document lacks the "jobs" key.
	ErrMissingJobs = errors.New("job definitions: missing key \"jobs\"")

	// ErrJobsNotList indicates "jobs" is present but not a sequence.
	ErrJobsNotList = errors.New("job definitions: \"jobs\" is not a list")

	// ErrNoJobs indicates the job list is empty.
	ErrNoJobs = errors.New("job definitions: no jobs")

	// ErrPrefixMissing indicates a job references a processing center
	// absent from the prefixes map.
	ErrPrefixMissing = errors.New("job definitions: job center has no prefix entry")
)

// Date is a calendar day, serialized as YYYY-MM-DD.
type Date struct {
	time.Time
}

// DateLayout is the wire format for job dates.
const DateLayout = "2006-01-02"

// NewDate builds a Date for a year/month/day in UTC.
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return Date{t}, nil
}

// DayOfYear returns the one-based ordinal day within the year.
func (d Date) DayOfYear() int {
	return d.YearDay()
}

// Next returns the following calendar day.
func (d Date) Next() Date {
	return Date{d.AddDate(0, 0, 1)}
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	return d.Format(DateLayout)
}

// MarshalJSON implements json.Marshaler.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(DateLayout) + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Date) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("date %s: expected string", s)
	}
	parsed, err := ParseDate(s[1 : len(s)-1])
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Date) MarshalYAML() (interface{}, error) {
	return d.Format(DateLayout), nil
}

// UnmarshalYAML implements yaml.Unmarshaler for yaml.v3.
func (d *Date) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Descriptor describes one discovered job: a directory of same-typed
// input files for one date, mission, center, and file type.
type Descriptor struct {
	// Date is the calendar day of the soundings.
	Date Date `json:"date" yaml:"date"`

	// Mission is the AWS mission code.
	Mission string `json:"mission" yaml:"mission"`

	// ProcessingCenter is the contributing center.
	ProcessingCenter registry.Center `json:"processing_center" yaml:"processing_center"`

	// FileType is the AWS file type, or the center-native synonym for
	// JPL jobs (calibratedPhase, refractivityRetrieval,
	// atmosphericRetrieval).
	FileType string `json:"file_type" yaml:"file_type"`

	// InputRelativeDir locates the job's directory relative to the root
	// prefix recorded for ProcessingCenter.
	InputRelativeDir string `json:"input_relative_dir" yaml:"input_relative_dir"`

	// NFiles is the file count observed at discovery time. It is a
	// snapshot: the archive may have changed by consumption time.
	NFiles int `json:"nfiles" yaml:"nfiles"`
}

// DefinitionSet is the output of one discovery run: per-center root
// prefixes plus the job sequence in crawl order (date-major, then
// mission, then center).
type DefinitionSet struct {
	// Prefixes maps each swept processing center to its input root.
	Prefixes map[registry.Center]string `json:"prefixes" yaml:"prefixes"`

	// Jobs is the ordered job sequence.
	Jobs []Descriptor `json:"jobs" yaml:"jobs"`
}

// Empty reports whether the discovery run matched nothing. An empty set
// is a valid outcome; callers must check before batching.
func (s *DefinitionSet) Empty() bool {
	return s == nil || len(s.Jobs) == 0
}

// Validate checks the cross-field invariant: every job's center has a
// prefix entry. Shape errors are reported by the loader; this catches
// documents that are well-formed but inconsistent.
func (s *DefinitionSet) Validate() error {
	for i, job := range s.Jobs {
		if _, ok := s.Prefixes[job.ProcessingCenter]; !ok {
			return fmt.Errorf("%w: jobs[%d] center %q", ErrPrefixMissing, i, job.ProcessingCenter)
		}
	}
	return nil
}
