package builder

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amymcvey/gnss-ro-data/pkg/archive/archivetest"
	"github.com/amymcvey/gnss-ro-data/pkg/jobs"
	"github.com/amymcvey/gnss-ro-data/pkg/registry"
)

func validParams() Params {
	return Params{
		From:      jobs.NewDate(2009, 1, 3),
		To:        jobs.NewDate(2009, 1, 4),
		Missions:  []string{"cosmic1"},
		Centers:   []registry.Center{registry.UCAR},
		FileTypes: []registry.FileType{registry.Level2A},
	}
}

func TestBuildValidation(t *testing.T) {
	b, err := New(archivetest.New())
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func(*Params)
		field  string
	}{
		{
			name:   "unknown mission",
			mutate: func(p *Params) { p.Missions = []string{"champ2"} },
			field:  "mission",
		},
		{
			name:   "no missions",
			mutate: func(p *Params) { p.Missions = nil },
			field:  "mission",
		},
		{
			name:   "unknown center",
			mutate: func(p *Params) { p.Centers = []registry.Center{"nasa"} },
			field:  "processing center",
		},
		{
			name:   "unknown file type",
			mutate: func(p *Params) { p.FileTypes = []registry.FileType{"level3"} },
			field:  "file type",
		},
		{
			name:   "inverted date range",
			mutate: func(p *Params) { p.From, p.To = p.To, p.From },
			field:  "date range",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validParams()
			tt.mutate(&p)

			_, err := b.Build(context.Background(), p)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidRequest)

			var reqErr *RequestError
			require.ErrorAs(t, err, &reqErr)
			assert.Equal(t, tt.field, reqErr.Field)
		})
	}
}

func TestBuildSweep(t *testing.T) {
	ucarRoot := "s3://ucar-earth-ro-archive-untarred"
	jplRoot := "s3://jpl-earth-ro-archive-untarred"
	fake := archivetest.New().Add(
		ucarRoot+"/cosmic1/repro2013/level2/2009/003/atmPrf_repro2013/atmPrf_C001.2009.003_nc",
		ucarRoot+"/cosmic1/repro2013/level2/2009/004/atmPrf_repro2013/atmPrf_C001.2009.004_nc",
		jplRoot+"/cosmic1/refractivityRetrieval/2009/01/03/cosmic1c1_20090103.nc",
	)

	b, err := New(fake)
	require.NoError(t, err)

	set, err := b.Build(context.Background(), Params{
		From:      jobs.NewDate(2009, 1, 3),
		To:        jobs.NewDate(2009, 1, 4),
		Missions:  []string{"cosmic1"},
		Centers:   []registry.Center{registry.JPL, registry.UCAR},
		FileTypes: []registry.FileType{registry.Level2A},
	})
	require.NoError(t, err)
	require.NoError(t, set.Validate())

	assert.Equal(t, map[registry.Center]string{
		registry.JPL:  jplRoot,
		registry.UCAR: ucarRoot,
	}, set.Prefixes)

	// Date-major order: both centers' day-3 jobs precede day 4.
	require.Len(t, set.Jobs, 3)
	assert.Equal(t, jobs.NewDate(2009, 1, 3), set.Jobs[0].Date)
	assert.Equal(t, registry.JPL, set.Jobs[0].ProcessingCenter)
	assert.Equal(t, "refractivityRetrieval", set.Jobs[0].FileType)
	assert.Equal(t, jobs.NewDate(2009, 1, 3), set.Jobs[1].Date)
	assert.Equal(t, registry.UCAR, set.Jobs[1].ProcessingCenter)
	assert.Equal(t, jobs.NewDate(2009, 1, 4), set.Jobs[2].Date)
	assert.Equal(t, registry.UCAR, set.Jobs[2].ProcessingCenter)
}

func TestBuildEmptyOutcome(t *testing.T) {
	b, err := New(archivetest.New())
	require.NoError(t, err)

	set, err := b.Build(context.Background(), validParams())
	require.NoError(t, err)
	assert.True(t, set.Empty())
}

func TestBuildPrefixOverride(t *testing.T) {
	override := "/mnt/archive/ucar"
	fake := archivetest.New().Add(
		override + "/cosmic1/repro2013/level2/2009/003/atmPrf_repro2013/atmPrf_C001.2009.003_nc",
	)
	b, err := New(fake)
	require.NoError(t, err)

	p := validParams()
	p.To = p.From
	p.PrefixOverrides = map[registry.Center]string{registry.UCAR: override}

	set, err := b.Build(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, override, set.Prefixes[registry.UCAR])
	require.Len(t, set.Jobs, 1)
	assert.Equal(t, "cosmic1/repro2013/level2/2009/003/atmPrf_repro2013", set.Jobs[0].InputRelativeDir)
}

func TestBuildModeSkipsCenters(t *testing.T) {
	// JPL has no liveupdate feed; the sweep skips it without recording
	// a prefix.
	b, err := New(archivetest.New())
	require.NoError(t, err)

	set, err := b.Build(context.Background(), Params{
		From:       jobs.NewDate(2009, 1, 3),
		To:         jobs.NewDate(2009, 1, 3),
		Missions:   []string{"cosmic1"},
		Centers:    []registry.Center{registry.JPL},
		FileTypes:  []registry.FileType{registry.Level1B},
		Liveupdate: true,
	})
	require.NoError(t, err)
	assert.True(t, set.Empty())
	assert.NotContains(t, set.Prefixes, registry.JPL)
}

func TestMissionYearRange(t *testing.T) {
	ucarRoot := "s3://ucar-earth-ro-archive-untarred"
	jplRoot := "s3://jpl-earth-ro-archive-untarred"
	fake := archivetest.New().Add(
		ucarRoot+"/cosmic1/repro2013/level2/2006/200/atmPrf_x/f_nc",
		ucarRoot+"/cosmic1/repro2013/level2/2014/100/atmPrf_x/f_nc",
		ucarRoot+"/cosmic1/repro2013/level1b/2008/100/atmPhs_x/f_nc",
		jplRoot+"/cosmic1/calibratedPhase/2007/01/03/f.nc",
		jplRoot+"/cosmic1/calibratedPhase/2011/01/03/f.nc",
	)
	b, err := New(fake)
	require.NoError(t, err)

	tests := []struct {
		name      string
		center    registry.Center
		wantFirst int
		wantLast  int
	}{
		{"ucar spans level directories", registry.UCAR, 2006, 2014},
		{"jpl probes calibratedPhase", registry.JPL, 2007, 2011},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first, last, err := b.MissionYearRange(context.Background(), tt.center, "cosmic1", false)
			require.NoError(t, err)
			assert.Equal(t, tt.wantFirst, first)
			assert.Equal(t, tt.wantLast, last)
		})
	}
}

func TestMissionYearRangeEmpty(t *testing.T) {
	b, err := New(archivetest.New())
	require.NoError(t, err)

	_, _, err = b.MissionYearRange(context.Background(), registry.UCAR, "cosmic1", false)
	assert.ErrorIs(t, err, ErrNoArchiveYears)
}

func TestMissionYearRangeUnsupportedMode(t *testing.T) {
	b, err := New(archivetest.New())
	require.NoError(t, err)

	_, _, err = b.MissionYearRange(context.Background(), registry.JPL, "cosmic1", true)
	assert.ErrorIs(t, err, registry.ErrUnsupportedMode)
}
