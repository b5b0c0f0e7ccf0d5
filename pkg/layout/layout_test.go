package layout

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/amymcvey/gnss-ro-data/pkg/archive/archivetest"
	"github.com/amymcvey/gnss-ro-data/pkg/jobs"
	"github.com/amymcvey/gnss-ro-data/pkg/registry"
)

func TestNewUnknownCenter(t *testing.T) {
	_, err := New(registry.Center("nasa"), archivetest.New(), zap.NewNop())
	require.Error(t, err)
	assert.ErrorIs(t, err, registry.ErrUnknownCenter)
}

func TestUCARResolve(t *testing.T) {
	root := "s3://ucar-earth-ro-archive-untarred"
	date := jobs.NewDate(2009, 1, 3)

	tests := []struct {
		name     string
		seed     []string
		fileType registry.FileType
		want     []jobs.Descriptor
	}{
		{
			name: "level1b atmPhs",
			seed: []string{
				root + "/cosmic1/repro2013/level1b/2009/003/atmPhs_repro2013/atmPhs_C001.2009.003_nc",
				root + "/cosmic1/repro2013/level1b/2009/003/atmPhs_repro2013/atmPhs_C002.2009.003_nc",
			},
			fileType: registry.Level1B,
			want: []jobs.Descriptor{{
				Date:             date,
				Mission:          "cosmic1",
				ProcessingCenter: registry.UCAR,
				FileType:         "level1b",
				InputRelativeDir: "cosmic1/repro2013/level1b/2009/003/atmPhs_repro2013",
				NFiles:           2,
			}},
		},
		{
			name: "level2b falls back to wetPrf",
			seed: []string{
				root + "/cosmic1/repro2013/level2/2009/003/wetPrf_repro2013/wetPrf_C001.2009.003_nc",
			},
			fileType: registry.Level2B,
			want: []jobs.Descriptor{{
				Date:             date,
				Mission:          "cosmic1",
				ProcessingCenter: registry.UCAR,
				FileType:         "level2b",
				InputRelativeDir: "cosmic1/repro2013/level2/2009/003/wetPrf_repro2013",
				NFiles:           1,
			}},
		},
		{
			name: "level2b prefers wetPf2 over wetPrf",
			seed: []string{
				root + "/cosmic1/repro2013/level2/2009/003/wetPf2_repro2013/wetPf2_C001.2009.003_nc",
				root + "/cosmic1/repro2013/level2/2009/003/wetPrf_repro2013/wetPrf_C001.2009.003_nc",
			},
			fileType: registry.Level2B,
			want: []jobs.Descriptor{{
				Date:             date,
				Mission:          "cosmic1",
				ProcessingCenter: registry.UCAR,
				FileType:         "level2b",
				InputRelativeDir: "cosmic1/repro2013/level2/2009/003/wetPf2_repro2013",
				NFiles:           1,
			}},
		},
		{
			name: "ambiguous day directory skipped",
			seed: []string{
				root + "/cosmic1/repro2013/level1b/2009/003/atmPhs_repro2013/atmPhs_C001.2009.003_nc",
				root + "/cosmic1/repro2013/level1b/2009/003/conPhs_repro2013/conPhs_C001.2009.003_nc",
			},
			fileType: registry.Level1B,
			want:     nil,
		},
		{
			name:     "absent mission directory",
			seed:     []string{root + "/unrelated/file_nc"},
			fileType: registry.Level2A,
			want:     nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := archivetest.New().Add(tt.seed...)
			r, err := New(registry.UCAR, fake, zap.NewNop())
			require.NoError(t, err)

			got, err := r.Resolve(context.Background(), Request{
				Date:     date,
				Mission:  "cosmic1",
				FileType: tt.fileType,
				Root:     root,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUCARResolveExtraNesting(t *testing.T) {
	root := "s3://ucar-earth-ro-archive-liveupdate/untarred"
	fake := archivetest.New().Add(
		root+"/spire/noaa/nrt/level1b/2009/003/conPhs_nrt/conPhs_S001.2009.003_nc",
		root+"/spire/noaa/nrt/level1b/2009/003/conPhs_nrt/conPhs_S002.2009.003_nc",
	)
	r, err := New(registry.UCAR, fake, zap.NewNop())
	require.NoError(t, err)

	got, err := r.Resolve(context.Background(), Request{
		Date:       jobs.NewDate(2009, 1, 3),
		Mission:    "spire",
		FileType:   registry.Level1B,
		Root:       root,
		Liveupdate: true,
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "spire/noaa/nrt/level1b/2009/003/conPhs_nrt", got[0].InputRelativeDir)
	assert.Equal(t, 2, got[0].NFiles)
}

func TestUCARResolveFirstVersionWins(t *testing.T) {
	root := "s3://ucar-earth-ro-archive-untarred"
	fake := archivetest.New().Add(
		root+"/cosmic1/repro2013/level2/2009/003/atmPrf_repro2013/atmPrf_C001.2009.003_nc",
		root+"/cosmic1/v999/level2/2009/003/atmPrf_v999/atmPrf_C001.2009.003_nc",
	)
	r, err := New(registry.UCAR, fake, zap.NewNop())
	require.NoError(t, err)

	got, err := r.Resolve(context.Background(), Request{
		Date:     jobs.NewDate(2009, 1, 3),
		Mission:  "cosmic1",
		FileType: registry.Level2A,
		Root:     root,
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "cosmic1/repro2013/level2/2009/003/atmPrf_repro2013", got[0].InputRelativeDir)
}

func TestUCARResolveMetopFansOut(t *testing.T) {
	root := "s3://ucar-earth-ro-archive-untarred"
	fake := archivetest.New().Add(
		root+"/metopa/repro2016/level2/2012/100/atmPrf_repro2016/atmPrf_MTPA.2012.100_nc",
		root+"/metopb/repro2016/level2/2012/100/atmPrf_repro2016/atmPrf_MTPB.2012.100_nc",
	)
	r, err := New(registry.UCAR, fake, zap.NewNop())
	require.NoError(t, err)

	got, err := r.Resolve(context.Background(), Request{
		Date:     jobs.NewDate(2012, 4, 9),
		Mission:  "metop",
		FileType: registry.Level2A,
		Root:     root,
	})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "metopa/repro2016/level2/2012/100/atmPrf_repro2016", got[0].InputRelativeDir)
	assert.Equal(t, "metopb/repro2016/level2/2012/100/atmPrf_repro2016", got[1].InputRelativeDir)
}

func TestROMSAFResolve(t *testing.T) {
	archival := "s3://romsaf-earth-ro-archive-untarred"
	live := "s3://romsaf-earth-ro-archive-liveupdate/untarred"
	date := jobs.NewDate(2009, 1, 3)

	tests := []struct {
		name       string
		root       string
		seed       []string
		fileType   registry.FileType
		liveupdate bool
		nonNominal bool
		wantDirs   []string
	}{
		{
			name: "archival level2a",
			root: archival,
			seed: []string{
				archival + "/romsaf/download/cosmic/2009/atm_20090103_cosmic_2009_0001/2009-01-03/atm_C001_nc",
			},
			fileType: registry.Level2A,
			wantDirs: []string{"romsaf/download/cosmic/2009/atm_20090103_cosmic_2009_0001/2009-01-03"},
		},
		{
			name: "liveupdate level2b",
			root: live,
			seed: []string{
				live + "/metop/2009/wet_20090103_metop_2009_0001/2009-01-03/wet_META_nc",
			},
			fileType:   registry.Level2B,
			liveupdate: true,
			wantDirs:   []string{"metop/2009/wet_20090103_metop_2009_0001/2009-01-03"},
		},
		{
			name: "non-nominal variant appended",
			root: archival,
			seed: []string{
				archival + "/romsaf/download/cosmic/2009/atm_20090103_cosmic_2009_0001/2009-01-03/atm_C001_nc",
				archival + "/romsaf/download/cosmic/2009/atm_20090103_cosmic_2009_0001/2009-01-03/non-nominal/atm_C002_nc",
			},
			fileType:   registry.Level2A,
			nonNominal: true,
			wantDirs: []string{
				"romsaf/download/cosmic/2009/atm_20090103_cosmic_2009_0001/2009-01-03",
				"romsaf/download/cosmic/2009/atm_20090103_cosmic_2009_0001/2009-01-03/non-nominal",
			},
		},
		{
			name: "level1b not published",
			root: archival,
			seed: []string{
				archival + "/romsaf/download/cosmic/2009/atm_20090103_cosmic_2009_0001/2009-01-03/atm_C001_nc",
			},
			fileType: registry.Level1B,
			wantDirs: nil,
		},
		{
			name: "ambiguous product directories skipped",
			root: archival,
			seed: []string{
				archival + "/romsaf/download/cosmic/2009/atm_20090103_a/2009-01-03/atm_C001_nc",
				archival + "/romsaf/download/cosmic/2009/atm_20090103_b/2009-01-03/atm_C001_nc",
			},
			fileType: registry.Level2A,
			wantDirs: nil,
		},
		{
			name: "non NetCDF files ignored",
			root: archival,
			seed: []string{
				archival + "/romsaf/download/cosmic/2009/atm_20090103_cosmic_2009_0001/2009-01-03/readme.txt",
			},
			fileType: registry.Level2A,
			wantDirs: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mission := "cosmic1"
			if tt.liveupdate {
				mission = "metop"
			}
			fake := archivetest.New().Add(tt.seed...)
			r, err := New(registry.ROMSAF, fake, zap.NewNop())
			require.NoError(t, err)

			got, err := r.Resolve(context.Background(), Request{
				Date:       date,
				Mission:    mission,
				FileType:   tt.fileType,
				Root:       tt.root,
				Liveupdate: tt.liveupdate,
				NonNominal: tt.nonNominal,
			})
			require.NoError(t, err)

			var dirs []string
			for _, d := range got {
				assert.Equal(t, registry.ROMSAF, d.ProcessingCenter)
				assert.Equal(t, tt.fileType.String(), d.FileType)
				dirs = append(dirs, d.InputRelativeDir)
			}
			assert.Equal(t, tt.wantDirs, dirs)
		})
	}
}

func TestJPLResolve(t *testing.T) {
	root := "s3://jpl-earth-ro-archive-untarred"
	date := jobs.NewDate(2009, 1, 3)

	fake := archivetest.New().Add(
		root+"/cosmic1/calibratedPhase/2009/01/03/cosmic1c1_20090103.nc",
		root+"/cosmic1/calibratedPhase/2009/01/03/cosmic1c2_20090103.nc",
		root+"/cosmic1/calibratedPhase/2009/01/03/manifest.txt",
	)
	r, err := New(registry.JPL, fake, zap.NewNop())
	require.NoError(t, err)

	got, err := r.Resolve(context.Background(), Request{
		Date:     date,
		Mission:  "cosmic1",
		FileType: registry.Level1B,
		Root:     root,
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "calibratedPhase", got[0].FileType)
	assert.Equal(t, "cosmic1/calibratedPhase/2009/01/03", got[0].InputRelativeDir)
	assert.Equal(t, 2, got[0].NFiles)
}

func TestJPLResolveSkips(t *testing.T) {
	root := "s3://jpl-earth-ro-archive-untarred"
	fake := archivetest.New().Add(
		root + "/cosmic1/calibratedPhase/2009/01/03/cosmic1c1_20090103.nc",
	)
	r, err := New(registry.JPL, fake, zap.NewNop())
	require.NoError(t, err)

	tests := []struct {
		name string
		req  Request
	}{
		{"no liveupdate feed", Request{Date: jobs.NewDate(2009, 1, 3), Mission: "cosmic1", FileType: registry.Level1B, Root: root, Liveupdate: true}},
		{"mission not carried", Request{Date: jobs.NewDate(2009, 1, 3), Mission: "spire", FileType: registry.Level1B, Root: root}},
		{"absent day directory", Request{Date: jobs.NewDate(2009, 1, 4), Mission: "cosmic1", FileType: registry.Level1B, Root: root}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Resolve(context.Background(), tt.req)
			require.NoError(t, err)
			assert.Empty(t, got)
		})
	}
}

func TestEUMETSATResolve(t *testing.T) {
	root := "s3://eumetsat-earth-ro-archive-liveupdate/untarred"
	fake := archivetest.New().Add(
		root+"/metopa/1.0/level1b/2009/003/W_XX-EUMETSAT-Darmstadt/file1_nc",
		root+"/metopa/1.0/level1b/2009/003/W_XX-EUMETSAT-Darmstadt/file2_nc",
		root+"/metopb/1.0/level1b/2009/003/W_XX-EUMETSAT-Darmstadt/file1_nc",
	)
	r, err := New(registry.EUMETSAT, fake, zap.NewNop())
	require.NoError(t, err)

	got, err := r.Resolve(context.Background(), Request{
		Date:       jobs.NewDate(2009, 1, 3),
		Mission:    "metop",
		FileType:   registry.Level1B,
		Root:       root,
		Liveupdate: true,
	})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "metopa/1.0/level1b/2009/003/W_XX-EUMETSAT-Darmstadt", got[0].InputRelativeDir)
	assert.Equal(t, 2, got[0].NFiles)
	assert.Equal(t, "metopb/1.0/level1b/2009/003/W_XX-EUMETSAT-Darmstadt", got[1].InputRelativeDir)
	assert.Equal(t, 1, got[1].NFiles)
}

func TestEUMETSATResolveSkips(t *testing.T) {
	root := "s3://eumetsat-earth-ro-archive-liveupdate/untarred"
	ambiguous := archivetest.New().Add(
		root+"/metopa/1.0/level1b/2009/003/dirA/file_nc",
		root+"/metopa/1.0/level1b/2009/003/dirB/file_nc",
	)
	r, err := New(registry.EUMETSAT, ambiguous, zap.NewNop())
	require.NoError(t, err)

	tests := []struct {
		name string
		req  Request
	}{
		{"archival feed not published", Request{Date: jobs.NewDate(2009, 1, 3), Mission: "metop", FileType: registry.Level1B, Root: root}},
		{"level2 not published", Request{Date: jobs.NewDate(2009, 1, 3), Mission: "metop", FileType: registry.Level2A, Root: root, Liveupdate: true}},
		{"ambiguous day directory", Request{Date: jobs.NewDate(2009, 1, 3), Mission: "metop", FileType: registry.Level1B, Root: root, Liveupdate: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Resolve(context.Background(), tt.req)
			require.NoError(t, err)
			assert.Empty(t, got)
		})
	}
}

func TestClassifyCardinality(t *testing.T) {
	c := dirClassifier{patterns: []string{"atmPhs*", "conPhs*"}}

	tests := []struct {
		name        string
		children    []string
		wantPath    string
		wantMatched int
		wantOK      bool
	}{
		{"single match", []string{"day/atmPhs_x", "day/other"}, "day/atmPhs_x", 1, true},
		{"no match", []string{"day/other"}, "", 0, false},
		{"two matches", []string{"day/atmPhs_x", "day/conPhs_x"}, "", 2, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, matched, ok := c.classify(tt.children)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantMatched, matched)
			assert.Equal(t, tt.wantPath, path)
		})
	}
}

func TestFilterNetCDF(t *testing.T) {
	got := filterNetCDF([]string{
		"dir/atmPhs_C001.2009.003_nc",
		"dir/atmPrf_C001.2009.003.nc",
		"dir/readme.txt",
		"dir/checksums",
	})
	assert.Equal(t, []string{
		"dir/atmPhs_C001.2009.003_nc",
		"dir/atmPrf_C001.2009.003.nc",
	}, got)
}
