package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	orig, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(orig) })
}

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultRegion, cfg.Region)
	assert.Equal(t, DefaultDefinitionsBucket, cfg.DefinitionsBucket)
	assert.Equal(t, DefaultJobsPerFile, cfg.JobsPerFile)
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	doc := "region: eu-west-1\njobs_per_file: 500\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "rojobs.yaml"), []byte(doc), 0o644))
	chdir(t, dir)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "eu-west-1", cfg.Region)
	assert.Equal(t, 500, cfg.JobsPerFile)
	assert.Equal(t, DefaultDefinitionsBucket, cfg.DefinitionsBucket)
}

func TestLoadEnvOverride(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("ROJOBS_DEFINITIONS_BUCKET", "my-definitions")
	t.Setenv("ROJOBS_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "my-definitions", cfg.DefinitionsBucket)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadRejectsBadJobsPerFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "rojobs.yaml"), []byte("jobs_per_file: 0\n"), 0o644))
	chdir(t, dir)

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "rojobs.yaml"), []byte(":\nnot yaml"), 0o644))
	chdir(t, dir)

	_, err := Load()
	assert.Error(t, err)
}
