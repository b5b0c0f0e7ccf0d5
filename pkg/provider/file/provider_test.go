package file

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amymcvey/gnss-ro-data/pkg/provider"
)

func newProvider(t *testing.T, files ...string) (*Provider, string) {
	t.Helper()
	dir := t.TempDir()
	for _, f := range files {
		full := filepath.Join(dir, filepath.FromSlash(f))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte("data"), 0o644))
	}
	p, err := New(Config{BaseDir: dir})
	require.NoError(t, err)
	return p, dir
}

func TestNewValidation(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)

	_, err = New(Config{BaseDir: "  "})
	assert.Error(t, err)
}

func TestListDir(t *testing.T) {
	p, _ := newProvider(t,
		"cosmic1/repro2013/file1_nc",
		"cosmic1/repro2013/file2_nc",
		"cosmic1/readme.txt",
	)

	listing, err := p.ListDir(context.Background(), "cosmic1")
	require.NoError(t, err)
	assert.Equal(t, []string{"cosmic1/repro2013/"}, listing.ChildPrefixes)
	assert.Equal(t, []string{"cosmic1/readme.txt"}, listing.Keys)

	listing, err = p.ListDir(context.Background(), "cosmic1/repro2013")
	require.NoError(t, err)
	assert.Empty(t, listing.ChildPrefixes)
	assert.Equal(t, []string{"cosmic1/repro2013/file1_nc", "cosmic1/repro2013/file2_nc"}, listing.Keys)
}

func TestListDirNotFound(t *testing.T) {
	p, _ := newProvider(t, "a/b")

	_, err := p.ListDir(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, provider.IsNotFound(err))
}

func TestList(t *testing.T) {
	p, _ := newProvider(t,
		"cosmic1/a_nc",
		"cosmic1/b_nc",
		"metopa/c_nc",
	)

	res, err := p.List(context.Background(), provider.ListOptions{Prefix: "cosmic1"})
	require.NoError(t, err)
	require.Len(t, res.Objects, 2)
	assert.Equal(t, "cosmic1/a_nc", res.Objects[0].Key)
	assert.False(t, res.IsTruncated)
}

func TestListPagination(t *testing.T) {
	p, _ := newProvider(t, "f/a", "f/b", "f/c")

	res, err := p.List(context.Background(), provider.ListOptions{Prefix: "f", MaxKeys: 2})
	require.NoError(t, err)
	require.Len(t, res.Objects, 2)
	require.True(t, res.IsTruncated)

	res, err = p.List(context.Background(), provider.ListOptions{
		Prefix:            "f",
		MaxKeys:           2,
		ContinuationToken: res.ContinuationToken,
	})
	require.NoError(t, err)
	require.Len(t, res.Objects, 1)
	assert.Equal(t, "f/c", res.Objects[0].Key)
	assert.False(t, res.IsTruncated)
}

func TestPutAndDeleteObject(t *testing.T) {
	p, dir := newProvider(t)

	body := strings.NewReader("manifest body")
	require.NoError(t, p.PutObject(context.Background(), "batch/job.000001.json", body, int64(body.Len())))

	data, err := os.ReadFile(filepath.Join(dir, "batch", "job.000001.json"))
	require.NoError(t, err)
	assert.Equal(t, "manifest body", string(data))

	meta, err := p.Head(context.Background(), "batch/job.000001.json")
	require.NoError(t, err)
	assert.Equal(t, int64(len("manifest body")), meta.Size)

	require.NoError(t, p.DeleteObject(context.Background(), "batch/job.000001.json"))
	err = p.DeleteObject(context.Background(), "batch/job.000001.json")
	assert.True(t, provider.IsNotFound(err))
}

func TestFullPathRejectsTraversal(t *testing.T) {
	p, _ := newProvider(t)

	_, err := p.ListDir(context.Background(), "../outside")
	assert.Error(t, err)

	_, err = p.Head(context.Background(), "../../etc/passwd")
	assert.Error(t, err)
}
