// Package file implements the provider interface for local filesystem
// archives. JPL deliveries in particular may be staged on local disk
// before upload, and batch manifests can be written locally.
package file

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/amymcvey/gnss-ro-data/pkg/provider"
)

// Provider implements provider.Provider for local filesystem paths.
//
// Keys are treated as slash-separated paths relative to BaseDir.
type Provider struct {
	baseDir string
}

// Ensure Provider implements provider capability interfaces.
var (
	_ provider.Provider      = (*Provider)(nil)
	_ provider.ObjectPutter  = (*Provider)(nil)
	_ provider.ObjectDeleter = (*Provider)(nil)
)

type Config struct {
	BaseDir string
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.BaseDir) == "" {
		return fmt.Errorf("base dir is required")
	}
	return nil
}

func New(cfg Config) (*Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Provider{baseDir: filepath.Clean(cfg.BaseDir)}, nil
}

func (p *Provider) Close() error { return nil }

func (p *Provider) List(ctx context.Context, opts provider.ListOptions) (*provider.ListResult, error) {
	_ = ctx
	maxKeys := opts.MaxKeys
	if maxKeys <= 0 {
		maxKeys = 1000
	}

	prefix := strings.TrimPrefix(opts.Prefix, "/")
	keys, err := p.collectKeys(prefix)
	if err != nil {
		return nil, p.wrapError("List", opts.Prefix, err)
	}
	sort.Strings(keys)

	start := 0
	if opts.ContinuationToken != "" {
		// Start strictly after the last returned key.
		idx := sort.SearchStrings(keys, opts.ContinuationToken)
		for idx < len(keys) && keys[idx] <= opts.ContinuationToken {
			idx++
		}
		start = idx
	}

	end := start + maxKeys
	if end > len(keys) {
		end = len(keys)
	}

	objects := make([]provider.ObjectSummary, 0, end-start)
	for _, k := range keys[start:end] {
		full, err := p.fullPath(k)
		if err != nil {
			continue
		}
		st, err := os.Stat(full)
		if err != nil || st.IsDir() {
			continue
		}
		objects = append(objects, provider.ObjectSummary{Key: k, Size: st.Size(), LastModified: st.ModTime()})
	}

	res := &provider.ListResult{Objects: objects}
	if end < len(keys) {
		res.IsTruncated = true
		res.ContinuationToken = keys[end-1]
	}
	return res, nil
}

// ListDir maps directly onto os.ReadDir: regular files become Keys,
// directories become ChildPrefixes. A missing directory is ErrNotFound.
func (p *Provider) ListDir(ctx context.Context, prefix string) (*provider.DirListing, error) {
	_ = ctx
	prefix = strings.Trim(prefix, "/")
	full, err := p.fullPath(prefix)
	if err != nil {
		return nil, p.wrapError("ListDir", prefix, err)
	}

	entries, err := os.ReadDir(full)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &provider.Error{Op: "ListDir", Provider: provider.TypeFile, Bucket: p.baseDir, Key: prefix, Err: provider.ErrNotFound}
		}
		return nil, p.wrapError("ListDir", prefix, err)
	}

	listing := &provider.DirListing{}
	for _, e := range entries {
		child := e.Name()
		if prefix != "" {
			child = prefix + "/" + child
		}
		if e.IsDir() {
			listing.ChildPrefixes = append(listing.ChildPrefixes, child+"/")
		} else {
			listing.Keys = append(listing.Keys, child)
		}
	}
	sort.Strings(listing.Keys)
	sort.Strings(listing.ChildPrefixes)
	return listing, nil
}

func (p *Provider) Head(ctx context.Context, key string) (*provider.ObjectMeta, error) {
	_ = ctx
	full, err := p.fullPath(key)
	if err != nil {
		return nil, p.wrapError("Head", key, err)
	}
	st, err := os.Stat(full)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &provider.Error{Op: "Head", Provider: provider.TypeFile, Bucket: p.baseDir, Key: key, Err: provider.ErrNotFound}
		}
		return nil, p.wrapError("Head", key, err)
	}
	if st.IsDir() {
		return nil, &provider.Error{Op: "Head", Provider: provider.TypeFile, Bucket: p.baseDir, Key: key, Err: provider.ErrNotFound}
	}

	return &provider.ObjectMeta{
		ObjectSummary: provider.ObjectSummary{Key: strings.TrimPrefix(key, "/"), Size: st.Size(), LastModified: st.ModTime()},
	}, nil
}

func (p *Provider) PutObject(ctx context.Context, key string, body io.Reader, contentLength int64) error {
	_ = ctx
	_ = contentLength
	full, err := p.fullPath(key)
	if err != nil {
		return p.wrapError("PutObject", key, err)
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return p.wrapError("PutObject", key, err)
	}
	f, err := os.Create(full)
	if err != nil {
		return p.wrapError("PutObject", key, err)
	}
	if _, err := io.Copy(f, body); err != nil {
		_ = f.Close()
		return p.wrapError("PutObject", key, err)
	}
	if err := f.Close(); err != nil {
		return p.wrapError("PutObject", key, err)
	}
	return nil
}

func (p *Provider) DeleteObject(ctx context.Context, key string) error {
	_ = ctx
	full, err := p.fullPath(key)
	if err != nil {
		return p.wrapError("DeleteObject", key, err)
	}
	if err := os.Remove(full); err != nil {
		if os.IsNotExist(err) {
			return &provider.Error{Op: "DeleteObject", Provider: provider.TypeFile, Bucket: p.baseDir, Key: key, Err: provider.ErrNotFound}
		}
		return p.wrapError("DeleteObject", key, err)
	}
	return nil
}

// collectKeys walks the base directory gathering keys under prefix.
func (p *Provider) collectKeys(prefix string) ([]string, error) {
	var keys []string
	err := filepath.WalkDir(p.baseDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(p.baseDir, path)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if prefix == "" || strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
		return nil
	})
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	return keys, nil
}

// fullPath resolves a key under baseDir, rejecting traversal outside it.
func (p *Provider) fullPath(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(strings.TrimPrefix(key, "/")))
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("key escapes base dir: %s", key)
	}
	if clean == "." {
		return p.baseDir, nil
	}
	return filepath.Join(p.baseDir, clean), nil
}

func (p *Provider) wrapError(op, key string, err error) error {
	return &provider.Error{Op: op, Provider: provider.TypeFile, Bucket: p.baseDir, Key: key, Err: err}
}
