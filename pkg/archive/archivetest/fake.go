// Package archivetest provides an in-memory archive client for tests.
//
// The fake mirrors directory-listing semantics: a tree of paths seeded
// with Add, listed one level at a time, with missing paths reported as
// provider.ErrNotFound.
package archivetest

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"

	"github.com/amymcvey/gnss-ro-data/pkg/provider"
)

// Fake is an in-memory implementation of archive.Lister and
// archive.Writer. The zero value is not usable; call New.
type Fake struct {
	mu sync.Mutex

	// files holds every seeded full file path.
	files map[string]bool

	// Written records every document written with WriteJSON, keyed by
	// destination, marshaled to JSON.
	Written map[string][]byte

	// WriteOrder records WriteJSON destinations in call order.
	WriteOrder []string

	// Listed records every ListDir path in call order.
	Listed []string

	// FailWrites, when set, makes WriteJSON return this error.
	FailWrites error
}

// New creates an empty fake archive.
func New() *Fake {
	return &Fake{
		files:   make(map[string]bool),
		Written: make(map[string][]byte),
	}
}

// Add seeds full file paths into the fake archive. Intermediate
// directories are implied.
func (f *Fake) Add(paths ...string) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range paths {
		f.files[strings.TrimSuffix(p, "/")] = true
	}
	return f
}

// AddDir seeds an empty directory. Real object stores have no empty
// directories, but local mirrors can.
func (f *Fake) AddDir(path string) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.files[strings.TrimSuffix(path, "/")+"//dir"] = false
	return f
}

// ListDir lists the immediate children of path, directories and files, as
// full paths in seeded-name order (sorted, matching object-store listing
// order).
func (f *Fake) ListDir(ctx context.Context, path string) ([]string, error) {
	_ = ctx
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Listed = append(f.Listed, path)

	base := strings.TrimSuffix(path, "/") + "/"
	seen := make(map[string]bool)
	var children []string
	for p := range f.files {
		p = strings.TrimSuffix(p, "//dir")
		if !strings.HasPrefix(p, base) || p == base {
			continue
		}
		rest := strings.TrimPrefix(p, base)
		name := rest
		if idx := strings.Index(rest, "/"); idx != -1 {
			name = rest[:idx]
		}
		child := base + name
		if !seen[child] {
			seen[child] = true
			children = append(children, child)
		}
	}
	if len(children) == 0 {
		return nil, &provider.Error{Op: "ListDir", Provider: "fake", Key: path, Err: provider.ErrNotFound}
	}
	sort.Strings(children)
	return children, nil
}

// WriteJSON records the marshaled document under dest.
func (f *Fake) WriteJSON(ctx context.Context, dest string, doc any) error {
	_ = ctx
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.FailWrites != nil {
		return f.FailWrites
	}
	data, err := json.MarshalIndent(doc, "", "    ")
	if err != nil {
		return err
	}
	f.Written[dest] = data
	f.WriteOrder = append(f.WriteOrder, dest)
	return nil
}
