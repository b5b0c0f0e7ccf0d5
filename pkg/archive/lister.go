// Package archive provides the storage-listing client used to crawl the
// processing-center archives, and the document store used to persist
// job-definition and batch-manifest JSON files.
//
// Paths are full archive locations: "s3://bucket/prefix" or local
// filesystem paths. Listing follows directory-listing semantics: the
// immediate children of a path, files and subdirectories alike, returned
// as full paths in the caller's notation without trailing slashes.
package archive

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/amymcvey/gnss-ro-data/pkg/provider"
	fileprov "github.com/amymcvey/gnss-ro-data/pkg/provider/file"
	s3prov "github.com/amymcvey/gnss-ro-data/pkg/provider/s3"
)

// Lister is the directory-listing collaborator consumed by the layout
// resolvers, the builder, and the job file iterator.
//
// ListDir returns the immediate children of path as full paths, in the
// order the backing store reports them. A path with no children yields a
// provider.ErrNotFound-wrapped error; callers treat that as a benign,
// loggable skip. All other errors are transport faults and propagate.
type Lister interface {
	ListDir(ctx context.Context, path string) ([]string, error)
}

// Writer persists a JSON document to a full archive path.
type Writer interface {
	WriteJSON(ctx context.Context, dest string, doc any) error
}

// S3Options carries connection settings shared by every bucket the client
// touches during one run.
type S3Options struct {
	Region         string
	Profile        string
	Endpoint       string
	ForcePathStyle bool
}

// Client resolves archive paths to storage providers and implements both
// Lister and Writer. One Client is used for the whole of a builder,
// iterator, or splitter invocation; it caches one S3 provider per bucket.
//
// Client is safe for concurrent use, though the crawl itself is
// sequential by contract.
type Client struct {
	s3opts S3Options
	logger *zap.Logger

	mu      sync.Mutex
	buckets map[string]*s3prov.Provider
}

// Option configures a Client.
type Option func(*Client)

// WithS3Options sets connection options for S3-backed archive roots.
func WithS3Options(opts S3Options) Option {
	return func(c *Client) { c.s3opts = opts }
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient creates an archive client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		logger:  zap.NewNop(),
		buckets: make(map[string]*s3prov.Provider),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// ListDir lists the immediate children of path.
func (c *Client) ListDir(ctx context.Context, path string) ([]string, error) {
	uri, err := ParseURI(path)
	if err != nil {
		return nil, err
	}

	var listing *provider.DirListing
	if uri.Local {
		p, err := fileprov.New(fileprov.Config{BaseDir: uri.Key})
		if err != nil {
			return nil, err
		}
		listing, err = p.ListDir(ctx, "")
		if err != nil {
			return nil, err
		}
		children := joinChildren(uri, listing)
		if len(children) == 0 {
			return nil, &provider.Error{Op: "ListDir", Provider: provider.TypeFile, Key: path, Err: provider.ErrNotFound}
		}
		return children, nil
	}

	p, err := c.bucketProvider(ctx, uri.Bucket)
	if err != nil {
		return nil, err
	}
	listing, err = p.ListDir(ctx, uri.Key)
	if err != nil {
		return nil, err
	}
	return joinChildren(URI{Bucket: uri.Bucket}, listing), nil
}

// joinChildren converts a DirListing into full child paths, directories
// first as the backing store orders them, without trailing slashes.
func joinChildren(base URI, listing *provider.DirListing) []string {
	children := make([]string, 0, len(listing.ChildPrefixes)+len(listing.Keys))
	for _, cp := range listing.ChildPrefixes {
		children = append(children, base.Join(cp).String())
	}
	for _, k := range listing.Keys {
		children = append(children, base.Join(k).String())
	}
	return children
}

// bucketProvider returns the cached provider for a bucket, creating it on
// first use.
func (c *Client) bucketProvider(ctx context.Context, bucket string) (*s3prov.Provider, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if p, ok := c.buckets[bucket]; ok {
		return p, nil
	}
	p, err := s3prov.New(ctx, s3prov.Config{
		Bucket:         bucket,
		Region:         c.s3opts.Region,
		Profile:        c.s3opts.Profile,
		Endpoint:       c.s3opts.Endpoint,
		ForcePathStyle: c.s3opts.ForcePathStyle,
	})
	if err != nil {
		return nil, err
	}
	c.buckets[bucket] = p
	return p, nil
}

// Close releases all cached providers.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var firstErr error
	for bucket, p := range c.buckets {
		if err := p.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(c.buckets, bucket)
	}
	return firstErr
}
