// Package provider defines abstractions for the storage backends holding
// radio-occultation archives.
//
// Providers implement a minimal surface area focused on directory-style
// listing and object writes. Authentication uses SDK default credential
// chains - providers should not implement custom auth logic.
package provider

import (
	"context"
	"io"
	"time"
)

// Provider abstracts storage listing and manifest-write operations.
//
// Implementations should:
//   - Use SDK default credential chains (AWS default config)
//   - Support pagination via continuation tokens
//   - Be safe for concurrent use
type Provider interface {
	// List returns a page of objects with the given prefix.
	// Use ContinuationToken from ListResult for subsequent pages.
	List(ctx context.Context, opts ListOptions) (*ListResult, error)

	// ListDir returns the immediate children of a prefix: object keys
	// directly under it plus child prefixes (directory-like grouping by
	// "/"). Returns ErrNotFound when the prefix has no children at all.
	ListDir(ctx context.Context, prefix string) (*DirListing, error)

	// Head returns metadata for a single object.
	// Returns ErrNotFound if the object does not exist.
	Head(ctx context.Context, key string) (*ObjectMeta, error)

	// Close releases any resources held by the provider.
	Close() error
}

// ObjectPutter can create or overwrite objects. Used for writing batch
// manifest documents and uploading job-definition files.
type ObjectPutter interface {
	PutObject(ctx context.Context, key string, body io.Reader, contentLength int64) error
}

// ObjectDeleter can delete objects.
type ObjectDeleter interface {
	DeleteObject(ctx context.Context, key string) error
}

// ListOptions configures a List operation.
type ListOptions struct {
	// Prefix filters results to keys starting with this value.
	// Empty string lists all objects.
	Prefix string

	// ContinuationToken resumes listing from a previous ListResult.
	// Empty string starts from the beginning.
	ContinuationToken string

	// MaxKeys limits the number of objects returned per page.
	// Zero uses provider default (typically 1000).
	MaxKeys int
}

// ListResult contains a page of objects from a List operation.
type ListResult struct {
	// Objects contains the object summaries for this page.
	Objects []ObjectSummary

	// ContinuationToken is used to retrieve the next page.
	// Empty string indicates no more pages.
	ContinuationToken string

	// IsTruncated indicates whether more results are available.
	IsTruncated bool
}

// DirListing is the result of a ListDir operation, fully drained across
// pages. Keys and ChildPrefixes are each in listing order.
type DirListing struct {
	// Keys are object keys directly under the requested prefix.
	Keys []string

	// ChildPrefixes are the immediate child prefixes, each ending in "/".
	ChildPrefixes []string
}

// ObjectSummary contains basic metadata returned from List operations.
type ObjectSummary struct {
	// Key is the full object key (path) in the bucket.
	Key string

	// Size is the object size in bytes.
	Size int64

	// LastModified is when the object was last modified.
	LastModified time.Time
}

// ObjectMeta contains full metadata for a single object.
// Returned by Head operations.
type ObjectMeta struct {
	ObjectSummary

	// ContentType is the MIME type of the object.
	ContentType string
}

// Type identifies a storage provider.
type Type string

const (
	// TypeS3 represents AWS S3 storage, where the contributed RO archives
	// and the liveupdate buckets live.
	TypeS3 Type = "s3"

	// TypeFile represents a local filesystem archive mirror.
	TypeFile Type = "file"
)

// String returns the string representation of the provider type.
func (t Type) String() string {
	return string(t)
}
