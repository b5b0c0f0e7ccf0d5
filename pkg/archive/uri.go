package archive

import (
	"errors"
	"fmt"
	"strings"
)

// URI parsing errors.
var (
	// ErrInvalidURI indicates the URI could not be parsed.
	ErrInvalidURI = errors.New("invalid URI")

	// ErrUnsupportedScheme indicates the URI scheme is not supported.
	ErrUnsupportedScheme = errors.New("unsupported scheme")

	// ErrMissingBucket indicates the URI is missing a bucket name.
	ErrMissingBucket = errors.New("missing bucket name")
)

// URI is a parsed archive location.
//
// Example URIs:
//   - s3://ucar-earth-ro-archive-untarred/cosmic1/repro2013
//   - /data/local-mirror/jpl (local filesystem)
type URI struct {
	// Bucket is the bucket name. Empty for local paths.
	Bucket string

	// Key is the object key or prefix within the bucket, or the local
	// filesystem path. No leading slash for bucket keys.
	Key string

	// Local is true when the URI names a local filesystem path.
	Local bool
}

// String returns the URI in canonical form.
func (u URI) String() string {
	if u.Local {
		return u.Key
	}
	if u.Key == "" {
		return fmt.Sprintf("s3://%s", u.Bucket)
	}
	return fmt.Sprintf("s3://%s/%s", u.Bucket, u.Key)
}

// Join returns a URI extended by the given path elements.
func (u URI) Join(elems ...string) URI {
	parts := make([]string, 0, len(elems)+1)
	if u.Key != "" {
		parts = append(parts, strings.TrimSuffix(u.Key, "/"))
	}
	for _, e := range elems {
		e = strings.Trim(e, "/")
		if e != "" {
			parts = append(parts, e)
		}
	}
	joined := u
	joined.Key = strings.Join(parts, "/")
	return joined
}

// IsS3Path reports whether a path string names an S3 location.
func IsS3Path(path string) bool {
	return strings.HasPrefix(strings.ToLower(path), "s3://")
}

// ParseURI parses an archive location string.
//
// Supported forms:
//   - s3://bucket
//   - s3://bucket/prefix
//   - any other string, treated as a local filesystem path
//
// Returns an error for a malformed s3 URI or an unsupported scheme.
func ParseURI(raw string) (URI, error) {
	if raw == "" {
		return URI{}, fmt.Errorf("%w: empty path", ErrInvalidURI)
	}

	schemeEnd := strings.Index(raw, "://")
	if schemeEnd == -1 {
		// Local filesystem path.
		return URI{Key: strings.TrimSuffix(raw, "/"), Local: true}, nil
	}

	scheme := strings.ToLower(raw[:schemeEnd])
	if scheme != "s3" {
		return URI{}, fmt.Errorf("%w: %s (supported: s3)", ErrUnsupportedScheme, scheme)
	}

	remainder := raw[schemeEnd+3:]
	if remainder == "" {
		return URI{}, fmt.Errorf("%w: in %s", ErrMissingBucket, raw)
	}

	bucket := remainder
	key := ""
	if idx := strings.Index(remainder, "/"); idx != -1 {
		bucket = remainder[:idx]
		key = strings.Trim(remainder[idx+1:], "/")
	}
	if bucket == "" {
		return URI{}, fmt.Errorf("%w: in %s", ErrMissingBucket, raw)
	}

	return URI{Bucket: bucket, Key: key}, nil
}

// RelPath strips a root prefix from a full path, yielding the relative
// path used in job descriptors and batch manifests. Both arguments are in
// the same notation (s3 URI or local path). Returns an error if full does
// not reside under root.
func RelPath(root, full string) (string, error) {
	rootURI, err := ParseURI(root)
	if err != nil {
		return "", err
	}
	fullURI, err := ParseURI(full)
	if err != nil {
		return "", err
	}
	if rootURI.Local != fullURI.Local || rootURI.Bucket != fullURI.Bucket {
		return "", fmt.Errorf("%w: %s is not under %s", ErrInvalidURI, full, root)
	}
	if rootURI.Key == fullURI.Key {
		return "", nil
	}
	base := rootURI.Key
	if base != "" {
		base += "/"
	}
	if !strings.HasPrefix(fullURI.Key, base) {
		return "", fmt.Errorf("%w: %s is not under %s", ErrInvalidURI, full, root)
	}
	return strings.TrimPrefix(fullURI.Key, base), nil
}
