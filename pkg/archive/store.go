package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// WriteJSON marshals doc with indentation and writes it to dest, which is
// either a local filesystem path or an s3:// location.
//
// Remote writes are staged through a local temporary file and uploaded
// with PutObject. The staging file is removed on every exit path,
// including upload failure.
func (c *Client) WriteJSON(ctx context.Context, dest string, doc any) error {
	uri, err := ParseURI(dest)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(doc, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", dest, err)
	}
	data = append(data, '\n')

	c.logger.Info("writing document", zap.String("dest", dest), zap.Int("bytes", len(data)))

	if uri.Local {
		return writeLocal(uri.Key, data)
	}
	return c.uploadStaged(ctx, uri, data)
}

// writeLocal writes the document under a local path, creating parent
// directories as needed.
func writeLocal(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// uploadStaged stages data in a temporary file and uploads it to S3.
// The deferred remove guarantees staging cleanup even when the upload
// fails.
func (c *Client) uploadStaged(ctx context.Context, dest URI, data []byte) error {
	staging, err := os.CreateTemp("", "rojobs-staging-*.json")
	if err != nil {
		return fmt.Errorf("create staging file: %w", err)
	}
	stagingPath := staging.Name()
	defer func() {
		if rmErr := os.Remove(stagingPath); rmErr != nil && !os.IsNotExist(rmErr) {
			c.logger.Warn("staging file not removed", zap.String("path", stagingPath), zap.Error(rmErr))
		}
	}()

	if _, err := staging.Write(data); err != nil {
		_ = staging.Close()
		return fmt.Errorf("write staging file: %w", err)
	}
	if err := staging.Close(); err != nil {
		return fmt.Errorf("close staging file: %w", err)
	}

	p, err := c.bucketProvider(ctx, dest.Bucket)
	if err != nil {
		return err
	}

	f, err := os.Open(stagingPath)
	if err != nil {
		return fmt.Errorf("reopen staging file: %w", err)
	}
	defer func() { _ = f.Close() }()

	st, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat staging file: %w", err)
	}

	if err := p.PutObject(ctx, dest.Key, f, st.Size()); err != nil {
		return fmt.Errorf("upload %s: %w", dest.String(), err)
	}
	return nil
}
