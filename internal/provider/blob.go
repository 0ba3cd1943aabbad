package provider

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// BlobStore stores generated media and returns a URL clients can fetch.
type BlobStore interface {
	Put(ctx context.Context, name string, data []byte) (string, error)
}

// DirBlobStore writes blobs to a local directory served by the API under
// BaseURL. Names are flattened to their base to keep writes inside Dir.
type DirBlobStore struct {
	Dir     string
	BaseURL string
}

// Put writes the blob and returns its public URL.
func (b *DirBlobStore) Put(ctx context.Context, name string, data []byte) (string, error) {
	name = filepath.Base(name)
	if err := os.MkdirAll(b.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create media dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(b.Dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("write blob %s: %w", name, err)
	}
	return strings.TrimRight(b.BaseURL, "/") + "/" + name, nil
}
