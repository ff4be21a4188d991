// Package blob provides object-storage readers for the ingestion pipeline.
// Upload is out of scope; the pipeline only consumes previously stored
// documents.
package blob

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/stratalab/strata"
)

// FSReader implements strata.BlobReader over a local directory. Blob names
// are slash-separated paths relative to the root; names are confined to the
// root so a name cannot escape it.
type FSReader struct {
	root string
}

var _ strata.BlobReader = (*FSReader)(nil)

// NewFSReader creates a reader rooted at dir.
func NewFSReader(dir string) *FSReader {
	return &FSReader{root: dir}
}

// Read returns the raw bytes of the named blob.
func (r *FSReader) Read(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	clean := filepath.Join(r.root, filepath.Clean("/"+filepath.FromSlash(name)))
	return os.ReadFile(clean)
}

// List returns the names of all regular files under the root, relative to
// it, in walk order. Hidden files are skipped.
func (r *FSReader) List(ctx context.Context) ([]string, error) {
	var names []string
	err := filepath.WalkDir(r.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() && path != r.root {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() {
			rel, relErr := filepath.Rel(r.root, path)
			if relErr != nil {
				return relErr
			}
			names = append(names, filepath.ToSlash(rel))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return names, nil
}
