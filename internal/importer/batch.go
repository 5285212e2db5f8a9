package importer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"skillradar/internal/schema"
)

// DefaultWorkers bounds concurrent file decoding when no limit is configured.
const DefaultWorkers = 4

// FileResult is the outcome of importing one file. Exactly one of Import and Err is set.
type FileResult struct {
	Path    string
	Payload Payload
	Import  *Import
	Err     error
}

// ReadFile decodes and reconciles a single import file.
func ReadFile(path string, s *schema.Schema, now time.Time) (Payload, Import, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Payload{}, Import{}, fmt.Errorf("read %s: %w", path, err)
	}
	p, err := Decode(data, filepath.Base(path))
	if err != nil {
		return Payload{}, Import{}, err
	}
	imp, err := Reconcile(p, s, now)
	if err != nil {
		return p, Import{}, err
	}
	return p, imp, nil
}

// ImportFiles reads files concurrently with at most workers in flight. Results keep the
// order of paths. A bad file only fails its own result; the returned error is set only when
// ctx is cancelled.
func ImportFiles(ctx context.Context, paths []string, workers int, s *schema.Schema, now time.Time) ([]FileResult, error) {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	results := make([]FileResult, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			p, imp, err := ReadFile(path, s, now)
			results[i] = FileResult{Path: path, Payload: p, Err: err}
			if err == nil {
				results[i].Import = &imp
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}
