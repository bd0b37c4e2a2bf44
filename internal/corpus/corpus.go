// Package corpus loads training text from disk for the string-oriented
// engines: doublestar glob expansion rooted at a directory, followed by
// concurrent (I/O-only) reads. Every file's content becomes one corpus
// string; feeding the results into an engine's Train is always done
// serially by the caller, since no engine permits concurrent mutation.
package corpus

import (
	"context"
	"os"
	"path/filepath"
	"runtime"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/errgroup"

	ngramerrors "github.com/standardbeagle/ngram/internal/errors"
)

// File is one loaded corpus source: its path and content.
type File struct {
	Path    string
	Content string
}

// Load expands globs relative to root and reads every matching file
// concurrently, capped at runtime.NumCPU() in-flight reads. Read failures
// are collected rather than aborting the whole load; the returned
// *ngramerrors.MultiError is nil when every file loaded cleanly.
func Load(ctx context.Context, root string, globs []string) ([]File, error) {
	paths, err := expand(root, globs)
	if err != nil {
		return nil, err
	}

	files := make([]File, len(paths))
	errs := make([]error, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, runtime.NumCPU()))

	for i, p := range paths {
		i, p := i, p
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			content, readErr := os.ReadFile(p)
			if readErr != nil {
				errs[i] = ngramerrors.NewCorpusError(p, readErr)
				return nil
			}
			files[i] = File{Path: p, Content: string(content)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := files[:0]
	for i, f := range files {
		if errs[i] == nil {
			out = append(out, f)
		}
	}
	// NewMultiError returns a typed *MultiError, nil or not; boxing a nil
	// one straight into the error return would make every clean load look
	// like a failure to callers comparing against the error interface.
	if me := ngramerrors.NewMultiError(errs); me != nil {
		return out, me
	}
	return out, nil
}

// expand resolves every glob against root, deduplicating matches across
// overlapping patterns while preserving first-seen order.
func expand(root string, globs []string) ([]string, error) {
	seen := make(map[string]struct{})
	var out []string

	for _, pattern := range globs {
		matches, err := doublestar.Glob(os.DirFS(root), pattern)
		if err != nil {
			return nil, ngramerrors.NewCorpusError(pattern, err)
		}
		for _, m := range matches {
			full := filepath.Join(root, m)
			if _, ok := seen[full]; ok {
				continue
			}
			seen[full] = struct{}{}
			out = append(out, full)
		}
	}
	return out, nil
}

// Strings projects loaded files down to their content, the shape
// StringFuzzy/StringPredict.Train expects.
func Strings(files []File) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.Content
	}
	return out
}
