package catalog

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/loam"
)

// documentPattern selects the files a catalog directory is built from.
const documentPattern = "**/*.{md,json,yaml,yml}"

var globEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`, `{`, `\{`, `}`, `\}`)

// Watch reports changes to the catalog source at path until ctx is done.
// A directory is watched recursively for category documents; a single file
// is watched through its parent directory. Each value is the id of the
// changed document. Events are debounced by Loam.
func Watch(ctx context.Context, path string) (<-chan string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat catalog source: %w", err)
	}

	root, pattern := absPath, documentPattern
	if !info.IsDir() {
		root, pattern = filepath.Dir(absPath), globEscaper.Replace(filepath.Base(absPath))
	}

	repo, err := loam.Init(root,
		loam.WithStrict(true),
		loam.WithReadOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}

	events, err := loam.NewTypedRepository[Metadata](repo).Watch(ctx, pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to start loam watcher: %w", err)
	}

	ch := make(chan string, 1)
	go func() {
		defer close(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case evt, ok := <-events:
				if !ok {
					return
				}
				select {
				case ch <- evt.ID:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return ch, nil
}
