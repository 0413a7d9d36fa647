package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, ch <-chan string) string {
	t.Helper()
	select {
	case id, ok := <-ch:
		require.True(t, ok, "watch channel closed early")
		return id
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
		return ""
	}
}

func TestWatch_Directory(t *testing.T) {
	dir := t.TempDir()
	doc := filepath.Join(dir, "kasa.md")
	require.NoError(t, os.WriteFile(doc, []byte("---\nname: Kasa\nsubcategories: [OSB Kasa]\n---\n"), 0644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	changes, err := Watch(ctx, dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(doc, []byte("---\nname: Kasa\nsubcategories: [OSB Kasa, Ahşap Kasa]\n---\n"), 0644))
	assert.Contains(t, receive(t, changes), "kasa")

	cancel()
	require.Eventually(t, func() bool {
		_, ok := <-changes
		return !ok
	}, 2*time.Second, 10*time.Millisecond, "channel closes on cancel")
}

func TestWatch_SingleFileIgnoresSiblings(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte("categories: []\n"), 0644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	changes, err := Watch(ctx, path)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("x: 1\n"), 0644))
	require.NoError(t, os.WriteFile(path, []byte("categories:\n  - key: kasa\n    name: Kasa\n    subcategories: [OSB Kasa]\n"), 0644))

	assert.Contains(t, receive(t, changes), "catalog")
}

func TestWatch_MissingSource(t *testing.T) {
	_, err := Watch(context.Background(), filepath.Join(t.TempDir(), "missing"))
	assert.ErrorContains(t, err, "failed to stat catalog source")
}
