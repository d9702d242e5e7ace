package schema_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/entityvalidate/pkg/schema"
)

const blogYAML = `
schemas:
  node:
    blog:
      - name: title
        required: true
`

// replaceFile swaps path in one rename so a reload never sees a partial file.
func replaceFile(path, content string) {
	tmp := filepath.Join(filepath.Dir(path), "."+filepath.Base(path)+".tmp")
	if err := os.WriteFile(tmp, []byte(content), 0o600); err == nil {
		_ = os.Rename(tmp, path)
	}
}

func startWatcher(t *testing.T, w *schema.Watcher) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		require.NoError(t, <-done)
	})
}

func TestWatcher(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("directory", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "article.yaml"), []byte(articleYAML), 0o600))

		var (
			mu      sync.Mutex
			reloads int
		)
		w, err := schema.NewWatcher(dir,
			schema.WithDebounce(10*time.Millisecond),
			schema.WithReloadHook(func(s *schema.Static, err error) {
				mu.Lock()
				defer mu.Unlock()
				if err == nil {
					reloads++
				}
			}),
		)
		require.NoError(t, err)
		assert.Equal(t, []string{"node/article", "node/page"}, w.Current().Keys())
		startWatcher(t, w)

		require.Eventually(t, func() bool {
			replaceFile(filepath.Join(dir, "blog.yml"), blogYAML)
			specs, err := w.FieldsInfo(ctx, "node", "blog")
			return err == nil && len(specs) == 1
		}, 5*time.Second, 50*time.Millisecond)

		mu.Lock()
		assert.Positive(t, reloads)
		mu.Unlock()
		assert.Equal(t, []string{"node/article", "node/blog", "node/page"}, w.Current().Keys())
	})

	t.Run("single file", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		path := filepath.Join(dir, "schema.yaml")
		require.NoError(t, os.WriteFile(path, []byte(articleYAML), 0o600))

		w, err := schema.NewWatcher(path, schema.WithDebounce(10*time.Millisecond))
		require.NoError(t, err)
		startWatcher(t, w)

		require.Eventually(t, func() bool {
			replaceFile(path, blogYAML)
			specs, _ := w.FieldsInfo(ctx, "node", "article")
			return len(specs) == 0
		}, 5*time.Second, 50*time.Millisecond)
	})

	t.Run("failed reload keeps schemas", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		path := filepath.Join(dir, "schema.yaml")
		require.NoError(t, os.WriteFile(path, []byte(articleYAML), 0o600))

		failed := make(chan error, 1)
		w, err := schema.NewWatcher(path,
			schema.WithDebounce(10*time.Millisecond),
			schema.WithReloadHook(func(_ *schema.Static, err error) {
				if err != nil {
					select {
					case failed <- err:
					default:
					}
				}
			}),
		)
		require.NoError(t, err)
		startWatcher(t, w)

		require.Eventually(t, func() bool {
			replaceFile(path, "schemas: [")
			return len(failed) > 0
		}, 5*time.Second, 50*time.Millisecond)

		assert.ErrorIs(t, <-failed, schema.ErrFailedToParseDocument)
		specs, err := w.FieldsInfo(ctx, "node", "article")
		require.NoError(t, err)
		assert.Len(t, specs, 2)
	})

	t.Run("missing path", func(t *testing.T) {
		t.Parallel()
		_, err := schema.NewWatcher(filepath.Join(t.TempDir(), "missing.yaml"))
		require.ErrorIs(t, err, schema.ErrFailedToReadSchema)
	})
}
