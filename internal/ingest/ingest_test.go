package ingest

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/ribbon-tracker/internal/async"
)

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
}

func TestDiscover(t *testing.T) {
	t.Run("Should return supported documents in lexical order", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, filepath.Join(root, "b.pdf"), "x")
		writeFile(t, filepath.Join(root, "a.TXT"), "x")
		writeFile(t, filepath.Join(root, "sub", "c.json"), "{}")
		writeFile(t, filepath.Join(root, "photo.png"), "x")
		writeFile(t, filepath.Join(root, ".hidden", "d.pdf"), "x")
		writeFile(t, filepath.Join(root, ".e.txt"), "x")

		paths, stats, err := Discover(root, DiscoverOptions{SkipHidden: true})
		require.NoError(t, err)
		assert.Equal(t, []string{
			filepath.Join(root, "a.TXT"),
			filepath.Join(root, "b.pdf"),
			filepath.Join(root, "sub", "c.json"),
		}, paths)
		assert.Equal(t, uint32(3), stats.Matched)
	})

	t.Run("Should honour a custom extension set", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, filepath.Join(root, "a.txt"), "x")
		writeFile(t, filepath.Join(root, "b.pdf"), "x")
		paths, _, err := Discover(root, DiscoverOptions{AllowedExts: ExtSet([]string{".PDF"})})
		require.NoError(t, err)
		assert.Equal(t, []string{filepath.Join(root, "b.pdf")}, paths)
	})

	t.Run("Should require a root", func(t *testing.T) {
		_, _, err := Discover(" ", DiscoverOptions{})
		assert.Error(t, err)
	})
}

func TestExpandPaths(t *testing.T) {
	t.Run("Should expand directories and keep file arguments", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, filepath.Join(root, "in", "a.txt"), "x")
		writeFile(t, filepath.Join(root, "in", "b.json"), "{}")
		out, err := ExpandPaths([]string{"missing.docx", filepath.Join(root, "in")}, DiscoverOptions{})
		require.NoError(t, err)
		assert.Equal(t, []string{"missing.docx", filepath.Join(root, "in", "a.txt"), filepath.Join(root, "in", "b.json")}, out)
	})
}

func TestExtSet(t *testing.T) {
	t.Run("Should normalise comma separated input", func(t *testing.T) {
		assert.Equal(t, map[string]struct{}{"pdf": {}, "txt": {}}, ExtSet([]string{".PDF, txt", ""}))
		assert.Nil(t, ExtSet(nil))
	})
}

func TestStartWatcher(t *testing.T) {
	t.Run("Should emit existing and new documents once debounced", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, filepath.Join(root, "old.txt"), "x")
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		events, _, err := StartWatcher(ctx, WatchConfig{
			Roots:       []string{root},
			InitialScan: true,
			Debounce:    20 * time.Millisecond,
		})
		require.NoError(t, err)

		select {
		case p := <-events:
			assert.Equal(t, filepath.Join(root, "old.txt"), p)
		case <-time.After(2 * time.Second):
			t.Fatal("initial scan did not emit")
		}

		newPath := filepath.Join(root, "new.pdf")
		writeFile(t, newPath, "x")
		writeFile(t, filepath.Join(root, "ignored.png"), "x")
		select {
		case p := <-events:
			assert.Equal(t, newPath, p)
		case <-time.After(2 * time.Second):
			t.Fatal("new document was not emitted")
		}

		cancel()
		deadline := time.After(2 * time.Second)
		for open := true; open; {
			select {
			case _, open = <-events:
			case <-deadline:
				t.Fatal("events channel was not closed after cancel")
			}
		}
	})

	t.Run("Should emit documents moved into the inbox", func(t *testing.T) {
		root := t.TempDir()
		staging := t.TempDir()
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		events, _, err := StartWatcher(ctx, WatchConfig{
			Roots:    []string{root},
			Debounce: 20 * time.Millisecond,
		})
		require.NoError(t, err)

		src := filepath.Join(staging, "orders.pdf")
		writeFile(t, src, "x")
		dst := filepath.Join(root, "orders.pdf")
		require.NoError(t, os.Rename(src, dst))

		select {
		case p := <-events:
			assert.Equal(t, dst, p)
		case <-time.After(2 * time.Second):
			t.Fatal("moved document was not emitted")
		}
	})

	t.Run("Should watch directories created after start", func(t *testing.T) {
		root := t.TempDir()
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		events, _, err := StartWatcher(ctx, WatchConfig{
			Roots:    []string{root},
			Debounce: 20 * time.Millisecond,
		})
		require.NoError(t, err)

		sub := filepath.Join(root, "march")
		require.NoError(t, os.Mkdir(sub, 0o755))
		// Give the watcher a moment to add the new directory.
		time.Sleep(100 * time.Millisecond)
		doc := filepath.Join(sub, "invoice.txt")
		writeFile(t, doc, "x")

		select {
		case p := <-events:
			assert.Equal(t, doc, p)
		case <-time.After(2 * time.Second):
			t.Fatal("document in a new directory was not emitted")
		}
	})

	t.Run("Should refuse to start without roots", func(t *testing.T) {
		_, _, err := StartWatcher(context.Background(), WatchConfig{})
		assert.Error(t, err)
	})
}

type recordingQueue struct {
	mu   sync.Mutex
	jobs []async.Job
}

func (q *recordingQueue) Enqueue(_ context.Context, job async.Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.jobs = append(q.jobs, job)
	return nil
}

func (q *recordingQueue) Shutdown(context.Context) {}

func (q *recordingQueue) paths() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]string, len(q.jobs))
	for i, j := range q.jobs {
		out[i] = j.Path
	}
	return out
}

func TestInbox(t *testing.T) {
	t.Run("Should enqueue documents found in the inbox", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, filepath.Join(root, "orders.json"), "{}")
		q := &recordingQueue{}
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() {
			done <- NewInbox(WatchConfig{Roots: []string{root}, InitialScan: true}, q, nil).Run(ctx)
		}()
		require.Eventually(t, func() bool { return len(q.paths()) == 1 }, 2*time.Second, 10*time.Millisecond)
		assert.Equal(t, filepath.Join(root, "orders.json"), q.paths()[0])
		cancel()
		assert.NoError(t, <-done)
	})
}
