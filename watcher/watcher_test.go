package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/docwatcher/am"
	"github.com/teranos/docwatcher/intake"
)

type recordingHandler struct {
	mu    sync.Mutex
	paths []string
}

func (h *recordingHandler) Process(ctx context.Context, path string, trigger intake.Trigger) intake.Result {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.paths = append(h.paths, path)
	return intake.Result{Outcome: intake.OutcomeDone}
}

func (h *recordingHandler) seen() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.paths...)
}

func newPipeline(t *testing.T, consume string) *intake.Processor {
	t.Helper()
	return intake.NewProcessor(
		intake.NewTracker(),
		intake.NewGate(am.StabilizationConfig{Settle: 50 * time.Millisecond}),
		intake.NewImporter(consume, am.SidecarConfig{
			Enabled: true,
			Source:  am.DefaultSidecarSource,
			Tags:    am.DefaultSidecarTags(),
		}),
		nil,
	)
}

func TestWatcher_ImportsNewDocument(t *testing.T) {
	shared := t.TempDir()
	consume := filepath.Join(t.TempDir(), "consume")

	w := New(shared, newPipeline(t, consume), nil)
	require.NoError(t, w.Start(context.Background()))
	t.Cleanup(func() { w.Stop() })

	require.NoError(t, os.WriteFile(filepath.Join(shared, "invoice.pdf"), []byte("%PDF"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(shared, "notes.txt"), []byte("skip"), 0644))

	require.Eventually(t, func() bool {
		_, err := os.Stat(filepath.Join(consume, "invoice.pdf.json"))
		return err == nil
	}, 5*time.Second, 20*time.Millisecond)

	data, err := os.ReadFile(filepath.Join(consume, "invoice.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(data))

	_, err = os.Stat(filepath.Join(consume, "notes.txt"))
	assert.True(t, os.IsNotExist(err))
}

func TestWatcher_WatchesNewSubdirectories(t *testing.T) {
	shared := t.TempDir()
	existing := filepath.Join(shared, "existing")
	require.NoError(t, os.Mkdir(existing, 0755))

	h := &recordingHandler{}
	w := New(shared, h, nil)
	require.NoError(t, w.Start(context.Background()))
	t.Cleanup(func() { w.Stop() })

	require.NoError(t, os.WriteFile(filepath.Join(existing, "a.pdf"), nil, 0644))

	created := filepath.Join(shared, "created")
	require.NoError(t, os.Mkdir(created, 0755))
	// Give the loop time to register the new directory
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(created, "b.pdf"), nil, 0644))

	assert.Eventually(t, func() bool {
		seen := h.seen()
		return contains(seen, filepath.Join(existing, "a.pdf")) && contains(seen, filepath.Join(created, "b.pdf"))
	}, 5*time.Second, 20*time.Millisecond)

	assert.NotContains(t, h.seen(), created, "directories are never handed to the handler")
}

func TestWatcher_IgnoresBacklog(t *testing.T) {
	shared := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(shared, "old.pdf"), nil, 0644))

	h := &recordingHandler{}
	w := New(shared, h, nil)
	require.NoError(t, w.Start(context.Background()))

	require.NoError(t, os.WriteFile(filepath.Join(shared, "old.pdf"), []byte("modified"), 0644))
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, w.Stop())

	assert.Empty(t, h.seen(), "writes to existing files are not creations")
}

func TestWatcher_StartFailsOnMissingFolder(t *testing.T) {
	w := New(filepath.Join(t.TempDir(), "missing"), &recordingHandler{}, nil)
	assert.Error(t, w.Start(context.Background()))
	assert.NoError(t, w.Stop())
}

func TestWatcher_StopWaitsForHandlers(t *testing.T) {
	shared := t.TempDir()
	consume := t.TempDir()

	w := New(shared, newPipeline(t, consume), nil)
	require.NoError(t, w.Start(context.Background()))

	require.NoError(t, os.WriteFile(filepath.Join(shared, "late.pdf"), []byte("x"), 0644))
	time.Sleep(10 * time.Millisecond)

	require.NoError(t, w.Stop())
	// Stop cancelled the settle wait; nothing may be copied afterwards
	time.Sleep(100 * time.Millisecond)
	_, err := os.Stat(filepath.Join(consume, "late.pdf"))
	assert.True(t, os.IsNotExist(err))
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
