package intake

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/docwatcher/am"
	"github.com/teranos/docwatcher/errors"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestGate_AcceptsRegularFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "a.pdf", "%PDF-1.4")
	gate := NewGate(am.StabilizationConfig{Settle: 10 * time.Millisecond})

	start := time.Now()
	require.NoError(t, gate.Wait(context.Background(), path))
	assert.GreaterOrEqual(t, time.Since(start), 10*time.Millisecond)
}

func TestGate_Vanished(t *testing.T) {
	dir := t.TempDir()
	gate := NewGate(am.StabilizationConfig{Settle: time.Millisecond})

	t.Run("missing", func(t *testing.T) {
		err := gate.Wait(context.Background(), filepath.Join(dir, "gone.pdf"))
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrVanished))
	})

	t.Run("deleted during settle", func(t *testing.T) {
		path := writeFile(t, dir, "brief.pdf", "x")
		slow := NewGate(am.StabilizationConfig{Settle: 50 * time.Millisecond})
		go func() {
			time.Sleep(5 * time.Millisecond)
			os.Remove(path)
		}()
		err := slow.Wait(context.Background(), path)
		assert.True(t, errors.Is(err, errors.ErrVanished))
	})

	t.Run("directory", func(t *testing.T) {
		sub := filepath.Join(dir, "folder.pdf")
		require.NoError(t, os.Mkdir(sub, 0755))
		err := gate.Wait(context.Background(), sub)
		assert.True(t, errors.Is(err, errors.ErrVanished))
	})
}

func TestGate_HonoursCancellation(t *testing.T) {
	path := writeFile(t, t.TempDir(), "a.pdf", "x")
	gate := NewGate(am.StabilizationConfig{Settle: time.Hour})

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(10*time.Millisecond, cancel)

	err := gate.Wait(ctx, path)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, errors.Is(err, errors.ErrVanished))
}

func TestGate_PollsUntilStable(t *testing.T) {
	path := writeFile(t, t.TempDir(), "scan.pdf", "")
	gate := NewGate(am.StabilizationConfig{
		Settle:   time.Millisecond,
		Checks:   50,
		Interval: 20 * time.Millisecond,
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return
		}
		defer f.Close()
		for i := 0; i < 5; i++ {
			f.WriteString("page\n")
			time.Sleep(15 * time.Millisecond)
		}
	}()

	require.NoError(t, gate.Wait(context.Background(), path))
	<-done

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestGate_AcceptsFileThatNeverSettles(t *testing.T) {
	path := writeFile(t, t.TempDir(), "stream.pdf", "")
	gate := NewGate(am.StabilizationConfig{
		Settle:   time.Millisecond,
		Checks:   2,
		Interval: 10 * time.Millisecond,
	})

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return
		}
		defer f.Close()
		for {
			select {
			case <-stop:
				return
			default:
				f.WriteString("x")
				time.Sleep(time.Millisecond)
			}
		}
	}()

	assert.NoError(t, gate.Wait(context.Background(), path))
}
