package intake

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/docwatcher/am"
	"github.com/teranos/docwatcher/errors"
	"github.com/teranos/docwatcher/metrics"
)

type stubGate struct {
	err   error
	mu    sync.Mutex
	calls int
}

func (g *stubGate) Wait(ctx context.Context, path string) error {
	g.mu.Lock()
	g.calls++
	g.mu.Unlock()
	return g.err
}

type stubCopier struct {
	dest string
	err  error
}

func (c *stubCopier) Import(ctx context.Context, src string) (string, error) {
	if c.err != nil {
		return "", c.err
	}
	return filepath.Join(c.dest, filepath.Base(src)), nil
}

func TestProcess_Outcomes(t *testing.T) {
	tests := []struct {
		name          string
		path          string
		gateErr       error
		importErr     error
		want          Outcome
		wantCompleted int
		wantSentinel  error
	}{
		{name: "done", path: "/shared/a.pdf", want: OutcomeDone, wantCompleted: 1},
		{name: "unsupported", path: "/shared/a.txt", want: OutcomeUnsupported, wantSentinel: errors.ErrUnsupported},
		{
			name:         "vanished",
			path:         "/shared/a.pdf",
			gateErr:      errors.Mark(errors.New("gone"), errors.ErrVanished),
			want:         OutcomeVanished,
			wantSentinel: errors.ErrVanished,
		},
		{
			name:         "copy failed",
			path:         "/shared/a.pdf",
			importErr:    errors.NewIOError(errors.New("disk full"), "copy"),
			want:         OutcomeFailed,
			wantSentinel: errors.ErrIO,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracker := NewTracker()
			collector := metrics.NewCollector(metrics.Namespace)
			p := NewProcessor(tracker, &stubGate{err: tt.gateErr}, &stubCopier{dest: "/consume", err: tt.importErr}, collector)

			res := p.Process(context.Background(), tt.path, TriggerWatch)
			assert.Equal(t, tt.want, res.Outcome)
			if tt.wantSentinel != nil {
				require.Error(t, res.Err)
				assert.True(t, errors.Is(res.Err, tt.wantSentinel), "got %v", res.Err)
			} else {
				assert.NoError(t, res.Err)
				assert.Equal(t, "/consume/a.pdf", res.Destination)
			}

			completed, inFlight := tracker.Snapshot()
			assert.Equal(t, tt.wantCompleted, completed)
			assert.Equal(t, 0, inFlight, "no path stays in flight after Process returns")

			assert.Equal(t, 1.0, testutil.ToFloat64(collector.Imports.WithLabelValues("watch", string(tt.want))))
		})
	}
}

func TestProcess_DuplicateAfterSuccess(t *testing.T) {
	gate := &stubGate{}
	p := NewProcessor(NewTracker(), gate, &stubCopier{dest: "/consume"}, nil)

	first := p.Process(context.Background(), "/shared/a.pdf", TriggerWatch)
	require.Equal(t, OutcomeDone, first.Outcome)

	second := p.Process(context.Background(), "/shared/a.pdf", TriggerManual)
	assert.Equal(t, OutcomeDuplicate, second.Outcome)
	assert.True(t, errors.Is(second.Err, errors.ErrDuplicate))
	assert.Contains(t, second.Err.Error(), "already processed or in progress")
	assert.Equal(t, 1, gate.calls, "duplicates never reach the gate")
}

func TestProcess_RetryAfterFailure(t *testing.T) {
	copier := &stubCopier{dest: "/consume", err: errors.New("boom")}
	p := NewProcessor(NewTracker(), &stubGate{}, copier, nil)

	assert.Equal(t, OutcomeFailed, p.Process(context.Background(), "/shared/a.pdf", TriggerWatch).Outcome)

	copier.err = nil
	assert.Equal(t, OutcomeDone, p.Process(context.Background(), "/shared/a.pdf", TriggerWatch).Outcome)
}

func TestProcess_CleansPath(t *testing.T) {
	p := NewProcessor(NewTracker(), &stubGate{}, &stubCopier{dest: "/consume"}, nil)

	require.Equal(t, OutcomeDone, p.Process(context.Background(), "/shared//sub/../a.pdf", TriggerWatch).Outcome)
	assert.Equal(t, OutcomeDuplicate, p.Process(context.Background(), "/shared/a.pdf", TriggerManual).Outcome)
}

func TestProcess_ConcurrentEventsImportOnce(t *testing.T) {
	src := writeFile(t, t.TempDir(), "invoice.pdf", "%PDF")
	dest := t.TempDir()

	p := NewProcessor(
		NewTracker(),
		NewGate(am.StabilizationConfig{Settle: 20 * time.Millisecond}),
		NewImporter(dest, defaultSidecar()),
		nil,
	)

	var wg sync.WaitGroup
	outcomes := make([]Outcome, 5)
	for i := range outcomes {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			outcomes[i] = p.Process(context.Background(), src, TriggerWatch).Outcome
		}(i)
	}
	wg.Wait()

	var done int
	for _, o := range outcomes {
		if o == OutcomeDone {
			done++
		} else {
			assert.Equal(t, OutcomeDuplicate, o)
		}
	}
	assert.Equal(t, 1, done)

	matches, err := filepath.Glob(filepath.Join(dest, "invoice*.pdf"))
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dest, "invoice.pdf")}, matches)
}
