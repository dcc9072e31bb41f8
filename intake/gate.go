package intake

import (
	"context"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/teranos/docwatcher/am"
	"github.com/teranos/docwatcher/errors"
	"github.com/teranos/docwatcher/logger"
)

// Gate holds a newly seen file back until the writer has most likely
// finished with it. The default is a plain settle delay; with checks > 0
// it also polls size and modification time until they stop moving.
type Gate struct {
	settle   time.Duration
	checks   int
	interval time.Duration
	logger   *zap.SugaredLogger
}

// NewGate creates a gate from the stabilization settings
func NewGate(cfg am.StabilizationConfig) *Gate {
	return &Gate{
		settle:   cfg.Settle,
		checks:   cfg.Checks,
		interval: cfg.Interval,
		logger:   logger.ComponentLogger("intake.gate"),
	}
}

// Wait blocks for the settle delay and then confirms path is still a
// regular, readable file. A missing or unreadable path yields an error
// marked errors.ErrVanished. Cancelling ctx aborts the wait with ctx.Err().
func (g *Gate) Wait(ctx context.Context, path string) error {
	if err := sleep(ctx, g.settle); err != nil {
		return err
	}

	info, err := observe(path)
	if err != nil {
		return err
	}
	if g.checks <= 0 {
		return nil
	}

	for i := 0; i < g.checks; i++ {
		if err := sleep(ctx, g.interval); err != nil {
			return err
		}
		next, err := observe(path)
		if err != nil {
			return err
		}
		if next.Size() == info.Size() && next.ModTime().Equal(info.ModTime()) {
			return nil
		}
		info = next
	}

	// Still growing after every poll: take it anyway, the copy is what it is
	logger.FromContext(ctx, g.logger).Warnw("File still changing after stabilization checks, importing anyway",
		logger.FieldFile, path,
		logger.FieldSize, info.Size(),
		"checks", g.checks)
	return nil
}

// observe stats path and checks it can be opened for reading
func observe(path string) (os.FileInfo, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "file disappeared: %s", path), errors.ErrVanished)
	}
	if !info.Mode().IsRegular() {
		return nil, errors.Mark(errors.Newf("not a regular file: %s", path), errors.ErrVanished)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "file not readable: %s", path), errors.ErrVanished)
	}
	f.Close()
	return info, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
