package intake

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/teranos/docwatcher/errors"
	"github.com/teranos/docwatcher/logger"
	"github.com/teranos/docwatcher/metrics"
)

// Outcome is how one pass of the pipeline ended for a path
type Outcome string

const (
	OutcomeDone        Outcome = "done"
	OutcomeUnsupported Outcome = "unsupported"
	OutcomeDuplicate   Outcome = "duplicate"
	OutcomeVanished    Outcome = "vanished"
	OutcomeFailed      Outcome = "failed"
)

// Trigger says what started a pipeline pass
type Trigger string

const (
	TriggerWatch  Trigger = "watch"
	TriggerManual Trigger = "manual"
)

// Result is the terminal state of a pipeline pass
type Result struct {
	Outcome     Outcome
	Destination string // set when Outcome is OutcomeDone
	Err         error  // nil when Outcome is OutcomeDone
}

// Stabilizer waits until a path is safe to copy
type Stabilizer interface {
	Wait(ctx context.Context, path string) error
}

// Copier places a stable file into the consume folder
type Copier interface {
	Import(ctx context.Context, src string) (string, error)
}

// Processor runs a path through filter, claim, stabilization, import and
// commit. The watch loop and the force-process endpoint share one instance.
type Processor struct {
	tracker  *Tracker
	gate     Stabilizer
	importer Copier
	metrics  *metrics.Collector
	logger   *zap.SugaredLogger
}

// NewProcessor wires the pipeline stages together. collector may be nil.
func NewProcessor(tracker *Tracker, gate Stabilizer, importer Copier, collector *metrics.Collector) *Processor {
	return &Processor{
		tracker:  tracker,
		gate:     gate,
		importer: importer,
		metrics:  collector,
		logger:   logger.ComponentLogger("intake"),
	}
}

// Tracker returns the dedup tracker the processor claims paths in
func (p *Processor) Tracker() *Tracker {
	return p.tracker
}

// Process handles one path. It blocks for the stabilization wait and the
// copy, so callers that must not block run it on their own goroutine.
func (p *Processor) Process(ctx context.Context, path string, trigger Trigger) Result {
	path = filepath.Clean(path)
	start := time.Now()

	if !Supported(path) {
		p.logger.Debugw("Ignoring unsupported file", logger.FieldFile, path)
		return p.finish(trigger, start, Result{
			Outcome: OutcomeUnsupported,
			Err:     errors.Mark(errors.Newf("unsupported file type: %s", filepath.Base(path)), errors.ErrUnsupported),
		})
	}

	if !p.tracker.Claim(path) {
		p.logger.Debugw("File already processed or in progress", logger.FieldFile, path)
		return p.finish(trigger, start, Result{
			Outcome: OutcomeDuplicate,
			Err:     errors.Wrap(errors.ErrDuplicate, filepath.Base(path)),
		})
	}

	ctx = logger.WithJobID(ctx, uuid.NewString())
	log := logger.FromContext(ctx, p.logger).With("trigger", string(trigger))

	if err := p.gate.Wait(ctx, path); err != nil {
		p.tracker.ReleaseFailure(path)
		if errors.Is(err, errors.ErrVanished) {
			log.Warnw("File disappeared or is not readable", logger.FieldFile, path, logger.FieldError, err)
			return p.finish(trigger, start, Result{Outcome: OutcomeVanished, Err: err})
		}
		log.Errorw("Stabilization aborted", logger.FieldFile, path, logger.FieldError, err)
		return p.finish(trigger, start, Result{Outcome: OutcomeFailed, Err: err})
	}

	log.Infow("New document detected", logger.FieldFile, path)

	dest, err := p.importer.Import(ctx, path)
	if err != nil {
		p.tracker.ReleaseFailure(path)
		log.Errorw("Error processing file", logger.FieldFile, path, logger.FieldError, err)
		return p.finish(trigger, start, Result{Outcome: OutcomeFailed, Err: err})
	}

	p.tracker.CommitSuccess(path)
	log.Infow("Successfully processed",
		logger.FieldFile, filepath.Base(path),
		logger.FieldDestination, dest,
		logger.FieldDurationMS, time.Since(start).Milliseconds())

	return p.finish(trigger, start, Result{Outcome: OutcomeDone, Destination: dest})
}

func (p *Processor) finish(trigger Trigger, start time.Time, res Result) Result {
	if p.metrics != nil {
		p.metrics.ObserveImport(string(trigger), string(res.Outcome), time.Since(start))
		if res.Outcome == OutcomeDone {
			if n := sizeOf(res.Destination); n > 0 {
				p.metrics.ImportedBytes.Add(float64(n))
			}
		}
	}
	return res
}

func sizeOf(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}
