package commands

import (
	"github.com/spf13/cobra"

	"github.com/teranos/docwatcher/am"
	"github.com/teranos/docwatcher/errors"
	"github.com/teranos/docwatcher/intake"
	"github.com/teranos/docwatcher/logger"
	"github.com/teranos/docwatcher/metrics"
)

// initLogging configures the global logger from cfg and the -v flag count
func initLogging(cmd *cobra.Command, cfg *am.Config) error {
	verbosity, _ := cmd.Flags().GetCount("verbose")
	err := logger.Initialize(logger.Options{
		Level:      logger.LevelForVerbosity(cfg.Log.Level, verbosity),
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		JSON:       cfg.Log.JSON,
	})
	if err != nil {
		return errors.Wrap(err, "failed to initialize logger")
	}
	return nil
}

// newPipeline builds the shared tracker, gate, importer and processor
func newPipeline(cfg *am.Config, collector *metrics.Collector) *intake.Processor {
	tracker := intake.NewTracker()
	if collector != nil {
		collector.TrackSets(tracker)
	}
	return intake.NewProcessor(
		tracker,
		intake.NewGate(cfg.Stabilization),
		intake.NewImporter(cfg.Consume.Folder, cfg.Sidecar),
		collector,
	)
}
