package commands

import (
	"context"
	"path/filepath"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/docwatcher/am"
	"github.com/teranos/docwatcher/errors"
	"github.com/teranos/docwatcher/intake"
	"github.com/teranos/docwatcher/logger"
)

// ProcessCmd imports files once, outside the running service
var ProcessCmd = &cobra.Command{
	Use:   "process <file>...",
	Short: "Import files into the Paperless consume folder now",
	Long: `Run files through the same pipeline the watcher uses: extension filter,
stabilization wait, collision-free copy and metadata sidecar.

Unlike POST /force-process, any path is accepted, not only files at the top
level of the watch folder. Dedup state is per run.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runProcess,
}

var processNoWait bool

func init() {
	ProcessCmd.Flags().BoolVar(&processNoWait, "no-wait", false, "Skip the stabilization wait")
}

func runProcess(cmd *cobra.Command, args []string) error {
	cfg, err := am.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}
	if err := initLogging(cmd, cfg); err != nil {
		return err
	}
	defer logger.Cleanup()

	if processNoWait {
		cfg.Stabilization = am.StabilizationConfig{}
	}
	processor := newPipeline(cfg, nil)

	var failed int
	for _, arg := range args {
		path, err := filepath.Abs(arg)
		if err != nil {
			return errors.Wrapf(err, "invalid path %s", arg)
		}

		start := time.Now()
		res := processor.Process(context.Background(), path, intake.TriggerManual)
		switch res.Outcome {
		case intake.OutcomeDone:
			pterm.Success.Printf("%s -> %s (%s)\n", arg, res.Destination, time.Since(start).Round(time.Millisecond))
		case intake.OutcomeDuplicate:
			pterm.Info.Printf("%s: listed more than once, skipped\n", arg)
		default:
			failed++
			pterm.Error.Printf("%s: %s: %v\n", arg, res.Outcome, res.Err)
		}
	}

	if failed > 0 {
		return errors.Newf("%d of %d files were not imported", failed, len(args))
	}
	return nil
}
