package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/docwatcher/am"
	"github.com/teranos/docwatcher/errors"
	"github.com/teranos/docwatcher/logger"
	"github.com/teranos/docwatcher/metrics"
	"github.com/teranos/docwatcher/server"
	"github.com/teranos/docwatcher/watcher"
)

const shutdownTimeout = 10 * time.Second

// ServeCmd runs the watcher and the HTTP surface until interrupted
var ServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Watch the shared folder and serve health, status and force-process endpoints",
	Long: `Watch the shared folder and copy every new PDF, DOCX or DOC file into the
Paperless consume folder. Files already present at startup are not imported;
use "docwatcher process" or POST /force-process/{filename} for those.

Endpoints:
  GET  /health                     Liveness
  GET  /status                     Folders, extensions, processed/in-flight counts
  POST /force-process/{filename}   Import a top-level file from the watch folder now
  GET  /metrics                    Prometheus metrics`,
	RunE: RunServe,
}

// RunServe starts the service and blocks until SIGINT or SIGTERM
func RunServe(cmd *cobra.Command, args []string) error {
	cfg, err := am.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}
	if err := initLogging(cmd, cfg); err != nil {
		return err
	}
	defer logger.Cleanup()

	log := logger.ComponentLogger("serve")
	printStartupBanner(cfg)

	log.Infow("Starting Document Watcher Service",
		logger.FieldService, am.ServiceName,
		"watch_folder", cfg.Watch.Folder,
		"consume_folder", cfg.Consume.Folder)

	if info, err := os.Stat(cfg.Watch.Folder); err != nil || !info.IsDir() {
		log.Errorw("Watch folder does not exist", logger.FieldFolder, cfg.Watch.Folder)
		return errors.WithHint(
			errors.NewNotFoundError("watch folder does not exist: %s", cfg.Watch.Folder),
			"set WATCH_FOLDER to the mounted share")
	}
	if err := os.MkdirAll(cfg.Consume.Folder, am.DefaultDirPermissions); err != nil {
		return errors.NewIOError(err, "failed to create consume folder %s", cfg.Consume.Folder)
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	collector := metrics.NewCollector(metrics.Namespace)
	processor := newPipeline(cfg, collector)

	srv := server.New(cfg, processor, server.WithMetrics(collector))
	if err := srv.Start(ctx); err != nil {
		return err
	}

	w := watcher.New(cfg.Watch.Folder, processor, collector)
	if err := w.Start(ctx); err != nil {
		stopServer(srv)
		return err
	}

	verbosity, _ := cmd.Flags().GetCount("verbose")
	if reloader := watchConfig(verbosity); reloader != nil {
		defer reloader.Stop()
	}

	log.Infow("Document watcher started successfully")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	var runErr error
	select {
	case err := <-srv.Err():
		runErr = errors.Wrap(err, "HTTP server stopped unexpectedly")
	case sig := <-sigChan:
		if !logger.JSONOutput {
			pterm.Info.Println("Shutting down gracefully (press Ctrl+C again to force)...")
		}
		log.Infow("Stopping document watcher", "signal", sig.String())
		go func() {
			<-sigChan
			pterm.Warning.Println("Force shutdown - exiting immediately")
			os.Exit(1)
		}()
	}

	// Stop intake first so no new copies start, then let in-flight ones finish
	if err := w.Stop(); err != nil {
		log.Warnw("Watcher stop error", logger.FieldError, err)
	}
	stopServer(srv)

	log.Infow("Document watcher stopped")
	return runErr
}

func stopServer(srv *server.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Stop(ctx); err != nil {
		logger.Warnw("HTTP server shutdown error", logger.FieldError, err)
	}
}

// watchConfig applies log level changes from the highest-precedence config
// file without a restart. Returns nil when no config file is in use.
func watchConfig(verbosity int) *am.ConfigWatcher {
	files := am.ConfigFiles()
	if len(files) == 0 {
		return nil
	}
	path := files[len(files)-1]

	cw, err := am.NewConfigWatcher(path)
	if err != nil {
		logger.Warnw("Config hot reload disabled", logger.FieldFile, path, logger.FieldError, err)
		return nil
	}
	cw.OnReload(func(cfg *am.Config) error {
		if err := logger.SetLevel(logger.LevelForVerbosity(cfg.Log.Level, verbosity)); err != nil {
			return err
		}
		logger.Infow("Log level updated", "level", logger.Level().String())
		return nil
	})
	cw.Start()
	return cw
}
