package server

import (
	"context"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shirou/gopsutil/v3/disk"

	"github.com/teranos/docwatcher/am"
	"github.com/teranos/docwatcher/intake"
	"github.com/teranos/docwatcher/logger"
	"github.com/teranos/docwatcher/version"
)

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// StatusResponse is the body of GET /status
type StatusResponse struct {
	WatchFolder          string   `json:"watch_folder"`
	ConsumeFolder        string   `json:"paperless_consume_folder"`
	SupportedExtensions  []string `json:"supported_extensions"`
	ProcessedFilesCount  int      `json:"processed_files_count"`
	ProcessingFilesCount int      `json:"processing_files_count"`
	Version              string   `json:"version,omitempty"`
	ConsumeFolderFree    *uint64  `json:"consume_folder_free_bytes,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "healthy", Service: am.ServiceName})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	completed, inFlight := s.tracker.Snapshot()

	resp := StatusResponse{
		WatchFolder:          s.watchFolder,
		ConsumeFolder:        s.consumeFolder,
		SupportedExtensions:  intake.SupportedExtensions(),
		ProcessedFilesCount:  completed,
		ProcessingFilesCount: inFlight,
		Version:              version.Get().Version,
	}

	if usage, err := disk.UsageWithContext(r.Context(), s.consumeFolder); err == nil {
		resp.ConsumeFolderFree = &usage.Free
	} else {
		s.logger.Debugw("Could not read consume folder usage", logger.FieldFolder, s.consumeFolder, logger.FieldError, err)
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleForceProcess imports a file from the top level of the watch folder
// on demand, through the same pipeline as watched files
func (s *Server) handleForceProcess(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "filename")
	if r.URL.RawPath != "" {
		if unescaped, err := url.PathUnescape(name); err == nil {
			name = unescaped
		}
	}

	if !validFileName(name) {
		writeError(w, "File not found: "+name)
		return
	}

	path := filepath.Join(s.watchFolder, name)
	if _, err := os.Stat(path); err != nil {
		writeError(w, "File not found: "+name)
		return
	}

	if !intake.Supported(path) {
		writeError(w, "Unsupported file type: "+name)
		return
	}

	if s.limiter != nil && !s.limiter.Allow() {
		writeError(w, "Rate limit exceeded: try again later")
		return
	}

	// Finish the import even if the client hangs up during the settle delay
	ctx := context.WithoutCancel(r.Context())
	res := s.processor.Process(ctx, path, intake.TriggerManual)
	if res.Outcome != intake.OutcomeDone {
		writeError(w, "Processing failed: "+res.Err.Error())
		return
	}

	writeSuccess(w, "File processed: "+name)
}

// validFileName rejects anything that could leave the top level of the watch folder
func validFileName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, "/\\\x00")
}
