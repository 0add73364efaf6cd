package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strings"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/scoutline/scout-cli/internal/model"
	"github.com/scoutline/scout-cli/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API for scan requests",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		e, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		api := &apiServer{
			env:     e,
			apiKey:  cfg.Server.APIKey,
			origins: cfg.Server.AllowedOrigins,
			// Background scans outlive the request but not the server.
			baseCtx: ctx,
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: api.router(),
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownGrace())
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

// apiServer holds the wired pipeline plus the request-independent bits of
// server state. Split from the cobra command so tests can hit the router
// with httptest directly.
type apiServer struct {
	env     *env
	apiKey  string
	origins []string
	baseCtx context.Context
}

func (s *apiServer) router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "X-API-Key"},
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(rt chi.Router) {
		rt.Use(s.requireAPIKey)
		rt.Post("/scan/start", s.handleScanStart)
		rt.Get("/scan/status", s.handleScanStatus)
		rt.Get("/scan/results", s.handleScanResults)
		rt.Post("/queue/process", s.handleQueueProcess)
	})

	return r
}

// requireAPIKey enforces the static X-API-Key header when a key is
// configured. With no key configured the API is open.
func (s *apiServer) requireAPIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.apiKey != "" && r.Header.Get("X-API-Key") != s.apiKey {
			writeError(w, http.StatusUnauthorized, "invalid or missing API key")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// POST /api/scan/start
func (s *apiServer) handleScanStart(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ScanID  string `json:"scan_id"`
		UserID  string `json:"user_id"`
		RawText string `json:"raw_text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.RawText = strings.TrimSpace(req.RawText)
	if req.RawText == "" {
		writeError(w, http.StatusBadRequest, "raw_text is required")
		return
	}
	if req.ScanID == "" {
		req.ScanID = uuid.NewString()
	}
	if req.UserID == "" {
		req.UserID = "api"
	}

	source := model.SourceDescriptor{Type: model.SourceTypeText}
	scan, err := s.env.Store.CreateScan(r.Context(), req.ScanID, req.UserID, source)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create scan")
		zap.L().Error("scan create failed", zap.Error(err))
		return
	}
	if _, err := s.env.Store.AppendStatusEvent(r.Context(), scan.ID, model.StageQueued, ""); err != nil {
		zap.L().Warn("queued event append failed", zap.String("scan_id", scan.ID), zap.Error(err))
	}

	// Run the scan asynchronously; progress lands in scan_events and the
	// client polls /api/scan/status.
	rawText := req.RawText
	go func() {
		if err := s.env.Pipeline.Run(s.baseCtx, scan.ID, rawText); err != nil {
			zap.L().Error("background scan failed",
				zap.String("scan_id", scan.ID),
				zap.Error(err),
			)
		}
	}()

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"scanId":  scan.ID,
		"status":  "queued",
	})
}

// GET /api/scan/status?scanId=
func (s *apiServer) handleScanStatus(w http.ResponseWriter, r *http.Request) {
	scanID := r.URL.Query().Get("scanId")
	if scanID == "" {
		writeError(w, http.StatusBadRequest, "scanId is required")
		return
	}

	scan, err := s.env.Store.GetScan(r.Context(), scanID)
	if err != nil {
		writeStoreError(w, err, "scan status lookup failed")
		return
	}

	resp := map[string]any{
		"success": true,
		"scanId":  scan.ID,
		"status":  scan.Status,
		"counts":  scan.Counts,
	}
	event, err := s.env.Store.LatestStatusEvent(r.Context(), scanID)
	if err == nil {
		resp["stage"] = event.Stage
		resp["percent"] = event.Percent
		resp["message"] = event.Message
	} else if !errors.Is(err, store.ErrNotFound) {
		writeStoreError(w, err, "scan status lookup failed")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// GET /api/scan/results?scanId=
func (s *apiServer) handleScanResults(w http.ResponseWriter, r *http.Request) {
	scanID := r.URL.Query().Get("scanId")
	if scanID == "" {
		writeError(w, http.StatusBadRequest, "scanId is required")
		return
	}

	scan, err := s.env.Store.GetScan(r.Context(), scanID)
	if err != nil {
		writeStoreError(w, err, "scan results lookup failed")
		return
	}
	prospects, err := s.env.Store.ListProspects(r.Context(), scanID)
	if err != nil {
		writeStoreError(w, err, "scan results lookup failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"scanId":    scan.ID,
		"status":    scan.Status,
		"counts":    scan.Counts,
		"prospects": prospects,
	})
}

// POST /api/queue/process
func (s *apiServer) handleQueueProcess(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Limit             int `json:"limit"`
		PriorityThreshold int `json:"priority_threshold"`
	}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}
	if req.Limit <= 0 {
		req.Limit = cfg.Queue.BatchSize
	}

	result, err := s.env.Queue.ProcessBatch(r.Context(), req.Limit, req.PriorityThreshold)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "queue processing failed")
		zap.L().Error("queue batch failed", zap.Error(err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"processed":   result.Processed,
		"errors":      result.Errored,
		"total_items": result.Total,
	})
}

func writeStoreError(w http.ResponseWriter, err error, logMsg string) {
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "scan not found")
		return
	}
	writeError(w, http.StatusInternalServerError, "internal error")
	zap.L().Error(logMsg, zap.Error(err))
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"success": false, "error": msg})
}
