package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"mediavault/internal/api"
	"mediavault/internal/catalog"
	"mediavault/internal/config"
	"mediavault/internal/logging"
	"mediavault/internal/resolver"
)

type apiServer struct {
	bind   string
	logger *slog.Logger
	daemon *Daemon

	listener net.Listener
	server   *http.Server
}

func newAPIServer(cfg *config.Config, d *Daemon, logger *slog.Logger) (*apiServer, error) {
	if cfg == nil || d == nil {
		return nil, nil
	}
	bind := strings.TrimSpace(cfg.Paths.APIBind)
	if bind == "" {
		return nil, nil
	}

	srv := &apiServer{
		bind:   bind,
		logger: logger,
		daemon: d,
	}

	token := strings.TrimSpace(cfg.Paths.APIToken)
	mux := http.NewServeMux()
	mux.HandleFunc("/api/resolve", authMiddleware(token, srv.handleResolve))
	mux.HandleFunc("/api/search", authMiddleware(token, srv.handleSearch))
	mux.HandleFunc("/api/status", authMiddleware(token, srv.handleStatus))
	mux.HandleFunc("/api/stats", authMiddleware(token, srv.handleStats))
	mux.HandleFunc("/api/records", authMiddleware(token, srv.handleRecords))
	// Health stays unauthenticated so probes work without credentials.
	mux.HandleFunc("/api/health", srv.handleHealth)

	srv.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv, nil
}

// authMiddleware validates bearer tokens. An empty token disables
// authentication entirely.
func authMiddleware(token string, next http.HandlerFunc) http.HandlerFunc {
	if token == "" {
		return next
	}
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") || strings.TrimPrefix(header, "Bearer ") != token {
			http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

func (s *apiServer) start(ctx context.Context) error {
	if s == nil {
		return nil
	}
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log().Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.log().Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	if s == nil {
		return
	}
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

func (s *apiServer) addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *apiServer) handleResolve(w http.ResponseWriter, r *http.Request) {
	var request api.ResolveRequest
	switch r.Method {
	case http.MethodPost:
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&request); err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid request body", "invalid_query")
			return
		}
	case http.MethodGet:
		params := r.URL.Query()
		request.Query = params.Get("q")
		request.Kind = params.Get("kind")
		request.Refresh = params.Get("refresh") == "true"
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed", "")
		return
	}

	kind, err := catalog.ParseMediaKind(request.Kind)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error(), "invalid_query")
		return
	}

	ctx := logging.WithRequestID(r.Context(), uuid.NewString())
	resolution, err := s.daemon.coordinator.Resolve(ctx, resolver.Request{
		Query:   request.Query,
		Kind:    kind,
		Refresh: request.Refresh,
	})
	if err != nil {
		s.writeJSON(w, api.HTTPStatusFor(err), api.ResolveResponse{
			Status:    "error",
			Error:     err.Error(),
			ErrorKind: api.ErrorKindFor(err),
		})
		return
	}
	s.writeJSON(w, http.StatusOK, api.FromResolution(resolution))
}

func (s *apiServer) handleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed", "")
		return
	}
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		s.writeError(w, http.StatusBadRequest, "query parameter q required", "invalid_query")
		return
	}

	hit := s.daemon.cascade.Resolve(r.Context(), query)
	if hit == nil {
		s.writeJSON(w, http.StatusOK, api.SearchResponse{Found: false})
		return
	}
	view := api.FromArtifact(hit.Record)
	s.writeJSON(w, http.StatusOK, api.SearchResponse{
		Found:      true,
		MatchTier:  string(hit.Tier),
		Confidence: hit.Confidence,
		Record:     &view,
	})
}

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed", "")
		return
	}
	status := s.daemon.Status()
	s.writeJSON(w, http.StatusOK, api.StatusResponse{
		Running:       status.Running,
		PID:           status.PID,
		CatalogDBPath: status.CatalogDBPath,
		LockFilePath:  status.LockFilePath,
		SweepInterval: status.SweepInterval.String(),
		RetentionDays: status.RetentionDays,
	})
}

func (s *apiServer) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed", "")
		return
	}
	stats, err := s.daemon.store.Stats(r.Context())
	if err != nil {
		s.writeError(w, http.StatusServiceUnavailable, err.Error(), "store_unavailable")
		return
	}
	top, err := s.daemon.store.MostAccessed(r.Context(), 5)
	if err != nil {
		s.writeError(w, http.StatusServiceUnavailable, err.Error(), "store_unavailable")
		return
	}

	byKind := make(map[string]int64, len(stats.ByKind))
	for kind, count := range stats.ByKind {
		byKind[string(kind)] = count
	}
	views := make([]api.Artifact, len(top))
	for i, record := range top {
		views[i] = api.FromArtifact(record)
	}
	s.writeJSON(w, http.StatusOK, api.StatsResponse{
		TotalRecords:  stats.TotalRecords,
		TotalAccesses: stats.TotalAccesses,
		ByKind:        byKind,
		MostAccessed:  views,
	})
}

func (s *apiServer) handleRecords(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
	case http.MethodDelete:
		removed, err := s.daemon.store.Clear(r.Context())
		if err != nil {
			s.writeError(w, http.StatusServiceUnavailable, err.Error(), "store_unavailable")
			return
		}
		s.log().Info("catalog purged", logging.Int64("removed", removed))
		s.writeJSON(w, http.StatusOK, api.PurgeResponse{Removed: removed})
		return
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed", "")
		return
	}

	records, err := s.daemon.store.List(r.Context())
	if err != nil {
		s.writeError(w, http.StatusServiceUnavailable, err.Error(), "store_unavailable")
		return
	}
	views := make([]api.Artifact, len(records))
	for i, record := range records {
		views[i] = api.FromArtifact(record)
	}
	s.writeJSON(w, http.StatusOK, api.RecordListResponse{Records: views})
}

func (s *apiServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed", "")
		return
	}
	health, err := s.daemon.store.CheckHealth(r.Context())
	response := api.HealthResponse{
		DatabaseExists:   health.DatabaseExists,
		DatabaseReadable: health.DatabaseReadable,
		TableExists:      health.TableExists,
		TotalRecords:     health.TotalRecords,
		IntegrityCheck:   health.IntegrityCheck,
		Error:            health.Error,
	}
	if err != nil && response.Error == "" {
		response.Error = err.Error()
	}
	response.Healthy = err == nil && health.DatabaseExists && health.DatabaseReadable &&
		health.TableExists && health.IntegrityCheck

	status := http.StatusOK
	if !response.Healthy {
		status = http.StatusServiceUnavailable
	}
	s.writeJSON(w, status, response)
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log().Warn("write api response failed", logging.Error(err))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, status int, message, kind string) {
	s.writeJSON(w, status, api.ErrorResponse{Error: message, ErrorKind: kind})
}

func (s *apiServer) log() *slog.Logger {
	if s.logger != nil {
		return s.logger
	}
	return logging.NewNop()
}
