package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"tracker/internal/config"
	"tracker/internal/initiative"
	"tracker/internal/logging"
	"tracker/internal/util"
)

type HTTPServer struct {
	service    *Service
	static     http.Handler
	corsOrigin string
	log        *slog.Logger
}

func NewHTTPServer(service *Service, staticDir, corsOrigin string) *HTTPServer {
	if corsOrigin == "" {
		corsOrigin = "*"
	}
	return &HTTPServer{
		service:    service,
		static:     NewStaticServer(staticDir),
		corsOrigin: corsOrigin,
		log:        logging.New("http"),
	}
}

func (s *HTTPServer) Handler() http.Handler {
	mux := http.NewServeMux()
	s.routes(mux)
	return s.withMiddleware(mux)
}

// routes registers the route table. Each API route fails with a fixed status
// except the history and export routes, which map errors by kind.
func (s *HTTPServer) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	mux.HandleFunc("GET /api/config", s.handleGetConfig)
	mux.HandleFunc("POST /api/config", s.handleUpdateConfig)
	mux.HandleFunc("GET /api/directories", s.handleDirectories)
	mux.HandleFunc("GET /api/search", s.handleSearch)

	mux.HandleFunc("GET /api/initiatives", s.handleListInitiatives)
	mux.HandleFunc("POST /api/initiatives", s.handleCreateInitiative)
	mux.HandleFunc("GET /api/initiatives/{id}", s.handleGetInitiative)
	mux.HandleFunc("GET /api/initiatives/{id}/history", s.handleHistory)
	mux.HandleFunc("GET /api/initiatives/{id}/export", s.handleExport)
	mux.HandleFunc("GET /api/initiatives/{id}/{file}", s.handleGetFile)
	mux.HandleFunc("POST /api/initiatives/{id}/note", s.handleAddNote)
	mux.HandleFunc("POST /api/initiatives/{id}/comm", s.handleAddComm)
	mux.HandleFunc("POST /api/initiatives/{id}/file/{file}", s.handleReplaceFile)

	mux.HandleFunc("OPTIONS /", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("POST /", func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Not found")
	})
	mux.Handle("GET /", s.static)
}

func (s *HTTPServer) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	doc, err := s.service.Config(r.Context())
	if err != nil {
		s.fail(w, r, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *HTTPServer) handleUpdateConfig(w http.ResponseWriter, r *http.Request) {
	var doc config.Document
	if err := decodeBody(r, &doc); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.service.UpdateConfig(r.Context(), doc); err != nil {
		s.fail(w, r, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *HTTPServer) handleDirectories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.service.Directories())
}

func (s *HTTPServer) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	results, err := s.service.Search(r.Context(), query.Get("q"), query.Get("directory"))
	if err != nil {
		s.fail(w, r, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func (s *HTTPServer) handleListInitiatives(w http.ResponseWriter, r *http.Request) {
	items, err := s.service.ListInitiatives(r.Context(), r.URL.Query().Get("directory"))
	if err != nil {
		s.fail(w, r, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *HTTPServer) handleGetInitiative(w http.ResponseWriter, r *http.Request) {
	detail, err := s.service.GetInitiative(r.Context(), r.PathValue("id"), r.URL.Query().Get("directory"))
	if err != nil {
		s.fail(w, r, http.StatusNotFound, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (s *HTTPServer) handleGetFile(w http.ResponseWriter, r *http.Request) {
	content, err := s.service.GetFile(r.Context(), r.PathValue("id"), r.PathValue("file"), r.URL.Query().Get("directory"))
	if err != nil {
		s.fail(w, r, http.StatusNotFound, err)
		return
	}
	writeJSON(w, http.StatusOK, content)
}

func (s *HTTPServer) handleCreateInitiative(w http.ResponseWriter, r *http.Request) {
	var body initiative.CreateRequest
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	directoryFallback(r, &body.Directory)
	id, err := s.service.CreateInitiative(r.Context(), body)
	if err != nil {
		s.fail(w, r, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "id": id})
}

func (s *HTTPServer) handleAddNote(w http.ResponseWriter, r *http.Request) {
	var body initiative.NoteRequest
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	directoryFallback(r, &body.Directory)
	if err := s.service.AddNote(r.Context(), r.PathValue("id"), body); err != nil {
		s.fail(w, r, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *HTTPServer) handleAddComm(w http.ResponseWriter, r *http.Request) {
	var body initiative.CommRequest
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	directoryFallback(r, &body.Directory)
	if err := s.service.AddComm(r.Context(), r.PathValue("id"), body); err != nil {
		s.fail(w, r, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *HTTPServer) handleReplaceFile(w http.ResponseWriter, r *http.Request) {
	var body initiative.ReplaceRequest
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	directoryFallback(r, &body.Directory)
	if err := s.service.ReplaceFile(r.Context(), r.PathValue("id"), r.PathValue("file"), body); err != nil {
		s.fail(w, r, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *HTTPServer) handleHistory(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	limit := 0
	if raw := query.Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = parsed
	}
	commits, err := s.service.History(r.Context(), r.PathValue("id"), query.Get("directory"), limit)
	if err != nil {
		status, _ := mapError(err)
		s.fail(w, r, status, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": r.PathValue("id"), "commits": commits})
}

func (s *HTTPServer) handleExport(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	result, err := s.service.Export(r.Context(), r.PathValue("id"), query.Get("directory"), query.Get("format"))
	if err != nil {
		status, _ := mapError(err)
		s.fail(w, r, status, err)
		return
	}
	w.Header().Set("Content-Type", result.MimeType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(result.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Data)
}

// fail writes err with the given status. Server errors are logged and
// reported with their message so the UI can show what went wrong.
func (s *HTTPServer) fail(w http.ResponseWriter, r *http.Request, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.log.Error("request failed",
			"request_id", requestIDFrom(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
	}
	writeError(w, status, err.Error())
}

func (s *HTTPServer) withMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = util.NewID("req")
		}
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		started := time.Now()
		writer := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		setCORSHeaders(writer.Header(), s.corsOrigin)
		writer.Header().Set("X-Request-ID", requestID)

		next.ServeHTTP(writer, r)

		s.log.Info("request",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", writer.status,
			"duration_ms", time.Since(started).Milliseconds(),
		)
	})
}

type requestIDKey struct{}

func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func setCORSHeaders(header http.Header, corsOrigin string) {
	header.Set("Access-Control-Allow-Origin", corsOrigin)
	header.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	header.Set("Access-Control-Allow-Headers", "Content-Type")
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message})
}

func decodeBody(r *http.Request, target any) error {
	if r.Body == nil {
		return fmt.Errorf("invalid JSON body")
	}
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		return fmt.Errorf("invalid JSON body")
	}
	return nil
}

// directoryFallback fills an empty body directory from ?directory=.
func directoryFallback(r *http.Request, directory *string) {
	if *directory == "" {
		*directory = r.URL.Query().Get("directory")
	}
}
