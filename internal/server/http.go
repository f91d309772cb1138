package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// MaxBodyBytes caps the size of an analysis request body
const MaxBodyBytes = 1 << 20

// Options controls environment-dependent server behavior
type Options struct {
	// Production hides internal error details from clients
	Production bool
	// StaticDir is served as a single-page app when it exists
	StaticDir string
}

// Handler exposes the pipeline over HTTP and WebSocket
type Handler struct {
	pipeline *Pipeline
	opts     Options
}

func NewHandler(pipeline *Pipeline, opts Options) *Handler {
	return &Handler{pipeline: pipeline, opts: opts}
}

// Routes returns a chi.Router with the API, health check, and static UI mounted
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(h.recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/analyze", h.handleAnalyze)
		r.Get("/ws", h.serveWs)
		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			writeError(w, http.StatusNotFound, "Not found")
		})
	})

	if h.opts.StaticDir != "" {
		if info, err := os.Stat(h.opts.StaticDir); err == nil && info.IsDir() {
			r.NotFound(spaHandler(h.opts.StaticDir))
		} else {
			log.Printf("[WARN] Static directory %s not found, UI disabled", h.opts.StaticDir)
		}
	}

	return r
}

type analyzeResponse struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
}

func (h *Handler) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)

	var req AnalyzePayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "Request body too large.")
			return
		}
		writeError(w, http.StatusBadRequest, "Request body must be a JSON object.")
		return
	}

	kind, content, err := Validate(req.Type, req.Content)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	verdict, err := h.pipeline.Run(r.Context(), kind, content, nil)
	if err != nil {
		h.serverError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ResultPayload{Type: kind, Result: verdict})
}

// clientMessage hides internal error text in production
func (h *Handler) clientMessage(err error) string {
	if h.opts.Production {
		return "Internal server error"
	}
	return err.Error()
}

func (h *Handler) serverError(w http.ResponseWriter, err error) {
	log.Printf("[ERROR] Server error: %v", err)
	writeError(w, http.StatusInternalServerError, h.clientMessage(err))
}

// recoverer turns a panic anywhere below it into a 500 response
func (h *Handler) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				h.serverError(w, fmt.Errorf("panic: %v", rec))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// spaHandler serves files from dir and falls back to index.html for unknown paths
func spaHandler(dir string) http.HandlerFunc {
	fs := http.FileServer(http.Dir(dir))
	return func(w http.ResponseWriter, r *http.Request) {
		clean := filepath.Clean("/" + r.URL.Path)
		if strings.HasPrefix(clean, "/api/") {
			writeError(w, http.StatusNotFound, "Not found")
			return
		}
		if info, err := os.Stat(filepath.Join(dir, filepath.FromSlash(clean))); err == nil && !info.IsDir() {
			fs.ServeHTTP(w, r)
			return
		}
		http.ServeFile(w, r, filepath.Join(dir, "index.html"))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[WARN] Failed to write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, analyzeResponse{Error: true, Message: message})
}
