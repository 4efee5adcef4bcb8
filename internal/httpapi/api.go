// Package httpapi serves the flashcard API, the websocket stream and the
// browser pages.
package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/p-n-ai/pai-flashcards/internal/flashcard"
)

const readyTimeout = 2 * time.Second

// FlashcardService produces rendered datasets.
type FlashcardService interface {
	Deliver(ctx context.Context) (*flashcard.Dataset, error)
	Stream(ctx context.Context, fn func(flashcard.Topic) error) (int, error)
}

// Check is a named readiness probe.
type Check struct {
	Name string
	Fn   func(ctx context.Context) error
}

// Config holds the API's dependencies.
type Config struct {
	Service FlashcardService
	Checks  []Check
}

// API holds the HTTP handlers.
type API struct {
	svc    FlashcardService
	checks []Check
	pages  *pages
}

// New creates the API. It fails only if the embedded templates do not parse.
func New(cfg Config) (*API, error) {
	p, err := loadPages()
	if err != nil {
		return nil, err
	}
	return &API{svc: cfg.Service, checks: cfg.Checks, pages: p}, nil
}

// Handler returns the routed handler wrapped in the recover and access log
// middleware.
func (a *API) Handler() http.Handler {
	return logRequests(recoverPanics(a.routes()))
}

func (a *API) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealthz)
	mux.HandleFunc("GET /readyz", a.handleReadyz)

	mux.HandleFunc("GET /api/flashcards", a.handleFlashcards)
	mux.HandleFunc("GET /api/flashcards/stream", a.handleStream)
	mux.HandleFunc("/api/", handleAPINotFound)

	mux.HandleFunc("GET /{$}", a.pages.handleIndex)
	mux.HandleFunc("GET /flashcards", a.pages.handleFlashcards)
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(staticFS())))
	return mux
}

func handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *API) handleReadyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	for _, c := range a.checks {
		if err := c.Fn(ctx); err != nil {
			slog.Warn("readiness check failed", "check", c.Name, "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  c.Name + ": " + err.Error(),
			})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func handleAPINotFound(w http.ResponseWriter, _ *http.Request) {
	writeError(w, http.StatusNotFound, "not found")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		slog.Error("encode response", "error", err)
		status = http.StatusInternalServerError
		body = []byte(`{"error":"internal server error"}`)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
