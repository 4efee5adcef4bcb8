package httpapi

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"golang.org/x/crypto/blake2b"

	"github.com/p-n-ai/pai-flashcards/internal/delivery"
	"github.com/p-n-ai/pai-flashcards/internal/flashcard"
)

// streamDone is the last message on the stream before a normal close.
type streamDone struct {
	Done   bool `json:"done"`
	Topics int  `json:"topics"`
}

func (a *API) handleFlashcards(w http.ResponseWriter, r *http.Request) {
	ds, err := a.svc.Deliver(r.Context())
	if err != nil {
		slog.Error("flashcard delivery failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	body, err := json.Marshal(ds)
	if err != nil {
		slog.Error("encode flashcards", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	etag := ETag(body)
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "no-cache")
	if etagMatches(r.Header.Get("If-None-Match"), etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (a *API) handleStream(w http.ResponseWriter, r *http.Request) {
	c, err := websocket.Accept(w, r, nil)
	if err != nil {
		slog.Warn("websocket accept failed", "error", err)
		return
	}
	defer func() { _ = c.CloseNow() }()

	// Clients never send data; CloseRead handles their control frames.
	ctx := c.CloseRead(r.Context())

	n, err := a.svc.Stream(ctx, func(t flashcard.Topic) error {
		return wsjson.Write(ctx, c, t)
	})
	if err != nil {
		slog.Error("flashcard stream failed", "topics_sent", n, "error", err)
		reason := "stream failed"
		if errors.Is(err, delivery.ErrSourceUnavailable) {
			reason = "internal server error"
		}
		_ = c.Close(websocket.StatusInternalError, reason)
		return
	}

	if err := wsjson.Write(ctx, c, streamDone{Done: true, Topics: n}); err != nil {
		slog.Warn("write stream trailer", "error", err)
		return
	}
	_ = c.Close(websocket.StatusNormalClosure, "")
}

// ETag returns a strong entity tag for a response body.
func ETag(body []byte) string {
	sum := blake2b.Sum256(body)
	return `"` + hex.EncodeToString(sum[:]) + `"`
}

func etagMatches(header, etag string) bool {
	if header == "" {
		return false
	}
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" || strings.TrimPrefix(candidate, "W/") == etag {
			return true
		}
	}
	return false
}
