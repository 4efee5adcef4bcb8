package httpapi_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/p-n-ai/pai-flashcards/internal/flashcard"
)

func dialStream(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/flashcards/stream"
	c, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		t.Fatalf("websocket.Dial() error = %v", err)
	}
	t.Cleanup(func() { _ = c.CloseNow() })
	return c
}

func TestStream_SendsTopicsThenDone(t *testing.T) {
	src := &fakeSource{ds: &flashcard.Dataset{Topics: []flashcard.Topic{
		{ID: "algebra", Name: "Algebra", Cards: []flashcard.Card{{Q: "$a$", A: "b"}}},
		{ID: "calculus", Name: "Calculus", Cards: []flashcard.Card{{Q: "c", A: `\(d\)`}}},
	}}}
	srv := httptest.NewServer(newTestAPI(t, src))
	defer srv.Close()

	c := dialStream(t, srv)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var topics []flashcard.Topic
	for range 2 {
		var topic flashcard.Topic
		if err := wsjson.Read(ctx, c, &topic); err != nil {
			t.Fatalf("read topic: %v", err)
		}
		topics = append(topics, topic)
	}
	if topics[0].ID != "algebra" || topics[0].Cards[0].Q != "<math>a</math>" {
		t.Errorf("topic 0 = %+v", topics[0])
	}
	if topics[1].ID != "calculus" || topics[1].Cards[0].A != "<math>d</math>" {
		t.Errorf("topic 1 = %+v", topics[1])
	}

	var done map[string]any
	if err := wsjson.Read(ctx, c, &done); err != nil {
		t.Fatalf("read trailer: %v", err)
	}
	if done["done"] != true || done["topics"] != float64(2) {
		t.Errorf("trailer = %v, want done with 2 topics", done)
	}

	_, _, err := c.Read(ctx)
	if status := websocket.CloseStatus(err); status != websocket.StatusNormalClosure {
		t.Errorf("close status = %v (err %v), want normal closure", status, err)
	}
}

func TestStream_SourceFailure(t *testing.T) {
	srv := httptest.NewServer(newTestAPI(t, &fakeSource{err: errors.New("db down")}))
	defer srv.Close()

	c := dialStream(t, srv)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, _, err := c.Read(ctx)
	if status := websocket.CloseStatus(err); status != websocket.StatusInternalError {
		t.Errorf("close status = %v (err %v), want internal error", status, err)
	}
	var ce websocket.CloseError
	if errors.As(err, &ce) && ce.Reason != "internal server error" {
		t.Errorf("close reason = %q", ce.Reason)
	}
}

func TestStream_RequiresUpgrade(t *testing.T) {
	h := newTestAPI(t, algebraSource())

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/flashcards/stream", nil))
	if w.Code < 400 {
		t.Errorf("plain GET status = %d, want a 4xx upgrade error", w.Code)
	}
}
