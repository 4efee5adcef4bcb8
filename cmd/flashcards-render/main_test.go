package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/p-n-ai/pai-flashcards/internal/flashcard"
)

type stubDeliverer struct {
	ds  *flashcard.Dataset
	err error
}

func (s stubDeliverer) Deliver(context.Context) (*flashcard.Dataset, error) {
	return s.ds, s.err
}

var rendered = &flashcard.Dataset{Topics: []flashcard.Topic{{
	ID:    "algebra",
	Name:  "Algebra",
	Cards: []flashcard.Card{{Q: "<math>x</math>", A: "y"}},
}}}

func TestExport_Stdout(t *testing.T) {
	var stdout bytes.Buffer
	if err := export(context.Background(), stubDeliverer{ds: rendered}, "", &stdout); err != nil {
		t.Fatalf("export() error = %v", err)
	}

	var got flashcard.Dataset
	if err := json.Unmarshal(stdout.Bytes(), &got); err != nil {
		t.Fatalf("stdout is not JSON: %v", err)
	}
	if got.Topics[0].Cards[0].Q != "<math>x</math>" {
		t.Errorf("Q = %q", got.Topics[0].Cards[0].Q)
	}
}

func TestExport_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flashcards.json")
	if err := os.WriteFile(path, []byte("stale"), 0o644); err != nil {
		t.Fatal(err)
	}

	var stdout bytes.Buffer
	if err := export(context.Background(), stubDeliverer{ds: rendered}, path, &stdout); err != nil {
		t.Fatalf("export() error = %v", err)
	}
	if stdout.Len() != 0 {
		t.Errorf("stdout = %q, want nothing when -o is set", stdout.String())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	var got flashcard.Dataset
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if len(got.Topics) != 1 {
		t.Errorf("topics = %d, want 1", len(got.Topics))
	}
}

func TestExport_DeliverError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flashcards.json")
	err := export(context.Background(), stubDeliverer{err: errors.New("source down")}, path, &bytes.Buffer{})
	if err == nil {
		t.Fatal("export() should fail when delivery fails")
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Error("output file should not be created on failure")
	}
}
