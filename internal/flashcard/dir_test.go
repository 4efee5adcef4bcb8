package flashcard_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/p-n-ai/pai-flashcards/internal/flashcard"
)

func setupTopicDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	writeFile(t, filepath.Join(dir, "math", "01-algebra.yaml"), `id: algebra
name: Algebra
cards:
  - q: Solve $2x = 6$
    a: $x = 3$
`)
	writeFile(t, filepath.Join(dir, "math", "02-calculus.json"), `{
  "id": "calculus",
  "name": "Calculus",
  "cards": [{"q": "\\(\\int x\\,dx\\)", "a": "$\\frac{x^2}{2} + C$"}]
}`)
	writeFile(t, filepath.Join(dir, "science", "physics.yml"), `id: physics
name: Physics
`)
	writeFile(t, filepath.Join(dir, "README.md"), "# topics")
	writeFile(t, filepath.Join(dir, ".hidden.yaml"), "id: hidden\nname: Hidden\n")
	return dir
}

func TestDirSource_Load(t *testing.T) {
	src := flashcard.NewDirSource(setupTopicDir(t))

	ds, err := src.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := []string{"algebra", "calculus", "physics"}
	if len(ds.Topics) != len(want) {
		t.Fatalf("topics = %d, want %d", len(ds.Topics), len(want))
	}
	for i, id := range want {
		if ds.Topics[i].ID != id {
			t.Errorf("topic %d = %q, want %q", i, ds.Topics[i].ID, id)
		}
	}
	if got := ds.Topics[1].Cards[0].Q; got != `\(\int x\,dx\)` {
		t.Errorf("calculus Q = %q", got)
	}
	if ds.Topics[2].Cards == nil {
		t.Error("topic without cards should have an empty slice")
	}
}

func TestDirSource_SkipsInvalidAndNonTopicFiles(t *testing.T) {
	dir := setupTopicDir(t)
	writeFile(t, filepath.Join(dir, "math", "03-broken.yaml"), "id: [unterminated")
	writeFile(t, filepath.Join(dir, "math", "04-notes.yaml"), "notes: nothing to see\n")

	ds, err := flashcard.NewDirSource(dir).Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(ds.Topics) != 3 {
		t.Errorf("topics = %d, want 3 (broken and non-topic files skipped)", len(ds.Topics))
	}
}

func TestDirSource_DuplicateIDFirstWins(t *testing.T) {
	dir := setupTopicDir(t)
	writeFile(t, filepath.Join(dir, "zz", "algebra-copy.yaml"), "id: algebra\nname: Copy\n")

	ds, err := flashcard.NewDirSource(dir).Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(ds.Topics) != 3 {
		t.Fatalf("topics = %d, want 3", len(ds.Topics))
	}
	if ds.Topics[0].Name != "Algebra" {
		t.Errorf("algebra name = %q, want first definition", ds.Topics[0].Name)
	}
}

func TestDirSource_MissingRoot(t *testing.T) {
	src := flashcard.NewDirSource(filepath.Join(t.TempDir(), "nope"))
	if _, err := src.Load(context.Background()); err == nil {
		t.Error("Load() should fail for a missing directory")
	}
	if err := src.HealthCheck(context.Background()); err == nil {
		t.Error("HealthCheck() should fail for a missing directory")
	}
}

func TestDirSource_EmptyDir(t *testing.T) {
	ds, err := flashcard.NewDirSource(t.TempDir()).Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if ds.Topics == nil || len(ds.Topics) != 0 {
		t.Errorf("Topics = %#v, want empty slice", ds.Topics)
	}
}
