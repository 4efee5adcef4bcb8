package delivery_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/p-n-ai/pai-flashcards/internal/delivery"
	"github.com/p-n-ai/pai-flashcards/internal/flashcard"
	"github.com/p-n-ai/pai-flashcards/internal/mathmarkup"
	"github.com/p-n-ai/pai-flashcards/internal/render"
)

// staticSource returns the same *Dataset on every call, like a naively
// cached module would.
type staticSource struct {
	ds  *flashcard.Dataset
	err error
}

func (s *staticSource) Load(context.Context) (*flashcard.Dataset, error) {
	return s.ds, s.err
}

func newService(src flashcard.Source, r mathmarkup.Renderer) *delivery.Service {
	return delivery.NewService(delivery.Config{
		Source:   src,
		Rewriter: mathmarkup.NewRewriter(r),
	})
}

func TestDeliver_EndToEnd(t *testing.T) {
	src := &staticSource{ds: &flashcard.Dataset{Topics: []flashcard.Topic{{
		ID:   "algebra",
		Name: "Algebra",
		Cards: []flashcard.Card{
			{Q: "Solve $x^2=4$", A: "$$x=\\pm2$$"},
		},
	}}}}

	svc := newService(src, render.NewMockRenderer())
	got, err := svc.Deliver(context.Background())
	if err != nil {
		t.Fatalf("Deliver() error = %v", err)
	}

	card := got.Topics[0].Cards[0]
	if card.Q != "Solve <math>x^2=4</math>" {
		t.Errorf("Q = %q, want %q", card.Q, "Solve <math>x^2=4</math>")
	}
	if card.A != "<math>x=\\pm2</math>" {
		t.Errorf("A = %q, want %q", card.A, "<math>x=\\pm2</math>")
	}
	if got.Topics[0].ID != "algebra" || got.Topics[0].Name != "Algebra" {
		t.Errorf("topic = %+v, want id/name preserved", got.Topics[0])
	}
}

func TestDeliver_EmptyDataset(t *testing.T) {
	svc := newService(&staticSource{ds: &flashcard.Dataset{}}, render.NewMockRenderer())

	got, err := svc.Deliver(context.Background())
	if err != nil {
		t.Fatalf("Deliver() error = %v", err)
	}
	if got.Topics == nil || len(got.Topics) != 0 {
		t.Errorf("Topics = %#v, want empty non-nil slice", got.Topics)
	}
}

func TestDeliver_SourceError(t *testing.T) {
	svc := newService(&staticSource{err: errors.New("disk on fire")}, render.NewMockRenderer())

	_, err := svc.Deliver(context.Background())
	if err == nil {
		t.Fatal("Deliver() should return error when source fails")
	}
	if !errors.Is(err, delivery.ErrSourceUnavailable) {
		t.Errorf("error = %v, want ErrSourceUnavailable", err)
	}
}

func TestDeliver_DoesNotMutateSource(t *testing.T) {
	raw := &flashcard.Dataset{Topics: []flashcard.Topic{{
		ID:    "t1",
		Name:  "T1",
		Cards: []flashcard.Card{{Q: "$a$", A: "$$b$$"}},
	}}}
	mock := render.NewMockRenderer()
	svc := newService(&staticSource{ds: raw}, mock)

	first, err := svc.Deliver(context.Background())
	if err != nil {
		t.Fatalf("Deliver() error = %v", err)
	}
	second, err := svc.Deliver(context.Background())
	if err != nil {
		t.Fatalf("Deliver() error = %v", err)
	}

	if raw.Topics[0].Cards[0].Q != "$a$" || raw.Topics[0].Cards[0].A != "$$b$$" {
		t.Errorf("source dataset mutated: %+v", raw.Topics[0].Cards[0])
	}
	if first.Topics[0].Cards[0] != second.Topics[0].Cards[0] {
		t.Errorf("second delivery differs: %+v vs %+v", first.Topics[0].Cards[0], second.Topics[0].Cards[0])
	}
	if n := len(mock.Calls()); n != 4 {
		t.Errorf("render calls = %d, want 4 (each request renders raw text)", n)
	}
}

func TestDeliver_PreservesOrder(t *testing.T) {
	ds := &flashcard.Dataset{}
	for i := range 20 {
		ds.Topics = append(ds.Topics, flashcard.Topic{
			ID:    fmt.Sprintf("t%02d", i),
			Name:  fmt.Sprintf("Topic %d", i),
			Cards: []flashcard.Card{{Q: fmt.Sprintf("$q%d$", i), A: "plain"}},
		})
	}

	svc := delivery.NewService(delivery.Config{
		Source:   &staticSource{ds: ds},
		Rewriter: mathmarkup.NewRewriter(render.NewMockRenderer()),
		Workers:  3,
	})
	got, err := svc.Deliver(context.Background())
	if err != nil {
		t.Fatalf("Deliver() error = %v", err)
	}

	for i, topic := range got.Topics {
		if topic.ID != fmt.Sprintf("t%02d", i) {
			t.Errorf("topic %d id = %q", i, topic.ID)
		}
		want := fmt.Sprintf("<math>q%d</math>", i)
		if topic.Cards[0].Q != want {
			t.Errorf("topic %d Q = %q, want %q", i, topic.Cards[0].Q, want)
		}
		if topic.Cards[0].A != "plain" {
			t.Errorf("topic %d A = %q, want plain", i, topic.Cards[0].A)
		}
	}
}

func TestDeliver_RenderFailureKeepsSource(t *testing.T) {
	src := &staticSource{ds: &flashcard.Dataset{Topics: []flashcard.Topic{{
		ID:    "t",
		Cards: []flashcard.Card{{Q: "Broken \\(\\frac{1}\\) here", A: "$ok$"}},
	}}}}
	mock := &render.MockRenderer{FailOn: map[string]bool{"\\frac{1}": true}}

	got, err := newService(src, mock).Deliver(context.Background())
	if err != nil {
		t.Fatalf("Deliver() error = %v", err)
	}
	if q := got.Topics[0].Cards[0].Q; q != "Broken \\(\\frac{1}\\) here" {
		t.Errorf("Q = %q, want original text", q)
	}
	if a := got.Topics[0].Cards[0].A; a != "<math>ok</math>" {
		t.Errorf("A = %q, want rendered", a)
	}
}

func TestStream(t *testing.T) {
	src := &staticSource{ds: &flashcard.Dataset{Topics: []flashcard.Topic{
		{ID: "a", Cards: []flashcard.Card{{Q: "$x$"}}},
		{ID: "b", Cards: []flashcard.Card{{Q: "y"}}},
	}}}
	svc := newService(src, render.NewMockRenderer())

	var ids []string
	n, err := svc.Stream(context.Background(), func(topic flashcard.Topic) error {
		ids = append(ids, topic.ID+":"+topic.Cards[0].Q)
		return nil
	})
	if err != nil {
		t.Fatalf("Stream() error = %v", err)
	}
	if n != 2 {
		t.Errorf("Stream() = %d topics, want 2", n)
	}
	if strings.Join(ids, ",") != "a:<math>x</math>,b:y" {
		t.Errorf("streamed = %v", ids)
	}
}

func TestStream_CallbackError(t *testing.T) {
	src := &staticSource{ds: &flashcard.Dataset{Topics: []flashcard.Topic{{ID: "a"}, {ID: "b"}}}}
	svc := newService(src, render.NewMockRenderer())

	n, err := svc.Stream(context.Background(), func(flashcard.Topic) error {
		return errors.New("client gone")
	})
	if err == nil {
		t.Fatal("Stream() should return callback error")
	}
	if n != 0 {
		t.Errorf("Stream() = %d topics, want 0", n)
	}
}
