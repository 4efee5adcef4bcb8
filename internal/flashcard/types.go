// Package flashcard defines the flashcard dataset and the sources it is loaded from.
package flashcard

import (
	"context"
	"fmt"
)

// Card is a single question/answer pair. Both fields are raw text that may
// contain math spans.
type Card struct {
	Q string `json:"q" yaml:"q"`
	A string `json:"a" yaml:"a"`
}

// Topic groups cards under a subject. Card order is presentation order.
type Topic struct {
	ID    string `json:"id" yaml:"id"`
	Name  string `json:"name" yaml:"name"`
	Cards []Card `json:"cards" yaml:"cards"`
}

// Dataset is the full ordered collection of topics.
type Dataset struct {
	Topics []Topic `json:"topics" yaml:"topics"`
}

// Source loads a dataset. Implementations must return a value the caller owns:
// mutating the result must never affect what later calls return.
type Source interface {
	Load(ctx context.Context) (*Dataset, error)
}

// Validate checks that topic IDs are present and unique.
func (d *Dataset) Validate() error {
	seen := make(map[string]struct{}, len(d.Topics))
	for i, t := range d.Topics {
		if t.ID == "" {
			return fmt.Errorf("topic %d has no id", i)
		}
		if _, dup := seen[t.ID]; dup {
			return fmt.Errorf("duplicate topic id %q", t.ID)
		}
		seen[t.ID] = struct{}{}
	}
	return nil
}

// normalize gives every topic a non-nil card slice. Missing or null card
// fields already decode as empty strings.
func (d *Dataset) normalize() {
	if d.Topics == nil {
		d.Topics = []Topic{}
	}
	for i := range d.Topics {
		if d.Topics[i].Cards == nil {
			d.Topics[i].Cards = []Card{}
		}
	}
}

// Clone returns a deep copy of the dataset.
func (d *Dataset) Clone() *Dataset {
	if d == nil {
		return nil
	}
	out := &Dataset{Topics: make([]Topic, len(d.Topics))}
	for i, t := range d.Topics {
		out.Topics[i] = Topic{
			ID:    t.ID,
			Name:  t.Name,
			Cards: append(make([]Card, 0, len(t.Cards)), t.Cards...),
		}
	}
	return out
}

// CardCount returns the number of cards across all topics.
func (d *Dataset) CardCount() int {
	n := 0
	for _, t := range d.Topics {
		n += len(t.Cards)
	}
	return n
}
