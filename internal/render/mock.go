package render

import (
	"context"
	"sync"
)

// MockRenderer is a test double for render backends. By default it wraps the
// expression in a <math> element.
type MockRenderer struct {
	Markup func(expr string) string
	Err    error
	// FailOn makes Render return ErrUnrenderable for these expressions.
	FailOn map[string]bool

	mu    sync.Mutex
	calls []string
}

// NewMockRenderer creates a MockRenderer with the default markup.
func NewMockRenderer() *MockRenderer {
	return &MockRenderer{}
}

func (m *MockRenderer) Render(_ context.Context, expr string) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, expr)
	m.mu.Unlock()

	if m.Err != nil {
		return "", m.Err
	}
	if m.FailOn[expr] {
		return "", ErrUnrenderable
	}
	if m.Markup != nil {
		return m.Markup(expr), nil
	}
	return "<math>" + expr + "</math>", nil
}

// Calls returns the expressions passed to Render, in call order.
func (m *MockRenderer) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string{}, m.calls...)
}

func (m *MockRenderer) HealthCheck(_ context.Context) error {
	return m.Err
}
