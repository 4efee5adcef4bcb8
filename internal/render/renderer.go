// Package render provides math render backends that turn LaTeX source into
// MathML markup.
package render

import (
	"context"
	"errors"
)

// ErrUnrenderable reports that a backend could not interpret an expression.
// Retrying the same expression on another backend cannot succeed.
var ErrUnrenderable = errors.New("expression could not be rendered")

// Renderer converts one math expression into markup. Implementations never
// panic on bad input; a failure is always returned as an error.
type Renderer interface {
	Render(ctx context.Context, expr string) (string, error)
}

// HealthChecker is implemented by backends that can report their availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}
