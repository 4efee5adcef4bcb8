package render

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// Chain tries backends in registration order. It moves to the next backend
// only when one is unavailable; an ErrUnrenderable answer is final.
type Chain struct {
	backends map[string]Renderer
	order    []string
	mu       sync.RWMutex
}

// NewChain creates an empty chain.
func NewChain() *Chain {
	return &Chain{
		backends: make(map[string]Renderer),
	}
}

// Register appends a backend to the chain.
func (c *Chain) Register(name string, r Renderer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.backends[name]; !exists {
		c.order = append(c.order, name)
	}
	c.backends[name] = r
}

// Render asks each backend in turn.
func (c *Chain) Render(ctx context.Context, expr string) (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var lastErr error
	for _, name := range c.order {
		markup, err := c.backends[name].Render(ctx, expr)
		if err == nil {
			return markup, nil
		}
		if errors.Is(err, ErrUnrenderable) || ctx.Err() != nil {
			return "", err
		}
		slog.Warn("render backend failed, trying next",
			"backend", name,
			"error", err,
		)
		lastErr = err
	}

	if lastErr == nil {
		return "", fmt.Errorf("no render backends registered")
	}
	return "", fmt.Errorf("all render backends failed: %w", lastErr)
}

// HasBackend returns true if at least one backend is registered.
func (c *Chain) HasBackend() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.order) > 0
}

// HealthCheck reports healthy when any backend that can check itself is
// healthy, or when no backend exposes a check.
func (c *Chain) HealthCheck(ctx context.Context) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if len(c.order) == 0 {
		return fmt.Errorf("no render backends registered")
	}
	var errs []error
	for _, name := range c.order {
		hc, ok := c.backends[name].(HealthChecker)
		if !ok {
			return nil
		}
		err := hc.HealthCheck(ctx)
		if err == nil {
			return nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", name, err))
	}
	return errors.Join(errs...)
}
