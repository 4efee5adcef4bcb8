package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

const defaultKatexTimeout = 5 * time.Second

// DefaultKatexArgs asks the KaTeX CLI for MathML-only output. The expression is
// written to stdin. Parse errors make the CLI exit non-zero.
var DefaultKatexArgs = []string{"--format", "mathml"}

// KatexCLI renders expressions by running the KaTeX command line tool once
// per expression.
type KatexCLI struct {
	path    string
	args    []string
	timeout time.Duration
}

// KatexOption configures a KatexCLI.
type KatexOption func(*KatexCLI)

// WithKatexArgs replaces the CLI arguments.
func WithKatexArgs(args ...string) KatexOption {
	return func(k *KatexCLI) {
		k.args = args
	}
}

// WithKatexTimeout bounds a single render call.
func WithKatexTimeout(d time.Duration) KatexOption {
	return func(k *KatexCLI) {
		if d > 0 {
			k.timeout = d
		}
	}
}

// NewKatexCLI creates a renderer that runs the katex binary at path.
func NewKatexCLI(path string, opts ...KatexOption) *KatexCLI {
	k := &KatexCLI{
		path:    path,
		args:    DefaultKatexArgs,
		timeout: defaultKatexTimeout,
	}
	for _, opt := range opts {
		opt(k)
	}
	return k
}

func (k *KatexCLI) Render(ctx context.Context, expr string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, k.timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, k.path, k.args...)
	cmd.Stdin = strings.NewReader(expr)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && ctx.Err() == nil {
			return "", fmt.Errorf("%w: %s", ErrUnrenderable, firstLine(stderr.String()))
		}
		return "", fmt.Errorf("run katex: %w", err)
	}

	return strings.TrimRight(stdout.String(), "\r\n"), nil
}

// HealthCheck verifies the katex binary can be found.
func (k *KatexCLI) HealthCheck(_ context.Context) error {
	if _, err := exec.LookPath(k.path); err != nil {
		return fmt.Errorf("katex binary not found: %w", err)
	}
	return nil
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if s == "" {
		return "katex exited with an error"
	}
	return s
}
