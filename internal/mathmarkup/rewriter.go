// Package mathmarkup replaces LaTeX-style math spans in free text with
// rendered markup.
//
// Three delimiter families are recognised and processed as a fixed pipeline of
// text -> text stages, each running over the previous stage's output:
//
//	Display  $$...$$   content may be empty, may not contain $
//	Bracket  \(...\)   content may be empty, may not contain )
//	Inline   $...$     content must be non-empty, may not contain $
//
// A span whose expression fails to render is left exactly as it was,
// delimiters included. Rewriting never fails.
package mathmarkup

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
)

// Family identifies a delimiter style.
type Family int

const (
	FamilyDisplay Family = iota
	FamilyBracket
	FamilyInline
)

func (f Family) String() string {
	switch f {
	case FamilyDisplay:
		return "display"
	case FamilyBracket:
		return "bracket"
	case FamilyInline:
		return "inline"
	default:
		return "unknown"
	}
}

// Renderer turns a math expression into markup.
type Renderer interface {
	Render(ctx context.Context, expr string) (string, error)
}

var (
	displayPattern = regexp.MustCompile(`\$\$([^$]*)\$\$`)
	bracketPattern = regexp.MustCompile(`\\\(([^)]*)\\\)`)
	inlinePattern  = regexp.MustCompile(`\$([^$]+)\$`)
)

// stage is one pass of the pipeline. prepare maps the captured content to the
// expression to render; ok=false keeps the match untouched.
type stage struct {
	family  Family
	pattern *regexp.Regexp
	prepare func(content string) (expr string, ok bool)
}

var (
	displayStage = stage{family: FamilyDisplay, pattern: displayPattern}
	bracketStage = stage{family: FamilyBracket, pattern: bracketPattern}
	inlineStage  = stage{family: FamilyInline, pattern: inlinePattern, prepare: prepareInline}

	pipeline = []stage{displayStage, bracketStage, inlineStage}
)

// Rewriter applies the three-stage pipeline using a render backend.
type Rewriter struct {
	renderer Renderer
}

// NewRewriter creates a Rewriter. The renderer must not be nil.
func NewRewriter(r Renderer) *Rewriter {
	return &Rewriter{renderer: r}
}

// Rewrite runs all three stages in order. Empty text is returned unchanged.
func (rw *Rewriter) Rewrite(ctx context.Context, text string) string {
	if text == "" {
		return text
	}
	for _, s := range pipeline {
		text = rw.apply(ctx, s, text)
	}
	return text
}

// Display replaces $$...$$ spans.
func (rw *Rewriter) Display(ctx context.Context, text string) string {
	return rw.apply(ctx, displayStage, text)
}

// Bracket replaces \(...\) spans.
func (rw *Rewriter) Bracket(ctx context.Context, text string) string {
	return rw.apply(ctx, bracketStage, text)
}

// Inline replaces $...$ spans.
func (rw *Rewriter) Inline(ctx context.Context, text string) string {
	return rw.apply(ctx, inlineStage, text)
}

func (rw *Rewriter) apply(ctx context.Context, s stage, text string) string {
	matches := s.pattern.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return text
	}

	var b strings.Builder
	b.Grow(len(text))
	last := 0
	for _, m := range matches {
		b.WriteString(text[last:m[0]])
		b.WriteString(rw.replace(ctx, s, text[m[0]:m[1]], text[m[2]:m[3]]))
		last = m[1]
	}
	b.WriteString(text[last:])
	return b.String()
}

func (rw *Rewriter) replace(ctx context.Context, s stage, match, content string) (out string) {
	expr := content
	if s.prepare != nil {
		var ok bool
		if expr, ok = s.prepare(content); !ok {
			return match
		}
	}

	defer func() {
		if r := recover(); r != nil {
			slog.Warn("math render failed",
				"family", s.family.String(),
				"error", fmt.Sprint(r),
			)
			out = match
		}
	}()

	markup, err := rw.renderer.Render(ctx, expr)
	if err != nil {
		slog.Warn("math render failed",
			"family", s.family.String(),
			"error", err,
		)
		return match
	}
	return markup
}
