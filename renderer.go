package mdrender

import (
	"fmt"
	"html"

	"github.com/alnah/go-mdrender/internal/pipeline"
)

// Compile-time interface implementation checks.
var (
	_ pipeline.DelimiterGuard = pipeline.MathDelimiterGuard{}
	_ pipeline.HTMLConverter  = (*pipeline.GoldmarkConverter)(nil)
	_ pipeline.HTMLSanitizer  = (*pipeline.Sanitizer)(nil)
	_ pipeline.LinkRewriter   = (*pipeline.Linker)(nil)
)

// Renderer turns Markdown with embedded LaTeX delimiters into sanitized HTML.
// Every stage is built once by NewRenderer; Render keeps no state between
// calls, so one Renderer serves any number of goroutines.
type Renderer struct {
	policy    Policy
	guard     pipeline.DelimiterGuard
	converter pipeline.HTMLConverter
	sanitizer pipeline.HTMLSanitizer
	linker    pipeline.LinkRewriter
}

// NewRenderer validates the policy and builds the pipeline.
// A policy error is a startup error: callers should refuse to serve.
func NewRenderer(p Policy) (*Renderer, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("validating policy: %w", err)
	}

	p = p.Clone()

	converter, err := pipeline.NewGoldmarkConverter(p.Extensions)
	if err != nil {
		return nil, fmt.Errorf("initializing markdown converter: %w", err)
	}

	return &Renderer{
		policy:    p,
		guard:     pipeline.MathDelimiterGuard{},
		converter: converter,
		sanitizer: pipeline.NewSanitizer(p.Tags, p.Attributes, p.Protocols),
		linker:    pipeline.NewLinker(p.Protocols, p.LinkEmails),
	}, nil
}

// MustNewRenderer is like NewRenderer but panics on a policy error.
func MustNewRenderer(p Policy) *Renderer {
	r, err := NewRenderer(p)
	if err != nil {
		panic(err)
	}
	return r
}

// Policy returns a copy of the policy the renderer was built with.
func (r *Renderer) Policy() Policy {
	return r.policy.Clone()
}

// Render runs the pipeline: protect math delimiters, convert Markdown,
// restore delimiters, sanitize, linkify. It is total and deterministic:
// any string yields a string, and the same input yields the same output.
func (r *Renderer) Render(text string) (out string) {
	defer func() {
		if rec := recover(); rec != nil {
			out = fallbackHTML(text)
		}
	}()

	protected := r.guard.Protect(text)
	htmlContent := r.converter.ToHTML(protected)
	htmlContent = r.guard.Restore(htmlContent)
	htmlContent = r.sanitizer.Sanitize(htmlContent)
	return r.linker.Linkify(htmlContent)
}

// fallbackHTML is the output of last resort when a stage panics:
// the input as escaped text, which is always safe to display.
func fallbackHTML(text string) string {
	if text == "" {
		return ""
	}
	return "<p>" + html.EscapeString(text) + "</p>"
}

var defaultRenderer = MustNewRenderer(DefaultPolicy())

// Render renders text with DefaultPolicy.
func Render(text string) string {
	return defaultRenderer.Render(text)
}
