// Package pipeline implements the stages of the Markdown-to-safe-HTML pipeline.
//
// Each stage is a small type behind an interface:
//   - MathDelimiterGuard: swaps \( \) \[ \] for placeholder runes and back
//   - GoldmarkConverter: Markdown to an HTML5 fragment via Goldmark, with
//     named capabilities (extra, admonition, sane_lists, toc, nl2br, highlight)
//   - Sanitizer: allow-list cleaning via bluemonday
//   - Linker: streaming token filter that auto-links bare URLs and enforces
//     rel/target on anchors
//
// Stages are stateless after construction and safe for concurrent use.
// Ordering and policy live in the root mdrender package.
package pipeline
