package pipeline

import "strings"

// Delimiter placeholders use Unicode Private Use Area characters.
// Each placeholder is a single rune, so goldmark treats it as ordinary text
// and a syntax highlighter cannot split it across spans.
const (
	ParenOpenPlaceholder    = "\uE010" // \(
	ParenClosePlaceholder   = "\uE011" // \)
	BracketOpenPlaceholder  = "\uE012" // \[
	BracketClosePlaceholder = "\uE013" // \]

	// placeholderEscape marks a placeholder rune that was already present
	// in the input, so Restore hands it back instead of a delimiter.
	placeholderEscape = "\uE01F"
)

// Math delimiters shielded from Markdown backslash escaping.
const (
	ParenOpen    = `\(`
	ParenClose   = `\)`
	BracketOpen  = `\[`
	BracketClose = `\]`
)

var (
	protectReplacer = strings.NewReplacer(
		ParenOpen, ParenOpenPlaceholder,
		ParenClose, ParenClosePlaceholder,
		BracketOpen, BracketOpenPlaceholder,
		BracketClose, BracketClosePlaceholder,
		ParenOpenPlaceholder, placeholderEscape+ParenOpenPlaceholder,
		ParenClosePlaceholder, placeholderEscape+ParenClosePlaceholder,
		BracketOpenPlaceholder, placeholderEscape+BracketOpenPlaceholder,
		BracketClosePlaceholder, placeholderEscape+BracketClosePlaceholder,
		placeholderEscape, placeholderEscape+placeholderEscape,
	)

	// Escaped pairs are listed first: the replacer tries patterns in
	// argument order at each position.
	restoreReplacer = strings.NewReplacer(
		placeholderEscape+ParenOpenPlaceholder, ParenOpenPlaceholder,
		placeholderEscape+ParenClosePlaceholder, ParenClosePlaceholder,
		placeholderEscape+BracketOpenPlaceholder, BracketOpenPlaceholder,
		placeholderEscape+BracketClosePlaceholder, BracketClosePlaceholder,
		placeholderEscape+placeholderEscape, placeholderEscape,
		ParenOpenPlaceholder, ParenOpen,
		ParenClosePlaceholder, ParenClose,
		BracketOpenPlaceholder, BracketOpen,
		BracketClosePlaceholder, BracketClose,
	)
)

// DelimiterGuard defines the contract for shielding math delimiters
// from the Markdown converter.
type DelimiterGuard interface {
	Protect(content string) string
	Restore(htmlContent string) string
}

// MathDelimiterGuard swaps \( \) \[ \] for placeholder runes and back.
type MathDelimiterGuard struct{}

// Protect replaces every math delimiter with its placeholder, scanning left
// to right without overlapping matches.
func (MathDelimiterGuard) Protect(content string) string {
	if content == "" {
		return content
	}
	return protectReplacer.Replace(content)
}

// Restore is the inverse of Protect. Restore(Protect(x)) == x for any x.
func (MathDelimiterGuard) Restore(htmlContent string) string {
	if htmlContent == "" {
		return htmlContent
	}
	return restoreReplacer.Replace(htmlContent)
}
