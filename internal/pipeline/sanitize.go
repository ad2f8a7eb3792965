package pipeline

import (
	"net/url"
	"sort"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// GlobalAttributeKey is the element name whose attributes apply to every element.
const GlobalAttributeKey = "*"

// dataScheme is the embedded-data URL scheme. Only raster image payloads
// are accepted for it; data:text/html would be a script vector.
const dataScheme = "data"

var dataImageTypes = map[string]bool{
	"image/png":  true,
	"image/gif":  true,
	"image/jpeg": true,
	"image/jpg":  true,
	"image/webp": true,
	"image/bmp":  true,
}

// skipContentElements have their whole subtree dropped when they are not
// allowed, instead of being unwrapped.
var skipContentElements = []string{
	"script", "style", "iframe", "object", "embed", "noscript", "noembed",
	"noframes", "frame", "frameset", "template", "textarea", "title", "svg", "math",
}

// HTMLSanitizer abstracts allow-list HTML cleaning.
type HTMLSanitizer interface {
	Sanitize(htmlContent string) string
}

// Sanitizer cleans HTML against explicit tag, attribute, and URL scheme
// allow-lists. Elements not on the list are unwrapped (their text survives);
// script-like elements lose their content as well.
//
// Safe for concurrent use once constructed.
type Sanitizer struct {
	policy *bluemonday.Policy
}

// NewSanitizer builds a Sanitizer. attrs maps an element name, or
// GlobalAttributeKey, to the attribute names allowed on it.
// The inputs are expected to have been validated by the caller.
func NewSanitizer(tags []string, attrs map[string][]string, protocols []string) *Sanitizer {
	p := bluemonday.NewPolicy()

	p.AllowElements(lowerAll(tags)...)

	// Sorted for a deterministic policy build.
	elements := make([]string, 0, len(attrs))
	for el := range attrs {
		elements = append(elements, el)
	}
	sort.Strings(elements)
	for _, el := range elements {
		names := lowerAll(attrs[el])
		if len(names) == 0 {
			continue
		}
		if el == GlobalAttributeKey {
			p.AllowAttrs(names...).Globally()
			continue
		}
		p.AllowAttrs(names...).OnElements(strings.ToLower(el))
	}

	p.RequireParseableURLs(true)
	p.AllowRelativeURLs(true)
	for _, scheme := range lowerAll(protocols) {
		if scheme == dataScheme {
			p.AllowURLSchemeWithCustomPolicy(dataScheme, isDataImageURL)
			continue
		}
		p.AllowURLSchemes(scheme)
	}

	p.SkipElementsContent(skipContentElements...)

	return &Sanitizer{policy: p}
}

// Sanitize returns htmlContent with everything outside the allow-lists removed.
// Idempotent: already-clean HTML passes through unchanged.
func (s *Sanitizer) Sanitize(htmlContent string) string {
	if htmlContent == "" {
		return ""
	}
	return s.policy.Sanitize(htmlContent)
}

// isDataImageURL accepts data: URLs that carry a raster image.
func isDataImageURL(u *url.URL) bool {
	mediaType, _, _ := strings.Cut(u.Opaque, ",")
	mediaType, _, _ = strings.Cut(mediaType, ";")
	return dataImageTypes[strings.ToLower(strings.TrimSpace(mediaType))]
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
