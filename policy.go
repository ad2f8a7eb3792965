package mdrender

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/alnah/go-mdrender/internal/pipeline"
)

// Extension names accepted in Policy.Extensions.
const (
	ExtExtra      = pipeline.ExtExtra      // tables, fenced code, footnotes, definition and attribute lists
	ExtAdmonition = pipeline.ExtAdmonition // !!! note blocks
	ExtSaneLists  = pipeline.ExtSaneLists  // strict list marker handling
	ExtTOC        = pipeline.ExtTOC        // heading ids and the [TOC] marker
	ExtNL2BR      = pipeline.ExtNL2BR      // newlines become <br>
	ExtHighlight  = pipeline.ExtHighlight  // chroma syntax highlighting with CSS classes
)

// GlobalAttributes is the Policy.Attributes key for attributes allowed on every element.
const GlobalAttributes = pipeline.GlobalAttributeKey

// Policy is the complete, process-wide render configuration.
// Build it once at startup, pass it to NewRenderer, and do not mutate it afterwards.
type Policy struct {
	// Extensions lists Markdown capabilities to enable. Order does not matter.
	Extensions []string

	// Tags lists elements that survive sanitization.
	Tags []string

	// Attributes maps an element name, or GlobalAttributes, to the attribute
	// names allowed on it.
	Attributes map[string][]string

	// Protocols lists URL schemes allowed in href/src. Relative URLs are
	// always allowed.
	Protocols []string

	// LinkEmails turns bare email addresses into mailto: links.
	LinkEmails bool
}

var (
	// Never allowed regardless of configuration.
	unsafeTags = map[string]bool{
		"script": true, "style": true, "iframe": true, "object": true, "embed": true,
		"frame": true, "frameset": true, "noscript": true, "template": true,
		"svg": true, "math": true, "form": true, "input": true, "textarea": true,
		"button": true, "base": true, "link": true, "meta": true,
	}
	unsafeAttributes = map[string]bool{
		"style": true, "formaction": true, "srcdoc": true, "xmlns": true,
	}
	unsafeProtocols = map[string]bool{
		"javascript": true, "vbscript": true, "file": true,
	}

	namePattern   = regexp.MustCompile(`^[a-z][a-z0-9-]*$`)
	schemePattern = regexp.MustCompile(`^[a-z][a-z0-9+.\-]*$`)
)

// DefaultPolicy returns the stock policy: five Markdown extensions and
// explicit allow-lists covering a conservative base set plus structural,
// table, and media elements.
func DefaultPolicy() Policy {
	return Policy{
		Extensions: []string{ExtExtra, ExtAdmonition, ExtSaneLists, ExtTOC, ExtNL2BR},
		Tags: []string{
			// conservative base
			"a", "abbr", "acronym", "b", "blockquote", "code", "em", "i", "li", "ol", "strong", "ul",
			// structure and text
			"p", "pre", "span", "div", "br", "hr",
			"h1", "h2", "h3", "h4", "h5", "h6",
			"tt", "kbd", "s", "sub", "sup",
			// tables
			"table", "thead", "tbody", "tr", "th", "td",
			// definition lists
			"dl", "dt", "dd",
			// media
			"img",
		},
		Attributes: map[string][]string{
			"a":              {"href", "title", "name", "target", "rel"},
			"abbr":           {"title"},
			"acronym":        {"title"},
			"img":            {"src", "alt", "title", "width", "height"},
			"ol":             {"start"},
			"th":             {"align"},
			"td":             {"align"},
			GlobalAttributes: {"class", "id", "aria-label", "role"},
		},
		Protocols:  []string{"http", "https", "mailto", "data"},
		LinkEmails: true,
	}
}

// KnownExtensions returns the sorted names accepted in Policy.Extensions.
func KnownExtensions() []string {
	return pipeline.KnownExtensions()
}

// Clone returns a deep copy of the policy.
func (p Policy) Clone() Policy {
	out := Policy{
		Extensions: append([]string(nil), p.Extensions...),
		Tags:       append([]string(nil), p.Tags...),
		Protocols:  append([]string(nil), p.Protocols...),
		LinkEmails: p.LinkEmails,
	}
	if p.Attributes != nil {
		out.Attributes = make(map[string][]string, len(p.Attributes))
		for el, attrs := range p.Attributes {
			out.Attributes[el] = append([]string(nil), attrs...)
		}
	}
	return out
}

// Validate checks that every extension is recognized and that the
// allow-lists cannot let executable content through. Event handler
// attributes, style, script-capable elements, and javascript: style
// schemes are rejected even if listed explicitly.
func (p Policy) Validate() error {
	if err := pipeline.ValidateExtensions(p.Extensions); err != nil {
		return err
	}

	for _, tag := range p.Tags {
		name := strings.ToLower(strings.TrimSpace(tag))
		if !namePattern.MatchString(name) {
			return fmt.Errorf("%w: tag %q", ErrInvalidPolicy, tag)
		}
		if unsafeTags[name] {
			return fmt.Errorf("%w: %q", ErrUnsafeTag, tag)
		}
	}

	for el, attrs := range p.Attributes {
		elName := strings.ToLower(strings.TrimSpace(el))
		if elName != GlobalAttributes && !namePattern.MatchString(elName) {
			return fmt.Errorf("%w: attribute element %q", ErrInvalidPolicy, el)
		}
		for _, attr := range attrs {
			name := strings.ToLower(strings.TrimSpace(attr))
			if !namePattern.MatchString(name) {
				return fmt.Errorf("%w: attribute %q on %q", ErrInvalidPolicy, attr, el)
			}
			if strings.HasPrefix(name, "on") || unsafeAttributes[name] {
				return fmt.Errorf("%w: %q on %q", ErrUnsafeAttribute, attr, el)
			}
		}
	}

	for _, proto := range p.Protocols {
		scheme := strings.ToLower(strings.TrimSpace(proto))
		if scheme == "" {
			return fmt.Errorf("%w: empty scheme", ErrInvalidPolicy)
		}
		if !schemePattern.MatchString(scheme) {
			return fmt.Errorf("%w: malformed scheme %q", ErrUnsafeProtocol, proto)
		}
		if unsafeProtocols[scheme] {
			return fmt.Errorf("%w: %q", ErrUnsafeProtocol, proto)
		}
	}

	return nil
}
