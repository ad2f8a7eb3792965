// Package mdrender renders user-supplied Markdown, mixed with LaTeX math
// delimiters, into sanitized HTML that is safe to display in a browser.
//
// # Quick Start
//
// Render with the default policy:
//
//	html := mdrender.Render("**hi** \\(a=b\\) https://example.com")
//
// Or build a renderer once at startup and share it across goroutines:
//
//	r, err := mdrender.NewRenderer(mdrender.DefaultPolicy())
//	if err != nil {
//	    log.Fatal(err) // bad policy: refuse to start
//	}
//	out := r.Render(input)
//
// # Rendering Pipeline
//
// Render applies these stages in order:
//
//  1. Delimiter protection: \( \) \[ \] are swapped for placeholder runes so
//     Markdown backslash escaping cannot eat them
//  2. Markdown to HTML5 via Goldmark (tables, fenced code, footnotes,
//     admonitions, heading ids and [TOC], hard line breaks)
//  3. Delimiter restoration
//  4. Sanitization against the policy's tag, attribute, and URL scheme
//     allow-lists (bluemonday)
//  5. Auto-linking of bare URLs, with rel="nofollow noopener" and
//     target="_blank" on every outbound link
//
// No math is typeset: delimiters, including $...$, reach the browser
// unchanged for a client-side renderer such as MathJax or KaTeX.
//
// # Policy
//
// Policy is a plain value. DefaultPolicy returns the stock allow-lists;
// copy and edit it for alternate policies:
//
//	p := mdrender.DefaultPolicy()
//	p.Extensions = append(p.Extensions, mdrender.ExtHighlight)
//	r, err := mdrender.NewRenderer(p)
//
// NewRenderer rejects unknown extensions and allow-lists that would admit
// script (event handler attributes, style, script-like elements,
// javascript: URLs).
//
// # Limits
//
// Render performs no input size capping and has no timeout; callers that
// accept untrusted input should bound its size.
package mdrender
