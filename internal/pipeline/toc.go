package pipeline

import (
	"html"
	"regexp"
	"strconv"
	"strings"
)

// headingInfo represents an extracted heading from HTML.
type headingInfo struct {
	Level int    // 1-6
	ID    string // anchor ID
	Text  string // heading text content
}

var (
	// headingPattern matches h1-h6 tags with id attribute.
	// Captures: 1=level, 2=id, 3=inner HTML (may contain inline tags)
	headingPattern = regexp.MustCompile(`(?is)<h([1-6])[^>]*\bid="([^"]*)"[^>]*>(.*?)</h[1-6]>`)

	// htmlTagPattern matches HTML tags for stripping from heading text.
	htmlTagPattern = regexp.MustCompile(`<[^>]*>`)

	// tocMarkerPattern matches a paragraph holding only the [TOC] marker.
	tocMarkerPattern = regexp.MustCompile(`(?m)^<p>\[TOC\]</p>\n?`)
)

// stripHTMLTags removes HTML tags from a string, decodes HTML entities,
// and trims whitespace. Decoding avoids double-encoding when the text is
// escaped again for the TOC.
func stripHTMLTags(s string) string {
	s = htmlTagPattern.ReplaceAllString(s, "")
	s = html.UnescapeString(s)
	return strings.TrimSpace(s)
}

// extractHeadings returns every heading that carries an id, in document order.
func extractHeadings(htmlContent string) []headingInfo {
	matches := headingPattern.FindAllStringSubmatch(htmlContent, -1)
	if len(matches) == 0 {
		return nil
	}

	headings := make([]headingInfo, 0, len(matches))
	for _, m := range matches {
		level, _ := strconv.Atoi(m[1])
		headings = append(headings, headingInfo{
			Level: level,
			ID:    m[2],
			Text:  stripHTMLTags(m[3]),
		})
	}
	return headings
}

// depthState tracks nesting for TOC entries.
// The first heading sets depth 1, and a jump of several levels
// (H1 -> H3) nests only one level deeper.
type depthState struct {
	minLevelSeen int // 0 = not set
	lastDepth    int
}

// next returns the effective nesting depth (1-based) for a heading level.
func (d *depthState) next(level int) int {
	if d.minLevelSeen == 0 {
		d.minLevelSeen = level
	}

	depth := level - d.minLevelSeen + 1
	if depth < 1 {
		depth = 1
	}
	if d.lastDepth > 0 && depth > d.lastDepth+1 {
		depth = d.lastDepth + 1
	}

	d.lastDepth = depth
	return depth
}

// generateTOC renders headings as nested lists:
//
//	<div class="toc"><ul><li><a href="#id">Text</a><ul>...</ul></li></ul></div>
func generateTOC(headings []headingInfo) string {
	if len(headings) == 0 {
		return ""
	}

	var buf strings.Builder
	buf.WriteString("<div class=\"toc\">\n")

	var state depthState
	open := 0
	for _, h := range headings {
		depth := state.next(h.Level)
		switch {
		case depth > open:
			for ; open < depth; open++ {
				buf.WriteString("<ul>\n")
			}
		default:
			buf.WriteString("</li>\n")
			for ; open > depth; open-- {
				buf.WriteString("</ul>\n</li>\n")
			}
		}

		buf.WriteString(`<li><a href="#`)
		buf.WriteString(html.EscapeString(h.ID))
		buf.WriteString(`">`)
		buf.WriteString(html.EscapeString(h.Text))
		buf.WriteString(`</a>`)
	}

	buf.WriteString("</li>\n")
	for ; open > 1; open-- {
		buf.WriteString("</ul>\n</li>\n")
	}
	buf.WriteString("</ul>\n</div>\n")
	return buf.String()
}

// ReplaceTOCMarker replaces every [TOC] paragraph with a table of contents
// built from the document's headings. A document without headings gets an
// empty TOC block so the marker never leaks into the output.
func ReplaceTOCMarker(htmlContent string) string {
	if !strings.Contains(htmlContent, "[TOC]") {
		return htmlContent
	}

	toc := generateTOC(extractHeadings(htmlContent))
	if toc == "" {
		toc = "<div class=\"toc\"></div>\n"
	}
	return tocMarkerPattern.ReplaceAllLiteralString(htmlContent, toc)
}
