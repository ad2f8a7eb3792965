package pipeline

import (
	"regexp"
	"strings"
)

var (
	// atxHeadingLine is an ATX heading ending in a "{: ...}" attribute list.
	atxHeadingLine = regexp.MustCompile(`^ {0,3}#{1,6}[ \t].*\{:[^{}]*\}[ \t]*$`)
	// setextTextLine is a heading text line ending in a "{: ...}" attribute list.
	setextTextLine = regexp.MustCompile(`^ {0,3}\S.*\{:[^{}]*\}[ \t]*$`)
	// setextUnderline is the line that turns the previous one into a heading.
	setextUnderline = regexp.MustCompile(`^ {0,3}(=+|-+)[ \t]*$`)
	fenceOpen       = regexp.MustCompile("^ {0,3}(`{3,}|~{3,})")
	// trailingAttrList captures the opening of the last attribute list on a line.
	trailingAttrList = regexp.MustCompile(`\{:([^{}]*\}[ \t]*)$`)
)

// normalizeAttributeLists rewrites heading attribute lists written as
// "{: #id .class}" into the "{#id .class}" form goldmark parses. Lines
// inside fenced code are left alone.
func normalizeAttributeLists(content string) string {
	if !strings.Contains(content, "{:") {
		return content
	}

	lines := strings.SplitAfter(content, "\n")
	var fence string
	for i, line := range lines {
		body := strings.TrimRight(line, "\r\n")

		if fence != "" {
			if closesFence(body, fence) {
				fence = ""
			}
			continue
		}
		if m := fenceOpen.FindStringSubmatch(body); m != nil {
			// A backtick fence whose info string holds a backtick is not a fence.
			if m[1][0] != '`' || !strings.Contains(body[len(m[0]):], "`") {
				fence = m[1]
				continue
			}
		}

		heading := atxHeadingLine.MatchString(body)
		if !heading && i+1 < len(lines) && setextTextLine.MatchString(body) {
			heading = setextUnderline.MatchString(strings.TrimRight(lines[i+1], "\r\n"))
		}
		if heading {
			lines[i] = trailingAttrList.ReplaceAllString(body, "{$1") + line[len(body):]
		}
	}
	return strings.Join(lines, "")
}

// closesFence reports whether line closes a fence opened with open: the
// same character, at least as long, and nothing after it but spaces.
func closesFence(line, open string) bool {
	trimmed := strings.TrimLeft(line, " ")
	if len(line)-len(trimmed) > 3 {
		return false
	}
	run := len(trimmed) - len(strings.TrimLeft(trimmed, open[:1]))
	if run < len(open) {
		return false
	}
	return strings.TrimSpace(trimmed[run:]) == ""
}
