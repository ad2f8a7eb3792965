package pipeline

import (
	"bytes"
	"io"
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"mvdan.cc/xurls/v2"
)

// Attribute values forced onto links.
const (
	relNoFollow    = "nofollow"
	relNoOpener    = "noopener"
	targetNewTab   = "_blank"
	defaultScheme  = "http://"
	mailtoScheme   = "mailto"
	fragmentPrefix = "#"
)

// noLinkifyElements hold raw text that must never gain markup.
var noLinkifyElements = map[string]bool{
	"script":   true,
	"style":    true,
	"textarea": true,
	"title":    true,
}

// schemePattern matches a leading URL scheme.
var schemePattern = regexp.MustCompile(`^([a-zA-Z][a-zA-Z0-9+.\-]*):`)

// LinkRewriter abstracts auto-linking of bare URLs in HTML.
type LinkRewriter interface {
	Linkify(htmlContent string) string
}

// Linker wraps bare URLs and email addresses found in text nodes with
// anchors, and forces rel="nofollow" plus a new-tab target on every link.
//
// Safe for concurrent use.
type Linker struct {
	matcher    *regexp.Regexp
	schemes    map[string]bool
	linkEmails bool
}

// NewLinker creates a Linker. Only URLs whose scheme is listed in protocols
// are linked; the embedded-data scheme is never auto-linked. Bare email
// addresses become mailto: links when linkEmails is set and mailto is allowed.
func NewLinker(protocols []string, linkEmails bool) *Linker {
	schemes := make(map[string]bool, len(protocols))
	for _, p := range lowerAll(protocols) {
		if p == dataScheme {
			continue
		}
		schemes[p] = true
	}
	return &Linker{
		matcher:    xurls.Relaxed(),
		schemes:    schemes,
		linkEmails: linkEmails && schemes[mailtoScheme],
	}
}

// Linkify rewrites htmlContent. Tokens it does not change are copied
// byte for byte, so the output differs from the input only where links
// were added or adjusted. Idempotent.
func (l *Linker) Linkify(htmlContent string) string {
	if htmlContent == "" {
		return ""
	}

	var out bytes.Buffer
	out.Grow(len(htmlContent))

	z := html.NewTokenizer(strings.NewReader(htmlContent))
	anchorDepth := 0
	rawDepth := 0

	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			if z.Err() != io.EOF {
				// Unterminated constructs: keep whatever was left unread.
				out.Write(z.Raw())
			}
			break
		}

		raw := append([]byte(nil), z.Raw()...)

		switch tt {
		case html.TextToken:
			if anchorDepth > 0 || rawDepth > 0 {
				out.Write(raw)
				continue
			}
			if linked, ok := l.linkText(string(z.Text())); ok {
				out.WriteString(linked)
				continue
			}
			out.Write(raw)

		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			switch {
			case tok.Data == "a":
				if tt == html.StartTagToken {
					anchorDepth++
				}
				if attrs, changed := l.applyCallbacks(tok.Attr); changed {
					writeTag(&out, tok.Data, attrs, tt == html.SelfClosingTagToken)
					continue
				}
			case noLinkifyElements[tok.Data] && tt == html.StartTagToken:
				rawDepth++
			}
			out.Write(raw)

		case html.EndTagToken:
			name, _ := z.TagName()
			switch {
			case string(name) == "a" && anchorDepth > 0:
				anchorDepth--
			case noLinkifyElements[string(name)] && rawDepth > 0:
				rawDepth--
			}
			out.Write(raw)

		default:
			out.Write(raw)
		}
	}

	return out.String()
}

// linkText returns the escaped text with every linkable match wrapped in
// an anchor. ok is false when nothing was linked.
func (l *Linker) linkText(text string) (string, bool) {
	locs := l.matcher.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return "", false
	}

	var b strings.Builder
	last := 0
	linked := false
	for _, loc := range locs {
		match := text[loc[0]:loc[1]]
		href, ok := l.hrefFor(match)
		if !ok {
			continue
		}
		b.WriteString(html.EscapeString(text[last:loc[0]]))

		attrs, _ := l.applyCallbacks([]html.Attribute{{Key: "href", Val: href}})
		writeTag(&b, "a", attrs, false)
		b.WriteString(html.EscapeString(match))
		b.WriteString("</a>")

		last = loc[1]
		linked = true
	}
	if !linked {
		return "", false
	}
	b.WriteString(html.EscapeString(text[last:]))
	return b.String(), true
}

// hrefFor turns a matched substring into a link target.
// Bare domains get http://, bare emails get mailto:.
func (l *Linker) hrefFor(match string) (string, bool) {
	// "example.com:8080" has no scheme, just a port.
	if m := schemePattern.FindStringSubmatch(match); m != nil && !strings.Contains(m[1], ".") {
		scheme := strings.ToLower(m[1])
		rest := match[len(m[0]):]
		if strings.HasPrefix(rest, "//") || scheme == mailtoScheme {
			return match, l.schemes[scheme]
		}
		return "", false
	}

	if strings.Contains(match, "@") && !strings.Contains(match, "/") {
		if !l.linkEmails {
			return "", false
		}
		return mailtoScheme + ":" + match, true
	}

	if !l.schemes["http"] {
		return "", false
	}
	return defaultScheme + match, true
}

// applyCallbacks enforces nofollow and the new-tab target on an anchor's
// attributes. Anchors without href, and mailto: links, are left alone;
// in-page fragment links keep their target.
func (l *Linker) applyCallbacks(attrs []html.Attribute) ([]html.Attribute, bool) {
	href, ok := attrValue(attrs, "href")
	if !ok {
		return attrs, false
	}
	lower := strings.ToLower(strings.TrimSpace(href))
	if strings.HasPrefix(lower, mailtoScheme+":") {
		return attrs, false
	}

	want := []string{relNoFollow}
	newTab := !strings.HasPrefix(lower, fragmentPrefix)
	if newTab {
		want = append(want, relNoOpener)
	}

	out := make([]html.Attribute, 0, len(attrs)+2)
	out = append(out, attrs...)
	changed := false

	rel, hasRel := attrValue(out, "rel")
	tokens := strings.Fields(rel)
	for _, w := range want {
		if !containsFold(tokens, w) {
			tokens = append(tokens, w)
			changed = true
		}
	}
	if changed {
		if hasRel {
			setAttr(out, "rel", strings.Join(tokens, " "))
		} else {
			out = append(out, html.Attribute{Key: "rel", Val: strings.Join(tokens, " ")})
		}
	}

	if newTab {
		target, hasTarget := attrValue(out, "target")
		switch {
		case !hasTarget:
			out = append(out, html.Attribute{Key: "target", Val: targetNewTab})
			changed = true
		case target != targetNewTab:
			setAttr(out, "target", targetNewTab)
			changed = true
		}
	}

	return out, changed
}

// writeTag serializes a start tag with escaped attribute values.
func writeTag(w io.StringWriter, name string, attrs []html.Attribute, selfClosing bool) {
	_, _ = w.WriteString("<" + name)
	for _, a := range attrs {
		key := a.Key
		if a.Namespace != "" {
			key = a.Namespace + ":" + key
		}
		_, _ = w.WriteString(" " + key + `="` + html.EscapeString(a.Val) + `"`)
	}
	if selfClosing {
		_, _ = w.WriteString("/>")
		return
	}
	_, _ = w.WriteString(">")
}

func attrValue(attrs []html.Attribute, key string) (string, bool) {
	for _, a := range attrs {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func setAttr(attrs []html.Attribute, key, val string) {
	for i := range attrs {
		if attrs[i].Namespace == "" && attrs[i].Key == key {
			attrs[i].Val = val
			return
		}
	}
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
