package pipeline

import (
	"strings"

	admonitions "github.com/stefanfritsch/goldmark-admonitions"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/util"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// defaultAdmonitionType is used when a block names no type.
const defaultAdmonitionType = "note"

// AdmonitionRenderer renders admonition blocks as
//
//	<div class="admonition note"><p class="admonition-title">Note</p>...</div>
//
// The renderer holds no per-document state and is safe for concurrent use.
type AdmonitionRenderer struct{}

// NewAdmonitionRenderer creates an AdmonitionRenderer.
func NewAdmonitionRenderer() renderer.NodeRenderer {
	return &AdmonitionRenderer{}
}

// RegisterFuncs implements renderer.NodeRenderer.
func (r *AdmonitionRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(admonitions.KindAdmonition, r.renderAdmonition)
}

func (r *AdmonitionRenderer) renderAdmonition(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	n, ok := node.(*admonitions.Admonition)
	if !ok {
		return ast.WalkContinue, nil
	}

	if !entering {
		_, _ = w.WriteString("</div>\n")
		return ast.WalkContinue, nil
	}

	kind := admonitionType(string(n.AdmonitionClass))
	_, _ = w.WriteString(`<div class="admonition `)
	_, _ = w.Write(util.EscapeHTML([]byte(kind)))
	_, _ = w.WriteString("\">\n")

	if title, show := admonitionTitle(kind, string(n.Title)); show {
		_, _ = w.WriteString(`<p class="admonition-title">`)
		_, _ = w.Write(util.EscapeHTML([]byte(title)))
		_, _ = w.WriteString("</p>\n")
	}

	return ast.WalkContinue, nil
}

// admonitionType normalizes the block type to a lowercase CSS class token.
func admonitionType(class string) string {
	fields := strings.Fields(strings.ToLower(class))
	if len(fields) == 0 {
		return defaultAdmonitionType
	}
	return fields[0]
}

// admonitionTitle resolves the displayed title.
// A missing title falls back to the capitalized type; an explicit empty
// title ("") hides the title paragraph.
func admonitionTitle(kind, raw string) (string, bool) {
	title := strings.TrimSpace(raw)
	if title == "" {
		// A Caser is stateful, so one is built per call.
		return cases.Title(language.English).String(kind), true
	}
	if len(title) >= 2 && title[0] == '"' && title[len(title)-1] == '"' {
		title = title[1 : len(title)-1]
		if strings.TrimSpace(title) == "" {
			return "", false
		}
	}
	return title, true
}
