package pipeline

import (
	"bytes"
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// Abbreviations are defined on their own line as
//
//	*[HTML]: Hyper Text Markup Language
//
// and every whole-word occurrence of the label in the document is wrapped
// in <abbr title="...">. Definition lines produce no output.

var (
	KindAbbreviationDefinition = ast.NewNodeKind("AbbreviationDefinition")
	KindAbbreviation           = ast.NewNodeKind("Abbreviation")
)

// abbrDefinitionPattern matches "*[label]: title" after the block offset.
var abbrDefinitionPattern = regexp.MustCompile(`^\*\[([^\]\\]+)\] ?:[ \t]*(.*?)\s*$`)

// AbbreviationDefinition is a "*[label]: title" line.
type AbbreviationDefinition struct {
	ast.BaseBlock
	Label []byte
	Title []byte
}

// Kind implements ast.Node.
func (n *AbbreviationDefinition) Kind() ast.NodeKind { return KindAbbreviationDefinition }

// Dump implements ast.Node.
func (n *AbbreviationDefinition) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{
		"Label": string(n.Label),
		"Title": string(n.Title),
	}, nil)
}

// Abbreviation wraps one occurrence of a defined label.
type Abbreviation struct {
	ast.BaseInline
	Title []byte
}

// Kind implements ast.Node.
func (n *Abbreviation) Kind() ast.NodeKind { return KindAbbreviation }

// Dump implements ast.Node.
func (n *Abbreviation) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{"Title": string(n.Title)}, nil)
}

type abbrDefinitionParser struct{}

func (p *abbrDefinitionParser) Trigger() []byte { return []byte{'*'} }

func (p *abbrDefinitionParser) Open(_ ast.Node, reader text.Reader, pc parser.Context) (ast.Node, parser.State) {
	line, _ := reader.PeekLine()
	pos := pc.BlockOffset()
	if pos < 0 || pos >= len(line) {
		return nil, parser.NoChildren
	}
	m := abbrDefinitionPattern.FindSubmatch(line[pos:])
	if m == nil {
		return nil, parser.NoChildren
	}
	label := bytes.TrimSpace(m[1])
	if len(label) == 0 {
		return nil, parser.NoChildren
	}
	reader.AdvanceToEOL()
	return &AbbreviationDefinition{
		Label: bytes.Clone(label),
		Title: bytes.Clone(unquoteTitle(m[2])),
	}, parser.NoChildren
}

func (p *abbrDefinitionParser) Continue(ast.Node, text.Reader, parser.Context) parser.State {
	return parser.Close
}

func (p *abbrDefinitionParser) Close(ast.Node, text.Reader, parser.Context) {}

func (p *abbrDefinitionParser) CanInterruptParagraph() bool { return true }

func (p *abbrDefinitionParser) CanAcceptIndentedLine() bool { return false }

func unquoteTitle(title []byte) []byte {
	if len(title) >= 2 {
		first, last := title[0], title[len(title)-1]
		if (first == '"' && last == '"') || (first == '\'' && last == '\'') {
			return title[1 : len(title)-1]
		}
	}
	return title
}

// abbrTransformer removes definition blocks and wraps matching words.
type abbrTransformer struct{}

func (t *abbrTransformer) Transform(doc *ast.Document, reader text.Reader, _ parser.Context) {
	titles := map[string][]byte{}
	var defs []ast.Node
	for c := doc.FirstChild(); c != nil; c = c.NextSibling() {
		collectAbbreviations(c, titles, &defs)
	}
	for _, d := range defs {
		d.Parent().RemoveChild(d.Parent(), d)
	}
	for label, title := range titles {
		// A later empty definition cancels the label.
		if len(title) == 0 {
			delete(titles, label)
		}
	}
	if len(titles) == 0 {
		return
	}

	pattern := abbreviationPattern(titles)
	source := reader.Source()

	var targets []*ast.Text
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n.Kind() {
		case ast.KindCodeSpan, ast.KindCodeBlock, ast.KindFencedCodeBlock,
			ast.KindHTMLBlock, ast.KindRawHTML, ast.KindAutoLink, KindAbbreviation:
			return ast.WalkSkipChildren, nil
		}
		if tn, ok := n.(*ast.Text); ok && !tn.IsRaw() {
			targets = append(targets, tn)
		}
		return ast.WalkContinue, nil
	})

	for _, tn := range targets {
		wrapAbbreviations(tn, source, pattern, titles)
	}
}

func collectAbbreviations(n ast.Node, titles map[string][]byte, defs *[]ast.Node) {
	if d, ok := n.(*AbbreviationDefinition); ok {
		titles[string(d.Label)] = d.Title
		*defs = append(*defs, d)
		return
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		collectAbbreviations(c, titles, defs)
	}
}

// abbreviationPattern matches any label, longest first. Word boundaries are
// only required on sides where the label itself has a word character.
func abbreviationPattern(titles map[string][]byte) *regexp.Regexp {
	labels := make([]string, 0, len(titles))
	for label := range titles {
		labels = append(labels, label)
	}
	sort.Slice(labels, func(i, j int) bool {
		if len(labels[i]) != len(labels[j]) {
			return len(labels[i]) > len(labels[j])
		}
		return labels[i] < labels[j]
	})

	alts := make([]string, len(labels))
	for i, label := range labels {
		var b strings.Builder
		first, _ := utf8.DecodeRuneInString(label)
		last, _ := utf8.DecodeLastRuneInString(label)
		if isWordRune(first) {
			b.WriteString(`\b`)
		}
		b.WriteString(regexp.QuoteMeta(label))
		if isWordRune(last) {
			b.WriteString(`\b`)
		}
		alts[i] = b.String()
	}
	return regexp.MustCompile(`(?:` + strings.Join(alts, "|") + `)`)
}

// isWordRune mirrors the ASCII-only \b of package regexp.
func isWordRune(r rune) bool {
	return r < utf8.RuneSelf && (r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r))
}

// wrapAbbreviations splits tn around each match. The prefix pieces and the
// abbreviations are inserted before tn, which keeps the tail and its line
// break flags.
func wrapAbbreviations(tn *ast.Text, source []byte, pattern *regexp.Regexp, titles map[string][]byte) {
	seg := tn.Segment
	value := seg.Value(source)
	matches := pattern.FindAllIndex(value, -1)
	if len(matches) == 0 {
		return
	}

	parent := tn.Parent()
	start := seg.Start
	for _, m := range matches {
		from, to := seg.Start+m[0], seg.Start+m[1]
		if from > start {
			parent.InsertBefore(parent, tn, ast.NewTextSegment(text.NewSegment(start, from)))
		}
		abbr := &Abbreviation{Title: titles[string(value[m[0]:m[1]])]}
		abbr.AppendChild(abbr, ast.NewTextSegment(text.NewSegment(from, to)))
		parent.InsertBefore(parent, tn, abbr)
		start = to
	}
	tn.Segment = seg.WithStart(start)
}

// AbbreviationRenderer renders Abbreviation nodes as <abbr title="...">.
type AbbreviationRenderer struct{}

// RegisterFuncs implements renderer.NodeRenderer.
func (r *AbbreviationRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindAbbreviation, r.renderAbbreviation)
	reg.Register(KindAbbreviationDefinition, func(util.BufWriter, []byte, ast.Node, bool) (ast.WalkStatus, error) {
		return ast.WalkSkipChildren, nil
	})
}

func (r *AbbreviationRenderer) renderAbbreviation(w util.BufWriter, _ []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	n, ok := node.(*Abbreviation)
	if !ok {
		return ast.WalkContinue, nil
	}
	if !entering {
		_, _ = w.WriteString("</abbr>")
		return ast.WalkContinue, nil
	}
	_, _ = w.WriteString(`<abbr title="`)
	_, _ = w.Write(util.EscapeHTML(n.Title))
	_, _ = w.WriteString(`">`)
	return ast.WalkContinue, nil
}

// extendAbbreviations registers the parser, transformer, and renderer.
func extendAbbreviations(m goldmark.Markdown) {
	m.Parser().AddOptions(
		parser.WithBlockParsers(util.Prioritized(&abbrDefinitionParser{}, 150)),
		parser.WithASTTransformers(util.Prioritized(&abbrTransformer{}, 500)),
	)
	m.Renderer().AddOptions(renderer.WithNodeRenderers(
		util.Prioritized(&AbbreviationRenderer{}, 500),
	))
}
