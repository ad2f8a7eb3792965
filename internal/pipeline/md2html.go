package pipeline

import (
	"bytes"
	"errors"
	"fmt"
	"slices"
	"sort"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	admonitions "github.com/stefanfritsch/goldmark-admonitions"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
)

// ErrUnknownExtension indicates an extension name with no matching capability.
var ErrUnknownExtension = errors.New("unknown markdown extension")

// Extension names understood by NewGoldmarkConverter.
const (
	ExtExtra      = "extra"
	ExtAdmonition = "admonition"
	ExtSaneLists  = "sane_lists"
	ExtTOC        = "toc"
	ExtNL2BR      = "nl2br"
	ExtHighlight  = "highlight"
)

// extenderFunc adapts a function to goldmark.Extender.
type extenderFunc func(m goldmark.Markdown)

func (f extenderFunc) Extend(m goldmark.Markdown) { f(m) }

// capabilities maps extension names to goldmark configuration.
var capabilities = map[string]goldmark.Extender{
	ExtExtra: extenderFunc(func(m goldmark.Markdown) {
		extension.NewTable(
			// style="text-align:..." would not survive sanitization
			extension.WithTableCellAlignMethod(extension.TableCellAlignAttribute),
		).Extend(m)
		extension.Footnote.Extend(m)
		extension.DefinitionList.Extend(m)
		m.Parser().AddOptions(parser.WithAttribute()) // {#id .class} on headings
		extendAbbreviations(m)
	}),
	ExtAdmonition: extenderFunc(func(m goldmark.Markdown) {
		m.Parser().AddOptions(parser.WithBlockParsers(
			util.Prioritized(admonitions.NewAdmonitionParser(), 100),
		))
		m.Renderer().AddOptions(renderer.WithNodeRenderers(
			util.Prioritized(NewAdmonitionRenderer(), 100),
		))
	}),
	// CommonMark already starts a new list when the marker type changes and
	// keeps ordered list start numbers, which is what sane lists asks for.
	ExtSaneLists: extenderFunc(func(goldmark.Markdown) {}),
	ExtTOC: extenderFunc(func(m goldmark.Markdown) {
		m.Parser().AddOptions(parser.WithAutoHeadingID())
	}),
	ExtNL2BR: extenderFunc(func(m goldmark.Markdown) {
		m.Renderer().AddOptions(html.WithHardWraps())
	}),
	ExtHighlight: highlighting.NewHighlighting(
		highlighting.WithFormatOptions(
			chromahtml.WithClasses(true), // inline styles are stripped by the sanitizer
		),
	),
}

// KnownExtensions returns the sorted list of recognized extension names.
func KnownExtensions() []string {
	names := make([]string, 0, len(capabilities))
	for name := range capabilities {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ValidateExtensions returns ErrUnknownExtension for the first unrecognized name.
func ValidateExtensions(names []string) error {
	for _, name := range names {
		if _, ok := capabilities[name]; !ok {
			return fmt.Errorf("%w: %q (known: %v)", ErrUnknownExtension, name, KnownExtensions())
		}
	}
	return nil
}

// HTMLConverter abstracts Markdown to HTML conversion.
type HTMLConverter interface {
	ToHTML(content string) string
}

// GoldmarkConverter converts Markdown to an HTML5 fragment using goldmark (pure Go).
// Safe for concurrent use.
type GoldmarkConverter struct {
	md        goldmark.Markdown
	toc       bool
	attrLists bool
}

// NewGoldmarkConverter creates a GoldmarkConverter with the named extensions.
// Returns ErrUnknownExtension if a name is not recognized.
func NewGoldmarkConverter(extensions []string) (*GoldmarkConverter, error) {
	if err := ValidateExtensions(extensions); err != nil {
		return nil, err
	}

	exts := make([]goldmark.Extender, 0, len(extensions))
	seen := make(map[string]bool, len(extensions))
	for _, name := range extensions {
		if seen[name] {
			continue
		}
		seen[name] = true
		exts = append(exts, capabilities[name])
	}

	md := goldmark.New(
		goldmark.WithExtensions(exts...),
		goldmark.WithRendererOptions(
			// Raw HTML is passed through: the sanitizer runs right after and
			// decides what survives.
			html.WithUnsafe(),
		),
	)

	return &GoldmarkConverter{
		md:        md,
		toc:       slices.Contains(extensions, ExtTOC),
		attrLists: slices.Contains(extensions, ExtExtra),
	}, nil
}

// ToHTML converts Markdown content to an HTML5 fragment.
// Never fails: goldmark only errors when the writer does, and a
// bytes.Buffer does not.
func (c *GoldmarkConverter) ToHTML(content string) string {
	if content == "" {
		return ""
	}

	if c.attrLists {
		content = normalizeAttributeLists(content)
	}

	var buf bytes.Buffer
	if err := c.md.Convert([]byte(content), &buf); err != nil {
		return ""
	}

	out := buf.String()
	if c.toc {
		out = ReplaceTOCMarker(out)
	}
	return out
}
