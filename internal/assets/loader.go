package assets

// Kind selects an asset directory and file extension.
type Kind string

// Asset kinds.
const (
	KindTemplate Kind = "templates"
	KindStyle    Kind = "styles"
	KindSample   Kind = "samples"
)

// Ext returns the file extension for assets of kind k.
func (k Kind) Ext() string {
	switch k {
	case KindTemplate:
		return ".html"
	case KindStyle:
		return ".css"
	case KindSample:
		return ".md"
	default:
		return ""
	}
}

// Built-in names per kind.
const (
	DefaultTemplate  = "index"
	DocumentTemplate = "document" // standalone page written by the CLI
	DefaultStyle     = "default"
	DefaultSample    = "welcome"
)

// AssetLoader loads page assets by kind and name (without extension).
// Implementations return ErrAssetNotFound for missing assets and
// ErrInvalidAssetName for unsafe names.
type AssetLoader interface {
	Load(kind Kind, name string) (string, error)
}

// Page bundles the three assets the web UI needs.
type Page struct {
	Template string
	Style    string
	Sample   string
}

// LoadPage loads the default template, style, and sample through l.
func LoadPage(l AssetLoader) (*Page, error) {
	tmpl, err := l.Load(KindTemplate, DefaultTemplate)
	if err != nil {
		return nil, err
	}
	style, err := l.Load(KindStyle, DefaultStyle)
	if err != nil {
		return nil, err
	}
	sample, err := l.Load(KindSample, DefaultSample)
	if err != nil {
		return nil, err
	}
	return &Page{Template: tmpl, Style: style, Sample: sample}, nil
}

// Document bundles the assets of a standalone rendered page.
type Document struct {
	Template string
	Style    string
}

// LoadDocument loads the standalone document template and default style through l.
func LoadDocument(l AssetLoader) (*Document, error) {
	tmpl, err := l.Load(KindTemplate, DocumentTemplate)
	if err != nil {
		return nil, err
	}
	style, err := l.Load(KindStyle, DefaultStyle)
	if err != nil {
		return nil, err
	}
	return &Document{Template: tmpl, Style: style}, nil
}
