package assets

import (
	"errors"
	"strings"
	"testing"
)

func TestEmbeddedLoader_Load(t *testing.T) {
	t.Parallel()

	loader := NewEmbeddedLoader()

	tests := []struct {
		name        string
		kind        Kind
		asset       string
		wantErr     error
		wantContain string
	}{
		{
			name:        "page template",
			kind:        KindTemplate,
			asset:       DefaultTemplate,
			wantContain: `name="text"`,
		},
		{
			name:        "default style",
			kind:        KindStyle,
			asset:       DefaultStyle,
			wantContain: "font-family",
		},
		{
			name:        "welcome sample",
			kind:        KindSample,
			asset:       DefaultSample,
			wantContain: `\(y = h(x)\)`,
		},
		{
			name:    "missing asset",
			kind:    KindStyle,
			asset:   "nonexistent-xyz",
			wantErr: ErrAssetNotFound,
		},
		{
			name:    "traversal",
			kind:    KindTemplate,
			asset:   "../embedded",
			wantErr: ErrInvalidAssetName,
		},
		{
			name:    "unknown kind",
			kind:    Kind("scripts"),
			asset:   "app",
			wantErr: ErrInvalidAssetName,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := loader.Load(tt.kind, tt.asset)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Load(%s, %q) error = %v, want %v", tt.kind, tt.asset, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Load(%s, %q) error = %v", tt.kind, tt.asset, err)
			}
			if !strings.Contains(got, tt.wantContain) {
				t.Errorf("Load(%s, %q) missing %q", tt.kind, tt.asset, tt.wantContain)
			}
		})
	}
}

func TestDefaultPage(t *testing.T) {
	t.Parallel()

	page, err := DefaultPage()
	if err != nil {
		t.Fatalf("DefaultPage() error = %v", err)
	}
	if page.Template == "" || page.Style == "" || page.Sample == "" {
		t.Errorf("DefaultPage() has empty parts: %+v", page)
	}
	for _, field := range []string{"{{.Raw}}", "{{.Rendered}}", "{{.Style}}"} {
		if !strings.Contains(page.Template, field) {
			t.Errorf("template missing %s", field)
		}
	}
}

type failingLoader struct {
	failOn Kind
}

func (f failingLoader) Load(kind Kind, name string) (string, error) {
	if kind == f.failOn {
		return "", ErrAssetRead
	}
	return string(kind) + ":" + name, nil
}

func TestLoadPage_PropagatesErrors(t *testing.T) {
	t.Parallel()

	for _, kind := range []Kind{KindTemplate, KindStyle, KindSample} {
		t.Run(string(kind), func(t *testing.T) {
			t.Parallel()

			if _, err := LoadPage(failingLoader{failOn: kind}); !errors.Is(err, ErrAssetRead) {
				t.Errorf("LoadPage() error = %v, want ErrAssetRead", err)
			}
		})
	}
}

func TestLoadDocument(t *testing.T) {
	t.Parallel()

	doc, err := LoadDocument(NewEmbeddedLoader())
	if err != nil {
		t.Fatalf("LoadDocument() error = %v", err)
	}
	for _, field := range []string{"{{.Title}}", "{{.Rendered}}", "{{.Style}}", "MathJax"} {
		if !strings.Contains(doc.Template, field) {
			t.Errorf("document template missing %s", field)
		}
	}
	if strings.Contains(doc.Template, "<textarea") {
		t.Error("document template should not contain the editor")
	}

	for _, kind := range []Kind{KindTemplate, KindStyle} {
		if _, err := LoadDocument(failingLoader{failOn: kind}); !errors.Is(err, ErrAssetRead) {
			t.Errorf("LoadDocument(fail on %s) error = %v, want ErrAssetRead", kind, err)
		}
	}
}
