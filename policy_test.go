package mdrender

import (
	"errors"
	"reflect"
	"slices"
	"testing"
)

func TestDefaultPolicy_Valid(t *testing.T) {
	t.Parallel()

	if err := DefaultPolicy().Validate(); err != nil {
		t.Fatalf("DefaultPolicy().Validate() = %v", err)
	}
}

func TestPolicy_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(p *Policy)
		wantErr error
	}{
		{
			name:   "no extensions is fine",
			mutate: func(p *Policy) { p.Extensions = nil },
		},
		{
			name:   "highlight is accepted",
			mutate: func(p *Policy) { p.Extensions = append(p.Extensions, ExtHighlight) },
		},
		{
			name:    "unknown extension",
			mutate:  func(p *Policy) { p.Extensions = append(p.Extensions, "smarty") },
			wantErr: ErrUnknownExtension,
		},
		{
			name:    "script tag",
			mutate:  func(p *Policy) { p.Tags = append(p.Tags, "script") },
			wantErr: ErrUnsafeTag,
		},
		{
			name:    "uppercase iframe tag",
			mutate:  func(p *Policy) { p.Tags = append(p.Tags, "IFRAME") },
			wantErr: ErrUnsafeTag,
		},
		{
			name:    "malformed tag name",
			mutate:  func(p *Policy) { p.Tags = append(p.Tags, "<p>") },
			wantErr: ErrInvalidPolicy,
		},
		{
			name:    "event handler attribute",
			mutate:  func(p *Policy) { p.Attributes["img"] = append(p.Attributes["img"], "onerror") },
			wantErr: ErrUnsafeAttribute,
		},
		{
			name:    "global style attribute",
			mutate:  func(p *Policy) { p.Attributes[GlobalAttributes] = []string{"style"} },
			wantErr: ErrUnsafeAttribute,
		},
		{
			name:    "malformed attribute element",
			mutate:  func(p *Policy) { p.Attributes["a b"] = []string{"title"} },
			wantErr: ErrInvalidPolicy,
		},
		{
			name:    "malformed attribute name",
			mutate:  func(p *Policy) { p.Attributes["a"] = []string{"href=x"} },
			wantErr: ErrInvalidPolicy,
		},
		{
			name:    "javascript scheme",
			mutate:  func(p *Policy) { p.Protocols = append(p.Protocols, "javascript") },
			wantErr: ErrUnsafeProtocol,
		},
		{
			name:    "scheme with colon",
			mutate:  func(p *Policy) { p.Protocols = append(p.Protocols, "http:") },
			wantErr: ErrUnsafeProtocol,
		},
		{
			name:    "scheme with leading digit",
			mutate:  func(p *Policy) { p.Protocols = append(p.Protocols, "1http") },
			wantErr: ErrUnsafeProtocol,
		},
		{
			name:    "empty scheme",
			mutate:  func(p *Policy) { p.Protocols = append(p.Protocols, " ") },
			wantErr: ErrInvalidPolicy,
		},
		{
			name:   "extra safe scheme",
			mutate: func(p *Policy) { p.Protocols = append(p.Protocols, "ftp") },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := DefaultPolicy()
			tt.mutate(&p)

			err := p.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestPolicy_Clone(t *testing.T) {
	t.Parallel()

	orig := DefaultPolicy()
	clone := orig.Clone()

	if !reflect.DeepEqual(orig, clone) {
		t.Fatal("clone differs from original")
	}

	clone.Tags[0] = "x"
	clone.Extensions[0] = "x"
	clone.Protocols[0] = "x"
	clone.Attributes["a"][0] = "x"
	clone.Attributes["new"] = []string{"title"}

	fresh := DefaultPolicy()
	if !reflect.DeepEqual(orig, fresh) {
		t.Error("mutating the clone changed the original")
	}
}

func TestPolicy_CloneNilAttributes(t *testing.T) {
	t.Parallel()

	p := Policy{Tags: []string{"p"}}
	if got := p.Clone(); got.Attributes != nil {
		t.Errorf("Clone() Attributes = %v, want nil", got.Attributes)
	}
}

func TestDefaultPolicy_Contents(t *testing.T) {
	t.Parallel()

	p := DefaultPolicy()

	wantExt := []string{ExtExtra, ExtAdmonition, ExtSaneLists, ExtTOC, ExtNL2BR}
	if !reflect.DeepEqual(p.Extensions, wantExt) {
		t.Errorf("Extensions = %v, want %v", p.Extensions, wantExt)
	}
	if !reflect.DeepEqual(p.Protocols, []string{"http", "https", "mailto", "data"}) {
		t.Errorf("Protocols = %v", p.Protocols)
	}
	if !p.LinkEmails {
		t.Error("LinkEmails should default to true")
	}

	tags := make(map[string]bool, len(p.Tags))
	for _, tag := range p.Tags {
		tags[tag] = true
	}
	for _, want := range []string{"a", "abbr", "acronym", "b", "blockquote", "code", "em", "i", "li", "ol", "strong", "ul", "p", "pre", "table", "img", "h1", "h6", "sub", "sup"} {
		if !tags[want] {
			t.Errorf("default tags missing %q", want)
		}
	}
}

func TestKnownExtensions(t *testing.T) {
	t.Parallel()

	known := KnownExtensions()
	if !slices.IsSorted(known) {
		t.Errorf("KnownExtensions() not sorted: %v", known)
	}
	for _, ext := range append(DefaultPolicy().Extensions, ExtHighlight) {
		if !slices.Contains(known, ext) {
			t.Errorf("KnownExtensions() missing %q", ext)
		}
	}
}
