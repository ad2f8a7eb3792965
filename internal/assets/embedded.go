package assets

import (
	"embed"
	"fmt"
)

//go:embed templates/* styles/* samples/*
var embedded embed.FS

// EmbeddedLoader loads assets compiled into the binary.
type EmbeddedLoader struct{}

// NewEmbeddedLoader creates an EmbeddedLoader.
func NewEmbeddedLoader() *EmbeddedLoader {
	return &EmbeddedLoader{}
}

// Load reads {kind}/{name}{ext} from the embedded filesystem.
func (e *EmbeddedLoader) Load(kind Kind, name string) (string, error) {
	if err := validateKind(kind); err != nil {
		return "", err
	}
	if err := ValidateAssetName(name); err != nil {
		return "", err
	}

	// embed.FS paths always use forward slashes.
	content, err := embedded.ReadFile(string(kind) + "/" + name + kind.Ext())
	if err != nil {
		return "", fmt.Errorf("%w: %s %q", ErrAssetNotFound, kind, name)
	}
	return string(content), nil
}

// Compile-time interface check.
var _ AssetLoader = (*EmbeddedLoader)(nil)
