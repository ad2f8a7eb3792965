package assets

import "errors"

// AssetResolver tries a disk directory first and falls back to the
// embedded assets when the file is not there. Validation and I/O errors
// from disk are returned as is.
type AssetResolver struct {
	custom   AssetLoader // nil when no base path is configured
	embedded AssetLoader
}

// NewAssetResolver creates an AssetResolver. An empty customBasePath
// means embedded assets only.
func NewAssetResolver(customBasePath string) (*AssetResolver, error) {
	r := &AssetResolver{embedded: NewEmbeddedLoader()}

	if customBasePath != "" {
		fs, err := NewFilesystemLoader(customBasePath)
		if err != nil {
			return nil, err
		}
		r.custom = fs
	}
	return r, nil
}

// Load implements AssetLoader.
func (r *AssetResolver) Load(kind Kind, name string) (string, error) {
	if r.custom == nil {
		return r.embedded.Load(kind, name)
	}

	content, err := r.custom.Load(kind, name)
	if err == nil {
		return content, nil
	}
	if !errors.Is(err, ErrAssetNotFound) {
		return "", err
	}
	return r.embedded.Load(kind, name)
}

// HasCustomLoader reports whether a disk directory is configured.
func (r *AssetResolver) HasCustomLoader() bool {
	return r.custom != nil
}

// Compile-time interface check.
var _ AssetLoader = (*AssetResolver)(nil)
