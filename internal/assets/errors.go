package assets

import "errors"

// Sentinel errors for asset operations.
var (
	// ErrAssetNotFound indicates no asset of the requested kind and name exists.
	ErrAssetNotFound = errors.New("asset not found")

	// ErrInvalidAssetName indicates a name with path separators, dots, or nothing at all.
	ErrInvalidAssetName = errors.New("invalid asset name")

	ErrInvalidBasePath = errors.New("invalid base path")
	ErrAssetRead       = errors.New("failed to read asset")
	ErrPathTraversal   = errors.New("path traversal detected")
)
