package main

import (
	"errors"
	"os"

	"github.com/alnah/go-mdrender"
	"github.com/alnah/go-mdrender/internal/assets"
	"github.com/alnah/go-mdrender/internal/config"
)

// Exit codes for the mdrender CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Successful run
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, or policy
	ExitIO      = 3 // File not found, permission denied, write failure
)

// exitCodeFor returns the exit code for an error.
// It relies on errors.Is, so callers must wrap with %w.
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Usage/config/policy errors (exit 2) come first: a missing config
	// file is a usage error, not an I/O one.
	if errors.Is(err, ErrUsage) ||
		errors.Is(err, ErrInvalidWorkerCount) ||
		errors.Is(err, ErrInvalidExtension) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrInvalidConfig) ||
		errors.Is(err, mdrender.ErrInvalidPolicy) ||
		errors.Is(err, mdrender.ErrUnknownExtension) ||
		errors.Is(err, mdrender.ErrUnsafeTag) ||
		errors.Is(err, mdrender.ErrUnsafeAttribute) ||
		errors.Is(err, mdrender.ErrUnsafeProtocol) ||
		errors.Is(err, assets.ErrInvalidBasePath) ||
		errors.Is(err, assets.ErrInvalidAssetName) {
		return ExitUsage
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ErrReadMarkdown) ||
		errors.Is(err, ErrWriteHTML) ||
		errors.Is(err, ErrNoInput) {
		return ExitIO
	}

	return ExitGeneral
}
