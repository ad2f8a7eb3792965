package main

import (
	"errors"
	"syscall"

	"github.com/alnah/go-mdrender"
	"github.com/alnah/go-mdrender/internal/assets"
	"github.com/alnah/go-mdrender/internal/config"
	"github.com/alnah/go-mdrender/internal/hints"
)

// hintFor returns an actionable hint for err, or "".
func hintFor(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, config.ErrConfigNotFound):
		return hints.ForConfigNotFound(config.EnvConfig)
	case errors.Is(err, mdrender.ErrUnknownExtension):
		return hints.ForUnknownExtension(mdrender.KnownExtensions())
	case errors.Is(err, mdrender.ErrUnsafeTag),
		errors.Is(err, mdrender.ErrUnsafeAttribute),
		errors.Is(err, mdrender.ErrUnsafeProtocol):
		return hints.ForUnsafePolicy()
	case errors.Is(err, syscall.EADDRINUSE):
		return hints.ForAddrInUse(config.EnvAddr)
	case errors.Is(err, assets.ErrInvalidBasePath):
		return hints.ForAssetPath()
	case errors.Is(err, ErrWriteHTML):
		return hints.ForOutputDirectory()
	}
	return ""
}
