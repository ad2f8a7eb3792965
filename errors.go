package mdrender

import (
	"errors"

	"github.com/alnah/go-mdrender/internal/pipeline"
)

// Sentinel errors for policy validation.
// All of them are fatal at startup: a renderer is never built from a policy
// that fails validation.
var (
	// ErrUnknownExtension indicates an extension name with no Markdown capability.
	ErrUnknownExtension = pipeline.ErrUnknownExtension

	ErrInvalidPolicy   = errors.New("invalid render policy")
	ErrUnsafeTag       = errors.New("unsafe tag in allow-list")
	ErrUnsafeAttribute = errors.New("unsafe attribute in allow-list")
	ErrUnsafeProtocol  = errors.New("unsafe URL scheme in allow-list")
)
