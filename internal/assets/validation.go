package assets

import (
	"fmt"
	"strings"
)

// ValidateAssetName rejects names that could address anything other than
// a single file in the kind's directory.
func ValidateAssetName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidAssetName)
	}
	if strings.ContainsAny(name, "/\\.\x00") {
		return fmt.Errorf("%w: %q", ErrInvalidAssetName, name)
	}
	return nil
}

func validateKind(kind Kind) error {
	if kind.Ext() == "" {
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidAssetName, string(kind))
	}
	return nil
}
