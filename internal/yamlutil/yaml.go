// Package yamlutil is the single place the YAML library is imported.
package yamlutil

import (
	"errors"
	"fmt"

	"github.com/goccy/go-yaml"
)

// MaxInputSize caps the size of a YAML document (1MB).
var MaxInputSize = 1 << 20

var (
	ErrEmptyInput     = errors.New("yamlutil: empty input")
	ErrNilDestination = errors.New("yamlutil: nil destination")
	ErrInputTooLarge  = errors.New("yamlutil: input exceeds maximum size")
)

func checkInput(data []byte, v any) error {
	switch {
	case len(data) == 0:
		return ErrEmptyInput
	case len(data) > MaxInputSize:
		return fmt.Errorf("%w: %d bytes (max %d)", ErrInputTooLarge, len(data), MaxInputSize)
	case v == nil:
		return ErrNilDestination
	}
	return nil
}

// Decode parses data into v. With strict set, keys that do not map to a
// struct field are an error. Parse errors carry the offending line.
func Decode(data []byte, v any, strict bool) error {
	if err := checkInput(data, v); err != nil {
		return err
	}

	var opts []yaml.DecodeOption
	if strict {
		opts = append(opts, yaml.Strict())
	}
	if err := yaml.UnmarshalWithOptions(data, v, opts...); err != nil {
		return fmt.Errorf("yamlutil: %s", yaml.FormatError(err, false, false))
	}
	return nil
}

// Encode serializes v, used by the CLI to print the effective configuration.
func Encode(v any) ([]byte, error) {
	out, err := yaml.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("yamlutil: %w", err)
	}
	return out, nil
}
