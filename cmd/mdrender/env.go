package main

import (
	"io"
	"os"
	"time"
)

// Environment holds injectable dependencies for testability:
// standard streams, the process environment, and the clock.
type Environment struct {
	Now    func() time.Time
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	LookupEnv func(string) (string, bool)
	Environ   func() []string

	// DotEnvFiles are loaded into the process environment before the
	// config is read. Missing files are skipped.
	DotEnvFiles []string
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Now:         time.Now,
		Stdin:       os.Stdin,
		Stdout:      os.Stdout,
		Stderr:      os.Stderr,
		LookupEnv:   os.LookupEnv,
		Environ:     os.Environ,
		DotEnvFiles: []string{".env"},
	}
}
