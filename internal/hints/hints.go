// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"net"
	"os"
	"strings"
)

// IsInContainer detects if running inside a Docker container or similar.
// Checks for /.dockerenv, which Docker creates automatically.
var IsInContainer = func() bool {
	info, err := os.Stat("/.dockerenv")
	return err == nil && !info.IsDir()
}

// ForConfigNotFound returns a hint for config file not found errors.
func ForConfigNotFound(envVar string) string {
	return format("use --config /path/to/file.yaml or set " + envVar)
}

// ForUnknownExtension lists the extension names that are accepted.
func ForUnknownExtension(known []string) string {
	if len(known) == 0 {
		return ""
	}
	return format("available: " + strings.Join(known, ", "))
}

// ForUnsafePolicy explains what an allow-list may never contain.
func ForUnsafePolicy() string {
	return format("script elements, on* and style attributes, and javascript: URLs cannot be allowed")
}

// ForAddrInUse returns a hint when the listen address is taken.
func ForAddrInUse(envVar string) string {
	return format("another process is listening there; use --addr or set " + envVar)
}

// ForContainerBind warns when a server inside a container binds only to
// loopback, where the published port cannot reach it. Returns "" otherwise.
func ForContainerBind(addr string) string {
	if !IsInContainer() {
		return ""
	}
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return ""
	}
	if host == "localhost" || (net.ParseIP(host) != nil && net.ParseIP(host).IsLoopback()) {
		return format("listening on " + host + " inside a container; use --addr :PORT to accept outside connections")
	}
	return ""
}

// ForAssetPath describes the expected layout of a custom asset directory.
func ForAssetPath() string {
	return format("the directory may contain templates/, styles/, and samples/ subdirectories")
}

// ForOutputDirectory returns hints for output directory creation errors.
func ForOutputDirectory() string {
	return format("check parent directory exists and is writable")
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}
