// Package constants provides shared constants used across the codebase.
package constants

// Web server constants
const (
	// DefaultWebPort is the port the annotation server listens on
	DefaultWebPort = 8080

	// DefaultWebHost is the host the annotation server binds to
	DefaultWebHost = "127.0.0.1"

	// MaxRequestBody is the maximum accepted JSON request body in bytes
	MaxRequestBody = 64 << 10
)
