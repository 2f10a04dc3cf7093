// Package constant defines immutable application-level identifiers and configuration defaults.
package constant

const (
	// Vidctl is the canonical application identifier used for filesystem paths and CLI branding.
	Vidctl = "vidctl"

	// Version is the current application semantic version string.
	Version = "0.1.0"

	// Repository is the GitHub owner/name releases are published under.
	Repository = "vidctl/vidctl"

	// UserAgent is sent to media servers when the caller supplies no User-Agent header of its own.
	UserAgent = Vidctl + "/" + Version
)

// Build metadata, overridden at link time via -ldflags.
var (
	BuiltAt  = "unknown"
	BuiltBy  = "unknown"
	Revision = "unknown"
)
