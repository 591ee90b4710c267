// Package version exposes build metadata for the accelbridge binary.
package version

// Version is the accelbridge release version, overridden at build time via
// -ldflags "-X github.com/teranos/accelbridge/internal/version.Version=...".
var Version = "0.1.0-dev"
