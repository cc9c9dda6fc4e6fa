// Package version exposes build metadata for the shopassist binaries.
package version

import "fmt"

// Version is set at build time using -ldflags.
var Version = "dev"

// BuildTime is set at build time using -ldflags.
var BuildTime = "unknown"

// String returns the formatted version line for the named binary.
func String(binary string) string {
	if binary == "" {
		binary = "shopassist"
	}
	return fmt.Sprintf("%s version %s (built %s)", binary, Version, BuildTime)
}
