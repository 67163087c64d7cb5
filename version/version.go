// Package version is set at build time with -ldflags.
package version

// Version of the engine.
var Version = "dev"
