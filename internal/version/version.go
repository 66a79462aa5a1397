// Package version provides build and version information.
package version

// Version is the current application version.
const Version = "0.3.0"

// Milestones:
// 0.3.0 - Kernel browser TUI, manifest watching with reload events
// 0.2.0 - Observer geometry: RA/Dec, light time, sun separation tiers
// 0.1.0 - Initial release: segment kernels, chain resolution, summary and lookup commands
