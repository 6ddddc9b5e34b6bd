// ABOUTME: Build identity constants
// ABOUTME: Used in protocol hellos and startup logging
package version

const (
	// Version is the keytone release version.
	Version = "0.1.0"

	// Product is the product name reported to remote clients.
	Product = "KeyTone"

	// Manufacturer identifies the project.
	Manufacturer = "KeyTone Project"
)
