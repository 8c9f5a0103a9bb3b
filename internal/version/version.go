// ABOUTME: Version information for the end-of-line test tool
// ABOUTME: Version is overridden at link time by release builds
package version

// Version is set with -ldflags "-X github.com/RevolutionPi/eol-test-hdmi/internal/version.Version=..."
var Version = "0.2.0"

const (
	// Product is the binary name printed by --version
	Product = "eol-test-hdmi"

	// Manufacturer of the devices under test
	Manufacturer = "KUNBUS GmbH"
)

// String returns "name: version" as printed by --version
func String() string {
	return Product + ": " + Version
}
