// ABOUTME: Entry point for the HDMI and audio end-of-line test
// ABOUTME: Runs the command line and exits with the test verdict
package main

import (
	"os"

	"github.com/RevolutionPi/eol-test-hdmi/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
