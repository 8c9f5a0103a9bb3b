// ABOUTME: version subcommand
// ABOUTME: Prints product name and version
package cli

import (
	"fmt"
	"io"

	"github.com/RevolutionPi/eol-test-hdmi/internal/version"
	"github.com/spf13/cobra"
)

func newVersionCommand(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(stdout, version.String())
		},
	}
}
