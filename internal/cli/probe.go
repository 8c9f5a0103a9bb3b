// ABOUTME: probe command printing framebuffer geometry and audio devices
// ABOUTME: Opens nothing exclusively and leaves the console mode alone
package cli

import (
	"fmt"

	"github.com/RevolutionPi/eol-test-hdmi/internal/config"
	"github.com/RevolutionPi/eol-test-hdmi/internal/logging"
	"github.com/RevolutionPi/eol-test-hdmi/pkg/audio/output"
	"github.com/RevolutionPi/eol-test-hdmi/pkg/video/fbdev"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/multierr"
)

func newProbeCommand(v *viper.Viper, root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "probe",
		Short: "Show the framebuffer format and the playback devices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			closer, err := logging.Setup(logging.Options{
				Verbose: root.verbose,
				File:    root.logFile,
				Console: cmd.ErrOrStderr(),
			})
			if err != nil {
				return fmt.Errorf("error opening log file: %w", err)
			}
			defer closer.Close()

			return probe(cmd, config.Load(v))
		},
	}
}

func probe(cmd *cobra.Command, s config.Settings) error {
	out := cmd.OutOrStdout()
	var errs error

	fmt.Fprintf(out, "Framebuffer %s\n", s.Framebuffer)
	info, err := fbdev.Probe(s.Framebuffer)
	if err != nil {
		fmt.Fprintf(out, "  error: %v\n", err)
		errs = multierr.Append(errs, fmt.Errorf("framebuffer: %w", err))
	} else {
		fmt.Fprintf(out, "  id:     %s\n", info.Name)
		fmt.Fprintf(out, "  size:   %dx%d\n", info.Width, info.Height)
		fmt.Fprintf(out, "  stride: %d bytes\n", info.Stride)
		fmt.Fprintf(out, "  format: %s", info.Format)
		if ferr := info.Format.Validate(); ferr != nil {
			fmt.Fprintf(out, " (%v)", ferr)
		}
		fmt.Fprintln(out)
	}

	fmt.Fprintf(out, "Audio backend %s\n", s.AudioBackend)
	names, err := output.Devices(s.AudioBackend)
	if err != nil {
		fmt.Fprintf(out, "  error: %v\n", err)
		errs = multierr.Append(errs, fmt.Errorf("audio: %w", err))
	}
	for _, name := range names {
		fmt.Fprintf(out, "  %s\n", name)
	}

	return errs
}
