// ABOUTME: The test run: opens the configured devices and runs both checks
// ABOUTME: Prints the verdict as colored text or JSON
package cli

import (
	"fmt"

	"github.com/RevolutionPi/eol-test-hdmi/internal/config"
	"github.com/RevolutionPi/eol-test-hdmi/internal/logging"
	"github.com/RevolutionPi/eol-test-hdmi/internal/report"
	"github.com/RevolutionPi/eol-test-hdmi/internal/ui"
	"github.com/RevolutionPi/eol-test-hdmi/internal/version"
	"github.com/RevolutionPi/eol-test-hdmi/pkg/audio"
	"github.com/RevolutionPi/eol-test-hdmi/pkg/audio/output"
	"github.com/RevolutionPi/eol-test-hdmi/pkg/eoltest"
	"github.com/RevolutionPi/eol-test-hdmi/pkg/video"
	"github.com/RevolutionPi/eol-test-hdmi/pkg/video/fbdev"
	"github.com/RevolutionPi/eol-test-hdmi/pkg/video/memfb"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type runOptions struct {
	tui    bool
	json   bool
	dryRun bool
}

func runTest(cmd *cobra.Command, s config.Settings, root *rootOptions, opts *runOptions) (int, error) {
	closer, err := logging.Setup(logging.Options{
		Verbose: root.verbose,
		File:    root.logFile,
		Quiet:   opts.tui,
		Console: cmd.ErrOrStderr(),
	})
	if err != nil {
		return 0, fmt.Errorf("error opening log file: %w", err)
	}
	defer closer.Close()

	log.Infof("Starting %s", version.String())

	cfg := testConfig(s, opts.dryRun)

	var progress *ui.TUI
	if opts.tui {
		progress = ui.Start(version.Product, cmd.ErrOrStderr())
		cfg.OnEvent = progress.Event
	}

	outcome := eoltest.Run(cfg)

	if progress != nil {
		if err := progress.Finish(outcome); err != nil {
			log.Warnf("TUI error: %v", err)
		}
	}

	if opts.json {
		if err := report.JSON(cmd.OutOrStdout(), outcome); err != nil {
			return 0, err
		}
	} else {
		report.Print(cmd.OutOrStdout(), outcome)
	}

	log.WithField("run", outcome.RunID.String()).Infof("Finished with exit status %d", outcome.ExitCode())
	return outcome.ExitCode(), nil
}

// testConfig wires the device openers for hardware or a dry run
func testConfig(s config.Settings, dryRun bool) eoltest.Config {
	cfg := eoltest.DefaultConfig()
	format := audio.DefaultFormat()

	if dryRun {
		cfg.VideoDevice = "memfb"
		cfg.AudioDevice = "null"
		cfg.OpenSurface = func() (video.Surface, error) {
			return memfb.New(memfb.DefaultInfo), nil
		}
		cfg.OpenSink = func() (output.Sink, error) {
			return output.NewNull(format), nil
		}
		return cfg
	}

	cfg.VideoDevice = s.Framebuffer
	cfg.AudioDevice = s.AudioDevice
	cfg.OpenSurface = func() (video.Surface, error) {
		d, err := fbdev.Open(s.Framebuffer, s.TTY)
		if err != nil {
			return nil, err
		}
		return d, nil
	}
	cfg.OpenSink = func() (output.Sink, error) {
		return output.Open(s.AudioBackend, output.Config{
			Format: format,
			Device: s.AudioDevice,
		})
	}
	return cfg
}
