// ABOUTME: Cobra command tree for the end-of-line test tool
// ABOUTME: The root command runs the test; probe and version are helpers
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/RevolutionPi/eol-test-hdmi/internal/config"
	"github.com/RevolutionPi/eol-test-hdmi/internal/version"
	"github.com/spf13/cobra"
)

// ExitUsage is returned for bad flags or arguments
const ExitUsage = 64

// exitError carries a process status out of a command
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

type rootOptions struct {
	verbose bool
	logFile string
	version bool
}

// NewRootCommand builds the command tree writing to stdout and stderr
func NewRootCommand(stdout, stderr io.Writer) *cobra.Command {
	v := config.New()
	root := &rootOptions{}
	run := &runOptions{}

	cmd := &cobra.Command{
		Use:   version.Product,
		Short: "HDMI video and audio end-of-line test",
		Long: `Shows red, green and blue full-screen frames on the framebuffer while
playing a three tone siren on the audio device, then reports whether both
outputs worked.

Device selection comes from FRAMEBUFFER, EOL_TTY, AUDIODEV and
EOL_AUDIO_BACKEND unless overridden by flags.

Exit status: 0 pass, 1 video failed, 2 audio failed, 3 both failed.`,
		Example: `  eol-test-hdmi
  FRAMEBUFFER=/dev/fb1 AUDIODEV=hdmi eol-test-hdmi --json
  eol-test-hdmi --dry-run --tui`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return config.BindFlags(v, cmd.Flags())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if root.version {
				fmt.Fprintln(stderr, version.String())
				return nil
			}
			code, err := runTest(cmd, config.Load(v), root, run)
			if err != nil {
				return err
			}
			if code != 0 {
				return &exitError{code: code}
			}
			return nil
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	pflags := cmd.PersistentFlags()
	pflags.BoolVar(&root.verbose, "verbose", false, "Enable debug logging")
	pflags.StringVar(&root.logFile, "log-file", "", "Also write log lines to this file")
	pflags.String("fb", config.DefaultFramebuffer, "Framebuffer device (env FRAMEBUFFER)")
	pflags.String("audio-device", "", "Playback device name substring (env AUDIODEV)")
	pflags.String("audio-backend", "malgo", "Audio backend: malgo, oto, portaudio or null (env EOL_AUDIO_BACKEND)")

	flags := cmd.Flags()
	flags.BoolVarP(&root.version, "version", "v", false, "Print version information and exit")
	flags.String("tty", config.DefaultTTY, "Console switched to graphics mode during the test, empty to skip (env EOL_TTY)")
	flags.BoolVar(&run.tui, "tui", false, "Show live progress in the terminal")
	flags.BoolVar(&run.json, "json", false, "Print the outcome as JSON on stdout")
	flags.BoolVar(&run.dryRun, "dry-run", false, "Run against in-memory devices instead of hardware")

	cmd.RegisterFlagCompletionFunc("audio-backend", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{"malgo", "oto", "portaudio", "null"}, cobra.ShellCompDirectiveNoFileComp
	})

	cmd.AddCommand(newProbeCommand(v, root))
	cmd.AddCommand(newVersionCommand(stdout))

	return cmd
}

// Execute runs the command line and returns the process exit status
func Execute() int {
	return execute(NewRootCommand(os.Stdout, os.Stderr), os.Args[1:], os.Stderr)
}

func execute(cmd *cobra.Command, args []string, stderr io.Writer) int {
	cmd.SetArgs(args)
	err := cmd.Execute()
	if err == nil {
		return 0
	}

	var exit *exitError
	if errors.As(err, &exit) {
		return exit.code
	}
	fmt.Fprintf(stderr, "Error: %v\n", err)
	return ExitUsage
}
