// ABOUTME: Device settings read from the environment and command-line flags
// ABOUTME: Flags override environment variables, which override defaults
package config

import (
	"github.com/RevolutionPi/eol-test-hdmi/pkg/audio/output"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Setting keys
const (
	KeyFramebuffer  = "framebuffer"
	KeyTTY          = "tty"
	KeyAudioDevice  = "audio.device"
	KeyAudioBackend = "audio.backend"
)

// Defaults
const (
	DefaultFramebuffer = "/dev/fb0"
	DefaultTTY         = "/dev/tty1"
)

// Settings are the resolved device paths
type Settings struct {
	Framebuffer  string
	TTY          string // empty leaves the console mode alone
	AudioDevice  string // empty selects the default device
	AudioBackend string
}

// New returns a viper instance with defaults and environment bindings
func New() *viper.Viper {
	v := viper.New()

	v.SetDefault(KeyFramebuffer, DefaultFramebuffer)
	v.SetDefault(KeyTTY, DefaultTTY)
	v.SetDefault(KeyAudioDevice, "")
	v.SetDefault(KeyAudioBackend, output.BackendMalgo)

	// EOL_TTY= must be able to disable console switching
	v.AllowEmptyEnv(true)

	v.BindEnv(KeyFramebuffer, "FRAMEBUFFER")
	v.BindEnv(KeyTTY, "EOL_TTY")
	v.BindEnv(KeyAudioDevice, "AUDIODEV")
	v.BindEnv(KeyAudioBackend, "EOL_AUDIO_BACKEND")

	return v
}

// BindFlags lets the named flags override the environment when set
func BindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	bindings := map[string]string{
		KeyFramebuffer:  "fb",
		KeyTTY:          "tty",
		KeyAudioDevice:  "audio-device",
		KeyAudioBackend: "audio-backend",
	}
	for key, name := range bindings {
		if f := flags.Lookup(name); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return err
			}
		}
	}
	return nil
}

// Load resolves the current settings
func Load(v *viper.Viper) Settings {
	return Settings{
		Framebuffer:  v.GetString(KeyFramebuffer),
		TTY:          v.GetString(KeyTTY),
		AudioDevice:  v.GetString(KeyAudioDevice),
		AudioBackend: v.GetString(KeyAudioBackend),
	}
}
