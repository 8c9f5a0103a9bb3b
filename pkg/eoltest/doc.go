// ABOUTME: End-of-line test coordinator package
// ABOUTME: Runs the video and audio checks in parallel and aggregates the verdict
// Package eoltest runs the HDMI color check and the audio tone check side by
// side and reports one outcome.
//
// Both devices are opened first, video then audio. If either cannot be opened
// the test stops before showing or playing anything. Otherwise each sequencer
// runs in its own goroutine and the coordinator only joins them; a failure in
// one never cuts the other short.
//
// Example:
//
//	cfg := eoltest.DefaultConfig()
//	cfg.OpenSurface = func() (video.Surface, error) { return fbdev.Open("/dev/fb0", "/dev/tty1") }
//	cfg.OpenSink = func() (output.Sink, error) {
//	    return output.Open(output.BackendMalgo, output.Config{Format: audio.DefaultFormat()})
//	}
//	outcome := eoltest.Run(cfg)
//	os.Exit(outcome.ExitCode())
package eoltest
