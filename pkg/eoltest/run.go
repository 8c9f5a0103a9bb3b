// ABOUTME: Coordinator that opens both devices and runs both sequencers concurrently
// ABOUTME: Waits for both, never cancels one because the other failed
package eoltest

import (
	"errors"
	"fmt"
	"time"

	"github.com/RevolutionPi/eol-test-hdmi/pkg/audio/output"
	"github.com/RevolutionPi/eol-test-hdmi/pkg/audio/tone"
	"github.com/RevolutionPi/eol-test-hdmi/pkg/video"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"
	"go.uber.org/multierr"
)

var (
	errNoOpener = errors.New("no device opener configured")
	errNoDevice = errors.New("opener returned no device")
)

// Run opens the surface and then the sink. If either fails to open nothing is
// played, the other device is closed again and every open failure is reported.
// Otherwise both sequencers run to completion and the outcome carries each
// peripheral's verdict.
func Run(cfg Config) *Outcome {
	out := &Outcome{
		RunID:   uuid.New(),
		Started: time.Now(),
		Video: Result{
			Peripheral: Video,
			Device:     cfg.VideoDevice,
			Total:      len(cfg.ColorSteps),
		},
		Audio: Result{
			Peripheral: Audio,
			Device:     cfg.AudioDevice,
			Total:      len(cfg.ToneSteps),
		},
	}
	log := logrus.WithField("run", out.RunID.String())
	defer func() { out.Elapsed = time.Since(out.Started) }()

	surface, verr := openSurface(cfg)
	sink, aerr := openSink(cfg)
	if verr != nil || aerr != nil {
		if verr != nil {
			out.Video.Stage, out.Video.Err = StageOpen, verr
			log.WithField("peripheral", Video).Errorf("Open failed: %v", verr)
		}
		if aerr != nil {
			out.Audio.Stage, out.Audio.Err = StageOpen, aerr
			log.WithField("peripheral", Audio).Errorf("Open failed: %v", aerr)
		}
		closeQuietly(log, surface, sink)
		log.Warn("Test aborted before any output")
		return out
	}

	if out.Audio.Device == "" {
		out.Audio.Device = sink.Name()
	}
	cfg.emit(Event{Kind: EventOpened, Peripheral: Video, Device: out.Video.Device, Total: out.Video.Total})
	cfg.emit(Event{Kind: EventOpened, Peripheral: Audio, Device: out.Audio.Device, Total: out.Audio.Total})

	log.Infof("Running %d colors and %d tones (about %v)",
		len(cfg.ColorSteps), len(cfg.ToneSteps), cfg.Duration().Round(time.Millisecond))

	var wg conc.WaitGroup
	wg.Go(func() { runVideo(cfg, surface, &out.Video, log) })
	wg.Go(func() { runAudio(cfg, sink, &out.Audio, log) })
	wg.Wait()

	if err := surface.Close(); err != nil && out.Video.OK() {
		out.Video.Stage, out.Video.Err = StageClose, err
	}
	if err := sink.Close(); err != nil && out.Audio.OK() {
		out.Audio.Stage, out.Audio.Err = StageClose, err
	}

	return out
}

func openSurface(cfg Config) (video.Surface, error) {
	if cfg.OpenSurface == nil {
		return nil, &OpenError{Peripheral: Video, Device: cfg.VideoDevice, Err: errNoOpener}
	}
	s, err := cfg.OpenSurface()
	if err != nil {
		return nil, &OpenError{Peripheral: Video, Device: cfg.VideoDevice, Err: err}
	}
	if s == nil {
		return nil, &OpenError{Peripheral: Video, Device: cfg.VideoDevice, Err: errNoDevice}
	}
	return s, nil
}

func openSink(cfg Config) (output.Sink, error) {
	if cfg.OpenSink == nil {
		return nil, &OpenError{Peripheral: Audio, Device: cfg.AudioDevice, Err: errNoOpener}
	}
	s, err := cfg.OpenSink()
	if err != nil {
		return nil, &OpenError{Peripheral: Audio, Device: cfg.AudioDevice, Err: err}
	}
	if s == nil {
		return nil, &OpenError{Peripheral: Audio, Device: cfg.AudioDevice, Err: errNoDevice}
	}
	return s, nil
}

func closeQuietly(log *logrus.Entry, surface video.Surface, sink output.Sink) {
	var err error
	if surface != nil {
		err = multierr.Append(err, surface.Close())
	}
	if sink != nil {
		err = multierr.Append(err, sink.Close())
	}
	if err != nil {
		log.Warnf("Closing devices after failed open: %v", err)
	}
}

// guard runs fn and turns a panic into an error
func guard(p Peripheral, fn func() error) error {
	var err error
	var pc panics.Catcher
	pc.Try(func() { err = fn() })
	if r := pc.Recovered(); r != nil {
		return fmt.Errorf("%s sequencer panicked: %w", p, r.AsError())
	}
	return err
}

func runVideo(cfg Config, surface video.Surface, res *Result, log *logrus.Entry) {
	log = log.WithField("peripheral", Video)
	seq := &video.Sequencer{
		Surface: surface,
		OnStep: func(i int, step video.ColorStep) {
			log.WithField("step", i).Infof("Showing %s", step.Color)
			cfg.emit(Event{Kind: EventStep, Peripheral: Video, Step: i, Total: res.Total, Color: step.Color})
		},
	}

	res.Started = true
	start := time.Now()
	err := guard(Video, func() error { return seq.Run(cfg.ColorSteps) })
	res.Elapsed = time.Since(start)
	finish(cfg, res, err, log)
}

func runAudio(cfg Config, sink output.Sink, res *Result, log *logrus.Entry) {
	log = log.WithField("peripheral", Audio)
	seq := &tone.Sequencer{
		Sink:  sink,
		Level: cfg.Level,
		OnStep: func(i int, step tone.Step) {
			log.WithField("step", i).Infof("Playing %s", step)
			cfg.emit(Event{Kind: EventStep, Peripheral: Audio, Step: i, Total: res.Total, Frequency: step.Frequency})
		},
	}

	res.Started = true
	start := time.Now()
	err := guard(Audio, func() error { return seq.Run(cfg.ToneSteps) })
	res.Elapsed = time.Since(start)
	finish(cfg, res, err, log)
}

func finish(cfg Config, res *Result, err error, log *logrus.Entry) {
	res.Completed = completedSteps(res.Total, err)
	if err != nil {
		res.Stage, res.Err = StageRun, err
		log.Errorf("Failed after %d of %d steps: %v", res.Completed, res.Total, err)
	} else {
		log.Infof("Completed %d steps in %v", res.Total, res.Elapsed.Round(time.Millisecond))
	}
	cfg.emit(Event{Kind: EventDone, Peripheral: res.Peripheral, Device: res.Device, Step: res.Completed, Total: res.Total, Err: err})
}

// completedSteps derives progress from the failing step index
func completedSteps(total int, err error) int {
	if err == nil {
		return total
	}
	var videoErr *video.Error
	if errors.As(err, &videoErr) {
		return videoErr.Step
	}
	var toneErr *tone.Error
	if errors.As(err, &toneErr) {
		return toneErr.Step
	}
	return 0
}
