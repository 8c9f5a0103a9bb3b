// ABOUTME: Aggregated result of a test run and its exit code
// ABOUTME: Each peripheral reports stage, completed steps and cause separately
package eoltest

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
)

// Peripheral names one of the two checked outputs
type Peripheral string

const (
	Video Peripheral = "video"
	Audio Peripheral = "audio"
)

// Stage tells where a peripheral failed
type Stage string

const (
	StageOpen  Stage = "open"
	StageRun   Stage = "run"
	StageClose Stage = "close"
)

// Exit codes
const (
	ExitOK          = 0
	ExitVideoFailed = 1
	ExitAudioFailed = 2
	ExitBothFailed  = ExitVideoFailed | ExitAudioFailed
)

// OpenError reports a device that could not be opened
type OpenError struct {
	Peripheral Peripheral
	Device     string
	Err        error
}

func (e *OpenError) Error() string {
	if e.Device == "" {
		return fmt.Sprintf("open %s: %v", e.Peripheral, e.Err)
	}
	return fmt.Sprintf("open %s %s: %v", e.Peripheral, e.Device, e.Err)
}

func (e *OpenError) Unwrap() error {
	return e.Err
}

// Result is the verdict for one peripheral
type Result struct {
	Peripheral Peripheral
	Device     string

	// Started reports whether the sequencer ran at all
	Started bool

	// Completed counts steps that finished; Total is the list length
	Completed int
	Total     int

	Elapsed time.Duration

	// Stage and Err are set on failure
	Stage Stage
	Err   error
}

// OK reports whether the peripheral passed
func (r Result) OK() bool {
	return r.Err == nil
}

// Outcome aggregates both peripherals
type Outcome struct {
	RunID   uuid.UUID
	Started time.Time
	Elapsed time.Duration

	Video Result
	Audio Result
}

// OK reports whether both peripherals passed
func (o *Outcome) OK() bool {
	return o.Video.OK() && o.Audio.OK()
}

// Err joins every failure, video first
func (o *Outcome) Err() error {
	return multierr.Combine(o.Video.Err, o.Audio.Err)
}

// Failed lists the peripherals that failed
func (o *Outcome) Failed() []Peripheral {
	var failed []Peripheral
	if !o.Video.OK() {
		failed = append(failed, Video)
	}
	if !o.Audio.OK() {
		failed = append(failed, Audio)
	}
	return failed
}

// ExitCode maps the outcome to the process status
func (o *Outcome) ExitCode() int {
	code := ExitOK
	if !o.Video.OK() {
		code |= ExitVideoFailed
	}
	if !o.Audio.OK() {
		code |= ExitAudioFailed
	}
	return code
}

type resultJSON struct {
	Device    string `json:"device,omitempty"`
	OK        bool   `json:"ok"`
	Started   bool   `json:"started"`
	Completed int    `json:"completed_steps"`
	Total     int    `json:"total_steps"`
	ElapsedMs int64  `json:"elapsed_ms"`
	Stage     Stage  `json:"stage,omitempty"`
	Error     string `json:"error,omitempty"`
}

func (r Result) MarshalJSON() ([]byte, error) {
	v := resultJSON{
		Device:    r.Device,
		OK:        r.OK(),
		Started:   r.Started,
		Completed: r.Completed,
		Total:     r.Total,
		ElapsedMs: r.Elapsed.Milliseconds(),
		Stage:     r.Stage,
	}
	if r.Err != nil {
		v.Error = r.Err.Error()
	}
	return json.Marshal(v)
}

func (o *Outcome) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		RunID     string    `json:"run_id"`
		Started   time.Time `json:"started"`
		ElapsedMs int64     `json:"elapsed_ms"`
		OK        bool      `json:"ok"`
		ExitCode  int       `json:"exit_code"`
		Video     Result    `json:"video"`
		Audio     Result    `json:"audio"`
	}{
		RunID:     o.RunID.String(),
		Started:   o.Started,
		ElapsedMs: o.Elapsed.Milliseconds(),
		OK:        o.OK(),
		ExitCode:  o.ExitCode(),
		Video:     o.Video,
		Audio:     o.Audio,
	})
}
