// ABOUTME: Operator-facing verdict printing
// ABOUTME: Colored PASS/FAIL lines for humans, JSON for test harnesses
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/RevolutionPi/eol-test-hdmi/pkg/eoltest"
	"github.com/fatih/color"
)

var (
	passColor = color.New(color.FgGreen, color.Bold)
	failColor = color.New(color.FgRed, color.Bold)
	faint     = color.New(color.Faint)
)

// Print writes the human-readable verdict
func Print(w io.Writer, o *eoltest.Outcome) {
	for _, r := range []eoltest.Result{o.Video, o.Audio} {
		printResult(w, r)
	}

	if o.OK() {
		passColor.Fprint(w, "PASS")
		fmt.Fprintf(w, " HDMI video and audio output work (%v)\n", o.Elapsed.Round(100*time.Millisecond))
		return
	}

	failColor.Fprint(w, "FAIL")
	switch o.ExitCode() {
	case eoltest.ExitVideoFailed:
		fmt.Fprintln(w, " video output failed")
	case eoltest.ExitAudioFailed:
		fmt.Fprintln(w, " audio output failed")
	default:
		fmt.Fprintln(w, " video and audio output failed")
	}
	faint.Fprintf(w, "run %s\n", o.RunID)
}

func printResult(w io.Writer, r eoltest.Result) {
	device := r.Device
	if device == "" {
		device = "default device"
	}

	if r.OK() {
		passColor.Fprintf(w, "  ok   ")
		fmt.Fprintf(w, "%-5s %s: %d/%d steps\n", r.Peripheral, device, r.Completed, r.Total)
		return
	}

	failColor.Fprintf(w, "  fail ")
	fmt.Fprintf(w, "%-5s %s: %s failed after %d/%d steps\n", r.Peripheral, device, r.Stage, r.Completed, r.Total)
	faint.Fprintf(w, "         %v\n", r.Err)
}

// JSON writes the outcome as one indented JSON document
func JSON(w io.Writer, o *eoltest.Outcome) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(o)
}
