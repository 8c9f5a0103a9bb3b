// ABOUTME: Tests for the video sequencer against an in-memory surface
// ABOUTME: Covers ordering, pacing, commits and failure wrapping
package video_test

import (
	"errors"
	"testing"
	"time"

	"github.com/RevolutionPi/eol-test-hdmi/pkg/video"
	"github.com/RevolutionPi/eol-test-hdmi/pkg/video/memfb"
	"github.com/RevolutionPi/eol-test-hdmi/pkg/video/pixel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func smallInfo(format pixel.Format) video.Info {
	return video.Info{
		Geometry: pixel.Geometry{Width: 8, Height: 4, Stride: 8*format.BytesPerPixel() + 4},
		Format:   format,
	}
}

func steps(hold time.Duration, colors ...pixel.Color) []video.ColorStep {
	out := make([]video.ColorStep, len(colors))
	for i, c := range colors {
		out[i] = video.ColorStep{Color: c, Hold: hold}
	}
	return out
}

func TestSequencerVisitsColorsInOrder(t *testing.T) {
	surface := memfb.New(smallInfo(pixel.RGB565))
	surface.Keep = true

	var seen []pixel.Color
	s := &video.Sequencer{
		Surface: surface,
		OnStep: func(i int, step video.ColorStep) {
			assert.Equal(t, len(seen), i)
			seen = append(seen, step.Color)
		},
	}
	colors := []pixel.Color{pixel.Red, pixel.Green, pixel.Blue, pixel.Red}
	require.NoError(t, s.Run(steps(time.Millisecond, colors...)))

	assert.Equal(t, colors, seen)
	frames := surface.Frames()
	require.Len(t, frames, 4)
	for i, f := range frames {
		px, err := pixel.Encode(pixel.RGB565, colors[i])
		require.NoError(t, err)
		assert.Equal(t, px, f.Data[:2], "frame %d", i)
		// Row padding stays zero
		assert.Equal(t, []byte{0, 0, 0, 0}, f.Data[16:20], "frame %d", i)
	}
	assert.Equal(t, 4, surface.Commits())
}

func TestSequencerHoldsEachStep(t *testing.T) {
	surface := memfb.New(smallInfo(pixel.XRGB8888))
	surface.Keep = true
	seq := steps(30*time.Millisecond, pixel.Red, pixel.Green, pixel.Blue)

	start := time.Now()
	require.NoError(t, video.Run(surface, seq))
	elapsed := time.Since(start)

	assert.GreaterOrEqual(t, elapsed, 90*time.Millisecond)
	assert.Less(t, elapsed, 500*time.Millisecond)
	assert.Equal(t, 90*time.Millisecond, video.Duration(seq))

	frames := surface.Frames()
	require.Len(t, frames, 3)
	assert.GreaterOrEqual(t, frames[1].At.Sub(frames[0].At), 30*time.Millisecond)
	assert.GreaterOrEqual(t, frames[2].At.Sub(frames[1].At), 30*time.Millisecond)
}

func TestSequencerEmpty(t *testing.T) {
	surface := memfb.New(smallInfo(pixel.RGB565))
	require.NoError(t, video.Run(surface, nil))
	assert.Equal(t, 0, surface.Writes())
}

func TestSequencerWriteFailure(t *testing.T) {
	surface := memfb.New(smallInfo(pixel.RGB888))
	surface.FailAt = 1
	surface.FailErr = errors.New("device busy")

	err := video.Run(surface, steps(time.Millisecond, pixel.Red, pixel.Green, pixel.Blue))
	require.Error(t, err)

	var videoErr *video.Error
	require.True(t, errors.As(err, &videoErr))
	assert.Equal(t, 1, videoErr.Step)
	assert.Equal(t, pixel.Green, videoErr.Color)
	assert.ErrorIs(t, err, video.ErrDeviceWrite)
	assert.ErrorContains(t, err, "device busy")

	// Blue never written
	assert.Equal(t, 2, surface.Writes())
}

func TestSequencerFormatUnsupported(t *testing.T) {
	info := video.Info{
		Geometry: pixel.Geometry{Width: 4, Height: 4, Stride: 4},
		Format:   pixel.Format{Name: "custom", BitsPerPixel: 8, Red: pixel.Bitfield{Length: 8}},
	}
	surface := memfb.New(info)

	err := video.Run(surface, video.DefaultSteps())
	assert.ErrorIs(t, err, video.ErrFormatUnsupported)
	assert.NotErrorIs(t, err, video.ErrDeviceWrite)

	var videoErr *video.Error
	require.True(t, errors.As(err, &videoErr))
	assert.Equal(t, 0, videoErr.Step)
	assert.Equal(t, 0, surface.Writes())
}

func TestDefaultSteps(t *testing.T) {
	seq := video.DefaultSteps()
	require.Len(t, seq, 3)
	assert.Equal(t, []string{"red", "green", "blue"}, []string{seq[0].String(), seq[1].String(), seq[2].String()})
	assert.Equal(t, 3*time.Second, video.Duration(seq))
}

func TestInfoString(t *testing.T) {
	assert.Equal(t, "1920x1080 stride 7680 XRGB8888", memfb.DefaultInfo.String())
}
