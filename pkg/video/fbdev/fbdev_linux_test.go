// ABOUTME: Tests for the framebuffer surface that run without a display
// ABOUTME: Checks kernel struct layouts and open failures
package fbdev

import (
	"testing"
	"unsafe"

	"github.com/RevolutionPi/eol-test-hdmi/pkg/video/pixel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStructLayout(t *testing.T) {
	assert.Equal(t, uintptr(160), unsafe.Sizeof(fbVarScreenInfo{}))
	assert.Equal(t, uintptr(80), unsafe.Offsetof(fbVarScreenInfo{}.NonStd))

	if unsafe.Sizeof(uintptr(0)) == 8 {
		assert.Equal(t, uintptr(80), unsafe.Sizeof(fbFixScreenInfo{}))
		assert.Equal(t, uintptr(48), unsafe.Offsetof(fbFixScreenInfo{}.LineLength))
	}
	assert.Equal(t, uintptr(40), unsafe.Offsetof(fbFixScreenInfo{}.XPanStep))
}

func TestBitfield(t *testing.T) {
	assert.Equal(t, pixel.Bitfield{Offset: 11, Length: 5}, bitfield(fbBitfield{Offset: 11, Length: 5}))
	assert.True(t, bitfield(fbBitfield{MSBRight: 1}).MSBRight)
}

func TestOpenMissingDevice(t *testing.T) {
	_, err := Open("/nonexistent/fb9", "")
	assert.ErrorContains(t, err, "open framebuffer")
}

func TestProbeNotAFramebuffer(t *testing.T) {
	_, err := Probe("/dev/null")
	require.Error(t, err)
	assert.ErrorContains(t, err, "FBIOGET_VSCREENINFO")
}

func TestClosedDevice(t *testing.T) {
	d := &Device{}
	assert.Error(t, d.WriteFrame(nil))
	assert.Error(t, d.Commit())
	assert.NoError(t, d.Close())
}
