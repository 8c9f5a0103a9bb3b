// ABOUTME: Conversion of abstract colors into device byte layouts
// ABOUTME: Pure functions so frames can be checked without hardware
package pixel

import (
	"encoding/binary"
	"fmt"
)

// Geometry is the size of a frame in pixels and its row pitch in bytes
type Geometry struct {
	Width  int
	Height int
	Stride int // bytes per row including padding
}

// FrameSize returns the number of bytes one full frame occupies
func (g Geometry) FrameSize() int {
	return g.Stride * g.Height
}

// scale maps an 8-bit channel value onto a channel of the given bit length
func scale(v uint8, length uint32) uint32 {
	maxVal := uint32(1)<<length - 1
	return (uint32(v)*maxVal + 127) / 255
}

// Encode returns the bytes of one pixel of color c in layout f.
// Alpha, when present, is fully opaque.
func Encode(f Format, c Color) ([]byte, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	value := scale(c.R, f.Red.Length)<<f.Red.Offset |
		scale(c.G, f.Green.Length)<<f.Green.Offset |
		scale(c.B, f.Blue.Length)<<f.Blue.Offset
	if f.Alpha.Length > 0 {
		value |= scale(0xff, f.Alpha.Length) << f.Alpha.Offset
	}

	var word [4]byte
	binary.LittleEndian.PutUint32(word[:], value)
	out := make([]byte, f.BytesPerPixel())
	copy(out, word[:])
	return out, nil
}

// Fill paints every visible pixel of frame with c and zeroes the row padding
func Fill(frame []byte, g Geometry, f Format, c Color) error {
	px, err := Encode(f, c)
	if err != nil {
		return err
	}

	rowBytes := g.Width * len(px)
	if g.Width <= 0 || g.Height <= 0 || g.Stride < rowBytes {
		return fmt.Errorf("invalid geometry %dx%d stride %d for %s", g.Width, g.Height, g.Stride, f)
	}
	if len(frame) < g.FrameSize() {
		return fmt.Errorf("frame of %d bytes too small for %dx%d stride %d", len(frame), g.Width, g.Height, g.Stride)
	}

	// Build the first row, then replicate it
	row := frame[:g.Stride]
	n := copy(row, px)
	for n < rowBytes {
		n += copy(row[n:rowBytes], row[:n])
	}
	clear(row[rowBytes:])

	for y := 1; y < g.Height; y++ {
		copy(frame[y*g.Stride:(y+1)*g.Stride], row)
	}
	return nil
}

// NewFrame allocates a frame and fills it with c
func NewFrame(g Geometry, f Format, c Color) ([]byte, error) {
	if g.FrameSize() <= 0 {
		return nil, fmt.Errorf("invalid geometry %dx%d stride %d", g.Width, g.Height, g.Stride)
	}
	frame := make([]byte, g.FrameSize())
	if err := Fill(frame, g, f, c); err != nil {
		return nil, err
	}
	return frame, nil
}
