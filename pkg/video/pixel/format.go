// ABOUTME: Packed pixel layouts described by framebuffer bitfields
// ABOUTME: Presets for common layouts and construction from device-reported fields
package pixel

import (
	"errors"
	"fmt"
)

// ErrFormatUnsupported is returned for layouts the encoder cannot express
var ErrFormatUnsupported = errors.New("pixel format unsupported")

// Bitfield locates one color channel inside a packed pixel
type Bitfield struct {
	Offset   uint32 // bit position of the least significant bit
	Length   uint32 // 0 means the channel is absent
	MSBRight bool   // bit order reversed; not supported
}

// Format describes a packed little-endian pixel layout
type Format struct {
	Name         string
	BitsPerPixel int
	Red          Bitfield
	Green        Bitfield
	Blue         Bitfield
	Alpha        Bitfield
}

// Layouts as the Linux fbdev drivers report them. Names follow the DRM
// fourcc convention, i.e. they describe the packed little-endian word.
var (
	RGB565 = Format{
		Name: "RGB565", BitsPerPixel: 16,
		Red: Bitfield{Offset: 11, Length: 5}, Green: Bitfield{Offset: 5, Length: 6}, Blue: Bitfield{Offset: 0, Length: 5},
	}
	BGR565 = Format{
		Name: "BGR565", BitsPerPixel: 16,
		Red: Bitfield{Offset: 0, Length: 5}, Green: Bitfield{Offset: 5, Length: 6}, Blue: Bitfield{Offset: 11, Length: 5},
	}
	RGB888 = Format{
		Name: "RGB888", BitsPerPixel: 24,
		Red: Bitfield{Offset: 16, Length: 8}, Green: Bitfield{Offset: 8, Length: 8}, Blue: Bitfield{Offset: 0, Length: 8},
	}
	BGR888 = Format{
		Name: "BGR888", BitsPerPixel: 24,
		Red: Bitfield{Offset: 0, Length: 8}, Green: Bitfield{Offset: 8, Length: 8}, Blue: Bitfield{Offset: 16, Length: 8},
	}
	XRGB8888 = Format{
		Name: "XRGB8888", BitsPerPixel: 32,
		Red: Bitfield{Offset: 16, Length: 8}, Green: Bitfield{Offset: 8, Length: 8}, Blue: Bitfield{Offset: 0, Length: 8},
	}
	ARGB8888 = Format{
		Name: "ARGB8888", BitsPerPixel: 32,
		Red: Bitfield{Offset: 16, Length: 8}, Green: Bitfield{Offset: 8, Length: 8}, Blue: Bitfield{Offset: 0, Length: 8},
		Alpha: Bitfield{Offset: 24, Length: 8},
	}
	XBGR8888 = Format{
		Name: "XBGR8888", BitsPerPixel: 32,
		Red: Bitfield{Offset: 0, Length: 8}, Green: Bitfield{Offset: 8, Length: 8}, Blue: Bitfield{Offset: 16, Length: 8},
	}
	ABGR8888 = Format{
		Name: "ABGR8888", BitsPerPixel: 32,
		Red: Bitfield{Offset: 0, Length: 8}, Green: Bitfield{Offset: 8, Length: 8}, Blue: Bitfield{Offset: 16, Length: 8},
		Alpha: Bitfield{Offset: 24, Length: 8},
	}
)

var presets = []Format{RGB565, BGR565, RGB888, BGR888, XRGB8888, ARGB8888, XBGR8888, ABGR8888}

// FormatFromBitfields builds a layout from the fields a device reports.
// The returned Format is always populated so callers can log it; the error
// says whether Encode will accept it.
func FormatFromBitfields(bpp int, red, green, blue, alpha Bitfield) (Format, error) {
	f := Format{
		Name:         "custom",
		BitsPerPixel: bpp,
		Red:          red,
		Green:        green,
		Blue:         blue,
		Alpha:        alpha,
	}
	for _, p := range presets {
		if p.sameLayout(f) {
			f.Name = p.Name
			break
		}
	}
	return f, f.Validate()
}

func (f Format) sameLayout(o Format) bool {
	return f.BitsPerPixel == o.BitsPerPixel &&
		f.Red == o.Red && f.Green == o.Green && f.Blue == o.Blue &&
		f.Alpha == o.Alpha
}

// BytesPerPixel returns the packed pixel size
func (f Format) BytesPerPixel() int {
	return f.BitsPerPixel / 8
}

// Validate reports whether Encode can express colors in this layout
func (f Format) Validate() error {
	switch f.BitsPerPixel {
	case 8, 16, 24, 32:
	default:
		return fmt.Errorf("%d bits per pixel: %w", f.BitsPerPixel, ErrFormatUnsupported)
	}

	var used uint64
	channels := []struct {
		name     string
		field    Bitfield
		optional bool
	}{
		{"red", f.Red, false},
		{"green", f.Green, false},
		{"blue", f.Blue, false},
		{"alpha", f.Alpha, true},
	}
	for _, ch := range channels {
		bf := ch.field
		if bf.Length == 0 {
			if ch.optional {
				continue
			}
			return fmt.Errorf("%s channel missing (grayscale or palette): %w", ch.name, ErrFormatUnsupported)
		}
		if bf.MSBRight {
			return fmt.Errorf("%s channel is msb-right: %w", ch.name, ErrFormatUnsupported)
		}
		if bf.Length > 16 || int(bf.Offset+bf.Length) > f.BitsPerPixel {
			return fmt.Errorf("%s channel %d@%d does not fit %d bpp: %w",
				ch.name, bf.Length, bf.Offset, f.BitsPerPixel, ErrFormatUnsupported)
		}
		mask := (uint64(1)<<bf.Length - 1) << bf.Offset
		if used&mask != 0 {
			return fmt.Errorf("%s channel overlaps another channel: %w", ch.name, ErrFormatUnsupported)
		}
		used |= mask
	}
	return nil
}

func (f Format) String() string {
	if f.Name != "" && f.Name != "custom" {
		return f.Name
	}
	return fmt.Sprintf("%dbpp r%d@%d g%d@%d b%d@%d a%d@%d", f.BitsPerPixel,
		f.Red.Length, f.Red.Offset, f.Green.Length, f.Green.Offset,
		f.Blue.Length, f.Blue.Offset, f.Alpha.Length, f.Alpha.Offset)
}
