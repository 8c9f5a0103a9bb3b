// ABOUTME: Linux framebuffer surface backed by /dev/fbN
// ABOUTME: Switches the console to graphics mode while frames are shown
package fbdev

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/RevolutionPi/eol-test-hdmi/pkg/video"
	"github.com/RevolutionPi/eol-test-hdmi/pkg/video/pixel"
	log "github.com/sirupsen/logrus"
)

// Device is an opened framebuffer
type Device struct {
	file   *os.File
	path   string
	info   video.Info
	vinfo  *fbVarScreenInfo
	canPan bool

	tty         *os.File
	ttyPrevMode int
}

// Open opens the framebuffer at path and reads its geometry. When tty is not
// empty that console is switched to graphics mode until Close.
func Open(path, tty string) (*Device, error) {
	file, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("open framebuffer: %w", err)
	}

	d := &Device{file: file, path: path}
	if err := d.probe(); err != nil {
		file.Close()
		return nil, err
	}

	if tty != "" {
		if err := d.enterGraphics(tty); err != nil {
			file.Close()
			return nil, err
		}
	}

	log.Printf("w: %d; h: %d; line_length: %d; bpp: %d",
		d.info.Width, d.info.Height, d.info.Stride, d.vinfo.BitsPerPixel/8)
	log.Printf("Framebuffer %s (%s) opened: %s", path, d.info.Name, d.info)

	return d, nil
}

// Probe reads the geometry of the framebuffer at path without touching the console
func Probe(path string) (video.Info, error) {
	file, err := os.OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		return video.Info{}, fmt.Errorf("open framebuffer: %w", err)
	}
	defer file.Close()

	d := &Device{file: file, path: path}
	if err := d.probe(); err != nil {
		return d.info, err
	}
	return d.info, nil
}

func (d *Device) probe() error {
	fd := d.file.Fd()

	vinfo, err := getVarScreenInfo(fd)
	if err != nil {
		return fmt.Errorf("FBIOGET_VSCREENINFO on %s: %w", d.path, err)
	}
	finfo, err := getFixScreenInfo(fd)
	if err != nil {
		return fmt.Errorf("FBIOGET_FSCREENINFO on %s: %w", d.path, err)
	}

	format, ferr := pixel.FormatFromBitfields(int(vinfo.BitsPerPixel),
		bitfield(vinfo.Red), bitfield(vinfo.Green), bitfield(vinfo.Blue), bitfield(vinfo.Transp))
	if vinfo.Grayscale != 0 || (finfo.Visual != fbVisualTrueColor && finfo.Visual != fbVisualDirectColor) {
		ferr = fmt.Errorf("grayscale or palette visual %d: %w", finfo.Visual, pixel.ErrFormatUnsupported)
		format = pixel.Format{Name: "unsupported", BitsPerPixel: int(vinfo.BitsPerPixel)}
	}
	if ferr != nil {
		// Surfaces as a sequencer error when the first color is drawn
		log.Warnf("Framebuffer %s pixel layout %s: %v", d.path, format, ferr)
	}

	d.vinfo = vinfo
	d.canPan = finfo.XPanStep != 0 || finfo.YPanStep != 0
	d.info = video.Info{
		Geometry: pixel.Geometry{
			Width:  int(vinfo.XRes),
			Height: int(vinfo.YRes),
			Stride: int(finfo.LineLength),
		},
		Format:  format,
		YOffset: int(vinfo.YOffset),
		Name:    string(bytes.TrimRight(finfo.ID[:], "\x00")),
	}

	frameEnd := int64(d.info.YOffset+d.info.Height) * int64(d.info.Stride)
	if finfo.SMemLen != 0 && frameEnd > int64(finfo.SMemLen) {
		return fmt.Errorf("visible area ends at %d but %s has %d bytes", frameEnd, d.path, finfo.SMemLen)
	}
	return nil
}

func bitfield(b fbBitfield) pixel.Bitfield {
	return pixel.Bitfield{Offset: b.Offset, Length: b.Length, MSBRight: b.MSBRight != 0}
}

func (d *Device) enterGraphics(tty string) error {
	f, err := os.OpenFile(tty, os.O_RDWR, 0)
	if err != nil {
		return fmt.Errorf("unable to disable text mode on %s: %w", tty, err)
	}

	prev, err := getKDMode(int(f.Fd()))
	if err != nil {
		log.Debugf("KDGETMODE on %s failed, assuming text mode: %v", tty, err)
		prev = kdText
	}
	if err := setKDMode(int(f.Fd()), kdGraphics); err != nil {
		f.Close()
		return fmt.Errorf("unable to disable text mode on %s: %w", tty, err)
	}

	d.tty = f
	d.ttyPrevMode = prev
	log.Debugf("Console %s switched to graphics mode", tty)
	return nil
}

func (d *Device) Info() video.Info { return d.info }

// WriteFrame writes a full frame at the visible offset
func (d *Device) WriteFrame(frame []byte) error {
	if d.file == nil {
		return os.ErrClosed
	}
	if len(frame) != d.info.FrameSize() {
		return fmt.Errorf("frame is %d bytes, %s needs %d", len(frame), d.path, d.info.FrameSize())
	}
	off := int64(d.info.YOffset) * int64(d.info.Stride)
	if _, err := d.file.WriteAt(frame, off); err != nil {
		return err
	}
	return nil
}

// Commit pans to the visible offset on drivers that support it
func (d *Device) Commit() error {
	if d.file == nil {
		return os.ErrClosed
	}
	if !d.canPan {
		return nil
	}
	return panDisplay(d.file.Fd(), d.vinfo)
}

// Close restores the console mode and closes the framebuffer
func (d *Device) Close() error {
	var errs []error
	if d.tty != nil {
		if err := setKDMode(int(d.tty.Fd()), d.ttyPrevMode); err != nil {
			errs = append(errs, fmt.Errorf("unable to enable text mode: %w", err))
		}
		errs = append(errs, d.tty.Close())
		d.tty = nil
	}
	if d.file != nil {
		errs = append(errs, d.file.Close())
		d.file = nil
	}
	return errors.Join(errs...)
}
