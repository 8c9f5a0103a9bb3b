// ABOUTME: Kernel structures and ioctl numbers for fbdev and the VT console
// ABOUTME: Layouts mirror linux/fb.h and linux/kd.h on 64-bit and 32-bit targets
package fbdev

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// linux/fb.h
const (
	fbioGetVScreenInfo = 0x4600
	fbioGetFScreenInfo = 0x4602
	fbioPanDisplay     = 0x4606
)

// linux/kd.h
const (
	kdSetMode  = 0x4B3A
	kdGetMode  = 0x4B3B
	kdText     = 0x00
	kdGraphics = 0x01
)

type fbBitfield struct {
	Offset   uint32
	Length   uint32
	MSBRight uint32
}

type fbVarScreenInfo struct {
	XRes         uint32
	YRes         uint32
	XResVirtual  uint32
	YResVirtual  uint32
	XOffset      uint32
	YOffset      uint32
	BitsPerPixel uint32
	Grayscale    uint32
	Red          fbBitfield
	Green        fbBitfield
	Blue         fbBitfield
	Transp       fbBitfield
	NonStd       uint32
	Activate     uint32
	Height       uint32
	Width        uint32
	AccelFlags   uint32
	PixClock     uint32
	LeftMargin   uint32
	RightMargin  uint32
	UpperMargin  uint32
	LowerMargin  uint32
	HSyncLen     uint32
	VSyncLen     uint32
	Sync         uint32
	VMode        uint32
	Rotate       uint32
	Colorspace   uint32
	Reserved     [4]uint32
}

type fbFixScreenInfo struct {
	ID           [16]byte
	SMemStart    uintptr
	SMemLen      uint32
	Type         uint32
	TypeAux      uint32
	Visual       uint32
	XPanStep     uint16
	YPanStep     uint16
	YWrapStep    uint16
	_            uint16
	LineLength   uint32
	MMIOStart    uintptr
	MMIOLen      uint32
	Accel        uint32
	Capabilities uint16
	Reserved     [2]uint16
}

// fb_fix_screeninfo.visual
const (
	fbVisualTrueColor   = 2
	fbVisualDirectColor = 4
)

func ioctlPtr(fd uintptr, req uint, arg unsafe.Pointer) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, fd, uintptr(req), uintptr(arg))
	if errno != 0 {
		return errno
	}
	return nil
}

func getVarScreenInfo(fd uintptr) (*fbVarScreenInfo, error) {
	var v fbVarScreenInfo
	if err := ioctlPtr(fd, fbioGetVScreenInfo, unsafe.Pointer(&v)); err != nil {
		return nil, err
	}
	return &v, nil
}

func getFixScreenInfo(fd uintptr) (*fbFixScreenInfo, error) {
	var f fbFixScreenInfo
	if err := ioctlPtr(fd, fbioGetFScreenInfo, unsafe.Pointer(&f)); err != nil {
		return nil, err
	}
	return &f, nil
}

func panDisplay(fd uintptr, v *fbVarScreenInfo) error {
	return ioctlPtr(fd, fbioPanDisplay, unsafe.Pointer(v))
}

func getKDMode(fd int) (int, error) {
	mode, err := unix.IoctlGetUint32(fd, kdGetMode)
	return int(mode), err
}

func setKDMode(fd int, mode int) error {
	return unix.IoctlSetInt(fd, kdSetMode, mode)
}
