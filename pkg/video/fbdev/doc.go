// ABOUTME: Linux framebuffer package
// ABOUTME: Opens /dev/fbN as a video surface with console mode handling
// Package fbdev implements video.Surface on top of the Linux fbdev interface.
//
// Geometry and the pixel layout are read once with FBIOGET_VSCREENINFO and
// FBIOGET_FSCREENINFO. Frames are written with pwrite at the visible y offset
// and panned into view on drivers that report a pan step.
//
// The text console on the given tty is put into KD_GRAPHICS while the device
// is open so the cursor and kernel messages do not draw over the test colors.
package fbdev
