// ABOUTME: Video path check package
// ABOUTME: Drives a display through a fixed sequence of full-screen colors
// Package video drives a display through a fixed sequence of full-screen colors.
//
// A Surface is opened once (see the fbdev and memfb packages) and handed to
// Run together with the ordered steps. Colors are encoded in the surface's
// native layout by the pixel package, so the sequencer never deals with
// byte orders itself.
package video
