// Package frame defines the pixel frame value type produced by captures,
// plus the helpers live viewers typically need: basic statistics and
// preview rendering.
//
// Frames are owned copies. Driver and engine buffers are reused by the
// native layer and must never be retained, so every constructor in this
// package copies pixel data.
package frame

import (
	"fmt"
)

// Frame is a single monochrome frame read out from the sensor.
// Pixels are row-major, 16 bits per pixel regardless of the camera's
// actual bit depth.
type Frame struct {
	Pix    []uint16
	Width  int
	Height int

	// Number is the rolling hardware frame number reported by the
	// acquisition engine. Zero for synchronous captures.
	Number uint32
}

// New returns a zeroed frame of the given dimensions.
func New(width, height int) *Frame {
	return &Frame{
		Pix:    make([]uint16, width*height),
		Width:  width,
		Height: height,
	}
}

// FromBuffer copies pix into a new frame. The source buffer may be
// reused by the caller afterwards.
func FromBuffer(pix []uint16, width, height int) (*Frame, error) {
	if len(pix) != width*height {
		return nil, fmt.Errorf("frame: buffer length %d does not match %dx%d", len(pix), width, height)
	}
	f := New(width, height)
	copy(f.Pix, pix)
	return f, nil
}

// Clone returns a deep copy of the frame.
func (f *Frame) Clone() *Frame {
	c := &Frame{
		Pix:    make([]uint16, len(f.Pix)),
		Width:  f.Width,
		Height: f.Height,
		Number: f.Number,
	}
	copy(c.Pix, f.Pix)
	return c
}

// At returns the pixel value at (x, y). No bounds checking beyond the
// slice's own.
func (f *Frame) At(x, y int) uint16 {
	return f.Pix[y*f.Width+x]
}

// Size returns the frame dimensions.
func (f *Frame) Size() (width, height int) {
	return f.Width, f.Height
}

// String implements fmt.Stringer.
func (f *Frame) String() string {
	return fmt.Sprintf("frame %dx%d #%d", f.Width, f.Height, f.Number)
}
