package frame

import (
	"bytes"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// ToImage returns the frame as a 16-bit grayscale image sharing no
// memory with the frame.
func (f *Frame) ToImage() *image.Gray16 {
	img := image.NewGray16(image.Rect(0, 0, f.Width, f.Height))
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			img.SetGray16(x, y, color.Gray16{Y: f.At(x, y)})
		}
	}
	return img
}

// Preview renders an 8-bit view of the frame normalized to its own
// dynamic range and scaled to fit within maxDim on the longer side.
// Scientific frames rarely use the full 16-bit range, so a straight
// Gray16 downconversion would look black.
func (f *Frame) Preview(maxDim int) *image.NRGBA {
	st := f.Stats()
	span := int(st.Max) - int(st.Min)
	if span == 0 {
		span = 1
	}

	img := image.NewGray(image.Rect(0, 0, f.Width, f.Height))
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			v := (int(f.At(x, y)) - int(st.Min)) * 255 / span
			img.SetGray(x, y, color.Gray{Y: uint8(v)})
		}
	}

	if maxDim <= 0 || (f.Width <= maxDim && f.Height <= maxDim) {
		return imaging.Clone(img)
	}
	return imaging.Fit(img, maxDim, maxDim, imaging.Lanczos)
}

// EncodePNG encodes a preview of the frame as PNG, ready for
// publishing over telemetry.
func (f *Frame) EncodePNG(maxDim int) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, f.Preview(maxDim), imaging.PNG); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
