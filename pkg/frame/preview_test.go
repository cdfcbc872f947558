package frame

import (
	"bytes"
	"testing"
)

func TestFrame_ToImage(t *testing.T) {
	f, _ := FromBuffer([]uint16{0, 65535, 1000, 2000}, 2, 2)

	img := f.ToImage()
	b := img.Bounds()
	if b.Dx() != 2 || b.Dy() != 2 {
		t.Errorf("Bounds: got %dx%d, want 2x2", b.Dx(), b.Dy())
	}
	if got := img.Gray16At(1, 0).Y; got != 65535 {
		t.Errorf("Gray16At(1,0): got %d, want 65535", got)
	}
}

func TestFrame_Preview_Normalizes(t *testing.T) {
	// Narrow dynamic range typical of a dim scientific frame
	f, _ := FromBuffer([]uint16{100, 100, 100, 300}, 2, 2)

	img := f.Preview(0)
	b := img.Bounds()
	if b.Dx() != 2 || b.Dy() != 2 {
		t.Fatalf("Bounds: got %dx%d, want 2x2", b.Dx(), b.Dy())
	}

	// Min maps to black, max maps to full white
	dark := img.NRGBAAt(0, 0)
	bright := img.NRGBAAt(1, 1)
	if dark.R != 0 {
		t.Errorf("Dark pixel: got %d, want 0", dark.R)
	}
	if bright.R != 255 {
		t.Errorf("Bright pixel: got %d, want 255", bright.R)
	}
}

func TestFrame_Preview_Downscales(t *testing.T) {
	f := New(64, 32)
	img := f.Preview(16)

	b := img.Bounds()
	if b.Dx() != 16 {
		t.Errorf("Width: got %d, want 16", b.Dx())
	}
	if b.Dy() != 8 {
		t.Errorf("Height: got %d, want 8 (aspect preserved)", b.Dy())
	}
}

func TestFrame_Preview_FlatFrame(t *testing.T) {
	// Flat frame must not divide by zero
	f, _ := FromBuffer([]uint16{500, 500, 500, 500}, 2, 2)
	img := f.Preview(0)
	if img == nil {
		t.Fatal("Preview returned nil for flat frame")
	}
}

func TestFrame_EncodePNG(t *testing.T) {
	f := New(8, 8)
	for i := range f.Pix {
		f.Pix[i] = uint16(i * 100)
	}

	data, err := f.EncodePNG(0)
	if err != nil {
		t.Fatalf("EncodePNG: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("\x89PNG")) {
		t.Error("Expected PNG signature in encoded output")
	}
}
