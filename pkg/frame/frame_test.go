package frame

import (
	"math"
	"testing"
)

const floatTolerance = 1e-9

func floatEquals(a, b float64) bool {
	return math.Abs(a-b) < floatTolerance
}

func TestNew(t *testing.T) {
	f := New(4, 3)

	if f.Width != 4 || f.Height != 3 {
		t.Errorf("Size: got %dx%d, want 4x3", f.Width, f.Height)
	}
	if len(f.Pix) != 12 {
		t.Errorf("Pix length: got %d, want 12", len(f.Pix))
	}
	for i, p := range f.Pix {
		if p != 0 {
			t.Errorf("Pix[%d]: got %d, want 0", i, p)
		}
	}
}

func TestFromBuffer_Copies(t *testing.T) {
	src := []uint16{1, 2, 3, 4, 5, 6}
	f, err := FromBuffer(src, 3, 2)
	if err != nil {
		t.Fatalf("FromBuffer: %v", err)
	}

	// Mutating the source must not affect the frame
	src[0] = 999
	if f.Pix[0] != 1 {
		t.Errorf("Pix[0] after source mutation: got %d, want 1", f.Pix[0])
	}
}

func TestFromBuffer_LengthMismatch(t *testing.T) {
	_, err := FromBuffer([]uint16{1, 2, 3}, 2, 2)
	if err == nil {
		t.Error("Expected error for mismatched buffer length, got nil")
	}
}

func TestFrame_At(t *testing.T) {
	f, err := FromBuffer([]uint16{
		10, 11, 12,
		20, 21, 22,
	}, 3, 2)
	if err != nil {
		t.Fatalf("FromBuffer: %v", err)
	}

	if got := f.At(0, 0); got != 10 {
		t.Errorf("At(0,0): got %d, want 10", got)
	}
	if got := f.At(2, 0); got != 12 {
		t.Errorf("At(2,0): got %d, want 12", got)
	}
	if got := f.At(1, 1); got != 21 {
		t.Errorf("At(1,1): got %d, want 21", got)
	}
}

func TestFrame_Clone(t *testing.T) {
	f, _ := FromBuffer([]uint16{1, 2, 3, 4}, 2, 2)
	f.Number = 42

	c := f.Clone()
	c.Pix[0] = 100

	if f.Pix[0] != 1 {
		t.Errorf("Original Pix[0] after clone mutation: got %d, want 1", f.Pix[0])
	}
	if c.Number != 42 {
		t.Errorf("Clone Number: got %d, want 42", c.Number)
	}
}

func TestFrame_Stats(t *testing.T) {
	f, _ := FromBuffer([]uint16{100, 200, 300, 400}, 2, 2)

	st := f.Stats()
	if st.Min != 100 {
		t.Errorf("Min: got %d, want 100", st.Min)
	}
	if st.Max != 400 {
		t.Errorf("Max: got %d, want 400", st.Max)
	}
	if !floatEquals(st.Mean, 250) {
		t.Errorf("Mean: got %v, want 250", st.Mean)
	}
}

func TestFrame_Stats_Empty(t *testing.T) {
	f := &Frame{}
	st := f.Stats()
	if st.Min != 0 || st.Max != 0 || st.Mean != 0 {
		t.Errorf("Empty frame stats: got %+v, want zeros", st)
	}
}

func TestFrame_Stats_Flat(t *testing.T) {
	f, _ := FromBuffer([]uint16{7, 7, 7, 7}, 2, 2)
	st := f.Stats()
	if st.Min != 7 || st.Max != 7 {
		t.Errorf("Flat frame min/max: got %d/%d, want 7/7", st.Min, st.Max)
	}
	if !floatEquals(st.Mean, 7) {
		t.Errorf("Flat frame mean: got %v, want 7", st.Mean)
	}
}

func TestFrame_Saturated(t *testing.T) {
	f, _ := FromBuffer([]uint16{0, 100, 4095, 12}, 2, 2)

	if !f.Saturated(12) {
		t.Error("Expected saturation at 12-bit ceiling (4095)")
	}
	if f.Saturated(16) {
		t.Error("Did not expect saturation at 16-bit ceiling")
	}
}
