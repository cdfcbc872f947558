package camera

import (
	"errors"
	"strings"
	"testing"
)

func TestCamera_GeometryScenario(t *testing.T) {
	cam, _ := newTestCamera(t)

	w, h := cam.Shape()
	if w != 2048 || h != 2048 {
		t.Fatalf("initial shape: got %dx%d, want 2048x2048", w, h)
	}

	if err := cam.SetBinning(2, 2); err != nil {
		t.Fatalf("SetBinning(2,2): %v", err)
	}
	w, h = cam.Shape()
	if w != 1024 || h != 1024 {
		t.Errorf("shape after 2x2: got %dx%d, want 1024x1024", w, h)
	}

	if err := cam.SetROI(0, 1024, 0, 1024); err != nil {
		t.Fatalf("SetROI: %v", err)
	}
	w, h = cam.Shape()
	if w != 512 || h != 512 {
		t.Errorf("shape after roi: got %dx%d, want 512x512", w, h)
	}
}

func TestCamera_SetROI_OutOfBounds(t *testing.T) {
	cam, _ := newTestCamera(t)

	cases := []struct {
		name           string
		x0, x1, y0, y1 int
	}{
		{"x past sensor", 0, 4096, 0, 2048},
		{"y past sensor", 0, 2048, 0, 4096},
		{"negative start", -1, 2048, 0, 2048},
		{"empty x", 100, 100, 0, 2048},
		{"inverted y", 0, 2048, 500, 400},
	}
	for _, tc := range cases {
		err := cam.SetROI(tc.x0, tc.x1, tc.y0, tc.y1)
		if !IsInvalidValue(err) {
			t.Errorf("%s: got %v, want invalid value", tc.name, err)
		}
	}

	// Rejections leave both the roi and the derived shape untouched
	roi := cam.ROI()
	if roi.XEnd != 2048 || roi.YEnd != 2048 {
		t.Errorf("roi after rejections: got %+v", roi)
	}
	w, h := cam.Shape()
	if w != 2048 || h != 2048 {
		t.Errorf("shape after rejections: got %dx%d", w, h)
	}
}

func TestCamera_SetBinning_Illegal(t *testing.T) {
	cam, _ := newTestCamera(t)

	err := cam.SetBinning(3, 3)
	if !IsInvalidValue(err) {
		t.Fatalf("SetBinning(3,3): got %v, want invalid value", err)
	}
	var ive *InvalidValueError
	if !errors.As(err, &ive) {
		t.Fatalf("error type: got %T", err)
	}
	if !strings.Contains(ive.Legal, "2x2") {
		t.Errorf("legal set missing 2x2 entry: %q", ive.Legal)
	}

	if bin := cam.Binning(); bin.X != 1 || bin.Y != 1 {
		t.Errorf("binning after rejection: got %+v, want 1x1", bin)
	}
}

func TestCamera_SetBinning_ValidatesBothAxesFirst(t *testing.T) {
	cam, _ := newTestCamera(t)

	// The serial value is legal, the parallel one is not; nothing
	// may be applied
	if err := cam.SetBinning(2, 3); !IsInvalidValue(err) {
		t.Fatalf("SetBinning(2,3): got %v, want invalid value", err)
	}
	if bin := cam.Binning(); bin.X != 1 || bin.Y != 1 {
		t.Errorf("binning after partial rejection: got %+v, want 1x1", bin)
	}
	if w, h := cam.Shape(); w != 2048 || h != 2048 {
		t.Errorf("shape after partial rejection: got %dx%d", w, h)
	}
}

func TestCamera_SetBinningPerAxis(t *testing.T) {
	cam, _ := newTestCamera(t)

	if err := cam.SetBinningX(4); err != nil {
		t.Fatalf("SetBinningX: %v", err)
	}
	if err := cam.SetBinningY(2); err != nil {
		t.Fatalf("SetBinningY: %v", err)
	}
	if bin := cam.Binning(); bin.X != 4 || bin.Y != 2 {
		t.Errorf("binning: got %+v, want 4x2", bin)
	}
	if w, h := cam.Shape(); w != 512 || h != 1024 {
		t.Errorf("shape: got %dx%d, want 512x1024", w, h)
	}
}

func TestCamera_SetSymmetricBinning(t *testing.T) {
	cam, _ := newTestCamera(t)

	if err := cam.SetSymmetricBinning(4); err != nil {
		t.Fatalf("SetSymmetricBinning: %v", err)
	}
	if bin := cam.Binning(); bin.X != 4 || bin.Y != 4 {
		t.Errorf("binning: got %+v, want 4x4", bin)
	}

	if err := cam.SetSymmetricBinning(8); !IsInvalidValue(err) {
		t.Errorf("SetSymmetricBinning(8): got %v, want invalid value", err)
	}
	if bin := cam.Binning(); bin.X != 4 || bin.Y != 4 {
		t.Errorf("binning after rejection: got %+v, want 4x4", bin)
	}
}

func TestCamera_ShapeFloorsOddWindows(t *testing.T) {
	cam, _ := newTestCamera(t)

	if err := cam.SetROI(0, 101, 0, 101); err != nil {
		t.Fatalf("SetROI: %v", err)
	}
	if err := cam.SetBinning(2, 2); err != nil {
		t.Fatalf("SetBinning: %v", err)
	}
	if w, h := cam.Shape(); w != 50 || h != 50 {
		t.Errorf("shape: got %dx%d, want floored 50x50", w, h)
	}
}
