package spool

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sgctrl/go-pvcam/pkg/pvc"
)

func writeFrameFile(t *testing.T, dir, name string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte{0, 0}, 0o644); err != nil {
		t.Fatalf("WriteFile(%s): %v", name, err)
	}
}

func TestWatcher_CountsCreatedFiles(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(dir)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Close()

	writeFrameFile(t, dir, "frame_000001.tif")
	writeFrameFile(t, dir, "frame_000002.tif")
	writeFrameFile(t, dir, "frame_000003.tiff")
	writeFrameFile(t, dir, "notes.txt") // ignored

	if err := w.WaitForCount(3, 2*time.Second); err != nil {
		t.Fatalf("WaitForCount: %v", err)
	}
	if got := w.Count(); got != 3 {
		t.Errorf("Count: got %d, want 3", got)
	}
}

func TestWatcher_PreexistingFiles(t *testing.T) {
	dir := t.TempDir()
	writeFrameFile(t, dir, "frame_000001.tif")
	writeFrameFile(t, dir, "frame_000002.tif")

	w, err := NewWatcher(dir)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Close()

	if got := w.Count(); got != 2 {
		t.Errorf("Count: got %d, want 2 preexisting", got)
	}

	// New files keep counting from there
	writeFrameFile(t, dir, "frame_000003.tif")
	if err := w.WaitForCount(3, 2*time.Second); err != nil {
		t.Errorf("WaitForCount: %v", err)
	}
}

func TestWatcher_Events(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(dir)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Close()

	writeFrameFile(t, dir, "frame_000001.tif")

	select {
	case ev := <-w.Events():
		if filepath.Base(ev.Path) != "frame_000001.tif" {
			t.Errorf("event path: got %s", ev.Path)
		}
		if ev.Count != 1 {
			t.Errorf("event count: got %d, want 1", ev.Count)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no event within timeout")
	}
}

func TestWatcher_WaitTimeout(t *testing.T) {
	w, err := NewWatcher(t.TempDir())
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Close()

	err = w.WaitForCount(5, 30*time.Millisecond)
	if !errors.Is(err, ErrTimeout) {
		t.Errorf("WaitForCount: got %v, want timeout", err)
	}
}

func TestWatcher_CloseWakesWaiters(t *testing.T) {
	w, err := NewWatcher(t.TempDir())
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- w.WaitForCount(10, 5*time.Second)
	}()

	time.Sleep(20 * time.Millisecond)
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	select {
	case err := <-errCh:
		if !errors.Is(err, ErrClosed) {
			t.Errorf("WaitForCount: got %v, want %v", err, ErrClosed)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("waiter not woken by Close")
	}

	// Closing again is a no-op
	if err := w.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}

func TestWatcher_TracksBoundedRun(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}

	w, err := NewWatcher(dir)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Close()

	eng := pvc.NewMockEngine(pvc.WithFramePeriod(2 * time.Millisecond))
	if err := eng.Attach("FakeCam00"); err != nil {
		t.Fatalf("Attach: %v", err)
	}
	defer eng.Close()

	rgn := pvc.Region{S1: 0, S2: 31, SBin: 1, P1: 0, P2: 31, PBin: 1}
	if err := eng.ConfigureBounded(5, 10, rgn, dir); err != nil {
		t.Fatalf("ConfigureBounded: %v", err)
	}
	if err := eng.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	if err := w.WaitForCount(5, 5*time.Second); err != nil {
		t.Fatalf("WaitForCount: %v", err)
	}
	if err := eng.Join(); err != nil {
		t.Fatalf("Join: %v", err)
	}
	if got := w.Count(); got != 5 {
		t.Errorf("Count: got %d, want 5", got)
	}
}
