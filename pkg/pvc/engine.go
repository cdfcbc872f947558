package pvc

import (
	"github.com/sgctrl/go-pvcam/pkg/frame"
)

// StreamStats is the engine's self-reported throughput block. The Acq
// side counts frames leaving the sensor; the Disk side counts frames
// the persistence thread has written. Disk numbers stay zero for live
// (unbounded) runs, which never persist.
type StreamStats struct {
	AcqFPS          float64
	AcqFramesValid  uint64
	AcqFramesLost   uint64
	AcqFramesMax    uint64
	AcqFramesCached uint64

	DiskFPS          float64
	DiskFramesValid  uint64
	DiskFramesLost   uint64
	DiskFramesMax    uint64
	DiskFramesCached uint64
}

// StreamEngine is the background capture engine contract. One engine
// instance serves one camera; it runs its own capture thread and, for
// bounded runs, a cooperating disk-writer thread. The engine is the
// only concurrent collaborator of this module: its methods may be
// called while a run is in progress, but configuration calls are only
// legal between runs.
type StreamEngine interface {
	// Attach binds the engine to the named camera. Must be called
	// once before the first Configure call.
	Attach(cameraName string) error

	// ConfigureLive prepares an unbounded circular-buffer run for
	// continuous viewing. Nothing is persisted.
	ConfigureLive(expTime uint32, rgn Region) error

	// ConfigureBounded prepares a run of exactly frameCount frames
	// persisted by the disk thread into outputDir.
	ConfigureBounded(frameCount uint32, expTime uint32, rgn Region, outputDir string) error

	// Start launches the configured run.
	Start() error

	// Tick asks the capture thread to latch its most recent frame so
	// a following LastFrame sees fresh data.
	Tick()

	// LastFrame returns the most recently latched frame. It fails if
	// no frame has been latched yet.
	LastFrame() (*frame.Frame, error)

	// Stats returns the current throughput numbers.
	Stats() (StreamStats, error)

	// Active reports whether the run is still going. It stays true
	// after an Abort until Join completes.
	Active() bool

	// Abort asks the run to stop as soon as possible. It does not
	// block and gives no completion guarantee; only Join does.
	Abort()

	// Join blocks until the run has fully stopped. It returns
	// ErrAborted if the run was cut short by Abort.
	Join() error

	// Close releases engine resources. An active run is aborted.
	Close() error
}

// EngineFactory constructs a fresh, unattached engine. The camera
// creates its engine lazily on the first acquisition start.
type EngineFactory func() StreamEngine
