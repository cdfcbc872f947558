package camera

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/sgctrl/go-pvcam/pkg/frame"
	"github.com/sgctrl/go-pvcam/pkg/pvc"
)

// State is the acquisition lifecycle state of a Camera.
type State int

const (
	// StateIdle means no acquisition session is running.
	StateIdle State = iota

	// StateLive means an unbounded live stream is running for
	// continuous polling. Nothing is persisted.
	StateLive

	// StateSequence means a bounded run is capturing a fixed frame
	// count to storage.
	StateSequence
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLive:
		return "live"
	case StateSequence:
		return "sequence"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Session describes one acquisition run. A camera has at most one
// active session; the returned value stays valid for inspection after
// the run ends.
type Session struct {
	ID         uuid.UUID
	Mode       State
	FrameCount int
	OutputDir  string
	StartedAt  time.Time
}

// State returns the current acquisition state.
func (c *Camera) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

func (c *Camera) stateLocked() State {
	if c.session == nil {
		return StateIdle
	}
	return c.session.Mode
}

// Active reports whether an acquisition session is running. It stays
// true after an Abort until a Join completes.
func (c *Camera) Active() bool {
	return c.State() != StateIdle
}

// CurrentSession returns the active session, or nil when idle.
func (c *Camera) CurrentSession() *Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// ensureEngineLocked creates and attaches the stream engine on the
// first acquisition start. The one instance then serves every run
// until the camera closes.
func (c *Camera) ensureEngineLocked() error {
	if c.engine != nil {
		return nil
	}
	if c.engineFactory == nil {
		return ErrNoEngine
	}
	eng := c.engineFactory()
	if err := eng.Attach(c.name); err != nil {
		return fmt.Errorf("camera: engine attach: %w", err)
	}
	c.engine = eng
	return nil
}

// StartLive starts an unbounded live stream at the current ROI,
// binning and exposure. It is a no-op if a live session is already
// running and is rejected while a bounded run is active.
func (c *Camera) StartLive() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ensureOpenLocked(); err != nil {
		return err
	}

	switch c.stateLocked() {
	case StateLive:
		return nil
	case StateSequence:
		return fmt.Errorf("%w: bounded acquisition in progress", ErrSessionConflict)
	}

	if err := c.ensureEngineLocked(); err != nil {
		return err
	}
	if err := c.engine.ConfigureLive(c.expTime, c.regionLocked()); err != nil {
		return err
	}
	if err := c.engine.Start(); err != nil {
		return err
	}

	c.session = &Session{
		ID:        uuid.New(),
		Mode:      StateLive,
		StartedAt: time.Now(),
	}
	c.logger.Info("live stream started",
		"session", c.session.ID,
		"width", c.width,
		"height", c.height,
		"exposure", c.expTime,
	)
	return nil
}

// StartAcquisition starts a bounded run of frameCount frames persisted
// into outputDir, which is created if absent. A running live session
// is stopped first; a running bounded session is a conflict.
func (c *Camera) StartAcquisition(frameCount int, outputDir string) (*Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ensureOpenLocked(); err != nil {
		return nil, err
	}
	if frameCount < 1 {
		return nil, &InvalidValueError{
			Setting: "frame count",
			Value:   frameCount,
			Legal:   "positive integers",
		}
	}

	switch c.stateLocked() {
	case StateSequence:
		return nil, fmt.Errorf("%w: bounded acquisition already in progress", ErrSessionConflict)
	case StateLive:
		c.stopLiveLocked()
	}

	if err := c.ensureEngineLocked(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("camera: output directory: %w", err)
	}
	if err := c.engine.ConfigureBounded(uint32(frameCount), c.expTime, c.regionLocked(), outputDir); err != nil {
		return nil, err
	}
	if err := c.engine.Start(); err != nil {
		return nil, err
	}

	c.session = &Session{
		ID:         uuid.New(),
		Mode:       StateSequence,
		FrameCount: frameCount,
		OutputDir:  outputDir,
		StartedAt:  time.Now(),
	}
	c.logger.Info("bounded acquisition started",
		"session", c.session.ID,
		"frames", frameCount,
		"output_dir", outputDir,
	)
	return c.session, nil
}

// StopLive stops a running live session. Stopping is best-effort
// cleanup: teardown failures are logged and swallowed. It is a no-op
// in any other state.
func (c *Camera) StopLive() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stateLocked() != StateLive {
		return
	}
	c.stopLiveLocked()
}

// stopLiveLocked aborts and joins the live engine run. The join is
// prompt because the abort was just issued.
func (c *Camera) stopLiveLocked() {
	c.engine.Abort()
	if err := c.engine.Join(); err != nil && !pvc.IsAborted(err) {
		c.logger.Warn("live stop failed", "error", err)
	}
	c.logger.Info("live stream stopped", "session", c.session.ID)
	c.session = nil
}

// PollFrame asks the engine to latch its most recent frame and returns
// it. Frames are most-recent-latched, not an ordered stream: callers
// that need every frame must poll faster than the source rate or
// accept drops.
func (c *Camera) PollFrame() (*frame.Frame, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return nil, ErrNoActiveSession
	}
	c.engine.Tick()
	return c.engine.LastFrame()
}

// PollStats returns the engine's current throughput numbers.
func (c *Camera) PollStats() (pvc.StreamStats, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return pvc.StreamStats{}, ErrNoActiveSession
	}
	return c.engine.Stats()
}

// LiveFrame combines PollFrame and PollStats for viewers: the latest
// latched frame plus the current acquisition rate.
func (c *Camera) LiveFrame() (*frame.Frame, float64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return nil, 0, ErrNoActiveSession
	}
	c.engine.Tick()
	f, err := c.engine.LastFrame()
	if err != nil {
		return nil, 0, err
	}
	stats, err := c.engine.Stats()
	if err != nil {
		return nil, 0, err
	}
	return f, stats.AcqFPS, nil
}

// Abort asks the running session to stop as soon as possible. It does
// not block and gives no completion guarantee; only Join does. The
// session stays active until a Join completes.
func (c *Camera) Abort() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return ErrNoActiveSession
	}
	c.engine.Abort()
	c.logger.Info("abort requested", "session", c.session.ID)
	return nil
}

// Join blocks until the running session has fully stopped and moves
// the camera back to idle. It returns the engine's abort error when
// the run was cut short. Join must not be called from a thread that
// has to stay responsive; Abort can be issued from another thread to
// cut the wait short.
func (c *Camera) Join() error {
	c.mu.Lock()
	if c.session == nil {
		c.mu.Unlock()
		return ErrNoActiveSession
	}
	eng := c.engine
	sess := c.session
	c.mu.Unlock()

	// The camera lock is released during the wait so Abort and the
	// pollers stay callable from other goroutines.
	err := eng.Join()

	c.mu.Lock()
	if c.session == sess {
		c.session = nil
	}
	c.mu.Unlock()

	c.logger.Info("session joined", "session", sess.ID)
	return err
}
