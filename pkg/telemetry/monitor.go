package telemetry

import (
	"encoding/base64"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/sgctrl/go-pvcam/internal/log"
	"github.com/sgctrl/go-pvcam/pkg/camera"
)

// Sink receives the monitor's output. *Publisher satisfies it; tests
// substitute a recorder.
type Sink interface {
	PublishState(camera string, data StateData) error
	PublishStats(camera string, data StatsData) error
	PublishPreview(camera string, data PreviewData) error
	PublishEvent(camera string, data EventData) error
}

var _ Sink = (*Publisher)(nil)

// ErrMonitorRunning is returned by Start when the monitor is already
// running.
var ErrMonitorRunning = errors.New("telemetry: monitor already running")

// MonitorOption configures a Monitor.
type MonitorOption func(*Monitor)

// WithInterval sets the polling interval. Default 1s.
func WithInterval(d time.Duration) MonitorOption {
	return func(m *Monitor) {
		m.interval = d
	}
}

// WithPreviewEvery publishes a preview frame on every nth poll.
// Zero disables previews. Default 5.
func WithPreviewEvery(n int) MonitorOption {
	return func(m *Monitor) {
		m.previewEvery = n
	}
}

// WithPreviewSize caps the preview's longer side in pixels.
// Default 512.
func WithPreviewSize(maxDim int) MonitorOption {
	return func(m *Monitor) {
		m.previewDim = maxDim
	}
}

// Monitor polls one camera in the background and publishes throughput
// stats on every poll, preview frames on a subsampled schedule, and a
// state message whenever the acquisition state changes. Polling is
// passive: a camera with no active session produces only state
// transitions.
type Monitor struct {
	cam    *camera.Camera
	sink   Sink
	logger *slog.Logger

	interval     time.Duration
	previewEvery int
	previewDim   int

	mu        sync.Mutex
	running   bool
	stop      chan struct{}
	done      chan struct{}
	lastState camera.State
}

// NewMonitor creates a monitor for one camera. It does not start
// polling; call Start.
func NewMonitor(cam *camera.Camera, sink Sink, opts ...MonitorOption) *Monitor {
	m := &Monitor{
		cam:          cam,
		sink:         sink,
		logger:       log.Component("telemetry").With("camera", cam.Name()),
		interval:     time.Second,
		previewEvery: 5,
		previewDim:   512,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start launches the polling loop.
func (m *Monitor) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return ErrMonitorRunning
	}
	m.running = true
	m.stop = make(chan struct{})
	m.done = make(chan struct{})
	m.lastState = m.cam.State()

	go m.run(m.stop, m.done)
	m.logger.Info("monitor started", "interval", m.interval)
	return nil
}

// Stop halts the polling loop and waits for it to exit. Stopping a
// stopped monitor is a no-op.
func (m *Monitor) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	stop, done := m.stop, m.done
	m.running = false
	m.mu.Unlock()

	close(stop)
	<-done
	m.logger.Info("monitor stopped")
}

func (m *Monitor) run(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	var tickCount int
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			tickCount++
			m.tick(tickCount)
		}
	}
}

func (m *Monitor) tick(tickCount int) {
	name := m.cam.Name()

	state := m.cam.State()
	if state != m.lastState {
		m.publishState(name, state)
		m.lastState = state
	}
	if state == camera.StateIdle {
		return
	}

	stats, err := m.cam.PollStats()
	if err != nil {
		// The session can end between the state check and the poll
		m.logger.Debug("stats poll failed", "error", err)
		return
	}
	if err := m.sink.PublishStats(name, StatsData{
		Camera:          name,
		AcqFPS:          stats.AcqFPS,
		AcqFramesValid:  stats.AcqFramesValid,
		AcqFramesLost:   stats.AcqFramesLost,
		DiskFPS:         stats.DiskFPS,
		DiskFramesValid: stats.DiskFramesValid,
		DiskFramesLost:  stats.DiskFramesLost,
	}); err != nil {
		m.logger.Warn("stats publish failed", "error", err)
	}

	if m.previewEvery > 0 && tickCount%m.previewEvery == 0 {
		m.publishPreview(name)
	}
}

func (m *Monitor) publishState(name string, state camera.State) {
	data := StateData{Camera: name, State: state.String()}
	if sess := m.cam.CurrentSession(); sess != nil {
		data.SessionID = sess.ID.String()
		data.FrameCount = sess.FrameCount
		data.OutputDir = sess.OutputDir
	}
	if err := m.sink.PublishState(name, data); err != nil {
		m.logger.Warn("state publish failed", "error", err)
	}
	m.logger.Debug("state transition", "state", state)
}

func (m *Monitor) publishPreview(name string) {
	f, _, err := m.cam.LiveFrame()
	if err != nil {
		m.logger.Debug("preview poll failed", "error", err)
		return
	}
	png, err := f.EncodePNG(m.previewDim)
	if err != nil {
		m.logger.Warn("preview encode failed", "error", err)
		return
	}
	if err := m.sink.PublishPreview(name, PreviewData{
		Camera:      name,
		Width:       f.Width,
		Height:      f.Height,
		Format:      "png",
		Data:        base64.StdEncoding.EncodeToString(png),
		FrameNumber: f.Number,
	}); err != nil {
		m.logger.Warn("preview publish failed", "error", err)
	}
}
