// Package camera implements the control layer for PVCAM-family
// scientific cameras: validated device configuration (exposure,
// binning, ROI, trigger modes), derived frame geometry, synchronous
// capture operations, and the acquisition lifecycle over a background
// stream engine.
//
// A Camera owns its driver handle and at most one acquisition session.
// All methods are safe for concurrent use; one mutex per Camera
// serializes configuration and lifecycle calls. The stream engine is
// the only component that runs concurrently with the caller.
package camera

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/sgctrl/go-pvcam/internal/log"
	"github.com/sgctrl/go-pvcam/pkg/pvc"
)

// Camera is one PVCAM device. Construct with New or Detect, then Open
// before use.
type Camera struct {
	// mu serializes configuration and lifecycle calls. Capture
	// operations hold it for the full exposure and readout.
	mu sync.Mutex

	drv           pvc.Driver
	name          string
	logger        *slog.Logger
	engineFactory pvc.EngineFactory

	handle pvc.Handle
	opened bool

	sensorW int
	sensorH int

	roi    ROI
	bin    Binning
	width  int
	height int

	expTime    uint32
	expMode    int32
	expOutMode int32
	deviceMode int32

	engine  pvc.StreamEngine
	session *Session
}

// Option configures a Camera at construction time.
type Option func(*Camera)

// WithEngineFactory sets the factory used to create the background
// stream engine on the first acquisition start.
func WithEngineFactory(f pvc.EngineFactory) Option {
	return func(c *Camera) {
		c.engineFactory = f
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Camera) {
		c.logger = logger
	}
}

// New creates an unopened Camera bound to the named device.
func New(drv pvc.Driver, name string, opts ...Option) *Camera {
	c := &Camera{
		drv:    drv,
		name:   name,
		logger: log.Component("camera").With("camera", name),
		handle: pvc.InvalidHandle,
		bin:    Binning{X: 1, Y: 1},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// AvailableCameraNames returns the names of all cameras the driver
// sees, in enumeration order.
func AvailableCameraNames(drv pvc.Driver) ([]string, error) {
	return drv.ListCameras()
}

// Detect constructs one unopened Camera per driver-reported device.
func Detect(drv pvc.Driver, opts ...Option) ([]*Camera, error) {
	names, err := drv.ListCameras()
	if err != nil {
		return nil, fmt.Errorf("camera: enumeration failed: %w", err)
	}
	cams := make([]*Camera, len(names))
	for i, name := range names {
		cams[i] = New(drv, name, opts...)
	}
	return cams, nil
}

// Open claims the device and initializes it: parallel clocking mode
// from the frame-transfer capability, full-sensor ROI with no binning,
// and the composed trigger mode from the device's current sub-modes.
func (c *Camera) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.opened {
		return ErrAlreadyOpen
	}

	h, err := c.drv.Open(c.name)
	if err != nil {
		return err
	}
	c.handle = h
	c.opened = true

	if err := c.initLocked(); err != nil {
		c.drv.Close(h)
		c.handle = pvc.InvalidHandle
		c.opened = false
		return err
	}

	c.logger.Info("camera opened",
		"sensor_width", c.sensorW,
		"sensor_height", c.sensorH,
	)
	return nil
}

// initLocked reads the sensor geometry and programs the open-time
// defaults on a freshly opened handle.
func (c *Camera) initLocked() error {
	w, err := c.drv.GetParam(c.handle, pvc.ParamSerSize, pvc.AttrCurrent)
	if err != nil {
		return fmt.Errorf("camera: sensor width: %w", err)
	}
	h, err := c.drv.GetParam(c.handle, pvc.ParamParSize, pvc.AttrCurrent)
	if err != nil {
		return fmt.Errorf("camera: sensor height: %w", err)
	}
	c.sensorW = int(w)
	c.sensorH = int(h)

	// Frame-transfer capable sensors run in FT clocking mode
	pmode := pvc.PModeNormal
	if c.drv.CheckParam(c.handle, pvc.ParamFrameCapable) {
		capable, err := c.drv.GetParam(c.handle, pvc.ParamFrameCapable, pvc.AttrCurrent)
		if err == nil && capable != 0 {
			pmode = pvc.PModeFT
		}
	}
	if err := c.drv.SetParam(c.handle, pvc.ParamPMode, int64(pmode)); err != nil {
		return fmt.Errorf("camera: clocking mode: %w", err)
	}

	c.roi = ROI{XStart: 0, XEnd: c.sensorW, YStart: 0, YEnd: c.sensorH}
	c.bin = Binning{X: 1, Y: 1}
	c.recomputeShapeLocked()

	return c.composeModeLocked()
}

// Close releases the device. An active acquisition session is aborted
// and joined best-effort first, and the stream engine is torn down.
func (c *Camera) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.opened {
		return ErrNotOpen
	}

	if c.session != nil {
		c.engine.Abort()
		if err := c.engine.Join(); err != nil && !pvc.IsAborted(err) {
			c.logger.Warn("session teardown failed", "error", err)
		}
		c.session = nil
	}
	if c.engine != nil {
		if err := c.engine.Close(); err != nil {
			c.logger.Warn("engine close failed", "error", err)
		}
		c.engine = nil
	}

	err := c.drv.Close(c.handle)
	c.handle = pvc.InvalidHandle
	c.opened = false
	c.logger.Info("camera closed")
	return err
}

// Name returns the driver-reported device name.
func (c *Camera) Name() string {
	return c.name
}

// Handle returns the driver handle. It is pvc.InvalidHandle unless the
// camera is open.
func (c *Camera) Handle() pvc.Handle {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.handle
}

// IsOpen reports whether the camera is open.
func (c *Camera) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.opened
}

// ensureOpenLocked guards every operation that needs a live handle.
func (c *Camera) ensureOpenLocked() error {
	if !c.opened {
		return ErrNotOpen
	}
	return nil
}
