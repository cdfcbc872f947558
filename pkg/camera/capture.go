package camera

import (
	"fmt"
	"time"

	"github.com/sgctrl/go-pvcam/pkg/frame"
	"github.com/sgctrl/go-pvcam/pkg/pvc"
)

// CaptureOption adjusts a single capture call without touching the
// stored configuration.
type CaptureOption func(*captureConfig)

type captureConfig struct {
	expTime    uint32
	hasExpTime bool
}

// WithExposure overrides the exposure time for this capture only.
func WithExposure(t uint32) CaptureOption {
	return func(cfg *captureConfig) {
		cfg.expTime = t
		cfg.hasExpTime = true
	}
}

func (c *Camera) captureExposure(opts []CaptureOption) uint32 {
	cfg := captureConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.hasExpTime {
		return cfg.expTime
	}
	return c.expTime
}

// CaptureFrame captures one frame with the stored ROI, binning, mode
// and exposure. The call blocks for the full exposure and readout and
// returns an owned copy of the pixel data.
func (c *Camera) CaptureFrame(opts ...CaptureOption) (*frame.Frame, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ensureOpenLocked(); err != nil {
		return nil, err
	}
	return c.captureFrameLocked(c.captureExposure(opts))
}

func (c *Camera) captureFrameLocked(expTime uint32) (*frame.Frame, error) {
	pix, err := c.drv.GetFrame(c.handle, c.regionLocked(), expTime, c.deviceMode)
	if err != nil {
		return nil, err
	}
	return frame.FromBuffer(pix, c.width, c.height)
}

// CaptureSequence captures frameCount frames back to back in one
// blocking driver call and returns them in strict capture order.
func (c *Camera) CaptureSequence(frameCount int, opts ...CaptureOption) ([]*frame.Frame, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ensureOpenLocked(); err != nil {
		return nil, err
	}
	if frameCount < 1 || frameCount > 65535 {
		return nil, &InvalidValueError{
			Setting: "frame count",
			Value:   frameCount,
			Legal:   legalRange(1, 65535),
		}
	}

	pix, err := c.drv.GetSequence(c.handle, uint16(frameCount), c.regionLocked(),
		c.captureExposure(opts), c.deviceMode)
	if err != nil {
		return nil, err
	}

	frameSize := c.width * c.height
	if len(pix) != frameCount*frameSize {
		return nil, fmt.Errorf("camera: sequence returned %d pixels, want %d",
			len(pix), frameCount*frameSize)
	}

	frames := make([]*frame.Frame, frameCount)
	for i := 0; i < frameCount; i++ {
		f, err := frame.FromBuffer(pix[i*frameSize:(i+1)*frameSize], c.width, c.height)
		if err != nil {
			return nil, err
		}
		f.Number = uint32(i + 1)
		frames[i] = f
	}
	return frames, nil
}

// CaptureVTMSequence runs a variable-timed exposure schedule: for each
// of frameCount frames it programs the next entry of timeList into the
// device's variable-timed exposure register, captures one frame, and
// optionally sleeps for interval. The list is cycled when shorter than
// frameCount. Every entry is validated against the 16-bit register up
// front; an invalid entry fails the whole call before any capture.
//
// The exposure resolution is switched to expRes for the duration of
// the run and restored afterwards, whether the run completes or fails.
func (c *Camera) CaptureVTMSequence(timeList []int, expRes any, frameCount int, interval time.Duration) ([]*frame.Frame, error) {
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
	if len(timeList) == 0 {
		return nil, &InvalidValueError{
			Setting: "vtm time list",
			Value:   timeList,
			Legal:   "at least one entry",
		}
	}
	for _, t := range timeList {
		if t < 0 || t > 65535 {
			return nil, &InvalidValueError{
				Setting: "vtm exposure time",
				Value:   t,
				Legal:   legalRange(0, 65535),
			}
		}
	}
	res, err := resolveMode(expRes, pvc.ExpResolutions, "exposure resolution")
	if err != nil {
		return nil, err
	}

	prevRes, err := c.drv.GetParam(c.handle, pvc.ParamExpRes, pvc.AttrCurrent)
	if err != nil {
		return nil, err
	}
	if err := c.drv.SetParam(c.handle, pvc.ParamExpRes, int64(res)); err != nil {
		return nil, err
	}
	defer func() {
		if err := c.drv.SetParam(c.handle, pvc.ParamExpRes, prevRes); err != nil {
			c.logger.Warn("exposure resolution restore failed", "error", err)
		}
	}()

	c.logger.Debug("vtm sequence started",
		"frames", frameCount,
		"schedule", timeList,
		"interval", interval,
	)

	frames := make([]*frame.Frame, 0, frameCount)
	for i := 0; i < frameCount; i++ {
		t := timeList[i%len(timeList)]
		if err := c.drv.SetParam(c.handle, pvc.ParamExpTime, int64(t)); err != nil {
			return nil, err
		}
		f, err := c.captureFrameLocked(c.expTime)
		if err != nil {
			return nil, err
		}
		f.Number = uint32(i + 1)
		frames = append(frames, f)
		if interval > 0 {
			time.Sleep(interval)
		}
	}
	return frames, nil
}
