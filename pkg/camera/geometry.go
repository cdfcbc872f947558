package camera

import (
	"fmt"

	"github.com/sgctrl/go-pvcam/pkg/pvc"
)

// ROI is a rectangular readout window in sensor pixel coordinates.
// The end bounds are exclusive.
type ROI struct {
	XStart int `json:"x_start"`
	XEnd   int `json:"x_end"`
	YStart int `json:"y_start"`
	YEnd   int `json:"y_end"`
}

// Binning holds the pixel grouping factor per axis. X is the serial
// axis, Y the parallel axis.
type Binning struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// ROI returns the current readout window.
func (c *Camera) ROI() ROI {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.roi
}

// Binning returns the current binning factors.
func (c *Camera) Binning() Binning {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bin
}

// Shape returns the output frame dimensions derived from the current
// ROI and binning. It is recomputed on every successful geometry
// change and never set directly.
func (c *Camera) Shape() (width, height int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.width, c.height
}

// recomputeShapeLocked rederives the output dimensions. Callers must
// invoke it after every ROI or binning mutation.
func (c *Camera) recomputeShapeLocked() {
	c.width = (c.roi.XEnd - c.roi.XStart) / c.bin.X
	c.height = (c.roi.YEnd - c.roi.YStart) / c.bin.Y
}

// regionLocked converts the exclusive-end ROI and binning into the
// driver's inclusive region form.
func (c *Camera) regionLocked() pvc.Region {
	return pvc.Region{
		S1:   uint16(c.roi.XStart),
		S2:   uint16(c.roi.XEnd - 1),
		SBin: uint16(c.bin.X),
		P1:   uint16(c.roi.YStart),
		P2:   uint16(c.roi.YEnd - 1),
		PBin: uint16(c.bin.Y),
	}
}

// SetROI replaces the readout window. Bounds are validated against
// the sensor size; on rejection the previous ROI and shape are kept.
func (c *Camera) SetROI(xStart, xEnd, yStart, yEnd int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ensureOpenLocked(); err != nil {
		return err
	}

	if xStart < 0 || xEnd > c.sensorW || xStart >= xEnd ||
		yStart < 0 || yEnd > c.sensorH || yStart >= yEnd {
		return &InvalidValueError{
			Setting: "roi",
			Value:   fmt.Sprintf("(%d, %d, %d, %d)", xStart, xEnd, yStart, yEnd),
			Legal: fmt.Sprintf("x within [0, %d], y within [0, %d], start < end",
				c.sensorW, c.sensorH),
		}
	}

	c.roi = ROI{XStart: xStart, XEnd: xEnd, YStart: yStart, YEnd: yEnd}
	c.recomputeShapeLocked()
	c.logger.Debug("roi changed",
		"roi", c.roi,
		"width", c.width,
		"height", c.height,
	)
	return nil
}

// SetBinningX sets the serial-axis binning factor. The value must be
// in the device's enumerated serial binning set.
func (c *Camera) SetBinningX(bx int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ensureOpenLocked(); err != nil {
		return err
	}
	if err := c.checkBinningLocked(pvc.ParamBinningSer, "serial binning", bx); err != nil {
		return err
	}
	c.bin.X = bx
	c.recomputeShapeLocked()
	return nil
}

// SetBinningY sets the parallel-axis binning factor. The value must be
// in the device's enumerated parallel binning set.
func (c *Camera) SetBinningY(by int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ensureOpenLocked(); err != nil {
		return err
	}
	if err := c.checkBinningLocked(pvc.ParamBinningPar, "parallel binning", by); err != nil {
		return err
	}
	c.bin.Y = by
	c.recomputeShapeLocked()
	return nil
}

// SetBinning sets both binning factors. Both are validated before
// either is applied, so a rejection leaves the configuration intact.
func (c *Camera) SetBinning(bx, by int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ensureOpenLocked(); err != nil {
		return err
	}
	if err := c.checkBinningLocked(pvc.ParamBinningSer, "serial binning", bx); err != nil {
		return err
	}
	if err := c.checkBinningLocked(pvc.ParamBinningPar, "parallel binning", by); err != nil {
		return err
	}
	c.bin = Binning{X: bx, Y: by}
	c.recomputeShapeLocked()
	c.logger.Debug("binning changed",
		"binning", c.bin,
		"width", c.width,
		"height", c.height,
	)
	return nil
}

// SetSymmetricBinning applies the same factor to both axes. The value
// must appear in the device's symmetric (serial) binning set.
func (c *Camera) SetSymmetricBinning(b int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ensureOpenLocked(); err != nil {
		return err
	}
	if err := c.checkBinningLocked(pvc.ParamBinningSer, "binning", b); err != nil {
		return err
	}
	c.bin = Binning{X: b, Y: b}
	c.recomputeShapeLocked()
	return nil
}

// checkBinningLocked validates a factor against the device's
// enumerated binning set for the given axis parameter.
func (c *Camera) checkBinningLocked(id pvc.ParamID, setting string, value int) error {
	table, err := c.drv.ReadEnum(c.handle, id)
	if err != nil {
		return err
	}
	for _, v := range table {
		if int(v) == value {
			return nil
		}
	}
	return &InvalidValueError{
		Setting: setting,
		Value:   value,
		Legal:   legalSet(table),
	}
}
