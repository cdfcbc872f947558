package camera

import (
	"github.com/sgctrl/go-pvcam/pkg/pvc"
)

// The parameter façade is the sole channel through which device state
// is read or mutated. Each call touches exactly one parameter and has
// no other side effects. Unsupported parameters surface
// pvc.UnsupportedError, which callers can distinguish from a
// pvc.DriverError with pvc.IsUnsupported; Supports lets them branch
// around camera-model-specific features without triggering it.

// GetParam reads one attribute of a numeric device parameter.
func (c *Camera) GetParam(id pvc.ParamID, attr pvc.Attr) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ensureOpenLocked(); err != nil {
		return 0, err
	}
	return c.drv.GetParam(c.handle, id, attr)
}

// CurrentParam reads the current value of a numeric device parameter.
func (c *Camera) CurrentParam(id pvc.ParamID) (int64, error) {
	return c.GetParam(id, pvc.AttrCurrent)
}

// GetParamStr reads the current value of a string device parameter.
func (c *Camera) GetParamStr(id pvc.ParamID) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ensureOpenLocked(); err != nil {
		return "", err
	}
	return c.drv.GetParamStr(c.handle, id, pvc.AttrCurrent)
}

// SetParam writes the current value of a device parameter. Values the
// driver refuses for the present device state surface as
// pvc.DriverError, unretried.
func (c *Camera) SetParam(id pvc.ParamID, value int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ensureOpenLocked(); err != nil {
		return err
	}
	return c.drv.SetParam(c.handle, id, value)
}

// Supports reports whether the camera model exposes the parameter. It
// never fails; a closed camera supports nothing.
func (c *Camera) Supports(id pvc.ParamID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.opened {
		return false
	}
	return c.drv.CheckParam(c.handle, id)
}

// ReadEnum returns the name-to-value table of an enumerated parameter
// as the device reports it.
func (c *Camera) ReadEnum(id pvc.ParamID) (map[string]int32, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ensureOpenLocked(); err != nil {
		return nil, err
	}
	return c.drv.ReadEnum(c.handle, id)
}
