package camera

import (
	"math"

	"github.com/sgctrl/go-pvcam/pkg/pvc"
)

// SetExposureTime stores the exposure used by subsequent captures, in
// units of the current exposure resolution. The value is validated
// against the driver-reported legal range.
func (c *Camera) SetExposureTime(t uint32) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ensureOpenLocked(); err != nil {
		return err
	}

	min, err := c.drv.GetParam(c.handle, pvc.ParamExposureTime, pvc.AttrMin)
	if err != nil {
		return err
	}
	max, err := c.drv.GetParam(c.handle, pvc.ParamExposureTime, pvc.AttrMax)
	if err != nil {
		return err
	}
	if int64(t) < min || int64(t) > max {
		return &InvalidValueError{
			Setting: "exposure time",
			Value:   t,
			Legal:   legalRange(min, max),
		}
	}

	c.expTime = t
	return nil
}

// ExposureTime returns the stored exposure time. It is passed to the
// driver per capture call, not pushed to the device on set.
func (c *Camera) ExposureTime() uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.expTime
}

// LastExpTime returns the exposure the driver applied to the most
// recent capture, in the device's reporting units.
func (c *Camera) LastExpTime() (int64, error) {
	return c.CurrentParam(pvc.ParamExposureTime)
}

// SetExposureResolution switches the unit of exposure times. It
// accepts a symbolic name from pvc.ExpResolutions or a raw value from
// that table.
func (c *Camera) SetExposureResolution(res any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ensureOpenLocked(); err != nil {
		return err
	}
	v, err := resolveMode(res, pvc.ExpResolutions, "exposure resolution")
	if err != nil {
		return err
	}
	return c.drv.SetParam(c.handle, pvc.ParamExpRes, int64(v))
}

// ExposureResolution returns the device's current exposure resolution
// value.
func (c *Camera) ExposureResolution() (int32, error) {
	v, err := c.CurrentParam(pvc.ParamExpRes)
	return int32(v), err
}

// ExposureResIndex returns the device's current exposure resolution
// index.
func (c *Camera) ExposureResIndex() (int32, error) {
	v, err := c.CurrentParam(pvc.ParamExpResIndex)
	return int32(v), err
}

// SetVTMExpTime writes the variable-timed exposure register used by
// timed sequences. The register is 16 bits wide.
func (c *Camera) SetVTMExpTime(t int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ensureOpenLocked(); err != nil {
		return err
	}
	if t < 0 || t > 65535 {
		return &InvalidValueError{
			Setting: "vtm exposure time",
			Value:   t,
			Legal:   legalRange(0, 65535),
		}
	}
	return c.drv.SetParam(c.handle, pvc.ParamExpTime, int64(t))
}

// VTMExpTime returns the current variable-timed exposure register
// value.
func (c *Camera) VTMExpTime() (int64, error) {
	return c.CurrentParam(pvc.ParamExpTime)
}

// Gain returns the current gain index.
func (c *Camera) Gain() (int64, error) {
	return c.CurrentParam(pvc.ParamGainIndex)
}

// MaxGain returns the highest gain index the current readout speed
// supports.
func (c *Camera) MaxGain() (int64, error) {
	return c.GetParam(pvc.ParamGainIndex, pvc.AttrMax)
}

// SetGain selects a gain index between 1 and MaxGain.
func (c *Camera) SetGain(g int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ensureOpenLocked(); err != nil {
		return err
	}
	max, err := c.drv.GetParam(c.handle, pvc.ParamGainIndex, pvc.AttrMax)
	if err != nil {
		return err
	}
	if g < 1 || int64(g) > max {
		return &InvalidValueError{
			Setting: "gain index",
			Value:   g,
			Legal:   legalRange(1, max),
		}
	}
	return c.drv.SetParam(c.handle, pvc.ParamGainIndex, int64(g))
}

// ReadoutPort returns the current readout port value.
func (c *Camera) ReadoutPort() (int64, error) {
	return c.CurrentParam(pvc.ParamReadoutPort)
}

// SetReadoutPort selects a readout port by index. Changing the port
// resets the device's speed table index.
func (c *Camera) SetReadoutPort(port int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ensureOpenLocked(); err != nil {
		return err
	}
	count, err := c.drv.GetParam(c.handle, pvc.ParamReadoutPort, pvc.AttrCount)
	if err != nil {
		return err
	}
	if port < 0 || int64(port) >= count {
		return &InvalidValueError{
			Setting: "readout port",
			Value:   port,
			Legal:   legalRange(0, count-1),
		}
	}
	return c.drv.SetParam(c.handle, pvc.ParamReadoutPort, int64(port))
}

// SpeedTableIndex returns the current speed table index within the
// selected readout port.
func (c *Camera) SpeedTableIndex() (int64, error) {
	return c.CurrentParam(pvc.ParamSpdtabIndex)
}

// SetSpeedTableIndex selects a speed entry of the current readout
// port. Gain limits follow the selected speed.
func (c *Camera) SetSpeedTableIndex(index int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ensureOpenLocked(); err != nil {
		return err
	}
	count, err := c.drv.GetParam(c.handle, pvc.ParamSpdtabIndex, pvc.AttrCount)
	if err != nil {
		return err
	}
	if index < 0 || int64(index) >= count {
		return &InvalidValueError{
			Setting: "speed table index",
			Value:   index,
			Legal:   legalRange(0, count-1),
		}
	}
	return c.drv.SetParam(c.handle, pvc.ParamSpdtabIndex, int64(index))
}

// ClearMode returns the current sensor clearing mode value.
func (c *Camera) ClearMode() (int32, error) {
	v, err := c.CurrentParam(pvc.ParamClearMode)
	return int32(v), err
}

// SetClearMode sets the sensor clearing mode. It accepts a symbolic
// name from pvc.ClearModes or a raw value from that table.
func (c *Camera) SetClearMode(mode any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ensureOpenLocked(); err != nil {
		return err
	}
	v, err := resolveMode(mode, pvc.ClearModes, "clear mode")
	if err != nil {
		return err
	}
	return c.drv.SetParam(c.handle, pvc.ParamClearMode, int64(v))
}

// Temp returns the current sensor temperature in degrees Celsius. The
// device reports hundredths of a degree.
func (c *Camera) Temp() (float64, error) {
	v, err := c.CurrentParam(pvc.ParamTemp)
	if err != nil {
		return 0, err
	}
	return float64(v) / 100, nil
}

// TempSetpoint returns the cooling setpoint in degrees Celsius.
func (c *Camera) TempSetpoint() (float64, error) {
	v, err := c.CurrentParam(pvc.ParamTempSetpoint)
	if err != nil {
		return 0, err
	}
	return float64(v) / 100, nil
}

// SetTempSetpoint programs the cooling setpoint in degrees Celsius. A
// driver rejection is reported as an invalid value carrying the legal
// range.
func (c *Camera) SetTempSetpoint(degC float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ensureOpenLocked(); err != nil {
		return err
	}

	raw := int64(math.Round(degC * 100))
	err := c.drv.SetParam(c.handle, pvc.ParamTempSetpoint, raw)
	if !pvc.IsDriverRejection(err) {
		return err
	}

	min, minErr := c.drv.GetParam(c.handle, pvc.ParamTempSetpoint, pvc.AttrMin)
	max, maxErr := c.drv.GetParam(c.handle, pvc.ParamTempSetpoint, pvc.AttrMax)
	if minErr != nil || maxErr != nil {
		return err
	}
	return &InvalidValueError{
		Setting: "temperature setpoint",
		Value:   degC,
		Legal:   legalRange(min/100, max/100) + " degrees C",
	}
}

// ReadoutTime returns the sensor readout time in microseconds.
func (c *Camera) ReadoutTime() (int64, error) {
	return c.CurrentParam(pvc.ParamReadoutTime)
}

// ClearTime returns the sensor clearing time in nanoseconds. Not all
// camera models report it.
func (c *Camera) ClearTime() (int64, error) {
	return c.CurrentParam(pvc.ParamClearingTime)
}

// PreTriggerDelay returns the pre-trigger delay in nanoseconds. Not
// all camera models report it.
func (c *Camera) PreTriggerDelay() (int64, error) {
	return c.CurrentParam(pvc.ParamPreTriggerDelay)
}

// PostTriggerDelay returns the post-trigger delay in nanoseconds. Not
// all camera models report it.
func (c *Camera) PostTriggerDelay() (int64, error) {
	return c.CurrentParam(pvc.ParamPostTriggerDelay)
}

// PPParam is one post-processing parameter reading.
type PPParam struct {
	Value int64 `json:"value"`
	Min   int64 `json:"min"`
	Max   int64 `json:"max"`
}

// PostProcessingTable walks every post-processing feature and
// parameter the camera exposes and returns feature name to parameter
// name to reading. The device's feature and parameter indices are
// restored before returning.
func (c *Camera) PostProcessingTable() (map[string]map[string]PPParam, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ensureOpenLocked(); err != nil {
		return nil, err
	}
	if !c.drv.CheckParam(c.handle, pvc.ParamPPIndex) {
		return nil, &pvc.UnsupportedError{Param: pvc.ParamPPIndex}
	}

	prevFeat, err := c.drv.GetParam(c.handle, pvc.ParamPPIndex, pvc.AttrCurrent)
	if err != nil {
		return nil, err
	}
	prevParam, err := c.drv.GetParam(c.handle, pvc.ParamPPParamIndex, pvc.AttrCurrent)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := c.drv.SetParam(c.handle, pvc.ParamPPIndex, prevFeat); err != nil {
			c.logger.Warn("post-processing feature index restore failed", "error", err)
			return
		}
		if err := c.drv.SetParam(c.handle, pvc.ParamPPParamIndex, prevParam); err != nil {
			c.logger.Warn("post-processing param index restore failed", "error", err)
		}
	}()

	featCount, err := c.drv.GetParam(c.handle, pvc.ParamPPIndex, pvc.AttrCount)
	if err != nil {
		return nil, err
	}

	table := make(map[string]map[string]PPParam, featCount)
	for fi := int64(0); fi < featCount; fi++ {
		if err := c.drv.SetParam(c.handle, pvc.ParamPPIndex, fi); err != nil {
			return nil, err
		}
		featName, err := c.drv.GetParamStr(c.handle, pvc.ParamPPFeatName, pvc.AttrCurrent)
		if err != nil {
			return nil, err
		}
		paramCount, err := c.drv.GetParam(c.handle, pvc.ParamPPParamIndex, pvc.AttrCount)
		if err != nil {
			return nil, err
		}

		params := make(map[string]PPParam, paramCount)
		for pi := int64(0); pi < paramCount; pi++ {
			if err := c.drv.SetParam(c.handle, pvc.ParamPPParamIndex, pi); err != nil {
				return nil, err
			}
			name, err := c.drv.GetParamStr(c.handle, pvc.ParamPPParamName, pvc.AttrCurrent)
			if err != nil {
				return nil, err
			}
			val, err := c.drv.GetParam(c.handle, pvc.ParamPPParam, pvc.AttrCurrent)
			if err != nil {
				return nil, err
			}
			min, err := c.drv.GetParam(c.handle, pvc.ParamPPParam, pvc.AttrMin)
			if err != nil {
				return nil, err
			}
			max, err := c.drv.GetParam(c.handle, pvc.ParamPPParam, pvc.AttrMax)
			if err != nil {
				return nil, err
			}
			params[name] = PPParam{Value: val, Min: min, Max: max}
		}
		table[featName] = params
	}
	return table, nil
}

// ResetPostProcessing restores all post-processing features to their
// factory defaults.
func (c *Camera) ResetPostProcessing() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ensureOpenLocked(); err != nil {
		return err
	}
	return c.drv.ResetPostProcessing(c.handle)
}
