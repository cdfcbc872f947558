package camera

import (
	"fmt"
	"sort"

	"github.com/sgctrl/go-pvcam/pkg/pvc"
)

// SensorSize returns the full sensor dimensions in pixels. Valid after
// Open.
func (c *Camera) SensorSize() (width, height int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sensorW, c.sensorH
}

// DriverVersion returns the device driver version as "major.minor.
// build", decoded from the packed 16-bit register: major in the high
// byte, minor in the upper nibble of the low byte, build in the lower.
func (c *Camera) DriverVersion() (string, error) {
	v, err := c.CurrentParam(pvc.ParamDDVersion)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d.%d.%d", (v>>8)&0xFF, (v>>4)&0xF, v&0xF), nil
}

// FirmwareVersion returns the camera firmware version as
// "major.minor".
func (c *Camera) FirmwareVersion() (string, error) {
	v, err := c.CurrentParam(pvc.ParamCamFwVersion)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d.%d", (v>>8)&0xFF, v&0xFF), nil
}

// ChipName returns the sensor chip name.
func (c *Camera) ChipName() (string, error) {
	return c.GetParamStr(pvc.ParamChipName)
}

// SerialNumber returns the camera head serial number, or "N/A" on
// models that do not report one.
func (c *Camera) SerialNumber() string {
	s, err := c.GetParamStr(pvc.ParamHeadSerNumAlpha)
	if err != nil {
		return "N/A"
	}
	return s
}

// BitDepth returns the bit depth of the current readout speed.
func (c *Camera) BitDepth() (int64, error) {
	return c.CurrentParam(pvc.ParamBitDepth)
}

// PixTime returns the pixel clock period of the current readout speed
// in nanoseconds.
func (c *Camera) PixTime() (int64, error) {
	return c.CurrentParam(pvc.ParamPixTime)
}

// ADCOffset returns the analog-to-digital converter offset.
func (c *Camera) ADCOffset() (int64, error) {
	return c.CurrentParam(pvc.ParamAdcOffset)
}

// SpeedEntry describes one readout speed of a port.
type SpeedEntry struct {
	Index         int   `json:"index"`
	PixTime       int64 `json:"pix_time"`
	BitDepth      int64 `json:"bit_depth"`
	GainMin       int64 `json:"gain_min"`
	GainMax       int64 `json:"gain_max"`
	GainIncrement int64 `json:"gain_increment"`
}

// SpeedTable walks every readout port and speed index, collecting the
// pixel time, bit depth and gain limits of each combination. The
// device is left at port 0, speed 0.
func (c *Camera) SpeedTable() (map[string][]SpeedEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ensureOpenLocked(); err != nil {
		return nil, err
	}

	ports, err := c.drv.ReadEnum(c.handle, pvc.ParamReadoutPort)
	if err != nil {
		return nil, err
	}

	// Walk ports in value order so the device ends up at port 0
	names := make([]string, 0, len(ports))
	for name := range ports {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return ports[names[i]] < ports[names[j]]
	})

	table := make(map[string][]SpeedEntry, len(ports))
	for _, name := range names {
		if err := c.drv.SetParam(c.handle, pvc.ParamReadoutPort, int64(ports[name])); err != nil {
			return nil, err
		}
		count, err := c.drv.GetParam(c.handle, pvc.ParamSpdtabIndex, pvc.AttrCount)
		if err != nil {
			return nil, err
		}

		entries := make([]SpeedEntry, 0, count)
		for i := int64(0); i < count; i++ {
			if err := c.drv.SetParam(c.handle, pvc.ParamSpdtabIndex, i); err != nil {
				return nil, err
			}
			pix, err := c.drv.GetParam(c.handle, pvc.ParamPixTime, pvc.AttrCurrent)
			if err != nil {
				return nil, err
			}
			depth, err := c.drv.GetParam(c.handle, pvc.ParamBitDepth, pvc.AttrCurrent)
			if err != nil {
				return nil, err
			}
			gainMin, err := c.drv.GetParam(c.handle, pvc.ParamGainIndex, pvc.AttrMin)
			if err != nil {
				return nil, err
			}
			gainMax, err := c.drv.GetParam(c.handle, pvc.ParamGainIndex, pvc.AttrMax)
			if err != nil {
				return nil, err
			}
			gainInc, err := c.drv.GetParam(c.handle, pvc.ParamGainIndex, pvc.AttrIncrement)
			if err != nil {
				return nil, err
			}
			entries = append(entries, SpeedEntry{
				Index:         int(i),
				PixTime:       pix,
				BitDepth:      depth,
				GainMin:       gainMin,
				GainMax:       gainMax,
				GainIncrement: gainInc,
			})
		}
		table[name] = entries
	}

	// Restore the canonical starting point
	if err := c.drv.SetParam(c.handle, pvc.ParamReadoutPort, 0); err != nil {
		return nil, err
	}
	if err := c.drv.SetParam(c.handle, pvc.ParamSpdtabIndex, 0); err != nil {
		return nil, err
	}
	return table, nil
}

// TriggerReport summarizes the timing of the most recent capture in
// display form, one formatted value per timing field. Fields the
// camera model does not report read "N/A".
func (c *Camera) TriggerReport() map[string]string {
	c.mu.Lock()
	defer c.mu.Unlock()

	report := map[string]string{
		"Exposure Time":      "N/A",
		"Readout Time":       "N/A",
		"Clear Time":         "N/A",
		"Pre-trigger Delay":  "N/A",
		"Post-trigger Delay": "N/A",
	}
	if !c.opened {
		return report
	}

	if c.drv.CheckParam(c.handle, pvc.ParamExposureTime) {
		if exp, err := c.drv.GetParam(c.handle, pvc.ParamExposureTime, pvc.AttrCurrent); err == nil {
			unit := "ms"
			if res, err := c.drv.GetParam(c.handle, pvc.ParamExpResIndex, pvc.AttrCurrent); err == nil &&
				int32(res) == pvc.ExpResOneMicrosec {
				unit = "us"
			}
			report["Exposure Time"] = fmt.Sprintf("%d %s", exp, unit)
		}
	}
	if c.drv.CheckParam(c.handle, pvc.ParamReadoutTime) {
		if v, err := c.drv.GetParam(c.handle, pvc.ParamReadoutTime, pvc.AttrCurrent); err == nil {
			report["Readout Time"] = fmt.Sprintf("%d us", v)
		}
	}
	if c.drv.CheckParam(c.handle, pvc.ParamClearingTime) {
		if v, err := c.drv.GetParam(c.handle, pvc.ParamClearingTime, pvc.AttrCurrent); err == nil {
			report["Clear Time"] = fmt.Sprintf("%d ns", v)
		}
	}
	if c.drv.CheckParam(c.handle, pvc.ParamPreTriggerDelay) {
		if v, err := c.drv.GetParam(c.handle, pvc.ParamPreTriggerDelay, pvc.AttrCurrent); err == nil {
			report["Pre-trigger Delay"] = fmt.Sprintf("%d ns", v)
		}
	}
	if c.drv.CheckParam(c.handle, pvc.ParamPostTriggerDelay) {
		if v, err := c.drv.GetParam(c.handle, pvc.ParamPostTriggerDelay, pvc.AttrCurrent); err == nil {
			report["Post-trigger Delay"] = fmt.Sprintf("%d ns", v)
		}
	}
	return report
}

// TriggerTimings carries the last-capture timing fields converted to
// seconds. Fields the camera does not report are -1.
type TriggerTimings struct {
	Exposure         float64 `json:"exposure"`
	Readout          float64 `json:"readout"`
	Clear            float64 `json:"clear"`
	PreTriggerDelay  float64 `json:"pre_trigger_delay"`
	PostTriggerDelay float64 `json:"post_trigger_delay"`
}

// TriggerTimings returns the most recent capture timing in seconds.
func (c *Camera) TriggerTimings() TriggerTimings {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := TriggerTimings{
		Exposure:         -1,
		Readout:          -1,
		Clear:            -1,
		PreTriggerDelay:  -1,
		PostTriggerDelay: -1,
	}
	if !c.opened {
		return t
	}

	if c.drv.CheckParam(c.handle, pvc.ParamExposureTime) {
		if exp, err := c.drv.GetParam(c.handle, pvc.ParamExposureTime, pvc.AttrCurrent); err == nil {
			scale := 1e-3
			if res, err := c.drv.GetParam(c.handle, pvc.ParamExpResIndex, pvc.AttrCurrent); err == nil &&
				int32(res) == pvc.ExpResOneMicrosec {
				scale = 1e-6
			}
			t.Exposure = float64(exp) * scale
		}
	}
	if c.drv.CheckParam(c.handle, pvc.ParamReadoutTime) {
		if v, err := c.drv.GetParam(c.handle, pvc.ParamReadoutTime, pvc.AttrCurrent); err == nil {
			t.Readout = float64(v) * 1e-6
		}
	}
	if c.drv.CheckParam(c.handle, pvc.ParamClearingTime) {
		if v, err := c.drv.GetParam(c.handle, pvc.ParamClearingTime, pvc.AttrCurrent); err == nil {
			t.Clear = float64(v) * 1e-9
		}
	}
	if c.drv.CheckParam(c.handle, pvc.ParamPreTriggerDelay) {
		if v, err := c.drv.GetParam(c.handle, pvc.ParamPreTriggerDelay, pvc.AttrCurrent); err == nil {
			t.PreTriggerDelay = float64(v) * 1e-9
		}
	}
	if c.drv.CheckParam(c.handle, pvc.ParamPostTriggerDelay) {
		if v, err := c.drv.GetParam(c.handle, pvc.ParamPostTriggerDelay, pvc.AttrCurrent); err == nil {
			t.PostTriggerDelay = float64(v) * 1e-9
		}
	}
	return t
}
