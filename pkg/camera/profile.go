package camera

import (
	"fmt"
	"strings"

	"github.com/sgctrl/go-pvcam/pkg/pvc"
)

// Profile is a declarative settings bundle that can be applied to an
// open camera in one call. Zero values leave the corresponding setting
// unchanged; ReadoutPort and SpeedIndex use -1 because 0 is a valid
// index for both.
type Profile struct {
	// === Exposure ===
	// ExposureTime in units of the exposure resolution. 0 = unchanged.
	ExposureTime int `json:"exposure_time"`

	// ExposureRes is a pvc.ExpResolutions name. "" = unchanged.
	ExposureRes string `json:"exposure_resolution"`

	// === Trigger modes ===
	// ExposureMode is a pvc.ExpModes name. "" = unchanged.
	ExposureMode string `json:"exposure_mode"`

	// ExposeOutMode is a pvc.ExpOutModes name. "" = unchanged.
	ExposeOutMode string `json:"expose_out_mode"`

	// ClearMode is a pvc.ClearModes name. "" = unchanged.
	ClearMode string `json:"clear_mode"`

	// === Geometry ===
	// BinX/BinY binning factors. 0 = unchanged.
	BinX int `json:"bin_x"`
	BinY int `json:"bin_y"`

	// FullSensor resets the ROI to the full sensor.
	FullSensor bool `json:"full_sensor"`

	// CenterFraction selects a centered window covering this fraction
	// of the sensor per axis (0 < f <= 1). 0 = unchanged.
	CenterFraction float64 `json:"center_fraction"`

	// === Readout ===
	// ReadoutPort index. -1 = unchanged.
	ReadoutPort int `json:"readout_port"`

	// SpeedIndex within the readout port. -1 = unchanged.
	SpeedIndex int `json:"speed_index"`

	// Gain index. 0 = unchanged.
	Gain int `json:"gain"`

	// === Cooling ===
	// TempSetpoint in degrees Celsius. nil = unchanged.
	TempSetpoint *float64 `json:"temp_setpoint,omitempty"`
}

// Preset names for common configurations.
const (
	PresetFullFrame   = "full-frame"
	PresetHalfFrame   = "half-frame"
	PresetQuadBin     = "quad-bin"
	PresetFastReadout = "fast-readout"
	PresetLowNoise    = "low-noise"
)

// DefaultProfile returns the canonical starting configuration:
// full sensor, no binning, internal trigger, 10 ms exposures.
func DefaultProfile() Profile {
	return Profile{
		ExposureTime:  10,
		ExposureRes:   "One Millisecond",
		ExposureMode:  "Internal Trigger",
		ExposeOutMode: "First Row",
		ClearMode:     "Pre-Sequence",
		BinX:          1,
		BinY:          1,
		FullSensor:    true,
		ReadoutPort:   0,
		SpeedIndex:    0,
		Gain:          1,
	}
}

// HalfFrameProfile reads a centered window covering half the sensor
// on each axis.
func HalfFrameProfile() Profile {
	p := DefaultProfile()
	p.FullSensor = false
	p.CenterFraction = 0.5
	return p
}

// QuadBinProfile trades resolution for signal with 4x4 binning.
func QuadBinProfile() Profile {
	p := DefaultProfile()
	p.BinX = 4
	p.BinY = 4
	return p
}

// FastReadoutProfile selects the fastest readout speed of the default
// port, at reduced bit depth.
func FastReadoutProfile() Profile {
	p := DefaultProfile()
	p.SpeedIndex = 1
	return p
}

// LowNoiseProfile favors clean frames: slowest readout, unity gain,
// pre-exposure clearing and deep cooling.
func LowNoiseProfile() Profile {
	p := DefaultProfile()
	p.ClearMode = "Pre-Exposure"
	setpoint := -25.0
	p.TempSetpoint = &setpoint
	return p
}

// Presets returns all named profiles.
func Presets() map[string]Profile {
	return map[string]Profile{
		PresetFullFrame:   DefaultProfile(),
		PresetHalfFrame:   HalfFrameProfile(),
		PresetQuadBin:     QuadBinProfile(),
		PresetFastReadout: FastReadoutProfile(),
		PresetLowNoise:    LowNoiseProfile(),
	}
}

// PresetNames returns the list of available preset names.
func PresetNames() []string {
	return []string{
		PresetFullFrame,
		PresetHalfFrame,
		PresetQuadBin,
		PresetFastReadout,
		PresetLowNoise,
	}
}

// GetPreset returns a preset profile by name, or nil if not found.
func GetPreset(name string) *Profile {
	presets := Presets()
	if p, ok := presets[name]; ok {
		return &p
	}
	return nil
}

// Validate checks the profile values that can be judged without a
// device. Returns a list of problems, or nil if valid.
func (p *Profile) Validate() []string {
	var problems []string

	if p.ExposureTime < 0 {
		problems = append(problems, "exposure_time must not be negative")
	}
	if p.ExposureRes != "" {
		if _, ok := pvc.ExpResolutions[p.ExposureRes]; !ok {
			problems = append(problems, "exposure_resolution must be one of: "+legalSet(pvc.ExpResolutions))
		}
	}
	if p.ExposureMode != "" {
		if _, ok := pvc.ExpModes[p.ExposureMode]; !ok {
			problems = append(problems, "exposure_mode must be one of: "+legalSet(pvc.ExpModes))
		}
	}
	if p.ExposeOutMode != "" {
		if _, ok := pvc.ExpOutModes[p.ExposeOutMode]; !ok {
			problems = append(problems, "expose_out_mode must be one of: "+legalSet(pvc.ExpOutModes))
		}
	}
	if p.ClearMode != "" {
		if _, ok := pvc.ClearModes[p.ClearMode]; !ok {
			problems = append(problems, "clear_mode must be one of: "+legalSet(pvc.ClearModes))
		}
	}
	if p.BinX < 0 || p.BinY < 0 {
		problems = append(problems, "binning factors must not be negative")
	}
	if p.CenterFraction < 0 || p.CenterFraction > 1 {
		problems = append(problems, "center_fraction must be within (0, 1]")
	}
	if p.FullSensor && p.CenterFraction > 0 {
		problems = append(problems, "full_sensor and center_fraction are mutually exclusive")
	}
	if p.ReadoutPort < -1 {
		problems = append(problems, "readout_port must be -1 (unchanged) or a port index")
	}
	if p.SpeedIndex < -1 {
		problems = append(problems, "speed_index must be -1 (unchanged) or a speed index")
	}
	if p.Gain < 0 {
		problems = append(problems, "gain must not be negative")
	}

	return problems
}

// Apply programs the profile onto an open camera in dependency order:
// readout port, speed, gain, geometry, trigger modes, exposure,
// cooling. The first failure aborts the remainder; settings already
// applied stay applied.
func (c *Camera) Apply(p Profile) error {
	if problems := p.Validate(); len(problems) > 0 {
		return &InvalidValueError{
			Setting: "profile",
			Value:   fmt.Sprintf("%d invalid fields", len(problems)),
			Legal:   strings.Join(problems, "; "),
		}
	}

	if p.ReadoutPort >= 0 {
		if err := c.SetReadoutPort(p.ReadoutPort); err != nil {
			return err
		}
	}
	if p.SpeedIndex >= 0 {
		if err := c.SetSpeedTableIndex(p.SpeedIndex); err != nil {
			return err
		}
	}
	if p.Gain > 0 {
		if err := c.SetGain(p.Gain); err != nil {
			return err
		}
	}

	switch {
	case p.BinX > 0 && p.BinY > 0:
		if err := c.SetBinning(p.BinX, p.BinY); err != nil {
			return err
		}
	case p.BinX > 0:
		if err := c.SetBinningX(p.BinX); err != nil {
			return err
		}
	case p.BinY > 0:
		if err := c.SetBinningY(p.BinY); err != nil {
			return err
		}
	}

	if p.FullSensor {
		w, h := c.SensorSize()
		if err := c.SetROI(0, w, 0, h); err != nil {
			return err
		}
	} else if p.CenterFraction > 0 {
		if err := c.applyCenterWindow(p.CenterFraction); err != nil {
			return err
		}
	}

	if p.ExposureMode != "" {
		if err := c.SetExposureMode(p.ExposureMode); err != nil {
			return err
		}
	}
	if p.ExposeOutMode != "" {
		if err := c.SetExposeOutMode(p.ExposeOutMode); err != nil {
			return err
		}
	}
	if p.ClearMode != "" {
		if err := c.SetClearMode(p.ClearMode); err != nil {
			return err
		}
	}

	if p.ExposureRes != "" {
		if err := c.SetExposureResolution(p.ExposureRes); err != nil {
			return err
		}
	}
	if p.ExposureTime > 0 {
		if err := c.SetExposureTime(uint32(p.ExposureTime)); err != nil {
			return err
		}
	}

	if p.TempSetpoint != nil {
		if err := c.SetTempSetpoint(*p.TempSetpoint); err != nil {
			return err
		}
	}

	return nil
}

// applyCenterWindow sets a centered ROI covering the given fraction of
// the sensor per axis.
func (c *Camera) applyCenterWindow(fraction float64) error {
	w, h := c.SensorSize()
	rw := int(float64(w) * fraction)
	rh := int(float64(h) * fraction)
	if rw < 1 {
		rw = 1
	}
	if rh < 1 {
		rh = 1
	}
	x0 := (w - rw) / 2
	y0 := (h - rh) / 2
	return c.SetROI(x0, x0+rw, y0, y0+rh)
}
