package camera

import (
	"errors"
	"strings"
	"testing"

	"github.com/sgctrl/go-pvcam/pkg/pvc"
)

func TestCamera_ExposureTime(t *testing.T) {
	cam, _ := newTestCamera(t)

	if got := cam.ExposureTime(); got != 0 {
		t.Errorf("initial exposure: got %d, want 0", got)
	}
	if err := cam.SetExposureTime(250); err != nil {
		t.Fatalf("SetExposureTime: %v", err)
	}
	if got := cam.ExposureTime(); got != 250 {
		t.Errorf("exposure: got %d, want 250", got)
	}

	err := cam.SetExposureTime(20000)
	if !IsInvalidValue(err) {
		t.Fatalf("SetExposureTime(20000): got %v, want invalid value", err)
	}
	var ive *InvalidValueError
	if errors.As(err, &ive) && ive.Legal != "[0, 10000]" {
		t.Errorf("legal range: got %q, want [0, 10000]", ive.Legal)
	}
	if got := cam.ExposureTime(); got != 250 {
		t.Errorf("exposure after rejection: got %d, want 250", got)
	}
}

func TestCamera_VTMExpTime(t *testing.T) {
	cam, _ := newTestCamera(t)

	if err := cam.SetVTMExpTime(100); err != nil {
		t.Fatalf("SetVTMExpTime: %v", err)
	}
	v, err := cam.VTMExpTime()
	if err != nil {
		t.Fatalf("VTMExpTime: %v", err)
	}
	if v != 100 {
		t.Errorf("vtm exposure: got %d, want 100", v)
	}

	if err := cam.SetVTMExpTime(70000); !IsInvalidValue(err) {
		t.Errorf("SetVTMExpTime(70000): got %v, want invalid value", err)
	}
	if err := cam.SetVTMExpTime(-1); !IsInvalidValue(err) {
		t.Errorf("SetVTMExpTime(-1): got %v, want invalid value", err)
	}
}

func TestCamera_Gain(t *testing.T) {
	cam, _ := newTestCamera(t)

	g, err := cam.Gain()
	if err != nil {
		t.Fatalf("Gain: %v", err)
	}
	if g != 1 {
		t.Errorf("initial gain: got %d, want 1", g)
	}
	max, err := cam.MaxGain()
	if err != nil {
		t.Fatalf("MaxGain: %v", err)
	}
	if max != 3 {
		t.Errorf("max gain: got %d, want 3", max)
	}

	if err := cam.SetGain(3); err != nil {
		t.Fatalf("SetGain(3): %v", err)
	}
	if err := cam.SetGain(4); !IsInvalidValue(err) {
		t.Errorf("SetGain(4): got %v, want invalid value", err)
	}
	if err := cam.SetGain(0); !IsInvalidValue(err) {
		t.Errorf("SetGain(0): got %v, want invalid value", err)
	}
}

func TestCamera_SpeedSelection(t *testing.T) {
	cam, _ := newTestCamera(t)

	// Port 0 speed 1 is the low-noise 12-bit readout
	if err := cam.SetSpeedTableIndex(1); err != nil {
		t.Fatalf("SetSpeedTableIndex: %v", err)
	}
	if pt, _ := cam.PixTime(); pt != 5 {
		t.Errorf("pix time: got %d, want 5", pt)
	}
	if bd, _ := cam.BitDepth(); bd != 12 {
		t.Errorf("bit depth: got %d, want 12", bd)
	}
	if max, _ := cam.MaxGain(); max != 2 {
		t.Errorf("max gain at speed 1: got %d, want 2", max)
	}

	if err := cam.SetSpeedTableIndex(5); !IsInvalidValue(err) {
		t.Errorf("SetSpeedTableIndex(5): got %v, want invalid value", err)
	}
}

func TestCamera_SpeedChangeClampsGain(t *testing.T) {
	cam, _ := newTestCamera(t)

	if err := cam.SetGain(3); err != nil {
		t.Fatalf("SetGain: %v", err)
	}
	if err := cam.SetSpeedTableIndex(1); err != nil {
		t.Fatalf("SetSpeedTableIndex: %v", err)
	}
	g, err := cam.Gain()
	if err != nil {
		t.Fatalf("Gain: %v", err)
	}
	if g != 2 {
		t.Errorf("gain after speed change: got %d, want clamped 2", g)
	}
}

func TestCamera_ReadoutPort(t *testing.T) {
	cam, _ := newTestCamera(t)

	if err := cam.SetReadoutPort(1); err != nil {
		t.Fatalf("SetReadoutPort: %v", err)
	}
	port, err := cam.ReadoutPort()
	if err != nil {
		t.Fatalf("ReadoutPort: %v", err)
	}
	if port != 1 {
		t.Errorf("port: got %d, want 1", port)
	}

	// Switching ports resets the speed index and its derived readings
	if idx, _ := cam.SpeedTableIndex(); idx != 0 {
		t.Errorf("speed index after port switch: got %d, want 0", idx)
	}
	if pt, _ := cam.PixTime(); pt != 20 {
		t.Errorf("pix time on port 1: got %d, want 20", pt)
	}

	// Port 1 has a single speed
	if err := cam.SetSpeedTableIndex(1); !IsInvalidValue(err) {
		t.Errorf("SetSpeedTableIndex(1): got %v, want invalid value", err)
	}
	if err := cam.SetReadoutPort(2); !IsInvalidValue(err) {
		t.Errorf("SetReadoutPort(2): got %v, want invalid value", err)
	}
}

func TestCamera_ClearMode(t *testing.T) {
	cam, _ := newTestCamera(t)

	mode, err := cam.ClearMode()
	if err != nil {
		t.Fatalf("ClearMode: %v", err)
	}
	if mode != pvc.ClearPreSequence {
		t.Errorf("initial clear mode: got %d, want %d", mode, pvc.ClearPreSequence)
	}

	if err := cam.SetClearMode("Pre-Exposure"); err != nil {
		t.Fatalf("SetClearMode: %v", err)
	}
	mode, err = cam.ClearMode()
	if err != nil {
		t.Fatalf("ClearMode: %v", err)
	}
	if mode != pvc.ClearPreExposure {
		t.Errorf("clear mode: got %d, want %d", mode, pvc.ClearPreExposure)
	}

	if err := cam.SetClearMode("Sometimes"); !IsInvalidValue(err) {
		t.Errorf("SetClearMode(Sometimes): got %v, want invalid value", err)
	}
}

func TestCamera_Temperature(t *testing.T) {
	cam, _ := newTestCamera(t)

	temp, err := cam.Temp()
	if err != nil {
		t.Fatalf("Temp: %v", err)
	}
	if !floatEquals(temp, -19.96) {
		t.Errorf("temp: got %v, want -19.96", temp)
	}

	sp, err := cam.TempSetpoint()
	if err != nil {
		t.Fatalf("TempSetpoint: %v", err)
	}
	if !floatEquals(sp, -20.0) {
		t.Errorf("setpoint: got %v, want -20", sp)
	}
}

func TestCamera_SetTempSetpoint(t *testing.T) {
	cam, _ := newTestCamera(t)

	if err := cam.SetTempSetpoint(-25.5); err != nil {
		t.Fatalf("SetTempSetpoint: %v", err)
	}
	sp, err := cam.TempSetpoint()
	if err != nil {
		t.Fatalf("TempSetpoint: %v", err)
	}
	if !floatEquals(sp, -25.5) {
		t.Errorf("setpoint: got %v, want -25.5", sp)
	}

	err = cam.SetTempSetpoint(-90)
	if !IsInvalidValue(err) {
		t.Fatalf("SetTempSetpoint(-90): got %v, want invalid value", err)
	}
	var ive *InvalidValueError
	if !errors.As(err, &ive) {
		t.Fatalf("error type: got %T", err)
	}
	if !strings.Contains(ive.Legal, "[-80, 15] degrees C") {
		t.Errorf("legal range: got %q", ive.Legal)
	}
	// The rejected write leaves the setpoint alone
	if sp, _ := cam.TempSetpoint(); !floatEquals(sp, -25.5) {
		t.Errorf("setpoint after rejection: got %v, want -25.5", sp)
	}
}

func TestCamera_TimingReadbacks(t *testing.T) {
	cam, _ := newTestCamera(t)

	if v, err := cam.ReadoutTime(); err != nil || v != 11240 {
		t.Errorf("ReadoutTime: got %d, %v, want 11240", v, err)
	}
	if v, err := cam.ClearTime(); err != nil || v != 13000 {
		t.Errorf("ClearTime: got %d, %v, want 13000", v, err)
	}
	if v, err := cam.PreTriggerDelay(); err != nil || v != 120 {
		t.Errorf("PreTriggerDelay: got %d, %v, want 120", v, err)
	}
	if v, err := cam.PostTriggerDelay(); err != nil || v != 150 {
		t.Errorf("PostTriggerDelay: got %d, %v, want 150", v, err)
	}
}

func TestCamera_ExposureResolution(t *testing.T) {
	cam, _ := newTestCamera(t)

	res, err := cam.ExposureResolution()
	if err != nil {
		t.Fatalf("ExposureResolution: %v", err)
	}
	if res != pvc.ExpResOneMillisec {
		t.Errorf("initial resolution: got %d, want %d", res, pvc.ExpResOneMillisec)
	}

	if err := cam.SetExposureResolution("One Microsecond"); err != nil {
		t.Fatalf("SetExposureResolution: %v", err)
	}
	res, err = cam.ExposureResolution()
	if err != nil {
		t.Fatalf("ExposureResolution: %v", err)
	}
	if res != pvc.ExpResOneMicrosec {
		t.Errorf("resolution: got %d, want %d", res, pvc.ExpResOneMicrosec)
	}
	idx, err := cam.ExposureResIndex()
	if err != nil {
		t.Fatalf("ExposureResIndex: %v", err)
	}
	if idx != pvc.ExpResOneMicrosec {
		t.Errorf("resolution index: got %d, want %d", idx, pvc.ExpResOneMicrosec)
	}

	if err := cam.SetExposureResolution("One Nanosecond"); !IsInvalidValue(err) {
		t.Errorf("SetExposureResolution(One Nanosecond): got %v, want invalid value", err)
	}
}

func TestCamera_PostProcessingTable(t *testing.T) {
	cam, _ := newTestCamera(t)

	table, err := cam.PostProcessingTable()
	if err != nil {
		t.Fatalf("PostProcessingTable: %v", err)
	}
	if len(table) != 2 {
		t.Fatalf("features: got %d, want 2", len(table))
	}

	dn, ok := table["DENOISING"]
	if !ok {
		t.Fatalf("DENOISING feature missing: %v", table)
	}
	if got := dn["ENABLED"]; got != (PPParam{Value: 1, Min: 0, Max: 1}) {
		t.Errorf("DENOISING ENABLED: got %+v", got)
	}
	if got := dn["STRENGTH"]; got != (PPParam{Value: 2, Min: 0, Max: 10}) {
		t.Errorf("DENOISING STRENGTH: got %+v", got)
	}
	ds, ok := table["DESPECKLE BRIGHT LOW"]
	if !ok {
		t.Fatalf("DESPECKLE BRIGHT LOW feature missing: %v", table)
	}
	if got := ds["ENABLED"]; got != (PPParam{Value: 0, Min: 0, Max: 1}) {
		t.Errorf("DESPECKLE ENABLED: got %+v", got)
	}

	// The walk restores the device's feature and parameter indices
	if fi, _ := cam.CurrentParam(pvc.ParamPPIndex); fi != 0 {
		t.Errorf("feature index after walk: got %d, want 0", fi)
	}
	if pi, _ := cam.CurrentParam(pvc.ParamPPParamIndex); pi != 0 {
		t.Errorf("param index after walk: got %d, want 0", pi)
	}
}

func TestCamera_PostProcessingUnsupported(t *testing.T) {
	cam, _ := newTestCamera(t, pvc.WithoutParam(pvc.ParamPPIndex))

	_, err := cam.PostProcessingTable()
	if !pvc.IsUnsupported(err) {
		t.Errorf("PostProcessingTable: got %v, want unsupported", err)
	}
}

func TestCamera_ResetPostProcessing(t *testing.T) {
	cam, drv := newTestCamera(t)

	// Nudge a parameter off its default through the driver
	h := cam.Handle()
	if err := drv.SetParam(h, pvc.ParamPPParamIndex, 1); err != nil {
		t.Fatalf("select strength: %v", err)
	}
	if err := drv.SetParam(h, pvc.ParamPPParam, 7); err != nil {
		t.Fatalf("set strength: %v", err)
	}

	if err := cam.ResetPostProcessing(); err != nil {
		t.Fatalf("ResetPostProcessing: %v", err)
	}
	v, err := drv.GetParam(h, pvc.ParamPPParam, pvc.AttrCurrent)
	if err != nil {
		t.Fatalf("GetParam: %v", err)
	}
	if v != 2 {
		t.Errorf("strength after reset: got %d, want default 2", v)
	}
}
