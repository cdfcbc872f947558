package pvc

// Handle identifies one open camera on the native driver. It is only
// valid between a successful Open and the matching Close.
type Handle int16

// InvalidHandle is the value a closed camera carries.
const InvalidHandle Handle = -1

// Region describes a readout window in the driver's native form:
// inclusive pixel bounds plus a binning factor on each axis. The
// serial axis is X, the parallel axis is Y.
type Region struct {
	S1   uint16
	S2   uint16
	SBin uint16
	P1   uint16
	P2   uint16
	PBin uint16
}

// Size returns the binned output dimensions of the region.
func (r Region) Size() (width, height int) {
	if r.SBin == 0 || r.PBin == 0 {
		return 0, 0
	}
	width = (int(r.S2) - int(r.S1) + 1) / int(r.SBin)
	height = (int(r.P2) - int(r.P1) + 1) / int(r.PBin)
	return width, height
}

// Driver is the native-layer contract for camera enumeration, parameter
// access and synchronous capture. All calls are blocking; GetFrame and
// GetSequence block for the full exposure plus readout. Returned pixel
// buffers are owned by the caller.
type Driver interface {
	// ListCameras returns the names of all cameras the driver sees,
	// in enumeration order.
	ListCameras() ([]string, error)

	// Open claims the named camera and returns its handle.
	Open(name string) (Handle, error)

	// Close releases the handle. The handle is invalid afterwards.
	Close(h Handle) error

	// GetParam reads one attribute of a numeric parameter.
	GetParam(h Handle, id ParamID, attr Attr) (int64, error)

	// GetParamStr reads one attribute of a string parameter.
	GetParamStr(h Handle, id ParamID, attr Attr) (string, error)

	// SetParam writes the current value of a parameter. The driver
	// rejects values that are illegal for the present device state.
	SetParam(h Handle, id ParamID, value int64) error

	// CheckParam reports whether the camera model exposes the
	// parameter at all. It never fails; an unreadable parameter is
	// simply unavailable.
	CheckParam(h Handle, id ParamID) bool

	// ReadEnum returns the name-to-value table of an enumerated
	// parameter as the device reports it.
	ReadEnum(h Handle, id ParamID) (map[string]int32, error)

	// ArmExposureMode programs the composed trigger mode by setting
	// up and immediately aborting a one-frame sequence, so that
	// subsequent parameter reads reflect the new mode.
	ArmExposureMode(h Handle, mode int32) error

	// GetFrame captures a single frame into a freshly allocated
	// buffer of region.Size() pixels.
	GetFrame(h Handle, rgn Region, expTime uint32, mode int32) ([]uint16, error)

	// GetSequence captures frameCount frames back to back into one
	// buffer, earliest frame first.
	GetSequence(h Handle, frameCount uint16, rgn Region, expTime uint32, mode int32) ([]uint16, error)

	// ResetPostProcessing restores all post-processing features to
	// factory defaults.
	ResetPostProcessing(h Handle) error
}
