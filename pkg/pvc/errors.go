package pvc

import (
	"errors"
	"fmt"
)

// Sentinel errors for the pvc package.
var (
	// ErrCameraNotFound indicates the named camera is not present.
	ErrCameraNotFound = errors.New("pvc: camera not found")

	// ErrInvalidHandle indicates a call on a closed or stale handle.
	ErrInvalidHandle = errors.New("pvc: invalid camera handle")

	// ErrUnsupported indicates a parameter the camera model does not
	// expose. Distinct from a driver rejection: the parameter simply
	// does not exist on this hardware.
	ErrUnsupported = errors.New("pvc: parameter not supported by this camera")

	// ErrNotAttached indicates the engine has no camera bound.
	ErrNotAttached = errors.New("pvc: engine not attached to a camera")

	// ErrNotConfigured indicates Start was called before a Configure.
	ErrNotConfigured = errors.New("pvc: engine not configured")

	// ErrAlreadyRunning indicates a Configure or Start during a run.
	ErrAlreadyRunning = errors.New("pvc: engine run already in progress")

	// ErrAborted is returned by Join when the run was cut short.
	ErrAborted = errors.New("pvc: acquisition aborted")

	// ErrNoFrame indicates LastFrame was called before any frame was
	// latched.
	ErrNoFrame = errors.New("pvc: no frame latched yet")
)

// UnsupportedError reports an access to a parameter the camera model
// does not expose. It unwraps to ErrUnsupported.
type UnsupportedError struct {
	// Param is the parameter that was accessed.
	Param ParamID
}

// Error implements the error interface.
func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("pvc: parameter %#x not supported by this camera", uint32(e.Param))
}

// Unwrap links the error to ErrUnsupported for errors.Is checks.
func (e *UnsupportedError) Unwrap() error {
	return ErrUnsupported
}

// DriverError reports an operation the native driver refused for a
// reason opaque to this layer (hardware busy, illegal value for the
// present device state, and so on). It is surfaced as-is and never
// retried.
type DriverError struct {
	// Op is the operation that failed, e.g. "set_param".
	Op string

	// Param is the parameter involved, if any.
	Param ParamID

	// Code is the native error code, if known.
	Code int

	// Message is the driver-supplied text.
	Message string
}

// Error implements the error interface.
func (e *DriverError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("pvc: %s failed: %s (code %d)", e.Op, e.Message, e.Code)
	}
	return fmt.Sprintf("pvc: %s failed: %s", e.Op, e.Message)
}

// Unwrap returns nil as DriverError is a leaf error.
func (e *DriverError) Unwrap() error {
	return nil
}

// Error checking helpers.

// IsUnsupported returns true if the error indicates a parameter the
// camera model does not expose.
func IsUnsupported(err error) bool {
	return errors.Is(err, ErrUnsupported)
}

// IsDriverRejection returns true if the error is a native driver
// refusal rather than a capability gap or a local validation failure.
func IsDriverRejection(err error) bool {
	var drvErr *DriverError
	return errors.As(err, &drvErr)
}

// IsAborted returns true if the error reports a user-aborted run.
func IsAborted(err error) bool {
	return errors.Is(err, ErrAborted)
}
