package camera

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Sentinel errors for the camera package.
var (
	// ErrNotOpen indicates the camera has not been opened.
	ErrNotOpen = errors.New("camera: not open")

	// ErrAlreadyOpen indicates Open was called on an open camera.
	ErrAlreadyOpen = errors.New("camera: already open")

	// ErrInvalidValue indicates a setter argument outside the legal
	// set. The concrete error is an *InvalidValueError carrying the
	// legal values.
	ErrInvalidValue = errors.New("camera: invalid value")

	// ErrSessionConflict indicates an acquisition lifecycle call made
	// in a state that forbids it.
	ErrSessionConflict = errors.New("camera: acquisition session conflict")

	// ErrNoActiveSession indicates a lifecycle call made while no
	// acquisition session is running.
	ErrNoActiveSession = errors.New("camera: no active acquisition session")

	// ErrNoEngine indicates no stream engine factory was configured.
	ErrNoEngine = errors.New("camera: no stream engine factory configured")
)

// InvalidValueError reports a rejected setting together with the legal
// range or set, so callers can present the alternatives.
type InvalidValueError struct {
	// Setting is the name of the rejected setting.
	Setting string

	// Value is the rejected value.
	Value any

	// Legal describes the legal range or set.
	Legal string
}

// Error implements the error interface.
func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("camera: invalid %s %v, legal values: %s", e.Setting, e.Value, e.Legal)
}

// Unwrap makes the error match ErrInvalidValue.
func (e *InvalidValueError) Unwrap() error {
	return ErrInvalidValue
}

// IsInvalidValue returns true if the error reports a value outside the
// legal set.
func IsInvalidValue(err error) bool {
	return errors.Is(err, ErrInvalidValue)
}

// IsSessionConflict returns true if the error reports a forbidden
// acquisition lifecycle call.
func IsSessionConflict(err error) bool {
	return errors.Is(err, ErrSessionConflict)
}

// IsNoActiveSession returns true if the error reports a lifecycle call
// made while idle.
func IsNoActiveSession(err error) bool {
	return errors.Is(err, ErrNoActiveSession)
}

// legalSet renders an enumerated name-to-value table as a stable,
// value-ordered list for InvalidValueError diagnostics.
func legalSet(table map[string]int32) string {
	names := make([]string, 0, len(table))
	for name := range table {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if table[names[i]] != table[names[j]] {
			return table[names[i]] < table[names[j]]
		}
		return names[i] < names[j]
	})
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s (%d)", name, table[names[i]])
	}
	return strings.Join(parts, ", ")
}

// legalRange renders an inclusive numeric range.
func legalRange(min, max int64) string {
	return fmt.Sprintf("[%d, %d]", min, max)
}
