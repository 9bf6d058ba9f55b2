package calibration

import "errors"

var (
	// ErrInvalidProfile is returned when baseline values are NaN, infinite or
	// out of range.
	ErrInvalidProfile = errors.New("invalid calibration profile")
)
