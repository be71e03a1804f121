package types

import "errors"

var (
	// ErrSourceUnavailable is returned when a backing audio source cannot be opened or decoded.
	ErrSourceUnavailable = errors.New("source unavailable")
	// ErrUnsupportedParameter is returned for unknown weighting labels, octave fractions or kernels.
	ErrUnsupportedParameter = errors.New("unsupported parameter")
	// ErrMalformedSelection is returned when selection points do not alternate start and end.
	ErrMalformedSelection = errors.New("malformed selection")
	ErrUnknownChannel     = errors.New("unknown channel")
	ErrUnknownSelection   = errors.New("unknown selection")
	// ErrInvalidCalibration is returned for non-positive, non-finite or underivable calibration factors.
	ErrInvalidCalibration = errors.New("invalid calibration")
)
