package snare

import (
	"github.com/farcloser/snare/internal/dsp"
	"github.com/farcloser/snare/internal/inspect"
	"github.com/farcloser/snare/internal/types"
)

type (
	Channel            = types.Channel
	ChannelID          = types.ChannelID
	Points             = types.Points
	Range              = types.Range
	PCMFormat          = types.PCMFormat
	Kind               = types.Kind
	FrequencyWeighting = types.FrequencyWeighting
	TimeWeighting      = types.TimeWeighting
	MeasurementResult  = types.MeasurementResult
	Health             = inspect.Health
)

//nolint:gochecknoglobals // re-exported sentinels
var (
	ErrSourceUnavailable    = types.ErrSourceUnavailable
	ErrUnsupportedParameter = types.ErrUnsupportedParameter
	ErrMalformedSelection   = types.ErrMalformedSelection
	ErrUnknownChannel       = types.ErrUnknownChannel
	ErrUnknownSelection     = types.ErrUnknownSelection
	ErrInvalidCalibration   = types.ErrInvalidCalibration
)

// Options configures one analysis.
type Options struct {
	// FrequencyWeighting is applied to every kernel (default: A).
	FrequencyWeighting FrequencyWeighting

	// TimeWeighting is used by the level kernels (default: slow).
	TimeWeighting TimeWeighting

	// NthOctave is the band fraction of the octave kernel: 1, 3, 6, 12 or 24 (default: 3).
	NthOctave int

	// Resolution is the number of histogram bins per dB (default: 10).
	Resolution float64

	// SettleSamples of history preceding the selection are run through the filters and discarded (default: 0).
	SettleSamples int
}

// DefaultOptions returns the settings of a class 1 sound level meter in its usual configuration.
func DefaultOptions() Options {
	return Options{
		FrequencyWeighting: types.WeightingA,
		TimeWeighting:      types.TimeSlow,
		NthOctave:          3,
		Resolution:         10,
	}
}

// ReferenceDb is the level of a standard acoustic calibrator.
const ReferenceDb = dsp.ReferenceDb
