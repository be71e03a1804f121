//nolint:staticcheck // too dumb on Db vs. DB
package types

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
)

type BitDepth uint

const (
	Depth16 BitDepth = 16
	Depth24 BitDepth = 24
)

// Bytes returns the sample width in bytes.
func (d BitDepth) Bytes() int {
	return int(d / 8) //nolint:gosec // audio format values are small constants
}

// DepthFromWidth maps a sample width in bytes (2 or 3) to a BitDepth.
func DepthFromWidth(width int) (BitDepth, error) {
	switch width {
	case 2:
		return Depth16, nil
	case 3:
		return Depth24, nil
	default:
		return 0, fmt.Errorf("%w: sample width %d (want 2 or 3)", ErrUnsupportedParameter, width)
	}
}

// PCMFormat is the process-wide audio configuration. It is fixed once at startup.
type PCMFormat struct {
	SampleRate int
	BitDepth   BitDepth
	// BlockSize is the number of samples per storage block.
	BlockSize int
}

// ChannelID is an opaque channel handle. Channels are compared by handle only.
type ChannelID uuid.UUID

// NewChannelID returns a fresh random handle.
func NewChannelID() ChannelID {
	return ChannelID(uuid.New())
}

func (id ChannelID) String() string {
	return uuid.UUID(id).String()
}

// Origin tells where the samples of a channel come from.
type Origin string

const (
	OriginFile      Origin = "File"
	OriginRecording Origin = "Recording"
)

// Channel describes one audio stream.
type Channel struct {
	ID     ChannelID
	Origin Origin
	Name   string
	// Length in samples.
	Length int64
	// Recording is set while samples are still being appended.
	Recording bool
}

// Tag marks a selection point as the start or the end of a range.
type Tag int

const (
	TagStart Tag = iota
	TagEnd
)

func (t Tag) String() string {
	if t == TagStart {
		return "start"
	}

	return "end"
}

// Range is a closed-open sample interval [Start, End).
type Range struct {
	Start int64
	End   int64
}

// Points maps sample indices to start/end tags. Read in ascending key order, tags alternate start, end, start...
type Points map[int64]Tag

// NewPoints builds Points from a list of ranges.
func NewPoints(ranges ...Range) Points {
	points := make(Points, len(ranges)*2)
	for _, r := range ranges {
		points[r.Start] = TagStart
		points[r.End] = TagEnd
	}

	return points
}

// Ranges walks the points in ascending order and pairs them up.
func (p Points) Ranges() ([]Range, error) {
	keys := make([]int64, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}

	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	if len(keys)%2 != 0 {
		return nil, fmt.Errorf("%w: odd number of points (%d)", ErrMalformedSelection, len(keys))
	}

	ranges := make([]Range, 0, len(keys)/2)

	for i := 0; i < len(keys); i += 2 {
		if p[keys[i]] != TagStart || p[keys[i+1]] != TagEnd {
			return nil, fmt.Errorf("%w: tags do not alternate at %d", ErrMalformedSelection, keys[i])
		}

		ranges = append(ranges, Range{Start: keys[i], End: keys[i+1]})
	}

	return ranges, nil
}

// Equal reports whether both mappings hold the same points.
func (p Points) Equal(other Points) bool {
	if len(p) != len(other) {
		return false
	}

	for k, v := range p {
		if w, ok := other[k]; !ok || w != v {
			return false
		}
	}

	return true
}

// Clone returns an independent copy.
func (p Points) Clone() Points {
	out := make(Points, len(p))
	for k, v := range p {
		out[k] = v
	}

	return out
}

// FrequencyWeighting is one of the IEC 61672-1 weighting curves.
type FrequencyWeighting string

const (
	WeightingA FrequencyWeighting = "A"
	WeightingB FrequencyWeighting = "B"
	WeightingC FrequencyWeighting = "C"
	WeightingZ FrequencyWeighting = "Z"
)

// Valid reports whether w is one of the four weighting curves.
func (w FrequencyWeighting) Valid() bool {
	switch w {
	case WeightingA, WeightingB, WeightingC, WeightingZ:
		return true
	default:
		return false
	}
}

// ParseFrequencyWeighting accepts a, b, c and z in any case.
func ParseFrequencyWeighting(raw string) (FrequencyWeighting, error) {
	if w := FrequencyWeighting(strings.ToUpper(strings.TrimSpace(raw))); w.Valid() {
		return w, nil
	}

	return "", fmt.Errorf("%w: frequency weighting %q", ErrUnsupportedParameter, raw)
}

// TimeWeighting is a sound level meter integration time.
type TimeWeighting string

const (
	TimeSlow    TimeWeighting = "slow"
	TimeFast    TimeWeighting = "fast"
	TimeImpulse TimeWeighting = "impulse"
)

func ParseTimeWeighting(raw string) (TimeWeighting, error) {
	switch w := TimeWeighting(strings.ToLower(strings.TrimSpace(raw))); w {
	case TimeSlow, TimeFast, TimeImpulse:
		return w, nil
	default:
		return "", fmt.Errorf("%w: time weighting %q", ErrUnsupportedParameter, raw)
	}
}

// Kind selects a measurement kernel.
type Kind string

const (
	KindSPL       Kind = "spl"
	KindHistogram Kind = "histogram"
	KindOctaveFFT Kind = "octave"
	KindExample   Kind = "example"
)

// Kinds lists every kernel, in display order.
func Kinds() []Kind {
	return []Kind{KindSPL, KindHistogram, KindOctaveFFT, KindExample}
}

func ParseKind(raw string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(raw)))
	for _, known := range Kinds() {
		if k == known {
			return k, nil
		}
	}

	return "", fmt.Errorf("%w: kernel %q", ErrUnsupportedParameter, raw)
}

// Unit of the Y axis of a measurement.
type Unit string

const (
	UnitDbFS  Unit = "dBFS"
	UnitDbSPL Unit = "dBSPL"
	// UnitLinear is used by kernels that do not convert to decibels.
	UnitLinear Unit = "linear"
)

/*
MeasurementResult is the output of one kernel run.

X and Y always have the same length. The remaining fields depend on the kernel:

| Kind      | X                         | Y                 | Labels          | Cumulative       |
|-----------|---------------------------|-------------------|-----------------|------------------|
| spl       | time in seconds           | level (dB)        | -               | -                |
| histogram | level bin lower edge (dB) | occurrence (%)    | -               | running sum (%)  |
| octave    | nominal center freq (Hz)  | band level (dB)   | tick labels     | -                |
| example   | time in seconds           | weighted samples  | -               | -                |

Calibrated tells which decibel scale was used: dBSPL when true, dBFS otherwise.
*/
type MeasurementResult struct {
	Kind               Kind
	X                  []float64
	Y                  []float64
	Labels             []string
	Cumulative         []float64
	Calibrated         bool
	Unit               Unit
	FrequencyWeighting FrequencyWeighting
	TimeWeighting      TimeWeighting
	NthOctave          int
	Resolution         float64
}
