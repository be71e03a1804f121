package nominal

import (
	"fmt"
	"math"
	"strconv"

	"github.com/farcloser/snare/internal/types"
)

// BandsPerOctave is the resolution of the band index space: band 0 is 1 kHz and 24 consecutive bands span one octave
// (80 bands span one decade).
const BandsPerOctave = 24

const bandsPerDecade = 80

// Table is the band range plotted for one octave fraction.
type Table struct {
	// Start and Final are inclusive band indices.
	Start int
	Final int
	// EveryNth is the label stride used on crowded axes.
	EveryNth int
}

//nolint:gochecknoglobals // reference data, effectively const
var tables = map[int]Table{
	1:  {Start: -120, Final: 96, EveryNth: 1},  // 31.5 Hz .. 16 kHz
	3:  {Start: -128, Final: 96, EveryNth: 1},  // 25 Hz .. 16 kHz
	6:  {Start: -136, Final: 104, EveryNth: 2}, // 20 Hz .. 20 kHz
	12: {Start: -160, Final: 104, EveryNth: 4}, // 10 Hz .. 20 kHz
	24: {Start: -160, Final: 104, EveryNth: 8}, // 10 Hz .. 20 kHz
}

// r80 holds the R80 preferred-number mantissas, in hundredths, for one decade.
//
//nolint:gochecknoglobals // reference data, effectively const
var r80 = [bandsPerDecade]int{
	100, 103, 106, 109, 112, 115, 118, 122, 125, 128,
	132, 136, 140, 145, 150, 155, 160, 165, 170, 175,
	180, 185, 190, 195, 200, 206, 212, 218, 224, 230,
	236, 243, 250, 258, 265, 272, 280, 290, 300, 307,
	315, 325, 335, 345, 355, 365, 375, 387, 400, 412,
	425, 437, 450, 462, 475, 487, 500, 515, 530, 545,
	560, 580, 600, 615, 630, 650, 670, 690, 710, 730,
	750, 775, 800, 825, 850, 875, 900, 925, 950, 975,
}

// Bands returns the band table for an octave fraction (1, 3, 6, 12 or 24).
func Bands(nthOctave int) (Table, error) {
	t, ok := tables[nthOctave]
	if !ok {
		return Table{}, fmt.Errorf("%w: %d is not a supported octave fraction", types.ErrUnsupportedParameter, nthOctave)
	}

	return t, nil
}

// Step is the distance in band indices between two consecutive bands of an octave fraction.
func Step(nthOctave int) int {
	return BandsPerOctave / nthOctave
}

// Frequency returns the nominal (rounded) center frequency of a band index.
func Frequency(band int) float64 {
	idx := band % bandsPerDecade
	decade := band / bandsPerDecade

	if idx < 0 {
		idx += bandsPerDecade
		decade--
	}

	mantissa := float64(r80[idx])

	// mantissa is in hundredths, band 0 sits in the 10^3 decade.
	exp := decade + 1
	if exp >= 0 {
		return mantissa * math.Pow10(exp)
	}

	return mantissa / math.Pow10(-exp)
}

// Frequencies returns the nominal center frequencies from startBand up to the final band of the octave fraction's
// table, one per band. labels carries the same values formatted for display, with all but every onlyNth entry
// blanked. Both are index aligned with the band levels computed over the same range.
func Frequencies(nthOctave, startBand, onlyNth int) ([]float64, []string, error) {
	table, err := Bands(nthOctave)
	if err != nil {
		return nil, nil, err
	}

	if onlyNth < 1 {
		onlyNth = 1
	}

	var (
		full   []float64
		labels []string
	)

	for band := startBand; band <= table.Final; band += Step(nthOctave) {
		f := Frequency(band)
		full = append(full, f)

		if len(labels)%onlyNth == 0 {
			labels = append(labels, FormatFrequency(f))
		} else {
			labels = append(labels, "")
		}
	}

	return full, labels, nil
}

// FormatFrequency renders a nominal frequency the way it is printed on axis ticks (31.5, 1000, 16000).
func FormatFrequency(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// CenterExact returns the exact (base ten) center frequency of a band.
func CenterExact(band, nthOctave int) float64 {
	if nthOctave%2 != 0 {
		return math.Pow(10, 3.0/10*float64(band)/24+3)
	}

	return math.Pow(10, 3.0/10*2*float64(band)/(2*24)+3)
}

// Edges returns the exact lower and upper edge frequencies of a band centered at center.
func Edges(center float64, nthOctave int) (float64, float64) {
	ratio := math.Pow(2, 1/(2*float64(nthOctave)))

	return center / ratio, center * ratio
}
