// Package output provides shared result serialization for snare output.
package output

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/farcloser/snare/internal/dsp"
	"github.com/farcloser/snare/internal/nominal"
	"github.com/farcloser/snare/internal/types"
)

// ResultToMap converts a measurement into the canonical map structure used for JSON serialization. Non-finite values
// are rendered as strings ("-Inf", "+Inf", "NaN").
func ResultToMap(result *types.MeasurementResult) map[string]any {
	meta := map[string]any{
		"kind":                string(result.Kind),
		"unit":                string(result.Unit),
		"calibrated":          result.Calibrated,
		"frequency_weighting": string(result.FrequencyWeighting),
		"x":                   Series(result.X),
		"y":                   Series(result.Y),
	}

	if result.TimeWeighting != "" {
		meta["time_weighting"] = string(result.TimeWeighting)
	}

	if result.NthOctave > 0 {
		meta["nth_octave"] = result.NthOctave
	}

	if result.Resolution > 0 {
		meta["resolution"] = result.Resolution
	}

	if result.Labels != nil {
		meta["labels"] = result.Labels
	}

	if result.Cumulative != nil {
		meta["cumulative"] = Series(result.Cumulative)
	}

	return meta
}

// Series converts values for serialization.
func Series(values []float64) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = Value(v)
	}

	return out
}

// Value returns v, or its string form when it is not finite.
func Value(v float64) any {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Sprint(v)
	}

	return v
}

// SummaryToMap builds the human friendly digest of a measurement.
func SummaryToMap(result *types.MeasurementResult) map[string]any {
	meta := map[string]any{
		"kind":      string(result.Kind),
		"weighting": weightingLabel(result),
	}

	switch result.Kind {
	case types.KindSPL:
		meta["levels"] = levelSummary(result)
	case types.KindHistogram:
		meta["exceedance"] = exceedance(result)
	case types.KindOctaveFFT:
		bands := make([]any, 0, len(result.X))
		for i, f := range result.X {
			bands = append(bands, fmt.Sprintf("%8s Hz  %7.1f %s", nominal.FormatFrequency(f), result.Y[i], result.Unit))
		}

		meta["bands"] = bands
	case types.KindExample:
		meta["samples"] = len(result.Y)
		meta["rms"] = dsp.RMS(result.Y)
	}

	return meta
}

func weightingLabel(result *types.MeasurementResult) string {
	label := string(result.FrequencyWeighting)
	if result.TimeWeighting != "" {
		label += " / " + string(result.TimeWeighting)
	}

	return label
}

func levelSummary(result *types.MeasurementResult) map[string]any {
	if len(result.Y) == 0 {
		return map[string]any{"samples": 0}
	}

	duration := 0.0
	if len(result.X) > 1 {
		duration = result.X[len(result.X)-1] + result.X[1]
	}

	return map[string]any{
		"samples":  len(result.Y),
		"duration": fmt.Sprintf("%.3f s", duration),
		"min":      formatLevel(floats.Min(result.Y), result.Unit),
		"max":      formatLevel(floats.Max(result.Y), result.Unit),
		"leq":      formatLevel(Leq(result.Y), result.Unit),
	}
}

// Leq is the energy average of a series of levels.
func Leq(levels []float64) float64 {
	if len(levels) == 0 {
		return math.Inf(-1)
	}

	energy := 0.0
	for _, l := range levels {
		energy += math.Pow(10, l/10)
	}

	return 10 * math.Log10(energy/float64(len(levels)))
}

// Exceedance returns the lowest level exceeded by at most percent of the samples: L10 for percent 10. It walks the
// cumulative occurrence curve of a histogram result.
func Exceedance(result *types.MeasurementResult, percent float64) float64 {
	if len(result.Cumulative) == 0 {
		return math.NaN()
	}

	for i, c := range result.Cumulative {
		if c >= 100-percent {
			return result.X[i]
		}
	}

	return result.X[len(result.X)-1]
}

func exceedance(result *types.MeasurementResult) map[string]any {
	out := map[string]any{}

	for _, p := range []float64{10, 50, 90} {
		out[fmt.Sprintf("L%.0f", p)] = formatLevel(Exceedance(result, p), result.Unit)
	}

	return out
}

func formatLevel(v float64, unit types.Unit) string {
	return fmt.Sprintf("%.1f %s", v, unit)
}
