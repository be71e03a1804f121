package kernel

import (
	"context"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/farcloser/snare/internal/dsp"
	"github.com/farcloser/snare/internal/types"
)

// silenceFloor stands in for -Inf levels (exact digital silence in dBFS). It is the smallest normal float64.
const silenceFloor = 0x1p-1022

// Histogram computes the probability of occurrence of each level, in bins of 1/Resolution dB, plus the running
// cumulative percentage.
type Histogram struct{}

func (Histogram) Kind() types.Kind {
	return types.KindHistogram
}

func (Histogram) Run(ctx context.Context, buffer []float64, params Params) (*types.MeasurementResult, error) {
	if err := validate(params, true, true); err != nil {
		return nil, err
	}

	if params.Resolution <= 0 || math.IsNaN(params.Resolution) || math.IsInf(params.Resolution, 0) {
		return nil, fmt.Errorf("%w: histogram resolution %v", types.ErrUnsupportedParameter, params.Resolution)
	}

	db, err := levels(ctx, buffer, params)
	if err != nil {
		return nil, err
	}

	res := result(types.KindHistogram, params)
	res.Resolution = params.Resolution

	if len(db) == 0 {
		res.X, res.Y, res.Cumulative = []float64{}, []float64{}, []float64{}

		return res, nil
	}

	res.X, res.Y, res.Cumulative = occurrences(db, params.Resolution)

	return res, nil
}

// occurrences bins the levels (modified in place) and returns the bin axis, the percentages and their running sum.
func occurrences(db []float64, resolution float64) ([]float64, []float64, []float64) {
	for i, v := range db {
		if math.IsInf(v, -1) {
			db[i] = silenceFloor
		}
	}

	sort.Float64s(db)

	lowest := db[0]
	highest := db[len(db)-1]
	bins := int(math.Ceil(math.Abs(highest-lowest)*resolution)) + 1

	percent := make([]float64, bins)

	idx := 0
	for bin := range percent {
		edge := lowest + float64(bin+1)/resolution
		for idx < len(db) && db[idx] < edge {
			percent[bin]++
			idx++
		}
	}

	floats.Scale(100/float64(len(db)), percent)

	cumulative := make([]float64, bins)
	floats.CumSum(cumulative, percent)

	return dsp.Linspace(lowest, highest+1/resolution, bins), percent, cumulative
}
