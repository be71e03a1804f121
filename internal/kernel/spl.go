package kernel

import (
	"context"

	"github.com/farcloser/snare/internal/dsp"
	"github.com/farcloser/snare/internal/types"
)

// SPL computes the time weighted level over time.
type SPL struct{}

func (SPL) Kind() types.Kind {
	return types.KindSPL
}

func (SPL) Run(ctx context.Context, buffer []float64, params Params) (*types.MeasurementResult, error) {
	if err := validate(params, true, true); err != nil {
		return nil, err
	}

	db, err := levels(ctx, buffer, params)
	if err != nil {
		return nil, err
	}

	res := result(types.KindSPL, params)
	res.X = dsp.TimeAxis(len(db), params.SampleRate)
	res.Y = db

	return res, nil
}

// Example passes the frequency weighted samples through, on a time axis. It is the minimal kernel and a template for
// new ones.
type Example struct{}

func (Example) Kind() types.Kind {
	return types.KindExample
}

func (Example) Run(_ context.Context, buffer []float64, params Params) (*types.MeasurementResult, error) {
	if err := validate(params, false, false); err != nil {
		return nil, err
	}

	values, skip, err := weighted(buffer, params)
	if err != nil {
		return nil, err
	}

	values = values[skip:]

	res := result(types.KindExample, params)
	res.Unit = types.UnitLinear
	res.X = dsp.TimeAxis(len(values), params.SampleRate)
	res.Y = values

	return res, nil
}
