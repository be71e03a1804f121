// Package calibration keeps the per-channel factors mapping raw sample units to Pascal.
package calibration

import (
	"fmt"
	"math"
	"strconv"
	"sync"

	"github.com/farcloser/snare/internal/dsp"
	"github.com/farcloser/snare/internal/types"
)

// Store holds at most one factor per channel. Writers are last-writer-wins.
type Store struct {
	mu       sync.RWMutex
	factors  map[types.ChannelID]float64
	onChange func(id types.ChannelID, factor float64)
}

func New() *Store {
	return &Store{factors: make(map[types.ChannelID]float64)}
}

// OnChange registers the function called after a factor is added or changed. It runs outside of the lock, so it may
// call back into the store. Nil unregisters it.
func (s *Store) OnChange(fn func(id types.ChannelID, factor float64)) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

// Add sets the factor of a channel and reports whether it differs from the previous one.
func (s *Store) Add(id types.ChannelID, factor float64) (bool, error) {
	if !(factor > 0) || math.IsInf(factor, 0) {
		return false, fmt.Errorf("%w: factor %v", types.ErrInvalidCalibration, factor)
	}

	s.mu.Lock()
	previous, found := s.factors[id]
	s.factors[id] = factor
	notify := s.onChange
	s.mu.Unlock()

	changed := !found || previous != factor
	if changed && notify != nil {
		notify(id, factor)
	}

	return changed, nil
}

// Get returns the factor of a channel, 1 when it is uncalibrated.
func (s *Store) Get(id types.ChannelID) float64 {
	if factor, ok := s.Lookup(id); ok {
		return factor
	}

	return 1
}

// Lookup returns the factor of a channel and whether it is calibrated.
func (s *Store) Lookup(id types.ChannelID) (float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	factor, ok := s.factors[id]

	return factor, ok
}

func (s *Store) Remove(id types.ChannelID) {
	s.mu.Lock()
	delete(s.factors, id)
	s.mu.Unlock()
}

// Derive computes the factor that makes the RMS of a reference tone, in raw units, read referenceDb dB SPL.
func Derive(reference []float64, referenceDb float64) (float64, error) {
	rms := dsp.RMS(reference)
	if rms == 0 || math.IsNaN(rms) || math.IsInf(rms, 0) {
		return 0, fmt.Errorf("%w: reference has no signal", types.ErrInvalidCalibration)
	}

	return dsp.DbSplToPascal(referenceDb) / rms, nil
}

// Label renders a factor for display, as Pascal per full scale unit.
func Label(factor float64, depth types.BitDepth) string {
	return strconv.FormatFloat(factor*math.Pow(2, float64(depth)), 'g', 6, 64) + " Pa/FS"
}
