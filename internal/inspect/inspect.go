// Package inspect reports the input health of a selection: overloads and DC offset. A measurement taken over a
// clipped or offset signal under-reads, so these are shown next to the levels.
package inspect

import (
	"math"

	"github.com/farcloser/snare/internal/types"
)

// floorDb is reported when the value is exactly zero.
const floorDb = -120.0

// minOverloadRun is the number of consecutive full-scale samples counted as one overload.
const minOverloadRun = 2

// Health describes the raw samples of a selection.
type Health struct {
	Samples uint64
	// Peak is the largest absolute sample, PeakDb its level relative to full scale.
	Peak   int64
	PeakDb float64
	// Overloads counts runs of at least two samples pinned at either rail.
	Overloads      uint64
	ClippedSamples uint64
	LongestRun     uint64
	// DCOffset is the mean sample value relative to full scale.
	DCOffset   float64
	DCOffsetDb float64
}

// Overloaded reports whether any overload run was found.
func (h *Health) Overloaded() bool {
	return h.Overloads > 0
}

// Inspect scans raw samples of the given depth.
func Inspect(raw []int32, depth types.BitDepth) *Health {
	fullScale := int64(1) << (depth - 1)
	upper := int32(fullScale - 1)
	lower := int32(-fullScale)

	health := &Health{Samples: uint64(len(raw)), PeakDb: floorDb, DCOffsetDb: floorDb}

	if len(raw) == 0 {
		return health
	}

	var (
		sum float64
		run uint64
	)

	closeRun := func() {
		if run >= minOverloadRun {
			health.Overloads++
			health.ClippedSamples += run
			health.LongestRun = max(health.LongestRun, run)
		}

		run = 0
	}

	for _, sample := range raw {
		sum += float64(sample)

		magnitude := int64(sample)
		if magnitude < 0 {
			magnitude = -magnitude
		}

		health.Peak = max(health.Peak, magnitude)

		if sample == upper || sample == lower {
			run++
		} else {
			closeRun()
		}
	}

	closeRun()

	health.PeakDb = toDb(float64(health.Peak) / float64(fullScale))
	health.DCOffset = sum / float64(len(raw)) / float64(fullScale)
	health.DCOffsetDb = toDb(math.Abs(health.DCOffset))

	return health
}

func toDb(ratio float64) float64 {
	if ratio <= 0 {
		return floorDb
	}

	return 20 * math.Log10(ratio)
}
