//nolint:wrapcheck
package main

import (
	"fmt"
	"os"

	"github.com/farcloser/primordium/format"

	"github.com/farcloser/snare"
	"github.com/farcloser/snare/internal/output"
)

func outputResults(
	channel snare.Channel,
	health *snare.Health,
	results []*snare.MeasurementResult,
	formatName string,
	debug bool,
) error {
	formatter, err := format.GetFormatter(formatName)
	if err != nil {
		return err
	}

	data := make([]*format.Data, 0, len(results)+1)

	data = append(data, &format.Data{
		Object: channel.Name + " input",
		Meta:   buildInputOutput(health),
	})

	for _, result := range results {
		var meta map[string]any
		if debug {
			meta = output.ResultToMap(result)
		} else {
			meta = output.SummaryToMap(result)
		}

		data = append(data, &format.Data{
			Object: fmt.Sprintf("%s %s", channel.Name, result.Kind),
			Meta:   meta,
		})
	}

	return formatter.PrintAll(data, os.Stdout)
}

// buildInputOutput summarizes the health of the measured samples.
func buildInputOutput(health *snare.Health) map[string]any {
	meta := map[string]any{
		"samples":   health.Samples,
		"peak":      fmt.Sprintf("%.1f dBFS", health.PeakDb),
		"dc_offset": fmt.Sprintf("%.1f dBFS", health.DCOffsetDb),
	}

	if health.Overloaded() {
		meta["overload"] = fmt.Sprintf("!! %d runs, %d samples clipped (longest %d)",
			health.Overloads, health.ClippedSamples, health.LongestRun)
	}

	return meta
}
