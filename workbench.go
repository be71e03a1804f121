package snare

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/farcloser/snare/internal/calibration"
	"github.com/farcloser/snare/internal/inspect"
	"github.com/farcloser/snare/internal/pcm"
	"github.com/farcloser/snare/internal/recorder"
	"github.com/farcloser/snare/internal/selection"
	"github.com/farcloser/snare/internal/store"
	"github.com/farcloser/snare/internal/types"
)

/*
Usage:

bench := snare.New(ctx, format, 2)
defer bench.Close()

channels, err := bench.OpenWave("take.wav")

// Calibrate against a 94 dB calibrator tone recorded at the start of the take.
_, err = bench.Select(channels[0].ID, "calibrator", snare.NewPoints(snare.Range{Start: 0, End: 441000}))
factor, err := bench.Calibrate(channels[0].ID, "calibrator", snare.ReferenceDb)

// Measure the rest.
_, err = bench.Select(channels[0].ID, "program", snare.NewPoints(snare.Range{Start: 882000, End: 2646000}))
result, err := bench.Analyze(ctx, channels[0].ID, "program", snare.KindSPL, snare.DefaultOptions())

*/

// Workbench ties the sample store, the selections, the calibrations and the kernels together.
type Workbench struct {
	format       types.PCMFormat
	store        *store.Store
	extractor    *selection.Extractor
	buffers      *selection.Buffers
	calibrations *calibration.Store
	prefetcher   *store.Prefetcher
}

// New returns an empty workbench. When workers is positive, blocks covered by new selections are decoded ahead of
// time by that many background workers, until ctx is done or Close is called.
func New(ctx context.Context, format PCMFormat, workers int) *Workbench {
	st := store.New(format)
	extractor := selection.NewExtractor(st)
	calibrations := calibration.New()

	bench := &Workbench{
		format:       format,
		store:        st,
		extractor:    extractor,
		buffers:      selection.NewBuffers(extractor, calibrations),
		calibrations: calibrations,
	}

	if workers > 0 {
		bench.prefetcher = store.NewPrefetcher(ctx, st, workers)
	}

	return bench
}

// NewPoints builds selection points from ranges.
func NewPoints(ranges ...Range) Points {
	return types.NewPoints(ranges...)
}

// Format returns the audio configuration.
func (w *Workbench) Format() PCMFormat {
	return w.format
}

// OpenWave adds one channel per channel of a wave file.
func (w *Workbench) OpenWave(path string) ([]Channel, error) {
	return w.store.OpenWave(path)
}

// AddMemory adds a channel backed by decoded samples.
func (w *Workbench) AddMemory(name string, samples []int32) Channel {
	return w.store.AddMemory(name, samples)
}

// LoadPCM reads raw interleaved little-endian PCM at the configured bit depth until EOF and adds one channel per
// interleaved channel, named <name>[n].
func (w *Workbench) LoadPCM(name string, input io.Reader, channels int) ([]Channel, error) {
	if channels < 1 {
		return nil, fmt.Errorf("%w: %d channels", ErrUnsupportedParameter, channels)
	}

	raw, err := io.ReadAll(input)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
	}

	frames := len(raw) / (channels * w.format.BitDepth.Bytes())
	out := make([]Channel, 0, channels)

	for idx := range channels {
		samples := make([]int32, frames)

		if _, err = pcm.Channel(samples, raw, w.format.BitDepth, channels, idx); err != nil {
			return nil, err
		}

		out = append(out, w.store.AddMemory(name+"["+strconv.Itoa(idx)+"]", samples))
	}

	slog.Debug("snare.LoadPCM", "name", name, "channels", channels, "frames", frames)

	return out, nil
}

// Record starts capturing into new recording channels, mirrored to wave files in dir.
func (w *Workbench) Record(dir, device string, channels int) (*recorder.Recorder, error) {
	return recorder.Start(w.store, dir, device, channels)
}

// Channel returns the current description of a channel.
func (w *Workbench) Channel(id ChannelID) (Channel, error) {
	return w.store.Channel(id)
}

// Channels lists every channel.
func (w *Workbench) Channels() []Channel {
	return w.store.Channels()
}

// Select extracts a named selection of a channel. It reports whether the name is new for that channel.
func (w *Workbench) Select(id ChannelID, name string, points Points) (bool, error) {
	if w.prefetcher != nil {
		w.prefetch(id, points)
	}

	return w.buffers.Add(id, name, points)
}

func (w *Workbench) prefetch(id ChannelID, points Points) {
	ranges, err := points.Ranges()
	if err != nil {
		return
	}

	indices, err := w.store.Covering(id, ranges)
	if err != nil || len(indices) == 0 {
		return
	}

	w.prefetcher.Submit(id, indices...)
}

// Selections lists the selection names of a channel.
func (w *Workbench) Selections(id ChannelID) []string {
	return w.buffers.Names(id)
}

// Unselect drops a named selection.
func (w *Workbench) Unselect(id ChannelID, name string) error {
	return w.buffers.Delete(id, name)
}

// Inspect reports overloads and DC offset of the raw samples of a selection.
func (w *Workbench) Inspect(id ChannelID, name string) (*Health, error) {
	raw, err := w.buffers.Raw(id, name)
	if err != nil {
		return nil, err
	}

	return inspect.Inspect(raw, w.format.BitDepth), nil
}

// Calibrate derives the calibration factor of a channel from a selection of a reference tone of referenceDb dB SPL,
// and stores it.
func (w *Workbench) Calibrate(id ChannelID, name string, referenceDb float64) (float64, error) {
	raw, err := w.buffers.Raw(id, name)
	if err != nil {
		return 0, err
	}

	factor, err := calibration.Derive(selection.Scaled(raw, 1), referenceDb)
	if err != nil {
		return 0, err
	}

	if _, err = w.calibrations.Add(id, factor); err != nil {
		return 0, err
	}

	slog.Debug("snare.Calibrate", "channel", id, "selection", name, "factor", factor)

	return factor, nil
}

// SetCalibration stores a known calibration factor. It reports whether the factor changed.
func (w *Workbench) SetCalibration(id ChannelID, factor float64) (bool, error) {
	if _, err := w.store.Channel(id); err != nil {
		return false, err
	}

	return w.calibrations.Add(id, factor)
}

// Calibration returns the factor of a channel and whether it is calibrated.
func (w *Workbench) Calibration(id ChannelID) (float64, bool) {
	return w.calibrations.Lookup(id)
}

// OnCalibrationChange registers the function called whenever a calibration factor changes.
func (w *Workbench) OnCalibrationChange(fn func(id ChannelID, factor float64)) {
	w.calibrations.OnChange(fn)
}

// Remove drops a channel with its selections and calibration.
func (w *Workbench) Remove(id ChannelID) error {
	w.buffers.Remove(id)
	w.calibrations.Remove(id)

	return w.store.Remove(id)
}

// Close stops the prefetcher and closes every channel.
func (w *Workbench) Close() error {
	var errs []error

	if w.prefetcher != nil {
		errs = append(errs, w.prefetcher.Close())
	}

	for _, channel := range w.store.Channels() {
		errs = append(errs, w.Remove(channel.ID))
	}

	return errors.Join(errs...)
}
