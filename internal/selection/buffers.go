package selection

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/farcloser/snare/internal/types"
)

// Calibrations resolves the calibration factor of a channel.
type Calibrations interface {
	Lookup(id types.ChannelID) (float64, bool)
}

// Prepared is a selection ready to be measured.
type Prepared struct {
	// Samples in Pascal when Calibrated, in raw sample units otherwise.
	Samples []float64
	// Settle is the history preceding the selection, scaled the same way. Nil unless requested.
	Settle     []float64
	Calibrated bool
}

type key struct {
	channel types.ChannelID
	name    string
}

type buffer struct {
	points types.Points
	raw    []int32
}

// Buffers keeps the extracted samples of named selections, per channel.
type Buffers struct {
	extractor    *Extractor
	calibrations Calibrations

	mu      sync.RWMutex
	entries map[key]*buffer
}

func NewBuffers(extractor *Extractor, calibrations Calibrations) *Buffers {
	return &Buffers{
		extractor:    extractor,
		calibrations: calibrations,
		entries:      make(map[key]*buffer),
	}
}

// Add extracts a named selection, replacing any previous one of the same name. It reports whether the name was new.
// Samples are always read again, so re-adding identical points picks up what a recording appended since.
func (b *Buffers) Add(id types.ChannelID, name string, points types.Points) (bool, error) {
	k := key{channel: id, name: name}

	raw, err := b.extractor.Extract(id, points)
	if err != nil {
		return false, err
	}

	b.mu.Lock()
	_, found := b.entries[k]
	b.entries[k] = &buffer{points: points.Clone(), raw: raw}
	b.mu.Unlock()

	slog.Debug("selection.Add", "channel", id, "name", name, "samples", len(raw), "new", !found)

	return !found, nil
}

func (b *Buffers) get(id types.ChannelID, name string) (*buffer, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	buf, ok := b.entries[key{channel: id, name: name}]
	if !ok {
		return nil, fmt.Errorf("%w: %q on channel %s", types.ErrUnknownSelection, name, id)
	}

	return buf, nil
}

// Raw returns the extracted samples of a selection. The slice must not be modified.
func (b *Buffers) Raw(id types.ChannelID, name string) ([]int32, error) {
	buf, err := b.get(id, name)
	if err != nil {
		return nil, err
	}

	return buf.raw, nil
}

// Points returns a copy of the points of a selection.
func (b *Buffers) Points(id types.ChannelID, name string) (types.Points, error) {
	buf, err := b.get(id, name)
	if err != nil {
		return nil, err
	}

	return buf.points.Clone(), nil
}

// CalibratedBuffer returns the selection samples scaled by the channel calibration factor.
func (b *Buffers) CalibratedBuffer(id types.ChannelID, name string) ([]float64, error) {
	prepared, err := b.Prepare(id, name, 0)
	if err != nil {
		return nil, err
	}

	return prepared.Samples, nil
}

// Prepare resolves the channel calibration once, then scales the selection and, when settle is positive, the settle
// samples preceding it.
func (b *Buffers) Prepare(id types.ChannelID, name string, settle int) (*Prepared, error) {
	buf, err := b.get(id, name)
	if err != nil {
		return nil, err
	}

	factor, calibrated := b.calibrations.Lookup(id)
	if !calibrated {
		factor = 1
	}

	prepared := &Prepared{
		Samples:    Scaled(buf.raw, factor),
		Calibrated: calibrated,
	}

	if settle > 0 {
		var window []int32

		window, err = b.extractor.SettleWindow(id, buf.points, settle)
		if err != nil {
			return nil, err
		}

		prepared.Settle = Scaled(window, factor)
	}

	return prepared, nil
}

// Names lists the selections of a channel, sorted.
func (b *Buffers) Names(id types.ChannelID) []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var names []string

	for k := range b.entries {
		if k.channel == id {
			names = append(names, k.name)
		}
	}

	slices.Sort(names)

	return names
}

// Delete drops one selection.
func (b *Buffers) Delete(id types.ChannelID, name string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	k := key{channel: id, name: name}
	if _, ok := b.entries[k]; !ok {
		return fmt.Errorf("%w: %q on channel %s", types.ErrUnknownSelection, name, id)
	}

	delete(b.entries, k)

	return nil
}

// Remove drops every selection of a channel.
func (b *Buffers) Remove(id types.ChannelID) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for k := range b.entries {
		if k.channel == id {
			delete(b.entries, k)
		}
	}
}

// Scaled converts raw samples to float64 multiplied by factor.
func Scaled(raw []int32, factor float64) []float64 {
	out := make([]float64, len(raw))
	for i, v := range raw {
		out[i] = float64(v) * factor
	}

	return out
}
