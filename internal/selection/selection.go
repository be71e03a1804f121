// Package selection turns selection points into contiguous sample buffers.
package selection

import (
	"github.com/farcloser/snare/internal/store"
	"github.com/farcloser/snare/internal/types"
)

// BlockReader is the part of the sample store the extractor needs.
type BlockReader interface {
	BlockSize() int
	GetBlock(id types.ChannelID, index int) (*store.Block, error)
}

// Extractor reads selections through a BlockReader.
type Extractor struct {
	reader BlockReader
}

func NewExtractor(reader BlockReader) *Extractor {
	return &Extractor{reader: reader}
}

// Extract concatenates the raw samples of every range of points, in ascending order. A range of length n always
// yields n samples: parts beyond the end of the channel read as zeros. Negative starts are clamped to 0.
func (e *Extractor) Extract(id types.ChannelID, points types.Points) ([]int32, error) {
	ranges, err := points.Ranges()
	if err != nil {
		return nil, err
	}

	var total int64
	for _, r := range ranges {
		total += max(r.End-max(r.Start, 0), 0)
	}

	out := make([]int32, 0, total)

	for _, r := range ranges {
		if out, err = e.appendRange(out, id, max(r.Start, 0), r.End); err != nil {
			return nil, err
		}
	}

	return out, nil
}

// SettleWindow returns the length samples preceding the first range of points. When the selection starts less than
// length samples into the channel, the window is zero padded at the front. An empty selection yields silence.
func (e *Extractor) SettleWindow(id types.ChannelID, points types.Points, length int) ([]int32, error) {
	ranges, err := points.Ranges()
	if err != nil {
		return nil, err
	}

	window := make([]int32, max(length, 0))
	if len(ranges) == 0 || length <= 0 {
		return window, nil
	}

	end := max(ranges[0].Start, 0)
	from := end - int64(length)
	pad := int64(0)

	if from < 0 {
		pad = -from
		from = 0
	}

	history, err := e.appendRange(make([]int32, 0, end-from), id, from, end)
	if err != nil {
		return nil, err
	}

	copy(window[pad:], history)

	return window, nil
}

// appendRange appends samples [start, end) of a channel to out, freeing each block once consumed.
func (e *Extractor) appendRange(out []int32, id types.ChannelID, start, end int64) ([]int32, error) {
	if end <= start {
		return out, nil
	}

	size := int64(e.reader.BlockSize())

	for index := start / size; index <= (end-1)/size; index++ {
		block, err := e.reader.GetBlock(id, int(index))
		if err != nil {
			return nil, err
		}

		base := index * size
		lo := max(start-base, 0)
		hi := min(end-base, size)

		out = append(out, block.Samples()[lo:hi]...)

		block.Free()
	}

	return out, nil
}
