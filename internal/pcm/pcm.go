// Package pcm decodes little-endian signed PCM frames into int32 samples.
package pcm

import (
	"encoding/binary"
	"fmt"

	"github.com/farcloser/snare/internal/types"
)

// Sample decodes one little-endian sample of the given depth, sign-extended to int32.
func Sample(b []byte, depth types.BitDepth) int32 {
	switch depth {
	case types.Depth16:
		return int32(int16(binary.LittleEndian.Uint16(b))) //nolint:gosec // two's complement reinterpretation
	case types.Depth24:
		v := uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16

		return int32(v<<8) >> 8 //nolint:gosec // sign extension
	default:
		return 0
	}
}

// Channel de-interleaves one channel out of raw frames into dst and returns the number of samples written.
// Trailing bytes that do not form a full frame are ignored.
func Channel(dst []int32, raw []byte, depth types.BitDepth, channels, channel int) (int, error) {
	width := depth.Bytes()
	if width != 2 && width != 3 {
		return 0, fmt.Errorf("%w: bit depth %d", types.ErrUnsupportedParameter, depth)
	}

	if channel < 0 || channel >= channels {
		return 0, fmt.Errorf("%w: channel %d of %d", types.ErrUnsupportedParameter, channel, channels)
	}

	frameSize := width * channels
	frames := min(len(raw)/frameSize, len(dst))

	for i := range frames {
		off := i*frameSize + channel*width
		dst[i] = Sample(raw[off:off+width], depth)
	}

	return frames, nil
}

// Put encodes v at the given depth into b.
func Put(b []byte, v int32, depth types.BitDepth) {
	switch depth {
	case types.Depth16:
		binary.LittleEndian.PutUint16(b, uint16(int16(v))) //nolint:gosec // truncation to sample width
	case types.Depth24:
		u := uint32(v) //nolint:gosec // two's complement reinterpretation
		b[0] = byte(u)
		b[1] = byte(u >> 8)
		b[2] = byte(u >> 16)
	}
}

// FullScale returns the largest positive sample magnitude plus one (2^(bits-1)).
func FullScale(depth types.BitDepth) float64 {
	return float64(int64(1) << (depth - 1))
}
