// Package mp3 decodes MP3 files in process when they already match the configured format.
package mp3

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/hajimehoshi/go-mp3"

	"github.com/farcloser/snare/internal/types"
)

// Channels is the decoder output layout: always interleaved stereo.
const Channels = 2

// ErrFormatMismatch is returned when the stream cannot be loaded without resampling or requantization.
var ErrFormatMismatch = errors.New("mp3 stream does not match the configured format")

// Open decodes an MP3 file to interleaved 16-bit little-endian stereo PCM and returns a reader over it.
// It fails with ErrFormatMismatch unless the configured format is 16-bit at the stream rate.
func Open(path string, format types.PCMFormat) (io.Reader, func() error, error) {
	if format.BitDepth != types.Depth16 {
		return nil, nil, fmt.Errorf("%w: %d bits configured", ErrFormatMismatch, format.BitDepth)
	}

	file, err := os.Open(path) //nolint:gosec // path is user provided on purpose
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", types.ErrSourceUnavailable, err)
	}

	decoder, err := mp3.NewDecoder(file)
	if err != nil {
		_ = file.Close()

		return nil, nil, fmt.Errorf("%w: %w", types.ErrSourceUnavailable, err)
	}

	if decoder.SampleRate() != format.SampleRate {
		_ = file.Close()

		return nil, nil, fmt.Errorf("%w: stream at %d Hz", ErrFormatMismatch, decoder.SampleRate())
	}

	slog.Debug("mp3.Open", "path", path, "sample rate", decoder.SampleRate(), "bytes", decoder.Length())

	return decoder, file.Close, nil
}
