package ffmpeg

import (
	"strconv"

	"github.com/farcloser/snare/internal/types"
)

// sampleFormat returns the raw output format for a depth: s16le or s24le.
func sampleFormat(depth types.BitDepth) string {
	//nolint:gosec // audio depths are small constants
	return "s" + strconv.Itoa(int(depth)) + "le"
}

// codec returns the PCM encoder matching sampleFormat.
func codec(depth types.BitDepth) string {
	return "pcm_" + sampleFormat(depth)
}

// arguments builds the command line decoding one audio stream of path to raw little-endian PCM at format.
func arguments(path string, streamIndex int, format types.PCMFormat) []string {
	return []string{
		"-nostdin",
		"-i", path,
		"-map", "0:a:" + strconv.Itoa(streamIndex),
		"-ar", strconv.Itoa(format.SampleRate),
		"-f", sampleFormat(format.BitDepth),
		"-acodec", codec(format.BitDepth),
		"-v", "quiet",
		"-",
	}
}
