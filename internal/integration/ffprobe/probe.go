//nolint:tagliatelle
package ffprobe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"

	"github.com/farcloser/primordium/fault"

	"github.com/farcloser/snare/internal/integration/binary"
)

// Result contains the parts of the ffprobe output needed to decode a file.
type Result struct {
	Streams []Stream `json:"streams"`
	Format  Format   `json:"format"`
}

// Stream is one stream of the container.
type Stream struct {
	Index      int    `json:"index"`
	CodecName  string `json:"codec_name"`            // flac
	CodecType  string `json:"codec_type"`            // audio
	SampleRate string `json:"sample_rate,omitempty"` // 44100
	Channels   int    `json:"channels,omitempty"`
	Duration   string `json:"duration,omitempty"`
	SampleFmt  string `json:"sample_fmt,omitempty"` // s16, s32, fltp...
	// Lossless codecs report one or the other, lossy ones neither.
	BitsPerSample    int    `json:"bits_per_sample,omitempty"`
	BitsPerRawSample string `json:"bits_per_raw_sample,omitempty"`
}

// Format is the container description.
type Format struct {
	Filename   string `json:"filename"`
	NbStreams  int    `json:"nb_streams"`
	FormatName string `json:"format_name"` // wav, flac, "mov,mp4,m4a,3gp,3g2,mj2"
	Duration   string `json:"duration,omitempty"`
}

// Audio returns the audio streams, in container order. The position in that list is the index ffmpeg expects
// in "0:a:N".
func (r *Result) Audio() []Stream {
	var out []Stream

	for _, stream := range r.Streams {
		if stream.CodecType == "audio" {
			out = append(out, stream)
		}
	}

	return out
}

// Rate returns the sample rate in Hz, or 0 when unknown.
func (s Stream) Rate() int {
	rate, err := strconv.Atoi(s.SampleRate)
	if err != nil {
		return 0
	}

	return rate
}

// Bits returns the stored bit depth, or 0 for lossy codecs.
func (s Stream) Bits() int {
	if raw, err := strconv.Atoi(s.BitsPerRawSample); err == nil && raw > 0 {
		return raw
	}

	return s.BitsPerSample
}

// Probe runs ffprobe on the given file path and returns parsed metadata.
// It requires ffprobe to be available in the system PATH.
func Probe(ctx context.Context, filePath string) (*Result, error) {
	slog.Debug("ffprobe.Probe", "file path", filePath)

	ffprobePath, found := binary.Available(name)
	if !found {
		return nil, fmt.Errorf("%w: %s", fault.ErrMissingRequirements, name)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	//nolint:gosec // filePath is user provided on purpose
	cmd := exec.CommandContext(ctx, ffprobePath,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		filePath,
	)

	var stderr bytes.Buffer

	cmd.Stderr = &stderr

	output, err := cmd.Output()
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: after %v", fault.ErrTimeout, timeout)
		}

		return nil, fmt.Errorf("%w: %s: %w", fault.ErrCommandFailure, stderr.String(), err)
	}

	return parse(output)
}

func parse(output []byte) (*Result, error) {
	var result Result
	if err := json.Unmarshal(output, &result); err != nil {
		return nil, fmt.Errorf("%w: %w", fault.ErrInvalidJSON, err)
	}

	return &result, nil
}
