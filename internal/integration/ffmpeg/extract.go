package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"

	"github.com/farcloser/primordium/fault"

	"github.com/farcloser/snare/internal/integration/binary"
	"github.com/farcloser/snare/internal/types"
)

// Decode writes one audio stream of a media file to output as interleaved little-endian PCM, resampled to the
// configured sample rate and converted to the configured depth. Channels are left as they are in the source.
func Decode(
	ctx context.Context,
	path string,
	output io.Writer,
	streamIndex int,
	format types.PCMFormat,
) error {
	slog.Debug("ffmpeg.Decode", "path", path, "stream index", streamIndex, "stage", "start")

	ffmpegPath, found := binary.Available(name)
	if !found {
		return fmt.Errorf("%w: %s", fault.ErrMissingRequirements, name)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	//nolint:gosec // path is user provided on purpose
	cmd := exec.CommandContext(ctx, ffmpegPath, arguments(path, streamIndex, format)...)

	cmd.Stdout = output

	var stderr bytes.Buffer

	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			slog.Debug("ffmpeg.Decode", "path", path, "stage", "timeout")

			return fmt.Errorf("%w: after %v", fault.ErrTimeout, timeout)
		}

		slog.Debug("ffmpeg.Decode", "path", path, "stage", "error")

		return fmt.Errorf("%w: %s: %w", fault.ErrCommandFailure, stderr.String(), err)
	}

	slog.Debug("ffmpeg.Decode", "path", path, "stage", "done")

	return nil
}
