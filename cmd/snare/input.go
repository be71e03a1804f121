//nolint:wrapcheck
package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/farcloser/primordium/fault"

	"github.com/farcloser/snare"
	"github.com/farcloser/snare/internal/integration/binary"
	"github.com/farcloser/snare/internal/integration/ffmpeg"
	"github.com/farcloser/snare/internal/integration/ffprobe"
	"github.com/farcloser/snare/internal/integration/mp3"
)

var (
	errInvalidArgCount = errors.New("expected exactly one argument: file path")
	errNoSuchChannel   = errors.New("no such channel")
	errNoSuchStream    = errors.New("no such audio stream")
	errInvalidRange    = errors.New("invalid range, want start:end")
)

// openInput adds the channels of a file to the workbench. Wave files matching the configured format are read in place
// and MP3 files at the configured rate are decoded in process. Anything else is decoded by ffmpeg.
func openInput(ctx context.Context, bench *snare.Workbench, path string, stream int) ([]snare.Channel, error) {
	channels, err := bench.OpenWave(path)
	if err == nil {
		return channels, nil
	}

	if strings.EqualFold(filepath.Ext(path), ".mp3") && stream == 0 {
		decoded, mp3Err := openMP3(bench, path)
		if mp3Err == nil {
			return decoded, nil
		}

		slog.Debug("openInput", "path", path, "stage", "mp3", "reason", mp3Err)
	}

	if missing := binary.Missing("ffprobe", "ffmpeg"); len(missing) > 0 {
		return nil, fmt.Errorf("%w (decoding other formats needs %w: %s)",
			err, fault.ErrMissingRequirements, strings.Join(missing, ", "))
	}

	slog.Debug("openInput", "path", path, "stage", "decode", "reason", err)

	probe, err := ffprobe.Probe(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("probing %s: %w", path, err)
	}

	audio := probe.Audio()
	if stream < 0 || stream >= len(audio) {
		return nil, fmt.Errorf("%w: %d (found %d)", errNoSuchStream, stream, len(audio))
	}

	var decoded bytes.Buffer

	if err = ffmpeg.Decode(ctx, path, &decoded, stream, bench.Format()); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}

	return bench.LoadPCM(filepath.Base(path), &decoded, audio[stream].Channels)
}

func openMP3(bench *snare.Workbench, path string) ([]snare.Channel, error) {
	decoded, closer, err := mp3.Open(path, bench.Format())
	if err != nil {
		return nil, err
	}
	defer closer()

	return bench.LoadPCM(filepath.Base(path), decoded, mp3.Channels)
}

func pickChannel(channels []snare.Channel, index int) (snare.Channel, error) {
	if index < 0 || index >= len(channels) {
		return snare.Channel{}, fmt.Errorf("%w: %d (found %d)", errNoSuchChannel, index, len(channels))
	}

	return channels[index], nil
}

// parseRanges reads start:end selections. Positions are seconds, or samples with an "n" suffix. An empty start is the
// beginning of the channel and an empty end is its last sample. No range selects the whole channel.
func parseRanges(raw []string, sampleRate int, length int64) (snare.Points, error) {
	if len(raw) == 0 {
		return snare.NewPoints(snare.Range{Start: 0, End: length}), nil
	}

	ranges := make([]snare.Range, 0, len(raw))

	for _, item := range raw {
		first, second, found := strings.Cut(item, ":")
		if !found {
			return nil, fmt.Errorf("%w: %q", errInvalidRange, item)
		}

		start, err := parsePosition(first, sampleRate, 0)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %w", errInvalidRange, item, err)
		}

		end, err := parsePosition(second, sampleRate, length)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %w", errInvalidRange, item, err)
		}

		if end <= start {
			return nil, fmt.Errorf("%w: %q is empty", errInvalidRange, item)
		}

		ranges = append(ranges, snare.Range{Start: start, End: end})
	}

	return snare.NewPoints(ranges...), nil
}

func parsePosition(raw string, sampleRate int, fallback int64) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback, nil
	}

	if samples, ok := strings.CutSuffix(raw, "n"); ok {
		return strconv.ParseInt(samples, 10, 64)
	}

	seconds, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, err
	}

	return int64(math.Round(seconds * float64(sampleRate))), nil
}
