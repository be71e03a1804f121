// Package recorder captures interleaved device frames into recording channels, mirrored to one mono wave file per
// channel. Closing the recorder rebinds every channel to its file.
package recorder

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"sync"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/farcloser/snare/internal/pcm"
	"github.com/farcloser/snare/internal/store"
	"github.com/farcloser/snare/internal/types"
)

const wavFormatPCM = 1

var errClosed = errors.New("recorder closed")

type track struct {
	channel types.Channel
	path    string
	file    *os.File
	encoder *wav.Encoder
	written bool
}

// Recorder appends captured audio to the store and to disk.
type Recorder struct {
	store  *store.Store
	format types.PCMFormat

	mu      sync.Mutex
	tracks  []*track
	scratch []int32
	// pending holds the bytes of an incomplete frame, completed by the next Append.
	pending []byte
	closed  bool
}

// Start creates one recording channel per device channel. Files are written to dir as <device>-<n>.wav.
func Start(st *store.Store, dir, device string, channels int) (*Recorder, error) {
	if channels < 1 {
		return nil, fmt.Errorf("%w: %d device channels", types.ErrUnsupportedParameter, channels)
	}

	format := st.Format()
	rec := &Recorder{store: st, format: format}

	for idx := range channels {
		path := filepath.Join(dir, device+"-"+strconv.Itoa(idx)+".wav")

		file, err := os.Create(path)
		if err != nil {
			_ = rec.abort()

			return nil, fmt.Errorf("%w: %w", types.ErrSourceUnavailable, err)
		}

		rec.tracks = append(rec.tracks, &track{
			channel: st.AddRecording(device + "[" + strconv.Itoa(idx) + "]"),
			path:    path,
			file:    file,
			encoder: wav.NewEncoder(file, format.SampleRate, int(format.BitDepth), 1, wavFormatPCM),
		})
	}

	slog.Debug("recorder.Start", "device", device, "channels", channels, "dir", dir)

	return rec, nil
}

// Channels returns the current description of the recording channels, in device order.
func (r *Recorder) Channels() []types.Channel {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]types.Channel, 0, len(r.tracks))

	for _, t := range r.tracks {
		channel, err := r.store.Channel(t.channel.ID)
		if err != nil {
			// Removed from the store while recording.
			continue
		}

		out = append(out, channel)
	}

	return out
}

// Append de-interleaves raw little-endian device frames and appends them to every channel. Chunks do not have to be
// frame aligned: a trailing partial frame is kept until the next call completes it.
func (r *Recorder) Append(raw []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return errClosed
	}

	if len(r.pending) > 0 {
		raw = append(r.pending, raw...)
	}

	frameSize := r.format.BitDepth.Bytes() * len(r.tracks)
	frames := len(raw) / frameSize
	r.pending = slices.Clone(raw[frames*frameSize:])
	raw = raw[:frames*frameSize]

	if frames == 0 {
		return nil
	}

	if cap(r.scratch) < frames {
		r.scratch = make([]int32, frames)
	}

	samples := r.scratch[:frames]

	for idx, t := range r.tracks {
		n, err := pcm.Channel(samples, raw, r.format.BitDepth, len(r.tracks), idx)
		if err != nil {
			return err
		}

		if err = r.store.Append(t.channel.ID, samples[:n]); err != nil {
			return err
		}

		if err = t.write(samples[:n], r.format); err != nil {
			return fmt.Errorf("writing %s: %w", t.path, err)
		}
	}

	return nil
}

func (t *track) write(samples []int32, format types.PCMFormat) error {
	data := make([]int, len(samples))
	for i, v := range samples {
		data[i] = int(v)
	}

	t.written = true

	return t.encoder.Write(&audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: format.SampleRate},
		Data:           data,
		SourceBitDepth: int(format.BitDepth),
	})
}

// Close finalizes the files and rebinds each channel to its file. The channels stop being recordings.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}

	r.closed = true

	if len(r.pending) > 0 {
		slog.Debug("recorder.Close", "stage", "partial frame dropped", "bytes", len(r.pending))

		r.pending = nil
	}

	var errs []error

	for _, t := range r.tracks {
		if err := t.finish(r.format); err != nil {
			errs = append(errs, err)

			continue
		}

		if err := r.store.Reopen(t.channel.ID, t.path, 0); err != nil {
			errs = append(errs, err)
		}
	}

	slog.Debug("recorder.Close", "channels", len(r.tracks), "errors", len(errs))

	return errors.Join(errs...)
}

func (t *track) finish(format types.PCMFormat) error {
	// The encoder only writes headers along with the first samples.
	if !t.written {
		if err := t.write(nil, format); err != nil {
			return err
		}
	}

	if err := t.encoder.Close(); err != nil {
		_ = t.file.Close()

		return err
	}

	return t.file.Close()
}

func (r *Recorder) abort() error {
	var errs []error

	for _, t := range r.tracks {
		errs = append(errs, t.file.Close(), os.Remove(t.path), r.store.Remove(t.channel.ID))
	}

	return errors.Join(errs...)
}
