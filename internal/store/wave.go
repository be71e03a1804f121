package store

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/go-audio/wav"

	"github.com/farcloser/snare/internal/pcm"
	"github.com/farcloser/snare/internal/types"
)

const wavFormatPCM = 1

var (
	errNotPCM     = errors.New("not a PCM wave file")
	errNoChannels = errors.New("no channels")
)

// waveFile is an open RIFF/WAVE file shared by the sources of all its channels.
type waveFile struct {
	path       string
	file       *os.File
	dataOffset int64
	frames     int64
	channels   int
	depth      types.BitDepth

	mu   sync.Mutex
	refs int
}

// openWave parses the header of path and checks it against the configured format.
func openWave(path string, format types.PCMFormat) (*waveFile, error) {
	slog.Debug("store.openWave", "path", path, "stage", "start")

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrSourceUnavailable, err)
	}

	wave, err := parseWave(file, format)
	if err != nil {
		_ = file.Close()

		return nil, fmt.Errorf("%w: %s: %w", types.ErrSourceUnavailable, path, err)
	}

	wave.path = path

	slog.Debug("store.openWave", "path", path, "channels", wave.channels, "frames", wave.frames, "stage", "done")

	return wave, nil
}

func parseWave(file *os.File, format types.PCMFormat) (*waveFile, error) {
	decoder := wav.NewDecoder(file)

	decoder.ReadInfo()

	if err := decoder.Err(); err != nil {
		return nil, err
	}

	if decoder.WavAudioFormat != wavFormatPCM {
		return nil, fmt.Errorf("%w: format tag %d", errNotPCM, decoder.WavAudioFormat)
	}

	if int(decoder.SampleRate) != format.SampleRate {
		return nil, fmt.Errorf("sample rate %d, want %d", decoder.SampleRate, format.SampleRate)
	}

	if types.BitDepth(decoder.BitDepth) != format.BitDepth {
		return nil, fmt.Errorf("bit depth %d, want %d", decoder.BitDepth, format.BitDepth)
	}

	if decoder.NumChans == 0 {
		return nil, errNoChannels
	}

	// Skips any chunk (bext, junk, list) ahead of the samples.
	if err := decoder.FwdToPCM(); err != nil {
		return nil, err
	}

	if err := decoder.Err(); err != nil {
		return nil, err
	}

	offset, err := file.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, err
	}

	frameSize := int64(decoder.NumChans) * int64(format.BitDepth.Bytes())

	return &waveFile{
		file:       file,
		dataOffset: offset,
		frames:     int64(decoder.PCMSize) / frameSize,
		channels:   int(decoder.NumChans),
		depth:      format.BitDepth,
	}, nil
}

func (w *waveFile) acquire() *waveFile {
	w.mu.Lock()
	w.refs++
	w.mu.Unlock()

	return w
}

func (w *waveFile) release() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.refs--
	if w.refs > 0 {
		return nil
	}

	slog.Debug("store.waveFile", "path", w.path, "stage", "close")

	return w.file.Close()
}

// waveSource reads one channel of a shared wave file.
type waveSource struct {
	wave    *waveFile
	channel int
}

func (s *waveSource) Frames() int64 {
	return s.wave.frames
}

func (s *waveSource) Read(dst []int32, offset int64) (int, error) {
	if offset < 0 || offset >= s.wave.frames {
		return 0, nil
	}

	frames := min(int64(len(dst)), s.wave.frames-offset)
	frameSize := int64(s.wave.channels * s.wave.depth.Bytes())

	raw := make([]byte, frames*frameSize)

	n, err := s.wave.file.ReadAt(raw, s.wave.dataOffset+offset*frameSize)
	if err != nil && !errors.Is(err, io.EOF) {
		return 0, err
	}

	return pcm.Channel(dst, raw[:n], s.wave.depth, s.wave.channels, s.channel)
}

func (*waveSource) Resident() bool {
	return false
}

func (s *waveSource) Close() error {
	return s.wave.release()
}
