// Package store is the block addressable sample storage.
//
// Every channel is backed by a Source (a wave file channel or an in-memory log). Samples are handed out in blocks
// of BlockSize samples, decoded on first access and cached until freed. Block indices outside of the channel extent
// resolve to a shared all-zero block, never to an error.
package store

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/farcloser/primordium/fault"

	"github.com/farcloser/snare/internal/types"
)

// Block is one run of BlockSize samples of a channel.
type Block struct {
	channel types.ChannelID
	index   int
	samples []int32
	owner   *Store
}

// Samples returns the block content. It must not be modified.
func (b *Block) Samples() []int32 {
	return b.samples
}

// Index is the block number, or -1 for the empty block.
func (b *Block) Index() int {
	return b.index
}

// IsEmpty reports whether this is the synthesized out-of-range block.
func (b *Block) IsEmpty() bool {
	return b.index < 0
}

// Free drops the block from the cache. It is a hint: the block is decoded again on the next access.
func (b *Block) Free() {
	if b.owner != nil {
		b.owner.evict(b)
	}
}

type entry struct {
	channel types.Channel
	source  Source
	cache   map[int]*Block
}

// Store holds the channels and their cached blocks. It is safe for concurrent use.
type Store struct {
	format types.PCMFormat
	empty  *Block

	mu      sync.Mutex
	entries map[types.ChannelID]*entry
	order   []types.ChannelID
}

// New returns an empty store for the given format.
func New(format types.PCMFormat) *Store {
	return &Store{
		format:  format,
		empty:   &Block{index: -1, samples: make([]int32, format.BlockSize)},
		entries: make(map[types.ChannelID]*entry),
	}
}

// Format returns the store configuration.
func (s *Store) Format() types.PCMFormat {
	return s.format
}

// BlockSize is the number of samples per block.
func (s *Store) BlockSize() int {
	return s.format.BlockSize
}

// OpenWave adds one channel per channel of a RIFF/WAVE file. The file must match the configured sample rate and bit
// depth.
func (s *Store) OpenWave(path string) ([]types.Channel, error) {
	wave, err := openWave(path, s.format)
	if err != nil {
		return nil, err
	}

	base := filepath.Base(path)
	channels := make([]types.Channel, 0, wave.channels)

	for idx := range wave.channels {
		src := &waveSource{wave: wave.acquire(), channel: idx}
		channels = append(channels, s.add(types.OriginFile, base+"["+strconv.Itoa(idx)+"]", src, false))
	}

	return channels, nil
}

// AddSource adds a channel backed by an arbitrary source.
func (s *Store) AddSource(origin types.Origin, name string, src Source) types.Channel {
	return s.add(origin, name, src, false)
}

// AddMemory adds a file channel backed by already decoded samples.
func (s *Store) AddMemory(name string, samples []int32) types.Channel {
	return s.add(types.OriginFile, name, NewMemory(samples), false)
}

// AddRecording adds an empty recording channel that grows through Append.
func (s *Store) AddRecording(name string) types.Channel {
	return s.add(types.OriginRecording, name, NewMemory(nil), true)
}

func (s *Store) add(origin types.Origin, name string, src Source, recording bool) types.Channel {
	channel := types.Channel{
		ID:        types.NewChannelID(),
		Origin:    origin,
		Name:      name,
		Length:    src.Frames(),
		Recording: recording,
	}

	s.mu.Lock()
	s.entries[channel.ID] = &entry{channel: channel, source: src, cache: make(map[int]*Block)}
	s.order = append(s.order, channel.ID)
	s.mu.Unlock()

	slog.Debug("store.add", "channel", channel.ID, "name", name, "origin", origin, "length", channel.Length)

	return channel
}

// Append adds samples to the end of a channel backed by a growable source.
func (s *Store) Append(id types.ChannelID, samples []int32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ent, ok := s.entries[id]
	if !ok {
		return fmt.Errorf("%w: %s", types.ErrUnknownChannel, id)
	}

	mem, ok := ent.source.(*Memory)
	if !ok {
		return fmt.Errorf("%w: channel %s is not appendable", types.ErrUnsupportedParameter, id)
	}

	mem.Append(samples...)
	ent.channel.Length = mem.Frames()

	return nil
}

// Reopen rebinds a channel to one channel of a wave file, drops its cached blocks and clears the recording flag.
func (s *Store) Reopen(id types.ChannelID, path string, channel int) error {
	wave, err := openWave(path, s.format)
	if err != nil {
		return err
	}

	if channel < 0 || channel >= wave.channels {
		_ = wave.file.Close()

		return fmt.Errorf("%w: %s has no channel %d", types.ErrSourceUnavailable, path, channel)
	}

	src := &waveSource{wave: wave.acquire(), channel: channel}

	s.mu.Lock()

	ent, ok := s.entries[id]
	if !ok {
		s.mu.Unlock()

		_ = src.Close()

		return fmt.Errorf("%w: %s", types.ErrUnknownChannel, id)
	}

	previous := ent.source
	ent.source = src
	ent.cache = make(map[int]*Block)
	ent.channel.Length = src.Frames()
	ent.channel.Recording = false

	s.mu.Unlock()

	slog.Debug("store.Reopen", "channel", id, "path", path, "length", src.Frames())

	return previous.Close()
}

// Channel returns the current description of a channel.
func (s *Store) Channel(id types.ChannelID) (types.Channel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ent, ok := s.entries[id]
	if !ok {
		return types.Channel{}, fmt.Errorf("%w: %s", types.ErrUnknownChannel, id)
	}

	return ent.channel, nil
}

// Channels lists the channels in the order they were added.
func (s *Store) Channels() []types.Channel {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]types.Channel, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.entries[id].channel)
	}

	return out
}

// Blocks is the number of blocks covering the channel.
func (s *Store) Blocks(id types.ChannelID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ent, ok := s.entries[id]
	if !ok {
		return 0, fmt.Errorf("%w: %s", types.ErrUnknownChannel, id)
	}

	return s.blocks(ent), nil
}

// Covering returns the indices of the blocks holding samples of the given ranges, in range order. Blocks past the
// current end of the channel are left out.
func (s *Store) Covering(id types.ChannelID, ranges []types.Range) ([]int, error) {
	total, err := s.Blocks(id)
	if err != nil {
		return nil, err
	}

	size := int64(s.format.BlockSize)

	var indices []int

	for _, r := range ranges {
		for index := max(r.Start, 0) / size; index*size < r.End && index < int64(total); index++ {
			indices = append(indices, int(index))
		}
	}

	return indices, nil
}

func (s *Store) blocks(ent *entry) int {
	size := int64(s.format.BlockSize)

	return int((ent.source.Frames() + size - 1) / size)
}

// GetBlock returns block index of a channel, decoding it when it is not cached. Negative indices and indices past the
// end of the data return the empty block. The final block is zero padded.
func (s *Store) GetBlock(id types.ChannelID, index int) (*Block, error) {
	s.mu.Lock()

	ent, ok := s.entries[id]
	if !ok {
		s.mu.Unlock()

		return nil, fmt.Errorf("%w: %s", types.ErrUnknownChannel, id)
	}

	if index < 0 || index >= s.blocks(ent) {
		s.mu.Unlock()

		return s.empty, nil
	}

	if cached, found := ent.cache[index]; found {
		s.mu.Unlock()

		return cached, nil
	}

	src := ent.source

	s.mu.Unlock()

	samples := make([]int32, s.format.BlockSize)
	if _, err := src.Read(samples, int64(index)*int64(s.format.BlockSize)); err != nil {
		slog.Debug("store.GetBlock", "channel", id, "block", index, "stage", "error", "error", err)

		return nil, fmt.Errorf("%w: channel %s block %d: %w", fault.ErrReadFailure, id, index, err)
	}

	block := &Block{channel: id, index: index, samples: samples}

	if src.Resident() {
		return block, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// The channel may have been removed or rebound while decoding.
	if current, found := s.entries[id]; !found || current.source != src {
		return block, nil
	}

	if cached, found := ent.cache[index]; found {
		return cached, nil
	}

	block.owner = s
	ent.cache[index] = block

	return block, nil
}

// Cached reports whether a block is currently held in the cache.
func (s *Store) Cached(id types.ChannelID, index int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	ent, ok := s.entries[id]
	if !ok {
		return false
	}

	_, found := ent.cache[index]

	return found
}

// Free drops a block from the cache, if present.
func (s *Store) Free(block *Block) {
	block.Free()
}

func (s *Store) evict(block *Block) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ent, ok := s.entries[block.channel]; ok && ent.cache[block.index] == block {
		delete(ent.cache, block.index)
	}
}

// Remove drops a channel and closes its source.
func (s *Store) Remove(id types.ChannelID) error {
	s.mu.Lock()

	ent, ok := s.entries[id]
	if !ok {
		s.mu.Unlock()

		return fmt.Errorf("%w: %s", types.ErrUnknownChannel, id)
	}

	delete(s.entries, id)

	for i, other := range s.order {
		if other == id {
			s.order = append(s.order[:i], s.order[i+1:]...)

			break
		}
	}

	s.mu.Unlock()

	slog.Debug("store.Remove", "channel", id)

	return ent.source.Close()
}

// Close removes every channel.
func (s *Store) Close() error {
	var firstErr error

	for _, channel := range s.Channels() {
		if err := s.Remove(channel.ID); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}
