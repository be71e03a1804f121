package store

import (
	"sync"
)

// Source provides the decoded samples of one channel.
type Source interface {
	// Frames is the number of samples currently available.
	Frames() int64
	// Read decodes up to len(dst) samples starting at sample offset and returns how many were written.
	Read(dst []int32, offset int64) (int, error)
	// Resident sources already hold their samples in memory. Their blocks are not cached.
	Resident() bool
	Close() error
}

// Memory is a growable in-memory Source. It backs recordings while they are in progress and decoded streams.
type Memory struct {
	mu      sync.RWMutex
	samples []int32
}

// NewMemory wraps samples. The slice is owned by the source afterwards.
func NewMemory(samples []int32) *Memory {
	return &Memory{samples: samples}
}

// Append adds samples at the end.
func (m *Memory) Append(samples ...int32) {
	m.mu.Lock()
	m.samples = append(m.samples, samples...)
	m.mu.Unlock()
}

func (m *Memory) Frames() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return int64(len(m.samples))
}

func (m *Memory) Read(dst []int32, offset int64) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if offset < 0 || offset >= int64(len(m.samples)) {
		return 0, nil
	}

	return copy(dst, m.samples[offset:]), nil
}

func (*Memory) Resident() bool {
	return true
}

func (*Memory) Close() error {
	return nil
}
