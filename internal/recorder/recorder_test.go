package recorder_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farcloser/snare/internal/pcm"
	"github.com/farcloser/snare/internal/recorder"
	"github.com/farcloser/snare/internal/store"
	"github.com/farcloser/snare/internal/types"
)

func interleave(depth types.BitDepth, frames ...[2]int32) []byte {
	width := depth.Bytes()
	out := make([]byte, len(frames)*2*width)

	for i, frame := range frames {
		pcm.Put(out[(2*i)*width:], frame[0], depth)
		pcm.Put(out[(2*i+1)*width:], frame[1], depth)
	}

	return out
}

func TestRecordThenReopen(t *testing.T) {
	for _, depth := range []types.BitDepth{types.Depth16, types.Depth24} {
		st := store.New(types.PCMFormat{SampleRate: 8000, BitDepth: depth, BlockSize: 4})

		rec, err := recorder.Start(st, t.TempDir(), "usb", 2)
		require.NoError(t, err)

		channels := rec.Channels()
		require.Len(t, channels, 2)
		assert.Equal(t, "usb[0]", channels[0].Name)
		assert.True(t, channels[0].Recording)
		assert.Equal(t, types.OriginRecording, channels[1].Origin)

		require.NoError(t, rec.Append(interleave(depth, [2]int32{1, -1}, [2]int32{2, -2}, [2]int32{3, -3})))
		require.NoError(t, rec.Append(interleave(depth, [2]int32{4, -4}, [2]int32{5, -32768})))

		live, err := st.GetBlock(channels[1].ID, 1)
		require.NoError(t, err)
		assert.Equal(t, []int32{-32768, 0, 0, 0}, live.Samples())

		require.NoError(t, rec.Close())
		require.NoError(t, rec.Close())
		require.Error(t, rec.Append(interleave(depth, [2]int32{6, -6})))

		for idx, channel := range rec.Channels() {
			assert.False(t, channel.Recording)
			assert.Equal(t, int64(5), channel.Length)
			assert.Equal(t, channels[idx].ID, channel.ID)
		}

		// Now read back from the file.
		block, err := st.GetBlock(channels[0].ID, 0)
		require.NoError(t, err)
		assert.Equal(t, []int32{1, 2, 3, 4}, block.Samples())
		assert.True(t, st.Cached(channels[0].ID, 0))

		block, err = st.GetBlock(channels[1].ID, 1)
		require.NoError(t, err)
		assert.Equal(t, []int32{-32768, 0, 0, 0}, block.Samples())

		require.NoError(t, st.Close())
	}
}

func TestEmptyRecording(t *testing.T) {
	st := store.New(types.PCMFormat{SampleRate: 8000, BitDepth: types.Depth16, BlockSize: 4})
	defer st.Close()

	rec, err := recorder.Start(st, t.TempDir(), "idle", 1)
	require.NoError(t, err)
	require.NoError(t, rec.Close())

	channels := rec.Channels()
	require.Len(t, channels, 1)
	assert.Equal(t, int64(0), channels[0].Length)
	assert.False(t, channels[0].Recording)
}

func TestStartRejectsNoChannels(t *testing.T) {
	st := store.New(types.PCMFormat{SampleRate: 8000, BitDepth: types.Depth16, BlockSize: 4})

	_, err := recorder.Start(st, t.TempDir(), "none", 0)
	require.ErrorIs(t, err, types.ErrUnsupportedParameter)

	_, err = recorder.Start(st, "/nonexistent/snare/dir", "bad", 1)
	require.ErrorIs(t, err, types.ErrSourceUnavailable)
	assert.Empty(t, st.Channels())
}

func TestAppendUnalignedChunks(t *testing.T) {
	raw := interleave(types.Depth16, [2]int32{1, -1}, [2]int32{2, -2}, [2]int32{3, -3}, [2]int32{4, -4})

	for _, size := range []int{1, 5, 7} {
		st := store.New(types.PCMFormat{SampleRate: 8000, BitDepth: types.Depth16, BlockSize: 4})

		rec, err := recorder.Start(st, t.TempDir(), "usb", 2)
		require.NoError(t, err)

		for start := 0; start < len(raw); start += size {
			require.NoError(t, rec.Append(raw[start:min(start+size, len(raw))]))
		}

		channels := rec.Channels()
		require.Len(t, channels, 2)
		assert.Equal(t, int64(4), channels[0].Length, "chunks of %d bytes", size)

		left, err := st.GetBlock(channels[0].ID, 0)
		require.NoError(t, err)
		assert.Equal(t, []int32{1, 2, 3, 4}, left.Samples(), "chunks of %d bytes", size)

		right, err := st.GetBlock(channels[1].ID, 0)
		require.NoError(t, err)
		assert.Equal(t, []int32{-1, -2, -3, -4}, right.Samples(), "chunks of %d bytes", size)

		// A trailing partial frame is not written out.
		require.NoError(t, rec.Append(raw[:3]))
		require.NoError(t, rec.Close())

		block, err := st.GetBlock(channels[1].ID, 0)
		require.NoError(t, err)
		assert.Equal(t, []int32{-1, -2, -3, -4}, block.Samples())

		for _, channel := range rec.Channels() {
			assert.Equal(t, int64(4), channel.Length)
		}

		require.NoError(t, st.Close())
	}
}
