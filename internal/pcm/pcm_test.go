package pcm_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farcloser/snare/internal/pcm"
	"github.com/farcloser/snare/internal/types"
)

func TestSample24SignExtension(t *testing.T) {
	assert.Equal(t, int32(-1), pcm.Sample([]byte{0xff, 0xff, 0xff}, types.Depth24))
	assert.Equal(t, int32(-8388608), pcm.Sample([]byte{0x00, 0x00, 0x80}, types.Depth24))
	assert.Equal(t, int32(8388607), pcm.Sample([]byte{0xff, 0xff, 0x7f}, types.Depth24))
	assert.Equal(t, int32(0x123456), pcm.Sample([]byte{0x56, 0x34, 0x12}, types.Depth24))
}

func TestSample16(t *testing.T) {
	assert.Equal(t, int32(-32768), pcm.Sample([]byte{0x00, 0x80}, types.Depth16))
	assert.Equal(t, int32(258), pcm.Sample([]byte{0x02, 0x01}, types.Depth16))
}

func TestPutRoundTrip(t *testing.T) {
	for _, depth := range []types.BitDepth{types.Depth16, types.Depth24} {
		buf := make([]byte, depth.Bytes())
		for _, v := range []int32{0, 1, -1, 1000, -1000, int32(pcm.FullScale(depth)) - 1, -int32(pcm.FullScale(depth))} {
			pcm.Put(buf, v, depth)
			assert.Equal(t, v, pcm.Sample(buf, depth), "depth %d value %d", depth, v)
		}
	}
}

func TestChannelDeinterleave(t *testing.T) {
	// Two 16-bit channels, three frames: (1, -1), (2, -2), (3, -3) plus a dangling byte.
	raw := []byte{1, 0, 0xff, 0xff, 2, 0, 0xfe, 0xff, 3, 0, 0xfd, 0xff, 0x42}

	left := make([]int32, 8)
	n, err := pcm.Channel(left, raw, types.Depth16, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, []int32{1, 2, 3}, left[:n])

	right := make([]int32, 2)
	n, err = pcm.Channel(right, raw, types.Depth16, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []int32{-1, -2}, right)

	_, err = pcm.Channel(right, raw, types.Depth16, 2, 2)
	require.ErrorIs(t, err, types.ErrUnsupportedParameter)
}
