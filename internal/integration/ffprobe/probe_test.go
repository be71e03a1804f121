package ffprobe

import (
	"testing"

	"github.com/farcloser/primordium/fault"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `{
  "streams": [
    {"index": 0, "codec_name": "mjpeg", "codec_type": "video"},
    {"index": 1, "codec_name": "flac", "codec_type": "audio", "sample_rate": "96000", "channels": 2,
     "sample_fmt": "s32", "bits_per_raw_sample": "24"},
    {"index": 2, "codec_name": "pcm_s16le", "codec_type": "audio", "sample_rate": "44100", "channels": 1,
     "bits_per_sample": 16}
  ],
  "format": {"filename": "take.mka", "nb_streams": 3, "format_name": "matroska,webm", "duration": "12.5"}
}`

func TestParse(t *testing.T) {
	result, err := parse([]byte(sample))
	require.NoError(t, err)

	audio := result.Audio()
	require.Len(t, audio, 2)

	assert.Equal(t, 96000, audio[0].Rate())
	assert.Equal(t, 24, audio[0].Bits())
	assert.Equal(t, 2, audio[0].Channels)

	assert.Equal(t, 44100, audio[1].Rate())
	assert.Equal(t, 16, audio[1].Bits())

	assert.Equal(t, "matroska,webm", result.Format.FormatName)
	assert.Equal(t, 0, Stream{SampleRate: "N/A"}.Rate())
}

func TestParseInvalid(t *testing.T) {
	_, err := parse([]byte("{"))
	require.ErrorIs(t, err, fault.ErrInvalidJSON)
}
