package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farcloser/snare"
)

func TestParseRanges(t *testing.T) {
	points, err := parseRanges(nil, 1000, 5000)
	require.NoError(t, err)
	assert.True(t, points.Equal(snare.NewPoints(snare.Range{Start: 0, End: 5000})))

	points, err = parseRanges([]string{"0.5:1", "200n:300n", "4:"}, 1000, 5000)
	require.NoError(t, err)
	assert.True(t, points.Equal(snare.NewPoints(
		snare.Range{Start: 500, End: 1000},
		snare.Range{Start: 200, End: 300},
		snare.Range{Start: 4000, End: 5000},
	)))

	for _, bad := range []string{"1", "2:1", "a:b", "1:1"} {
		_, err = parseRanges([]string{bad}, 1000, 5000)
		require.ErrorIs(t, err, errInvalidRange, bad)
	}
}

func TestPickChannel(t *testing.T) {
	channels := []snare.Channel{{Name: "a"}, {Name: "b"}}

	channel, err := pickChannel(channels, 1)
	require.NoError(t, err)
	assert.Equal(t, "b", channel.Name)

	_, err = pickChannel(channels, 2)
	require.ErrorIs(t, err, errNoSuchChannel)
}
