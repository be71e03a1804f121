package version_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/farcloser/snare/version"
)

func TestIdentity(t *testing.T) {
	assert.Equal(t, "snare", version.Name())
	assert.NotEmpty(t, version.Version())
	assert.NotEmpty(t, version.Commit())
}
