package binary_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/farcloser/snare/internal/integration/binary"
)

func TestMissing(t *testing.T) {
	assert.Equal(t, []string{"snare-no-such-tool"}, binary.Missing("snare-no-such-tool"))
	assert.Empty(t, binary.Missing())
}
