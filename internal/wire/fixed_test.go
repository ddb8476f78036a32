package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFloatToU16FixedClamps(t *testing.T) {
	assert.Equal(t, uint16(0), floatToU16Fixed(-1))
	assert.Equal(t, uint16(0xFFFF), floatToU16Fixed(1))
	assert.Equal(t, uint16(0xFFFF), floatToU16Fixed(2))
	assert.Equal(t, uint16(0), floatToU16Fixed(0))
}
