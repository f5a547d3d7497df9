package gpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStride(t *testing.T) {
	assert.Equal(t, int32(32), Stride([]int32{3, 2, 3}))
	assert.Equal(t, int32(12), Stride([]int32{3}))
	assert.Equal(t, int32(0), Stride(nil))
}

func TestBlendPresets(t *testing.T) {
	assert.False(t, BlendOff.Enabled)
	assert.Equal(t, BlendOne, BlendOff.Src)
	assert.Equal(t, BlendZero, BlendOff.Dst)

	assert.True(t, BlendAdditive.Enabled)
	assert.Equal(t, BlendAdditive.Src, BlendAdditive.Dst)

	assert.Equal(t, Blend{Enabled: true, Src: BlendSrcAlpha, Dst: BlendOneMinusSrcAlpha}, BlendAlpha)
}

func TestClearMaskBits(t *testing.T) {
	both := ClearColorBit | ClearDepthBit
	assert.NotZero(t, both&ClearDepthBit)
	assert.Zero(t, ClearDepthBit&ClearColorBit)
}
