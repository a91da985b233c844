package camera

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-core/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCameraDefaults(t *testing.T) {
	c := NewCamera()
	assert.InDelta(t, DefaultFov, c.Fov(), 1e-6)
	assert.Equal(t, float32(1), c.Aspect())
	assert.InDelta(t, DefaultNear, c.Near(), 1e-6)
	assert.InDelta(t, DefaultFar, c.Far(), 1e-3)
}

func TestSetAspectRecomputesProjectionAndInverse(t *testing.T) {
	c := NewCamera(WithFov(1.2), WithClipPlanes(0.5, 50))
	before := c.ProjectionMatrix()

	c.SetAspect(2)
	after := c.ProjectionMatrix()
	assert.InDelta(t, before[0]/2, after[0], 1e-6)
	assert.Equal(t, before[5], after[5])

	proj, inv := c.ProjectionMatrix(), c.InverseProjectionMatrix()
	var prod common.Mat4
	common.Mul4(prod[:], proj[:], inv[:])
	id := common.IdentityMat4()
	for i := range id {
		assert.InDelta(t, id[i], prod[i], 1e-4)
	}
}

func TestUniformMarshal(t *testing.T) {
	c := NewCamera(WithAspect(1.5))
	u := c.Uniform()
	require.Equal(t, 64, u.Size())

	buf := u.Marshal()
	require.Len(t, buf, 64)
	proj := c.ProjectionMatrix()
	for i := range 16 {
		assert.Equal(t, proj[i], math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:])))
	}
}
