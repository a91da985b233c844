package renderer

import (
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/Carmen-Shannon/oxy-core/common"
)

// GPUObjectUniform is the GPU-aligned representation of the per-object uniform buffer bound at
// shadergraph.SlotObject. It matches shadergraph.ObjectUniformSource exactly.
// Size: 112 bytes.
type GPUObjectUniform struct {
	ModelViewMatrix common.Mat4    // offset 0: camera view × node world (mat4x4<f32>)
	NormalMatrix    common.Mat3GPU // offset 64: inverse-transpose of the model-view 3x3 (mat3x3<f32>)
}

// NewGPUObjectUniform computes the object uniform of a node seen from a camera.
// When the upper 3x3 of the model-view matrix is singular the normal matrix stays the identity.
//
// Parameters:
//   - view: the inverse of the camera node's world matrix
//   - world: the drawn node's world matrix
//
// Returns:
//   - GPUObjectUniform: the uniform ready to marshal
func NewGPUObjectUniform(view, world common.Mat4) GPUObjectUniform {
	var g GPUObjectUniform
	common.Mul4(g.ModelViewMatrix[:], view[:], world[:])

	normal := common.IdentityMat3()
	common.NormalMatrix(normal[:], g.ModelViewMatrix[:])
	g.NormalMatrix = common.Mat3ToGPU(normal[:])
	return g
}

// Size returns the size of the GPUObjectUniform struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (112)
func (g *GPUObjectUniform) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUObjectUniform struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPUObjectUniform) Marshal() []byte {
	buf := make([]byte, g.Size())
	for i, v := range g.ModelViewMatrix {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	for i, v := range g.NormalMatrix {
		binary.LittleEndian.PutUint32(buf[64+i*4:], math.Float32bits(v))
	}
	return buf
}
