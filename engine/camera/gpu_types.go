package camera

import (
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/Carmen-Shannon/oxy-core/common"
)

// GPUCameraUniformSource is the WGSL definition of the Camera struct bound at slot 1 of every
// compiled material. Matches GPUCameraUniform exactly (64 bytes).
const GPUCameraUniformSource = `struct Camera {
  projection_matrix: mat4x4<f32>,
};
`

// GPUCameraUniform is the GPU-aligned representation of the camera uniform buffer.
// Size: 64 bytes.
type GPUCameraUniform struct {
	ProjectionMatrix common.Mat4 // offset 0: projection matrix (mat4x4<f32>)
}

// Size returns the size of the GPUCameraUniform struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (64)
func (g *GPUCameraUniform) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUCameraUniform struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPUCameraUniform) Marshal() []byte {
	buf := make([]byte, g.Size())
	for i := range 16 {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(g.ProjectionMatrix[i]))
	}
	return buf
}
