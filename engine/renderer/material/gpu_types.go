package material

import (
	"github.com/Carmen-Shannon/oxy-core/engine/resource"
	"github.com/Carmen-Shannon/oxy-core/engine/shadergraph"
)

// GPUMaterialUniform is the contents of a material's Uniforms buffer, bound at
// shadergraph.SlotUniforms. Its layout is whatever the compiled graph packed, so unlike the fixed
// object and camera uniforms the size is only known after compilation.
type GPUMaterialUniform struct {
	Layout shadergraph.Layout
	Data   []byte
}

// NewGPUMaterialUniform packs the current uniform leaf values of a compiled program.
//
// Parameters:
//   - program: the compiled material program
//   - nodes: the shading node pool holding the live values
//
// Returns:
//   - GPUMaterialUniform: the packed uniform block
func NewGPUMaterialUniform(program *shadergraph.Program, nodes *resource.Pool[shadergraph.Node]) GPUMaterialUniform {
	return GPUMaterialUniform{Layout: program.Layout, Data: program.UniformBytes(nodes)}
}

// Size returns the size of the uniform buffer in bytes.
//
// Returns:
//   - int: the buffer size, never less than 16
func (g *GPUMaterialUniform) Size() int {
	return int(g.Layout.BufferSize())
}

// Marshal returns the uniform bytes ready for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPUMaterialUniform) Marshal() []byte {
	buf := make([]byte, g.Size())
	copy(buf, g.Data)
	return buf
}
