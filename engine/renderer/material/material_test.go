package material

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-core/common"
	"github.com/Carmen-Shannon/oxy-core/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-core/engine/resource"
	"github.com/Carmen-Shannon/oxy-core/engine/shadergraph"
	"github.com/Carmen-Shannon/oxy-core/engine/texture"
)

type pools struct {
	nodes    *resource.Pool[shadergraph.Node]
	textures *resource.Pool[texture.Texture]
	samplers *resource.Pool[texture.Sampler]
}

func newPools() pools {
	return pools{
		nodes:    resource.NewPool[shadergraph.Node](16),
		textures: resource.NewPool[texture.Texture](2),
		samplers: resource.NewPool[texture.Sampler](2),
	}
}

func (p pools) compiler() shadergraph.Compiler {
	return shadergraph.NewCompiler(p.nodes, p.textures, p.samplers)
}

// build compiles m and checks the generated module with naga.
func (p pools) build(t *testing.T, m Material) *shadergraph.Program {
	t.Helper()
	prog, err := m.BuildShaderCode(p.compiler())
	require.NoError(t, err)
	require.NoError(t, shader.Validate(prog.Source), prog.Source)
	return prog
}

func (p pools) ref() TextureRef {
	return TextureRef{
		Texture: p.textures.Add(texture.NewTexture(1, 1, texture.FormatUint8Srgb, []byte{128, 128, 255, 255})),
		Sampler: p.samplers.Add(texture.NewSampler()),
	}
}

func TestNewMaterialDefaults(t *testing.T) {
	m := NewMaterial(resource.HandleAt[shadergraph.Node](2))
	assert.Equal(t, CullBack, m.CullMode())
	assert.Equal(t, WindingCCW, m.Winding())
	assert.Equal(t, 2, m.Root().Index())

	m = NewMaterial(resource.HandleAt[shadergraph.Node](0), WithName("floor"), WithCullMode(CullNone), WithWinding(WindingCW))
	assert.Equal(t, "floor", m.Name())
	assert.Equal(t, wgpu.CullModeNone, m.CullMode().WGPU())
	assert.Equal(t, wgpu.FrontFaceCW, m.Winding().WGPU())
}

func TestBasicMaterial(t *testing.T) {
	p := newPools()
	m := NewBasicMaterial(p.nodes, common.Vec3{0.2, 0.4, 0.6})

	prog := p.build(t, m)
	assert.Equal(t, shadergraph.TypeVec3, prog.Output)

	u := NewGPUMaterialUniform(prog, p.nodes)
	assert.Equal(t, 16, u.Size())
	buf := u.Marshal()
	assert.Equal(t, float32(0.4), math.Float32frombits(binary.LittleEndian.Uint32(buf[4:])))
}

func TestTexturedMaterialBindings(t *testing.T) {
	p := newPools()
	ref := p.ref()
	m := NewTexturedMaterial(p.nodes, common.Vec3{1, 1, 1}, ref)

	textures, err := m.Textures(p.nodes)
	require.NoError(t, err)
	assert.Equal(t, []resource.Handle[texture.Texture]{ref.Texture}, textures)

	samplers, err := m.Samplers(p.nodes)
	require.NoError(t, err)
	assert.Equal(t, []resource.Handle[texture.Sampler]{ref.Sampler}, samplers)

	contents, err := m.UniformContents(p.nodes)
	require.NoError(t, err)
	require.Len(t, contents, 2)
	assert.Equal(t, shadergraph.ContentVec3, contents[0].Kind)
	assert.Equal(t, shadergraph.ContentTexture, contents[1].Kind)

	prog := p.build(t, m)
	assert.Len(t, prog.Bindings, 5)
}

func TestPBRMaterial(t *testing.T) {
	t.Run("without normal map", func(t *testing.T) {
		p := newPools()
		m := NewPBRMaterial(p.nodes, PBRParams{BaseColor: common.Vec3{1, 0, 0}, Metallic: 0.1, Roughness: 0.6})
		prog := p.build(t, m)
		assert.Contains(t, prog.Source, "fn brdf(")
		assert.NotContains(t, prog.Source, "perturb_normal_to_arb")
		assert.Equal(t, uint32(32), prog.Layout.Size)
	})

	t.Run("with normal map", func(t *testing.T) {
		p := newPools()
		ref := p.ref()
		m := NewPBRMaterial(p.nodes, PBRParams{BaseColor: common.Vec3{1, 1, 1}, Roughness: 1, NormalMap: &ref})
		prog := p.build(t, m)
		assert.Contains(t, prog.Source, "perturb_normal_to_arb(")
		assert.Len(t, prog.Textures(), 1)
	})
}

func TestBuildShaderCodeWrapsErrors(t *testing.T) {
	p := newPools()
	m := NewMaterial(resource.HandleAt[shadergraph.Node](5), WithName("broken"))

	_, err := m.BuildShaderCode(p.compiler())
	require.ErrorIs(t, err, shadergraph.ErrMissingNode)
	assert.Contains(t, err.Error(), `material "broken"`)

	_, err = m.UniformContents(p.nodes)
	assert.ErrorIs(t, err, shadergraph.ErrMissingNode)
}
