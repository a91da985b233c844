package shader

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-core/common"
	"github.com/Carmen-Shannon/oxy-core/engine/resource"
	"github.com/Carmen-Shannon/oxy-core/engine/shadergraph"
	"github.com/Carmen-Shannon/oxy-core/engine/texture"
)

type graph struct {
	nodes    *resource.Pool[shadergraph.Node]
	textures *resource.Pool[texture.Texture]
	samplers *resource.Pool[texture.Sampler]
}

func newGraph() *graph {
	return &graph{
		nodes:    resource.NewPool[shadergraph.Node](8),
		textures: resource.NewPool[texture.Texture](2),
		samplers: resource.NewPool[texture.Sampler](2),
	}
}

func (g *graph) compile(t *testing.T, root resource.Handle[shadergraph.Node]) (*shadergraph.Program, Shader) {
	t.Helper()
	p, err := shadergraph.NewCompiler(g.nodes, g.textures, g.samplers).Compile(root)
	require.NoError(t, err)
	return p, NewShaderFromSource("test", p.Source)
}

func uniformsSize(t *testing.T, s Shader) uint64 {
	t.Helper()
	size, ok := s.StructSize("Uniforms")
	require.True(t, ok)
	return size
}

func TestReflectedUniformSizeMatchesLayout(t *testing.T) {
	t.Run("vec3 and float share a slot", func(t *testing.T) {
		g := newGraph()
		color := g.nodes.Add(shadergraph.UniformVec3("color", common.Vec3{1, 0, 0}))
		k := g.nodes.Add(shadergraph.UniformFloat("k", 0.5))
		root := g.nodes.Add(shadergraph.Multiply(color, k))

		p, s := g.compile(t, root)
		assert.Equal(t, uint64(p.Layout.BufferSize()), uniformsSize(t, s))
		assert.Equal(t, uint64(16), uniformsSize(t, s))
	})

	t.Run("mat4 aligned to 64", func(t *testing.T) {
		g := newGraph()
		k := g.nodes.Add(shadergraph.UniformFloat("k", 1))
		m := g.nodes.Add(shadergraph.UniformMat4("m", common.IdentityMat4()))
		v := g.nodes.Add(shadergraph.ConstVec3(common.Vec3{1, 1, 1}))
		// mat4 · vec4 needs a vec4 operand; sample a texture for one
		tex := g.textures.Add(texture.NewTexture(1, 1, texture.FormatUint8, []byte{1, 2, 3, 4}))
		samp := g.samplers.Add(texture.NewSampler())
		sample := g.nodes.Add(shadergraph.TextureSample(tex, samp))
		mv := g.nodes.Add(shadergraph.Multiply(m, sample))
		rgb := g.nodes.Add(shadergraph.Extract(mv, "rgb"))
		scaled := g.nodes.Add(shadergraph.Multiply(rgb, k))
		root := g.nodes.Add(shadergraph.Add(scaled, v))

		p, s := g.compile(t, root)
		assert.Equal(t, uint64(128), uniformsSize(t, s))
		assert.Equal(t, uint64(p.Layout.BufferSize()), uniformsSize(t, s))
	})

	t.Run("empty uniforms", func(t *testing.T) {
		g := newGraph()
		root := g.nodes.Add(shadergraph.ConstVec3(common.Vec3{0.2, 0.4, 0.6}))

		p, s := g.compile(t, root)
		assert.Equal(t, uint64(16), uniformsSize(t, s))
		assert.Equal(t, uint64(p.Layout.BufferSize()), uniformsSize(t, s))
	})
}

func TestReflectedFixedStructs(t *testing.T) {
	g := newGraph()
	root := g.nodes.Add(shadergraph.UniformVec3("color", common.Vec3{1, 1, 1}))
	_, s := g.compile(t, root)

	size, ok := s.StructSize("Object")
	require.True(t, ok)
	assert.Equal(t, uint64(112), size)

	size, ok = s.StructSize("Camera")
	require.True(t, ok)
	assert.Equal(t, uint64(64), size)

	_, ok = s.StructSize("Missing")
	assert.False(t, ok)
}

type entryView struct {
	Binding    uint32
	Visibility wgpu.ShaderStage
	Buffer     wgpu.BufferBindingType
	MinSize    uint64
	Texture    wgpu.TextureSampleType
	Sampler    wgpu.SamplerBindingType
}

func TestReflectedBindGroupLayout(t *testing.T) {
	g := newGraph()
	color := g.nodes.Add(shadergraph.UniformVec3("color", common.Vec3{1, 1, 1}))
	tex := g.textures.Add(texture.NewTexture(1, 1, texture.FormatUint8, []byte{1, 2, 3, 4}))
	samp := g.samplers.Add(texture.NewSampler())
	sample := g.nodes.Add(shadergraph.TextureSample(tex, samp))
	rgb := g.nodes.Add(shadergraph.Extract(sample, "rgb"))
	root := g.nodes.Add(shadergraph.Multiply(color, rgb))

	p, s := g.compile(t, root)
	assert.Equal(t, "vs_main", s.VertexEntryPoint())
	assert.Equal(t, "fs_main", s.FragmentEntryPoint())

	desc := s.BindGroupLayoutDescriptor(0)
	got := make([]entryView, len(desc.Entries))
	for i, e := range desc.Entries {
		got[i] = entryView{e.Binding, e.Visibility, e.Buffer.Type, e.Buffer.MinBindingSize, e.Texture.SampleType, e.Sampler.Type}
	}
	want := []entryView{
		{Binding: 0, Visibility: wgpu.ShaderStageVertex, Buffer: wgpu.BufferBindingTypeUniform, MinSize: 112},
		{Binding: 1, Visibility: wgpu.ShaderStageVertex, Buffer: wgpu.BufferBindingTypeUniform, MinSize: 64},
		{Binding: 2, Visibility: wgpu.ShaderStageFragment, Buffer: wgpu.BufferBindingTypeUniform, MinSize: uint64(p.Layout.BufferSize())},
		{Binding: 3, Visibility: wgpu.ShaderStageFragment, Texture: wgpu.TextureSampleTypeFloat},
		{Binding: 4, Visibility: wgpu.ShaderStageFragment, Sampler: wgpu.SamplerBindingTypeFiltering},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("layout mismatch (-want +got):\n%s", diff)
	}

	for _, b := range p.Bindings {
		assert.Equal(t, b.Name, s.BindGroupVarName(0, int(b.Slot)))
		slot, ok := s.BindGroupFromVarName(0, b.Name)
		require.True(t, ok)
		assert.Equal(t, int(b.Slot), slot)
	}
	_, ok := s.BindGroupFromVarName(0, "nope")
	assert.False(t, ok)
}

func TestNormalMatrixLeafMakesObjectVisibleToFragment(t *testing.T) {
	g := newGraph()
	nm := g.nodes.Add(shadergraph.NormalMatrix())
	n := g.nodes.Add(shadergraph.SurfaceNormal())
	root := g.nodes.Add(shadergraph.Multiply(nm, n))

	_, s := g.compile(t, root)
	obj := s.BindGroupLayoutDescriptor(0).Entries[0]
	assert.Equal(t, wgpu.ShaderStageVertex|wgpu.ShaderStageFragment, obj.Visibility)
}

func TestVertexLayoutsOnePerLocation(t *testing.T) {
	g := newGraph()
	_, s := g.compile(t, g.nodes.Add(shadergraph.ConstFloat(1)))

	layouts := s.VertexLayouts()
	require.Len(t, layouts, 3)
	want := []struct {
		stride   uint64
		format   wgpu.VertexFormat
		location uint32
	}{
		{12, wgpu.VertexFormatFloat32x3, 0},
		{12, wgpu.VertexFormatFloat32x3, 1},
		{8, wgpu.VertexFormatFloat32x2, 2},
	}
	for i, w := range want {
		assert.Equal(t, w.stride, layouts[i].ArrayStride)
		require.Len(t, layouts[i].Attributes, 1)
		assert.Equal(t, w.format, layouts[i].Attributes[0].Format)
		assert.Equal(t, w.location, layouts[i].Attributes[0].ShaderLocation)
		assert.Equal(t, uint64(0), layouts[i].Attributes[0].Offset)
	}
}

func TestStripComments(t *testing.T) {
	src := "a // line\nb /* block /* nested */ still */ c"
	assert.Equal(t, "a \nb  c", stripComments(src))
}

func TestModuleDescriptor(t *testing.T) {
	s := NewShaderFromSource("key", "@vertex fn v() {}")
	require.NotNil(t, s.Module())
	assert.Equal(t, "key", s.Module().Label)
	assert.Equal(t, "@vertex fn v() {}", s.Module().WGSLDescriptor.Code)
	assert.Equal(t, "v", s.VertexEntryPoint())
	assert.Empty(t, s.FragmentEntryPoint())
	assert.Nil(t, s.VertexLayouts())
}

func TestValidateGeneratedModules(t *testing.T) {
	g := newGraph()
	tex := g.textures.Add(texture.NewTexture(1, 1, texture.FormatUint8, []byte{1, 2, 3, 4}))
	samp := g.samplers.Add(texture.NewSampler())
	base := g.nodes.Add(shadergraph.Extract(g.nodes.Add(shadergraph.TextureSample(tex, samp)), "rgb"))
	lit := g.nodes.Add(shadergraph.BRDF(base,
		g.nodes.Add(shadergraph.UniformFloat("metallic", 0)),
		g.nodes.Add(shadergraph.UniformFloat("roughness", 0.5))))
	root := g.nodes.Add(shadergraph.ConvertColor(lit, shadergraph.LinearToSRGB))

	p, _ := g.compile(t, root)
	assert.NoError(t, Validate(p.Source))
}

func TestValidateRejectsBrokenModule(t *testing.T) {
	err := Validate("@fragment fn fs_main() -> @location(0) vec4<f32> { return undefined_name; }")
	assert.ErrorIs(t, err, ErrInvalidWGSL)

	assert.ErrorIs(t, Validate("fn ("), ErrInvalidWGSL)
}
