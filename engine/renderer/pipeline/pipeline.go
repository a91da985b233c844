package pipeline

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/Carmen-Shannon/oxy-core/engine/renderer/shader"
)

// DefaultDepthFormat is the depth attachment format used when none is configured.
const DefaultDepthFormat = wgpu.TextureFormatDepth24Plus

// pipeline is the implementation of the Pipeline interface.
// It holds the CPU-side render state for one compiled material and, once created, the GPU pipeline.
type pipeline struct {
	// pipelineKey is the unique identifier for this pipeline, used for caching and lookups
	pipelineKey string

	// shader is the reflected module holding both entry points
	shader shader.Shader

	// renderPipeline is set by the backend after creation, nil until then
	renderPipeline *wgpu.RenderPipeline

	depthTestEnabled    bool
	depthWriteEnabled   bool
	depthBias           int32
	depthBiasSlopeScale float32
	depthFormat         wgpu.TextureFormat
	blendEnabled        bool
	cullMode            wgpu.CullMode
	topology            wgpu.PrimitiveTopology
	frontFace           wgpu.FrontFace
	writeMask           wgpu.ColorWriteMask
	blendState          *wgpu.BlendState
}

// Pipeline describes a render pipeline for a single compiled material: its reflected shader plus
// the depth, blend, cull and topology state needed to create the GPU object.
type Pipeline interface {
	// PipelineKey returns the unique key associated with this pipeline, used for caching and lookups.
	//
	// Returns:
	//   - string: the unique key for this pipeline
	PipelineKey() string

	// Shader returns the reflected shader holding the vertex and fragment entry points.
	//
	// Returns:
	//   - shader.Shader: the shader
	Shader() shader.Shader

	// DepthTestEnabled returns whether depth testing is enabled for this pipeline.
	DepthTestEnabled() bool

	// DepthWriteEnabled returns whether depth writing is enabled for this pipeline.
	DepthWriteEnabled() bool

	// DepthBias returns the constant depth bias.
	DepthBias() int32

	// DepthBiasSlopeScale returns the slope scaled depth bias.
	DepthBiasSlopeScale() float32

	// DepthFormat returns the depth attachment format.
	//
	// Returns:
	//   - wgpu.TextureFormat: the depth format, Depth24Plus unless overridden
	DepthFormat() wgpu.TextureFormat

	// BlendEnabled returns whether blending is enabled for this pipeline.
	BlendEnabled() bool

	// CullMode returns the cull mode configured for this pipeline.
	CullMode() wgpu.CullMode

	// Topology returns the primitive topology configured for this pipeline.
	Topology() wgpu.PrimitiveTopology

	// FrontFace returns the front face winding order configured for this pipeline.
	FrontFace() wgpu.FrontFace

	// WriteMask returns the color write mask configured for this pipeline.
	WriteMask() wgpu.ColorWriteMask

	// BlendState returns the blend state configured for this pipeline.
	//
	// Returns:
	//   - *wgpu.BlendState: the blend state, applied only when blending is enabled
	BlendState() *wgpu.BlendState

	// PrimitiveState returns the primitive assembly state built from topology, winding and culling.
	//
	// Returns:
	//   - wgpu.PrimitiveState: the primitive state
	PrimitiveState() wgpu.PrimitiveState

	// DepthStencilState returns the depth state. A disabled depth test compares Always.
	//
	// Returns:
	//   - *wgpu.DepthStencilState: the depth stencil state
	DepthStencilState() *wgpu.DepthStencilState

	// BindGroupLayouts returns the shader's bind group layout descriptors in group order, each
	// labelled after the shader key. Groups the shader skips are filled with empty layouts so the
	// slice index is the @group index.
	//
	// Returns:
	//   - []wgpu.BindGroupLayoutDescriptor: one descriptor per group up to the highest used group
	BindGroupLayouts() []wgpu.BindGroupLayoutDescriptor

	// Descriptor builds the full render pipeline descriptor against created GPU objects.
	//
	// Parameters:
	//   - layout: the pipeline layout built from BindGroupLayouts
	//   - module: the shader module created from Shader().Module()
	//   - colorFormat: the color target format
	//   - sampleCount: the multisample count, 1 for no MSAA
	//
	// Returns:
	//   - *wgpu.RenderPipelineDescriptor: the descriptor ready for CreateRenderPipeline
	Descriptor(layout *wgpu.PipelineLayout, module *wgpu.ShaderModule, colorFormat wgpu.TextureFormat, sampleCount uint32) *wgpu.RenderPipelineDescriptor

	// RenderPipeline returns the created GPU pipeline, or nil before creation.
	RenderPipeline() *wgpu.RenderPipeline

	// SetRenderPipeline sets the render pipeline.
	//
	// Parameters:
	//   - p: the WebGPU render pipeline to set
	SetRenderPipeline(p *wgpu.RenderPipeline)
}

var _ Pipeline = &pipeline{}

// NewPipeline creates a render Pipeline for a reflected shader.
//
// Parameters:
//   - pipelineKey: the unique key for this pipeline
//   - s: the reflected shader providing both entry points
//   - opts: a variadic list of PipelineBuilderOption functions to configure the pipeline
//
// Returns:
//   - Pipeline: a new Pipeline instance with the specified configuration
func NewPipeline(pipelineKey string, s shader.Shader, opts ...PipelineBuilderOption) Pipeline {
	p := &pipeline{
		pipelineKey:       pipelineKey,
		shader:            s,
		depthTestEnabled:  true,
		depthWriteEnabled: true,
		depthFormat:       DefaultDepthFormat,
		blendEnabled:      false,
		cullMode:          wgpu.CullModeBack,
		topology:          wgpu.PrimitiveTopologyTriangleList,
		frontFace:         wgpu.FrontFaceCCW,
		writeMask:         wgpu.ColorWriteMaskAll,
		blendState: &wgpu.BlendState{
			Color: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorSrcAlpha,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
			Alpha: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorOne,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
		},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *pipeline) PipelineKey() string {
	return p.pipelineKey
}

func (p *pipeline) Shader() shader.Shader {
	return p.shader
}

func (p *pipeline) DepthTestEnabled() bool {
	return p.depthTestEnabled
}

func (p *pipeline) DepthWriteEnabled() bool {
	return p.depthWriteEnabled
}

func (p *pipeline) DepthBias() int32 {
	return p.depthBias
}

func (p *pipeline) DepthBiasSlopeScale() float32 {
	return p.depthBiasSlopeScale
}

func (p *pipeline) DepthFormat() wgpu.TextureFormat {
	return p.depthFormat
}

func (p *pipeline) BlendEnabled() bool {
	return p.blendEnabled
}

func (p *pipeline) CullMode() wgpu.CullMode {
	return p.cullMode
}

func (p *pipeline) Topology() wgpu.PrimitiveTopology {
	return p.topology
}

func (p *pipeline) FrontFace() wgpu.FrontFace {
	return p.frontFace
}

func (p *pipeline) WriteMask() wgpu.ColorWriteMask {
	return p.writeMask
}

func (p *pipeline) BlendState() *wgpu.BlendState {
	return p.blendState
}

func (p *pipeline) PrimitiveState() wgpu.PrimitiveState {
	return wgpu.PrimitiveState{
		Topology:  p.topology,
		FrontFace: p.frontFace,
		CullMode:  p.cullMode,
	}
}

func (p *pipeline) DepthStencilState() *wgpu.DepthStencilState {
	depthCompare := wgpu.CompareFunctionLess
	if !p.depthTestEnabled {
		depthCompare = wgpu.CompareFunctionAlways
	}
	return &wgpu.DepthStencilState{
		Format:              p.depthFormat,
		DepthWriteEnabled:   p.depthWriteEnabled,
		DepthCompare:        depthCompare,
		DepthBias:           p.depthBias,
		DepthBiasSlopeScale: p.depthBiasSlopeScale,
		StencilFront: wgpu.StencilFaceState{
			Compare: wgpu.CompareFunctionAlways,
		},
		StencilBack: wgpu.StencilFaceState{
			Compare: wgpu.CompareFunctionAlways,
		},
	}
}

func (p *pipeline) BindGroupLayouts() []wgpu.BindGroupLayoutDescriptor {
	groups := p.shader.BindGroupLayoutDescriptors()
	if len(groups) == 0 {
		return nil
	}
	highest := 0
	for g := range groups {
		highest = max(highest, g)
	}

	out := make([]wgpu.BindGroupLayoutDescriptor, highest+1)
	for g := range out {
		desc := groups[g]
		desc.Label = fmt.Sprintf("%s group %d", p.shader.Key(), g)
		out[g] = desc
	}
	return out
}

func (p *pipeline) Descriptor(layout *wgpu.PipelineLayout, module *wgpu.ShaderModule, colorFormat wgpu.TextureFormat, sampleCount uint32) *wgpu.RenderPipelineDescriptor {
	target := wgpu.ColorTargetState{
		Format:    colorFormat,
		WriteMask: p.writeMask,
	}
	if p.blendEnabled {
		target.Blend = p.blendState
	}
	return &wgpu.RenderPipelineDescriptor{
		Label:  p.pipelineKey + " Render Pipeline",
		Layout: layout,
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: p.shader.VertexEntryPoint(),
			Buffers:    p.shader.VertexLayouts(),
		},
		Fragment: &wgpu.FragmentState{
			Module:     module,
			EntryPoint: p.shader.FragmentEntryPoint(),
			Targets:    []wgpu.ColorTargetState{target},
		},
		Primitive: p.PrimitiveState(),
		Multisample: wgpu.MultisampleState{
			Count: max(sampleCount, 1),
			Mask:  0xFFFFFFFF,
		},
		DepthStencil: p.DepthStencilState(),
	}
}

func (p *pipeline) RenderPipeline() *wgpu.RenderPipeline {
	return p.renderPipeline
}

func (p *pipeline) SetRenderPipeline(rp *wgpu.RenderPipeline) {
	p.renderPipeline = rp
}
