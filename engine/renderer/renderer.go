package renderer

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/Carmen-Shannon/oxy-core/engine/registry"
	"github.com/Carmen-Shannon/oxy-core/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-core/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-core/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-core/engine/resource"
	"github.com/Carmen-Shannon/oxy-core/engine/scene"
	"github.com/Carmen-Shannon/oxy-core/engine/shadergraph"
)

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	pipelineCache map[string]pipeline.Pipeline
	// builtFrom records the program each prepared pipeline was reflected from
	builtFrom map[string]*shadergraph.Program
	programs  ProgramCache

	sampleCount     MSAASampleCount
	depthFormat     wgpu.TextureFormat
	validateShaders bool
	logger          *slog.Logger
}

// Renderer turns scenes into draw lists and materials into render pipeline descriptions. It keeps
// a cache of compiled programs and of the pipelines built from them; creating GPU objects from
// those descriptions is left to the caller's device code.
type Renderer interface {
	// Pipeline retrieves the cached Pipeline associated with the given key.
	// If the Pipeline does not exist, this will return nil.
	//
	// Parameters:
	//   - key: the unique identifier for the Pipeline to retrieve
	//
	// Returns:
	//   - pipeline.Pipeline: the Pipeline associated with the key, or nil if not found
	Pipeline(key string) pipeline.Pipeline

	// Pipelines retrieves a copy of the pipeline cache.
	//
	// Returns:
	//   - map[string]pipeline.Pipeline: a map of pipeline keys to their corresponding Pipeline objects
	Pipelines() map[string]pipeline.Pipeline

	// Programs returns the program cache backing the renderer.
	Programs() ProgramCache

	// PreparePipeline compiles a material, reflects the generated WGSL and caches a pipeline
	// description for it. The cached pipeline is returned while the material's program is
	// unchanged; after SetRoot or Programs().Invalidate the pipeline is rebuilt from the new program.
	// With shader validation enabled the WGSL is checked by naga first.
	//
	// Parameters:
	//   - pools: the resource pools
	//   - h: the material handle
	//
	// Returns:
	//   - pipeline.Pipeline: the pipeline description
	//   - error: ErrUnknownMaterial, a wrapped compile error or a wrapped shader.ErrInvalidWGSL
	PreparePipeline(pools *registry.Pools, h resource.Handle[material.Material]) (pipeline.Pipeline, error)

	// InvalidatePipeline drops the cached pipeline and program of a material so the next
	// PreparePipeline recompiles it.
	//
	// Parameters:
	//   - h: the material handle
	InvalidatePipeline(h resource.Handle[material.Material])

	// BuildRenderList produces the draw list of a scene through its active camera.
	//
	// Parameters:
	//   - s: the scene, with world matrices already updated
	//   - pools: the resource pools
	//
	// Returns:
	//   - RenderList: the frame's draws
	BuildRenderList(s scene.Scene, pools *registry.Pools) RenderList

	// SampleCount returns the multisample count pipelines are described with.
	SampleCount() MSAASampleCount
}

var _ Renderer = &renderer{}

// NewRenderer creates a Renderer configured with the provided options.
//
// Parameters:
//   - options: variadic list of RendererBuilderOption functions
//
// Returns:
//   - Renderer: the renderer
func NewRenderer(options ...RendererBuilderOption) Renderer {
	r := &renderer{
		mu:            &sync.Mutex{},
		pipelineCache: make(map[string]pipeline.Pipeline),
		builtFrom:     make(map[string]*shadergraph.Program),
		sampleCount:   MSAA4x,
		depthFormat:   pipeline.DefaultDepthFormat,
		logger:        slog.Default(),
	}
	for _, opt := range options {
		opt(r)
	}
	if r.programs == nil {
		r.programs = NewProgramCache(WithCacheLogger(r.logger))
	}
	return r
}

// PipelineKey returns the cache key of the pipeline drawing a material.
func PipelineKey(h resource.Handle[material.Material]) string {
	return fmt.Sprintf("material_%d", h.Index())
}

func (r *renderer) Pipeline(key string) pipeline.Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pipelineCache[key]
}

func (r *renderer) Pipelines() map[string]pipeline.Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]pipeline.Pipeline, len(r.pipelineCache))
	for k, v := range r.pipelineCache {
		out[k] = v
	}
	return out
}

func (r *renderer) Programs() ProgramCache {
	return r.programs
}

func (r *renderer) PreparePipeline(pools *registry.Pools, h resource.Handle[material.Material]) (pipeline.Pipeline, error) {
	key := PipelineKey(h)
	program, err := r.programs.Compile(pools, h)
	if err != nil {
		return nil, err
	}
	if p, ok := r.current(key, program); ok {
		return p, nil
	}
	m, _ := pools.Materials.Get(h)

	if r.validateShaders {
		if err := shader.Validate(program.Source); err != nil {
			return nil, fmt.Errorf("renderer: material %q: %w", m.Name(), err)
		}
	}
	s := shader.NewShaderFromSource(key, program.Source)
	if size, ok := s.StructSize("Uniforms"); !ok || size != uint64(program.Layout.BufferSize()) {
		r.logger.Warn("renderer: reflected uniform size differs from packed layout",
			"material", m.Name(), "reflected", size, "packed", program.Layout.BufferSize())
	}
	p := pipeline.NewPipeline(key, s, pipeline.WithMaterial(m), pipeline.WithDepthFormat(r.depthFormat))

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.pipelineCache[key]; ok && r.builtFrom[key] == program {
		return existing, nil
	}
	r.pipelineCache[key] = p
	r.builtFrom[key] = program
	r.logger.Debug("renderer: pipeline prepared", "key", key, "material", m.Name())
	return p, nil
}

// current returns the cached pipeline for key if it was built from program. Pipelines registered
// with WithPipeline have no program and are always current.
func (r *renderer) current(key string, program *shadergraph.Program) (pipeline.Pipeline, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.pipelineCache[key]
	if !ok {
		return nil, false
	}
	built, tracked := r.builtFrom[key]
	if tracked && built != program {
		return nil, false
	}
	return p, true
}

func (r *renderer) InvalidatePipeline(h resource.Handle[material.Material]) {
	r.programs.Invalidate(h)
	key := PipelineKey(h)
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.pipelineCache, key)
	delete(r.builtFrom, key)
}

func (r *renderer) BuildRenderList(s scene.Scene, pools *registry.Pools) RenderList {
	return BuildRenderList(s, pools, r.logger)
}

func (r *renderer) SampleCount() MSAASampleCount {
	return r.sampleCount
}
