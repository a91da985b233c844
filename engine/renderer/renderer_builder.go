package renderer

import (
	"log/slog"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/Carmen-Shannon/oxy-core/engine/renderer/pipeline"
)

// RendererBuilderOption is a functional option applied to a renderer during construction via NewRenderer.
type RendererBuilderOption func(*renderer)

// WithPipeline pre-registers a single Pipeline in the renderer's pipeline cache under the given key.
//
// Parameters:
//   - key: the unique identifier for the pipeline
//   - p: the Pipeline to cache
//
// Returns:
//   - RendererBuilderOption: a function that applies the pipeline option to a renderer
func WithPipeline(key string, p pipeline.Pipeline) RendererBuilderOption {
	return func(r *renderer) {
		r.pipelineCache[key] = p
	}
}

// WithProgramCache shares an existing program cache instead of creating a private one.
//
// Parameters:
//   - c: the program cache
//
// Returns:
//   - RendererBuilderOption: a function that applies the cache option to a renderer
func WithProgramCache(c ProgramCache) RendererBuilderOption {
	return func(r *renderer) {
		r.programs = c
	}
}

// WithMSAA sets the multisample anti-aliasing sample count for the renderer.
// When not specified, the default is MSAA4x. Unsupported counts fall back to MSAAOff.
//
// Parameters:
//   - count: the MSAASampleCount to use (MSAAOff, MSAA4x, MSAA8x, or MSAA16x)
//
// Returns:
//   - RendererBuilderOption: a function that applies the MSAA option to a renderer
func WithMSAA(count MSAASampleCount) RendererBuilderOption {
	return func(r *renderer) {
		if !count.Valid() {
			count = MSAAOff
		}
		r.sampleCount = count
	}
}

// WithDepthFormat sets the depth attachment format of every prepared pipeline.
//
// Parameters:
//   - format: the depth texture format
//
// Returns:
//   - RendererBuilderOption: a function that applies the depth format to a renderer
func WithDepthFormat(format wgpu.TextureFormat) RendererBuilderOption {
	return func(r *renderer) {
		r.depthFormat = format
	}
}

// WithShaderValidation makes PreparePipeline check every generated WGSL module with naga before
// reflecting it.
//
// Parameters:
//   - enabled: whether to validate
//
// Returns:
//   - RendererBuilderOption: a function that applies the validation option to a renderer
func WithShaderValidation(enabled bool) RendererBuilderOption {
	return func(r *renderer) {
		r.validateShaders = enabled
	}
}

// WithLogger sets the logger used by the renderer and its default program cache.
func WithLogger(logger *slog.Logger) RendererBuilderOption {
	return func(r *renderer) {
		r.logger = logger
	}
}
