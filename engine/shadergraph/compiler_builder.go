package shadergraph

import (
	"log/slog"

	"github.com/Carmen-Shannon/oxy-core/common"
)

// DefaultLightDirection is the view-space direction towards the directional light used by BRDF nodes.
var DefaultLightDirection = common.Vec3{0.5, 1.0, 0.75}

// CompilerBuilderOption is a function that configures a compiler instance during construction.
type CompilerBuilderOption func(*compilerImpl)

// WithLightDirection sets the view-space direction towards the light baked into fs_main.
//
// Parameters:
//   - dir: the light direction; it is normalized in the shader
//
// Returns:
//   - CompilerBuilderOption: a function that sets the light direction
func WithLightDirection(dir common.Vec3) CompilerBuilderOption {
	return func(c *compilerImpl) {
		c.lightDirection = dir
	}
}

// WithLogger sets the logger used for compile diagnostics.
//
// Parameters:
//   - logger: the logger, nil keeps slog.Default()
//
// Returns:
//   - CompilerBuilderOption: a function that sets the logger
func WithLogger(logger *slog.Logger) CompilerBuilderOption {
	return func(c *compilerImpl) {
		if logger != nil {
			c.logger = logger
		}
	}
}
