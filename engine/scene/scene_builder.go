package scene

import (
	"log/slog"

	"github.com/Carmen-Shannon/oxy-core/common"
)

// SceneBuilderOption is a functional option for configuring a Scene.
// Use the With* functions to create options.
type SceneBuilderOption func(s *scene)

// WithName sets the scene's identifier.
//
// Parameters:
//   - name: the scene name
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithName(name string) SceneBuilderOption {
	return func(s *scene) {
		s.name = name
	}
}

// WithBackground sets the clear color. Defaults to opaque black.
//
// Parameters:
//   - color: RGBA color
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithBackground(color common.Vec4) SceneBuilderOption {
	return func(s *scene) {
		s.background = color
	}
}

// WithLogger sets the logger used for traversal diagnostics. Defaults to slog.Default().
//
// Parameters:
//   - logger: the logger; nil is ignored
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithLogger(logger *slog.Logger) SceneBuilderOption {
	return func(s *scene) {
		if logger != nil {
			s.logger = logger
		}
	}
}
