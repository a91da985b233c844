// Package config loads engine settings from TOML or YAML files. Every field has a default, so a
// file only needs to name what it changes.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/chewxy/math32"
	"github.com/cogentcore/webgpu/wgpu"

	"github.com/Carmen-Shannon/oxy-core/common"
	"github.com/Carmen-Shannon/oxy-core/engine/camera"
	"github.com/Carmen-Shannon/oxy-core/engine/texture"
)

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("config: invalid value")

// Config is the engine configuration.
type Config struct {
	// LogLevel is one of debug, info, warn or error.
	LogLevel   string      `toml:"log_level" yaml:"log_level"`
	Background common.Vec4 `toml:"background" yaml:"background"`

	Camera   CameraConfig   `toml:"camera" yaml:"camera"`
	Sampler  SamplerConfig  `toml:"sampler" yaml:"sampler"`
	Renderer RendererConfig `toml:"renderer" yaml:"renderer"`
	Warmup   WarmupConfig   `toml:"warmup" yaml:"warmup"`
}

// CameraConfig holds the defaults of newly created cameras.
type CameraConfig struct {
	FovDegrees float32 `toml:"fov_degrees" yaml:"fov_degrees"`
	Near       float32 `toml:"near" yaml:"near"`
	Far        float32 `toml:"far" yaml:"far"`
}

// SamplerConfig describes the default texture sampler.
type SamplerConfig struct {
	// MagFilter, MinFilter and MipmapFilter are linear or nearest.
	MagFilter    string `toml:"mag_filter" yaml:"mag_filter"`
	MinFilter    string `toml:"min_filter" yaml:"min_filter"`
	MipmapFilter string `toml:"mipmap_filter" yaml:"mipmap_filter"`
	// Wrap is clamp, border, mirror or repeat, applied to every axis.
	Wrap string `toml:"wrap" yaml:"wrap"`
}

// RendererConfig holds pipeline defaults.
type RendererConfig struct {
	MSAA uint32 `toml:"msaa" yaml:"msaa"`
	// DepthFormat is depth24plus or depth32float.
	DepthFormat string `toml:"depth_format" yaml:"depth_format"`
	// ProgramCachePath is where compiled programs are persisted; empty disables persistence.
	ProgramCachePath string `toml:"program_cache_path" yaml:"program_cache_path"`
	// ValidateShaders checks generated WGSL with naga before a pipeline is prepared.
	ValidateShaders bool `toml:"validate_shaders" yaml:"validate_shaders"`
}

// WarmupConfig sizes the worker pool compiling materials ahead of the first frame.
type WarmupConfig struct {
	Workers   int `toml:"workers" yaml:"workers"`
	QueueSize int `toml:"queue_size" yaml:"queue_size"`
}

// Default returns the configuration used when no file is given.
//
// Returns:
//   - Config: the defaults
func Default() Config {
	return Config{
		LogLevel:   "info",
		Background: common.Vec4{0, 0, 0, 1},
		Camera: CameraConfig{
			FovDegrees: 60,
			Near:       camera.DefaultNear,
			Far:        camera.DefaultFar,
		},
		Sampler: SamplerConfig{
			MagFilter:    "linear",
			MinFilter:    "linear",
			MipmapFilter: "linear",
			Wrap:         "clamp",
		},
		Renderer: RendererConfig{
			MSAA:        4,
			DepthFormat: "depth24plus",
		},
		Warmup: WarmupConfig{
			Workers:   4,
			QueueSize: 256,
		},
	}
}

// Validate checks every field for a usable value.
//
// Returns:
//   - error: the first problem found wrapped around ErrInvalid, or nil
func (c Config) Validate() error {
	if _, err := c.Level(); err != nil {
		return err
	}
	for i, v := range c.Background {
		if v < 0 || v > 1 {
			return fmt.Errorf("%w: background[%d] = %v is outside [0, 1]", ErrInvalid, i, v)
		}
	}
	if c.Camera.FovDegrees <= 0 || c.Camera.FovDegrees >= 180 {
		return fmt.Errorf("%w: camera.fov_degrees = %v", ErrInvalid, c.Camera.FovDegrees)
	}
	if c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near {
		return fmt.Errorf("%w: camera clip planes near=%v far=%v", ErrInvalid, c.Camera.Near, c.Camera.Far)
	}
	if _, err := c.Sampler.Sampler(); err != nil {
		return err
	}
	switch c.Renderer.MSAA {
	case 1, 4, 8, 16:
	default:
		return fmt.Errorf("%w: renderer.msaa = %d", ErrInvalid, c.Renderer.MSAA)
	}
	if _, err := c.Renderer.Depth(); err != nil {
		return err
	}
	if c.Warmup.Workers < 1 || c.Warmup.QueueSize < 1 {
		return fmt.Errorf("%w: warmup workers=%d queue_size=%d", ErrInvalid, c.Warmup.Workers, c.Warmup.QueueSize)
	}
	return nil
}

// Level parses LogLevel.
//
// Returns:
//   - slog.Level: the level
//   - error: ErrInvalid if the name is unknown
func (c Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("%w: log_level %q", ErrInvalid, c.LogLevel)
	}
	return l, nil
}

// CameraOptions converts the camera section to camera builder options.
func (c CameraConfig) CameraOptions() []camera.CameraBuilderOption {
	return []camera.CameraBuilderOption{
		camera.WithFov(c.FovDegrees * math32.Pi / 180),
		camera.WithClipPlanes(c.Near, c.Far),
	}
}

// Sampler builds the configured default sampler.
//
// Returns:
//   - texture.Sampler: the sampler
//   - error: ErrInvalid for an unknown filter or wrap name
func (c SamplerConfig) Sampler() (texture.Sampler, error) {
	s := texture.NewSampler()
	var err error
	if s.MagFilter, err = filterMode(c.MagFilter); err != nil {
		return s, err
	}
	if s.MinFilter, err = filterMode(c.MinFilter); err != nil {
		return s, err
	}
	if s.MipmapFilter, err = filterMode(c.MipmapFilter); err != nil {
		return s, err
	}
	wrap, err := wrapMode(c.Wrap)
	if err != nil {
		return s, err
	}
	s.WrapU, s.WrapV, s.WrapW = wrap, wrap, wrap
	return s, nil
}

// Depth parses DepthFormat.
//
// Returns:
//   - wgpu.TextureFormat: the depth texture format
//   - error: ErrInvalid for an unknown name
func (c RendererConfig) Depth() (wgpu.TextureFormat, error) {
	switch strings.ToLower(c.DepthFormat) {
	case "depth24plus":
		return wgpu.TextureFormatDepth24Plus, nil
	case "depth32float":
		return wgpu.TextureFormatDepth32Float, nil
	}
	return wgpu.TextureFormatUndefined, fmt.Errorf("%w: renderer.depth_format %q", ErrInvalid, c.DepthFormat)
}

func filterMode(name string) (texture.FilterMode, error) {
	switch strings.ToLower(name) {
	case "linear":
		return texture.FilterLinear, nil
	case "nearest":
		return texture.FilterNearest, nil
	}
	return 0, fmt.Errorf("%w: filter %q", ErrInvalid, name)
}

func wrapMode(name string) (texture.WrapMode, error) {
	switch strings.ToLower(name) {
	case "clamp":
		return texture.WrapClampToEdge, nil
	case "border":
		return texture.WrapClampToBorder, nil
	case "mirror":
		return texture.WrapMirrorRepeat, nil
	case "repeat":
		return texture.WrapRepeat, nil
	}
	return 0, fmt.Errorf("%w: wrap %q", ErrInvalid, name)
}
