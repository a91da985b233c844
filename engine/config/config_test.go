package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-core/common"
	"github.com/Carmen-Shannon/oxy-core/engine/texture"
)

const tomlConfig = `
log_level = "debug"
background = [0.1, 0.2, 0.3, 1.0]

[camera]
fov_degrees = 75.0
near = 0.5
far = 250.0

[sampler]
mag_filter = "nearest"
wrap = "repeat"

[renderer]
msaa = 1
depth_format = "depth32float"
program_cache_path = "programs.lz4"
validate_shaders = true

[warmup]
workers = 8
`

const yamlConfig = `
log_level: debug
background: [0.1, 0.2, 0.3, 1.0]
camera:
  fov_degrees: 75
  near: 0.5
  far: 250
sampler:
  mag_filter: nearest
  wrap: repeat
renderer:
  msaa: 1
  depth_format: depth32float
  program_cache_path: programs.lz4
  validate_shaders: true
warmup:
  workers: 8
`

func writeFile(t *testing.T, name, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestLoadTOMLAndYAMLAgree(t *testing.T) {
	fromTOML, err := Load(writeFile(t, "engine.toml", tomlConfig))
	require.NoError(t, err)
	fromYAML, err := Load(writeFile(t, "engine.yml", yamlConfig))
	require.NoError(t, err)

	if diff := cmp.Diff(fromTOML, fromYAML); diff != "" {
		t.Errorf("TOML and YAML differ (-toml +yaml):\n%s", diff)
	}

	assert.Equal(t, common.Vec4{0.1, 0.2, 0.3, 1}, fromTOML.Background)
	assert.Equal(t, float32(75), fromTOML.Camera.FovDegrees)
	assert.Equal(t, "programs.lz4", fromTOML.Renderer.ProgramCachePath)
	assert.True(t, fromTOML.Renderer.ValidateShaders)
	assert.Equal(t, 8, fromTOML.Warmup.Workers)
	// untouched keys keep their defaults
	assert.Equal(t, 256, fromTOML.Warmup.QueueSize)
	assert.Equal(t, "linear", fromTOML.Sampler.MinFilter)

	level, err := fromTOML.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)

	depth, err := fromTOML.Renderer.Depth()
	require.NoError(t, err)
	assert.Equal(t, wgpu.TextureFormatDepth32Float, depth)

	s, err := fromTOML.Sampler.Sampler()
	require.NoError(t, err)
	assert.Equal(t, texture.FilterNearest, s.MagFilter)
	assert.Equal(t, texture.FilterLinear, s.MinFilter)
	assert.Equal(t, texture.WrapRepeat, s.WrapU)
	assert.Equal(t, texture.WrapRepeat, s.WrapW)
}

func TestLoadUnsupportedExtension(t *testing.T) {
	_, err := Load(writeFile(t, "engine.json", "{}"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = Read(strings.NewReader(""), Format("ini"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestLoadEmptyYAMLKeepsDefaults(t *testing.T) {
	cfg, err := Load(writeFile(t, "empty.yaml", ""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	_, err := Read(strings.NewReader("colour = 1\n"), FormatTOML)
	assert.Error(t, err)
	_, err = Read(strings.NewReader("colour: 1\n"), FormatYAML)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"log level", func(c *Config) { c.LogLevel = "loud" }},
		{"background", func(c *Config) { c.Background[2] = 1.5 }},
		{"fov", func(c *Config) { c.Camera.FovDegrees = 180 }},
		{"near", func(c *Config) { c.Camera.Near = 0 }},
		{"far before near", func(c *Config) { c.Camera.Far = c.Camera.Near }},
		{"filter", func(c *Config) { c.Sampler.MinFilter = "cubic" }},
		{"wrap", func(c *Config) { c.Sampler.Wrap = "tile" }},
		{"msaa", func(c *Config) { c.Renderer.MSAA = 2 }},
		{"depth format", func(c *Config) { c.Renderer.DepthFormat = "depth16" }},
		{"workers", func(c *Config) { c.Warmup.Workers = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalid)
		})
	}
}

func TestCameraOptions(t *testing.T) {
	assert.Len(t, Default().Camera.CameraOptions(), 2)
}
