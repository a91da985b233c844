// Package texture holds CPU-side texture and sampler resources and converts them into the
// wgpu descriptors the renderer backend needs to create GPU objects.
package texture

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// Format identifies how a texture's texels are encoded.
type Format int

const (
	// FormatUint8 is 8-bit RGBA with linear color.
	FormatUint8 Format = iota

	// FormatUint8Srgb is 8-bit RGBA with sRGB-encoded color.
	FormatUint8Srgb

	// FormatFloat is 32-bit float RGBA.
	FormatFloat
)

// String implements fmt.Stringer.
func (f Format) String() string {
	switch f {
	case FormatUint8:
		return "uint8"
	case FormatUint8Srgb:
		return "uint8-srgb"
	case FormatFloat:
		return "float"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// BytesPerTexel returns the size of one RGBA texel in bytes.
func (f Format) BytesPerTexel() int {
	if f == FormatFloat {
		return 16
	}
	return 4
}

// WGPUFormat maps the format to the matching wgpu texture format.
//
// Returns:
//   - wgpu.TextureFormat: RGBA8Unorm, RGBA8UnormSrgb or RGBA32Float
func (f Format) WGPUFormat() wgpu.TextureFormat {
	switch f {
	case FormatUint8Srgb:
		return wgpu.TextureFormatRGBA8UnormSrgb
	case FormatFloat:
		return wgpu.TextureFormatRGBA32Float
	default:
		return wgpu.TextureFormatRGBA8Unorm
	}
}

// Texture is a 2D RGBA image held in memory. Levels[0] is the full-resolution image; further levels are
// filled by GenerateMipmaps.
type Texture struct {
	Label  string
	Width  uint32
	Height uint32
	Format Format
	Levels [][]byte
}

// NewTexture creates a texture from raw texel bytes. Panics if the byte count does not match the
// dimensions and format.
//
// Parameters:
//   - width: width in texels
//   - height: height in texels
//   - format: texel encoding
//   - texels: raw RGBA texel bytes, row-major
//
// Returns:
//   - Texture: the texture with a single mip level
func NewTexture(width, height uint32, format Format, texels []byte) Texture {
	want := int(width) * int(height) * format.BytesPerTexel()
	if len(texels) != want {
		panic(fmt.Sprintf("texture: %dx%d %s texture needs %d bytes, got %d", width, height, format, want, len(texels)))
	}
	return Texture{Width: width, Height: height, Format: format, Levels: [][]byte{texels}}
}

// Texels returns the full-resolution texel bytes.
func (t Texture) Texels() []byte {
	if len(t.Levels) == 0 {
		return nil
	}
	return t.Levels[0]
}

// MipLevelCount returns the number of stored mip levels (at least 1).
func (t Texture) MipLevelCount() uint32 {
	return uint32(max(len(t.Levels), 1))
}

// LevelSize returns the dimensions of the given mip level.
//
// Parameters:
//   - level: the mip level, 0 being full resolution
//
// Returns:
//   - uint32: width of the level in texels
//   - uint32: height of the level in texels
func (t Texture) LevelSize(level int) (uint32, uint32) {
	return max(t.Width>>level, 1), max(t.Height>>level, 1)
}

// Descriptor builds the wgpu texture descriptor for a sampled texture that is filled by queue writes.
//
// Returns:
//   - wgpu.TextureDescriptor: the descriptor
func (t Texture) Descriptor() wgpu.TextureDescriptor {
	return wgpu.TextureDescriptor{
		Label:     t.Label,
		Usage:     wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		Dimension: wgpu.TextureDimension2D,
		Size: wgpu.Extent3D{
			Width:              t.Width,
			Height:             t.Height,
			DepthOrArrayLayers: 1,
		},
		Format:        t.Format.WGPUFormat(),
		MipLevelCount: t.MipLevelCount(),
		SampleCount:   1,
	}
}

// DataLayout returns the wgpu data layout describing the bytes of one mip level.
//
// Parameters:
//   - level: the mip level
//
// Returns:
//   - wgpu.TextureDataLayout: the layout for a queue texture write
func (t Texture) DataLayout(level int) wgpu.TextureDataLayout {
	w, h := t.LevelSize(level)
	return wgpu.TextureDataLayout{
		Offset:       0,
		BytesPerRow:  w * uint32(t.Format.BytesPerTexel()),
		RowsPerImage: h,
	}
}
