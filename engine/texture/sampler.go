package texture

import (
	"github.com/Carmen-Shannon/oxy-core/common"
	"github.com/cogentcore/webgpu/wgpu"
)

// FilterMode selects texel filtering.
type FilterMode int

const (
	FilterLinear FilterMode = iota
	FilterNearest
)

// WrapMode selects how coordinates outside [0, 1] are resolved.
type WrapMode int

const (
	WrapClampToEdge WrapMode = iota
	WrapClampToBorder
	WrapMirrorRepeat
	WrapRepeat
)

// Sampler describes how a texture is filtered and addressed. The zero value is a linear,
// clamp-to-edge sampler.
type Sampler struct {
	Label        string
	MagFilter    FilterMode
	MinFilter    FilterMode
	MipmapFilter FilterMode
	WrapU        WrapMode
	WrapV        WrapMode
	WrapW        WrapMode
	LodMinClamp  float32
	LodMaxClamp  float32
}

// NewSampler creates a Sampler with linear filtering and clamp-to-edge wrapping.
//
// Returns:
//   - Sampler: the default sampler
func NewSampler() Sampler {
	return Sampler{LodMaxClamp: 32}
}

func addressMode(w WrapMode) wgpu.AddressMode {
	switch w {
	case WrapRepeat:
		return wgpu.AddressModeRepeat
	case WrapMirrorRepeat:
		return wgpu.AddressModeMirrorRepeat
	default:
		// WebGPU has no border color support; clamp-to-border degrades to clamp-to-edge.
		return wgpu.AddressModeClampToEdge
	}
}

func filterMode(f FilterMode) wgpu.FilterMode {
	if f == FilterNearest {
		return wgpu.FilterModeNearest
	}
	return wgpu.FilterModeLinear
}

func mipmapFilterMode(f FilterMode) wgpu.MipmapFilterMode {
	if f == FilterNearest {
		return wgpu.MipmapFilterModeNearest
	}
	return wgpu.MipmapFilterModeLinear
}

// Descriptor builds the wgpu sampler descriptor for this sampler.
//
// Returns:
//   - wgpu.SamplerDescriptor: the descriptor
func (s Sampler) Descriptor() wgpu.SamplerDescriptor {
	return wgpu.SamplerDescriptor{
		Label:         s.Label,
		AddressModeU:  addressMode(s.WrapU),
		AddressModeV:  addressMode(s.WrapV),
		AddressModeW:  addressMode(s.WrapW),
		MagFilter:     filterMode(s.MagFilter),
		MinFilter:     filterMode(s.MinFilter),
		MipmapFilter:  mipmapFilterMode(s.MipmapFilter),
		LodMinClamp:   s.LodMinClamp,
		LodMaxClamp:   common.Coalesce(s.LodMaxClamp, 32.0),
		MaxAnisotropy: 1,
	}
}
