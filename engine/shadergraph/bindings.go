package shadergraph

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-core/engine/resource"
	"github.com/Carmen-Shannon/oxy-core/engine/texture"
)

// Fixed binding slots in bind group 0.
const (
	SlotObject   uint32 = 0
	SlotCamera   uint32 = 1
	SlotUniforms uint32 = 2
	// FirstResourceSlot is where texture and sampler bindings start.
	FirstResourceSlot uint32 = 3
)

// BindingKind is the kind of resource bound at a slot.
type BindingKind int

const (
	BindingObject BindingKind = iota
	BindingCamera
	BindingUniforms
	BindingTexture
	BindingSampler
)

// String implements fmt.Stringer.
func (k BindingKind) String() string {
	switch k {
	case BindingObject:
		return "object"
	case BindingCamera:
		return "camera"
	case BindingUniforms:
		return "uniforms"
	case BindingTexture:
		return "texture"
	case BindingSampler:
		return "sampler"
	default:
		return fmt.Sprintf("BindingKind(%d)", int(k))
	}
}

// Binding is one entry of a compiled program's binding table.
type Binding struct {
	Slot uint32
	Kind BindingKind
	// Name is the WGSL variable bound at Slot.
	Name    string
	Texture resource.Handle[texture.Texture]
	Sampler resource.Handle[texture.Sampler]
}

// TextureVar returns the WGSL variable name for a texture.
func TextureVar(h resource.Handle[texture.Texture]) string {
	return fmt.Sprintf("texture_%d", h.Index())
}

// SamplerVar returns the WGSL variable name for a sampler.
func SamplerVar(h resource.Handle[texture.Sampler]) string {
	return fmt.Sprintf("sampler_%d", h.Index())
}

// buildBindings returns the fixed object, camera and uniform bindings followed by one binding per
// distinct texture and sampler, numbered from FirstResourceSlot in order of first appearance.
func buildBindings(contents []UniformContent) []Binding {
	bindings := []Binding{
		{Slot: SlotObject, Kind: BindingObject, Name: "obj"},
		{Slot: SlotCamera, Kind: BindingCamera, Name: "camera"},
		{Slot: SlotUniforms, Kind: BindingUniforms, Name: "unif"},
	}

	slot := FirstResourceSlot
	textures := make(map[resource.Handle[texture.Texture]]bool)
	samplers := make(map[resource.Handle[texture.Sampler]]bool)
	for _, c := range contents {
		if c.Kind != ContentTexture {
			continue
		}
		if !textures[c.Texture] {
			textures[c.Texture] = true
			bindings = append(bindings, Binding{Slot: slot, Kind: BindingTexture, Name: TextureVar(c.Texture), Texture: c.Texture})
			slot++
		}
		if !samplers[c.Sampler] {
			samplers[c.Sampler] = true
			bindings = append(bindings, Binding{Slot: slot, Kind: BindingSampler, Name: SamplerVar(c.Sampler), Sampler: c.Sampler})
			slot++
		}
	}
	return bindings
}

func bindingDecl(b Binding) string {
	var ty string
	switch b.Kind {
	case BindingObject:
		ty = "var<uniform> obj: Object"
	case BindingCamera:
		ty = "var<uniform> camera: Camera"
	case BindingUniforms:
		ty = "var<uniform> unif: Uniforms"
	case BindingTexture:
		ty = fmt.Sprintf("var %s: texture_2d<f32>", b.Name)
	case BindingSampler:
		ty = fmt.Sprintf("var %s: sampler", b.Name)
	}
	return fmt.Sprintf("@group(0) @binding(%d) %s;\n", b.Slot, ty)
}
