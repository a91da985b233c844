package shader

import (
	"strconv"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/Carmen-Shannon/oxy-core/common"
)

// wgslPrimitiveLayoutMap holds size and alignment of the WGSL host-shareable types the engine
// emits. Reference: https://www.w3.org/TR/WGSL/#alignment-and-size
var wgslPrimitiveLayoutMap = map[string]wgslTypeLayout{
	"f32":  {4, 4},
	"i32":  {4, 4},
	"u32":  {4, 4},
	"bool": {4, 4},

	"vec2<f32>": {8, 8},
	"vec2f":     {8, 8},
	"vec3<f32>": {12, 16},
	"vec3f":     {12, 16},
	"vec4<f32>": {16, 16},
	"vec4f":     {16, 16},

	"vec2<u32>": {8, 8},
	"vec3<u32>": {12, 16},
	"vec4<u32>": {16, 16},

	// matCxR<f32>: C columns of vecR<f32>
	"mat2x2<f32>": {16, 8},
	"mat3x3<f32>": {48, 16},
	"mat3x4<f32>": {48, 16},
	"mat4x3<f32>": {64, 16},
	"mat4x4<f32>": {64, 16},
}

// resolveTypeLayout resolves a WGSL type to its layout from the primitive table, known structs,
// or a fixed-size array of either.
//
// Parameters:
//   - typeName: the WGSL type, e.g. "f32", "Uniforms" or "array<vec4<f32>, 4>"
//   - knownTypes: struct layouts resolved so far
//
// Returns:
//   - wgslTypeLayout: the layout
//   - bool: false for unknown or runtime-sized types
func resolveTypeLayout(typeName string, knownTypes map[string]wgslTypeLayout) (wgslTypeLayout, bool) {
	if layout, ok := wgslPrimitiveLayoutMap[typeName]; ok {
		return layout, true
	}
	if layout, ok := knownTypes[typeName]; ok {
		return layout, true
	}

	if !strings.HasPrefix(typeName, "array<") || !strings.HasSuffix(typeName, ">") {
		return wgslTypeLayout{}, false
	}
	inner := typeName[len("array<") : len(typeName)-1]
	comma := strings.LastIndex(inner, ",")
	if comma < 0 {
		return wgslTypeLayout{}, false
	}
	elem, ok := resolveTypeLayout(strings.TrimSpace(inner[:comma]), knownTypes)
	if !ok {
		return wgslTypeLayout{}, false
	}
	count, err := strconv.ParseUint(strings.TrimSpace(inner[comma+1:]), 10, 64)
	if err != nil {
		return wgslTypeLayout{}, false
	}
	// uniform address space arrays have a 16 byte element stride
	stride := common.AlignUp(max(elem.align, 16), elem.size)
	return wgslTypeLayout{count * stride, max(elem.align, 16)}, true
}

// computeStructLayout lays out a struct the way WGSL does: each member at the next offset that
// satisfies its alignment (raised by @align), total rounded up to the largest member alignment.
// @builtin members are not part of any buffer and are skipped.
//
// Parameters:
//   - ps: the parsed struct
//   - knownTypes: struct layouts resolved so far
//
// Returns:
//   - wgslTypeLayout: the struct layout
//   - bool: false if a member type is not yet known
func computeStructLayout(ps parsedStruct, knownTypes map[string]wgslTypeLayout) (wgslTypeLayout, bool) {
	var offset uint64
	maxAlign := uint64(1)

	for _, field := range ps.fields {
		if field.isBuiltin {
			continue
		}
		layout, ok := resolveTypeLayout(field.typeName, knownTypes)
		if !ok {
			return wgslTypeLayout{}, false
		}
		align := max(layout.align, field.align)
		offset = common.AlignUp(align, offset) + layout.size
		maxAlign = max(maxAlign, align)
	}
	return wgslTypeLayout{common.AlignUp(maxAlign, offset), maxAlign}, true
}

// computeStructSizes resolves every struct layout, repeating until structs that embed other
// structs settle.
//
// Parameters:
//   - structs: the parsed structs
//
// Returns:
//   - map[string]wgslTypeLayout: layouts keyed by struct name
func computeStructSizes(structs []parsedStruct) map[string]wgslTypeLayout {
	resolved := make(map[string]wgslTypeLayout, len(structs))
	remaining := append([]parsedStruct(nil), structs...)

	for len(remaining) > 0 {
		next := remaining[:0]
		for _, ps := range remaining {
			if layout, ok := computeStructLayout(ps, resolved); ok {
				resolved[ps.name] = layout
			} else {
				next = append(next, ps)
			}
		}
		if len(next) == len(remaining) {
			break
		}
		remaining = next
	}
	return resolved
}

// classifyResource builds a layout entry for one declaration from its address space and type.
//
// Parameters:
//   - binding: the @binding index
//   - visibility: the stages the resource is visible to
//   - addressSpace: "uniform", "storage, read" and so on; empty for handle types
//   - typeName: the declared WGSL type
//
// Returns:
//   - wgpu.BindGroupLayoutEntry: the populated entry
func classifyResource(binding uint32, visibility wgpu.ShaderStage, addressSpace, typeName string) wgpu.BindGroupLayoutEntry {
	entry := wgpu.BindGroupLayoutEntry{Binding: binding, Visibility: visibility}

	switch {
	case addressSpace == "uniform":
		entry.Buffer.Type = wgpu.BufferBindingTypeUniform
	case strings.HasPrefix(addressSpace, "storage"):
		entry.Buffer.Type = wgpu.BufferBindingTypeReadOnlyStorage
		if strings.Contains(addressSpace, "read_write") {
			entry.Buffer.Type = wgpu.BufferBindingTypeStorage
		}
	case typeName == "sampler":
		entry.Sampler.Type = wgpu.SamplerBindingTypeFiltering
	case typeName == "sampler_comparison":
		entry.Sampler.Type = wgpu.SamplerBindingTypeComparison
	case strings.HasPrefix(typeName, "texture_depth_2d"):
		entry.Texture.SampleType = wgpu.TextureSampleTypeDepth
		entry.Texture.ViewDimension = wgpu.TextureViewDimension2D
	case strings.HasPrefix(typeName, "texture_2d<"):
		entry.Texture.ViewDimension = wgpu.TextureViewDimension2D
		entry.Texture.SampleType = sampleType(typeName)
	case strings.HasPrefix(typeName, "texture_cube<"):
		entry.Texture.ViewDimension = wgpu.TextureViewDimensionCube
		entry.Texture.SampleType = sampleType(typeName)
	}
	return entry
}

func sampleType(typeName string) wgpu.TextureSampleType {
	_, param, _ := strings.Cut(typeName, "<")
	switch strings.TrimSuffix(param, ">") {
	case "i32":
		return wgpu.TextureSampleTypeSint
	case "u32":
		return wgpu.TextureSampleTypeUint
	default:
		return wgpu.TextureSampleTypeFloat
	}
}

// stripComments removes line comments and (possibly nested) block comments.
func stripComments(source string) string {
	var sb strings.Builder
	sb.Grow(len(source))
	depth := 0
	for i := 0; i < len(source); i++ {
		if i+1 < len(source) {
			switch {
			case source[i] == '/' && source[i+1] == '*':
				depth++
				i++
				continue
			case source[i] == '*' && source[i+1] == '/' && depth > 0:
				depth--
				i++
				continue
			case source[i] == '/' && source[i+1] == '/' && depth == 0:
				for i < len(source) && source[i] != '\n' {
					i++
				}
				if i < len(source) {
					sb.WriteByte('\n')
				}
				continue
			}
		}
		if depth == 0 {
			sb.WriteByte(source[i])
		}
	}
	return sb.String()
}
