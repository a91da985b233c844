package material

import (
	"github.com/Carmen-Shannon/oxy-core/common"
	"github.com/Carmen-Shannon/oxy-core/engine/resource"
	"github.com/Carmen-Shannon/oxy-core/engine/shadergraph"
	"github.com/Carmen-Shannon/oxy-core/engine/texture"
)

// TextureRef pairs a texture with the sampler it is read through.
type TextureRef struct {
	Texture resource.Handle[texture.Texture]
	Sampler resource.Handle[texture.Sampler]
}

// PBRParams configures NewPBRMaterial.
type PBRParams struct {
	BaseColor common.Vec3
	Metallic  float32
	Roughness float32
	// NormalMap is an optional tangent-space normal map.
	NormalMap *TextureRef
}

// NewBasicMaterial builds a material outputting a single uniform color.
//
// Parameters:
//   - nodes: the shading node pool the graph is added to
//   - color: the linear RGB color
//   - options: material builder options
//
// Returns:
//   - Material: the material
func NewBasicMaterial(nodes *resource.Pool[shadergraph.Node], color common.Vec3, options ...MaterialBuilderOption) Material {
	root := nodes.Add(shadergraph.UniformVec3("color", color))
	return NewMaterial(root, options...)
}

// NewTexturedMaterial builds a material multiplying a uniform color with a texture's RGB channels.
//
// Parameters:
//   - nodes: the shading node pool the graph is added to
//   - color: the tint color
//   - tex: the texture and sampler to read
//   - options: material builder options
//
// Returns:
//   - Material: the material
func NewTexturedMaterial(nodes *resource.Pool[shadergraph.Node], color common.Vec3, tex TextureRef, options ...MaterialBuilderOption) Material {
	tint := nodes.Add(shadergraph.UniformVec3("color", color))
	sample := nodes.Add(shadergraph.TextureSample(tex.Texture, tex.Sampler))
	rgb := nodes.Add(shadergraph.Extract(sample, "rgb"))
	root := nodes.Add(shadergraph.Multiply(tint, rgb))
	return NewMaterial(root, options...)
}

// NewPBRMaterial builds a material shaded with the BRDF node. When a normal map is supplied its
// sample is remapped from [0, 1] to [-1, 1] and perturbs the surface normal.
//
// Parameters:
//   - nodes: the shading node pool the graph is added to
//   - params: base color, metallic, roughness and optional normal map
//   - options: material builder options
//
// Returns:
//   - Material: the material
func NewPBRMaterial(nodes *resource.Pool[shadergraph.Node], params PBRParams, options ...MaterialBuilderOption) Material {
	base := nodes.Add(shadergraph.UniformVec3("base_color", params.BaseColor))
	metallic := nodes.Add(shadergraph.UniformFloat("metallic", params.Metallic))
	roughness := nodes.Add(shadergraph.UniformFloat("roughness", params.Roughness))

	if params.NormalMap == nil {
		return NewMaterial(nodes.Add(shadergraph.BRDF(base, metallic, roughness)), options...)
	}

	sample := nodes.Add(shadergraph.TextureSample(params.NormalMap.Texture, params.NormalMap.Sampler))
	rgb := nodes.Add(shadergraph.Extract(sample, "rgb"))
	two := nodes.Add(shadergraph.ConstFloat(2))
	one := nodes.Add(shadergraph.ConstFloat(1))
	remapped := nodes.Add(shadergraph.Subtract(nodes.Add(shadergraph.Multiply(rgb, two)), one))
	normal := nodes.Add(shadergraph.TangentNormal(remapped))
	return NewMaterial(nodes.Add(shadergraph.BRDFWithNormal(base, metallic, roughness, normal)), options...)
}
