// Package shadergraph compiles a graph of shading nodes into WGSL source, a packed uniform
// layout and a binding table for textures and samplers.
//
// Nodes live in a resource.Pool[Node] and refer to each other by handle, so a subexpression can
// feed several consumers. Compilation collects the reachable nodes in post-order with each node
// exactly once, emits one `let` statement per node, and packs every uniform leaf into a single
// `Uniforms` struct.
package shadergraph

import (
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/oxy-core/common"
	"github.com/Carmen-Shannon/oxy-core/engine/resource"
	"github.com/Carmen-Shannon/oxy-core/engine/texture"
)

// Kind is the closed set of node variants.
type Kind int

const (
	// KindLeaf nodes have no operands. Leaf selects which value they produce.
	KindLeaf Kind = iota
	KindAdd
	KindMultiply
	KindSubtract
	KindTextureSample
	KindBRDF
	KindColorConvert
	KindComponentExtract
	KindTangentNormal
)

// LeafKind selects the value produced by a KindLeaf node.
type LeafKind int

const (
	// LeafConstFloat is a float literal inlined into the shader.
	LeafConstFloat LeafKind = iota
	// LeafConstVec3 is a vec3 literal inlined into the shader.
	LeafConstVec3
	// LeafUniformFloat is a float stored in the uniform buffer.
	LeafUniformFloat
	// LeafUniformVec3 is a vec3 stored in the uniform buffer.
	LeafUniformVec3
	// LeafUniformMat4 is a mat4 stored in the uniform buffer.
	LeafUniformMat4
	// LeafNormalMatrix reads the per-object normal matrix.
	LeafNormalMatrix
	// LeafSurfaceNormal reads the interpolated view-space vertex normal.
	LeafSurfaceNormal
)

// ColorSpace selects the direction of a KindColorConvert node.
type ColorSpace int

const (
	SRGBToLinear ColorSpace = iota
	LinearToSRGB
)

// Node is a single shading graph node. Only the fields relevant to Kind (and Leaf, for leaves)
// are read; the constructors below set them consistently.
type Node struct {
	Kind Kind
	Leaf LeafKind

	// Label names uniform leaves. It becomes part of the uniform struct member name.
	Label string
	Float float32
	Vec3  common.Vec3
	Mat4  common.Mat4

	Texture resource.Handle[texture.Texture]
	Sampler resource.Handle[texture.Sampler]

	// Operands are the input nodes, in the order the operation consumes them.
	Operands []resource.Handle[Node]

	Convert    ColorSpace
	Components string
}

// ConstFloat returns a leaf whose value is inlined as a WGSL literal.
func ConstFloat(v float32) Node {
	return Node{Kind: KindLeaf, Leaf: LeafConstFloat, Float: v}
}

// ConstVec3 returns a vec3 leaf inlined as a WGSL literal.
func ConstVec3(v common.Vec3) Node {
	return Node{Kind: KindLeaf, Leaf: LeafConstVec3, Vec3: v}
}

// UniformFloat returns a float leaf stored in the uniform buffer.
//
// Parameters:
//   - label: a human readable name used in the generated struct member
//   - v: the initial value
//
// Returns:
//   - Node: the leaf node
func UniformFloat(label string, v float32) Node {
	return Node{Kind: KindLeaf, Leaf: LeafUniformFloat, Label: label, Float: v}
}

// UniformVec3 returns a vec3 leaf stored in the uniform buffer.
//
// Parameters:
//   - label: a human readable name used in the generated struct member
//   - v: the initial value
//
// Returns:
//   - Node: the leaf node
func UniformVec3(label string, v common.Vec3) Node {
	return Node{Kind: KindLeaf, Leaf: LeafUniformVec3, Label: label, Vec3: v}
}

// UniformMat4 returns a mat4 leaf stored in the uniform buffer.
//
// Parameters:
//   - label: a human readable name used in the generated struct member
//   - m: the initial value, column-major
//
// Returns:
//   - Node: the leaf node
func UniformMat4(label string, m common.Mat4) Node {
	return Node{Kind: KindLeaf, Leaf: LeafUniformMat4, Label: label, Mat4: m}
}

// NormalMatrix returns a leaf reading the object's normal matrix.
func NormalMatrix() Node {
	return Node{Kind: KindLeaf, Leaf: LeafNormalMatrix}
}

// SurfaceNormal returns a leaf reading the interpolated vertex normal.
func SurfaceNormal() Node {
	return Node{Kind: KindLeaf, Leaf: LeafSurfaceNormal}
}

// Add returns a node computing a + b.
func Add(a, b resource.Handle[Node]) Node {
	return Node{Kind: KindAdd, Operands: []resource.Handle[Node]{a, b}}
}

// Multiply returns a node computing a * b.
func Multiply(a, b resource.Handle[Node]) Node {
	return Node{Kind: KindMultiply, Operands: []resource.Handle[Node]{a, b}}
}

// Subtract returns a node computing a - b.
func Subtract(a, b resource.Handle[Node]) Node {
	return Node{Kind: KindSubtract, Operands: []resource.Handle[Node]{a, b}}
}

// TextureSample returns a node sampling tex with samp at the mesh UV. The result is a vec4.
//
// Parameters:
//   - tex: the texture to sample
//   - samp: the sampler to sample with
//
// Returns:
//   - Node: the texture sample node
func TextureSample(tex resource.Handle[texture.Texture], samp resource.Handle[texture.Sampler]) Node {
	return Node{Kind: KindTextureSample, Texture: tex, Sampler: samp}
}

// BRDF returns a node evaluating a Cook-Torrance style BRDF for the scene light against the
// interpolated surface normal.
//
// Parameters:
//   - baseColor: a vec3 node
//   - metallic: a float node
//   - roughness: a float node
//
// Returns:
//   - Node: the BRDF node producing a vec3 radiance
func BRDF(baseColor, metallic, roughness resource.Handle[Node]) Node {
	return Node{Kind: KindBRDF, Operands: []resource.Handle[Node]{baseColor, metallic, roughness}}
}

// BRDFWithNormal is BRDF with an explicit vec3 shading normal, typically from TangentNormal.
func BRDFWithNormal(baseColor, metallic, roughness, normal resource.Handle[Node]) Node {
	return Node{Kind: KindBRDF, Operands: []resource.Handle[Node]{baseColor, metallic, roughness, normal}}
}

// ConvertColor returns a node converting a vec3 or vec4 color between sRGB and linear space.
// The alpha channel of a vec4 passes through unchanged.
func ConvertColor(x resource.Handle[Node], space ColorSpace) Node {
	return Node{Kind: KindColorConvert, Convert: space, Operands: []resource.Handle[Node]{x}}
}

// Extract returns a node swizzling components out of a vec3 or vec4, e.g. "rgb", "w" or "xyz".
// Only one, three and four component swizzles are supported.
func Extract(x resource.Handle[Node], components string) Node {
	return Node{Kind: KindComponentExtract, Components: components, Operands: []resource.Handle[Node]{x}}
}

// TangentNormal returns a node perturbing the surface normal by a tangent-space normal, usually
// a normal map sample remapped to [-1, 1]. The tangent frame is derived from screen-space
// derivatives so meshes need no tangent attribute.
func TangentNormal(mapNormal resource.Handle[Node]) Node {
	return Node{Kind: KindTangentNormal, Operands: []resource.Handle[Node]{mapNormal}}
}

func (n Node) kindName() string {
	switch n.Kind {
	case KindLeaf:
		switch n.Leaf {
		case LeafConstFloat:
			return "const_float"
		case LeafConstVec3:
			return "const_vec3"
		case LeafUniformFloat:
			return "float"
		case LeafUniformVec3:
			return "vec3"
		case LeafUniformMat4:
			return "mat4"
		case LeafNormalMatrix:
			return "normal_matrix"
		case LeafSurfaceNormal:
			return "surface_normal"
		}
	case KindAdd:
		return "add"
	case KindMultiply:
		return "multiply"
	case KindSubtract:
		return "subtract"
	case KindTextureSample:
		return "texture_sample"
	case KindBRDF:
		return "brdf"
	case KindColorConvert:
		if n.Convert == LinearToSRGB {
			return "linear_to_srgb"
		}
		return "srgb_to_linear"
	case KindComponentExtract:
		return "component"
	case KindTangentNormal:
		return "tangent_normal"
	}
	return "node"
}

// OutputName returns the WGSL identifier holding this node's value once emitted.
// Names are unique per node handle.
//
// Parameters:
//   - self: the handle of this node
//
// Returns:
//   - string: the identifier, e.g. "multiply_output_4"
func (n Node) OutputName(self resource.Handle[Node]) string {
	return fmt.Sprintf("%s_output_%d", n.kindName(), self.Index())
}

// isUniform reports whether the node stores its value in the uniform buffer.
func (n Node) isUniform() bool {
	if n.Kind != KindLeaf {
		return false
	}
	return n.Leaf == LeafUniformFloat || n.Leaf == LeafUniformVec3 || n.Leaf == LeafUniformMat4
}

// FieldName returns the uniform struct member name for a uniform leaf, or "" for any other node.
//
// Parameters:
//   - self: the handle of this node
//
// Returns:
//   - string: the member name, e.g. "base_color_2"
func (n Node) FieldName(self resource.Handle[Node]) string {
	if !n.isUniform() {
		return ""
	}
	label := sanitizeIdent(n.Label)
	if label == "" {
		label = n.kindName()
	}
	return fmt.Sprintf("%s_%d", label, self.Index())
}

// sanitizeIdent maps a label to a WGSL identifier fragment.
func sanitizeIdent(s string) string {
	var b strings.Builder
	lastUnderscore := true
	for _, r := range strings.ToLower(s) {
		ok := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		switch {
		case ok:
			b.WriteRune(r)
			lastUnderscore = false
		case !lastUnderscore:
			b.WriteByte('_')
			lastUnderscore = true
		}
	}
	out := strings.TrimSuffix(b.String(), "_")
	if out != "" && out[0] >= '0' && out[0] <= '9' {
		out = "u_" + out
	}
	return out
}
