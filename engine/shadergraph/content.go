package shadergraph

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-core/common"
	"github.com/Carmen-Shannon/oxy-core/engine/resource"
	"github.com/Carmen-Shannon/oxy-core/engine/texture"
)

// ContentKind is the kind of data a node contributes to a material's resources.
type ContentKind int

const (
	ContentFloat ContentKind = iota
	ContentVec3
	ContentMat4
	ContentTexture
)

// String implements fmt.Stringer.
func (k ContentKind) String() string {
	switch k {
	case ContentFloat:
		return "float"
	case ContentVec3:
		return "vec3"
	case ContentMat4:
		return "mat4"
	case ContentTexture:
		return "texture"
	default:
		return fmt.Sprintf("ContentKind(%d)", int(k))
	}
}

// UniformContent is a node's contribution to the uniform buffer or the texture bindings.
type UniformContent struct {
	Kind  ContentKind
	Name  string
	Node  resource.Handle[Node]
	Float float32
	Vec3  common.Vec3
	Mat4  common.Mat4

	Texture resource.Handle[texture.Texture]
	Sampler resource.Handle[texture.Sampler]
}

// UniformContent returns what this node contributes to the material's bound resources.
//
// Parameters:
//   - self: the handle of this node
//
// Returns:
//   - UniformContent: the contribution
//   - bool: false when the node contributes nothing
func (n Node) UniformContent(self resource.Handle[Node]) (UniformContent, bool) {
	c := UniformContent{Node: self, Name: n.FieldName(self)}
	switch {
	case n.Kind == KindTextureSample:
		c.Kind = ContentTexture
		c.Texture = n.Texture
		c.Sampler = n.Sampler
		return c, true
	case n.Kind != KindLeaf:
		return UniformContent{}, false
	}

	switch n.Leaf {
	case LeafUniformFloat:
		c.Kind, c.Float = ContentFloat, n.Float
	case LeafUniformVec3:
		c.Kind, c.Vec3 = ContentVec3, n.Vec3
	case LeafUniformMat4:
		c.Kind, c.Mat4 = ContentMat4, n.Mat4
	default:
		return UniformContent{}, false
	}
	return c, true
}

// Declaration returns the uniform struct member line for a uniform leaf, or "" otherwise.
// Mat4 members carry @align(64) so the WGSL layout matches the packed buffer.
//
// Parameters:
//   - self: the handle of this node
//
// Returns:
//   - string: a line such as "  roughness_3: f32,\n"
func (n Node) Declaration(self resource.Handle[Node]) string {
	if !n.isUniform() {
		return ""
	}
	name := n.FieldName(self)
	switch n.Leaf {
	case LeafUniformFloat:
		return fmt.Sprintf("  %s: f32,\n", name)
	case LeafUniformVec3:
		return fmt.Sprintf("  %s: vec3<f32>,\n", name)
	default:
		return fmt.Sprintf("  @align(64) %s: mat4x4<f32>,\n", name)
	}
}
