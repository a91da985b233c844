package geometry

import (
	"github.com/Carmen-Shannon/oxy-core/common"
	"github.com/Carmen-Shannon/oxy-core/engine/resource"
	"github.com/chewxy/math32"
)

// boxFaces lists normal, right and up axes for each box face. right × up == normal keeps every face
// counter-clockwise when seen from outside.
var boxFaces = [6][3]common.Vec3{
	{{0, 0, 1}, {1, 0, 0}, {0, 1, 0}},   // front
	{{1, 0, 0}, {0, 0, -1}, {0, 1, 0}},  // right
	{{0, 0, -1}, {-1, 0, 0}, {0, 1, 0}}, // back
	{{-1, 0, 0}, {0, 0, 1}, {0, 1, 0}},  // left
	{{0, 1, 0}, {1, 0, 0}, {0, 0, -1}},  // top
	{{0, -1, 0}, {1, 0, 0}, {0, 0, 1}},  // bottom
}

// quadUVs are the texture coordinates of a quad's top-left, top-right, bottom-left and bottom-right corners.
var quadUVs = []float32{0, 0, 1, 0, 0, 1, 1, 1}

// quadIndices are the two triangles of a quad in corner order TL, TR, BL, BR.
var quadIndices = []uint16{0, 2, 1, 1, 2, 3}

// CreateTriangle builds an equilateral-style triangle in the XY plane facing +Z, centred on its bounding box.
//
// Parameters:
//   - attributes: pool receiving the position, normal and uv attributes
//   - indices: pool receiving the index buffer
//   - width: base width
//   - height: vertical scale
//
// Returns:
//   - Geometry: the geometry referencing the new buffers
func CreateTriangle(attributes *resource.Pool[Attribute], indices *resource.Pool[Index], width, height float32) Geometry {
	dy := math32.Sqrt(0.75) / 2
	positions := []float32{
		0, (math32.Sqrt(0.75) - dy) * height, 0,
		-0.5 * width, -dy * height, 0,
		0.5 * width, -dy * height, 0,
	}
	normals := []float32{0, 0, 1, 0, 0, 1, 0, 0, 1}
	uvs := []float32{0.5, 0, 1, 1, 0, 1}

	return assemble(attributes, indices, positions, normals, uvs, []uint16{0, 1, 2})
}

// CreatePlane builds a width × height quad in the XY plane facing +Z.
//
// Parameters:
//   - attributes: pool receiving the position, normal and uv attributes
//   - indices: pool receiving the index buffer
//   - width: extent along X
//   - height: extent along Y
//
// Returns:
//   - Geometry: the geometry referencing the new buffers
func CreatePlane(attributes *resource.Pool[Attribute], indices *resource.Pool[Index], width, height float32) Geometry {
	hw, hh := width/2, height/2
	positions := []float32{
		-hw, hh, 0,
		hw, hh, 0,
		-hw, -hh, 0,
		hw, -hh, 0,
	}
	normals := []float32{0, 0, 1, 0, 0, 1, 0, 0, 1, 0, 0, 1}
	uvs := append([]float32(nil), quadUVs...)
	idx := append([]uint16(nil), quadIndices...)

	return assemble(attributes, indices, positions, normals, uvs, idx)
}

// CreateBox builds an axis-aligned box centred on the origin with four unshared vertices per face.
//
// Parameters:
//   - attributes: pool receiving the position, normal and uv attributes
//   - indices: pool receiving the index buffer
//   - width: extent along X
//   - height: extent along Y
//   - depth: extent along Z
//
// Returns:
//   - Geometry: the geometry referencing the new buffers
func CreateBox(attributes *resource.Pool[Attribute], indices *resource.Pool[Index], width, height, depth float32) Geometry {
	size := common.Vec3{width, height, depth}
	positions := make([]float32, 0, 6*4*3)
	normals := make([]float32, 0, 6*4*3)
	uvs := make([]float32, 0, 6*4*2)
	idx := make([]uint16, 0, 6*6)

	for face, axes := range boxFaces {
		n, right, up := axes[0], axes[1], axes[2]
		center := n.Scale(0.5)
		corners := [4]common.Vec3{
			center.Sub(right.Scale(0.5)).Add(up.Scale(0.5)),
			center.Add(right.Scale(0.5)).Add(up.Scale(0.5)),
			center.Sub(right.Scale(0.5)).Sub(up.Scale(0.5)),
			center.Add(right.Scale(0.5)).Sub(up.Scale(0.5)),
		}
		for _, c := range corners {
			positions = append(positions, c[0]*size[0], c[1]*size[1], c[2]*size[2])
			normals = append(normals, n[0], n[1], n[2])
		}
		uvs = append(uvs, quadUVs...)
		base := uint16(face * 4)
		for _, i := range quadIndices {
			idx = append(idx, base+i)
		}
	}

	return assemble(attributes, indices, positions, normals, uvs, idx)
}

func assemble(attributes *resource.Pool[Attribute], indices *resource.Pool[Index], positions, normals, uvs []float32, idx []uint16) Geometry {
	g := NewGeometry()
	g.SetAttribute(AttributePosition, attributes.Add(NewAttribute(positions, 3)))
	g.SetAttribute(AttributeNormal, attributes.Add(NewAttribute(normals, 3)))
	g.SetAttribute(AttributeUV, attributes.Add(NewAttribute(uvs, 2)))
	g.SetIndex(indices.Add(Index{Data: idx}))
	return g
}
