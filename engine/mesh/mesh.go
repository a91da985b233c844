// Package mesh pairs a geometry with the material it is drawn with.
package mesh

import (
	"github.com/Carmen-Shannon/oxy-core/engine/geometry"
	"github.com/Carmen-Shannon/oxy-core/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-core/engine/resource"
)

// Mesh is a drawable: vertex data plus a material. Meshes are placed in a scene by attaching them
// to a node.
type Mesh struct {
	Geometry resource.Handle[geometry.Geometry]
	Material resource.Handle[material.Material]
}

// NewMesh returns a mesh drawing geometry g with material m.
func NewMesh(g resource.Handle[geometry.Geometry], m resource.Handle[material.Material]) Mesh {
	return Mesh{Geometry: g, Material: m}
}
