package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-core/common"
	"github.com/Carmen-Shannon/oxy-core/engine/camera"
	"github.com/Carmen-Shannon/oxy-core/engine/geometry"
	"github.com/Carmen-Shannon/oxy-core/engine/mesh"
	"github.com/Carmen-Shannon/oxy-core/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-core/engine/resource"
	"github.com/Carmen-Shannon/oxy-core/engine/scene"
	"github.com/Carmen-Shannon/oxy-core/engine/shadergraph"
	"github.com/Carmen-Shannon/oxy-core/engine/texture"
)

func TestPoolOfSelectsPoolPerKind(t *testing.T) {
	p := NewPools()

	assert.Same(t, p.Attributes, PoolOf[geometry.Attribute](p))
	assert.Same(t, p.Indices, PoolOf[geometry.Index](p))
	assert.Same(t, p.Geometries, PoolOf[geometry.Geometry](p))
	assert.Same(t, p.Meshes, PoolOf[mesh.Mesh](p))
	assert.Same(t, p.Materials, PoolOf[material.Material](p))
	assert.Same(t, p.ShadingNodes, PoolOf[shadergraph.Node](p))
	assert.Same(t, p.Nodes, PoolOf[scene.Node](p))
	assert.Same(t, p.Cameras, PoolOf[camera.Camera](p))
	assert.Same(t, p.Scenes, PoolOf[scene.Scene](p))
	assert.Same(t, p.Samplers, PoolOf[texture.Sampler](p))
	assert.Same(t, p.Textures, PoolOf[texture.Texture](p))
}

func TestPoolOfUnknownKindPanics(t *testing.T) {
	p := NewPools()
	assert.PanicsWithValue(t, "registry: unknown resource kind int", func() {
		PoolOf[int](p)
	})
}

func TestAddAndBorrow(t *testing.T) {
	p := NewPools()

	attr := Add(p, geometry.NewAttribute([]float32{0, 0, 0, 1, 0, 0}, 3))
	g := geometry.NewGeometry()
	g.SetAttribute(geometry.AttributePosition, attr)
	gh := Add(p, g)
	mh := Add(p, material.NewBasicMaterial(p.ShadingNodes, common.Vec3{1, 0, 0}))
	meshH := Add(p, mesh.NewMesh(gh, mh))

	assert.Equal(t, 1, p.Attributes.Len())
	assert.Equal(t, 1, p.Meshes.Len())

	m, ok := Borrow(p, meshH)
	require.True(t, ok)
	assert.Equal(t, gh, m.Geometry)
	assert.Equal(t, mh, m.Material)

	a, ok := Borrow(p, attr)
	require.True(t, ok)
	assert.Equal(t, 2, a.Count())

	// out of range
	_, ok = Borrow(p, resource.HandleAt[geometry.Attribute](5))
	assert.False(t, ok)
}

func TestBorrowMutatesInPlace(t *testing.T) {
	p := NewPools()
	h := Add(p, scene.NewNode())

	n, ok := Borrow(p, h)
	require.True(t, ok)
	n.SetPosition(common.Vec3{1, 2, 3})

	again, _ := p.Nodes.Get(h)
	assert.Equal(t, common.Vec3{1, 2, 3}, again.Position())
}
