package renderer

import (
	"log/slog"

	"github.com/Carmen-Shannon/oxy-core/common"
	"github.com/Carmen-Shannon/oxy-core/engine/camera"
	"github.com/Carmen-Shannon/oxy-core/engine/geometry"
	"github.com/Carmen-Shannon/oxy-core/engine/mesh"
	"github.com/Carmen-Shannon/oxy-core/engine/registry"
	"github.com/Carmen-Shannon/oxy-core/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-core/engine/resource"
	"github.com/Carmen-Shannon/oxy-core/engine/scene"
)

// Vertex buffer slots. Each attribute is bound to its own buffer at the slot matching its
// @location in the generated vertex stage.
const (
	SlotPosition uint32 = 0
	SlotNormal   uint32 = 1
	SlotUV       uint32 = 2
)

var vertexSlots = []struct {
	name string
	slot uint32
}{
	{geometry.AttributePosition, SlotPosition},
	{geometry.AttributeNormal, SlotNormal},
	{geometry.AttributeUV, SlotUV},
}

// VertexBuffer binds one geometry attribute to a vertex buffer slot.
type VertexBuffer struct {
	Slot      uint32
	Attribute resource.Handle[geometry.Attribute]
}

// DrawItem is everything needed to issue one draw call for a mesh attached to a scene node.
type DrawItem struct {
	Node     resource.Handle[scene.Node]
	Mesh     resource.Handle[mesh.Mesh]
	Geometry resource.Handle[geometry.Geometry]
	Material resource.Handle[material.Material]

	Object        GPUObjectUniform
	VertexBuffers []VertexBuffer

	// Index is only meaningful when Indexed is set.
	Index   resource.Handle[geometry.Index]
	Indexed bool
	// Count is the index count of indexed draws and the vertex count otherwise.
	Count int
}

// RenderList is one frame's worth of draws for a scene seen through its active camera.
type RenderList struct {
	Background common.Vec4
	Camera     camera.GPUCameraUniform
	Items      []DrawItem
}

// BuildRenderList walks the scene in pre-order and produces a draw item for every node with an
// attached mesh whose geometry and material resolve. World matrices are read as they are, so
// UpdateMatrices should run first. Without a resolvable active camera the list is empty.
//
// Parameters:
//   - s: the scene
//   - pools: the resource pools
//   - logger: receives a debug record for every skipped node, nil for slog.Default()
//
// Returns:
//   - RenderList: the draws in traversal order
func BuildRenderList(s scene.Scene, pools *registry.Pools, logger *slog.Logger) RenderList {
	logger = common.Coalesce(logger, slog.Default())
	list := RenderList{Background: s.Background()}

	camHandle, ok := s.ActiveCamera()
	if !ok {
		logger.Debug("renderer: scene has no active camera", "scene", s.Name())
		return list
	}
	cam, ok := pools.Cameras.Get(camHandle)
	if !ok || cam == nil {
		logger.Debug("renderer: active camera does not resolve", "scene", s.Name(), "camera", camHandle.String())
		return list
	}
	list.Camera = cam.Uniform()

	view := common.IdentityMat4()
	if camNode, ok := s.NodeOfCamera(camHandle); ok {
		if n, ok := pools.Nodes.Borrow(camNode); ok {
			world := n.WorldMatrix()
			if !common.Invert4(view[:], world[:]) {
				logger.Debug("renderer: camera transform is singular, using identity view", "camera", camHandle.String())
			}
		}
	}

	for _, h := range s.CollectNodes(pools.Nodes) {
		meshHandle, ok := s.MeshOf(h)
		if !ok {
			continue
		}
		item, ok := drawItem(pools, h, meshHandle, view, logger)
		if ok {
			list.Items = append(list.Items, item)
		}
	}
	return list
}

func drawItem(pools *registry.Pools, h resource.Handle[scene.Node], meshHandle resource.Handle[mesh.Mesh], view common.Mat4, logger *slog.Logger) (DrawItem, bool) {
	m, ok := pools.Meshes.Get(meshHandle)
	if !ok {
		logger.Debug("renderer: mesh does not resolve, skipping", "node", h.String(), "mesh", meshHandle.String())
		return DrawItem{}, false
	}
	geo, ok := pools.Geometries.Get(m.Geometry)
	if !ok {
		logger.Debug("renderer: geometry does not resolve, skipping", "node", h.String(), "geometry", m.Geometry.String())
		return DrawItem{}, false
	}
	if _, ok := pools.Materials.Get(m.Material); !ok {
		logger.Debug("renderer: material does not resolve, skipping", "node", h.String(), "material", m.Material.String())
		return DrawItem{}, false
	}
	node, ok := pools.Nodes.Borrow(h)
	if !ok {
		return DrawItem{}, false
	}

	item := DrawItem{
		Node:     h,
		Mesh:     meshHandle,
		Geometry: m.Geometry,
		Material: m.Material,
		Object:   NewGPUObjectUniform(view, node.WorldMatrix()),
	}
	for _, vs := range vertexSlots {
		if attr, ok := geo.Attribute(vs.name); ok {
			item.VertexBuffers = append(item.VertexBuffers, VertexBuffer{Slot: vs.slot, Attribute: attr})
		}
	}

	position, ok := geo.Attribute(geometry.AttributePosition)
	if !ok {
		logger.Debug("renderer: geometry has no position attribute, skipping", "node", h.String(), "geometry", m.Geometry.String())
		return DrawItem{}, false
	}
	if idx, ok := geo.Index(); ok {
		index, ok := pools.Indices.Get(idx)
		if !ok {
			logger.Debug("renderer: index buffer does not resolve, skipping", "node", h.String())
			return DrawItem{}, false
		}
		item.Index, item.Indexed, item.Count = idx, true, index.Count()
		return item, true
	}
	attr, ok := pools.Attributes.Get(position)
	if !ok {
		logger.Debug("renderer: position attribute does not resolve, skipping", "node", h.String())
		return DrawItem{}, false
	}
	item.Count = attr.Count()
	return item, true
}
