// Package registry groups the typed resource pools of every engine resource kind.
package registry

import (
	"fmt"
	"reflect"

	"github.com/Carmen-Shannon/oxy-core/engine/camera"
	"github.com/Carmen-Shannon/oxy-core/engine/geometry"
	"github.com/Carmen-Shannon/oxy-core/engine/mesh"
	"github.com/Carmen-Shannon/oxy-core/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-core/engine/resource"
	"github.com/Carmen-Shannon/oxy-core/engine/scene"
	"github.com/Carmen-Shannon/oxy-core/engine/shadergraph"
	"github.com/Carmen-Shannon/oxy-core/engine/texture"
)

// Pools holds one append-only pool per resource kind.
type Pools struct {
	Attributes   *resource.Pool[geometry.Attribute]
	Indices      *resource.Pool[geometry.Index]
	Geometries   *resource.Pool[geometry.Geometry]
	Meshes       *resource.Pool[mesh.Mesh]
	Materials    *resource.Pool[material.Material]
	ShadingNodes *resource.Pool[shadergraph.Node]
	Nodes        *resource.Pool[scene.Node]
	Cameras      *resource.Pool[camera.Camera]
	Scenes       *resource.Pool[scene.Scene]
	Samplers     *resource.Pool[texture.Sampler]
	Textures     *resource.Pool[texture.Texture]
}

// NewPools creates an empty pool for every resource kind.
//
// Returns:
//   - *Pools: the pools
func NewPools() *Pools {
	return &Pools{
		Attributes:   resource.NewPool[geometry.Attribute](64),
		Indices:      resource.NewPool[geometry.Index](32),
		Geometries:   resource.NewPool[geometry.Geometry](32),
		Meshes:       resource.NewPool[mesh.Mesh](32),
		Materials:    resource.NewPool[material.Material](16),
		ShadingNodes: resource.NewPool[shadergraph.Node](64),
		Nodes:        resource.NewPool[scene.Node](64),
		Cameras:      resource.NewPool[camera.Camera](4),
		Scenes:       resource.NewPool[scene.Scene](2),
		Samplers:     resource.NewPool[texture.Sampler](8),
		Textures:     resource.NewPool[texture.Texture](8),
	}
}

// PoolOf returns the pool holding values of kind T. Asking for a kind that has no pool is a
// programming error and panics.
//
// Parameters:
//   - p: the pools to select from
//
// Returns:
//   - *resource.Pool[T]: the pool for T
func PoolOf[T any](p *Pools) *resource.Pool[T] {
	var pool any
	switch any((*T)(nil)).(type) {
	case *geometry.Attribute:
		pool = p.Attributes
	case *geometry.Index:
		pool = p.Indices
	case *geometry.Geometry:
		pool = p.Geometries
	case *mesh.Mesh:
		pool = p.Meshes
	case *material.Material:
		pool = p.Materials
	case *shadergraph.Node:
		pool = p.ShadingNodes
	case *scene.Node:
		pool = p.Nodes
	case *camera.Camera:
		pool = p.Cameras
	case *scene.Scene:
		pool = p.Scenes
	case *texture.Sampler:
		pool = p.Samplers
	case *texture.Texture:
		pool = p.Textures
	default:
		panic(fmt.Sprintf("registry: unknown resource kind %v", reflect.TypeFor[T]()))
	}
	return pool.(*resource.Pool[T])
}

// Add stores v in the pool for its kind.
//
// Parameters:
//   - p: the pools
//   - v: the value to store
//
// Returns:
//   - resource.Handle[T]: the handle of the stored value
func Add[T any](p *Pools, v T) resource.Handle[T] {
	return PoolOf[T](p).Add(v)
}

// Borrow resolves h against the pool for its kind.
//
// Parameters:
//   - p: the pools
//   - h: the handle to resolve
//
// Returns:
//   - *T: pointer to the stored value, or nil
//   - bool: false if h does not resolve
func Borrow[T any](p *Pools, h resource.Handle[T]) (*T, bool) {
	return PoolOf[T](p).Borrow(h)
}
