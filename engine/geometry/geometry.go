// Package geometry holds raw vertex attribute and index buffers and the Geometry that groups them.
// The data is produced by loaders or the helpers in this package; nothing here talks to the GPU.
package geometry

import (
	"encoding/binary"
	"fmt"
	"math"
	"sort"

	"github.com/Carmen-Shannon/oxy-core/engine/resource"
	"github.com/cogentcore/webgpu/wgpu"
)

// Well-known attribute names. The renderer binds these to fixed vertex buffer slots.
const (
	AttributePosition = "position"
	AttributeNormal   = "normal"
	AttributeUV       = "uv"
)

// Attribute is a flat float buffer holding ItemSize components per vertex.
type Attribute struct {
	Data     []float32
	ItemSize int
}

// NewAttribute creates an Attribute. Panics if itemSize is not in [1, 4] or the data length is not
// a multiple of itemSize.
//
// Parameters:
//   - data: flat component data
//   - itemSize: components per vertex
//
// Returns:
//   - Attribute: the attribute
func NewAttribute(data []float32, itemSize int) Attribute {
	if itemSize < 1 || itemSize > 4 {
		panic(fmt.Sprintf("geometry: attribute item size %d out of range", itemSize))
	}
	if len(data)%itemSize != 0 {
		panic(fmt.Sprintf("geometry: attribute length %d is not a multiple of item size %d", len(data), itemSize))
	}
	return Attribute{Data: data, ItemSize: itemSize}
}

// Count returns the number of vertices in the attribute.
func (a Attribute) Count() int {
	if a.ItemSize == 0 {
		return 0
	}
	return len(a.Data) / a.ItemSize
}

// VertexFormat returns the wgpu vertex format matching the attribute's item size.
//
// Returns:
//   - wgpu.VertexFormat: Float32, Float32x2, Float32x3 or Float32x4
func (a Attribute) VertexFormat() wgpu.VertexFormat {
	switch a.ItemSize {
	case 1:
		return wgpu.VertexFormatFloat32
	case 2:
		return wgpu.VertexFormatFloat32x2
	case 3:
		return wgpu.VertexFormatFloat32x3
	default:
		return wgpu.VertexFormatFloat32x4
	}
}

// Marshal serializes the attribute data into a little-endian byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 4 bytes per component
func (a Attribute) Marshal() []byte {
	buf := make([]byte, len(a.Data)*4)
	for i, v := range a.Data {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

// Index is a flat 16-bit index buffer.
type Index struct {
	Data []uint16
}

// Count returns the number of indices.
func (i Index) Count() int {
	return len(i.Data)
}

// Marshal serializes the indices into a little-endian byte buffer padded to a multiple of four bytes,
// as required for buffer writes.
//
// Returns:
//   - []byte: the index bytes
func (i Index) Marshal() []byte {
	n := len(i.Data) * 2
	buf := make([]byte, n+n%4)
	for j, v := range i.Data {
		binary.LittleEndian.PutUint16(buf[j*2:], v)
	}
	return buf
}

// Geometry groups named vertex attributes and an optional index buffer, all stored by handle.
type Geometry struct {
	attributes map[string]resource.Handle[Attribute]
	index      resource.Handle[Index]
	hasIndex   bool
}

// NewGeometry creates an empty Geometry.
//
// Returns:
//   - Geometry: a geometry with no attributes and no index
func NewGeometry() Geometry {
	return Geometry{attributes: make(map[string]resource.Handle[Attribute])}
}

// SetAttribute assigns an attribute handle under name, replacing any previous one.
//
// Parameters:
//   - name: the attribute name, e.g. AttributePosition
//   - h: the attribute handle
func (g *Geometry) SetAttribute(name string, h resource.Handle[Attribute]) {
	if g.attributes == nil {
		g.attributes = make(map[string]resource.Handle[Attribute])
	}
	g.attributes[name] = h
}

// Attribute returns the attribute handle stored under name.
//
// Parameters:
//   - name: the attribute name
//
// Returns:
//   - resource.Handle[Attribute]: the attribute handle
//   - bool: false if the geometry has no such attribute
func (g Geometry) Attribute(name string) (resource.Handle[Attribute], bool) {
	h, ok := g.attributes[name]
	return h, ok
}

// AttributeNames returns the attribute names in sorted order.
func (g Geometry) AttributeNames() []string {
	names := make([]string, 0, len(g.attributes))
	for name := range g.attributes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SetIndex assigns the index buffer handle.
func (g *Geometry) SetIndex(h resource.Handle[Index]) {
	g.index = h
	g.hasIndex = true
}

// Index returns the index buffer handle, if any.
//
// Returns:
//   - resource.Handle[Index]: the index handle
//   - bool: false if the geometry is not indexed
func (g Geometry) Index() (resource.Handle[Index], bool) {
	return g.index, g.hasIndex
}
