package material

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/Carmen-Shannon/oxy-core/engine/resource"
	"github.com/Carmen-Shannon/oxy-core/engine/shadergraph"
	"github.com/Carmen-Shannon/oxy-core/engine/texture"
)

// CullMode selects which triangle faces are discarded.
type CullMode int

const (
	CullBack CullMode = iota
	CullFront
	CullNone
)

// WGPU returns the matching wgpu cull mode.
func (c CullMode) WGPU() wgpu.CullMode {
	switch c {
	case CullFront:
		return wgpu.CullModeFront
	case CullNone:
		return wgpu.CullModeNone
	default:
		return wgpu.CullModeBack
	}
}

// Winding selects the vertex order of front-facing triangles.
type Winding int

const (
	WindingCCW Winding = iota
	WindingCW
)

// WGPU returns the matching wgpu front face.
func (w Winding) WGPU() wgpu.FrontFace {
	if w == WindingCW {
		return wgpu.FrontFaceCW
	}
	return wgpu.FrontFaceCCW
}

// material is the implementation of the Material interface.
type material struct {
	name     string
	root     resource.Handle[shadergraph.Node]
	cullMode CullMode
	winding  Winding
}

// Material defines the interface for a render material. A material is the root of a shading
// graph plus the rasterizer state it is drawn with; its shader, uniform buffer and bindings are
// all derived from the graph.
type Material interface {
	// Name retrieves the material label.
	//
	// Returns:
	//   - string: the label, possibly empty
	Name() string

	// Root retrieves the output node of the material's shading graph.
	//
	// Returns:
	//   - resource.Handle[shadergraph.Node]: the root node handle
	Root() resource.Handle[shadergraph.Node]

	// CullMode retrieves which faces are culled.
	//
	// Returns:
	//   - CullMode: the cull mode
	CullMode() CullMode

	// Winding retrieves the front face winding order.
	//
	// Returns:
	//   - Winding: the winding order
	Winding() Winding

	// SetRoot replaces the output node of the shading graph.
	//
	// Parameters:
	//   - root: the new root node handle
	SetRoot(root resource.Handle[shadergraph.Node])

	// BuildShaderCode compiles the material's shading graph.
	//
	// Parameters:
	//   - c: the compiler bound to the pools holding the graph
	//
	// Returns:
	//   - *shadergraph.Program: the compiled program
	//   - error: any compile error, wrapped with the material name
	BuildShaderCode(c shadergraph.Compiler) (*shadergraph.Program, error)

	// UniformContents returns the contributions of every node reachable from the root, in emission order.
	//
	// Parameters:
	//   - nodes: the shading node pool
	//
	// Returns:
	//   - []shadergraph.UniformContent: uniform fields and texture samples
	//   - error: ErrMissingNode or ErrCycle from the graph walk
	UniformContents(nodes *resource.Pool[shadergraph.Node]) ([]shadergraph.UniformContent, error)

	// Textures returns the distinct textures sampled by the material, in order of first appearance.
	//
	// Parameters:
	//   - nodes: the shading node pool
	//
	// Returns:
	//   - []resource.Handle[texture.Texture]: the texture handles
	//   - error: any graph walk error
	Textures(nodes *resource.Pool[shadergraph.Node]) ([]resource.Handle[texture.Texture], error)

	// Samplers returns the distinct samplers used by the material, in order of first appearance.
	//
	// Parameters:
	//   - nodes: the shading node pool
	//
	// Returns:
	//   - []resource.Handle[texture.Sampler]: the sampler handles
	//   - error: any graph walk error
	Samplers(nodes *resource.Pool[shadergraph.Node]) ([]resource.Handle[texture.Sampler], error)
}

var _ Material = &material{}

// NewMaterial creates a new Material instance drawing the graph rooted at root.
//
// Parameters:
//   - root: the output node of the shading graph
//   - options: variadic list of MaterialBuilderOption functions to configure the material
//
// Returns:
//   - Material: a new Material instance
func NewMaterial(root resource.Handle[shadergraph.Node], options ...MaterialBuilderOption) Material {
	m := &material{
		root:     root,
		cullMode: CullBack,
		winding:  WindingCCW,
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

func (m *material) Name() string {
	return m.name
}

func (m *material) Root() resource.Handle[shadergraph.Node] {
	return m.root
}

func (m *material) CullMode() CullMode {
	return m.cullMode
}

func (m *material) Winding() Winding {
	return m.winding
}

func (m *material) SetRoot(root resource.Handle[shadergraph.Node]) {
	m.root = root
}

func (m *material) BuildShaderCode(c shadergraph.Compiler) (*shadergraph.Program, error) {
	p, err := c.Compile(m.root)
	if err != nil {
		return nil, fmt.Errorf("material %q: %w", m.name, err)
	}
	return p, nil
}

func (m *material) UniformContents(nodes *resource.Pool[shadergraph.Node]) ([]shadergraph.UniformContent, error) {
	root, ok := nodes.Get(m.root)
	if !ok {
		return nil, fmt.Errorf("material %q: %w: root %v", m.name, shadergraph.ErrMissingNode, m.root)
	}
	var order []resource.Handle[shadergraph.Node]
	if err := root.Collect(nodes, make(map[resource.Handle[shadergraph.Node]]bool), &order, m.root); err != nil {
		return nil, fmt.Errorf("material %q: %w", m.name, err)
	}

	var out []shadergraph.UniformContent
	for _, h := range order {
		n, _ := nodes.Get(h)
		if c, ok := n.UniformContent(h); ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *material) Textures(nodes *resource.Pool[shadergraph.Node]) ([]resource.Handle[texture.Texture], error) {
	contents, err := m.UniformContents(nodes)
	if err != nil {
		return nil, err
	}
	var out []resource.Handle[texture.Texture]
	seen := make(map[resource.Handle[texture.Texture]]bool)
	for _, c := range contents {
		if c.Kind == shadergraph.ContentTexture && !seen[c.Texture] {
			seen[c.Texture] = true
			out = append(out, c.Texture)
		}
	}
	return out, nil
}

func (m *material) Samplers(nodes *resource.Pool[shadergraph.Node]) ([]resource.Handle[texture.Sampler], error) {
	contents, err := m.UniformContents(nodes)
	if err != nil {
		return nil, err
	}
	var out []resource.Handle[texture.Sampler]
	seen := make(map[resource.Handle[texture.Sampler]]bool)
	for _, c := range contents {
		if c.Kind == shadergraph.ContentTexture && !seen[c.Sampler] {
			seen[c.Sampler] = true
			out = append(out, c.Sampler)
		}
	}
	return out, nil
}
