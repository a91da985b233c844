package shadergraph

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/Carmen-Shannon/oxy-core/common"
	"github.com/Carmen-Shannon/oxy-core/engine/camera"
	"github.com/Carmen-Shannon/oxy-core/engine/resource"
	"github.com/Carmen-Shannon/oxy-core/engine/texture"
)

// ObjectUniformSource is the WGSL definition of the per-object struct bound at SlotObject.
// Size: 112 bytes (64 for the model-view matrix, 48 for the padded mat3).
const ObjectUniformSource = `struct Object {
  model_view_matrix: mat4x4<f32>,
  normal_matrix: mat3x3<f32>,
};
`

const vertexStageSource = `struct VertexInput {
  @location(0) position: vec3<f32>,
  @location(1) normal: vec3<f32>,
  @location(2) uv: vec2<f32>,
};

struct VertexOutput {
  @builtin(position) position: vec4<f32>,
  @location(0) normal: vec3<f32>,
  @location(1) uv: vec2<f32>,
  @location(2) view_position: vec3<f32>,
};

@vertex
fn vs_main(in: VertexInput) -> VertexOutput {
  var out: VertexOutput;
  let view_position = obj.model_view_matrix * vec4<f32>(in.position, 1.0);
  out.position = camera.projection_matrix * view_position;
  out.normal = normalize(obj.normal_matrix * in.normal);
  out.uv = in.uv;
  out.view_position = view_position.xyz;
  return out;
}
`

// Program is the result of compiling a shading graph.
type Program struct {
	// Source is the complete WGSL module with vs_main and fs_main entry points.
	Source string
	// Layout is the packed layout of the Uniforms struct.
	Layout Layout
	// Bindings lists every binding in group 0, in slot order.
	Bindings []Binding
	// Order is the emission order of the reachable nodes.
	Order []resource.Handle[Node]
	// Output is the value type of the root node before it is widened to vec4.
	Output ValueType
}

// UniformBytes packs the current values of the program's uniform leaves from pool.
// Leaves that no longer resolve keep their compile-time values.
//
// Parameters:
//   - pool: the node pool the program was compiled from
//
// Returns:
//   - []byte: Layout.BufferSize bytes ready for upload
func (p *Program) UniformBytes(pool *resource.Pool[Node]) []byte {
	return p.Layout.Pack(func(f Field) (UniformContent, bool) {
		n, ok := pool.Get(f.Content.Node)
		if !ok {
			return UniformContent{}, false
		}
		return n.UniformContent(f.Content.Node)
	})
}

// Textures returns the texture bindings of the program in slot order.
func (p *Program) Textures() []Binding {
	return p.bindingsOf(BindingTexture)
}

// Samplers returns the sampler bindings of the program in slot order.
func (p *Program) Samplers() []Binding {
	return p.bindingsOf(BindingSampler)
}

func (p *Program) bindingsOf(kind BindingKind) []Binding {
	var out []Binding
	for _, b := range p.Bindings {
		if b.Kind == kind {
			out = append(out, b)
		}
	}
	return out
}

type compilerImpl struct {
	nodes    *resource.Pool[Node]
	textures *resource.Pool[texture.Texture]
	samplers *resource.Pool[texture.Sampler]

	lightDirection common.Vec3
	logger         *slog.Logger
}

// Compiler turns shading graphs into WGSL programs.
type Compiler interface {
	// Collect returns every node reachable from root in post-order, each exactly once.
	//
	// Parameters:
	//   - root: the output node of the graph
	//
	// Returns:
	//   - []resource.Handle[Node]: the reachable nodes, operands first
	//   - error: ErrMissingNode or ErrCycle
	Collect(root resource.Handle[Node]) ([]resource.Handle[Node], error)

	// Compile generates the WGSL module, uniform layout and binding table for the graph rooted at root.
	//
	// Parameters:
	//   - root: the output node of the graph
	//
	// Returns:
	//   - *Program: the compiled program
	//   - error: a wrapped ErrMissingNode, ErrMissingTexture, ErrMissingSampler, ErrCycle,
	//     ErrTypeMismatch or ErrInvalidNode
	Compile(root resource.Handle[Node]) (*Program, error)

	// MustCompile is like Compile but panics on error.
	//
	// Parameters:
	//   - root: the output node of the graph
	//
	// Returns:
	//   - *Program: the compiled program
	MustCompile(root resource.Handle[Node]) *Program
}

var _ Compiler = &compilerImpl{}

// NewCompiler creates a Compiler resolving nodes, textures and samplers against the given pools.
//
// Parameters:
//   - nodes: the shading node pool
//   - textures: the texture pool referenced by texture samples
//   - samplers: the sampler pool referenced by texture samples
//   - options: optional builder options
//
// Returns:
//   - Compiler: the compiler
func NewCompiler(nodes *resource.Pool[Node], textures *resource.Pool[texture.Texture], samplers *resource.Pool[texture.Sampler], options ...CompilerBuilderOption) Compiler {
	c := &compilerImpl{
		nodes:          nodes,
		textures:       textures,
		samplers:       samplers,
		lightDirection: DefaultLightDirection,
		logger:         slog.Default(),
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

func (c *compilerImpl) Collect(root resource.Handle[Node]) ([]resource.Handle[Node], error) {
	n, ok := c.nodes.Get(root)
	if !ok {
		return nil, fmt.Errorf("%w: root %v", ErrMissingNode, root)
	}
	var order []resource.Handle[Node]
	if err := n.Collect(c.nodes, make(map[resource.Handle[Node]]bool), &order, root); err != nil {
		return nil, err
	}
	return order, nil
}

func (c *compilerImpl) Compile(root resource.Handle[Node]) (*Program, error) {
	order, err := c.Collect(root)
	if err != nil {
		return nil, err
	}

	var (
		contents []UniformContent
		decls    []string
		chunks   []string
		seen     = make(map[string]bool)
	)
	for _, h := range order {
		n, _ := c.nodes.Get(h)
		if content, ok := n.UniformContent(h); ok {
			if content.Kind == ContentTexture {
				if _, ok := c.textures.Get(content.Texture); !ok {
					return nil, fmt.Errorf("%w: %v sampled by %v", ErrMissingTexture, content.Texture, h)
				}
				if _, ok := c.samplers.Get(content.Sampler); !ok {
					return nil, fmt.Errorf("%w: %v used by %v", ErrMissingSampler, content.Sampler, h)
				}
			}
			contents = append(contents, content)
		}
		if d := n.Declaration(h); d != "" {
			decls = append(decls, d)
		}
		if fn := n.Functions(); fn != "" && !seen[fn] {
			seen[fn] = true
			chunks = append(chunks, fn)
		}
	}

	rootNode, _ := c.nodes.Get(root)
	e := NewEmitter(c.nodes)
	body, err := rootNode.Emit(e, root)
	if err != nil {
		return nil, err
	}
	outType, _ := e.TypeOf(root)
	result, err := widenToColor(rootNode.OutputName(root), outType)
	if err != nil {
		return nil, fmt.Errorf("%w (root %v)", err, root)
	}

	p := &Program{
		Layout:   PackLayout(contents),
		Bindings: buildBindings(contents),
		Order:    order,
		Output:   outType,
	}
	light, err := vec3Literal(c.lightDirection)
	if err != nil {
		return nil, err
	}

	var src strings.Builder
	src.WriteString(ObjectUniformSource)
	src.WriteString("\n")
	src.WriteString(camera.GPUCameraUniformSource)
	src.WriteString("\n")
	src.WriteString(p.Layout.StructSource(decls))
	src.WriteString("\n")
	for _, b := range p.Bindings {
		src.WriteString(bindingDecl(b))
	}
	for _, chunk := range chunks {
		src.WriteString("\n")
		src.WriteString(chunk)
	}
	src.WriteString("\n")
	src.WriteString(vertexStageSource)
	src.WriteString("\n@fragment\nfn fs_main(in: VertexOutput) -> @location(0) vec4<f32> {\n")
	src.WriteString("  let view_dir = normalize(-in.view_position);\n")
	fmt.Fprintf(&src, "  let light_dir = normalize(%s);\n", light)
	src.WriteString(body)
	fmt.Fprintf(&src, "  return %s;\n}\n", result)
	p.Source = src.String()

	c.logger.Debug("shadergraph: compiled",
		"root", root.String(),
		"nodes", len(order),
		"uniform_bytes", p.Layout.BufferSize(),
		"bindings", len(p.Bindings))
	return p, nil
}

func (c *compilerImpl) MustCompile(root resource.Handle[Node]) *Program {
	p, err := c.Compile(root)
	if err != nil {
		panic(err)
	}
	return p
}

// widenToColor converts the root output into the vec4 written by fs_main.
func widenToColor(name string, t ValueType) (string, error) {
	switch t {
	case TypeVec4:
		return name, nil
	case TypeVec3:
		return fmt.Sprintf("vec4<f32>(%s, 1.0)", name), nil
	case TypeFloat:
		return fmt.Sprintf("vec4<f32>(vec3<f32>(%s), 1.0)", name), nil
	}
	return "", fmt.Errorf("%w: cannot output %v as a color", ErrTypeMismatch, t)
}
