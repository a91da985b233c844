package shader

import (
	"fmt"
	"os"

	"github.com/cogentcore/webgpu/wgpu"
)

// shader is the implementation of the Shader interface.
// It holds all of the reflected shader data required for pipeline creation and material binding.
type shader struct {
	key                        string
	source                     string
	vertexEntryPoint           string
	fragmentEntryPoint         string
	bindGroupLayoutDescriptors map[int]wgpu.BindGroupLayoutDescriptor
	bindingVarNames            map[int]map[int]string
	structLayouts              map[string]wgslTypeLayout
	vertexLayouts              []wgpu.VertexBufferLayout
	module                     *wgpu.ShaderModuleDescriptor
}

// Shader is a WGSL render module together with the layout metadata reflected from its source:
// entry point names, bind group layout descriptors, vertex buffer layouts and struct sizes.
type Shader interface {
	// Key retrieves the unique identifier for this shader, used for caching and lookups.
	//
	// Returns:
	//   - string: the shader's unique key
	Key() string

	// Source retrieves the WGSL shader source code.
	//
	// Returns:
	//   - string: the WGSL source code of the shader
	Source() string

	// VertexEntryPoint returns the name of the first @vertex function.
	//
	// Returns:
	//   - string: the entry point name, or "" if the module has none
	VertexEntryPoint() string

	// FragmentEntryPoint returns the name of the first @fragment function.
	//
	// Returns:
	//   - string: the entry point name, or "" if the module has none
	FragmentEntryPoint() string

	// BindGroupLayoutDescriptor retrieves the bind group layout descriptor for a group index.
	//
	// Parameters:
	//   - group: the @group index
	//
	// Returns:
	//   - wgpu.BindGroupLayoutDescriptor: the descriptor, or an empty descriptor if the group is unused
	BindGroupLayoutDescriptor(group int) wgpu.BindGroupLayoutDescriptor

	// BindGroupLayoutDescriptors retrieves all parsed bind group layout descriptors.
	// These are the CPU-side descriptors extracted from the shader source which the pipeline
	// uses to create the actual wgpu.BindGroupLayout GPU objects.
	//
	// Returns:
	//   - map[int]wgpu.BindGroupLayoutDescriptor: descriptors keyed by group index
	BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor

	// BindGroupVarName retrieves the variable name for a given group and binding index.
	//
	// Parameters:
	//   - group: the bind group index
	//   - binding: the binding index within the group
	//
	// Returns:
	//   - string: the variable name, or an empty string if not found
	BindGroupVarName(group, binding int) string

	// BindGroupFromVarName retrieves the binding index for a given group and variable name.
	//
	// Parameters:
	//   - group: the bind group index
	//   - varName: the variable name within the group
	//
	// Returns:
	//   - int: the binding index, or -1 if not found
	//   - bool: true if the variable name was found
	BindGroupFromVarName(group int, varName string) (int, bool)

	// VertexLayouts retrieves the vertex buffer layouts of the vertex input struct, one buffer per
	// @location in location order.
	//
	// Returns:
	//   - []wgpu.VertexBufferLayout: the layouts, or nil if no vertex input struct was found
	VertexLayouts() []wgpu.VertexBufferLayout

	// StructSize returns the host-shareable size of a struct declared in the source.
	//
	// Parameters:
	//   - name: the struct name
	//
	// Returns:
	//   - uint64: the size in bytes
	//   - bool: false if the struct is unknown or its layout could not be resolved
	StructSize(name string) (uint64, bool)

	// Module returns the wgpu.ShaderModuleDescriptor for this shader.
	//
	// Returns:
	//   - *wgpu.ShaderModuleDescriptor: the shader module descriptor containing the WGSL code and label
	Module() *wgpu.ShaderModuleDescriptor
}

var _ Shader = &shader{}

// NewShaderFromSource creates a Shader from WGSL source and reflects its layout metadata.
//
// Parameters:
//   - key: a unique identifier for the shader, used for caching and as the module label
//   - source: the WGSL source
//
// Returns:
//   - Shader: the reflected shader
func NewShaderFromSource(key, source string) Shader {
	s := &shader{
		key:    key,
		source: source,
		module: &wgpu.ShaderModuleDescriptor{
			Label: key,
			WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
				Code: source,
			},
		},
	}
	s.vertexEntryPoint, s.fragmentEntryPoint = parseEntryPoints(source)
	s.vertexLayouts = parseVertexLayouts(source)
	s.bindGroupLayoutDescriptors, s.bindingVarNames, s.structLayouts = parseBindGroupLayouts(source, s.vertexEntryPoint, s.fragmentEntryPoint)
	return s
}

// NewShader creates a Shader from a WGSL file on disk.
//
// Parameters:
//   - key: a unique identifier for the shader
//   - sourcePath: the file path to read WGSL source from
//
// Returns:
//   - Shader: the reflected shader
//   - error: if the file cannot be read
func NewShader(key, sourcePath string) (Shader, error) {
	data, err := os.ReadFile(sourcePath)
	if err != nil {
		return nil, fmt.Errorf("shader: read %q: %w", sourcePath, err)
	}
	return NewShaderFromSource(key, string(data)), nil
}

func (s *shader) Key() string {
	return s.key
}

func (s *shader) Source() string {
	return s.source
}

func (s *shader) VertexEntryPoint() string {
	return s.vertexEntryPoint
}

func (s *shader) FragmentEntryPoint() string {
	return s.fragmentEntryPoint
}

func (s *shader) BindGroupLayoutDescriptor(group int) wgpu.BindGroupLayoutDescriptor {
	return s.bindGroupLayoutDescriptors[group]
}

func (s *shader) BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor {
	return s.bindGroupLayoutDescriptors
}

func (s *shader) BindGroupVarName(group, binding int) string {
	if s.bindingVarNames[group] == nil {
		return ""
	}
	return s.bindingVarNames[group][binding]
}

func (s *shader) BindGroupFromVarName(group int, varName string) (int, bool) {
	for binding, name := range s.bindingVarNames[group] {
		if name == varName {
			return binding, true
		}
	}
	return -1, false
}

func (s *shader) VertexLayouts() []wgpu.VertexBufferLayout {
	return s.vertexLayouts
}

func (s *shader) StructSize(name string) (uint64, bool) {
	layout, ok := s.structLayouts[name]
	return layout.size, ok
}

func (s *shader) Module() *wgpu.ShaderModuleDescriptor {
	return s.module
}
