package shader

import "github.com/cogentcore/webgpu/wgpu"

// vertexFormatInfo holds the wgpu vertex format and its byte size.
type vertexFormatInfo struct {
	format wgpu.VertexFormat
	size   uint64
}

// wgslTypeLayout holds the byte size and alignment of a WGSL type in the uniform address space.
type wgslTypeLayout struct {
	size  uint64
	align uint64
}

// parsedField is one member of a parsed WGSL struct.
type parsedField struct {
	name      string
	typeName  string
	location  int
	align     uint64 // from @align(N), 0 when absent
	isBuiltin bool
}

// parsedStruct is a WGSL struct block.
type parsedStruct struct {
	name   string
	fields []parsedField
}
