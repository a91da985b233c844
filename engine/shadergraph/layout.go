package shadergraph

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/Carmen-Shannon/oxy-core/common"
)

// Field is one member of the packed uniform struct.
type Field struct {
	Content UniformContent
	Offset  uint32
	Size    uint32
	Align   uint32
}

// Layout is the packed byte layout of a material's Uniforms struct.
type Layout struct {
	Fields []Field
	// Size is the struct size rounded up to the largest member alignment. Zero when there are
	// no fields.
	Size uint32
}

// sizeAlign returns the WGSL uniform address-space size and alignment of a content kind.
// Mat4 members are aligned to 64, matching the @align(64) emitted in the declaration.
func sizeAlign(k ContentKind) (size, align uint32) {
	switch k {
	case ContentFloat:
		return 4, 4
	case ContentVec3:
		return 12, 16
	case ContentMat4:
		return 64, 64
	}
	panic(fmt.Sprintf("shadergraph: content kind %v has no uniform layout", k))
}

// PackLayout assigns offsets to uniform contents in order. Each member starts at the first
// offset that satisfies its alignment, and the total is rounded up to the largest alignment.
// Texture contents are skipped.
//
// Parameters:
//   - contents: uniform contents in emission order
//
// Returns:
//   - Layout: the packed layout
func PackLayout(contents []UniformContent) Layout {
	var (
		l        Layout
		offset   uint32
		maxAlign uint32 = 1
	)
	for _, c := range contents {
		if c.Kind == ContentTexture {
			continue
		}
		size, align := sizeAlign(c.Kind)
		offset = common.AlignUp(align, offset)
		l.Fields = append(l.Fields, Field{Content: c, Offset: offset, Size: size, Align: align})
		offset += size
		maxAlign = max(maxAlign, align)
	}
	if len(l.Fields) > 0 {
		l.Size = common.AlignUp(maxAlign, offset)
	}
	return l
}

// BufferSize is the size of the GPU buffer backing the layout. WGSL does not allow an empty
// struct, so an empty layout is backed by a single vec4 placeholder.
func (l Layout) BufferSize() uint32 {
	if l.Size == 0 {
		return 16
	}
	return l.Size
}

// Pack writes the current values of the layout's fields into a BufferSize-long little-endian
// byte slice. lookup supplies the live value for each field; fields it does not resolve keep the
// value captured at compile time.
//
// Parameters:
//   - lookup: returns the current content for a field, or false
//
// Returns:
//   - []byte: the buffer contents
func (l Layout) Pack(lookup func(Field) (UniformContent, bool)) []byte {
	buf := make([]byte, l.BufferSize())
	for _, f := range l.Fields {
		c := f.Content
		if lookup != nil {
			if live, ok := lookup(f); ok {
				c = live
			}
		}
		dst := buf[f.Offset:]
		switch f.Content.Kind {
		case ContentFloat:
			binary.LittleEndian.PutUint32(dst, math.Float32bits(c.Float))
		case ContentVec3:
			for i, v := range c.Vec3 {
				binary.LittleEndian.PutUint32(dst[i*4:], math.Float32bits(v))
			}
		case ContentMat4:
			for i, v := range c.Mat4 {
				binary.LittleEndian.PutUint32(dst[i*4:], math.Float32bits(v))
			}
		}
	}
	return buf
}

// StructSource returns the WGSL declaration of the Uniforms struct for this layout.
//
// Parameters:
//   - decls: the member lines, one per field, in layout order
//
// Returns:
//   - string: the struct declaration
func (l Layout) StructSource(decls []string) string {
	src := "struct Uniforms {\n"
	if len(decls) == 0 {
		src += "  reserved: vec4<f32>,\n"
	}
	for _, d := range decls {
		src += d
	}
	return src + "};\n"
}
