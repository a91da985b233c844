package shadergraph

import (
	"encoding/binary"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-core/common"
)

func contentsOf(kinds ...ContentKind) []UniformContent {
	out := make([]UniformContent, len(kinds))
	for i, k := range kinds {
		out[i] = UniformContent{Kind: k}
	}
	return out
}

func offsets(l Layout) []uint32 {
	out := make([]uint32, len(l.Fields))
	for i, f := range l.Fields {
		out[i] = f.Offset
	}
	return out
}

func TestPackLayout(t *testing.T) {
	tests := []struct {
		name    string
		kinds   []ContentKind
		offsets []uint32
		size    uint32
	}{
		{"scalar vec3 scalar", []ContentKind{ContentFloat, ContentVec3, ContentFloat}, []uint32{0, 16, 28}, 32},
		{"vec3 then scalar fills the tail", []ContentKind{ContentVec3, ContentFloat}, []uint32{0, 12}, 16},
		{"mat4 aligns to 64", []ContentKind{ContentFloat, ContentMat4}, []uint32{0, 64}, 128},
		{"mat4 then scalar", []ContentKind{ContentMat4, ContentFloat}, []uint32{0, 64}, 128},
		{"scalars only", []ContentKind{ContentFloat, ContentFloat, ContentFloat}, []uint32{0, 4, 8}, 12},
		{"textures are skipped", []ContentKind{ContentTexture, ContentFloat}, []uint32{0}, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := PackLayout(contentsOf(tt.kinds...))
			if diff := cmp.Diff(tt.offsets, offsets(l)); diff != "" {
				t.Errorf("offsets mismatch (-want +got):\n%s", diff)
			}
			assert.Equal(t, tt.size, l.Size)
		})
	}
}

func TestPackLayoutEmpty(t *testing.T) {
	l := PackLayout(nil)
	assert.Empty(t, l.Fields)
	assert.Equal(t, uint32(0), l.Size)
	assert.Equal(t, uint32(16), l.BufferSize())
	assert.Contains(t, l.StructSource(nil), "reserved: vec4<f32>")
}

func TestPackLayoutRandomized(t *testing.T) {
	r := rand.New(rand.NewPCG(3, 5))
	kinds := []ContentKind{ContentFloat, ContentVec3, ContentMat4}

	for iter := 0; iter < 300; iter++ {
		n := 1 + r.IntN(12)
		seq := make([]ContentKind, n)
		for i := range seq {
			seq[i] = kinds[r.IntN(len(kinds))]
		}
		l := PackLayout(contentsOf(seq...))
		require.Len(t, l.Fields, n)

		var end, maxAlign uint32 = 0, 1
		for i, f := range l.Fields {
			size, align := sizeAlign(seq[i])
			assert.Zero(t, f.Offset%align, "field %d misaligned in %v", i, seq)
			// each field starts at the first aligned offset after the previous one
			assert.Equal(t, common.AlignUp(align, end), f.Offset, "field %d not tightly packed in %v", i, seq)
			end = f.Offset + size
			maxAlign = max(maxAlign, align)
		}
		assert.Zero(t, l.Size%maxAlign)
		assert.GreaterOrEqual(t, l.Size, end)
		assert.Less(t, l.Size-end, maxAlign)
	}
}

func TestLayoutPack(t *testing.T) {
	l := PackLayout([]UniformContent{
		{Kind: ContentFloat, Float: 0.5},
		{Kind: ContentVec3, Vec3: common.Vec3{1, 2, 3}},
	})
	buf := l.Pack(nil)
	require.Len(t, buf, 32)

	f := func(off int) float32 {
		return math.Float32frombits(binary.LittleEndian.Uint32(buf[off:]))
	}
	assert.Equal(t, float32(0.5), f(0))
	assert.Equal(t, float32(1), f(16))
	assert.Equal(t, float32(2), f(20))
	assert.Equal(t, float32(3), f(24))

	live := l.Pack(func(field Field) (UniformContent, bool) {
		if field.Content.Kind != ContentFloat {
			return UniformContent{}, false
		}
		return UniformContent{Kind: ContentFloat, Float: 4}, true
	})
	assert.Equal(t, float32(4), math.Float32frombits(binary.LittleEndian.Uint32(live[0:])))
	assert.Equal(t, buf[16:], live[16:])
}
