package texture

import (
	"errors"
	"fmt"
	"image"

	"golang.org/x/image/draw"
)

// ErrUnsupportedMipFormat is returned when mip generation is requested for a float texture.
var ErrUnsupportedMipFormat = errors.New("texture: mip generation supports 8-bit formats only")

// GenerateMipmaps replaces any existing mip chain with a full chain down to 1x1, each level a bilinear
// half-size reduction of the previous one. sRGB textures are filtered in encoded space.
//
// Returns:
//   - error: ErrUnsupportedMipFormat for float textures, or an error if level 0 has the wrong size
func (t *Texture) GenerateMipmaps() error {
	if t.Format == FormatFloat {
		return ErrUnsupportedMipFormat
	}
	base := t.Texels()
	if want := int(t.Width) * int(t.Height) * 4; len(base) != want {
		return fmt.Errorf("texture: level 0 has %d bytes, want %d", len(base), want)
	}

	levels := [][]byte{base}
	src := &image.RGBA{Pix: base, Stride: int(t.Width) * 4, Rect: image.Rect(0, 0, int(t.Width), int(t.Height))}
	for level := 1; ; level++ {
		w, h := t.LevelSize(level)
		if w == uint32(src.Rect.Dx()) && h == uint32(src.Rect.Dy()) {
			break
		}
		dst := image.NewRGBA(image.Rect(0, 0, int(w), int(h)))
		draw.BiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
		levels = append(levels, dst.Pix)
		src = dst
	}
	t.Levels = levels
	return nil
}
