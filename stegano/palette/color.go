package palette

import (
	"fmt"
	"image/color"
)

// Color is a palette entry. Distances only look at R, G and B; alpha only
// tells the transparent entry of a GIF apart from opaque black.
type Color struct {
	R, G, B, A uint8
}

func FromColor(c color.Color) Color {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return Color{n.R, n.G, n.B, n.A}
}

// Opaque is a fully opaque color.
func Opaque(r, g, b uint8) Color {
	return Color{r, g, b, 0xff}
}

// FromPalette converts every palette entry, keeping the order.
func FromPalette(p color.Palette) []Color {
	out := make([]Color, len(p))
	for i, c := range p {
		out[i] = FromColor(c)
	}
	return out
}

// ToPalette is the inverse of FromPalette.
func ToPalette(table []Color) color.Palette {
	p := make(color.Palette, len(table))
	for i, c := range table {
		p[i] = color.NRGBA{c.R, c.G, c.B, c.A}
	}
	return p
}

// Packed is 0xRRGGBB.
func (c Color) Packed() uint32 {
	return uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
}

func (c Color) key() uint64 {
	return uint64(c.Packed())<<8 | uint64(c.A)
}

func (c Color) RGBA() (r, g, b, a uint32) {
	return color.NRGBA{c.R, c.G, c.B, c.A}.RGBA()
}

func (c Color) String() string {
	if c.A == 0xff {
		return fmt.Sprintf("[%d,%d,%d]", c.R, c.G, c.B)
	}
	return fmt.Sprintf("[%d,%d,%d,a%d]", c.R, c.G, c.B, c.A)
}

// IsPadding reports opaque black, the color GIF encoders pad short tables with.
func (c Color) IsPadding() bool {
	return c == Color{0, 0, 0, 0xff}
}
