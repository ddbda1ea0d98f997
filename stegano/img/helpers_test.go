package img

import (
	"bytes"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"

	"shroud/stegano/palette"
	"shroud/stegano/payload"
)

// xorshift keeps test images reproducible
type noise uint32

func (n *noise) next() uint8 {
	x := uint32(*n)
	x ^= x << 13
	x ^= x >> 17
	x ^= x << 5
	*n = noise(x)
	return uint8(x >> 7)
}

// noiseImage is random in the noisy part and uniformly gray in the
// flat rectangle.
func noiseImage(w, h int, flat image.Rectangle) *image.NRGBA {
	n := noise(2463534242)
	m := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if (image.Point{x, y}).In(flat) {
				m.SetNRGBA(x, y, color.NRGBA{0x80, 0x80, 0x80, 0xff})
			} else {
				m.SetNRGBA(x, y, color.NRGBA{n.next(), n.next(), n.next(), 0xff})
			}
		}
	}
	return m
}

func encodeRGB(t *testing.T, format Format, m image.Image) []byte {
	t.Helper()
	buf := bytes.NewBuffer([]byte{})
	if format == FormatBMP {
		require.NoError(t, bmp.Encode(buf, NewRGBImage(format, m).encodable()))
	} else {
		require.NoError(t, png.Encode(buf, m))
	}
	return buf.Bytes()
}

func testColors(n int) color.Palette {
	p := make(color.Palette, n)
	for i := range p {
		p[i] = color.RGBA{uint8(i*2 + 1), uint8(255 - i), uint8(i * 7), 0xff}
	}
	return p
}

// noiseGIF references every color of the palette, the flat rectangle
// uses color 0 only.
func noiseGIF(w, h, colors int, flat image.Rectangle) *gif.GIF {
	n := noise(88172645)
	frame := image.NewPaletted(image.Rect(0, 0, w, h), testColors(colors))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			idx := uint8((y*w + x) % colors)
			if (image.Point{x, y}).In(flat) {
				idx = 0
			} else if y*w+x >= colors {
				idx = uint8(int(n.next()) % colors)
			}
			frame.SetColorIndex(x, y, idx)
		}
	}
	return &gif.GIF{
		Image: []*image.Paletted{frame},
		Delay: []int{0},
		Config: image.Config{
			ColorModel: frame.Palette,
			Width:      w,
			Height:     h,
		},
	}
}

func encodeGIF(t *testing.T, g *gif.GIF) []byte {
	t.Helper()
	buf := bytes.NewBuffer([]byte{})
	require.NoError(t, gif.EncodeAll(buf, g))
	return buf.Bytes()
}

// reload writes the carrier and decodes it again.
func reload(t *testing.T, c Carrier) Carrier {
	t.Helper()
	buf := bytes.NewBuffer([]byte{})
	require.NoError(t, Encode(buf, c))
	out, err := Decode(buf.Bytes())
	require.NoError(t, err)
	return out
}

func messagePayload(password, message string) *payload.Payload {
	p := payload.New()
	p.SetPassword(password)
	p.AddBlock(payload.NewMessageBlock(message))
	return p
}

func extractMessage(t *testing.T, c Carrier, opts Options, password string) (*payload.Payload, error) {
	t.Helper()
	method, err := NewMethod(c, opts)
	require.NoError(t, err)
	out := payload.New()
	out.SetPassword(password)
	return out, method.Extract(out, nil)
}

func colorsOf(m *GIFImage) []palette.Color {
	table := m.Table()
	pix := m.Pixels()
	out := make([]palette.Color, len(pix))
	for i, idx := range pix {
		out[i] = table[idx]
	}
	return out
}

// singlesGIF fills the frame with random colors of [0, random) and places
// every color of [random, colors) on exactly one pixel.
func singlesGIF(w, h, random, colors int) *gif.GIF {
	n := noise(362436069)
	frame := image.NewPaletted(image.Rect(0, 0, w, h), testColors(colors))
	for i := range frame.Pix {
		frame.Pix[i] = uint8(int(n.next()) % random)
	}
	for k := 0; k < colors-random; k++ {
		frame.Pix[(k*37+5)%(w*h)] = uint8(random + k)
	}
	return &gif.GIF{
		Image: []*image.Paletted{frame},
		Delay: []int{0},
		Config: image.Config{
			ColorModel: frame.Palette,
			Width:      w,
			Height:     h,
		},
	}
}

// usedColors is the set of colors at least one pixel refers to.
func usedColors(m *GIFImage) map[palette.Color]bool {
	used := map[palette.Color]bool{}
	for _, c := range colorsOf(m) {
		used[c] = true
	}
	return used
}
