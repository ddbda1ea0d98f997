package img

import (
	"bytes"
	"image"
	"image/draw"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
)

type Format int

const (
	FormatUnknown Format = iota
	FormatBMP
	FormatGIF
	FormatJPEG
	FormatPNG
)

var formatNames = map[Format]string{
	FormatBMP:  "bmp",
	FormatGIF:  "gif",
	FormatJPEG: "jpg",
	FormatPNG:  "png",
}

func (f Format) String() string {
	if name, ok := formatNames[f]; ok {
		return name
	}
	return "unknown"
}

// TrueColor reports formats embedded into with the LSB method.
func (f Format) TrueColor() bool {
	return f == FormatBMP || f == FormatPNG
}

var signatures = []struct {
	format Format
	magic  []byte
}{
	{FormatGIF, []byte{0x47, 0x49, 0x46}},
	{FormatPNG, []byte{0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a}},
	{FormatJPEG, []byte{0xff, 0xd8, 0xff}},
	{FormatBMP, []byte{0x42, 0x4d}},
}

// Sniff recognises the format by its magic bytes.
func Sniff(data []byte) Format {
	for _, s := range signatures {
		if bytes.HasPrefix(data, s.magic) {
			return s.format
		}
	}
	return FormatUnknown
}

// FormatFromPath recognises the format by the file extension.
func FormatFromPath(path string) Format {
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(path), ".")) {
	case "bmp":
		return FormatBMP
	case "gif":
		return FormatGIF
	case "jpg", "jpeg":
		return FormatJPEG
	case "png":
		return FormatPNG
	}
	return FormatUnknown
}

// SupportedFormats lists the extensions of all supported carriers.
func SupportedFormats() []string {
	return []string{"bmp", "gif", "jpg", "png"}
}

// Decode reads a carrier from its encoded bytes.
func Decode(data []byte) (Carrier, error) {
	format := Sniff(data)
	switch format {
	case FormatBMP:
		m, err := bmp.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, &ImageError{Message: "cannot decode bmp", Err: err}
		}
		return NewRGBImage(format, m), nil
	case FormatPNG:
		m, err := png.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, &ImageError{Message: "cannot decode png", Err: err}
		}
		return NewRGBImage(format, m), nil
	case FormatGIF:
		g, err := gif.DecodeAll(bytes.NewReader(data))
		if err != nil {
			return nil, &ImageError{Message: "cannot decode gif", Err: err}
		}
		return NewGIFImage(g)
	case FormatJPEG:
		return NewJPGImage(data)
	}
	return nil, &ImageError{Message: "unsupported image format"}
}

// Encode writes the carrier in its own format.
func Encode(w io.Writer, c Carrier) error {
	var err error
	switch m := c.(type) {
	case *RGBImage:
		if m.format == FormatBMP {
			err = bmp.Encode(w, m.encodable())
		} else {
			err = png.Encode(w, m.encodable())
		}
	case *GIFImage:
		err = gif.EncodeAll(w, m.encodable())
	case *JPGImage:
		_, err = w.Write(m.raw)
	default:
		return &ImageError{Message: "unsupported carrier"}
	}
	if err != nil {
		return &ImageError{Message: "cannot encode " + c.Format().String(), Err: err}
	}
	return nil
}

func Load(path string) (Carrier, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ImageError{Path: path, Err: err}
	}
	c, err := Decode(data)
	if err != nil {
		if ie, ok := err.(*ImageError); ok {
			ie.Path = path
			if Sniff(data) == FormatUnknown && FormatFromPath(path) != FormatUnknown {
				ie.Message = "content is not a valid " + FormatFromPath(path).String() + " image"
			}
		}
		return nil, err
	}
	return c, nil
}

// Save writes the carrier in its own format. A known file extension has
// to name that format.
func Save(c Carrier, path string) error {
	if ext := FormatFromPath(path); ext != FormatUnknown && ext != c.Format() {
		return &ImageError{Path: path, Message: "cannot write " + c.Format().String() + " image to a file named as " + ext.String()}
	}
	buf := bytes.NewBuffer([]byte{})
	if err := Encode(buf, c); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0660); err != nil {
		return &ImageError{Path: path, Err: err}
	}
	return nil
}

// OutputPath puts suffix between the file name and its extension:
// dir/photo.png becomes dir/photo_embed.png.
func OutputPath(path, suffix string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + suffix + ext
}

// toNRGBA copies any image into an NRGBA image anchored at (0, 0).
func toNRGBA(src image.Image) *image.NRGBA {
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	if n, ok := src.(*image.NRGBA); ok {
		for y := 0; y < b.Dy(); y++ {
			copy(dst.Pix[y*dst.Stride:y*dst.Stride+4*b.Dx()], n.Pix[n.PixOffset(b.Min.X, b.Min.Y+y):])
		}
		return dst
	}
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}

func decodeJPEG(data []byte) (image.Image, error) {
	return jpeg.Decode(bytes.NewReader(data))
}
