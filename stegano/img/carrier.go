package img

import (
	"image"
	"image/color"
	"image/gif"
	"sort"

	"shroud/stegano/palette"
)

/*
 * Carrier is a decoded cover image. Every implementation owns the caches
 * derived from its content and drops them on each mutation, so a cached
 * filter result always belongs to the current pixels.
 */
type Carrier interface {
	Format() Format
	Width() int
	Height() int
	// Clone returns an independent deep copy.
	Clone() Carrier
	// Image is a read-only view of the current content.
	Image() image.Image

	filters() *filterCache
}

type filterCache struct {
	sets map[string]*PointSet
}

func (fc *filterCache) get(key string, compute func() *PointSet) *PointSet {
	if fc.sets == nil {
		fc.sets = map[string]*PointSet{}
	}
	if set, ok := fc.sets[key]; ok {
		return set
	}
	set := compute()
	fc.sets[key] = set
	return set
}

func (fc *filterCache) invalidate() {
	fc.sets = nil
}

// RGBImage is a true color carrier (BMP or PNG).
type RGBImage struct {
	format Format
	pix    *image.NRGBA
	cache  filterCache
}

func NewRGBImage(format Format, src image.Image) *RGBImage {
	return &RGBImage{format: format, pix: toNRGBA(src)}
}

func (m *RGBImage) Format() Format { return m.format }
func (m *RGBImage) Width() int     { return m.pix.Rect.Dx() }
func (m *RGBImage) Height() int    { return m.pix.Rect.Dy() }

func (m *RGBImage) Image() image.Image {
	return m.pix
}

func (m *RGBImage) Clone() Carrier {
	pix := image.NewNRGBA(m.pix.Rect)
	copy(pix.Pix, m.pix.Pix)
	return &RGBImage{format: m.format, pix: pix}
}

func (m *RGBImage) filters() *filterCache {
	return &m.cache
}

// RGB returns the color channels of a pixel.
func (m *RGBImage) RGB(x, y int) [3]uint8 {
	i := m.pix.PixOffset(x, y)
	return [3]uint8{m.pix.Pix[i], m.pix.Pix[i+1], m.pix.Pix[i+2]}
}

// SetRGB replaces the color channels of a pixel, alpha is kept.
func (m *RGBImage) SetRGB(x, y int, rgb [3]uint8) {
	i := m.pix.PixOffset(x, y)
	copy(m.pix.Pix[i:i+3], rgb[:])
	m.cache.invalidate()
}

// argb packs a pixel as 0xAARRGGBB.
func (m *RGBImage) argb(x, y int) uint32 {
	i := m.pix.PixOffset(x, y)
	p := m.pix.Pix[i : i+4]
	return uint32(p[3])<<24 | uint32(p[0])<<16 | uint32(p[1])<<8 | uint32(p[2])
}

// encodable avoids the alpha channel for opaque images, some decoders
// do not read it back.
func (m *RGBImage) encodable() image.Image {
	if !m.pix.Opaque() {
		return m.pix
	}
	rgba := image.NewRGBA(m.pix.Rect)
	copy(rgba.Pix, m.pix.Pix)
	return rgba
}

/*
 * GIFImage is a palette carrier. Only the first frame carries payload,
 * the other frames are written back untouched.
 *
 * The color table is kept canonical: no duplicates and no unreferenced
 * opaque black, the color encoders pad short tables with. A steganogram
 * therefore reloads with exactly the table it was written with.
 */
type GIFImage struct {
	gif          *gif.GIF
	frame        *image.Paletted
	table        []palette.Color
	sharedGlobal bool

	sorted map[palette.Distance][]palette.Color
	ranks  map[palette.Distance][]int
	hist   []int
	cache  filterCache
}

func NewGIFImage(g *gif.GIF) (*GIFImage, error) {
	if len(g.Image) == 0 {
		return nil, &ImageError{Message: "gif without frames"}
	}
	frame := g.Image[0]
	global, _ := g.Config.ColorModel.(color.Palette)
	m := &GIFImage{
		gif:          g,
		frame:        frame,
		table:        palette.FromPalette(frame.Palette),
		sharedGlobal: len(global) > 0 && samePalette(global, frame.Palette),
	}
	m.canonicalize()
	return m, nil
}

func samePalette(a, b color.Palette) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if palette.FromColor(a[i]) != palette.FromColor(b[i]) {
			return false
		}
	}
	return true
}

func (m *GIFImage) canonicalize() {
	hist := palette.Histogram(len(m.table), m.Pixels())
	first := map[palette.Color]int{}
	table := []palette.Color{}
	remap := make([]uint8, len(m.table))
	changed := false

	for i, c := range m.table {
		if j, dup := first[c]; dup {
			remap[i] = uint8(j)
			changed = true
			continue
		}
		if hist[i] == 0 && c.IsPadding() {
			changed = true
			continue
		}
		first[c] = len(table)
		remap[i] = uint8(len(table))
		table = append(table, c)
	}
	if changed && len(table) > 0 {
		m.SetTable(table, remap)
	}
}

func (m *GIFImage) Format() Format { return FormatGIF }
func (m *GIFImage) Width() int     { return m.frame.Rect.Dx() }
func (m *GIFImage) Height() int    { return m.frame.Rect.Dy() }

func (m *GIFImage) Image() image.Image {
	return m.frame
}

// Frames is the number of frames in the animation.
func (m *GIFImage) Frames() int {
	return len(m.gif.Image)
}

func (m *GIFImage) Clone() Carrier {
	g := *m.gif
	g.Image = append([]*image.Paletted{}, m.gif.Image...)
	frame := &image.Paletted{
		Pix:     append([]uint8{}, m.frame.Pix...),
		Stride:  m.frame.Stride,
		Rect:    m.frame.Rect,
		Palette: append(color.Palette{}, m.frame.Palette...),
	}
	g.Image[0] = frame
	clone := &GIFImage{
		gif:          &g,
		frame:        frame,
		table:        append([]palette.Color{}, m.table...),
		sharedGlobal: m.sharedGlobal,
	}
	// sorted tables are never written to and only depend on the table
	if m.sorted != nil {
		clone.sorted = map[palette.Distance][]palette.Color{}
		for d, sorted := range m.sorted {
			clone.sorted[d] = sorted
		}
	}
	return clone
}

func (m *GIFImage) filters() *filterCache {
	return &m.cache
}

func (m *GIFImage) offset(x, y int) int {
	return m.frame.PixOffset(m.frame.Rect.Min.X+x, m.frame.Rect.Min.Y+y)
}

// Pixels returns a copy of all palette indices, row by row.
func (m *GIFImage) Pixels() []uint8 {
	w, h := m.Width(), m.Height()
	pix := make([]uint8, w*h)
	for y := 0; y < h; y++ {
		copy(pix[y*w:(y+1)*w], m.frame.Pix[m.offset(0, y):])
	}
	return pix
}

// SetPixels replaces all palette indices, row by row.
func (m *GIFImage) SetPixels(pix []uint8) {
	w, h := m.Width(), m.Height()
	for y := 0; y < h; y++ {
		copy(m.frame.Pix[m.offset(0, y):m.offset(0, y)+w], pix[y*w:(y+1)*w])
	}
	m.hist = nil
	m.cache.invalidate()
}

// Table returns a copy of the color table.
func (m *GIFImage) Table() []palette.Color {
	return append([]palette.Color{}, m.table...)
}

// SetTable installs a new color table. remap maps every old index to the
// index of the same pixel color in the new table.
func (m *GIFImage) SetTable(table []palette.Color, remap []uint8) {
	w, h := m.Width(), m.Height()
	for y := 0; y < h; y++ {
		row := m.frame.Pix[m.offset(0, y) : m.offset(0, y)+w]
		for x, idx := range row {
			row[x] = remap[idx]
		}
	}

	m.table = append([]palette.Color{}, table...)
	// never write into the old palette, other frames may share it
	m.frame.Palette = palette.ToPalette(m.table)
	if m.sharedGlobal {
		m.gif.Config.ColorModel = m.frame.Palette
		if bg := int(m.gif.BackgroundIndex); bg < len(remap) {
			m.gif.BackgroundIndex = remap[bg]
		} else {
			m.gif.BackgroundIndex = 0
		}
	}

	m.sorted = nil
	m.ranks = nil
	m.hist = nil
	m.cache.invalidate()
}

// Histogram counts the pixels per palette index.
func (m *GIFImage) Histogram() []int {
	if m.hist == nil {
		m.hist = palette.Histogram(len(m.table), m.Pixels())
	}
	return m.hist
}

// SortedTable is the color table ordered by palette.Sort.
func (m *GIFImage) SortedTable(d palette.Distance) []palette.Color {
	if m.sorted == nil {
		m.sorted = map[palette.Distance][]palette.Color{}
	}
	if sorted, ok := m.sorted[d]; ok {
		return sorted
	}
	sorted := palette.Sort(m.table, d)
	m.sorted[d] = sorted
	return sorted
}

// Ranks maps every palette index to its position in SortedTable.
func (m *GIFImage) Ranks(d palette.Distance) []int {
	if m.ranks == nil {
		m.ranks = map[palette.Distance][]int{}
	}
	if ranks, ok := m.ranks[d]; ok {
		return ranks
	}
	pos := palette.Index(m.SortedTable(d))
	ranks := make([]int, len(m.table))
	for i, c := range m.table {
		ranks[i] = pos[c]
	}
	m.ranks[d] = ranks
	return ranks
}

// SortByFrequency reorders the table by descending pixel count. Equal
// counts keep their order.
func (m *GIFImage) SortByFrequency() {
	hist := m.Histogram()
	order := make([]int, len(m.table))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return hist[order[a]] > hist[order[b]]
	})

	table := make([]palette.Color, len(order))
	remap := make([]uint8, len(order))
	for newIdx, oldIdx := range order {
		table[newIdx] = m.table[oldIdx]
		remap[oldIdx] = uint8(newIdx)
	}
	m.SetTable(table, remap)
}

func (m *GIFImage) encodable() *gif.GIF {
	return m.gif
}

// JPGImage keeps the encoded bytes. Embedding re-encodes the image, so
// saving writes the bytes the coder produced.
type JPGImage struct {
	raw   []byte
	img   image.Image
	cache filterCache
}

func NewJPGImage(data []byte) (*JPGImage, error) {
	m, err := decodeJPEG(data)
	if err != nil {
		return nil, &ImageError{Message: "cannot decode jpeg", Err: err}
	}
	return &JPGImage{raw: append([]byte{}, data...), img: m}, nil
}

func (m *JPGImage) Format() Format     { return FormatJPEG }
func (m *JPGImage) Width() int         { return m.img.Bounds().Dx() }
func (m *JPGImage) Height() int        { return m.img.Bounds().Dy() }
func (m *JPGImage) Image() image.Image { return m.img }

func (m *JPGImage) Clone() Carrier {
	// the decoded image is never written to
	return &JPGImage{raw: append([]byte{}, m.raw...), img: m.img}
}

func (m *JPGImage) filters() *filterCache {
	return &m.cache
}

// Bytes returns the encoded image.
func (m *JPGImage) Bytes() []byte {
	return m.raw
}

func (m *JPGImage) setBytes(data []byte) error {
	decoded, err := decodeJPEG(data)
	if err != nil {
		return &ImageError{Message: "cannot decode jpeg", Err: err}
	}
	m.raw = data
	m.img = decoded
	m.cache.invalidate()
	return nil
}
