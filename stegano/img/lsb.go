package img

import (
	"shroud/stegano/payload"
	"shroud/stegano/util"
)

// lsbMethod spreads the payload bits over the R, G and B channels of
// password-selected pixels, one bit plane per generator iteration.
type lsbMethod struct {
	image      *RGBImage
	filter     PointFilter
	visualizer *Visualizer
}

func (m *lsbMethod) Capacity() int {
	pixels := m.image.Width() * m.image.Height()
	filtered := m.filter.Excluded(m.image).Len()
	util.DebugPrintf("Embedding into %d LSBs", m.filter.MaxLsbCount())
	return (pixels - filtered) * 3 * m.filter.MaxLsbCount() / 8
}

func (m *lsbMethod) Visualizer() *Visualizer {
	return m.visualizer
}

func (m *lsbMethod) generator(password string) *PointGenerator {
	return NewPointGenerator(m.image.Width(), m.image.Height(), password,
		m.filter.Excluded(m.image), m.filter.MaxLsbCount())
}

func (m *lsbMethod) Embed(p *payload.Payload, progress *Progress) (Carrier, error) {
	util.DebugPrintln("Performing LSB embedding")
	embedder, err := payload.NewEmbedder(p, m.Capacity())
	if err != nil {
		return nil, err
	}

	clone := m.image.Clone().(*RGBImage)
	m.visualizer = NewVisualizer(clone)
	gen := m.generator(p.SteganoPassword)
	bits := embedder.Bits()

	for bits.HasNext() {
		point, err := gen.Next()
		if err != nil {
			return nil, &payload.EmbedError{Message: "carrier too small", Err: err}
		}
		plane := gen.IterationCount() - 1

		old := clone.RGB(point.X, point.Y)
		rgb := old
		for channel := 0; channel < 3 && bits.HasNext(); channel++ {
			rgb[channel] = byte(util.SetBitAt(int(rgb[channel]), plane, bits.Next()))
		}

		if rgb == old {
			m.visualizer.Visualize(point.X, point.Y, Unaltered)
		} else {
			m.visualizer.Visualize(point.X, point.Y, Altered)
			clone.SetRGB(point.X, point.Y, rgb)
		}
		progress.Update(bits.Position()/8, embedder.Len())
	}
	return clone, nil
}

func (m *lsbMethod) Extract(p *payload.Payload, progress *Progress) error {
	util.DebugPrintln("Performing LSB extraction")
	extractor := payload.NewExtractor(p)
	extractor.SetCapacity(m.Capacity())
	m.visualizer = NewVisualizer(m.image)
	gen := m.generator(p.SteganoPassword)

	for !extractor.Finished() {
		point, err := gen.Next()
		if err != nil {
			return exhausted(err)
		}
		plane := gen.IterationCount() - 1

		rgb := m.image.RGB(point.X, point.Y)
		for channel := 0; channel < 3 && !extractor.Finished(); channel++ {
			if err := extractor.ProcessBit(util.BitAt(int(rgb[channel]), plane)); err != nil {
				return err
			}
		}
		m.visualizer.Visualize(point.X, point.Y, Altered)

		if length, ok := extractor.PayloadLength(); ok {
			progress.Update(extractor.ProcessedBytes(), length)
		}
	}
	return nil
}
