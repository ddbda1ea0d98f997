package img

import (
	"image"
	"image/color"
	"image/png"
	"io"
)

type VisualizationMode int

const (
	Unaltered VisualizationMode = iota
	Altered
)

var visualizationColors = map[VisualizationMode]color.NRGBA{
	Altered:   {0xff, 0, 0, 0xff},
	Unaltered: {0, 0xff, 0, 0xff},
}

// Visualizer paints every point touched by an embedding or extraction on a
// copy of the carrier: red where a pixel changed, green where the existing
// value already matched.
type Visualizer struct {
	img     *image.NRGBA
	altered int
	visited int
}

func NewVisualizer(c Carrier) *Visualizer {
	return &Visualizer{img: toNRGBA(c.Image())}
}

func (v *Visualizer) Visualize(x, y int, mode VisualizationMode) {
	if v == nil {
		return
	}
	v.img.SetNRGBA(x, y, visualizationColors[mode])
	v.visited++
	if mode == Altered {
		v.altered++
	}
}

// Counts returns the number of visualized and of altered points.
func (v *Visualizer) Counts() (visited, altered int) {
	if v == nil {
		return 0, 0
	}
	return v.visited, v.altered
}

func (v *Visualizer) Image() image.Image {
	return v.img
}

// WritePNG encodes the visualization.
func (v *Visualizer) WritePNG(w io.Writer) error {
	return png.Encode(w, v.img)
}
