package img

import (
	"fmt"
	"strings"

	"shroud/stegano/payload"
)

/*
 * Method embeds a payload into the carrier it was created for, or
 * extracts one from it. Embed works on a clone and returns it; the carrier
 * itself is never modified, neither by Embed nor by Extract.
 */
type Method interface {
	// Capacity is the maximum size of the framed payload in bytes.
	Capacity() int
	Embed(p *payload.Payload, progress *Progress) (Carrier, error)
	Extract(p *payload.Payload, progress *Progress) error
	// Visualizer of the last Embed or Extract call, nil if the method
	// does not support it.
	Visualizer() *Visualizer
}

type GIFMethod int

const (
	// GIFSorted encodes bits in the parity of a perceptually sorted palette.
	GIFSorted GIFMethod = iota
	// GIFShuffle encodes the payload in the order of the palette.
	GIFShuffle
)

func (m GIFMethod) String() string {
	if m == GIFShuffle {
		return "shuffle"
	}
	return "sorted"
}

func ParseGIFMethod(s string) (GIFMethod, error) {
	switch strings.ToLower(s) {
	case "", "sorted":
		return GIFSorted, nil
	case "shuffle":
		return GIFShuffle, nil
	}
	return GIFSorted, fmt.Errorf("unknown gif method %q", s)
}

// DefaultJPEGQuality is used for re-encoding JPEG carriers.
const DefaultJPEGQuality = 80

type Options struct {
	Filter      FilterKind
	GIF         GIFMethod
	JPEGQuality int
}

func DefaultOptions() Options {
	return Options{
		Filter:      FilterHomogeneous,
		GIF:         GIFSorted,
		JPEGQuality: DefaultJPEGQuality,
	}
}

type methodFactory func(c Carrier, filter PointFilter, opts Options) Method

var methods = map[Format]methodFactory{
	FormatBMP: func(c Carrier, f PointFilter, _ Options) Method {
		return &lsbMethod{image: c.(*RGBImage), filter: f}
	},
	FormatPNG: func(c Carrier, f PointFilter, _ Options) Method {
		return &lsbMethod{image: c.(*RGBImage), filter: f}
	},
	FormatGIF: func(c Carrier, f PointFilter, opts Options) Method {
		if opts.GIF == GIFShuffle {
			return &gifShuffleMethod{image: c.(*GIFImage)}
		}
		return &gifSortedMethod{image: c.(*GIFImage), filter: f}
	},
	FormatJPEG: func(c Carrier, _ PointFilter, opts Options) Method {
		return &jpgMethod{image: c.(*JPGImage), quality: opts.JPEGQuality}
	},
}

// NewMethod picks the embedding method for the carrier format.
func NewMethod(c Carrier, opts Options) (Method, error) {
	factory, ok := methods[c.Format()]
	if !ok {
		return nil, &ImageError{Message: "no embedding method for format " + c.Format().String()}
	}
	return factory(c, NewPointFilter(opts.Filter, c.Format()), opts), nil
}

func exhausted(err error) error {
	return payload.NewKeyError("ran out of points before the payload was complete", err)
}
