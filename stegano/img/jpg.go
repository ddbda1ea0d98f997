package img

import (
	"bytes"
	"image/jpeg"

	"lukechampine.com/jsteg"

	"shroud/cryptography"
	"shroud/stegano/payload"
	"shroud/stegano/util"
)

/*
 * jpgMethod hands the framed payload to the DCT coefficient coder. The
 * coder knows no password, so the bytes are XORed with a keystream of
 * the stego password first; with a wrong password the length header
 * decodes to garbage.
 */
type jpgMethod struct {
	image   *JPGImage
	quality int
}

func (m *jpgMethod) options() *jpeg.Options {
	if m.quality <= 0 {
		return &jpeg.Options{Quality: DefaultJPEGQuality}
	}
	return &jpeg.Options{Quality: m.quality}
}

func (m *jpgMethod) Capacity() int {
	return jsteg.Capacity(m.image.img, m.options())
}

func (m *jpgMethod) Visualizer() *Visualizer {
	return nil
}

func whiten(data []byte, password string) []byte {
	out := make([]byte, len(data))
	for i, k := range cryptography.Keystream(password, len(data)) {
		out[i] = data[i] ^ k
	}
	return out
}

func (m *jpgMethod) Embed(p *payload.Payload, progress *Progress) (Carrier, error) {
	util.DebugPrintln("Performing JPEG embedding")
	embedder, err := payload.NewEmbedder(p, m.Capacity())
	if err != nil {
		return nil, err
	}

	buf := bytes.NewBuffer([]byte{})
	if err := jsteg.Hide(buf, m.image.img, whiten(embedder.Bytes(), p.SteganoPassword), m.options()); err != nil {
		return nil, &payload.EmbedError{Message: "jpeg coder failed", Err: err}
	}

	clone := m.image.Clone().(*JPGImage)
	if err := clone.setBytes(buf.Bytes()); err != nil {
		return nil, err
	}
	progress.Update(1, 1)
	return clone, nil
}

func (m *jpgMethod) Extract(p *payload.Payload, progress *Progress) error {
	util.DebugPrintln("Performing JPEG extraction")
	hidden, err := jsteg.Reveal(bytes.NewReader(m.image.raw))
	if err != nil {
		return &payload.ExtractError{Message: "jpeg coder failed", Err: err}
	}

	data := whiten(hidden, p.SteganoPassword)
	extractor := payload.NewExtractor(p)
	// the coder reveals every coefficient it can address, more is impossible
	extractor.SetCapacity(len(data))
	for i, b := range data {
		if err := extractor.ProcessByte(b); err != nil {
			return err
		}
		if length, ok := extractor.PayloadLength(); ok {
			progress.Update(extractor.ProcessedBytes(), length)
		}
		if extractor.Finished() {
			util.DebugPrintf("Extracted %d bytes from jpeg", i+1)
			return nil
		}
	}
	return payload.NewKeyError("payload is shorter than its header claims", nil)
}
