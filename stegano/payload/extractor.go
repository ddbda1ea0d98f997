package payload

import (
	"fmt"

	"shroud/cryptography"
	"shroud/stegano/util"
)

/*
 * Extractor is the mirror of Embedder. Embedding methods feed it one byte
 * or one bit at a time until Finished reports true; at that point the bytes
 * are decrypted, inflated and unpacked into the target payload.
 */
type Extractor struct {
	payload    *Payload
	headerSize int
	capacity   int

	header    []byte
	headerPos int

	// -1 until the header has been read
	payloadLength int
	data          []byte
	dataPos       int

	bits   [8]byte
	bitPos int

	finished bool
}

func NewExtractor(p *Payload) *Extractor {
	return &Extractor{
		payload:       p,
		headerSize:    p.headerSize(),
		capacity:      -1,
		header:        make([]byte, p.headerSize()),
		payloadLength: -1,
	}
}

// SetCapacity bounds the length an intact header may announce. A bigger
// value can only come from a wrong stego password.
func (e *Extractor) SetCapacity(capacity int) {
	e.capacity = capacity
}

// Finished reports whether the payload has been fully extracted and unpacked.
func (e *Extractor) Finished() bool {
	return e.finished
}

// PayloadLength is the number of bytes behind the header, known once the
// header has been processed.
func (e *Extractor) PayloadLength() (int, bool) {
	return e.payloadLength, e.payloadLength >= 0
}

// ProcessedBytes counts the bytes processed behind the header.
func (e *Extractor) ProcessedBytes() int {
	return e.dataPos
}

// ProcessByte consumes the next extracted byte.
func (e *Extractor) ProcessByte(b byte) error {
	if e.finished {
		return nil
	}
	if e.bitPos != 0 {
		return &ExtractError{Message: "cannot process byte while processing bits"}
	}
	return e.processByte(b)
}

// ProcessBit consumes the next extracted bit. Eight calls make one byte.
func (e *Extractor) ProcessBit(bit byte) error {
	if e.finished {
		return nil
	}
	e.bits[e.bitPos] = bit & 1
	e.bitPos = (e.bitPos + 1) % 8
	if e.bitPos == 0 {
		return e.processByte(util.FromBin(e.bits[:], util.PayloadOrder))
	}
	return nil
}

func (e *Extractor) processByte(b byte) error {
	if e.headerPos < e.headerSize {
		e.header[e.headerPos] = b
		e.headerPos++
		if e.headerPos == e.headerSize {
			return e.readHeader()
		}
		return nil
	}

	e.data[e.dataPos] = b
	e.dataPos++
	if e.dataPos == len(e.data) {
		return e.unpack()
	}
	return nil
}

func (e *Extractor) readHeader() error {
	total := util.BytesToLength(e.header)
	length := total - e.headerSize

	// a length that cannot even hold the salt is a strong hint for a wrong
	// stego password
	if length < cryptography.SaltSize {
		return NewKeyError(fmt.Sprintf("implausible payload length %d", length), nil)
	}
	if e.capacity >= 0 && total > e.capacity {
		return NewKeyError(fmt.Sprintf("payload length %d exceeds carrier capacity %d", total, e.capacity), nil)
	}

	util.DebugPrintf("Payload of %d bytes to be extracted", total)
	e.payloadLength = length
	e.data = make([]byte, length)
	e.dataPos = 0
	return nil
}

func (e *Extractor) unpack() error {
	util.DebugPrintf("Unpacking payload from %d extracted bytes", len(e.data))

	decrypted, err := cryptography.Decrypt(e.data, e.payload.EncryptionPassword)
	if err != nil {
		return NewEncryptionError("wrong decryption password", err)
	}

	// garbage from a wrong password hardly ever inflates
	decompressed, err := util.Decompress(decrypted)
	if err != nil {
		return NewKeyError("", err)
	}

	util.DebugPrintf("Unpacked %d bytes of payload", len(decompressed))
	if err := e.payload.Unpack(decompressed); err != nil {
		return NewKeyError("corrupt payload blocks", err)
	}
	e.finished = true
	return nil
}
