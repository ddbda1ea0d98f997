package payload

import (
	"fmt"

	"shroud/cryptography"
	"shroud/stegano/util"
)

// MaxLengthBytes bounds the configurable header size.
const MaxLengthBytes = 4

/*
 * Embedder compiles a payload into the byte stream that gets hidden:
 *
 *	[N byte BE total length][salt][AES-CTR(deflate(packed blocks))]
 *
 * where the total length counts the header itself.
 */
type Embedder struct {
	data     []byte
	capacity int
}

// NewEmbedder frames the payload and checks it against the carrier capacity
// (in bytes). Nothing is embedded yet, so a failure leaves the carrier intact.
func NewEmbedder(p *Payload, capacity int) (*Embedder, error) {
	if p.HasNoBlocks() {
		return nil, &EmbedError{Kind: ErrNoData}
	}
	headerSize := p.headerSize()
	if headerSize > MaxLengthBytes {
		return nil, &EmbedError{Message: fmt.Sprintf("length header of %d bytes is not supported (max %d)", headerSize, MaxLengthBytes)}
	}

	packed := p.Pack()
	util.DebugPrintf("Packing %d bytes of payload", len(packed))

	compressed, err := util.Compress(packed)
	if err != nil {
		return nil, &EmbedError{Message: "error while compressing data", Err: err}
	}

	encrypted, err := cryptography.Encrypt(compressed, p.EncryptionPassword)
	if err != nil {
		return nil, &EmbedError{Message: "error while encrypting data", Err: err}
	}

	total := headerSize + len(encrypted)
	// the header has to be able to represent the total length
	maxLength := 1<<(8*headerSize) - 1
	if total > maxLength {
		return nil, newTooLarge("payload is too large. Limit is %d bytes but got %d bytes", maxLength, total)
	}
	if total > capacity {
		return nil, newTooLarge("payload is too large. Maximum capacity for this carrier file is %d bytes but payload is %d bytes",
			capacity, total)
	}

	data := util.Concat(util.LengthToBytes(total, headerSize), encrypted)
	if capacity > 0 {
		util.DebugPrintf("Packed payload to %d bytes, %.3f%% of total capacity", total, float64(total)*100/float64(capacity))
	}
	return &Embedder{data: data, capacity: capacity}, nil
}

// Bytes returns the framed payload.
func (e *Embedder) Bytes() []byte {
	return e.data
}

// Len is the number of framed bytes.
func (e *Embedder) Len() int {
	return len(e.data)
}

// Bits iterates over all framed bits in embedding order.
func (e *Embedder) Bits() *util.BitReader {
	return util.NewBitReader(e.data, util.PayloadOrder)
}
