package payload

import (
	"fmt"
	"strings"

	"shroud/stegano/util"
)

// DefaultLengthBytes is the size of the length header: 3 bytes allow 16 MB.
const DefaultLengthBytes = 3

/*
 * Payload is the outer-most wrapper of the data to embed or extract.
 * The order of the blocks is the order in which they get extracted.
 */
type Payload struct {
	// SteganoPassword seeds the point traversal and palette shuffles.
	SteganoPassword string
	// EncryptionPassword keys the cipher. Empty means no password, the
	// payload is still encrypted with the empty string as key.
	EncryptionPassword string
	// LengthBytes is the header size, DefaultLengthBytes if zero.
	LengthBytes int

	blocks []Block
}

func New() *Payload {
	return &Payload{}
}

// SetPassword uses the same password for stego and encryption.
func (p *Payload) SetPassword(password string) {
	p.SteganoPassword = password
	p.EncryptionPassword = password
}

func (p *Payload) headerSize() int {
	if p.LengthBytes <= 0 {
		return DefaultLengthBytes
	}
	return p.LengthBytes
}

func (p *Payload) AddBlock(b Block) {
	p.blocks = append(p.blocks, b)
}

func (p *Payload) RemoveBlock(b Block) {
	for i, block := range p.blocks {
		if block == b {
			p.blocks = append(p.blocks[:i], p.blocks[i+1:]...)
			return
		}
	}
}

func (p *Payload) Blocks() []Block {
	return p.blocks
}

func (p *Payload) Block(i int) Block {
	return p.blocks[i]
}

func (p *Payload) HasNoBlocks() bool {
	return len(p.blocks) == 0
}

// Messages joins the text of all message blocks.
func (p *Payload) Messages() string {
	var sb strings.Builder
	for _, b := range p.blocks {
		if m, ok := b.(*MessageBlock); ok {
			sb.WriteString(m.Message)
		}
	}
	return sb.String()
}

// Files returns the file blocks in order.
func (p *Payload) Files() []*FileBlock {
	files := []*FileBlock{}
	for _, b := range p.blocks {
		if f, ok := b.(*FileBlock); ok {
			files = append(files, f)
		}
	}
	return files
}

// Pack serializes all blocks as [1 byte type][4 byte BE length][block bytes]...
func (p *Payload) Pack() []byte {
	parts := make([][]byte, 0, 3*len(p.blocks))
	for _, b := range p.blocks {
		data := b.Pack()
		parts = append(parts, []byte{b.Identifier()}, util.IntToBytes(len(data)), data)
	}
	return util.Concat(parts...)
}

// Unpack parses the output of Pack and appends the blocks to the payload.
// Blocks of unknown type are skipped.
func (p *Payload) Unpack(data []byte) error {
	i := 0
	for i < len(data) {
		if i+5 > len(data) {
			return fmt.Errorf("truncated block header at offset %d", i)
		}
		identifier := data[i]
		size, err := util.BytesToInt(data[i+1 : i+5])
		if err != nil {
			return fmt.Errorf("block at offset %d: %w", i, err)
		}
		if size < 0 || i+5+size > len(data) {
			return fmt.Errorf("block at offset %d claims %d bytes, %d left", i, size, len(data)-i-5)
		}
		blockData := data[i+5 : i+5+size]

		block := NewBlock(identifier)
		if block == nil {
			util.DebugPrintf("skipping block of unknown type %d", identifier)
		} else if err := block.Unpack(blockData); err != nil {
			return err
		} else {
			p.blocks = append(p.blocks, block)
		}
		i += 5 + size
	}
	return nil
}
