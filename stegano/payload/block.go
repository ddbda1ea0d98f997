package payload

import (
	"fmt"
	"os"
	"path/filepath"

	"shroud/stegano/util"
)

const (
	FileBlockID    byte = 1
	MessageBlockID byte = 2
)

/*
 * The payload is made of blocks. Every block type has its own one byte
 * identifier and knows how to serialize itself.
 */
type Block interface {
	Identifier() byte
	Pack() []byte
	Unpack(data []byte) error
}

// constructors of empty blocks, by identifier
var blockTypes = map[byte]func() Block{
	FileBlockID:    func() Block { return &FileBlock{} },
	MessageBlockID: func() Block { return &MessageBlock{} },
}

// NewBlock returns an empty block for the identifier or nil if it is unknown.
func NewBlock(identifier byte) Block {
	create, ok := blockTypes[identifier]
	if !ok {
		return nil
	}
	return create()
}

// MessageBlock holds a text message.
type MessageBlock struct {
	Message string
}

func NewMessageBlock(message string) *MessageBlock {
	return &MessageBlock{Message: message}
}

func (b *MessageBlock) Identifier() byte {
	return MessageBlockID
}

func (b *MessageBlock) Pack() []byte {
	return []byte(b.Message)
}

func (b *MessageBlock) Unpack(data []byte) error {
	b.Message = string(data)
	return nil
}

// FileBlock holds a file name (without directory) and the file content.
//
// Wire format: [4 byte BE name length][name][content]
type FileBlock struct {
	FileName string
	Content  []byte
}

func NewFileBlock(name string, content []byte) *FileBlock {
	return &FileBlock{
		FileName: filepath.Base(name),
		Content:  content,
	}
}

// LoadFileBlock reads the file at path into a block.
func LoadFileBlock(path string) (*FileBlock, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return NewFileBlock(path, content), nil
}

func (b *FileBlock) Identifier() byte {
	return FileBlockID
}

func (b *FileBlock) Pack() []byte {
	name := []byte(filepath.Base(b.FileName))
	return util.Concat(util.IntToBytes(len(name)), name, b.Content)
}

func (b *FileBlock) Unpack(data []byte) error {
	nameLength, err := util.BytesToInt(data)
	if err != nil {
		return fmt.Errorf("file block: %w", err)
	}
	if nameLength < 0 || 4+nameLength > len(data) {
		return fmt.Errorf("file block: name length %d out of range", nameLength)
	}
	b.FileName = string(data[4 : 4+nameLength])
	b.Content = append([]byte{}, data[4+nameLength:]...)
	return nil
}

// HasName reports whether the block was created from a file with that base name.
func (b *FileBlock) HasName(filename string) bool {
	return filepath.Base(filename) == filepath.Base(b.FileName)
}

// SaveTo writes the content into dir, keeping the original file name.
// Directory parts of the stored name are ignored.
func (b *FileBlock) SaveTo(dir string) (string, error) {
	path := filepath.Join(dir, filepath.Base(b.FileName))
	if err := os.WriteFile(path, b.Content, 0660); err != nil {
		return "", err
	}
	return path, nil
}
