package util

import (
	"encoding/binary"
	"fmt"
)

/*
 * bit level helpers shared by the payload framer and the embedding methods.
 */

// ByteOrder tells in which order the bits of a byte are emitted.
type ByteOrder uint8

const (
	// MSBFirst emits bit 7 first, i.e. the most significant bit is at index 0.
	MSBFirst ByteOrder = iota
	// LSBFirst emits bit 0 first.
	LSBFirst
)

// PayloadOrder is the order in which framed payload bits are embedded and extracted.
const PayloadOrder = MSBFirst

// ToBin splits a byte into 8 bits.
func ToBin(x byte, order ByteOrder) []byte {
	result := make([]byte, 8)
	for i := 0; i < 8; i++ {
		result[bitIndex(i, order)] = (x >> i) & 1
	}
	return result
}

// FromBin is the reverse of ToBin. Only the lowest bit of every element is used.
func FromBin(x []byte, order ByteOrder) byte {
	result := byte(0)
	for i := 0; i < 8; i++ {
		result |= (x[bitIndex(i, order)] & 1) << i
	}
	return result
}

func bitIndex(i int, order ByteOrder) int {
	if order == MSBFirst {
		return 7 - i
	}
	return i
}

// BitAt returns bit number `pos` (0 = least significant) of value.
func BitAt(value int, pos int) byte {
	return byte((value >> pos) & 1)
}

// SetBitAt returns value with bit number `pos` set to bit.
func SetBitAt(value int, pos int, bit byte) int {
	if bit&1 == 1 {
		return value | (1 << pos)
	}
	return value &^ (1 << pos)
}

// Concat joins byte slices into a fresh slice.
func Concat(parts ...[]byte) []byte {
	total := 0
	for _, p := range parts {
		total += len(p)
	}
	result := make([]byte, 0, total)
	for _, p := range parts {
		result = append(result, p...)
	}
	return result
}

// IntToBytes encodes a 32 bit big endian integer.
func IntToBytes(x int) []byte {
	buf := make([]byte, 4)
	binary.BigEndian.PutUint32(buf, uint32(x))
	return buf
}

// BytesToInt decodes the first 4 bytes of data as big endian integer.
func BytesToInt(data []byte) (int, error) {
	if len(data) < 4 {
		return 0, fmt.Errorf("need 4 bytes for an integer, got %d", len(data))
	}
	return int(int32(binary.BigEndian.Uint32(data[:4]))), nil
}

// LengthToBytes encodes length as big endian number truncated to `size` bytes.
func LengthToBytes(length int, size int) []byte {
	full := make([]byte, 8)
	binary.BigEndian.PutUint64(full, uint64(length))
	return full[8-size:]
}

// BytesToLength decodes a big endian number of len(data) bytes (at most 8).
func BytesToLength(data []byte) int {
	full := make([]byte, 8)
	copy(full[8-len(data):], data)
	return int(binary.BigEndian.Uint64(full))
}

// BitReader walks over all bits of a byte slice.
type BitReader struct {
	data  []byte
	order ByteOrder
	pos   int
}

func NewBitReader(data []byte, order ByteOrder) *BitReader {
	return &BitReader{
		data:  data,
		order: order,
	}
}

// HasNext reports whether there are bits left.
func (br *BitReader) HasNext() bool {
	return br.pos < len(br.data)*8
}

// Next returns the next bit. It panics when called past the end, use HasNext.
func (br *BitReader) Next() byte {
	b := br.data[br.pos/8]
	i := br.pos % 8
	br.pos++
	if br.order == MSBFirst {
		return (b >> (7 - i)) & 1
	}
	return (b >> i) & 1
}

// Position is the number of bits returned so far.
func (br *BitReader) Position() int {
	return br.pos
}

// Len is the total number of bits.
func (br *BitReader) Len() int {
	return len(br.data) * 8
}
