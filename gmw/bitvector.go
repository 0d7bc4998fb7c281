//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package gmw

import (
	"bytes"
	"fmt"
	"io"
)

// BitVector is a packed vector of share bits. Bit 0 is the least
// significant bit of the first byte.
type BitVector struct {
	bits int
	data []byte
}

// NewBitVector creates a zero bit vector with the number of bits.
func NewBitVector(bits int) *BitVector {
	return &BitVector{
		bits: bits,
		data: make([]byte, (bits+7)/8),
	}
}

// NewBitVectorFromBytes creates a bit vector from the packed data.
func NewBitVectorFromBytes(data []byte, bits int) (*BitVector, error) {
	if len(data) != (bits+7)/8 {
		return nil, fmt.Errorf("gmw: bit vector data %d bytes, expected %d",
			len(data), (bits+7)/8)
	}
	bv := NewBitVector(bits)
	copy(bv.data, data)
	bv.maskTail()
	return bv, nil
}

// Rand creates a random bit vector with the number of bits.
func Rand(rand io.Reader, bits int) (*BitVector, error) {
	bv := NewBitVector(bits)
	_, err := io.ReadFull(rand, bv.data)
	if err != nil {
		return nil, err
	}
	bv.maskTail()
	return bv, nil
}

// maskTail clears the unused high bits of the last byte.
func (bv *BitVector) maskTail() {
	if bv.bits%8 != 0 && len(bv.data) > 0 {
		bv.data[len(bv.data)-1] &= byte(1<<(bv.bits%8)) - 1
	}
}

// Bits returns the number of bits in the vector.
func (bv *BitVector) Bits() int {
	return bv.bits
}

// Bytes returns the packed bits of the vector. The result aliases
// the vector's storage.
func (bv *BitVector) Bytes() []byte {
	return bv.data
}

// Bit returns the bit at the index.
func (bv *BitVector) Bit(i int) uint {
	if i < 0 || i >= bv.bits {
		return 0
	}
	return uint(bv.data[i/8]>>(i%8)) & 1
}

// SetBit sets the bit at the index.
func (bv *BitVector) SetBit(i int, bit uint) {
	if i < 0 || i >= bv.bits {
		return
	}
	if bit != 0 {
		bv.data[i/8] |= 1 << (i % 8)
	} else {
		bv.data[i/8] &^= 1 << (i % 8)
	}
}

// XOR updates the vector to the exclusive or of itself and the
// argument vector.
func (bv *BitVector) XOR(o *BitVector) error {
	if bv.bits != o.bits {
		return fmt.Errorf("gmw: bit vector size mismatch: %d vs %d",
			bv.bits, o.bits)
	}
	for i, b := range o.data {
		bv.data[i] ^= b
	}
	return nil
}

// Invert flips all bits of the vector.
func (bv *BitVector) Invert() {
	for i := range bv.data {
		bv.data[i] = ^bv.data[i]
	}
	bv.maskTail()
}

// Clone returns a copy of the vector.
func (bv *BitVector) Clone() *BitVector {
	result := NewBitVector(bv.bits)
	copy(result.data, bv.data)
	return result
}

// Equal reports whether the vectors hold the same bits.
func (bv *BitVector) Equal(o *BitVector) bool {
	return bv.bits == o.bits && bytes.Equal(bv.data, o.data)
}

func (bv *BitVector) String() string {
	buf := make([]byte, bv.bits)
	for i := 0; i < bv.bits; i++ {
		buf[i] = '0' + byte(bv.Bit(i))
	}
	return string(buf)
}
