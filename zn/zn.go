//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package zn implements fixed-width arithmetic in the rings of
// integers modulo 2^n for the sharing widths 8, 16, 32, 64, and 128
// bits. The Ring interface lets protocol code run one generic
// algorithm over all widths; the AddLE and SubLE helpers operate
// directly on little-endian wire encodings.
package zn

import (
	"io"
)

// Ring defines arithmetic in the ring of integers modulo 2^n.
type Ring[T any] interface {
	// Bits returns the element width in bits.
	Bits() int

	// Bytes returns the element width in bytes.
	Bytes() int

	// Add returns a+b.
	Add(a, b T) T

	// Sub returns a-b.
	Sub(a, b T) T

	// Mul returns a*b.
	Mul(a, b T) T

	// Lsh returns a shifted left by n bits.
	Lsh(a T, n int) T

	// Bit returns the bit of a at index n.
	Bit(a T, n int) int

	// Encode appends the little-endian encoding of a to data.
	Encode(data []byte, a T) []byte

	// Decode decodes an element from the beginning of data.
	Decode(data []byte) T

	// Rand returns a uniform random element from rand.
	Rand(rand io.Reader) (T, error)
}

// Ring instances for the supported sharing widths.
var (
	U8   Ring[uint8]   = native[uint8]{bits: 8}
	U16  Ring[uint16]  = native[uint16]{bits: 16}
	U32  Ring[uint32]  = native[uint32]{bits: 32}
	U64  Ring[uint64]  = native[uint64]{bits: 64}
	U128 Ring[Uint128] = u128{}
)

// native implements Ring for the native unsigned integer types.
type native[T ~uint8 | ~uint16 | ~uint32 | ~uint64] struct {
	bits int
}

func (r native[T]) Bits() int {
	return r.bits
}

func (r native[T]) Bytes() int {
	return r.bits / 8
}

func (r native[T]) Add(a, b T) T {
	return a + b
}

func (r native[T]) Sub(a, b T) T {
	return a - b
}

func (r native[T]) Mul(a, b T) T {
	return a * b
}

func (r native[T]) Lsh(a T, n int) T {
	return a << n
}

func (r native[T]) Bit(a T, n int) int {
	return int(a>>n) & 1
}

func (r native[T]) Encode(data []byte, a T) []byte {
	for i := 0; i < r.bits/8; i++ {
		data = append(data, byte(a>>(8*i)))
	}
	return data
}

func (r native[T]) Decode(data []byte) T {
	var a T
	for i := r.bits/8 - 1; i >= 0; i-- {
		a |= T(data[i]) << (8 * i)
	}
	return a
}

func (r native[T]) Rand(rand io.Reader) (T, error) {
	var buf [8]byte
	if _, err := io.ReadFull(rand, buf[:r.bits/8]); err != nil {
		return 0, err
	}
	var a T
	for i := r.bits/8 - 1; i >= 0; i-- {
		a |= T(buf[i]) << (8 * i)
	}
	return a, nil
}

// AddLE adds the little-endian value src into the little-endian value
// dst modulo 2^(8*len(dst)). The slices must have the same length.
func AddLE(dst, src []byte) {
	var carry uint16
	for i := 0; i < len(dst); i++ {
		v := uint16(dst[i]) + uint16(src[i]) + carry
		dst[i] = byte(v)
		carry = v >> 8
	}
}

// SubLE subtracts the little-endian value src from the little-endian
// value dst modulo 2^(8*len(dst)). The slices must have the same
// length.
func SubLE(dst, src []byte) {
	var borrow uint16
	for i := 0; i < len(dst); i++ {
		v := uint16(dst[i]) - uint16(src[i]) - borrow
		dst[i] = byte(v)
		borrow = (v >> 8) & 1
	}
}
