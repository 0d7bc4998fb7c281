//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package zn

import (
	"encoding/binary"
	"fmt"
	"io"
	"math/bits"
	"strconv"
)

// Uint128 is an unsigned 128-bit integer.
type Uint128 struct {
	Lo uint64
	Hi uint64
}

// Add returns a+b mod 2^128.
func (a Uint128) Add(b Uint128) Uint128 {
	lo, carry := bits.Add64(a.Lo, b.Lo, 0)
	hi, _ := bits.Add64(a.Hi, b.Hi, carry)
	return Uint128{
		Lo: lo,
		Hi: hi,
	}
}

// Sub returns a-b mod 2^128.
func (a Uint128) Sub(b Uint128) Uint128 {
	lo, borrow := bits.Sub64(a.Lo, b.Lo, 0)
	hi, _ := bits.Sub64(a.Hi, b.Hi, borrow)
	return Uint128{
		Lo: lo,
		Hi: hi,
	}
}

// Mul returns a*b mod 2^128.
func (a Uint128) Mul(b Uint128) Uint128 {
	hi, lo := bits.Mul64(a.Lo, b.Lo)
	hi += a.Lo*b.Hi + a.Hi*b.Lo
	return Uint128{
		Lo: lo,
		Hi: hi,
	}
}

// Lsh returns a shifted left by n bits.
func (a Uint128) Lsh(n int) Uint128 {
	switch {
	case n >= 128:
		return Uint128{}
	case n >= 64:
		return Uint128{
			Hi: a.Lo << (n - 64),
		}
	case n == 0:
		return a
	default:
		return Uint128{
			Lo: a.Lo << n,
			Hi: a.Hi<<n | a.Lo>>(64-n),
		}
	}
}

// Bit returns the bit of a at index n.
func (a Uint128) Bit(n int) int {
	if n < 64 {
		return int(a.Lo>>n) & 1
	}
	return int(a.Hi>>(n-64)) & 1
}

func (a Uint128) String() string {
	if a.Hi == 0 {
		return strconv.FormatUint(a.Lo, 10)
	}
	return fmt.Sprintf("0x%x%016x", a.Hi, a.Lo)
}

// u128 implements Ring for Uint128.
type u128 struct{}

func (u128) Bits() int {
	return 128
}

func (u128) Bytes() int {
	return 16
}

func (u128) Add(a, b Uint128) Uint128 {
	return a.Add(b)
}

func (u128) Sub(a, b Uint128) Uint128 {
	return a.Sub(b)
}

func (u128) Mul(a, b Uint128) Uint128 {
	return a.Mul(b)
}

func (u128) Lsh(a Uint128, n int) Uint128 {
	return a.Lsh(n)
}

func (u128) Bit(a Uint128, n int) int {
	return a.Bit(n)
}

func (u128) Encode(data []byte, a Uint128) []byte {
	var buf [16]byte
	binary.LittleEndian.PutUint64(buf[:8], a.Lo)
	binary.LittleEndian.PutUint64(buf[8:], a.Hi)
	return append(data, buf[:]...)
}

func (u128) Decode(data []byte) Uint128 {
	return Uint128{
		Lo: binary.LittleEndian.Uint64(data[:8]),
		Hi: binary.LittleEndian.Uint64(data[8:16]),
	}
}

func (u128) Rand(rand io.Reader) (Uint128, error) {
	var buf [16]byte
	if _, err := io.ReadFull(rand, buf[:]); err != nil {
		return Uint128{}, err
	}
	return Uint128{
		Lo: binary.LittleEndian.Uint64(buf[:8]),
		Hi: binary.LittleEndian.Uint64(buf[8:]),
	}, nil
}
