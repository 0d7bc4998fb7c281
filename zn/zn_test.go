//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package zn

import (
	"bytes"
	"io"
	"math/big"
	"testing"
)

func leBig(data []byte) *big.Int {
	rev := make([]byte, len(data))
	for i, b := range data {
		rev[len(data)-1-i] = b
	}
	return new(big.Int).SetBytes(rev)
}

func toBig[T any](r Ring[T], a T) *big.Int {
	return leBig(r.Encode(nil, a))
}

func testRing[T any](t *testing.T, r Ring[T]) {
	rand, err := NewReader([]byte("zn test"))
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	mod := new(big.Int).Lsh(big.NewInt(1), uint(r.Bits()))

	if r.Bytes()*8 != r.Bits() {
		t.Errorf("width %v: Bytes=%v", r.Bits(), r.Bytes())
	}

	for i := 0; i < 100; i++ {
		a, err := r.Rand(rand)
		if err != nil {
			t.Fatalf("Rand: %v", err)
		}
		b, err := r.Rand(rand)
		if err != nil {
			t.Fatalf("Rand: %v", err)
		}
		ba := toBig(r, a)
		bb := toBig(r, b)

		checks := []struct {
			name string
			got  T
			want *big.Int
		}{
			{"Add", r.Add(a, b), new(big.Int).Add(ba, bb)},
			{"Sub", r.Sub(a, b), new(big.Int).Sub(ba, bb)},
			{"Mul", r.Mul(a, b), new(big.Int).Mul(ba, bb)},
		}
		for _, c := range checks {
			want := new(big.Int).Mod(c.want, mod)
			if got := toBig(r, c.got); got.Cmp(want) != 0 {
				t.Errorf("width %v: %v: got %v, want %v",
					r.Bits(), c.name, got, want)
			}
		}

		data := r.Encode(nil, a)
		if len(data) != r.Bytes() {
			t.Errorf("width %v: encode length %v", r.Bits(), len(data))
		}
		if got := toBig(r, r.Decode(data)); got.Cmp(ba) != 0 {
			t.Errorf("width %v: decode: got %v, want %v",
				r.Bits(), got, ba)
		}
	}

	a, err := r.Rand(rand)
	if err != nil {
		t.Fatalf("Rand: %v", err)
	}
	ba := toBig(r, a)
	for n := 0; n < r.Bits(); n++ {
		want := new(big.Int).Mod(new(big.Int).Lsh(ba, uint(n)), mod)
		if got := toBig(r, r.Lsh(a, n)); got.Cmp(want) != 0 {
			t.Errorf("width %v: Lsh %v: got %v, want %v",
				r.Bits(), n, got, want)
		}
		if got, want := r.Bit(a, n), int(ba.Bit(n)); got != want {
			t.Errorf("width %v: Bit %v: got %v, want %v",
				r.Bits(), n, got, want)
		}
	}
}

func TestU8(t *testing.T) {
	testRing(t, U8)
}

func TestU16(t *testing.T) {
	testRing(t, U16)
}

func TestU32(t *testing.T) {
	testRing(t, U32)
}

func TestU64(t *testing.T) {
	testRing(t, U64)
}

func TestU128(t *testing.T) {
	testRing(t, U128)
}

func TestAddSubLE(t *testing.T) {
	rand, err := NewReader([]byte("le test"))
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	for _, n := range []int{1, 2, 4, 8, 16} {
		mod := new(big.Int).Lsh(big.NewInt(1), uint(8*n))
		for i := 0; i < 100; i++ {
			a := make([]byte, n)
			b := make([]byte, n)
			if _, err := io.ReadFull(rand, a); err != nil {
				t.Fatalf("rand: %v", err)
			}
			if _, err := io.ReadFull(rand, b); err != nil {
				t.Fatalf("rand: %v", err)
			}
			ba := leBig(a)
			bb := leBig(b)

			sum := append([]byte{}, a...)
			AddLE(sum, b)
			want := new(big.Int).Mod(new(big.Int).Add(ba, bb), mod)
			if got := leBig(sum); got.Cmp(want) != 0 {
				t.Errorf("AddLE %v: got %v, want %v", n, got, want)
			}

			diff := append([]byte{}, a...)
			SubLE(diff, b)
			want = new(big.Int).Mod(new(big.Int).Sub(ba, bb), mod)
			if got := leBig(diff); got.Cmp(want) != 0 {
				t.Errorf("SubLE %v: got %v, want %v", n, got, want)
			}
		}
	}
}

func TestReaderDeterminism(t *testing.T) {
	r1, err := NewReader([]byte("seed"))
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	r2, err := NewReader([]byte("seed"))
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	b1 := make([]byte, 1024)
	b2 := make([]byte, 1024)
	if _, err := io.ReadFull(r1, b1); err != nil {
		t.Fatalf("Read: %v", err)
	}
	if _, err := io.ReadFull(r2, b2); err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !bytes.Equal(b1, b2) {
		t.Errorf("same seed produced different streams")
	}

	r3, err := NewReader([]byte("other seed"))
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	b3 := make([]byte, 1024)
	if _, err := io.ReadFull(r3, b3); err != nil {
		t.Fatalf("Read: %v", err)
	}
	if bytes.Equal(b1, b3) {
		t.Errorf("different seeds produced equal streams")
	}
}
