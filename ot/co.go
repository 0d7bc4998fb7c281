//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//
// Chou Orlandi OT - The Simplest Protocol for Oblivious Transfer.
//  - https://eprint.iacr.org/2015/267.pdf

package ot

import (
	"encoding/binary"

	"github.com/bwesterb/go-ristretto"
	"golang.org/x/crypto/blake2b"
)

// pointSize is the encoded size of a ristretto point.
const pointSize = 32

// coSender holds the sender state of the Chou-Orlandi random OT
// base: the secret scalar a, the public point A=aG, and T=aA.
type coSender struct {
	a *ristretto.Scalar
	A *ristretto.Point
	T *ristretto.Point
}

func newCOSender() *coSender {
	a := new(ristretto.Scalar).Rand()
	A := new(ristretto.Point).ScalarMultBase(a)
	T := new(ristretto.Point).ScalarMult(A, a)
	return &coSender{
		a: a,
		A: A,
		T: T,
	}
}

// keys derives the two message keys of transfer id from the receiver
// point B: k0=H(aB), k1=H(aB-T).
func (s *coSender) keys(B *ristretto.Point, id uint64, nbytes int) (
	[]byte, []byte, error) {

	aB := new(ristretto.Point).ScalarMult(B, s.a)
	k0, err := kdf(aB, id, nbytes)
	if err != nil {
		return nil, nil, err
	}
	k1, err := kdf(new(ristretto.Point).Sub(aB, s.T), id, nbytes)
	if err != nil {
		return nil, nil, err
	}
	return k0, k1, nil
}

// coReceiver holds the receiver state of the random OT base: the
// sender's public point A.
type coReceiver struct {
	A *ristretto.Point
}

// sample creates the receiver point of transfer id for the choice
// bit and derives the corresponding message key H(bA).
func (r *coReceiver) sample(choice bool, id uint64, nbytes int) (
	*ristretto.Point, []byte, error) {

	b := new(ristretto.Scalar).Rand()
	B := new(ristretto.Point).ScalarMultBase(b)
	if choice {
		B = new(ristretto.Point).Add(r.A, B)
	}
	key, err := kdf(new(ristretto.Point).ScalarMult(r.A, b), id, nbytes)
	if err != nil {
		return nil, nil, err
	}
	return B, key, nil
}

// kdf derives an nbytes-byte message key from the shared point and
// the transfer id.
func kdf(p *ristretto.Point, id uint64, nbytes int) ([]byte, error) {
	h, err := blake2b.New(nbytes, nil)
	if err != nil {
		return nil, err
	}
	h.Write(p.Bytes())

	var tmp [8]byte
	binary.BigEndian.PutUint64(tmp[:], id)
	h.Write(tmp[:])

	return h.Sum(nil), nil
}
