//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package zn

import (
	"io"

	"golang.org/x/crypto/chacha20"
)

// NewReader returns a deterministic random stream, expanded from seed
// with the ChaCha20 keystream. It is meant for reproducible protocol
// runs and tests; production randomness comes from crypto/rand.
func NewReader(seed []byte) (io.Reader, error) {
	key := make([]byte, chacha20.KeySize)
	copy(key, seed)
	nonce := make([]byte, chacha20.NonceSize)

	cipher, err := chacha20.NewUnauthenticatedCipher(key, nonce)
	if err != nil {
		return nil, err
	}
	return &reader{
		cipher: cipher,
	}, nil
}

type reader struct {
	cipher *chacha20.Cipher
}

func (r *reader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = 0
	}
	r.cipher.XORKeyStream(p, p)
	return len(p), nil
}
