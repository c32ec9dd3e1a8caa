// The MIT License (MIT)
//
// # Copyright (c) 2026 wipestream
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package rng

import (
	"crypto/aes"
	"crypto/cipher"
	"log"

	"github.com/pkg/errors"
	"golang.org/x/crypto/chacha20"
)

// DefaultSuite is the suite used when no name or an unknown name is
// given.
const DefaultSuite = "chacha20"

// Suite describes one keystream cipher: the seed geometry and a
// constructor taking the key and IV split per that geometry.
type Suite struct {
	Name   string
	KeyLen int
	IVLen  int
	build  func(key, iv []byte) (cipher.Stream, error)
}

// SeedSize returns the number of seed bytes a rekey consumes,
// key length plus IV length.
func (s Suite) SeedSize() int {
	return s.KeyLen + s.IVLen
}

// NewStream rekeys a fresh keystream from seed, laid out key||iv.
func (s Suite) NewStream(seed []byte) (cipher.Stream, error) {
	if len(seed) != s.SeedSize() {
		return nil, errors.Errorf("%s: seed is %d bytes, want %d", s.Name, len(seed), s.SeedSize())
	}
	return s.build(seed[:s.KeyLen], seed[s.KeyLen:])
}

func newChaCha20(key, iv []byte) (cipher.Stream, error) {
	c, err := chacha20.NewUnauthenticatedCipher(key, iv)
	if err != nil {
		return nil, errors.Wrap(err, "chacha20")
	}
	return c, nil
}

func newAESCTR(key, iv []byte) (cipher.Stream, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, errors.Wrap(err, "aes")
	}
	return cipher.NewCTR(block, iv), nil
}

// suites is a lookup table for the supported keystream suites.
var suites = map[string]Suite{
	"chacha20":    {"chacha20", chacha20.KeySize, chacha20.NonceSize, newChaCha20},
	"xchacha20":   {"xchacha20", chacha20.KeySize, chacha20.NonceSizeX, newChaCha20},
	"aes-256-ctr": {"aes-256-ctr", 32, aes.BlockSize, newAESCTR},
	"aes-128-ctr": {"aes-128-ctr", 16, aes.BlockSize, newAESCTR},
}

// Select translates a human readable suite name into the concrete
// Suite. Unknown names fall back to the default so callers can log the
// effective choice via Suite.Name.
func Select(name string) Suite {
	if s, ok := suites[name]; ok {
		return s
	}
	log.Printf("crypt: unknown suite %q, falling back to %s", name, DefaultSuite)
	return suites[DefaultSuite]
}
