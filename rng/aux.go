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
	"io"

	"github.com/pkg/errors"
	"github.com/sixafter/prng-chacha"
)

// Aux is a block-oriented random source combined over the keystream by
// XOR. The combiner keeps the output at least as unpredictable as the
// stronger of the two sources, so Aux implementations need not be
// trusted individually.
type Aux interface {
	Fill(p []byte) error
}

// NewAux returns the default auxiliary source, a ChaCha20 pool
// independent of the wiping keystream and reseeded from the kernel
// CSPRNG. Returns nil when the pool cannot be initialized; callers
// treat nil as "combiner unavailable" and may warn.
func NewAux() Aux {
	r, err := prng.NewReader()
	if err != nil {
		return nil
	}
	return &auxReader{r: r}
}

type auxReader struct {
	r io.Reader
}

func (a *auxReader) Fill(p []byte) error {
	if _, err := io.ReadFull(a.r, p); err != nil {
		return errors.Wrap(err, "aux rng")
	}
	return nil
}
