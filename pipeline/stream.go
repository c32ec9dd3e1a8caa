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

package pipeline

import (
	"crypto/cipher"
	"crypto/subtle"

	"github.com/wipestream/wipestream/rng"
)

// streamProducer turns seeds into fixed-size blocks of keystream.
// Every blocksPerSeed blocks it pulls a fresh seed and rekeys; the
// first block is therefore never produced before the cipher has been
// seeded once. With aux set, an independently drawn buffer is XORed
// over each block, so the result is random if either source is.
//
// The cipher state is owned exclusively by the worker goroutine.
type streamProducer struct {
	suite         rng.Suite
	aux           rng.Aux // nil disables the combiner
	blocksize     int
	blocksPerSeed int
	seeds         *Queue[[]byte]
	out           *Queue[[]byte]
}

func newStreamProducer(suite rng.Suite, aux rng.Aux, blocksize, blocksPerSeed int, seeds, out *Queue[[]byte]) *streamProducer {
	return &streamProducer{
		suite:         suite,
		aux:           aux,
		blocksize:     blocksize,
		blocksPerSeed: blocksPerSeed,
		seeds:         seeds,
		out:           out,
	}
}

func (p *streamProducer) run(tok *Token) error {
	var stream cipher.Stream
	countdown := 0
	var auxbuf []byte
	if p.aux != nil {
		auxbuf = make([]byte, p.blocksize)
	}

	for {
		if countdown == 0 {
			seed, err := p.seeds.Pop()
			if err != nil {
				return err
			}
			stream, err = p.suite.NewStream(seed)
			if err != nil {
				return err
			}
			countdown = p.blocksPerSeed
		}

		// A fresh zeroed block XORed in place yields raw keystream.
		block := make([]byte, p.blocksize)
		stream.XORKeyStream(block, block)
		if p.aux != nil {
			if err := p.aux.Fill(auxbuf); err != nil {
				return err
			}
			subtle.XORBytes(block, block, auxbuf)
		}
		countdown--

		if err := p.out.Push(block); err != nil {
			return err
		}
	}
}
