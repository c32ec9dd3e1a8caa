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
	"io"
	"sync/atomic"

	"github.com/pkg/errors"
)

// entropyProducer fills the seed queue with independently drawn seed
// blobs. The source is read byte by byte so the bytes accumulated
// toward the in-progress seed stay observable while a slow kernel pool
// trickles.
type entropyProducer struct {
	source   io.Reader
	seedSize int
	out      *Queue[[]byte]
	progress atomic.Int64 // bytes toward the in-progress seed
}

func newEntropyProducer(source io.Reader, seedSize int, out *Queue[[]byte]) *entropyProducer {
	return &entropyProducer{source: source, seedSize: seedSize, out: out}
}

// run loops until cancellation or a source error. A source error is a
// pipeline failure, not something to retry silently.
func (p *entropyProducer) run(tok *Token) error {
	for {
		p.progress.Store(0)
		seed := make([]byte, p.seedSize)
		for i := range seed {
			if tok.Cancelled() {
				return ErrCancelled
			}
			if _, err := io.ReadFull(p.source, seed[i:i+1]); err != nil {
				return errors.Wrap(err, "entropy source")
			}
			p.progress.Store(int64(i + 1))
		}
		if err := p.out.Push(seed); err != nil {
			return err
		}
	}
}

// seedingStatus returns the bytes accumulated toward the in-progress
// seed, in [0, seedSize].
func (p *entropyProducer) seedingStatus() int {
	return int(p.progress.Load())
}
