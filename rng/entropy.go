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
	"os"

	"github.com/pkg/errors"
)

// kernelDevice is the blocking kernel entropy pool. Reads stall until
// the kernel considers its pool initialized, which is exactly the
// guarantee seeds want.
const kernelDevice = "/dev/random"

// KernelSource opens the kernel entropy pool as a byte-oriented
// blocking stream. The caller owns the returned handle and closes it
// after the pipeline has been joined.
func KernelSource() (io.ReadCloser, error) {
	f, err := os.Open(kernelDevice)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", kernelDevice)
	}
	return f, nil
}
