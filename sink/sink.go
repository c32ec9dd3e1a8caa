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

// Package sink writes produced blocks to the wipe target and maps the
// kernel's "no space left" condition onto a normal end-of-run signal.
package sink

import (
	"os"
	"sync/atomic"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// ErrNoSpace reports that the target is full. It is the normal way a
// wipe run ends and is never surfaced as a failure.
var ErrNoSpace = errors.New("no space left on target")

// Sink accepts blocks in order. A short write is permitted only on the
// terminal block; the returned count includes it.
type Sink interface {
	Write(p []byte) (int, error)
}

// File is a Sink backed by a regular file or block device. Writes are
// sequential. The byte counter includes the final short write.
type File struct {
	f       *os.File
	written atomic.Uint64
}

// Open opens (or creates) the wipe target for writing.
func Open(path string) (*File, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE, 0666)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	return &File{f: f}, nil
}

// Skip advances the write position by n bytes from the start of the
// target. One-shot, before the first Write.
func (s *File) Skip(n int64) error {
	if n < 0 {
		return errors.Errorf("skip %d bytes, must be >= 0", n)
	}
	if _, err := s.f.Seek(n, 0); err != nil {
		return errors.Wrapf(err, "skip %d bytes", n)
	}
	return nil
}

// Write writes one block. A write cut short by ENOSPC returns the
// bytes that made it onto the target together with ErrNoSpace; any
// other error is fatal to the pipeline.
func (s *File) Write(p []byte) (int, error) {
	n, err := s.f.Write(p)
	if n > 0 {
		s.written.Add(uint64(n))
	}
	if err != nil {
		if errors.Is(err, unix.ENOSPC) {
			return n, ErrNoSpace
		}
		return n, errors.Wrap(err, "write target")
	}
	return n, nil
}

// BytesWritten returns the total bytes accepted by the target so far.
func (s *File) BytesWritten() uint64 {
	return s.written.Load()
}

// Sync flushes the target. Best effort; block devices on some kernels
// report EINVAL here.
func (s *File) Sync() error {
	return s.f.Sync()
}

// Close closes the target.
func (s *File) Close() error {
	return s.f.Close()
}
