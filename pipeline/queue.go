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
	"fmt"

	"github.com/pkg/errors"
)

// ErrCancelled is returned by Push and Pop once the queue's token has
// been cancelled. Workers treat it as a clean exit, not a failure.
var ErrCancelled = errors.New("pipeline cancelled")

// Queue is a fixed-capacity FIFO hand-off between two pipeline stages.
// Push blocks while the queue is full and Pop while it is empty; both
// return ErrCancelled promptly after cancellation. Capacity is never
// exceeded, and items from a single producer keep their push order.
//
// Len is a snapshot and does not touch the hand-off path.
type Queue[T any] struct {
	ch  chan T
	tok *Token
}

// NewQueue creates a queue of the given capacity bound to tok.
// Capacity below one is a construction bug, not a runtime condition.
func NewQueue[T any](capacity int, tok *Token) *Queue[T] {
	if capacity < 1 {
		panic(fmt.Sprintf("queue capacity %d, must be >= 1", capacity))
	}
	return &Queue[T]{ch: make(chan T, capacity), tok: tok}
}

// Push appends item, blocking while the queue is full.
func (q *Queue[T]) Push(item T) error {
	if q.tok.Cancelled() {
		return ErrCancelled
	}
	select {
	case q.ch <- item:
		return nil
	case <-q.tok.Done():
		return ErrCancelled
	}
}

// Pop removes and returns the front item, blocking while the queue is
// empty.
func (q *Queue[T]) Pop() (T, error) {
	var zero T
	if q.tok.Cancelled() {
		return zero, ErrCancelled
	}
	select {
	case item := <-q.ch:
		return item, nil
	case <-q.tok.Done():
		return zero, ErrCancelled
	}
}

// Len returns the current number of buffered items.
func (q *Queue[T]) Len() int {
	return len(q.ch)
}

// Cap returns the configured capacity.
func (q *Queue[T]) Cap() int {
	return cap(q.ch)
}
