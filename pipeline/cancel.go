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

import "sync"

// Token is the cancellation flag shared by every worker of a pipeline.
// It flips exactly once, from live to cancelled, and never back.
// Blocking queue operations select on Done so a cancelled token wakes
// them without polling.
type Token struct {
	die     chan struct{}
	dieOnce sync.Once
}

// NewToken returns a live token.
func NewToken() *Token {
	return &Token{die: make(chan struct{})}
}

// Cancel flips the token. Safe to call from any goroutine, any number
// of times.
func (t *Token) Cancel() {
	t.dieOnce.Do(func() { close(t.die) })
}

// Done returns a channel closed once the token is cancelled.
func (t *Token) Done() <-chan struct{} {
	return t.die
}

// Cancelled reports whether Cancel has been called.
func (t *Token) Cancelled() bool {
	select {
	case <-t.die:
		return true
	default:
		return false
	}
}
