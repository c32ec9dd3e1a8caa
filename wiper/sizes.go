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

package main

import (
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// suffix multipliers, x1024 each step
var sizeSuffixes = map[byte]int64{
	'K': 1 << 10,
	'M': 1 << 20,
	'G': 1 << 30,
	'T': 1 << 40,
}

// ParseSize parses a byte count like "4096", "100M" or "2T". Suffixes
// are case-insensitive and multiply by powers of 1024. Negative values
// are rejected by the grammar (no sign accepted).
func ParseSize(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("empty size")
	}

	mult := int64(1)
	last := s[len(s)-1]
	if last >= 'a' && last <= 'z' {
		last -= 'a' - 'A'
	}
	if m, ok := sizeSuffixes[last]; ok {
		mult = m
		s = s[:len(s)-1]
	}
	if s == "" {
		return 0, errors.New("size has a suffix but no digits")
	}

	n, err := strconv.ParseUint(s, 10, 63)
	if err != nil {
		return 0, errors.Wrapf(err, "bad size %q", s)
	}
	if mult > 1 && int64(n) > math.MaxInt64/mult {
		return 0, errors.Errorf("size %q overflows", s)
	}
	return int64(n) * mult, nil
}
