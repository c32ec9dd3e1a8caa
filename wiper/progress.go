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
	"fmt"
	"time"

	"github.com/wipestream/wipestream/pipeline"
)

const reportPeriod = time.Second

// reportProgress rewrites one status line per second until the
// pipeline starts draining. Informational only; nothing parses it.
func reportProgress(pl *pipeline.Pipeline) {
	ticker := time.NewTicker(reportPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			fmt.Printf("\rWritten: %.2f GB  Speed: %.1f MB/s  Seeds: %d  Blocks: %d  Seeding: %3.0f%%          ",
				float64(pl.BytesWritten())/(1<<30),
				pl.CurrentSpeed(),
				pl.SeedBufferLen(),
				pl.BlockBufferLen(),
				pl.SeedingProgress()*100)
		case <-pl.Stopping():
			return
		}
	}
}
