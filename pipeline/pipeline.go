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

// Package pipeline implements the staged producer/consumer stream that
// turns kernel entropy into a continuous flood of pseudorandom blocks:
//
//	entropy source -> seed queue -> stream worker -> block queue -> sink
//
// Both queues are bounded, so a full downstream stage blocks the stage
// above it. Cancellation flows from the orchestrator outward through a
// shared token; data never flows backwards.
package pipeline

import (
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"

	"github.com/wipestream/wipestream/rng"
	"github.com/wipestream/wipestream/sink"
)

// Construction defaults, overridden per flag by the CLI layer.
const (
	DefaultBlocksize     = 100 * 1024 * 1024
	DefaultBufferSize    = 5
	DefaultSeedBuffer    = 200
	DefaultBlocksPerSeed = 10
)

// State is the pipeline lifecycle position.
type State int32

const (
	Initializing State = iota
	Running
	Draining
	Terminated
)

func (s State) String() string {
	switch s {
	case Initializing:
		return "initializing"
	case Running:
		return "running"
	case Draining:
		return "draining"
	case Terminated:
		return "terminated"
	}
	return "unknown"
}

// Config carries every tuning knob of a pipeline in one place.
type Config struct {
	// Blocksize is the size in bytes of each produced block.
	Blocksize int
	// BufferSize is the block queue capacity in blocks.
	BufferSize int
	// SeedBuffer is the seed queue capacity, sized so the stream
	// stage does not starve while the kernel pool trickles.
	SeedBuffer int
	// BlocksPerSeed is the number of blocks produced per seed.
	BlocksPerSeed int
	// Suite is the keystream cipher suite.
	Suite rng.Suite
	// Entropy is the blocking byte-oriented seed source.
	Entropy io.Reader
	// Aux, when non-nil, is XORed over every block.
	Aux rng.Aux
}

func (c *Config) fillDefaults() {
	if c.Blocksize == 0 {
		c.Blocksize = DefaultBlocksize
	}
	if c.BufferSize == 0 {
		c.BufferSize = DefaultBufferSize
	}
	if c.SeedBuffer == 0 {
		c.SeedBuffer = DefaultSeedBuffer
	}
	if c.BlocksPerSeed == 0 {
		c.BlocksPerSeed = DefaultBlocksPerSeed
	}
	if c.Suite.SeedSize() == 0 {
		c.Suite = rng.Select(rng.DefaultSuite)
	}
}

func (c *Config) validate() error {
	if c.Blocksize < 1 {
		return errors.Errorf("blocksize %d, must be >= 1", c.Blocksize)
	}
	if c.BufferSize < 1 {
		return errors.Errorf("buffersize %d, must be >= 1", c.BufferSize)
	}
	if c.SeedBuffer < 1 {
		return errors.Errorf("seed buffer %d, must be >= 1", c.SeedBuffer)
	}
	if c.BlocksPerSeed < 1 {
		return errors.Errorf("blocks per seed %d, must be >= 1", c.BlocksPerSeed)
	}
	if c.Entropy == nil {
		return errors.New("no entropy source")
	}
	return nil
}

// Pipeline owns the queues, the workers and the shared status scalars.
// Workers hold references to the queues and the token only; nothing
// reaches back into the orchestrator, and the orchestrator outlives
// every worker.
type Pipeline struct {
	cfg Config
	tok *Token

	seeds  *Queue[[]byte]
	blocks *Queue[[]byte]

	entropy *entropyProducer
	stream  *streamProducer

	wgStream  sync.WaitGroup
	wgEntropy sync.WaitGroup
	stopOnce  sync.Once

	state   atomic.Int32
	speed   Gauge // MB/s, updated once per consumed block
	written Counter

	errMu sync.Mutex
	err   error
}

// New builds the queues, wires the workers and starts them. On return
// the pipeline is Running and the caller is the sole consumer of the
// block queue, normally via Run.
func New(cfg Config) (*Pipeline, error) {
	cfg.fillDefaults()
	if err := cfg.validate(); err != nil {
		return nil, errors.Wrap(err, "pipeline config")
	}

	tok := NewToken()
	p := &Pipeline{
		cfg:    cfg,
		tok:    tok,
		seeds:  NewQueue[[]byte](cfg.SeedBuffer, tok),
		blocks: NewQueue[[]byte](cfg.BufferSize, tok),
	}
	p.entropy = newEntropyProducer(cfg.Entropy, cfg.Suite.SeedSize(), p.seeds)
	p.stream = newStreamProducer(cfg.Suite, cfg.Aux, cfg.Blocksize, cfg.BlocksPerSeed, p.seeds, p.blocks)

	p.wgEntropy.Add(1)
	go func() {
		defer p.wgEntropy.Done()
		p.fail(p.entropy.run(tok))
	}()

	p.wgStream.Add(1)
	go func() {
		defer p.wgStream.Done()
		p.fail(p.stream.run(tok))
	}()

	p.state.Store(int32(Running))
	return p, nil
}

// fail records the first non-cancel worker error and starts draining so
// peer workers wake and exit.
func (p *Pipeline) fail(err error) {
	if err == nil || errors.Is(err, ErrCancelled) {
		return
	}
	p.errMu.Lock()
	if p.err == nil {
		p.err = err
	}
	p.errMu.Unlock()
	p.beginDrain()
}

func (p *Pipeline) beginDrain() {
	p.state.CompareAndSwap(int32(Running), int32(Draining))
	p.tok.Cancel()
}

// Stop cancels the pipeline and joins every worker. The stream worker
// (the seed consumer) is joined before the entropy worker so a producer
// blocked in a push wakes through cancellation rather than waiting for
// a consumer that is already gone. Safe to call concurrently and more
// than once; it returns only after no worker is live.
func (p *Pipeline) Stop() {
	p.beginDrain()
	p.stopOnce.Do(func() {
		p.wgStream.Wait()
		p.wgEntropy.Wait()
		p.state.Store(int32(Terminated))
	})
	p.wgStream.Wait()
	p.wgEntropy.Wait()
}

// Run is the consumer loop, executed on the caller's goroutine. It
// pops blocks in order and hands them to out. ErrNoSpace from the sink
// is the normal end of a wipe and yields a nil return; any other sink
// error, and any worker failure, is returned after the pipeline has
// been stopped. Run always joins every worker before returning.
func (p *Pipeline) Run(out sink.Sink) error {
	defer p.Stop()
	for {
		block, err := p.blocks.Pop()
		if err != nil {
			// Cancelled: either an operator stop (Err is nil)
			// or a worker failure.
			return p.Err()
		}
		start := time.Now()
		n, werr := out.Write(block)
		if n > 0 {
			p.written.Add(uint64(n))
		}
		if elapsed := time.Since(start).Seconds(); elapsed > 0 {
			p.speed.Set(float64(len(block)) / (1024 * 1024) / elapsed)
		}
		if werr != nil {
			if errors.Is(werr, sink.ErrNoSpace) {
				return nil
			}
			p.fail(werr)
			return p.Err()
		}
	}
}

// Err returns the first non-cancel failure recorded by a worker or the
// consumer, nil on a clean run.
func (p *Pipeline) Err() error {
	p.errMu.Lock()
	defer p.errMu.Unlock()
	return p.err
}

// Stopping reports draining via a channel, for status loops that want
// to exit when the pipeline does.
func (p *Pipeline) Stopping() <-chan struct{} {
	return p.tok.Done()
}

// State returns the current lifecycle position.
func (p *Pipeline) State() State {
	return State(p.state.Load())
}

// IsRunning reports whether the pipeline is in the Running state.
func (p *Pipeline) IsRunning() bool {
	return p.State() == Running
}

// CurrentSpeed returns the consumer-side throughput in MB/s, updated
// once per consumed block.
func (p *Pipeline) CurrentSpeed() float64 {
	return p.speed.Load()
}

// BytesWritten returns the bytes accepted by the sink so far.
func (p *Pipeline) BytesWritten() uint64 {
	return p.written.Load()
}

// BlockBufferLen returns the block queue depth.
func (p *Pipeline) BlockBufferLen() int {
	return p.blocks.Len()
}

// SeedBufferLen returns the seed queue depth.
func (p *Pipeline) SeedBufferLen() int {
	return p.seeds.Len()
}

// SeedingProgress returns the fraction of the in-progress seed already
// drawn from the entropy source, in [0, 1].
func (p *Pipeline) SeedingProgress() float64 {
	return float64(p.entropy.seedingStatus()) / float64(p.cfg.Suite.SeedSize())
}

// Blocksize returns the configured block size in bytes.
func (p *Pipeline) Blocksize() int {
	return p.cfg.Blocksize
}
