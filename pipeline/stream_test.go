package pipeline

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/chacha20"

	"github.com/wipestream/wipestream/rng"
)

// keystream computes the expected chacha20 keystream for a seed laid
// out key||nonce, independently of the pipeline plumbing.
func keystream(t *testing.T, seed []byte, n int) []byte {
	t.Helper()
	c, err := chacha20.NewUnauthenticatedCipher(seed[:chacha20.KeySize], seed[chacha20.KeySize:])
	require.NoError(t, err)
	out := make([]byte, n)
	c.XORKeyStream(out, out)
	return out
}

func constSeed(b byte, size int) []byte {
	return bytes.Repeat([]byte{b}, size)
}

func collectBlocks(t *testing.T, out *Queue[[]byte], n int) [][]byte {
	t.Helper()
	blocks := make([][]byte, 0, n)
	for i := 0; i < n; i++ {
		b, err := out.Pop()
		require.NoError(t, err)
		blocks = append(blocks, b)
	}
	return blocks
}

func TestStreamProducerDeterministicKeystream(t *testing.T) {
	is := assert.New(t)
	suite := rng.Select("chacha20")
	tok := NewToken()
	seeds := NewQueue[[]byte](4, tok)
	out := NewQueue[[]byte](4, tok)
	const blocksize = 4096

	require.NoError(t, seeds.Push(constSeed(0x01, suite.SeedSize())))
	p := newStreamProducer(suite, nil, blocksize, 10, seeds, out)
	done := make(chan error, 1)
	go func() { done <- p.run(tok) }()

	blocks := collectBlocks(t, out, 2)
	tok.Cancel()
	is.ErrorIs(<-done, ErrCancelled)

	want := keystream(t, constSeed(0x01, suite.SeedSize()), 2*blocksize)
	is.Equal(want[:blocksize], blocks[0])
	is.Equal(want[blocksize:], blocks[1])

	for _, b := range blocks {
		is.Len(b, blocksize)
	}
}

// A second producer started from the same seed yields a bit-identical
// block sequence when the combiner is off.
func TestStreamProducerRepeatable(t *testing.T) {
	suite := rng.Select("chacha20")
	const blocksize = 1024

	produce := func() [][]byte {
		tok := NewToken()
		seeds := NewQueue[[]byte](1, tok)
		out := NewQueue[[]byte](4, tok)
		require.NoError(t, seeds.Push(constSeed(0x2A, suite.SeedSize())))
		p := newStreamProducer(suite, nil, blocksize, 10, seeds, out)
		go func() { _ = p.run(tok) }()
		blocks := collectBlocks(t, out, 3)
		tok.Cancel()
		return blocks
	}

	assert.Equal(t, produce(), produce())
}

// Reseeds happen exactly at block indices 0, k, 2k, ...: with k=2 and
// two seeds queued, blocks 0-1 come from the first seed's keystream
// and blocks 2-3 from the second's.
func TestStreamProducerReseedCadence(t *testing.T) {
	is := assert.New(t)
	suite := rng.Select("chacha20")
	tok := NewToken()
	seeds := NewQueue[[]byte](4, tok)
	out := NewQueue[[]byte](8, tok)
	const blocksize = 512

	seedA := constSeed(0xAA, suite.SeedSize())
	seedB := constSeed(0xBB, suite.SeedSize())
	require.NoError(t, seeds.Push(seedA))
	require.NoError(t, seeds.Push(seedB))

	p := newStreamProducer(suite, nil, blocksize, 2, seeds, out)
	go func() { _ = p.run(tok) }()

	blocks := collectBlocks(t, out, 4)
	tok.Cancel()

	wantA := keystream(t, seedA, 2*blocksize)
	wantB := keystream(t, seedB, 2*blocksize)
	is.Equal(wantA[:blocksize], blocks[0])
	is.Equal(wantA[blocksize:], blocks[1])
	is.Equal(wantB[:blocksize], blocks[2])
	is.Equal(wantB[blocksize:], blocks[3])
}

func TestStreamProducerWaitsForFirstSeed(t *testing.T) {
	suite := rng.Select("chacha20")
	tok := NewToken()
	seeds := NewQueue[[]byte](1, tok)
	out := NewQueue[[]byte](1, tok)

	p := newStreamProducer(suite, nil, 256, 5, seeds, out)
	go func() { _ = p.run(tok) }()

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 0, out.Len(), "block produced before the cipher was seeded")

	require.NoError(t, seeds.Push(constSeed(0x01, suite.SeedSize())))
	_, err := out.Pop()
	require.NoError(t, err)
	tok.Cancel()
}

type xorAux struct {
	fill byte
}

func (a *xorAux) Fill(p []byte) error {
	for i := range p {
		p[i] = a.fill
	}
	return nil
}

func TestStreamProducerAuxCombiner(t *testing.T) {
	is := assert.New(t)
	suite := rng.Select("chacha20")
	tok := NewToken()
	seeds := NewQueue[[]byte](1, tok)
	out := NewQueue[[]byte](2, tok)
	const blocksize = 768

	seed := constSeed(0x07, suite.SeedSize())
	require.NoError(t, seeds.Push(seed))
	p := newStreamProducer(suite, &xorAux{fill: 0xFF}, blocksize, 10, seeds, out)
	go func() { _ = p.run(tok) }()

	block, err := out.Pop()
	require.NoError(t, err)
	tok.Cancel()

	want := keystream(t, seed, blocksize)
	for i := range want {
		want[i] ^= 0xFF
	}
	is.Equal(want, block)
}

func TestStreamProducerRejectsWrongSeedLength(t *testing.T) {
	suite := rng.Select("chacha20")
	tok := NewToken()
	seeds := NewQueue[[]byte](1, tok)
	out := NewQueue[[]byte](1, tok)

	require.NoError(t, seeds.Push([]byte{1, 2, 3}))
	p := newStreamProducer(suite, nil, 128, 5, seeds, out)
	err := p.run(tok)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCancelled)
}
