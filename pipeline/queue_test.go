package pipeline

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueFIFO(t *testing.T) {
	is := assert.New(t)
	tok := NewToken()
	q := NewQueue[int](64, tok)

	for i := 0; i < 64; i++ {
		is.NoError(q.Push(i))
	}
	is.Equal(64, q.Len())
	for i := 0; i < 64; i++ {
		v, err := q.Pop()
		is.NoError(err)
		is.Equal(i, v)
	}
	is.Equal(0, q.Len())
}

func TestQueueBadCapacityPanics(t *testing.T) {
	is := assert.New(t)
	is.Panics(func() { NewQueue[int](0, NewToken()) })
	is.Panics(func() { NewQueue[int](-3, NewToken()) })
}

func TestQueuePushBlocksWhenFull(t *testing.T) {
	is := assert.New(t)
	tok := NewToken()
	q := NewQueue[int](1, tok)
	require.NoError(t, q.Push(1))

	pushed := make(chan struct{})
	go func() {
		_ = q.Push(2)
		close(pushed)
	}()

	select {
	case <-pushed:
		t.Fatal("push succeeded on a full queue")
	case <-time.After(50 * time.Millisecond):
	}
	is.Equal(1, q.Len())

	v, err := q.Pop()
	require.NoError(t, err)
	is.Equal(1, v)

	select {
	case <-pushed:
	case <-time.After(time.Second):
		t.Fatal("push did not wake after pop freed a slot")
	}
}

func TestQueuePopBlocksWhenEmpty(t *testing.T) {
	tok := NewToken()
	q := NewQueue[int](4, tok)

	popped := make(chan int, 1)
	go func() {
		v, err := q.Pop()
		if err == nil {
			popped <- v
		}
	}()

	select {
	case <-popped:
		t.Fatal("pop succeeded on an empty queue")
	case <-time.After(50 * time.Millisecond):
	}

	require.NoError(t, q.Push(7))
	select {
	case v := <-popped:
		assert.Equal(t, 7, v)
	case <-time.After(time.Second):
		t.Fatal("pop did not wake after push")
	}
}

func TestQueueCancelWakesWaiters(t *testing.T) {
	is := assert.New(t)
	tok := NewToken()
	full := NewQueue[int](1, tok)
	empty := NewQueue[int](1, tok)
	require.NoError(t, full.Push(1))

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	wg.Add(2)
	go func() {
		defer wg.Done()
		errs <- full.Push(2) // blocks: full
	}()
	go func() {
		defer wg.Done()
		_, err := empty.Pop() // blocks: empty
		errs <- err
	}()

	time.Sleep(20 * time.Millisecond)
	start := time.Now()
	tok.Cancel()

	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("cancelled waiters did not wake within 500ms")
	}
	is.Less(time.Since(start), 500*time.Millisecond)
	is.ErrorIs(<-errs, ErrCancelled)
	is.ErrorIs(<-errs, ErrCancelled)
}

func TestQueueCancelledReturnsImmediately(t *testing.T) {
	is := assert.New(t)
	tok := NewToken()
	q := NewQueue[int](2, tok)
	require.NoError(t, q.Push(1))
	tok.Cancel()

	is.ErrorIs(q.Push(2), ErrCancelled)
	_, err := q.Pop()
	is.ErrorIs(err, ErrCancelled)
}

// For any interleaving of pushes and pops the depth stays within
// [0, capacity] and nothing is lost or duplicated.
func TestQueueConcurrentLoad(t *testing.T) {
	is := assert.New(t)
	tok := NewToken()
	const capacity = 3
	const producers = 4
	const perProducer = 500
	q := NewQueue[int](capacity, tok)

	stopWatch := make(chan struct{})
	go func() {
		for {
			select {
			case <-stopWatch:
				return
			default:
				if l := q.Len(); l < 0 || l > capacity {
					t.Errorf("queue depth %d out of [0, %d]", l, capacity)
					return
				}
			}
		}
	}()

	var wg sync.WaitGroup
	for w := 0; w < producers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				_ = q.Push(w*perProducer + i)
			}
		}(w)
	}

	seen := make(map[int]bool, producers*perProducer)
	for i := 0; i < producers*perProducer; i++ {
		v, err := q.Pop()
		require.NoError(t, err)
		require.False(t, seen[v], "value %d popped twice", v)
		seen[v] = true
	}
	wg.Wait()
	close(stopWatch)
	is.Len(seen, producers*perProducer)
	is.Equal(0, q.Len())
}
