package live

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestInline_RunsImmediately(t *testing.T) {
	ran := false
	Inline.Dispatch(func() { ran = true })
	require.True(t, ran)
}

func TestQueue_DrainRunsInOrder(t *testing.T) {
	q := NewQueue()
	var order []int
	for i := 0; i < 3; i++ {
		q.Dispatch(func() { order = append(order, i) })
	}
	require.Equal(t, 3, q.Len())
	require.Empty(t, order)

	require.Equal(t, 3, q.Drain())
	require.Equal(t, []int{0, 1, 2}, order)
	require.Zero(t, q.Len())
}

func TestQueue_DrainIncludesCallbacksEnqueuedWhileDraining(t *testing.T) {
	q := NewQueue()
	var order []string
	q.Dispatch(func() {
		order = append(order, "outer")
		q.Dispatch(func() { order = append(order, "inner") })
	})

	require.Equal(t, 2, q.Drain())
	require.Equal(t, []string{"outer", "inner"}, order)
}

func TestQueue_NextWaitsForDispatch(t *testing.T) {
	q := NewQueue()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	go func() {
		time.Sleep(10 * time.Millisecond)
		q.Dispatch(func() {})
	}()

	batch, err := q.Next(ctx)
	require.NoError(t, err)
	require.Len(t, batch, 1)
}

func TestQueue_NextHonoursContext(t *testing.T) {
	q := NewQueue()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := q.Next(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestQueue_Close(t *testing.T) {
	q := NewQueue()
	q.Dispatch(func() { t.Fatal("discarded callback ran") })
	q.Close()
	q.Dispatch(func() { t.Fatal("callback after close ran") })

	_, err := q.Next(context.Background())
	require.ErrorIs(t, err, ErrQueueClosed)
	require.Zero(t, q.Drain())
}

func TestQueue_ConcurrentDispatch(t *testing.T) {
	q := NewQueue()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			q.Dispatch(func() {})
		}()
	}
	wg.Wait()

	require.Equal(t, 50, q.Drain())
}
