package crawl_test

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fwojciec/webcrawl"
	"github.com/fwojciec/webcrawl/crawl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHostQueue_Submit(t *testing.T) {
	t.Parallel()

	t.Run("limits active tasks per host", func(t *testing.T) {
		t.Parallel()

		const limit = 2
		e := crawl.NewExecutor("download", 16, nil)
		q := crawl.NewHostQueue(e, limit, nil)

		var current, peak atomic.Int64
		var done sync.WaitGroup
		for i := 0; i < 20; i++ {
			done.Add(1)
			require.NoError(t, q.Submit("example.com", crawl.Task{
				Run: func() {
					n := current.Add(1)
					for {
						p := peak.Load()
						if n <= p || peak.CompareAndSwap(p, n) {
							break
						}
					}
					time.Sleep(time.Millisecond)
					current.Add(-1)
				},
				Done: done.Done,
			}))
		}

		done.Wait()
		e.Close()

		assert.LessOrEqual(t, peak.Load(), int64(limit))
		assert.Equal(t, 0, q.Active("example.com"))
		assert.Equal(t, 0, q.Pending("example.com"))
	})

	t.Run("runs queued tasks of a host in FIFO order", func(t *testing.T) {
		t.Parallel()

		e := crawl.NewExecutor("download", 4, nil)
		q := crawl.NewHostQueue(e, 1, nil)

		release := make(chan struct{})
		var mu sync.Mutex
		var order []int
		var done sync.WaitGroup

		done.Add(1)
		require.NoError(t, q.Submit("example.com", crawl.Task{
			Run:  func() { <-release },
			Done: done.Done,
		}))
		for i := 1; i <= 5; i++ {
			done.Add(1)
			require.NoError(t, q.Submit("example.com", crawl.Task{
				Run: func() {
					mu.Lock()
					order = append(order, i)
					mu.Unlock()
				},
				Done: done.Done,
			}))
		}
		assert.Equal(t, 1, q.Active("example.com"))
		assert.Equal(t, 5, q.Pending("example.com"))

		close(release)
		done.Wait()
		e.Close()

		assert.Equal(t, []int{1, 2, 3, 4, 5}, order)
	})

	t.Run("hosts do not block each other", func(t *testing.T) {
		t.Parallel()

		e := crawl.NewExecutor("download", 4, nil)
		defer e.Close()
		q := crawl.NewHostQueue(e, 1, nil)

		release := make(chan struct{})
		defer close(release)
		require.NoError(t, q.Submit("slow.example.com", crawl.Task{Run: func() { <-release }}))

		ran := make(chan struct{})
		require.NoError(t, q.Submit("fast.example.com", crawl.Task{Run: func() { close(ran) }}))

		select {
		case <-ran:
		case <-time.After(time.Second):
			t.Fatal("task for another host waited on a busy host")
		}
	})

	t.Run("calls Done after the slot is released", func(t *testing.T) {
		t.Parallel()

		e := crawl.NewExecutor("download", 1, nil)
		q := crawl.NewHostQueue(e, 1, nil)

		active := make(chan int, 1)
		require.NoError(t, q.Submit("example.com", crawl.Task{
			Run:  func() {},
			Done: func() { active <- q.Active("example.com") },
		}))

		select {
		case n := <-active:
			assert.Equal(t, 0, n)
		case <-time.After(time.Second):
			t.Fatal("Done was not called")
		}
		e.Close()
	})

	t.Run("calls Done after a panicking task", func(t *testing.T) {
		t.Parallel()

		e := crawl.NewExecutor("download", 1, nil)
		q := crawl.NewHostQueue(e, 1, nil)

		var done sync.WaitGroup
		done.Add(2)
		require.NoError(t, q.Submit("example.com", crawl.Task{
			Run:  func() { panic("boom") },
			Done: done.Done,
		}))
		require.NoError(t, q.Submit("example.com", crawl.Task{
			Run:  func() {},
			Done: done.Done,
		}))

		done.Wait()
		e.Close()
		assert.Equal(t, 0, q.Active("example.com"))
	})

	t.Run("abandons tasks when the executor is closed", func(t *testing.T) {
		t.Parallel()

		e := crawl.NewExecutor("download", 1, nil)
		e.Close()
		q := crawl.NewHostQueue(e, 1, nil)

		var calls []string
		var abandonErr error
		err := q.Submit("example.com", crawl.Task{
			Run: func() { t.Error("task ran on a closed executor") },
			Abandon: func(err error) {
				abandonErr = err
				calls = append(calls, "abandon")
			},
			Done: func() { calls = append(calls, "done") },
		})

		require.Error(t, err)
		assert.Equal(t, webcrawl.ECLOSED, webcrawl.ErrorCode(err))
		assert.Equal(t, webcrawl.ECLOSED, webcrawl.ErrorCode(abandonErr))
		assert.Equal(t, []string{"abandon", "done"}, calls)
		assert.Equal(t, 0, q.Active("example.com"))
		assert.Equal(t, 0, q.Pending("example.com"))
	})

	t.Run("does not abandon tasks that ran", func(t *testing.T) {
		t.Parallel()

		e := crawl.NewExecutor("download", 1, nil)
		q := crawl.NewHostQueue(e, 1, nil)

		var ran, abandoned atomic.Int32
		for range 3 {
			err := q.Submit("example.com", crawl.Task{
				Run:     func() { ran.Add(1) },
				Abandon: func(error) { abandoned.Add(1) },
			})
			require.NoError(t, err)
		}
		e.Close()

		assert.Equal(t, int32(3), ran.Load())
		assert.Equal(t, int32(0), abandoned.Load())
	})
}
