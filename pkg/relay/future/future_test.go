package future

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolved(t *testing.T) {
	f := Resolved(42)

	assert.True(t, f.Settled())
	v, err := f.Value()
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestRejected(t *testing.T) {
	boom := errors.New("boom")
	f := Rejected[int](boom)

	v, err := f.Await(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, v)
}

func TestRejectNil(t *testing.T) {
	f := Rejected[string](nil)
	_, err := f.Value()
	assert.ErrorIs(t, err, ErrNilRejection)
}

func TestSettleOnce(t *testing.T) {
	f := New[string]()

	assert.True(t, f.Resolve("first"))
	assert.False(t, f.Resolve("second"))
	assert.False(t, f.Reject(errors.New("late")))

	v, err := f.Value()
	require.NoError(t, err)
	assert.Equal(t, "first", v)
}

func TestValuePending(t *testing.T) {
	f := New[int]()
	_, err := f.Value()
	assert.ErrorIs(t, err, ErrPending)
	assert.False(t, f.Settled())
}

func TestOnSettle(t *testing.T) {
	t.Run("runs after settlement", func(t *testing.T) {
		f := New[int]()
		var got []int
		f.OnSettle(func(v int, err error) { got = append(got, v) })
		f.OnSettle(func(v int, err error) { got = append(got, v*10) })

		assert.Empty(t, got)
		f.Resolve(3)
		assert.Equal(t, []int{3, 30}, got)
	})

	t.Run("runs immediately when already settled", func(t *testing.T) {
		f := Resolved("x")
		called := false
		f.OnSettle(func(v string, err error) {
			called = true
			assert.Equal(t, "x", v)
		})
		assert.True(t, called)
	})
}

func TestNotify(t *testing.T) {
	var th Thenable = Resolved(7)

	var got any
	th.Notify(func(v any, err error) {
		require.NoError(t, err)
		got = v
	})
	assert.Equal(t, 7, got)

	boom := errors.New("boom")
	th = Rejected[int](boom)
	th.Notify(func(v any, err error) {
		assert.Nil(t, v)
		assert.ErrorIs(t, err, boom)
	})
}

func TestThen(t *testing.T) {
	t.Run("maps value", func(t *testing.T) {
		f := New[int]()
		s := Then(f, func(v int) (string, error) {
			return time.Duration(v).String(), nil
		})
		f.Resolve(5)

		v, err := s.Await(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "5ns", v)
	})

	t.Run("propagates rejection without calling fn", func(t *testing.T) {
		boom := errors.New("boom")
		called := false
		s := Then(Rejected[int](boom), func(v int) (int, error) {
			called = true
			return v, nil
		})

		_, err := s.Value()
		assert.ErrorIs(t, err, boom)
		assert.False(t, called)
	})

	t.Run("fn error rejects", func(t *testing.T) {
		bad := errors.New("bad")
		s := Then(Resolved(1), func(int) (int, error) { return 0, bad })
		_, err := s.Value()
		assert.ErrorIs(t, err, bad)
	})

	t.Run("fn panic rejects", func(t *testing.T) {
		s := Then(Resolved(1), func(int) (int, error) { panic("kaboom") })
		_, err := s.Value()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "kaboom")
	})
}

func TestChain(t *testing.T) {
	inner := New[string]()
	outer := Chain(Resolved(1), func(int) *Future[string] { return inner })

	assert.False(t, outer.Settled())
	inner.Resolve("done")

	v, err := outer.Value()
	require.NoError(t, err)
	assert.Equal(t, "done", v)

	nilInner := Chain(Resolved(1), func(int) *Future[string] { return nil })
	v, err = nilInner.Value()
	require.NoError(t, err)
	assert.Empty(t, v)
}

func TestAwait(t *testing.T) {
	t.Run("resolved from another goroutine", func(t *testing.T) {
		f := New[int]()
		go func() {
			time.Sleep(5 * time.Millisecond)
			f.Resolve(99)
		}()

		v, err := f.Await(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 99, v)
	})

	t.Run("context done stops waiting", func(t *testing.T) {
		f := New[int]()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
		defer cancel()

		_, err := f.Await(ctx)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.False(t, f.Settled())
	})
}

func TestConcurrentSettle(t *testing.T) {
	f := New[int]()

	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if f.Resolve(i) {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
	<-f.Done()
}
