package work

import (
	"context"
	"errors"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	log.SetLogger(log.NewStdLogger(os.Stdout))
}

func waitForChannel(t *testing.T, ch <-chan struct{}, timeout time.Duration, msg string) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(timeout):
		t.Fatal(msg)
	}
}

func TestLoop(t *testing.T) {
	l := NewLoop(WithSize(16))
	require.NoError(t, l.Start())
	defer l.Stop()

	t.Run("start more times", func(t *testing.T) {
		require.NoError(t, l.Start())
	})

	t.Run("jobs run in post order", func(t *testing.T) {
		var got []int
		done := make(chan struct{})
		for i := 0; i < 10; i++ {
			i := i
			require.True(t, l.Post(func() { got = append(got, i) }))
		}
		l.Post(func() { close(done) })
		waitForChannel(t, done, time.Second, "jobs not finished")
		assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, got)
	})

	t.Run("PostAndWait returns expected value", func(t *testing.T) {
		val, err := l.PostAndWait(func() ([]byte, error) {
			return []byte("hello"), nil
		})
		require.NoError(t, err)
		require.Equal(t, []byte("hello"), val)
	})

	t.Run("PostAndWait panic inside job is recovered", func(t *testing.T) {
		_, err := l.PostAndWait(func() ([]byte, error) {
			panic("oops")
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "panic")

		val, err := l.PostAndWait(func() ([]byte, error) { return []byte("still alive"), nil })
		require.NoError(t, err)
		assert.Equal(t, []byte("still alive"), val)
	})

	t.Run("PostAndWait propagates job error", func(t *testing.T) {
		want := errors.New("bad")
		_, err := l.PostAndWait(func() ([]byte, error) { return nil, want })
		assert.ErrorIs(t, err, want)
	})

	t.Run("PostAndWaitCtx honours cancellation", func(t *testing.T) {
		block := make(chan struct{})
		l.Post(func() { <-block })
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		_, err := l.PostAndWaitCtx(ctx, func() ([]byte, error) { return nil, nil })
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		close(block)
	})
}

func TestLoopStopped(t *testing.T) {
	l := NewLoop()
	require.NoError(t, l.Start())
	l.Stop()

	assert.False(t, l.Post(func() {}))
	_, err := l.PostAndWait(func() ([]byte, error) { return nil, nil })
	assert.ErrorIs(t, err, ErrLoopStopped)
	assert.ErrorIs(t, l.Start(), ErrLoopStopped)
}

func newTestStore(t *testing.T) IWorkStore {
	t.Helper()
	ws := NewWorkStore(context.Background(), 5*time.Millisecond, 64)
	require.NoError(t, ws.Start())
	t.Cleanup(ws.Stop)
	return ws
}

func TestWheelScheduler_Once(t *testing.T) {
	ws := newTestStore(t)

	done := make(chan struct{})
	id := ws.Once(10*time.Millisecond, func() { close(done) })
	assert.Greater(t, id, int64(0))
	waitForChannel(t, done, time.Second, "Once task did not execute")

	assert.Eventually(t, func() bool { return ws.Len() == 0 }, time.Second, 5*time.Millisecond)
}

func TestWheelScheduler_Cancel(t *testing.T) {
	ws := newTestStore(t)

	var fired atomic.Bool
	id := ws.Once(30*time.Millisecond, func() { fired.Store(true) })
	ws.Cancel(id)
	ws.Cancel(id)
	ws.Cancel(9999)

	time.Sleep(80 * time.Millisecond)
	assert.False(t, fired.Load())
	assert.Equal(t, 0, ws.Len())
}

func TestWheelScheduler_CancelAll(t *testing.T) {
	ws := newTestStore(t)

	var fired atomic.Int32
	for i := 0; i < 5; i++ {
		ws.Once(30*time.Millisecond, func() { fired.Add(1) })
	}
	assert.Equal(t, 5, ws.Len())
	ws.CancelAll()

	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, int32(0), fired.Load())
}

func TestWheelScheduler_TaskRunsOnLoop(t *testing.T) {
	ws := newTestStore(t)

	// state touched only from the loop needs no lock
	counter := 0
	done := make(chan struct{})
	ws.Once(10*time.Millisecond, func() {
		counter++
		ws.Post(func() {
			counter++
			close(done)
		})
	})
	waitForChannel(t, done, time.Second, "loop job did not run")

	val, err := ws.PostAndWait(func() ([]byte, error) {
		return []byte{byte(counter)}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []byte{2}, val)
}

func TestWheelScheduler_SelfCancel(t *testing.T) {
	ws := newTestStore(t)

	done := make(chan struct{})
	var id atomic.Int64
	id.Store(ws.Once(10*time.Millisecond, func() {
		ws.Cancel(id.Load())
		close(done)
	}))
	waitForChannel(t, done, time.Second, "self-cancelling task blocked")
}

func TestWheelScheduler_Forever(t *testing.T) {
	ws := newTestStore(t)

	var n atomic.Int32
	id := ws.Forever(10*time.Millisecond, func() { n.Add(1) })
	assert.Eventually(t, func() bool { return n.Load() >= 3 }, time.Second, 5*time.Millisecond)
	ws.Cancel(id)
}

func TestWheelScheduler_PanicRecovery(t *testing.T) {
	ws := newTestStore(t)

	ws.Once(5*time.Millisecond, func() { panic("timer boom") })
	done := make(chan struct{})
	ws.Once(20*time.Millisecond, func() { close(done) })
	waitForChannel(t, done, time.Second, "scheduler died after panic")
}

func TestWheelScheduler_Shutdown(t *testing.T) {
	s := NewWheelScheduler(WithTick(5 * time.Millisecond))
	s.Once(50*time.Millisecond, func() { t.Error("Once task executed after shutdown") })
	s.Stop()
	s.Stop()

	assert.Equal(t, int64(-1), s.Once(time.Millisecond, func() {}))
	time.Sleep(80 * time.Millisecond)
}
