package work

import (
	"runtime/debug"
	"sync/atomic"
	"time"

	"github.com/go-kratos/kratos/v2/log"
)

// Scheduler registers delayed tasks identified by an int64 id.
type Scheduler interface {
	Len() int                                       // registered tasks
	Running() int32                                 // tasks currently executing
	Monitor() Monitor                               // snapshot
	Once(delay time.Duration, f func()) int64       // one-shot task
	Forever(interval time.Duration, f func()) int64 // periodic task
	Cancel(taskID int64)                            // no-op for unknown ids
	CancelAll()
	Stop()
}

// IExecutor decides where fired tasks run, typically a serial ITaskLoop.
type IExecutor interface {
	Post(job func()) bool
}

type Monitor struct {
	Len     int
	Running int32
}

func RecoverFromError(cb func(e any)) {
	if e := recover(); e != nil {
		log.Errorf("Recover => %v\n%s\n", e, debug.Stack())
		if cb != nil {
			cb(e)
		}
	}
}

// ExecuteAsync hands f to executor, or to a fresh goroutine when executor is nil.
// It reports false when the executor refused the job.
func ExecuteAsync(executor IExecutor, f func()) bool {
	run := func() {
		defer RecoverFromError(nil)
		f()
	}
	if executor != nil {
		return executor.Post(run)
	}
	go run()
	return true
}

type baseScheduler struct {
	executor IExecutor
	running  atomic.Int32
}

func (s *baseScheduler) executeAsync(f func()) bool {
	return ExecuteAsync(s.executor, f)
}

func (s *baseScheduler) incrementRunning() { s.running.Add(1) }
func (s *baseScheduler) decrementRunning() { s.running.Add(-1) }
func (s *baseScheduler) getRunning() int32 { return s.running.Load() }
