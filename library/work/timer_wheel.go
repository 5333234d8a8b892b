package work

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/RussellLuo/timingwheel"
	"github.com/go-kratos/kratos/v2/log"
)

const (
	defaultWheelTickPrecision = 50 * time.Millisecond
	defaultWheelSize          = 128
	maxIntervalJumps          = 10000
)

// wheelPreciseEvery keeps periodic tasks on their original cadence instead of drifting.
type wheelPreciseEvery struct {
	Interval time.Duration
	last     atomic.Value // time.Time
}

func (p *wheelPreciseEvery) Next(t time.Time) time.Time {
	last, _ := p.last.Load().(time.Time)
	if last.IsZero() {
		last = t
	}
	steps := 0
	next := last.Add(p.Interval)
	for !next.After(t) {
		next = next.Add(p.Interval)
		if steps++; steps > maxIntervalJumps {
			log.Warnf("[wheelPreciseEvery] skipped too many steps: %d", steps)
			break
		}
	}
	p.last.Store(next)
	return next
}

type WheelSchedulerOption func(*wheelScheduler)

func WithTick(d time.Duration) WheelSchedulerOption {
	return func(s *wheelScheduler) {
		if d > 0 {
			s.tick = d
		} else {
			log.Warnf("Invalid tick %v, using default %v", d, defaultWheelTickPrecision)
		}
	}
}

func WithWheelSize(size int64) WheelSchedulerOption {
	return func(s *wheelScheduler) {
		if size > 0 {
			s.wheelSize = size
		} else {
			log.Warnf("Invalid wheelSize %d, using default %d", size, defaultWheelSize)
		}
	}
}

func WithContext(ctx context.Context) WheelSchedulerOption {
	return func(s *wheelScheduler) { s.ctx = ctx }
}

func WithExecutor(exec IExecutor) WheelSchedulerOption {
	return func(s *wheelScheduler) { s.executor = exec }
}

// wheelScheduler is a Scheduler backed by a hierarchical timing wheel.
type wheelScheduler struct {
	baseScheduler
	tick      time.Duration
	wheelSize int64
	tw        *timingwheel.TimingWheel
	tasks     sync.Map // map[int64]*wheelTaskEntry
	nextID    atomic.Int64
	shutdown  atomic.Bool
	ctx       context.Context
	cancel    context.CancelFunc
	once      sync.Once
}

type wheelTaskEntry struct {
	mu        sync.Mutex
	timer     *timingwheel.Timer
	cancelled atomic.Bool
	executing atomic.Bool
	repeated  bool
}

// NewWheelScheduler creates and starts a timing-wheel scheduler.
func NewWheelScheduler(opts ...WheelSchedulerOption) Scheduler {
	s := &wheelScheduler{
		tick:      defaultWheelTickPrecision,
		wheelSize: defaultWheelSize,
		ctx:       context.Background(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.executor == nil {
		log.Warn("[wheelScheduler] No executor provided, tasks will run in unlimited goroutines")
	}

	s.ctx, s.cancel = context.WithCancel(s.ctx)
	s.tw = timingwheel.NewTimingWheel(s.tick, s.wheelSize)
	s.tw.Start()
	go func() {
		<-s.ctx.Done()
		s.Stop()
	}()
	return s
}

func (s *wheelScheduler) Len() int {
	count := 0
	s.tasks.Range(func(_, _ any) bool {
		count++
		return true
	})
	return count
}

func (s *wheelScheduler) Running() int32 {
	return s.getRunning()
}

func (s *wheelScheduler) Monitor() Monitor {
	return Monitor{Len: s.Len(), Running: s.Running()}
}

func (s *wheelScheduler) Once(delay time.Duration, f func()) int64 {
	return s.schedule(delay, false, f)
}

func (s *wheelScheduler) Forever(interval time.Duration, f func()) int64 {
	return s.schedule(interval, true, f)
}

func (s *wheelScheduler) Cancel(taskID int64) {
	s.removeTask(taskID)
}

func (s *wheelScheduler) CancelAll() {
	s.tasks.Range(func(key, _ any) bool {
		s.removeTask(key.(int64))
		return true
	})
}

// removeTask does not wait for an executing task: a task may cancel itself.
func (s *wheelScheduler) removeTask(taskID int64) {
	val, ok := s.tasks.LoadAndDelete(taskID)
	if !ok {
		return
	}
	entry := val.(*wheelTaskEntry)
	if !entry.cancelled.CompareAndSwap(false, true) {
		return
	}
	entry.mu.Lock()
	if entry.timer != nil {
		entry.timer.Stop()
	}
	entry.mu.Unlock()
}

func (s *wheelScheduler) Stop() {
	s.once.Do(func() {
		s.shutdown.Store(true)
		s.cancel()
		s.CancelAll()
		s.tw.Stop()
		log.Info("[wheelScheduler] stopped")
	})
}

func (s *wheelScheduler) schedule(delay time.Duration, repeated bool, f func()) int64 {
	if s.shutdown.Load() || s.ctx.Err() != nil {
		log.Warn("wheelScheduler is shut down; task rejected")
		return -1
	}

	taskID := s.nextID.Add(1)
	entry := &wheelTaskEntry{repeated: repeated}
	// store before arming so an immediate fire can still find and remove the entry
	s.tasks.Store(taskID, entry)
	startAt := time.Now()

	wrapped := func() {
		if entry.cancelled.Load() {
			return
		}
		if !repeated && !entry.executing.CompareAndSwap(false, true) {
			return
		}

		accepted := s.executeAsync(func() {
			s.incrementRunning()
			defer func() {
				s.decrementRunning()
				entry.executing.Store(false)
			}()
			// re-check on the executor: Cancel may have run while the job was queued
			if entry.cancelled.Load() {
				return
			}
			if !repeated {
				s.tasks.Delete(taskID)
				entry.cancelled.Store(true)
				s.lazy(taskID, delay, startAt)
			}
			f()
		})
		if !accepted {
			entry.executing.Store(false)
			s.removeTask(taskID)
		}
	}

	entry.mu.Lock()
	if repeated {
		entry.timer = s.tw.ScheduleFunc(&wheelPreciseEvery{Interval: delay}, wrapped)
	} else {
		entry.timer = s.tw.AfterFunc(delay, wrapped)
	}
	entry.mu.Unlock()
	return taskID
}

func (s *wheelScheduler) lazy(taskID int64, delay time.Duration, startAt time.Time) {
	latency := time.Since(startAt) - delay
	if latency >= 2*s.tick {
		log.Warnf("[wheelScheduler] taskID=%d delay=%v precision=%v latency=%v", taskID, delay, s.tick, latency)
	}
}
