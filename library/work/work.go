package work

import (
	"context"
	"time"
)

/*
	serial loop + timer scheduler whose fired tasks run on that loop
*/

const defaultPendingNum = 1024

type IWorkStore interface {
	ITaskLoop
	Scheduler
}

type workStore struct {
	ctx   context.Context
	loop  ITaskLoop
	timer Scheduler
}

// NewWorkStore wires a serial loop and a wheel scheduler that executes on it.
func NewWorkStore(ctx context.Context, tick time.Duration, wheelSize int64, pendingNum ...int) IWorkStore {
	size := defaultPendingNum
	if len(pendingNum) > 0 && pendingNum[0] > 0 {
		size = pendingNum[0]
	}
	l := NewLoop(WithSize(size))
	t := NewWheelScheduler(
		WithContext(ctx),
		WithExecutor(l),
		WithTick(tick),
		WithWheelSize(wheelSize),
	)
	return &workStore{
		ctx:   ctx,
		loop:  l,
		timer: t,
	}
}

func (w *workStore) Start() error {
	return w.loop.Start()
}

// Stop halts timers first so nothing new is posted to a stopping loop.
func (w *workStore) Stop() {
	w.timer.Stop()
	w.loop.Stop()
}

func (w *workStore) Pending() int {
	return w.loop.Pending()
}

func (w *workStore) Post(job func()) bool {
	return w.loop.Post(job)
}

func (w *workStore) PostAndWait(job func() ([]byte, error)) ([]byte, error) {
	return w.loop.PostAndWait(job)
}

func (w *workStore) PostAndWaitCtx(ctx context.Context, job func() ([]byte, error)) ([]byte, error) {
	return w.loop.PostAndWaitCtx(ctx, job)
}

func (w *workStore) Len() int {
	return w.timer.Len()
}

func (w *workStore) Running() int32 {
	return w.timer.Running()
}

func (w *workStore) Monitor() Monitor {
	return w.timer.Monitor()
}

func (w *workStore) Once(duration time.Duration, f func()) int64 {
	return w.timer.Once(duration, f)
}

func (w *workStore) Forever(interval time.Duration, f func()) int64 {
	return w.timer.Forever(interval, f)
}

func (w *workStore) Cancel(taskID int64) {
	w.timer.Cancel(taskID)
}

func (w *workStore) CancelAll() {
	w.timer.CancelAll()
}
