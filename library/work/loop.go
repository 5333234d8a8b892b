package work

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/go-kratos/kratos/v2/log"
)

var ErrLoopStopped = errors.New("work: loop stopped")

type asyncResult struct {
	data []byte
	err  error
}

// ITaskLoop runs posted jobs one at a time, in the order they were posted.
type ITaskLoop interface {
	Start() error
	Stop()
	Pending() int
	Post(job func()) bool
	PostAndWait(job func() ([]byte, error)) ([]byte, error)
	PostAndWaitCtx(ctx context.Context, job func() ([]byte, error)) ([]byte, error)
}

type Option func(*serialLoop)

// WithSize sets the job queue buffer. Post blocks while the buffer is full.
func WithSize(size int) Option {
	return func(l *serialLoop) {
		if size > 0 {
			l.size = size
		}
	}
}

type serialLoop struct {
	mu      sync.RWMutex
	size    int
	jobs    chan func()
	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
	started bool
}

// NewLoop creates a single-goroutine job loop.
func NewLoop(opts ...Option) ITaskLoop {
	l := &serialLoop{size: defaultPendingNum}
	for _, opt := range opts {
		opt(l)
	}
	l.ctx, l.cancel = context.WithCancel(context.Background())
	l.jobs = make(chan func(), l.size)
	l.done = make(chan struct{})
	return l
}

func (l *serialLoop) Start() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.ctx.Err() != nil {
		return ErrLoopStopped
	}
	if l.started {
		log.Warnf("loop already started.")
		return nil
	}
	l.started = true

	go l.run()
	log.Infof("loop start... [size:%d]", l.size)
	return nil
}

func (l *serialLoop) run() {
	defer close(l.done)
	for {
		select {
		case <-l.ctx.Done():
			return
		case job := <-l.jobs:
			safeRun(job)
		}
	}
}

func (l *serialLoop) Stop() {
	l.mu.Lock()
	started := l.started
	l.cancel()
	l.mu.Unlock()

	if started {
		<-l.done
	}
	log.Infof("loop stopped [pending:%d]", len(l.jobs))
}

func (l *serialLoop) Pending() int {
	return len(l.jobs)
}

// Post enqueues job and reports whether it was accepted.
func (l *serialLoop) Post(job func()) bool {
	if job == nil || l.ctx.Err() != nil {
		return false
	}
	select {
	case <-l.ctx.Done():
		return false
	case l.jobs <- job:
		return true
	}
}

func (l *serialLoop) PostAndWait(job func() ([]byte, error)) ([]byte, error) {
	return l.PostAndWaitCtx(context.Background(), job)
}

func (l *serialLoop) PostAndWaitCtx(ctx context.Context, job func() ([]byte, error)) ([]byte, error) {
	ch := make(chan *asyncResult, 1)

	ok := l.Post(func() {
		defer RecoverFromError(func(e any) {
			ch <- &asyncResult{nil, fmt.Errorf("panic: %v", e)}
		})
		data, err := job()
		ch <- &asyncResult{data, err}
	})
	if !ok {
		return nil, ErrLoopStopped
	}

	select {
	case res := <-ch:
		return res.data, res.err
	case <-ctx.Done():
		return nil, fmt.Errorf("canceled: %w", ctx.Err())
	case <-l.ctx.Done():
		return nil, ErrLoopStopped
	}
}

func safeRun(fn func()) {
	defer RecoverFromError(nil)
	fn()
}
