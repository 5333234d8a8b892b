package data

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/yola1107/cardduel/internal/biz"
	"github.com/yola1107/cardduel/internal/biz/room"
	"github.com/yola1107/cardduel/library/xgo"
)

const (
	publishTimeout = 2 * time.Second
	eventQueueSize = 256
)

type publishFunc func(ctx context.Context, channel string, payload []byte) error

// eventRepo drains room events to the redis channel from its own goroutine, so the
// room loop never waits on the network.
type eventRepo struct {
	log     *log.Helper
	channel string
	publish publishFunc

	queue   chan *room.Event
	once    sync.Once
	done    chan struct{}
	stopped chan struct{}
}

// NewEventRepo returns a publisher on d's redis client, or a no-op one when redis is disabled.
func NewEventRepo(d *Data, logger log.Logger) (biz.EventRepo, func()) {
	if d.redis == nil {
		return nopEventRepo{}, func() {}
	}
	rdb := d.redis
	r := newEventRepo(d.channel, func(ctx context.Context, channel string, payload []byte) error {
		return rdb.Publish(ctx, channel, payload).Err()
	}, logger)
	return r, r.close
}

func newEventRepo(channel string, publish publishFunc, logger log.Logger) *eventRepo {
	r := &eventRepo{
		log:     log.NewHelper(logger),
		channel: channel,
		publish: publish,
		queue:   make(chan *room.Event, eventQueueSize),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	xgo.SafeGo(r.run)
	return r
}

// Publish enqueues e. Events are dropped when the queue is full or closed.
func (r *eventRepo) Publish(e *room.Event) {
	if e == nil {
		return
	}
	select {
	case <-r.done:
		return
	default:
	}
	select {
	case r.queue <- e:
	default:
		r.log.Warnf("event queue full, drop %s room:%s", e.Type, e.RoomID)
	}
}

func (r *eventRepo) run() {
	defer close(r.stopped)
	for {
		select {
		case <-r.done:
			r.drain()
			return
		case e := <-r.queue:
			r.send(e)
		}
	}
}

func (r *eventRepo) drain() {
	for {
		select {
		case e := <-r.queue:
			r.send(e)
		default:
			return
		}
	}
}

func (r *eventRepo) send(e *room.Event) {
	defer xgo.RecoverFromError(nil)

	payload, err := json.Marshal(e)
	if err != nil {
		r.log.Errorf("marshal event %s: %v", e.Type, err)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	if err := r.publish(ctx, r.channel, payload); err != nil {
		r.log.Warnf("publish %s room:%s: %v", e.Type, e.RoomID, err)
	}
}

// close stops intake and waits until queued events are sent.
func (r *eventRepo) close() {
	r.once.Do(func() { close(r.done) })
	<-r.stopped
}

type nopEventRepo struct{}

func (nopEventRepo) Publish(*room.Event) {}
