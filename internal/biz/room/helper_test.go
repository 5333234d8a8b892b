package room

import (
	"encoding/json"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	v1 "github.com/yola1107/cardduel/api/cardgame/v1"
	"github.com/yola1107/cardduel/internal/conf"
	"github.com/yola1107/cardduel/library/work"
)

/*
	fake scheduler: tasks only run when the test fires them
*/

type fakeTask struct {
	delay time.Duration
	f     func()
}

type fakeTimer struct {
	next  int64
	tasks map[int64]*fakeTask
}

func newFakeTimer() *fakeTimer {
	return &fakeTimer{tasks: make(map[int64]*fakeTask)}
}

func (t *fakeTimer) Len() int              { return len(t.tasks) }
func (t *fakeTimer) Running() int32        { return 0 }
func (t *fakeTimer) Monitor() work.Monitor { return work.Monitor{Len: len(t.tasks)} }
func (t *fakeTimer) CancelAll()            { clear(t.tasks) }
func (t *fakeTimer) Stop()                 { clear(t.tasks) }
func (t *fakeTimer) Cancel(id int64)       { delete(t.tasks, id) }

func (t *fakeTimer) Once(delay time.Duration, f func()) int64 {
	t.next++
	t.tasks[t.next] = &fakeTask{delay: delay, f: f}
	return t.next
}

func (t *fakeTimer) Forever(interval time.Duration, f func()) int64 {
	return t.Once(interval, f)
}

// fireAll runs every pending task in id order, as the loop would.
func (t *fakeTimer) fireAll() int {
	ids := make([]int64, 0, len(t.tasks))
	for id := range t.tasks {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		task, ok := t.tasks[id]
		if !ok {
			continue
		}
		delete(t.tasks, id)
		task.f()
	}
	return len(ids)
}

/*
	fake repo
*/

type fakeRepo struct {
	timer  *fakeTimer
	cfg    *conf.Room
	events []*Event
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{timer: newFakeTimer(), cfg: conf.DefaultBootstrap().Room}
}

func (r *fakeRepo) GetTimer() work.Scheduler  { return r.timer }
func (r *fakeRepo) GetRoomConfig() *conf.Room { return r.cfg }
func (r *fakeRepo) PublishEvent(e *Event)     { r.events = append(r.events, e) }

func (r *fakeRepo) eventTypes() []string {
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

// singleDeck makes every player's deck hold only c.
func (r *fakeRepo) singleDeck(c string) {
	d := &conf.Room_Deck{}
	switch c {
	case "A":
		d.Attack = 15
	case "D":
		d.Defend = 15
	default:
		d.Recover = 15
	}
	r.cfg.Game.Deck = d
}

/*
	fake session
*/

type fakeSession struct {
	id     string
	closed bool
	frames []v1.Envelope
}

func newFakeSession(id string) *fakeSession {
	return &fakeSession{id: id}
}

func (s *fakeSession) ID() string   { return s.id }
func (s *fakeSession) Closed() bool { return s.closed }

func (s *fakeSession) Send(data []byte) error {
	var env v1.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}
	s.frames = append(s.frames, env)
	return nil
}

func (s *fakeSession) types() []string {
	out := make([]string, 0, len(s.frames))
	for _, f := range s.frames {
		out = append(out, f.Type)
	}
	return out
}

func (s *fakeSession) count(typ string) int {
	n := 0
	for _, f := range s.frames {
		if f.Type == typ {
			n++
		}
	}
	return n
}

func (s *fakeSession) reset() {
	s.frames = nil
}

// last decodes the most recent frame of typ into v.
func (s *fakeSession) last(t *testing.T, typ string, v any) {
	t.Helper()
	for i := len(s.frames) - 1; i >= 0; i-- {
		if s.frames[i].Type == typ {
			require.NoError(t, json.Unmarshal(s.frames[i].Payload, v))
			return
		}
	}
	t.Fatalf("no %s frame in %v", typ, s.types())
}
