package room

import (
	"regexp"
	"slices"
	"strconv"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/samber/lo"
	v1 "github.com/yola1107/cardduel/api/cardgame/v1"
	"github.com/yola1107/cardduel/library/ext"
)

var roomIDPattern = regexp.MustCompile(`^\d{4}$`)

// Manager is the registry of active rooms. It is only touched from the work loop.
type Manager struct {
	repo  Repo
	rooms map[string]*Room
	order []string // creation order, for listing
}

func NewManager(repo Repo) *Manager {
	return &Manager{
		repo:  repo,
		rooms: make(map[string]*Room),
	}
}

func (m *Manager) Len() int {
	return len(m.rooms)
}

func (m *Manager) Get(roomID string) *Room {
	return m.rooms[roomID]
}

// Summaries lists active rooms in creation order.
func (m *Manager) Summaries() []*v1.RoomSummary {
	return lo.FilterMap(m.order, func(id string, _ int) (*v1.RoomSummary, bool) {
		r, ok := m.rooms[id]
		if !ok {
			return nil, false
		}
		return r.Summary(), true
	})
}

// newRoomID honours requested when it is a free 4-digit id, otherwise picks a random free one.
func (m *Manager) newRoomID(requested string) (string, error) {
	if roomIDPattern.MatchString(requested) {
		if _, used := m.rooms[requested]; !used {
			return requested, nil
		}
	}
	for i := 0; i < roomIDMaxProbes; i++ {
		id := strconv.Itoa(ext.RandIntInclusive(roomIDMin, roomIDMax))
		if _, used := m.rooms[id]; !used {
			return id, nil
		}
	}
	for n := roomIDMin; n <= roomIDMax; n++ {
		if id := strconv.Itoa(n); m.rooms[id] == nil {
			return id, nil
		}
	}
	return "", ErrNoRoomID
}

func (m *Manager) create(requested string) (*Room, error) {
	id, err := m.newRoomID(requested)
	if err != nil {
		return nil, err
	}
	r := NewRoom(id, m.repo)
	m.rooms[id] = r
	m.order = append(m.order, id)
	return r, nil
}

// remove tears the room down and drops it from the registry.
func (m *Manager) remove(r *Room) {
	if m.rooms[r.ID] != r {
		return
	}
	m.repo.PublishEvent(r.event(EventRoomClosed, ""))
	r.Close()
	delete(m.rooms, r.ID)
	if i := slices.Index(m.order, r.ID); i >= 0 {
		m.order = slices.Delete(m.order, i, i+1)
	}
	log.Infof("RoomClosed. room:%s active:%d", r.ID, len(m.rooms))
}

// Close tears down every room. Used on shutdown.
func (m *Manager) Close() {
	for _, id := range slices.Clone(m.order) {
		if r := m.rooms[id]; r != nil {
			m.remove(r)
		}
	}
}
