package room

import (
	"github.com/yola1107/cardduel/internal/conf"
	"github.com/yola1107/cardduel/library/work"
)

// Repo is what a room needs from its owner. Every call happens on the work loop.
type Repo interface {
	GetTimer() work.Scheduler
	GetRoomConfig() *conf.Room
	PublishEvent(e *Event)
}
