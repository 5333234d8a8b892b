package service

import (
	"errors"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/wire"
	"github.com/samber/lo"
	"github.com/yola1107/cardduel/internal/biz"
	"github.com/yola1107/cardduel/transport/websocket"
)

// ProviderSet is service providers.
var ProviderSet = wire.NewSet(NewService)

var _ websocket.Handler = (*Service)(nil)

var errLoopStopped = errors.New("service: room loop stopped")

// Service is the session gateway. It decodes frames, posts them onto the room loop and
// remembers which rooms each connection has joined.
type Service struct {
	log *log.Helper
	uc  *biz.Usecase

	// sessionID -> room ids, only touched on the loop
	bindings map[string][]string
}

func NewService(uc *biz.Usecase, logger log.Logger) *Service {
	return &Service{
		log:      log.NewHelper(logger),
		uc:       uc,
		bindings: make(map[string][]string),
	}
}

func (s *Service) bind(sessionID, roomID string) {
	s.bindings[sessionID] = lo.Uniq(append(s.bindings[sessionID], roomID))
}

// ownsLiveRoom reports whether the connection still sits in a room that exists.
func (s *Service) ownsLiveRoom(sessionID string) bool {
	return lo.SomeBy(s.bindings[sessionID], func(id string) bool { return s.uc.Rooms().Get(id) != nil })
}

// disconnect drops the connection from every room it joined.
func (s *Service) disconnect(sessionID string) {
	roomIDs := s.bindings[sessionID]
	delete(s.bindings, sessionID)
	for _, id := range roomIDs {
		s.uc.Rooms().OnLeave(sessionID, id)
	}
}
