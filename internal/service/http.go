package service

import (
	nethttp "net/http"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/transport/http"
	v1 "github.com/yola1107/cardduel/api/cardgame/v1"
	"github.com/yola1107/cardduel/internal/conf"
)

// Health answers the liveness probe.
func (s *Service) Health(ctx http.Context) error {
	return ctx.Result(nethttp.StatusOK, &v1.Health{OK: true, Project: conf.Project})
}

// ListRooms returns a snapshot of the active rooms taken on the loop.
func (s *Service) ListRooms(ctx http.Context) error {
	data, err := s.uc.RoomListJSON(ctx)
	if err != nil {
		s.log.Warnf("list rooms: %v", err)
		return errors.ServiceUnavailable("LOOP_UNAVAILABLE", "Room loop unavailable.")
	}
	return ctx.Blob(nethttp.StatusOK, "application/json", data)
}
