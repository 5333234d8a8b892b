package biz

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/wire"
	v1 "github.com/yola1107/cardduel/api/cardgame/v1"
	"github.com/yola1107/cardduel/internal/biz/room"
	"github.com/yola1107/cardduel/internal/conf"
	"github.com/yola1107/cardduel/library/work"
)

// ProviderSet is biz providers.
var ProviderSet = wire.NewSet(NewUsecase)

var _ room.Repo = (*Usecase)(nil)

const shutdownWait = 3 * time.Second

// EventRepo delivers room lifecycle events downstream. Publish must not block.
type EventRepo interface {
	Publish(e *room.Event)
}

// Usecase owns the work loop and the room registry. Room state is only touched on the loop.
type Usecase struct {
	repo EventRepo
	log  *log.Helper

	rc *conf.Room
	ws work.IWorkStore
	rm *room.Manager
}

// NewUsecase starts ws and builds the registry on top of it.
func NewUsecase(repo EventRepo, c *conf.Room, ws work.IWorkStore, logger log.Logger) (*Usecase, func(), error) {
	uc := &Usecase{
		repo: repo,
		log:  log.NewHelper(logger),
		rc:   c,
		ws:   ws,
	}
	uc.rm = room.NewManager(uc)

	cleanup := func() {
		uc.log.Info("closing the room resources")
		ctx, cancel := context.WithTimeout(context.Background(), shutdownWait)
		defer cancel()
		if _, err := ws.PostAndWaitCtx(ctx, func() ([]byte, error) {
			uc.rm.Close()
			return nil, nil
		}); err != nil {
			uc.log.Warnf("close rooms: %v", err)
		}
		ws.Stop()
	}
	return uc, cleanup, errors.Join(ws.Start())
}

func (uc *Usecase) GetTimer() work.Scheduler {
	return uc.ws
}

func (uc *Usecase) GetRoomConfig() *conf.Room {
	return uc.rc
}

func (uc *Usecase) PublishEvent(e *room.Event) {
	uc.repo.Publish(e)
}

// Post queues job on the room loop.
func (uc *Usecase) Post(job func()) bool {
	return uc.ws.Post(job)
}

// Rooms is the registry. Callers must be running on the loop.
func (uc *Usecase) Rooms() *room.Manager {
	return uc.rm
}

// RoomListJSON snapshots the active rooms on the loop and returns the encoded list.
func (uc *Usecase) RoomListJSON(ctx context.Context) ([]byte, error) {
	return uc.ws.PostAndWaitCtx(ctx, func() ([]byte, error) {
		return json.Marshal(&v1.RoomList{Rooms: uc.rm.Summaries()})
	})
}
