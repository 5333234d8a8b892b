package room

import (
	"fmt"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/samber/lo"
	"github.com/yola1107/cardduel/internal/biz/card"
	"github.com/yola1107/cardduel/internal/biz/player"
)

// Room is one two-seat duel. It is only touched from the work loop.
type Room struct {
	ID     string
	repo   Repo
	closed bool

	status  Status
	round   int32
	seats   []*player.Player // seat order, p1 first
	mLog    *Log
	aiLogic RobotLogic

	actions         map[string][]card.Card // submissions of the in-flight round
	pickSize        int                    // pick size the current hands were dealt with
	awaitingConfirm bool
	confirmed       map[string]struct{}
	rematchReady    map[string]struct{}
}

func NewRoom(id string, repo Repo) *Room {
	r := &Room{
		ID:           id,
		repo:         repo,
		status:       StWaiting,
		round:        1,
		seats:        make([]*player.Player, 0, MaxPlayers),
		mLog:         NewRoomLog(id, repo.GetRoomConfig().LogCache),
		actions:      make(map[string][]card.Card),
		confirmed:    make(map[string]struct{}),
		rematchReady: make(map[string]struct{}),
	}
	r.aiLogic.init(r)
	return r
}

func (r *Room) Desc() string {
	return fmt.Sprintf("(RoomID:%s St:%v Round:%d Players:%d Submitted:%d Await:%v Bot:%v BotPending:%v)",
		r.ID, r.status, r.round, len(r.seats), len(r.actions), r.awaitingConfirm, r.HasRobot(), r.aiLogic.Pending())
}

func (r *Room) GetStatus() Status {
	return r.status
}

func (r *Room) GetRound() int32 {
	return r.round
}

func (r *Room) IsFull() bool {
	return len(r.seats) >= MaxPlayers
}

// PickSize is the pick size the current hands were dealt with.
func (r *Room) PickSize() int {
	return r.pickSize
}

func (r *Room) IsAwaitingConfirm() bool {
	return r.awaitingConfirm
}

// GetPlayers returns the seats in order.
func (r *Room) GetPlayers() []*player.Player {
	return r.seats
}

func (r *Room) GetPlayer(playerID string) *player.Player {
	p, _ := lo.Find(r.seats, func(p *player.Player) bool { return p.GetPlayerID() == playerID })
	return p
}

func (r *Room) GetRobot() *player.Player {
	p, _ := lo.Find(r.seats, func(p *player.Player) bool { return p.IsRobot() })
	return p
}

func (r *Room) HasRobot() bool {
	return r.GetRobot() != nil
}

// HumanCount counts seats held by people.
func (r *Room) HumanCount() int {
	return lo.CountBy(r.seats, func(p *player.Player) bool { return !p.IsRobot() })
}

func (r *Room) opponent(p *player.Player) *player.Player {
	o, _ := lo.Find(r.seats, func(e *player.Player) bool { return e != p })
	return o
}

func (r *Room) hasSubmitted(playerID string) bool {
	_, ok := r.actions[playerID]
	return ok
}

func (r *Room) comp() card.Composition {
	d := r.repo.GetRoomConfig().Game.Deck
	return card.Composition{Attack: d.Attack, Defend: d.Defend, Recover: d.Recover}
}

func (r *Room) newPlayer(raw *player.Raw) *player.Player {
	return player.New(raw, r.comp(), r.repo.GetRoomConfig().Game.InitialHP)
}

// ThrowInto seats p at the end of the seat list.
func (r *Room) ThrowInto(p *player.Player) bool {
	if p == nil || r.IsFull() {
		return false
	}
	r.seats = append(r.seats, p)
	p.SetRoomID(r.ID)
	p.SetChairID(int32(len(r.seats) - 1))

	r.mLog.userEnter(p, len(r.seats))
	log.Infof("EnterRoom. p:%s room:%s", p.Desc(), r.Desc())
	return true
}

// ThrowOff removes every seat bound to the session and returns them.
func (r *Room) ThrowOff(sessionID string) []*player.Player {
	gone, kept := lo.FilterReject(r.seats, func(p *player.Player, _ int) bool { return p.IsSession(sessionID) })
	if len(gone) == 0 {
		return nil
	}
	r.seats = kept
	for i, p := range r.seats {
		p.SetChairID(int32(i))
	}
	for _, p := range gone {
		r.mLog.userExit(p, len(r.seats))
		log.Infof("ExitRoom. p:%s room:%s", p.Desc(), r.Desc())
		p.SetRoomID("")
	}
	return gone
}

// Close cancels the robot timer and releases the journal. The room is dead afterwards.
func (r *Room) Close() {
	if r.closed {
		return
	}
	r.closed = true
	r.aiLogic.cancel()
	if err := r.mLog.Close(); err != nil {
		log.Warnf("close room log. room:%s err:%v", r.ID, err)
	}
}

func (r *Room) event(typ, result string) *Event {
	return &Event{
		Type:    typ,
		RoomID:  r.ID,
		Round:   r.round,
		Result:  result,
		Players: lo.Map(r.seats, func(p *player.Player, _ int) string { return p.GetPlayerID() }),
		HasBot:  r.HasRobot(),
		At:      time.Now().UnixMilli(),
	}
}
