package room

import (
	"strings"

	"github.com/go-kratos/kratos/v2/log"
	v1 "github.com/yola1107/cardduel/api/cardgame/v1"
	"github.com/yola1107/cardduel/internal/biz/player"
)

// OnStartBot opens a room against the robot. A blank name falls back to DefaultName.
func (m *Manager) OnStartBot(sess player.Sender, req *v1.StartBotReq) (*Room, *player.Player, error) {
	name := strings.TrimSpace(req.PlayerName)
	if name == "" {
		name = DefaultName
	}
	return m.openRobotRoom(sess, name, req.PlayerID)
}

func (m *Manager) OnCreateRoomBot(sess player.Sender, req *v1.CreateRoomBotReq) (*Room, *player.Player, error) {
	name := strings.TrimSpace(req.PlayerName)
	if name == "" {
		return nil, nil, ErrNameRequired
	}
	return m.openRobotRoom(sess, name, req.PlayerID)
}

func (m *Manager) openRobotRoom(sess player.Sender, name, playerID string) (*Room, *player.Player, error) {
	r, err := m.create("")
	if err != nil {
		return nil, nil, err
	}

	p := r.newPlayer(&player.Raw{ID: playerID, Name: name, Session: sess})
	robot := r.newPlayer(&player.Raw{Name: m.repo.GetRoomConfig().Robot.Name, IsRobot: true})
	r.ThrowInto(p)
	r.ThrowInto(robot)
	r.status = StPlaying

	r.sendRoomCreated(p)
	r.broadcastRoomState()
	r.startRound()
	r.aiLogic.schedule()

	m.repo.PublishEvent(r.event(EventRoomCreated, ""))
	return r, p, nil
}

// OnCreateRoom opens a room and waits for a second human.
func (m *Manager) OnCreateRoom(sess player.Sender, req *v1.CreateRoomReq) (*Room, *player.Player, error) {
	name := strings.TrimSpace(req.PlayerName)
	if name == "" {
		return nil, nil, ErrNameRequired
	}

	r, err := m.create(req.RoomID)
	if err != nil {
		return nil, nil, err
	}
	p := r.newPlayer(&player.Raw{ID: req.PlayerID, Name: name, Session: sess})
	r.ThrowInto(p)
	r.status = StWaiting

	r.sendRoomCreated(p)
	r.broadcastRoomState()

	m.repo.PublishEvent(r.event(EventRoomCreated, ""))
	return r, p, nil
}

// OnJoinRoom seats a human in an existing room and deals once both seats are taken.
func (m *Manager) OnJoinRoom(sess player.Sender, req *v1.JoinRoomReq) (*Room, *player.Player, error) {
	if req.RoomID == "" {
		return nil, nil, ErrRoomIDRequired
	}
	name := strings.TrimSpace(req.PlayerName)
	if name == "" {
		return nil, nil, ErrNameRequired
	}

	r := m.Get(req.RoomID)
	switch {
	case r == nil:
		return nil, nil, ErrRoomNotFound
	case r.status == StFinished:
		return nil, nil, ErrRoomFinished
	case r.IsFull():
		return nil, nil, ErrRoomFull
	case r.GetPlayer(strings.TrimSpace(req.PlayerID)) != nil:
		return nil, nil, ErrPlayerExists
	}

	p := r.newPlayer(&player.Raw{ID: req.PlayerID, Name: name, Session: sess})
	r.ThrowInto(p)
	if r.IsFull() {
		r.status = StPlaying
	} else {
		r.status = StWaiting
	}

	r.sendRoomJoined(p)
	r.broadcastRoomState()

	if r.status == StPlaying {
		r.beginMatch()
	}
	return r, p, nil
}

// OnPlayCards stores a human submission and resolves the round when both seats are in.
// Submissions against a room that is not in play are dropped without an answer.
func (m *Manager) OnPlayCards(req *v1.PlayCardsReq) error {
	if req.RoomID == "" || req.PlayerID == "" {
		return ErrIDsRequired
	}
	r := m.Get(req.RoomID)
	if r == nil {
		return ErrRoomNotFound
	}
	if r.status != StPlaying {
		return nil
	}
	if req.Round != 0 && req.Round != r.round {
		return ErrRoundMismatch
	}

	p := r.GetPlayer(req.PlayerID)
	switch {
	case p == nil:
		return ErrNotInRoom
	case p.IsRobot():
		return ErrBotAction
	case r.hasSubmitted(p.GetPlayerID()):
		return ErrAlreadySubmitted
	case r.awaitingConfirm:
		return ErrAwaitingConfirm
	}

	seq, err := ResolvePicks(p.GetHand(), req.Picks, r.pickSize)
	if err != nil {
		return err
	}

	r.submit(p, seq)
	r.broadcastRoomState()

	if robot := r.GetRobot(); robot != nil && !r.hasSubmitted(robot.GetPlayerID()) {
		r.aiLogic.schedule()
	}
	r.maybeResolveRound()
	return nil
}

// OnRoundConfirm acknowledges the last result. The round advances once every human confirmed.
func (m *Manager) OnRoundConfirm(req *v1.RoundConfirmReq) error {
	if req.RoomID == "" || req.PlayerID == "" {
		return ErrIDsRequired
	}
	r := m.Get(req.RoomID)
	switch {
	case r == nil:
		return ErrRoomNotFound
	case r.status == StFinished:
		return ErrGameFinished
	case !r.awaitingConfirm:
		return ErrNotAwaiting
	case req.Round != 0 && req.Round != r.round:
		return ErrRoundMismatch
	}

	p := r.GetPlayer(req.PlayerID)
	if p == nil || p.IsRobot() {
		return ErrInvalidPlayer
	}

	r.confirmed[p.GetPlayerID()] = struct{}{}
	if !r.allConfirmed() {
		return nil
	}
	r.nextRound()
	return nil
}

// OnRematch resets a room that is not in play. Robots agree at once; two humans must both ask.
func (m *Manager) OnRematch(req *v1.RematchReq) error {
	if req.RoomID == "" || req.PlayerID == "" {
		return ErrIDsRequired
	}
	r := m.Get(req.RoomID)
	switch {
	case r == nil:
		return ErrRoomNotFound
	case r.status == StPlaying:
		return ErrRematchPlaying
	case r.GetPlayer(req.PlayerID) == nil:
		return ErrNotInRoom
	}

	if r.HasRobot() {
		r.resetMatch()
		return nil
	}

	r.rematchReady[req.PlayerID] = struct{}{}
	r.status = StWaiting
	r.broadcastRoomState()
	if len(r.rematchReady) < MaxPlayers {
		return nil
	}
	r.resetMatch()
	return nil
}

// OnLeave removes the seats bound to sessionID from roomID and tears the room down
// when no human is left.
func (m *Manager) OnLeave(sessionID, roomID string) {
	r := m.Get(roomID)
	if r == nil {
		return
	}
	teardown, gone := r.leave(sessionID)
	if len(gone) == 0 {
		return
	}
	if teardown {
		m.remove(r)
		return
	}
	log.Debugf("room:%s left by %d seat(s)", r.ID, len(gone))
}
