package service

import (
	"encoding/json"

	v1 "github.com/yola1107/cardduel/api/cardgame/v1"
	"github.com/yola1107/cardduel/internal/biz/player"
	"github.com/yola1107/cardduel/internal/biz/room"
	"github.com/yola1107/cardduel/transport/websocket"
)

const connectedMessage = "ws ready"

type handlerFunc func(s *Service, sess player.Sender, payload json.RawMessage) error

var handlers = map[string]handlerFunc{
	v1.TypeStartBot:      (*Service).onStartBot,
	v1.TypeCreateRoom:    (*Service).onCreateRoom,
	v1.TypeCreateRoomBot: (*Service).onCreateRoomBot,
	v1.TypeJoinRoom:      (*Service).onJoinRoom,
	v1.TypePlayCards:     (*Service).onPlayCards,
	v1.TypeRoundConfirm:  (*Service).onRoundConfirm,
	v1.TypeRematch:       (*Service).onRematch,
}

// OnSessionOpen greets the connection.
func (s *Service) OnSessionOpen(sess *websocket.Session) {
	s.log.Debugf("session open. id:%s ip:%s", sess.ID(), sess.GetRemoteIP())
	room.SendPacket(sess, v1.TypeConnected, &v1.Connected{Message: connectedMessage})
}

// OnSessionClose removes the connection from its rooms on the loop.
func (s *Service) OnSessionClose(sess *websocket.Session) {
	id := sess.ID()
	s.log.Debugf("session close. id:%s", id)
	if !s.uc.Post(func() { s.disconnect(id) }) {
		s.log.Warnf("disconnect of session:%s dropped, loop stopped", id)
	}
}

// DispatchMessage queues one inbound frame on the loop.
func (s *Service) DispatchMessage(sess *websocket.Session, data []byte) error {
	if !s.uc.Post(func() { s.handle(sess, data) }) {
		return errLoopStopped
	}
	return nil
}

// handle decodes the envelope and runs its handler. Failures are answered with an error frame.
func (s *Service) handle(sess player.Sender, data []byte) {
	if !json.Valid(data) {
		room.SendError(sess, room.ErrInvalidJSON)
		return
	}
	var env v1.Envelope
	if err := json.Unmarshal(data, &env); err != nil || env.Type == "" {
		room.SendError(sess, room.ErrMissingType)
		return
	}
	h, ok := handlers[env.Type]
	if !ok {
		room.SendError(sess, room.ErrUnknownType(env.Type))
		return
	}
	if err := h(s, sess, env.Payload); err != nil {
		s.log.Debugf("%s from session:%s: %v", env.Type, sess.ID(), err)
		room.SendError(sess, err)
	}
}

// decode fills v from payload. An absent payload leaves v zero.
func decode(payload json.RawMessage, v any) error {
	if len(payload) == 0 || string(payload) == "null" {
		return nil
	}
	if err := json.Unmarshal(payload, v); err != nil {
		return room.ErrInvalidJSON
	}
	return nil
}

func (s *Service) onStartBot(sess player.Sender, payload json.RawMessage) error {
	var req v1.StartBotReq
	if err := decode(payload, &req); err != nil {
		return err
	}
	if s.ownsLiveRoom(sess.ID()) {
		return room.ErrRoomExists
	}
	r, _, err := s.uc.Rooms().OnStartBot(sess, &req)
	if err != nil {
		return err
	}
	s.bind(sess.ID(), r.ID)
	return nil
}

func (s *Service) onCreateRoom(sess player.Sender, payload json.RawMessage) error {
	var req v1.CreateRoomReq
	if err := decode(payload, &req); err != nil {
		return err
	}
	r, _, err := s.uc.Rooms().OnCreateRoom(sess, &req)
	if err != nil {
		return err
	}
	s.bind(sess.ID(), r.ID)
	return nil
}

func (s *Service) onCreateRoomBot(sess player.Sender, payload json.RawMessage) error {
	var req v1.CreateRoomBotReq
	if err := decode(payload, &req); err != nil {
		return err
	}
	r, _, err := s.uc.Rooms().OnCreateRoomBot(sess, &req)
	if err != nil {
		return err
	}
	s.bind(sess.ID(), r.ID)
	return nil
}

func (s *Service) onJoinRoom(sess player.Sender, payload json.RawMessage) error {
	var req v1.JoinRoomReq
	if err := decode(payload, &req); err != nil {
		return err
	}
	r, _, err := s.uc.Rooms().OnJoinRoom(sess, &req)
	if err != nil {
		return err
	}
	s.bind(sess.ID(), r.ID)
	return nil
}

func (s *Service) onPlayCards(_ player.Sender, payload json.RawMessage) error {
	var req v1.PlayCardsReq
	if err := decode(payload, &req); err != nil {
		return err
	}
	return s.uc.Rooms().OnPlayCards(&req)
}

func (s *Service) onRoundConfirm(_ player.Sender, payload json.RawMessage) error {
	var req v1.RoundConfirmReq
	if err := decode(payload, &req); err != nil {
		return err
	}
	return s.uc.Rooms().OnRoundConfirm(&req)
}

func (s *Service) onRematch(_ player.Sender, payload json.RawMessage) error {
	var req v1.RematchReq
	if err := decode(payload, &req); err != nil {
		return err
	}
	return s.uc.Rooms().OnRematch(&req)
}
