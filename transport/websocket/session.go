package websocket

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/yola1107/cardduel/library/xgo"
)

var (
	errSessionClosed = errors.New("session: closed send")
	errSendChanFull  = errors.New("session: send channel full")
	errSendEmpty     = errors.New("session: send empty payload")
)

// Handler receives session lifecycle events and inbound text frames.
type Handler interface {
	// OnSessionOpen is called once the upgrade succeeded, before any frame is read.
	OnSessionOpen(sess *Session)
	// OnSessionClose is called exactly once when the session is torn down.
	OnSessionClose(sess *Session)
	// DispatchMessage handles one inbound frame.
	DispatchMessage(sess *Session, data []byte) error
}

type SessionConfig struct {
	WriteTimeout time.Duration
	PingInterval time.Duration
	ReadDeadline time.Duration
	SendChanSize int
}

func defaultSessionConfig() *SessionConfig {
	return &SessionConfig{
		WriteTimeout: 10 * time.Second,
		PingInterval: 15 * time.Second,
		ReadDeadline: 60 * time.Second,
		SendChanSize: 128,
	}
}

type Session struct {
	id         string
	h          Handler
	connMu     sync.Mutex
	conn       *websocket.Conn
	config     *SessionConfig
	sendChan   chan []byte
	closed     atomic.Bool
	lastActive atomic.Value // time.Time
	ctx        context.Context
	cancel     context.CancelFunc
	sendMu     sync.Mutex
}

func NewSession(h Handler, conn *websocket.Conn, config *SessionConfig) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		id:       uuid.New().String(),
		h:        h,
		conn:     conn,
		config:   config,
		sendChan: make(chan []byte, config.SendChanSize),
		ctx:      ctx,
		cancel:   cancel,
	}
	s.lastActive.Store(time.Now())
	conn.SetPongHandler(func(string) error {
		s.lastActive.Store(time.Now())
		return nil
	})
	s.h.OnSessionOpen(s)
	go s.readPump()
	go s.writePump()
	go s.heartbeat()
	return s
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) GetRemoteIP() string {
	return s.conn.RemoteAddr().String()
}

func (s *Session) LastActive() time.Time {
	return s.lastActive.Load().(time.Time)
}

func (s *Session) Closed() bool {
	return s.closed.Load()
}

// Send queues a text frame. It never blocks: a full queue means the peer stopped reading.
func (s *Session) Send(message []byte) error {
	if len(message) == 0 {
		return errSendEmpty
	}

	s.sendMu.Lock()
	defer s.sendMu.Unlock()

	if s.Closed() {
		return errSessionClosed
	}
	select {
	case s.sendChan <- message:
		return nil
	case <-s.ctx.Done():
		return errSessionClosed
	default:
		log.Warnf("sessionID=%q send queue full (%d)", s.id, cap(s.sendChan))
		return errSendChanFull
	}
}

func (s *Session) readPump() {
	defer xgo.RecoverFromError(nil)
	defer s.Close(false)

	for {
		if err := s.conn.SetReadDeadline(time.Now().Add(s.config.ReadDeadline)); err != nil {
			log.Errorf("sessionID=%q set read deadline error: %v", s.id, err)
			return
		}

		msgType, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				log.Warnf("sessionID=%q unexpected close: %v", s.id, err)
			}
			return
		}

		s.lastActive.Store(time.Now())

		switch msgType {
		case websocket.TextMessage, websocket.BinaryMessage:
			if err := s.h.DispatchMessage(s, data); err != nil {
				log.Debugf("sessionID=%q dispatch: %v", s.id, err)
			}
		default:
			log.Warnf("sessionID=%q unsupported message type: %d", s.id, msgType)
		}
	}
}

func (s *Session) writePump() {
	for {
		select {
		case <-s.ctx.Done():
			return
		case msg, ok := <-s.sendChan:
			if !ok {
				return
			}
			if err := s.writeTextMessage(msg); err != nil {
				if errors.Is(err, errSessionClosed) || strings.Contains(err.Error(), "close sent") {
					log.Infof("sessionID=%q write aborted, reason: %v", s.id, err)
				} else {
					log.Errorf("sessionID=%q write error: %v", s.id, err)
				}
				s.Close(true)
				return
			}
		}
	}
}

func (s *Session) heartbeat() {
	ticker := time.NewTicker(s.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return

		case <-ticker.C:
			if s.Closed() {
				return
			}
			if time.Since(s.LastActive()) > s.config.ReadDeadline {
				log.Warnf("sessionID=%q heartbeat timeout", s.id)
				s.Close(true)
				return
			}
			s.writeControl(websocket.PingMessage, nil)
		}
	}
}

// Close tears the session down once; later calls return false.
func (s *Session) Close(force bool) bool {
	if !s.closed.CompareAndSwap(false, true) {
		return false
	}

	s.closeNotify(force)

	s.cancel()

	s.sendMu.Lock()
	close(s.sendChan)
	s.sendMu.Unlock()

	s.connMu.Lock()
	_ = s.conn.Close()
	s.connMu.Unlock()

	s.h.OnSessionClose(s)
	return true
}

func (s *Session) closeNotify(force bool) {
	reason := "Normal Closure"
	if force {
		reason = "Force Closure"
		if time.Since(s.LastActive()) > s.config.ReadDeadline {
			reason = "Force Closure (Heartbeat timeout)"
		}
	}
	message := websocket.FormatCloseMessage(websocket.CloseNormalClosure, reason)
	s.writeControl(websocket.CloseMessage, message)
}

func (s *Session) writeControl(msgType int, data []byte) {
	s.connMu.Lock()
	defer s.connMu.Unlock()
	_ = s.conn.WriteControl(msgType, data, time.Now().Add(s.config.WriteTimeout))
}

func (s *Session) writeTextMessage(data []byte) error {
	s.connMu.Lock()
	defer s.connMu.Unlock()
	if s.Closed() {
		return errSessionClosed
	}
	if err := s.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout)); err != nil {
		return err
	}
	return s.conn.WriteMessage(websocket.TextMessage, data)
}
