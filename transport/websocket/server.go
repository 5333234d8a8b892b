package websocket

import (
	"context"
	"net/http"
	"sync/atomic"

	"dario.cat/mergo"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/transport"
	"github.com/gorilla/websocket"
)

var (
	_ transport.Server = (*Server)(nil)
	_ http.Handler     = (*Server)(nil)
)

// ServerOption is a Websocket server option.
type ServerOption func(*Server)

func Path(path string) ServerOption {
	return func(o *Server) { o.path = path }
}
func MaxConnLimit(maxConnLimit int32) ServerOption {
	return func(o *Server) { o.maxConnLimit = maxConnLimit }
}

// SessionConf sets the per-session config. Zero fields keep their defaults.
func SessionConf(c *SessionConfig) ServerOption {
	return func(o *Server) {
		conf := *c
		if err := mergo.Merge(&conf, defaultSessionConfig()); err != nil {
			log.Warnf("[websocket] session config merge: %v", err)
		}
		o.sessionConf = &conf
	}
}

// CheckOrigin replaces the upgrader's origin policy. The default accepts every origin.
func CheckOrigin(fn func(r *http.Request) bool) ServerOption {
	return func(o *Server) { o.upgrader.CheckOrigin = fn }
}

// Server upgrades HTTP requests on its path and owns the resulting sessions.
// It does not listen by itself: mount it on an HTTP server with Handle(srv.Path(), srv).
type Server struct {
	path         string
	maxConnLimit int32
	running      atomic.Bool
	sessionConf  *SessionConfig
	upgrader     *websocket.Upgrader
	sessionMgr   *SessionManager
	h            Handler
}

// NewServer creates a Websocket server by options.
func NewServer(opts ...ServerOption) *Server {
	srv := &Server{
		path:         "/ws",
		maxConnLimit: 10000,
		sessionConf:  defaultSessionConfig(),
		upgrader: &websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		sessionMgr: NewSessionManager(),
	}
	for _, o := range opts {
		o(srv)
	}
	return srv
}

// RegisterHandler binds the message handler. It must be called once, before Start.
func (s *Server) RegisterHandler(h Handler) {
	if s.h != nil {
		log.Fatalf("websocket: Server.RegisterHandler found duplicate handler registration %T", h)
	}
	s.h = h
}

func (s *Server) Path() string {
	return s.path
}

func (s *Server) SessionCount() int32 {
	return s.sessionMgr.Len()
}

// Start marks the server ready to accept upgrades.
func (s *Server) Start(ctx context.Context) error {
	if s.h == nil {
		log.Fatalf("websocket: Server started without a handler")
	}
	s.running.Store(true)
	log.Infof("[websocket] server accepting upgrades on path: %s", s.path)
	return nil
}

// Stop refuses new upgrades and closes every open session.
func (s *Server) Stop(ctx context.Context) error {
	log.Info("[websocket] server stopping")
	s.running.Store(false)
	s.sessionMgr.CloseAllSessions()
	return nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !s.running.Load() {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	if cnt := s.sessionMgr.Len(); cnt >= s.maxConnLimit {
		w.WriteHeader(http.StatusServiceUnavailable)
		log.Warnf("[websocket] StatusServiceUnavailable. over maxConnections(%d)", cnt)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Errorf("[websocket] upgrade error: %v", err)
		return
	}

	_ = NewSession(s, conn, s.sessionConf)
}

func (s *Server) OnSessionOpen(sess *Session) {
	s.sessionMgr.Add(sess)
	s.h.OnSessionOpen(sess)
}

func (s *Server) OnSessionClose(sess *Session) {
	s.h.OnSessionClose(sess)
	s.sessionMgr.Delete(sess)
}

func (s *Server) DispatchMessage(sess *Session, data []byte) error {
	return s.h.DispatchMessage(sess, data)
}
