package server

import (
	"path"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/middleware/recovery"
	"github.com/go-kratos/kratos/v2/transport/http"
	"github.com/yola1107/cardduel/internal/conf"
	"github.com/yola1107/cardduel/internal/service"
	"github.com/yola1107/cardduel/transport/websocket"
)

// NewHTTPServer new an HTTP server serving the query routes and the WebSocket upgrade path.
func NewHTTPServer(c *conf.Server, svc *service.Service, ws *websocket.Server, logger log.Logger) *http.Server {
	var opts = []http.ServerOption{
		http.Middleware(
			recovery.Recovery(),
		),
	}
	if c.Http.Network != "" {
		opts = append(opts, http.Network(c.Http.Network))
	}
	if c.Http.Addr != "" {
		opts = append(opts, http.Address(c.Http.Addr))
	}
	if c.Http.Timeout > 0 {
		opts = append(opts, http.Timeout(c.Http.Timeout.AsDuration()))
	}
	srv := http.NewServer(opts...)

	r := srv.Route(path.Join("/", c.BasePath))
	r.GET("/health", svc.Health)
	r.GET("/rooms", svc.ListRooms)
	srv.Handle(ws.Path(), ws)
	log.NewHelper(logger).Infof("http routes under %s", path.Join("/", c.BasePath))
	return srv
}
