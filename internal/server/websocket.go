package server

import (
	"net/http"
	"path"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/samber/lo"
	"github.com/yola1107/cardduel/internal/conf"
	"github.com/yola1107/cardduel/internal/service"
	"github.com/yola1107/cardduel/transport/websocket"
)

// NewWebsocketServer new a Websocket server mounted under the base path.
func NewWebsocketServer(c *conf.Server, svc *service.Service, logger log.Logger) *websocket.Server {
	ws := c.Websocket
	var opts = []websocket.ServerOption{
		websocket.Path(path.Join("/", c.BasePath, ws.Path)),
		websocket.SessionConf(&websocket.SessionConfig{
			WriteTimeout: ws.WriteTimeout.AsDuration(),
			PingInterval: ws.PingInterval.AsDuration(),
			ReadDeadline: ws.ReadDeadline.AsDuration(),
			SendChanSize: int(ws.SendChanSize),
		}),
	}
	if ws.MaxConn > 0 {
		opts = append(opts, websocket.MaxConnLimit(ws.MaxConn))
	}
	if len(ws.AllowedOrigins) > 0 {
		opts = append(opts, websocket.CheckOrigin(originAllowed(ws.AllowedOrigins)))
	}
	srv := websocket.NewServer(opts...)
	srv.RegisterHandler(svc)
	log.NewHelper(logger).Infof("websocket path: %s origins:%v", srv.Path(), ws.AllowedOrigins)
	return srv
}

// originAllowed accepts requests without an Origin header, which browsers always send.
func originAllowed(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || lo.Contains(allowed, origin)
	}
}
