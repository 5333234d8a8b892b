package main

import (
	"context"
	"flag"
	"os"

	"github.com/go-kratos/kratos/v2"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/transport/http"
	"github.com/yola1107/cardduel/internal/conf"
	"github.com/yola1107/cardduel/library/log/zap"
	"github.com/yola1107/cardduel/library/work"
	"github.com/yola1107/cardduel/transport/websocket"
)

var (
	Name     = conf.Name
	Version  = conf.Version
	flagconf string // -conf path
	id, _    = os.Hostname()
)

func init() {
	flag.StringVar(&flagconf, "conf", "../../configs", "config path, e.g. -conf config.yaml")
}

func newApp(logger log.Logger, hs *http.Server, ws *websocket.Server) *kratos.App {
	return kratos.New(
		kratos.ID(id),
		kratos.Name(Name),
		kratos.Version(Version),
		kratos.Metadata(map[string]string{}),
		kratos.Logger(logger),
		kratos.Server(
			hs,
			ws,
		),
	)
}

func newWorkStore(c *conf.Room_Timer) work.IWorkStore {
	return work.NewWorkStore(context.Background(), c.Tick.AsDuration(), c.WheelSize, int(c.PendingNum))
}

func main() {
	flag.Parse()

	c, bc, lc, err := conf.LoadConfig(flagconf)
	if c != nil {
		defer c.Close()
	}
	if err != nil {
		panic(err)
	}

	logger := zap.NewLogger(lc)
	log.SetLogger(logger)
	defer logger.Close()

	ws := newWorkStore(bc.Room.Timer)
	if err := conf.WatchConfig(c, bc, lc, logger, ws); err != nil {
		panic(err)
	}

	app, cleanup, err := wireApp(bc.Server, bc.Data, bc.Room, ws, logger)
	if err != nil {
		panic(err)
	}
	defer cleanup()

	// start and wait for stop signal
	if err := app.Run(); err != nil {
		panic(err)
	}
}
