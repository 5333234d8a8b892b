package conf

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"dario.cat/mergo"
)

const (
	Name    = "cardduel"
	Version = "v0.1.0"
	Project = "cardgame"
)

type Bootstrap struct {
	Server *Server `json:"server"`
	Data   *Data   `json:"data"`
	Room   *Room   `json:"room"`
}

type Server struct {
	BasePath  string            `json:"base_path"`
	Http      *Server_HTTP      `json:"http"`
	Websocket *Server_Websocket `json:"websocket"`
}

type Server_HTTP struct {
	Network string   `json:"network"`
	Addr    string   `json:"addr"`
	Timeout Duration `json:"timeout"`
}

type Server_Websocket struct {
	Path         string   `json:"path"`
	ReadDeadline Duration `json:"read_deadline"`
	PingInterval Duration `json:"ping_interval"`
	WriteTimeout Duration `json:"write_timeout"`
	SendChanSize int32    `json:"send_chan_size"`
	MaxConn      int32    `json:"max_conn"`
	// AllowedOrigins limits browser upgrades by Origin header. Empty accepts all.
	AllowedOrigins []string `json:"allowed_origins"`
}

type Data struct {
	Redis *Data_Redis `json:"redis"`
}

// Data_Redis configures the optional match event publisher. An empty Addr disables it.
type Data_Redis struct {
	Addr        string   `json:"addr"`
	Password    string   `json:"password"`
	DB          int32    `json:"db"`
	Channel     string   `json:"channel"`
	DialTimeout Duration `json:"dial_timeout"`
}

type Room struct {
	Game     *Room_Game     `json:"game"`
	Robot    *Room_Robot    `json:"robot"`
	LogCache *Room_LogCache `json:"log_cache"`
	Timer    *Room_Timer    `json:"timer"`
}

type Room_Game struct {
	MaxRounds int32      `json:"max_rounds"`
	HandSize  int32      `json:"hand_size"`
	PickSize  int32      `json:"pick_size"`
	InitialHP int32      `json:"initial_hp"`
	Deck      *Room_Deck `json:"deck"`
}

type Room_Deck struct {
	Attack  int32 `json:"attack"`
	Defend  int32 `json:"defend"`
	Recover int32 `json:"recover"`
}

type Room_Robot struct {
	Delay Duration `json:"delay"`
	Name  string   `json:"name"`
}

type Room_LogCache struct {
	Open      bool   `json:"open"`
	Directory string `json:"directory"`
}

type Room_Timer struct {
	Tick       Duration `json:"tick"`
	WheelSize  int64    `json:"wheel_size"`
	PendingNum int32    `json:"pending_num"`
}

// Duration decodes "1.5s" style strings or a number of seconds.
type Duration time.Duration

func (d Duration) AsDuration() time.Duration {
	return time.Duration(d)
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch val := v.(type) {
	case nil:
		*d = 0
	case float64:
		*d = Duration(val * float64(time.Second))
	case string:
		dur, err := time.ParseDuration(strings.TrimSpace(val))
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", val, err)
		}
		*d = Duration(dur)
	default:
		return fmt.Errorf("invalid duration %s", string(b))
	}
	return nil
}

/*
	defaults
*/

func DefaultBootstrap() *Bootstrap {
	return &Bootstrap{
		Server: &Server{
			BasePath: "/api/cardgame",
			Http: &Server_HTTP{
				Network: "tcp",
				Addr:    "0.0.0.0:3000",
				Timeout: Duration(5 * time.Second),
			},
			Websocket: &Server_Websocket{
				Path:         "/ws",
				ReadDeadline: Duration(60 * time.Second),
				PingInterval: Duration(15 * time.Second),
				WriteTimeout: Duration(10 * time.Second),
				SendChanSize: 128,
				MaxConn:      10000,
			},
		},
		Data: &Data{
			Redis: &Data_Redis{
				Channel:     "cardgame:events",
				DialTimeout: Duration(time.Second),
			},
		},
		Room: &Room{
			Game:  DefaultGame(),
			Robot: DefaultRobot(),
			LogCache: &Room_LogCache{
				Directory: "./logs/log_cache",
			},
			Timer: &Room_Timer{
				Tick:       Duration(50 * time.Millisecond),
				WheelSize:  128,
				PendingNum: 1024,
			},
		},
	}
}

func DefaultGame() *Room_Game {
	return &Room_Game{
		MaxRounds: 10,
		HandSize:  5,
		PickSize:  3,
		InitialHP: 10,
		Deck:      &Room_Deck{Attack: 5, Defend: 5, Recover: 5},
	}
}

func DefaultRobot() *Room_Robot {
	return &Room_Robot{
		Delay: Duration(1200 * time.Millisecond),
		Name:  "机器人",
	}
}

// Complete fills every unset field from DefaultBootstrap.
func (b *Bootstrap) Complete() error {
	return mergo.Merge(b, DefaultBootstrap())
}

func (g *Room_Game) Complete() error {
	return mergo.Merge(g, DefaultGame())
}

func (r *Room_Robot) Complete() error {
	return mergo.Merge(r, DefaultRobot())
}

/*
	validation
*/

func (b *Bootstrap) ValidateAll() error {
	if b == nil || b.Server == nil || b.Room == nil {
		return errors.New("bootstrap: server and room sections are required")
	}
	var errs []error
	if s := b.Server; !strings.HasPrefix(s.BasePath, "/") {
		errs = append(errs, fmt.Errorf("server.base_path must start with '/': %q", s.BasePath))
	}
	if ws := b.Server.Websocket; ws != nil {
		if !strings.HasPrefix(ws.Path, "/") {
			errs = append(errs, fmt.Errorf("server.websocket.path must start with '/': %q", ws.Path))
		}
		if ws.PingInterval <= 0 || ws.ReadDeadline <= ws.PingInterval {
			errs = append(errs, errors.New("server.websocket: read_deadline must exceed ping_interval > 0"))
		}
		if ws.SendChanSize <= 0 {
			errs = append(errs, errors.New("server.websocket.send_chan_size must be positive"))
		}
	}
	if t := b.Room.Timer; t != nil && (t.Tick <= 0 || t.WheelSize <= 0) {
		errs = append(errs, errors.New("room.timer: tick and wheel_size must be positive"))
	}
	errs = append(errs, b.Room.Game.ValidateAll(), b.Room.Robot.ValidateAll())
	return errors.Join(errs...)
}

func (g *Room_Game) ValidateAll() error {
	if g == nil {
		return errors.New("room.game is required")
	}
	var errs []error
	if g.MaxRounds <= 0 {
		errs = append(errs, errors.New("room.game.max_rounds must be positive"))
	}
	if g.HandSize <= 0 || g.PickSize <= 0 {
		errs = append(errs, errors.New("room.game: hand_size and pick_size must be positive"))
	}
	if g.PickSize > g.HandSize {
		errs = append(errs, fmt.Errorf("room.game.pick_size %d exceeds hand_size %d", g.PickSize, g.HandSize))
	}
	if g.InitialHP <= 0 {
		errs = append(errs, errors.New("room.game.initial_hp must be positive"))
	}
	if d := g.Deck; d == nil || d.Attack < 0 || d.Defend < 0 || d.Recover < 0 || d.Attack+d.Defend+d.Recover == 0 {
		errs = append(errs, errors.New("room.game.deck must hold at least one card and no negative counts"))
	}
	return errors.Join(errs...)
}

func (r *Room_Robot) ValidateAll() error {
	if r == nil {
		return errors.New("room.robot is required")
	}
	if r.Delay < 0 {
		return errors.New("room.robot.delay must not be negative")
	}
	if strings.TrimSpace(r.Name) == "" {
		return errors.New("room.robot.name is required")
	}
	return nil
}
