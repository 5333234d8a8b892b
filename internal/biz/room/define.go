package room

import (
	"fmt"
)

const (
	MaxPlayers      = 2
	DefaultName     = "玩家"
	roomIDMin       = 1000
	roomIDMax       = 9999
	roomIDMaxProbes = 64
)

// Status is the match state of a room.
type Status int32

const (
	StWaiting Status = iota
	StPlaying
	StFinished
)

var statusNames = map[Status]string{
	StWaiting:  "waiting",
	StPlaying:  "playing",
	StFinished: "finished",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Status(%d)", s)
}

// Event types published to the match event stream.
const (
	EventRoomCreated = "room_created"
	EventGameOver    = "game_over"
	EventRoomClosed  = "room_closed"
)

// Event describes a room lifecycle change for downstream consumers.
type Event struct {
	Type    string   `json:"type"`
	RoomID  string   `json:"roomId"`
	Round   int32    `json:"round"`
	Result  string   `json:"result,omitempty"`
	Players []string `json:"players"`
	HasBot  bool     `json:"hasBot"`
	At      int64    `json:"at"`
}
