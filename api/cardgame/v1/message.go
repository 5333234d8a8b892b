// Package v1 defines the JSON protocol spoken on the card duel WebSocket.
package v1

import (
	"encoding/json"
)

// Inbound message types.
const (
	TypeStartBot      = "start_bot"
	TypeCreateRoom    = "create_room"
	TypeCreateRoomBot = "create_room_bot"
	TypeJoinRoom      = "join_room"
	TypePlayCards     = "play_cards"
	TypeRoundConfirm  = "round_confirm"
	TypeRematch       = "rematch"
)

// Outbound message types.
const (
	TypeConnected   = "connected"
	TypeRoomCreated = "room_created"
	TypeRoomJoined  = "room_joined"
	TypeRoomState   = "room_state"
	TypeRoundHand   = "round_hand"
	TypeRoundReveal = "round_reveal"
	TypeRoundResult = "round_result"
	TypeGameOver    = "game_over"
	TypeError       = "error"
)

// Match results carried by GameOver.
const (
	ResultP1Win = "p1_win"
	ResultP2Win = "p2_win"
	ResultDraw  = "draw"
)

// Envelope wraps every frame in both directions.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Marshal encodes an outbound message with its payload.
func Marshal(typ string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Type: typ, Payload: body})
}

/*
	Inbound payloads
*/

type StartBotReq struct {
	PlayerName string `json:"playerName"`
	PlayerID   string `json:"playerId,omitempty"`
}

type CreateRoomReq struct {
	PlayerName string `json:"playerName"`
	RoomID     string `json:"roomId,omitempty"`
	PlayerID   string `json:"playerId,omitempty"`
}

type CreateRoomBotReq struct {
	PlayerName string `json:"playerName"`
	PlayerID   string `json:"playerId,omitempty"`
}

type JoinRoomReq struct {
	RoomID     string `json:"roomId"`
	PlayerName string `json:"playerName"`
	PlayerID   string `json:"playerId,omitempty"`
}

type PlayCardsReq struct {
	RoomID   string `json:"roomId"`
	PlayerID string `json:"playerId"`
	Round    int32  `json:"round,omitempty"`
	Picks    Picks  `json:"picks"`
}

type RoundConfirmReq struct {
	RoomID   string `json:"roomId"`
	PlayerID string `json:"playerId"`
	Round    int32  `json:"round,omitempty"`
}

type RematchReq struct {
	RoomID   string `json:"roomId"`
	PlayerID string `json:"playerId"`
}

/*
	Outbound payloads
*/

type Connected struct {
	Message string `json:"message"`
}

type RoomCreated struct {
	RoomID   string `json:"roomId"`
	PlayerID string `json:"playerId"`
}

type RoomJoined struct {
	RoomID   string `json:"roomId"`
	PlayerID string `json:"playerId"`
}

type PlayerState struct {
	PlayerID  string `json:"playerId"`
	Name      string `json:"name"`
	HP        int32  `json:"hp"`
	Submitted bool   `json:"submitted"`
}

type RoomState struct {
	RoomID  string         `json:"roomId"`
	Status  string         `json:"status"`
	Round   int32          `json:"round"`
	Players []*PlayerState `json:"players"`
}

// RoundHand is sent privately to each human seat when a round is dealt.
type RoundHand struct {
	RoomID            string   `json:"roomId"`
	Round             int32    `json:"round"`
	Hand              []string `json:"hand"`
	RequiredPickCount int32    `json:"requiredPickCount"`
	Deck              []string `json:"deck"`
	Discard           []string `json:"discard"`
	OpponentDeck      []string `json:"opponentDeck"`
	OpponentDiscard   []string `json:"opponentDiscard"`
}

type RoundReveal struct {
	RoomID string   `json:"roomId"`
	Round  int32    `json:"round"`
	P1ID   string   `json:"p1Id"`
	P2ID   string   `json:"p2Id"`
	P1     []string `json:"p1"`
	P2     []string `json:"p2"`
}

type Step struct {
	Index   int32  `json:"index"`
	P1Card  string `json:"p1Card"`
	P2Card  string `json:"p2Card"`
	P1Delta int32  `json:"p1Delta"`
	P2Delta int32  `json:"p2Delta"`
	P1HP    int32  `json:"p1Hp"`
	P2HP    int32  `json:"p2Hp"`
}

type RoundResult struct {
	RoomID string  `json:"roomId"`
	Round  int32   `json:"round"`
	P1ID   string  `json:"p1Id"`
	P2ID   string  `json:"p2Id"`
	Steps  []*Step `json:"steps"`
	P1HP   int32   `json:"p1Hp"`
	P2HP   int32   `json:"p2Hp"`
}

type FinalHP struct {
	HP int32 `json:"hp"`
}

type Final struct {
	P1 FinalHP `json:"p1"`
	P2 FinalHP `json:"p2"`
}

type GameOver struct {
	RoomID string `json:"roomId"`
	Round  int32  `json:"round"`
	Result string `json:"result"`
	Final  Final  `json:"final"`
}

type Error struct {
	Message string `json:"message"`
}

/*
	HTTP query surface
*/

type RoomPlayerSummary struct {
	Name  string `json:"name"`
	IsBot bool   `json:"isBot"`
}

type RoomSummary struct {
	RoomID       string               `json:"roomId"`
	Status       string               `json:"status"`
	Round        int32                `json:"round"`
	PlayersCount int32                `json:"playersCount"`
	HasBot       bool                 `json:"hasBot"`
	Players      []*RoomPlayerSummary `json:"players"`
}

type RoomList struct {
	Rooms []*RoomSummary `json:"rooms"`
}

type Health struct {
	OK      bool   `json:"ok"`
	Project string `json:"project"`
}
