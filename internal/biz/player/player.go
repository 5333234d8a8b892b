package player

import (
	"fmt"
	"strings"

	"github.com/go-kratos/kratos/v2/log"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/yola1107/cardduel/internal/biz/card"
)

const (
	idPrefix   = "user_"
	idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	idLength   = 6
)

// Sender is the connection a human seat talks through. The player only holds a
// reference to it; the transport owns its lifetime.
type Sender interface {
	ID() string
	Send(data []byte) error
	Closed() bool
}

// Raw carries what is needed to seat a player.
type Raw struct {
	ID      string
	Name    string
	IsRobot bool
	Session Sender
}

// BaseData is the identity part of a player.
type BaseData struct {
	ID      string
	Name    string
	isRobot bool
}

// GameData is reset on every rematch.
type GameData struct {
	RoomID  string
	ChairID int32
	hp      int32
	deck    *card.Deck
	hand    []card.Card
}

type Player struct {
	baseData BaseData
	gameData GameData
	session  Sender
}

// NewID returns a fresh player id such as user_k3x9q0.
func NewID() string {
	id, err := gonanoid.Generate(idAlphabet, idLength)
	if err != nil {
		log.Errorf("generate player id: %v", err)
		return idPrefix + strings.Repeat("0", idLength)
	}
	return idPrefix + id
}

// New builds a player with a freshly shuffled deck. An empty id gets a generated one.
func New(raw *Raw, comp card.Composition, hp int32) *Player {
	id := strings.TrimSpace(raw.ID)
	if id == "" {
		id = NewID()
	}
	return &Player{
		baseData: BaseData{
			ID:      id,
			Name:    raw.Name,
			isRobot: raw.IsRobot,
		},
		gameData: GameData{
			ChairID: -1,
			hp:      hp,
			deck:    card.NewDeck(comp),
		},
		session: raw.Session,
	}
}

// Reset restores hit points and a fresh deck for a rematch.
func (p *Player) Reset(comp card.Composition, hp int32) {
	p.gameData.hp = hp
	p.gameData.deck.Reset(comp)
	p.gameData.hand = nil
}

func (p *Player) Desc() string {
	return fmt.Sprintf("(%s %q chair:%d room:%s hp:%d ai:%v offline:%v)",
		p.baseData.ID, p.baseData.Name, p.gameData.ChairID, p.GetRoomID(),
		p.gameData.hp, p.baseData.isRobot, p.IsOffline())
}

func (p *Player) GetPlayerID() string {
	return p.baseData.ID
}

func (p *Player) GetName() string {
	return p.baseData.Name
}

func (p *Player) IsRobot() bool {
	return p.baseData.isRobot
}

func (p *Player) SetRoomID(roomID string) {
	p.gameData.RoomID = roomID
}

func (p *Player) GetRoomID() string {
	return p.gameData.RoomID
}

func (p *Player) SetChairID(chairID int32) {
	p.gameData.ChairID = chairID
}

func (p *Player) GetChairID() int32 {
	return p.gameData.ChairID
}

/*
	session back-reference
*/

func (p *Player) GetSession() Sender {
	return p.session
}

// IsSession reports whether the player is bound to the connection with the given id.
func (p *Player) IsSession(sessionID string) bool {
	return p.session != nil && p.session.ID() == sessionID
}

// IsOffline is true for robots and for humans whose connection is gone.
func (p *Player) IsOffline() bool {
	return p.session == nil || p.session.Closed()
}

// Send writes data to a live connection. Robots and dead connections are skipped.
func (p *Player) Send(data []byte) error {
	if p.IsOffline() {
		return nil
	}
	return p.session.Send(data)
}

/*
	hit points and cards
*/

func (p *Player) GetHP() int32 {
	return p.gameData.hp
}

func (p *Player) SetHP(hp int32) {
	p.gameData.hp = max(0, hp)
}

func (p *Player) IsDead() bool {
	return p.gameData.hp <= 0
}

func (p *Player) GetDeck() *card.Deck {
	return p.gameData.deck
}

func (p *Player) GetHand() []card.Card {
	return p.gameData.hand
}

// DealHand discards any stale hand and draws n cards.
func (p *Player) DealHand(n int) []card.Card {
	p.DiscardHand()
	p.gameData.hand = p.gameData.deck.Draw(n)
	return p.gameData.hand
}

// DiscardHand moves the whole hand onto the discard pile.
func (p *Player) DiscardHand() {
	if len(p.gameData.hand) == 0 {
		return
	}
	p.gameData.deck.Discard(p.gameData.hand...)
	p.gameData.hand = nil
}
