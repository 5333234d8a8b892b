package room

import (
	"github.com/go-kratos/kratos/v2/log"
	"github.com/samber/lo"
	v1 "github.com/yola1107/cardduel/api/cardgame/v1"
	"github.com/yola1107/cardduel/internal/biz/card"
	"github.com/yola1107/cardduel/internal/biz/player"
)

// SendPacket writes one frame to a sender. Robots and closed connections are skipped.
func SendPacket(s player.Sender, typ string, payload any) {
	if s == nil || s.Closed() {
		return
	}
	data, err := v1.Marshal(typ, payload)
	if err != nil {
		log.Errorf("marshal %s: %v", typ, err)
		return
	}
	if err := s.Send(data); err != nil {
		log.Warnf("send %s to session:%s: %v", typ, s.ID(), err)
	}
}

// SendError answers a request with its client-facing reason.
func SendError(s player.Sender, err error) {
	SendPacket(s, v1.TypeError, &v1.Error{Message: Message(err)})
}

func (r *Room) sendPacketToClient(p *player.Player, typ string, payload any) {
	if p == nil || p.IsRobot() {
		return
	}
	SendPacket(p.GetSession(), typ, payload)
}

// sendPacketToAll encodes once and writes to every human seat.
func (r *Room) sendPacketToAll(typ string, payload any) {
	data, err := v1.Marshal(typ, payload)
	if err != nil {
		log.Errorf("marshal %s: %v", typ, err)
		return
	}
	for _, p := range r.seats {
		if err := p.Send(data); err != nil {
			log.Warnf("send %s to player:%s: %v", typ, p.GetPlayerID(), err)
		}
	}
}

// State is the public snapshot of the room.
func (r *Room) State() *v1.RoomState {
	return &v1.RoomState{
		RoomID: r.ID,
		Status: r.status.String(),
		Round:  r.round,
		Players: lo.Map(r.seats, func(p *player.Player, _ int) *v1.PlayerState {
			return &v1.PlayerState{
				PlayerID:  p.GetPlayerID(),
				Name:      p.GetName(),
				HP:        p.GetHP(),
				Submitted: r.hasSubmitted(p.GetPlayerID()),
			}
		}),
	}
}

// Summary is the row shown by the room list endpoint.
func (r *Room) Summary() *v1.RoomSummary {
	return &v1.RoomSummary{
		RoomID:       r.ID,
		Status:       r.status.String(),
		Round:        r.round,
		PlayersCount: int32(len(r.seats)),
		HasBot:       r.HasRobot(),
		Players: lo.Map(r.seats, func(p *player.Player, _ int) *v1.RoomPlayerSummary {
			return &v1.RoomPlayerSummary{Name: p.GetName(), IsBot: p.IsRobot()}
		}),
	}
}

func (r *Room) broadcastRoomState() {
	r.sendPacketToAll(v1.TypeRoomState, r.State())
}

func (r *Room) sendRoomCreated(p *player.Player) {
	r.sendPacketToClient(p, v1.TypeRoomCreated, &v1.RoomCreated{RoomID: r.ID, PlayerID: p.GetPlayerID()})
}

func (r *Room) sendRoomJoined(p *player.Player) {
	r.sendPacketToClient(p, v1.TypeRoomJoined, &v1.RoomJoined{RoomID: r.ID, PlayerID: p.GetPlayerID()})
}

// sendRoundHand shows p its own hand and piles plus the opponent's piles.
func (r *Room) sendRoundHand(p *player.Player) {
	msg := &v1.RoundHand{
		RoomID:            r.ID,
		Round:             r.round,
		Hand:              card.Strings(p.GetHand()),
		RequiredPickCount: int32(RequiredPickCount(p.GetHand(), r.pickSize)),
		Deck:              card.Strings(p.GetDeck().Cards()),
		Discard:           card.Strings(p.GetDeck().Discarded()),
		OpponentDeck:      []string{},
		OpponentDiscard:   []string{},
	}
	if o := r.opponent(p); o != nil {
		msg.OpponentDeck = card.Strings(o.GetDeck().Cards())
		msg.OpponentDiscard = card.Strings(o.GetDeck().Discarded())
	}
	r.sendPacketToClient(p, v1.TypeRoundHand, msg)
}

func (r *Room) broadcastRoundReveal(p1, p2 *player.Player, seq1, seq2 []card.Card) {
	r.sendPacketToAll(v1.TypeRoundReveal, &v1.RoundReveal{
		RoomID: r.ID,
		Round:  r.round,
		P1ID:   p1.GetPlayerID(),
		P2ID:   p2.GetPlayerID(),
		P1:     card.Strings(seq1),
		P2:     card.Strings(seq2),
	})
}

func (r *Room) broadcastRoundResult(steps []*v1.Step, p1, p2 *player.Player) {
	r.sendPacketToAll(v1.TypeRoundResult, &v1.RoundResult{
		RoomID: r.ID,
		Round:  r.round,
		P1ID:   p1.GetPlayerID(),
		P2ID:   p2.GetPlayerID(),
		Steps:  steps,
		P1HP:   p1.GetHP(),
		P2HP:   p2.GetHP(),
	})
}

func (r *Room) broadcastGameOver(result string, p1, p2 *player.Player) {
	r.sendPacketToAll(v1.TypeGameOver, &v1.GameOver{
		RoomID: r.ID,
		Round:  r.round,
		Result: result,
		Final: v1.Final{
			P1: v1.FinalHP{HP: p1.GetHP()},
			P2: v1.FinalHP{HP: p2.GetHP()},
		},
	})
}
