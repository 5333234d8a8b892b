package room

import (
	"github.com/go-kratos/kratos/v2/log"
	v1 "github.com/yola1107/cardduel/api/cardgame/v1"
	"github.com/yola1107/cardduel/internal/biz/card"
	"github.com/yola1107/cardduel/internal/biz/player"
)

// startRound deals a fresh hand to every seat and shows each human its hand.
func (r *Room) startRound() {
	game := r.repo.GetRoomConfig().Game
	handSize := int(game.HandSize)
	r.pickSize = int(game.PickSize)
	for _, p := range r.seats {
		hand := p.DealHand(handSize)
		r.mLog.dealHand(p, r.round, hand)
		if !p.IsRobot() {
			r.sendRoundHand(p)
		}
	}
	log.Debugf("StartRound. room:%s", r.Desc())
}

// beginMatch puts a freshly filled room into play.
func (r *Room) beginMatch() {
	r.status = StPlaying
	r.actions = make(map[string][]card.Card)
	r.awaitingConfirm = false
	clear(r.confirmed)
	r.startRound()
	r.aiLogic.schedule()
}

// submit records a validated sequence for p.
func (r *Room) submit(p *player.Player, seq []card.Card) {
	r.actions[p.GetPlayerID()] = seq
	r.mLog.submit(p, r.round, seq)
}

// maybeResolveRound resolves the round once both seats have submitted.
func (r *Room) maybeResolveRound() {
	if len(r.seats) < MaxPlayers {
		return
	}
	p1, p2 := r.seats[0], r.seats[1]
	seq1, ok1 := r.actions[p1.GetPlayerID()]
	seq2, ok2 := r.actions[p2.GetPlayerID()]
	if !ok1 || !ok2 {
		return
	}

	r.aiLogic.cancel()

	r.broadcastRoundReveal(p1, p2, seq1, seq2)
	r.mLog.reveal(r.round, seq1, seq2)

	steps := resolveSteps(p1.GetHP(), p2.GetHP(), seq1, seq2)
	if n := len(steps); n > 0 {
		p1.SetHP(steps[n-1].P1HP)
		p2.SetHP(steps[n-1].P2HP)
	}

	r.finalizeRound(steps, p1, p2)
}

// resolveSteps plays index-aligned pairs, flooring each running total at zero after every pair.
// Pairs past the shorter sequence are skipped.
func resolveSteps(hp1, hp2 int32, seq1, seq2 []card.Card) []*v1.Step {
	n := min(len(seq1), len(seq2))
	steps := make([]*v1.Step, 0, n)
	for i := 0; i < n; i++ {
		c1, c2 := seq1[i], seq2[i]
		d1, d2 := card.Resolve(c1, c2)
		hp1 = card.ApplyDelta(hp1, d1)
		hp2 = card.ApplyDelta(hp2, d2)
		steps = append(steps, &v1.Step{
			Index:   int32(i + 1),
			P1Card:  c1.String(),
			P2Card:  c2.String(),
			P1Delta: d1,
			P2Delta: d2,
			P1HP:    hp1,
			P2HP:    hp2,
		})
	}
	return steps
}

func (r *Room) finalizeRound(steps []*v1.Step, p1, p2 *player.Player) {
	r.broadcastRoundResult(steps, p1, p2)
	r.mLog.result(r.round, p1, p2)

	p1.DiscardHand()
	p2.DiscardHand()
	r.actions = make(map[string][]card.Card)

	if p1.IsDead() || p2.IsDead() || r.round >= r.repo.GetRoomConfig().Game.MaxRounds {
		r.status = StFinished
		r.broadcastRoomState()

		result := matchResult(p1.GetHP(), p2.GetHP())
		r.broadcastGameOver(result, p1, p2)
		r.mLog.gameOver(r.round, result)
		r.repo.PublishEvent(r.event(EventGameOver, result))
		log.Infof("GameOver. room:%s result:%s p1:%s p2:%s", r.Desc(), result, p1.Desc(), p2.Desc())
		return
	}

	r.awaitingConfirm = true
	clear(r.confirmed)
	r.broadcastRoomState()
}

func matchResult(hp1, hp2 int32) string {
	switch {
	case hp1 > hp2:
		return v1.ResultP1Win
	case hp2 > hp1:
		return v1.ResultP2Win
	default:
		return v1.ResultDraw
	}
}

// nextRound advances once every human has acknowledged the last result.
func (r *Room) nextRound() {
	r.awaitingConfirm = false
	clear(r.confirmed)
	r.round++
	r.broadcastRoomState()
	r.startRound()
	r.aiLogic.schedule()
}

func (r *Room) allConfirmed() bool {
	for _, p := range r.seats {
		if p.IsRobot() {
			continue
		}
		if _, ok := r.confirmed[p.GetPlayerID()]; !ok {
			return false
		}
	}
	return true
}

// resetMatch restores every seat and starts round 1.
func (r *Room) resetMatch() {
	r.aiLogic.cancel()
	r.mLog.rematch(r.round)

	game := r.repo.GetRoomConfig().Game
	comp := r.comp()
	for _, p := range r.seats {
		p.Reset(comp, game.InitialHP)
	}
	r.round = 1
	clear(r.rematchReady)
	r.status = StPlaying
	r.actions = make(map[string][]card.Card)
	r.awaitingConfirm = false
	clear(r.confirmed)
	r.broadcastRoomState()
	r.startRound()
	r.aiLogic.schedule()
}

// leave drops the seats bound to sessionID. It reports whether the room should be torn down.
func (r *Room) leave(sessionID string) (bool, []*player.Player) {
	gone := r.ThrowOff(sessionID)
	if len(gone) == 0 {
		return false, nil
	}

	for _, p := range gone {
		p.DiscardHand()
		delete(r.rematchReady, p.GetPlayerID())
	}
	r.aiLogic.cancel()
	r.actions = make(map[string][]card.Card)
	r.awaitingConfirm = false
	clear(r.confirmed)
	if len(r.seats) == MaxPlayers {
		r.status = StPlaying
	} else {
		r.status = StWaiting
	}

	if r.HumanCount() == 0 {
		return true, gone
	}
	r.broadcastRoomState()
	return false, gone
}
