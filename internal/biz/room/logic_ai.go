package room

import (
	"github.com/go-kratos/kratos/v2/log"
	"github.com/yola1107/cardduel/internal/biz/card"
	"github.com/yola1107/cardduel/library/ext"
	"github.com/yola1107/cardduel/library/xgo"
)

// RobotLogic drives the robot seat of a room: one delayed submission per round.
type RobotLogic struct {
	mRoom   *Room
	timerID int64 // 0 when no timer is pending
}

func (r *RobotLogic) init(room *Room) {
	r.mRoom = room
}

// Pending reports whether a robot submission is scheduled.
func (r *RobotLogic) Pending() bool {
	return r.timerID != 0
}

// schedule arms the robot timer unless one is already pending or the robot has nothing to do.
func (r *RobotLogic) schedule() {
	room := r.mRoom
	if room.closed || r.timerID != 0 {
		return
	}
	robot := room.GetRobot()
	if robot == nil || room.hasSubmitted(robot.GetPlayerID()) {
		return
	}

	var id int64
	id = room.repo.GetTimer().Once(room.repo.GetRoomConfig().Robot.Delay.AsDuration(), func() {
		if r.timerID != id {
			return
		}
		r.timerID = 0
		r.act()
	})
	if id <= 0 {
		log.Warnf("robot timer rejected. room:%s", room.Desc())
		return
	}
	r.timerID = id
}

func (r *RobotLogic) cancel() {
	if r.timerID == 0 {
		return
	}
	r.mRoom.repo.GetTimer().Cancel(r.timerID)
	r.timerID = 0
}

// act re-checks the room at fire time before submitting for the robot.
func (r *RobotLogic) act() {
	room := r.mRoom
	if room.closed || room.status != StPlaying || room.awaitingConfirm {
		return
	}
	robot := room.GetRobot()
	if robot == nil || room.hasSubmitted(robot.GetPlayerID()) {
		return
	}

	seq := pickRandom(robot.GetHand(), RequiredPickCount(robot.GetHand(), room.pickSize))
	room.submit(robot, seq)
	log.Debugf("robot submit. room:%s picks:%v", room.ID, seq)

	room.broadcastRoomState()
	room.maybeResolveRound()
}

// pickRandom returns a uniformly random ordered selection of n cards from hand.
func pickRandom(hand []card.Card, n int) []card.Card {
	shuffled := xgo.SliceCopy(hand)
	ext.Shuffle(shuffled)
	return shuffled[:min(n, len(shuffled))]
}
