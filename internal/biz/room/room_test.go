package room

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	v1 "github.com/yola1107/cardduel/api/cardgame/v1"
	"github.com/yola1107/cardduel/internal/biz/card"
)

func startBot(t *testing.T, m *Manager, s *fakeSession, playerID string) *Room {
	t.Helper()
	r, p, err := m.OnStartBot(s, &v1.StartBotReq{PlayerName: "alice", PlayerID: playerID})
	require.NoError(t, err)
	require.NotNil(t, p)
	return r
}

func twoHumans(t *testing.T, m *Manager) (*Room, *fakeSession, *fakeSession) {
	t.Helper()
	s1, s2 := newFakeSession("s1"), newFakeSession("s2")
	r, _, err := m.OnCreateRoom(s1, &v1.CreateRoomReq{PlayerName: "alice", PlayerID: "p1", RoomID: "4321"})
	require.NoError(t, err)
	_, _, err = m.OnJoinRoom(s2, &v1.JoinRoomReq{RoomID: r.ID, PlayerName: "bob", PlayerID: "p2"})
	require.NoError(t, err)
	return r, s1, s2
}

func play(m *Manager, r *Room, playerID string, idx ...float64) error {
	return m.OnPlayCards(&v1.PlayCardsReq{RoomID: r.ID, PlayerID: playerID, Round: r.GetRound(), Picks: v1.IndexPicks(idx...)})
}

func TestResolveStepsScenarios(t *testing.T) {
	A, D, R := card.Attack, card.Defend, card.Recover

	hand := []card.Card{A, D, A, R, A}
	seq, err := ResolvePicks(hand, v1.TypePicks("A", "A", "A"), 3)
	require.NoError(t, err)

	steps := resolveSteps(10, 10, seq, []card.Card{D, D, D})
	require.Len(t, steps, 3)
	for i, s := range steps {
		assert.Equal(t, int32(i+1), s.Index)
		assert.Equal(t, int32(-1), s.P1Delta)
		assert.Equal(t, int32(0), s.P2Delta)
	}
	assert.Equal(t, int32(7), steps[2].P1HP)
	assert.Equal(t, int32(10), steps[2].P2HP)

	steps = resolveSteps(10, 10, []card.Card{R, R, R}, []card.Card{R, R, R})
	require.Len(t, steps, 3)
	for _, s := range steps {
		assert.Zero(t, s.P1Delta)
		assert.Zero(t, s.P2Delta)
		assert.Equal(t, int32(10), s.P1HP)
		assert.Equal(t, int32(10), s.P2HP)
	}
}

func TestResolveStepsClampsEachStep(t *testing.T) {
	A, R := card.Attack, card.Recover

	// 1 -2 -> 0, then +1 -> 1. Clamping at the end would give 0.
	steps := resolveSteps(1, 10, []card.Card{A, A}, []card.Card{A, R})
	require.Len(t, steps, 2)
	assert.Equal(t, int32(0), steps[0].P1HP)
	assert.Equal(t, int32(1), steps[1].P1HP)
	assert.Equal(t, int32(8), steps[0].P2HP)
	assert.Equal(t, int32(6), steps[1].P2HP)

	for _, s := range resolveSteps(0, 0, []card.Card{A, A, A}, []card.Card{A, A, A}) {
		assert.GreaterOrEqual(t, s.P1HP, int32(0))
		assert.GreaterOrEqual(t, s.P2HP, int32(0))
	}
}

func TestResolveStepsUnevenLength(t *testing.T) {
	steps := resolveSteps(10, 10, []card.Card{card.Attack, card.Attack}, []card.Card{card.Defend})
	require.Len(t, steps, 1)
	assert.Equal(t, int32(9), steps[0].P1HP)
}

func TestMatchResult(t *testing.T) {
	assert.Equal(t, v1.ResultP1Win, matchResult(3, 0))
	assert.Equal(t, v1.ResultP2Win, matchResult(0, 3))
	assert.Equal(t, v1.ResultDraw, matchResult(4, 4))
}

func TestStartBotRound(t *testing.T) {
	repo := newFakeRepo()
	m := NewManager(repo)
	s := newFakeSession("s1")
	r := startBot(t, m, s, "p1")

	assert.Equal(t, []string{v1.TypeRoomCreated, v1.TypeRoomState, v1.TypeRoundHand}, s.types())
	assert.Equal(t, StPlaying, r.GetStatus())
	assert.True(t, r.HasRobot())
	assert.Equal(t, 1, repo.timer.Len())
	assert.True(t, r.aiLogic.Pending())
	assert.Contains(t, r.Desc(), "BotPending:true")
	assert.Equal(t, []string{EventRoomCreated}, repo.eventTypes())

	var created v1.RoomCreated
	s.last(t, v1.TypeRoomCreated, &created)
	assert.Equal(t, r.ID, created.RoomID)
	assert.Equal(t, "p1", created.PlayerID)

	var hand v1.RoundHand
	s.last(t, v1.TypeRoundHand, &hand)
	assert.Len(t, hand.Hand, 5)
	assert.Equal(t, int32(3), hand.RequiredPickCount)
	assert.Len(t, hand.Deck, 10)
	assert.Len(t, hand.OpponentDeck, 15, "the robot is dealt after the human")
	assert.Empty(t, hand.Discard)

	s.reset()
	require.NoError(t, play(m, r, "p1", 0, 1, 2))
	assert.Equal(t, []string{v1.TypeRoomState}, s.types())
	assert.Equal(t, 1, repo.timer.Len(), "a pending robot timer is not duplicated")

	s.reset()
	assert.Equal(t, 1, repo.timer.fireAll())
	assert.Equal(t, []string{v1.TypeRoomState, v1.TypeRoundReveal, v1.TypeRoundResult, v1.TypeRoomState}, s.types())
	assert.Equal(t, 1, s.count(v1.TypeRoundResult))
	assert.Zero(t, repo.timer.Len())
	assert.False(t, r.aiLogic.Pending())
	assert.True(t, r.IsAwaitingConfirm())

	var reveal v1.RoundReveal
	s.last(t, v1.TypeRoundReveal, &reveal)
	assert.Equal(t, "p1", reveal.P1ID)
	assert.Len(t, reveal.P1, 3)
	assert.Len(t, reveal.P2, 3)

	for _, p := range r.GetPlayers() {
		assert.Empty(t, p.GetHand())
		assert.Equal(t, 10, p.GetDeck().Len())
		assert.Equal(t, 5, p.GetDeck().DiscardLen())
	}
}

func TestRobotSubmitsFirst(t *testing.T) {
	repo := newFakeRepo()
	m := NewManager(repo)
	s := newFakeSession("s1")
	r := startBot(t, m, s, "p1")

	repo.timer.fireAll()
	robot := r.GetRobot()
	assert.True(t, r.hasSubmitted(robot.GetPlayerID()))
	assert.Zero(t, s.count(v1.TypeRoundResult))
	assert.Zero(t, repo.timer.Len())

	var state v1.RoomState
	s.last(t, v1.TypeRoomState, &state)
	require.Len(t, state.Players, 2)
	assert.False(t, state.Players[0].Submitted)
	assert.True(t, state.Players[1].Submitted)

	require.NoError(t, play(m, r, "p1", 2, 1, 0))
	assert.Equal(t, 1, s.count(v1.TypeRoundResult))
	assert.Zero(t, repo.timer.Len(), "resolution must not arm another robot timer")
}

func TestRobotSequenceIsLegal(t *testing.T) {
	repo := newFakeRepo()
	m := NewManager(repo)
	s := newFakeSession("s1")
	r := startBot(t, m, s, "p1")

	robot := r.GetRobot()
	hand := card.Count(robot.GetHand())
	repo.timer.fireAll()

	seq := r.actions[robot.GetPlayerID()]
	require.Len(t, seq, 3)
	for typ, n := range card.Count(seq) {
		assert.LessOrEqual(t, n, hand[typ])
	}
}

func TestStaleRobotTimerIsIgnored(t *testing.T) {
	repo := newFakeRepo()
	m := NewManager(repo)
	s := newFakeSession("s1")
	r := startBot(t, m, s, "p1")

	task := repo.timer.tasks[r.aiLogic.timerID]
	require.NotNil(t, task)

	m.OnLeave("s1", r.ID)
	assert.Nil(t, m.Get(r.ID))
	assert.Zero(t, repo.timer.Len())

	task.f()
	assert.Empty(t, r.actions)
}

func TestPlayCardsValidation(t *testing.T) {
	repo := newFakeRepo()
	m := NewManager(repo)
	s := newFakeSession("s1")
	r := startBot(t, m, s, "p1")
	robot := r.GetRobot()

	cases := []struct {
		name string
		req  *v1.PlayCardsReq
		err  string
	}{
		{"missing ids", &v1.PlayCardsReq{RoomID: r.ID}, "Room ID and player ID are required."},
		{"unknown room", &v1.PlayCardsReq{RoomID: "0000", PlayerID: "p1"}, "Room not found."},
		{"round mismatch", &v1.PlayCardsReq{RoomID: r.ID, PlayerID: "p1", Round: 5, Picks: v1.IndexPicks(0, 1, 2)}, "Round mismatch."},
		{"stranger", &v1.PlayCardsReq{RoomID: r.ID, PlayerID: "nobody", Picks: v1.IndexPicks(0, 1, 2)}, "Player not in room."},
		{"robot", &v1.PlayCardsReq{RoomID: r.ID, PlayerID: robot.GetPlayerID(), Picks: v1.IndexPicks(0, 1, 2)}, "Bot action is not allowed."},
		{"short", &v1.PlayCardsReq{RoomID: r.ID, PlayerID: "p1", Picks: v1.IndexPicks(0, 1)}, "Must submit 3 cards."},
		{"missing picks", &v1.PlayCardsReq{RoomID: r.ID, PlayerID: "p1"}, "Must submit 3 cards."},
		{"duplicate", &v1.PlayCardsReq{RoomID: r.ID, PlayerID: "p1", Picks: v1.IndexPicks(0, 0, 1)}, "Duplicate card selections are not allowed."},
		{"range", &v1.PlayCardsReq{RoomID: r.ID, PlayerID: "p1", Picks: v1.IndexPicks(0, 1, 5)}, "Card index out of range."},
		{"fraction", &v1.PlayCardsReq{RoomID: r.ID, PlayerID: "p1", Picks: v1.IndexPicks(0, 1, 1.5)}, "Card index out of range."},
		{"bad type", &v1.PlayCardsReq{RoomID: r.ID, PlayerID: "p1", Picks: v1.TypePicks("A", "X", "D")}, "Invalid card type."},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.err, Message(m.OnPlayCards(c.req)))
			assert.False(t, r.hasSubmitted("p1"))
		})
	}

	require.NoError(t, play(m, r, "p1", 0, 1, 2))
	assert.Equal(t, "Cards already submitted.", Message(play(m, r, "p1", 2, 3, 4)))
}

func TestResolvePicks(t *testing.T) {
	A, D, R := card.Attack, card.Defend, card.Recover
	hand := []card.Card{A, D, A, R, A}

	seq, err := ResolvePicks(hand, v1.IndexPicks(4, 0, 1), 3)
	require.NoError(t, err)
	assert.Equal(t, []card.Card{A, A, D}, seq)

	seq, err = ResolvePicks(hand, v1.TypePicks("r", "a", "D"), 3)
	require.NoError(t, err)
	assert.Equal(t, []card.Card{R, A, D}, seq)

	_, err = ResolvePicks(hand, v1.TypePicks("D", "D", "A"), 3)
	assert.Equal(t, "Selected cards exceed hand count.", Message(err))

	_, err = ResolvePicks(hand, v1.Picks{Kind: v1.PickMixed}, 0)
	assert.Equal(t, "Invalid picks format.", Message(err))

	_, err = ResolvePicks(hand, v1.IndexPicks(0, 1, 2, 3), 3)
	assert.Equal(t, "Must submit 3 cards.", Message(err))

	short := []card.Card{R, D}
	assert.Equal(t, 2, RequiredPickCount(short, 3))
	seq, err = ResolvePicks(short, v1.IndexPicks(1, 0), 3)
	require.NoError(t, err)
	assert.Equal(t, []card.Card{D, R}, seq)

	assert.Equal(t, 0, RequiredPickCount(nil, 3))
	seq, err = ResolvePicks(nil, v1.IndexPicks(), 3)
	require.NoError(t, err)
	assert.Empty(t, seq)
}

func TestCreateAndJoin(t *testing.T) {
	repo := newFakeRepo()
	m := NewManager(repo)
	r, s1, s2 := twoHumans(t, m)

	assert.Equal(t, "4321", r.ID)
	assert.Equal(t, StPlaying, r.GetStatus())
	assert.False(t, r.HasRobot())
	assert.Zero(t, repo.timer.Len())

	assert.Equal(t, []string{v1.TypeRoomCreated, v1.TypeRoomState, v1.TypeRoomState, v1.TypeRoundHand}, s1.types())
	assert.Equal(t, []string{v1.TypeRoomJoined, v1.TypeRoomState, v1.TypeRoundHand}, s2.types())

	var state v1.RoomState
	s1.last(t, v1.TypeRoomState, &state)
	assert.Equal(t, "playing", state.Status)
	require.Len(t, state.Players, 2)
	assert.Equal(t, "p1", state.Players[0].PlayerID)
	assert.Equal(t, "bob", state.Players[1].Name)
	assert.Equal(t, int32(10), state.Players[1].HP)

	_, _, err := m.OnJoinRoom(newFakeSession("s3"), &v1.JoinRoomReq{RoomID: r.ID, PlayerName: "carol"})
	assert.Equal(t, "Room is full.", Message(err))
	assert.Len(t, r.GetPlayers(), 2)
}

func TestJoinErrors(t *testing.T) {
	m := NewManager(newFakeRepo())

	_, _, err := m.OnJoinRoom(newFakeSession("s"), &v1.JoinRoomReq{PlayerName: "x"})
	assert.Equal(t, "Room ID is required.", Message(err))

	_, _, err = m.OnJoinRoom(newFakeSession("s"), &v1.JoinRoomReq{RoomID: "1234", PlayerName: " "})
	assert.Equal(t, "Player name is required.", Message(err))

	_, _, err = m.OnJoinRoom(newFakeSession("s"), &v1.JoinRoomReq{RoomID: "1234", PlayerName: "x"})
	assert.Equal(t, "Room not found.", Message(err))

	_, _, err = m.OnCreateRoom(newFakeSession("s"), &v1.CreateRoomReq{PlayerName: ""})
	assert.Equal(t, "Player name is required.", Message(err))

	_, _, err = m.OnCreateRoomBot(newFakeSession("s"), &v1.CreateRoomBotReq{PlayerName: "  "})
	assert.Equal(t, "Player name is required.", Message(err))

	assert.Zero(t, m.Len())
}

func TestJoinRejectsSeatedPlayerID(t *testing.T) {
	m := NewManager(newFakeRepo())
	s1, s2 := newFakeSession("s1"), newFakeSession("s2")
	r, _, err := m.OnCreateRoom(s1, &v1.CreateRoomReq{PlayerName: "alice", PlayerID: "x"})
	require.NoError(t, err)

	_, _, err = m.OnJoinRoom(s2, &v1.JoinRoomReq{RoomID: r.ID, PlayerName: "bob", PlayerID: " x "})
	assert.ErrorIs(t, err, ErrPlayerExists)
	assert.Equal(t, "Player already in room.", Message(err))
	assert.Len(t, r.GetPlayers(), 1)
	assert.Equal(t, StWaiting, r.GetStatus())
	assert.Zero(t, s2.count(v1.TypeRoomJoined))

	_, _, err = m.OnJoinRoom(s2, &v1.JoinRoomReq{RoomID: r.ID, PlayerName: "bob", PlayerID: "y"})
	require.NoError(t, err)
	require.NoError(t, play(m, r, "x", 0, 1, 2))
	assert.Zero(t, s1.count(v1.TypeRoundResult))
	assert.Zero(t, s2.count(v1.TypeRoundResult))
}

func TestPickSizeFixedAtDeal(t *testing.T) {
	repo := newFakeRepo()
	m := NewManager(repo)
	s := newFakeSession("s1")
	r := startBot(t, m, s, "p1")

	var hand v1.RoundHand
	s.last(t, v1.TypeRoundHand, &hand)
	require.Equal(t, int32(3), hand.RequiredPickCount)

	repo.cfg.Game.PickSize = 2
	assert.Equal(t, 3, r.PickSize())
	require.NoError(t, play(m, r, "p1", 0, 1, 2))

	repo.timer.fireAll()
	assert.Empty(t, r.actions, "round already resolved")
	assert.Equal(t, 1, s.count(v1.TypeRoundResult))

	var reveal v1.RoundReveal
	s.last(t, v1.TypeRoundReveal, &reveal)
	assert.Len(t, reveal.P1, 3)
	assert.Len(t, reveal.P2, 3)

	require.NoError(t, m.OnRoundConfirm(&v1.RoundConfirmReq{RoomID: r.ID, PlayerID: "p1", Round: r.GetRound()}))
	s.last(t, v1.TypeRoundHand, &hand)
	assert.Equal(t, int32(2), hand.RequiredPickCount, "the next deal picks up the new size")
	assert.Equal(t, 2, r.PickSize())
}

func TestStartBotDefaultName(t *testing.T) {
	m := NewManager(newFakeRepo())
	_, p, err := m.OnStartBot(newFakeSession("s"), &v1.StartBotReq{PlayerName: "  "})
	require.NoError(t, err)
	assert.Equal(t, DefaultName, p.GetName())
	assert.Regexp(t, `^user_[0-9a-z]{6}$`, p.GetPlayerID())
}

func TestRoundOnlyResolvesWithBothSubmissions(t *testing.T) {
	repo := newFakeRepo()
	repo.singleDeck("R")
	m := NewManager(repo)
	r, s1, s2 := twoHumans(t, m)

	require.NoError(t, play(m, r, "p1", 0, 1, 2))
	assert.Zero(t, s1.count(v1.TypeRoundResult))
	assert.Zero(t, s2.count(v1.TypeRoundResult))

	require.NoError(t, play(m, r, "p2", 0, 1, 2))
	assert.Equal(t, 1, s1.count(v1.TypeRoundResult))
	assert.Equal(t, 1, s2.count(v1.TypeRoundResult))

	var res v1.RoundResult
	s2.last(t, v1.TypeRoundResult, &res)
	assert.Equal(t, int32(1), res.Round)
	assert.Len(t, res.Steps, 3)
	assert.Equal(t, int32(10), res.P1HP)
	assert.Equal(t, int32(10), res.P2HP)

	assert.True(t, r.IsAwaitingConfirm())
	assert.Equal(t, "Round is awaiting confirmation.", Message(play(m, r, "p1", 0, 1, 2)))
}

func TestConfirmFlow(t *testing.T) {
	repo := newFakeRepo()
	repo.singleDeck("R")
	m := NewManager(repo)
	r, s1, _ := twoHumans(t, m)

	confirm := func(playerID string, round int32) error {
		return m.OnRoundConfirm(&v1.RoundConfirmReq{RoomID: r.ID, PlayerID: playerID, Round: round})
	}

	assert.Equal(t, "Round is not awaiting confirmation.", Message(confirm("p1", 1)))

	require.NoError(t, play(m, r, "p1", 0, 1, 2))
	require.NoError(t, play(m, r, "p2", 0, 1, 2))

	assert.Equal(t, "Round mismatch.", Message(confirm("p1", 2)))
	assert.Equal(t, "Invalid player.", Message(confirm("nobody", 1)))

	s1.reset()
	require.NoError(t, confirm("p1", 1))
	assert.Equal(t, int32(1), r.GetRound())
	assert.Empty(t, s1.types())

	require.NoError(t, confirm("p2", 0))
	assert.Equal(t, int32(2), r.GetRound())
	assert.False(t, r.IsAwaitingConfirm())
	assert.Equal(t, []string{v1.TypeRoomState, v1.TypeRoundHand}, s1.types())

	var hand v1.RoundHand
	s1.last(t, v1.TypeRoundHand, &hand)
	assert.Equal(t, int32(2), hand.Round)
	assert.Len(t, hand.Hand, 5)
}

func TestRobotRoomConfirmNeedsOnlyHuman(t *testing.T) {
	repo := newFakeRepo()
	m := NewManager(repo)
	s := newFakeSession("s1")
	r := startBot(t, m, s, "p1")

	require.NoError(t, play(m, r, "p1", 0, 1, 2))
	repo.timer.fireAll()
	require.True(t, r.IsAwaitingConfirm())
	assert.Zero(t, repo.timer.Len())

	err := m.OnRoundConfirm(&v1.RoundConfirmReq{RoomID: r.ID, PlayerID: r.GetRobot().GetPlayerID()})
	assert.Equal(t, "Invalid player.", Message(err))

	require.NoError(t, m.OnRoundConfirm(&v1.RoundConfirmReq{RoomID: r.ID, PlayerID: "p1", Round: 1}))
	assert.Equal(t, int32(2), r.GetRound())
	assert.Equal(t, 1, repo.timer.Len())
}

func TestGameOverAtMaxRounds(t *testing.T) {
	repo := newFakeRepo()
	repo.singleDeck("R")
	repo.cfg.Game.MaxRounds = 2
	m := NewManager(repo)
	r, s1, s2 := twoHumans(t, m)

	for round := int32(1); round <= 2; round++ {
		require.NoError(t, play(m, r, "p1", 0, 1, 2))
		require.NoError(t, play(m, r, "p2", 0, 1, 2))
		if round < 2 {
			require.NoError(t, m.OnRoundConfirm(&v1.RoundConfirmReq{RoomID: r.ID, PlayerID: "p1"}))
			require.NoError(t, m.OnRoundConfirm(&v1.RoundConfirmReq{RoomID: r.ID, PlayerID: "p2"}))
		}
	}

	assert.Equal(t, StFinished, r.GetStatus())
	assert.False(t, r.IsAwaitingConfirm())
	types := s1.types()
	assert.Equal(t, []string{v1.TypeRoundResult, v1.TypeRoomState, v1.TypeGameOver}, types[len(types)-3:])

	var over v1.GameOver
	s2.last(t, v1.TypeGameOver, &over)
	assert.Equal(t, v1.ResultDraw, over.Result)
	assert.Equal(t, int32(2), over.Round)
	assert.Equal(t, int32(10), over.Final.P1.HP)
	assert.Equal(t, int32(10), over.Final.P2.HP)

	assert.Contains(t, repo.eventTypes(), EventGameOver)
	assert.NoError(t, play(m, r, "p1", 0, 1, 2), "submissions after game over are dropped")
	assert.Equal(t, "Game is already finished.", Message(m.OnRoundConfirm(&v1.RoundConfirmReq{RoomID: r.ID, PlayerID: "p1"})))

	_, _, err := m.OnJoinRoom(newFakeSession("s3"), &v1.JoinRoomReq{RoomID: r.ID, PlayerName: "carol"})
	assert.Equal(t, "Room already finished.", Message(err))
}

func TestGameOverAtZeroHP(t *testing.T) {
	repo := newFakeRepo()
	repo.singleDeck("A")
	m := NewManager(repo)
	r, s1, _ := twoHumans(t, m)

	// A vs A is (-2,-2) per pair: 10 -> 4 after round 1, 0 during round 2.
	require.NoError(t, play(m, r, "p1", 0, 1, 2))
	require.NoError(t, play(m, r, "p2", 0, 1, 2))
	require.NoError(t, m.OnRoundConfirm(&v1.RoundConfirmReq{RoomID: r.ID, PlayerID: "p1"}))
	require.NoError(t, m.OnRoundConfirm(&v1.RoundConfirmReq{RoomID: r.ID, PlayerID: "p2"}))
	require.NoError(t, play(m, r, "p1", 0, 1, 2))
	require.NoError(t, play(m, r, "p2", 0, 1, 2))

	assert.Equal(t, StFinished, r.GetStatus())
	assert.Equal(t, int32(2), r.GetRound())

	var res v1.RoundResult
	s1.last(t, v1.TypeRoundResult, &res)
	assert.Equal(t, []int32{2, 0, 0}, []int32{res.Steps[0].P1HP, res.Steps[1].P1HP, res.Steps[2].P1HP})

	var over v1.GameOver
	s1.last(t, v1.TypeGameOver, &over)
	assert.Equal(t, v1.ResultDraw, over.Result)
	assert.Zero(t, over.Final.P1.HP)
}

func TestRematchWithRobot(t *testing.T) {
	repo := newFakeRepo()
	repo.singleDeck("A")
	repo.cfg.Game.InitialHP = 2
	m := NewManager(repo)
	s := newFakeSession("s1")
	r := startBot(t, m, s, "p1")

	assert.Equal(t, "Rematch is only available after game over.",
		Message(m.OnRematch(&v1.RematchReq{RoomID: r.ID, PlayerID: "p1"})))

	require.NoError(t, play(m, r, "p1", 0, 1, 2))
	repo.timer.fireAll()
	require.Equal(t, StFinished, r.GetStatus())

	assert.Equal(t, "Player not in room.", Message(m.OnRematch(&v1.RematchReq{RoomID: r.ID, PlayerID: "nobody"})))

	s.reset()
	require.NoError(t, m.OnRematch(&v1.RematchReq{RoomID: r.ID, PlayerID: "p1"}))
	assert.Equal(t, StPlaying, r.GetStatus())
	assert.Equal(t, int32(1), r.GetRound())
	assert.Equal(t, []string{v1.TypeRoomState, v1.TypeRoundHand}, s.types())
	assert.Equal(t, 1, repo.timer.Len())
	for _, p := range r.GetPlayers() {
		assert.Equal(t, int32(2), p.GetHP())
		assert.Len(t, p.GetHand(), 5)
		assert.Equal(t, 10, p.GetDeck().Len())
		assert.Zero(t, p.GetDeck().DiscardLen())
	}
}

func TestRematchTwoHumans(t *testing.T) {
	repo := newFakeRepo()
	repo.singleDeck("R")
	repo.cfg.Game.MaxRounds = 1
	m := NewManager(repo)
	r, s1, s2 := twoHumans(t, m)

	require.NoError(t, play(m, r, "p1", 0, 1, 2))
	require.NoError(t, play(m, r, "p2", 0, 1, 2))
	require.Equal(t, StFinished, r.GetStatus())

	s2.reset()
	require.NoError(t, m.OnRematch(&v1.RematchReq{RoomID: r.ID, PlayerID: "p1"}))
	assert.Equal(t, StWaiting, r.GetStatus())
	assert.Equal(t, []string{v1.TypeRoomState}, s2.types())

	require.NoError(t, m.OnRematch(&v1.RematchReq{RoomID: r.ID, PlayerID: "p2"}))
	assert.Equal(t, StPlaying, r.GetStatus())
	assert.Equal(t, int32(1), r.GetRound())
	assert.Equal(t, v1.TypeRoundHand, s1.frames[len(s1.frames)-1].Type)
	assert.Equal(t, v1.TypeRoundHand, s2.frames[len(s2.frames)-1].Type)
	for _, p := range r.GetPlayers() {
		assert.Equal(t, int32(10), p.GetHP())
	}
}

func TestLeave(t *testing.T) {
	repo := newFakeRepo()
	repo.singleDeck("R")
	m := NewManager(repo)
	r, s1, _ := twoHumans(t, m)

	require.NoError(t, play(m, r, "p1", 0, 1, 2))

	p2 := r.GetPlayer("p2")
	require.Equal(t, r.ID, p2.GetRoomID())

	s1.reset()
	m.OnLeave("s2", r.ID)
	assert.Empty(t, p2.GetRoomID())
	assert.Equal(t, r.ID, r.GetPlayer("p1").GetRoomID())
	assert.Equal(t, StWaiting, r.GetStatus())
	assert.Len(t, r.GetPlayers(), 1)
	assert.Empty(t, r.actions)
	assert.Equal(t, []string{v1.TypeRoomState}, s1.types())

	m.OnLeave("unknown", r.ID)
	assert.Len(t, r.GetPlayers(), 1)

	s3 := newFakeSession("s3")
	_, _, err := m.OnJoinRoom(s3, &v1.JoinRoomReq{RoomID: r.ID, PlayerName: "carol", PlayerID: "p3"})
	require.NoError(t, err)
	assert.Equal(t, StPlaying, r.GetStatus())
	assert.Equal(t, 1, s3.count(v1.TypeRoundHand))
	assert.Len(t, r.GetPlayers()[0].GetHand(), 5)

	m.OnLeave("s1", r.ID)
	m.OnLeave("s3", r.ID)
	assert.Nil(t, m.Get(r.ID))
	assert.Zero(t, m.Len())
	assert.Equal(t, []string{EventRoomCreated, EventRoomClosed}, repo.eventTypes())
}

func TestRoomIDs(t *testing.T) {
	m := NewManager(newFakeRepo())

	r1, err := m.create("1234")
	require.NoError(t, err)
	assert.Equal(t, "1234", r1.ID)

	r2, err := m.create("1234")
	require.NoError(t, err)
	assert.NotEqual(t, "1234", r2.ID)
	assert.Regexp(t, `^\d{4}$`, r2.ID)

	r3, err := m.create("abc")
	require.NoError(t, err)
	n, err := strconv.Atoi(r3.ID)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, n, roomIDMin)
	assert.LessOrEqual(t, n, roomIDMax)

	summaries := m.Summaries()
	require.Len(t, summaries, 3)
	assert.Equal(t, []string{r1.ID, r2.ID, r3.ID}, []string{summaries[0].RoomID, summaries[1].RoomID, summaries[2].RoomID})
}

func TestRoomIDsExhausted(t *testing.T) {
	m := NewManager(newFakeRepo())
	for n := roomIDMin; n <= roomIDMax; n++ {
		id := strconv.Itoa(n)
		m.rooms[id] = &Room{ID: id}
	}
	_, err := m.newRoomID("")
	assert.Equal(t, "No room ID available.", Message(err))

	delete(m.rooms, "5555")
	id, err := m.newRoomID("")
	require.NoError(t, err)
	assert.Equal(t, "5555", id)
}

func TestSummaries(t *testing.T) {
	repo := newFakeRepo()
	m := NewManager(repo)
	startBot(t, m, newFakeSession("s1"), "p1")
	_, _, err := m.OnCreateRoom(newFakeSession("s2"), &v1.CreateRoomReq{PlayerName: "bob"})
	require.NoError(t, err)

	rows := m.Summaries()
	require.Len(t, rows, 2)
	assert.Equal(t, "playing", rows[0].Status)
	assert.True(t, rows[0].HasBot)
	assert.Equal(t, int32(2), rows[0].PlayersCount)
	assert.Equal(t, "机器人", rows[0].Players[1].Name)
	assert.True(t, rows[0].Players[1].IsBot)
	assert.Equal(t, "waiting", rows[1].Status)
	assert.False(t, rows[1].HasBot)
	assert.Equal(t, int32(1), rows[1].PlayersCount)

	m.Close()
	assert.Zero(t, m.Len())
	assert.Empty(t, m.Summaries())
	assert.Zero(t, repo.timer.Len())
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "waiting", StWaiting.String())
	assert.Equal(t, "playing", StPlaying.String())
	assert.Equal(t, "finished", StFinished.String())
	assert.Equal(t, "Status(9)", Status(9).String())
}

func TestMessage(t *testing.T) {
	assert.Empty(t, Message(nil))
	assert.Equal(t, "Unknown message type: foo", Message(ErrUnknownType("foo")))
	assert.Equal(t, "Must submit 2 cards.", Message(ErrPickCount(2)))
}
