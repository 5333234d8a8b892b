package player

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yola1107/cardduel/internal/biz/card"
)

type fakeSender struct {
	id     string
	closed bool
	sent   [][]byte
}

func (f *fakeSender) ID() string   { return f.id }
func (f *fakeSender) Closed() bool { return f.closed }
func (f *fakeSender) Send(data []byte) error {
	f.sent = append(f.sent, data)
	return nil
}

func TestNewID(t *testing.T) {
	re := regexp.MustCompile(`^user_[0-9a-z]{6}$`)
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id := NewID()
		assert.Regexp(t, re, id)
		seen[id] = true
	}
	assert.Greater(t, len(seen), 90)
}

func TestNewPlayer(t *testing.T) {
	p := New(&Raw{ID: "  alice-1 ", Name: "Alice"}, card.DefaultComposition(), 10)
	assert.Equal(t, "alice-1", p.GetPlayerID())
	assert.Equal(t, "Alice", p.GetName())
	assert.Equal(t, int32(10), p.GetHP())
	assert.Equal(t, 15, p.GetDeck().Len())
	assert.Equal(t, int32(-1), p.GetChairID())
	assert.False(t, p.IsRobot())

	p2 := New(&Raw{Name: "Bob"}, card.DefaultComposition(), 10)
	assert.Contains(t, p2.GetPlayerID(), "user_")
}

func TestSessionBackReference(t *testing.T) {
	s := &fakeSender{id: "s1"}
	p := New(&Raw{Name: "Alice", Session: s}, card.DefaultComposition(), 10)
	assert.True(t, p.IsSession("s1"))
	assert.False(t, p.IsSession("s2"))
	assert.False(t, p.IsOffline())

	require.NoError(t, p.Send([]byte("x")))
	assert.Len(t, s.sent, 1)

	s.closed = true
	assert.True(t, p.IsOffline())
	require.NoError(t, p.Send([]byte("y")))
	assert.Len(t, s.sent, 1)

	bot := New(&Raw{Name: "bot", IsRobot: true}, card.DefaultComposition(), 10)
	assert.True(t, bot.IsOffline())
	assert.NoError(t, bot.Send([]byte("z")))
	assert.False(t, bot.IsSession(""))
}

func TestDealAndDiscard(t *testing.T) {
	p := New(&Raw{Name: "Alice"}, card.DefaultComposition(), 10)
	hand := p.DealHand(5)
	require.Len(t, hand, 5)
	assert.Equal(t, 10, p.GetDeck().Len())

	p.DealHand(5)
	assert.Equal(t, 5, p.GetDeck().DiscardLen())
	assert.Equal(t, 5, p.GetDeck().Len())

	p.DiscardHand()
	assert.Empty(t, p.GetHand())
	assert.Equal(t, 10, p.GetDeck().DiscardLen())
}

func TestHPAndReset(t *testing.T) {
	p := New(&Raw{Name: "Alice"}, card.DefaultComposition(), 10)
	p.SetHP(-3)
	assert.Equal(t, int32(0), p.GetHP())
	assert.True(t, p.IsDead())

	p.DealHand(5)
	p.Reset(card.Composition{Attack: 3}, 7)
	assert.Equal(t, int32(7), p.GetHP())
	assert.Empty(t, p.GetHand())
	assert.Equal(t, 3, p.GetDeck().Len())
	assert.Zero(t, p.GetDeck().DiscardLen())
}
