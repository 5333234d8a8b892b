package card

import (
	"github.com/samber/lo"
	"github.com/yola1107/cardduel/library/ext"
	"github.com/yola1107/cardduel/library/xgo"
)

// Composition is the number of cards of each type in a fresh deck.
type Composition struct {
	Attack  int32 `json:"attack"`
	Defend  int32 `json:"defend"`
	Recover int32 `json:"recover"`
}

func DefaultComposition() Composition {
	return Composition{Attack: 5, Defend: 5, Recover: 5}
}

func (c Composition) Total() int {
	return int(max(0, c.Attack) + max(0, c.Defend) + max(0, c.Recover))
}

// Build returns a shuffled deck of the composition.
func (c Composition) Build() []Card {
	cards := make([]Card, 0, c.Total())
	cards = append(cards, lo.Times(int(max(0, c.Attack)), func(int) Card { return Attack })...)
	cards = append(cards, lo.Times(int(max(0, c.Defend)), func(int) Card { return Defend })...)
	cards = append(cards, lo.Times(int(max(0, c.Recover)), func(int) Card { return Recover })...)
	ext.Shuffle(cards)
	return cards
}

/*
	Deck: a draw pile plus discard pile owned by one player
*/

type Deck struct {
	cards   []Card
	discard []Card
}

func NewDeck(c Composition) *Deck {
	return &Deck{cards: c.Build()}
}

// Reset rebuilds a fresh shuffled deck and empties the discard pile.
func (d *Deck) Reset(c Composition) {
	d.cards = c.Build()
	d.discard = nil
}

// Draw pops up to n cards from the front. An empty draw pile is refilled from the
// shuffled discard pile; when both are empty the hand comes back short.
func (d *Deck) Draw(n int) []Card {
	hand := make([]Card, 0, max(0, n))
	for len(hand) < n {
		if len(d.cards) == 0 {
			if len(d.discard) == 0 {
				break
			}
			d.cards = d.discard
			d.discard = nil
			ext.Shuffle(d.cards)
		}
		hand = append(hand, d.cards[0])
		d.cards = d.cards[1:]
	}
	return hand
}

// Discard moves spent cards onto the discard pile.
func (d *Deck) Discard(cards ...Card) {
	d.discard = append(d.discard, cards...)
}

// Cards returns a copy of the draw pile in draw order.
func (d *Deck) Cards() []Card {
	return xgo.SliceCopy(d.cards)
}

// Discarded returns a copy of the discard pile.
func (d *Deck) Discarded() []Card {
	return xgo.SliceCopy(d.discard)
}

func (d *Deck) Len() int {
	return len(d.cards)
}

func (d *Deck) DiscardLen() int {
	return len(d.discard)
}
