package card

import (
	"strings"

	"github.com/samber/lo"
)

// Card is one action card. Its JSON form is the one-letter code.
type Card string

const (
	Attack  Card = "A"
	Defend  Card = "D"
	Recover Card = "R"
)

// Types lists every card type in table order.
var Types = []Card{Attack, Defend, Recover}

func (c Card) Valid() bool {
	switch c {
	case Attack, Defend, Recover:
		return true
	default:
		return false
	}
}

func (c Card) String() string {
	return string(c)
}

// Parse accepts a card code in any case.
func Parse(s string) (Card, bool) {
	c := Card(strings.ToUpper(s))
	return c, c.Valid()
}

// Strings converts cards to their wire codes.
func Strings(cards []Card) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = string(c)
	}
	return out
}

// Count tallies cards by type.
func Count(cards []Card) map[Card]int {
	return lo.CountValues(cards)
}
