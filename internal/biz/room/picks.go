package room

import (
	"math"

	v1 "github.com/yola1107/cardduel/api/cardgame/v1"
	"github.com/yola1107/cardduel/internal/biz/card"
)

// RequiredPickCount is the number of cards a seat must submit for hand.
func RequiredPickCount(hand []card.Card, pickSize int) int {
	return max(0, min(pickSize, len(hand)))
}

// ResolvePicks validates a submission against hand and turns it into the ordered card sequence.
func ResolvePicks(hand []card.Card, picks v1.Picks, pickSize int) ([]card.Card, error) {
	required := RequiredPickCount(hand, pickSize)
	if picks.Len() != required {
		return nil, ErrPickCount(required)
	}

	switch picks.Kind {
	case v1.PickIndices:
		return resolveIndices(hand, picks.Indices)
	case v1.PickTypes:
		return resolveTypes(hand, picks.Types)
	default:
		return nil, ErrInvalidPicks
	}
}

func resolveIndices(hand []card.Card, indices []float64) ([]card.Card, error) {
	seen := make(map[float64]struct{}, len(indices))
	for _, idx := range indices {
		if _, ok := seen[idx]; ok {
			return nil, ErrDuplicatePick
		}
		seen[idx] = struct{}{}
	}

	seq := make([]card.Card, 0, len(indices))
	for _, idx := range indices {
		if idx != math.Trunc(idx) || idx < 0 || idx >= float64(len(hand)) {
			return nil, ErrIndexRange
		}
		seq = append(seq, hand[int(idx)])
	}
	return seq, nil
}

func resolveTypes(hand []card.Card, types []string) ([]card.Card, error) {
	seq := make([]card.Card, 0, len(types))
	for _, s := range types {
		c, ok := card.Parse(s)
		if !ok {
			return nil, ErrInvalidCard
		}
		seq = append(seq, c)
	}

	have, want := card.Count(hand), card.Count(seq)
	for _, typ := range card.Types {
		if want[typ] > have[typ] {
			return nil, ErrExceedHand
		}
	}
	return seq, nil
}
