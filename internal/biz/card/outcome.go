package card

// deltas[self][opponent] = (self delta, opponent delta)
var deltas = map[Card]map[Card][2]int32{
	Attack:  {Attack: {-2, -2}, Defend: {-1, 0}, Recover: {1, -2}},
	Defend:  {Attack: {0, -1}, Defend: {-1, -1}, Recover: {0, 1}},
	Recover: {Attack: {-2, 1}, Defend: {1, 0}, Recover: {0, 0}},
}

// Resolve returns the hit point deltas for self and opponent when self plays
// against opponent. Unknown cards resolve to no change.
func Resolve(self, opponent Card) (int32, int32) {
	row, ok := deltas[self]
	if !ok {
		return 0, 0
	}
	d, ok := row[opponent]
	if !ok {
		return 0, 0
	}
	return d[0], d[1]
}

// ApplyDelta adds delta to hp and floors the result at zero.
func ApplyDelta(hp, delta int32) int32 {
	return max(0, hp+delta)
}
