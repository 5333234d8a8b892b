package ext

import (
	"math/rand"
	"sync"
	"time"

	"golang.org/x/exp/constraints"
)

var (
	mu    sync.Mutex
	srand *rand.Rand
)

func init() {
	srand = rand.New(rand.NewSource(time.Now().UnixNano()))
}

// Seed resets the shared source. Tests use it for reproducible shuffles.
func Seed(seed int64) {
	mu.Lock()
	srand = rand.New(rand.NewSource(seed))
	mu.Unlock()
}

// RandInt returns a value in [min, max).
func RandInt[T constraints.Integer](min T, max T) T {
	if max <= min {
		return min
	}
	mu.Lock()
	n := srand.Int63n(int64(max - min))
	mu.Unlock()
	return T(n) + min
}

// RandIntInclusive returns a value in [min, max].
func RandIntInclusive[T constraints.Integer](min T, max T) T {
	return RandInt(min, max+1)
}

// Shuffle permutes s in place (Fisher-Yates).
func Shuffle[T any](s []T) {
	mu.Lock()
	defer mu.Unlock()
	for i := len(s) - 1; i > 0; i-- {
		j := srand.Intn(i + 1)
		s[i], s[j] = s[j], s[i]
	}
}
