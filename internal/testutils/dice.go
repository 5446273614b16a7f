package testutils

import (
	"math/rand"

	"github.com/KirkDiggler/rpg-toolkit/dice"
)

// ScriptedRoller implements dice.Roller returning a fixed sequence of
// values. When the script runs out it returns 1, the lowest possible roll.
// Values larger than the requested die size are clamped to the size.
type ScriptedRoller struct {
	Rolls []int
	next  int
}

var _ dice.Roller = (*ScriptedRoller)(nil)

// Script replaces the sequence and rewinds to its start
func (r *ScriptedRoller) Script(rolls ...int) {
	r.Rolls = rolls
	r.next = 0
}

// Roll returns the next scripted value
func (r *ScriptedRoller) Roll(size int) (int, error) {
	value := 1
	if r.next < len(r.Rolls) {
		value = r.Rolls[r.next]
		r.next++
	}
	if value > size {
		value = size
	}
	if value < 1 {
		value = 1
	}
	return value, nil
}

// RollN returns the next count scripted values
func (r *ScriptedRoller) RollN(count, size int) ([]int, error) {
	values := make([]int, count)
	for i := range values {
		v, err := r.Roll(size)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}

// SeededRoller implements dice.Roller over a seeded PRNG, so repeated runs
// with the same seed produce the same rolls.
type SeededRoller struct {
	rng *rand.Rand
}

var _ dice.Roller = (*SeededRoller)(nil)

// NewSeededRoller creates a roller seeded with the given value
func NewSeededRoller(seed int64) *SeededRoller {
	return &SeededRoller{rng: rand.New(rand.NewSource(seed))} // #nosec G404 -- test determinism, not crypto
}

// Roll returns a uniform value in [1, size]
func (r *SeededRoller) Roll(size int) (int, error) {
	if size < 1 {
		size = 1
	}
	return r.rng.Intn(size) + 1, nil
}

// RollN returns count uniform values in [1, size]
func (r *SeededRoller) RollN(count, size int) ([]int, error) {
	values := make([]int, count)
	for i := range values {
		v, err := r.Roll(size)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}
