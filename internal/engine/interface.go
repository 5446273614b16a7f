// Package engine implements the battle mathematics: turn ordering, damage
// computation, stat-stage arithmetic, and the dice-backed chance rolls.
// It is pure rule logic; persistence and state machines live in the
// orchestrators.
package engine

//go:generate mockgen -destination=mock/mock_engine.go -package=enginemock github.com/veramon/reunited-api/internal/engine Engine

import (
	"github.com/KirkDiggler/rpg-toolkit/core"

	"github.com/veramon/reunited-api/internal/entities/veramon"
)

// InitiativeEntry is one combatant's bid for turn order. Slot is the
// participant's position in the battle and doubles as the deterministic
// tie-break when priority and speed are equal.
type InitiativeEntry struct {
	Entity   core.Entity
	Priority int32
	Speed    int32
	Slot     int32
}

// DamageInput describes one damaging move use
type DamageInput struct {
	Attacker *veramon.Combatant
	Defender *veramon.Combatant
	Move     *veramon.Move
}

// DamageOutput is the result of one hit
type DamageOutput struct {
	Damage        int32
	Critical      bool
	Effectiveness float64
}

// Engine provides the battle rule calculations
type Engine interface {
	// TurnOrder sorts entries by priority (descending), then effective
	// speed (descending), then slot. The result is deterministic for a
	// given input.
	TurnOrder(entries []InitiativeEntry) []InitiativeEntry

	// EffectiveStat applies a stage multiplier to a base stat. Stages are
	// clamped to [StageMin, StageMax].
	EffectiveStat(base, stage int32) int32

	// RollDamage computes one hit of a damaging move. Status moves
	// (power 0) always deal zero damage.
	RollDamage(input *DamageInput) (*DamageOutput, error)

	// RollHitCount rolls the number of hits for a move, uniform within its
	// configured hit range.
	RollHitCount(move *veramon.Move) (int32, error)

	// RollAccuracy rolls a single accuracy check for a move use.
	RollAccuracy(move *veramon.Move) (bool, error)

	// RollEffectChance rolls whether a move effect lands. A chance of zero
	// or less means the effect always applies.
	RollEffectChance(effect *veramon.MoveEffect) (bool, error)
}
