package engine

import (
	"math"
	"sort"

	"github.com/KirkDiggler/rpg-toolkit/dice"

	"github.com/veramon/reunited-api/internal/entities/veramon"
	"github.com/veramon/reunited-api/internal/errors"
	"github.com/veramon/reunited-api/internal/rules"
)

// Config holds the dependencies for the engine
type Config struct {
	Registry *rules.Registry
	Roller   dice.Roller
}

// Validate ensures all required dependencies are provided
func (cfg *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	if cfg.Registry == nil {
		vb.RequiredField("Registry")
	}
	if cfg.Roller == nil {
		vb.RequiredField("Roller")
	}

	return vb.Build()
}

type engine struct {
	registry *rules.Registry
	roller   dice.Roller
}

// New creates a new engine with the provided dependencies
func New(cfg *Config) (Engine, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	return &engine{
		registry: cfg.Registry,
		roller:   cfg.Roller,
	}, nil
}

var _ Engine = (*engine)(nil)

func (e *engine) TurnOrder(entries []InitiativeEntry) []InitiativeEntry {
	ordered := make([]InitiativeEntry, len(entries))
	copy(ordered, entries)

	// Priority is evaluated before speed; slot order breaks remaining ties.
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Priority != ordered[j].Priority {
			return ordered[i].Priority > ordered[j].Priority
		}
		if ordered[i].Speed != ordered[j].Speed {
			return ordered[i].Speed > ordered[j].Speed
		}
		return ordered[i].Slot < ordered[j].Slot
	})

	return ordered
}

func (e *engine) EffectiveStat(base, stage int32) int32 {
	if stage < veramon.StageMin {
		stage = veramon.StageMin
	}
	if stage > veramon.StageMax {
		stage = veramon.StageMax
	}

	var value int32
	if stage >= 0 {
		value = base * (2 + stage) / 2
	} else {
		value = base * 2 / (2 - stage)
	}
	if value < 1 {
		value = 1
	}
	return value
}

func (e *engine) RollDamage(input *DamageInput) (*DamageOutput, error) {
	if input == nil || input.Attacker == nil || input.Defender == nil || input.Move == nil {
		return nil, errors.InvalidArgument("attacker, defender, and move are required")
	}

	if input.Move.IsStatus() {
		return &DamageOutput{Damage: 0, Effectiveness: 1.0}, nil
	}

	consts := e.registry.Constants()

	attackerSpecies, err := e.registry.SpeciesByName(input.Attacker.SpeciesName)
	if err != nil {
		return nil, err
	}
	defenderSpecies, err := e.registry.SpeciesByName(input.Defender.SpeciesName)
	if err != nil {
		return nil, err
	}

	effectiveness := e.registry.Effectiveness(input.Move.Type, defenderSpecies.Types)

	stab := 1.0
	for _, t := range attackerSpecies.Types {
		if t == input.Move.Type {
			stab = consts.SameTypeBonus
			break
		}
	}

	atk := e.EffectiveStat(input.Attacker.Attack, input.Attacker.Stage(veramon.StatAttack))
	def := e.EffectiveStat(input.Defender.Defense, input.Defender.Stage(veramon.StatDefense))

	// Variance band [VarianceMin, 1.0] sampled in whole percentage points.
	steps := int(math.Round((1.0 - consts.VarianceMin) * 100))
	variance := 1.0
	if steps > 0 {
		roll, err := e.roller.Roll(steps + 1)
		if err != nil {
			return nil, errors.Wrap(err, "failed to roll damage variance")
		}
		variance = consts.VarianceMin + float64(roll-1)/100
	}

	critRoll, err := e.roller.Roll(10000)
	if err != nil {
		return nil, errors.Wrap(err, "failed to roll critical hit")
	}
	critical := float64(critRoll) <= consts.CritChance*10000

	damage := float64(input.Move.Power) * float64(atk) / float64(def) * effectiveness * stab * variance
	if critical {
		damage *= consts.CritMultiplier
	}

	result := int32(math.Floor(damage))
	if result < 1 && effectiveness > 0 {
		result = 1
	}

	return &DamageOutput{
		Damage:        result,
		Critical:      critical,
		Effectiveness: effectiveness,
	}, nil
}

func (e *engine) RollHitCount(move *veramon.Move) (int32, error) {
	if move == nil {
		return 0, errors.InvalidArgument("move is required")
	}

	minHits, maxHits := move.HitRange()
	if minHits == maxHits {
		return minHits, nil
	}

	roll, err := e.roller.Roll(int(maxHits - minHits + 1))
	if err != nil {
		return 0, errors.Wrap(err, "failed to roll hit count")
	}
	return minHits + int32(roll) - 1, nil
}

func (e *engine) RollAccuracy(move *veramon.Move) (bool, error) {
	if move == nil {
		return false, errors.InvalidArgument("move is required")
	}
	if move.Accuracy <= 0 || move.Accuracy >= 100 {
		return true, nil
	}

	roll, err := e.roller.Roll(100)
	if err != nil {
		return false, errors.Wrap(err, "failed to roll accuracy")
	}
	return int32(roll) <= move.Accuracy, nil
}

func (e *engine) RollEffectChance(effect *veramon.MoveEffect) (bool, error) {
	if effect == nil {
		return false, errors.InvalidArgument("effect is required")
	}
	if effect.Chance <= 0 || effect.Chance >= 100 {
		return true, nil
	}

	roll, err := e.roller.Roll(100)
	if err != nil {
		return false, errors.Wrap(err, "failed to roll effect chance")
	}
	return int32(roll) <= effect.Chance, nil
}
