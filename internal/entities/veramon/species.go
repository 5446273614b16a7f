package veramon

// BaseStats holds the per-species base battle stats
type BaseStats struct {
	HP      int32
	Attack  int32
	Defense int32
	Speed   int32
}

// Species is immutable rule data describing one creature kind
type Species struct {
	Name           string
	Types          []Type
	BaseStats      BaseStats
	MoveNames      []string
	Rarity         Rarity
	CatchRate      int32 // percent chance 1-100 before item modifiers
	Biomes         []string
	Forms          []string
	EvolvesInto    string
	EvolvesAtLevel int32
}

// EffectCategory tags which variant of a move effect is populated
type EffectCategory string

// Effect categories
const (
	EffectCategoryStatus EffectCategory = "status"
	EffectCategoryStat   EffectCategory = "stat"
	EffectCategoryField  EffectCategory = "field"
)

// StatusEffect applies a persistent condition to the target
type StatusEffect struct {
	Condition     StatusCondition
	DurationTurns int32
}

// StatEffect shifts a named stat by a signed number of stages
type StatEffect struct {
	Stat        Stat
	Stages      int32
	TargetsSelf bool
}

// FieldEffect alters the battlefield for a number of turns
type FieldEffect struct {
	Condition     string
	DurationTurns int32
}

// MoveEffect is a tagged variant: exactly one of Status, Stat, or Field is
// set, selected by Category. Chance is the percent chance the effect lands.
type MoveEffect struct {
	Category EffectCategory
	Chance   int32
	Status   *StatusEffect
	Stat     *StatEffect
	Field    *FieldEffect
}

// Move is immutable rule data describing one battle move.
// Power 0 marks a status-category move: it deals no damage and only applies
// its effect.
type Move struct {
	Name     string
	Type     Type
	Power    int32
	Accuracy int32 // percent 1-100
	Priority int32
	MinHits  int32 // 0 is treated as a single hit
	MaxHits  int32
	Effect   *MoveEffect
}

// IsStatus reports whether the move is a status-category move
func (m *Move) IsStatus() bool {
	return m.Power == 0
}

// HitRange returns the clamped multi-hit bounds for the move
func (m *Move) HitRange() (minHits, maxHits int32) {
	minHits = m.MinHits
	maxHits = m.MaxHits
	if minHits < 1 {
		minHits = 1
	}
	if maxHits < minHits {
		maxHits = minHits
	}
	if maxHits > 10 {
		maxHits = 10
	}
	return minHits, maxHits
}
