// Package rules holds the immutable rule tables: species, moves, the type
// chart, and balance constants. A Registry is built once at startup and
// treated as read-only by the engine and orchestrators.
package rules

import (
	"math"
	"sort"
	"strings"

	"github.com/veramon/reunited-api/internal/entities/veramon"
	"github.com/veramon/reunited-api/internal/errors"
)

// TypeMatchup is one entry of the type-effectiveness chart
type TypeMatchup struct {
	Attacking  veramon.Type
	Defending  veramon.Type
	Multiplier float64
}

// Constants holds tunable balance numbers. Zero values are replaced with
// the documented defaults by NewRegistry.
type Constants struct {
	CritChance         float64 // default 0.0625
	CritMultiplier     float64 // default 1.5
	SameTypeBonus      float64 // default 1.5
	VarianceMin        float64 // default 0.85, variance band is [VarianceMin, 1.0]
	ShinyOddsDenom     int32   // default 1024, shiny chance is 1/N
	CatchRewardTokens  int64   // default 10
	WinnerPrizeShare   float64 // default 0.7
	RunnerUpPrizeShare float64 // default 0.3
}

// Data is the raw material a Registry is built from
type Data struct {
	Species   []*veramon.Species
	Moves     []*veramon.Move
	TypeChart []TypeMatchup
	Constants Constants
}

// SpawnEntry is one weighted candidate in a biome's spawn table
type SpawnEntry struct {
	Species *veramon.Species
	Weight  int32
}

// Spawn weights per rarity bucket
var rarityWeights = map[veramon.Rarity]int32{
	veramon.RarityCommon:    60,
	veramon.RarityUncommon:  25,
	veramon.RarityRare:      10,
	veramon.RarityLegendary: 4,
	veramon.RarityMythic:    1,
}

// Registry provides lookup access to the loaded rule tables
type Registry struct {
	species   map[string]*veramon.Species
	moves     map[string]*veramon.Move
	typeChart map[veramon.Type]map[veramon.Type]float64
	constants Constants
}

// NewRegistry validates the rule data and builds the lookup structures
func NewRegistry(data *Data) (*Registry, error) {
	if data == nil {
		return nil, errors.InvalidArgument("rule data cannot be nil")
	}

	r := &Registry{
		species:   make(map[string]*veramon.Species, len(data.Species)),
		moves:     make(map[string]*veramon.Move, len(data.Moves)),
		typeChart: make(map[veramon.Type]map[veramon.Type]float64),
		constants: withDefaults(data.Constants),
	}

	for _, m := range data.Moves {
		if m.Name == "" {
			return nil, errors.InvalidArgument("move name cannot be empty")
		}
		if _, ok := r.moves[normalize(m.Name)]; ok {
			return nil, errors.AlreadyExistsf("duplicate move %q", m.Name)
		}
		r.moves[normalize(m.Name)] = m
	}

	for _, sp := range data.Species {
		if sp.Name == "" {
			return nil, errors.InvalidArgument("species name cannot be empty")
		}
		if _, ok := r.species[normalize(sp.Name)]; ok {
			return nil, errors.AlreadyExistsf("duplicate species %q", sp.Name)
		}
		for _, moveName := range sp.MoveNames {
			if _, ok := r.moves[normalize(moveName)]; !ok {
				return nil, errors.InvalidArgumentf("species %q references unknown move %q", sp.Name, moveName)
			}
		}
		r.species[normalize(sp.Name)] = sp
	}

	for _, entry := range data.TypeChart {
		row, ok := r.typeChart[entry.Attacking]
		if !ok {
			row = make(map[veramon.Type]float64)
			r.typeChart[entry.Attacking] = row
		}
		row[entry.Defending] = entry.Multiplier
	}

	return r, nil
}

func withDefaults(c Constants) Constants {
	if c.CritChance == 0 {
		c.CritChance = 0.0625
	}
	if c.CritMultiplier == 0 {
		c.CritMultiplier = 1.5
	}
	if c.SameTypeBonus == 0 {
		c.SameTypeBonus = 1.5
	}
	if c.VarianceMin == 0 {
		c.VarianceMin = 0.85
	}
	if c.ShinyOddsDenom == 0 {
		c.ShinyOddsDenom = 1024
	}
	if c.CatchRewardTokens == 0 {
		c.CatchRewardTokens = 10
	}
	if c.WinnerPrizeShare == 0 {
		c.WinnerPrizeShare = 0.7
	}
	if c.RunnerUpPrizeShare == 0 {
		c.RunnerUpPrizeShare = 0.3
	}
	return c
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Constants returns the balance constants with defaults applied
func (r *Registry) Constants() Constants {
	return r.constants
}

// SpeciesByName looks up a species, case-insensitively
func (r *Registry) SpeciesByName(name string) (*veramon.Species, error) {
	sp, ok := r.species[normalize(name)]
	if !ok {
		return nil, errors.NotFoundf("species %q not found", name)
	}
	return sp, nil
}

// MoveByName looks up a move, case-insensitively
func (r *Registry) MoveByName(name string) (*veramon.Move, error) {
	m, ok := r.moves[normalize(name)]
	if !ok {
		return nil, errors.NotFoundf("move %q not found", name)
	}
	return m, nil
}

// Effectiveness returns the combined type multiplier for an attacking type
// against the defender's types. Pairs missing from the chart contribute
// exactly 1.0, so an empty chart never fails a damage calculation.
func (r *Registry) Effectiveness(attacking veramon.Type, defending []veramon.Type) float64 {
	multiplier := 1.0
	row, ok := r.typeChart[attacking]
	if !ok {
		return multiplier
	}
	for _, def := range defending {
		if m, ok := row[def]; ok {
			multiplier *= m
		}
	}
	return multiplier
}

// SpawnTable returns the rarity-weighted spawn candidates for a biome,
// sorted by species name so weighted selection is reproducible
func (r *Registry) SpawnTable(biome string) []SpawnEntry {
	var entries []SpawnEntry
	for _, sp := range r.species {
		for _, b := range sp.Biomes {
			if strings.EqualFold(b, biome) {
				weight := rarityWeights[sp.Rarity]
				if weight == 0 {
					weight = 1
				}
				entries = append(entries, SpawnEntry{Species: sp, Weight: weight})
				break
			}
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Species.Name < entries[j].Species.Name
	})
	return entries
}

// Experience curve: reaching level n requires 25*n^2 total experience.

// ExperienceForLevel returns the total experience required for a level
func ExperienceForLevel(level int32) int32 {
	if level <= 1 {
		return 0
	}
	return 25 * level * level
}

// LevelForExperience returns the level reached at a total experience amount
func LevelForExperience(xp int32) int32 {
	if xp <= 0 {
		return 1
	}
	level := int32(math.Sqrt(float64(xp) / 25))
	if level < 1 {
		level = 1
	}
	if level > 100 {
		level = 100
	}
	return level
}
