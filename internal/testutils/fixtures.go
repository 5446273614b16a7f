package testutils

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/veramon/reunited-api/internal/entities/veramon"
	"github.com/veramon/reunited-api/internal/rules"
)

// Species names used across test fixtures
const (
	TestSpeciesFlamawyrm  = "Flamawyrm"
	TestSpeciesInfernodon = "Infernodon"
	TestSpeciesAquarion   = "Aquarion"
	TestSpeciesLeafling   = "Leafling"
)

// TestRuleData returns a small but complete rule set: four species, nine
// moves, and a type chart covering the fire/water/grass triangle.
func TestRuleData() *rules.Data {
	return &rules.Data{
		Moves: []*veramon.Move{
			{
				Name: "Ember", Type: veramon.TypeFire, Power: 40, Accuracy: 100,
				Effect: &veramon.MoveEffect{
					Category: veramon.EffectCategoryStatus,
					Chance:   10,
					Status:   &veramon.StatusEffect{Condition: veramon.StatusBurn, DurationTurns: 3},
				},
			},
			{Name: "Flame Burst", Type: veramon.TypeFire, Power: 70, Accuracy: 90},
			{
				Name: "Growl", Type: veramon.TypeNormal, Power: 0, Accuracy: 100,
				Effect: &veramon.MoveEffect{
					Category: veramon.EffectCategoryStat,
					Stat:     &veramon.StatEffect{Stat: veramon.StatAttack, Stages: -1},
				},
			},
			{Name: "Bubble", Type: veramon.TypeWater, Power: 40, Accuracy: 100},
			{Name: "Aqua Jet", Type: veramon.TypeWater, Power: 40, Accuracy: 100, Priority: 1},
			{
				Name: "Harden", Type: veramon.TypeNormal, Power: 0, Accuracy: 100,
				Effect: &veramon.MoveEffect{
					Category: veramon.EffectCategoryStat,
					Stat:     &veramon.StatEffect{Stat: veramon.StatDefense, Stages: 1, TargetsSelf: true},
				},
			},
			{Name: "Vine Whip", Type: veramon.TypeGrass, Power: 45, Accuracy: 100},
			{Name: "Fury Swipes", Type: veramon.TypeNormal, Power: 18, Accuracy: 80, MinHits: 2, MaxHits: 5},
			{
				Name: "Sleep Spore", Type: veramon.TypeGrass, Power: 0, Accuracy: 75,
				Effect: &veramon.MoveEffect{
					Category: veramon.EffectCategoryStatus,
					Status:   &veramon.StatusEffect{Condition: veramon.StatusSleep, DurationTurns: 2},
				},
			},
		},
		Species: []*veramon.Species{
			{
				Name:           TestSpeciesFlamawyrm,
				Types:          []veramon.Type{veramon.TypeFire},
				BaseStats:      veramon.BaseStats{HP: 50, Attack: 60, Defense: 45, Speed: 70},
				MoveNames:      []string{"Ember", "Flame Burst", "Growl"},
				Rarity:         veramon.RarityCommon,
				CatchRate:      40,
				Biomes:         []string{"volcano", "forest"},
				EvolvesInto:    TestSpeciesInfernodon,
				EvolvesAtLevel: 16,
			},
			{
				Name:      TestSpeciesInfernodon,
				Types:     []veramon.Type{veramon.TypeFire, veramon.TypeRock},
				BaseStats: veramon.BaseStats{HP: 75, Attack: 85, Defense: 70, Speed: 60},
				MoveNames: []string{"Ember", "Flame Burst"},
				Rarity:    veramon.RarityRare,
				CatchRate: 15,
				Biomes:    []string{"volcano"},
			},
			{
				Name:      TestSpeciesAquarion,
				Types:     []veramon.Type{veramon.TypeWater},
				BaseStats: veramon.BaseStats{HP: 55, Attack: 50, Defense: 55, Speed: 50},
				MoveNames: []string{"Bubble", "Aqua Jet", "Harden"},
				Rarity:    veramon.RarityUncommon,
				CatchRate: 45,
				Biomes:    []string{"lake"},
			},
			{
				Name:      TestSpeciesLeafling,
				Types:     []veramon.Type{veramon.TypeGrass},
				BaseStats: veramon.BaseStats{HP: 60, Attack: 55, Defense: 50, Speed: 40},
				MoveNames: []string{"Vine Whip", "Fury Swipes", "Sleep Spore"},
				Rarity:    veramon.RarityCommon,
				CatchRate: 50,
				Biomes:    []string{"forest"},
			},
		},
		TypeChart: []rules.TypeMatchup{
			{Attacking: veramon.TypeFire, Defending: veramon.TypeGrass, Multiplier: 2.0},
			{Attacking: veramon.TypeFire, Defending: veramon.TypeWater, Multiplier: 0.5},
			{Attacking: veramon.TypeWater, Defending: veramon.TypeFire, Multiplier: 2.0},
			{Attacking: veramon.TypeWater, Defending: veramon.TypeGrass, Multiplier: 0.5},
			{Attacking: veramon.TypeGrass, Defending: veramon.TypeWater, Multiplier: 2.0},
			{Attacking: veramon.TypeGrass, Defending: veramon.TypeFire, Multiplier: 0.5},
		},
	}
}

// TestRegistry builds a Registry from TestRuleData
func TestRegistry(t *testing.T) *rules.Registry {
	t.Helper()
	registry, err := rules.NewRegistry(TestRuleData())
	require.NoError(t, err, "failed to build test registry")
	return registry
}

// CreateTestTrainer creates a trainer fixture with a token balance
func CreateTestTrainer(id string, tokens int64) *veramon.Trainer {
	return &veramon.Trainer{
		ID:     id,
		Name:   "Trainer " + id,
		Tokens: tokens,
	}
}

// CreateTestCapture creates a capture fixture of the given species
func CreateTestCapture(id, ownerID, speciesName string, level int32) *veramon.Capture {
	return &veramon.Capture{
		ID:          id,
		OwnerID:     ownerID,
		SpeciesName: speciesName,
		Level:       level,
		Experience:  rules.ExperienceForLevel(level),
		Biome:       "forest",
	}
}
