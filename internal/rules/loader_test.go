package rules_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veramon/reunited-api/internal/entities/veramon"
	"github.com/veramon/reunited-api/internal/errors"
	"github.com/veramon/reunited-api/internal/rules"
)

const testMovesJSON = `[
	{"name": "Ember", "type": "fire", "power": 40, "accuracy": 100,
	 "effect": {"category": "status", "chance": 10, "condition": "burn", "duration_turns": 3}},
	{"name": "Growl", "type": "normal", "power": 0, "accuracy": 100,
	 "effect": {"category": "stat", "stat": "attack", "stages": -1}},
	{"name": "Fury Swipes", "type": "normal", "power": 18, "accuracy": 80, "min_hits": 2, "max_hits": 5}
]`

const testSpeciesJSON = `[
	{"name": "Flamawyrm", "types": ["fire"], "hp": 50, "attack": 60, "defense": 45, "speed": 70,
	 "moves": ["Ember", "Growl"], "rarity": "common", "catch_rate": 40, "biomes": ["volcano"],
	 "evolves_into": "Infernodon", "evolves_at_level": 16}
]`

const testTypeChartJSON = `[
	{"attacking": "fire", "defending": "grass", "multiplier": 2.0}
]`

const testConstantsJSON = `{"crit_chance": 0.1, "catch_reward_tokens": 25}`

func writeRuleFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
}

func TestLoadDirectory(t *testing.T) {
	t.Run("loads a full data directory", func(t *testing.T) {
		dir := t.TempDir()
		writeRuleFile(t, dir, "moves.json", testMovesJSON)
		writeRuleFile(t, dir, "species.json", testSpeciesJSON)
		writeRuleFile(t, dir, "typechart.json", testTypeChartJSON)
		writeRuleFile(t, dir, "constants.json", testConstantsJSON)

		data, err := rules.LoadDirectory(dir)
		require.NoError(t, err)

		require.Len(t, data.Moves, 3)
		require.Len(t, data.Species, 1)
		require.Len(t, data.TypeChart, 1)

		sp := data.Species[0]
		assert.Equal(t, "Flamawyrm", sp.Name)
		assert.Equal(t, []veramon.Type{veramon.TypeFire}, sp.Types)
		assert.Equal(t, int32(60), sp.BaseStats.Attack)
		assert.Equal(t, "Infernodon", sp.EvolvesInto)
		assert.Equal(t, int32(16), sp.EvolvesAtLevel)

		ember := data.Moves[0]
		require.NotNil(t, ember.Effect)
		assert.Equal(t, veramon.EffectCategoryStatus, ember.Effect.Category)
		assert.Equal(t, veramon.StatusBurn, ember.Effect.Status.Condition)

		growl := data.Moves[1]
		require.NotNil(t, growl.Effect)
		assert.Equal(t, veramon.StatAttack, growl.Effect.Stat.Stat)
		assert.Equal(t, int32(-1), growl.Effect.Stat.Stages)

		assert.Equal(t, 0.1, data.Constants.CritChance)
		assert.Equal(t, int64(25), data.Constants.CatchRewardTokens)

		// loaded data builds a working registry
		registry, err := rules.NewRegistry(data)
		require.NoError(t, err)
		assert.Equal(t, 2.0, registry.Effectiveness(veramon.TypeFire, []veramon.Type{veramon.TypeGrass}))
	})

	t.Run("typechart and constants are optional", func(t *testing.T) {
		dir := t.TempDir()
		writeRuleFile(t, dir, "moves.json", testMovesJSON)
		writeRuleFile(t, dir, "species.json", testSpeciesJSON)

		data, err := rules.LoadDirectory(dir)
		require.NoError(t, err)
		assert.Empty(t, data.TypeChart)
	})

	t.Run("missing moves file fails", func(t *testing.T) {
		dir := t.TempDir()
		writeRuleFile(t, dir, "species.json", testSpeciesJSON)

		_, err := rules.LoadDirectory(dir)
		assert.True(t, errors.IsNotFound(err))
	})

	t.Run("malformed JSON fails", func(t *testing.T) {
		dir := t.TempDir()
		writeRuleFile(t, dir, "moves.json", "{not json")
		writeRuleFile(t, dir, "species.json", testSpeciesJSON)

		_, err := rules.LoadDirectory(dir)
		assert.True(t, errors.IsInvalidArgument(err))
	})

	t.Run("unknown effect category fails", func(t *testing.T) {
		dir := t.TempDir()
		writeRuleFile(t, dir, "moves.json", `[{"name": "Hex", "type": "shadow", "power": 60, "accuracy": 100,
			"effect": {"category": "curse"}}]`)
		writeRuleFile(t, dir, "species.json", `[]`)

		_, err := rules.LoadDirectory(dir)
		assert.True(t, errors.IsInvalidArgument(err))
	})
}
