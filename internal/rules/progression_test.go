package rules_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veramon/reunited-api/internal/rules"
	"github.com/veramon/reunited-api/internal/testutils"
)

func TestApplyExperience(t *testing.T) {
	registry := testutils.TestRegistry(t)

	t.Run("levels up when crossing a threshold", func(t *testing.T) {
		capture := testutils.CreateTestCapture("cap_1", "trainer_1", testutils.TestSpeciesAquarion, 5)

		progression, err := registry.ApplyExperience(capture, rules.ExperienceForLevel(7)-capture.Experience)
		require.NoError(t, err)

		assert.Equal(t, int32(2), progression.LevelsGained)
		assert.Equal(t, int32(7), capture.Level)
		assert.False(t, progression.Evolved)
	})

	t.Run("level never decreases", func(t *testing.T) {
		capture := testutils.CreateTestCapture("cap_2", "trainer_1", testutils.TestSpeciesAquarion, 5)

		progression, err := registry.ApplyExperience(capture, 1)
		require.NoError(t, err)

		assert.Equal(t, int32(0), progression.LevelsGained)
		assert.Equal(t, int32(5), capture.Level)
	})

	t.Run("evolves at the species threshold", func(t *testing.T) {
		capture := testutils.CreateTestCapture("cap_3", "trainer_1", testutils.TestSpeciesFlamawyrm, 15)

		progression, err := registry.ApplyExperience(capture, rules.ExperienceForLevel(16)-capture.Experience)
		require.NoError(t, err)

		assert.True(t, progression.Evolved)
		assert.Equal(t, testutils.TestSpeciesFlamawyrm, progression.FromSpecies)
		assert.Equal(t, testutils.TestSpeciesInfernodon, capture.SpeciesName)
	})

	t.Run("below threshold keeps the species", func(t *testing.T) {
		capture := testutils.CreateTestCapture("cap_4", "trainer_1", testutils.TestSpeciesFlamawyrm, 10)

		progression, err := registry.ApplyExperience(capture, 1)
		require.NoError(t, err)

		assert.False(t, progression.Evolved)
		assert.Equal(t, testutils.TestSpeciesFlamawyrm, capture.SpeciesName)
	})

	t.Run("negative gain is a no-op", func(t *testing.T) {
		capture := testutils.CreateTestCapture("cap_5", "trainer_1", testutils.TestSpeciesLeafling, 8)
		before := capture.Experience

		_, err := registry.ApplyExperience(capture, -100)
		require.NoError(t, err)

		assert.Equal(t, before, capture.Experience)
	})
}
