package engine_test

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/veramon/reunited-api/internal/engine"
	"github.com/veramon/reunited-api/internal/entities/veramon"
	"github.com/veramon/reunited-api/internal/errors"
	"github.com/veramon/reunited-api/internal/testutils"
)

type EngineTestSuite struct {
	suite.Suite
	roller *testutils.ScriptedRoller
	engine engine.Engine
}

func (s *EngineTestSuite) SetupTest() {
	s.roller = &testutils.ScriptedRoller{}
	eng, err := engine.New(&engine.Config{
		Registry: testutils.TestRegistry(s.T()),
		Roller:   s.roller,
	})
	s.Require().NoError(err)
	s.engine = eng
}

func (s *EngineTestSuite) combatant(speciesName string, attack, defense int32) *veramon.Combatant {
	return &veramon.Combatant{
		CaptureID:   "cap_" + speciesName,
		SpeciesName: speciesName,
		Level:       10,
		MaxHP:       50,
		CurrentHP:   50,
		Attack:      attack,
		Defense:     defense,
		Speed:       50,
	}
}

func (s *EngineTestSuite) move(name string) *veramon.Move {
	move, err := testutils.TestRegistry(s.T()).MoveByName(name)
	s.Require().NoError(err)
	return move
}

func (s *EngineTestSuite) TestNew() {
	s.Run("requires registry and roller", func() {
		_, err := engine.New(&engine.Config{})
		s.Error(err)
		s.True(errors.IsInvalidArgument(err))
	})

	s.Run("requires config", func() {
		_, err := engine.New(nil)
		s.Error(err)
	})
}

func (s *EngineTestSuite) TestTurnOrder() {
	a := engine.WrapCombatant(s.combatant(testutils.TestSpeciesFlamawyrm, 60, 45))
	b := engine.WrapCombatant(s.combatant(testutils.TestSpeciesAquarion, 50, 55))

	s.Run("higher priority acts first regardless of speed", func() {
		ordered := s.engine.TurnOrder([]engine.InitiativeEntry{
			{Entity: a, Priority: 0, Speed: 200, Slot: 0},
			{Entity: b, Priority: 1, Speed: 10, Slot: 1},
		})

		s.Equal(int32(1), ordered[0].Slot)
		s.Equal(int32(0), ordered[1].Slot)
	})

	s.Run("speed decides within a priority bracket", func() {
		ordered := s.engine.TurnOrder([]engine.InitiativeEntry{
			{Entity: a, Priority: 0, Speed: 40, Slot: 0},
			{Entity: b, Priority: 0, Speed: 70, Slot: 1},
		})

		s.Equal(int32(1), ordered[0].Slot)
	})

	s.Run("slot order breaks full ties", func() {
		ordered := s.engine.TurnOrder([]engine.InitiativeEntry{
			{Entity: b, Priority: 0, Speed: 50, Slot: 1},
			{Entity: a, Priority: 0, Speed: 50, Slot: 0},
		})

		s.Equal(int32(0), ordered[0].Slot)
		s.Equal(int32(1), ordered[1].Slot)
	})

	s.Run("input slice is not mutated", func() {
		entries := []engine.InitiativeEntry{
			{Entity: a, Priority: 0, Speed: 10, Slot: 0},
			{Entity: b, Priority: 0, Speed: 90, Slot: 1},
		}
		_ = s.engine.TurnOrder(entries)

		s.Equal(int32(0), entries[0].Slot)
	})
}

func (s *EngineTestSuite) TestEffectiveStat() {
	testCases := []struct {
		name  string
		base  int32
		stage int32
		want  int32
	}{
		{name: "stage zero is the base stat", base: 60, stage: 0, want: 60},
		{name: "positive stage scales up", base: 60, stage: 2, want: 120},
		{name: "negative stage scales down", base: 60, stage: -2, want: 30},
		{name: "max stage quadruples", base: 60, stage: 6, want: 240},
		{name: "min stage quarters", base: 60, stage: -6, want: 15},
		{name: "stage above max is clamped", base: 60, stage: 9, want: 240},
		{name: "stage below min is clamped", base: 60, stage: -9, want: 15},
		{name: "never below one", base: 1, stage: -6, want: 1},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			s.Equal(tc.want, s.engine.EffectiveStat(tc.base, tc.stage))
		})
	}
}

func (s *EngineTestSuite) TestRollDamage() {
	s.Run("super effective with type bonus", func() {
		// variance 16/16 -> 1.0, crit 10000 -> miss
		s.roller.Script(16, 10000)

		attacker := s.combatant(testutils.TestSpeciesFlamawyrm, 60, 45)
		defender := s.combatant(testutils.TestSpeciesLeafling, 55, 50)

		output, err := s.engine.RollDamage(&engine.DamageInput{
			Attacker: attacker,
			Defender: defender,
			Move:     s.move("Ember"),
		})

		s.Require().NoError(err)
		// 40 power * 60/50 * 2.0 effectiveness * 1.5 same-type * 1.0 variance
		s.Equal(int32(144), output.Damage)
		s.False(output.Critical)
		s.Equal(2.0, output.Effectiveness)
	})

	s.Run("critical hit multiplies the result", func() {
		s.roller.Script(16, 625)

		attacker := s.combatant(testutils.TestSpeciesFlamawyrm, 60, 45)
		defender := s.combatant(testutils.TestSpeciesLeafling, 55, 50)

		output, err := s.engine.RollDamage(&engine.DamageInput{
			Attacker: attacker,
			Defender: defender,
			Move:     s.move("Ember"),
		})

		s.Require().NoError(err)
		s.True(output.Critical)
		s.Equal(int32(216), output.Damage)
	})

	s.Run("unlisted type pairs default to neutral", func() {
		s.roller.Script(16, 10000)

		attacker := s.combatant(testutils.TestSpeciesFlamawyrm, 60, 45)
		defender := s.combatant(testutils.TestSpeciesInfernodon, 85, 70)

		output, err := s.engine.RollDamage(&engine.DamageInput{
			Attacker: attacker,
			Defender: defender,
			Move:     s.move("Ember"),
		})

		s.Require().NoError(err)
		s.Equal(1.0, output.Effectiveness)
	})

	s.Run("attack stages raise the output", func() {
		s.roller.Script(16, 10000)

		attacker := s.combatant(testutils.TestSpeciesFlamawyrm, 60, 45)
		attacker.SetStage(veramon.StatAttack, 2)
		defender := s.combatant(testutils.TestSpeciesLeafling, 55, 50)

		output, err := s.engine.RollDamage(&engine.DamageInput{
			Attacker: attacker,
			Defender: defender,
			Move:     s.move("Ember"),
		})

		s.Require().NoError(err)
		s.Equal(int32(288), output.Damage)
	})

	s.Run("minimum variance lowers the output", func() {
		// variance 1/16 -> 0.85
		s.roller.Script(1, 10000)

		attacker := s.combatant(testutils.TestSpeciesFlamawyrm, 60, 45)
		defender := s.combatant(testutils.TestSpeciesLeafling, 55, 50)

		output, err := s.engine.RollDamage(&engine.DamageInput{
			Attacker: attacker,
			Defender: defender,
			Move:     s.move("Ember"),
		})

		s.Require().NoError(err)
		// 144 * 0.85 = 122.4, floored
		s.Equal(int32(122), output.Damage)
	})

	s.Run("status moves deal no damage", func() {
		output, err := s.engine.RollDamage(&engine.DamageInput{
			Attacker: s.combatant(testutils.TestSpeciesLeafling, 55, 50),
			Defender: s.combatant(testutils.TestSpeciesFlamawyrm, 60, 45),
			Move:     s.move("Sleep Spore"),
		})

		s.Require().NoError(err)
		s.Equal(int32(0), output.Damage)
		s.Equal(1.0, output.Effectiveness)
	})

	s.Run("rejects missing participants", func() {
		_, err := s.engine.RollDamage(&engine.DamageInput{})
		s.True(errors.IsInvalidArgument(err))
	})
}

func (s *EngineTestSuite) TestRollHitCount() {
	s.Run("single-hit move never rolls", func() {
		count, err := s.engine.RollHitCount(s.move("Ember"))

		s.Require().NoError(err)
		s.Equal(int32(1), count)
	})

	s.Run("multi-hit move rolls within its range", func() {
		move := s.move("Fury Swipes")

		s.roller.Script(1)
		count, err := s.engine.RollHitCount(move)
		s.Require().NoError(err)
		s.Equal(int32(2), count)

		s.roller.Script(4)
		count, err = s.engine.RollHitCount(move)
		s.Require().NoError(err)
		s.Equal(int32(5), count)
	})
}

func (s *EngineTestSuite) TestRollAccuracy() {
	s.Run("full accuracy always hits", func() {
		hit, err := s.engine.RollAccuracy(s.move("Ember"))

		s.Require().NoError(err)
		s.True(hit)
	})

	s.Run("partial accuracy hits at or under the threshold", func() {
		move := s.move("Flame Burst")

		s.roller.Script(90)
		hit, err := s.engine.RollAccuracy(move)
		s.Require().NoError(err)
		s.True(hit)

		s.roller.Script(91)
		hit, err = s.engine.RollAccuracy(move)
		s.Require().NoError(err)
		s.False(hit)
	})
}

func (s *EngineTestSuite) TestRollEffectChance() {
	s.Run("chance bounded moves roll", func() {
		effect := s.move("Ember").Effect

		s.roller.Script(10)
		applied, err := s.engine.RollEffectChance(effect)
		s.Require().NoError(err)
		s.True(applied)

		s.roller.Script(11)
		applied, err = s.engine.RollEffectChance(effect)
		s.Require().NoError(err)
		s.False(applied)
	})

	s.Run("unset chance always applies", func() {
		effect := s.move("Sleep Spore").Effect

		applied, err := s.engine.RollEffectChance(effect)
		s.Require().NoError(err)
		s.True(applied)
	})
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineTestSuite))
}
