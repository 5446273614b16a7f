package battle_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/veramon/reunited-api/internal/engine"
	"github.com/veramon/reunited-api/internal/entities/veramon"
	"github.com/veramon/reunited-api/internal/errors"
	"github.com/veramon/reunited-api/internal/orchestrators/battle"
	"github.com/veramon/reunited-api/internal/pkg/clock"
	"github.com/veramon/reunited-api/internal/pkg/idgen"
	"github.com/veramon/reunited-api/internal/repositories/battles"
	"github.com/veramon/reunited-api/internal/repositories/captures"
	"github.com/veramon/reunited-api/internal/testutils"
)

const (
	trainerA = "trainer_a"
	trainerB = "trainer_b"
)

type BattleOrchestratorTestSuite struct {
	suite.Suite
	orchestrator battle.Service
	captureRepo  captures.Repository
	roller       *testutils.ScriptedRoller
	clock        *clock.Fixed
	cleanup      func()
	ctx          context.Context
}

func (s *BattleOrchestratorTestSuite) SetupTest() {
	client, cleanup := testutils.CreateTestRedisClient(s.T())
	s.cleanup = cleanup
	s.clock = clock.NewFixed(time.Unix(1700000000, 0))
	s.roller = &testutils.ScriptedRoller{}
	s.ctx = context.Background()

	registry := testutils.TestRegistry(s.T())

	battleRepo, err := battles.NewRedis(&battles.RedisConfig{Client: client, Clock: s.clock})
	s.Require().NoError(err)
	captureRepo, err := captures.NewRedis(&captures.RedisConfig{Client: client, Clock: s.clock})
	s.Require().NoError(err)
	s.captureRepo = captureRepo

	eng, err := engine.New(&engine.Config{Registry: registry, Roller: s.roller})
	s.Require().NoError(err)

	orch, err := battle.NewOrchestrator(&battle.Config{
		BattleRepo:  battleRepo,
		CaptureRepo: captureRepo,
		Registry:    registry,
		Engine:      eng,
		Roller:      s.roller,
		IDGenerator: idgen.NewSequential("battle"),
		Clock:       s.clock,
		TurnTimeout: 5 * time.Minute,
	})
	s.Require().NoError(err)
	s.orchestrator = orch
}

func (s *BattleOrchestratorTestSuite) TearDownTest() {
	s.cleanup()
}

func (s *BattleOrchestratorTestSuite) createCapture(id, ownerID, species string, level int32) {
	capture := testutils.CreateTestCapture(id, ownerID, species, level)
	_, err := s.captureRepo.Create(s.ctx, captures.CreateInput{Capture: capture})
	s.Require().NoError(err)
}

// startPVP creates a level 50 Flamawyrm (trainer A) vs Aquarion (trainer B)
// battle
func (s *BattleOrchestratorTestSuite) startPVP() *veramon.Battle {
	s.createCapture("cap_a", trainerA, testutils.TestSpeciesFlamawyrm, 50)
	s.createCapture("cap_b", trainerB, testutils.TestSpeciesAquarion, 50)

	output, err := s.orchestrator.CreateBattle(s.ctx, &battle.CreateBattleInput{
		Type:       veramon.BattleTypePVP,
		Challenger: battle.TeamSpec{TrainerID: trainerA, CaptureIDs: []string{"cap_a"}},
		Opponent:   &battle.TeamSpec{TrainerID: trainerB, CaptureIDs: []string{"cap_b"}},
	})
	s.Require().NoError(err)
	return output.Battle
}

func (s *BattleOrchestratorTestSuite) TestCreateBattle() {
	s.Run("snapshots teams from species stats", func() {
		b := s.startPVP()

		s.Equal(veramon.BattleStatusActive, b.Status)
		s.Equal(int32(1), b.TurnNumber)
		s.Equal(s.clock.Now().Add(5*time.Minute).Unix(), b.ExpiresAt)

		flam := b.Participants[0].Active()
		s.Equal(testutils.TestSpeciesFlamawyrm, flam.SpeciesName)
		s.Equal(int32(110), flam.MaxHP)
		s.Equal(int32(65), flam.Attack)
		s.Equal(int32(50), flam.Defense)
		s.Equal(int32(75), flam.Speed)
		s.Equal([]string{"Ember", "Flame Burst", "Growl"}, flam.MoveNames)
	})

	s.Run("rejects a trainer battling themselves", func() {
		_, err := s.orchestrator.CreateBattle(s.ctx, &battle.CreateBattleInput{
			Type:       veramon.BattleTypePVP,
			Challenger: battle.TeamSpec{TrainerID: trainerA, CaptureIDs: []string{"cap_a"}},
			Opponent:   &battle.TeamSpec{TrainerID: trainerA, CaptureIDs: []string{"cap_a"}},
		})
		s.True(errors.IsInvalidArgument(err))
	})

	s.Run("rejects captures owned by someone else", func() {
		_, err := s.orchestrator.CreateBattle(s.ctx, &battle.CreateBattleInput{
			Type:       veramon.BattleTypePVP,
			Challenger: battle.TeamSpec{TrainerID: trainerB, CaptureIDs: []string{"cap_a"}},
			Opponent:   &battle.TeamSpec{TrainerID: trainerA, CaptureIDs: []string{"cap_b"}},
		})
		s.True(errors.IsPermissionDenied(err))
	})

	s.Run("rejects oversized teams", func() {
		ids := make([]string, 7)
		for i := range ids {
			ids[i] = "cap_a"
		}
		_, err := s.orchestrator.CreateBattle(s.ctx, &battle.CreateBattleInput{
			Type:       veramon.BattleTypePVP,
			Challenger: battle.TeamSpec{TrainerID: trainerA, CaptureIDs: ids},
			Opponent:   &battle.TeamSpec{TrainerID: trainerB, CaptureIDs: []string{"cap_b"}},
		})
		s.True(errors.IsInvalidArgument(err))
	})

	s.Run("wild battles require a spawn", func() {
		_, err := s.orchestrator.CreateBattle(s.ctx, &battle.CreateBattleInput{
			Type:       veramon.BattleTypeWild,
			Challenger: battle.TeamSpec{TrainerID: trainerA, CaptureIDs: []string{"cap_a"}},
		})
		s.True(errors.IsInvalidArgument(err))
	})
}

func (s *BattleOrchestratorTestSuite) TestSubmitActionValidation() {
	b := s.startPVP()

	s.Run("third parties are rejected", func() {
		_, err := s.orchestrator.SubmitAction(s.ctx, &battle.SubmitActionInput{
			BattleID:  b.ID,
			TrainerID: "trainer_c",
			Action:    veramon.BattleAction{Type: veramon.ActionAttack, MoveName: "Ember"},
		})
		s.True(errors.IsPermissionDenied(err))
	})

	s.Run("unknown moves are rejected", func() {
		_, err := s.orchestrator.SubmitAction(s.ctx, &battle.SubmitActionInput{
			BattleID:  b.ID,
			TrainerID: trainerA,
			Action:    veramon.BattleAction{Type: veramon.ActionAttack, MoveName: "Bubble"},
		})
		s.True(errors.IsInvalidArgument(err))
	})

	s.Run("switching to the active slot is rejected", func() {
		_, err := s.orchestrator.SubmitAction(s.ctx, &battle.SubmitActionInput{
			BattleID:  b.ID,
			TrainerID: trainerA,
			Action:    veramon.BattleAction{Type: veramon.ActionSwitch, SwitchSlot: 0},
		})
		s.True(errors.IsInvalidArgument(err))
	})

	s.Run("double submission is rejected", func() {
		_, err := s.orchestrator.SubmitAction(s.ctx, &battle.SubmitActionInput{
			BattleID:  b.ID,
			TrainerID: trainerA,
			Action:    veramon.BattleAction{Type: veramon.ActionAttack, MoveName: "Ember"},
		})
		s.Require().NoError(err)

		_, err = s.orchestrator.SubmitAction(s.ctx, &battle.SubmitActionInput{
			BattleID:  b.ID,
			TrainerID: trainerA,
			Action:    veramon.BattleAction{Type: veramon.ActionAttack, MoveName: "Ember"},
		})
		s.True(errors.IsFailedPrecondition(err))
	})
}

func (s *BattleOrchestratorTestSuite) TestTurnResolution() {
	b := s.startPVP()

	// Growl goes first on speed and drops Aquarion's attack before Bubble
	// resolves. Bubble: variance 16/16, no crit.
	s.roller.Script(16, 10000)

	first, err := s.orchestrator.SubmitAction(s.ctx, &battle.SubmitActionInput{
		BattleID:  b.ID,
		TrainerID: trainerA,
		Action:    veramon.BattleAction{Type: veramon.ActionAttack, MoveName: "Growl"},
	})
	s.Require().NoError(err)
	s.False(first.TurnResolved)

	second, err := s.orchestrator.SubmitAction(s.ctx, &battle.SubmitActionInput{
		BattleID:  b.ID,
		TrainerID: trainerB,
		Action:    veramon.BattleAction{Type: veramon.ActionAttack, MoveName: "Bubble"},
	})
	s.Require().NoError(err)
	s.True(second.TurnResolved)

	resolved := second.Battle
	s.Equal(int32(2), resolved.TurnNumber)
	s.Equal(veramon.BattleStatusActive, resolved.Status)

	aqua := resolved.ParticipantByTrainer(trainerB).Active()
	s.Equal(int32(-1), aqua.Stage(veramon.StatAttack))

	// Bubble with attack at -1: 40 power * 36/50 * 2.0 water-vs-fire * 1.5
	// same-type = 86 damage
	flam := resolved.ParticipantByTrainer(trainerA).Active()
	s.Equal(int32(110-86), flam.CurrentHP)

	s.NotEmpty(resolved.Log)
}

func (s *BattleOrchestratorTestSuite) TestPriorityBeatsSpeed() {
	b := s.startPVP()

	// Turn 1 softens Flamawyrm with Bubble while Growl lowers Aquarion's
	// attack.
	s.roller.Script(16, 10000)
	_, err := s.orchestrator.SubmitAction(s.ctx, &battle.SubmitActionInput{
		BattleID: b.ID, TrainerID: trainerA,
		Action: veramon.BattleAction{Type: veramon.ActionAttack, MoveName: "Growl"},
	})
	s.Require().NoError(err)
	_, err = s.orchestrator.SubmitAction(s.ctx, &battle.SubmitActionInput{
		BattleID: b.ID, TrainerID: trainerB,
		Action: veramon.BattleAction{Type: veramon.ActionAttack, MoveName: "Bubble"},
	})
	s.Require().NoError(err)

	// Turn 2: Aqua Jet's +1 priority outruns the faster Flamawyrm and
	// finishes it before Ember can resolve.
	s.roller.Script(16, 10000)
	_, err = s.orchestrator.SubmitAction(s.ctx, &battle.SubmitActionInput{
		BattleID: b.ID, TrainerID: trainerA,
		Action: veramon.BattleAction{Type: veramon.ActionAttack, MoveName: "Ember"},
	})
	s.Require().NoError(err)
	output, err := s.orchestrator.SubmitAction(s.ctx, &battle.SubmitActionInput{
		BattleID: b.ID, TrainerID: trainerB,
		Action: veramon.BattleAction{Type: veramon.ActionAttack, MoveName: "Aqua Jet"},
	})
	s.Require().NoError(err)

	resolved := output.Battle
	s.Equal(veramon.BattleStatusCompleted, resolved.Status)
	s.Equal(trainerB, resolved.WinnerID)

	flam := resolved.ParticipantByTrainer(trainerA).Active()
	s.False(flam.Conscious())

	// winner experience persisted: 25 per level of the beaten team
	got, err := s.captureRepo.Get(s.ctx, captures.GetInput{ID: "cap_b"})
	s.Require().NoError(err)
	s.Equal(int32(62500+25*50), got.Capture.Experience)
}

func (s *BattleOrchestratorTestSuite) TestStatusEffectAndChipDamage() {
	b := s.startPVP()

	// Ember: variance 16, no crit, burn chance roll 10 (lands). Harden has
	// no rolls.
	s.roller.Script(16, 10000, 10)

	_, err := s.orchestrator.SubmitAction(s.ctx, &battle.SubmitActionInput{
		BattleID: b.ID, TrainerID: trainerA,
		Action: veramon.BattleAction{Type: veramon.ActionAttack, MoveName: "Ember"},
	})
	s.Require().NoError(err)
	output, err := s.orchestrator.SubmitAction(s.ctx, &battle.SubmitActionInput{
		BattleID: b.ID, TrainerID: trainerB,
		Action: veramon.BattleAction{Type: veramon.ActionAttack, MoveName: "Harden"},
	})
	s.Require().NoError(err)

	aqua := output.Battle.ParticipantByTrainer(trainerB).Active()
	s.Equal(veramon.StatusBurn, aqua.Status)
	s.Equal(int32(1), aqua.Stage(veramon.StatDefense))

	// Ember: 40 * 65/60 * 0.5 fire-vs-water * 1.5 same-type = 32, then
	// 115/8 = 14 burn chip at end of turn
	s.Equal(int32(115-32-14), aqua.CurrentHP)
}

func (s *BattleOrchestratorTestSuite) TestWildBattleFlee() {
	s.createCapture("cap_a", trainerA, testutils.TestSpeciesLeafling, 10)

	created, err := s.orchestrator.CreateBattle(s.ctx, &battle.CreateBattleInput{
		Type:       veramon.BattleTypeWild,
		Challenger: battle.TeamSpec{TrainerID: trainerA, CaptureIDs: []string{"cap_a"}},
		Wild:       &battle.WildSpec{SpeciesName: testutils.TestSpeciesFlamawyrm, Level: 5},
	})
	s.Require().NoError(err)
	s.Equal(battle.WildTrainerID, created.Battle.Participants[1].TrainerID)

	output, err := s.orchestrator.SubmitAction(s.ctx, &battle.SubmitActionInput{
		BattleID:  created.Battle.ID,
		TrainerID: trainerA,
		Action:    veramon.BattleAction{Type: veramon.ActionFlee},
	})
	s.Require().NoError(err)

	s.True(output.TurnResolved)
	s.Equal(veramon.BattleStatusCompleted, output.Battle.Status)
	s.Empty(output.Battle.WinnerID)
}

func (s *BattleOrchestratorTestSuite) TestForfeit() {
	b := s.startPVP()

	output, err := s.orchestrator.Forfeit(s.ctx, &battle.ForfeitInput{
		BattleID:  b.ID,
		TrainerID: trainerA,
	})
	s.Require().NoError(err)

	s.Equal(veramon.BattleStatusCompleted, output.Battle.Status)
	s.Equal(trainerB, output.Battle.WinnerID)

	_, err = s.orchestrator.Forfeit(s.ctx, &battle.ForfeitInput{
		BattleID:  b.ID,
		TrainerID: trainerB,
	})
	s.True(errors.IsFailedPrecondition(err))
}

func (s *BattleOrchestratorTestSuite) TestExpireStale() {
	b := s.startPVP()

	// trainer A acts, trainer B stalls past the deadline
	_, err := s.orchestrator.SubmitAction(s.ctx, &battle.SubmitActionInput{
		BattleID:  b.ID,
		TrainerID: trainerA,
		Action:    veramon.BattleAction{Type: veramon.ActionAttack, MoveName: "Ember"},
	})
	s.Require().NoError(err)

	s.clock.Advance(6 * time.Minute)

	output, err := s.orchestrator.ExpireStale(s.ctx, &battle.ExpireStaleInput{})
	s.Require().NoError(err)
	s.Equal([]string{b.ID}, output.ExpiredIDs)

	got, err := s.orchestrator.GetBattle(s.ctx, &battle.GetBattleInput{ID: b.ID})
	s.Require().NoError(err)
	s.Equal(veramon.BattleStatusCompleted, got.Battle.Status)
	s.Equal(trainerA, got.Battle.WinnerID)

	// a second sweep finds nothing
	again, err := s.orchestrator.ExpireStale(s.ctx, &battle.ExpireStaleInput{})
	s.Require().NoError(err)
	s.Empty(again.ExpiredIDs)
}

func TestBattleOrchestratorSuite(t *testing.T) {
	suite.Run(t, new(BattleOrchestratorTestSuite))
}
