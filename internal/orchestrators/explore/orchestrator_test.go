package explore_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/veramon/reunited-api/internal/errors"
	"github.com/veramon/reunited-api/internal/orchestrators/explore"
	"github.com/veramon/reunited-api/internal/pkg/idgen"
	"github.com/veramon/reunited-api/internal/repositories/captures"
	capturesmock "github.com/veramon/reunited-api/internal/repositories/captures/mock"
	"github.com/veramon/reunited-api/internal/repositories/trainers"
	trainersmock "github.com/veramon/reunited-api/internal/repositories/trainers/mock"
	"github.com/veramon/reunited-api/internal/rules"
	"github.com/veramon/reunited-api/internal/testutils"
)

const trainerID = "trainer_scout"

type ExploreOrchestratorTestSuite struct {
	suite.Suite
	ctrl         *gomock.Controller
	captureRepo  *capturesmock.MockRepository
	trainerRepo  *trainersmock.MockRepository
	roller       *testutils.ScriptedRoller
	orchestrator explore.Service
	ctx          context.Context
}

func (s *ExploreOrchestratorTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.captureRepo = capturesmock.NewMockRepository(s.ctrl)
	s.trainerRepo = trainersmock.NewMockRepository(s.ctrl)
	s.roller = &testutils.ScriptedRoller{}
	s.ctx = context.Background()

	orch, err := explore.NewOrchestrator(&explore.Config{
		CaptureRepo: s.captureRepo,
		TrainerRepo: s.trainerRepo,
		Registry:    testutils.TestRegistry(s.T()),
		Roller:      s.roller,
		IDGenerator: idgen.NewSequential("capture"),
	})
	s.Require().NoError(err)
	s.orchestrator = orch
}

func (s *ExploreOrchestratorTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *ExploreOrchestratorTestSuite) expectTrainer() {
	s.trainerRepo.EXPECT().
		Get(s.ctx, trainers.GetInput{ID: trainerID}).
		Return(&trainers.GetOutput{Trainer: testutils.CreateTestTrainer(trainerID, 100)}, nil)
}

// The volcano table holds Flamawyrm (common, weight 60) and Infernodon
// (rare, weight 10), walked in name order against a d70.

func (s *ExploreOrchestratorTestSuite) TestExplore() {
	s.Run("common spawn", func() {
		s.expectTrainer()
		s.roller.Script(60, 12, 2)

		output, err := s.orchestrator.Explore(s.ctx, &explore.ExploreInput{
			TrainerID: trainerID,
			Biome:     "volcano",
		})
		s.Require().NoError(err)

		encounter := output.Encounter
		s.Equal(testutils.TestSpeciesFlamawyrm, encounter.SpeciesName)
		s.Equal(int32(12), encounter.Level)
		s.False(encounter.Shiny)
		s.Equal(int32(40), encounter.CatchRate)
		s.Equal("volcano", encounter.Biome)
	})

	s.Run("rare shiny spawn", func() {
		s.expectTrainer()
		s.roller.Script(61, 20, 1)

		output, err := s.orchestrator.Explore(s.ctx, &explore.ExploreInput{
			TrainerID: trainerID,
			Biome:     "volcano",
		})
		s.Require().NoError(err)

		encounter := output.Encounter
		s.Equal(testutils.TestSpeciesInfernodon, encounter.SpeciesName)
		s.True(encounter.Shiny)
	})

	s.Run("empty biome", func() {
		s.expectTrainer()

		_, err := s.orchestrator.Explore(s.ctx, &explore.ExploreInput{
			TrainerID: trainerID,
			Biome:     "abyss",
		})
		s.True(errors.IsNotFound(err))
	})

	s.Run("unknown trainer", func() {
		s.trainerRepo.EXPECT().
			Get(s.ctx, trainers.GetInput{ID: "trainer_ghost"}).
			Return(nil, errors.NotFound("trainer not found"))

		_, err := s.orchestrator.Explore(s.ctx, &explore.ExploreInput{
			TrainerID: "trainer_ghost",
			Biome:     "volcano",
		})
		s.True(errors.IsNotFound(err))
	})
}

func (s *ExploreOrchestratorTestSuite) TestCatchAttempt() {
	s.Run("success creates the capture and pays the reward", func() {
		s.roller.Script(40) // Flamawyrm catch rate is 40

		s.captureRepo.EXPECT().
			Create(s.ctx, gomock.Any()).
			DoAndReturn(func(_ context.Context, input captures.CreateInput) (*captures.CreateOutput, error) {
				return &captures.CreateOutput{Capture: input.Capture}, nil
			})
		s.trainerRepo.EXPECT().
			AdjustTokens(s.ctx, trainers.AdjustTokensInput{
				TrainerID: trainerID,
				Delta:     10,
				Reason:    "catch reward",
			}).
			Return(&trainers.AdjustTokensOutput{}, nil)

		output, err := s.orchestrator.CatchAttempt(s.ctx, &explore.CatchAttemptInput{
			TrainerID:   trainerID,
			SpeciesName: "flamawyrm",
			Level:       12,
			Biome:       "volcano",
		})
		s.Require().NoError(err)

		s.True(output.Caught)
		s.Equal(int64(10), output.TokensAwarded)

		capture := output.Capture
		s.Require().NotNil(capture)
		s.NotEmpty(capture.ID)
		s.Equal(trainerID, capture.OwnerID)
		s.Equal(testutils.TestSpeciesFlamawyrm, capture.SpeciesName)
		s.Equal(int32(12), capture.Level)
		s.Equal(rules.ExperienceForLevel(12), capture.Experience)
		s.Equal("volcano", capture.Biome)
	})

	s.Run("failure writes nothing", func() {
		s.roller.Script(41)

		output, err := s.orchestrator.CatchAttempt(s.ctx, &explore.CatchAttemptInput{
			TrainerID:   trainerID,
			SpeciesName: testutils.TestSpeciesFlamawyrm,
			Level:       12,
		})
		s.Require().NoError(err)

		s.False(output.Caught)
		s.Nil(output.Capture)
		s.Zero(output.TokensAwarded)
	})

	s.Run("item modifier raises the catch rate", func() {
		s.roller.Script(60) // 40 * 1.5 = 60

		s.captureRepo.EXPECT().
			Create(s.ctx, gomock.Any()).
			DoAndReturn(func(_ context.Context, input captures.CreateInput) (*captures.CreateOutput, error) {
				return &captures.CreateOutput{Capture: input.Capture}, nil
			})
		s.trainerRepo.EXPECT().
			AdjustTokens(s.ctx, gomock.Any()).
			Return(&trainers.AdjustTokensOutput{}, nil)

		output, err := s.orchestrator.CatchAttempt(s.ctx, &explore.CatchAttemptInput{
			TrainerID:    trainerID,
			SpeciesName:  testutils.TestSpeciesFlamawyrm,
			Level:        12,
			ItemModifier: 1.5,
		})
		s.Require().NoError(err)
		s.True(output.Caught)
	})

	s.Run("unknown species", func() {
		_, err := s.orchestrator.CatchAttempt(s.ctx, &explore.CatchAttemptInput{
			TrainerID:   trainerID,
			SpeciesName: "Gloomfang",
			Level:       5,
		})
		s.True(errors.IsNotFound(err))
	})
}

func (s *ExploreOrchestratorTestSuite) TestAddExperience() {
	s.Run("level up with evolution at the threshold", func() {
		// level 15 Flamawyrm, one level short of evolving into Infernodon
		capture := testutils.CreateTestCapture("cap_1", trainerID, testutils.TestSpeciesFlamawyrm, 15)

		s.captureRepo.EXPECT().
			Get(s.ctx, captures.GetInput{ID: "cap_1"}).
			Return(&captures.GetOutput{Capture: capture}, nil)
		s.captureRepo.EXPECT().
			Update(s.ctx, gomock.Any()).
			DoAndReturn(func(_ context.Context, input captures.UpdateInput) (*captures.UpdateOutput, error) {
				return &captures.UpdateOutput{Capture: input.Capture}, nil
			})

		// 25*16^2 - 25*15^2 = 775 crosses the level-16 threshold exactly
		output, err := s.orchestrator.AddExperience(s.ctx, &explore.AddExperienceInput{
			CaptureID: "cap_1",
			Gain:      775,
		})
		s.Require().NoError(err)

		s.Equal(int32(16), output.Capture.Level)
		s.Equal(testutils.TestSpeciesInfernodon, output.Capture.SpeciesName)
		s.Equal(int32(1), output.Progression.LevelsGained)
		s.True(output.Progression.Evolved)
		s.Equal(testutils.TestSpeciesFlamawyrm, output.Progression.FromSpecies)
	})

	s.Run("negative gain is rejected", func() {
		_, err := s.orchestrator.AddExperience(s.ctx, &explore.AddExperienceInput{
			CaptureID: "cap_1",
			Gain:      -5,
		})
		s.True(errors.IsInvalidArgument(err))
	})

	s.Run("unknown capture", func() {
		s.captureRepo.EXPECT().
			Get(s.ctx, captures.GetInput{ID: "cap_ghost"}).
			Return(nil, errors.NotFound("capture not found"))

		_, err := s.orchestrator.AddExperience(s.ctx, &explore.AddExperienceInput{
			CaptureID: "cap_ghost",
			Gain:      100,
		})
		s.True(errors.IsNotFound(err))
	})
}

func TestExploreOrchestratorSuite(t *testing.T) {
	suite.Run(t, new(ExploreOrchestratorTestSuite))
}
