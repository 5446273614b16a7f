package trade_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/veramon/reunited-api/internal/entities/veramon"
	"github.com/veramon/reunited-api/internal/errors"
	"github.com/veramon/reunited-api/internal/orchestrators/trade"
	"github.com/veramon/reunited-api/internal/pkg/clock"
	"github.com/veramon/reunited-api/internal/pkg/idgen"
	"github.com/veramon/reunited-api/internal/repositories/captures"
	"github.com/veramon/reunited-api/internal/repositories/trades"
	"github.com/veramon/reunited-api/internal/testutils"
)

const (
	trainerAlice = "trainer_alice"
	trainerBob   = "trainer_bob"
)

type TradeOrchestratorTestSuite struct {
	suite.Suite
	orchestrator trade.Service
	captureRepo  captures.Repository
	clock        *clock.Fixed
	cleanup      func()
	ctx          context.Context
}

func (s *TradeOrchestratorTestSuite) SetupTest() {
	client, cleanup := testutils.CreateTestRedisClient(s.T())
	s.cleanup = cleanup
	s.clock = clock.NewFixed(time.Unix(1700000000, 0))
	s.ctx = context.Background()

	tradeRepo, err := trades.NewRedis(&trades.RedisConfig{Client: client, Clock: s.clock})
	s.Require().NoError(err)
	captureRepo, err := captures.NewRedis(&captures.RedisConfig{Client: client, Clock: s.clock})
	s.Require().NoError(err)
	s.captureRepo = captureRepo

	orch, err := trade.NewOrchestrator(&trade.Config{
		TradeRepo:    tradeRepo,
		CaptureRepo:  captureRepo,
		IDGenerator:  idgen.NewSequential("trade"),
		Clock:        s.clock,
		TradeTimeout: 30 * time.Minute,
	})
	s.Require().NoError(err)
	s.orchestrator = orch

	// capture X belongs to Alice, capture Y to Bob
	for _, c := range []struct{ id, owner, species string }{
		{"cap_x", trainerAlice, testutils.TestSpeciesFlamawyrm},
		{"cap_y", trainerBob, testutils.TestSpeciesAquarion},
		{"cap_z", trainerAlice, testutils.TestSpeciesLeafling},
	} {
		capture := testutils.CreateTestCapture(c.id, c.owner, c.species, 10)
		_, err := captureRepo.Create(s.ctx, captures.CreateInput{Capture: capture})
		s.Require().NoError(err)
	}
}

func (s *TradeOrchestratorTestSuite) TearDownTest() {
	s.cleanup()
}

func (s *TradeOrchestratorTestSuite) createTrade() *veramon.Trade {
	output, err := s.orchestrator.CreateTrade(s.ctx, &trade.CreateTradeInput{
		InitiatorID: trainerAlice,
		RecipientID: trainerBob,
	})
	s.Require().NoError(err)
	return output.Trade
}

func (s *TradeOrchestratorTestSuite) addItem(tradeID, trainerID, captureID string) *veramon.Trade {
	output, err := s.orchestrator.AddItem(s.ctx, &trade.AddItemInput{
		TradeID:   tradeID,
		TrainerID: trainerID,
		CaptureID: captureID,
	})
	s.Require().NoError(err)
	return output.Trade
}

func (s *TradeOrchestratorTestSuite) TestCreateTrade() {
	s.Run("opens pending with a deadline", func() {
		t := s.createTrade()

		s.Equal(veramon.TradeStatusPending, t.Status)
		s.Equal(s.clock.Now().Add(30*time.Minute).Unix(), t.ExpiresAt)
	})

	s.Run("rejects self trades", func() {
		_, err := s.orchestrator.CreateTrade(s.ctx, &trade.CreateTradeInput{
			InitiatorID: trainerAlice,
			RecipientID: trainerAlice,
		})
		s.True(errors.IsInvalidArgument(err))
	})
}

func (s *TradeOrchestratorTestSuite) TestAddItem() {
	t := s.createTrade()

	s.Run("first item moves pending to negotiating", func() {
		updated := s.addItem(t.ID, trainerAlice, "cap_x")

		s.Equal(veramon.TradeStatusNegotiating, updated.Status)
		s.Len(updated.Items, 1)
		s.Equal(veramon.SideInitiator, updated.Items[0].Side)
	})

	s.Run("duplicate capture is rejected", func() {
		_, err := s.orchestrator.AddItem(s.ctx, &trade.AddItemInput{
			TradeID:   t.ID,
			TrainerID: trainerAlice,
			CaptureID: "cap_x",
		})
		s.True(errors.IsAlreadyExists(err))
	})

	s.Run("caller must own the capture", func() {
		_, err := s.orchestrator.AddItem(s.ctx, &trade.AddItemInput{
			TradeID:   t.ID,
			TrainerID: trainerBob,
			CaptureID: "cap_z",
		})
		s.True(errors.IsPermissionDenied(err))
	})

	s.Run("third parties are rejected", func() {
		_, err := s.orchestrator.AddItem(s.ctx, &trade.AddItemInput{
			TradeID:   t.ID,
			TrainerID: "trainer_mallory",
			CaptureID: "cap_y",
		})
		s.True(errors.IsPermissionDenied(err))
	})

	s.Run("capture locked by another trade is rejected", func() {
		other, err := s.orchestrator.CreateTrade(s.ctx, &trade.CreateTradeInput{
			InitiatorID: trainerAlice,
			RecipientID: "trainer_carol",
		})
		s.Require().NoError(err)

		_, err = s.orchestrator.AddItem(s.ctx, &trade.AddItemInput{
			TradeID:   other.Trade.ID,
			TrainerID: trainerAlice,
			CaptureID: "cap_x",
		})
		s.True(errors.IsFailedPrecondition(err))
	})
}

func (s *TradeOrchestratorTestSuite) TestConfirmAndSwap() {
	t := s.createTrade()
	s.addItem(t.ID, trainerAlice, "cap_x")
	s.addItem(t.ID, trainerBob, "cap_y")

	s.Run("one confirmation does not swap", func() {
		output, err := s.orchestrator.Confirm(s.ctx, &trade.ConfirmInput{
			TradeID:   t.ID,
			TrainerID: trainerAlice,
		})
		s.Require().NoError(err)
		s.False(output.Completed)
		s.Equal(veramon.TradeStatusNegotiating, output.Trade.Status)
	})

	s.Run("both confirmations swap exactly the offered items", func() {
		output, err := s.orchestrator.Confirm(s.ctx, &trade.ConfirmInput{
			TradeID:   t.ID,
			TrainerID: trainerBob,
		})
		s.Require().NoError(err)
		s.True(output.Completed)
		s.Equal(veramon.TradeStatusCompleted, output.Trade.Status)

		gotX, err := s.captureRepo.Get(s.ctx, captures.GetInput{ID: "cap_x"})
		s.Require().NoError(err)
		s.Equal(trainerBob, gotX.Capture.OwnerID)

		gotY, err := s.captureRepo.Get(s.ctx, captures.GetInput{ID: "cap_y"})
		s.Require().NoError(err)
		s.Equal(trainerAlice, gotY.Capture.OwnerID)

		// the uninvolved capture stays put
		gotZ, err := s.captureRepo.Get(s.ctx, captures.GetInput{ID: "cap_z"})
		s.Require().NoError(err)
		s.Equal(trainerAlice, gotZ.Capture.OwnerID)
	})

	s.Run("re-confirming a completed trade never swaps again", func() {
		_, err := s.orchestrator.Confirm(s.ctx, &trade.ConfirmInput{
			TradeID:   t.ID,
			TrainerID: trainerAlice,
		})
		s.True(errors.IsFailedPrecondition(err))

		gotX, err := s.captureRepo.Get(s.ctx, captures.GetInput{ID: "cap_x"})
		s.Require().NoError(err)
		s.Equal(trainerBob, gotX.Capture.OwnerID)
	})
}

func (s *TradeOrchestratorTestSuite) TestConfirmPreconditions() {
	t := s.createTrade()

	s.Run("pending trade has nothing to confirm", func() {
		_, err := s.orchestrator.Confirm(s.ctx, &trade.ConfirmInput{
			TradeID:   t.ID,
			TrainerID: trainerAlice,
		})
		s.True(errors.IsFailedPrecondition(err))
	})

	s.Run("one-sided offers cannot complete", func() {
		s.addItem(t.ID, trainerAlice, "cap_x")

		_, err := s.orchestrator.Confirm(s.ctx, &trade.ConfirmInput{
			TradeID:   t.ID,
			TrainerID: trainerAlice,
		})
		s.True(errors.IsFailedPrecondition(err))
	})
}

func (s *TradeOrchestratorTestSuite) TestOwnershipDriftAborts() {
	t := s.createTrade()
	s.addItem(t.ID, trainerAlice, "cap_x")
	s.addItem(t.ID, trainerBob, "cap_y")

	// cap_x changes hands behind the trade's back
	gotX, err := s.captureRepo.Get(s.ctx, captures.GetInput{ID: "cap_x"})
	s.Require().NoError(err)
	gotX.Capture.OwnerID = "trainer_mallory"
	_, err = s.captureRepo.Update(s.ctx, captures.UpdateInput{Capture: gotX.Capture})
	s.Require().NoError(err)

	_, err = s.orchestrator.Confirm(s.ctx, &trade.ConfirmInput{TradeID: t.ID, TrainerID: trainerAlice})
	s.Require().NoError(err)
	_, err = s.orchestrator.Confirm(s.ctx, &trade.ConfirmInput{TradeID: t.ID, TrainerID: trainerBob})
	s.True(errors.IsAborted(err))

	// nothing was written: cap_y still belongs to Bob, trade not completed
	gotY, err := s.captureRepo.Get(s.ctx, captures.GetInput{ID: "cap_y"})
	s.Require().NoError(err)
	s.Equal(trainerBob, gotY.Capture.OwnerID)

	gotTrade, err := s.orchestrator.GetTrade(s.ctx, &trade.GetTradeInput{ID: t.ID})
	s.Require().NoError(err)
	s.NotEqual(veramon.TradeStatusCompleted, gotTrade.Trade.Status)
}

func (s *TradeOrchestratorTestSuite) TestItemChangesClearConfirmations() {
	t := s.createTrade()
	s.addItem(t.ID, trainerAlice, "cap_x")
	s.addItem(t.ID, trainerBob, "cap_y")

	_, err := s.orchestrator.Confirm(s.ctx, &trade.ConfirmInput{TradeID: t.ID, TrainerID: trainerAlice})
	s.Require().NoError(err)

	updated := s.addItem(t.ID, trainerAlice, "cap_z")
	s.False(updated.InitiatorConfirmed)
	s.False(updated.RecipientConfirmed)

	removed, err := s.orchestrator.RemoveItem(s.ctx, &trade.RemoveItemInput{
		TradeID:   t.ID,
		TrainerID: trainerAlice,
		CaptureID: "cap_z",
	})
	s.Require().NoError(err)
	s.Len(removed.Trade.Items, 2)
}

func (s *TradeOrchestratorTestSuite) TestDecline() {
	s.Run("pending trade can be declined", func() {
		t := s.createTrade()

		output, err := s.orchestrator.Decline(s.ctx, &trade.DeclineInput{
			TradeID:   t.ID,
			TrainerID: trainerBob,
		})
		s.Require().NoError(err)
		s.Equal(veramon.TradeStatusDeclined, output.Trade.Status)
	})

	s.Run("negotiating trade cannot be declined", func() {
		t := s.createTrade()
		s.addItem(t.ID, trainerAlice, "cap_x")

		_, err := s.orchestrator.Decline(s.ctx, &trade.DeclineInput{
			TradeID:   t.ID,
			TrainerID: trainerBob,
		})
		s.True(errors.IsFailedPrecondition(err))
	})
}

func (s *TradeOrchestratorTestSuite) TestCancelReleasesLocks() {
	t := s.createTrade()
	s.addItem(t.ID, trainerAlice, "cap_x")

	output, err := s.orchestrator.Cancel(s.ctx, &trade.CancelInput{
		TradeID:   t.ID,
		TrainerID: trainerAlice,
	})
	s.Require().NoError(err)
	s.Equal(veramon.TradeStatusCancelled, output.Trade.Status)

	// cap_x can be offered in a new trade
	other, err := s.orchestrator.CreateTrade(s.ctx, &trade.CreateTradeInput{
		InitiatorID: trainerAlice,
		RecipientID: trainerBob,
	})
	s.Require().NoError(err)
	s.addItem(other.Trade.ID, trainerAlice, "cap_x")
}

func (s *TradeOrchestratorTestSuite) TestExpireStale() {
	t := s.createTrade()
	s.addItem(t.ID, trainerAlice, "cap_x")

	s.Run("nothing expires before the deadline", func() {
		output, err := s.orchestrator.ExpireStale(s.ctx, &trade.ExpireStaleInput{})
		s.Require().NoError(err)
		s.Empty(output.ExpiredIDs)
	})

	s.Run("stale trade is cancelled and locks released", func() {
		s.clock.Advance(31 * time.Minute)

		output, err := s.orchestrator.ExpireStale(s.ctx, &trade.ExpireStaleInput{})
		s.Require().NoError(err)
		s.Equal([]string{t.ID}, output.ExpiredIDs)

		got, err := s.orchestrator.GetTrade(s.ctx, &trade.GetTradeInput{ID: t.ID})
		s.Require().NoError(err)
		s.Equal(veramon.TradeStatusCancelled, got.Trade.Status)
	})
}

func TestTradeOrchestratorSuite(t *testing.T) {
	suite.Run(t, new(TradeOrchestratorTestSuite))
}
