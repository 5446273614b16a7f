// Package trade implements the trade orchestrator: the two-party
// negotiation state machine and the atomic all-or-nothing item swap.
package trade

//go:generate mockgen -destination=mock/mock_service.go -package=trademock github.com/veramon/reunited-api/internal/orchestrators/trade Service

import (
	"context"
	"log/slog"
	"time"

	"github.com/veramon/reunited-api/internal/entities/veramon"
	"github.com/veramon/reunited-api/internal/errors"
	"github.com/veramon/reunited-api/internal/pkg/clock"
	"github.com/veramon/reunited-api/internal/pkg/idgen"
	"github.com/veramon/reunited-api/internal/repositories/captures"
	"github.com/veramon/reunited-api/internal/repositories/trades"
)

// DefaultTradeTimeout bounds how long a trade may sit open
const DefaultTradeTimeout = 30 * time.Minute

// Service defines the interface for trade operations
type Service interface {
	// CreateTrade opens a pending trade between two trainers
	CreateTrade(ctx context.Context, input *CreateTradeInput) (*CreateTradeOutput, error)

	// GetTrade retrieves a trade by ID
	GetTrade(ctx context.Context, input *GetTradeInput) (*GetTradeOutput, error)

	// AddItem offers a capture into the trade. The first item moves the
	// trade from pending to negotiating. Clears both confirmations.
	AddItem(ctx context.Context, input *AddItemInput) (*AddItemOutput, error)

	// RemoveItem withdraws an offered capture. Clears both confirmations.
	RemoveItem(ctx context.Context, input *RemoveItemInput) (*RemoveItemOutput, error)

	// Confirm records a party's confirmation. When both parties have
	// confirmed, every offered item swaps ownership in one transaction.
	Confirm(ctx context.Context, input *ConfirmInput) (*ConfirmOutput, error)

	// Decline rejects a trade before any items have been offered
	Decline(ctx context.Context, input *DeclineInput) (*DeclineOutput, error)

	// Cancel abandons a trade from any non-terminal state
	Cancel(ctx context.Context, input *CancelInput) (*CancelOutput, error)

	// ExpireStale cancels open trades whose deadline has passed
	ExpireStale(ctx context.Context, input *ExpireStaleInput) (*ExpireStaleOutput, error)
}

// Config holds the dependencies for the trade orchestrator
type Config struct {
	TradeRepo    trades.Repository
	CaptureRepo  captures.Repository
	IDGenerator  idgen.Generator
	Clock        clock.Clock
	TradeTimeout time.Duration
}

// Validate ensures all required dependencies are provided
func (cfg *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	if cfg.TradeRepo == nil {
		vb.RequiredField("TradeRepo")
	}
	if cfg.CaptureRepo == nil {
		vb.RequiredField("CaptureRepo")
	}
	if cfg.IDGenerator == nil {
		vb.RequiredField("IDGenerator")
	}

	return vb.Build()
}

type orchestrator struct {
	tradeRepo    trades.Repository
	captureRepo  captures.Repository
	idGen        idgen.Generator
	clock        clock.Clock
	tradeTimeout time.Duration
}

// NewOrchestrator creates a new trade orchestrator with the provided dependencies
func NewOrchestrator(cfg *Config) (Service, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	c := cfg.Clock
	if c == nil {
		c = clock.New()
	}
	timeout := cfg.TradeTimeout
	if timeout <= 0 {
		timeout = DefaultTradeTimeout
	}

	return &orchestrator{
		tradeRepo:    cfg.TradeRepo,
		captureRepo:  cfg.CaptureRepo,
		idGen:        cfg.IDGenerator,
		clock:        c,
		tradeTimeout: timeout,
	}, nil
}

var _ Service = (*orchestrator)(nil)

func (o *orchestrator) CreateTrade(ctx context.Context, input *CreateTradeInput) (*CreateTradeOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.InitiatorID == "" || input.RecipientID == "" {
		return nil, errors.InvalidArgument("initiator and recipient are required")
	}
	if input.InitiatorID == input.RecipientID {
		return nil, errors.InvalidArgument("a trainer cannot trade with themselves")
	}

	trade := &veramon.Trade{
		ID:          o.idGen.Generate(),
		InitiatorID: input.InitiatorID,
		RecipientID: input.RecipientID,
		Status:      veramon.TradeStatusPending,
		ExpiresAt:   o.clock.Now().Add(o.tradeTimeout).Unix(),
	}

	created, err := o.tradeRepo.Create(ctx, trades.CreateInput{Trade: trade})
	if err != nil {
		return nil, err
	}

	slog.Info("trade created",
		"trade_id", created.Trade.ID,
		"initiator", input.InitiatorID,
		"recipient", input.RecipientID,
	)

	return &CreateTradeOutput{Trade: created.Trade}, nil
}

func (o *orchestrator) GetTrade(ctx context.Context, input *GetTradeInput) (*GetTradeOutput, error) {
	if input == nil || input.ID == "" {
		return nil, errors.InvalidArgument("trade ID is required")
	}

	got, err := o.tradeRepo.Get(ctx, trades.GetInput{ID: input.ID})
	if err != nil {
		return nil, err
	}

	return &GetTradeOutput{Trade: got.Trade}, nil
}

func (o *orchestrator) AddItem(ctx context.Context, input *AddItemInput) (*AddItemOutput, error) {
	if input == nil || input.TradeID == "" || input.CaptureID == "" {
		return nil, errors.InvalidArgument("trade ID and capture ID are required")
	}

	trade, side, err := o.loadForParty(ctx, input.TradeID, input.TrainerID)
	if err != nil {
		return nil, err
	}
	if err := o.modifiable(trade); err != nil {
		return nil, err
	}
	if trade.Contains(input.CaptureID) {
		return nil, errors.AlreadyExistsf("capture %s is already in the trade", input.CaptureID)
	}

	got, err := o.captureRepo.Get(ctx, captures.GetInput{ID: input.CaptureID})
	if err != nil {
		return nil, err
	}
	if got.Capture.OwnerID != input.TrainerID {
		return nil, errors.PermissionDeniedf("capture %s is not owned by trainer %s", input.CaptureID, input.TrainerID)
	}

	// Reserve the capture so it cannot sit in two open trades at once
	if _, err := o.tradeRepo.LockItem(ctx, trades.LockItemInput{
		TradeID:   trade.ID,
		CaptureID: input.CaptureID,
	}); err != nil {
		return nil, err
	}

	trade.Items = append(trade.Items, veramon.TradeItem{CaptureID: input.CaptureID, Side: side})
	if trade.Status == veramon.TradeStatusPending {
		trade.Status = veramon.TradeStatusNegotiating
	}
	o.clearConfirmations(trade)

	updated, err := o.tradeRepo.Update(ctx, trades.UpdateInput{Trade: trade})
	if err != nil {
		return nil, err
	}

	return &AddItemOutput{Trade: updated.Trade}, nil
}

func (o *orchestrator) RemoveItem(ctx context.Context, input *RemoveItemInput) (*RemoveItemOutput, error) {
	if input == nil || input.TradeID == "" || input.CaptureID == "" {
		return nil, errors.InvalidArgument("trade ID and capture ID are required")
	}

	trade, side, err := o.loadForParty(ctx, input.TradeID, input.TrainerID)
	if err != nil {
		return nil, err
	}
	if err := o.modifiable(trade); err != nil {
		return nil, err
	}

	found := -1
	for i, item := range trade.Items {
		if item.CaptureID == input.CaptureID {
			if item.Side != side {
				return nil, errors.PermissionDenied("only the offering party may withdraw an item")
			}
			found = i
			break
		}
	}
	if found < 0 {
		return nil, errors.NotFoundf("capture %s is not in the trade", input.CaptureID)
	}

	if _, err := o.tradeRepo.UnlockItem(ctx, trades.UnlockItemInput{
		TradeID:   trade.ID,
		CaptureID: input.CaptureID,
	}); err != nil {
		return nil, err
	}

	trade.Items = append(trade.Items[:found], trade.Items[found+1:]...)
	o.clearConfirmations(trade)

	updated, err := o.tradeRepo.Update(ctx, trades.UpdateInput{Trade: trade})
	if err != nil {
		return nil, err
	}

	return &RemoveItemOutput{Trade: updated.Trade}, nil
}

func (o *orchestrator) Confirm(ctx context.Context, input *ConfirmInput) (*ConfirmOutput, error) {
	if input == nil || input.TradeID == "" {
		return nil, errors.InvalidArgument("trade ID is required")
	}

	trade, side, err := o.loadForParty(ctx, input.TradeID, input.TrainerID)
	if err != nil {
		return nil, err
	}
	if trade.Terminal() {
		return nil, errors.FailedPreconditionf("trade %s is already %s", trade.ID, trade.Status)
	}
	if trade.Status != veramon.TradeStatusNegotiating {
		return nil, errors.FailedPrecondition("trade has no items to confirm")
	}
	if len(trade.ItemsBySide(veramon.SideInitiator)) == 0 || len(trade.ItemsBySide(veramon.SideRecipient)) == 0 {
		return nil, errors.FailedPrecondition("both parties must offer at least one item")
	}

	if side == veramon.SideInitiator {
		trade.InitiatorConfirmed = true
	} else {
		trade.RecipientConfirmed = true
	}

	if !trade.InitiatorConfirmed || !trade.RecipientConfirmed {
		updated, err := o.tradeRepo.Update(ctx, trades.UpdateInput{Trade: trade})
		if err != nil {
			return nil, err
		}
		return &ConfirmOutput{Trade: updated.Trade}, nil
	}

	output, err := o.completeSwap(ctx, trade)
	if err != nil {
		return nil, err
	}
	return output, nil
}

// completeSwap re-verifies ownership of every offered capture and executes
// the exchange in a single transaction. Nothing is written when any
// precondition fails.
func (o *orchestrator) completeSwap(ctx context.Context, trade *veramon.Trade) (*ConfirmOutput, error) {
	transfers := make([]trades.CaptureTransfer, 0, len(trade.Items))
	for _, item := range trade.Items {
		got, err := o.captureRepo.Get(ctx, captures.GetInput{ID: item.CaptureID})
		if err != nil {
			return nil, err
		}
		capture := got.Capture

		expectedOwner := trade.InitiatorID
		newOwner := trade.RecipientID
		if item.Side == veramon.SideRecipient {
			expectedOwner = trade.RecipientID
			newOwner = trade.InitiatorID
		}
		if capture.OwnerID != expectedOwner {
			return nil, errors.Abortedf("capture %s changed owner since it was offered", item.CaptureID)
		}

		capture.OwnerID = newOwner
		transfers = append(transfers, trades.CaptureTransfer{
			Capture:     capture,
			FromOwnerID: expectedOwner,
		})
	}

	trade.Status = veramon.TradeStatusCompleted

	swapped, err := o.tradeRepo.CompleteSwap(ctx, trades.CompleteSwapInput{
		Trade:     trade,
		Transfers: transfers,
	})
	if err != nil {
		return nil, err
	}

	slog.Info("trade completed",
		"trade_id", trade.ID,
		"items", len(trade.Items),
	)

	return &ConfirmOutput{Trade: swapped.Trade, Completed: true}, nil
}

func (o *orchestrator) Decline(ctx context.Context, input *DeclineInput) (*DeclineOutput, error) {
	if input == nil || input.TradeID == "" {
		return nil, errors.InvalidArgument("trade ID is required")
	}

	trade, _, err := o.loadForParty(ctx, input.TradeID, input.TrainerID)
	if err != nil {
		return nil, err
	}
	if trade.Status != veramon.TradeStatusPending {
		return nil, errors.FailedPrecondition("only a pending trade can be declined")
	}

	trade.Status = veramon.TradeStatusDeclined

	updated, err := o.tradeRepo.Update(ctx, trades.UpdateInput{Trade: trade})
	if err != nil {
		return nil, err
	}

	return &DeclineOutput{Trade: updated.Trade}, nil
}

func (o *orchestrator) Cancel(ctx context.Context, input *CancelInput) (*CancelOutput, error) {
	if input == nil || input.TradeID == "" {
		return nil, errors.InvalidArgument("trade ID is required")
	}

	trade, _, err := o.loadForParty(ctx, input.TradeID, input.TrainerID)
	if err != nil {
		return nil, err
	}

	if err := o.cancel(ctx, trade); err != nil {
		return nil, err
	}

	return &CancelOutput{Trade: trade}, nil
}

func (o *orchestrator) ExpireStale(ctx context.Context, input *ExpireStaleInput) (*ExpireStaleOutput, error) {
	now := o.clock.Now().Unix()

	listed, err := o.tradeRepo.ListExpired(ctx, trades.ListExpiredInput{Now: now})
	if err != nil {
		return nil, err
	}

	output := &ExpireStaleOutput{}
	for _, id := range listed.IDs {
		got, err := o.tradeRepo.Get(ctx, trades.GetInput{ID: id})
		if err != nil {
			if errors.IsNotFound(err) {
				continue
			}
			return nil, err
		}
		if got.Trade.Terminal() {
			continue
		}

		if err := o.cancel(ctx, got.Trade); err != nil {
			return nil, err
		}

		slog.Info("trade expired", "trade_id", id)
		output.ExpiredIDs = append(output.ExpiredIDs, id)
	}

	return output, nil
}

// cancel releases every item lock and marks the trade cancelled
func (o *orchestrator) cancel(ctx context.Context, trade *veramon.Trade) error {
	if trade.Terminal() {
		return errors.FailedPreconditionf("trade %s is already %s", trade.ID, trade.Status)
	}

	for _, item := range trade.Items {
		if _, err := o.tradeRepo.UnlockItem(ctx, trades.UnlockItemInput{
			TradeID:   trade.ID,
			CaptureID: item.CaptureID,
		}); err != nil {
			return err
		}
	}

	trade.Status = veramon.TradeStatusCancelled

	_, err := o.tradeRepo.Update(ctx, trades.UpdateInput{Trade: trade})
	return err
}

// loadForParty fetches a trade and authorizes the caller as one of its two
// parties
func (o *orchestrator) loadForParty(ctx context.Context, tradeID, trainerID string) (*veramon.Trade, veramon.TradeSide, error) {
	if trainerID == "" {
		return nil, "", errors.InvalidArgument("trainer ID is required")
	}

	got, err := o.tradeRepo.Get(ctx, trades.GetInput{ID: tradeID})
	if err != nil {
		return nil, "", err
	}

	side := got.Trade.SideOf(trainerID)
	if side == "" {
		return nil, "", errors.PermissionDeniedf("trainer %s is not a party to trade %s", trainerID, tradeID)
	}

	return got.Trade, side, nil
}

func (o *orchestrator) modifiable(trade *veramon.Trade) error {
	switch trade.Status {
	case veramon.TradeStatusPending, veramon.TradeStatusNegotiating:
		return nil
	default:
		return errors.FailedPreconditionf("trade %s cannot be modified while %s", trade.ID, trade.Status)
	}
}

func (o *orchestrator) clearConfirmations(trade *veramon.Trade) {
	trade.InitiatorConfirmed = false
	trade.RecipientConfirmed = false
}
