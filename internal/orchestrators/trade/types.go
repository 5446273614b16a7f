package trade

import (
	"github.com/veramon/reunited-api/internal/entities/veramon"
)

// CreateTradeInput defines the input for opening a trade
type CreateTradeInput struct {
	InitiatorID string
	RecipientID string
}

// CreateTradeOutput defines the output for opening a trade
type CreateTradeOutput struct {
	Trade *veramon.Trade
}

// GetTradeInput defines the input for getting a trade
type GetTradeInput struct {
	ID string
}

// GetTradeOutput defines the output for getting a trade
type GetTradeOutput struct {
	Trade *veramon.Trade
}

// AddItemInput defines the input for offering a capture
type AddItemInput struct {
	TradeID   string
	TrainerID string
	CaptureID string
}

// AddItemOutput defines the output for offering a capture
type AddItemOutput struct {
	Trade *veramon.Trade
}

// RemoveItemInput defines the input for withdrawing an offered capture
type RemoveItemInput struct {
	TradeID   string
	TrainerID string
	CaptureID string
}

// RemoveItemOutput defines the output for withdrawing an offered capture
type RemoveItemOutput struct {
	Trade *veramon.Trade
}

// ConfirmInput defines the input for confirming a trade
type ConfirmInput struct {
	TradeID   string
	TrainerID string
}

// ConfirmOutput defines the output for confirming a trade. Completed is
// true when this confirmation executed the swap.
type ConfirmOutput struct {
	Trade     *veramon.Trade
	Completed bool
}

// DeclineInput defines the input for declining a pending trade
type DeclineInput struct {
	TradeID   string
	TrainerID string
}

// DeclineOutput defines the output for declining a trade
type DeclineOutput struct {
	Trade *veramon.Trade
}

// CancelInput defines the input for cancelling a trade
type CancelInput struct {
	TradeID   string
	TrainerID string
}

// CancelOutput defines the output for cancelling a trade
type CancelOutput struct {
	Trade *veramon.Trade
}

// ExpireStaleInput defines the input for the stale-trade sweep
type ExpireStaleInput struct{}

// ExpireStaleOutput lists the trades the sweep cancelled
type ExpireStaleOutput struct {
	ExpiredIDs []string
}
