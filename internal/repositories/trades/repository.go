// Package trades provides the interface for trade persistence
package trades

//go:generate mockgen -destination=mock/mock_repository.go -package=tradesmock github.com/veramon/reunited-api/internal/repositories/trades Repository

import (
	"context"

	"github.com/veramon/reunited-api/internal/entities/veramon"
)

// Repository defines the interface for trade persistence
type Repository interface {
	// Create creates a new trade
	// Returns errors.AlreadyExists if a trade with the same ID exists
	Create(ctx context.Context, input CreateInput) (*CreateOutput, error)

	// Get retrieves a trade by ID
	// Returns errors.NotFound if the trade doesn't exist
	Get(ctx context.Context, input GetInput) (*GetOutput, error)

	// Update updates an existing trade, keeping the expiry index in sync
	// Returns errors.NotFound if the trade doesn't exist
	Update(ctx context.Context, input UpdateInput) (*UpdateOutput, error)

	// ListExpired returns the IDs of open trades whose deadline passed at
	// or before the given unix time
	ListExpired(ctx context.Context, input ListExpiredInput) (*ListExpiredOutput, error)

	// LockItem reserves a capture for a trade so it cannot be offered in
	// another trade at the same time.
	// Returns errors.FailedPrecondition when the capture is already held
	// by a different trade.
	LockItem(ctx context.Context, input LockItemInput) (*LockItemOutput, error)

	// UnlockItem releases a capture reservation held by a trade. Locks held
	// by other trades are left alone.
	UnlockItem(ctx context.Context, input UnlockItemInput) (*UnlockItemOutput, error)

	// CompleteSwap writes the completed trade, the reassigned captures, and
	// the owner index moves in one transaction, and releases the item
	// locks. Either every write lands or none do.
	CompleteSwap(ctx context.Context, input CompleteSwapInput) (*CompleteSwapOutput, error)
}

// CreateInput defines the input for creating a trade
type CreateInput struct {
	Trade *veramon.Trade
}

// CreateOutput defines the output for creating a trade
type CreateOutput struct {
	Trade *veramon.Trade
}

// GetInput defines the input for getting a trade
type GetInput struct {
	ID string
}

// GetOutput defines the output for getting a trade
type GetOutput struct {
	Trade *veramon.Trade
}

// UpdateInput defines the input for updating a trade
type UpdateInput struct {
	Trade *veramon.Trade
}

// UpdateOutput defines the output for updating a trade
type UpdateOutput struct {
	Trade *veramon.Trade
}

// ListExpiredInput defines the input for listing expired trades
type ListExpiredInput struct {
	Now int64
}

// ListExpiredOutput defines the output for listing expired trades
type ListExpiredOutput struct {
	IDs []string
}

// LockItemInput defines the input for reserving a capture
type LockItemInput struct {
	TradeID   string
	CaptureID string
}

// LockItemOutput defines the output for reserving a capture
type LockItemOutput struct{}

// UnlockItemInput defines the input for releasing a capture reservation
type UnlockItemInput struct {
	TradeID   string
	CaptureID string
}

// UnlockItemOutput defines the output for releasing a capture reservation
type UnlockItemOutput struct{}

// CaptureTransfer describes one capture changing hands. FromOwnerID is the
// owner being replaced; Capture carries the new OwnerID.
type CaptureTransfer struct {
	Capture     *veramon.Capture
	FromOwnerID string
}

// CompleteSwapInput defines the input for the atomic swap. Trade must
// already carry its final status.
type CompleteSwapInput struct {
	Trade     *veramon.Trade
	Transfers []CaptureTransfer
}

// CompleteSwapOutput defines the output for the atomic swap
type CompleteSwapOutput struct {
	Trade *veramon.Trade
}
