// Package trainers provides the interface for trainer persistence
package trainers

//go:generate mockgen -destination=mock/mock_repository.go -package=trainersmock github.com/veramon/reunited-api/internal/repositories/trainers Repository

import (
	"context"

	"github.com/veramon/reunited-api/internal/entities/veramon"
)

// Repository defines the interface for trainer persistence
type Repository interface {
	// Create creates a new trainer
	// Returns errors.AlreadyExists if a trainer with the same ID exists
	Create(ctx context.Context, input CreateInput) (*CreateOutput, error)

	// Get retrieves a trainer by ID
	// Returns errors.NotFound if the trainer doesn't exist
	Get(ctx context.Context, input GetInput) (*GetOutput, error)

	// Update updates an existing trainer
	// Returns errors.NotFound if the trainer doesn't exist
	Update(ctx context.Context, input UpdateInput) (*UpdateOutput, error)

	// AdjustTokens applies a signed delta to a trainer's token balance.
	// Returns errors.FailedPrecondition when the delta would take the
	// balance below zero.
	AdjustTokens(ctx context.Context, input AdjustTokensInput) (*AdjustTokensOutput, error)
}

// CreateInput defines the input for creating a trainer
type CreateInput struct {
	Trainer *veramon.Trainer
}

// CreateOutput defines the output for creating a trainer
type CreateOutput struct {
	Trainer *veramon.Trainer
}

// GetInput defines the input for getting a trainer
type GetInput struct {
	ID string
}

// GetOutput defines the output for getting a trainer
type GetOutput struct {
	Trainer *veramon.Trainer
}

// UpdateInput defines the input for updating a trainer
type UpdateInput struct {
	Trainer *veramon.Trainer
}

// UpdateOutput defines the output for updating a trainer
type UpdateOutput struct {
	Trainer *veramon.Trainer
}

// AdjustTokensInput defines the input for adjusting a token balance
type AdjustTokensInput struct {
	TrainerID string
	Delta     int64
	Reason    string
}

// AdjustTokensOutput defines the output for adjusting a token balance
type AdjustTokensOutput struct {
	Trainer *veramon.Trainer
}
