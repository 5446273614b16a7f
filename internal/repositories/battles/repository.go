// Package battles provides the interface for battle persistence
package battles

//go:generate mockgen -destination=mock/mock_repository.go -package=battlesmock github.com/veramon/reunited-api/internal/repositories/battles Repository

import (
	"context"

	"github.com/veramon/reunited-api/internal/entities/veramon"
)

// Repository defines the interface for battle persistence
type Repository interface {
	// Create creates a new battle
	// Returns errors.AlreadyExists if a battle with the same ID exists
	Create(ctx context.Context, input CreateInput) (*CreateOutput, error)

	// Get retrieves a battle by ID
	// Returns errors.NotFound if the battle doesn't exist
	Get(ctx context.Context, input GetInput) (*GetOutput, error)

	// Update updates an existing battle, keeping the expiry index in sync
	// Returns errors.NotFound if the battle doesn't exist
	Update(ctx context.Context, input UpdateInput) (*UpdateOutput, error)

	// Delete deletes a battle by ID
	// Returns errors.NotFound if the battle doesn't exist
	Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error)

	// ListExpired returns the IDs of active battles whose deadline passed
	// at or before the given unix time
	ListExpired(ctx context.Context, input ListExpiredInput) (*ListExpiredOutput, error)
}

// CreateInput defines the input for creating a battle
type CreateInput struct {
	Battle *veramon.Battle
}

// CreateOutput defines the output for creating a battle
type CreateOutput struct {
	Battle *veramon.Battle
}

// GetInput defines the input for getting a battle
type GetInput struct {
	ID string
}

// GetOutput defines the output for getting a battle
type GetOutput struct {
	Battle *veramon.Battle
}

// UpdateInput defines the input for updating a battle
type UpdateInput struct {
	Battle *veramon.Battle
}

// UpdateOutput defines the output for updating a battle
type UpdateOutput struct {
	Battle *veramon.Battle
}

// DeleteInput defines the input for deleting a battle
type DeleteInput struct {
	ID string
}

// DeleteOutput defines the output for deleting a battle
type DeleteOutput struct{}

// ListExpiredInput defines the input for listing expired battles
type ListExpiredInput struct {
	Now int64
}

// ListExpiredOutput defines the output for listing expired battles
type ListExpiredOutput struct {
	IDs []string
}
