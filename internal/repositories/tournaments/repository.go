// Package tournaments provides the interface for tournament persistence
package tournaments

//go:generate mockgen -destination=mock/mock_repository.go -package=tournamentsmock github.com/veramon/reunited-api/internal/repositories/tournaments Repository

import (
	"context"

	"github.com/veramon/reunited-api/internal/entities/veramon"
)

// Repository defines the interface for tournament persistence
type Repository interface {
	// Create creates a new tournament
	// Returns errors.AlreadyExists if a tournament with the same ID exists
	Create(ctx context.Context, input CreateInput) (*CreateOutput, error)

	// Get retrieves a tournament by ID
	// Returns errors.NotFound if the tournament doesn't exist
	Get(ctx context.Context, input GetInput) (*GetOutput, error)

	// Update updates an existing tournament, keeping the expiry index in
	// sync
	// Returns errors.NotFound if the tournament doesn't exist
	Update(ctx context.Context, input UpdateInput) (*UpdateOutput, error)

	// ListExpired returns the IDs of tournaments still in registration
	// whose deadline passed at or before the given unix time
	ListExpired(ctx context.Context, input ListExpiredInput) (*ListExpiredOutput, error)
}

// CreateInput defines the input for creating a tournament
type CreateInput struct {
	Tournament *veramon.Tournament
}

// CreateOutput defines the output for creating a tournament
type CreateOutput struct {
	Tournament *veramon.Tournament
}

// GetInput defines the input for getting a tournament
type GetInput struct {
	ID string
}

// GetOutput defines the output for getting a tournament
type GetOutput struct {
	Tournament *veramon.Tournament
}

// UpdateInput defines the input for updating a tournament
type UpdateInput struct {
	Tournament *veramon.Tournament
}

// UpdateOutput defines the output for updating a tournament
type UpdateOutput struct {
	Tournament *veramon.Tournament
}

// ListExpiredInput defines the input for listing expired tournaments
type ListExpiredInput struct {
	Now int64
}

// ListExpiredOutput defines the output for listing expired tournaments
type ListExpiredOutput struct {
	IDs []string
}
