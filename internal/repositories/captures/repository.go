// Package captures provides the interface for capture persistence
package captures

//go:generate mockgen -destination=mock/mock_repository.go -package=capturesmock github.com/veramon/reunited-api/internal/repositories/captures Repository

import (
	"context"

	"github.com/veramon/reunited-api/internal/entities/veramon"
)

// Repository defines the interface for capture persistence
type Repository interface {
	// Create creates a new capture
	// Returns errors.InvalidArgument for validation failures
	// Returns errors.AlreadyExists if a capture with the same ID exists
	// Returns errors.Internal for storage failures
	Create(ctx context.Context, input CreateInput) (*CreateOutput, error)

	// Get retrieves a capture by ID
	// Returns errors.InvalidArgument for empty IDs
	// Returns errors.NotFound if the capture doesn't exist
	Get(ctx context.Context, input GetInput) (*GetOutput, error)

	// Update updates an existing capture, maintaining the owner index when
	// ownership changed
	// Returns errors.NotFound if the capture doesn't exist
	Update(ctx context.Context, input UpdateInput) (*UpdateOutput, error)

	// Delete deletes a capture by ID
	// Returns errors.NotFound if the capture doesn't exist
	Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error)

	// ListByOwner retrieves all captures owned by a trainer
	ListByOwner(ctx context.Context, input ListByOwnerInput) (*ListByOwnerOutput, error)
}

// CreateInput defines the input for creating a capture
type CreateInput struct {
	Capture *veramon.Capture
}

// CreateOutput defines the output for creating a capture
type CreateOutput struct {
	Capture *veramon.Capture
}

// GetInput defines the input for getting a capture
type GetInput struct {
	ID string
}

// GetOutput defines the output for getting a capture
type GetOutput struct {
	Capture *veramon.Capture
}

// UpdateInput defines the input for updating a capture
type UpdateInput struct {
	Capture *veramon.Capture
}

// UpdateOutput defines the output for updating a capture
type UpdateOutput struct {
	Capture *veramon.Capture
}

// DeleteInput defines the input for deleting a capture
type DeleteInput struct {
	ID string
}

// DeleteOutput defines the output for deleting a capture
type DeleteOutput struct{}

// ListByOwnerInput defines the input for listing captures by owner
type ListByOwnerInput struct {
	OwnerID string
}

// ListByOwnerOutput defines the output for listing captures by owner
type ListByOwnerOutput struct {
	Captures []*veramon.Capture
}
